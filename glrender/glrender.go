// Package glrender rasterizes noise kernels into images.
package glrender

import (
	"image/color"

	"github.com/chewxy/math32"
	"github.com/soypat/glgl/math/ms1"
)

// ColorMap converts the values a kernel returns for a single position to a color.
// values has length equal to the kernel's component count.
type ColorMap func(values []float32) color.Color

var nanColor = color.RGBA{R: 255, A: 255}

// GrayColorMap maps the first component linearly from [lo, hi] to black-white.
// Values outside the range are clamped. NaN and infinities are rendered red.
func GrayColorMap(lo, hi float32) ColorMap {
	if !(hi > lo) {
		panic("invalid color map range")
	}
	return func(values []float32) color.Color {
		v := values[0]
		if !finite(v) {
			return nanColor
		}
		return color.Gray{Y: unitByte(v, lo, hi)}
	}
}

// RGBColorMap maps up to three components linearly from [lo, hi] to the red,
// green and blue channels. Missing components leave their channel at zero.
func RGBColorMap(lo, hi float32) ColorMap {
	if !(hi > lo) {
		panic("invalid color map range")
	}
	return func(values []float32) color.Color {
		c := color.RGBA{A: 255}
		ch := [3]*uint8{&c.R, &c.G, &c.B}
		for i, v := range values[:min(len(values), 3)] {
			if !finite(v) {
				return nanColor
			}
			*ch[i] = unitByte(v, lo, hi)
		}
		return c
	}
}

// DefaultColorMap returns a reasonable color map for a kernel returning components values.
// Single component kernels are assumed to lie in [-1, 1]; two component kernels
// are distances rendered as a gray scale of the first component; otherwise
// components map to RGB in [0, 1].
func DefaultColorMap(components int) ColorMap {
	switch components {
	case 1:
		return GrayColorMap(-1, 1)
	case 2:
		return GrayColorMap(0, 1)
	default:
		return RGBColorMap(0, 1)
	}
}

func unitByte(v, lo, hi float32) uint8 {
	t := ms1.Clamp((v-lo)/(hi-lo), 0, 1)
	return uint8(math32.Round(t * 255))
}

func finite(v float32) bool {
	return !math32.IsNaN(v) && !math32.IsInf(v, 0)
}
