package glrender

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/soypat/geometry/ms2"
	"github.com/soypat/glproc/gleval"
)

type setImage = interface {
	image.Image
	Set(x, y int, c color.Color)
}

// ImageRenderer converts kernel evaluations over a rectangular domain to images.
type ImageRenderer struct {
	conv ColorMap
	pos  []ms2.Vec
	vals []float32
}

// NewImageRenderer instances a new [ImageRenderer]. evalBufferSize is the maximum
// amount of positions evaluated per kernel call and must be at least the image width.
// A nil conversion selects [DefaultColorMap] for the kernel on each render.
func NewImageRenderer(evalBufferSize int, conversion ColorMap) (*ImageRenderer, error) {
	if evalBufferSize <= 64 {
		return nil, errors.New("too small evaluation buffer size")
	}
	ir := &ImageRenderer{
		conv: conversion,
		pos:  make([]ms2.Vec, evalBufferSize),
	}
	return ir, nil
}

// Render samples the kernel at the center of each pixel of img, mapping domain onto the image bounds.
// The image's top row corresponds to domain.Max.Y. userData is passed to all [gleval.Kernel.Evaluate] calls.
func (ir *ImageRenderer) Render(k gleval.Kernel, domain ms2.Box, img setImage, userData any) error {
	imgBB := img.Bounds()
	dxi := imgBB.Dx()
	dyi := imgBB.Dy()
	if dxi == 0 || dyi == 0 {
		return errors.New("empty image")
	} else if len(ir.pos) < dxi {
		return fmt.Errorf("require evaluation buffer (%d) to be at least of length of image rows (%d)", len(ir.pos), dxi)
	}
	sz := domain.Size()
	if !(sz.X > 0 && sz.Y > 0) {
		return errors.New("empty render domain")
	}
	nc := k.Components()
	if nc < 1 {
		return errors.New("kernel returns no components")
	}
	conv := ir.conv
	if conv == nil {
		conv = DefaultColorMap(nc)
	}
	if cap(ir.vals) < dxi*nc {
		ir.vals = make([]float32, dxi*nc)
	}
	dx := sz.X / float32(dxi)
	dy := sz.Y / float32(dyi)
	xmin := domain.Min.X + dx/2 // Offset to center of pixel.
	ytop := domain.Max.Y - dy/2
	for j := 0; j < dyi; j++ {
		y := ytop - float32(j)*dy
		err := ir.renderRow(k, conv, j, xmin, y, dx, imgBB, img, userData)
		if err != nil {
			return err
		}
	}
	return nil
}

func (ir *ImageRenderer) renderRow(k gleval.Kernel, conv ColorMap, row int, xmin, y, dx float32, imgBB image.Rectangle, img setImage, userData any) error {
	dxi := imgBB.Dx()
	nc := k.Components()
	for i := 0; i < dxi; i++ {
		ir.pos[i] = ms2.Vec{X: xmin + float32(i)*dx, Y: y}
	}
	vals := ir.vals[:dxi*nc]
	err := k.Evaluate(ir.pos[:dxi], vals, userData)
	if err != nil {
		return err
	}
	for i := 0; i < dxi; i++ {
		img.Set(i+imgBB.Min.X, row+imgBB.Min.Y, conv(vals[i*nc:i*nc+nc]))
	}
	return nil
}
