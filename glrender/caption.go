package glrender

import (
	"errors"
	"image"
	"image/color"
	"image/draw"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/math/fixed"
)

// CaptionConfig configures a [Captioner].
type CaptionConfig struct {
	// TTF is the true type font file. If nil the Go regular font is used.
	TTF []byte
	// Size is the font size in points. If zero 12 is used.
	Size float64
	// Foreground is the text color. If nil white is used.
	Foreground color.Color
	// Background fills a strip behind the text for legibility. If nil no strip is drawn.
	Background color.Color
}

// Captioner draws single line text captions onto images.
type Captioner struct {
	face font.Face
	fg   image.Image
	bg   image.Image
}

// NewCaptioner parses the configured font and returns a Captioner ready for use.
func NewCaptioner(cfg CaptionConfig) (*Captioner, error) {
	if cfg.Size < 0 {
		return nil, errors.New("negative font size")
	}
	ttf := cfg.TTF
	if ttf == nil {
		ttf = goregular.TTF
	}
	f, err := truetype.Parse(ttf)
	if err != nil {
		return nil, err
	}
	size := cfg.Size
	if size == 0 {
		size = 12
	}
	fg := cfg.Foreground
	if fg == nil {
		fg = color.White
	}
	c := &Captioner{
		face: truetype.NewFace(f, &truetype.Options{Size: size, DPI: 72, Hinting: font.HintingFull}),
		fg:   image.NewUniform(fg),
	}
	if cfg.Background != nil {
		c.bg = image.NewUniform(cfg.Background)
	}
	return c, nil
}

// Measure returns the width and height in pixels text occupies when drawn.
func (c *Captioner) Measure(text string) (width, height int) {
	m := c.face.Metrics()
	adv := font.MeasureString(c.face, text)
	return adv.Ceil(), (m.Ascent + m.Descent).Ceil()
}

// Draw writes text onto the bottom-left corner of img with a small margin. Text
// that does not fit is clipped by img's bounds.
func (c *Captioner) Draw(img draw.Image, text string) {
	const margin = 4
	bb := img.Bounds()
	m := c.face.Metrics()
	w, h := c.Measure(text)
	if c.bg != nil {
		strip := image.Rect(bb.Min.X, bb.Max.Y-h-2*margin, bb.Min.X+w+2*margin, bb.Max.Y).Intersect(bb)
		draw.Draw(img, strip, c.bg, image.Point{}, draw.Over)
	}
	d := font.Drawer{
		Dst:  img,
		Src:  c.fg,
		Face: c.face,
		Dot:  fixed.Point26_6{X: fixed.I(bb.Min.X + margin), Y: fixed.I(bb.Max.Y-margin) - m.Descent},
	}
	d.DrawString(text)
}
