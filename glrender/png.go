package glrender

import (
	"errors"
	"image"
	"image/png"
	"io"

	"github.com/soypat/geometry/ms2"
	"github.com/soypat/glproc/gleval"
)

// PNGConfig configures [WritePNG].
type PNGConfig struct {
	Width, Height int
	// Domain is the kernel input region mapped onto the image.
	Domain ms2.Box
	// Colors converts kernel values to colors. If nil [DefaultColorMap] is used.
	Colors ColorMap
	// Caption is drawn on the bottom left of the image if non-empty.
	Caption string
	// Captioner draws Caption. If nil a default white-on-black captioner is used.
	Captioner *Captioner
}

// WritePNG renders k over cfg.Domain and encodes the result as PNG to w.
func WritePNG(w io.Writer, k gleval.Kernel, cfg PNGConfig, userData any) error {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return errors.New("invalid image dimensions")
	}
	img := image.NewRGBA(image.Rect(0, 0, cfg.Width, cfg.Height))
	renderer, err := NewImageRenderer(max(4096, cfg.Width), cfg.Colors)
	if err != nil {
		return err
	}
	err = renderer.Render(k, cfg.Domain, img, userData)
	if err != nil {
		return err
	}
	if cfg.Caption != "" {
		c := cfg.Captioner
		if c == nil {
			c, err = NewCaptioner(CaptionConfig{Background: image.Black.C})
			if err != nil {
				return err
			}
		}
		c.Draw(img, cfg.Caption)
	}
	return png.Encode(w, img)
}
