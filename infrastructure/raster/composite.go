package raster

import (
	"fmt"
	"image"
	"io"

	"github.com/disintegration/imaging"
	"github.com/prasetyowira/qrstudio/constant"
	"github.com/prasetyowira/qrstudio/domain/style"
	"github.com/prasetyowira/qrstudio/infrastructure/logger"
	xdraw "golang.org/x/image/draw"
)

// DefaultJPEGQuality is used when a Compositor has no quality set
const DefaultJPEGQuality = 92

// Compositor places glyphs on padded, background-filled surfaces
type Compositor struct {
	JPEGQuality int
}

// NewCompositor creates a compositor encoding jpeg at the given quality
func NewCompositor(jpegQuality int) *Compositor {
	if jpegQuality <= 0 || jpegQuality > 100 {
		jpegQuality = DefaultJPEGQuality
	}
	return &Compositor{JPEGQuality: jpegQuality}
}

// Composite fills a (PixelSize + 2*Padding) square with the background color
// and draws the glyph scaled to PixelSize at offset (Padding, Padding).
func (c *Compositor) Composite(glyph image.Image, cfg style.Config) (image.Image, error) {
	if glyph == nil || glyph.Bounds().Empty() {
		return nil, fmt.Errorf("compositing: empty glyph")
	}
	bg, err := ParseColor(cfg.Background)
	if err != nil {
		logger.Warn("Invalid background color", logger.LoggerInfo{
			ContextFunction: constant.CtxComposite,
			Error: &logger.CustomError{
				Code:    constant.ErrCodeComposite,
				Message: err.Error(),
				Type:    constant.ErrTypeRender,
			},
		})
		return nil, err
	}

	n := cfg.SurfaceSize()
	surface := imaging.New(n, n, bg)
	target := image.Rect(cfg.Padding, cfg.Padding, cfg.Padding+cfg.PixelSize, cfg.Padding+cfg.PixelSize)
	xdraw.NearestNeighbor.Scale(surface, target, glyph, glyph.Bounds(), xdraw.Over, nil)
	return surface, nil
}

// Encode writes img as png or jpeg. svg encodes as png.
func (c *Compositor) Encode(w io.Writer, img image.Image, format style.Format) error {
	switch format.Raster() {
	case style.FormatJPEG:
		q := c.JPEGQuality
		if q <= 0 {
			q = DefaultJPEGQuality
		}
		return imaging.Encode(w, img, imaging.JPEG, imaging.JPEGQuality(q))
	default:
		return imaging.Encode(w, img, imaging.PNG)
	}
}
