package qrcode

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/prasetyowira/qrstudio/constant"
	"github.com/prasetyowira/qrstudio/domain/export"
	"github.com/prasetyowira/qrstudio/domain/style"
	"github.com/prasetyowira/qrstudio/infrastructure/logger"
	"github.com/prasetyowira/qrstudio/infrastructure/raster"
	"github.com/skip2/go-qrcode"
)

// Generator handles QR code generation
type Generator struct{}

// NewGenerator creates a new QR code generator
func NewGenerator() *Generator {
	return &Generator{}
}

func recoveryLevel(l style.Level) qrcode.RecoveryLevel {
	switch l {
	case style.LevelLow:
		return qrcode.Low
	case style.LevelMedium:
		return qrcode.Medium
	case style.LevelHigh:
		return qrcode.Highest
	default:
		return qrcode.High
	}
}

// Render draws the QR symbol for req.Value without a quiet zone. Raster
// glyphs are exactly req.Size pixels square; vector glyphs use a
// req.Size viewport.
func (g *Generator) Render(ctx context.Context, req export.RenderRequest) (*export.Glyph, error) {
	fg, err := raster.ParseColor(req.Foreground)
	if err != nil {
		return nil, err
	}
	bg, err := raster.ParseColor(req.Background)
	if err != nil {
		return nil, err
	}

	q, err := qrcode.New(req.Value, recoveryLevel(req.Level))
	if err != nil {
		logger.CtxError(ctx, "Failed to encode QR code", logger.LoggerInfo{
			ContextFunction: constant.CtxRender,
			Error: &logger.CustomError{
				Code:    constant.ErrCodeRender,
				Message: err.Error(),
				Type:    constant.ErrTypeRender,
			},
			Data: map[string]interface{}{
				constant.DataLevel: req.Level,
				constant.DataSize:  len(req.Value),
			},
		})
		return nil, fmt.Errorf("encoding %q: %w", req.Value, err)
	}
	q.DisableBorder = true
	q.ForegroundColor = fg
	q.BackgroundColor = bg

	// skip2 grows Image past req.Size for dense symbols
	bitmap := q.Bitmap()
	if modules := len(bitmap); modules > req.Size {
		logger.CtxWarn(ctx, "QR symbol does not fit the requested size", logger.LoggerInfo{
			ContextFunction: constant.CtxRender,
			Error: &logger.CustomError{
				Code:    constant.ErrCodeSymbolTooDense,
				Message: constant.ErrSymbolTooDense,
				Type:    constant.ErrTypeRender,
			},
			Data: map[string]interface{}{
				constant.DataModules:   modules,
				constant.DataPixelSize: req.Size,
			},
		})
		return nil, fmt.Errorf("%w: %d modules, %d pixels", export.ErrSymbolTooDense, modules, req.Size)
	}

	if req.Kind == export.KindVector {
		return &export.Glyph{
			Kind: export.KindVector,
			Size: req.Size,
			SVG:  svgMarkup(bitmap, req.Size, req.Foreground, req.Background),
		}, nil
	}

	return &export.Glyph{
		Kind:  export.KindRaster,
		Size:  req.Size,
		Image: q.Image(req.Size),
	}, nil
}

// svgMarkup draws the dark modules of bitmap as a single path in a
// modules-wide viewBox scaled to size.
func svgMarkup(bitmap [][]bool, size int, fg, bg string) []byte {
	modules := len(bitmap)
	fgc, _ := raster.ParseColor(fg)

	var b strings.Builder
	b.WriteString(`<svg xmlns="http://www.w3.org/2000/svg" width="`)
	b.WriteString(strconv.Itoa(size))
	b.WriteString(`" height="`)
	b.WriteString(strconv.Itoa(size))
	b.WriteString(`" viewBox="0 0 `)
	b.WriteString(strconv.Itoa(modules))
	b.WriteByte(' ')
	b.WriteString(strconv.Itoa(modules))
	b.WriteString(`" shape-rendering="crispEdges">`)

	if bgc, err := raster.ParseColor(bg); err == nil && bgc.A > 0 {
		fmt.Fprintf(&b, `<rect width="%d" height="%d" fill="%s" fill-opacity="%s"/>`,
			modules, modules, raster.HexRGB(bgc), opacity(bgc.A))
	}

	fmt.Fprintf(&b, `<path fill="%s" fill-opacity="%s" d="`, raster.HexRGB(fgc), opacity(fgc.A))
	for y, row := range bitmap {
		for x := 0; x < len(row); x++ {
			if !row[x] {
				continue
			}
			run := 1
			for x+run < len(row) && row[x+run] {
				run++
			}
			fmt.Fprintf(&b, "M%d %dh%dv1h-%dz", x, y, run, run)
			x += run - 1
		}
	}
	b.WriteString(`"/></svg>`)
	return []byte(b.String())
}

func opacity(a uint8) string {
	return strconv.FormatFloat(float64(a)/255, 'f', 3, 64)
}
