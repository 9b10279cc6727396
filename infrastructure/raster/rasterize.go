package raster

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"strings"

	"github.com/prasetyowira/qrstudio/constant"
	"github.com/prasetyowira/qrstudio/infrastructure/logger"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
)

// ErrUnsupportedDataURI is returned for data URIs that are not base64 svg
var ErrUnsupportedDataURI = errors.New(constant.ErrUnsupportedDataURI)

// SVGRasterizer draws svg data URIs into RGBA images
type SVGRasterizer struct{}

// NewSVGRasterizer creates a new svg rasterizer
func NewSVGRasterizer() *SVGRasterizer {
	return &SVGRasterizer{}
}

// DecodeDataURI returns the payload of a base64 image/svg+xml data URI
func DecodeDataURI(dataURI string) ([]byte, error) {
	prefix := constant.DataURIPrefix + constant.ContentTypeSVG + constant.DataURIBase64
	if !strings.HasPrefix(dataURI, prefix) {
		return nil, ErrUnsupportedDataURI
	}
	data, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(dataURI, prefix))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedDataURI, err)
	}
	return data, nil
}

// Rasterize decodes the data URI and draws the svg scaled to size x size
func (r *SVGRasterizer) Rasterize(ctx context.Context, dataURI string, size int) (image.Image, error) {
	data, err := DecodeDataURI(dataURI)
	if err != nil {
		return nil, err
	}

	icon, err := oksvg.ReadIconStream(bytes.NewReader(data), oksvg.IgnoreErrorMode)
	if err != nil {
		logger.CtxError(ctx, "Failed to parse svg", logger.LoggerInfo{
			ContextFunction: constant.CtxRasterize,
			Error: &logger.CustomError{
				Code:    constant.ErrCodeRasterize,
				Message: err.Error(),
				Type:    constant.ErrTypeRender,
			},
		})
		return nil, fmt.Errorf("parsing svg: %w", err)
	}

	icon.SetTarget(0, 0, float64(size), float64(size))
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	scanner := rasterx.NewScannerGV(size, size, img, img.Bounds())
	icon.Draw(rasterx.NewDasher(size, size, scanner), 1.0)

	logger.CtxDebug(ctx, "Rasterized svg glyph", logger.LoggerInfo{
		ContextFunction: constant.CtxRasterize,
		Data: map[string]interface{}{
			constant.DataPixelSize: size,
			constant.DataSize:      len(data),
		},
	})

	return img, nil
}
