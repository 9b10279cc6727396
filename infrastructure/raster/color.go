package raster

import (
	"errors"
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/prasetyowira/qrstudio/constant"
	"github.com/srwiley/oksvg"
)

// ErrInvalidColor is returned for color strings that cannot be parsed
var ErrInvalidColor = errors.New(constant.ErrInvalidColor)

// ParseColor parses any SVG 1.1 color (named colors, #rgb, #rrggbb, rgb()
// and hsl()) plus "transparent", #rgba and #rrggbbaa.
func ParseColor(s string) (c color.NRGBA, err error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch {
	case s == "":
		return color.NRGBA{}, fmt.Errorf("%w: empty", ErrInvalidColor)
	case s == "transparent", s == "none":
		return color.NRGBA{}, nil
	case strings.HasPrefix(s, "url"):
		return color.NRGBA{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	case strings.HasPrefix(s, "#") && (len(s) == 5 || len(s) == 9):
		return parseHexAlpha(s)
	}

	// oksvg indexes into rgb()/hsl() components without bounds checks
	defer func() {
		if r := recover(); r != nil {
			c, err = color.NRGBA{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
		}
	}()

	parsed, err := oksvg.ParseSVGColor(s)
	if err != nil || parsed == nil {
		return color.NRGBA{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	return color.NRGBAModel.Convert(parsed).(color.NRGBA), nil
}

func parseHexAlpha(s string) (color.NRGBA, error) {
	hex := s[1:]
	if len(hex) == 4 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2], hex[3], hex[3]})
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	return color.NRGBA{
		R: uint8(v >> 24),
		G: uint8(v >> 16),
		B: uint8(v >> 8),
		A: uint8(v),
	}, nil
}

// HexRGB formats the color channels as #rrggbb, ignoring alpha
func HexRGB(c color.NRGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
