package style

import (
	"errors"
	"strconv"
	"strings"

	"github.com/prasetyowira/qrstudio/constant"
)

// Format is the requested output image format
type Format string

const (
	FormatPNG  Format = "png"
	FormatJPEG Format = "jpeg"
	FormatSVG  Format = "svg"
)

// ParseFormat parses a format name, case-insensitively
func ParseFormat(s string) (Format, bool) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatPNG:
		return FormatPNG, true
	case FormatJPEG, "jpg":
		return FormatJPEG, true
	case FormatSVG:
		return FormatSVG, true
	}
	return "", false
}

// Raster returns the format used for padded exports. Padding and background
// compositing are raster-only, so svg falls back to png.
func (f Format) Raster() Format {
	if f == FormatJPEG {
		return FormatJPEG
	}
	return FormatPNG
}

// Extension returns the file extension, without the dot
func (f Format) Extension() string {
	return string(f)
}

// ContentType returns the MIME type for the format
func (f Format) ContentType() string {
	switch f {
	case FormatJPEG:
		return constant.ContentTypeJPEG
	case FormatSVG:
		return constant.ContentTypeSVG
	default:
		return constant.ContentTypePNG
	}
}

// Level is the QR error-correction level
type Level string

const (
	LevelLow      Level = "L"
	LevelMedium   Level = "M"
	LevelQuartile Level = "Q"
	LevelHigh     Level = "H"
)

// ParseLevel parses an error-correction level letter
func ParseLevel(s string) (Level, bool) {
	switch Level(strings.ToUpper(strings.TrimSpace(s))) {
	case LevelLow:
		return LevelLow, true
	case LevelMedium:
		return LevelMedium, true
	case LevelQuartile:
		return LevelQuartile, true
	case LevelHigh:
		return LevelHigh, true
	}
	return "", false
}

// Mode is the input mode of a view
type Mode string

const (
	ModeSingle Mode = "single"
	ModeMulti  Mode = "multi"
)

// ParseMode parses an input mode name
func ParseMode(s string) (Mode, bool) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeSingle:
		return ModeSingle, true
	case ModeMulti, "multiple":
		return ModeMulti, true
	}
	return "", false
}

// Bounds and defaults for style settings
const (
	MinPixelSize = 64
	MaxPixelSize = 1024
	MinPadding   = 0
	MaxPadding   = 40

	DefaultPixelSize  = 256
	DefaultPadding    = 10
	DefaultForeground = "#000000"
	DefaultBackground = "#ffffff"
	DefaultLevel      = LevelQuartile
	DefaultFormat     = FormatPNG

	DefaultSingleText = "https://example.com"
	DefaultMultiText  = "https://google.com\nhttps://facebook.com\nhttps://twitter.com"
)

// Config is a committed style configuration
type Config struct {
	PixelSize  int    `json:"pixel_size"`
	Padding    int    `json:"padding"`
	Foreground string `json:"foreground"`
	Background string `json:"background"`
	Level      Level  `json:"level"`
	Format     Format `json:"format"`
}

// DefaultConfig returns the style a new view starts with
func DefaultConfig() Config {
	return Config{
		PixelSize:  DefaultPixelSize,
		Padding:    DefaultPadding,
		Foreground: DefaultForeground,
		Background: DefaultBackground,
		Level:      DefaultLevel,
		Format:     DefaultFormat,
	}
}

// Normalize clamps numeric fields and replaces unknown enum values and
// empty colors with defaults.
func (c Config) Normalize() Config {
	c.PixelSize = ClampPixelSize(c.PixelSize)
	c.Padding = ClampPadding(c.Padding)
	if strings.TrimSpace(c.Foreground) == "" {
		c.Foreground = DefaultForeground
	}
	if strings.TrimSpace(c.Background) == "" {
		c.Background = DefaultBackground
	}
	if l, ok := ParseLevel(string(c.Level)); ok {
		c.Level = l
	} else {
		c.Level = DefaultLevel
	}
	if f, ok := ParseFormat(string(c.Format)); ok {
		c.Format = f
	} else {
		c.Format = DefaultFormat
	}
	return c
}

// SurfaceSize is the edge length of the padded composite surface
func (c Config) SurfaceSize() int {
	return c.PixelSize + 2*c.Padding
}

// ClampPixelSize clamps n to [MinPixelSize, MaxPixelSize]
func ClampPixelSize(n int) int {
	return clamp(n, MinPixelSize, MaxPixelSize)
}

// ClampPadding clamps n to [MinPadding, MaxPadding]
func ClampPadding(n int) int {
	return clamp(n, MinPadding, MaxPadding)
}

func clamp(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}

// ParseDimension parses free-text numeric input and clamps it to [lo, hi].
// Text that is not an integer yields committed unchanged. Integers too large
// for int still clamp to the bound on their side.
func ParseDimension(text string, committed, lo, hi int) int {
	n, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			if strings.HasPrefix(strings.TrimSpace(text), "-") {
				return lo
			}
			return hi
		}
		return committed
	}
	return clamp(n, lo, hi)
}

// SplitLines derives the bulk input list from raw multi-line text: lines are
// trimmed and blank lines dropped, order preserved.
func SplitLines(raw string) []string {
	lines := strings.Split(raw, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		out = append(out, line)
	}
	return out
}
