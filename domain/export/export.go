package export

import (
	"context"
	"encoding/base64"
	"errors"
	"image"
	"io"

	"github.com/prasetyowira/qrstudio/constant"
	"github.com/prasetyowira/qrstudio/domain/style"
)

// Sentinel errors returned by the export pipeline
var (
	ErrNoInputs       = errors.New(constant.ErrNoInputs)
	ErrJobInFlight    = errors.New(constant.ErrJobInFlight)
	ErrEmptyGlyph     = errors.New(constant.ErrEmptyGlyph)
	ErrSymbolTooDense = errors.New(constant.ErrSymbolTooDense)
)

// Transparent is the background used for glyphs drawn onto a composite
const Transparent = "transparent"

// Multi-mode preview grid cells are small fixed-level vector glyphs
const (
	PreviewItemSize  = 128
	PreviewItemLevel = style.LevelQuartile
)

// PreviewItem is one cell of the multi-mode preview grid
type PreviewItem struct {
	Index   int    `json:"index"`
	Value   string `json:"value"`
	DataURI string `json:"data_uri,omitempty"`
	Error   string `json:"error,omitempty"`
}

// GlyphKind tells whether a glyph carries raster pixels or vector markup
type GlyphKind int

const (
	KindRaster GlyphKind = iota
	KindVector
)

func (k GlyphKind) String() string {
	if k == KindVector {
		return "vector"
	}
	return "raster"
}

// KindFor returns the glyph kind a format renders as
func KindFor(f style.Format) GlyphKind {
	if f == style.FormatSVG {
		return KindVector
	}
	return KindRaster
}

// Glyph is the rendered QR symbol for one value
type Glyph struct {
	Kind  GlyphKind
	Size  int
	Image image.Image
	SVG   []byte
}

// Usable reports whether the glyph has content for its kind
func (g *Glyph) Usable() bool {
	if g == nil {
		return false
	}
	if g.Kind == KindVector {
		return len(g.SVG) > 0
	}
	return g.Image != nil && !g.Image.Bounds().Empty()
}

// DataURI encodes vector markup as a base64 data URI. Raster glyphs return "".
func (g *Glyph) DataURI() string {
	if g == nil || g.Kind != KindVector {
		return ""
	}
	return constant.DataURIPrefix + constant.ContentTypeSVG + constant.DataURIBase64 +
		base64.StdEncoding.EncodeToString(g.SVG)
}

// RenderRequest describes one glyph to render
type RenderRequest struct {
	Value      string
	Size       int
	Foreground string
	Background string
	Level      style.Level
	Kind       GlyphKind
}

// Renderer draws QR glyphs. Identical requests yield identical glyphs.
type Renderer interface {
	Render(ctx context.Context, req RenderRequest) (*Glyph, error)
}

// Rasterizer decodes an SVG data URI into pixels of the given edge length
type Rasterizer interface {
	Rasterize(ctx context.Context, dataURI string, size int) (image.Image, error)
}

// Compositor draws a glyph onto a padded, background-filled surface and
// encodes surfaces to raster formats.
type Compositor interface {
	Composite(glyph image.Image, cfg style.Config) (image.Image, error)
	Encode(w io.Writer, img image.Image, format style.Format) error
}

// Archive collects named entries and serializes them into one blob
type Archive interface {
	AddEntry(name string, data []byte) error
	Serialize(ctx context.Context) ([]byte, error)
}

// Archiver creates empty archives
type Archiver interface {
	NewArchive() (Archive, error)
}

// Recorder keeps a summary of finished jobs
type Recorder interface {
	Record(ctx context.Context, result Result) error
}

// GlyphCache holds recently rendered glyphs
type GlyphCache interface {
	Get(namespace, key string) (interface{}, bool)
	Set(namespace, key string, value interface{})
}

// Severity of a user notification
type Severity string

const (
	SeverityDefault     Severity = "default"
	SeverityDestructive Severity = "destructive"
)

// Notification is a fire-and-forget message for the user
type Notification struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Severity    Severity `json:"severity"`
}

// Notifier delivers notifications to the user
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

// NotifierFunc adapts a function to Notifier
type NotifierFunc func(ctx context.Context, n Notification)

// Notify calls f
func (f NotifierFunc) Notify(ctx context.Context, n Notification) {
	f(ctx, n)
}

// File is a finished download
type File struct {
	Name        string
	ContentType string
	Data        []byte
}
