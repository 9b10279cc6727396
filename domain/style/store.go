package style

import (
	"context"
	"strconv"
	"strings"
	"sync"

	"github.com/prasetyowira/qrstudio/constant"
	"github.com/prasetyowira/qrstudio/infrastructure/logger"
)

// Draft holds the not-yet-applied text of the style controls
type Draft struct {
	PixelSize  string `json:"pixel_size"`
	Padding    string `json:"padding"`
	Foreground string `json:"foreground"`
	Background string `json:"background"`
	Level      string `json:"level"`
	Format     string `json:"format"`
}

// DraftUpdate is a partial edit of the draft; nil fields are left alone
type DraftUpdate struct {
	PixelSize  *string `json:"pixel_size,omitempty"`
	Padding    *string `json:"padding,omitempty"`
	Foreground *string `json:"foreground,omitempty"`
	Background *string `json:"background,omitempty"`
	Level      *string `json:"level,omitempty"`
	Format     *string `json:"format,omitempty"`
}

// Snapshot is an immutable copy of the store taken when a job starts
type Snapshot struct {
	Config Config   `json:"config"`
	Mode   Mode     `json:"mode"`
	Single string   `json:"single"`
	Inputs []string `json:"inputs"`
}

// Values returns the values a download of this snapshot exports
func (s Snapshot) Values() []string {
	if s.Mode == ModeMulti {
		return s.Inputs
	}
	return []string{s.Single}
}

// Store is the mutable configuration of one view. Edits go to the draft and
// only reach the committed Config on Apply.
type Store struct {
	mu        sync.RWMutex
	committed Config
	draft     Draft
	mode      Mode
	single    string
	multi     string
	inputs    []string
}

// NewStore creates a store with the given committed style and the default
// input texts.
func NewStore(initial Config) *Store {
	initial = initial.Normalize()
	s := &Store{
		committed: initial,
		draft:     draftOf(initial),
		mode:      ModeSingle,
		single:    DefaultSingleText,
		multi:     DefaultMultiText,
	}
	s.inputs = SplitLines(s.multi)
	return s
}

func draftOf(c Config) Draft {
	return Draft{
		PixelSize:  strconv.Itoa(c.PixelSize),
		Padding:    strconv.Itoa(c.Padding),
		Foreground: c.Foreground,
		Background: c.Background,
		Level:      string(c.Level),
		Format:     string(c.Format),
	}
}

// Config returns the committed style
func (s *Store) Config() Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.committed
}

// Draft returns the current draft text
func (s *Store) Draft() Draft {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.draft
}

// UpdateDraft stages edits without touching the committed style
func (s *Store) UpdateDraft(u DraftUpdate) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u.PixelSize != nil {
		s.draft.PixelSize = *u.PixelSize
	}
	if u.Padding != nil {
		s.draft.Padding = *u.Padding
	}
	if u.Foreground != nil {
		s.draft.Foreground = *u.Foreground
	}
	if u.Background != nil {
		s.draft.Background = *u.Background
	}
	if u.Level != nil {
		s.draft.Level = *u.Level
	}
	if u.Format != nil {
		s.draft.Format = *u.Format
	}
}

// Apply commits the draft. Size and padding are clamped; text that is not an
// integer keeps the committed value. Colors are taken as-is. The draft is
// reset to the committed values afterwards.
func (s *Store) Apply(ctx context.Context) Config {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.committed
	next := prev
	next.PixelSize = ParseDimension(s.draft.PixelSize, prev.PixelSize, MinPixelSize, MaxPixelSize)
	next.Padding = ParseDimension(s.draft.Padding, prev.Padding, MinPadding, MaxPadding)
	if fg := strings.TrimSpace(s.draft.Foreground); fg != "" {
		next.Foreground = fg
	}
	if bg := strings.TrimSpace(s.draft.Background); bg != "" {
		next.Background = bg
	}
	if l, ok := ParseLevel(s.draft.Level); ok {
		next.Level = l
	}
	if f, ok := ParseFormat(s.draft.Format); ok {
		next.Format = f
	}

	s.committed = next
	s.draft = draftOf(next)

	logger.CtxDebug(ctx, "Style changes applied", logger.LoggerInfo{
		ContextFunction: constant.CtxStore,
		Data: map[string]interface{}{
			constant.DataPixelSize: next.PixelSize,
			constant.DataPadding:   next.Padding,
			constant.DataLevel:     next.Level,
			constant.DataFormat:    next.Format,
		},
	})

	return next
}

// Mode returns the current input mode
func (s *Store) Mode() Mode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mode
}

// SetMode switches the input mode. Other fields are untouched.
func (s *Store) SetMode(m Mode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mode = m
}

// SingleText returns the single-mode input value
func (s *Store) SingleText() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.single
}

// SetSingleText replaces the single-mode input value
func (s *Store) SetSingleText(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.single = text
}

// MultiText returns the raw multi-line input
func (s *Store) MultiText() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.multi
}

// SetMultiText replaces the raw multi-line input and recomputes the list
func (s *Store) SetMultiText(raw string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.multi = raw
	s.inputs = SplitLines(raw)
}

// Inputs returns a copy of the derived bulk input list
func (s *Store) Inputs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.inputs...)
}

// Snapshot copies the committed state for an export job
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		Config: s.committed,
		Mode:   s.mode,
		Single: s.single,
		Inputs: append([]string(nil), s.inputs...),
	}
}
