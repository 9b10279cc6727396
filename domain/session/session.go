package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/prasetyowira/qrstudio/constant"
	"github.com/prasetyowira/qrstudio/domain/export"
	"github.com/prasetyowira/qrstudio/domain/style"
	"github.com/prasetyowira/qrstudio/infrastructure/logger"
)

// ErrNotFound is returned for unknown or evicted session ids
var ErrNotFound = errors.New(constant.ErrSessionNotFound)

// Session is one open view: a style store, an input set, a busy flag and a
// notification feed.
type Session struct {
	ID        string
	Store     *style.Store
	Guard     *export.Guard
	Feed      *Feed
	CreatedAt time.Time
}

// State is the JSON view of a session
type State struct {
	ID        string       `json:"id"`
	Config    style.Config `json:"config"`
	Draft     style.Draft  `json:"draft"`
	Mode      style.Mode   `json:"mode"`
	Single    string       `json:"single"`
	Multi     string       `json:"multi"`
	Inputs    []string     `json:"inputs"`
	Busy      bool         `json:"busy"`
	CreatedAt time.Time    `json:"created_at"`
}

// State returns a consistent-enough copy of the session for display
func (s *Session) State() State {
	return State{
		ID:        s.ID,
		Config:    s.Store.Config(),
		Draft:     s.Store.Draft(),
		Mode:      s.Store.Mode(),
		Single:    s.Store.SingleText(),
		Multi:     s.Store.MultiText(),
		Inputs:    s.Store.Inputs(),
		Busy:      s.Guard.Busy(),
		CreatedAt: s.CreatedAt,
	}
}

// Cache is the storage the manager keeps sessions in. Entries dropped for
// capacity are reported through OnEvict.
type Cache interface {
	Get(namespace, key string) (interface{}, bool)
	Set(namespace, key string, value interface{})
	Invalidate(namespace, key string)
	OnEvict(fn func(namespace, key string, value interface{}))
}

// Manager creates and looks up sessions
type Manager struct {
	cache    Cache
	defaults style.Config
}

// NewManager creates a manager whose sessions start with defaults
func NewManager(cache Cache, defaults style.Config) *Manager {
	cache.OnEvict(func(namespace, key string, value interface{}) {
		if namespace != constant.SessionNamespace {
			return
		}
		data := map[string]interface{}{
			constant.DataSessionID: key,
		}
		if s, ok := value.(*Session); ok {
			data[constant.DataAge] = time.Since(s.CreatedAt).String()
		}
		logger.Info("Session evicted", logger.LoggerInfo{
			ContextFunction: constant.CtxSession,
			Data:            data,
		})
	})
	return &Manager{cache: cache, defaults: defaults.Normalize()}
}

// Create opens a new session
func (m *Manager) Create(ctx context.Context) *Session {
	s := &Session{
		ID:        uuid.New().String(),
		Store:     style.NewStore(m.defaults),
		Guard:     &export.Guard{},
		Feed:      NewFeed(FeedCapacity),
		CreatedAt: time.Now(),
	}
	m.cache.Set(constant.SessionNamespace, s.ID, s)

	logger.CtxInfo(ctx, "Session created", logger.LoggerInfo{
		ContextFunction: constant.CtxSession,
		Data: map[string]interface{}{
			constant.DataSessionID: s.ID,
		},
	})
	return s
}

// Get returns the session with the given id
func (m *Manager) Get(ctx context.Context, id string) (*Session, error) {
	v, found := m.cache.Get(constant.SessionNamespace, id)
	if !found {
		logger.CtxWarn(ctx, "Session not found", logger.LoggerInfo{
			ContextFunction: constant.CtxSession,
			Error: &logger.CustomError{
				Code:    constant.ErrCodeSessionNotFound,
				Message: constant.ErrSessionNotFound,
				Type:    constant.ErrTypeValidation,
			},
			Data: map[string]interface{}{
				constant.DataSessionID: id,
			},
		})
		return nil, ErrNotFound
	}
	s, ok := v.(*Session)
	if !ok {
		return nil, ErrNotFound
	}
	return s, nil
}

// Close drops the session
func (m *Manager) Close(ctx context.Context, id string) {
	m.cache.Invalidate(constant.SessionNamespace, id)
	logger.CtxDebug(ctx, "Session closed", logger.LoggerInfo{
		ContextFunction: constant.CtxSession,
		Data: map[string]interface{}{
			constant.DataSessionID: id,
		},
	})
}
