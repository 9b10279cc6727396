package session

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	"github.com/prasetyowira/qrstudio/constant"
	"github.com/prasetyowira/qrstudio/domain/export"
	"github.com/prasetyowira/qrstudio/domain/style"
	"github.com/prasetyowira/qrstudio/infrastructure/cache"
	"github.com/prasetyowira/qrstudio/infrastructure/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestManager_CreateAndGet(t *testing.T) {
	// Arrange
	defaults := style.DefaultConfig()
	defaults.PixelSize = 512
	m := NewManager(cache.NewNamespaceLRU(10), defaults)
	ctx := context.Background()

	// Act
	s := m.Create(ctx)
	got, err := m.Get(ctx, s.ID)

	// Assert
	require.NoError(t, err)
	assert.Same(t, s, got)
	assert.Equal(t, 512, got.Store.Config().PixelSize)
	assert.False(t, got.Guard.Busy())
	assert.Equal(t, style.ModeSingle, got.State().Mode)
	assert.Equal(t, []string{"https://google.com", "https://facebook.com", "https://twitter.com"}, got.State().Inputs)
}

func TestManager_GetUnknown(t *testing.T) {
	m := NewManager(cache.NewNamespaceLRU(10), style.DefaultConfig())

	s, err := m.Get(context.Background(), "missing")

	assert.ErrorIs(t, err, ErrNotFound)
	assert.Nil(t, s)
}

func TestManager_EvictsOldestSession(t *testing.T) {
	m := NewManager(cache.NewNamespaceLRU(1), style.DefaultConfig())
	ctx := context.Background()

	first := m.Create(ctx)
	second := m.Create(ctx)

	_, err := m.Get(ctx, first.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = m.Get(ctx, second.ID)
	assert.NoError(t, err)
}

func TestManager_LogsEvictedSession(t *testing.T) {
	// Arrange
	core, logs := observer.New(zapcore.InfoLevel)
	logger.SetLogger(zap.New(core))
	t.Cleanup(func() { logger.SetLogger(nil) })
	m := NewManager(cache.NewNamespaceLRU(1), style.DefaultConfig())
	ctx := context.Background()
	first := m.Create(ctx)

	// Act
	m.Create(ctx)

	// Assert
	entries := logs.FilterMessage("Session evicted").All()
	require.Len(t, entries, 1)
	assert.Equal(t, first.ID, entries[0].ContextMap()[constant.DataSessionID])
	assert.Contains(t, entries[0].ContextMap(), constant.DataAge)
}

func TestManager_CloseIsNotAnEviction(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	logger.SetLogger(zap.New(core))
	t.Cleanup(func() { logger.SetLogger(nil) })
	m := NewManager(cache.NewNamespaceLRU(1), style.DefaultConfig())
	ctx := context.Background()

	m.Close(ctx, m.Create(ctx).ID)

	assert.Zero(t, logs.FilterMessage("Session evicted").Len())
}

func TestManager_Close(t *testing.T) {
	m := NewManager(cache.NewNamespaceLRU(10), style.DefaultConfig())
	ctx := context.Background()
	s := m.Create(ctx)

	m.Close(ctx, s.ID)

	_, err := m.Get(ctx, s.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSessions_AreIndependent(t *testing.T) {
	m := NewManager(cache.NewNamespaceLRU(10), style.DefaultConfig())
	ctx := context.Background()
	a := m.Create(ctx)
	b := m.Create(ctx)

	a.Store.SetMode(style.ModeMulti)
	assert.True(t, a.Guard.TryAcquire())

	assert.Equal(t, style.ModeSingle, b.Store.Mode())
	assert.False(t, b.Guard.Busy())
}

func TestFeed_DrainOrder(t *testing.T) {
	// Arrange
	f := NewFeed(FeedCapacity)
	ctx := context.Background()

	// Act
	f.Notify(ctx, export.Notification{Title: "first"})
	f.Notify(ctx, export.Notification{Title: "second", Severity: export.SeverityDestructive})
	entries := f.Drain()

	// Assert
	require.Len(t, entries, 2)
	assert.Equal(t, "first", entries[0].Title)
	assert.Equal(t, export.SeverityDestructive, entries[1].Severity)
	assert.False(t, entries[0].At.IsZero())
	assert.Equal(t, 0, f.Len())
	assert.Empty(t, f.Drain())
}

func TestFeed_DropsOldest(t *testing.T) {
	f := NewFeed(3)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		f.Notify(ctx, export.Notification{Title: fmt.Sprint(i)})
	}
	entries := f.Drain()

	require.Len(t, entries, 3)
	assert.Equal(t, "2", entries[0].Title)
	assert.Equal(t, "4", entries[2].Title)
}

func TestConsoleNotifier(t *testing.T) {
	var buf bytes.Buffer
	n := NewConsoleNotifier(&buf)

	n.Notify(context.Background(), export.Notification{Title: "Zipping it up!", Description: "Preparing 3 QR codes for download..."})
	n.Notify(context.Background(), export.Notification{Title: "Error", Description: "boom", Severity: export.SeverityDestructive})

	assert.Equal(t, "• Zipping it up!: Preparing 3 QR codes for download...\n✗ Error: boom\n", buf.String())
}
