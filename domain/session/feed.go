package session

import (
	"context"
	"sync"
	"time"

	"github.com/prasetyowira/qrstudio/constant"
	"github.com/prasetyowira/qrstudio/domain/export"
	"github.com/prasetyowira/qrstudio/infrastructure/logger"
)

// FeedCapacity is the number of notifications a feed keeps
const FeedCapacity = 50

// Entry is a notification as delivered to a session
type Entry struct {
	export.Notification
	At time.Time `json:"at"`
}

// Feed is a bounded notification queue. When full the oldest entry is
// dropped.
type Feed struct {
	mu      sync.Mutex
	entries []Entry
	cap     int
}

// NewFeed creates a feed keeping at most capacity entries
func NewFeed(capacity int) *Feed {
	if capacity < 1 {
		capacity = FeedCapacity
	}
	return &Feed{cap: capacity}
}

// Notify implements export.Notifier
func (f *Feed) Notify(ctx context.Context, n export.Notification) {
	f.mu.Lock()
	f.entries = append(f.entries, Entry{Notification: n, At: time.Now()})
	if over := len(f.entries) - f.cap; over > 0 {
		f.entries = append([]Entry(nil), f.entries[over:]...)
	}
	f.mu.Unlock()

	logger.CtxDebug(ctx, "Notification queued", logger.LoggerInfo{
		ContextFunction: constant.CtxNotify,
		Data: map[string]interface{}{
			constant.DataKind: n.Severity,
			constant.DataData: n.Title,
		},
	})
}

// Drain returns queued notifications oldest first and empties the feed
func (f *Feed) Drain() []Entry {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := f.entries
	f.entries = nil
	if out == nil {
		out = []Entry{}
	}
	return out
}

// Len returns the number of queued notifications
func (f *Feed) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.entries)
}
