// Package feed is the agent's notification feed: an ordered, bounded list of
// human-readable events emitted by the other components.
package feed

import (
	"context"
	"fmt"
	"sync"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/notification"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/metrics"
	"fulfillment/internal/pkg/clock"
	"fulfillment/internal/pkg/errs"

	"go.uber.org/zap"
)

// DefaultCapacity bounds the in-memory feed when no capacity is configured.
const DefaultCapacity = 200

// Feed keeps the newest entries in memory, oldest evicted first. Storage and
// publishing are best-effort: failures are logged and never reach the caller
// of Notify.
type Feed struct {
	mu       sync.Mutex
	entries  []notification.Notification
	capacity int

	clock     clock.Clock
	repo      ports.NotificationRepository
	publisher ports.NotificationPublisher
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

// NewFeed builds a feed. repo and publisher may be nil.
func NewFeed(
	capacity int,
	clk clock.Clock,
	repo ports.NotificationRepository,
	publisher ports.NotificationPublisher,
	m *metrics.Metrics,
	logger *zap.Logger,
) (*Feed, error) {
	if capacity <= 0 {
		return nil, errs.NewValueIsInvalidErrorWithCause("feed capacity", fmt.Errorf("%d is not positive", capacity))
	}
	if clk == nil {
		return nil, errs.NewValueIsRequiredError("clock")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Feed{
		capacity:  capacity,
		clock:     clk,
		repo:      repo,
		publisher: publisher,
		metrics:   m,
		logger:    logger.With(zap.String("component", "feed")),
	}, nil
}

// Notify appends an entry stamped with the current UTC time and a fresh id.
func (f *Feed) Notify(ctx context.Context, kind notification.Type, message string) notification.Notification {
	n, err := notification.NewNotification(kernel.NewUUID(), kind, message, f.clock.Now())
	if err != nil {
		f.logger.Error("dropping malformed notification", zap.String("message", message), zap.Error(err))
		return notification.Notification{}
	}

	f.mu.Lock()
	f.entries = append(f.entries, n)
	if over := len(f.entries) - f.capacity; over > 0 {
		f.entries = append(f.entries[:0:0], f.entries[over:]...)
	}
	f.mu.Unlock()

	f.metrics.NotificationAppended(kind.String())

	if f.repo != nil {
		if err = f.repo.Add(ctx, n); err != nil {
			f.logger.Warn("failed to store notification", zap.Stringer("id", n.ID()), zap.Error(err))
		}
	}
	if f.publisher != nil {
		if err = f.publisher.Publish(ctx, n); err != nil {
			f.logger.Warn("failed to publish notification", zap.Stringer("id", n.ID()), zap.Error(err))
		}
	}
	return n
}

// Info appends an info entry with a formatted message.
func (f *Feed) Info(ctx context.Context, format string, args ...any) {
	f.Notify(ctx, notification.Info, fmt.Sprintf(format, args...))
}

// Success appends a success entry with a formatted message.
func (f *Feed) Success(ctx context.Context, format string, args ...any) {
	f.Notify(ctx, notification.Success, fmt.Sprintf(format, args...))
}

// Warning appends a warning entry with a formatted message.
func (f *Feed) Warning(ctx context.Context, format string, args ...any) {
	f.Notify(ctx, notification.Warning, fmt.Sprintf(format, args...))
}

// Error appends an error entry with a formatted message.
func (f *Feed) Error(ctx context.Context, format string, args ...any) {
	f.Notify(ctx, notification.Error, fmt.Sprintf(format, args...))
}

// List returns the newest limit entries, oldest first. limit <= 0 returns everything.
func (f *Feed) List(limit int) []notification.Notification {
	f.mu.Lock()
	defer f.mu.Unlock()

	start := 0
	if limit > 0 && limit < len(f.entries) {
		start = len(f.entries) - limit
	}
	return append([]notification.Notification(nil), f.entries[start:]...)
}

// Len is the number of entries held in memory.
func (f *Feed) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.entries)
}

// Clear empties the feed and its storage.
func (f *Feed) Clear(ctx context.Context) error {
	f.mu.Lock()
	f.entries = nil
	f.mu.Unlock()

	if f.repo == nil {
		return nil
	}
	return f.repo.Clear(ctx)
}

// Load replaces the in-memory entries with the newest stored ones. Used at startup.
func (f *Feed) Load(ctx context.Context) error {
	if f.repo == nil {
		return nil
	}
	stored, err := f.repo.ListRecent(ctx, f.capacity)
	if err != nil {
		return err
	}

	f.mu.Lock()
	f.entries = stored
	f.mu.Unlock()
	return nil
}
