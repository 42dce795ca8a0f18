package ports

import (
	"context"

	"fulfillment/internal/core/domain/model/notification"
)

// NotificationRepository keeps the feed across restarts.
type NotificationRepository interface {
	Add(ctx context.Context, n notification.Notification) error

	// ListRecent returns at most limit entries, oldest first.
	ListRecent(ctx context.Context, limit int) ([]notification.Notification, error)

	Clear(ctx context.Context) error
}

// NotificationPublisher fans feed entries out to telemetry consumers.
type NotificationPublisher interface {
	Publish(ctx context.Context, n notification.Notification) error
}

// Notifier appends a human-readable entry to the agent's feed. It never fails;
// delivery to storage and subscribers is best-effort.
type Notifier interface {
	Notify(ctx context.Context, kind notification.Type, message string) notification.Notification
}
