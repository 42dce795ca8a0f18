package memory

import (
	"context"

	"fulfillment/internal/core/domain/model/notification"
)

// NotificationRepository keeps every feed entry in append order; the feed, not
// the repository, enforces a capacity.
type NotificationRepository struct {
	uow *UnitOfWork
}

func (r *NotificationRepository) Add(_ context.Context, n notification.Notification) error {
	if err := n.Validate(); err != nil {
		return err
	}
	return r.uow.update(func(st *state) error {
		st.notifications = append(st.notifications, n)
		return nil
	})
}

// ListRecent returns the newest limit entries, oldest first. limit <= 0 returns all.
func (r *NotificationRepository) ListRecent(_ context.Context, limit int) ([]notification.Notification, error) {
	var out []notification.Notification
	_ = r.uow.view(func(st *state) error {
		from := 0
		if limit > 0 && limit < len(st.notifications) {
			from = len(st.notifications) - limit
		}
		out = append(out, st.notifications[from:]...)
		return nil
	})
	return out, nil
}

func (r *NotificationRepository) Clear(context.Context) error {
	return r.uow.update(func(st *state) error {
		st.notifications = nil
		return nil
	})
}
