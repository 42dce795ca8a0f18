// Package notificationrepo persists the agent's notification feed.
package notificationrepo

import (
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/notification"

	"github.com/google/uuid"
)

// NotificationDTO is ordered by Seq, the insertion order.
type NotificationDTO struct {
	Seq       int64     `gorm:"primaryKey;autoIncrement"`
	ID        uuid.UUID `gorm:"type:uuid;uniqueIndex"`
	Type      string
	Message   string
	CreatedAt time.Time
}

func (NotificationDTO) TableName() string {
	return "notifications"
}

func fromDomain(n notification.Notification) NotificationDTO {
	return NotificationDTO{
		ID:        n.ID().Bytes(),
		Type:      n.Type().String(),
		Message:   n.Message(),
		CreatedAt: n.Time().UTC(),
	}
}

func toDomain(dto NotificationDTO) (notification.Notification, error) {
	id, err := kernel.UUIDFromGoogle(dto.ID)
	if err != nil {
		return notification.Notification{}, err
	}
	kind, err := notification.ParseType(dto.Type)
	if err != nil {
		return notification.Notification{}, err
	}
	return notification.NewNotification(id, kind, dto.Message, dto.CreatedAt)
}
