package notificationrepo

import (
	"context"
	"slices"

	"fulfillment/internal/core/domain/model/notification"
	"fulfillment/internal/core/ports"

	"gorm.io/gorm"
)

var _ ports.NotificationRepository = (*GormNotificationRepository)(nil)

type GormNotificationRepository struct {
	db *gorm.DB
}

func NewGormNotificationRepository(db *gorm.DB) *GormNotificationRepository {
	return &GormNotificationRepository{db: db}
}

func (r *GormNotificationRepository) Add(ctx context.Context, n notification.Notification) error {
	if err := n.Validate(); err != nil {
		return err
	}
	dto := fromDomain(n)
	return r.db.WithContext(ctx).Create(&dto).Error
}

// ListRecent returns the newest limit entries, oldest first. A non-positive limit returns all.
func (r *GormNotificationRepository) ListRecent(ctx context.Context, limit int) ([]notification.Notification, error) {
	q := r.db.WithContext(ctx).Order("seq DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}

	var dtos []NotificationDTO
	if err := q.Find(&dtos).Error; err != nil {
		return nil, err
	}
	slices.Reverse(dtos)

	out := make([]notification.Notification, 0, len(dtos))
	for _, dto := range dtos {
		n, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

func (r *GormNotificationRepository) Clear(ctx context.Context) error {
	return r.db.WithContext(ctx).Where("1 = 1").Delete(&NotificationDTO{}).Error
}
