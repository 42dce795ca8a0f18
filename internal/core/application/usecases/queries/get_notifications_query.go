package queries

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

// DefaultNotificationLimit applies when the caller does not ask for a limit.
const DefaultNotificationLimit = 50

var ErrGetNotificationsQueryIsNotConstructed = errors.New(
	"GetNotificationsQuery must be created via NewGetNotificationsQuery constructor",
)

// GetNotificationsQuery reads the newest feed entries, oldest first.
type GetNotificationsQuery struct {
	limit int

	guard guard.ConstructorGuard
}

// NewGetNotificationsQuery accepts 0 for the default limit.
func NewGetNotificationsQuery(limit int) (GetNotificationsQuery, error) {
	if limit < 0 {
		return GetNotificationsQuery{}, errs.NewValueIsInvalidErrorWithCause("limit", fmt.Errorf("%d is negative", limit))
	}
	if limit == 0 {
		limit = DefaultNotificationLimit
	}
	return GetNotificationsQuery{limit: limit, guard: guard.NewConstructorGuard()}, nil
}

func (q GetNotificationsQuery) Validate() error {
	return q.guard.Validate(ErrGetNotificationsQueryIsNotConstructed)
}

func (q GetNotificationsQuery) Limit() int {
	return q.limit
}

type GetNotificationsQueryResponse struct {
	ID      kernel.UUID
	Type    string
	Message string
	Time    time.Time
}

type GetNotificationsQueryHandler struct {
	feed NotificationLister
}

func NewGetNotificationsQueryHandler(feed NotificationLister) GetNotificationsQueryHandler {
	return GetNotificationsQueryHandler{feed: feed}
}

func (h GetNotificationsQueryHandler) Handle(
	_ context.Context,
	query GetNotificationsQuery,
) ([]GetNotificationsQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	entries := h.feed.List(query.Limit())
	out := make([]GetNotificationsQueryResponse, 0, len(entries))
	for _, n := range entries {
		out = append(out, GetNotificationsQueryResponse{
			ID:      n.ID(),
			Type:    n.Type().String(),
			Message: n.Message(),
			Time:    n.Time(),
		})
	}
	return out, nil
}
