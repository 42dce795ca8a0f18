// Package queries contains the agent's read operations. Handlers never mutate
// state; they read snapshots from the stateful components and map them to
// response types.
package queries

import (
	"context"

	"fulfillment/internal/core/application/dispatch"
	"fulfillment/internal/core/domain/model/earnings"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/notification"
	"fulfillment/internal/core/domain/model/order"
)

type (
	OfferLister interface {
		ListOpenOffers() []dispatch.OpenOffer
	}

	OrderReader interface {
		ActiveOrders() []*order.Order
		Order(ctx context.Context, orderID kernel.UUID) (*order.Order, error)
	}

	NotificationLister interface {
		List(limit int) []notification.Notification
	}

	EarningsReader interface {
		Aggregates(ctx context.Context, period earnings.Period) (earnings.Aggregates, error)
		Summary(ctx context.Context) (earnings.Summary, error)
	}
)
