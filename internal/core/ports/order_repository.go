package ports

import (
	"context"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
)

// OrderRepository persists orders owned by the agent.
type OrderRepository interface {
	// Add persists a newly accepted order.
	Add(ctx context.Context, aggregate *order.Order) error

	// Update persists status, history and proof changes.
	// Returns errs.ObjectNotFoundError if the order was never added.
	Update(ctx context.Context, aggregate *order.Order) error

	// Get returns errs.ObjectNotFoundError when the order is unknown.
	Get(ctx context.Context, id kernel.UUID) (*order.Order, error)

	// ListActive returns owned orders that are not yet Delivered, oldest first.
	ListActive(ctx context.Context) ([]*order.Order, error)
}
