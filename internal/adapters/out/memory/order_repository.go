package memory

import (
	"context"
	"sort"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/errs"
)

// OrderRepository stores snapshots, so callers never share state with the store.
type OrderRepository struct {
	uow *UnitOfWork
}

func (r *OrderRepository) Add(_ context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}
	return r.uow.update(func(st *state) error {
		if _, ok := st.orders[aggregate.ID()]; ok {
			return errs.NewDuplicateRecordError("order", aggregate.ID())
		}
		st.orders[aggregate.ID()] = aggregate.Snapshot()
		return nil
	})
}

// Update replaces the stored snapshot; errs.ObjectNotFoundError if it was never added.
func (r *OrderRepository) Update(_ context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}
	return r.uow.update(func(st *state) error {
		if _, ok := st.orders[aggregate.ID()]; !ok {
			return errs.NewObjectNotFoundError("order", aggregate.ID())
		}
		st.orders[aggregate.ID()] = aggregate.Snapshot()
		return nil
	})
}

func (r *OrderRepository) Get(_ context.Context, id kernel.UUID) (*order.Order, error) {
	var found *order.Order
	err := r.uow.view(func(st *state) error {
		o, ok := st.orders[id]
		if !ok {
			return errs.NewObjectNotFoundError("order", id)
		}
		found = o.Snapshot()
		return nil
	})
	return found, err
}

// ListActive returns the owned, undelivered orders, oldest first.
func (r *OrderRepository) ListActive(context.Context) ([]*order.Order, error) {
	var active []*order.Order
	_ = r.uow.view(func(st *state) error {
		for _, o := range st.orders {
			if o.Status().IsOwned() {
				active = append(active, o.Snapshot())
			}
		}
		return nil
	})
	sort.Slice(active, func(i, j int) bool {
		return active[i].CreatedAt().Before(active[j].CreatedAt())
	})
	return active, nil
}
