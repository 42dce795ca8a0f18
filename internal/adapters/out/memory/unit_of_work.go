package memory

import (
	"context"
	"errors"

	"fulfillment/internal/core/ports"
)

var (
	// ErrTransactionAlreadyStarted is returned by Begin on a unit of work that is already open.
	ErrTransactionAlreadyStarted = errors.New("transaction already started")
	// ErrNoActiveTransaction is returned by Commit and Rollback outside Begin.
	ErrNoActiveTransaction       = errors.New("no active transaction")
)

var _ ports.UnitOfWork = (*UnitOfWork)(nil)

// UnitOfWork gives its repositories a private copy of the store between Begin
// and Commit. Rollback after Commit is a no-op that reports ErrNoActiveTransaction.
//
// Example:
//
//	factory := memory.NewUnitOfWorkFactory(memory.NewStore())
//	uow := factory.Create()
//	if err := uow.Begin(ctx); err != nil {
//	    return err
//	}
//	defer func() { _ = uow.Rollback(ctx) }()
//
//	if err := uow.EarningsRepository().Add(ctx, record); err != nil {
//	    return err
//	}
//	if _, err := uow.EarningsRepository().AdjustPendingPayout(ctx, agentID, 3000); err != nil {
//	    return err
//	}
//	return uow.Commit(ctx)
//
// Repositories of a unit of work that was never begun read the last commit and
// commit each write on its own.
type UnitOfWork struct {
	store *Store
	tx    *state
}

func NewUnitOfWork(store *Store) *UnitOfWork {
	return &UnitOfWork{store: store}
}

// Begin waits for any other open transaction on the store, then snapshots it.
func (u *UnitOfWork) Begin(ctx context.Context) error {
	if u.tx != nil {
		return ErrTransactionAlreadyStarted
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	u.store.txMu.Lock()
	u.tx = u.store.snapshot()
	return nil
}

// Commit publishes the private copy as the store's state.
func (u *UnitOfWork) Commit(context.Context) error {
	if u.tx == nil {
		return ErrNoActiveTransaction
	}
	u.store.commit(u.tx)
	u.tx = nil
	u.store.txMu.Unlock()
	return nil
}

// Rollback discards the private copy.
func (u *UnitOfWork) Rollback(context.Context) error {
	if u.tx == nil {
		return ErrNoActiveTransaction
	}
	u.tx = nil
	u.store.txMu.Unlock()
	return nil
}

func (u *UnitOfWork) OrderRepository() ports.OrderRepository {
	return &OrderRepository{uow: u}
}

func (u *UnitOfWork) EarningsRepository() ports.EarningsRepository {
	return &EarningsRepository{uow: u}
}

func (u *UnitOfWork) NotificationRepository() ports.NotificationRepository {
	return &NotificationRepository{uow: u}
}

func (u *UnitOfWork) view(fn func(st *state) error) error {
	return u.store.view(u.tx, fn)
}

func (u *UnitOfWork) update(fn func(st *state) error) error {
	return u.store.update(u.tx, fn)
}

// UnitOfWorkFactory creates units of work over one shared Store.
type UnitOfWorkFactory struct {
	store *Store
}

func NewUnitOfWorkFactory(store *Store) UnitOfWorkFactory {
	return UnitOfWorkFactory{store: store}
}

// Create returns a unit of work that has not begun yet.
func (f UnitOfWorkFactory) Create() ports.UnitOfWork {
	return NewUnitOfWork(f.store)
}
