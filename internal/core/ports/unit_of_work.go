package ports

import (
	"context"
)

// UnitOfWorkFactory creates a fresh UnitOfWork per business operation.
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}

// UnitOfWork is a business transaction boundary spanning the repositories.
// Callers Begin, defer Rollback, and Commit on success.
type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error

	// OrderRepository is bound to the transaction started by Begin.
	OrderRepository() OrderRepository

	// EarningsRepository is bound to the transaction started by Begin.
	EarningsRepository() EarningsRepository

	// NotificationRepository is bound to the transaction started by Begin.
	NotificationRepository() NotificationRepository
}
