package ports

import (
	"context"

	"fulfillment/internal/core/domain/model/earnings"
	"fulfillment/internal/core/domain/model/kernel"
)

// EarningsRepository is the append-only store of earnings records plus the
// pending payout balance per agent.
type EarningsRepository interface {
	// Add appends a record. A second record for the same order id yields errs.DuplicateRecordError.
	Add(ctx context.Context, record earnings.Record) error

	// Exists reports whether a record for orderID was already booked.
	Exists(ctx context.Context, orderID kernel.UUID) (bool, error)

	// ListInWindow returns records with RecordedAt in [w.From, w.To), oldest first.
	ListInWindow(ctx context.Context, w earnings.Window) ([]earnings.Record, error)

	// PendingPayout returns the unsettled balance; zero for an agent with no history.
	PendingPayout(ctx context.Context, agentID kernel.UUID) (kernel.Money, error)

	// AdjustPendingPayout adds delta (negative for settlements) and returns the new balance.
	// The balance never goes below zero; such a delta yields errs.ValueIsOutOfRangeError.
	AdjustPendingPayout(ctx context.Context, agentID kernel.UUID, delta int64) (kernel.Money, error)
}
