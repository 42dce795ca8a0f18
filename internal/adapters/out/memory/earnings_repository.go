package memory

import (
	"context"
	"math"
	"sort"

	"fulfillment/internal/core/domain/model/earnings"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
)

// EarningsRepository keeps earnings records in booking order and one pending
// payout balance per agent. A record is rejected if its order was booked before.
type EarningsRepository struct {
	uow *UnitOfWork
}

// Add appends a record; errs.DuplicateRecordError if the order is already booked.
func (r *EarningsRepository) Add(_ context.Context, record earnings.Record) error {
	if err := record.Validate(); err != nil {
		return err
	}
	return r.uow.update(func(st *state) error {
		for _, existing := range st.records {
			if existing.OrderID().IsEqual(record.OrderID()) {
				return errs.NewDuplicateRecordError("earnings record", record.OrderID())
			}
		}
		st.records = append(st.records, record)
		return nil
	})
}

func (r *EarningsRepository) Exists(_ context.Context, orderID kernel.UUID) (bool, error) {
	found := false
	_ = r.uow.view(func(st *state) error {
		for _, existing := range st.records {
			if existing.OrderID().IsEqual(orderID) {
				found = true
				break
			}
		}
		return nil
	})
	return found, nil
}

// ListInWindow returns the records booked inside w, oldest first.
func (r *EarningsRepository) ListInWindow(_ context.Context, w earnings.Window) ([]earnings.Record, error) {
	var out []earnings.Record
	_ = r.uow.view(func(st *state) error {
		for _, rec := range st.records {
			if w.Contains(rec.RecordedAt()) {
				out = append(out, rec)
			}
		}
		return nil
	})
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].RecordedAt().Before(out[j].RecordedAt())
	})
	return out, nil
}

func (r *EarningsRepository) PendingPayout(_ context.Context, agentID kernel.UUID) (kernel.Money, error) {
	var balance kernel.Money
	_ = r.uow.view(func(st *state) error {
		balance = st.pendingPayout[agentID]
		return nil
	})
	return balance, nil
}

// AdjustPendingPayout adds delta to the agent's balance and returns the new one.
// A delta that would make the balance negative is rejected with errs.ValueIsOutOfRangeError.
func (r *EarningsRepository) AdjustPendingPayout(
	_ context.Context, agentID kernel.UUID, delta int64,
) (kernel.Money, error) {
	var balance kernel.Money
	err := r.uow.update(func(st *state) error {
		current := st.pendingPayout[agentID].MinorUnits()
		if delta < -current {
			return errs.NewValueIsOutOfRangeError("pending payout adjustment", delta, -current, int64(math.MaxInt64))
		}
		balance = kernel.Money(current + delta)
		st.pendingPayout[agentID] = balance
		return nil
	})
	return balance, err
}
