package earnings

import (
	"errors"
	"fmt"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

var ErrRecordIsNotConstructed = errors.New("Record must be created via NewRecord constructor")

// Record is the earnings entry booked for one delivered order.
type Record struct {
	orderID    kernel.UUID
	gross      kernel.Money
	commission kernel.Money
	recordedAt time.Time
	guard      guard.ConstructorGuard
}

// NewRecord validates and builds a record. gross is the order total, commission
// the agent's payout for it.
func NewRecord(orderID kernel.UUID, gross, commission kernel.Money, recordedAt time.Time) (Record, error) {
	var grossErr, commissionErr, timeErr error
	if gross <= 0 {
		grossErr = errs.NewValueIsInvalidErrorWithCause("gross total", fmt.Errorf("%d is not greater than 0", gross))
	}
	if commission < 0 {
		commissionErr = errs.NewValueIsInvalidErrorWithCause("commission", fmt.Errorf("%d is negative", commission))
	}
	if recordedAt.IsZero() {
		timeErr = errs.NewValueIsRequiredError("recorded at")
	}
	if err := errors.Join(orderID.Validate(), grossErr, commissionErr, timeErr); err != nil {
		return Record{}, err
	}

	return Record{
		orderID:    orderID,
		gross:      gross,
		commission: commission,
		recordedAt: recordedAt.UTC(),
		guard:      guard.NewConstructorGuard(),
	}, nil
}

func (r Record) Validate() error {
	return r.guard.Validate(ErrRecordIsNotConstructed)
}

func (r Record) OrderID() kernel.UUID {
	return r.orderID
}

func (r Record) Gross() kernel.Money {
	return r.gross
}

func (r Record) Commission() kernel.Money {
	return r.commission
}

func (r Record) RecordedAt() time.Time {
	return r.recordedAt
}
