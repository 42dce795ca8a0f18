package kernel

import (
	"fmt"

	"fulfillment/internal/pkg/errs"
)

// Money is an amount in minor currency units (paise, cents). All monetary values
// cross component and service boundaries in this form; there is no floating point.
type Money int64

// NewMoney validates that amount is not negative.
func NewMoney(amount int64) (Money, error) {
	if amount < 0 {
		return 0, errs.NewValueIsInvalidErrorWithCause("money", fmt.Errorf("%d is negative", amount))
	}
	return Money(amount), nil
}

// MinorUnits returns the raw integer amount.
func (m Money) MinorUnits() int64 {
	return int64(m)
}

func (m Money) Add(other Money) Money {
	return m + other
}

// Sub subtracts other and fails if the result would be negative.
func (m Money) Sub(other Money) (Money, error) {
	if other > m {
		return 0, errs.NewValueIsOutOfRangeError("amount", int64(other), int64(0), int64(m))
	}
	return m - other, nil
}

func (m Money) IsZero() bool {
	return m == 0
}

// String renders the amount with two fractional digits, e.g. 30000 -> "300.00".
func (m Money) String() string {
	sign := ""
	v := int64(m)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}
