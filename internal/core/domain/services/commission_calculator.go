package services

import (
	"errors"
	"fmt"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

// DefaultCommissionRate is the share of the order total paid to the agent.
var DefaultCommissionRate = decimal.RequireFromString("0.10")

// CommissionCalculator is a domain service computing the agent's payout for one
// delivered order.
//
// Formula:
//
//	commission = round(orderTotal * rate) + baseFee
//
// Business rules:
//   - orderTotal and baseFee are integer minor currency units
//   - rate is a fraction in [0, 1]
//   - rounding is half away from zero to whole minor units
//   - only Delivered orders earn a commission
//
// Example usage:
//
//	calc, _ := NewCommissionCalculator(DefaultCommissionRate, 2000)
//	commission := calc.Calculate(10000) // 3000
type CommissionCalculator struct {
	rate    decimal.Decimal
	baseFee kernel.Money
}

// NewCommissionCalculator validates rate and baseFee.
//
// Parameters:
//   - rate: fraction of the order total, 0 <= rate <= 1
//   - baseFee: fixed per-delivery amount in minor units, not negative
//
// Returns:
//   - CommissionCalculator: ready to use
//   - error: ValueIsOutOfRange for rate, ValueIsInvalid for baseFee, joined
func NewCommissionCalculator(rate decimal.Decimal, baseFee kernel.Money) (CommissionCalculator, error) {
	var rateErr, feeErr error
	if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(1)) {
		rateErr = errs.NewValueIsOutOfRangeError("commission rate", rate.String(), "0", "1")
	}
	if baseFee < 0 {
		feeErr = errs.NewValueIsInvalidErrorWithCause("base fee", fmt.Errorf("%d is negative", baseFee))
	}
	if err := errors.Join(rateErr, feeErr); err != nil {
		return CommissionCalculator{}, err
	}
	return CommissionCalculator{rate: rate, baseFee: baseFee}, nil
}

// Calculate applies the formula to an order total.
func (c CommissionCalculator) Calculate(orderTotal kernel.Money) kernel.Money {
	share := decimal.NewFromInt(orderTotal.MinorUnits()).Mul(c.rate).Round(0)
	return kernel.Money(share.IntPart()).Add(c.baseFee)
}

// CommissionFor calculates the commission of a delivered order.
//
// Returns:
//   - kernel.Money: commission in minor units
//   - error: the order's validation error, or StateError if it is not Delivered
func (c CommissionCalculator) CommissionFor(o *order.Order) (kernel.Money, error) {
	if err := o.Validate(); err != nil {
		return 0, err
	}
	if o.Status() != order.Delivered {
		return 0, errs.NewStateErrorWithCause(o.Status(), order.Delivered,
			errors.New("commission is only earned on delivered orders"))
	}
	return c.Calculate(o.Total()), nil
}

func (c CommissionCalculator) Rate() decimal.Decimal {
	return c.rate
}

func (c CommissionCalculator) BaseFee() kernel.Money {
	return c.baseFee
}
