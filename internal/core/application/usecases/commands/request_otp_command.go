package commands

import (
	"errors"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/guard"
)

var ErrRequestOTPCommandIsNotConstructed = errors.New(
	"RequestOTPCommand must be created via NewRequestOTPCommand constructor",
)

// RequestOTPCommand has a fresh delivery code sent to the customer of an order.
type RequestOTPCommand struct {
	orderID kernel.UUID

	guard guard.ConstructorGuard
}

func NewRequestOTPCommand(orderID kernel.UUID) (RequestOTPCommand, error) {
	if err := orderID.Validate(); err != nil {
		return RequestOTPCommand{}, err
	}
	return RequestOTPCommand{orderID: orderID, guard: guard.NewConstructorGuard()}, nil
}

func (c RequestOTPCommand) Validate() error {
	return c.guard.Validate(ErrRequestOTPCommandIsNotConstructed)
}

func (c RequestOTPCommand) OrderID() kernel.UUID {
	return c.orderID
}
