package commands

import (
	"errors"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/guard"
)

var ErrAcceptOfferCommandIsNotConstructed = errors.New(
	"AcceptOfferCommand must be created via NewAcceptOfferCommand constructor",
)

// AcceptOfferCommand asks to claim an offered order for the agent.
//
// Example:
//
//	cmd, err := NewAcceptOfferCommand(orderID)
//	if err != nil {
//	    return err
//	}
//	accepted, err := handler.Handle(ctx, cmd)
type AcceptOfferCommand struct {
	orderID kernel.UUID

	guard guard.ConstructorGuard
}

func NewAcceptOfferCommand(orderID kernel.UUID) (AcceptOfferCommand, error) {
	if err := orderID.Validate(); err != nil {
		return AcceptOfferCommand{}, err
	}
	return AcceptOfferCommand{orderID: orderID, guard: guard.NewConstructorGuard()}, nil
}

func (c AcceptOfferCommand) Validate() error {
	return c.guard.Validate(ErrAcceptOfferCommandIsNotConstructed)
}

func (c AcceptOfferCommand) OrderID() kernel.UUID {
	return c.orderID
}
