package commands

import (
	"context"

	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/errs"
)

// RequestOTPCommandHandler only issues codes for orders the agent owns and has
// not delivered yet. The code goes to the customer, never back to the caller.
type RequestOTPCommandHandler struct {
	orders    OwnedOrderReader
	requester OTPRequester
}

func NewRequestOTPCommandHandler(orders OwnedOrderReader, requester OTPRequester) RequestOTPCommandHandler {
	return RequestOTPCommandHandler{orders: orders, requester: requester}
}

func (h RequestOTPCommandHandler) Handle(ctx context.Context, command RequestOTPCommand) error {
	if err := command.Validate(); err != nil {
		return err
	}

	o, err := h.orders.Order(ctx, command.OrderID())
	if err != nil {
		return err
	}
	if !o.Status().IsOwned() {
		return errs.NewStateError(o.Status(), order.Delivered)
	}

	_, err = h.requester.CaptureOTP(ctx, command.OrderID())
	return err
}
