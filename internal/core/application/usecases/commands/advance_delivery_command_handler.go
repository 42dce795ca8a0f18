package commands

import (
	"context"
	"errors"
	"fmt"

	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/model/proof"
	"fulfillment/internal/pkg/errs"
)

// AdvanceDeliveryCommandHandler turns the agent's evidence into a proof of
// delivery, then asks the state machine for the transition.
//
// Evidence is only looked at when the transition goes to Delivered; for any
// other target it is rejected before the verifier or the order service is asked.
// An OTP is checked against the latest code for the order before anything else
// happens; a wrong code yields errs.VerificationError and leaves the order as it was.
type AdvanceDeliveryCommandHandler struct {
	driver DeliveryDriver
	proofs ProofCapturer
}

func NewAdvanceDeliveryCommandHandler(driver DeliveryDriver, proofs ProofCapturer) AdvanceDeliveryCommandHandler {
	return AdvanceDeliveryCommandHandler{driver: driver, proofs: proofs}
}

func (h AdvanceDeliveryCommandHandler) Handle(ctx context.Context, command AdvanceDeliveryCommand) (*order.Order, error) {
	if err := command.Validate(); err != nil {
		return nil, err
	}

	ev, ok := command.Evidence()
	if !ok {
		if command.Target() == order.Unknown {
			return h.driver.Advance(ctx, command.OrderID(), nil)
		}
		return h.driver.Transition(ctx, command.OrderID(), command.Target(), nil)
	}

	target, err := h.resolveTarget(ctx, command)
	if err != nil {
		return nil, err
	}
	if target != order.Delivered {
		return nil, errs.NewValueIsInvalidErrorWithCause("proof",
			fmt.Errorf("proof of delivery is only accepted when moving to %s, not %s", order.Delivered, target))
	}

	pod, err := h.capture(ctx, command, ev)
	if err != nil {
		return nil, err
	}
	return h.driver.Transition(ctx, command.OrderID(), target, &pod)
}

// resolveTarget returns the explicit target, or the order's next status when none was given.
func (h AdvanceDeliveryCommandHandler) resolveTarget(ctx context.Context, command AdvanceDeliveryCommand) (order.Status, error) {
	if command.Target() != order.Unknown {
		return command.Target(), nil
	}
	o, err := h.driver.Order(ctx, command.OrderID())
	if err != nil {
		return order.Unknown, err
	}
	next, ok := o.NextStatus()
	if !ok {
		return order.Unknown, errs.NewStateErrorWithCause(o.Status(), order.Unknown, errors.New("order has no next status"))
	}
	return next, nil
}

func (h AdvanceDeliveryCommandHandler) capture(
	ctx context.Context,
	command AdvanceDeliveryCommand,
	ev Evidence,
) (proof.ProofOfDelivery, error) {
	switch ev.Kind {
	case proof.OTP:
		return h.proofs.VerifyOTP(ctx, command.OrderID(), ev.Value)
	case proof.Photo:
		return h.proofs.CapturePhoto(ev.Value)
	case proof.Signature:
		return h.proofs.CaptureSignature(ev.Value)
	case proof.UnknownKind:
	}
	return proof.ProofOfDelivery{}, errs.NewValueIsInvalidError("proof kind")
}
