package commands

import (
	"errors"
	"fmt"
	"strings"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/model/proof"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

var ErrAdvanceDeliveryCommandIsNotConstructed = errors.New(
	"AdvanceDeliveryCommand must be created via NewAdvanceDeliveryCommand constructor",
)

// Evidence is the raw proof input from the agent: an OTP the customer read out,
// or a media reference for a photo or signature.
type Evidence struct {
	Kind  proof.Kind
	Value string
}

// NewEvidence parses the wire kind ("otp", "photo", "signature") and requires a value.
func NewEvidence(kind, value string) (Evidence, error) {
	k, kindErr := proof.ParseKind(kind)
	var valueErr error
	value = strings.TrimSpace(value)
	if value == "" {
		valueErr = errs.NewValueIsRequiredError("proof value")
	}
	if err := errors.Join(kindErr, valueErr); err != nil {
		return Evidence{}, err
	}
	return Evidence{Kind: k, Value: value}, nil
}

// AdvanceDeliveryCommand moves an owned order forward.
//
// The target is optional: order.Unknown means "the next status for this
// order". Evidence is required to reach Delivered and rejected otherwise.
//
// Example:
//
//	ev, _ := NewEvidence("otp", "482913")
//	cmd, err := NewAdvanceDeliveryCommand(orderID, order.Delivered, &ev)
//	delivered, err := handler.Handle(ctx, cmd)
type AdvanceDeliveryCommand struct {
	orderID  kernel.UUID
	target   order.Status
	evidence *Evidence

	guard guard.ConstructorGuard
}

func NewAdvanceDeliveryCommand(orderID kernel.UUID, target order.Status, evidence *Evidence) (AdvanceDeliveryCommand, error) {
	var targetErr error
	if target != order.Unknown {
		targetErr = target.Validate()
	}
	var evidenceErr error
	switch {
	case evidence == nil:
	case evidence.Kind == proof.UnknownKind:
		evidenceErr = errs.NewValueIsInvalidError("proof kind")
	case target != order.Unknown && target != order.Delivered:
		evidenceErr = errs.NewValueIsInvalidErrorWithCause("proof",
			fmt.Errorf("proof of delivery is only accepted when moving to %s", order.Delivered))
	}
	if err := errors.Join(orderID.Validate(), targetErr, evidenceErr); err != nil {
		return AdvanceDeliveryCommand{}, err
	}

	cmd := AdvanceDeliveryCommand{orderID: orderID, target: target, guard: guard.NewConstructorGuard()}
	if evidence != nil {
		ev := *evidence
		cmd.evidence = &ev
	}
	return cmd, nil
}

func (c AdvanceDeliveryCommand) Validate() error {
	return c.guard.Validate(ErrAdvanceDeliveryCommandIsNotConstructed)
}

func (c AdvanceDeliveryCommand) OrderID() kernel.UUID {
	return c.orderID
}

// Target is order.Unknown when the next status should be inferred.
func (c AdvanceDeliveryCommand) Target() order.Status {
	return c.target
}

func (c AdvanceDeliveryCommand) Evidence() (Evidence, bool) {
	if c.evidence == nil {
		return Evidence{}, false
	}
	return *c.evidence, true
}
