package commands

import (
	"errors"
	"fmt"
	"strings"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

// MaxDeclineReasonLength bounds the free-text reason sent to the order service.
const MaxDeclineReasonLength = 200

var ErrDeclineOfferCommandIsNotConstructed = errors.New(
	"DeclineOfferCommand must be created via NewDeclineOfferCommand constructor",
)

// DeclineOfferCommand turns an offer down. An empty reason is allowed; the
// pool substitutes its default.
type DeclineOfferCommand struct {
	orderID kernel.UUID
	reason  string

	guard guard.ConstructorGuard
}

func NewDeclineOfferCommand(orderID kernel.UUID, reason string) (DeclineOfferCommand, error) {
	reason = strings.TrimSpace(reason)
	var reasonErr error
	if len(reason) > MaxDeclineReasonLength {
		reasonErr = errs.NewValueIsInvalidErrorWithCause("reason",
			fmt.Errorf("longer than %d characters", MaxDeclineReasonLength))
	}
	if err := errors.Join(orderID.Validate(), reasonErr); err != nil {
		return DeclineOfferCommand{}, err
	}
	return DeclineOfferCommand{orderID: orderID, reason: reason, guard: guard.NewConstructorGuard()}, nil
}

func (c DeclineOfferCommand) Validate() error {
	return c.guard.Validate(ErrDeclineOfferCommandIsNotConstructed)
}

func (c DeclineOfferCommand) OrderID() kernel.UUID {
	return c.orderID
}

func (c DeclineOfferCommand) Reason() string {
	return c.reason
}
