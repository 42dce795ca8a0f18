package commands

import (
	"context"

	"fulfillment/internal/core/domain/model/kernel"
)

// SettlePayoutCommandHandler returns the pending balance left after settlement.
// Settling more than is pending yields errs.ValueIsOutOfRangeError.
type SettlePayoutCommandHandler struct {
	settler PayoutSettler
}

func NewSettlePayoutCommandHandler(settler PayoutSettler) SettlePayoutCommandHandler {
	return SettlePayoutCommandHandler{settler: settler}
}

func (h SettlePayoutCommandHandler) Handle(ctx context.Context, command SettlePayoutCommand) (kernel.Money, error) {
	if err := command.Validate(); err != nil {
		return 0, err
	}
	return h.settler.Settle(ctx, command.Amount())
}
