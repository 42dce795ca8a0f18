package commands

import (
	"context"
)

// DeclineOfferCommandHandler resolves the offer locally at once; telling the
// order service is best-effort and retried by the pool.
type DeclineOfferCommandHandler struct {
	decliner OfferDecliner
}

func NewDeclineOfferCommandHandler(decliner OfferDecliner) DeclineOfferCommandHandler {
	return DeclineOfferCommandHandler{decliner: decliner}
}

func (h DeclineOfferCommandHandler) Handle(ctx context.Context, command DeclineOfferCommand) error {
	if err := command.Validate(); err != nil {
		return err
	}
	return h.decliner.Decline(ctx, command.OrderID(), command.Reason())
}
