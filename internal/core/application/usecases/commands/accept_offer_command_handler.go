package commands

import (
	"context"

	"fulfillment/internal/core/domain/model/order"
)

// AcceptOfferCommandHandler claims the order through the dispatch pool. On
// success the order is already owned by the delivery state machine.
//
// Errors are those of the pool: errs.ConflictError when another agent won or
// the offer is gone, errs.DispatchUnavailableError when the order service
// could not be reached (the offer stays open).
type AcceptOfferCommandHandler struct {
	acceptor OfferAcceptor
}

func NewAcceptOfferCommandHandler(acceptor OfferAcceptor) AcceptOfferCommandHandler {
	return AcceptOfferCommandHandler{acceptor: acceptor}
}

func (h AcceptOfferCommandHandler) Handle(ctx context.Context, command AcceptOfferCommand) (*order.Order, error) {
	if err := command.Validate(); err != nil {
		return nil, err
	}
	return h.acceptor.Accept(ctx, command.OrderID())
}
