package queries

import (
	"context"
	"errors"
	"time"

	"fulfillment/internal/pkg/guard"
)

var ErrGetOpenOffersQueryIsNotConstructed = errors.New(
	"GetOpenOffersQuery must be created via NewGetOpenOffersQuery constructor",
)

// GetOpenOffersQuery lists the offers the agent can still accept, soonest
// expiry first. Offers being claimed are not listed.
type GetOpenOffersQuery struct {
	guard guard.ConstructorGuard
}

func NewGetOpenOffersQuery() GetOpenOffersQuery {
	return GetOpenOffersQuery{guard: guard.NewConstructorGuard()}
}

func (q GetOpenOffersQuery) Validate() error {
	return q.guard.Validate(ErrGetOpenOffersQueryIsNotConstructed)
}

type GetOpenOffersQueryResponse struct {
	Order     OrderResponse
	OfferedAt time.Time
	ExpiresAt time.Time
	Remaining time.Duration
}

type GetOpenOffersQueryHandler struct {
	offers OfferLister
}

func NewGetOpenOffersQueryHandler(offers OfferLister) GetOpenOffersQueryHandler {
	return GetOpenOffersQueryHandler{offers: offers}
}

func (h GetOpenOffersQueryHandler) Handle(_ context.Context, query GetOpenOffersQuery) ([]GetOpenOffersQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	open := h.offers.ListOpenOffers()
	out := make([]GetOpenOffersQueryResponse, 0, len(open))
	for _, o := range open {
		out = append(out, GetOpenOffersQueryResponse{
			Order:     NewOrderResponse(o.Order),
			OfferedAt: o.OfferedAt,
			ExpiresAt: o.ExpiresAt,
			Remaining: o.Remaining,
		})
	}
	return out, nil
}
