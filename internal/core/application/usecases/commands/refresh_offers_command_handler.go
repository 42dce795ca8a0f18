package commands

import (
	"context"
)

type RefreshOffersCommandHandler struct {
	refresher OfferRefresher
}

func NewRefreshOffersCommandHandler(refresher OfferRefresher) RefreshOffersCommandHandler {
	return RefreshOffersCommandHandler{refresher: refresher}
}

// Handle returns dispatch.ErrRefreshInProgress when a refresh is already running.
func (h RefreshOffersCommandHandler) Handle(ctx context.Context, command RefreshOffersCommand) error {
	if err := command.Validate(); err != nil {
		return err
	}
	return h.refresher.Refresh(ctx)
}
