package commands

import (
	"errors"

	"fulfillment/internal/pkg/guard"
)

var ErrRefreshOffersCommandIsNotConstructed = errors.New(
	"RefreshOffersCommand must be created via NewRefreshOffersCommand constructor",
)

// RefreshOffersCommand pulls the current offers from the order service. It is
// issued by the scheduler and may also be triggered by the agent.
type RefreshOffersCommand struct {
	guard guard.ConstructorGuard
}

func NewRefreshOffersCommand() RefreshOffersCommand {
	return RefreshOffersCommand{guard: guard.NewConstructorGuard()}
}

func (c RefreshOffersCommand) Validate() error {
	return c.guard.Validate(ErrRefreshOffersCommandIsNotConstructed)
}
