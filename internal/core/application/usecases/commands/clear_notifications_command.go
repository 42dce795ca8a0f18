package commands

import (
	"context"
	"errors"

	"fulfillment/internal/pkg/guard"
)

var ErrClearNotificationsCommandIsNotConstructed = errors.New(
	"ClearNotificationsCommand must be created via NewClearNotificationsCommand constructor",
)

// ClearNotificationsCommand empties the agent's feed, including stored entries.
type ClearNotificationsCommand struct {
	guard guard.ConstructorGuard
}

func NewClearNotificationsCommand() ClearNotificationsCommand {
	return ClearNotificationsCommand{guard: guard.NewConstructorGuard()}
}

func (c ClearNotificationsCommand) Validate() error {
	return c.guard.Validate(ErrClearNotificationsCommandIsNotConstructed)
}

type ClearNotificationsCommandHandler struct {
	feed FeedClearer
}

func NewClearNotificationsCommandHandler(feed FeedClearer) ClearNotificationsCommandHandler {
	return ClearNotificationsCommandHandler{feed: feed}
}

func (h ClearNotificationsCommandHandler) Handle(ctx context.Context, command ClearNotificationsCommand) error {
	if err := command.Validate(); err != nil {
		return err
	}
	return h.feed.Clear(ctx)
}
