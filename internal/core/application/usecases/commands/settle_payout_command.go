package commands

import (
	"errors"
	"fmt"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

var ErrSettlePayoutCommandIsNotConstructed = errors.New(
	"SettlePayoutCommand must be created via NewSettlePayoutCommand constructor",
)

// SettlePayoutCommand records an external payout to the agent, reducing the
// pending balance. The amount is in minor currency units.
type SettlePayoutCommand struct {
	amount kernel.Money

	guard guard.ConstructorGuard
}

func NewSettlePayoutCommand(amount int64) (SettlePayoutCommand, error) {
	if amount <= 0 {
		return SettlePayoutCommand{}, errs.NewValueIsInvalidErrorWithCause("amount",
			fmt.Errorf("%d is not greater than 0", amount))
	}
	return SettlePayoutCommand{amount: kernel.Money(amount), guard: guard.NewConstructorGuard()}, nil
}

func (c SettlePayoutCommand) Validate() error {
	return c.guard.Validate(ErrSettlePayoutCommandIsNotConstructed)
}

func (c SettlePayoutCommand) Amount() kernel.Money {
	return c.amount
}
