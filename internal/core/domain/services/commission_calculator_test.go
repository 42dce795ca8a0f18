package services_test

import (
	"testing"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/model/order/ordertest"
	"fulfillment/internal/core/domain/model/proof"
	"fulfillment/internal/core/domain/services"
	"fulfillment/internal/pkg/errs"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommissionCalculator_Calculate(t *testing.T) {
	calc, err := services.NewCommissionCalculator(services.DefaultCommissionRate, 2000)
	require.NoError(t, err)

	t.Run("should add the base fee to ten percent of the total", func(t *testing.T) {
		assert.Equal(t, kernel.Money(3000), calc.Calculate(10000))
		assert.Equal(t, kernel.Money(5000), calc.Calculate(30000))
	})

	t.Run("should round half away from zero", func(t *testing.T) {
		assert.Equal(t, kernel.Money(2001), calc.Calculate(5))
		assert.Equal(t, kernel.Money(2000), calc.Calculate(4))
		assert.Equal(t, kernel.Money(2124), calc.Calculate(1235))
	})
}

func TestNewCommissionCalculator(t *testing.T) {
	t.Run("should reject rates outside zero to one", func(t *testing.T) {
		_, err := services.NewCommissionCalculator(decimal.RequireFromString("1.5"), 0)

		require.ErrorIs(t, err, errs.ErrValueIsOutOfRange)
	})

	t.Run("should reject a negative base fee", func(t *testing.T) {
		_, err := services.NewCommissionCalculator(services.DefaultCommissionRate, -1)

		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})
}

func TestCommissionCalculator_CommissionFor(t *testing.T) {
	calc, err := services.NewCommissionCalculator(services.DefaultCommissionRate, 2000)
	require.NoError(t, err)
	at := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	t.Run("should refuse orders that are not delivered", func(t *testing.T) {
		o := ordertest.Accepted(kernel.NewUUID(), kernel.NewUUID(), 10000, at)

		_, err := calc.CommissionFor(o)

		require.ErrorIs(t, err, errs.ErrInvalidTransition)
	})

	t.Run("should price a delivered order", func(t *testing.T) {
		o := ordertest.Accepted(kernel.NewUUID(), kernel.NewUUID(), 10000, at)
		require.NoError(t, o.TransitionTo(order.PickedUp, nil, at))
		require.NoError(t, o.TransitionTo(order.ReachedStation, nil, at))
		pod, err := proof.NewSignature("media://sig/1", at)
		require.NoError(t, err)
		require.NoError(t, o.TransitionTo(order.Delivered, &pod, at))

		commission, err := calc.CommissionFor(o)

		require.NoError(t, err)
		assert.Equal(t, kernel.Money(3000), commission)
	})
}
