package offer_test

import (
	"testing"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/offer"
	"fulfillment/internal/core/domain/model/order/ordertest"
	"fulfillment/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var offeredAt = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func newOffer(t *testing.T) *offer.Offer {
	t.Helper()
	f, err := offer.NewOffer(ordertest.Station(kernel.NewUUID(), 30000, offeredAt), offeredAt, 30*time.Second)
	require.NoError(t, err)
	return f
}

func TestNewOffer(t *testing.T) {
	t.Run("should compute an absolute deadline", func(t *testing.T) {
		f := newOffer(t)

		assert.Equal(t, offer.Pending, f.Outcome())
		assert.True(t, f.IsOpen())
		assert.Equal(t, offeredAt.Add(30*time.Second), f.ExpiresAt())
		assert.Equal(t, 20*time.Second, f.Remaining(offeredAt.Add(10*time.Second)))
		assert.Equal(t, time.Duration(0), f.Remaining(offeredAt.Add(time.Hour)))
	})

	t.Run("should refuse orders that are no longer pending", func(t *testing.T) {
		o := ordertest.Accepted(kernel.NewUUID(), kernel.NewUUID(), 30000, offeredAt)

		_, err := offer.NewOffer(o, offeredAt, 30*time.Second)

		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})

	t.Run("should refuse a non-positive window", func(t *testing.T) {
		_, err := offer.NewOffer(ordertest.Station(kernel.NewUUID(), 30000, offeredAt), time.Time{}, 0)

		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
		require.ErrorIs(t, err, errs.ErrValueIsRequired)
	})
}

func TestOffer_ExactlyOneOutcome(t *testing.T) {
	resolvers := map[string]func(*offer.Offer) error{
		"accept":  func(f *offer.Offer) error { return f.Accept(offeredAt.Add(time.Minute)) },
		"decline": func(f *offer.Offer) error { return f.Decline("busy", offeredAt.Add(time.Minute)) },
		"expire":  func(f *offer.Offer) error { return f.Expire(offeredAt.Add(time.Minute)) },
	}

	for first, resolveFirst := range resolvers {
		for second, resolveSecond := range resolvers {
			f := newOffer(t)
			require.NoError(t, resolveFirst(f), first)
			outcome := f.Outcome()

			err := resolveSecond(f)

			require.ErrorIs(t, err, errs.ErrConflict, "%s then %s", first, second)
			assert.Equal(t, outcome, f.Outcome())
		}
	}
}

func TestOffer_Expire(t *testing.T) {
	t.Run("should never expire before the deadline", func(t *testing.T) {
		f := newOffer(t)

		err := f.Expire(offeredAt.Add(30*time.Second - time.Nanosecond))

		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
		assert.Equal(t, offer.Pending, f.Outcome())
	})

	t.Run("should expire at the deadline with the timeout reason", func(t *testing.T) {
		f := newOffer(t)

		require.NoError(t, f.Expire(offeredAt.Add(30*time.Second)))

		assert.Equal(t, offer.Expired, f.Outcome())
		assert.Equal(t, offer.ReasonTimeout, f.Reason())
	})

	t.Run("should defer to an in-flight claim", func(t *testing.T) {
		f := newOffer(t)
		require.NoError(t, f.Claim())

		err := f.Expire(offeredAt.Add(time.Minute))

		require.ErrorIs(t, err, errs.ErrConflict)
		assert.Equal(t, offer.Pending, f.Outcome())
	})
}

func TestOffer_Claim(t *testing.T) {
	t.Run("should hide the offer until released", func(t *testing.T) {
		f := newOffer(t)

		require.NoError(t, f.Claim())
		assert.False(t, f.IsOpen())
		require.ErrorIs(t, f.Claim(), errs.ErrConflict)

		f.Release()
		assert.True(t, f.IsOpen())
	})

	t.Run("should clear the claim on accept", func(t *testing.T) {
		f := newOffer(t)
		require.NoError(t, f.Claim())

		require.NoError(t, f.Accept(offeredAt))

		assert.False(t, f.IsClaiming())
		assert.Equal(t, offer.Accepted, f.Outcome())
	})
}

func TestOffer_Decline(t *testing.T) {
	f := newOffer(t)

	require.ErrorIs(t, f.Decline("  ", offeredAt), errs.ErrValueIsRequired)
	require.NoError(t, f.Decline(offer.ReasonClaimed, offeredAt))

	assert.Equal(t, offer.Declined, f.Outcome())
	assert.Equal(t, offer.ReasonClaimed, f.Reason())
	assert.Equal(t, offeredAt, f.ResolvedAt())
}

func TestOffer_ZeroValue(t *testing.T) {
	var f offer.Offer

	assert.Equal(t, offer.ErrOfferIsNotConstructed, f.Validate())
}
