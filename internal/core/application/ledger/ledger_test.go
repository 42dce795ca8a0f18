package ledger_test

import (
	"testing"
	"time"

	"fulfillment/internal/adapters/out/memory"
	"fulfillment/internal/core/application/feed"
	"fulfillment/internal/core/application/ledger"
	"fulfillment/internal/core/application/session"
	"fulfillment/internal/core/domain/model/earnings"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order/ordertest"
	"fulfillment/internal/core/domain/services"
	"fulfillment/internal/pkg/clock"
	"fulfillment/internal/pkg/errs"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ist is a fixed zone so the tests do not depend on the host's tzdata.
var ist = time.FixedZone("IST", 5*3600+1800)

type earningsUoWFactory struct {
	memory.UnitOfWorkFactory
}

func (f earningsUoWFactory) Create() ledger.EarningsUoW {
	return f.UnitOfWorkFactory.Create()
}

type fixture struct {
	agent  kernel.UUID
	clock  *clock.Mock
	feed   *feed.Feed
	ledger *ledger.Ledger
}

func newFixture(t *testing.T, now time.Time) fixture {
	t.Helper()
	agent := kernel.NewUUID()
	clk := clock.NewMock(now)

	sess, err := session.NewSession(agent, session.DefaultOfferWindow, ist)
	require.NoError(t, err)
	calc, err := services.NewCommissionCalculator(services.DefaultCommissionRate, 2000)
	require.NoError(t, err)
	f, err := feed.NewFeed(50, clk, nil, nil, nil, nil)
	require.NoError(t, err)

	factory := earningsUoWFactory{memory.NewUnitOfWorkFactory(memory.NewStore())}
	l, err := ledger.NewLedger(sess, calc, factory, clk, f, nil, nil)
	require.NoError(t, err)

	return fixture{agent: agent, clock: clk, feed: f, ledger: l}
}

func TestNewLedger_RequiresCollaborators(t *testing.T) {
	calc, err := services.NewCommissionCalculator(decimal.Zero, 0)
	require.NoError(t, err)

	l, err := ledger.NewLedger(session.Session{}, calc, nil, nil, nil, nil, nil)

	require.Error(t, err)
	assert.Nil(t, l)
	assert.Contains(t, err.Error(), "earnings unit of work factory")
	assert.Contains(t, err.Error(), "clock")
	assert.Contains(t, err.Error(), "notifier")
}

func TestLedger_Record(t *testing.T) {
	now := time.Date(2026, 3, 3, 10, 0, 0, 0, ist)

	t.Run("should book commission and grow pending payout", func(t *testing.T) {
		ctx := t.Context()
		fx := newFixture(t, now)
		o := ordertest.Delivered(kernel.NewUUID(), fx.agent, 10000, now.Add(-time.Hour), now)

		rec, err := fx.ledger.Record(ctx, o)

		require.NoError(t, err)
		assert.Equal(t, kernel.Money(3000), rec.Commission())
		assert.Equal(t, kernel.Money(10000), rec.Gross())
		assert.Equal(t, now.UTC(), rec.RecordedAt())

		pending, err := fx.ledger.PendingPayout(ctx)
		require.NoError(t, err)
		assert.Equal(t, kernel.Money(3000), pending)
		assert.Contains(t, fx.feed.List(1)[0].Message(), "Earned 30.00")
	})

	t.Run("should refuse a second booking for the same order", func(t *testing.T) {
		ctx := t.Context()
		fx := newFixture(t, now)
		o := ordertest.Delivered(kernel.NewUUID(), fx.agent, 10000, now.Add(-time.Hour), now)
		_, err := fx.ledger.Record(ctx, o)
		require.NoError(t, err)

		_, err = fx.ledger.Record(ctx, o)

		var dup *errs.DuplicateRecordError
		require.ErrorAs(t, err, &dup)
		agg, err := fx.ledger.Aggregates(ctx, earnings.Day)
		require.NoError(t, err)
		assert.Equal(t, 1, agg.Count)
		pending, err := fx.ledger.PendingPayout(ctx)
		require.NoError(t, err)
		assert.Equal(t, kernel.Money(3000), pending)
	})

	t.Run("should only book delivered orders", func(t *testing.T) {
		fx := newFixture(t, now)
		o := ordertest.Accepted(kernel.NewUUID(), fx.agent, 10000, now)

		_, err := fx.ledger.Record(t.Context(), o)

		require.ErrorIs(t, err, errs.ErrInvalidTransition)
	})
}

func TestLedger_Aggregates(t *testing.T) {
	// Tuesday 3 March 2026, 10:00 in the agent's zone.
	now := time.Date(2026, 3, 3, 10, 0, 0, 0, ist)
	ctx := t.Context()
	fx := newFixture(t, now)

	book := func(total kernel.Money, deliveredAt time.Time) {
		o := ordertest.Delivered(kernel.NewUUID(), fx.agent, total, deliveredAt.Add(-time.Hour), deliveredAt)
		_, err := fx.ledger.Record(ctx, o)
		require.NoError(t, err)
	}
	// 20:00 UTC on 2 March is already 3 March in the agent's zone.
	book(10000, time.Date(2026, 3, 2, 20, 0, 0, 0, time.UTC))
	book(20000, time.Date(2026, 3, 3, 9, 0, 0, 0, ist))
	// Monday of the same week.
	book(5000, time.Date(2026, 3, 2, 12, 0, 0, 0, ist))
	// Previous month.
	book(10000, time.Date(2026, 2, 27, 12, 0, 0, 0, ist))

	t.Run("should fold today in the agent's zone", func(t *testing.T) {
		agg, err := fx.ledger.Aggregates(ctx, earnings.Day)

		require.NoError(t, err)
		assert.Equal(t, 2, agg.Count)
		assert.Equal(t, kernel.Money(3000+4000), agg.Total)
		assert.Equal(t, kernel.Money(3500), agg.Average)
	})

	t.Run("should fold week and month", func(t *testing.T) {
		week, err := fx.ledger.Aggregates(ctx, earnings.Week)
		require.NoError(t, err)
		month, err := fx.ledger.Aggregates(ctx, earnings.Month)
		require.NoError(t, err)

		assert.Equal(t, 3, week.Count)
		assert.Equal(t, kernel.Money(3000+4000+2500), week.Total)
		assert.Equal(t, 3, month.Count)
	})

	t.Run("should summarize with pending payout", func(t *testing.T) {
		s, err := fx.ledger.Summary(ctx)

		require.NoError(t, err)
		assert.Equal(t, 2, s.Today.Count)
		assert.Equal(t, 3, s.Week.Count)
		assert.Equal(t, 3, s.Month.Count)
		assert.Equal(t, kernel.Money(3000+4000+2500+3000), s.PendingPayout)
	})

	t.Run("should report zeros for an empty window", func(t *testing.T) {
		fx.clock.Set(now.AddDate(0, 2, 0))

		agg, err := fx.ledger.Aggregates(ctx, earnings.Day)

		require.NoError(t, err)
		assert.Equal(t, earnings.Aggregates{}, agg)
	})
}

func TestLedger_Settle(t *testing.T) {
	now := time.Date(2026, 3, 3, 10, 0, 0, 0, ist)
	ctx := t.Context()
	fx := newFixture(t, now)
	_, err := fx.ledger.Record(ctx, ordertest.Delivered(kernel.NewUUID(), fx.agent, 10000, now, now))
	require.NoError(t, err)

	t.Run("should reject non-positive amounts", func(t *testing.T) {
		_, err := fx.ledger.Settle(ctx, 0)

		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})

	t.Run("should reject more than is pending", func(t *testing.T) {
		_, err := fx.ledger.Settle(ctx, 3001)

		require.ErrorIs(t, err, errs.ErrValueIsOutOfRange)
		pending, err := fx.ledger.PendingPayout(ctx)
		require.NoError(t, err)
		assert.Equal(t, kernel.Money(3000), pending)
	})

	t.Run("should decrement pending payout", func(t *testing.T) {
		balance, err := fx.ledger.Settle(ctx, 1000)

		require.NoError(t, err)
		assert.Equal(t, kernel.Money(2000), balance)
		assert.Contains(t, fx.feed.List(1)[0].Message(), "Payout of 10.00 settled")
	})
}
