// Package ledger books agent earnings for delivered orders and answers
// aggregate queries over them.
package ledger

import (
	"context"
	"errors"
	"fmt"

	"fulfillment/internal/core/application/session"
	"fulfillment/internal/core/domain/model/earnings"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/notification"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/services"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/metrics"
	"fulfillment/internal/pkg/clock"
	"fulfillment/internal/pkg/errs"

	"go.uber.org/zap"
)

type (
	// EarningsUoW is the transaction boundary used when booking or settling.
	EarningsUoW interface {
		Begin(ctx context.Context) error
		Commit(ctx context.Context) error
		Rollback(ctx context.Context) error
		EarningsRepository() ports.EarningsRepository
	}

	// EarningsUoWFactory hands out a fresh unit of work per booking or settlement.
	EarningsUoWFactory interface {
		Create() EarningsUoW
	}
)

// Ledger is append-only: a record is never changed once booked. The pending
// payout grows with every record and only shrinks through Settle.
type Ledger struct {
	session    session.Session
	calculator services.CommissionCalculator
	uowFactory EarningsUoWFactory
	clock      clock.Clock
	notifier   ports.Notifier
	metrics    *metrics.Metrics
	logger     *zap.Logger
}

// NewLedger builds a ledger for the session's agent. Records are booked with
// calculator and windowed in the session's time zone. m and logger may be nil.
//
// Example:
//
//	calc, _ := services.NewCommissionCalculator(decimal.RequireFromString("0.10"), 2000)
//	l, err := ledger.NewLedger(sess, calc, uowFactory, clock.New(), feed, m, logger)
//	if err != nil {
//	    return err
//	}
//
//	record, err := l.Record(ctx, deliveredOrder)
//	if errors.Is(err, errs.ErrDuplicateRecord) {
//	    // already booked, nothing changed
//	}
//	summary, err := l.Summary(ctx)
func NewLedger(
	sess session.Session,
	calculator services.CommissionCalculator,
	uowFactory EarningsUoWFactory,
	clk clock.Clock,
	notifier ports.Notifier,
	m *metrics.Metrics,
	logger *zap.Logger,
) (*Ledger, error) {
	var missing []error
	if err := sess.Validate(); err != nil {
		missing = append(missing, err)
	}
	if uowFactory == nil {
		missing = append(missing, errs.NewValueIsRequiredError("earnings unit of work factory"))
	}
	if clk == nil {
		missing = append(missing, errs.NewValueIsRequiredError("clock"))
	}
	if notifier == nil {
		missing = append(missing, errs.NewValueIsRequiredError("notifier"))
	}
	if err := errors.Join(missing...); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Ledger{
		session:    sess,
		calculator: calculator,
		uowFactory: uowFactory,
		clock:      clk,
		notifier:   notifier,
		metrics:    m,
		logger:     logger.With(zap.String("component", "ledger")),
	}, nil
}

// Record books the commission of a Delivered order and adds it to the pending
// payout, both in one transaction. The record is stamped with the delivery time.
//
// Errors:
//   - errs.StateError: the order is not Delivered
//   - errs.DuplicateRecordError: the order was already booked; nothing changes
func (l *Ledger) Record(ctx context.Context, o *order.Order) (earnings.Record, error) {
	commission, err := l.calculator.CommissionFor(o)
	if err != nil {
		return earnings.Record{}, err
	}
	history := o.History()
	record, err := earnings.NewRecord(o.ID(), o.Total(), commission, history[len(history)-1].At)
	if err != nil {
		return earnings.Record{}, err
	}

	uow := l.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return earnings.Record{}, err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	repo := uow.EarningsRepository()
	exists, err := repo.Exists(ctx, o.ID())
	if err != nil {
		return earnings.Record{}, err
	}
	if exists {
		return earnings.Record{}, errs.NewDuplicateRecordError("earnings record", o.ID())
	}
	if err = repo.Add(ctx, record); err != nil {
		return earnings.Record{}, err
	}
	if _, err = repo.AdjustPendingPayout(ctx, l.session.AgentID(), commission.MinorUnits()); err != nil {
		return earnings.Record{}, err
	}
	if err = uow.Commit(ctx); err != nil {
		return earnings.Record{}, err
	}

	l.metrics.EarningsBooked(commission.MinorUnits())
	l.logger.Info("earnings booked",
		zap.Stringer("order_id", o.ID()),
		zap.Int64("commission", commission.MinorUnits()))
	l.notifier.Notify(ctx, notification.Success,
		fmt.Sprintf("Earned %s for order #%s", commission, o.ID().Short()))
	return record, nil
}

// Aggregates folds the records of the calendar period containing now, in the
// agent's time zone.
func (l *Ledger) Aggregates(ctx context.Context, period earnings.Period) (earnings.Aggregates, error) {
	w := earnings.For(period, l.session.Local(l.clock.Now()))
	return l.aggregate(ctx, l.uowFactory.Create().EarningsRepository(), w)
}

// Summary returns today, this week, this month and the pending payout.
func (l *Ledger) Summary(ctx context.Context) (earnings.Summary, error) {
	now := l.session.Local(l.clock.Now())
	repo := l.uowFactory.Create().EarningsRepository()

	month, err := l.aggregate(ctx, repo, earnings.ThisMonth(now))
	if err != nil {
		return earnings.Summary{}, err
	}
	week, err := l.aggregate(ctx, repo, earnings.ThisWeek(now))
	if err != nil {
		return earnings.Summary{}, err
	}
	today, err := l.aggregate(ctx, repo, earnings.Today(now))
	if err != nil {
		return earnings.Summary{}, err
	}
	pending, err := repo.PendingPayout(ctx, l.session.AgentID())
	if err != nil {
		return earnings.Summary{}, err
	}

	return earnings.Summary{Today: today, Week: week, Month: month, PendingPayout: pending}, nil
}

// PendingPayout is the booked commission not yet settled to the agent.
func (l *Ledger) PendingPayout(ctx context.Context) (kernel.Money, error) {
	return l.uowFactory.Create().EarningsRepository().PendingPayout(ctx, l.session.AgentID())
}

// Settle records a payout made to the agent and returns the remaining balance.
// amount must be positive and not exceed the pending payout.
func (l *Ledger) Settle(ctx context.Context, amount kernel.Money) (kernel.Money, error) {
	if amount <= 0 {
		return 0, errs.NewValueIsInvalidErrorWithCause("settlement amount", fmt.Errorf("%d is not positive", amount))
	}

	uow := l.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	balance, err := uow.EarningsRepository().AdjustPendingPayout(ctx, l.session.AgentID(), -amount.MinorUnits())
	if err != nil {
		return 0, err
	}
	if err = uow.Commit(ctx); err != nil {
		return 0, err
	}

	l.logger.Info("payout settled", zap.Int64("amount", amount.MinorUnits()), zap.Int64("balance", balance.MinorUnits()))
	l.notifier.Notify(ctx, notification.Info, fmt.Sprintf("Payout of %s settled, %s pending", amount, balance))
	return balance, nil
}

func (l *Ledger) aggregate(ctx context.Context, repo ports.EarningsRepository, w earnings.Window) (earnings.Aggregates, error) {
	records, err := repo.ListInWindow(ctx, w)
	if err != nil {
		return earnings.Aggregates{}, err
	}
	return earnings.Summarize(records, w), nil
}
