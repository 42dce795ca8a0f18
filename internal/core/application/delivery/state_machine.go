// Package delivery drives accepted orders through their lifecycle. Once an
// order is accepted it is owned here and nowhere else; there is no cancellation.
package delivery

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"fulfillment/internal/core/domain/model/earnings"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/notification"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/model/proof"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/metrics"
	"fulfillment/internal/pkg/clock"
	"fulfillment/internal/pkg/errs"

	"go.uber.org/zap"
)

type (
	// OrderUoW is the transaction boundary used to persist owned orders.
	OrderUoW interface {
		Begin(ctx context.Context) error
		Commit(ctx context.Context) error
		Rollback(ctx context.Context) error
		OrderRepository() ports.OrderRepository
	}

	// OrderUoWFactory hands out a fresh unit of work per write or lookup.
	OrderUoWFactory interface {
		Create() OrderUoW
	}

	// Recorder books earnings for a delivered order.
	Recorder interface {
		Record(ctx context.Context, o *order.Order) (earnings.Record, error)
	}

	// CodeDiscarder forgets verification state once an order is delivered.
	CodeDiscarder interface {
		Discard(orderID kernel.UUID)
	}
)

// StateMachine owns accepted orders. A transition is checked locally, then
// reported to the order service, and only applied once the service agrees.
// At most one transition per order is in flight.
type StateMachine struct {
	mu     sync.Mutex
	active map[kernel.UUID]*order.Order
	busy   map[kernel.UUID]struct{}

	service    ports.OrderService
	uowFactory OrderUoWFactory
	ledger     Recorder
	codes      CodeDiscarder
	clock      clock.Clock
	notifier   ports.Notifier
	metrics    *metrics.Metrics
	logger     *zap.Logger
}

// NewStateMachine builds the state machine. codes may be nil.
func NewStateMachine(
	service ports.OrderService,
	uowFactory OrderUoWFactory,
	ledger Recorder,
	codes CodeDiscarder,
	clk clock.Clock,
	notifier ports.Notifier,
	m *metrics.Metrics,
	logger *zap.Logger,
) (*StateMachine, error) {
	var missing []error
	if service == nil {
		missing = append(missing, errs.NewValueIsRequiredError("order service"))
	}
	if uowFactory == nil {
		missing = append(missing, errs.NewValueIsRequiredError("order unit of work factory"))
	}
	if ledger == nil {
		missing = append(missing, errs.NewValueIsRequiredError("ledger"))
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

	return &StateMachine{
		active:     make(map[kernel.UUID]*order.Order),
		busy:       make(map[kernel.UUID]struct{}),
		service:    service,
		uowFactory: uowFactory,
		ledger:     ledger,
		codes:      codes,
		clock:      clk,
		notifier:   notifier,
		metrics:    m,
		logger:     logger.With(zap.String("component", "delivery")),
	}, nil
}

// Take receives an Accepted order from the dispatch pool. The order is owned
// from this point even if persisting it fails; a later transition retries the write.
func (s *StateMachine) Take(ctx context.Context, o *order.Order) error {
	if err := o.Validate(); err != nil {
		return err
	}
	if o.Status() != order.Accepted {
		return errs.NewStateErrorWithCause(o.Status(), order.Accepted, errors.New("only accepted orders can be taken"))
	}

	s.mu.Lock()
	if _, ok := s.active[o.ID()]; ok {
		s.mu.Unlock()
		return errs.NewConflictError(o.ID().String(), "is already owned")
	}
	s.active[o.ID()] = o
	snapshot := o.Snapshot()
	s.mu.Unlock()

	s.persist(ctx, snapshot)
	return nil
}

// Restore reloads undelivered orders from storage, typically at startup.
// Orders already held in memory are kept as they are.
func (s *StateMachine) Restore(ctx context.Context) (int, error) {
	stored, err := s.uowFactory.Create().OrderRepository().ListActive(ctx)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	restored := 0
	for _, o := range stored {
		if _, ok := s.active[o.ID()]; ok {
			continue
		}
		s.active[o.ID()] = o
		restored++
	}
	s.logger.Info("active orders restored", zap.Int("count", restored))
	return restored, nil
}

// CurrentStatus reports the status of an owned or previously delivered order.
func (s *StateMachine) CurrentStatus(ctx context.Context, orderID kernel.UUID) (order.Status, error) {
	o, err := s.Order(ctx, orderID)
	if err != nil {
		return order.Unknown, err
	}
	return o.Status(), nil
}

// Order returns a snapshot of an owned order, falling back to storage for
// delivered ones. Unknown ids yield errs.ObjectNotFoundError.
func (s *StateMachine) Order(ctx context.Context, orderID kernel.UUID) (*order.Order, error) {
	s.mu.Lock()
	if o, ok := s.active[orderID]; ok {
		snapshot := o.Snapshot()
		s.mu.Unlock()
		return snapshot, nil
	}
	s.mu.Unlock()

	return s.uowFactory.Create().OrderRepository().Get(ctx, orderID)
}

// ActiveOrders returns snapshots of the undelivered orders, oldest first.
func (s *StateMachine) ActiveOrders() []*order.Order {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*order.Order, 0, len(s.active))
	for _, o := range s.active {
		out = append(out, o.Snapshot())
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt().Equal(out[j].CreatedAt()) {
			return out[i].ID().String() < out[j].ID().String()
		}
		return out[i].CreatedAt().Before(out[j].CreatedAt())
	})
	return out
}

// Transition moves an owned order to target, which must be its immediate
// successor. pod is required for, and only accepted with, Delivered.
//
// Errors:
//   - errs.ObjectNotFoundError: the order is not owned
//   - errs.ConflictError: another transition of the same order is in flight, or the service refused ownership
//   - errs.StateError, errs.VerificationError: rejected locally or by the service; order untouched
//   - errs.DispatchUnavailableError: the service could not be reached; order untouched
func (s *StateMachine) Transition(
	ctx context.Context,
	orderID kernel.UUID,
	target order.Status,
	pod *proof.ProofOfDelivery,
) (*order.Order, error) {
	s.mu.Lock()
	o, ok := s.active[orderID]
	if !ok {
		s.mu.Unlock()
		return nil, s.notOwned(ctx, orderID, target)
	}
	if _, inFlight := s.busy[orderID]; inFlight {
		s.mu.Unlock()
		return nil, errs.NewConflictError(orderID.String(), "another status update is in progress")
	}
	if err := o.CanTransitionTo(target, pod); err != nil {
		s.mu.Unlock()
		s.reject(ctx, orderID, target, err)
		return nil, err
	}
	s.busy[orderID] = struct{}{}
	s.mu.Unlock()

	if err := s.service.UpdateOrderStatus(ctx, orderID, target, pod); err != nil {
		s.release(orderID)
		if !errors.Is(err, errs.ErrInvalidTransition) &&
			!errors.Is(err, errs.ErrConflict) &&
			!errors.Is(err, errs.ErrVerificationFailed) &&
			!errors.Is(err, errs.ErrDispatchUnavailable) {
			err = errs.NewDispatchUnavailableError("update order status", err)
		}
		s.reject(ctx, orderID, target, err)
		return nil, err
	}

	s.mu.Lock()
	err := o.TransitionTo(target, pod, s.clock.Now())
	delete(s.busy, orderID)
	if err != nil {
		s.mu.Unlock()
		s.logger.Error("transition accepted remotely but rejected locally",
			zap.Stringer("order_id", orderID), zap.Stringer("target", target), zap.Error(err))
		return nil, err
	}
	if target == order.Delivered {
		delete(s.active, orderID)
	}
	snapshot := o.Snapshot()
	s.mu.Unlock()

	s.persist(ctx, snapshot)
	s.metrics.TransitionApplied(target.Code())
	s.logger.Info("order status changed", zap.Stringer("order_id", orderID), zap.Stringer("status", target))

	if target != order.Delivered {
		s.notifier.Notify(ctx, notification.Info, fmt.Sprintf("Order #%s is now %s", orderID.Short(), target))
		return snapshot, nil
	}

	s.notifier.Notify(ctx, notification.Success, fmt.Sprintf("Order #%s delivered", orderID.Short()))
	s.book(ctx, snapshot)
	if s.codes != nil {
		s.codes.Discard(orderID)
	}
	return snapshot, nil
}

// Advance moves an owned order to its next status. pod is required when that is Delivered.
func (s *StateMachine) Advance(ctx context.Context, orderID kernel.UUID, pod *proof.ProofOfDelivery) (*order.Order, error) {
	s.mu.Lock()
	o, ok := s.active[orderID]
	var next order.Status
	var hasNext bool
	if ok {
		next, hasNext = o.NextStatus()
	}
	s.mu.Unlock()

	if !ok {
		return nil, s.notOwned(ctx, orderID, order.Unknown)
	}
	if !hasNext {
		return nil, errs.NewStateErrorWithCause(o.Status(), order.Unknown, errors.New("order has no next status"))
	}
	return s.Transition(ctx, orderID, next, pod)
}

func (s *StateMachine) book(ctx context.Context, delivered *order.Order) {
	_, err := s.ledger.Record(ctx, delivered)
	switch {
	case err == nil:
	case errors.Is(err, errs.ErrDuplicateRecord):
		s.logger.Warn("earnings already booked", zap.Stringer("order_id", delivered.ID()))
	default:
		s.logger.Error("failed to book earnings", zap.Stringer("order_id", delivered.ID()), zap.Error(err))
		s.notifier.Notify(ctx, notification.Error,
			fmt.Sprintf("Earnings for order #%s could not be booked", delivered.ID().Short()))
	}
}

// notOwned explains why orderID cannot be moved: delivered orders are terminal,
// anything else is unknown to this agent.
func (s *StateMachine) notOwned(ctx context.Context, orderID kernel.UUID, target order.Status) error {
	stored, err := s.uowFactory.Create().OrderRepository().Get(ctx, orderID)
	if err == nil && stored.Status() == order.Delivered {
		stateErr := errs.NewStateError(stored.Status(), target)
		s.reject(ctx, orderID, target, stateErr)
		return stateErr
	}
	return errs.NewObjectNotFoundError("order", orderID)
}

func (s *StateMachine) reject(ctx context.Context, orderID kernel.UUID, target order.Status, err error) {
	class := "state"
	kind := notification.Warning
	switch {
	case errors.Is(err, errs.ErrVerificationFailed):
		class = "verification"
	case errors.Is(err, errs.ErrDispatchUnavailable):
		class = "unavailable"
		kind = notification.Error
	}
	s.metrics.TransitionRejected(class)
	s.notifier.Notify(ctx, kind, fmt.Sprintf("Order #%s cannot move to %s: %v", orderID.Short(), target, err))
}

func (s *StateMachine) release(orderID kernel.UUID) {
	s.mu.Lock()
	delete(s.busy, orderID)
	s.mu.Unlock()
}

// persist writes the snapshot, adding it when storage has never seen it.
// Failures are logged; the in-memory order stays authoritative.
func (s *StateMachine) persist(ctx context.Context, snapshot *order.Order) {
	err := s.save(ctx, snapshot)
	if err != nil {
		s.logger.Error("failed to persist order", zap.Stringer("order_id", snapshot.ID()), zap.Error(err))
	}
}

func (s *StateMachine) save(ctx context.Context, snapshot *order.Order) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	repo := uow.OrderRepository()
	err := repo.Update(ctx, snapshot)
	if errors.Is(err, errs.ErrObjectNotFound) {
		err = repo.Add(ctx, snapshot)
	}
	if err != nil {
		return err
	}
	return uow.Commit(ctx)
}
