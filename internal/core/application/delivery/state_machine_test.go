package delivery_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"fulfillment/internal/adapters/out/memory"
	"fulfillment/internal/core/application/delivery"
	"fulfillment/internal/core/application/feed"
	"fulfillment/internal/core/domain/model/earnings"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/notification"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/model/order/ordertest"
	"fulfillment/internal/core/domain/model/proof"
	"fulfillment/internal/pkg/clock"
	"fulfillment/internal/pkg/errs"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

var start = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

type MockOrderService struct{ mock.Mock }

func (m *MockOrderService) FetchOpenOffers(ctx context.Context, agentID kernel.UUID) ([]*order.Order, error) {
	args := m.Called(ctx, agentID)
	orders, _ := args.Get(0).([]*order.Order)
	return orders, args.Error(1)
}

func (m *MockOrderService) ClaimOrder(ctx context.Context, orderID, agentID kernel.UUID) error {
	return m.Called(ctx, orderID, agentID).Error(0)
}

func (m *MockOrderService) DeclineOrder(ctx context.Context, orderID kernel.UUID, reason string) error {
	return m.Called(ctx, orderID, reason).Error(0)
}

func (m *MockOrderService) UpdateOrderStatus(
	ctx context.Context, orderID kernel.UUID, status order.Status, pod *proof.ProofOfDelivery,
) error {
	return m.Called(ctx, orderID, status, pod).Error(0)
}

func (m *MockOrderService) GenerateOTP(ctx context.Context, orderID kernel.UUID) (string, error) {
	args := m.Called(ctx, orderID)
	return args.String(0), args.Error(1)
}

func (m *MockOrderService) VerifyOTP(ctx context.Context, orderID kernel.UUID, code string) error {
	return m.Called(ctx, orderID, code).Error(0)
}

type MockRecorder struct{ mock.Mock }

func (m *MockRecorder) Record(ctx context.Context, o *order.Order) (earnings.Record, error) {
	args := m.Called(ctx, o)
	rec, _ := args.Get(0).(earnings.Record)
	return rec, args.Error(1)
}

type MockDiscarder struct{ mock.Mock }

func (m *MockDiscarder) Discard(orderID kernel.UUID) {
	m.Called(orderID)
}

type orderUoWFactory struct {
	memory.UnitOfWorkFactory
}

func (f orderUoWFactory) Create() delivery.OrderUoW {
	return f.UnitOfWorkFactory.Create()
}

type StateMachineSuite struct {
	suite.Suite

	ctx       context.Context
	agent     kernel.UUID
	clock     *clock.Mock
	store     *memory.Store
	service   *MockOrderService
	recorder  *MockRecorder
	discarder *MockDiscarder
	feed      *feed.Feed
	machine   *delivery.StateMachine
}

func TestStateMachineSuite(t *testing.T) {
	suite.Run(t, new(StateMachineSuite))
}

func (s *StateMachineSuite) SetupTest() {
	s.ctx = context.Background()
	s.agent = kernel.NewUUID()
	s.clock = clock.NewMock(start)
	s.store = memory.NewStore()
	s.service = new(MockOrderService)
	s.recorder = new(MockRecorder)
	s.discarder = new(MockDiscarder)

	var err error
	s.feed, err = feed.NewFeed(100, s.clock, nil, nil, nil, nil)
	s.Require().NoError(err)
	s.machine = s.newMachine()
}

func (s *StateMachineSuite) newMachine() *delivery.StateMachine {
	m, err := delivery.NewStateMachine(
		s.service,
		orderUoWFactory{memory.NewUnitOfWorkFactory(s.store)},
		s.recorder,
		s.discarder,
		s.clock,
		s.feed,
		nil,
		nil,
	)
	s.Require().NoError(err)
	return m
}

func (s *StateMachineSuite) take(o *order.Order) {
	s.Require().NoError(s.machine.Take(s.ctx, o))
}

func (s *StateMachineSuite) otp() *proof.ProofOfDelivery {
	pod, err := proof.NewOTP("482913", s.clock.Now())
	s.Require().NoError(err)
	return &pod
}

func (s *StateMachineSuite) lastEntry() notification.Notification {
	entries := s.feed.List(1)
	s.Require().Len(entries, 1)
	return entries[0]
}

func (s *StateMachineSuite) TestTake() {
	o := ordertest.Accepted(kernel.NewUUID(), s.agent, 30000, start)

	s.take(o)

	s.Require().Len(s.machine.ActiveOrders(), 1)
	stored, err := memory.NewUnitOfWork(s.store).OrderRepository().Get(s.ctx, o.ID())
	s.Require().NoError(err)
	s.Equal(order.Accepted, stored.Status())

	s.ErrorIs(s.machine.Take(s.ctx, o), errs.ErrConflict)
	s.ErrorIs(s.machine.Take(s.ctx, ordertest.Station(kernel.NewUUID(), 100, start)), errs.ErrInvalidTransition)
}

func (s *StateMachineSuite) TestTransition_WalksStationOrderToDelivered() {
	o := ordertest.Accepted(kernel.NewUUID(), s.agent, 30000, start)
	s.take(o)
	pod := s.otp()
	s.service.On("UpdateOrderStatus", s.ctx, o.ID(), order.PickedUp, (*proof.ProofOfDelivery)(nil)).Return(nil).Once()
	s.service.On("UpdateOrderStatus", s.ctx, o.ID(), order.ReachedStation, (*proof.ProofOfDelivery)(nil)).Return(nil).Once()
	s.service.On("UpdateOrderStatus", s.ctx, o.ID(), order.Delivered, pod).Return(nil).Once()
	s.recorder.On("Record", s.ctx, mock.MatchedBy(func(d *order.Order) bool {
		return d.IsEqual(o) && d.Status() == order.Delivered
	})).Return(earnings.Record{}, nil).Once()
	s.discarder.On("Discard", o.ID()).Once()

	for _, next := range []order.Status{order.PickedUp, order.ReachedStation} {
		s.clock.Advance(time.Minute)
		got, err := s.machine.Transition(s.ctx, o.ID(), next, nil)
		s.Require().NoError(err)
		s.Equal(next, got.Status())
		s.Equal(notification.Info, s.lastEntry().Type())
	}
	s.clock.Advance(time.Minute)
	got, err := s.machine.Transition(s.ctx, o.ID(), order.Delivered, pod)

	s.Require().NoError(err)
	s.Equal(order.Delivered, got.Status())
	s.Len(got.History(), 5)
	attached, ok := got.Proof()
	s.True(ok)
	s.Equal(*pod, attached)
	s.Empty(s.machine.ActiveOrders())
	s.Equal(notification.Success, s.lastEntry().Type())

	status, err := s.machine.CurrentStatus(s.ctx, o.ID())
	s.Require().NoError(err)
	s.Equal(order.Delivered, status)

	s.service.AssertExpectations(s.T())
	s.recorder.AssertExpectations(s.T())
	s.discarder.AssertExpectations(s.T())
}

func (s *StateMachineSuite) TestTransition_RejectsSkippingLocally() {
	o := ordertest.Accepted(kernel.NewUUID(), s.agent, 30000, start)
	s.take(o)

	_, err := s.machine.Transition(s.ctx, o.ID(), order.Delivered, s.otp())

	var stateErr *errs.StateError
	s.Require().ErrorAs(err, &stateErr)
	s.Equal("Accepted", stateErr.From)
	s.Equal(notification.Warning, s.lastEntry().Type())
	status, err := s.machine.CurrentStatus(s.ctx, o.ID())
	s.Require().NoError(err)
	s.Equal(order.Accepted, status)
	s.service.AssertNotCalled(s.T(), "UpdateOrderStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (s *StateMachineSuite) TestTransition_RequiresProofForDelivered() {
	o := ordertest.Accepted(kernel.NewUUID(), s.agent, 30000, start)
	s.take(o)
	s.service.On("UpdateOrderStatus", s.ctx, o.ID(), mock.Anything, (*proof.ProofOfDelivery)(nil)).Return(nil).Twice()
	_, err := s.machine.Transition(s.ctx, o.ID(), order.PickedUp, nil)
	s.Require().NoError(err)
	_, err = s.machine.Transition(s.ctx, o.ID(), order.ReachedStation, nil)
	s.Require().NoError(err)

	_, err = s.machine.Transition(s.ctx, o.ID(), order.Delivered, nil)

	var verErr *errs.VerificationError
	s.Require().ErrorAs(err, &verErr)
	s.Equal(notification.Warning, s.lastEntry().Type())
	s.Len(s.machine.ActiveOrders(), 1)
	s.recorder.AssertNotCalled(s.T(), "Record", mock.Anything, mock.Anything)
}

func (s *StateMachineSuite) TestTransition_ServiceUnavailableLeavesOrderUntouched() {
	o := ordertest.Accepted(kernel.NewUUID(), s.agent, 30000, start)
	s.take(o)
	s.service.On("UpdateOrderStatus", s.ctx, o.ID(), order.PickedUp, (*proof.ProofOfDelivery)(nil)).
		Return(errors.New("connection refused")).Once()

	_, err := s.machine.Transition(s.ctx, o.ID(), order.PickedUp, nil)

	s.Require().ErrorIs(err, errs.ErrDispatchUnavailable)
	s.Equal(notification.Error, s.lastEntry().Type())
	status, err := s.machine.CurrentStatus(s.ctx, o.ID())
	s.Require().NoError(err)
	s.Equal(order.Accepted, status)

	s.service.On("UpdateOrderStatus", s.ctx, o.ID(), order.PickedUp, (*proof.ProofOfDelivery)(nil)).Return(nil).Once()
	got, err := s.machine.Transition(s.ctx, o.ID(), order.PickedUp, nil)
	s.Require().NoError(err)
	s.Equal(order.PickedUp, got.Status())
}

func (s *StateMachineSuite) TestTransition_ServiceRejection() {
	o := ordertest.Accepted(kernel.NewUUID(), s.agent, 30000, start)
	s.take(o)
	s.service.On("UpdateOrderStatus", s.ctx, o.ID(), order.PickedUp, (*proof.ProofOfDelivery)(nil)).
		Return(errs.NewStateError(order.Accepted, order.PickedUp)).Once()

	_, err := s.machine.Transition(s.ctx, o.ID(), order.PickedUp, nil)

	s.Require().ErrorIs(err, errs.ErrInvalidTransition)
	s.NotErrorIs(err, errs.ErrDispatchUnavailable)
}

func (s *StateMachineSuite) TestTransition_OneUpdateInFlightPerOrder() {
	o := ordertest.Accepted(kernel.NewUUID(), s.agent, 30000, start)
	s.take(o)
	var concurrentErr error
	s.service.On("UpdateOrderStatus", s.ctx, o.ID(), order.PickedUp, (*proof.ProofOfDelivery)(nil)).
		Run(func(mock.Arguments) {
			_, concurrentErr = s.machine.Transition(s.ctx, o.ID(), order.PickedUp, nil)
		}).
		Return(nil).Once()

	_, err := s.machine.Transition(s.ctx, o.ID(), order.PickedUp, nil)

	s.Require().NoError(err)
	s.ErrorIs(concurrentErr, errs.ErrConflict)
}

func (s *StateMachineSuite) TestTransition_DeliveredOrderIsTerminal() {
	o := ordertest.Delivered(kernel.NewUUID(), s.agent, 30000, start, start)
	s.Require().NoError(memory.NewUnitOfWork(s.store).OrderRepository().Add(s.ctx, o))

	_, err := s.machine.Transition(s.ctx, o.ID(), order.PickedUp, nil)
	s.ErrorIs(err, errs.ErrInvalidTransition)

	_, err = s.machine.Transition(s.ctx, kernel.NewUUID(), order.PickedUp, nil)
	s.ErrorIs(err, errs.ErrObjectNotFound)
}

func (s *StateMachineSuite) TestTransition_DuplicateEarningsAreDropped() {
	o := ordertest.Accepted(kernel.NewUUID(), s.agent, 30000, start)
	s.take(o)
	s.service.On("UpdateOrderStatus", s.ctx, o.ID(), mock.Anything, mock.Anything).Return(nil)
	s.recorder.On("Record", s.ctx, mock.Anything).
		Return(earnings.Record{}, errs.NewDuplicateRecordError("earnings record", o.ID())).Once()
	s.discarder.On("Discard", o.ID()).Once()

	_, err := s.machine.Advance(s.ctx, o.ID(), nil)
	s.Require().NoError(err)
	_, err = s.machine.Advance(s.ctx, o.ID(), nil)
	s.Require().NoError(err)
	got, err := s.machine.Advance(s.ctx, o.ID(), s.otp())

	s.Require().NoError(err)
	s.Equal(order.Delivered, got.Status())
	s.Equal(notification.Success, s.lastEntry().Type())
}

func (s *StateMachineSuite) TestAdvance_FollowsTargetKind() {
	o := ordertest.Address(kernel.NewUUID(), 30000, start)
	s.Require().NoError(o.Accept(s.agent, start))
	s.take(o)
	s.service.On("UpdateOrderStatus", s.ctx, o.ID(), mock.Anything, (*proof.ProofOfDelivery)(nil)).Return(nil)

	_, err := s.machine.Advance(s.ctx, o.ID(), nil)
	s.Require().NoError(err)
	got, err := s.machine.Advance(s.ctx, o.ID(), nil)

	s.Require().NoError(err)
	s.Equal(order.OutForDelivery, got.Status())
}

func (s *StateMachineSuite) TestRestore() {
	repo := memory.NewUnitOfWork(s.store).OrderRepository()
	first := ordertest.Accepted(kernel.NewUUID(), s.agent, 30000, start)
	second := ordertest.Accepted(kernel.NewUUID(), s.agent, 12000, start.Add(time.Minute))
	s.Require().NoError(second.TransitionTo(order.PickedUp, nil, start.Add(2*time.Minute)))
	done := ordertest.Delivered(kernel.NewUUID(), s.agent, 5000, start, start)
	for _, o := range []*order.Order{first, second, done} {
		s.Require().NoError(repo.Add(s.ctx, o))
	}

	restarted := s.newMachine()
	n, err := restarted.Restore(s.ctx)

	s.Require().NoError(err)
	s.Equal(2, n)
	active := restarted.ActiveOrders()
	s.Require().Len(active, 2)
	s.True(active[0].IsEqual(first))
	s.Equal(order.PickedUp, active[1].Status())

	n, err = restarted.Restore(s.ctx)
	s.Require().NoError(err)
	s.Zero(n)
}
