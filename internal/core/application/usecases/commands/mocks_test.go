package commands_test

import (
	"context"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/model/proof"

	"github.com/stretchr/testify/mock"
)

type MockPool struct{ mock.Mock }

func (m *MockPool) Refresh(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockPool) Accept(ctx context.Context, orderID kernel.UUID) (*order.Order, error) {
	args := m.Called(ctx, orderID)
	o, _ := args.Get(0).(*order.Order)
	return o, args.Error(1)
}

func (m *MockPool) Decline(ctx context.Context, orderID kernel.UUID, reason string) error {
	return m.Called(ctx, orderID, reason).Error(0)
}

type MockDriver struct{ mock.Mock }

func (m *MockDriver) Transition(
	ctx context.Context, orderID kernel.UUID, target order.Status, pod *proof.ProofOfDelivery,
) (*order.Order, error) {
	args := m.Called(ctx, orderID, target, pod)
	o, _ := args.Get(0).(*order.Order)
	return o, args.Error(1)
}

func (m *MockDriver) Advance(ctx context.Context, orderID kernel.UUID, pod *proof.ProofOfDelivery) (*order.Order, error) {
	args := m.Called(ctx, orderID, pod)
	o, _ := args.Get(0).(*order.Order)
	return o, args.Error(1)
}

func (m *MockDriver) Order(ctx context.Context, orderID kernel.UUID) (*order.Order, error) {
	args := m.Called(ctx, orderID)
	o, _ := args.Get(0).(*order.Order)
	return o, args.Error(1)
}

type MockVerifier struct{ mock.Mock }

func (m *MockVerifier) VerifyOTP(ctx context.Context, orderID kernel.UUID, code string) (proof.ProofOfDelivery, error) {
	args := m.Called(ctx, orderID, code)
	pod, _ := args.Get(0).(proof.ProofOfDelivery)
	return pod, args.Error(1)
}

func (m *MockVerifier) CapturePhoto(mediaRef string) (proof.ProofOfDelivery, error) {
	args := m.Called(mediaRef)
	pod, _ := args.Get(0).(proof.ProofOfDelivery)
	return pod, args.Error(1)
}

func (m *MockVerifier) CaptureSignature(mediaRef string) (proof.ProofOfDelivery, error) {
	args := m.Called(mediaRef)
	pod, _ := args.Get(0).(proof.ProofOfDelivery)
	return pod, args.Error(1)
}

func (m *MockVerifier) CaptureOTP(ctx context.Context, orderID kernel.UUID) (string, error) {
	args := m.Called(ctx, orderID)
	return args.String(0), args.Error(1)
}

type MockLedger struct{ mock.Mock }

func (m *MockLedger) Settle(ctx context.Context, amount kernel.Money) (kernel.Money, error) {
	args := m.Called(ctx, amount)
	balance, _ := args.Get(0).(kernel.Money)
	return balance, args.Error(1)
}

type MockFeed struct{ mock.Mock }

func (m *MockFeed) Clear(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}
