package verification_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"fulfillment/internal/core/application/feed"
	"fulfillment/internal/core/application/verification"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/notification"
	"fulfillment/internal/core/domain/model/proof"
	"fulfillment/internal/pkg/clock"
	"fulfillment/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var start = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

type MockIssuer struct{ mock.Mock }

func (m *MockIssuer) GenerateOTP(ctx context.Context, orderID kernel.UUID) (string, error) {
	args := m.Called(ctx, orderID)
	return args.String(0), args.Error(1)
}

type MockConfirmer struct{ mock.Mock }

func (m *MockConfirmer) VerifyOTP(ctx context.Context, orderID kernel.UUID, code string) error {
	return m.Called(ctx, orderID, code).Error(0)
}

func newVerifier(t *testing.T, issuer *MockIssuer, confirmer verification.OTPConfirmer) (*verification.Verifier, *feed.Feed) {
	t.Helper()
	clk := clock.NewMock(start)
	f, err := feed.NewFeed(50, clk, nil, nil, nil, nil)
	require.NoError(t, err)
	v, err := verification.NewVerifier(issuer, confirmer, clk, f, nil)
	require.NoError(t, err)
	return v, f
}

func TestVerifier_OTP(t *testing.T) {
	ctx := t.Context()
	orderA, orderB := kernel.NewUUID(), kernel.NewUUID()

	t.Run("should verify the exact latest code", func(t *testing.T) {
		issuer := new(MockIssuer)
		issuer.On("GenerateOTP", ctx, orderA).Return("111111", nil).Once()
		issuer.On("GenerateOTP", ctx, orderA).Return("222222", nil).Once()
		v, f := newVerifier(t, issuer, nil)

		_, err := v.CaptureOTP(ctx, orderA)
		require.NoError(t, err)
		code, err := v.CaptureOTP(ctx, orderA)
		require.NoError(t, err)
		assert.Equal(t, "222222", code)

		_, err = v.VerifyOTP(ctx, orderA, "111111")
		require.ErrorIs(t, err, errs.ErrVerificationFailed)

		p, err := v.VerifyOTP(ctx, orderA, "222222")
		require.NoError(t, err)
		assert.Equal(t, proof.OTP, p.Kind())
		assert.Equal(t, "222222", p.Value())
		assert.Equal(t, start, p.CapturedAt())

		entries := f.List(0)
		assert.Equal(t, notification.Info, entries[0].Type())
		assert.Equal(t, notification.Warning, entries[2].Type())
		issuer.AssertExpectations(t)
	})

	t.Run("should never verify another order with a foreign code", func(t *testing.T) {
		issuer := new(MockIssuer)
		issuer.On("GenerateOTP", ctx, orderA).Return("123456", nil).Once()
		v, _ := newVerifier(t, issuer, nil)
		_, err := v.CaptureOTP(ctx, orderA)
		require.NoError(t, err)

		_, err = v.VerifyOTP(ctx, orderB, "123456")

		var verr *errs.VerificationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "no OTP was generated for this order", verr.Reason)
	})

	t.Run("should reject malformed codes without consulting the service", func(t *testing.T) {
		issuer := new(MockIssuer)
		issuer.On("GenerateOTP", ctx, orderA).Return("123456", nil).Once()
		confirmer := new(MockConfirmer)
		v, _ := newVerifier(t, issuer, confirmer)
		_, err := v.CaptureOTP(ctx, orderA)
		require.NoError(t, err)

		for _, code := range []string{"12345", "1234567", "12345a", ""} {
			_, err = v.VerifyOTP(ctx, orderA, code)
			require.ErrorIs(t, err, errs.ErrVerificationFailed, code)
		}

		confirmer.AssertNotCalled(t, "VerifyOTP", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("should require remote confirmation when configured", func(t *testing.T) {
		issuer := new(MockIssuer)
		issuer.On("GenerateOTP", ctx, orderA).Return("654321", nil).Once()
		confirmer := new(MockConfirmer)
		confirmer.On("VerifyOTP", ctx, orderA, "654321").
			Return(errs.NewVerificationError("expired")).Once()
		confirmer.On("VerifyOTP", ctx, orderA, "654321").Return(nil).Once()
		v, _ := newVerifier(t, issuer, confirmer)
		_, err := v.CaptureOTP(ctx, orderA)
		require.NoError(t, err)

		_, err = v.VerifyOTP(ctx, orderA, "654321")
		require.ErrorIs(t, err, errs.ErrVerificationFailed)

		_, err = v.VerifyOTP(ctx, orderA, "654321")
		require.NoError(t, err)
		confirmer.AssertExpectations(t)
	})

	t.Run("should surface issuer failures", func(t *testing.T) {
		issuer := new(MockIssuer)
		issuer.On("GenerateOTP", ctx, orderA).
			Return("", errs.NewDispatchUnavailableError("generate otp", context.DeadlineExceeded)).Once()
		v, f := newVerifier(t, issuer, nil)

		_, err := v.CaptureOTP(ctx, orderA)

		require.ErrorIs(t, err, errs.ErrDispatchUnavailable)
		assert.Equal(t, 0, f.Len())
	})

	t.Run("should forget discarded codes", func(t *testing.T) {
		issuer := new(MockIssuer)
		issuer.On("GenerateOTP", ctx, orderA).Return("123456", nil).Once()
		v, _ := newVerifier(t, issuer, nil)
		_, err := v.CaptureOTP(ctx, orderA)
		require.NoError(t, err)

		v.Discard(orderA)

		_, err = v.VerifyOTP(ctx, orderA, "123456")
		require.ErrorIs(t, err, errs.ErrVerificationFailed)
	})
}

func TestVerifier_MediaProofs(t *testing.T) {
	v, _ := newVerifier(t, new(MockIssuer), nil)

	photo, err := v.CapturePhoto("media://photos/1")
	require.NoError(t, err)
	assert.Equal(t, proof.Photo, photo.Kind())

	sig, err := v.CaptureSignature("media://signatures/1")
	require.NoError(t, err)
	assert.Equal(t, proof.Signature, sig.Kind())

	_, err = v.CapturePhoto(" ")
	require.ErrorIs(t, err, errs.ErrVerificationFailed)
}

func TestLocalIssuer(t *testing.T) {
	t.Run("should pad to six digits", func(t *testing.T) {
		issuer := verification.NewLocalIssuer(bytes.NewReader(make([]byte, 64)))

		code, err := issuer.GenerateOTP(t.Context(), kernel.NewUUID())

		require.NoError(t, err)
		assert.Equal(t, "000000", code)
	})

	t.Run("should produce valid codes from crypto/rand", func(t *testing.T) {
		issuer := verification.NewLocalIssuer(nil)

		for range 20 {
			code, err := issuer.GenerateOTP(t.Context(), kernel.NewUUID())
			require.NoError(t, err)
			require.NoError(t, proof.ValidateOTPCode(code))
		}
	})
}
