// Package verification validates and packages proof-of-delivery evidence.
package verification

import (
	"context"
	"crypto/subtle"
	"errors"
	"sync"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/notification"
	"fulfillment/internal/core/domain/model/proof"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/clock"
	"fulfillment/internal/pkg/errs"

	"go.uber.org/zap"
)

// OTPConfirmer asks the order service to confirm a submitted code.
type OTPConfirmer interface {
	VerifyOTP(ctx context.Context, orderID kernel.UUID, code string) error
}

// Verifier remembers the most recent OTP per order and turns agent input into
// a ProofOfDelivery. OTP checks are exact; photo and signature references are
// accepted as given.
type Verifier struct {
	mu    sync.Mutex
	codes map[kernel.UUID]string

	issuer    ports.OTPIssuer
	confirmer OTPConfirmer
	clock     clock.Clock
	notifier  ports.Notifier
	logger    *zap.Logger
}

// NewVerifier builds a verifier. confirmer may be nil, in which case codes are
// checked locally only.
func NewVerifier(
	issuer ports.OTPIssuer,
	confirmer OTPConfirmer,
	clk clock.Clock,
	notifier ports.Notifier,
	logger *zap.Logger,
) (*Verifier, error) {
	if issuer == nil {
		return nil, errs.NewValueIsRequiredError("otp issuer")
	}
	if clk == nil {
		return nil, errs.NewValueIsRequiredError("clock")
	}
	if notifier == nil {
		return nil, errs.NewValueIsRequiredError("notifier")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Verifier{
		codes:     make(map[kernel.UUID]string),
		issuer:    issuer,
		confirmer: confirmer,
		clock:     clk,
		notifier:  notifier,
		logger:    logger.With(zap.String("component", "verifier")),
	}, nil
}

// CaptureOTP has a fresh code generated and sent to the customer. It replaces
// any earlier code for the same order.
func (v *Verifier) CaptureOTP(ctx context.Context, orderID kernel.UUID) (string, error) {
	if err := orderID.Validate(); err != nil {
		return "", err
	}

	code, err := v.issuer.GenerateOTP(ctx, orderID)
	if err != nil {
		return "", err
	}
	if err = proof.ValidateOTPCode(code); err != nil {
		return "", errs.NewValueIsInvalidErrorWithCause("generated otp", err)
	}

	v.mu.Lock()
	v.codes[orderID] = code
	v.mu.Unlock()

	v.notifier.Notify(ctx, notification.Info, "OTP sent to customer for order #"+orderID.Short())
	return code, nil
}

// VerifyOTP returns an OTP proof only if code equals the latest code generated for
// orderID. A failed check changes no state.
func (v *Verifier) VerifyOTP(ctx context.Context, orderID kernel.UUID, code string) (proof.ProofOfDelivery, error) {
	if err := orderID.Validate(); err != nil {
		return proof.ProofOfDelivery{}, err
	}

	if err := v.matchLatest(orderID, code); err != nil {
		v.logger.Info("otp rejected", zap.Stringer("order_id", orderID), zap.Error(err))
		v.notifier.Notify(ctx, notification.Warning, "OTP rejected for order #"+orderID.Short())
		return proof.ProofOfDelivery{}, err
	}

	if v.confirmer != nil {
		if err := v.confirmer.VerifyOTP(ctx, orderID, code); err != nil {
			if errors.Is(err, errs.ErrVerificationFailed) {
				v.notifier.Notify(ctx, notification.Warning, "OTP rejected for order #"+orderID.Short())
			}
			return proof.ProofOfDelivery{}, err
		}
	}

	return proof.NewOTP(code, v.clock.Now())
}

// CapturePhoto accepts any non-empty media reference.
func (v *Verifier) CapturePhoto(mediaRef string) (proof.ProofOfDelivery, error) {
	p, err := proof.NewPhoto(mediaRef, v.clock.Now())
	if err != nil {
		return proof.ProofOfDelivery{}, errs.NewVerificationErrorWithCause("photo reference is required", err)
	}
	return p, nil
}

// CaptureSignature accepts any non-empty media reference.
func (v *Verifier) CaptureSignature(mediaRef string) (proof.ProofOfDelivery, error) {
	p, err := proof.NewSignature(mediaRef, v.clock.Now())
	if err != nil {
		return proof.ProofOfDelivery{}, errs.NewVerificationErrorWithCause("signature reference is required", err)
	}
	return p, nil
}

// Discard forgets the code of a delivered order.
func (v *Verifier) Discard(orderID kernel.UUID) {
	v.mu.Lock()
	delete(v.codes, orderID)
	v.mu.Unlock()
}

func (v *Verifier) matchLatest(orderID kernel.UUID, code string) error {
	if err := proof.ValidateOTPCode(code); err != nil {
		return errs.NewVerificationErrorWithCause("malformed OTP", err)
	}

	v.mu.Lock()
	expected, ok := v.codes[orderID]
	v.mu.Unlock()

	if !ok {
		return errs.NewVerificationError("no OTP was generated for this order")
	}
	if subtle.ConstantTimeCompare([]byte(expected), []byte(code)) != 1 {
		return errs.NewVerificationError("OTP does not match")
	}
	return nil
}
