// Package proof models the evidence an agent captures to close an order:
// a customer one-time password, a photo, or a signature.
package proof

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

// OTPLength is the exact number of decimal digits in a delivery OTP.
const OTPLength = 6

// Kind is the closed set of proof variants.
type Kind int

const (
	UnknownKind Kind = iota
	OTP
	Photo
	Signature
)

func (k Kind) String() string {
	switch k {
	case OTP:
		return "otp"
	case Photo:
		return "photo"
	case Signature:
		return "signature"
	case UnknownKind:
		return "unknown"
	}
	return "unknown"
}

// ParseKind maps a wire name ("otp", "photo", "signature") to a Kind.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "otp":
		return OTP, nil
	case "photo":
		return Photo, nil
	case "signature":
		return Signature, nil
	}
	return UnknownKind, errs.NewValueIsInvalidErrorWithCause("proof kind", fmt.Errorf("%q is not a proof kind", s))
}

var ErrProofIsNotConstructed = errors.New("ProofOfDelivery must be created via NewOTP, NewPhoto or NewSignature")

// ProofOfDelivery is attached to an order at its transition into Delivered.
// For OTP the value is the six-digit code; for Photo and Signature it is an
// opaque media reference issued by the media store.
type ProofOfDelivery struct {
	kind       Kind
	value      string
	capturedAt time.Time
	guard      guard.ConstructorGuard
}

// NewOTP builds an OTP proof; code must be exactly six ASCII digits.
func NewOTP(code string, capturedAt time.Time) (ProofOfDelivery, error) {
	if err := ValidateOTPCode(code); err != nil {
		return ProofOfDelivery{}, err
	}
	return newProof(OTP, code, capturedAt)
}

// NewPhoto builds a photo proof from a media reference.
func NewPhoto(mediaRef string, capturedAt time.Time) (ProofOfDelivery, error) {
	return newProof(Photo, strings.TrimSpace(mediaRef), capturedAt)
}

// NewSignature builds a signature proof from a media reference.
func NewSignature(mediaRef string, capturedAt time.Time) (ProofOfDelivery, error) {
	return newProof(Signature, strings.TrimSpace(mediaRef), capturedAt)
}

// Restore rebuilds a proof read from storage.
func Restore(kind Kind, value string, capturedAt time.Time) (ProofOfDelivery, error) {
	switch kind {
	case OTP:
		return NewOTP(value, capturedAt)
	case Photo:
		return NewPhoto(value, capturedAt)
	case Signature:
		return NewSignature(value, capturedAt)
	case UnknownKind:
	}
	return ProofOfDelivery{}, errs.NewValueIsInvalidErrorWithCause("proof kind", fmt.Errorf("%d is not a proof kind", kind))
}

func newProof(kind Kind, value string, capturedAt time.Time) (ProofOfDelivery, error) {
	if err := errors.Join(
		requiredValue(kind, value),
		requiredTime(capturedAt),
	); err != nil {
		return ProofOfDelivery{}, err
	}

	return ProofOfDelivery{
		kind:       kind,
		value:      value,
		capturedAt: capturedAt.UTC(),
		guard:      guard.NewConstructorGuard(),
	}, nil
}

// ValidateOTPCode checks the exact six-digit format without allocating a proof.
func ValidateOTPCode(code string) error {
	if len(code) != OTPLength {
		return errs.NewValueIsInvalidErrorWithCause("otp", fmt.Errorf("must be exactly %d digits", OTPLength))
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return errs.NewValueIsInvalidErrorWithCause("otp", fmt.Errorf("must be exactly %d digits", OTPLength))
		}
	}
	return nil
}

func (p ProofOfDelivery) Validate() error {
	return p.guard.Validate(ErrProofIsNotConstructed)
}

func (p ProofOfDelivery) Kind() Kind {
	return p.kind
}

func (p ProofOfDelivery) Value() string {
	return p.value
}

func (p ProofOfDelivery) CapturedAt() time.Time {
	return p.capturedAt
}

func requiredValue(kind Kind, value string) error {
	if value == "" {
		return errs.NewValueIsRequiredError(kind.String() + " value")
	}
	return nil
}

func requiredTime(at time.Time) error {
	if at.IsZero() {
		return errs.NewValueIsRequiredError("captured at")
	}
	return nil
}
