package verification

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"math/big"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/proof"
)

var otpSpace = big.NewInt(1_000_000)

// LocalIssuer generates codes in-process when the order service cannot send them.
type LocalIssuer struct {
	random io.Reader
}

// NewLocalIssuer uses crypto/rand when random is nil.
func NewLocalIssuer(random io.Reader) LocalIssuer {
	if random == nil {
		random = rand.Reader
	}
	return LocalIssuer{random: random}
}

// GenerateOTP returns a uniformly random, zero-padded 6-digit code.
func (i LocalIssuer) GenerateOTP(_ context.Context, orderID kernel.UUID) (string, error) {
	if err := orderID.Validate(); err != nil {
		return "", err
	}
	n, err := rand.Int(i.random, otpSpace)
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	return fmt.Sprintf("%0*d", proof.OTPLength, n.Int64()), nil
}
