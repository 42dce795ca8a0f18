package proof_test

import (
	"testing"
	"time"

	"fulfillment/internal/core/domain/model/proof"
	"fulfillment/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var capturedAt = time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)

func TestNewOTP(t *testing.T) {
	t.Run("accepts six digits", func(t *testing.T) {
		p, err := proof.NewOTP("042917", capturedAt)

		require.NoError(t, err)
		require.NoError(t, p.Validate())
		assert.Equal(t, proof.OTP, p.Kind())
		assert.Equal(t, "042917", p.Value())
		assert.Equal(t, capturedAt, p.CapturedAt())
	})

	t.Run("rejects anything that is not exactly six digits", func(t *testing.T) {
		for _, code := range []string{"", "12345", "1234567", "12a456", " 12345", "１２３４５６"} {
			_, err := proof.NewOTP(code, capturedAt)

			require.ErrorIs(t, err, errs.ErrValueIsInvalid, code)
		}
	})
}

func TestNewPhotoAndSignature(t *testing.T) {
	t.Run("accept any non-empty media reference", func(t *testing.T) {
		photo, err := proof.NewPhoto("media://photos/7f3a", capturedAt)
		require.NoError(t, err)
		assert.Equal(t, proof.Photo, photo.Kind())

		sig, err := proof.NewSignature("media://signatures/91c2", capturedAt)
		require.NoError(t, err)
		assert.Equal(t, proof.Signature, sig.Kind())
	})

	t.Run("require a reference and a capture time", func(t *testing.T) {
		_, err := proof.NewPhoto("  ", time.Time{})

		require.ErrorIs(t, err, errs.ErrValueIsRequired)
		assert.Contains(t, err.Error(), "photo value")
		assert.Contains(t, err.Error(), "captured at")
	})
}

func TestRestore(t *testing.T) {
	p, err := proof.Restore(proof.Signature, "media://signatures/1", capturedAt)
	require.NoError(t, err)
	assert.Equal(t, proof.Signature, p.Kind())

	_, err = proof.Restore(proof.OTP, "abc", capturedAt)
	require.Error(t, err)

	_, err = proof.Restore(proof.UnknownKind, "x", capturedAt)
	require.ErrorIs(t, err, errs.ErrValueIsInvalid)
}

func TestParseKind(t *testing.T) {
	for _, k := range []proof.Kind{proof.OTP, proof.Photo, proof.Signature} {
		parsed, err := proof.ParseKind(k.String())

		require.NoError(t, err)
		assert.Equal(t, k, parsed)
	}

	_, err := proof.ParseKind("fingerprint")
	require.Error(t, err)
}

func TestProofOfDelivery_ZeroValueIsInvalid(t *testing.T) {
	var p proof.ProofOfDelivery

	assert.Equal(t, proof.ErrProofIsNotConstructed, p.Validate())
}
