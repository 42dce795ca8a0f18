package session_test

import (
	"testing"
	"time"

	"fulfillment/internal/core/application/session"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSession(t *testing.T) {
	agent := kernel.NewUUID()

	t.Run("defaults to UTC", func(t *testing.T) {
		s, err := session.NewSession(agent, session.DefaultOfferWindow, nil)

		require.NoError(t, err)
		require.NoError(t, s.Validate())
		assert.True(t, s.AgentID().IsEqual(agent))
		assert.Equal(t, 30*time.Second, s.OfferWindow())
		assert.Equal(t, time.UTC, s.Location())
	})

	t.Run("converts to the agent zone", func(t *testing.T) {
		ist := time.FixedZone("IST", 19800)
		s, err := session.NewSession(agent, time.Minute, ist)
		require.NoError(t, err)

		local := s.Local(time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC))

		assert.Equal(t, 2, local.Day())
	})

	t.Run("rejects a missing agent and a zero window", func(t *testing.T) {
		_, err := session.NewSession(kernel.UUID{}, 0, nil)

		require.ErrorIs(t, err, errs.ErrValueIsRequired)
		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})

	t.Run("zero value is invalid", func(t *testing.T) {
		assert.Equal(t, session.ErrSessionIsNotConstructed, session.Session{}.Validate())
	})
}
