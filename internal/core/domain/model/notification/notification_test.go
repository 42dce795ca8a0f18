package notification_test

import (
	"testing"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/notification"
	"fulfillment/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewNotification(t *testing.T) {
	at := time.Date(2026, 3, 2, 9, 0, 0, 0, time.FixedZone("IST", 19800))

	t.Run("should trim the message and store UTC time", func(t *testing.T) {
		n, err := notification.NewNotification(kernel.NewUUID(), notification.Success, "  Order accepted ", at)

		require.NoError(t, err)
		require.NoError(t, n.Validate())
		assert.Equal(t, "Order accepted", n.Message())
		assert.Equal(t, notification.Success, n.Type())
		assert.Equal(t, time.UTC, n.Time().Location())
		assert.True(t, n.Time().Equal(at))
	})

	t.Run("should reject missing parts", func(t *testing.T) {
		_, err := notification.NewNotification(kernel.UUID{}, notification.Unknown, " ", time.Time{})

		require.ErrorIs(t, err, errs.ErrValueIsRequired)
		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})
}

func TestParseType(t *testing.T) {
	for _, typ := range []notification.Type{notification.Info, notification.Success, notification.Warning, notification.Error} {
		parsed, err := notification.ParseType(typ.String())

		require.NoError(t, err)
		assert.Equal(t, typ, parsed)
	}

	_, err := notification.ParseType("unknown")
	require.ErrorIs(t, err, errs.ErrValueIsInvalid)
}
