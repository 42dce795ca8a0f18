package order_test

import (
	"testing"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/model/order/ordertest"
	"fulfillment/internal/core/domain/model/proof"
	"fulfillment/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var createdAt = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func validParts(t *testing.T) ([]order.Item, kernel.DeliveryTarget, order.Contact) {
	t.Helper()
	item, err := order.NewItem("Masala Dosa", 2, 15000)
	require.NoError(t, err)
	target, err := kernel.NewAddressTarget("12 MG Road")
	require.NoError(t, err)
	contact, err := order.NewContact("Asha", "+919800000001")
	require.NoError(t, err)
	return []order.Item{item}, target, contact
}

func otp(t *testing.T, at time.Time) *proof.ProofOfDelivery {
	t.Helper()
	p, err := proof.NewOTP("123456", at)
	require.NoError(t, err)
	return &p
}

func TestNewOrder(t *testing.T) {
	items, target, contact := validParts(t)
	id := kernel.NewUUID()

	t.Run("should create pending order with one history entry", func(t *testing.T) {
		o, err := order.NewOrder(id, items, 30000, target, contact, createdAt)

		require.NoError(t, err)
		require.NoError(t, o.Validate())
		assert.True(t, o.ID().IsEqual(id))
		assert.Equal(t, kernel.Money(30000), o.Total())
		assert.Equal(t, order.Pending, o.Status())
		assert.Nil(t, o.Agent())
		assert.Equal(t, []order.StatusChange{{Status: order.Pending, At: createdAt}}, o.History())
		_, hasProof := o.Proof()
		assert.False(t, hasProof)
	})

	t.Run("should join every validation error", func(t *testing.T) {
		o, err := order.NewOrder(kernel.UUID{}, nil, 0, kernel.DeliveryTarget{}, order.Contact{}, time.Time{})

		require.Error(t, err)
		assert.Nil(t, o)
		assert.Contains(t, err.Error(), "UUID must be created")
		assert.Contains(t, err.Error(), "items")
		assert.Contains(t, err.Error(), "0 is not greater than 0")
		assert.Contains(t, err.Error(), "contact")
		assert.Contains(t, err.Error(), "created at")
	})

	t.Run("should copy items", func(t *testing.T) {
		src := append([]order.Item(nil), items...)
		o, err := order.NewOrder(id, src, 30000, target, contact, createdAt)
		require.NoError(t, err)

		src[0] = order.Item{}

		assert.Equal(t, "Masala Dosa", o.Items()[0].Name())
	})
}

func TestOrder_Validate(t *testing.T) {
	t.Run("should fail for nil order", func(t *testing.T) {
		var o *order.Order

		assert.Equal(t, order.ErrOrderIsNotConstructed, o.Validate())
	})

	t.Run("should fail for zero value order", func(t *testing.T) {
		var o order.Order

		assert.Equal(t, order.ErrOrderIsNotConstructed, o.Validate())
	})
}

func TestOrder_Accept(t *testing.T) {
	agent := kernel.NewUUID()

	t.Run("should move pending order to accepted", func(t *testing.T) {
		o := ordertest.Station(kernel.NewUUID(), 30000, createdAt)
		at := createdAt.Add(10 * time.Second)

		require.NoError(t, o.Accept(agent, at))

		assert.Equal(t, order.Accepted, o.Status())
		require.NotNil(t, o.Agent())
		assert.True(t, o.Agent().IsEqual(agent))
		assert.Equal(t, order.StatusChange{Status: order.Accepted, At: at}, o.History()[1])
	})

	t.Run("should not accept twice", func(t *testing.T) {
		o := ordertest.Accepted(kernel.NewUUID(), agent, 30000, createdAt)

		err := o.Accept(kernel.NewUUID(), createdAt)

		require.ErrorIs(t, err, errs.ErrInvalidTransition)
		assert.True(t, o.Agent().IsEqual(agent))
	})

	t.Run("should accept when the order service clock is ahead", func(t *testing.T) {
		// Given an order stamped by the service two seconds after the local clock
		o := ordertest.Station(kernel.NewUUID(), 30000, createdAt.Add(2*time.Second))

		// When the agent accepts it at local time
		err := o.Accept(agent, createdAt)

		// Then acceptance is recorded at the creation time, never before it
		require.NoError(t, err)
		assert.Equal(t, order.Accepted, o.Status())
		assert.Equal(t, createdAt.Add(2*time.Second), o.History()[1].At)
		require.NoError(t, o.TransitionTo(order.PickedUp, nil, createdAt.Add(time.Second)))
	})

	t.Run("should reject invalid agent", func(t *testing.T) {
		o := ordertest.Station(kernel.NewUUID(), 30000, createdAt)

		err := o.Accept(kernel.UUID{}, createdAt)

		require.Error(t, err)
		assert.Equal(t, order.Pending, o.Status())
	})
}

func TestOrder_TransitionTo(t *testing.T) {
	agent := kernel.NewUUID()

	t.Run("should walk a station order to delivered", func(t *testing.T) {
		o := ordertest.Accepted(kernel.NewUUID(), agent, 30000, createdAt)
		at := createdAt

		for _, next := range []order.Status{order.PickedUp, order.ReachedStation} {
			at = at.Add(time.Minute)
			require.NoError(t, o.TransitionTo(next, nil, at))
		}
		at = at.Add(time.Minute)
		require.NoError(t, o.TransitionTo(order.Delivered, otp(t, at), at))

		assert.Equal(t, order.Delivered, o.Status())
		assert.True(t, o.Status().IsTerminal())
		assert.Len(t, o.History(), 5)
		pod, ok := o.Proof()
		require.True(t, ok)
		assert.Equal(t, "123456", pod.Value())
	})

	t.Run("should use out for delivery for address orders", func(t *testing.T) {
		o := ordertest.Address(kernel.NewUUID(), 30000, createdAt)
		require.NoError(t, o.Accept(agent, createdAt))
		require.NoError(t, o.TransitionTo(order.PickedUp, nil, createdAt))

		err := o.TransitionTo(order.ReachedStation, nil, createdAt)
		require.ErrorIs(t, err, errs.ErrInvalidTransition)

		require.NoError(t, o.TransitionTo(order.OutForDelivery, nil, createdAt))
		next, ok := o.NextStatus()
		assert.True(t, ok)
		assert.Equal(t, order.Delivered, next)
	})

	t.Run("should reject skipping and leave order untouched", func(t *testing.T) {
		o := ordertest.Accepted(kernel.NewUUID(), agent, 30000, createdAt)
		before := o.History()

		err := o.TransitionTo(order.Delivered, otp(t, createdAt), createdAt)

		var stateErr *errs.StateError
		require.ErrorAs(t, err, &stateErr)
		assert.Equal(t, "Accepted", stateErr.From)
		assert.Equal(t, "Delivered", stateErr.To)
		assert.Equal(t, order.Accepted, o.Status())
		assert.Equal(t, before, o.History())
	})

	t.Run("should reject reversing", func(t *testing.T) {
		o := ordertest.Accepted(kernel.NewUUID(), agent, 30000, createdAt)
		require.NoError(t, o.TransitionTo(order.PickedUp, nil, createdAt))

		err := o.TransitionTo(order.Accepted, nil, createdAt)

		require.ErrorIs(t, err, errs.ErrInvalidTransition)
	})

	t.Run("should require proof for delivered", func(t *testing.T) {
		o := ordertest.Accepted(kernel.NewUUID(), agent, 30000, createdAt)
		require.NoError(t, o.TransitionTo(order.PickedUp, nil, createdAt))
		require.NoError(t, o.TransitionTo(order.ReachedStation, nil, createdAt))

		err := o.TransitionTo(order.Delivered, nil, createdAt)
		require.ErrorIs(t, err, errs.ErrVerificationFailed)

		err = o.TransitionTo(order.Delivered, &proof.ProofOfDelivery{}, createdAt)
		require.ErrorIs(t, err, errs.ErrVerificationFailed)

		assert.Equal(t, order.ReachedStation, o.Status())
		_, hasProof := o.Proof()
		assert.False(t, hasProof)
	})

	t.Run("should reject proof on intermediate transitions", func(t *testing.T) {
		o := ordertest.Accepted(kernel.NewUUID(), agent, 30000, createdAt)

		err := o.TransitionTo(order.PickedUp, otp(t, createdAt), createdAt)

		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
		assert.Equal(t, order.Accepted, o.Status())
	})

	t.Run("should record an earlier time at the previous change", func(t *testing.T) {
		o := ordertest.Accepted(kernel.NewUUID(), agent, 30000, createdAt)

		err := o.TransitionTo(order.PickedUp, nil, createdAt.Add(-time.Second))

		require.NoError(t, err)
		assert.Equal(t, order.PickedUp, o.Status())
		assert.Equal(t, createdAt, o.History()[2].At)
	})

	t.Run("should require a transition time", func(t *testing.T) {
		o := ordertest.Accepted(kernel.NewUUID(), agent, 30000, createdAt)

		err := o.TransitionTo(order.PickedUp, nil, time.Time{})

		require.ErrorIs(t, err, errs.ErrValueIsRequired)
		assert.Equal(t, order.Accepted, o.Status())
	})

	t.Run("should not move a pending order", func(t *testing.T) {
		o := ordertest.Station(kernel.NewUUID(), 30000, createdAt)

		err := o.TransitionTo(order.Accepted, nil, createdAt)

		require.ErrorIs(t, err, errs.ErrInvalidTransition)
	})
}

func TestOrder_Snapshot(t *testing.T) {
	o := ordertest.Accepted(kernel.NewUUID(), kernel.NewUUID(), 30000, createdAt)

	snap := o.Snapshot()
	require.NoError(t, o.TransitionTo(order.PickedUp, nil, createdAt))

	assert.Equal(t, order.Accepted, snap.Status())
	assert.Len(t, snap.History(), 2)
	assert.True(t, snap.IsEqual(o))
}

func TestRestoreOrder(t *testing.T) {
	items, target, contact := validParts(t)
	agent := kernel.NewUUID()
	base := order.RestoreParams{
		ID:        kernel.NewUUID(),
		Items:     items,
		Total:     30000,
		Target:    target,
		Contact:   contact,
		CreatedAt: createdAt,
	}

	t.Run("should restore an owned order with history", func(t *testing.T) {
		p := base
		p.Status = order.OutForDelivery
		p.AgentID = &agent
		p.History = []order.StatusChange{
			{Status: order.Pending, At: createdAt},
			{Status: order.Accepted, At: createdAt.Add(time.Minute)},
			{Status: order.PickedUp, At: createdAt.Add(2 * time.Minute)},
			{Status: order.OutForDelivery, At: createdAt.Add(3 * time.Minute)},
		}

		o, err := order.RestoreOrder(p)

		require.NoError(t, err)
		assert.Equal(t, order.OutForDelivery, o.Status())
		assert.Len(t, o.History(), 4)
		require.NoError(t, o.TransitionTo(order.Delivered, otp(t, createdAt.Add(4*time.Minute)), createdAt.Add(4*time.Minute)))
	})

	t.Run("should seed history when none is stored", func(t *testing.T) {
		p := base
		p.Status = order.Accepted
		p.AgentID = &agent

		o, err := order.RestoreOrder(p)

		require.NoError(t, err)
		assert.Equal(t, []order.StatusChange{{Status: order.Accepted, At: createdAt}}, o.History())
	})

	t.Run("should reject history with a gap", func(t *testing.T) {
		p := base
		p.Status = order.OutForDelivery
		p.AgentID = &agent
		p.History = []order.StatusChange{
			{Status: order.Accepted, At: createdAt},
			{Status: order.OutForDelivery, At: createdAt},
		}

		_, err := order.RestoreOrder(p)

		require.ErrorIs(t, err, errs.ErrInvalidTransition)
	})

	t.Run("should reject a hand-over state of the other target kind", func(t *testing.T) {
		station, err := kernel.NewStationTarget("Vijayawada Jn", "B4", "32")
		require.NoError(t, err)
		p := base
		p.Target = station
		p.Status = order.OutForDelivery
		p.AgentID = &agent
		p.History = []order.StatusChange{
			{Status: order.Pending, At: createdAt},
			{Status: order.Accepted, At: createdAt},
			{Status: order.PickedUp, At: createdAt},
			{Status: order.OutForDelivery, At: createdAt},
		}

		_, err = order.RestoreOrder(p)

		require.ErrorIs(t, err, errs.ErrInvalidTransition)
	})

	t.Run("should reject a seeded hand-over state of the other target kind", func(t *testing.T) {
		p := base
		p.Status = order.ReachedStation
		p.AgentID = &agent

		_, err := order.RestoreOrder(p)

		require.ErrorIs(t, err, errs.ErrInvalidTransition)
	})

	t.Run("should reject history not ending in status", func(t *testing.T) {
		p := base
		p.Status = order.PickedUp
		p.AgentID = &agent
		p.History = []order.StatusChange{{Status: order.Accepted, At: createdAt}}

		_, err := order.RestoreOrder(p)

		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})

	t.Run("should require an agent for owned orders", func(t *testing.T) {
		p := base
		p.Status = order.PickedUp

		_, err := order.RestoreOrder(p)

		require.ErrorIs(t, err, errs.ErrValueIsRequired)
	})

	t.Run("should require proof for delivered orders", func(t *testing.T) {
		p := base
		p.Status = order.Delivered
		p.AgentID = &agent

		_, err := order.RestoreOrder(p)

		require.ErrorIs(t, err, errs.ErrVerificationFailed)

		p.Proof = otp(t, createdAt)
		o, err := order.RestoreOrder(p)
		require.NoError(t, err)
		_, hasProof := o.Proof()
		assert.True(t, hasProof)
	})
}
