// Package ordertest builds valid orders for tests in other packages.
package ordertest

import (
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/model/proof"
)

// Station returns a Pending order delivered to a train seat.
func Station(id kernel.UUID, total kernel.Money, createdAt time.Time) *order.Order {
	target, err := kernel.NewStationTarget("Vijayawada Jn", "B4", "32")
	must(err)
	return build(id, total, target, createdAt)
}

// Address returns a Pending order delivered to a street address.
func Address(id kernel.UUID, total kernel.Money, createdAt time.Time) *order.Order {
	target, err := kernel.NewAddressTarget("12 MG Road, Bengaluru")
	must(err)
	return build(id, total, target, createdAt)
}

// Accepted returns a station order already accepted by agentID at createdAt.
func Accepted(id, agentID kernel.UUID, total kernel.Money, createdAt time.Time) *order.Order {
	o := Station(id, total, createdAt)
	must(o.Accept(agentID, createdAt))
	return o
}

// Delivered returns a station order walked to Delivered at deliveredAt with an OTP proof.
func Delivered(id, agentID kernel.UUID, total kernel.Money, createdAt, deliveredAt time.Time) *order.Order {
	o := Accepted(id, agentID, total, createdAt)
	must(o.TransitionTo(order.PickedUp, nil, createdAt))
	must(o.TransitionTo(order.ReachedStation, nil, createdAt))
	pod, err := proof.NewOTP("482913", deliveredAt)
	must(err)
	must(o.TransitionTo(order.Delivered, &pod, deliveredAt))
	return o
}

func build(id kernel.UUID, total kernel.Money, target kernel.DeliveryTarget, createdAt time.Time) *order.Order {
	item, err := order.NewItem("Veg Thali", 1, total)
	must(err)
	contact, err := order.NewContact("Asha Rao", "+919800000001")
	must(err)
	o, err := order.NewOrder(id, []order.Item{item}, total, target, contact, createdAt)
	must(err)
	return o
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}
