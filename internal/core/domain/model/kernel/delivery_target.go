package kernel

import (
	"errors"
	"fmt"
	"strings"

	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

// TargetKind selects how an order is handed over and, with it, which intermediate
// delivery status the order passes through.
type TargetKind int

const (
	UnknownTarget TargetKind = iota
	// StationTarget is a hand-over at a railway station to a passenger's coach and seat.
	StationTarget
	// AddressTarget is a door delivery to a street address.
	AddressTarget
)

func (k TargetKind) String() string {
	switch k {
	case StationTarget:
		return "station"
	case AddressTarget:
		return "address"
	case UnknownTarget:
		return "unknown"
	}
	return "unknown"
}

// ParseTargetKind is the inverse of TargetKind.String.
func ParseTargetKind(s string) (TargetKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "station":
		return StationTarget, nil
	case "address":
		return AddressTarget, nil
	}
	return UnknownTarget, errs.NewValueIsInvalidErrorWithCause("target kind", fmt.Errorf("%q is not a target kind", s))
}

// ErrDeliveryTargetIsNotConstructed is returned for a zero-value DeliveryTarget.
var ErrDeliveryTargetIsNotConstructed = errs.NewValueIsRequiredError(
	"delivery target must be created via NewStationTarget or NewAddressTarget")

// DeliveryTarget describes where an order is handed to the customer.
// Exactly one of the station triple or the address is populated, according to Kind.
type DeliveryTarget struct {
	kind    TargetKind
	station string
	coach   string
	seat    string
	address string
	guard   guard.ConstructorGuard
}

// NewStationTarget builds a station hand-over; station, coach and seat are all required.
func NewStationTarget(station, coach, seat string) (DeliveryTarget, error) {
	station, coach, seat = strings.TrimSpace(station), strings.TrimSpace(coach), strings.TrimSpace(seat)

	if err := errors.Join(
		required("station", station),
		required("coach", coach),
		required("seat", seat),
	); err != nil {
		return DeliveryTarget{}, err
	}

	return DeliveryTarget{
		kind:    StationTarget,
		station: station,
		coach:   coach,
		seat:    seat,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

// NewAddressTarget builds a door delivery.
func NewAddressTarget(address string) (DeliveryTarget, error) {
	address = strings.TrimSpace(address)
	if err := required("address", address); err != nil {
		return DeliveryTarget{}, err
	}

	return DeliveryTarget{
		kind:    AddressTarget,
		address: address,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

func (t DeliveryTarget) Validate() error {
	return t.guard.Validate(ErrDeliveryTargetIsNotConstructed)
}

func (t DeliveryTarget) Kind() TargetKind {
	return t.kind
}

func (t DeliveryTarget) Station() string {
	return t.station
}

func (t DeliveryTarget) Coach() string {
	return t.coach
}

func (t DeliveryTarget) Seat() string {
	return t.seat
}

func (t DeliveryTarget) Address() string {
	return t.address
}

// String is used in feed messages, e.g. "NDLS coach B4 seat 32".
func (t DeliveryTarget) String() string {
	if t.kind == StationTarget {
		return fmt.Sprintf("%s coach %s seat %s", t.station, t.coach, t.seat)
	}
	return t.address
}

func required(name, value string) error {
	if value == "" {
		return errs.NewValueIsRequiredError(name)
	}
	return nil
}
