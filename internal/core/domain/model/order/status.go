package order

import (
	"fmt"
	"strings"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
)

// Status is the lifecycle state of an order.
//
// State transitions:
//
//	Pending ──> Accepted ──> PickedUp ──┬──> ReachedStation ──┬──> Delivered
//	                                    └──> OutForDelivery ──┘
//
// Pending is the read-only projection an agent sees while the order is offered.
// Exactly one of ReachedStation (station hand-over) or OutForDelivery (address
// delivery) occurs per order, chosen by the order's delivery target. Transitions
// are strictly forward; nothing may be skipped or reversed.
type Status int

const (
	// Unknown (0) catches uninitialized Status values.
	Unknown Status = iota
	Pending
	Accepted
	PickedUp
	ReachedStation
	OutForDelivery
	Delivered
)

func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown:        "Unknown",
		Pending:        "Pending",
		Accepted:       "Accepted",
		PickedUp:       "PickedUp",
		ReachedStation: "ReachedStation",
		OutForDelivery: "OutForDelivery",
		Delivered:      "Delivered",
	}
}

func getStatusCodes() map[Status]string {
	//nolint:exhaustive // Unknown has no wire code
	return map[Status]string{
		Pending:        "PENDING",
		Accepted:       "ACCEPTED",
		PickedUp:       "PICKED_UP",
		ReachedStation: "REACHED_STATION",
		OutForDelivery: "OUT_FOR_DELIVERY",
		Delivered:      "DELIVERED",
	}
}

// ParseStatus accepts the canonical wire codes (OUT_FOR_DELIVERY), the Go names
// (OutForDelivery) and the spaced display labels ("Out for Delivery"), case-insensitively.
func ParseStatus(s string) (Status, error) {
	key := normalizeStatus(s)
	for status, code := range getStatusCodes() {
		if key == normalizeStatus(code) {
			return status, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause("status is invalid", fmt.Errorf("%q is not a valid status", s))
}

func normalizeStatus(s string) string {
	return strings.NewReplacer("_", "", " ", "", "-", "").Replace(strings.ToLower(strings.TrimSpace(s)))
}

// Validate rejects Unknown and out-of-range values.
func (s Status) Validate() error {
	if _, ok := getStatusCodes()[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("status is invalid", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "Unknown"
}

// Code is the canonical wire representation, e.g. "OUT_FOR_DELIVERY".
func (s Status) Code() string {
	if code, ok := getStatusCodes()[s]; ok {
		return code
	}
	return "UNKNOWN"
}

// Next returns the immediate successor of s for an order delivered to a target of
// the given kind. ok is false for Delivered, Unknown, or an unknown target kind
// at the PickedUp fork.
func (s Status) Next(kind kernel.TargetKind) (next Status, ok bool) {
	switch s {
	case Pending:
		return Accepted, true
	case Accepted:
		return PickedUp, true
	case PickedUp:
		switch kind {
		case kernel.StationTarget:
			return ReachedStation, true
		case kernel.AddressTarget:
			return OutForDelivery, true
		case kernel.UnknownTarget:
		}
		return Unknown, false
	case ReachedStation, OutForDelivery:
		return Delivered, true
	case Delivered, Unknown:
	}
	return Unknown, false
}

// ValidateTransition succeeds only if to is the immediate successor of s.
// Any other pair yields a StateError.
func (s Status) ValidateTransition(to Status, kind kernel.TargetKind) error {
	next, ok := s.Next(kind)
	if !ok || next != to {
		return errs.NewStateError(s, to)
	}
	return nil
}

// IsTerminal reports whether no further transition exists.
func (s Status) IsTerminal() bool {
	return s == Delivered
}

// IsOwned reports whether an agent holds the order (accepted and not yet delivered).
func (s Status) IsOwned() bool {
	return s >= Accepted && s < Delivered
}
