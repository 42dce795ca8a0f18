// Package offer models the time-boxed opportunity for an agent to claim a pending order.
package offer

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

// Decline reasons recorded by the dispatch pool.
const (
	ReasonTimeout   = "Timeout - No response"
	ReasonClaimed   = "Claimed by another agent"
	ReasonWithdrawn = "Withdrawn by order service"
)

// Outcome is the resolution of an offer. Pending is the only non-final value.
type Outcome int

const (
	Pending Outcome = iota
	Accepted
	Declined
	Expired
)

func (o Outcome) String() string {
	switch o {
	case Pending:
		return "pending"
	case Accepted:
		return "accepted"
	case Declined:
		return "declined"
	case Expired:
		return "expired"
	}
	return "unknown"
}

// IsFinal reports whether the outcome can no longer change.
func (o Outcome) IsFinal() bool {
	return o != Pending
}

var ErrOfferIsNotConstructed = errors.New("Offer must be created via NewOffer constructor")

// Offer wraps a Pending order with an absolute deadline and exactly one final outcome.
//
// While a claim is in flight the offer is tentatively held: it is hidden from
// listings and cannot expire or be claimed again until the claim is confirmed
// (Accept) or rolled back (Release).
type Offer struct {
	order     *order.Order
	offeredAt time.Time
	expiresAt time.Time

	outcome    Outcome
	reason     string
	resolvedAt time.Time
	claiming   bool

	guard guard.ConstructorGuard
}

// NewOffer opens an offer for o, expiring window after offeredAt.
func NewOffer(o *order.Order, offeredAt time.Time, window time.Duration) (*Offer, error) {
	var orderErr, timeErr, windowErr error
	if err := o.Validate(); err != nil {
		orderErr = err
	} else if o.Status() != order.Pending {
		orderErr = errs.NewValueIsInvalidErrorWithCause("order", fmt.Errorf("%s order cannot be offered", o.Status()))
	}
	if offeredAt.IsZero() {
		timeErr = errs.NewValueIsRequiredError("offered at")
	}
	if window <= 0 {
		windowErr = errs.NewValueIsInvalidErrorWithCause("offer window", fmt.Errorf("%s is not positive", window))
	}
	if err := errors.Join(orderErr, timeErr, windowErr); err != nil {
		return nil, err
	}

	return &Offer{
		order:     o,
		offeredAt: offeredAt.UTC(),
		expiresAt: offeredAt.UTC().Add(window),
		outcome:   Pending,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

func (f *Offer) Validate() error {
	if f == nil {
		return ErrOfferIsNotConstructed
	}
	return f.guard.Validate(ErrOfferIsNotConstructed)
}

func (f *Offer) OrderID() kernel.UUID {
	return f.order.ID()
}

// Order is the pre-acceptance projection. After Accept the pool hands it off and
// must not touch it again.
func (f *Offer) Order() *order.Order {
	return f.order
}

func (f *Offer) OfferedAt() time.Time {
	return f.offeredAt
}

func (f *Offer) ExpiresAt() time.Time {
	return f.expiresAt
}

func (f *Offer) Outcome() Outcome {
	return f.outcome
}

// Reason is the decline reason; empty unless the outcome is Declined or Expired.
func (f *Offer) Reason() string {
	return f.reason
}

func (f *Offer) ResolvedAt() time.Time {
	return f.resolvedAt
}

// IsOpen reports whether the offer is pending and not currently being claimed.
func (f *Offer) IsOpen() bool {
	return f.outcome == Pending && !f.claiming
}

func (f *Offer) IsClaiming() bool {
	return f.claiming
}

// Remaining is the time left until the deadline, never negative.
func (f *Offer) Remaining(now time.Time) time.Duration {
	if d := f.expiresAt.Sub(now); d > 0 {
		return d
	}
	return 0
}

// IsDue reports whether the deadline has passed at now.
func (f *Offer) IsDue(now time.Time) bool {
	return !now.Before(f.expiresAt)
}

// Claim starts the tentative phase of an accept.
func (f *Offer) Claim() error {
	if err := f.requirePending(); err != nil {
		return err
	}
	if f.claiming {
		return errs.NewConflictError(f.order.ID().String(), "is already being claimed")
	}
	f.claiming = true
	return nil
}

// Release rolls back a claim, making the offer visible again.
func (f *Offer) Release() {
	f.claiming = false
}

// Accept confirms the claim.
func (f *Offer) Accept(at time.Time) error {
	if err := f.requirePending(); err != nil {
		return err
	}
	f.resolve(Accepted, "", at)
	return nil
}

// Decline resolves the offer with a reason. A pending claim is abandoned.
func (f *Offer) Decline(reason string, at time.Time) error {
	if err := f.requirePending(); err != nil {
		return err
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return errs.NewValueIsRequiredError("decline reason")
	}
	f.resolve(Declined, reason, at)
	return nil
}

// Expire resolves the offer as timed out. It never succeeds before the deadline
// nor while a claim is in flight.
func (f *Offer) Expire(at time.Time) error {
	if err := f.requirePending(); err != nil {
		return err
	}
	if f.claiming {
		return errs.NewConflictError(f.order.ID().String(), "is being claimed")
	}
	if !f.IsDue(at) {
		return errs.NewValueIsInvalidErrorWithCause("expiry time",
			fmt.Errorf("%s is before the deadline %s", at.Format(time.RFC3339Nano), f.expiresAt.Format(time.RFC3339Nano)))
	}
	f.resolve(Expired, ReasonTimeout, at)
	return nil
}

func (f *Offer) requirePending() error {
	if err := f.Validate(); err != nil {
		return err
	}
	if f.outcome.IsFinal() {
		return errs.NewConflictError(f.order.ID().String(), "offer is already "+f.outcome.String())
	}
	return nil
}

func (f *Offer) resolve(outcome Outcome, reason string, at time.Time) {
	f.outcome = outcome
	f.reason = reason
	f.resolvedAt = at.UTC()
	f.claiming = false
}
