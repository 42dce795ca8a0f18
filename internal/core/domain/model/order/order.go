package order

import (
	"errors"
	"fmt"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/proof"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

var (
	// ErrOrderIsNotConstructed is returned for orders not built by NewOrder or RestoreOrder.
	ErrOrderIsNotConstructed = errors.New("Order must be created via NewOrder constructor")

	// ErrProofRequired is returned when delivering without a valid proof of delivery.
	ErrProofRequired = errs.NewVerificationError("proof of delivery is required")
)

// StatusChange is one entry of the status-history log.
type StatusChange struct {
	Status Status
	At     time.Time
}

// Order is the aggregate root for a customer order on the agent side.
//
// Before acceptance it is a read-only projection (status Pending) held by the
// dispatch pool. Accept hands it to an agent; from then on only the delivery state
// machine mutates it, through TransitionTo.
//
// Invariants:
//   - status only moves forward along Status.Next; every move appends to history
//   - a Delivered order carries exactly one proof of delivery; no other order carries one
//   - an owned or delivered order records the agent that accepted it
type Order struct {
	id        kernel.UUID
	total     kernel.Money
	items     []Item
	target    kernel.DeliveryTarget
	contact   Contact
	createdAt time.Time

	status  Status
	history []StatusChange
	agentID *kernel.UUID
	proof   *proof.ProofOfDelivery

	guard guard.ConstructorGuard
}

// NewOrder creates a Pending order projection as received from the order service.
// total is the customer's order total in minor units and must be positive.
func NewOrder(
	id kernel.UUID,
	items []Item,
	total kernel.Money,
	target kernel.DeliveryTarget,
	contact Contact,
	createdAt time.Time,
) (*Order, error) {
	o := &Order{
		status: Pending,
		guard:  guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		o.setID(id),
		o.setItems(items),
		o.setTotal(total),
		o.setTarget(target),
		o.setContact(contact),
		o.setCreatedAt(createdAt),
	); err != nil {
		return nil, err
	}

	o.history = []StatusChange{{Status: Pending, At: o.createdAt}}
	return o, nil
}

// RestoreParams carries persisted or remote state into RestoreOrder.
type RestoreParams struct {
	ID        kernel.UUID
	Items     []Item
	Total     kernel.Money
	Target    kernel.DeliveryTarget
	Contact   Contact
	CreatedAt time.Time
	Status    Status
	History   []StatusChange
	AgentID   *kernel.UUID
	Proof     *proof.ProofOfDelivery
}

// RestoreOrder rebuilds an order at any lifecycle point, checking that the
// history is monotonic, ends in Status, and that agent and proof are consistent
// with it. An empty history is seeded with a single entry at CreatedAt.
func RestoreOrder(p RestoreParams) (*Order, error) {
	o, err := NewOrder(p.ID, p.Items, p.Total, p.Target, p.Contact, p.CreatedAt)
	if err != nil {
		return nil, err
	}

	if err = p.Status.Validate(); err != nil {
		return nil, err
	}

	history := p.History
	if len(history) == 0 {
		history = []StatusChange{{Status: p.Status, At: o.createdAt}}
	}
	if err = validateHistory(history, p.Status, o.target.Kind()); err != nil {
		return nil, err
	}

	if err = validateOwnership(p.Status, p.AgentID, p.Proof); err != nil {
		return nil, err
	}

	o.status = p.Status
	o.history = append([]StatusChange(nil), history...)
	if p.AgentID != nil {
		agentID := *p.AgentID
		o.agentID = &agentID
	}
	if p.Proof != nil {
		pod := *p.Proof
		o.proof = &pod
	}
	return o, nil
}

// Validate ensures the order was built through NewOrder or RestoreOrder.
func (o *Order) Validate() error {
	if o == nil {
		return ErrOrderIsNotConstructed
	}
	return o.guard.Validate(ErrOrderIsNotConstructed)
}

// IsEqual compares orders by identity.
func (o *Order) IsEqual(other *Order) bool {
	return other != nil && o.id.IsEqual(other.id)
}

func (o *Order) ID() kernel.UUID {
	return o.id
}

func (o *Order) Total() kernel.Money {
	return o.total
}

// Items returns a copy of the order lines.
func (o *Order) Items() []Item {
	return append([]Item(nil), o.items...)
}

func (o *Order) Target() kernel.DeliveryTarget {
	return o.target
}

func (o *Order) Contact() Contact {
	return o.contact
}

func (o *Order) CreatedAt() time.Time {
	return o.createdAt
}

func (o *Order) Status() Status {
	return o.status
}

// History returns a copy of the status-history log, oldest first.
func (o *Order) History() []StatusChange {
	return append([]StatusChange(nil), o.history...)
}

// Agent returns the accepting agent, or nil while the order is Pending.
func (o *Order) Agent() *kernel.UUID {
	return o.agentID
}

// Proof returns the proof of delivery; ok is false until the order is Delivered.
func (o *Order) Proof() (p proof.ProofOfDelivery, ok bool) {
	if o.proof == nil {
		return proof.ProofOfDelivery{}, false
	}
	return *o.proof, true
}

// NextStatus is the immediate successor of the current status for this order's target.
func (o *Order) NextStatus() (Status, bool) {
	return o.status.Next(o.target.Kind())
}

// Accept moves a Pending order to Accepted on behalf of agentID.
// An at earlier than the last history entry is recorded at that entry's time,
// see TransitionTo.
func (o *Order) Accept(agentID kernel.UUID, at time.Time) error {
	if err := o.Validate(); err != nil {
		return err
	}
	if err := agentID.Validate(); err != nil {
		return err
	}
	if err := o.status.ValidateTransition(Accepted, o.target.Kind()); err != nil {
		return err
	}
	if at.IsZero() {
		return errs.NewValueIsRequiredError("transition time")
	}

	o.agentID = &agentID
	o.apply(Accepted, at)
	return nil
}

// CanTransitionTo reports, without side effects, whether TransitionTo(target, pod, …)
// would succeed. Acceptance is not a delivery transition and always fails here.
func (o *Order) CanTransitionTo(target Status, pod *proof.ProofOfDelivery) error {
	if err := o.Validate(); err != nil {
		return err
	}
	if target == Accepted || target == Pending {
		return errs.NewStateError(o.status, target)
	}
	if err := o.status.ValidateTransition(target, o.target.Kind()); err != nil {
		return err
	}

	if target == Delivered {
		if pod == nil || pod.Validate() != nil {
			return ErrProofRequired
		}
		return nil
	}

	if pod != nil {
		return errs.NewValueIsInvalidErrorWithCause("proof",
			fmt.Errorf("proof of delivery is only accepted when moving to %s", Delivered))
	}
	return nil
}

// TransitionTo advances the order to target, the immediate successor of its
// current status. Delivered requires a valid proof, which is then attached for good.
// On error the order is left untouched.
//
// History entries never go backwards in time. The first entry carries the order
// service's clock and later ones the agent's, so an at before the last entry is
// recorded at the last entry's time.
func (o *Order) TransitionTo(target Status, pod *proof.ProofOfDelivery, at time.Time) error {
	if err := o.CanTransitionTo(target, pod); err != nil {
		return err
	}
	if at.IsZero() {
		return errs.NewValueIsRequiredError("transition time")
	}

	if target == Delivered {
		attached := *pod
		o.proof = &attached
	}
	o.apply(target, at)
	return nil
}

// Snapshot returns a deep copy for read models, so readers never share state with the owner.
func (o *Order) Snapshot() *Order {
	cp := *o
	cp.items = o.Items()
	cp.history = o.History()
	if o.agentID != nil {
		agentID := *o.agentID
		cp.agentID = &agentID
	}
	if o.proof != nil {
		pod := *o.proof
		cp.proof = &pod
	}
	return &cp
}

func (o *Order) apply(status Status, at time.Time) {
	if last := o.history[len(o.history)-1].At; at.Before(last) {
		at = last
	}
	o.status = status
	o.history = append(o.history, StatusChange{Status: status, At: at.UTC()})
}

func (o *Order) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	o.id = id
	return nil
}

func (o *Order) setItems(items []Item) error {
	if len(items) == 0 {
		return errs.NewValueIsRequiredError("items")
	}
	o.items = append([]Item(nil), items...)
	return nil
}

func (o *Order) setTotal(total kernel.Money) error {
	if total <= 0 {
		return errs.NewValueIsInvalidErrorWithCause("total is invalid", fmt.Errorf("%d is not greater than 0", total))
	}
	o.total = total
	return nil
}

func (o *Order) setTarget(target kernel.DeliveryTarget) error {
	if err := target.Validate(); err != nil {
		return err
	}
	o.target = target
	return nil
}

func (o *Order) setContact(contact Contact) error {
	if contact.Name() == "" {
		return errs.NewValueIsRequiredError("contact")
	}
	o.contact = contact
	return nil
}

func (o *Order) setCreatedAt(createdAt time.Time) error {
	if createdAt.IsZero() {
		return errs.NewValueIsRequiredError("created at")
	}
	o.createdAt = createdAt.UTC()
	return nil
}

// validateHistory checks that every entry is the successor of the one before it
// for the order's target kind, so a station order never shows OutForDelivery.
func validateHistory(history []StatusChange, current Status, kind kernel.TargetKind) error {
	for i, change := range history {
		if err := change.Status.Validate(); err != nil {
			return err
		}
		if change.Status == ReachedStation || change.Status == OutForDelivery {
			if fork, _ := PickedUp.Next(kind); fork != change.Status {
				return errs.NewStateErrorWithCause(PickedUp, change.Status,
					fmt.Errorf("%s is not a hand-over state for %s targets", change.Status, kind))
			}
		}
		if i == 0 {
			continue
		}
		prev := history[i-1]
		if next, ok := prev.Status.Next(kind); !ok || next != change.Status {
			return errs.NewStateErrorWithCause(prev.Status, change.Status, errors.New("history is not monotonic"))
		}
		if change.At.Before(prev.At) {
			return errs.NewValueIsInvalidErrorWithCause("history",
				fmt.Errorf("%s recorded before %s", change.Status, prev.Status))
		}
	}
	if last := history[len(history)-1].Status; last != current {
		return errs.NewValueIsInvalidErrorWithCause("history",
			fmt.Errorf("ends in %s but status is %s", last, current))
	}
	return nil
}

func validateOwnership(status Status, agentID *kernel.UUID, pod *proof.ProofOfDelivery) error {
	owned := status >= Accepted
	if owned && agentID == nil {
		return errs.NewValueIsRequiredError("agent")
	}
	if !owned && agentID != nil {
		return errs.NewValueIsInvalidErrorWithCause("agent", fmt.Errorf("%s order cannot have an agent", status))
	}
	if agentID != nil {
		if err := agentID.Validate(); err != nil {
			return err
		}
	}

	if status == Delivered && (pod == nil || pod.Validate() != nil) {
		return ErrProofRequired
	}
	if status != Delivered && pod != nil {
		return errs.NewValueIsInvalidErrorWithCause("proof", fmt.Errorf("%s order cannot carry a proof", status))
	}
	return nil
}
