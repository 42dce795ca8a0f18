// Package session carries the identity and preferences of the agent this process
// works for. It replaces ambient global state: every component receives the
// Session at construction.
package session

import (
	"errors"
	"fmt"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

// DefaultOfferWindow is how long an agent may deliberate on an offer.
const DefaultOfferWindow = 30 * time.Second

// ErrSessionIsNotConstructed is returned by Validate on a zero Session.
var ErrSessionIsNotConstructed = errors.New("Session must be created via NewSession constructor")

// Session is immutable once built.
type Session struct {
	agentID     kernel.UUID
	offerWindow time.Duration
	location    *time.Location
	guard       guard.ConstructorGuard
}

// NewSession validates the agent and the offer window. A nil location means UTC;
// it only affects where calendar days start for earnings windows.
func NewSession(agentID kernel.UUID, offerWindow time.Duration, location *time.Location) (Session, error) {
	var windowErr error
	if offerWindow <= 0 {
		windowErr = errs.NewValueIsInvalidErrorWithCause("offer window", fmt.Errorf("%s is not positive", offerWindow))
	}
	if err := errors.Join(agentID.Validate(), windowErr); err != nil {
		return Session{}, err
	}
	if location == nil {
		location = time.UTC
	}

	return Session{
		agentID:     agentID,
		offerWindow: offerWindow,
		location:    location,
		guard:       guard.NewConstructorGuard(),
	}, nil
}

func (s Session) Validate() error {
	return s.guard.Validate(ErrSessionIsNotConstructed)
}

func (s Session) AgentID() kernel.UUID {
	return s.agentID
}

func (s Session) OfferWindow() time.Duration {
	return s.offerWindow
}

// Location is the time zone earnings windows are cut in; UTC when none was given.
func (s Session) Location() *time.Location {
	return s.location
}

// Local converts t to the agent's time zone.
func (s Session) Local(t time.Time) time.Time {
	return t.In(s.location)
}
