// Package notification models the human-readable events shown in the agent's feed.
package notification

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

// Type is the severity of a feed entry.
type Type int

const (
	Unknown Type = iota
	Info
	Success
	Warning
	Error
)

func getTypeStrings() map[Type]string {
	return map[Type]string{
		Unknown: "unknown",
		Info:    "info",
		Success: "success",
		Warning: "warning",
		Error:   "error",
	}
}

func (t Type) String() string {
	if s, ok := getTypeStrings()[t]; ok {
		return s
	}
	return "unknown"
}

func (t Type) Validate() error {
	if t <= Unknown || t > Error {
		return errs.NewValueIsInvalidErrorWithCause("notification type", fmt.Errorf("%d is not a notification type", t))
	}
	return nil
}

// ParseType is the inverse of Type.String.
func ParseType(s string) (Type, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	for t, str := range getTypeStrings() {
		if t != Unknown && str == key {
			return t, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause("notification type", fmt.Errorf("%q is not a notification type", s))
}

var ErrNotificationIsNotConstructed = errors.New("Notification must be created via NewNotification constructor")

// Notification is one immutable feed entry.
type Notification struct {
	id      kernel.UUID
	kind    Type
	message string
	time    time.Time
	guard   guard.ConstructorGuard
}

func NewNotification(id kernel.UUID, kind Type, message string, at time.Time) (Notification, error) {
	message = strings.TrimSpace(message)

	var msgErr, timeErr error
	if message == "" {
		msgErr = errs.NewValueIsRequiredError("message")
	}
	if at.IsZero() {
		timeErr = errs.NewValueIsRequiredError("time")
	}
	if err := errors.Join(id.Validate(), kind.Validate(), msgErr, timeErr); err != nil {
		return Notification{}, err
	}

	return Notification{
		id:      id,
		kind:    kind,
		message: message,
		time:    at.UTC(),
		guard:   guard.NewConstructorGuard(),
	}, nil
}

func (n Notification) Validate() error {
	return n.guard.Validate(ErrNotificationIsNotConstructed)
}

func (n Notification) ID() kernel.UUID {
	return n.id
}

func (n Notification) Type() Type {
	return n.kind
}

func (n Notification) Message() string {
	return n.message
}

func (n Notification) Time() time.Time {
	return n.time
}
