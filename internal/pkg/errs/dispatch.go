package errs

import (
	"errors"
	"fmt"
)

var (
	// ErrConflict marks an offer that was already resolved elsewhere.
	ErrConflict = errors.New("conflict")
	// ErrDispatchUnavailable marks a transient order-service failure; the caller retries later.
	ErrDispatchUnavailable = errors.New("dispatch unavailable")
	// ErrInvalidTransition marks an illegal delivery status transition.
	ErrInvalidTransition = errors.New("invalid state transition")
	// ErrVerificationFailed marks a rejected proof of delivery.
	ErrVerificationFailed = errors.New("verification failed")
	// ErrDuplicateRecord marks a second attempt to book the same entry.
	ErrDuplicateRecord = errors.New("duplicate record")
)

// ConflictError is returned when an order can no longer be claimed or resolved by this agent.
type ConflictError struct {
	OrderID string
	Reason  string
	Cause   error
}

func NewConflictError(orderID, reason string) *ConflictError {
	return &ConflictError{OrderID: orderID, Reason: reason}
}

func NewConflictErrorWithCause(orderID, reason string, cause error) *ConflictError {
	return &ConflictError{OrderID: orderID, Reason: reason, Cause: cause}
}

func (e *ConflictError) Error() string {
	return withCause(fmt.Sprintf("%s: order %s %s", ErrConflict, e.OrderID, e.Reason), e.Cause)
}

func (e *ConflictError) Unwrap() error {
	return ErrConflict
}

// DispatchUnavailableError wraps a network or service failure while talking to the order service.
type DispatchUnavailableError struct {
	Operation string
	Cause     error
}

func NewDispatchUnavailableError(operation string, cause error) *DispatchUnavailableError {
	return &DispatchUnavailableError{Operation: operation, Cause: cause}
}

func (e *DispatchUnavailableError) Error() string {
	return withCause(fmt.Sprintf("%s: %s", ErrDispatchUnavailable, e.Operation), e.Cause)
}

func (e *DispatchUnavailableError) Unwrap() error {
	return ErrDispatchUnavailable
}

// StateError reports a transition request that does not follow the delivery lifecycle.
type StateError struct {
	From  string
	To    string
	Cause error
}

func NewStateError(from, to fmt.Stringer) *StateError {
	return &StateError{From: from.String(), To: to.String()}
}

func NewStateErrorWithCause(from, to fmt.Stringer, cause error) *StateError {
	return &StateError{From: from.String(), To: to.String(), Cause: cause}
}

func (e *StateError) Error() string {
	return withCause(fmt.Sprintf("%s: from %s to %s", ErrInvalidTransition, e.From, e.To), e.Cause)
}

func (e *StateError) Unwrap() error {
	return ErrInvalidTransition
}

// VerificationError reports a proof of delivery that could not be accepted.
type VerificationError struct {
	Reason string
	Cause  error
}

func NewVerificationError(reason string) *VerificationError {
	return &VerificationError{Reason: reason}
}

func NewVerificationErrorWithCause(reason string, cause error) *VerificationError {
	return &VerificationError{Reason: reason, Cause: cause}
}

func (e *VerificationError) Error() string {
	return withCause(fmt.Sprintf("%s: %s", ErrVerificationFailed, e.Reason), e.Cause)
}

func (e *VerificationError) Unwrap() error {
	return ErrVerificationFailed
}

// DuplicateRecordError reports an entry that was already booked under the same identifier.
type DuplicateRecordError struct {
	ParamName string
	ID        any
}

func NewDuplicateRecordError(paramName string, id any) *DuplicateRecordError {
	return &DuplicateRecordError{ParamName: paramName, ID: id}
}

func (e *DuplicateRecordError) Error() string {
	return fmt.Sprintf("%s: %s %s", ErrDuplicateRecord, e.ParamName, sanitize(e.ID))
}

func (e *DuplicateRecordError) Unwrap() error {
	return ErrDuplicateRecord
}
