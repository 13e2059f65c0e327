package domain

import (
	"errors"
	"strings"
)

// ErrorKind classifies a domain error. The HTTP layer maps each kind to a
// fixed status code and renders the kind as the "error" field of the envelope.
type ErrorKind string

const (
	KindValidation     ErrorKind = "ValidationError"
	KindAuthentication ErrorKind = "AuthenticationError"
	KindAuthorization  ErrorKind = "AuthorizationError"
	KindNotFound       ErrorKind = "NotFoundError"
	KindConflict       ErrorKind = "ConflictError"
	KindInfrastructure ErrorKind = "InfrastructureError"
)

// Error is the typed error returned by services and repositories.
//
// errors.Is matches on Kind, and additionally on Message when the target
// carries one, so both errors.Is(err, ErrNotFound) and
// errors.Is(err, ErrPatientNotFound) work against the same value.
type Error struct {
	Kind    ErrorKind
	Message string
	// Details lists every violation for validation errors.
	Details []string
	// Field names the offending field for uniqueness conflicts.
	Field string
	// ConflictID references the appointment that occupies a requested slot.
	ConflictID string
	Err        error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}
	if len(e.Details) > 0 {
		msg += ": " + strings.Join(e.Details, "; ")
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	return t.Message == "" || t.Message == e.Message
}

// Retryable reports whether the caller may retry the operation unchanged.
func (e *Error) Retryable() bool { return e.Kind == KindInfrastructure }

// Kind sentinels.
var (
	ErrValidation      = &Error{Kind: KindValidation}
	ErrUnauthenticated = &Error{Kind: KindAuthentication}
	ErrForbidden       = &Error{Kind: KindAuthorization}
	ErrNotFound        = &Error{Kind: KindNotFound}
	ErrConflict        = &Error{Kind: KindConflict}
	ErrUnavailable     = &Error{Kind: KindInfrastructure}
)

var (
	ErrPatientNotFound     = &Error{Kind: KindNotFound, Message: "patient not found"}
	ErrAppointmentNotFound = &Error{Kind: KindNotFound, Message: "appointment not found"}
	ErrIdentityNotFound    = &Error{Kind: KindNotFound, Message: "user not found"}
	ErrSlotTaken           = &Error{Kind: KindConflict, Message: "time slot already booked", Field: "appointmentDate"}
	ErrInvalidCredentials  = &Error{Kind: KindAuthentication, Message: "invalid credentials"}
	ErrInvalidID           = &Error{Kind: KindValidation, Message: "invalid id format"}
)

// NewValidationError aggregates all violations into one error.
func NewValidationError(details ...string) *Error {
	return &Error{Kind: KindValidation, Message: "validation failed", Details: details}
}

// NewConflictError reports a uniqueness violation on field.
func NewConflictError(field, message string) *Error {
	return &Error{Kind: KindConflict, Message: message, Field: field}
}

// NewSlotConflict reports that the appointment conflictID already occupies the slot.
func NewSlotConflict(conflictID string) *Error {
	return &Error{
		Kind:       KindConflict,
		Message:    ErrSlotTaken.Message,
		Field:      ErrSlotTaken.Field,
		ConflictID: conflictID,
	}
}

// NewAuthenticationError wraps cause as an authentication failure.
func NewAuthenticationError(message string, cause error) *Error {
	return &Error{Kind: KindAuthentication, Message: message, Err: cause}
}

// NewForbiddenError rejects an authenticated actor.
func NewForbiddenError(message string) *Error {
	return &Error{Kind: KindAuthorization, Message: message}
}

// NewUnavailableError wraps a timeout or connection failure of a backing store.
func NewUnavailableError(message string, cause error) *Error {
	return &Error{Kind: KindInfrastructure, Message: message, Err: cause}
}

// AsError extracts the domain error from err, if any.
func AsError(err error) (*Error, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}
