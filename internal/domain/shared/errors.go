// Package shared contains common domain types and errors used across all
// domain packages. This package has zero external dependencies.
package shared

import (
	"errors"
	"fmt"
)

// Base domain errors that can be used for error checking with errors.Is().
var (
	// Entity errors
	ErrNotFound      = errors.New("entity not found")
	ErrAlreadyExists = errors.New("entity already exists")

	// Validation errors
	ErrValidation    = errors.New("validation error")
	ErrInvalidInput  = errors.New("invalid input")
	ErrInvalidFormat = errors.New("invalid format")

	// Authorization / precondition errors
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")

	// External service errors
	ErrExternalService    = errors.New("external service error")
	ErrServiceUnavailable = errors.New("service unavailable")
)

// User-facing failure taxonomy. Every handler converts exactly these into
// a plain chat message; nothing else leaks to the user.
var (
	// ErrInvalidCredentials means the portal rejected the username/password
	// pair. Terminal for this login attempt.
	ErrInvalidCredentials = errors.New("invalid portal credentials")

	// ErrRemoteUnavailable means the portal could not be reached or
	// answered with an unexpected status after retries. The user is asked
	// to try again later.
	ErrRemoteUnavailable = errors.New("portal unavailable")

	// ErrIncorrectFormat means a date string does not parse as dd.mm.yy.
	ErrIncorrectFormat = errors.New("incorrect date format")

	// ErrNotValid means a date is syntactically fine but not a school day.
	ErrNotValid = errors.New("date is not a school day")

	// ErrNoInfo means no session is known for the resolved identity.
	ErrNoInfo = errors.New("no stored session for identity")

	// ErrPupilNotSelected means a parent has not picked a pupil yet.
	ErrPupilNotSelected = errors.New("pupil not selected")

	// ErrNotAParent means a parent-only command was used by a non-parent.
	ErrNotAParent = errors.New("account is not a parent")

	// ErrGroupNotAllowed means a private-chat-only command was used in a
	// group chat.
	ErrGroupNotAllowed = errors.New("command not allowed in group chats")
)

// DomainError represents a domain-specific error with context.
type DomainError struct {
	Domain  string // e.g. "session", "daybook", "schoolsby"
	Op      string // operation that failed, e.g. "Authenticate"
	Kind    error  // base error type for errors.Is() checking
	Message string // human-readable message
	Err     error  // underlying error (optional)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s.%s: %s: %v", e.Domain, e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s.%s: %s", e.Domain, e.Op, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap().
func (e *DomainError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return e.Kind
}

// Is implements errors.Is() matching.
func (e *DomainError) Is(target error) bool {
	if e.Kind != nil && errors.Is(e.Kind, target) {
		return true
	}
	if e.Err != nil && errors.Is(e.Err, target) {
		return true
	}
	return false
}

// NewDomainError creates a new domain error.
func NewDomainError(domain, op string, kind error, message string) *DomainError {
	return &DomainError{Domain: domain, Op: op, Kind: kind, Message: message}
}

// WrapError wraps an existing error with domain context.
func WrapError(domain, op string, kind error, message string, err error) *DomainError {
	return &DomainError{Domain: domain, Op: op, Kind: kind, Message: message, Err: err}
}

// IsUserCorrectable reports whether the error is something the user can
// fix by changing their input or state (as opposed to a remote failure).
func IsUserCorrectable(err error) bool {
	return errors.Is(err, ErrIncorrectFormat) ||
		errors.Is(err, ErrNotValid) ||
		errors.Is(err, ErrNoInfo) ||
		errors.Is(err, ErrPupilNotSelected) ||
		errors.Is(err, ErrNotAParent) ||
		errors.Is(err, ErrGroupNotAllowed) ||
		errors.Is(err, ErrInvalidCredentials) ||
		errors.Is(err, ErrForbidden) ||
		errors.Is(err, ErrInvalidInput)
}

// IsRemote reports whether the error originates from the portal transport.
func IsRemote(err error) bool {
	return errors.Is(err, ErrRemoteUnavailable) ||
		errors.Is(err, ErrServiceUnavailable) ||
		errors.Is(err, ErrExternalService)
}
