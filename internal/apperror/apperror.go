// Package apperror defines the error taxonomy shared by controllers and handlers.
// Every domain failure is an *Error carrying a Kind (which maps to an HTTP status)
// and a stable Code that clients and errors.Is can match on.
package apperror

import (
	"errors"
	"net/http"
)

type Kind int

const (
	KindValidation Kind = iota + 1
	KindUnauthenticated
	KindAuthorization
	KindNotFound
	KindConflict
	KindStore
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindAuthorization:
		return "authorization"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindStore:
		return "store"
	default:
		return "unknown"
	}
}

type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func New(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches on Code, so a sentinel still matches after WithMessage or Wrap.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// WithMessage returns a copy of e with a more specific client-facing message.
func (e *Error) WithMessage(message string) *Error {
	clone := *e
	clone.Message = message
	return &clone
}

// Wrap returns a copy of e carrying cause for logging.
func (e *Error) Wrap(cause error) *Error {
	clone := *e
	clone.Err = cause
	return &clone
}

var (
	ErrInvalidResourceKind = New(KindValidation, "invalid_resource_kind", "Invalid resource type")
	ErrMissingField        = New(KindValidation, "missing_field", "Missing required fields")
	ErrInvalidDateFormat   = New(KindValidation, "invalid_date_format", "Invalid date format, use YYYY-MM-DD")
	ErrInvalidDateRange    = New(KindValidation, "invalid_date_range", "Check-out must be after check-in")
	ErrEmptyMessage        = New(KindValidation, "empty_message", "Message text is required")
	ErrInvalidAction       = New(KindValidation, "invalid_action", "Invalid action")
	ErrInvalidInput        = New(KindValidation, "invalid_input", "Invalid input")

	ErrInvalidCredentials = New(KindUnauthenticated, "invalid_credentials", "Invalid username or password")
	ErrSessionExpired     = New(KindUnauthenticated, "session_expired", "Session expired")

	ErrNotAuthorized = New(KindAuthorization, "not_authorized", "Not authorized")

	ErrNotFound = New(KindNotFound, "not_found", "Not found")

	ErrDateRangeUnavailable            = New(KindConflict, "date_range_unavailable", "Selected dates are not available")
	ErrConflictingConfirmedReservation = New(KindConflict, "conflicting_confirmed_reservation", "Conflicting confirmed reservation exists")
	ErrInvalidTransition               = New(KindConflict, "invalid_transition", "Reservation can no longer be changed")
	ErrUsernameTaken                   = New(KindConflict, "username_taken", "Username already exists")

	ErrStore = New(KindStore, "store_error", "Internal error")
)

// Store wraps a persistence failure. Errors that are already *Error pass through.
func Store(err error) error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return err
	}
	return ErrStore.Wrap(err)
}

// As extracts the *Error from err's chain.
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

func KindOf(err error) Kind {
	if appErr, ok := As(err); ok {
		return appErr.Kind
	}
	return KindStore
}

// Status maps err to the HTTP status handlers respond with.
func Status(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindAuthorization:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Body returns the client-facing message and code. Store failures never leak their cause.
func Body(err error) (message string, code string) {
	appErr, ok := As(err)
	if !ok {
		return ErrStore.Message, ErrStore.Code
	}
	return appErr.Message, appErr.Code
}
