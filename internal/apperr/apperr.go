package apperr

import (
	"errors"
	"net/http"
)

// Kind classifies an error for the request boundary.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindConflict
	KindDeadlinePassed
	KindUnavailable
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindDeadlinePassed:
		return "deadline_passed"
	case KindUnavailable:
		return "storage_unavailable"
	default:
		return "internal"
	}
}

// Status returns the HTTP status class for the kind.
func (k Kind) Status() int {
	switch k {
	case KindValidation, KindDeadlinePassed:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Error is a classified, user-presentable error. Message is safe to show to
// clients; Err carries internal detail and is never rendered outside
// development.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Code + ": " + e.Message + ": " + e.Err.Error()
	}
	return e.Code + ": " + e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches another *Error by code so wrapped copies of a sentinel compare
// equal to it.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// New builds an error of the given kind.
func New(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

// Validation builds a validation error with a custom message.
func Validation(message string) *Error {
	return &Error{Kind: KindValidation, Code: "validation", Message: message}
}

// Wrap returns a copy of sentinel carrying cause as internal detail.
func Wrap(sentinel *Error, cause error) *Error {
	cp := *sentinel
	cp.Err = cause
	return &cp
}

// As extracts the classified error from err, if any.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// KindOf reports the kind of err; unclassified errors are internal.
func KindOf(err error) Kind {
	if e, ok := As(err); ok {
		return e.Kind
	}
	return KindInternal
}

var (
	ErrUnauthorized       = New(KindUnauthorized, "unauthorized", "Unauthorized. Please login first")
	ErrForbidden          = New(KindForbidden, "forbidden", "Access denied")
	ErrInvalidDomain      = New(KindValidation, "invalid_domain", "Invalid email domain. Use your official SVKM email")
	ErrEmailTaken         = New(KindConflict, "email_taken", "Email is already registered")
	ErrNoAccount          = New(KindUnauthorized, "no_account", "No account found with that email")
	ErrBadPassword        = New(KindUnauthorized, "invalid_password", "Invalid password")
	ErrMissingProof       = New(KindValidation, "missing_proof", "Please upload a proof screenshot")
	ErrInvalidProofType   = New(KindValidation, "invalid_proof_type", "Only image files are allowed")
	ErrProofTooLarge      = New(KindValidation, "proof_too_large", "Proof image must be 5MB or smaller")
	ErrEventNotFound      = New(KindNotFound, "event_not_found", "Event not found")
	ErrDeadlinePassed     = New(KindDeadlinePassed, "deadline_passed", "Registration deadline has passed")
	ErrAlreadyRegistered  = New(KindConflict, "already_registered", "You are already registered for this event")
	ErrStorageUnavailable = New(KindUnavailable, "storage_unavailable", "Service temporarily unavailable. Try again")
	ErrInternal           = New(KindInternal, "internal", "Something went wrong. Try again")
)
