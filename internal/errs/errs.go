// Package errs defines the error kinds every request failure is reduced to.
//
// Whatever goes wrong (an unreachable database, a bad payload, an unknown
// route, a rejected insert) ends up as an *Error carrying one Kind and a
// human-readable message. The transports render that message in the failure
// envelope; the kind drives logging and tests.
package errs

import (
	"errors"
	"strings"
)

// Kind classifies a failure.
type Kind int

const (
	// KindInternal covers anything that could not be classified.
	KindInternal Kind = iota
	// KindConnection means the backend is unreachable or refused the login.
	KindConnection
	// KindValidation means the payload, path id or filter is invalid.
	KindValidation
	// KindNotFound means no route matches the method and path.
	KindNotFound
	// KindBackendRejection means a constraint rejected an insert or update.
	KindBackendRejection
)

func (k Kind) String() string {
	switch k {
	case KindConnection:
		return "ConnectionError"
	case KindValidation:
		return "ValidationError"
	case KindNotFound:
		return "NotFoundError"
	case KindBackendRejection:
		return "BackendRejection"
	default:
		return "InternalError"
	}
}

// FieldError is a single field-level violation.
//
//	{ "field": "full_name", "error": "must be at least 3 characters" }
type FieldError struct {
	Field string `json:"field"`
	Error string `json:"error"`
}

// Error is the application error type.
//
// Code is machine-friendly (e.g. "VALIDATION_ERROR", "USER_REQUIRED"),
// Message is what the client sees.
type Error struct {
	Kind    Kind
	Code    string
	Message string

	// Errors holds the ordered field violations of a validation failure.
	Errors []FieldError

	cause error
}

func (e *Error) Error() string {
	return e.Message
}

// Unwrap exposes the driver or library error, if any.
func (e *Error) Unwrap() error {
	return e.cause
}

// Is matches any *Error of the same kind, so the Err* sentinels below work
// with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// WithMessage returns a copy of e with Message replaced.
func (e *Error) WithMessage(message string) *Error {
	return &Error{
		Kind:    e.Kind,
		Code:    e.Code,
		Message: message,
		Errors:  e.Errors,
		cause:   e.cause,
	}
}

// Sentinels for errors.Is checks.
var (
	ErrInternal         = &Error{Kind: KindInternal}
	ErrConnection       = &Error{Kind: KindConnection}
	ErrValidation       = &Error{Kind: KindValidation}
	ErrNotFound         = &Error{Kind: KindNotFound}
	ErrBackendRejection = &Error{Kind: KindBackendRejection}
)

// KindOf returns the kind of err, or KindInternal when err is not an *Error.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// MakeUpperCaseWithUnderscores converts "Bad Request" into "BAD_REQUEST".
func MakeUpperCaseWithUnderscores(str string) string {
	return strings.ToUpper(strings.ReplaceAll(str, " ", "_"))
}
