package errs

import (
	"net/http"
)

// NewConnectionError reports an unreachable or refusing backend.
func NewConnectionError(message string, cause error) *Error {
	return &Error{
		Kind:    KindConnection,
		Code:    "CONNECTION_ERROR",
		Message: message,
		cause:   cause,
	}
}

// NewValidationError reports an invalid payload.
//
// When message is empty the first field error becomes the message, so the
// client sees the most relevant violation, e.g. "role is required".
func NewValidationError(message string, fieldErrors []FieldError) *Error {
	if message == "" && len(fieldErrors) > 0 {
		message = fieldErrors[0].Field + " " + fieldErrors[0].Error
	}
	if message == "" {
		message = "Validation failed"
	}

	return &Error{
		Kind:    KindValidation,
		Code:    "VALIDATION_ERROR",
		Message: message,
		Errors:  fieldErrors,
	}
}

// NewNotFoundError reports a request that matches no route.
func NewNotFoundError(message string) *Error {
	return &Error{
		Kind:    KindNotFound,
		Code:    MakeUpperCaseWithUnderscores(http.StatusText(http.StatusNotFound)),
		Message: message,
	}
}

// NewBackendRejection reports a constraint violation raised by the database.
//
// code is optional; it defaults to "BACKEND_REJECTION".
func NewBackendRejection(message string, code *string, cause error) *Error {
	formattedCode := "BACKEND_REJECTION"
	if code != nil {
		formattedCode = *code
	}

	return &Error{
		Kind:    KindBackendRejection,
		Code:    formattedCode,
		Message: message,
		cause:   cause,
	}
}

// NewBackendValidationError reports a value the database refused (NOT NULL,
// CHECK). It is a validation failure from the client's point of view.
func NewBackendValidationError(message string, code string, fieldErrors []FieldError, cause error) *Error {
	return &Error{
		Kind:    KindValidation,
		Code:    code,
		Message: message,
		Errors:  fieldErrors,
		cause:   cause,
	}
}

// NewInternalServerError hides the underlying error behind the generic
// status text. The cause is kept for logging.
func NewInternalServerError(cause error) *Error {
	return &Error{
		Kind:    KindInternal,
		Code:    MakeUpperCaseWithUnderscores(http.StatusText(http.StatusInternalServerError)),
		Message: http.StatusText(http.StatusInternalServerError),
		cause:   cause,
	}
}
