// Package response defines the envelopes every transport writes.
package response

import (
	"errors"
	"net/http"

	"github.com/deppfellow/usercrud/internal/errs"
)

// Envelope is the body of every response.
//
//	{"success": true, "result": {...}}
//	{"success": false, "result": {"error": "..."}}
//
// Result is omitted when there is nothing to report.
type Envelope struct {
	Success bool `json:"success"`
	Result  any  `json:"result,omitempty"`
}

// ErrorResult is the result of a failure envelope.
type ErrorResult struct {
	Error string `json:"error"`
}

// Success wraps a result. A nil result yields {"success": true}.
func Success(result any) Envelope {
	return Envelope{Success: true, Result: result}
}

// Failure wraps err. Errors that are not *errs.Error are reported with the
// generic internal message so driver details never reach the client.
func Failure(err error) Envelope {
	message := http.StatusText(http.StatusInternalServerError)

	var appErr *errs.Error
	if errors.As(err, &appErr) && appErr.Message != "" {
		message = appErr.Message
	}

	return Envelope{Success: false, Result: ErrorResult{Error: message}}
}

// Status is the HTTP status for an envelope: every failure is a 500.
func Status(env Envelope) int {
	if env.Success {
		return http.StatusOK
	}
	return http.StatusInternalServerError
}
