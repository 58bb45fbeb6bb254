package errs

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindSentinels(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", NewValidationError("", []FieldError{{Field: "role", Error: "is required"}}))

	if !errors.Is(err, ErrValidation) {
		t.Fatal("expected errors.Is to match the validation sentinel")
	}
	if errors.Is(err, ErrNotFound) {
		t.Fatal("validation error matched the not-found sentinel")
	}
	if KindOf(err) != KindValidation {
		t.Fatalf("KindOf = %s", KindOf(err))
	}
	if KindOf(errors.New("plain")) != KindInternal {
		t.Fatal("plain errors are internal")
	}
}

func TestNewValidationError_Message(t *testing.T) {
	err := NewValidationError("", []FieldError{
		{Field: "full_name", Error: "must be at least 3 characters"},
		{Field: "role", Error: "is required"},
	})
	if err.Message != "full_name must be at least 3 characters" {
		t.Fatalf("message = %q", err.Message)
	}

	if got := NewValidationError("", nil).Message; got != "Validation failed" {
		t.Fatalf("message = %q", got)
	}
}

func TestKindString(t *testing.T) {
	tests := map[Kind]string{
		KindConnection:       "ConnectionError",
		KindValidation:       "ValidationError",
		KindNotFound:         "NotFoundError",
		KindBackendRejection: "BackendRejection",
		KindInternal:         "InternalError",
	}
	for kind, want := range tests {
		if kind.String() != want {
			t.Errorf("%d: got %q, want %q", kind, kind.String(), want)
		}
	}
}

func TestInternalServerErrorKeepsCause(t *testing.T) {
	cause := errors.New("driver exploded")
	err := NewInternalServerError(cause)
	if err.Error() != "Internal Server Error" {
		t.Fatalf("message = %q", err.Error())
	}
	if !errors.Is(err, cause) {
		t.Fatal("cause not reachable")
	}
	if err.WithMessage("other").Unwrap() != cause {
		t.Fatal("WithMessage dropped the cause")
	}
}
