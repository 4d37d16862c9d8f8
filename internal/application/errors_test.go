package application

import (
	"errors"
	"fmt"
	"testing"

	"github.com/example/callroute-admin/internal/routing"
	"github.com/example/callroute-admin/internal/schedule"
)

func TestValidationError(t *testing.T) {
	t.Parallel()

	vErr := &ValidationError{}
	if vErr.HasErrors() {
		t.Error("empty validation error must report no errors")
	}

	vErr.add("timezone", "timezone is required")
	vErr.add("name", "name is required")

	if !vErr.HasErrors() {
		t.Error("expected recorded errors")
	}
	if len(vErr.FieldErrors) != 2 {
		t.Errorf("field errors = %v", vErr.FieldErrors)
	}
	if vErr.Error() != "validation failed" {
		t.Errorf("message = %q", vErr.Error())
	}
}

func TestErrorKind(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "nil", err: nil, want: ""},
		{name: "not found", err: fmt.Errorf("wrap: %w", ErrNotFound), want: "not_found"},
		{name: "already exists", err: ErrAlreadyExists, want: "already_exists"},
		{name: "lookup unavailable", err: fmt.Errorf("package x: %w", routing.ErrLookupUnavailable), want: "lookup_unavailable"},
		{name: "interval invariant", err: fmt.Errorf("%w: bad range", schedule.ErrIntervalInvariant), want: "interval_invariant"},
		{name: "validation", err: &ValidationError{FieldErrors: map[string]string{"name": "required"}}, want: "validation"},
		{name: "unexpected", err: errors.New("boom"), want: "unexpected"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := ErrorKind(tc.err); got != tc.want {
				t.Errorf("ErrorKind() = %q, want %q", got, tc.want)
			}
		})
	}
}
