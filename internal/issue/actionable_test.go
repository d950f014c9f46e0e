// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// ActionableError tests
// ---------------------------------------------------------------------------

func TestActionableErrorMessage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      *ActionableError
		expected string
	}{
		{
			name:     "operation only",
			err:      &ActionableError{Operation: "load tasks module"},
			expected: "failed to load tasks module",
		},
		{
			name:     "with resource",
			err:      &ActionableError{Operation: "load tasks module", Resource: "./taskmate.toml"},
			expected: "failed to load tasks module: ./taskmate.toml",
		},
		{
			name: "with cause",
			err: &ActionableError{
				Operation: "read file",
				Resource:  "x.toml",
				Cause:     errors.New("permission denied"),
			},
			expected: "failed to read file: x.toml: permission denied",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestActionableErrorUnwrap(t *testing.T) {
	t.Parallel()

	sentinel := errors.New("root cause")
	err := &ActionableError{Operation: "do thing", Cause: fmt.Errorf("wrapped: %w", sentinel)}

	if !errors.Is(err, sentinel) {
		t.Error("errors.Is() cannot reach the root cause")
	}
}

func TestFormatSuggestions(t *testing.T) {
	t.Parallel()

	err := &ActionableError{
		Operation:   "load tasks module",
		Suggestions: []string{"Create a taskmate.toml", "Pass -m explicitly"},
	}

	out := err.Format(false)
	for _, want := range []string{"Create a taskmate.toml", "Pass -m explicitly"} {
		if !strings.Contains(out, want) {
			t.Errorf("Format() = %q, missing suggestion %q", out, want)
		}
	}
	if strings.Contains(out, "Error chain") {
		t.Error("non-verbose Format() printed the error chain")
	}
}

func TestFormatVerboseChain(t *testing.T) {
	t.Parallel()

	root := errors.New("disk on fire")
	err := &ActionableError{
		Operation: "write cache",
		Cause:     fmt.Errorf("flush: %w", root),
	}

	out := err.Format(true)
	if !strings.Contains(out, "Error chain") {
		t.Fatalf("Format(true) = %q, missing chain header", out)
	}
	if !strings.Contains(out, "disk on fire") {
		t.Errorf("Format(true) = %q, missing root cause", out)
	}
}

// ---------------------------------------------------------------------------
// Builder tests
// ---------------------------------------------------------------------------

func TestErrorContextBuilder(t *testing.T) {
	t.Parallel()

	cause := errors.New("boom")
	err := NewErrorContext().
		WithOperation("parse taskfile").
		WithResource("taskmate.lua").
		WithSuggestion("Check the syntax").
		Wrap(cause).
		Build()

	if err.Operation != "parse taskfile" || err.Resource != "taskmate.lua" {
		t.Errorf("built error = %+v", err)
	}
	if len(err.Suggestions) != 1 {
		t.Errorf("Suggestions = %v, want one entry", err.Suggestions)
	}
	if !errors.Is(err, cause) {
		t.Error("built error lost its cause")
	}
}

func TestBuildWithoutOperationIsNil(t *testing.T) {
	t.Parallel()

	if err := NewErrorContext().WithResource("x").BuildError(); err != nil {
		t.Errorf("BuildError() = %v, want nil without an operation", err)
	}
}

func TestWrapWithOperation(t *testing.T) {
	t.Parallel()

	if got := WrapWithOperation(nil, "anything"); got != nil {
		t.Errorf("WrapWithOperation(nil) = %v, want nil", got)
	}

	cause := errors.New("boom")
	got := WrapWithOperation(cause, "run task")
	if got == nil || !errors.Is(got, cause) {
		t.Fatalf("WrapWithOperation() = %v, want wrapper around cause", got)
	}
	if !strings.Contains(got.Error(), "run task") {
		t.Errorf("Error() = %q, missing operation", got.Error())
	}
}
