// SPDX-License-Identifier: MPL-2.0

package task

import (
	"errors"
	"fmt"
)

// ErrNotImplemented is the sentinel error wrapped by ContractError. It
// signals a task type that was declared without a usable execution mode:
// no run function, no binary, no script, no group members.
var ErrNotImplemented = errors.New("not implemented")

type (
	// ContractError reports a programming error in a task definition, as
	// opposed to a runtime or user error. It propagates as a hard failure
	// so the task author sees it.
	ContractError struct {
		// Task is the invocation name of the offending task.
		Task string
		// Missing names what the definition lacks (e.g. "binary", "script").
		Missing string
	}

	// ParseError reports a task argument parsing failure. The CLI frontend
	// maps it to exit code 2 per POSIX convention.
	ParseError struct {
		Task string
		Err  error
	}
)

// Error implements the error interface.
func (e *ContractError) Error() string {
	return fmt.Sprintf("task %q: %s not provided (set it on the type or supply a resolver)", e.Task, e.Missing)
}

// Unwrap returns ErrNotImplemented for errors.Is detection.
func (e *ContractError) Unwrap() error { return ErrNotImplemented }

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("task %q: %v", e.Task, e.Err)
}

// Unwrap returns the underlying parser error.
func (e *ParseError) Unwrap() error { return e.Err }
