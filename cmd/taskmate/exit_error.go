// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"taskmate-cli/pkg/task"
)

// ExitError signals a specific exit code without forcing os.Exit inside
// RunE handlers. Execute unwraps it at the process boundary.
type ExitError struct {
	Code task.ExitCode
	Err  error
}

// Error returns the error message for ExitError.
func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("exit status %d", e.Code)
}

// Unwrap returns the underlying error, if any.
func (e *ExitError) Unwrap() error {
	return e.Err
}
