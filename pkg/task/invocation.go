// SPDX-License-Identifier: MPL-2.0

package task

// Convenience output and prompt helpers so task run functions don't have
// to reach through Context for the common cases.

// Print writes an unstyled line.
func (inv *Invocation) Print(format string, a ...any) {
	inv.Context.console().Print(format, a...)
}

// Info writes an informational line.
func (inv *Invocation) Info(format string, a ...any) {
	inv.Context.console().Info(format, a...)
}

// Success writes a success line.
func (inv *Invocation) Success(format string, a ...any) {
	inv.Context.console().Success(format, a...)
}

// Warning writes a warning line.
func (inv *Invocation) Warning(format string, a ...any) {
	inv.Context.console().Warning(format, a...)
}

// Error writes an error line to the error stream.
func (inv *Invocation) Error(format string, a ...any) {
	inv.Context.console().Error(format, a...)
}

// Prompt blocks on the context input stream for a line of input.
func (inv *Invocation) Prompt(label, def string) (string, error) {
	return inv.Context.console().Prompt(label, def)
}

// PromptPassword blocks for a line of input without terminal echo.
func (inv *Invocation) PromptPassword(label string) (string, error) {
	return inv.Context.console().PromptPassword(label)
}

// Confirm blocks for a yes/no answer.
func (inv *Invocation) Confirm(label string, def bool) (bool, error) {
	return inv.Context.console().Confirm(label, def)
}

// String returns the value of a declared string flag, or "" when unset.
func (inv *Invocation) String(name string) string {
	v, err := inv.Flags.GetString(name)
	if err != nil {
		return ""
	}
	return v
}

// Bool returns the value of a declared bool flag, or false when unset.
func (inv *Invocation) Bool(name string) bool {
	v, err := inv.Flags.GetBool(name)
	if err != nil {
		return false
	}
	return v
}

// Int returns the value of a declared int flag, or 0 when unset.
func (inv *Invocation) Int(name string) int {
	v, err := inv.Flags.GetInt(name)
	if err != nil {
		return 0
	}
	return v
}

// Arg returns the token matched to a declared positional, or "".
func (inv *Invocation) Arg(name string) string {
	return inv.Args[name]
}
