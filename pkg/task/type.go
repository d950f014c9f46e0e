// SPDX-License-Identifier: MPL-2.0

package task

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
)

// maxSummaryLen caps derived one-line summaries.
const maxSummaryLen = 50

// ErrInvalidType is the sentinel error wrapped by type definition failures.
var ErrInvalidType = errors.New("invalid task type")

type (
	// RunFunc is the logic of a plain task. A nil Result with a nil error
	// counts as success.
	RunFunc func(inv *Invocation) (*Result, error)

	// Condition gates task execution. When Satisfied reports true the
	// task's run is skipped with a success result. Implementations live
	// in the cond subpackage; any type can provide its own.
	Condition interface {
		Satisfied(inv *Invocation) (bool, error)
	}

	// Type declares one runnable unit of work. Exactly one execution mode
	// may be set: Run, Command, Script, Serial, or Parallel. A Type must
	// pass through Define before registration; Define derives defaults
	// the way the original declaration would (lowercased name, summary
	// from the first help line).
	Type struct {
		// Name identifies and invokes the task. Required unless Abstract.
		Name string
		// Aliases are additional registration names.
		Aliases []string
		// Help is the full help text.
		Help string
		// Summary is the one-line help; derived from Help when empty.
		Summary string
		// Abstract excludes the type from CLI-visible registration. It can
		// still be embedded in groups or invoked programmatically.
		Abstract bool
		// ExtraArgs captures unrecognized argv tokens instead of rejecting
		// them; they are handed to the run as Invocation.Extra.
		ExtraArgs bool

		// Flags and Positionals declare the accepted arguments.
		Flags       []Flag
		Positionals []Positional
		// SetupFlags lets a type add custom declarations to the fresh
		// per-instance flag set.
		SetupFlags func(fs *pflag.FlagSet)

		// Run is the plain-logic execution mode.
		Run RunFunc
		// Command runs an external program.
		Command *CommandSpec
		// Script runs a shell script through the embedded interpreter.
		Script *ScriptSpec
		// Serial runs member tasks one at a time, in order, fail-fast.
		Serial []*Type
		// Parallel runs member tasks concurrently with a join barrier.
		Parallel []*Type
		// MaxWorkers bounds Parallel concurrency; 0 means one worker per
		// member task.
		MaxWorkers int

		// Dir is an optional working-directory override, resolved against
		// the Context directory ("" means no override, ".." and absolute
		// paths are honored).
		Dir string
		// Env is an optional environment override merged over the Context
		// environment; task keys win on conflict.
		Env map[string]string

		// SkipIf skips the run with a success result when satisfied.
		SkipIf Condition

		finalized bool
	}
)

// Define finalizes a task type declaration: it validates the execution
// mode, lowercases the name, and derives the summary from the help text.
// This is the explicit counterpart of the implicit naming/help derivation
// the historical implementations performed at class-construction time.
func Define(t *Type) (*Type, error) {
	modes := 0
	for _, set := range []bool{
		t.Run != nil,
		t.Command != nil,
		t.Script != nil,
		len(t.Serial) > 0,
		len(t.Parallel) > 0,
	} {
		if set {
			modes++
		}
	}
	if modes > 1 {
		return nil, fmt.Errorf("%w: %q declares more than one execution mode", ErrInvalidType, t.Name)
	}
	if !t.Abstract && strings.TrimSpace(t.Name) == "" {
		return nil, fmt.Errorf("%w: a non-abstract task type needs a name", ErrInvalidType)
	}
	t.Name = strings.ToLower(strings.TrimSpace(t.Name))
	if t.Summary == "" && t.Help != "" {
		t.Summary = summarize(t.Help)
	}
	t.finalized = true
	return t, nil
}

// MustDefine is Define for static declarations; it panics on invalid types.
func MustDefine(t *Type) *Type {
	def, err := Define(t)
	if err != nil {
		panic(err)
	}
	return def
}

// FromFunc builds a task type from a callable plus argument declarations.
// It covers the common case of turning a plain function into a task
// without assembling a Type literal.
func FromFunc(name, help string, run RunFunc, opts ...Option) (*Type, error) {
	t := &Type{Name: name, Help: help, Run: run}
	for _, opt := range opts {
		opt(t)
	}
	return Define(t)
}

// Option customizes a Type built by FromFunc.
type Option func(*Type)

// WithAliases adds registration aliases.
func WithAliases(aliases ...string) Option {
	return func(t *Type) { t.Aliases = append(t.Aliases, aliases...) }
}

// WithFlags declares accepted flags.
func WithFlags(flags ...Flag) Option {
	return func(t *Type) { t.Flags = append(t.Flags, flags...) }
}

// WithPositionals declares named positional arguments.
func WithPositionals(positionals ...Positional) Option {
	return func(t *Type) { t.Positionals = append(t.Positionals, positionals...) }
}

// WithExtraArgs enables unknown-argument passthrough.
func WithExtraArgs() Option {
	return func(t *Type) { t.ExtraArgs = true }
}

// Names returns every name the type registers under: the primary name
// followed by aliases, with empties and duplicates dropped.
func (t *Type) Names() []string {
	names := make([]string, 0, 1+len(t.Aliases))
	seen := make(map[string]bool, 1+len(t.Aliases))
	for _, name := range append([]string{t.Name}, t.Aliases...) {
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	return names
}

// Finalized reports whether the type went through Define.
func (t *Type) Finalized() bool { return t.finalized }

func summarize(help string) string {
	first := help
	if i := strings.IndexByte(help, '\n'); i >= 0 {
		first = help[:i]
	}
	first = strings.TrimSpace(first)
	if runes := []rune(first); len(runes) > maxSummaryLen {
		return string(runes[:maxSummaryLen]) + "..."
	}
	return first
}
