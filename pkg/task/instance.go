// SPDX-License-Identifier: MPL-2.0

package task

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
)

type (
	// Instance is a live, single-use execution of a Type. It owns a fresh
	// flag parser built from the type's declarations and a private copy
	// of the Context. Instances are created immediately before execution
	// and discarded afterwards.
	Instance struct {
		typ   *Type
		name  string
		ctx   *Context
		flags *pflag.FlagSet
	}

	// Invocation carries the parsed arguments of one task execution.
	Invocation struct {
		// Name is the name the task was invoked under.
		Name string
		// Context is the instance's private execution context.
		Context *Context
		// Flags exposes the parsed flag values.
		Flags *pflag.FlagSet
		// Args maps declared positional names to their matched tokens.
		Args map[string]string
		// Extra holds passthrough tokens when the type allows extra args.
		Extra []string
	}
)

// NewInstance binds a Type to an invocation name and a Context. The
// Context is cloned so the instance cannot mutate shared ambient state.
// An empty name defaults to the type's own name.
func NewInstance(t *Type, name string, ctx *Context) *Instance {
	if name == "" {
		name = t.Name
	}
	in := &Instance{
		typ:   t,
		name:  name,
		ctx:   ctx.Clone(),
		flags: buildFlagSet(name, t),
	}
	if in.ctx.Stderr != nil {
		in.flags.SetOutput(in.ctx.Stderr)
	}
	return in
}

// Type returns the task type this instance runs.
func (in *Instance) Type() *Type { return in.typ }

// Name returns the invocation name.
func (in *Instance) Name() string { return in.name }

// Context returns the instance's private context copy.
func (in *Instance) Context() *Context { return in.ctx }

// Help renders the task help: full help text plus the flag usage block.
func (in *Instance) Help() string {
	var b strings.Builder
	fmt.Fprintf(&b, "usage: %s %s", in.ctx.ProgramName, in.name)
	for _, p := range in.typ.Positionals {
		if p.Required {
			fmt.Fprintf(&b, " <%s>", p.Name)
		} else {
			fmt.Fprintf(&b, " [%s]", p.Name)
		}
	}
	if in.typ.ExtraArgs {
		b.WriteString(" [args...]")
	}
	b.WriteString("\n")
	if in.typ.Help != "" {
		b.WriteString("\n" + strings.TrimSpace(in.typ.Help) + "\n")
	}
	if usage := in.flags.FlagUsages(); usage != "" {
		b.WriteString("\nFlags:\n" + usage)
	}
	return b.String()
}

// ParseArgs splits argv into declared flags, declared positionals, and
// (when the type allows it) extra passthrough tokens. Surplus tokens on a
// type without ExtraArgs are a hard parse failure.
func (in *Instance) ParseArgs(argv []string) (*Invocation, error) {
	if in.typ.ExtraArgs {
		return in.parseWithExtras(argv)
	}

	if err := in.flags.Parse(argv); err != nil {
		return nil, &ParseError{Task: in.name, Err: err}
	}
	rest := in.flags.Args()

	args := make(map[string]string, len(in.typ.Positionals))
	for i, p := range in.typ.Positionals {
		if i < len(rest) {
			args[p.Name] = rest[i]
			continue
		}
		if p.Required {
			return nil, &ParseError{Task: in.name, Err: fmt.Errorf("missing required argument %q", p.Name)}
		}
	}

	if len(rest) > len(in.typ.Positionals) {
		surplus := rest[len(in.typ.Positionals):]
		return nil, &ParseError{Task: in.name, Err: fmt.Errorf("unrecognized arguments: %s", strings.Join(surplus, " "))}
	}

	return &Invocation{
		Name:    in.name,
		Context: in.ctx,
		Flags:   in.flags,
		Args:    args,
		Extra:   nil,
	}, nil
}

// parseWithExtras is the passthrough variant of ParseArgs: tokens the
// declared flag set does not recognize are collected, in order, instead
// of rejected. Declared positionals still consume the first non-flag
// leftovers; everything else, including unknown flags, lands in Extra.
func (in *Instance) parseWithExtras(argv []string) (*Invocation, error) {
	known, leftover := splitKnownArgs(in.flags, argv)
	if err := in.flags.Parse(known); err != nil {
		return nil, &ParseError{Task: in.name, Err: err}
	}

	args := make(map[string]string, len(in.typ.Positionals))
	var extra []string
	next := 0
	for _, tok := range leftover {
		if next < len(in.typ.Positionals) && !looksLikeFlag(tok) {
			args[in.typ.Positionals[next].Name] = tok
			next++
			continue
		}
		extra = append(extra, tok)
	}
	for _, p := range in.typ.Positionals[next:] {
		if p.Required {
			return nil, &ParseError{Task: in.name, Err: fmt.Errorf("missing required argument %q", p.Name)}
		}
	}

	return &Invocation{
		Name:    in.name,
		Context: in.ctx,
		Flags:   in.flags,
		Args:    args,
		Extra:   extra,
	}, nil
}

// Run executes the task with an already-built invocation, dispatching on
// the type's execution mode. A type with no mode set is a contract
// violation surfaced as ErrNotImplemented.
func (in *Instance) Run(inv *Invocation) (*Result, error) {
	if in.typ.SkipIf != nil {
		satisfied, err := in.typ.SkipIf.Satisfied(inv)
		if err != nil {
			return nil, fmt.Errorf("task %q: evaluate condition: %w", in.name, err)
		}
		if satisfied {
			inv.Context.console().Info("%s: up to date, skipping", in.name)
			return NewSuccessResult(), nil
		}
	}

	switch {
	case in.typ.Run != nil:
		res, err := in.typ.Run(inv)
		if err != nil {
			return nil, err
		}
		if res == nil {
			res = NewSuccessResult()
		}
		return res, nil
	case in.typ.Command != nil:
		return in.runCommand(inv)
	case in.typ.Script != nil:
		return in.runScript(inv)
	case len(in.typ.Serial) > 0:
		return in.runSerial(inv)
	case len(in.typ.Parallel) > 0:
		return in.runParallel(inv)
	default:
		return nil, &ContractError{Task: in.name, Missing: "run implementation"}
	}
}

// Execute is the invocation entry point: parse argv, then run.
func (in *Instance) Execute(argv []string) (*Result, error) {
	inv, err := in.ParseArgs(argv)
	if err != nil {
		return nil, err
	}
	return in.Run(inv)
}

// blankInvocation builds the no-argument invocation group members run
// with: default flag values, no positionals, no extras.
func (in *Instance) blankInvocation() *Invocation {
	return &Invocation{
		Name:    in.name,
		Context: in.ctx,
		Flags:   in.flags,
		Args:    map[string]string{},
	}
}
