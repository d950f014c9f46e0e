// SPDX-License-Identifier: MPL-2.0

package task

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

// ScriptSpec is the Script execution mode: run a shell script through the
// embedded POSIX interpreter with the task's resolved working directory
// and environment. No system shell is required.
type ScriptSpec struct {
	// Source is the script text.
	Source string
	// Resolve computes the script from the parsed invocation, overriding
	// Source when set.
	Resolve func(inv *Invocation) (string, error)
}

// runScript parses and interprets the resolved script. Extra passthrough
// tokens are exposed to the script as positional parameters ($1, $2, ...).
// The script's exit status maps to the Result's exit code.
func (in *Instance) runScript(inv *Invocation) (*Result, error) {
	spec := in.typ.Script
	source := spec.Source
	if spec.Resolve != nil {
		var err error
		source, err = spec.Resolve(inv)
		if err != nil {
			return nil, fmt.Errorf("task %q: resolve script: %w", in.name, err)
		}
	}
	if source == "" {
		return nil, &ContractError{Task: in.name, Missing: "script"}
	}

	prog, err := syntax.NewParser().Parse(strings.NewReader(source), in.name)
	if err != nil {
		return nil, fmt.Errorf("task %q: script syntax error: %w", in.name, err)
	}

	env := EnvToSlice(MergeEnv(inv.Context.Env, in.typ.Env))
	opts := []interp.RunnerOption{
		interp.Dir(ResolveDir(inv.Context.Dir, in.typ.Dir)),
		interp.Env(expand.ListEnviron(env...)),
		interp.StdIO(inv.Context.Stdin, inv.Context.Stdout, inv.Context.Stderr),
	}
	// "--" keeps tokens like "-v" from being read as shell options.
	if len(inv.Extra) > 0 {
		params := append([]string{"--"}, inv.Extra...)
		opts = append(opts, interp.Params(params...))
	}

	runner, err := interp.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("task %q: create interpreter: %w", in.name, err)
	}

	if err := runner.Run(context.Background(), prog); err != nil {
		var status interp.ExitStatus
		if errors.As(err, &status) {
			return NewExitCodeResult(ExitCode(status)), nil
		}
		return nil, fmt.Errorf("task %q: script execution failed: %w", in.name, err)
	}
	return NewSuccessResult(), nil
}
