// SPDX-License-Identifier: MPL-2.0

package task

import (
	"errors"
	"fmt"
	"os/exec"
)

// CommandSpec is the Command execution mode: run an external program with
// the task's resolved working directory and environment. "What to run"
// (the static fields or the Resolve hook) is separate from "how to run
// it" so declarative and computed commands share one execution path.
type CommandSpec struct {
	// Binary is the name or path of the program to run.
	Binary string
	// Args are the program arguments.
	Args []string
	// Resolve computes the binary and arguments from the parsed
	// invocation, overriding the static fields when set.
	Resolve func(inv *Invocation) (binary string, args []string, err error)
}

// runCommand spawns the resolved program. A non-zero exit status is
// returned as the Result's exit code, not as an error; the caller decides
// whether to treat it as a failure.
func (in *Instance) runCommand(inv *Invocation) (*Result, error) {
	spec := in.typ.Command
	binary, args := spec.Binary, spec.Args
	if spec.Resolve != nil {
		var err error
		binary, args, err = spec.Resolve(inv)
		if err != nil {
			return nil, fmt.Errorf("task %q: resolve command: %w", in.name, err)
		}
	}
	if binary == "" {
		return nil, &ContractError{Task: in.name, Missing: "binary"}
	}

	cmd := exec.Command(binary, args...)
	cmd.Dir = ResolveDir(inv.Context.Dir, in.typ.Dir)
	cmd.Env = EnvToSlice(MergeEnv(inv.Context.Env, in.typ.Env))
	cmd.Stdin = inv.Context.Stdin
	cmd.Stdout = inv.Context.Stdout
	cmd.Stderr = inv.Context.Stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return NewExitCodeResult(ExitCode(exitErr.ExitCode())), nil
		}
		return nil, fmt.Errorf("task %q: run %s: %w", in.name, binary, err)
	}
	return NewSuccessResult(), nil
}
