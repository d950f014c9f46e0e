// SPDX-License-Identifier: MPL-2.0

package task

import (
	"io"
	"os"
	"path/filepath"

	"taskmate-cli/pkg/console"
)

// Resolver looks up task types by fully-qualified name. The namespace
// registry implements it; tasks use it to find sibling tasks without
// coupling this package to the registry implementation.
type Resolver interface {
	Lookup(name string) (*Type, error)
}

// Context is the ambient execution environment of a task: working
// directory, environment snapshot, program name, I/O streams, console,
// and a handle to the task registry.
//
// Contexts are copy-on-acquire: every Instance holds its own shallow
// copy, so mutating a field (e.g. Dir in a test) never leaks to sibling
// tasks or to the CLI frontend. The Env map is shared between copies and
// must be treated as immutable; execution paths that need a modified
// environment build a fresh merged map instead.
type Context struct {
	// ProgramName is the name the CLI was invoked as.
	ProgramName string
	// Dir is the working directory tasks resolve relative paths against.
	Dir string
	// Env is a snapshot of the process environment taken at startup.
	Env map[string]string
	// CacheDir is where condition helpers persist their caches.
	CacheDir string

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// Console is the categorized output sink for tasks.
	Console *console.Console
	// Tasks resolves task names against the process-wide registry.
	Tasks Resolver
}

// NewContext captures the current process environment: working directory,
// environment variables, standard streams, and a default-themed console.
func NewContext() *Context {
	cwd, err := os.Getwd()
	if err != nil {
		cwd = "."
	}
	return &Context{
		ProgramName: filepath.Base(os.Args[0]),
		Dir:         cwd,
		Env:         EnvSnapshot(),
		Stdin:       os.Stdin,
		Stdout:      os.Stdout,
		Stderr:      os.Stderr,
		Console:     console.New(os.Stdin, os.Stdout, os.Stderr, console.DefaultTheme()),
	}
}

// Clone returns a shallow copy. The Env map is shared; everything else
// can be reassigned on the copy without affecting the original.
func (c *Context) Clone() *Context {
	cp := *c
	return &cp
}

// console returns the context console, building a default-themed one on
// demand for contexts assembled by hand (tests, embedders).
func (c *Context) console() *console.Console {
	if c.Console == nil {
		in := c.Stdin
		if in == nil {
			in = os.Stdin
		}
		out := c.Stdout
		if out == nil {
			out = os.Stdout
		}
		errOut := c.Stderr
		if errOut == nil {
			errOut = os.Stderr
		}
		c.Console = console.New(in, out, errOut, console.DefaultTheme())
	}
	return c.Console
}
