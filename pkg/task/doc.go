// SPDX-License-Identifier: MPL-2.0

// Package task implements the task execution protocol: task type
// declarations, per-invocation argument parsing, and the built-in
// execution modes (plain run functions, external commands, shell
// scripts, and serial/parallel groups).
//
// A Type describes a runnable unit of work. Types are finalized with
// Define, discovered by the module loader, and instantiated per
// invocation; an Instance owns a fresh flag parser and a private copy
// of its Context, so no invocation can leak state into another.
package task
