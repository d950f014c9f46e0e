// SPDX-License-Identifier: MPL-2.0

// Package module describes tasks modules as in-memory descriptor trees
// and loads them into a namespace scope. A module holds top-level task
// types plus an ordered list of named submodules; the loader walks the
// tree depth-first so that a task defined directly in a module always
// overrides a same-named task contributed by its submodules.
package module
