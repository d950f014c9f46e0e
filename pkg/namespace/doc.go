// SPDX-License-Identifier: MPL-2.0

// Package namespace holds the process-wide task registry and the
// hierarchical namespaces that qualify task names when modules are
// composed. The registry is written once during loading, before any task
// runs, and is read-only afterwards.
package namespace
