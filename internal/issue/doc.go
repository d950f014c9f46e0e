// SPDX-License-Identifier: MPL-2.0

// Package issue provides actionable, user-facing error values: what
// operation failed, which resource was involved, and suggestions on how
// to fix it. The core never prints these directly; the CLI frontend
// formats them at its boundary.
package issue
