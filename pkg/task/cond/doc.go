// SPDX-License-Identifier: MPL-2.0

// Package cond provides reusable skip conditions for tasks: file
// modification checks backed by a small JSON cache, and path existence
// checks. The cache is a best-effort memoization aid, never an authority
// over correctness.
package cond
