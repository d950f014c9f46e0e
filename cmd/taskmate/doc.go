// SPDX-License-Identifier: MPL-2.0

// Package cmd is the taskmate CLI frontend: it parses global flags,
// resolves which tasks module to load, populates the registry, and
// dispatches the selected task with its leftover argv.
package cmd
