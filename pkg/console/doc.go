// SPDX-License-Identifier: MPL-2.0

// Package console provides categorized, styled line output and blocking
// interactive prompts for tasks. Styling is cosmetic: callers only ask
// for "write categorized line" and the theme decides how it looks.
package console
