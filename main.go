// SPDX-License-Identifier: MPL-2.0

// Command taskmate runs tasks declared in taskmate.toml or
// taskmate.lua files.
package main

import (
	cmd "taskmate-cli/cmd/taskmate"
)

func main() {
	cmd.Execute()
}
