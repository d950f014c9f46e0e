// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"sort"
	"strings"

	"taskmate-cli/pkg/namespace"
)

// listTasks prints every registered task grouped by namespace, with
// the one-line summary next to each name.
func listTasks(registry *namespace.Registry) error {
	names := registry.Names()
	if len(names) == 0 {
		fmt.Println(SubtitleStyle.Render("No tasks available."))
		fmt.Println("Create a taskmate.toml or taskmate.lua file to define tasks.")
		return nil
	}

	groups := make(map[string][]string)
	for _, name := range names {
		prefix := ""
		if idx := strings.LastIndex(name, namespace.Separator); idx >= 0 {
			prefix = name[:idx]
		}
		groups[prefix] = append(groups[prefix], name)
	}

	prefixes := make([]string, 0, len(groups))
	for prefix := range groups {
		prefixes = append(prefixes, prefix)
	}
	sort.Strings(prefixes)

	tasks := registry.Tasks()
	fmt.Println(TitleStyle.Render("Available tasks"))
	for _, prefix := range prefixes {
		header := prefix
		if header == "" {
			header = "(root)"
		}
		fmt.Println()
		fmt.Println(NamespaceStyle.Render(header))
		for _, name := range groups[prefix] {
			line := "  " + TaskStyle.Render(name)
			if summary := tasks[name].Summary; summary != "" {
				line += "  " + SummaryStyle.Render(summary)
			}
			fmt.Println(line)
		}
	}
	return nil
}
