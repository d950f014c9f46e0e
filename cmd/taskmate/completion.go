// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"taskmate-cli/internal/config"
	"taskmate-cli/pkg/namespace"
)

// completeTasks offers registered task names for the first positional
// argument. The task's own argv is opaque to us, so completion stops
// after the task name.
func completeTasks(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) != 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	registry, err := completionRegistry()
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	tasks := registry.Tasks()
	suggestions := make([]string, 0, len(tasks))
	for _, name := range registry.Names() {
		suggestion := name
		if summary := tasks[name].Summary; summary != "" {
			suggestion += "\t" + summary
		}
		suggestions = append(suggestions, suggestion)
	}
	return suggestions, cobra.ShellCompDirectiveNoFileComp
}

// completionRegistry loads the tasks module the same way a regular run
// would, swallowing configuration errors since completion must stay
// quiet.
func completionRegistry() (*namespace.Registry, error) {
	cfg, _ := config.Load()
	registry := namespace.New()
	if err := loadTasks(cfg, registry); err != nil {
		return nil, err
	}
	return registry, nil
}

// printCompletionHint tells the user how to enable completion for
// their shell. Cobra's generated "completion" subcommand does the
// actual script generation.
func printCompletionHint(shell string) error {
	switch shell {
	case "bash":
		fmt.Println(SubtitleStyle.Render("Bash completion:"))
		fmt.Println()
		fmt.Println("  # Add to ~/.bashrc:")
		fmt.Println("  source <(taskmate completion bash)")
		return nil
	case "zsh":
		fmt.Println(SubtitleStyle.Render("Zsh completion:"))
		fmt.Println()
		fmt.Println("  # Add to ~/.zshrc:")
		fmt.Println("  source <(taskmate completion zsh)")
		return nil
	default:
		return &ExitError{Code: 2, Err: fmt.Errorf("unsupported shell %q (expected bash or zsh)", shell)}
	}
}
