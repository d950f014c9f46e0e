// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"taskmate-cli/internal/config"
	"taskmate-cli/internal/issue"
	"taskmate-cli/internal/modfile"
	"taskmate-cli/pkg/console"
	"taskmate-cli/pkg/module"
	"taskmate-cli/pkg/namespace"
	"taskmate-cli/pkg/task"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"

	listFlag       bool
	modulePath     string
	useGlobal      bool
	verbose        bool
	completionHint string

	// rootCmd is the whole CLI surface: global flags, then a task name,
	// then that task's own argv passed through verbatim.
	rootCmd = &cobra.Command{
		Use:   "taskmate [flags] [task] [args...]",
		Short: "A project task runner",
		Long: TitleStyle.Render("taskmate") + SubtitleStyle.Render(" - a project task runner") + `

Tasks are declared in a taskmate.toml or taskmate.lua file, found by
searching upward from the current directory. Every argument after the
task name goes to the task's own parser.

` + SubtitleStyle.Render("Examples:") + `
  taskmate -l               List available tasks
  taskmate build            Run the 'build' task
  taskmate docs:serve -p 80 Run a namespaced task with its own flags
  taskmate -m ci/tasks.toml test`,
		Args:              cobra.ArbitraryArgs,
		SilenceUsage:      true,
		RunE:              runRoot,
		ValidArgsFunction: completeTasks,
	}
)

func init() {
	rootCmd.Flags().BoolVarP(&listFlag, "list", "l", false, "list available tasks")
	rootCmd.Flags().StringVarP(&modulePath, "module", "m", "", "load tasks from this module file")
	rootCmd.Flags().BoolVarP(&useGlobal, "global", "g", false, "load the per-user global tasks")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.Flags().StringVar(&completionHint, "completion-hint", "", "print shell completion setup advice (bash|zsh)")
	rootCmd.MarkFlagsMutuallyExclusive("module", "global")

	// The first positional is the task name; everything after it belongs
	// to the task, so global flag parsing must not reach past it.
	rootCmd.Flags().SetInterspersed(false)
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute runs the CLI. It is called once by main.main().
func Execute() {
	err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	)
	if err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(int(exitErr.Code))
		}
		os.Exit(1)
	}
}

func runRoot(cmd *cobra.Command, args []string) error {
	if verbose {
		log.SetLevel(log.DebugLevel)
	}

	cfg, err := config.Load()
	if err != nil {
		// Settings failures degrade to defaults but are never silent.
		fmt.Fprintln(os.Stderr, WarningStyle.Render("Warning: ")+formatError(err))
	}
	if cfg.UI.Verbose && !verbose {
		verbose = true
		log.SetLevel(log.DebugLevel)
	}

	registry := namespace.New()
	ctx := task.NewContext()
	ctx.ProgramName = config.AppName
	ctx.CacheDir = cfg.CacheDir
	ctx.Tasks = registry
	ctx.Console = console.New(ctx.Stdin, ctx.Stdout, ctx.Stderr, console.ThemeFromColors(cfg.Theme))

	if err := loadTasks(cfg, registry); err != nil {
		return err
	}

	switch {
	case completionHint != "":
		return printCompletionHint(completionHint)
	case listFlag:
		return listTasks(registry)
	case len(args) == 0:
		return cmd.Help()
	default:
		return runTask(registry, ctx, args[0], args[1:])
	}
}

// loadTasks resolves the tasks module and populates the registry.
// Explicit selection (-m, -g) fails hard; the default upward search is
// best-effort and leaves the registry empty when nothing is found.
func loadTasks(cfg *config.Config, registry *namespace.Registry) error {
	path := ""
	switch {
	case modulePath != "":
		path = modulePath
	case useGlobal:
		dir, err := config.GlobalTasksDir()
		if err != nil {
			return &ExitError{Code: 1, Err: err}
		}
		path, err = modfile.FindIn(dir)
		if err != nil {
			return &ExitError{Code: 1, Err: issue.NewErrorContext().
				WithOperation("load global tasks").
				WithResource(dir).
				WithSuggestion("Create a taskmate.toml in the global tasks directory").
				Wrap(err).
				BuildError()}
		}
	case cfg.DefaultModule != "":
		path = cfg.DefaultModule
	default:
		cwd, err := os.Getwd()
		if err != nil {
			return &ExitError{Code: 1, Err: err}
		}
		found, err := modfile.FindDefault(cwd)
		if err != nil {
			if errors.Is(err, modfile.ErrModuleNotFound) {
				log.Debug("no tasks module found", "start", cwd)
				return nil
			}
			return &ExitError{Code: 1, Err: err}
		}
		path = found
	}

	log.Debug("loading tasks module", "path", path)
	mod, err := modfile.Load(path)
	if err != nil {
		return &ExitError{Code: 1, Err: issue.NewErrorContext().
			WithOperation("load tasks module").
			WithResource(path).
			WithSuggestion("Check the file for syntax errors").
			WithSuggestion("Run with --verbose for the full error chain").
			Wrap(err).
			BuildError()}
	}
	if err := module.Load(mod, registry); err != nil {
		return &ExitError{Code: 1, Err: err}
	}
	log.Debug("tasks registered", "count", registry.Len())
	return nil
}

// runTask looks the task up, builds a fresh instance bound to the
// context, and executes it with the leftover argv.
func runTask(registry *namespace.Registry, ctx *task.Context, name string, argv []string) error {
	t, err := registry.Lookup(name)
	if err != nil {
		return &ExitError{Code: 1, Err: err}
	}

	instance := task.NewInstance(t, name, ctx)
	result, err := instance.Execute(argv)
	if err != nil {
		var parseErr *task.ParseError
		if errors.As(err, &parseErr) {
			fmt.Fprint(ctx.Stderr, instance.Help())
			return &ExitError{Code: 2, Err: err}
		}
		return &ExitError{Code: 1, Err: err}
	}
	if !result.ExitCode.IsSuccess() {
		return &ExitError{Code: result.ExitCode}
	}
	return nil
}

// formatError renders actionable errors with their suggestions; other
// errors print as-is.
func formatError(err error) string {
	var actionable *issue.ActionableError
	if errors.As(err, &actionable) {
		return actionable.Format(verbose)
	}
	return err.Error()
}
