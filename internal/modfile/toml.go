// SPDX-License-Identifier: MPL-2.0

package modfile

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/pelletier/go-toml/v2"

	"taskmate-cli/pkg/module"
	"taskmate-cli/pkg/task"
	"taskmate-cli/pkg/task/cond"
)

type (
	// fileModule is the on-disk shape of a TOML taskfile.
	fileModule struct {
		Help       string               `toml:"help"`
		Tasks      map[string]*fileTask `toml:"tasks"`
		Submodules map[string]string    `toml:"submodules"`
	}

	fileTask struct {
		Help      string   `toml:"help"`
		Aliases   []string `toml:"aliases"`
		ExtraArgs bool     `toml:"extra_args"`
		// Private tasks are not registered; they remain usable as group
		// members within the same file.
		Private bool `toml:"private"`

		Script string   `toml:"script"`
		Binary string   `toml:"binary"`
		Args   []string `toml:"args"`

		Serial     []string `toml:"serial"`
		Parallel   []string `toml:"parallel"`
		MaxWorkers int      `toml:"max_workers"`

		Dir string            `toml:"dir"`
		Env map[string]string `toml:"env"`

		Flags       []fileFlag       `toml:"flags"`
		Positionals []filePositional `toml:"positionals"`

		// Watch skips the task when none of the listed paths changed
		// since the last run.
		Watch          []string `toml:"watch"`
		WatchAlgorithm string   `toml:"watch_algorithm"`
	}

	fileFlag struct {
		Name      string `toml:"name"`
		Shorthand string `toml:"shorthand"`
		Usage     string `toml:"usage"`
		Type      string `toml:"type"`
		Default   string `toml:"default"`
	}

	filePositional struct {
		Name     string `toml:"name"`
		Required bool   `toml:"required"`
	}
)

func loadTOML(path string, chain map[string]bool) (*module.Module, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var fm fileModule
	if err := toml.Unmarshal(data, &fm); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return buildModule(&fm, path, chain)
}

// buildModule turns the parsed file into a module descriptor. Simple
// tasks are built first; group tasks then resolve their members by name,
// iterating so groups may reference other groups (cycles are an error).
func buildModule(fm *fileModule, path string, chain map[string]bool) (*module.Module, error) {
	baseDir := filepath.Dir(path)
	mod := module.New(fm.Help)

	names := sortedKeys(fm.Tasks)
	types := make(map[string]*task.Type, len(fm.Tasks))

	var groups []string
	for _, name := range names {
		ft := fm.Tasks[name]
		if len(ft.Serial) > 0 || len(ft.Parallel) > 0 {
			groups = append(groups, name)
			continue
		}
		t, err := buildTask(name, ft)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		types[name] = t
	}

	for len(groups) > 0 {
		progress := false
		var pending []string
		for _, name := range groups {
			ft := fm.Tasks[name]
			if len(ft.Serial) > 0 && len(ft.Parallel) > 0 {
				return nil, fmt.Errorf("%s: task %q sets both serial and parallel", path, name)
			}
			if ft.Script != "" || ft.Binary != "" {
				return nil, fmt.Errorf("%s: task %q mixes a group with script/binary", path, name)
			}
			members, ok := resolveMembers(append(ft.Serial, ft.Parallel...), types)
			if !ok {
				pending = append(pending, name)
				continue
			}
			t, err := buildTask(name, ft)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", path, err)
			}
			if len(ft.Serial) > 0 {
				t.Serial = members
			} else {
				t.Parallel = members
			}
			types[name] = t
			progress = true
		}
		if !progress {
			for _, name := range pending {
				ft := fm.Tasks[name]
				for _, member := range append(ft.Serial, ft.Parallel...) {
					if _, defined := fm.Tasks[member]; !defined {
						return nil, fmt.Errorf("%s: task %q references unknown member %q", path, name, member)
					}
				}
			}
			return nil, fmt.Errorf("%s: task group cycle involving %v", path, pending)
		}
		groups = pending
	}

	for _, name := range names {
		mod.Add(types[name])
	}

	// TOML tables are unordered; sorted traversal keeps sibling collision
	// resolution deterministic across loads.
	for _, name := range sortedKeys(fm.Submodules) {
		rel := fm.Submodules[name]
		sub, err := loadModule(filepath.Join(baseDir, rel), chain)
		if err != nil {
			return nil, fmt.Errorf("%s: submodule %q: %w", path, name, err)
		}
		mod.Mount(name, sub)
	}
	return mod, nil
}

func buildTask(name string, ft *fileTask) (*task.Type, error) {
	t := &task.Type{
		Name:      name,
		Aliases:   ft.Aliases,
		Help:      ft.Help,
		Abstract:  ft.Private,
		ExtraArgs: ft.ExtraArgs,
		Dir:       ft.Dir,
		Env:       ft.Env,
	}
	if ft.Script != "" {
		t.Script = &task.ScriptSpec{Source: ft.Script}
	}
	if ft.Binary != "" {
		if t.Script != nil {
			return nil, fmt.Errorf("task %q sets both script and binary", name)
		}
		t.Command = &task.CommandSpec{Binary: ft.Binary, Args: ft.Args}
	}
	t.MaxWorkers = ft.MaxWorkers

	for _, f := range ft.Flags {
		kind, err := flagKind(f.Type)
		if err != nil {
			return nil, fmt.Errorf("task %q flag %q: %w", name, f.Name, err)
		}
		t.Flags = append(t.Flags, task.Flag{
			Name:      f.Name,
			Shorthand: f.Shorthand,
			Usage:     f.Usage,
			Default:   f.Default,
			Kind:      kind,
		})
	}
	for _, p := range ft.Positionals {
		t.Positionals = append(t.Positionals, task.Positional{Name: p.Name, Required: p.Required})
	}

	if len(ft.Watch) > 0 {
		t.SkipIf = &cond.FilesUnchanged{
			Files:     ft.Watch,
			Algorithm: cond.Algorithm(ft.WatchAlgorithm),
		}
	}

	return task.Define(t)
}

func flagKind(s string) (task.FlagKind, error) {
	switch s {
	case "", "string":
		return task.FlagString, nil
	case "bool":
		return task.FlagBool, nil
	case "int":
		return task.FlagInt, nil
	default:
		return task.FlagString, fmt.Errorf("unknown flag type %q", s)
	}
}

func resolveMembers(names []string, types map[string]*task.Type) ([]*task.Type, bool) {
	members := make([]*task.Type, 0, len(names))
	for _, name := range names {
		t, ok := types[name]
		if !ok {
			return nil, false
		}
		members = append(members, t)
	}
	return members, true
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
