// SPDX-License-Identifier: MPL-2.0

package modfile

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	lua "github.com/yuin/gopher-lua"

	"taskmate-cli/pkg/module"
	"taskmate-cli/pkg/task"
	"taskmate-cli/pkg/task/cond"
)

// luaModule owns the Lua state a taskfile was evaluated in. The state
// stays alive for the life of the process because task run closures
// reference functions inside it. LState is not goroutine-safe; the mutex
// serializes run calls (parallel groups may invoke two Lua tasks at once).
type luaModule struct {
	mu sync.Mutex
	L  *lua.LState
}

// loadLua evaluates the taskfile chunk in a sandboxed state and converts
// the returned table into a module descriptor:
//
//	return {
//	  help = "project tasks",
//	  tasks = {
//	    build = { help = "...", script = "go build ./..." },
//	    greet = { run = function(inv) print("hi " .. (inv.extra[1] or "")) end },
//	  },
//	  submodules = { docs = "docs/taskmate.lua" },
//	}
func loadLua(path string, chain map[string]bool) (*module.Module, error) {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	openSafeLibraries(L)
	lm := &luaModule{L: L}

	if err := L.DoFile(path); err != nil {
		return nil, fmt.Errorf("evaluate %s: %w", path, err)
	}
	ret := L.Get(-1)
	root, ok := ret.(*lua.LTable)
	if !ok {
		return nil, fmt.Errorf("%s must return a table, got %s", path, ret.Type())
	}

	mod := module.New(getString(root, "help"))

	if tasks, ok := getTable(root, "tasks"); ok {
		for _, name := range tableKeys(tasks) {
			spec, ok := getTable(tasks, name)
			if !ok {
				return nil, fmt.Errorf("%s: task %q must be a table", path, name)
			}
			t, err := lm.buildLuaTask(name, spec)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", path, err)
			}
			mod.Add(t)
		}
	}

	if subs, ok := getTable(root, "submodules"); ok {
		baseDir := filepath.Dir(path)
		for _, name := range tableKeys(subs) {
			rel := getString(subs, name)
			if rel == "" {
				return nil, fmt.Errorf("%s: submodule %q must be a path string", path, name)
			}
			sub, err := loadModule(filepath.Join(baseDir, rel), chain)
			if err != nil {
				return nil, fmt.Errorf("%s: submodule %q: %w", path, name, err)
			}
			mod.Mount(name, sub)
		}
	}
	return mod, nil
}

func (lm *luaModule) buildLuaTask(name string, spec *lua.LTable) (*task.Type, error) {
	t := &task.Type{
		Name:      name,
		Help:      getString(spec, "help"),
		Aliases:   getStrings(spec, "aliases"),
		ExtraArgs: getBool(spec, "extra_args"),
		Abstract:  getBool(spec, "private"),
		Dir:       getString(spec, "dir"),
		Env:       getStringMap(spec, "env"),
	}

	if script := getString(spec, "script"); script != "" {
		t.Script = &task.ScriptSpec{Source: script}
	}
	if binary := getString(spec, "binary"); binary != "" {
		t.Command = &task.CommandSpec{Binary: binary, Args: getStrings(spec, "args")}
	}
	if fn, ok := spec.RawGetString("run").(*lua.LFunction); ok {
		t.Run = lm.runFunc(name, fn)
	}
	if watch := getStrings(spec, "watch"); len(watch) > 0 {
		t.SkipIf = &cond.FilesUnchanged{
			Files:     watch,
			Algorithm: cond.Algorithm(getString(spec, "watch_algorithm")),
		}
	}

	return task.Define(t)
}

// runFunc adapts a Lua function into a task run function. The function
// receives one table argument with the invocation name, the passthrough
// tokens under "extra", and the matched positionals under "args". It may
// return nothing (success), a number (exit code), or a string (error).
func (lm *luaModule) runFunc(name string, fn *lua.LFunction) task.RunFunc {
	return func(inv *task.Invocation) (*task.Result, error) {
		lm.mu.Lock()
		defer lm.mu.Unlock()
		L := lm.L

		// Route print through the invocation's output stream.
		L.SetGlobal("print", L.NewFunction(func(L *lua.LState) int {
			top := L.GetTop()
			parts := make([]string, 0, top)
			for i := 1; i <= top; i++ {
				parts = append(parts, L.ToStringMeta(L.Get(i)).String())
			}
			inv.Print("%s", strings.Join(parts, "\t"))
			return 0
		}))

		arg := L.NewTable()
		arg.RawSetString("name", lua.LString(inv.Name))
		extra := L.NewTable()
		for _, e := range inv.Extra {
			extra.Append(lua.LString(e))
		}
		arg.RawSetString("extra", extra)
		args := L.NewTable()
		for k, v := range inv.Args {
			args.RawSetString(k, lua.LString(v))
		}
		arg.RawSetString("args", args)

		if err := L.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}, arg); err != nil {
			return nil, fmt.Errorf("task %q: %w", name, err)
		}
		ret := L.Get(-1)
		L.Pop(1)

		switch v := ret.(type) {
		case lua.LNumber:
			code := task.ExitCode(int(v))
			if ok, errs := code.IsValid(); !ok {
				return nil, fmt.Errorf("task %q: %w", name, errs[0])
			}
			return task.NewExitCodeResult(code), nil
		case lua.LString:
			return nil, fmt.Errorf("task %q: %s", name, string(v))
		case lua.LBool:
			if !bool(v) {
				return task.NewExitCodeResult(1), nil
			}
		}
		return task.NewSuccessResult(), nil
	}
}

// openSafeLibraries opens the base libraries a taskfile legitimately
// needs, leaving io/os/debug closed.
func openSafeLibraries(L *lua.LState) {
	for _, lib := range []struct {
		name string
		fn   lua.LGFunction
	}{
		{lua.BaseLibName, lua.OpenBase},
		{lua.TabLibName, lua.OpenTable},
		{lua.StringLibName, lua.OpenString},
		{lua.MathLibName, lua.OpenMath},
	} {
		L.Push(L.NewFunction(lib.fn))
		L.Push(lua.LString(lib.name))
		L.Call(1, 0)
	}
}

func getTable(t *lua.LTable, key string) (*lua.LTable, bool) {
	v, ok := t.RawGetString(key).(*lua.LTable)
	return v, ok
}

func getString(t *lua.LTable, key string) string {
	if v, ok := t.RawGetString(key).(lua.LString); ok {
		return string(v)
	}
	return ""
}

func getBool(t *lua.LTable, key string) bool {
	if v, ok := t.RawGetString(key).(lua.LBool); ok {
		return bool(v)
	}
	return false
}

func getStrings(t *lua.LTable, key string) []string {
	tbl, ok := getTable(t, key)
	if !ok {
		return nil
	}
	var out []string
	tbl.ForEach(func(_, v lua.LValue) {
		if s, ok := v.(lua.LString); ok {
			out = append(out, string(s))
		}
	})
	return out
}

func getStringMap(t *lua.LTable, key string) map[string]string {
	tbl, ok := getTable(t, key)
	if !ok {
		return nil
	}
	out := make(map[string]string)
	tbl.ForEach(func(k, v lua.LValue) {
		ks, kok := k.(lua.LString)
		vs, vok := v.(lua.LString)
		if kok && vok {
			out[string(ks)] = string(vs)
		}
	})
	return out
}

// tableKeys returns the string keys of a table, sorted for deterministic
// traversal (Lua tables are unordered).
func tableKeys(t *lua.LTable) []string {
	var keys []string
	t.ForEach(func(k, _ lua.LValue) {
		if s, ok := k.(lua.LString); ok {
			keys = append(keys, string(s))
		}
	})
	sort.Strings(keys)
	return keys
}
