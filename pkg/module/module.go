// SPDX-License-Identifier: MPL-2.0

package module

import (
	"fmt"

	"taskmate-cli/pkg/namespace"
	"taskmate-cli/pkg/task"
)

type (
	// Module is one node of a tasks-module tree: top-level task types and
	// an ordered list of submodules. Submodule order is significant; it
	// decides which sibling wins when two contribute the same qualified
	// name (earlier declared wins).
	Module struct {
		// Help describes the module in listings.
		Help string
		// Tasks are the module's top-level task types.
		Tasks []*task.Type
		// Submodules are the declared child modules, in declaration order.
		Submodules []Submodule
	}

	// Submodule binds a child module to a namespace segment. An empty
	// Name flattens the child into the parent's namespace.
	Submodule struct {
		Name   string
		Module *Module
	}
)

// New creates an empty module.
func New(help string) *Module {
	return &Module{Help: help}
}

// Add appends task types and returns the module for chaining.
func (m *Module) Add(types ...*task.Type) *Module {
	m.Tasks = append(m.Tasks, types...)
	return m
}

// Mount declares a child module under a namespace segment ("" flattens)
// and returns the module for chaining.
func (m *Module) Mount(name string, sub *Module) *Module {
	m.Submodules = append(m.Submodules, Submodule{Name: name, Module: sub})
	return m
}

// workItem pairs a module with the scope its tasks register into.
type workItem struct {
	mod      *Module
	scope    namespace.Scope
	expanded bool
}

// Load walks root and registers every reachable non-abstract task type
// into scope under each of its names.
//
// The traversal is a LIFO worklist with a two-phase rule: on first visit
// a module with submodules is re-pushed as expanded and its children are
// pushed on top, so children are fully processed before the module's own
// tasks register. Combined with last-writer-wins registration this makes
// a task defined directly in a module override a same-named task from
// its submodules. The ordering is a contract; do not change it.
func Load(root *Module, scope namespace.Scope) error {
	if root == nil {
		return fmt.Errorf("module: load: root module is nil")
	}
	stack := []workItem{{mod: root, scope: scope}}
	visited := make(map[*Module]bool)

	for len(stack) > 0 {
		item := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if len(item.mod.Submodules) > 0 && !item.expanded && !visited[item.mod] {
			visited[item.mod] = true
			stack = append(stack, workItem{mod: item.mod, scope: item.scope, expanded: true})
			for _, sub := range item.mod.Submodules {
				if sub.Module == nil {
					continue
				}
				child := item.scope
				if sub.Name != "" {
					child = namespace.NewNamespace(sub.Name, item.scope)
				}
				stack = append(stack, workItem{mod: sub.Module, scope: child})
			}
			continue
		}

		for _, t := range item.mod.Tasks {
			if t.Abstract {
				continue
			}
			names := t.Names()
			if len(names) == 0 {
				return fmt.Errorf("module: load: task type has no resolvable name (missing Define?)")
			}
			for _, name := range names {
				item.scope.Register(t, name)
			}
		}
	}
	return nil
}
