// SPDX-License-Identifier: MPL-2.0

package namespace

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"taskmate-cli/pkg/task"
)

// Separator joins namespace segments in fully-qualified task names.
const Separator = ":"

// ErrTaskNotFound is the sentinel error wrapped by TaskNotFoundError.
var ErrTaskNotFound = errors.New("task not found")

// TaskNotFoundError is returned when a name resolves to nothing.
type TaskNotFoundError struct {
	Name string
}

// Error implements the error interface.
func (e *TaskNotFoundError) Error() string {
	return fmt.Sprintf("task %q not found", e.Name)
}

// Unwrap returns ErrTaskNotFound for errors.Is detection.
func (e *TaskNotFoundError) Unwrap() error { return ErrTaskNotFound }

// Scope is a point in the namespace tree that names can be registered
// through. Both the Registry (the root, which leaves names unchanged) and
// Namespace (which prefixes its segment and delegates upward) satisfy it.
type Scope interface {
	// QualifiedName maps a local name to its fully-qualified form.
	QualifiedName(name string) string
	// Register stores a task type under the qualified form of name.
	// Registering an existing qualified name silently replaces the
	// previous entry: last writer wins.
	Register(t *task.Type, name string)
	// Lookup resolves the qualified form of name to a task type.
	Lookup(name string) (*task.Type, error)
}

// Registry is the single store mapping fully-qualified task name to task
// type. It has process-wide lifetime in the CLI but is an ordinary value:
// tests construct a fresh one per case. Registry is the terminal Scope;
// it returns names unchanged.
type Registry struct {
	mu    sync.RWMutex
	store map[string]*task.Type
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{store: make(map[string]*task.Type)}
}

// QualifiedName returns the name unchanged; the root adds no prefix.
func (r *Registry) QualifiedName(name string) string { return name }

// Register stores t under name, replacing any previous entry.
func (r *Registry) Register(t *task.Type, name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.store[name] = t
}

// Lookup returns the task type registered under name.
func (r *Registry) Lookup(name string) (*task.Type, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.store[name]
	if !ok {
		return nil, &TaskNotFoundError{Name: name}
	}
	return t, nil
}

// Names returns every registered fully-qualified name, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.store))
	for name := range r.store {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Tasks returns a snapshot copy of the full store.
func (r *Registry) Tasks() map[string]*task.Type {
	r.mu.RLock()
	defer r.mu.RUnlock()
	snapshot := make(map[string]*task.Type, len(r.store))
	for name, t := range r.store {
		snapshot[name] = t
	}
	return snapshot
}

// Len returns the number of registered names.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.store)
}

// Namespace prefixes a name segment and delegates to its parent scope.
// Qualification is recursive rather than concatenated at construction
// time, so composing a tree top-down or bottom-up yields the same
// fully-qualified names.
type Namespace struct {
	segment string
	parent  Scope
}

// NewNamespace creates a child scope of parent. The parent is required;
// pass the Registry itself for a top-level namespace.
func NewNamespace(segment string, parent Scope) *Namespace {
	if parent == nil {
		panic("namespace: parent scope is required")
	}
	return &Namespace{segment: segment, parent: parent}
}

// Segment returns the namespace's own name segment.
func (n *Namespace) Segment() string { return n.segment }

// QualifiedName prefixes the segment and delegates upward.
func (n *Namespace) QualifiedName(name string) string {
	return n.parent.QualifiedName(n.segment + Separator + name)
}

// Register stores t under the qualified form of name.
func (n *Namespace) Register(t *task.Type, name string) {
	n.parent.Register(t, n.segment+Separator+name)
}

// Lookup resolves name relative to this namespace.
func (n *Namespace) Lookup(name string) (*task.Type, error) {
	return n.parent.Lookup(n.segment + Separator + name)
}
