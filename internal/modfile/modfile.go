// SPDX-License-Identifier: MPL-2.0

package modfile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"taskmate-cli/pkg/module"
)

const (
	// TOMLName is the declarative taskfile name.
	TOMLName = "taskmate.toml"
	// LuaName is the dynamic taskfile name.
	LuaName = "taskmate.lua"
)

// ErrModuleNotFound is the sentinel error wrapped by NotFoundError.
var ErrModuleNotFound = errors.New("tasks module not found")

// NotFoundError is returned when no tasks module exists at (or above)
// the searched location.
type NotFoundError struct {
	Path string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("tasks module %s not found", e.Path)
}

// Unwrap returns ErrModuleNotFound for errors.Is detection.
func (e *NotFoundError) Unwrap() error { return ErrModuleNotFound }

// Source indicates where a tasks module was found.
type Source int

const (
	// SourceProject is the upward search from the working directory.
	SourceProject Source = iota
	// SourceExplicit is a path supplied with -m.
	SourceExplicit
	// SourceGlobal is the per-user tasks directory.
	SourceGlobal
)

// String returns a human-readable source name.
func (s Source) String() string {
	switch s {
	case SourceProject:
		return "project directory"
	case SourceExplicit:
		return "explicit module path"
	case SourceGlobal:
		return "global tasks directory"
	default:
		return "unknown"
	}
}

// FindDefault searches startDir and its ancestors for a taskfile,
// preferring taskmate.toml over taskmate.lua within one directory.
func FindDefault(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", startDir, err)
	}
	for {
		for _, name := range []string{TOMLName, LuaName} {
			path := filepath.Join(dir, name)
			if fileExists(path) {
				log.Debug("found tasks module", "path", path)
				return path, nil
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", &NotFoundError{Path: TOMLName}
}

// FindIn looks for a taskfile directly inside dir (no upward search).
// Used for the global tasks directory.
func FindIn(dir string) (string, error) {
	for _, name := range []string{TOMLName, LuaName} {
		path := filepath.Join(dir, name)
		if fileExists(path) {
			return path, nil
		}
	}
	return "", &NotFoundError{Path: filepath.Join(dir, TOMLName)}
}

// Load parses the taskfile at path into a module descriptor tree,
// dispatching on the file extension. Submodule references are loaded
// recursively, relative to the referencing file.
func Load(path string) (*module.Module, error) {
	return loadModule(path, make(map[string]bool))
}

// loadModule is Load with the set of absolute paths on the current
// include chain. A taskfile including itself, directly or through
// intermediaries, is a module error rather than unbounded recursion.
func loadModule(path string, chain map[string]bool) (*module.Module, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}
	if chain[abs] {
		return nil, fmt.Errorf("tasks module include cycle: %s is already on the include chain", path)
	}
	if !fileExists(abs) {
		return nil, &NotFoundError{Path: path}
	}
	chain[abs] = true
	defer delete(chain, abs)

	switch filepath.Ext(abs) {
	case ".toml":
		return loadTOML(abs, chain)
	case ".lua":
		return loadLua(abs, chain)
	default:
		return nil, fmt.Errorf("unsupported tasks module format: %s", filepath.Base(abs))
	}
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
