// SPDX-License-Identifier: MPL-2.0

package cond

import (
	"os"
	"path/filepath"
	"testing"

	"taskmate-cli/pkg/task"
)

func testInvocation(t *testing.T, dir string) *task.Invocation {
	t.Helper()
	return &task.Invocation{
		Name: "build",
		Context: &task.Context{
			Dir:      dir,
			CacheDir: t.TempDir(),
		},
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// ---------------------------------------------------------------------------
// FilesUnchanged tests
// ---------------------------------------------------------------------------

func TestFilesUnchangedFirstRunIsDirty(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "main.go"), "package main")

	c := &FilesUnchanged{Files: []string{"main.go"}, Algorithm: MD5}
	inv := testInvocation(t, dir)

	satisfied, err := c.Satisfied(inv)
	if err != nil {
		t.Fatalf("Satisfied() error = %v", err)
	}
	if satisfied {
		t.Error("Satisfied() = true on first run, want false")
	}
}

func TestFilesUnchangedSecondRunIsClean(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "main.go"), "package main")

	c := &FilesUnchanged{Files: []string{"main.go"}, Algorithm: MD5}
	inv := testInvocation(t, dir)

	if _, err := c.Satisfied(inv); err != nil {
		t.Fatalf("first Satisfied() error = %v", err)
	}
	satisfied, err := c.Satisfied(inv)
	if err != nil {
		t.Fatalf("second Satisfied() error = %v", err)
	}
	if !satisfied {
		t.Error("Satisfied() = false on unchanged files, want true")
	}
}

func TestFilesUnchangedDetectsModification(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "main.go")
	writeFile(t, path, "package main")

	c := &FilesUnchanged{Files: []string{"main.go"}, Algorithm: MD5}
	inv := testInvocation(t, dir)

	if _, err := c.Satisfied(inv); err != nil {
		t.Fatalf("prime Satisfied() error = %v", err)
	}
	writeFile(t, path, "package main // edited")

	satisfied, err := c.Satisfied(inv)
	if err != nil {
		t.Fatalf("Satisfied() error = %v", err)
	}
	if satisfied {
		t.Error("Satisfied() = true after modification, want false")
	}
}

func TestFilesUnchangedMissingFile(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		allowMissing bool
		expected     bool
	}{
		{
			name:         "missing file is dirty by default",
			allowMissing: false,
			expected:     false,
		},
		{
			name:         "allow missing treats absence as unchanged",
			allowMissing: true,
			expected:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := &FilesUnchanged{
				Files:        []string{"ghost.go"},
				Algorithm:    MD5,
				AllowMissing: tt.allowMissing,
			}
			satisfied, err := c.Satisfied(testInvocation(t, t.TempDir()))
			if err != nil {
				t.Fatalf("Satisfied() error = %v", err)
			}
			if satisfied != tt.expected {
				t.Errorf("Satisfied() = %v, want %v", satisfied, tt.expected)
			}
		})
	}
}

func TestFilesUnchangedExpandsDirectories(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	if err := os.MkdirAll(src, 0o755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(src, "a.go"), "package a")
	writeFile(t, filepath.Join(src, "b.go"), "package b")

	c := &FilesUnchanged{Files: []string{"src"}, Algorithm: MD5}
	inv := testInvocation(t, dir)

	if _, err := c.Satisfied(inv); err != nil {
		t.Fatalf("prime Satisfied() error = %v", err)
	}
	writeFile(t, filepath.Join(src, "b.go"), "package b // edited")

	satisfied, err := c.Satisfied(inv)
	if err != nil {
		t.Fatalf("Satisfied() error = %v", err)
	}
	if satisfied {
		t.Error("Satisfied() = true after editing a file inside a watched directory")
	}
}

func TestFilesUnchangedDistinctWatchSetsDoNotShareCache(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.go"), "package a")
	writeFile(t, filepath.Join(dir, "b.go"), "package b")

	inv := testInvocation(t, dir)

	first := &FilesUnchanged{Files: []string{"a.go"}, Algorithm: MD5}
	if _, err := first.Satisfied(inv); err != nil {
		t.Fatalf("Satisfied() error = %v", err)
	}

	second := &FilesUnchanged{Files: []string{"b.go"}, Algorithm: MD5}
	satisfied, err := second.Satisfied(inv)
	if err != nil {
		t.Fatalf("Satisfied() error = %v", err)
	}
	if satisfied {
		t.Error("different watch set reused the first set's cache")
	}
}

// ---------------------------------------------------------------------------
// PathsExist tests
// ---------------------------------------------------------------------------

func TestPathsExist(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "present"), "x")

	tests := []struct {
		name     string
		paths    []string
		expected bool
	}{
		{
			name:     "all present",
			paths:    []string{"present"},
			expected: true,
		},
		{
			name:     "one missing",
			paths:    []string{"present", "absent"},
			expected: false,
		},
		{
			name:     "empty set is satisfied",
			paths:    nil,
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := &PathsExist{Paths: tt.paths}
			satisfied, err := c.Satisfied(testInvocation(t, dir))
			if err != nil {
				t.Fatalf("Satisfied() error = %v", err)
			}
			if satisfied != tt.expected {
				t.Errorf("Satisfied() = %v, want %v", satisfied, tt.expected)
			}
		})
	}
}
