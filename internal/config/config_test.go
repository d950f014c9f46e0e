// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"taskmate-cli/internal/issue"
)

// withConfigDir redirects the config directory for one test. Tests using
// it must not run in parallel: the override is package state.
func withConfigDir(t *testing.T, dir string) {
	t.Helper()
	SetConfigDirOverride(dir)
	t.Cleanup(func() { SetConfigDirOverride("") })
}

// ---------------------------------------------------------------------------
// Directory convention tests
// ---------------------------------------------------------------------------

func TestConfigDirOverride(t *testing.T) {
	dir := t.TempDir()
	withConfigDir(t, dir)

	got, err := ConfigDir()
	if err != nil {
		t.Fatalf("ConfigDir() error = %v", err)
	}
	if got != dir {
		t.Errorf("ConfigDir() = %q, want %q", got, dir)
	}
}

func TestGlobalTasksDirUnderConfigDir(t *testing.T) {
	dir := t.TempDir()
	withConfigDir(t, dir)

	got, err := GlobalTasksDir()
	if err != nil {
		t.Fatalf("GlobalTasksDir() error = %v", err)
	}
	if got != filepath.Join(dir, "tasks") {
		t.Errorf("GlobalTasksDir() = %q, want %q", got, filepath.Join(dir, "tasks"))
	}
}

func TestConfigDirUsesAppName(t *testing.T) {
	got, err := ConfigDir()
	if err != nil {
		t.Skipf("no home directory available: %v", err)
	}
	if filepath.Base(got) != AppName {
		t.Errorf("ConfigDir() = %q, want a %q leaf directory", got, AppName)
	}
}

// ---------------------------------------------------------------------------
// Settings loading tests
// ---------------------------------------------------------------------------

func TestLoadDefaultsWhenNoFile(t *testing.T) {
	withConfigDir(t, t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.DefaultModule != "" {
		t.Errorf("DefaultModule = %q, want empty", cfg.DefaultModule)
	}
	if cfg.CacheDir == "" {
		t.Error("CacheDir is empty, want a default")
	}
	if cfg.UI.ColorScheme != "dark" {
		t.Errorf("UI.ColorScheme = %q, want %q", cfg.UI.ColorScheme, "dark")
	}
	if cfg.UI.Verbose {
		t.Error("UI.Verbose = true, want false by default")
	}
}

func TestLoadReadsConfigFile(t *testing.T) {
	dir := t.TempDir()
	withConfigDir(t, dir)

	content := `
default_module = "/srv/tasks/taskmate.toml"
cache_dir = "/tmp/taskmate-cache"

[theme]
info = "#FFFFFF"

[ui]
color_scheme = "light"
verbose = true
`
	path := filepath.Join(dir, ConfigFileName+"."+ConfigFileExt)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.DefaultModule != "/srv/tasks/taskmate.toml" {
		t.Errorf("DefaultModule = %q", cfg.DefaultModule)
	}
	if cfg.CacheDir != "/tmp/taskmate-cache" {
		t.Errorf("CacheDir = %q", cfg.CacheDir)
	}
	if cfg.Theme["info"] != "#FFFFFF" {
		t.Errorf("Theme[info] = %q", cfg.Theme["info"])
	}
	if cfg.UI.ColorScheme != "light" || !cfg.UI.Verbose {
		t.Errorf("UI = %+v, want light/verbose", cfg.UI)
	}
}

func TestLoadBrokenFileIsAnError(t *testing.T) {
	dir := t.TempDir()
	withConfigDir(t, dir)

	path := filepath.Join(dir, ConfigFileName+"."+ConfigFileExt)
	if err := os.WriteFile(path, []byte("not = [valid"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err == nil {
		t.Fatal("Load() error = nil, want parse failure")
	}
	if cfg == nil {
		t.Fatal("Load() must still return usable defaults on failure")
	}
	if !strings.Contains(err.Error(), "load configuration") {
		t.Errorf("error %q does not name the failed operation", err.Error())
	}
}

func TestLoadMistypedFieldIsAnError(t *testing.T) {
	dir := t.TempDir()
	withConfigDir(t, dir)

	// Valid TOML, but default_module cannot decode into a string.
	path := filepath.Join(dir, ConfigFileName+"."+ConfigFileExt)
	if err := os.WriteFile(path, []byte("default_module = [1, 2]"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err == nil {
		t.Fatal("Load() error = nil, want decode failure")
	}
	if cfg == nil {
		t.Fatal("Load() must still return usable defaults on failure")
	}
	var actionable *issue.ActionableError
	if !errors.As(err, &actionable) {
		t.Fatalf("error %T is not actionable", err)
	}
	if actionable.Operation != "parse configuration" {
		t.Errorf("Operation = %q, want %q", actionable.Operation, "parse configuration")
	}
}
