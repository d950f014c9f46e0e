// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/viper"

	"taskmate-cli/internal/issue"
)

const (
	// AppName is the application name, used in directory conventions.
	AppName = "taskmate"
	// ConfigFileName is the config file name without extension.
	ConfigFileName = "config"
	// ConfigFileExt is the config file extension.
	ConfigFileExt = "toml"
)

type (
	// UIConfig holds presentation settings.
	UIConfig struct {
		// ColorScheme names the palette; reserved for future schemes.
		ColorScheme string `mapstructure:"color_scheme"`
		// Verbose enables debug logging by default.
		Verbose bool `mapstructure:"verbose"`
	}

	// Config is the loaded settings tree.
	Config struct {
		// DefaultModule overrides the upward taskfile search with an
		// explicit path, as if -m were always passed.
		DefaultModule string `mapstructure:"default_module"`
		// CacheDir is where condition caches live.
		CacheDir string `mapstructure:"cache_dir"`
		// Theme maps output categories (info, success, warning, error)
		// to colors.
		Theme map[string]string `mapstructure:"theme"`
		UI    UIConfig          `mapstructure:"ui"`
	}
)

// configDirOverride lets tests redirect the config directory.
var configDirOverride string

// SetConfigDirOverride redirects ConfigDir, for tests.
func SetConfigDirOverride(dir string) {
	configDirOverride = dir
}

// ConfigDir returns the taskmate configuration directory using
// platform-specific conventions: %APPDATA% on Windows, Application
// Support on macOS, $XDG_CONFIG_HOME (default ~/.config) elsewhere.
func ConfigDir() (string, error) {
	if configDirOverride != "" {
		return configDirOverride, nil
	}

	var configDir string
	switch runtime.GOOS {
	case "windows":
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(home, "Library", "Application Support")
	default:
		configDir = os.Getenv("XDG_CONFIG_HOME")
		if configDir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("failed to get home directory: %w", err)
			}
			configDir = filepath.Join(home, ".config")
		}
	}
	return filepath.Join(configDir, AppName), nil
}

// GlobalTasksDir returns the per-user tasks directory used by -g.
func GlobalTasksDir() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "tasks"), nil
}

// DefaultCacheDir returns the default condition-cache directory.
func DefaultCacheDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return filepath.Join(os.TempDir(), AppName)
	}
	return filepath.Join(dir, AppName)
}

// DefaultConfig returns the built-in settings.
func DefaultConfig() *Config {
	return &Config{
		CacheDir: DefaultCacheDir(),
		Theme:    map[string]string{},
		UI:       UIConfig{ColorScheme: "dark"},
	}
}

// Load reads the config file from the config directory, falling back to
// defaults when no file exists. A present-but-broken file is an error;
// the user should know their settings are not being applied.
func Load() (*Config, error) {
	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("default_module", defaults.DefaultModule)
	v.SetDefault("cache_dir", defaults.CacheDir)
	v.SetDefault("theme", defaults.Theme)
	v.SetDefault("ui.color_scheme", defaults.UI.ColorScheme)
	v.SetDefault("ui.verbose", defaults.UI.Verbose)

	cfgDir, err := ConfigDir()
	if err != nil {
		return defaults, err
	}

	v.SetConfigName(ConfigFileName)
	v.SetConfigType(ConfigFileExt)
	v.AddConfigPath(cfgDir)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return defaults, issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(filepath.Join(cfgDir, ConfigFileName+"."+ConfigFileExt)).
				WithSuggestion("Check that the file contains valid TOML").
				Wrap(err).
				BuildError()
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return defaults, issue.WrapWithOperation(err, "parse configuration")
	}
	return &cfg, nil
}
