// SPDX-License-Identifier: MPL-2.0

// Package config loads taskmate settings from the per-user config file
// (TOML, via viper) and resolves the platform-specific directories for
// configuration, global tasks, and condition caches.
package config
