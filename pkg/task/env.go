// SPDX-License-Identifier: MPL-2.0

package task

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// EnvSnapshot captures the current process environment as a map.
func EnvSnapshot() map[string]string {
	environ := os.Environ()
	env := make(map[string]string, len(environ))
	for _, kv := range environ {
		k, v, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		env[k] = v
	}
	return env
}

// MergeEnv builds a fresh map from base with override applied on top.
// Override keys win on conflict. Neither input is mutated.
func MergeEnv(base, override map[string]string) map[string]string {
	merged := make(map[string]string, len(base)+len(override))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range override {
		merged[k] = v
	}
	return merged
}

// EnvToSlice converts an environment map to the KEY=VALUE slice form
// expected by process spawning, sorted for deterministic ordering.
func EnvToSlice(env map[string]string) []string {
	out := make([]string, 0, len(env))
	for k, v := range env {
		out = append(out, k+"="+v)
	}
	sort.Strings(out)
	return out
}

// ResolveDir resolves a task's effective working directory: an empty
// override means "use base", an absolute override wins outright, and a
// relative override (".." supported) is joined onto base.
func ResolveDir(base, override string) string {
	if override == "" {
		return base
	}
	if filepath.IsAbs(override) {
		return filepath.Clean(override)
	}
	return filepath.Clean(filepath.Join(base, override))
}
