// SPDX-License-Identifier: MPL-2.0

package cond

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"taskmate-cli/pkg/task"
)

// Algorithm selects how FilesUnchanged fingerprints a file.
type Algorithm string

const (
	// Timestamp compares modification times. Cheapest, the default.
	Timestamp Algorithm = "timestamp"
	// MD5 compares md5 content digests.
	MD5 Algorithm = "md5"
	// SHA1 compares sha1 content digests.
	SHA1 Algorithm = "sha1"
	// SHA256 compares sha256 content digests.
	SHA256 Algorithm = "sha256"
)

// FilesUnchanged is satisfied when none of the watched files changed
// since the last evaluation. State persists in a JSON cache keyed by the
// task name, the algorithm, and a hash of the watched-path list, so tasks
// watching the same paths with the same algorithm share a cache file.
type FilesUnchanged struct {
	// Files are paths to watch, resolved against the context directory.
	// Directories are expanded recursively.
	Files []string
	// Algorithm defaults to Timestamp.
	Algorithm Algorithm
	// AllowMissing treats missing files as unchanged instead of dirty.
	AllowMissing bool
}

// Satisfied implements task.Condition.
func (c *FilesUnchanged) Satisfied(inv *task.Invocation) (bool, error) {
	algo := c.Algorithm
	if algo == "" {
		algo = Timestamp
	}

	files, err := c.expand(inv.Context.Dir)
	if err != nil {
		return false, err
	}

	cachePath := c.cachePath(inv, algo, files)
	cache := loadCache(cachePath)

	unchanged := true
	for _, file := range files {
		info, statErr := os.Stat(file)
		if statErr != nil {
			// Evict so a file that reappears later counts as changed.
			delete(cache, file)
			if !c.AllowMissing {
				unchanged = false
			}
			continue
		}
		val, err := fingerprint(file, info, algo)
		if err != nil {
			return false, err
		}
		if cache[file] != val {
			cache[file] = val
			unchanged = false
		}
	}

	if !unchanged {
		if err := writeCache(cachePath, cache); err != nil {
			return false, err
		}
	}
	return unchanged, nil
}

// expand resolves the watched paths against base and walks directories.
func (c *FilesUnchanged) expand(base string) ([]string, error) {
	var files []string
	for _, f := range c.Files {
		path := f
		if !filepath.IsAbs(path) {
			path = filepath.Join(base, f)
		}
		info, err := os.Stat(path)
		if err != nil || !info.IsDir() {
			files = append(files, path)
			continue
		}
		err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
			if err != nil || d.IsDir() {
				return err
			}
			files = append(files, p)
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", path, err)
		}
	}
	return files, nil
}

// cachePath derives the deterministic per-task cache location. The path
// list is hashed so distinct watch sets never clash.
func (c *FilesUnchanged) cachePath(inv *task.Invocation, algo Algorithm, files []string) string {
	dir := inv.Context.CacheDir
	if dir == "" {
		dir = os.TempDir()
	}
	sum := md5.Sum([]byte(strings.Join(files, "\n")))
	name := fmt.Sprintf("%s.files-unchanged.%s.%x.json", inv.Name, algo, sum)
	return filepath.Join(dir, name)
}

func fingerprint(path string, info fs.FileInfo, algo Algorithm) (string, error) {
	if algo == Timestamp {
		return strconv.FormatInt(info.ModTime().UnixNano(), 10), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	switch algo {
	case MD5:
		return fmt.Sprintf("%x", md5.Sum(data)), nil
	case SHA1:
		return fmt.Sprintf("%x", sha1.Sum(data)), nil
	case SHA256:
		return fmt.Sprintf("%x", sha256.Sum256(data)), nil
	default:
		return "", fmt.Errorf("unknown digest algorithm %q", algo)
	}
}

func loadCache(path string) map[string]string {
	cache := make(map[string]string)
	data, err := os.ReadFile(path)
	if err != nil {
		return cache
	}
	if err := json.Unmarshal(data, &cache); err != nil {
		// A corrupt cache means "everything changed", not a failure.
		return make(map[string]string)
	}
	return cache
}

func writeCache(path string, cache map[string]string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}
	data, err := json.Marshal(cache)
	if err != nil {
		return fmt.Errorf("encode cache: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write cache: %w", err)
	}
	return nil
}

// PathsExist is satisfied when every path exists, resolved against the
// context directory.
type PathsExist struct {
	Paths []string
}

// Satisfied implements task.Condition.
func (c *PathsExist) Satisfied(inv *task.Invocation) (bool, error) {
	for _, p := range c.Paths {
		path := p
		if !filepath.IsAbs(path) {
			path = filepath.Join(inv.Context.Dir, p)
		}
		if _, err := os.Stat(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return false, nil
			}
			return false, fmt.Errorf("stat %s: %w", path, err)
		}
	}
	return true, nil
}
