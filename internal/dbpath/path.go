// Package dbpath resolves logical database names into concrete storage
// locations understood by the SQLite engine.
package dbpath

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// MemorySentinel is the logical name of a private in-memory database.
const MemorySentinel = ":memory:"

// Extension is the canonical file extension for database files.
const Extension = ".db"

// Resolve normalizes a logical database name into a storage location.
//
// In-memory names (":memory:" and "file::memory:" URI forms) are returned
// unchanged. Absolute paths and "file:" URIs are used as-is; any other name
// is resolved relative to the process working directory. The resolved path
// always carries the canonical extension: appended at the end, or inserted
// immediately before a trailing query-string marker if one exists.
func Resolve(name string) (string, error) {
	if name == MemorySentinel || strings.HasPrefix(name, "file::memory:") {
		return name, nil
	}

	path := name
	if !filepath.IsAbs(path) && !strings.HasPrefix(path, "file:") {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("resolve database path: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	return ensureExtension(path), nil
}

// ensureExtension inserts the canonical extension if the path lacks it,
// keeping any URI query string at the tail.
func ensureExtension(path string) string {
	if strings.Contains(path, Extension) {
		return path
	}
	if i := strings.Index(path, "?"); i >= 0 {
		return path[:i] + Extension + path[i:]
	}
	return path + Extension
}
