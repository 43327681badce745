// Package fsutil provides file system probing helpers.
package fsutil

import (
	"os"
	"path/filepath"
)

// IsRegularFile reports whether path exists and is a regular file. Symlinks
// are followed.
func IsRegularFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// FirstRegularFile returns the first of names, joined to dir, that is a
// regular file.
func FirstRegularFile(dir string, names ...string) (string, bool) {
	for _, name := range names {
		candidate := filepath.Join(dir, name)
		if IsRegularFile(candidate) {
			return candidate, true
		}
	}
	return "", false
}

// FindUp looks for rel in dir and each of its ancestors and returns the
// first existing path.
func FindUp(dir, rel string) (string, bool) {
	dir = filepath.Clean(dir)
	for {
		candidate := filepath.Join(dir, rel)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}
