// Package configpath decides which deno configuration file governs a build.
package configpath

import (
	"path/filepath"

	"github.com/vk/denobuild/internal/fsutil"
)

// DefaultCandidates are probed, in order, when no file is named explicitly.
var DefaultCandidates = []string{"deno.json", "deno.jsonc"}

// Options are the inputs of Resolve.
type Options struct {
	// Explicit is the --config value.
	Explicit string
	// Disabled is --no-config.
	Disabled bool
	// WorkingDir anchors relative paths and is where candidates are probed.
	// It must be absolute.
	WorkingDir string
}

// Resolve returns the absolute path of the governing configuration file, or
// "" when none applies. An explicit path wins even if it does not exist.
func Resolve(opts Options) string {
	if opts.Explicit != "" {
		return absolute(opts.WorkingDir, opts.Explicit)
	}
	if opts.Disabled {
		return ""
	}
	if found, ok := fsutil.FirstRegularFile(opts.WorkingDir, DefaultCandidates...); ok {
		return found
	}
	return ""
}

func absolute(base, path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(base, path)
}
