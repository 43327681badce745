package configpath

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("{}"), 0o644))
	}
}

func TestResolve(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		files    []string
		opts     Options
		expected string
	}{
		{name: "primary name present", files: []string{"deno.json"}, expected: "deno.json"},
		{name: "secondary name present", files: []string{"deno.jsonc"}, expected: "deno.jsonc"},
		{name: "both present picks primary", files: []string{"deno.jsonc", "deno.json"}, expected: "deno.json"},
		{name: "none present", expected: ""},
		{name: "disabled ignores disk", files: []string{"deno.json"}, opts: Options{Disabled: true}, expected: ""},
		{name: "explicit wins over disk", files: []string{"deno.json"}, opts: Options{Explicit: "conf/other.json"}, expected: "conf/other.json"},
		{name: "explicit wins even when missing", opts: Options{Explicit: "missing.jsonc"}, expected: "missing.jsonc"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			// --- Arrange ---
			dir := t.TempDir()
			writeFiles(t, dir, tc.files...)
			opts := tc.opts
			opts.WorkingDir = dir

			// --- Act ---
			got := Resolve(opts)

			// --- Assert ---
			if tc.expected == "" {
				require.Empty(t, got)
				return
			}
			require.Equal(t, filepath.Join(dir, tc.expected), got)
			require.True(t, filepath.IsAbs(got))
		})
	}
}

func TestResolve_ExplicitAbsolutePath(t *testing.T) {
	t.Parallel()

	abs := filepath.Join(t.TempDir(), "x", "..", "deno.json")

	got := Resolve(Options{Explicit: abs, WorkingDir: t.TempDir()})

	require.Equal(t, filepath.Clean(abs), got)
}
