package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/denobuild/internal/app"
	"github.com/vk/denobuild/internal/cli"
	"github.com/vk/denobuild/internal/optparse"
)

func TestRun_ShouldExit(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	// The "-h" (help) flag should cause cli.Parse to return `shouldExit=true`.
	args := []string{"-h"}
	out := &bytes.Buffer{}

	// --- Act ---
	err := run(out, &bytes.Buffer{}, args)

	// --- Assert ---
	require.NoError(t, err, "run() should return a nil error when shouldExit is true")
	require.Contains(t, out.String(), "Usage:", "Expected help text to be printed to the output buffer")
}

func TestRun_ParseError(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	args := []string{"main.ts", "--this-is-not-a-valid-flag"}

	// --- Act ---
	err := run(&bytes.Buffer{}, &bytes.Buffer{}, args)

	// --- Assert ---
	require.Error(t, err, "run() should return an error when argument parsing fails")
	require.Contains(t, err.Error(), "unknown flag: --this-is-not-a-valid-flag")
	require.Equal(t, cli.ExitUsage, exitCode(err))
}

func TestRun_InvalidOptionValue(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	args := []string{"main.ts", "--loader=.svg=unsupported"}

	// --- Act ---
	err := run(&bytes.Buffer{}, &bytes.Buffer{}, args)

	// --- Assert ---
	require.Error(t, err)
	require.Equal(t, cli.ExitUsage, exitCode(err))
	var verr *optparse.ValidationError
	require.ErrorAs(t, err, &verr)

	var rendered bytes.Buffer
	cli.FormatError(&rendered, err, false)
	require.Contains(t, rendered.String(), "on --loader line 1")
}

func TestRun_BuildsBundle(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	dir := t.TempDir()
	entry := filepath.Join(dir, "main.ts")
	require.NoError(t, os.WriteFile(entry, []byte("const answer: number = 42;\nconsole.log(answer);\n"), 0o600))
	outfile := filepath.Join(dir, "dist", "main.js")
	args := []string{entry, "--bundle", "--no-config", "--log-level=silent", "--outfile=" + outfile}

	// --- Act ---
	err := run(&bytes.Buffer{}, &bytes.Buffer{}, args)

	// --- Assert ---
	require.NoError(t, err)
	content, err := os.ReadFile(outfile)
	require.NoError(t, err)
	require.Contains(t, string(content), "42")
}

func TestRun_BuildFailure(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	dir := t.TempDir()
	entry := filepath.Join(dir, "main.ts")
	require.NoError(t, os.WriteFile(entry, []byte("import './missing.ts';\n"), 0o600))
	args := []string{entry, "--bundle", "--no-config", "--log-level=silent", "--outdir=" + filepath.Join(dir, "dist")}

	// --- Act ---
	err := run(&bytes.Buffer{}, &bytes.Buffer{}, args)

	// --- Assert ---
	require.True(t, errors.Is(err, app.ErrBuildFailed), "got %v", err)
	require.Equal(t, cli.ExitBuildFailed, exitCode(err))
}

func TestRun_InvalidInputFiles(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name  string
		files map[string]string
		flags []string
	}{
		{
			name:  "mangle cache with a non-string value",
			files: map[string]string{"cache.json": `{"_a": 1}`},
			flags: []string{"--no-config", "--mangle-cache=cache.json"},
		},
		{
			name:  "missing mangle cache",
			flags: []string{"--no-config", "--mangle-cache=missing.json"},
		},
		{
			name:  "config file with an invalid lock setting",
			files: map[string]string{"deno.json": `{"lock": 1}`},
			flags: []string{"--config=deno.json"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			// --- Arrange ---
			dir := t.TempDir()
			for name, content := range tc.files {
				require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
			}
			args := []string{filepath.Join(dir, "main.ts"), "--bundle", "--log-level=silent"}
			for _, f := range tc.flags {
				name, value, _ := strings.Cut(f, "=")
				if value != "" {
					f = name + "=" + filepath.Join(dir, value)
				}
				args = append(args, f)
			}

			// --- Act ---
			err := run(&bytes.Buffer{}, &bytes.Buffer{}, args)

			// --- Assert ---
			require.Error(t, err)
			require.False(t, errors.Is(err, app.ErrBuildFailed), "got %v", err)
			require.Equal(t, cli.ExitUsage, exitCode(err))
		})
	}
}
