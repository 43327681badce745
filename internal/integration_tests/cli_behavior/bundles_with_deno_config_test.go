package integration_tests

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vk/denobuild/internal/app"
	"github.com/vk/denobuild/internal/cli"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("failed to create directory: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

// Test for: deno.json in the working directory is found and its import map
// is used while bundling.
func TestCLI_BundlesUsingDiscoveredDenoConfig(t *testing.T) {
	// --- Arrange ---
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "deno.jsonc"), `{
		// aliases
		"imports": {
			"@lib/": "./lib/",
		},
	}`)
	writeFile(t, filepath.Join(dir, "lib", "greet.ts"), "export const greet = (n: string): string => `hello ${n}`;\n")
	writeFile(t, filepath.Join(dir, "main.ts"), "import { greet } from '@lib/greet.ts';\nconsole.log(greet('deno'));\n")
	t.Chdir(dir)

	outW := &bytes.Buffer{}
	cfg, shouldExit, err := cli.Parse([]string{"main.ts", "--bundle", "--format=esm", "--log-level=silent", "--outfile=dist/main.js", "--metafile=dist/meta.json"}, outW)
	if err != nil || shouldExit {
		t.Fatalf("cli.Parse() = %v, %v; want a config", shouldExit, err)
	}

	// --- Act ---
	err = app.NewApp(outW, &bytes.Buffer{}, cfg, nil).Run(context.Background())

	// --- Assert ---
	if err != nil {
		t.Fatalf("Run() returned an unexpected error: %v", err)
	}
	bundle, err := os.ReadFile(filepath.Join(dir, "dist", "main.js"))
	if err != nil {
		t.Fatalf("bundle was not written: %v", err)
	}
	if !strings.Contains(string(bundle), "hello ") {
		t.Errorf("expected the aliased module to be bundled, got:\n%s", bundle)
	}
	meta, err := os.ReadFile(filepath.Join(dir, "dist", "meta.json"))
	if err != nil {
		t.Fatalf("metafile was not written: %v", err)
	}
	if !strings.Contains(string(meta), "greet.ts") {
		t.Errorf("expected the metafile to list lib/greet.ts, got:\n%s", meta)
	}
}

// Test for: --no-config skips discovery, so the alias is left to esbuild and
// the build fails.
func TestCLI_NoConfigSkipsDiscovery(t *testing.T) {
	// --- Arrange ---
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "deno.json"), `{"imports": {"@lib/": "./lib/"}}`)
	writeFile(t, filepath.Join(dir, "lib", "greet.ts"), "export const greet = 1;\n")
	writeFile(t, filepath.Join(dir, "main.ts"), "import { greet } from '@lib/greet.ts';\nconsole.log(greet);\n")
	t.Chdir(dir)

	cfg, _, err := cli.Parse([]string{"main.ts", "--bundle", "--no-config", "--log-level=silent", "--outdir=dist"}, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("cli.Parse() returned an unexpected error: %v", err)
	}

	// --- Act ---
	err = app.NewApp(&bytes.Buffer{}, &bytes.Buffer{}, cfg, nil).Run(context.Background())

	// --- Assert ---
	if err == nil {
		t.Fatal("expected the build to fail without the import map")
	}
}
