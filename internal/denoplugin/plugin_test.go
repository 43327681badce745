package denoplugin

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/stretchr/testify/require"
	"github.com/vk/denobuild/internal/ctxlog"
	"github.com/vk/denobuild/internal/fetch"
	"github.com/vk/denobuild/internal/importmap"
	"github.com/vk/denobuild/internal/lockfile"
)

const (
	remoteMod  = `import { u } from "./util.ts"; export const remote: string = u;`
	remoteUtil = `export const u = "from-remote";`
)

type fixture struct {
	dir string
	srv *httptest.Server
	im  *importmap.ImportMap
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/mod.ts":
			_, _ = io.WriteString(w, remoteMod)
		case "/util.ts":
			_, _ = io.WriteString(w, remoteUtil)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "src"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "src", "dep.ts"), []byte(`export const dep = "from-src";`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.ts"), []byte(`
import { dep } from "@/dep.ts";
import { remote } from "remote/mod.ts";
import "npm:left-pad@1.3.0";
import "jsr:@std/path@1";
console.log(dep, remote);
`), 0o644))

	base, err := url.Parse(FileURL(dir) + "/deno.json")
	require.NoError(t, err)
	im, err := importmap.New(map[string]string{
		"@/":      "./src/",
		"remote/": srv.URL + "/",
	}, nil, base)
	require.NoError(t, err)

	return &fixture{dir: dir, srv: srv, im: im}
}

func (f *fixture) build(t *testing.T, lock *lockfile.Lock) api.BuildResult {
	t.Helper()
	ctx := ctxlog.WithLogger(context.Background(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	return api.Build(api.BuildOptions{
		EntryPoints:   []string{"main.ts"},
		AbsWorkingDir: f.dir,
		Bundle:        true,
		Format:        api.FormatESModule,
		LogLevel:      api.LogLevelSilent,
		Plugins: []api.Plugin{New(ctx, Options{
			WorkingDir:     f.dir,
			ImportMap:      f.im,
			Lock:           lock,
			NodeModulesDir: NodeModulesNone,
			Fetcher:        fetch.NewWithClient(f.dir, f.srv.Client()),
		})},
	})
}

func digest(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

func TestPlugin_Build(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	f := newFixture(t)
	lock := &lockfile.Lock{Remote: map[string]string{
		f.srv.URL + "/mod.ts":  digest(remoteMod),
		f.srv.URL + "/util.ts": digest(remoteUtil),
	}}

	// --- Act ---
	result := f.build(t, lock)

	// --- Assert ---
	require.Empty(t, result.Errors)
	require.Len(t, result.OutputFiles, 1)
	out := string(result.OutputFiles[0].Contents)
	require.Contains(t, out, "from-src")
	require.Contains(t, out, "from-remote")
	require.Contains(t, out, `"npm:left-pad@1.3.0"`)
	require.Contains(t, out, `"jsr:@std/path@1"`)
}

func TestPlugin_Build_IntegrityFailure(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	lock := &lockfile.Lock{Remote: map[string]string{
		f.srv.URL + "/mod.ts": digest("something else"),
	}}

	result := f.build(t, lock)

	require.NotEmpty(t, result.Errors)
	require.Contains(t, result.Errors[0].Text, "integrity check failed")
}

func TestParseNpmSpecifier(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		spec    string
		name    string
		subpath string
		wantErr bool
	}{
		{spec: "preact", name: "preact"},
		{spec: "preact@10.19.0", name: "preact"},
		{spec: "preact@10.19.0/hooks", name: "preact", subpath: "/hooks"},
		{spec: "/preact@^10/jsx-runtime", name: "preact", subpath: "/jsx-runtime"},
		{spec: "@types/node@20/fs/promises", name: "@types/node", subpath: "/fs/promises"},
		{spec: "@scope/pkg", name: "@scope/pkg"},
		{spec: "@scope", wantErr: true},
		{spec: "", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.spec, func(t *testing.T) {
			t.Parallel()

			name, subpath, err := ParseNpmSpecifier(tc.spec)

			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.name, name)
			require.Equal(t, tc.subpath, subpath)
		})
	}
}

func TestLoaderFor(t *testing.T) {
	t.Parallel()

	require.Equal(t, api.LoaderTS, LoaderFor("https://deno.land/std/path/mod.ts"))
	require.Equal(t, api.LoaderTSX, LoaderFor("https://x.dev/c.tsx?v=1"))
	require.Equal(t, api.LoaderJSON, LoaderFor("https://x.dev/data.json"))
	require.Equal(t, api.LoaderCSS, LoaderFor("https://x.dev/a.css"))
	require.Equal(t, api.LoaderJS, LoaderFor("https://esm.sh/preact@10"))
}

func TestPlugin_NpmAuto_WarnsAboutMissingPackages(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	dir := t.TempDir()
	pkg := filepath.Join(dir, "node_modules", "left-pad")
	require.NoError(t, os.MkdirAll(pkg, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(pkg, "package.json"), []byte(`{"name": "left-pad", "main": "index.js"}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(pkg, "index.js"), []byte(`module.exports = (s) => " " + s;`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.ts"), []byte(`
import pad from "npm:left-pad@1.3.0";
import "npm:not-installed@2";
console.log(pad("x"));
`), 0o644))

	var logs SafeLogs
	ctx := ctxlog.WithLogger(context.Background(), slog.New(slog.NewTextHandler(&logs, nil)))

	// --- Act ---
	result := api.Build(api.BuildOptions{
		EntryPoints:   []string{"main.ts"},
		AbsWorkingDir: dir,
		Bundle:        true,
		LogLevel:      api.LogLevelSilent,
		Plugins: []api.Plugin{New(ctx, Options{
			WorkingDir:     dir,
			NodeModulesDir: NodeModulesAuto,
			Fetcher:        fetch.New(dir, fetch.DefaultTimeout),
		})},
	})

	// --- Assert ---
	require.NotEmpty(t, result.Errors, "the missing package cannot be resolved")
	require.Contains(t, logs.String(), "package=not-installed")
	require.NotContains(t, logs.String(), "package=left-pad")
}

func TestPlugin_RemoteLogsNameTheModule(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	var logs SafeLogs
	ctx := ctxlog.WithLogger(context.Background(), slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug})))

	result := api.Build(api.BuildOptions{
		EntryPoints:   []string{"main.ts"},
		AbsWorkingDir: f.dir,
		Bundle:        true,
		Format:        api.FormatESModule,
		LogLevel:      api.LogLevelSilent,
		Plugins: []api.Plugin{New(ctx, Options{
			WorkingDir:     f.dir,
			ImportMap:      f.im,
			NodeModulesDir: NodeModulesNone,
			Fetcher:        fetch.NewWithClient(f.dir, f.srv.Client()),
		})},
	})

	require.Empty(t, result.Errors)
	require.Contains(t, logs.String(), `msg="Loaded remote module." module=`+f.srv.URL+"/util.ts")
}

// SafeLogs collects log output written from esbuild's goroutines.
type SafeLogs struct {
	mu sync.Mutex
	b  strings.Builder
}

func (l *SafeLogs) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.b.Write(p)
}

func (l *SafeLogs) String() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.b.String()
}
