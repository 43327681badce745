package app

import (
	"bytes"
	"os"
	"sync"
	"testing"

	"github.com/evanw/esbuild/pkg/api"
)

// SafeBuffer is a thread-safe buffer for capturing output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// RecordingEngine is an engine.Engine that records the options it was given
// and returns a canned result.
type RecordingEngine struct {
	Result   api.BuildResult
	Analysis string

	mu       sync.Mutex
	Builds   []api.BuildOptions
	Analyzed []api.AnalyzeMetafileOptions
}

func (e *RecordingEngine) Build(opts api.BuildOptions) api.BuildResult {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.Builds = append(e.Builds, opts)
	return e.Result
}

func (e *RecordingEngine) AnalyzeMetafile(metafile string, opts api.AnalyzeMetafileOptions) string {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.Analyzed = append(e.Analyzed, opts)
	return e.Analysis
}

// SetupAppTest creates an App for tests with debug logging captured in a
// buffer. Set DENOBUILD_TEST_LOGS=true to print the logs.
func SetupAppTest(t *testing.T, cfg *Config, eng *RecordingEngine) (*App, *SafeBuffer, *SafeBuffer) {
	t.Helper()

	out := &SafeBuffer{}
	logs := &SafeBuffer{}
	cfg.CLILogLevel = "debug"
	testApp := NewApp(out, logs, cfg, eng)

	t.Cleanup(func() {
		if os.Getenv("DENOBUILD_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logs.String())
		}
	})

	return testApp, out, logs
}
