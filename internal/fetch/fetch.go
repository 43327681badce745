// Package fetch reads documents named by a local path, a file: URL or an
// http(s) URL.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/vk/denobuild/internal/ctxlog"
)

// DefaultTimeout bounds each remote request.
const DefaultTimeout = 30 * time.Second

// Fetcher reads documents. The zero value is not usable; call New.
type Fetcher struct {
	client     *http.Client
	workingDir string
}

// New returns a Fetcher resolving relative paths against workingDir.
func New(workingDir string, timeout time.Duration) *Fetcher {
	return NewWithClient(workingDir, &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	})
}

// NewWithClient returns a Fetcher using client for remote requests.
func NewWithClient(workingDir string, client *http.Client) *Fetcher {
	return &Fetcher{workingDir: workingDir, client: client}
}

// IsRemote reports whether loc is an http or https URL.
func IsRemote(loc string) bool {
	return strings.HasPrefix(loc, "http://") || strings.HasPrefix(loc, "https://")
}

// Fetch returns the content at loc.
func (f *Fetcher) Fetch(ctx context.Context, loc string) ([]byte, error) {
	switch {
	case IsRemote(loc):
		return f.get(ctx, loc)
	case strings.HasPrefix(loc, "file:"):
		u, err := url.Parse(loc)
		if err != nil {
			return nil, err
		}
		return os.ReadFile(filepath.FromSlash(u.Path))
	default:
		return os.ReadFile(f.Abs(loc))
	}
}

// Abs resolves a local path against the working directory.
func (f *Fetcher) Abs(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(f.workingDir, path)
}

// Close releases idle connections.
func (f *Fetcher) Close() {
	f.client.CloseIdleConnections()
}

func (f *Fetcher) get(ctx context.Context, loc string) ([]byte, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Fetching remote document.", "url", loc)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, loc, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	logger.Debug("Fetched remote document.", "url", loc, "bytes", len(body))
	return body, nil
}
