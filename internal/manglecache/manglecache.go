// Package manglecache loads the property-mangling cache handed to esbuild.
package manglecache

import (
	"context"
	"fmt"

	"github.com/vk/denobuild/internal/ctxlog"
	"github.com/vk/denobuild/internal/schema"
)

// Cache maps an identifier to its replacement name, or to false when the
// identifier must keep its name.
type Cache map[string]any

// Fetcher reads the document at a path or URL.
type Fetcher interface {
	Fetch(ctx context.Context, loc string) ([]byte, error)
}

var cacheShape = schema.MapOf(schema.Union("a string or false", schema.String, schema.False))

// Load fetches and validates the cache at loc. An empty loc yields a nil
// cache. Any failure is reported with loc; a partial cache is never returned.
func Load(ctx context.Context, f Fetcher, loc string) (Cache, error) {
	if loc == "" {
		return nil, nil
	}
	cache, err := load(ctx, f, loc)
	if err != nil {
		return nil, fmt.Errorf("failed to read mangle cache file %q: %w", loc, err)
	}
	ctxlog.FromContext(ctx).Debug("Loaded mangle cache.", "path", loc, "entries", len(cache))
	return cache, nil
}

func load(ctx context.Context, f Fetcher, loc string) (Cache, error) {
	raw, err := f.Fetch(ctx, loc)
	if err != nil {
		return nil, err
	}
	cache := Cache{}
	if _, err := schema.Load(raw, cacheShape, &cache); err != nil {
		return nil, err
	}
	return cache, nil
}
