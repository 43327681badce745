package config

import (
	"context"
)

// Loader reads and validates a configuration file.
type Loader interface {
	Load(ctx context.Context, path string) (*Model, error)
}

// Fetcher reads the document at a path or URL.
type Fetcher interface {
	Fetch(ctx context.Context, loc string) ([]byte, error)
}
