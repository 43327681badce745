package config

import (
	"context"
	"fmt"

	"github.com/vk/denobuild/internal/ctxlog"
	"github.com/vk/denobuild/internal/schema"
)

var modelShape = schema.Object(schema.Fields{
	"imports":   schema.MapOf(schema.String),
	"scopes":    schema.MapOf(schema.MapOf(schema.String)),
	"importMap": schema.String,
	"lock": schema.Union("a boolean, a string or an object",
		schema.Bool,
		schema.String,
		schema.Object(schema.Fields{"path": schema.String, "frozen": schema.Bool}),
	),
	"nodeModulesDir": schema.Union(`"none", "auto", "manual" or a boolean`,
		schema.OneOf("none", "auto", "manual"),
		schema.Bool,
	),
})

// FileLoader loads configuration files through a Fetcher.
type FileLoader struct {
	Fetcher Fetcher
}

var _ Loader = (*FileLoader)(nil)

// Load reads the configuration file at path.
func (l *FileLoader) Load(ctx context.Context, path string) (*Model, error) {
	raw, err := l.Fetcher.Fetch(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %q: %w", path, err)
	}
	m, err := Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid config file %q: %w", path, err)
	}
	m.Path = path
	ctxlog.FromContext(ctx).Debug("Loaded config file.", "path", path, "imports", len(m.Imports), "scopes", len(m.Scopes))
	return m, nil
}

type document struct {
	Imports        map[string]string            `json:"imports"`
	Scopes         map[string]map[string]string `json:"scopes"`
	ImportMap      string                       `json:"importMap"`
	Lock           any                          `json:"lock"`
	NodeModulesDir any                          `json:"nodeModulesDir"`
}

// Parse decodes a configuration document with comments.
func Parse(src []byte) (*Model, error) {
	var doc document
	if _, err := schema.Load(src, modelShape, &doc); err != nil {
		return nil, err
	}
	return &Model{
		Imports:        doc.Imports,
		Scopes:         doc.Scopes,
		ImportMap:      doc.ImportMap,
		Lock:           lockSetting(doc.Lock),
		NodeModulesDir: nodeModulesDir(doc.NodeModulesDir),
	}, nil
}

// The union settings below are already shape checked.

func lockSetting(v any) Lock {
	switch lock := v.(type) {
	case bool:
		return Lock{Disabled: !lock}
	case string:
		return Lock{Path: lock}
	case map[string]any:
		var l Lock
		l.Path, _ = lock["path"].(string)
		l.Frozen, _ = lock["frozen"].(bool)
		return l
	}
	return Lock{}
}

// Boolean nodeModulesDir is the pre-2.0 spelling.
func nodeModulesDir(v any) string {
	switch dir := v.(type) {
	case bool:
		if dir {
			return "auto"
		}
		return "none"
	case string:
		return dir
	}
	return ""
}
