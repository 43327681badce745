package engine

import (
	"github.com/evanw/esbuild/pkg/api"
)

// Engine runs one build and renders metafile analyses.
type Engine interface {
	Build(opts api.BuildOptions) api.BuildResult
	AnalyzeMetafile(metafile string, opts api.AnalyzeMetafileOptions) string
}

// Esbuild is the Engine backed by esbuild's Go API.
type Esbuild struct{}

var _ Engine = Esbuild{}

// Build runs esbuild once.
func (Esbuild) Build(opts api.BuildOptions) api.BuildResult {
	return api.Build(opts)
}

// AnalyzeMetafile returns esbuild's human-readable metafile analysis.
func (Esbuild) AnalyzeMetafile(metafile string, opts api.AnalyzeMetafileOptions) string {
	return api.AnalyzeMetafile(metafile, opts)
}
