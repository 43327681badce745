package app

import (
	"github.com/evanw/esbuild/pkg/api"
	"github.com/vk/denobuild/internal/manglecache"
)

// Assemble merges the validated configuration, the loaded mangle cache and
// the plugins into the options of a single build.
func Assemble(cfg *Config, cache manglecache.Cache, plugins []api.Plugin) api.BuildOptions {
	opts := api.BuildOptions{
		EntryPoints:   cfg.EntryPoints,
		AbsWorkingDir: cfg.WorkingDir,
		Write:         true,
		Metafile:      cfg.Metafile != "" || cfg.Analyze != AnalyzeOff,
		Plugins:       plugins,

		Bundle:   cfg.Bundle,
		Platform: cfg.Platform,
		Tsconfig: cfg.Tsconfig,

		Loader: cfg.Loader,

		Banner:        cfg.Banner,
		Charset:       cfg.Charset,
		Footer:        cfg.Footer,
		Format:        cfg.Format,
		GlobalName:    cfg.GlobalName,
		LegalComments: cfg.LegalComments,
		LineLimit:     cfg.LineLimit,
		Splitting:     cfg.Splitting,

		AllowOverwrite: cfg.AllowOverwrite,
		AssetNames:     cfg.AssetNames,
		ChunkNames:     cfg.ChunkNames,
		EntryNames:     cfg.EntryNames,
		OutExtension:   cfg.OutExtension,
		Outbase:        cfg.Outbase,
		Outdir:         cfg.Outdir,
		Outfile:        cfg.Outfile,
		PublicPath:     cfg.PublicPath,

		Alias:             cfg.Alias,
		Conditions:        cfg.Conditions,
		External:          cfg.External,
		MainFields:        cfg.MainFields,
		NodePaths:         cfg.NodePaths,
		Packages:          cfg.Packages,
		PreserveSymlinks:  cfg.PreserveSymlinks,
		ResolveExtensions: cfg.ResolveExtensions,

		JSX:             cfg.JSX,
		JSXDev:          cfg.JSXDev,
		JSXFactory:      cfg.JSXFactory,
		JSXFragment:     cfg.JSXFragment,
		JSXImportSource: cfg.JSXImportSource,
		JSXSideEffects:  cfg.JSXSideEffects,
		Supported:       cfg.Supported,
		Target:          cfg.Target,
		Engines:         cfg.Engines,

		Define:            cfg.Define,
		Drop:              cfg.Drop,
		DropLabels:        cfg.DropLabels,
		IgnoreAnnotations: cfg.IgnoreAnnotations,
		Inject:            cfg.Inject,
		KeepNames:         cfg.KeepNames,
		MangleProps:       cfg.MangleProps,
		MinifyWhitespace:  cfg.Minify || cfg.MinifyWhitespace,
		MinifyIdentifiers: cfg.Minify || cfg.MinifyIdentifiers,
		MinifySyntax:      cfg.Minify || cfg.MinifySyntax,
		Pure:              cfg.Pure,
		ReserveProps:      cfg.ReserveProps,
		TreeShaking:       cfg.TreeShaking,

		SourceRoot:     cfg.SourceRoot,
		Sourcemap:      cfg.Sourcemap,
		SourcesContent: cfg.SourcesContent,

		Color:       cfg.Color,
		LogLevel:    cfg.LogLevel,
		LogLimit:    cfg.LogLimit,
		LogOverride: cfg.LogOverride,
	}
	if cfg.TsconfigRaw != nil {
		opts.TsconfigRaw = cfg.TsconfigRaw.JSON
	}
	if cfg.MangleQuoted {
		opts.MangleQuoted = api.MangleQuotedTrue
	}
	if cache != nil {
		opts.MangleCache = map[string]interface{}(cache)
	}
	return opts
}
