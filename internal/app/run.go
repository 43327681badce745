package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/vk/denobuild/internal/configpath"
	"github.com/vk/denobuild/internal/ctxlog"
	"github.com/vk/denobuild/internal/denoplugin"
	"github.com/vk/denobuild/internal/manglecache"
)

// ErrBuildFailed is returned when esbuild reported errors. esbuild has
// already printed them.
var ErrBuildFailed = errors.New("build failed")

// InputError reports an unusable config file, import map, lock file or
// mangle cache. The build never started.
type InputError struct {
	Err error
}

func (e *InputError) Error() string { return e.Err.Error() }

func (e *InputError) Unwrap() error { return e.Err }

// Run executes the build described by the App's configuration.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")
	defer a.fetcher.Close()

	for _, name := range a.cfg.Ignored {
		a.logger.Warn("Option has no effect in denobuild.", "option", "--"+name)
	}

	configPath := configpath.Resolve(configpath.Options{
		Explicit:   a.cfg.ConfigPath,
		Disabled:   a.cfg.NoConfig,
		WorkingDir: a.cfg.WorkingDir,
	})
	a.logger.Debug("Config path resolved.", "path", configPath)

	cache, err := manglecache.Load(ctx, a.fetcher, a.cfg.MangleCache)
	if err != nil {
		return &InputError{Err: err}
	}

	resolution, err := a.resolution(ctx, configPath)
	if err != nil {
		return &InputError{Err: err}
	}
	opts := Assemble(a.cfg, cache, []api.Plugin{denoplugin.New(ctx, resolution)})

	a.logger.Debug("Starting build.", "entry_points", len(opts.EntryPoints), "metafile", opts.Metafile)
	result := a.engine.Build(opts)
	if len(result.Errors) > 0 {
		return fmt.Errorf("%w with %d error(s)", ErrBuildFailed, len(result.Errors))
	}
	a.logger.Debug("Build finished.", "warnings", len(result.Warnings), "outputs", len(result.OutputFiles))

	if err := a.report(result); err != nil {
		return err
	}
	a.logger.Debug("App.Run method finished.")
	return nil
}

// report prints the analysis and writes the metafile when requested.
func (a *App) report(result api.BuildResult) error {
	if a.cfg.Analyze != AnalyzeOff {
		analysis := a.engine.AnalyzeMetafile(result.Metafile, api.AnalyzeMetafileOptions{
			Color:   a.cfg.Color == api.ColorAlways,
			Verbose: a.cfg.Analyze == AnalyzeVerbose,
		})
		if _, err := io.WriteString(a.outW, analysis); err != nil {
			return fmt.Errorf("failed to print analysis: %w", err)
		}
	}
	if a.cfg.Metafile != "" {
		path := a.fetcher.Abs(a.cfg.Metafile)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("failed to write metafile %q: %w", path, err)
		}
		if err := os.WriteFile(path, []byte(result.Metafile), 0o644); err != nil {
			return fmt.Errorf("failed to write metafile %q: %w", path, err)
		}
		a.logger.Debug("Metafile written.", "path", path)
	}
	return nil
}
