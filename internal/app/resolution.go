package app

import (
	"context"
	"fmt"
	"net/url"
	"path/filepath"

	"github.com/vk/denobuild/internal/config"
	"github.com/vk/denobuild/internal/ctxlog"
	"github.com/vk/denobuild/internal/denoplugin"
	"github.com/vk/denobuild/internal/fetch"
	"github.com/vk/denobuild/internal/fsutil"
	"github.com/vk/denobuild/internal/importmap"
	"github.com/vk/denobuild/internal/lockfile"
)

const defaultLockName = "deno.lock"

// resolution gathers the deno resolution settings from the flags and the
// governing configuration file, if any. Flags take precedence.
func (a *App) resolution(ctx context.Context, configPath string) (denoplugin.Options, error) {
	logger := ctxlog.FromContext(ctx)
	opts := denoplugin.Options{
		WorkingDir:     a.cfg.WorkingDir,
		NodeModulesDir: a.cfg.NodeModulesDir,
		Fetcher:        a.fetcher,
	}

	var model *config.Model
	if configPath != "" {
		m, err := a.loader.Load(ctx, configPath)
		if err != nil {
			return opts, err
		}
		model = m
	}

	im, err := a.importMap(ctx, model)
	if err != nil {
		return opts, err
	}
	opts.ImportMap = im

	lock, err := a.lock(ctx, model)
	if err != nil {
		return opts, err
	}
	opts.Lock = lock

	if opts.NodeModulesDir == "" && model != nil {
		opts.NodeModulesDir = model.NodeModulesDir
	}
	if opts.NodeModulesDir == "" {
		opts.NodeModulesDir = denoplugin.NodeModulesNone
	}
	logger.Debug("Resolution settings ready.", "import_map", im != nil, "lock", lock != nil, "node_modules_dir", opts.NodeModulesDir)
	return opts, nil
}

func (a *App) importMap(ctx context.Context, model *config.Model) (*importmap.ImportMap, error) {
	var loc string
	switch {
	case a.cfg.ImportMap != "":
		loc = a.cfg.ImportMap
		if !fetch.IsRemote(loc) {
			loc = a.fetcher.Abs(loc)
		}
	case model != nil && model.ImportMap != "":
		loc = model.ImportMap
		if !fetch.IsRemote(loc) && !filepath.IsAbs(loc) {
			loc = filepath.Join(filepath.Dir(model.Path), loc)
		}
	case model != nil && model.HasInlineImportMap():
		base, err := url.Parse(denoplugin.FileURL(model.Path))
		if err != nil {
			return nil, err
		}
		im, err := importmap.New(model.Imports, model.Scopes, base)
		if err != nil {
			return nil, fmt.Errorf("invalid import map in %q: %w", model.Path, err)
		}
		return im, nil
	default:
		return nil, nil
	}

	raw, err := a.fetcher.Fetch(ctx, loc)
	if err != nil {
		return nil, fmt.Errorf("failed to read import map %q: %w", loc, err)
	}
	baseURL := loc
	if !fetch.IsRemote(loc) {
		baseURL = denoplugin.FileURL(loc)
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}
	im, err := importmap.Parse(raw, base)
	if err != nil {
		return nil, fmt.Errorf("invalid import map %q: %w", loc, err)
	}
	ctxlog.FromContext(ctx).Debug("Loaded import map.", "location", loc)
	return im, nil
}

// lock loads the lock file named by --lock, by the configuration file, or
// deno.lock next to the configuration file. A missing file disables checks.
func (a *App) lock(ctx context.Context, model *config.Model) (*lockfile.Lock, error) {
	var path string
	var frozen bool
	switch {
	case a.cfg.LockPath != "":
		path = a.fetcher.Abs(a.cfg.LockPath)
	case model == nil || model.Lock.Disabled:
		return nil, nil
	case model.Lock.Path != "":
		path = model.Lock.Path
		if !filepath.IsAbs(path) {
			path = filepath.Join(filepath.Dir(model.Path), path)
		}
		frozen = model.Lock.Frozen
	default:
		path = filepath.Join(filepath.Dir(model.Path), defaultLockName)
		frozen = model.Lock.Frozen
	}

	if !fsutil.IsRegularFile(path) {
		ctxlog.FromContext(ctx).Debug("No lock file, integrity checks disabled.", "path", path)
		return nil, nil
	}
	raw, err := a.fetcher.Fetch(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read lock file %q: %w", path, err)
	}
	lock, err := lockfile.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid lock file %q: %w", path, err)
	}
	lock.Frozen = frozen
	ctxlog.FromContext(ctx).Debug("Loaded lock file.", "path", path, "remote_entries", len(lock.Remote))
	return lock, nil
}
