// Package denoplugin is an esbuild plugin resolving modules the way deno
// does: through an import map, from remote URLs checked against a lock file,
// and from npm:, jsr: and node: specifiers.
package denoplugin

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/vk/denobuild/internal/ctxlog"
	"github.com/vk/denobuild/internal/fsutil"
	"github.com/vk/denobuild/internal/importmap"
	"github.com/vk/denobuild/internal/lockfile"
)

// Name is the plugin name reported by esbuild.
const Name = "deno"

const remoteNamespace = "deno-remote"

// Node modules strategies.
const (
	NodeModulesNone   = "none"
	NodeModulesManual = "manual"
	NodeModulesAuto   = "auto"
)

// Fetcher reads remote modules.
type Fetcher interface {
	Fetch(ctx context.Context, loc string) ([]byte, error)
}

// Options configure the plugin.
type Options struct {
	// WorkingDir is the absolute directory entry points are relative to.
	WorkingDir string
	// ImportMap may be nil.
	ImportMap *importmap.ImportMap
	// Lock may be nil.
	Lock *lockfile.Lock
	// NodeModulesDir selects how npm: specifiers are handled.
	NodeModulesDir string
	Fetcher        Fetcher
}

// resolving marks resolutions the plugin itself asked esbuild for.
type resolving struct{}

type plugin struct {
	ctx  context.Context
	opts Options
}

// New returns the plugin. esbuild callbacks carry no context, so ctx is kept
// for remote fetches and logging.
func New(ctx context.Context, opts Options) api.Plugin {
	p := &plugin{ctx: ctx, opts: opts}
	return api.Plugin{Name: Name, Setup: p.setup}
}

func (p *plugin) setup(build api.PluginBuild) {
	build.OnResolve(api.OnResolveOptions{Filter: ".*"}, func(args api.OnResolveArgs) (api.OnResolveResult, error) {
		return p.resolve(build, args)
	})
	build.OnLoad(api.OnLoadOptions{Filter: ".*", Namespace: remoteNamespace}, p.loadRemote)
}

func (p *plugin) resolve(build api.PluginBuild, args api.OnResolveArgs) (api.OnResolveResult, error) {
	if _, ok := args.PluginData.(resolving); ok {
		return api.OnResolveResult{}, nil
	}
	logger := ctxlog.FromContext(p.ctx)
	referrer := p.referrer(args)

	target, mapped := "", false
	if p.opts.ImportMap != nil {
		target, mapped = p.opts.ImportMap.Resolve(args.Path, referrer)
	}
	if !mapped {
		switch {
		case hasScheme(args.Path):
			target = args.Path
		case args.Namespace == remoteNamespace && importmap.IsRelative(args.Path):
			u, err := url.Parse(referrer)
			if err != nil {
				return api.OnResolveResult{}, err
			}
			rel, err := u.Parse(args.Path)
			if err != nil {
				return api.OnResolveResult{}, err
			}
			target = rel.String()
		default:
			return api.OnResolveResult{}, nil
		}
	}
	if mapped {
		logger.Debug("Mapped import.", "specifier", args.Path, "target", target, "importer", args.Importer)
	}
	return p.resolveTarget(build, args, target)
}

func (p *plugin) resolveTarget(build api.PluginBuild, args api.OnResolveArgs, target string) (api.OnResolveResult, error) {
	scheme, rest, _ := strings.Cut(target, ":")
	switch scheme {
	case "file":
		u, err := url.Parse(target)
		if err != nil {
			return api.OnResolveResult{}, err
		}
		return api.OnResolveResult{Path: filepath.FromSlash(u.Path)}, nil
	case "http", "https":
		return api.OnResolveResult{Path: target, Namespace: remoteNamespace}, nil
	case "npm":
		return p.resolveNpm(build, args, rest)
	case "jsr", "node":
		return api.OnResolveResult{Path: target, External: true}, nil
	}
	// Bare specifiers the import map produced go through esbuild's own
	// resolution from the working directory.
	if !hasScheme(target) {
		res := build.Resolve(target, api.ResolveOptions{
			ResolveDir: p.opts.WorkingDir,
			Kind:       args.Kind,
			PluginData: resolving{},
		})
		return fromResolveResult(res), nil
	}
	return api.OnResolveResult{}, nil
}

func (p *plugin) resolveNpm(build api.PluginBuild, args api.OnResolveArgs, spec string) (api.OnResolveResult, error) {
	if p.opts.NodeModulesDir == "" || p.opts.NodeModulesDir == NodeModulesNone {
		return api.OnResolveResult{Path: "npm:" + spec, External: true}, nil
	}
	name, subpath, err := ParseNpmSpecifier(spec)
	if err != nil {
		return api.OnResolveResult{}, err
	}
	if p.opts.NodeModulesDir == NodeModulesAuto {
		if _, ok := fsutil.FindUp(p.opts.WorkingDir, filepath.Join("node_modules", name)); !ok {
			ctxlog.FromContext(p.ctx).Warn("npm package is not installed; run `deno install` first.", "package", name)
		}
	}
	res := build.Resolve(name+subpath, api.ResolveOptions{
		ResolveDir: p.opts.WorkingDir,
		Kind:       args.Kind,
		PluginData: resolving{},
	})
	return fromResolveResult(res), nil
}

func (p *plugin) loadRemote(args api.OnLoadArgs) (api.OnLoadResult, error) {
	ctx := ctxlog.With(p.ctx, "module", args.Path)
	content, err := p.opts.Fetcher.Fetch(ctx, args.Path)
	if err != nil {
		return api.OnLoadResult{}, fmt.Errorf("failed to fetch %q: %w", args.Path, err)
	}
	if err := p.opts.Lock.Verify(args.Path, content); err != nil {
		return api.OnLoadResult{}, err
	}
	ctxlog.FromContext(ctx).Debug("Loaded remote module.", "bytes", len(content), "locked", p.opts.Lock != nil)
	contents := string(content)
	return api.OnLoadResult{Contents: &contents, Loader: LoaderFor(args.Path)}, nil
}

func (p *plugin) referrer(args api.OnResolveArgs) string {
	switch {
	case args.Namespace == remoteNamespace:
		return args.Importer
	case args.Importer != "" && filepath.IsAbs(args.Importer):
		return FileURL(args.Importer)
	}
	dir := args.ResolveDir
	if dir == "" {
		dir = p.opts.WorkingDir
	}
	return FileURL(dir) + "/"
}

func fromResolveResult(res api.ResolveResult) api.OnResolveResult {
	return api.OnResolveResult{
		Errors:     res.Errors,
		Warnings:   res.Warnings,
		Path:       res.Path,
		External:   res.External,
		Namespace:  res.Namespace,
		Suffix:     res.Suffix,
		PluginData: res.PluginData,
	}
}

// FileURL returns the file: URL of an absolute path.
func FileURL(p string) string {
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(p)}).String()
}

// ParseNpmSpecifier splits the part after "npm:" into the package name and
// the subpath, dropping the version: "@scope/pkg@^1/sub" yields "@scope/pkg"
// and "/sub".
func ParseNpmSpecifier(spec string) (name, subpath string, err error) {
	spec = strings.TrimPrefix(spec, "/")
	parts := strings.SplitN(spec, "/", 3)
	n := 1
	if strings.HasPrefix(spec, "@") {
		n = 2
	}
	if len(parts) < n || parts[0] == "" || (n == 2 && parts[1] == "") {
		return "", "", fmt.Errorf("invalid npm specifier %q", "npm:"+spec)
	}
	last := parts[n-1]
	if i := strings.LastIndex(last, "@"); i > 0 {
		last = last[:i]
	}
	name = strings.Join(append(parts[:n-1:n-1], last), "/")
	if len(parts) > n {
		subpath = "/" + strings.Join(parts[n:], "/")
	}
	return name, subpath, nil
}

// LoaderFor picks an esbuild loader for a remote module from its extension.
func LoaderFor(loc string) api.Loader {
	p := loc
	if u, err := url.Parse(loc); err == nil {
		p = u.Path
	}
	switch path.Ext(p) {
	case ".ts", ".mts", ".cts":
		return api.LoaderTS
	case ".tsx":
		return api.LoaderTSX
	case ".jsx":
		return api.LoaderJSX
	case ".json":
		return api.LoaderJSON
	case ".css":
		return api.LoaderCSS
	}
	return api.LoaderJS
}

func hasScheme(specifier string) bool {
	for _, s := range []string{"file:", "http:", "https:", "npm:", "jsr:", "node:"} {
		if strings.HasPrefix(specifier, s) {
			return true
		}
	}
	return false
}
