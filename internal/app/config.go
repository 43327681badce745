package app

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/vk/denobuild/internal/tsconfig"
)

// Analyze modes.
const (
	AnalyzeOff     = ""
	AnalyzeOn      = "true"
	AnalyzeVerbose = "verbose"
)

// Config is the fully parsed command line. Zero values mean "not given"
// unless a field says otherwise.
type Config struct {
	EntryPoints []string
	// WorkingDir is absolute.
	WorkingDir string

	// General
	Bundle      bool
	Minify      bool
	Platform    api.Platform
	Tsconfig    string
	TsconfigRaw *tsconfig.Config

	// Deno
	ConfigPath     string
	NoConfig       bool
	ImportMap      string
	LockPath       string
	NodeModulesDir string

	// Input
	Loader map[string]api.Loader

	// Output contents
	Banner        map[string]string
	Charset       api.Charset
	Footer        map[string]string
	Format        api.Format
	GlobalName    string
	LegalComments api.LegalComments
	LineLimit     int
	Splitting     bool

	// Output location
	AllowOverwrite bool
	AssetNames     string
	ChunkNames     string
	EntryNames     string
	OutExtension   map[string]string
	Outbase        string
	Outdir         string
	Outfile        string
	PublicPath     string

	// Path resolution
	Alias             map[string]string
	Conditions        []string
	External          []string
	MainFields        []string
	NodePaths         []string
	Packages          api.Packages
	PreserveSymlinks  bool
	ResolveExtensions []string

	// Transformation
	JSX             api.JSX
	JSXDev          bool
	JSXFactory      string
	JSXFragment     string
	JSXImportSource string
	JSXSideEffects  bool
	Supported       map[string]bool
	Target          api.Target
	Engines         []api.Engine

	// Optimization
	Define            map[string]string
	Drop              api.Drop
	DropLabels        []string
	IgnoreAnnotations bool
	Inject            []string
	KeepNames         bool
	MangleCache       string
	MangleProps       string
	MangleQuoted      bool
	MinifyWhitespace  bool
	MinifyIdentifiers bool
	MinifySyntax      bool
	Pure              []string
	ReserveProps      string
	TreeShaking       api.TreeShaking

	// Source maps
	SourceRoot     string
	Sourcemap      api.SourceMap
	SourcesContent api.SourcesContent

	// Build metadata
	Analyze  string
	Metafile string

	// Logging
	Color       api.StderrColor
	LogLevel    api.LogLevel
	LogLimit    int
	LogOverride map[string]api.LogLevel

	// Ignored names options that are accepted but have no effect here
	// (watch mode and serving).
	Ignored []string

	// CLILogLevel and CLILogFormat configure denobuild's own logger.
	CLILogLevel  string
	CLILogFormat string
}

// NewConfig checks the cross-field invariants the command line cannot express.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.WorkingDir == "" || !filepath.IsAbs(cfg.WorkingDir) {
		return nil, errors.New("WorkingDir must be an absolute path")
	}
	switch cfg.Analyze {
	case AnalyzeOff, AnalyzeOn, AnalyzeVerbose:
	default:
		return nil, fmt.Errorf("invalid analyze mode %q", cfg.Analyze)
	}
	switch cfg.NodeModulesDir {
	case "", "none", "manual", "auto":
	default:
		return nil, fmt.Errorf("invalid node-modules-dir %q", cfg.NodeModulesDir)
	}
	if cfg.Outfile != "" && cfg.Outdir != "" {
		return nil, errors.New(`cannot use both "--outfile" and "--outdir"`)
	}
	if cfg.Outfile != "" && len(cfg.EntryPoints) > 1 {
		return nil, errors.New(`must use "--outdir" when there are multiple entry points`)
	}
	return &cfg, nil
}
