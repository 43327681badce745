package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/vk/denobuild/internal/app"
	"github.com/vk/denobuild/internal/flagrules"
	"github.com/vk/denobuild/internal/optparse"
)

// Version is set at link time.
var Version = "dev"

// EnvPrefix prefixes the environment variables read for denobuild's own
// settings, e.g. DENOBUILD_LOG_LEVEL.
const EnvPrefix = "DENOBUILD"

// Exit codes.
const (
	ExitBuildFailed = 1
	ExitUsage       = 2
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

func usageError(err error) *ExitError {
	return &ExitError{Code: ExitUsage, Message: err.Error(), Err: err}
}

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	dir, err := os.Getwd()
	if err != nil {
		return nil, false, &ExitError{Code: ExitBuildFailed, Message: err.Error(), Err: err}
	}
	return parse(args, output, dir)
}

func parse(args []string, output io.Writer, dir string) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	o := newOptions()

	var cfg *app.Config
	cmd := &cobra.Command{
		Use:           "denobuild [entry-points...]",
		Short:         "Bundle deno projects with esbuild",
		Version:       Version,
		Args:          cobra.ArbitraryArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				slog.Debug("No entry points provided, printing usage and exiting.")
				writeHelp(cmd.OutOrStdout(), o.groups)
				return nil
			}
			c, err := o.toConfig(cmd.Flags(), args, dir)
			if err != nil {
				return err
			}
			cfg = c
			return nil
		},
	}
	cmd.SetOut(output)
	cmd.SetErr(output)
	cmd.SetArgs(args)
	cmd.SetHelpFunc(func(c *cobra.Command, _ []string) { writeHelp(c.OutOrStdout(), o.groups) })
	for _, g := range o.groups {
		cmd.Flags().AddFlagSet(g.flags)
	}

	if err := cmd.Execute(); err != nil {
		// pflag flattens Set errors into strings; prefer the typed error.
		if verr := o.failures.Err(); verr != nil {
			return nil, false, usageError(verr)
		}
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			return nil, false, exitErr
		}
		return nil, false, usageError(err)
	}
	if cfg == nil {
		return nil, true, nil
	}
	slog.Debug("CLI parser finished successfully.", "entry_points", cfg.EntryPoints)
	return cfg, false, nil
}

// toConfig checks option relationships and converts the parsed values.
func (o *options) toConfig(flags *pflag.FlagSet, args []string, dir string) (*app.Config, error) {
	if err := flagrules.Build.Check(flags.Changed); err != nil {
		return nil, usageError(err)
	}
	logLevel, logFormat, err := cliLogSettings(flags)
	if err != nil {
		return nil, usageError(err)
	}

	var ignored []string
	for _, name := range ignoredFlags {
		if flags.Changed(name) {
			ignored = append(ignored, name)
		}
	}

	target := o.target.Get()
	cfg := app.Config{
		EntryPoints: args,
		WorkingDir:  dir,

		Bundle:      o.bundle.Get(),
		Minify:      o.minify.Get(),
		Platform:    o.platform.Get(),
		Tsconfig:    o.tsconfig.Get(),
		TsconfigRaw: o.tsconfigRaw.Get(),

		ConfigPath: o.config.Get(),
		NoConfig:   o.noConfig.Get(),
		ImportMap:  o.importMap.Get(),
		LockPath:   o.lock.Get(),

		Loader: o.loader.Get(),

		Banner:        o.banner.Get(),
		Charset:       o.charset.Get(),
		Footer:        o.footer.Get(),
		Format:        o.format.Get(),
		GlobalName:    o.globalName.Get(),
		LegalComments: o.legalComments.Get(),
		LineLimit:     o.lineLimit.Get(),
		Splitting:     o.splitting.Get(),

		AllowOverwrite: o.allowOverwrite.Get(),
		AssetNames:     o.assetNames.Get(),
		ChunkNames:     o.chunkNames.Get(),
		EntryNames:     o.entryNames.Get(),
		OutExtension:   o.outExtension.Get(),
		Outbase:        o.outbase.Get(),
		Outdir:         o.outdir.Get(),
		Outfile:        o.outfile.Get(),
		PublicPath:     o.publicPath.Get(),

		Alias:             o.alias.Get(),
		Conditions:        o.conditions.Get(),
		External:          o.external.Get(),
		MainFields:        o.mainFields.Get(),
		NodePaths:         o.nodePaths.Get(),
		Packages:          o.packages.Get(),
		PreserveSymlinks:  o.preserveSymlinks.Get(),
		ResolveExtensions: o.resolveExtensions.Get(),

		JSX:             o.jsx.Get(),
		JSXDev:          o.jsxDev.Get(),
		JSXFactory:      o.jsxFactory.Get(),
		JSXFragment:     o.jsxFragment.Get(),
		JSXImportSource: o.jsxImportSource.Get(),
		JSXSideEffects:  o.jsxSideEffects.Get(),
		Supported:       o.supported.Get(),
		Target:          target.Target,
		Engines:         target.Engines,

		Define:            o.define.Get(),
		Drop:              o.drop.Get(),
		DropLabels:        o.dropLabels.Get(),
		IgnoreAnnotations: o.ignoreAnnotations.Get(),
		Inject:            o.inject.Get(),
		KeepNames:         o.keepNames.Get(),
		MangleCache:       o.mangleCache.Get(),
		MangleProps:       o.mangleProps.Get(),
		MangleQuoted:      o.mangleQuoted.Get(),
		MinifyWhitespace:  o.minifyWhitespace.Get(),
		MinifyIdentifiers: o.minifyIdentifiers.Get(),
		MinifySyntax:      o.minifySyntax.Get(),
		Pure:              o.pure.Get(),
		ReserveProps:      o.reserveProps.Get(),

		SourceRoot: o.sourceRoot.Get(),
		Sourcemap:  o.sourcemap.Get(),

		Analyze:  o.analyze.Get(),
		Metafile: o.metafile.Get(),

		LogLevel:    o.logLevel.Get(),
		LogLimit:    o.logLimit.Get(),
		LogOverride: o.logOverride.Get(),

		Ignored:      ignored,
		CLILogLevel:  logLevel,
		CLILogFormat: logFormat,
	}
	// Left empty when not given so the config file can decide.
	if o.nodeModulesDir.IsSet() {
		cfg.NodeModulesDir = o.nodeModulesDir.Get()
	}
	if o.treeShaking.IsSet() {
		cfg.TreeShaking = toggle(o.treeShaking.Get(), api.TreeShakingTrue, api.TreeShakingFalse)
	}
	if o.sourcesContent.IsSet() {
		cfg.SourcesContent = toggle(o.sourcesContent.Get(), api.SourcesContentInclude, api.SourcesContentExclude)
	}
	if o.color.IsSet() {
		cfg.Color = toggle(o.color.Get(), api.ColorAlways, api.ColorNever)
	}

	out, err := app.NewConfig(cfg)
	if err != nil {
		return nil, usageError(err)
	}
	return out, nil
}

func toggle[T any](on bool, yes, no T) T {
	if on {
		return yes
	}
	return no
}

// cliLogSettings reads denobuild's own log settings. A flag wins over the
// environment, which wins over the default.
func cliLogSettings(flags *pflag.FlagSet) (level, format string, err error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlag("log-level", flags.Lookup("cli-log-level")); err != nil {
		return "", "", err
	}
	if err := v.BindPFlag("log-format", flags.Lookup("cli-log-format")); err != nil {
		return "", "", err
	}

	level = v.GetString("log-level")
	if _, err := cliLogLevels.Parse(envContext("LOG_LEVEL", "level", level)); err != nil {
		return "", "", err
	}
	format = v.GetString("log-format")
	if _, err := cliLogFormats.Parse(envContext("LOG_FORMAT", "format", format)); err != nil {
		return "", "", err
	}
	return level, format, nil
}

func envContext(key, typeName, value string) optparse.Context {
	c := optparse.NewContext(EnvPrefix+"_"+key, typeName, value)
	c.Label = "Environment variable"
	return c
}

// FormatError renders err for the terminal. Option value errors get a
// snippet of the value with the offending part marked.
func FormatError(w io.Writer, err error, colorize bool) {
	var verr *optparse.ValidationError
	if errors.As(err, &verr) {
		if rerr := verr.Render(w, 78, colorize); rerr == nil {
			return
		}
	}
	fmt.Fprintln(w, "error:", err)
}
