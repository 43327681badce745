package cli

import (
	"fmt"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/spf13/pflag"
	"github.com/vk/denobuild/internal/flagrules"
	"github.com/vk/denobuild/internal/optparse"
	"github.com/vk/denobuild/internal/tsconfig"
)

// group is a titled section of the help output.
type group struct {
	title string
	flags *pflag.FlagSet
}

type registrar struct {
	failures *optparse.Failures
	groups   []*group
	current  *group
}

func (r *registrar) group(title string) {
	fs := pflag.NewFlagSet(title, pflag.ContinueOnError)
	fs.SortFlags = false
	r.current = &group{title: title, flags: fs}
	r.groups = append(r.groups, r.current)
}

func define[T any](r *registrar, name, typeName string, typ optparse.Type[T], def, usage string) *optparse.Value[T] {
	v := optparse.NewValue(name, typeName, typ, def, r.failures)
	r.current.flags.Var(v, name, usage)
	return v
}

// optional lets name be given without a value, meaning noOpt.
func optional[T any](r *registrar, v *optparse.Value[T], name, noOpt string) *optparse.Value[T] {
	r.current.flags.Lookup(name).NoOptDefVal = noOpt
	return v
}

func (r *registrar) boolean(name, usage string) *optparse.Value[bool] {
	return optional(r, define[bool](r, name, "boolean", optparse.Boolean{}, "", usage), name, "true")
}

func (r *registrar) str(name, usage string) *optparse.Value[string] {
	return define[string](r, name, "string", optparse.String{}, "", usage)
}

func (r *registrar) list(name, usage string) *optparse.Value[[]string] {
	return define[[]string](r, name, "string[]", stringList, "", usage)
}

// options holds every flag of the build command.
type options struct {
	failures *optparse.Failures
	groups   []*group

	// General
	bundle      *optparse.Value[bool]
	minify      *optparse.Value[bool]
	platform    *optparse.Value[api.Platform]
	serve       *optparse.Value[bool]
	tsconfig    *optparse.Value[string]
	tsconfigRaw *optparse.Value[*tsconfig.Config]
	watch       *optparse.Value[bool]

	// Deno
	config         *optparse.Value[string]
	noConfig       *optparse.Value[bool]
	importMap      *optparse.Value[string]
	lock           *optparse.Value[string]
	nodeModulesDir *optparse.Value[string]

	// Input
	loader *optparse.Value[map[string]api.Loader]

	// Output contents
	banner        *optparse.Value[map[string]string]
	charset       *optparse.Value[api.Charset]
	footer        *optparse.Value[map[string]string]
	format        *optparse.Value[api.Format]
	globalName    *optparse.Value[string]
	legalComments *optparse.Value[api.LegalComments]
	lineLimit     *optparse.Value[int]
	splitting     *optparse.Value[bool]

	// Output location
	allowOverwrite *optparse.Value[bool]
	assetNames     *optparse.Value[string]
	chunkNames     *optparse.Value[string]
	entryNames     *optparse.Value[string]
	outExtension   *optparse.Value[map[string]string]
	outbase        *optparse.Value[string]
	outdir         *optparse.Value[string]
	outfile        *optparse.Value[string]
	publicPath     *optparse.Value[string]

	// Path resolution
	alias             *optparse.Value[map[string]string]
	conditions        *optparse.Value[[]string]
	external          *optparse.Value[[]string]
	mainFields        *optparse.Value[[]string]
	nodePaths         *optparse.Value[[]string]
	packages          *optparse.Value[api.Packages]
	preserveSymlinks  *optparse.Value[bool]
	resolveExtensions *optparse.Value[[]string]

	// Transformation
	jsx             *optparse.Value[api.JSX]
	jsxDev          *optparse.Value[bool]
	jsxFactory      *optparse.Value[string]
	jsxFragment     *optparse.Value[string]
	jsxImportSource *optparse.Value[string]
	jsxSideEffects  *optparse.Value[bool]
	supported       *optparse.Value[map[string]bool]
	target          *optparse.Value[buildTarget]

	// Optimization
	define            *optparse.Value[map[string]string]
	drop              *optparse.Value[api.Drop]
	dropLabels        *optparse.Value[[]string]
	ignoreAnnotations *optparse.Value[bool]
	inject            *optparse.Value[[]string]
	keepNames         *optparse.Value[bool]
	mangleCache       *optparse.Value[string]
	mangleProps       *optparse.Value[string]
	mangleQuoted      *optparse.Value[bool]
	minifyWhitespace  *optparse.Value[bool]
	minifyIdentifiers *optparse.Value[bool]
	minifySyntax      *optparse.Value[bool]
	pure              *optparse.Value[[]string]
	reserveProps      *optparse.Value[string]
	treeShaking       *optparse.Value[bool]

	// Source maps
	sourceRoot     *optparse.Value[string]
	sourcefile     *optparse.Value[string]
	sourcemap      *optparse.Value[api.SourceMap]
	sourcesContent *optparse.Value[bool]

	// Build metadata
	analyze  *optparse.Value[string]
	metafile *optparse.Value[string]

	// Logging
	color       *optparse.Value[bool]
	logLevel    *optparse.Value[api.LogLevel]
	logLimit    *optparse.Value[int]
	logOverride *optparse.Value[map[string]api.LogLevel]

	// Serving
	certfile      *optparse.Value[string]
	keyfile       *optparse.Value[string]
	serveFallback *optparse.Value[string]
	servedir      *optparse.Value[string]

	// denobuild itself
	cliLogLevel  *optparse.Value[string]
	cliLogFormat *optparse.Value[string]
}

// ignoredFlags are accepted for compatibility but have no effect.
var ignoredFlags = []string{"watch", "serve", "servedir", "serve-fallback", "certfile", "keyfile", "sourcefile"}

func newOptions() *options {
	r := &registrar{failures: &optparse.Failures{}}
	o := &options{failures: r.failures}

	r.group("General")
	o.bundle = r.boolean("bundle", "Bundle all dependencies into the output files")
	o.minify = r.boolean("minify", "Minify the output (sets all --minify-* flags)")
	o.platform = define[api.Platform](r, "platform", "platform", platforms, "browser", "Platform target")
	o.serve = r.boolean("serve", "Start a local HTTP server on this host:port for outputs")
	o.tsconfig = r.str("tsconfig", "Use this tsconfig.json file instead of other ones")
	o.tsconfigRaw = define[*tsconfig.Config](r, "tsconfig-raw", "tsconfig", tsconfigRaw, "", "Override all tsconfig.json files with this string")
	o.watch = r.boolean("watch", "Watch mode: rebuild on file system changes")

	r.group("Deno")
	o.config = r.str("config", "The config file (deno.json or deno.jsonc) to use")
	o.noConfig = r.boolean("no-config", "Do not automatically load a deno config file")
	o.importMap = r.str("import-map", "The import map file or URL to use")
	o.lock = r.str("lock", "The lock file to check remote modules against")
	o.nodeModulesDir = define[string](r, "node-modules-dir", "node-modules-dir", nodeModulesDirs, "none", "How npm: specifiers are resolved")

	r.group("Input")
	o.loader = define[map[string]api.Loader](r, "loader", "ext=loader,...", loaderRecord, "", "Use loader V to load file extension K")

	r.group("Output contents")
	o.banner = define[map[string]string](r, "banner", "css|js=text,...", outputKindRecord, "", "Text to be prepended to each output file of type K")
	o.charset = define[api.Charset](r, "charset", "charset", charsets, "ascii", "Do not escape UTF-8 code points with utf8")
	o.footer = define[map[string]string](r, "footer", "css|js=text,...", outputKindRecord, "", "Text to be appended to each output file of type K")
	o.format = define[api.Format](r, "format", "format", formats, "", "Output format (default esm when bundling for node, iife otherwise)")
	o.globalName = r.str("global-name", "The name of the global for the IIFE format")
	o.legalComments = define[api.LegalComments](r, "legal-comments", "legal-comments", legalComments, "", "Where to place legal comments")
	o.lineLimit = define[int](r, "line-limit", "integer", optparse.Integer{}, "", "Lines longer than this will be wrapped")
	o.splitting = r.boolean("splitting", "Enable code splitting (currently only for esm)")

	r.group("Output location")
	o.allowOverwrite = r.boolean("allow-overwrite", "Allow output files to overwrite input files")
	o.assetNames = define[string](r, "asset-names", "string", optparse.String{}, "[name]-[hash]", "Path template to use for asset files")
	o.chunkNames = define[string](r, "chunk-names", "string", optparse.String{}, "[name]-[hash]", "Path template to use for code splitting chunks")
	o.entryNames = r.str("entry-names", "Path template to use for entry point output paths")
	o.outExtension = define[map[string]string](r, "out-extension", "ext=ext,...", stringRecord, "", "Use a custom output extension instead of js or css")
	o.outbase = r.str("outbase", "The base path used to determine entry point output paths")
	o.outdir = r.str("outdir", "The output directory (for multiple entry points)")
	o.outfile = r.str("outfile", "The output file (for one entry point)")
	o.publicPath = r.str("public-path", "Set the base URL for the file loader")

	r.group("Path resolution")
	o.alias = define[map[string]string](r, "alias", "pkg=path,...", stringRecord, "", "Substitute package K with package V while bundling")
	o.conditions = r.list("conditions", "Use these conditions when resolving package exports")
	o.external = r.list("external", "Exclude modules from the bundle (can use * wildcards)")
	o.mainFields = r.list("main-fields", "Override the main file order in package.json")
	o.nodePaths = r.list("node-paths", "Directories to search for bare imports")
	o.packages = define[api.Packages](r, "packages", "packages", packagesModes, "", "Set to external to avoid bundling any package")
	o.preserveSymlinks = r.boolean("preserve-symlinks", "Disable symlink resolution for module lookup")
	o.resolveExtensions = define[[]string](r, "resolve-extensions", "string[]", stringList, ".tsx,.ts,.jsx,.js,.css,.json", "A comma-separated list of implicit extensions")

	r.group("Transformation")
	o.jsx = define[api.JSX](r, "jsx", "jsx", jsxModes, "transform", "Set to automatic to use the React JSX transform")
	o.jsxDev = r.boolean("jsx-dev", "Use React's automatic runtime in development mode")
	o.jsxFactory = r.str("jsx-factory", "What to use for JSX instead of React.createElement")
	o.jsxFragment = r.str("jsx-fragment", "What to use for JSX instead of React.Fragment")
	o.jsxImportSource = r.str("jsx-import-source", "Override the package name for the automatic runtime")
	o.jsxSideEffects = r.boolean("jsx-side-effects", "Do not remove unused JSX expressions")
	o.supported = define[map[string]bool](r, "supported", "feature=bool,...", supportedRecord, "", "Consider syntax K to be supported")
	o.target = define[buildTarget](r, "target", "target[]", targets, "esnext", "Environment target (e.g. es2017, chrome58, node10)")

	r.group("Optimization")
	o.define = define[map[string]string](r, "define", "K=V,...", stringRecord, "", "Substitute K with V while parsing")
	o.drop = define[api.Drop](r, "drop", "console|debugger,...", dropSet, "", "Remove certain constructs")
	o.dropLabels = r.list("drop-labels", "Remove labeled statements with these label names")
	o.ignoreAnnotations = r.boolean("ignore-annotations", "Enable this to work with packages that have incorrect tree-shaking annotations")
	o.inject = r.list("inject", "Import the files into all input files")
	o.keepNames = r.boolean("keep-names", "Preserve name on functions and classes")
	o.mangleCache = r.str("mangle-cache", "Path or URL of a JSON file to use as a mangle cache")
	o.mangleProps = define[string](r, "mangle-props", "regexp", optparse.Regexp{}, "", "Rename all properties matching a regular expression")
	o.mangleQuoted = r.boolean("mangle-quoted", "Enable renaming of quoted properties")
	o.minifyWhitespace = r.boolean("minify-whitespace", "Remove whitespace in output files")
	o.minifyIdentifiers = r.boolean("minify-identifiers", "Shorten identifiers in output files")
	o.minifySyntax = r.boolean("minify-syntax", "Use equivalent but shorter syntax")
	o.pure = r.list("pure", "Mark the names as pure function calls")
	o.reserveProps = define[string](r, "reserve-props", "regexp", optparse.Regexp{}, "", "Do not mangle these properties")
	o.treeShaking = optional(r, define[bool](r, "tree-shaking", "boolean", optparse.Boolean{}, "", "Force tree shaking on or off"), "tree-shaking", "true")

	r.group("Source maps")
	o.sourceRoot = r.str("source-root", "Sets the sourceRoot field in generated source maps")
	o.sourcefile = r.str("sourcefile", "Set the source file for the source map (for stdin)")
	o.sourcemap = optional(r, define[api.SourceMap](r, "sourcemap", "sourcemap", sourcemaps, "", "Emit a source map"), "sourcemap", "linked")
	o.sourcesContent = define[bool](r, "sources-content", "boolean", optparse.Boolean{}, "", "Omit sourcesContent in generated source maps with false")

	r.group("Build metadata")
	o.analyze = optional(r, define[string](r, "analyze", "analyze", analyzeModes, "", "Print a report about the contents of the bundle"), "analyze", "true")
	o.metafile = r.str("metafile", "Write metadata about the build to a JSON file")

	r.group("Logging")
	o.color = define[bool](r, "color", "boolean", optparse.Boolean{}, "", "Force use of color terminal escapes")
	o.logLevel = define[api.LogLevel](r, "log-level", "log-level", logLevels, "info", "Disable logging")
	o.logLimit = define[int](r, "log-limit", "integer", optparse.Integer{}, "10", "Maximum message count or 0 to disable")
	o.logOverride = define[map[string]api.LogLevel](r, "log-override", "id=level,...", logOverride, "", "Use a different log level for a specific message")

	r.group("Serving")
	o.certfile = r.str("certfile", "Certificate for serving HTTPS")
	o.keyfile = r.str("keyfile", "Key for serving HTTPS")
	o.serveFallback = r.str("serve-fallback", "Serve this HTML page when the request doesn't match")
	o.servedir = r.str("servedir", "What to serve in addition to generated output files")

	r.group("denobuild")
	o.cliLogLevel = define[string](r, "cli-log-level", "level", cliLogLevels, "warn", "Log level of denobuild itself")
	o.cliLogFormat = define[string](r, "cli-log-format", "format", cliLogFormats, "text", "Log format of denobuild itself")
	r.current.flags.VisitAll(func(f *pflag.Flag) { f.Hidden = true })

	for _, name := range flagrules.Build.Names() {
		if r.lookup(name) == nil {
			panic(fmt.Sprintf("flag rule names unknown option %q", name))
		}
	}

	o.groups = r.groups
	return o
}

func (r *registrar) lookup(name string) *pflag.Flag {
	for _, g := range r.groups {
		if f := g.flags.Lookup(name); f != nil {
			return f
		}
	}
	return nil
}
