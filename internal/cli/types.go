package cli

import (
	"regexp"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/vk/denobuild/internal/optparse"
	"github.com/vk/denobuild/internal/tsconfig"
)

var (
	platforms = optparse.NewEnum(
		optparse.Choice[api.Platform]{Name: "browser", Value: api.PlatformBrowser},
		optparse.Choice[api.Platform]{Name: "node", Value: api.PlatformNode},
		optparse.Choice[api.Platform]{Name: "neutral", Value: api.PlatformNeutral},
	)
	formats = optparse.NewEnum(
		optparse.Choice[api.Format]{Name: "iife", Value: api.FormatIIFE},
		optparse.Choice[api.Format]{Name: "cjs", Value: api.FormatCommonJS},
		optparse.Choice[api.Format]{Name: "esm", Value: api.FormatESModule},
	)
	charsets = optparse.NewEnum(
		optparse.Choice[api.Charset]{Name: "utf8", Value: api.CharsetUTF8},
		optparse.Choice[api.Charset]{Name: "ascii", Value: api.CharsetASCII},
	)
	legalComments = optparse.NewEnum(
		optparse.Choice[api.LegalComments]{Name: "none", Value: api.LegalCommentsNone},
		optparse.Choice[api.LegalComments]{Name: "inline", Value: api.LegalCommentsInline},
		optparse.Choice[api.LegalComments]{Name: "eof", Value: api.LegalCommentsEndOfFile},
		optparse.Choice[api.LegalComments]{Name: "linked", Value: api.LegalCommentsLinked},
		optparse.Choice[api.LegalComments]{Name: "external", Value: api.LegalCommentsExternal},
	)
	packagesModes = optparse.NewEnum(
		optparse.Choice[api.Packages]{Name: "bundle", Value: api.PackagesBundle},
		optparse.Choice[api.Packages]{Name: "external", Value: api.PackagesExternal},
	)
	jsxModes = optparse.NewEnum(
		optparse.Choice[api.JSX]{Name: "transform", Value: api.JSXTransform},
		optparse.Choice[api.JSX]{Name: "preserve", Value: api.JSXPreserve},
		optparse.Choice[api.JSX]{Name: "automatic", Value: api.JSXAutomatic},
	)
	loaders = optparse.NewEnum(
		optparse.Choice[api.Loader]{Name: "base64", Value: api.LoaderBase64},
		optparse.Choice[api.Loader]{Name: "binary", Value: api.LoaderBinary},
		optparse.Choice[api.Loader]{Name: "copy", Value: api.LoaderCopy},
		optparse.Choice[api.Loader]{Name: "css", Value: api.LoaderCSS},
		optparse.Choice[api.Loader]{Name: "dataurl", Value: api.LoaderDataURL},
		optparse.Choice[api.Loader]{Name: "empty", Value: api.LoaderEmpty},
		optparse.Choice[api.Loader]{Name: "file", Value: api.LoaderFile},
		optparse.Choice[api.Loader]{Name: "global-css", Value: api.LoaderGlobalCSS},
		optparse.Choice[api.Loader]{Name: "js", Value: api.LoaderJS},
		optparse.Choice[api.Loader]{Name: "json", Value: api.LoaderJSON},
		optparse.Choice[api.Loader]{Name: "jsx", Value: api.LoaderJSX},
		optparse.Choice[api.Loader]{Name: "local-css", Value: api.LoaderLocalCSS},
		optparse.Choice[api.Loader]{Name: "text", Value: api.LoaderText},
		optparse.Choice[api.Loader]{Name: "ts", Value: api.LoaderTS},
		optparse.Choice[api.Loader]{Name: "tsx", Value: api.LoaderTSX},
	)
	sourcemaps = optparse.NewEnum(
		optparse.Choice[api.SourceMap]{Name: "linked", Value: api.SourceMapLinked},
		optparse.Choice[api.SourceMap]{Name: "external", Value: api.SourceMapExternal},
		optparse.Choice[api.SourceMap]{Name: "inline", Value: api.SourceMapInline},
		optparse.Choice[api.SourceMap]{Name: "both", Value: api.SourceMapInlineAndExternal},
	)
	logLevels = optparse.NewEnum(
		optparse.Choice[api.LogLevel]{Name: "verbose", Value: api.LogLevelVerbose},
		optparse.Choice[api.LogLevel]{Name: "debug", Value: api.LogLevelDebug},
		optparse.Choice[api.LogLevel]{Name: "info", Value: api.LogLevelInfo},
		optparse.Choice[api.LogLevel]{Name: "warning", Value: api.LogLevelWarning},
		optparse.Choice[api.LogLevel]{Name: "error", Value: api.LogLevelError},
		optparse.Choice[api.LogLevel]{Name: "silent", Value: api.LogLevelSilent},
	)
	drops = optparse.NewEnum(
		optparse.Choice[api.Drop]{Name: "console", Value: api.DropConsole},
		optparse.Choice[api.Drop]{Name: "debugger", Value: api.DropDebugger},
	)

	nodeModulesDirs = optparse.EnumOf("none", "manual", "auto")
	outputKinds     = optparse.EnumOf("css", "js")
	analyzeModes    = optparse.EnumOf("true", "verbose")
	cliLogLevels    = optparse.EnumOf("debug", "info", "warn", "error")
	cliLogFormats   = optparse.EnumOf("text", "json")

	// logMessageIDs are the message identifiers esbuild accepts in
	// --log-override.
	logMessageIDs = optparse.EnumOf(
		// JS
		"assert-to-with", "assert-type-json", "assign-to-constant",
		"assign-to-define", "assign-to-import", "call-import-namespace",
		"class-name-will-throw", "commonjs-variable-in-esm", "delete-super-property",
		"direct-eval", "duplicate-case", "duplicate-class-member",
		"duplicate-object-key", "empty-import-meta", "equals-nan",
		"equals-negative-zero", "equals-new-object", "html-comment-in-js",
		"impossible-typeof", "indirect-require", "private-name-will-throw",
		"semicolon-after-return", "suspicious-boolean-not", "suspicious-define",
		"suspicious-logical-operator", "suspicious-nullish-coalescing", "this-is-undefined-in-esm",
		"unsupported-dynamic-import", "unsupported-jsx-comment", "unsupported-regexp",
		"unsupported-require-call",
		// CSS
		"css-syntax-error", "invalid-@charset", "invalid-@import",
		"invalid-@layer", "invalid-calc", "js-comment-in-css",
		"undefined-composes-from", "unsupported-@charset", "unsupported-@namespace",
		"unsupported-css-property", "unsupported-css-nesting",
		// Bundler
		"ambiguous-reexport", "different-path-case", "empty-glob",
		"ignored-bare-import", "ignored-dynamic-import", "import-is-undefined",
		"require-resolve-not-external",
		// Source maps
		"invalid-source-mappings", "sections-in-source-map", "missing-source-map",
		"unsupported-source-map-comment",
		// Resolver
		"package.json", "tsconfig.json",
	)
)

var (
	stringRecord     = optparse.NewRecord[string, string](optparse.String{}, optparse.String{})
	outputKindRecord = optparse.NewRecord[string, string](outputKinds.Named("output-kind"), optparse.String{})
	loaderRecord     = optparse.NewRecord[string, api.Loader](optparse.String{}, loaders.Named("loader"))
	supportedRecord  = optparse.NewRecord[string, bool](optparse.String{}, optparse.Boolean{})
	logOverride      = optparse.NewRecord[string, api.LogLevel](logMessageIDs.Named("log-message-id"), logLevels.Named("log-level"))
	stringList       = optparse.ListOf[string](optparse.String{})
)

var dropSet = optparse.TypeFunc[api.Drop](func(c optparse.Context) (api.Drop, error) {
	items, err := optparse.ListOf[api.Drop](drops.Named("drop")).Parse(c)
	if err != nil {
		return 0, err
	}
	var d api.Drop
	for _, item := range items {
		d |= item
	}
	return d, nil
})

var tsconfigRaw = optparse.TypeFunc[*tsconfig.Config](func(c optparse.Context) (*tsconfig.Config, error) {
	cfg, err := tsconfig.Parse(c.Value)
	if err != nil {
		return nil, c.Fail("Invalid tsconfig", err)
	}
	return cfg, nil
})

// buildTarget is the parsed --target list.
type buildTarget struct {
	Target  api.Target
	Engines []api.Engine
}

type targetItem struct {
	es     api.Target
	engine *api.Engine
}

var esVersions = optparse.NewEnum(
	optparse.Choice[api.Target]{Name: "esnext", Value: api.ESNext},
	optparse.Choice[api.Target]{Name: "es5", Value: api.ES5},
	optparse.Choice[api.Target]{Name: "es6", Value: api.ES2015},
	optparse.Choice[api.Target]{Name: "es2015", Value: api.ES2015},
	optparse.Choice[api.Target]{Name: "es2016", Value: api.ES2016},
	optparse.Choice[api.Target]{Name: "es2017", Value: api.ES2017},
	optparse.Choice[api.Target]{Name: "es2018", Value: api.ES2018},
	optparse.Choice[api.Target]{Name: "es2019", Value: api.ES2019},
	optparse.Choice[api.Target]{Name: "es2020", Value: api.ES2020},
	optparse.Choice[api.Target]{Name: "es2021", Value: api.ES2021},
	optparse.Choice[api.Target]{Name: "es2022", Value: api.ES2022},
	optparse.Choice[api.Target]{Name: "es2023", Value: api.ES2023},
	optparse.Choice[api.Target]{Name: "es2024", Value: api.ES2024},
)

var engines = []struct {
	prefix string
	name   api.EngineName
}{
	{"chrome", api.EngineChrome},
	{"deno", api.EngineDeno},
	{"edge", api.EngineEdge},
	{"firefox", api.EngineFirefox},
	{"hermes", api.EngineHermes},
	{"ie", api.EngineIE},
	{"ios", api.EngineIOS},
	{"node", api.EngineNode},
	{"opera", api.EngineOpera},
	{"rhino", api.EngineRhino},
	{"safari", api.EngineSafari},
}

var engineVersion = regexp.MustCompile(`^\d+(\.\d+){0,2}$`)

var targetItemType = optparse.TypeFunc[targetItem](func(c optparse.Context) (targetItem, error) {
	if strings.HasPrefix(c.Value, "es") {
		es, err := esVersions.Named("es-version").Parse(c)
		return targetItem{es: es}, err
	}
	for _, e := range engines {
		version, ok := strings.CutPrefix(c.Value, e.prefix)
		if ok && engineVersion.MatchString(version) {
			return targetItem{engine: &api.Engine{Name: e.name, Version: version}}, nil
		}
	}
	return targetItem{}, c.Errorf("Invalid target", 0, len(c.Value),
		`%s %q must be an ES version such as "es2020" or an engine with a version such as "chrome58", but got %q.`,
		c.Label, c.Name, c.Value)
})

var targets = optparse.TypeFunc[buildTarget](func(c optparse.Context) (buildTarget, error) {
	items, err := optparse.ListOf[targetItem](targetItemType).Parse(c)
	if err != nil {
		return buildTarget{}, err
	}
	bt := buildTarget{Target: api.ESNext}
	seenES := false
	for _, item := range items {
		if item.engine != nil {
			bt.Engines = append(bt.Engines, *item.engine)
			continue
		}
		if seenES {
			return buildTarget{}, c.Errorf("Invalid target", 0, len(c.Value),
				"%s %q can name at most one ES version.", c.Label, c.Name)
		}
		seenES = true
		bt.Target = item.es
	}
	return bt, nil
})
