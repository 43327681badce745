package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/pflag"
)

var (
	bold   = color.New(color.Bold).SprintFunc()
	italic = color.New(color.Italic).SprintFunc()
)

const examples = `  denobuild main.ts --bundle --outfile=dist/main.js
  denobuild src/app.tsx --bundle --minify --sourcemap --outdir=dist --format=esm --splitting
  denobuild main.ts --bundle --loader=.svg=file,.png=binary --define=DEBUG=false
  denobuild main.ts --config=deno.jsonc --node-modules-dir=manual --analyze=verbose`

// writeHelp prints the usage text with one section per flag group.
func writeHelp(w io.Writer, groups []*group) {
	fmt.Fprintf(w, "\n%s\n\n", bold("denobuild "+Version)+" - bundle deno projects with esbuild")
	fmt.Fprintf(w, "%s\n  denobuild [entry-points...] [flags]\n\n", bold("Usage:"))
	fmt.Fprintf(w, "%s\n%s\n", bold("Examples:"), examples)
	for _, g := range groups {
		lines := flagLines(g.flags)
		if len(lines) == 0 {
			continue
		}
		fmt.Fprintf(w, "\n%s\n", bold(g.title+":"))
		for _, l := range lines {
			fmt.Fprintln(w, l)
		}
	}
	fmt.Fprintln(w)
}

func flagLines(fs *pflag.FlagSet) []string {
	type row struct{ left, right string }
	var rows []row
	width := 0
	fs.VisitAll(func(f *pflag.Flag) {
		if f.Hidden {
			return
		}
		left := "--" + f.Name
		switch {
		case f.NoOptDefVal == "true" && f.Value.Type() == "boolean":
		case f.NoOptDefVal != "":
			left += "[=<" + f.Value.Type() + ">]"
		default:
			left += "=<" + f.Value.Type() + ">"
		}
		right := f.Usage
		if f.DefValue != "" {
			right += " " + italic(fmt.Sprintf("(Default: %s)", f.DefValue))
		}
		rows = append(rows, row{left, right})
		width = max(width, len(left))
	})
	lines := make([]string, len(rows))
	for i, r := range rows {
		lines[i] = "  " + r.left + strings.Repeat(" ", width-len(r.left)+2) + r.right
	}
	return lines
}
