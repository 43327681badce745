// Package flagrules checks relationships between command-line options after
// they have all been parsed.
package flagrules

import (
	"fmt"
)

// Kind is the relationship a Rule enforces.
type Kind int

const (
	// Depends requires Other whenever Flag is given.
	Depends Kind = iota + 1
	// Conflicts forbids Flag and Other together.
	Conflicts
)

// Rule relates two options, named without leading dashes.
type Rule struct {
	Kind  Kind
	Flag  string
	Other string
}

// Error reports a violated Rule.
type Error struct {
	Rule Rule
}

func (e *Error) Error() string {
	switch e.Rule.Kind {
	case Depends:
		return fmt.Sprintf("Option %q depends on option %q.", "--"+e.Rule.Flag, "--"+e.Rule.Other)
	case Conflicts:
		return fmt.Sprintf("Option %q conflicts with option %q.", "--"+e.Rule.Flag, "--"+e.Rule.Other)
	}
	return fmt.Sprintf("flagrules: unknown rule kind %d", e.Rule.Kind)
}

// Table is an ordered list of rules.
type Table []Rule

// Check returns an *Error for the first rule violated, in table order.
// changed reports whether an option was given on the command line.
func (t Table) Check(changed func(name string) bool) error {
	for _, r := range t {
		if !changed(r.Flag) {
			continue
		}
		switch r.Kind {
		case Depends:
			if !changed(r.Other) {
				return &Error{Rule: r}
			}
		case Conflicts:
			if changed(r.Other) {
				return &Error{Rule: r}
			}
		}
	}
	return nil
}

// Names returns every option name the table mentions.
func (t Table) Names() []string {
	seen := map[string]bool{}
	var names []string
	for _, r := range t {
		for _, n := range []string{r.Flag, r.Other} {
			if !seen[n] {
				seen[n] = true
				names = append(names, n)
			}
		}
	}
	return names
}

// Build is the rule set of the build command.
var Build = Table{
	{Kind: Conflicts, Flag: "tsconfig", Other: "tsconfig-raw"},
	{Kind: Conflicts, Flag: "config", Other: "no-config"},
	{Kind: Depends, Flag: "splitting", Other: "format"},
	{Kind: Depends, Flag: "mangle-quoted", Other: "mangle-props"},
	{Kind: Depends, Flag: "reserve-props", Other: "mangle-props"},
	{Kind: Depends, Flag: "source-root", Other: "sourcemap"},
	{Kind: Depends, Flag: "sourcefile", Other: "sourcemap"},
	{Kind: Depends, Flag: "sources-content", Other: "sourcemap"},
	{Kind: Depends, Flag: "certfile", Other: "keyfile"},
	{Kind: Depends, Flag: "keyfile", Other: "certfile"},
}
