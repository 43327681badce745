/*
Package optparse turns raw command-line strings into typed, validated values.

Every validator implements Type[T]: it receives a Context describing the raw
text (which option it came from, what it is called in messages) and returns
either a T or a *ValidationError. Scalar types (String, Boolean, Integer,
Regexp, Enum) are combined by List and Record, so a value is reported the same
way whether it is given alone or as part of a "K=V" pair:

	loaders := optparse.NewRecord[string](optparse.String{}, loaderEnum)
	m, err := loaders.Parse(optparse.Context{Label: "Option", Name: "--loader", Value: ".svg=file"})

Record and List values use "," and "=" as separators. A backslash escapes
either separator (and itself), so "\," is a literal comma inside a value.

Value adapts any Type to pflag.Value for use with cobra commands.
*/
package optparse
