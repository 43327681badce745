package optparse

import (
	"fmt"
	"io"

	"github.com/hashicorp/hcl/v2"
)

// Type parses the raw text described by a Context into a T.
type Type[T any] interface {
	Parse(c Context) (T, error)
}

// TypeFunc adapts an ordinary function to the Type interface.
type TypeFunc[T any] func(c Context) (T, error)

// Parse calls f(c).
func (f TypeFunc[T]) Parse(c Context) (T, error) {
	return f(c)
}

// Context describes a piece of raw text being parsed.
type Context struct {
	// Label is the kind of input, e.g. "Option".
	Label string
	// Name identifies the text in messages, e.g. "--loader" or "key of --loader".
	Name string
	// Type is the name of the expected type, shown in type errors.
	Type string
	// Value is the text to parse.
	Value string

	// Source is the complete flag value that Value was cut from. Offset and
	// Length locate Value inside Source. They are zero for a top-level value.
	Source string
	Offset int
	Length int
	// Flag names the option the whole Source belongs to.
	Flag string
}

// NewContext returns the Context for a complete flag value.
func NewContext(flag, typeName, value string) Context {
	return Context{
		Label:  "Option",
		Name:   flag,
		Type:   typeName,
		Value:  value,
		Source: value,
		Length: len(value),
		Flag:   flag,
	}
}

// Sub returns a Context for a part of c.Value. offset and length locate the
// raw (still escaped) part inside c.Value; value is the text to parse. The
// part has no type name of its own; the type parsing it names itself.
func (c Context) Sub(name, value string, offset, length int) Context {
	sub := c
	sub.Name = name
	sub.Type = ""
	sub.Value = value
	sub.Source = c.source()
	sub.Offset = c.Offset + offset
	sub.Length = length
	return sub
}

func (c Context) source() string {
	if c.Source == "" && c.Offset == 0 {
		return c.Value
	}
	return c.Source
}

// Errorf builds a ValidationError whose subject is the byte range [start, end)
// of c.Value.
func (c Context) Errorf(summary string, start, end int, format string, args ...any) *ValidationError {
	limit := c.Length
	if limit == 0 && c.Offset == 0 {
		limit = len(c.Value)
	}
	start, end = clamp(start, limit), clamp(end, limit)
	return &ValidationError{
		Summary: summary,
		Detail:  fmt.Sprintf(format, args...),
		Flag:    c.Flag,
		Source:  c.source(),
		Start:   c.Offset + start,
		End:     c.Offset + end,
	}
}

// Fail wraps an arbitrary parse failure into a ValidationError covering the
// whole of c.Value.
func (c Context) Fail(summary string, err error) *ValidationError {
	if verr, ok := err.(*ValidationError); ok {
		return verr
	}
	return c.Errorf(summary, 0, len(c.Value), "%s %q is invalid: %s", c.Label, c.Name, err)
}

func (c Context) typeError(expected string) *ValidationError {
	return c.Errorf("Invalid value", 0, len(c.Value),
		"%s %q must be of type %q, but got %q.", c.Label, c.Name, expected, c.Value)
}

func clamp(n, limit int) int {
	if n < 0 {
		return 0
	}
	if n > limit {
		return limit
	}
	return n
}

// ValidationError reports a value that failed to parse. Start and End locate
// the offending text inside Source, the complete value of Flag.
type ValidationError struct {
	Summary string
	Detail  string
	Flag    string
	Source  string
	Start   int
	End     int
}

func (e *ValidationError) Error() string {
	return e.Detail
}

// Diagnostic converts the error into an hcl diagnostic whose subject is the
// offending text. The diagnostic's filename is the flag name.
func (e *ValidationError) Diagnostic() *hcl.Diagnostic {
	diag := &hcl.Diagnostic{
		Severity: hcl.DiagError,
		Summary:  e.Summary,
		Detail:   e.Detail,
	}
	if e.Flag != "" && e.Source != "" {
		diag.Subject = &hcl.Range{
			Filename: e.Flag,
			Start:    posAt(e.Source, e.Start),
			End:      posAt(e.Source, e.End),
		}
	}
	return diag
}

// Render writes the error with a snippet of the flag value, highlighting the
// offending range when color is enabled.
func (e *ValidationError) Render(w io.Writer, width uint, color bool) error {
	files := map[string]*hcl.File{}
	if e.Flag != "" {
		files[e.Flag] = &hcl.File{Bytes: []byte(e.Source)}
	}
	return hcl.NewDiagnosticTextWriter(w, files, width, color).WriteDiagnostic(e.Diagnostic())
}

func posAt(src string, offset int) hcl.Pos {
	offset = clamp(offset, len(src))
	pos := hcl.Pos{Line: 1, Column: 1, Byte: offset}
	for _, r := range src[:offset] {
		if r == '\n' {
			pos.Line++
			pos.Column = 1
			continue
		}
		pos.Column++
	}
	return pos
}
