package optparse

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// String accepts any text unchanged.
type String struct{}

func (String) Parse(c Context) (string, error) {
	return c.Value, nil
}

// Boolean accepts "true", "false", "1" and "0".
type Boolean struct{}

func (Boolean) Parse(c Context) (bool, error) {
	switch c.Value {
	case "true", "1":
		return true, nil
	case "false", "0":
		return false, nil
	}
	return false, c.typeError("boolean")
}

// Integer accepts a base-10 integer.
type Integer struct{}

func (Integer) Parse(c Context) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(c.Value))
	if err != nil {
		return 0, c.typeError("integer")
	}
	return n, nil
}

// Regexp accepts a pattern that compiles with the regexp package and returns
// the pattern text.
type Regexp struct{}

func (Regexp) Parse(c Context) (string, error) {
	if _, err := regexp.Compile(c.Value); err != nil {
		return "", c.Errorf("Invalid regular expression", 0, len(c.Value),
			"%s %q must be a valid regular expression: %s", c.Label, c.Name, err)
	}
	return c.Value, nil
}

// Choice is one accepted spelling of an Enum and the value it stands for.
type Choice[T any] struct {
	Name  string
	Value T
}

// Enum accepts exactly one of a closed, ordered set of names. Matching is
// case-sensitive.
type Enum[T any] struct {
	name    string
	choices []Choice[T]
}

// NewEnum returns an Enum over the given choices. It panics on a duplicate
// name, since that is a programming error.
func NewEnum[T any](choices ...Choice[T]) Enum[T] {
	seen := make(map[string]struct{}, len(choices))
	for _, ch := range choices {
		if _, dup := seen[ch.Name]; dup {
			panic(fmt.Sprintf("optparse: duplicate enum choice %q", ch.Name))
		}
		seen[ch.Name] = struct{}{}
	}
	return Enum[T]{choices: choices}
}

// EnumOf returns an Enum whose values are its own names.
func EnumOf(names ...string) Enum[string] {
	choices := make([]Choice[string], len(names))
	for i, name := range names {
		choices[i] = Choice[string]{Name: name, Value: name}
	}
	return NewEnum(choices...)
}

// Named returns a copy of e that calls itself name in errors, whatever the
// Context's type.
func (e Enum[T]) Named(name string) Enum[T] {
	e.name = name
	return e
}

// Values lists the accepted names in declaration order.
func (e Enum[T]) Values() []string {
	names := make([]string, len(e.choices))
	for i, ch := range e.choices {
		names[i] = ch.Name
	}
	return names
}

func (e Enum[T]) Parse(c Context) (T, error) {
	for _, ch := range e.choices {
		if ch.Name == c.Value {
			return ch.Value, nil
		}
	}
	var zero T
	quoted := make([]string, len(e.choices))
	for i, ch := range e.choices {
		quoted[i] = strconv.Quote(ch.Name)
	}
	typeName := e.name
	if typeName == "" {
		typeName = c.Type
	}
	if typeName == "" {
		typeName = "enum"
	}
	return zero, c.Errorf("Invalid value", 0, len(c.Value),
		"%s %q must be of type %q, but got %q. Expected values: %s",
		c.Label, c.Name, typeName, c.Value, strings.Join(quoted, ", "))
}

// List accepts a comma-separated list of Elem values. An empty input yields
// an empty list; an empty item is an error.
type List[T any] struct {
	Elem Type[T]
}

// ListOf returns a List of elem.
func ListOf[T any](elem Type[T]) List[T] {
	return List[T]{Elem: elem}
}

func (l List[T]) Parse(c Context) ([]T, error) {
	rest, off := trimSpace(c.Value, 0)
	var items []T
	for index := 0; rest != ""; index++ {
		end := indexUnescaped(rest, ',')
		raw := rest
		if end >= 0 {
			raw = rest[:end]
		}
		text, textOff := trimSpace(raw, off)
		if text == "" {
			return nil, c.Errorf("Empty list item", off, off+len(raw),
				"Item %d of %s %q cannot be empty.", index+1, c.Label, c.Name)
		}
		item, err := l.Elem.Parse(c.Sub(fmt.Sprintf("item %d of %s", index+1, c.Name), unescape(text), textOff, len(text)))
		if err != nil {
			return nil, err
		}
		items = append(items, item)
		if end < 0 {
			break
		}
		rest, off = trimSpace(rest[end+1:], off+end+1)
	}
	return items, nil
}
