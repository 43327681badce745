// Package schema decodes JSON-with-comments documents and checks them against
// closed sets of accepted shapes.
//
// A Shape never rejects what it does not know about: Object only inspects the
// attributes it declares, and every declared attribute is optional. What it
// does inspect must match exactly; there is no type conversion, so "true" is
// not a boolean and null is not a string.
//
// Shapes run on a cty mirror of the document. cty normalizes text to Unicode
// NFC, so the data handed to callers always comes from the plain decoded
// values, never from the mirror.
package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/tidwall/jsonc"
	"github.com/zclconf/go-cty/cty"
)

// Document is a decoded JSON document.
type Document struct {
	// Data holds the values exactly as written: map[string]any, []any,
	// string, json.Number, bool or nil.
	Data any
	// Value mirrors Data for shape checks.
	Value cty.Value
	// JSON is the document with comments and trailing commas removed.
	JSON []byte
}

// Decode strips comments and trailing commas from src and decodes the result.
func Decode(src []byte) (*Document, error) {
	std := jsonc.ToJSON(src)
	dec := json.NewDecoder(bytes.NewReader(std))
	dec.UseNumber()
	var data any
	if err := dec.Decode(&data); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("unexpected data after the top-level value")
	}
	v, err := mirror(data)
	if err != nil {
		return nil, err
	}
	return &Document{Data: data, Value: v, JSON: std}, nil
}

// Check runs shape against the document and returns the error text with its
// attribute path.
func (d *Document) Check(shape Shape) error {
	if err := Check(d.Value, shape); err != nil {
		return errors.New(FormatError(err))
	}
	return nil
}

// Into copies the document into out, matching attribute names to `json`
// tags exactly. It is meant to run after Check.
func (d *Document) Into(out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:   "json",
		Result:    out,
		MatchName: func(key, field string) bool { return key == field },
	})
	if err != nil {
		return err
	}
	return dec.Decode(d.Data)
}

// Load decodes src, checks it against shape and copies it into out.
func Load(src []byte, shape Shape, out any) (*Document, error) {
	doc, err := Decode(src)
	if err != nil {
		return nil, err
	}
	if err := doc.Check(shape); err != nil {
		return nil, err
	}
	if err := doc.Into(out); err != nil {
		return nil, err
	}
	return doc, nil
}

func mirror(data any) (cty.Value, error) {
	switch d := data.(type) {
	case nil:
		return cty.NullVal(cty.DynamicPseudoType), nil
	case bool:
		return cty.BoolVal(d), nil
	case string:
		return cty.StringVal(d), nil
	case json.Number:
		return cty.ParseNumberVal(d.String())
	case []any:
		if len(d) == 0 {
			return cty.EmptyTupleVal, nil
		}
		elems := make([]cty.Value, len(d))
		for i, e := range d {
			v, err := mirror(e)
			if err != nil {
				return cty.NilVal, err
			}
			elems[i] = v
		}
		return cty.TupleVal(elems), nil
	case map[string]any:
		attrs := make(map[string]cty.Value, len(d))
		written := make(map[string]string, len(d))
		for _, k := range slices.Sorted(maps.Keys(d)) {
			name := cty.NormalizeString(k)
			if prev, dup := written[name]; dup {
				return cty.NilVal, fmt.Errorf("keys %q and %q differ only in Unicode normalization", prev, k)
			}
			v, err := mirror(d[k])
			if err != nil {
				return cty.NilVal, err
			}
			attrs[name] = v
			written[name] = k
		}
		return cty.ObjectVal(attrs), nil
	}
	return cty.NilVal, fmt.Errorf("unsupported JSON value %T", data)
}

// Shape checks a value found at path.
type Shape func(v cty.Value, path cty.Path) error

// Check runs shape against the root value.
func Check(v cty.Value, shape Shape) error {
	return shape(v, cty.Path{})
}

// String accepts a string.
func String(v cty.Value, path cty.Path) error {
	if err := present(v, path); err != nil {
		return err
	}
	if !v.Type().Equals(cty.String) {
		return path.NewErrorf("must be a string, got %s", friendly(v))
	}
	return nil
}

// Bool accepts a boolean.
func Bool(v cty.Value, path cty.Path) error {
	if err := present(v, path); err != nil {
		return err
	}
	if !v.Type().Equals(cty.Bool) {
		return path.NewErrorf("must be a boolean, got %s", friendly(v))
	}
	return nil
}

// False accepts only the literal false.
func False(v cty.Value, path cty.Path) error {
	if err := Bool(v, path); err != nil {
		return err
	}
	if v.True() {
		return path.NewErrorf("must be false, got true")
	}
	return nil
}

// OneOf accepts a string equal to one of literals.
func OneOf(literals ...string) Shape {
	return func(v cty.Value, path cty.Path) error {
		if err := String(v, path); err != nil {
			return err
		}
		s := v.AsString()
		for _, lit := range literals {
			if s == lit {
				return nil
			}
		}
		quoted := make([]string, len(literals))
		for i, lit := range literals {
			quoted[i] = strconv.Quote(lit)
		}
		return path.NewErrorf("must be one of %s, got %q", strings.Join(quoted, ", "), s)
	}
}

// ListOf accepts a JSON array whose elements all match elem.
func ListOf(elem Shape) Shape {
	return func(v cty.Value, path cty.Path) error {
		if err := present(v, path); err != nil {
			return err
		}
		ty := v.Type()
		if !ty.IsTupleType() && !ty.IsListType() {
			return path.NewErrorf("must be an array, got %s", friendly(v))
		}
		for it := v.ElementIterator(); it.Next(); {
			key, ev := it.Element()
			if err := elem(ev, path.Index(key)); err != nil {
				return err
			}
		}
		return nil
	}
}

// MapOf accepts a JSON object whose values all match elem, whatever its keys.
func MapOf(elem Shape) Shape {
	return func(v cty.Value, path cty.Path) error {
		if err := object(v, path); err != nil {
			return err
		}
		for it := v.ElementIterator(); it.Next(); {
			key, ev := it.Element()
			if err := elem(ev, path.Index(key)); err != nil {
				return err
			}
		}
		return nil
	}
}

// Fields maps known attribute names to their shapes.
type Fields map[string]Shape

// Object accepts a JSON object. Each attribute listed in fields is optional
// but must match its shape when present; other attributes are ignored.
func Object(fields Fields) Shape {
	return func(v cty.Value, path cty.Path) error {
		if err := present(v, path); err != nil {
			return err
		}
		if !v.Type().IsObjectType() {
			return path.NewErrorf("must be an object, got %s", friendly(v))
		}
		for _, name := range sortedNames(fields) {
			if !v.Type().HasAttribute(name) {
				continue
			}
			if err := fields[name](v.GetAttr(name), path.GetAttr(name)); err != nil {
				return err
			}
		}
		return nil
	}
}

// Union accepts a value matching any of shapes. The error of the last shape
// is reported when none match.
func Union(description string, shapes ...Shape) Shape {
	return func(v cty.Value, path cty.Path) error {
		for _, shape := range shapes {
			if shape(v, path) == nil {
				return nil
			}
		}
		return path.NewErrorf("must be %s, got %s", description, friendly(v))
	}
}

func object(v cty.Value, path cty.Path) error {
	if err := present(v, path); err != nil {
		return err
	}
	if !v.Type().IsObjectType() && !v.Type().IsMapType() {
		return path.NewErrorf("must be an object, got %s", friendly(v))
	}
	return nil
}

func present(v cty.Value, path cty.Path) error {
	if v.IsNull() {
		return path.NewErrorf("must not be null")
	}
	return nil
}

func friendly(v cty.Value) string {
	if v.IsNull() {
		return "null"
	}
	ty := v.Type()
	switch {
	case ty.IsTupleType() || ty.IsListType():
		return "array"
	case ty.IsObjectType() || ty.IsMapType():
		return "object"
	}
	return ty.FriendlyName()
}

func sortedNames(fields Fields) []string {
	return slices.Sorted(maps.Keys(fields))
}

// FormatError renders err with its attribute path, e.g.
// "compilerOptions.paths["@/*"][0]: must be a string, got number".
func FormatError(err error) string {
	var perr cty.PathError
	if !errors.As(err, &perr) || len(perr.Path) == 0 {
		return err.Error()
	}
	return fmt.Sprintf("%s: %s", FormatPath(perr.Path), perr.Error())
}

// FormatPath renders a path in JavaScript accessor syntax.
func FormatPath(path cty.Path) string {
	var b strings.Builder
	for _, step := range path {
		switch s := step.(type) {
		case cty.GetAttrStep:
			if b.Len() > 0 {
				b.WriteByte('.')
			}
			b.WriteString(s.Name)
		case cty.IndexStep:
			switch {
			case s.Key.Type().Equals(cty.String):
				fmt.Fprintf(&b, "[%q]", s.Key.AsString())
			case s.Key.Type().Equals(cty.Number):
				fmt.Fprintf(&b, "[%s]", s.Key.AsBigFloat().Text('f', -1))
			}
		}
	}
	return b.String()
}
