package optparse

import (
	"errors"
	"fmt"

	"github.com/spf13/pflag"
)

var _ pflag.Value = (*Value[string])(nil)

// Failures remembers the first ValidationError raised by the Values sharing
// it. pflag flattens Set errors into strings, so callers read the typed error
// back from here.
type Failures struct {
	first *ValidationError
}

// Err returns the first recorded error, or nil.
func (f *Failures) Err() *ValidationError {
	if f == nil {
		return nil
	}
	return f.first
}

func (f *Failures) record(err error) {
	if f == nil || f.first != nil {
		return
	}
	var verr *ValidationError
	if errors.As(err, &verr) {
		f.first = verr
	}
}

// Value is a pflag.Value backed by a Type. An option may be given once.
type Value[T any] struct {
	flag     string
	typeName string
	typ      Type[T]
	failures *Failures

	value T
	raw   string
	set   bool
}

// NewValue returns a Value for the option called name. def is the raw default,
// parsed with typ; an empty def leaves the zero value. Parse errors are also
// recorded in failures when it is not nil.
func NewValue[T any](name, typeName string, typ Type[T], def string, failures *Failures) *Value[T] {
	v := &Value[T]{
		flag:     "--" + name,
		typeName: typeName,
		typ:      typ,
		failures: failures,
		raw:      def,
	}
	if def != "" {
		parsed, err := typ.Parse(NewContext(v.flag, typeName, def))
		if err != nil {
			panic(fmt.Sprintf("optparse: invalid default for %s: %v", v.flag, err))
		}
		v.value = parsed
	}
	return v
}

// String returns the raw text of the value.
func (v *Value[T]) String() string {
	return v.raw
}

// Set parses s and stores the result.
func (v *Value[T]) Set(s string) error {
	if v.set {
		err := &ValidationError{
			Summary: "Duplicate option",
			Flag:    v.flag,
			Detail:  fmt.Sprintf("Option %q cannot be used multiple times.", v.flag),
		}
		v.failures.record(err)
		return err
	}
	parsed, err := v.typ.Parse(NewContext(v.flag, v.typeName, s))
	if err != nil {
		v.failures.record(err)
		return err
	}
	v.value = parsed
	v.raw = s
	v.set = true
	return nil
}

// Type names the value type in help output.
func (v *Value[T]) Type() string {
	return v.typeName
}

// Get returns the parsed value, or the parsed default when the option was not
// given.
func (v *Value[T]) Get() T {
	return v.value
}

// IsSet reports whether the option was given on the command line.
func (v *Value[T]) IsSet() bool {
	return v.set
}
