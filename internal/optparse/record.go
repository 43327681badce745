package optparse

import (
	"fmt"
	"strings"
	"unicode"
)

// Record parses a comma-separated list of "K=V" pairs into a map. Keys and
// values are validated by independent types. The input is scanned left to
// right and the first problem found is reported:
//
//   - an entry without "=" is malformed
//   - an empty key or an empty value is rejected
//   - a key that is already in the map is rejected, whatever its values
//
// Blank input yields an empty map.
type Record[K comparable, V any] struct {
	Key   Type[K]
	Value Type[V]
}

// NewRecord returns a Record with the given key and value types.
func NewRecord[K comparable, V any](key Type[K], value Type[V]) Record[K, V] {
	return Record[K, V]{Key: key, Value: value}
}

func (r Record[K, V]) Parse(c Context) (map[K]V, error) {
	record := make(map[K]V)
	rest, off := trimSpace(c.Value, 0)
	for rest != "" {
		// Key boundary.
		eq := indexUnescaped(rest, '=')
		if eq < 0 {
			return nil, c.Errorf("Malformed entry", off, off+len(rest),
				"%s must be in the form of \"K=V\", but got %q.", c.Name, rest)
		}
		rawKey, keyOff := trimSpace(rest[:eq], off)
		if rawKey == "" {
			return nil, c.Errorf("Empty key", off, off+eq+1,
				"No key in %s %q can be empty.", c.Label, c.Name)
		}
		key, err := r.Key.Parse(c.Sub("key of "+c.Name, unescape(rawKey), keyOff, len(rawKey)))
		if err != nil {
			return nil, err
		}
		if _, dup := record[key]; dup {
			return nil, c.Errorf("Duplicate key", keyOff, keyOff+len(rawKey),
				"key %q is already defined in %s %q.", fmt.Sprint(key), c.Label, c.Name)
		}

		// Value boundary.
		rest, off = trimSpace(rest[eq+1:], off+eq+1)
		comma := indexUnescaped(rest, ',')
		rawValue := rest
		if comma >= 0 {
			rawValue = rest[:comma]
		}
		if strings.TrimSpace(rawValue) == "" {
			return nil, c.Errorf("Empty value", off, off+len(rawValue),
				"The value of %s in %s %q cannot be empty.", fmt.Sprint(key), c.Label, c.Name)
		}
		name := fmt.Sprintf("value of %v in %s", key, c.Name)
		value, err := r.Value.Parse(c.Sub(name, unescape(rawValue), off, len(rawValue)))
		if err != nil {
			return nil, err
		}
		record[key] = value

		if comma < 0 {
			break
		}
		rest, off = trimSpace(rest[comma+1:], off+comma+1)
	}
	return record, nil
}

// indexUnescaped returns the index of the first sep in s that is not escaped
// by a backslash, or -1.
func indexUnescaped(s string, sep byte) int {
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			if i+1 < len(s) && isEscapable(s[i+1]) {
				i++
			}
		case sep:
			return i
		}
	}
	return -1
}

// unescape removes the backslashes in front of "\", "," and "=". Any other
// backslash is kept, so Windows paths survive unchanged.
func unescape(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) && isEscapable(s[i+1]) {
			i++
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

func isEscapable(c byte) bool {
	return c == '\\' || c == ',' || c == '='
}

// trimSpace trims s and returns the offset of the result, given that s
// starts at off.
func trimSpace(s string, off int) (string, int) {
	t := strings.TrimLeftFunc(s, unicode.IsSpace)
	off += len(s) - len(t)
	return strings.TrimRightFunc(t, unicode.IsSpace), off
}
