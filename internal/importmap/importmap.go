// Package importmap parses import maps and resolves specifiers through them.
//
// Keys ending in "/" match specifier prefixes; the longest matching key wins.
// Scopes apply when the referrer URL starts with the scope prefix, most
// specific scope first, before the top-level imports.
package importmap

import (
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/vk/denobuild/internal/schema"
)

// ImportMap is a parsed import map with addresses resolved to absolute URLs.
type ImportMap struct {
	imports specifierMap
	scopes  []scope
}

type scope struct {
	prefix  string
	imports specifierMap
}

type entry struct {
	key     string
	address string
}

// specifierMap is sorted by descending key length.
type specifierMap []entry

var documentShape = schema.Object(schema.Fields{
	"imports": schema.MapOf(schema.String),
	"scopes":  schema.MapOf(schema.MapOf(schema.String)),
})

type document struct {
	Imports map[string]string            `json:"imports"`
	Scopes  map[string]map[string]string `json:"scopes"`
}

// Parse decodes an import map document. Relative addresses and scope keys
// are resolved against base.
func Parse(src []byte, base *url.URL) (*ImportMap, error) {
	var doc document
	if _, err := schema.Load(src, documentShape, &doc); err != nil {
		return nil, err
	}
	return New(doc.Imports, doc.Scopes, base)
}

// New builds an import map from already decoded imports and scopes.
func New(imports map[string]string, scopes map[string]map[string]string, base *url.URL) (*ImportMap, error) {
	im := &ImportMap{}
	var err error
	if im.imports, err = newSpecifierMap(imports, base); err != nil {
		return nil, err
	}
	for prefix, m := range scopes {
		u, err := base.Parse(prefix)
		if err != nil {
			return nil, fmt.Errorf("invalid scope %q: %w", prefix, err)
		}
		sm, err := newSpecifierMap(m, base)
		if err != nil {
			return nil, fmt.Errorf("scope %q: %w", prefix, err)
		}
		im.scopes = append(im.scopes, scope{prefix: u.String(), imports: sm})
	}
	sort.Slice(im.scopes, func(i, j int) bool {
		return len(im.scopes[i].prefix) > len(im.scopes[j].prefix)
	})
	return im, nil
}

func newSpecifierMap(m map[string]string, base *url.URL) (specifierMap, error) {
	out := make(specifierMap, 0, len(m))
	for key, addr := range m {
		if strings.HasSuffix(key, "/") != strings.HasSuffix(addr, "/") {
			return nil, fmt.Errorf("invalid address %q for key %q: a key ending in \"/\" needs an address ending in \"/\"", addr, key)
		}
		resolved, err := resolveAddress(addr, base)
		if err != nil {
			return nil, fmt.Errorf("invalid address %q for key %q: %w", addr, key, err)
		}
		out = append(out, entry{key: normalizeKey(key, base), address: resolved})
	}
	sort.Slice(out, func(i, j int) bool {
		if len(out[i].key) != len(out[j].key) {
			return len(out[i].key) > len(out[j].key)
		}
		return out[i].key < out[j].key
	})
	return out, nil
}

// Resolve maps specifier as imported from referrer, an absolute URL. It
// reports false when no entry applies.
func (im *ImportMap) Resolve(specifier, referrer string) (string, bool) {
	normalized := specifier
	if IsRelative(specifier) {
		if ref, err := url.Parse(referrer); err == nil {
			if u, err := ref.Parse(specifier); err == nil {
				normalized = u.String()
			}
		}
	}
	for _, s := range im.scopes {
		if strings.HasPrefix(referrer, s.prefix) {
			if addr, ok := s.imports.match(normalized); ok {
				return addr, true
			}
		}
	}
	return im.imports.match(normalized)
}

func (m specifierMap) match(specifier string) (string, bool) {
	for _, e := range m {
		if e.key == specifier {
			return e.address, true
		}
		if strings.HasSuffix(e.key, "/") && strings.HasPrefix(specifier, e.key) {
			return e.address + strings.TrimPrefix(specifier, e.key), true
		}
	}
	return "", false
}

// IsRelative reports whether specifier is a path relative to its referrer.
func IsRelative(specifier string) bool {
	return strings.HasPrefix(specifier, "./") || strings.HasPrefix(specifier, "../") || strings.HasPrefix(specifier, "/")
}

// Relative keys name the URL they resolve to; bare keys stay as written.
func normalizeKey(key string, base *url.URL) string {
	if !IsRelative(key) {
		return key
	}
	u, err := base.Parse(key)
	if err != nil {
		return key
	}
	return u.String()
}

func resolveAddress(addr string, base *url.URL) (string, error) {
	if IsRelative(addr) {
		u, err := base.Parse(addr)
		if err != nil {
			return "", err
		}
		return u.String(), nil
	}
	u, err := url.Parse(addr)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" {
		return "", fmt.Errorf("address must be a URL or a relative path")
	}
	return addr, nil
}
