// Package lockfile reads the remote module integrity table of a deno.lock
// file.
package lockfile

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/vk/denobuild/internal/schema"
)

// Lock maps remote module URLs to the hex sha256 of their content.
type Lock struct {
	Version string            `json:"version"`
	Remote  map[string]string `json:"remote"`
	// Frozen makes modules missing from Remote an error.
	Frozen bool `json:"-"`
}

var documentShape = schema.Object(schema.Fields{
	"version": schema.String,
	"remote":  schema.MapOf(schema.String),
})

// Parse decodes a lock file.
func Parse(src []byte) (*Lock, error) {
	l := &Lock{}
	if _, err := schema.Load(src, documentShape, l); err != nil {
		return nil, err
	}
	if l.Remote == nil {
		l.Remote = map[string]string{}
	}
	return l, nil
}

// IntegrityError reports content that does not match its recorded hash.
type IntegrityError struct {
	URL      string
	Expected string
	Actual   string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("integrity check failed for remote specifier %q: expected %s, got %s", e.URL, e.Expected, e.Actual)
}

// Verify checks content fetched from url against the table. A nil Lock
// accepts everything.
func (l *Lock) Verify(url string, content []byte) error {
	if l == nil {
		return nil
	}
	expected, ok := l.Remote[url]
	if !ok {
		if l.Frozen {
			return fmt.Errorf("remote specifier %q is missing from the frozen lock file", url)
		}
		return nil
	}
	sum := sha256.Sum256(content)
	actual := hex.EncodeToString(sum[:])
	if actual != expected {
		return &IntegrityError{URL: url, Expected: expected, Actual: actual}
	}
	return nil
}
