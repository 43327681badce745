package lockfile

import (
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/require"
)

func digest(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

func TestVerify(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	src := `{"version": "4", "remote": {"https://deno.land/x/a.ts": "` + digest("export {}") + `"}, "npm": {}}`
	lock, err := Parse([]byte(src))
	require.NoError(t, err)
	require.Equal(t, "4", lock.Version)

	// --- Act / Assert ---
	require.NoError(t, lock.Verify("https://deno.land/x/a.ts", []byte("export {}")))
	require.NoError(t, lock.Verify("https://deno.land/x/unlisted.ts", []byte("x")))

	err = lock.Verify("https://deno.land/x/a.ts", []byte("tampered"))
	var ierr *IntegrityError
	require.ErrorAs(t, err, &ierr)
	require.Equal(t, digest("tampered"), ierr.Actual)

	lock.Frozen = true
	require.ErrorContains(t, lock.Verify("https://deno.land/x/unlisted.ts", []byte("x")), "missing from the frozen lock file")
}

func TestVerify_NilLockAcceptsAll(t *testing.T) {
	t.Parallel()

	var lock *Lock
	require.NoError(t, lock.Verify("https://example.com/x.ts", []byte("x")))
}

func TestParse_Invalid(t *testing.T) {
	t.Parallel()

	_, err := Parse([]byte(`{"remote": {"https://x": 1}}`))
	require.ErrorContains(t, err, `remote["https://x"]: must be a string`)
}
