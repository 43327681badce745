package optparse

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

var testLoaders = EnumOf("base64", "binary", "file", "js", "json", "text", "ts")

func TestRecord_Parse(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name      string
		record    Type[map[string]string]
		input     string
		expected  map[string]string
		errSubstr string
	}{
		{
			name:     "define pairs are opaque strings",
			record:   NewRecord[string, string](String{}, String{}),
			input:    "A=1,B=2",
			expected: map[string]string{"A": "1", "B": "2"},
		},
		{
			name:     "loader record with enum values",
			record:   NewRecord[string, string](String{}, testLoaders),
			input:    ".svg=file,.png=binary",
			expected: map[string]string{".svg": "file", ".png": "binary"},
		},
		{
			name:     "empty input yields empty record",
			record:   NewRecord[string, string](String{}, String{}),
			input:    "",
			expected: map[string]string{},
		},
		{
			name:     "whitespace-only input yields empty record",
			record:   NewRecord[string, string](String{}, String{}),
			input:    "   \t ",
			expected: map[string]string{},
		},
		{
			name:     "keys are trimmed",
			record:   NewRecord[string, string](String{}, String{}),
			input:    " A = 1, B=2 ",
			expected: map[string]string{"A": "1", "B": "2"},
		},
		{
			name:     "trailing comma is tolerated",
			record:   NewRecord[string, string](String{}, String{}),
			input:    "A=1,",
			expected: map[string]string{"A": "1"},
		},
		{
			name:     "value may contain equals signs",
			record:   NewRecord[string, string](String{}, String{}),
			input:    "A=x=y",
			expected: map[string]string{"A": "x=y"},
		},
		{
			name:     "escaped separators stay in the value",
			record:   NewRecord[string, string](String{}, String{}),
			input:    `js=/* a\, b */,css=x`,
			expected: map[string]string{"js": "/* a, b */", "css": "x"},
		},
		{
			name:     "escaped equals stays in the key",
			record:   NewRecord[string, string](String{}, String{}),
			input:    `a\=b=c`,
			expected: map[string]string{"a=b": "c"},
		},
		{
			name:     "other backslashes are literal",
			record:   NewRecord[string, string](String{}, String{}),
			input:    `lib=C:\src\lib`,
			expected: map[string]string{"lib": `C:\src\lib`},
		},
		{
			name:      "missing separator",
			record:    NewRecord[string, string](String{}, String{}),
			input:     "A=1,B",
			errSubstr: `must be in the form of "K=V", but got "B"`,
		},
		{
			name:      "empty key",
			record:    NewRecord[string, string](String{}, String{}),
			input:     "=v",
			errSubstr: "can be empty",
		},
		{
			name:      "empty value",
			record:    NewRecord[string, string](String{}, String{}),
			input:     "k=",
			errSubstr: "cannot be empty",
		},
		{
			name:      "empty value before next entry",
			record:    NewRecord[string, string](String{}, String{}),
			input:     "k=,j=1",
			errSubstr: "The value of k",
		},
		{
			name:      "duplicate key with different values",
			record:    NewRecord[string, string](String{}, String{}),
			input:     "a=1,a=2",
			errSubstr: `key "a" is already defined`,
		},
		{
			name:      "duplicate key with equal values",
			record:    NewRecord[string, string](String{}, String{}),
			input:     "a=1,a=1",
			errSubstr: `key "a" is already defined`,
		},
		{
			name:      "value outside enum",
			record:    NewRecord[string, string](String{}, testLoaders),
			input:     ".svg=unsupported",
			errSubstr: `but got "unsupported"`,
		},
		{
			name:      "key outside enum",
			record:    NewRecord[string, string](EnumOf("css", "js"), String{}),
			input:     "html=<!-- x -->",
			errSubstr: `"key of --test"`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := tc.record.Parse(NewContext("--test", "Record", tc.input))

			if tc.errSubstr != "" {
				require.Error(t, err)
				require.Contains(t, err.Error(), tc.errSubstr)
				var verr *ValidationError
				require.ErrorAs(t, err, &verr)
				return
			}
			require.NoError(t, err)
			if diff := cmp.Diff(tc.expected, got); diff != "" {
				t.Errorf("record mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRecord_BooleanFalseIsAValue(t *testing.T) {
	t.Parallel()

	supported := NewRecord[string, bool](String{}, Boolean{})

	got, err := supported.Parse(NewContext("--supported", "Flags", "bigint=false,arrow=true"))

	require.NoError(t, err)
	require.Equal(t, map[string]bool{"bigint": false, "arrow": true}, got)
}

func TestRecord_ErrorRange(t *testing.T) {
	t.Parallel()

	input := ".js=js,.svg=unsupported"
	_, err := NewRecord[string, string](String{}, testLoaders).Parse(NewContext("--loader", "LoaderRecord", input))

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, "--loader", verr.Flag)
	require.Equal(t, input, verr.Source)
	require.Equal(t, "unsupported", input[verr.Start:verr.End])
	require.Contains(t, verr.Detail, `"value of .svg in --loader"`)
}

func TestRecord_EnumErrorsNameTheEnum(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		values   Enum[string]
		expected string
	}{
		{name: "named enum", values: testLoaders.Named("loader"), expected: `must be of type "loader"`},
		{name: "unnamed enum", values: testLoaders, expected: `must be of type "enum"`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := NewRecord[string, string](String{}, tc.values).Parse(NewContext("--loader", "ext=loader,...", ".svg=unsupported"))

			require.Error(t, err)
			require.Contains(t, err.Error(), tc.expected)
			require.NotContains(t, err.Error(), `"ext=loader,..."`)
		})
	}
}

func TestRecord_ManyUniqueEntries(t *testing.T) {
	t.Parallel()

	want := map[string]string{}
	var parts []string
	for _, k := range []string{"a", "b", "c", "d", "e", "f", "g", "h"} {
		want[k] = "v" + k
		parts = append(parts, k+"=v"+k)
	}

	got, err := NewRecord[string, string](String{}, String{}).Parse(NewContext("--alias", "Record", strings.Join(parts, ",")))

	require.NoError(t, err)
	require.Len(t, got, len(want))
	require.Equal(t, want, got)
}

func TestValidationError_Render(t *testing.T) {
	t.Parallel()

	_, err := NewRecord[string, string](String{}, String{}).Parse(NewContext("--define", "Record", "A=1,B"))
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)

	var out strings.Builder
	require.NoError(t, verr.Render(&out, 78, false))

	require.Contains(t, out.String(), "Error: Malformed entry")
	require.Contains(t, out.String(), "on --define line 1")
	require.Contains(t, out.String(), "A=1,B")
}
