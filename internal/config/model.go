package config

// Model is the resolution-relevant subset of a deno configuration file.
type Model struct {
	// Path is the absolute path the model was loaded from.
	Path string

	Imports map[string]string
	Scopes  map[string]map[string]string
	// ImportMap references an external import map, relative to Path.
	ImportMap string

	Lock Lock
	// NodeModulesDir is "none", "auto", "manual", or "" when unset.
	NodeModulesDir string
}

// HasInlineImportMap reports whether imports or scopes were declared.
func (m *Model) HasInlineImportMap() bool {
	return len(m.Imports) > 0 || len(m.Scopes) > 0
}

// Lock is the "lock" setting.
type Lock struct {
	// Disabled is set by "lock": false.
	Disabled bool
	// Path is set by "lock": "<path>" or {"path": "<path>"}.
	Path string
	// Frozen is set by {"frozen": true}.
	Frozen bool
}
