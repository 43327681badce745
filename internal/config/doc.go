// Package config models a deno configuration file (deno.json or deno.jsonc)
// and loads it.
//
// Only the settings that influence module resolution are kept: the inline
// import map, an external import map reference, the lock file setting and the
// node_modules strategy. Every other field is ignored.
package config
