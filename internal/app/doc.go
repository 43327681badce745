// Package app turns a validated Config into one esbuild invocation: it
// resolves the deno configuration file, loads the mangle cache, assembles the
// build options, runs the engine and writes the requested build metadata.
package app
