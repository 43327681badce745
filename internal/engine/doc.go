// Package engine is the boundary to the bundler. The rest of the application
// depends on the Engine interface so the build step can be replaced in tests.
package engine
