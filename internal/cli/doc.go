// Package cli parses the command line into an app.Config. Every option value
// is validated while it is parsed; relationships between options are checked
// once afterwards. Failures come back as *ExitError carrying the process exit
// code.
package cli
