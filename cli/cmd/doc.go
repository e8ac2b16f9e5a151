// Package cmd implements the molang subcommands: eval, fmt, compile, repl
// and init. Each command is a kong command struct with a Run method that
// receives the parent context; the context carries the kong context, the
// manifest path and, in tests, substitute standard streams.
package cmd

var (
	// CacheIdentifier is the kong variable identifier containing the path to
	// the runtime cache directory.
	CacheIdentifier = "cache"

	// ConfigIdentifier is the kong variable identifier containing the path to
	// the YAML configuration file written by init.
	ConfigIdentifier = "config"
)
