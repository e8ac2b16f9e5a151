// Package cli contains the command line interface for molang.
//
// # Usage
//
// Each positional argument of the eval command, the default, is a program.
// Source files are given with --file, and standard input is read when
// neither is given (or the file is "-"):
//
//	molang 'math.sqrt(16) + 1'
//	molang -m host.yaml eval --var health=20 -f damage.molang
//	echo 'v.x = 2; return v.x * 3;' | molang
//
// Other commands format programs (fmt), compile a program against a typed
// signature and call it (compile), start an interactive session (repl), or
// write the current options to the configuration file (init).
//
// # Host Manifest
//
// The --manifest flag names a YAML document that declares namespaces, their
// fields and the functions the host provides. See [lang.Manifest].
//
// # Configuration
//
// Flags without a value on the command line are resolved from config.json
// and then config.yaml in the per-user configuration directory. Nested YAML
// maps are flattened by joining keys with '-', so both of these set
// --log-level:
//
//	log-level: debug
//
//	log:
//	  level: debug
//
// # Logging Options
//
//   - --log-level: Set minimum log level (trace, debug, info, warn, error)
//   - --log-format: Set log output format (text, json)
//   - --log-time: Set timestamp layout (RFC3339, Kitchen, none, ...)
//   - --[no-]log-caller: Include caller information in log output
//   - --[no-]log-pretty: Colorize output on terminals
//
// Logging flags take effect before the rest of the command line is parsed,
// wherever they appear.
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag:
//
//	go build -tags pprof -o molang .
//
//   - --pprof-mode: Enable profiling (allocs, block, clock, cpu, goroutine,
//     heap, mem, mutex, thread, trace)
//   - --pprof-dir: Set profile output directory (default: the pprof
//     directory under the per-user cache directory)
//
// # Examples
//
//	# Debug logging with CPU profiling
//	molang --log-level=debug --pprof-mode=cpu bench.molang
//
//	# Print the syntax tree of a program
//	molang fmt ast 'v.a = 1; v.a ? 2 : 3'
//
//	# Compile against a signature and call it
//	molang compile -e 'speed * 2' --param speed:f64 3
package cli
