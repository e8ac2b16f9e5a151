// Package log provides a structured logger built on [log/slog].
//
// A [Logger] is an immutable value configured once with functional options.
// The zero Logger discards everything, which lets library packages accept a
// Logger option without forcing callers to provide one.
//
//	logger := log.Make(os.Stderr,
//		log.WithLevel(log.LevelDebug),
//		log.WithFormat(log.FormatJSON),
//		log.WithTimeLayout("Kitchen"))
//
//	logger.Info("parsed", slog.Int("exprs", 3))
//
// In addition to the [log/slog] levels, [LevelTrace] sits below debug and
// is used for per-step diagnostics of the expression pipeline.
//
// # Output
//
// Messages are written as text (key=value) or JSON. With [WithPretty]
// enabled, both formats are colorized using lipgloss; colors are dropped
// automatically when the output is not a terminal.
//
// # Package-level logger
//
// The package functions ([Info], [Debug], ...) write through a default
// logger on standard error, reconfigured with [Config]. Functions without a
// context argument use [DefaultContextProvider].
package log
