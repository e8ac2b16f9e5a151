// Package profile starts optional runtime profiling of the molang command.
//
// Profiling is compiled in only with the "pprof" build tag, which links
// [github.com/pkg/profile] and registers the [net/http/pprof] handlers.
// Without the tag, [Profiler.Start] returns a no-op and [Modes] is empty.
//
//	go build -tags pprof .
//	molang --pprof-mode cpu --pprof-dir ./prof eval -f script.mo
//	go tool pprof -http=: ./prof/cpu.pprof
//
// Supported modes are listed by [Modes]: allocs, block, clock, cpu,
// goroutine, heap, mem, mutex, thread and trace. Profiles are written to
// the configured directory, or to a temporary directory when none is given.
package profile

// Tag is the build tag required to enable profiling.
const Tag = `pprof`
