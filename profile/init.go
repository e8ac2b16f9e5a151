package profile

// Profiler describes a profiling session.
type Profiler struct {
	// Mode selects the profile kind; empty disables profiling.
	Mode string
	// Path is the output directory.
	Path string
	// Quiet suppresses the profiler's own start and stop messages.
	Quiet bool
}

// Stopper ends a profiling session and flushes its output.
type Stopper interface{ Stop() }

// Start begins profiling and returns the [Stopper] that ends it. Both Start
// and Stop are safe to call when profiling is disabled or unsupported.
func (p Profiler) Start() Stopper {
	if p.Mode == "" {
		return ignore{}
	}

	return start(p.Mode, p.Path, p.Quiet)
}

// Enabled reports whether mode is supported by this build.
func Enabled(mode string) bool {
	for _, m := range Modes() {
		if m == mode {
			return true
		}
	}

	return false
}

type ignore struct{}

func (ignore) Stop() {}
