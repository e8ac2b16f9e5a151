package profile

import "testing"

func TestProfiler_Disabled(t *testing.T) {
	for _, p := range []Profiler{
		{},
		{Mode: "bogus", Path: t.TempDir()},
	} {
		s := p.Start()
		if _, ok := s.(ignore); !ok {
			t.Errorf("Start() with mode %q = %T, want no-op", p.Mode, s)
		}

		s.Stop()
	}

	if Enabled("") || Enabled("bogus") {
		t.Error("unsupported mode reported as enabled")
	}
}
