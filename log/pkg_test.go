package log

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestPackageFunctions(t *testing.T) {
	saved := Default()
	t.Cleanup(func() {
		defaultMu.Lock()
		defaultLog = saved
		defaultMu.Unlock()
	})

	var buf bytes.Buffer

	Config(WithOutput(&buf), WithLevel(LevelTrace), WithPretty(false), WithTimeLayout("none"))

	tests := []struct {
		level string
		log   func(string, ...slog.Attr)
	}{
		{"TRACE", Trace},
		{"DEBUG", Debug},
		{"INFO", Info},
		{"WARN", Warn},
		{"ERROR", Error},
		{"TRACE", func(m string, a ...slog.Attr) { TraceContext(context.Background(), m, a...) }},
		{"DEBUG", func(m string, a ...slog.Attr) { DebugContext(context.Background(), m, a...) }},
		{"INFO", func(m string, a ...slog.Attr) { InfoContext(context.Background(), m, a...) }},
		{"WARN", func(m string, a ...slog.Attr) { WarnContext(context.Background(), m, a...) }},
		{"ERROR", func(m string, a ...slog.Attr) { ErrorContext(context.Background(), m, a...) }},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			buf.Reset()
			tt.log("hello", slog.String("key", "value"))

			want := "level=" + tt.level + " msg=hello key=value\n"
			if buf.String() != want {
				t.Errorf("output = %q, want %q", buf.String(), want)
			}
		})
	}

	buf.Reset()
	With(slog.Int("id", 7)).Info("tagged")

	if !strings.Contains(buf.String(), "id=7") {
		t.Errorf("With output = %q", buf.String())
	}

	before := Default()
	Config(WithLevel(LevelError))

	if before.Level() != LevelTrace || Default().Level() != LevelError {
		t.Error("Config changed an existing logger")
	}
}
