package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"testing"
)

func TestMake_Defaults(t *testing.T) {
	var buf bytes.Buffer

	l := Make(&buf)

	if l.Level() != DefaultLevel || l.Format() != DefaultFormat {
		t.Errorf("Make() level=%v format=%v", l.Level(), l.Format())
	}

	if l.caller != DefaultCaller || l.pretty != DefaultPretty {
		t.Errorf("Make() caller=%v pretty=%v", l.caller, l.pretty)
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	tests := []struct {
		name   string
		log    func(Logger, string, ...slog.Attr)
		min    Level
		logged bool
	}{
		{"trace at trace", Logger.Trace, LevelTrace, true},
		{"trace at debug", Logger.Trace, LevelDebug, false},
		{"debug at info", Logger.Debug, LevelInfo, false},
		{"info at info", Logger.Info, LevelInfo, true},
		{"info at warn", Logger.Info, LevelWarn, false},
		{"warn at warn", Logger.Warn, LevelWarn, true},
		{"error at error", Logger.Error, LevelError, true},
		{"error at trace", Logger.Error, LevelTrace, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer

			tt.log(Make(&buf, WithLevel(tt.min)), "message")

			if got := buf.Len() > 0; got != tt.logged {
				t.Errorf("logged = %v, want %v (%q)", got, tt.logged, buf.String())
			}
		})
	}
}

func TestLogger_JSON(t *testing.T) {
	var buf bytes.Buffer

	l := Make(&buf, WithFormat(FormatJSON), WithPretty(false), WithLevel(LevelTrace))
	l.TraceContext(t.Context(), "parsed", slog.Int("exprs", 3), slog.String("src", "a + b"))

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("decode error: %v\n%s", err, buf.String())
	}

	want := map[string]any{
		"level": "TRACE",
		"msg":   "parsed",
		"exprs": 3.0,
		"src":   "a + b",
	}

	for k, v := range want {
		if entry[k] != v {
			t.Errorf("%s = %v, want %v", k, entry[k], v)
		}
	}
}

func TestLogger_Text(t *testing.T) {
	var buf bytes.Buffer

	l := Make(&buf, WithFormat(FormatText), WithPretty(false), WithTimeLayout("none"))
	l.Warn("slow", slog.Bool("cached", false))

	if got, want := buf.String(), "level=WARN msg=slow cached=false\n"; got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestLogger_Pretty(t *testing.T) {
	var buf bytes.Buffer

	l := Make(&buf, WithTimeLayout("none")).
		With(slog.String("cmd", "eval")).
		WithGroup("lang")

	l.Info("done", slog.Int("n", 2), slog.Group("pos", slog.Int("line", 1)))

	// A bytes.Buffer is not a terminal, so no escape codes are rendered.
	want := "level=INFO msg=done cmd=eval lang.n=2 lang.pos.line=1\n"
	if got := buf.String(); got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestLogger_PrettyJSON(t *testing.T) {
	var buf bytes.Buffer

	l := Make(&buf, WithFormat(FormatJSON), WithTimeLayout("none")).
		WithGroup("cache").
		With(slog.String("key", "k1"))

	l.Error("miss", slog.Any("err", nil), slog.Float64("ratio", 0.5))

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("pretty JSON does not decode: %v\n%s", err, buf.String())
	}

	cache, _ := entry["cache"].(map[string]any)
	if entry["level"] != "ERROR" || cache["key"] != "k1" || cache["ratio"] != 0.5 {
		t.Errorf("entry = %v", entry)
	}

	if !strings.Contains(buf.String(), "\n    \"key\": \"k1\"") {
		t.Errorf("group is not indented:\n%s", buf.String())
	}
}

func TestLogger_Caller(t *testing.T) {
	for _, pretty := range []bool{false, true} {
		var buf bytes.Buffer

		Make(&buf, WithCaller(true), WithPretty(pretty)).Info("here")

		if !strings.Contains(buf.String(), "log_test.go:") {
			t.Errorf("pretty=%v: source missing: %s", pretty, buf.String())
		}
	}

	var buf bytes.Buffer

	Make(&buf, WithPretty(false)).Info("here")

	if strings.Contains(buf.String(), "source=") {
		t.Errorf("source included when disabled: %s", buf.String())
	}
}

func TestLogger_Wrap(t *testing.T) {
	var buf bytes.Buffer

	base := Make(&buf, WithLevel(LevelError))
	wrapped := base.Wrap(WithLevel(LevelDebug))

	if base.Level() != LevelError || wrapped.Level() != LevelDebug {
		t.Errorf("levels = %v, %v", base.Level(), wrapped.Level())
	}

	wrapped.Debug("visible")

	if !strings.Contains(buf.String(), "visible") {
		t.Error("wrapped logger did not keep the output writer")
	}

	var zero Logger
	if zero.Wrap(WithOutput(&buf)).Logger == nil {
		t.Error("wrapping a zero logger did not create one")
	}
}

func TestLogger_ZeroValue(t *testing.T) {
	var l Logger

	l.Trace("x")
	l.DebugContext(t.Context(), "x")
	l.Info("x")
	l.Warn("x")
	l.Error("x")

	if l.With(slog.String("k", "v")).Logger != nil || l.WithGroup("g").Logger != nil {
		t.Error("zero logger gained a handler")
	}

	if l.Enabled(t.Context(), LevelError) {
		t.Error("zero logger reports enabled")
	}

	if l.Level() != DefaultLevel || l.Format() != DefaultFormat {
		t.Error("zero logger does not report defaults")
	}
}

func TestLogger_Concurrent(t *testing.T) {
	var buf bytes.Buffer

	l := Make(&buf, WithPretty(false))

	var wg sync.WaitGroup

	for i := range 100 {
		wg.Go(func() { l.Info("concurrent", slog.Int("id", i)) })
	}

	wg.Wait()

	if lines := strings.Count(buf.String(), "\n"); lines != 100 {
		t.Errorf("got %d lines, want 100", lines)
	}
}

func BenchmarkLogger_Info(b *testing.B) {
	for _, pretty := range []bool{false, true} {
		b.Run(map[bool]string{false: "plain", true: "pretty"}[pretty], func(b *testing.B) {
			var buf bytes.Buffer

			l := Make(&buf, WithPretty(pretty)).With(slog.String("component", "bench"))

			b.ReportAllocs()

			for b.Loop() {
				l.Info("benchmark", slog.Int("n", 1))
				buf.Reset()
			}
		})
	}
}
