package lang

import (
	"testing"
)

const benchSource = "t.a = x * 2; t.b = math.clamp(t.a, 0, 10); " +
	"loop(4, { t.b = t.b + math.sin(t.a); }); return t.b > 5 ? t.b : -t.b;"

func BenchmarkParse(b *testing.B) {
	for b.Loop() {
		if _, err := Parse(b.Context(), benchSource); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkParseCached(b *testing.B) {
	ClearCache()

	for b.Loop() {
		if _, err := ParseCached(b.Context(), benchSource); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkEvaluate(b *testing.B) {
	e := NewEngine()
	e.Bind("x", NumberOf(3))

	exprs, err := e.Parse(b.Context(), benchSource)
	if err != nil {
		b.Fatal(err)
	}

	for b.Loop() {
		e.Eval(b.Context(), nil, exprs)
	}
}

func BenchmarkEvaluateFolded(b *testing.B) {
	e := NewEngine()
	e.Bind("x", NumberOf(3))

	exprs, err := e.Parse(b.Context(), benchSource)
	if err != nil {
		b.Fatal(err)
	}

	exprs = Fold(b.Context(), exprs, e.Scope())

	for b.Loop() {
		e.Eval(b.Context(), nil, exprs)
	}
}

func BenchmarkCompiled(b *testing.B) {
	f, err := CompileFunc[func(float64) float64](b.Context(), benchSource, []string{"x"})
	if err != nil {
		b.Fatal(err)
	}

	for b.Loop() {
		f(3)
	}
}
