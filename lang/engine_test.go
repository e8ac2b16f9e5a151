package lang

import (
	"sync"
	"testing"
)

func TestEngine_Namespaces(t *testing.T) {
	e := NewEngine()

	for _, name := range []string{"math", "query", "q", "variable", "v"} {
		if !e.Scope().IsConstant(name) {
			t.Errorf("%s is not a constant binding", name)
		}
	}

	if e.Scope().Get("q") != e.Query() || e.Scope().Get("v") != e.Variable() {
		t.Error("aliases do not share their namespaces")
	}
}

func TestEngine_Bind(t *testing.T) {
	e := NewEngine()
	e.Bind("speed", NumberOf(3), "s")
	e.BindConstant("gravity", NumberOf(10), "g")

	assertNumber(t, eval(t, e, nil, "speed * s + g"), 19)

	if e.Scope().IsConstant("speed") || !e.Scope().IsConstant("g") {
		t.Error("constant flags are wrong")
	}

	e.Bind("speed", NumberOf(4))
	assertNumber(t, eval(t, e, nil, "speed"), 4)
}

func TestEngine_VariablesPersist(t *testing.T) {
	e := NewEngine()

	for i := 1; i <= 3; i++ {
		assertNumber(t, e.EvalString(t.Context(), nil, "v.count = v.count + 1; t.seen = t.seen + 1; v.count"), float64(i))
	}

	assertNumber(t, e.Variable().Get("count"), 3)
	assertNumber(t, e.EvalString(t.Context(), nil, "t.seen"), 0)
}

func TestEngine_EvalStringParseError(t *testing.T) {
	e := NewEngine()

	assertNumber(t, e.EvalString(t.Context(), nil, "math.clamp(5 10)"), 0)
}

func TestEngine_Compile(t *testing.T) {
	e := NewEngine()
	e.Query().SetConstant("base", NumberOf(100))

	p, err := e.Compile(t.Context(), "q.base + x",
		Signature{Params: []Param{{Name: "x", Kind: KindFloat64}}, Result: KindFloat64})
	if err != nil {
		t.Fatalf("compile error: %v", err)
	}

	if got := p.Float(5); got != 105 {
		t.Errorf("result = %v, want 105", got)
	}
}

func TestEngine_ConcurrentEval(t *testing.T) {
	e := NewEngine()
	e.Query().Set("health", NumberOf(20))

	exprs, err := e.Parse(t.Context(), "t.h = q.health; loop(10, { t.h = t.h - 1; }); t.h")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	var wg sync.WaitGroup

	for range 8 {
		wg.Go(func() {
			for range 50 {
				if got := AsNumber(e.Eval(t.Context(), nil, exprs)); got != 10 {
					t.Errorf("result = %v, want 10", got)

					return
				}
			}
		})
	}

	wg.Wait()
}
