package lang

import (
	"math"
	"testing"
)

func TestNumberOf_NonFinite(t *testing.T) {
	tests := []struct {
		name string
		v    Value
	}{
		{"NaN", NumberOf(math.NaN())},
		{"+Inf", NumberOf(math.Inf(1))},
		{"-Inf", NumberOf(math.Inf(-1))},
		{"ValueOf +Inf", ValueOf(math.Inf(1))},
		{"ValueOf float32 NaN", ValueOf(float32(math.NaN()))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.v != Zero {
				t.Errorf("value = %v, want 0", tt.v)
			}
		})
	}
}

func TestEval_NonFinite(t *testing.T) {
	e := NewEngine()
	e.Query().Set("big", MustHostFunction("big", func() float64 { return math.MaxFloat64 }, true))

	tests := []string{
		"math.sqrt(-1)",
		"math.ln(0)",
		"math.pow(10, 400)",
		"1 / 0",
		"q.big() * 2",
		"-q.big() - q.big()",
		"math.exp(1000)",
	}

	for _, input := range tests {
		t.Run(input, func(t *testing.T) {
			assertNumber(t, eval(t, e, nil, input), 0)
		})
	}
}

func TestCompiled_NonFiniteArguments(t *testing.T) {
	f64 := Signature{Params: []Param{{Name: "x", Kind: KindFloat64}}, Result: KindFloat64}
	f32 := Signature{Params: []Param{{Name: "x", Kind: KindFloat32}}, Result: KindFloat64}

	tests := []struct {
		name  string
		input string
		sig   Signature
		arg   any
		want  float64
	}{
		{"NaN identity", "x", f64, math.NaN(), 0},
		{"NaN equals itself", "x == x", f64, math.NaN(), 1},
		{"negated +Inf", "-x", f64, math.Inf(1), 0},
		{"-Inf plus one", "x + 1", f64, math.Inf(-1), 1},
		{"float32 overflow", "x", f32, 1e300, 0},
		{"finite passes", "x * 2", f64, 1.5, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := CompileString(t.Context(), tt.input, tt.sig)
			if err != nil {
				t.Fatalf("compile error: %v", err)
			}

			got, err := p.Call(tt.arg)
			if err != nil {
				t.Fatalf("call error: %v", err)
			}

			if got != tt.want {
				t.Errorf("Call(%v) = %v, want %v", tt.arg, got, tt.want)
			}

			if tt.sig.Params[0].Kind == KindFloat64 {
				f, _ := tt.arg.(float64)
				if got := p.Float(f); got != tt.want {
					t.Errorf("Float(%v) = %v, want %v", f, got, tt.want)
				}
			}
		})
	}

	t.Run("bound func", func(t *testing.T) {
		f, err := CompileFunc[func(float64) float64](t.Context(), "x", []string{"x"})
		if err != nil {
			t.Fatalf("compile error: %v", err)
		}

		if got := f(math.NaN()); got != 0 {
			t.Errorf("f(NaN) = %v, want 0", got)
		}
	})
}

func TestAsBool(t *testing.T) {
	full := NewScope()
	full.Set("k", NumberOf(1))

	tests := []struct {
		name string
		v    Value
		want bool
	}{
		{"nil", nil, false},
		{"zero", Zero, false},
		{"negative", NumberOf(-0.5), true},
		{"empty string", String(""), false},
		{"string", String("0"), true},
		{"empty array", ArrayOf(), false},
		{"array", ArrayOf(Zero), true},
		{"function", FunctionFunc(func(*Frame, Args) Value { return Zero }), true},
		{"empty scope", NewScope(), false},
		{"scope", full, true},
		{"entity", Entity{V: 0}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AsBool(tt.v); got != tt.want {
				t.Errorf("AsBool(%v) = %v, want %v", tt.v, got, tt.want)
			}
		})
	}
}

func TestAsString(t *testing.T) {
	obj := NewScope()
	obj.Set("a", NumberOf(1))
	obj.Set("B", String("x"))

	tests := []struct {
		name string
		v    Value
		want string
	}{
		{"nil", nil, "0.0"},
		{"integer", NumberOf(3), "3.0"},
		{"string", String("hi"), "hi"},
		{"array", ArrayOf(NumberOf(1), String("b"), ArrayOf()), "[1.0, b, []]"},
		{"object", obj, "{a: 1.0, b: x}"},
		{"function", FunctionFunc(func(*Frame, Args) Value { return Zero }), "<function>"},
		{"entity", Entity{V: "steve"}, "steve"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AsString(tt.v); got != tt.want {
				t.Errorf("AsString() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		f    float64
		want string
	}{
		{0, "0.0"},
		{1, "1.0"},
		{-2.5, "-2.5"},
		{0.001, "0.001"},
		{0.0001, "1.0E-4"},
		{1234567, "1234567.0"},
		{1e7, "1.0E7"},
		{-1.25e8, "-1.25E8"},
	}

	for _, tt := range tests {
		if got := formatNumber(tt.f); got != tt.want {
			t.Errorf("formatNumber(%v) = %q, want %q", tt.f, got, tt.want)
		}
	}
}
