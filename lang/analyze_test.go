package lang

import (
	"testing"
)

func TestIsConstant(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"1 + 2", true},
		{"'a' + 'b'", true},
		{"-(3 * 4)", true},
		{"math.pi", true},
		{"MATH.PI * 2", true},
		{"math.abs(-3)", true},
		{"math.clamp(math.pi, 0, 1)", true},
		{"math.random(0, 1)", false},
		{"math.abs(v.x)", false},
		{"v.x", false},
		{"q.anything", false},
		{"unbound", false},
		{"t.x = 1", false},
		{"loop(3, {})", true},
		{"loop(3, { v.x = 1; })", false},
		{"break", true},
		{"1 ? 2 : 3", true},
		{"{ 1; }", true},
		{"q.k", true},
		{"q.k + q.n", false},
		{"q.f(1)", true},
		{"q.g(1)", false},
	}

	e := NewEngine()
	e.Query().SetConstant("k", NumberOf(4))
	e.Query().Set("n", NumberOf(5))
	e.Query().SetConstant("f", Pure(FunctionFunc(func(_ *Frame, a Args) Value {
		return NumberOf(a.Number(0) * 2)
	})))
	e.Query().SetConstant("g", FunctionFunc(func(*Frame, Args) Value { return Zero }))

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			expr, err := ParseExpr(t.Context(), tt.input)
			if err != nil {
				t.Fatalf("parse error: %v", err)
			}

			if got := IsConstant(expr, e.Scope()); got != tt.want {
				t.Errorf("IsConstant(%s) = %v, want %v", expr, got, tt.want)
			}
		})
	}
}

func TestIsConstant_NilScope(t *testing.T) {
	expr, err := ParseExpr(t.Context(), "math.pi")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	if IsConstant(expr, nil) {
		t.Error("identifiers must not be constant without a scope")
	}
}

func TestIsContextDependent(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"1 + 2", false},
		{"'text'", false},
		{"-3", false},
		{"1 ? 2 : 3", false},
		{"{ 1; 2; }", false},
		{"break", false},
		{"x", true},
		{"math.pi", true},
		{"1 + v.x", true},
		{"f()", true},
		{"{ v.x = 1; }", true},
		{"t.x = 1", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			expr, err := ParseExpr(t.Context(), tt.input)
			if err != nil {
				t.Fatalf("parse error: %v", err)
			}

			if got := IsContextDependent(expr); got != tt.want {
				t.Errorf("IsContextDependent(%s) = %v, want %v", expr, got, tt.want)
			}
		})
	}
}

func TestFold(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"1 + 2 * 3", "7"},
		{"'a' + 'b'", "'ab'"},
		{"math.pi * 2", "6.283185307179586"},
		{"math.abs(-3) + v.x", "3 + v.x"},
		{"v.x * (2 + 2)", "v.x * 4"},
		{"math.random(0, 1)", "math.random(0, 1)"},
		{"{ 1 + 2; }", "{ 3; }"},
		{"return 1 + 2", "return 3"},
		{"loop(2, {})", "0"},
		{"t.x = 2 * 3", "t.x = 6"},
		{"v.x ? break : 1 + 1", "v.x ? break : 2"},
		{"10 / 0", "0"},
	}

	e := NewEngine()

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			exprs, err := Parse(t.Context(), tt.input)
			if err != nil {
				t.Fatalf("parse error: %v", err)
			}

			before := Format(exprs[0])
			folded := Fold(t.Context(), exprs, e.Scope())
			if len(folded) != 1 {
				t.Fatalf("got %d expressions, want 1", len(folded))
			}

			if got := Format(folded[0]); got != tt.want {
				t.Errorf("Fold(%s) = %s, want %s", tt.input, got, tt.want)
			}

			if after := Format(exprs[0]); after != before {
				t.Errorf("input tree changed from %s to %s", before, after)
			}
		})
	}
}

func TestParse_WithFolding(t *testing.T) {
	e := NewEngine()

	exprs, err := Parse(t.Context(), "math.sqrt(16) + 1",
		WithFolding(true), WithScope(e.Scope()))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	d, ok := exprs[0].(*DoubleExpr)
	if !ok || d.Value != 5 {
		t.Errorf("folded to %s, want 5", exprs[0])
	}
}

func TestFold_PreservesSemantics(t *testing.T) {
	inputs := []string{
		"v.x = 3; v.y = math.max(v.x, 2) * (4 - 1); v.y",
		"t.s = 0; loop(4, { t.s = t.s + math.pow(2, 2); }); t.s",
		"'n=' + (1 + 1)",
		"math.floor(math.pi) == 3 ? 'yes' : 'no'",
	}

	for _, src := range inputs {
		t.Run(src, func(t *testing.T) {
			e := NewEngine()

			exprs, err := Parse(t.Context(), src)
			if err != nil {
				t.Fatalf("parse error: %v", err)
			}

			want := AsString(e.Eval(t.Context(), nil, exprs))
			got := AsString(e.Eval(t.Context(), nil, Fold(t.Context(), exprs, e.Scope())))

			if got != want {
				t.Errorf("folded result %q, want %q", got, want)
			}
		})
	}
}
