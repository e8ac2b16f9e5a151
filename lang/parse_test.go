package lang

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestParse_Structure(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Expr
	}{
		{
			name:  "access chain is lower-cased",
			input: "MATH.PI",
			want: &AccessExpr{
				Object:   &IdentifierExpr{Name: "math"},
				Property: "pi",
			},
		},
		{
			name:  "negative literal",
			input: "-20",
			want:  &DoubleExpr{Value: -20},
		},
		{
			name:  "true and false",
			input: "true + false",
			want: &BinaryExpr{
				Op:    OpAdd,
				Left:  &DoubleExpr{Value: 1},
				Right: &DoubleExpr{Value: 0},
			},
		},
		{
			name:  "multiplication binds tighter",
			input: "1 + 2 * 3",
			want: &BinaryExpr{
				Op:   OpAdd,
				Left: &DoubleExpr{Value: 1},
				Right: &BinaryExpr{
					Op:    OpMul,
					Left:  &DoubleExpr{Value: 2},
					Right: &DoubleExpr{Value: 3},
				},
			},
		},
		{
			name:  "subtraction is left-associative",
			input: "1 - 2 - 3",
			want: &BinaryExpr{
				Op: OpSub,
				Left: &BinaryExpr{
					Op:    OpSub,
					Left:  &DoubleExpr{Value: 1},
					Right: &DoubleExpr{Value: 2},
				},
				Right: &DoubleExpr{Value: 3},
			},
		},
		{
			name:  "assignment is right-associative",
			input: "v.a = v.b = 1",
			want: &BinaryExpr{
				Op:   OpAssign,
				Left: &AccessExpr{Object: &IdentifierExpr{Name: "v"}, Property: "a"},
				Right: &BinaryExpr{
					Op:    OpAssign,
					Left:  &AccessExpr{Object: &IdentifierExpr{Name: "v"}, Property: "b"},
					Right: &DoubleExpr{Value: 1},
				},
			},
		},
		{
			name:  "ternary",
			input: "a > b ? 1 : 2",
			want: &TernaryExpr{
				Cond: &BinaryExpr{
					Op:    OpGreater,
					Left:  &IdentifierExpr{Name: "a"},
					Right: &IdentifierExpr{Name: "b"},
				},
				True:  &DoubleExpr{Value: 1},
				False: &DoubleExpr{Value: 2},
			},
		},
		{
			name:  "conditional without else",
			input: "a ? break",
			want: &BinaryExpr{
				Op:    OpConditional,
				Left:  &IdentifierExpr{Name: "a"},
				Right: &StatementExpr{Op: StatementBreak},
			},
		},
		{
			name:  "call with arguments",
			input: "math.clamp(x, 0, 1)",
			want: &CallExpr{
				Function: &AccessExpr{Object: &IdentifierExpr{Name: "math"}, Property: "clamp"},
				Args: []Expr{
					&IdentifierExpr{Name: "x"},
					&DoubleExpr{Value: 0},
					&DoubleExpr{Value: 1},
				},
			},
		},
		{
			name:  "negation applies to the call",
			input: "!q.f()",
			want: &UnaryExpr{
				Op: UnaryNot,
				Operand: &CallExpr{
					Function: &AccessExpr{Object: &IdentifierExpr{Name: "q"}, Property: "f"},
				},
			},
		},
		{
			name:  "index",
			input: "q.values[1]",
			want: &ArrayAccessExpr{
				Array: &AccessExpr{Object: &IdentifierExpr{Name: "q"}, Property: "values"},
				Index: &DoubleExpr{Value: 1},
			},
		},
		{
			name:  "arrow binds tightest",
			input: "a->b + 1",
			want: &BinaryExpr{
				Op: OpAdd,
				Left: &BinaryExpr{
					Op:    OpArrow,
					Left:  &IdentifierExpr{Name: "a"},
					Right: &IdentifierExpr{Name: "b"},
				},
				Right: &DoubleExpr{Value: 1},
			},
		},
		{
			name:  "coalesce is looser than or",
			input: "a || b ?? c",
			want: &BinaryExpr{
				Op: OpCoalesce,
				Left: &BinaryExpr{
					Op:    OpOr,
					Left:  &IdentifierExpr{Name: "a"},
					Right: &IdentifierExpr{Name: "b"},
				},
				Right: &IdentifierExpr{Name: "c"},
			},
		},
		{
			name:  "block with optional final semicolon",
			input: "{ v.x = 1; break }",
			want: &ScopeExpr{Body: []Expr{
				&BinaryExpr{
					Op:    OpAssign,
					Left:  &AccessExpr{Object: &IdentifierExpr{Name: "v"}, Property: "x"},
					Right: &DoubleExpr{Value: 1},
				},
				&StatementExpr{Op: StatementBreak},
			}},
		},
		{
			name:  "empty block",
			input: "{}",
			want:  &ScopeExpr{},
		},
		{
			name:  "bare return",
			input: "return",
			want:  &UnaryExpr{Op: UnaryReturn, Operand: &DoubleExpr{}},
		},
		{
			name:  "loop keyword",
			input: "loop(2, {})",
			want: &CallExpr{
				Function: &IdentifierExpr{Name: "loop"},
				Args:     []Expr{&DoubleExpr{Value: 2}, &ScopeExpr{}},
			},
		},
		{
			name:  "keyword as field name",
			input: "q.loop",
			want:  &AccessExpr{Object: &IdentifierExpr{Name: "q"}, Property: "loop"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseExpr(t.Context(), tt.input)
			if err != nil {
				t.Fatalf("parse error: %v", err)
			}

			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseExpr(%q) = %s, want %s", tt.input, got, tt.want)
			}
		})
	}
}

func TestParse_Program(t *testing.T) {
	tests := []struct {
		name  string
		input string
		count int
	}{
		{"empty", "", 0},
		{"only separators", ";;;", 0},
		{"single", "1", 1},
		{"trailing separator", "1;", 1},
		{"several", "v.x = 1; v.y = 2; return v.x + v.y;", 3},
		{"multiline", "v.x = 0;\nloop(3, {\n  v.x = v.x + 1;\n});\nv.x", 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exprs, err := Parse(t.Context(), tt.input)
			if err != nil {
				t.Fatalf("parse error: %v", err)
			}

			if len(exprs) != tt.count {
				t.Errorf("got %d expressions, want %d", len(exprs), tt.count)
			}
		})
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		input  string
		line   int
		column int
		msg    string
	}{
		{"array.my_geos[0, 1]", 1, 16, "expected ']'"},
		{"array.my_geos[]", 1, 15, "expected expression"},
		{"array.my_geos[", 1, 14, "end of input before closing ']'"},
		{"math.clamp(5 10)", 1, 15, "expected ',' or ')'"},
		{"math.clamp(5,", 1, 13, "end of input"},
		{"'abc", 1, 4, "unterminated string"},
		{"1 +", 1, 3, "unexpected end of input"},
		{"a & b", 1, 3, "unexpected character '&'"},
		{"(1 + 2", 1, 6, "expected ')'"},
		{"{ v.x = 1", 1, 9, "end of input before closing '}'"},
		{"1 2", 1, 3, "expected ';'"},
		{"v.x = 1;\nq.", 2, 2, "expected field name"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, err := Parse(t.Context(), tt.input)
			if err == nil {
				t.Fatal("expected parse error")
			}

			var pe *ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("error %T is not a *ParseError", err)
			}

			if pe.Cursor.Line != tt.line || pe.Cursor.Column != tt.column {
				t.Errorf("error at %d:%d, want %d:%d (%v)",
					pe.Cursor.Line, pe.Cursor.Column, tt.line, tt.column, err)
			}

			if !strings.Contains(pe.Message, tt.msg) {
				t.Errorf("message %q does not contain %q", pe.Message, tt.msg)
			}
		})
	}
}

func TestParseError_Snippet(t *testing.T) {
	_, err := Parse(t.Context(), "v.x = 1;\nmath.clamp(5 10)")

	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected *ParseError, got %v", err)
	}

	want := "  2 | math.clamp(5 10)\n" +
		"      " + strings.Repeat(" ", 14) + "^\n"

	if got := pe.Snippet(); got != want {
		t.Errorf("Snippet() =\n%s\nwant\n%s", got, want)
	}

	if !strings.HasPrefix(err.Error(), "parse error at line 2, column 15: ") {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestParseExpr_RejectsPrograms(t *testing.T) {
	if _, err := ParseExpr(t.Context(), "1; 2"); err == nil {
		t.Error("expected error for two expressions")
	}
}
