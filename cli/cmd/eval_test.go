package cmd

import (
	"bytes"
	"errors"
	"testing"

	"github.com/ardnew/molang/lang"
)

func TestEvalRun(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.mo", "v.x = 2;")
	b := writeFile(t, dir, "b.mo", "return v.x * 10;")

	tests := []struct {
		name  string
		eval  Eval
		stdin string
		want  string
	}{
		{
			name: "expression",
			eval: Eval{Exprs: []string{"1 + 2 * 3"}},
			want: "7\n",
		},
		{
			name: "several_expressions",
			eval: Eval{Exprs: []string{"math.sqrt(16)", "'hi'", "1 > 2"}},
			want: "4\nhi\n0\n",
		},
		{
			name: "variables_persist",
			eval: Eval{Exprs: []string{"v.n = 5", "v.n + 1"}},
			want: "5\n6\n",
		},
		{
			name: "var_flag",
			eval: Eval{
				Exprs: []string{"v.speed * 2", "v.name"},
				Vars:  map[string]string{"speed": "1.25", "name": "steve"},
			},
			want: "2.5\nsteve\n",
		},
		{
			name: "files_are_one_program",
			eval: Eval{Source: []string{a, b}},
			want: "20\n",
		},
		{
			name:  "stdin_default",
			stdin: "v.y = 3; return v.y * v.y;",
			want:  "9\n",
		},
		{
			name: "expressions_then_files",
			eval: Eval{Exprs: []string{"v.x = 7"}, Source: []string{b}},
			want: "7\n70\n",
		},
		{
			name: "query_log",
			eval: Eval{Exprs: []string{"q.log('a', 1 + 1)"}},
			want: "a 2\n0\n",
		},
		{
			name: "folded",
			eval: Eval{Exprs: []string{"math.pi > 3 ? 'yes' : 'no'"}, Fold: true},
			want: "yes\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer

			if err := tt.eval.Run(testContext(t, tt.stdin, &out)); err != nil {
				t.Fatalf("Run() error = %v", err)
			}

			if got := out.String(); got != tt.want {
				t.Errorf("output = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEvalRunErrors(t *testing.T) {
	tests := []struct {
		name string
		eval Eval
		want error
	}{
		{"bad_variable", Eval{Exprs: []string{"1"}, Vars: map[string]string{"a.b": "1"}}, ErrVariable},
		{"missing_file", Eval{Source: []string{"does/not/exist.mo"}}, ErrReadSource},
		{"syntax", Eval{Exprs: []string{"1 +"}}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer

			err := tt.eval.Run(testContext(t, "", &out))
			if err == nil {
				t.Fatal("Run() error = nil")
			}

			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Errorf("Run() error = %v, want %v", err, tt.want)
			}

			var le *lang.Error
			if tt.want == nil && !errors.As(err, &le) {
				t.Errorf("Run() error = %T, want *lang.Error", err)
			}
		})
	}
}
