package repl

import (
	"slices"
	"testing"

	"github.com/ardnew/molang/lang"
	"github.com/ardnew/molang/log"
)

func testScope() *lang.Scope {
	e := lang.NewEngine()
	e.Query().Set("health", lang.NumberOf(20))
	e.Query().Set("log", lang.MustHostFunction("log", func(parts ...string) {}, false))
	e.Variable().Set("speed", lang.NumberOf(1.5))

	return e.Scope()
}

func TestWordBounds(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		cursor    int
		wantWord  string
		wantStart int
		wantEnd   int
	}{
		{"simple", "foo", 3, "foo", 0, 3},
		{"member", "q.heal", 6, "heal", 2, 6},
		{"after_plus", "a + fo", 6, "fo", 4, 6},
		{"after_paren", "math.cos(fo", 11, "fo", 9, 11},
		{"after_comma", "math.max(a, fo", 14, "fo", 12, 14},
		{"in_ternary", "x ? fo", 6, "fo", 4, 6},
		{"minus_is_boundary", "a-fo", 4, "fo", 2, 4},
		{"underscore", "for_ea", 6, "for_ea", 0, 6},
		{"empty_at_boundary", "a + ", 4, "", 4, 4},
		{"mid_word", "foobar", 3, "foobar", 0, 6},
		{"at_start", "foo", 0, "foo", 0, 3},
		{"empty_after_dot", "query.", 6, "", 6, 6},
		{"cursor_past_end", "ab", 10, "ab", 0, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			word, start, end := wordBounds(tt.input, tt.cursor)
			if word != tt.wantWord || start != tt.wantStart || end != tt.wantEnd {
				t.Errorf("wordBounds(%q, %d) = (%q, %d, %d), want (%q, %d, %d)",
					tt.input, tt.cursor, word, start, end,
					tt.wantWord, tt.wantStart, tt.wantEnd)
			}
		})
	}
}

func TestParentPath(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wordStart int
		want      string
	}{
		{"top_level", "fo", 0, ""},
		{"simple_chain", "q.pos.", 6, "q.pos"},
		{"after_operator", "1 + q.pos.", 10, "q.pos"},
		{"after_paren", "(v.a.", 5, "v.a"},
		{"no_chain", "a + ", 4, ""},
		{"assignment", "v.x = q.", 8, "q"},
		{"word_after_space", "q.x fo", 4, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parentPath(tt.input, tt.wordStart); got != tt.want {
				t.Errorf("parentPath(%q, %d) = %q, want %q",
					tt.input, tt.wordStart, got, tt.want)
			}
		})
	}
}

func TestChildCandidates(t *testing.T) {
	scope := testScope()

	tests := []struct {
		name    string
		parent  string
		want    []string
		wantNot []string
	}{
		{"root", "", []string{"math", "query", "q", "variable", "v", "loop", "return"}, nil},
		{"query", "query", []string{"health", "log"}, []string{"math"}},
		{"alias", "Q", []string{"health", "log"}, nil},
		{"math", "math", []string{"clamp", "pi", "random"}, nil},
		{"variable", "v", []string{"speed"}, nil},
		{"not_object", "q.health", nil, []string{"health"}},
		{"unbound", "nope", nil, []string{"health"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := childCandidates(scope, tt.parent)

			for _, w := range tt.want {
				if !slices.Contains(got, w) {
					t.Errorf("childCandidates(%q) = %v, missing %q", tt.parent, got, w)
				}
			}

			for _, w := range tt.wantNot {
				if slices.Contains(got, w) {
					t.Errorf("childCandidates(%q) = %v, unexpected %q", tt.parent, got, w)
				}
			}
		})
	}

	if got := childCandidates(nil, ""); got != nil {
		t.Errorf("childCandidates(nil) = %v, want nil", got)
	}
}

func TestComputeMatches(t *testing.T) {
	e := lang.NewEngine()
	e.Query().Set("health", lang.NumberOf(20))
	e.Query().Set("hurt_time", lang.NumberOf(0))

	tests := []struct {
		name  string
		mode  inputMode
		input string
		first string
		count int
	}{
		{"empty_top_level", modeEval, "", "", 0},
		{"member_prefix", modeEval, "q.hea", "health", 1},
		{"all_members", modeEval, "q.", "health", 2},
		{"case_insensitive", modeEval, "Q.HEA", "health", 1},
		{"command", modeCtrl, "qu", "quit", 1},
		{"empty_command", modeCtrl, "", "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newModel(t.Context(), e, NewHistory(""), log.Logger{})
			m.mode = tt.mode
			m.input.SetValue(tt.input)
			m.input.SetCursor(len(tt.input))

			matches, _, _, _ := m.computeMatches()
			if len(matches) != tt.count {
				t.Fatalf("computeMatches(%q) = %d matches, want %d", tt.input, len(matches), tt.count)
			}

			if tt.count > 0 && matches[0].Str != tt.first {
				t.Errorf("computeMatches(%q)[0] = %q, want %q", tt.input, matches[0].Str, tt.first)
			}
		})
	}
}

func TestCycle(t *testing.T) {
	e := lang.NewEngine()
	e.Query().Set("health", lang.NumberOf(20))
	e.Query().Set("hurt_time", lang.NumberOf(0))

	m := newModel(t.Context(), e, NewHistory(""), log.Logger{})
	m.input.SetValue("q.")
	m.input.SetCursor(2)
	refreshMatches(&m, false)

	m = m.cycle(1)
	if got := m.input.Value(); got != "q.health" {
		t.Fatalf("after Tab input = %q, want %q", got, "q.health")
	}

	m = m.cycle(1)
	if got := m.input.Value(); got != "q.hurt_time" {
		t.Fatalf("after second Tab input = %q, want %q", got, "q.hurt_time")
	}

	m = m.cycle(-1)
	if got := m.input.Value(); got != "q.health" {
		t.Fatalf("after Shift-Tab input = %q, want %q", got, "q.health")
	}
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		name string
		v    lang.Value
		want string
	}{
		{"nil", nil, "<unbound>"},
		{"number", lang.NumberOf(2), "number 2"},
		{"string", lang.String("hi"), "string hi"},
		{"host", lang.MustHostFunction("clamp", func(a, b, c float64) float64 { return a }, true),
			"clamp(f64, f64, f64) f64"},
		{"function", lang.FunctionFunc(func(*lang.Frame, lang.Args) lang.Value { return lang.Zero }), "function"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := describe(tt.v); got != tt.want {
				t.Errorf("describe() = %q, want %q", got, tt.want)
			}
		})
	}

	one := lang.NewScope()
	one.Set("a", lang.Zero)

	if got := describe(one); got != "{ 1 member }" {
		t.Errorf("describe(scope) = %q", got)
	}
}
