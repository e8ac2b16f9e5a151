package lang

import (
	"reflect"
	"testing"
)

var fuzzSeeds = []string{
	"",
	"1 + 2 * 3",
	"math.clamp(q.x, 0, 1)",
	"v.a = 1; loop(3, { v.a = v.a * 2; }); return v.a;",
	"a ? b : c ? d",
	"t.list[0] -> q.health ?? 'none'",
	"!(a && b) || -c",
	"for_each(t.e, q.all, { (t.e -> q.hp < 1) ? continue; t.n = t.n + 1; })",
	"'unterminated",
	"{ { {} } }",
	"((((1))))",
}

func FuzzLexer(f *testing.F) {
	for _, s := range fuzzSeeds {
		f.Add(s)
	}

	f.Fuzz(func(t *testing.T, input string) {
		toks := NewLexer(input).Tokens()
		if len(toks) == 0 || toks[len(toks)-1].Kind != TokenEOF {
			t.Fatalf("token stream of %q does not end in EOF", input)
		}

		for _, tok := range toks {
			if tok.Start.Offset > tok.End.Offset || tok.End.Offset > len(input) {
				t.Fatalf("token %v has cursor %v..%v outside input", tok, tok.Start, tok.End)
			}
		}
	})
}

func FuzzParser(f *testing.F) {
	for _, s := range fuzzSeeds {
		f.Add(s)
	}

	f.Fuzz(func(t *testing.T, input string) {
		exprs, err := Parse(t.Context(), input)
		if err != nil {
			return
		}

		for _, e := range exprs {
			if e == nil {
				t.Fatalf("nil expression parsing %q", input)
			}
		}
	})
}

// Anything that parses must format to source that parses to the same tree.
func FuzzFormatRoundTrip(f *testing.F) {
	for _, s := range fuzzSeeds {
		f.Add(s)
	}

	f.Fuzz(func(t *testing.T, input string) {
		exprs, err := Parse(t.Context(), input)
		if err != nil {
			return
		}

		for _, want := range exprs {
			src := Format(want)

			got, err := ParseExpr(t.Context(), src)
			if err != nil {
				t.Fatalf("format of %q produced %q: %v", input, src, err)
			}

			if !reflect.DeepEqual(got, want) {
				t.Fatalf("%q reparsed as %s, want %s", src, got, want)
			}
		}
	})
}
