package repl

import (
	"slices"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"github.com/ardnew/molang/lang"
)

// ctrlCommands are the available control-mode commands.
var ctrlCommands = []string{"help", "list", "edit", "vars", "clear", "quit"}

func isIdentRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// wordBounds returns the identifier under the cursor and its byte offsets
// in input. The word is empty when the cursor is not touching an identifier.
func wordBounds(input string, cursor int) (word string, start, end int) {
	cursor = min(max(cursor, 0), len(input))

	for start = cursor; start > 0; {
		r, size := utf8.DecodeLastRuneInString(input[:start])
		if !isIdentRune(r) {
			break
		}

		start -= size
	}

	for end = cursor; end < len(input); {
		r, size := utf8.DecodeRuneInString(input[end:])
		if !isIdentRune(r) {
			break
		}

		end += size
	}

	return input[start:end], start, end
}

// parentPath returns the member-access chain that ends at wordStart, without
// its trailing dot. For "1 + q.pos.y" with the word "y" it returns "q.pos".
func parentPath(input string, wordStart int) string {
	prefix := input[:wordStart]
	if !strings.HasSuffix(prefix, ".") {
		return ""
	}

	prefix = strings.TrimSuffix(prefix, ".")

	pos := len(prefix)
	for pos > 0 {
		r, size := utf8.DecodeLastRuneInString(prefix[:pos])
		if r != '.' && !isIdentRune(r) {
			break
		}

		pos -= size
	}

	return strings.Trim(prefix[pos:], ".")
}

// resolve walks a dotted path through nested objects starting at scope.
func resolve(scope *lang.Scope, path string) (lang.Value, bool) {
	segments := strings.Split(path, ".")

	v, ok := scope.Lookup(segments[0])
	for _, seg := range segments[1:] {
		if !ok {
			break
		}

		obj, isObj := v.(lang.Object)
		if !isObj {
			return nil, false
		}

		v = obj.Get(seg)
		ok = v != nil
	}

	return v, ok
}

// childCandidates returns the names that can follow parent. An empty parent
// yields the root bindings plus the keywords.
func childCandidates(scope *lang.Scope, parent string) []string {
	if scope == nil {
		return nil
	}

	if parent == "" {
		return append(scope.Names(), lang.Keywords()...)
	}

	v, ok := resolve(scope, parent)
	if !ok {
		return nil
	}

	enum, ok := v.(lang.Enumerable)
	if !ok {
		return nil
	}

	var names []string
	for name := range enum.Entries() {
		names = append(names, name)
	}

	return names
}

// computeMatches ranks the candidates for the word under the cursor. An
// empty word yields no matches at the top level and every member after a
// dot.
func (m model) computeMatches() (
	matches fuzzy.Matches,
	candidates []string,
	wordStart, wordEnd int,
) {
	input := m.input.Value()

	word, wordStart, wordEnd := wordBounds(input, m.input.Position())

	parent := ""
	if m.mode == modeCtrl {
		candidates = ctrlCommands
	} else {
		parent = parentPath(input, wordStart)
		candidates = childCandidates(m.scope(), parent)
	}

	if len(candidates) == 0 || (word == "" && parent == "") {
		return nil, nil, wordStart, wordEnd
	}

	if word == "" {
		matches = make(fuzzy.Matches, len(candidates))
		for i, c := range candidates {
			matches[i] = fuzzy.Match{Str: c, Index: i}
		}

		return matches, candidates, wordStart, wordEnd
	}

	// Names are case-insensitive, so match against the lower-cased word.
	return fuzzy.Find(strings.ToLower(word), candidates), candidates, wordStart, wordEnd
}

// renderCandidateBar lays out the matches on one line no wider than width,
// ending in an ellipsis when some do not fit.
func renderCandidateBar(
	matches fuzzy.Matches,
	suggIdx int,
	tabActive bool,
	width int,
	isFunc func(string) bool,
) string {
	if len(matches) == 0 || width <= 0 {
		return ""
	}

	const sep = "  "

	ellipsis := hintStyle.Render("...")
	room := width - lipgloss.Width(ellipsis)

	var b strings.Builder

	used := 0

	for i, match := range matches {
		rendered := renderCandidate(match, tabActive && i == suggIdx, isFunc(match.Str))

		w := lipgloss.Width(rendered)
		if i > 0 {
			w += len(sep)
		}

		last := i == len(matches)-1
		if i > 0 && ((!last && used+w > room) || (last && used+w > width)) {
			b.WriteString(sep)
			b.WriteString(ellipsis)

			break
		}

		if i > 0 {
			b.WriteString(sep)
		}

		b.WriteString(rendered)

		used += w
	}

	return b.String()
}

// renderCandidate highlights the matched runes of a candidate. Functions get
// a "()" suffix that is not part of the completion.
func renderCandidate(match fuzzy.Match, selected, function bool) string {
	base, mark := suggestionStyle, matchStyle
	if selected {
		base, mark = selectedStyle, selectedMatchStyle
	}

	var b strings.Builder

	for i, r := range match.Str {
		if slices.Contains(match.MatchedIndexes, i) {
			b.WriteString(mark.Render(string(r)))
		} else {
			b.WriteString(base.Render(string(r)))
		}
	}

	if function {
		b.WriteString(base.Render("()"))
	}

	return b.String()
}

// describe returns a short preview of a bound value for the list command.
func describe(v lang.Value) string {
	switch v := v.(type) {
	case nil:
		return "<unbound>"
	case *lang.HostFunction:
		return v.Signature()
	case lang.Function:
		return "function"
	case lang.Enumerable:
		n := 0
		for range v.Entries() {
			n++
		}

		return "{ " + pluralize(n, "member") + " }"
	}

	s := lang.AsString(v)
	if len(s) > 40 {
		s = s[:37] + "..."
	}

	return v.Type().String() + " " + s
}

func pluralize(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}

	return strconv.Itoa(n) + " " + noun + "s"
}
