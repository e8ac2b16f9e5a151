package repl

import (
	"strings"
	"unicode/utf8"

	"github.com/ardnew/molang/lang"
)

// functionCall describes the call whose argument list contains the cursor.
type functionCall struct {
	name     string // dotted callee, such as "math.clamp"
	argIndex int    // zero-based argument under the cursor
	inCall   bool
}

// detectFunctionCall finds the innermost unclosed '(' before the cursor that
// follows a callee name and counts the top-level commas since it.
func detectFunctionCall(input string, cursor int) functionCall {
	cursor = min(max(cursor, 0), len(input))

	open, depth := -1, 0

	for i := cursor; i > 0 && open < 0; {
		r, size := utf8.DecodeLastRuneInString(input[:i])
		i -= size

		switch r {
		case ')':
			depth++
		case '(':
			if depth == 0 {
				open = i
			}

			depth--
		}
	}

	if open < 0 {
		return functionCall{}
	}

	start := open
	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(input[:start])
		if r != '.' && !isIdentRune(r) {
			break
		}

		start -= size
	}

	name := strings.Trim(input[start:open], ".")
	if name == "" {
		return functionCall{}
	}

	call := functionCall{name: name, inCall: true}

	depth = 0

	for _, r := range input[open+1 : cursor] {
		switch r {
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		case ',':
			if depth == 0 {
				call.argIndex++
			}
		}
	}

	return call
}

// getSignature describes the function bound at the dotted name. Host
// functions report their parameter kinds; other functions accept any
// arguments.
func getSignature(
	scope *lang.Scope,
	name string,
) (signature string, params []string) {
	if scope == nil {
		return "", nil
	}

	v, ok := resolve(scope, name)
	if !ok {
		return "", nil
	}

	switch fn := v.(type) {
	case *lang.HostFunction:
		kinds := fn.Params()
		params = make([]string, len(kinds))

		for i, k := range kinds {
			params[i] = k.String()
			if fn.Variadic() && i == len(kinds)-1 {
				params[i] = "..." + params[i]
			}
		}

		signature = name + "(" + strings.Join(params, ", ") + ")"
		if r := fn.Result(); r != lang.KindVoid {
			signature += " " + r.String()
		}

		return signature, params

	case lang.Function:
		return name + "(...any)", []string{"...any"}
	}

	return "", nil
}

// renderSignatureHint renders signature with the parameter at argIndex
// highlighted. A variadic parameter stays highlighted for every later
// argument.
func renderSignatureHint(
	signature string,
	params []string,
	argIndex int,
) string {
	open := strings.IndexByte(signature, '(')
	end := strings.LastIndexByte(signature, ')')

	if open < 0 || end < open {
		return signatureStyle.Render(signature)
	}

	var b strings.Builder

	b.WriteString(signatureNameStyle.Render(signature[:open]))
	b.WriteString(signatureStyle.Render("("))

	for i, p := range params {
		if i > 0 {
			b.WriteString(signatureStyle.Render(", "))
		}

		variadic := strings.HasPrefix(p, "...")
		if argIndex == i || (variadic && argIndex > i) {
			b.WriteString(currentParamStyle.Render(p))
		} else {
			b.WriteString(signatureStyle.Render(p))
		}
	}

	b.WriteString(signatureStyle.Render(signature[end:]))

	return b.String()
}
