package lang

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Precedence levels of nodes that are not binary operators.
const (
	precReturn  = 0
	precTernary = 1
	precAtom    = 1 << 16
)

// Format returns the source form of e. Parentheses are written only where
// the parser needs them, so parsing the result yields an equal tree.
func Format(e Expr) string {
	var sb strings.Builder

	formatExpr(&sb, e)

	return sb.String()
}

// FormatProgram writes each statement of a program on its own line,
// terminated by ';'.
func FormatProgram(w io.Writer, exprs []Expr) error {
	for _, e := range exprs {
		if _, err := fmt.Fprintf(w, "%s;\n", Format(e)); err != nil {
			return err
		}
	}

	return nil
}

// precedence returns the binding strength of e as an operand.
func precedence(e Expr) int {
	switch e := e.(type) {
	case *BinaryExpr:
		return e.Op.Precedence()
	case *TernaryExpr:
		return precTernary
	case *UnaryExpr:
		if e.Op == UnaryReturn {
			return precReturn
		}

		return precAtom
	default:
		return precAtom
	}
}

// isPostfixBase reports whether e may be followed by '[' or '(' without
// parentheses.
func isPostfixBase(e Expr) bool {
	switch e := e.(type) {
	case *UnaryExpr, *BinaryExpr, *TernaryExpr:
		return false
	case *DoubleExpr:
		return e.Value >= 0
	default:
		return true
	}
}

func formatParen(sb *strings.Builder, e Expr, paren bool) {
	if paren {
		sb.WriteByte('(')
	}

	formatExpr(sb, e)

	if paren {
		sb.WriteByte(')')
	}
}

func formatExpr(sb *strings.Builder, e Expr) {
	switch e := e.(type) {
	case nil:
		sb.WriteString("0")

	case *DoubleExpr:
		sb.WriteString(strconv.FormatFloat(e.Value, 'f', -1, 64))

	case *StringExpr:
		sb.WriteByte('\'')
		sb.WriteString(e.Value)
		sb.WriteByte('\'')

	case *IdentifierExpr:
		sb.WriteString(e.Name)

	case *AccessExpr:
		formatExpr(sb, e.Object)
		sb.WriteByte('.')
		sb.WriteString(e.Property)

	case *ArrayAccessExpr:
		formatParen(sb, e.Array, !isPostfixBase(e.Array))
		sb.WriteByte('[')
		formatExpr(sb, e.Index)
		sb.WriteByte(']')

	case *CallExpr:
		formatParen(sb, e.Function, !isPostfixBase(e.Function))
		sb.WriteByte('(')

		for i, arg := range e.Args {
			if i > 0 {
				sb.WriteString(", ")
			}

			formatExpr(sb, arg)
		}

		sb.WriteByte(')')

	case *UnaryExpr:
		formatUnary(sb, e)

	case *BinaryExpr:
		formatBinary(sb, e)

	case *TernaryExpr:
		formatParen(sb, e.Cond, precedence(e.Cond) <= precTernary)
		sb.WriteString(" ? ")
		// A bare conditional here would take the ':' branch for itself.
		formatParen(sb, e.True, isConditional(e.True))
		sb.WriteString(" : ")
		formatExpr(sb, e.False)

	case *ScopeExpr:
		if len(e.Body) == 0 {
			sb.WriteString("{}")

			return
		}

		sb.WriteString("{ ")

		for _, s := range e.Body {
			formatExpr(sb, s)
			sb.WriteString("; ")
		}

		sb.WriteByte('}')

	case *StatementExpr:
		sb.WriteString(e.Op.String())

	default:
		fmt.Fprintf(sb, "<%T>", e)
	}
}

func formatUnary(sb *strings.Builder, e *UnaryExpr) {
	if e.Op == UnaryReturn {
		sb.WriteString("return ")
		formatExpr(sb, e.Operand)

		return
	}

	sb.WriteString(e.Op.String())

	switch operand := e.Operand.(type) {
	case *DoubleExpr:
		// -3 would be read back as a literal.
		formatParen(sb, operand, e.Op == UnaryNeg || operand.Value < 0)
	case *UnaryExpr:
		formatParen(sb, operand, operand.Op == UnaryReturn)
	default:
		formatParen(sb, operand, precedence(operand) < precAtom)
	}
}

func formatBinary(sb *strings.Builder, e *BinaryExpr) {
	prec := e.Op.Precedence()

	switch e.Op {
	case OpAssign:
		formatParen(sb, e.Left, precedence(e.Left) <= prec)
		sb.WriteString(" = ")
		// The right side of '=' is parsed as a full expression.
		formatParen(sb, e.Right, false)

		return

	case OpConditional:
		formatParen(sb, e.Left, precedence(e.Left) <= prec)
		sb.WriteString(" ? ")
		formatExpr(sb, e.Right)

		return
	}

	formatParen(sb, e.Left, precedence(e.Left) < prec)
	sb.WriteByte(' ')
	sb.WriteString(e.Op.String())
	sb.WriteByte(' ')
	formatParen(sb, e.Right, precedence(e.Right) <= prec)
}

func isConditional(e Expr) bool {
	b, ok := e.(*BinaryExpr)

	return ok && b.Op == OpConditional
}

// PrintTree writes an indented outline of the program's syntax trees.
func PrintTree(w io.Writer, exprs []Expr) error {
	var sb strings.Builder

	for _, e := range exprs {
		printNode(&sb, e, 0)
	}

	_, err := io.WriteString(w, sb.String())

	return err
}

func printNode(sb *strings.Builder, e Expr, depth int) {
	sb.WriteString(strings.Repeat("  ", depth))

	switch e := e.(type) {
	case *DoubleExpr:
		fmt.Fprintf(sb, "Double %s\n", Format(e))
	case *StringExpr:
		fmt.Fprintf(sb, "String %q\n", e.Value)
	case *IdentifierExpr:
		fmt.Fprintf(sb, "Identifier %s\n", e.Name)
	case *AccessExpr:
		fmt.Fprintf(sb, "Access .%s\n", e.Property)
	case *ArrayAccessExpr:
		sb.WriteString("Index\n")
	case *CallExpr:
		fmt.Fprintf(sb, "Call (%d)\n", len(e.Args))
	case *BinaryExpr:
		fmt.Fprintf(sb, "Binary %s\n", e.Op)
	case *UnaryExpr:
		fmt.Fprintf(sb, "Unary %s\n", e.Op)
	case *TernaryExpr:
		sb.WriteString("Ternary\n")
	case *ScopeExpr:
		fmt.Fprintf(sb, "Scope (%d)\n", len(e.Body))
	case *StatementExpr:
		fmt.Fprintf(sb, "Statement %s\n", e.Op)
	default:
		fmt.Fprintf(sb, "%T\n", e)
	}

	for _, c := range Children(e) {
		printNode(sb, c, depth+1)
	}
}
