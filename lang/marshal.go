package lang

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-yaml"
)

// ToNative converts e to nested maps and slices of plain Go values, suitable
// for JSON or YAML encoding. Every node is a map with a "node" key naming
// its kind.
func ToNative(e Expr) any {
	switch e := e.(type) {
	case nil:
		return nil

	case *DoubleExpr:
		return map[string]any{"node": "double", "value": e.Value}

	case *StringExpr:
		return map[string]any{"node": "string", "value": e.Value}

	case *IdentifierExpr:
		return map[string]any{"node": "identifier", "name": e.Name}

	case *AccessExpr:
		return map[string]any{
			"node":     "access",
			"object":   ToNative(e.Object),
			"property": e.Property,
		}

	case *ArrayAccessExpr:
		return map[string]any{
			"node":  "index",
			"array": ToNative(e.Array),
			"index": ToNative(e.Index),
		}

	case *CallExpr:
		return map[string]any{
			"node":     "call",
			"function": ToNative(e.Function),
			"args":     nativeList(e.Args),
		}

	case *BinaryExpr:
		return map[string]any{
			"node":  "binary",
			"op":    e.Op.String(),
			"left":  ToNative(e.Left),
			"right": ToNative(e.Right),
		}

	case *UnaryExpr:
		return map[string]any{
			"node":    "unary",
			"op":      e.Op.String(),
			"operand": ToNative(e.Operand),
		}

	case *TernaryExpr:
		return map[string]any{
			"node":  "ternary",
			"cond":  ToNative(e.Cond),
			"true":  ToNative(e.True),
			"false": ToNative(e.False),
		}

	case *ScopeExpr:
		return map[string]any{"node": "scope", "body": nativeList(e.Body)}

	case *StatementExpr:
		return map[string]any{"node": "statement", "op": e.Op.String()}

	default:
		return fmt.Sprintf("%T", e)
	}
}

func nativeList(exprs []Expr) []any {
	list := make([]any, len(exprs))
	for i, e := range exprs {
		list[i] = ToNative(e)
	}

	return list
}

// FormatJSON writes the program's syntax trees as a JSON array. A positive
// indent pretty-prints with that many spaces.
func FormatJSON(w io.Writer, exprs []Expr, indent int) error {
	var (
		data []byte
		err  error
	)

	if indent > 0 {
		data, err = json.MarshalIndent(nativeList(exprs), "", strings.Repeat(" ", indent))
	} else {
		data, err = json.Marshal(nativeList(exprs))
	}

	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, string(data))

	return err
}

// FormatYAML writes the program's syntax trees as a YAML sequence. A
// non-positive indent selects flow style.
func FormatYAML(ctx context.Context, w io.Writer, exprs []Expr, indent int) error {
	var opts []yaml.EncodeOption
	if indent > 0 {
		opts = append(opts, yaml.Indent(indent))
	} else {
		opts = append(opts, yaml.Flow(true))
	}

	data, err := yaml.MarshalContext(ctx, nativeList(exprs), opts...)
	if err != nil {
		return err
	}

	_, err = fmt.Fprint(w, string(data))

	return err
}
