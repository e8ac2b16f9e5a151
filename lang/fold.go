package lang

import (
	"context"
	"log/slog"
)

// Fold returns exprs with invariant subtrees replaced by literals.
//
// A subtree is invariant if it is not context-dependent, or if it is constant
// against scope (it reads constant bindings and calls pure functions only).
// Only subtrees that evaluate normally to a number or string are replaced.
// The input trees are not modified.
func Fold(ctx context.Context, exprs []Expr, scope *Scope, opts ...Option) []Expr {
	o := makeOptions(opts...)
	folded := 0

	fn := func(e Expr) Expr {
		if lit, ok := foldLiteral(ctx, e, scope); ok {
			if lit != e {
				folded++
			}

			return lit
		}

		return e
	}

	out := make([]Expr, len(exprs))
	for i, e := range exprs {
		out[i] = Transform(e, fn)
	}

	o.logger.TraceContext(ctx, "fold complete",
		slog.Int("expr_count", len(exprs)),
		slog.Int("folded", folded))

	return out
}

// foldLiteral evaluates e once if it is invariant and returns the resulting
// literal.
func foldLiteral(ctx context.Context, e Expr, scope *Scope) (Expr, bool) {
	switch e.(type) {
	case *DoubleExpr, *StringExpr:
		return e, true
	case *StatementExpr, *ScopeExpr:
		return nil, false
	}

	if IsContextDependent(e) && !IsConstant(e, scope) {
		return nil, false
	}

	if scope == nil {
		scope = NewScope()
	}

	v, flow := NewFrame(ctx, scope.Copy(), nil).eval(e)
	if flow != FlowNormal {
		return nil, false
	}

	return literal(v)
}

// literal returns the literal expression for a primitive value.
func literal(v Value) (Expr, bool) {
	switch x := v.(type) {
	case Number:
		return &DoubleExpr{Value: x.f}, true
	case String:
		return &StringExpr{Value: string(x)}, true
	default:
		return nil, false
	}
}
