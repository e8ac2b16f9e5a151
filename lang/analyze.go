package lang

import "context"

// IsConstant reports whether e always evaluates to the same value against
// scope: it reads only constant bindings, calls only pure functions with
// constant arguments, and writes nothing.
//
// loop and for_each calls are constant only when every argument, including
// the block, is constant. A nil scope treats every identifier as
// non-constant.
func IsConstant(e Expr, scope *Scope) bool {
	switch n := e.(type) {
	case nil:
		return false

	case *DoubleExpr, *StringExpr, *StatementExpr:
		return true

	case *IdentifierExpr:
		return scope.IsConstant(n.Name)

	case *AccessExpr:
		if !IsConstant(n.Object, scope) {
			return false
		}

		if c, ok := resolve(n.Object, scope).(ConstantReporter); ok {
			return c.IsConstant(n.Property)
		}

		return false

	case *CallExpr:
		for _, arg := range n.Args {
			if !IsConstant(arg, scope) {
				return false
			}
		}

		if id, ok := n.Function.(*IdentifierExpr); ok &&
			(id.Name == "loop" || id.Name == "for_each") {
			return true
		}

		return IsConstant(n.Function, scope) && IsPure(resolve(n.Function, scope))

	case *BinaryExpr:
		if n.Op == OpAssign {
			return false
		}
	}

	for _, c := range Children(e) {
		if !IsConstant(c, scope) {
			return false
		}
	}

	return true
}

// resolve evaluates an expression already known to be constant.
func resolve(e Expr, scope *Scope) Value {
	if scope == nil {
		return Zero
	}

	v, _ := NewFrame(context.Background(), scope, nil).eval(e)

	return v
}

// IsContextDependent reports whether evaluating e may depend on anything
// besides its literals: any identifier read or function call. Access depends
// on context exactly when its object does.
func IsContextDependent(e Expr) bool {
	switch n := e.(type) {
	case nil, *DoubleExpr, *StringExpr, *StatementExpr:
		return false
	case *IdentifierExpr, *CallExpr:
		return true
	case *AccessExpr:
		return IsContextDependent(n.Object)
	}

	for _, c := range Children(e) {
		if IsContextDependent(c) {
			return true
		}
	}

	return false
}
