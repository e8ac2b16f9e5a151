package lang

import "strconv"

// Expr is a node of the abstract syntax tree.
//
// Nodes are immutable once built. Rewrites such as Transform and Fold return
// new trees and share unchanged subtrees with the original.
type Expr interface {
	String() string
	exprNode()
}

// DoubleExpr is a numeric literal.
type DoubleExpr struct {
	Value float64
}

// StringExpr is a single-quoted string literal.
type StringExpr struct {
	Value string
}

// IdentifierExpr names a scope entry. Name is lower-cased.
type IdentifierExpr struct {
	Name string
}

// AccessExpr reads Property from Object. Property is lower-cased.
type AccessExpr struct {
	Object   Expr
	Property string
}

// ArrayAccessExpr indexes Array by Index.
type ArrayAccessExpr struct {
	Array Expr
	Index Expr
}

// CallExpr invokes Function with unevaluated Args.
type CallExpr struct {
	Function Expr
	Args     []Expr
}

// BinaryExpr applies Op to Left and Right.
type BinaryExpr struct {
	Op    BinaryOp
	Left  Expr
	Right Expr
}

// UnaryExpr applies Op to Operand.
type UnaryExpr struct {
	Op      UnaryOp
	Operand Expr
}

// TernaryExpr is cond ? true : false.
type TernaryExpr struct {
	Cond  Expr
	True  Expr
	False Expr
}

// ScopeExpr is a braced statement block. It evaluates to a Function that runs
// Body when called.
type ScopeExpr struct {
	Body []Expr
}

// StatementExpr is a loop control statement.
type StatementExpr struct {
	Op StatementOp
}

func (*DoubleExpr) exprNode()      {}
func (*StringExpr) exprNode()      {}
func (*IdentifierExpr) exprNode()  {}
func (*AccessExpr) exprNode()      {}
func (*ArrayAccessExpr) exprNode() {}
func (*CallExpr) exprNode()        {}
func (*BinaryExpr) exprNode()      {}
func (*UnaryExpr) exprNode()       {}
func (*TernaryExpr) exprNode()     {}
func (*ScopeExpr) exprNode()       {}
func (*StatementExpr) exprNode()   {}

func (e *DoubleExpr) String() string      { return Format(e) }
func (e *StringExpr) String() string      { return Format(e) }
func (e *IdentifierExpr) String() string  { return Format(e) }
func (e *AccessExpr) String() string      { return Format(e) }
func (e *ArrayAccessExpr) String() string { return Format(e) }
func (e *CallExpr) String() string        { return Format(e) }
func (e *BinaryExpr) String() string      { return Format(e) }
func (e *UnaryExpr) String() string       { return Format(e) }
func (e *TernaryExpr) String() string     { return Format(e) }
func (e *ScopeExpr) String() string       { return Format(e) }
func (e *StatementExpr) String() string   { return Format(e) }

// BinaryOp is a binary operator.
type BinaryOp int

// Binary operators.
const (
	OpAnd BinaryOp = iota
	OpOr
	OpLess
	OpLessEq
	OpGreater
	OpGreaterEq
	OpMul
	OpDiv
	OpAdd
	OpSub
	OpEq
	OpNotEq
	OpArrow
	OpCoalesce
	OpAssign
	OpConditional
)

var binaryOps = map[TokenKind]BinaryOp{
	TokenAnd:       OpAnd,
	TokenOr:        OpOr,
	TokenLess:      OpLess,
	TokenLessEq:    OpLessEq,
	TokenGreater:   OpGreater,
	TokenGreaterEq: OpGreaterEq,
	TokenStar:      OpMul,
	TokenSlash:     OpDiv,
	TokenPlus:      OpAdd,
	TokenMinus:     OpSub,
	TokenEq:        OpEq,
	TokenNotEq:     OpNotEq,
	TokenArrow:     OpArrow,
	TokenCoalesce:  OpCoalesce,
	TokenAssign:    OpAssign,
}

// String returns the operator symbol.
func (op BinaryOp) String() string {
	switch op {
	case OpAnd:
		return "&&"
	case OpOr:
		return "||"
	case OpLess:
		return "<"
	case OpLessEq:
		return "<="
	case OpGreater:
		return ">"
	case OpGreaterEq:
		return ">="
	case OpMul:
		return "*"
	case OpDiv:
		return "/"
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpEq:
		return "=="
	case OpNotEq:
		return "!="
	case OpArrow:
		return "->"
	case OpCoalesce:
		return "??"
	case OpAssign:
		return "="
	case OpConditional:
		return "?"
	default:
		return "BinaryOp(" + strconv.Itoa(int(op)) + ")"
	}
}

// Precedence returns the binding strength of the operator.
// Higher binds tighter.
func (op BinaryOp) Precedence() int {
	switch op {
	case OpArrow:
		return 2000
	case OpMul, OpDiv:
		return 1000
	case OpAdd, OpSub:
		return 900
	case OpLess, OpLessEq, OpGreater, OpGreaterEq:
		return 700
	case OpEq, OpNotEq:
		return 500
	case OpAnd:
		return 300
	case OpOr:
		return 200
	case OpCoalesce:
		return 2
	default: // OpAssign, OpConditional
		return 1
	}
}

// UnaryOp is a prefix operator.
type UnaryOp int

// Unary operators.
const (
	UnaryNeg UnaryOp = iota
	UnaryNot
	UnaryReturn
)

// String returns the operator spelling.
func (op UnaryOp) String() string {
	switch op {
	case UnaryNeg:
		return "-"
	case UnaryNot:
		return "!"
	case UnaryReturn:
		return "return"
	default:
		return "UnaryOp(" + strconv.Itoa(int(op)) + ")"
	}
}

// StatementOp is a loop control statement.
type StatementOp int

// Loop control statements.
const (
	StatementBreak StatementOp = iota
	StatementContinue
)

// String returns the keyword.
func (op StatementOp) String() string {
	if op == StatementContinue {
		return "continue"
	}

	return "break"
}

// Children returns the direct subexpressions of e in source order.
func Children(e Expr) []Expr {
	switch n := e.(type) {
	case *AccessExpr:
		return []Expr{n.Object}
	case *ArrayAccessExpr:
		return []Expr{n.Array, n.Index}
	case *CallExpr:
		return append([]Expr{n.Function}, n.Args...)
	case *BinaryExpr:
		return []Expr{n.Left, n.Right}
	case *UnaryExpr:
		return []Expr{n.Operand}
	case *TernaryExpr:
		return []Expr{n.Cond, n.True, n.False}
	case *ScopeExpr:
		return n.Body
	default:
		return nil
	}
}

// Inspect traverses the tree rooted at e in depth-first order, calling fn
// before visiting the children of each node. If fn returns false, the
// children of that node are skipped.
func Inspect(e Expr, fn func(Expr) bool) {
	if e == nil || !fn(e) {
		return
	}

	for _, c := range Children(e) {
		Inspect(c, fn)
	}
}

// Transform rebuilds the tree rooted at e bottom-up. Each node is passed to
// fn after its children have been transformed; fn returns the replacement
// (or the node itself). Nodes whose children are unchanged are not copied,
// and the input tree is never modified.
func Transform(e Expr, fn func(Expr) Expr) Expr {
	if e == nil {
		return nil
	}

	switch n := e.(type) {
	case *AccessExpr:
		if obj := Transform(n.Object, fn); obj != n.Object {
			e = &AccessExpr{Object: obj, Property: n.Property}
		}

	case *ArrayAccessExpr:
		arr, idx := Transform(n.Array, fn), Transform(n.Index, fn)
		if arr != n.Array || idx != n.Index {
			e = &ArrayAccessExpr{Array: arr, Index: idx}
		}

	case *CallExpr:
		fun := Transform(n.Function, fn)
		args, changed := transformList(n.Args, fn)

		if fun != n.Function || changed {
			e = &CallExpr{Function: fun, Args: args}
		}

	case *BinaryExpr:
		l, r := Transform(n.Left, fn), Transform(n.Right, fn)
		if l != n.Left || r != n.Right {
			e = &BinaryExpr{Op: n.Op, Left: l, Right: r}
		}

	case *UnaryExpr:
		if o := Transform(n.Operand, fn); o != n.Operand {
			e = &UnaryExpr{Op: n.Op, Operand: o}
		}

	case *TernaryExpr:
		c, t, f := Transform(n.Cond, fn), Transform(n.True, fn), Transform(n.False, fn)
		if c != n.Cond || t != n.True || f != n.False {
			e = &TernaryExpr{Cond: c, True: t, False: f}
		}

	case *ScopeExpr:
		if body, changed := transformList(n.Body, fn); changed {
			e = &ScopeExpr{Body: body}
		}
	}

	return fn(e)
}

func transformList(list []Expr, fn func(Expr) Expr) ([]Expr, bool) {
	var out []Expr

	for i, x := range list {
		y := Transform(x, fn)
		if y != x && out == nil {
			out = make([]Expr, len(list))
			copy(out, list[:i])
		}

		if out != nil {
			out[i] = y
		}
	}

	if out == nil {
		return list, false
	}

	return out, true
}
