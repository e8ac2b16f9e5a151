package lang

import (
	"context"
	"log/slog"
	"math"

	"github.com/ardnew/molang/log"
)

// Flow is the control-flow outcome of evaluating an expression.
type Flow int

// Control-flow outcomes.
const (
	FlowNormal Flow = iota
	FlowReturn
	FlowBreak
	FlowContinue
)

// String returns the lower-case name of the outcome.
func (f Flow) String() string {
	switch f {
	case FlowReturn:
		return "return"
	case FlowBreak:
		return "break"
	case FlowContinue:
		return "continue"
	default:
		return "normal"
	}
}

// Frame is the context an expression is evaluated in: the current entity,
// the scope identifiers resolve against, and the host's context.Context.
type Frame struct {
	ctx    context.Context
	entity any
	scope  *Scope
	logger log.Logger
}

// NewFrame returns a frame evaluating against scope with the given entity.
// A nil scope is replaced by an empty one.
func NewFrame(ctx context.Context, scope *Scope, entity any, opts ...Option) *Frame {
	o := makeOptions(opts...)

	if scope == nil {
		scope = NewScope()
	}

	if ctx == nil {
		ctx = context.Background()
	}

	return &Frame{ctx: ctx, entity: entity, scope: scope, logger: o.logger}
}

// Child returns a frame sharing f's scope with a different entity.
func (f *Frame) Child(entity any) *Frame {
	c := *f
	c.entity = entity

	return &c
}

// Entity returns the host reference the frame evaluates against.
func (f *Frame) Entity() any { return f.entity }

// Scope returns the scope identifiers resolve against.
func (f *Frame) Scope() *Scope { return f.scope }

// Context returns the host context.
func (f *Frame) Context() context.Context { return f.ctx }

// Logger returns the frame's logger.
func (f *Frame) Logger() log.Logger { return f.logger }

// Evaluate runs exprs as a program with a fresh temp scope bound to both
// "temp" and "t". It returns the value of the first return statement, or
// the value of the last expression, or Zero for an empty program.
//
// The frame's scope is copied before temp is bound, so the caller's scope
// is never modified. Objects it holds (such as variable) are shared.
func (f *Frame) Evaluate(exprs []Expr) Value {
	scope := f.scope.Copy()
	temp := NewScope()

	scope.Set("temp", temp)
	scope.Set("t", temp)

	run := *f
	run.scope = scope

	result := run.run(exprs)

	f.logger.TraceContext(f.ctx, "evaluate",
		slog.Int("expr_count", len(exprs)),
		slog.String("result", AsString(result)))

	return result
}

// Evaluate runs exprs against scope with the given entity.
func Evaluate(ctx context.Context, scope *Scope, entity any, exprs []Expr, opts ...Option) Value {
	return NewFrame(ctx, scope, entity, opts...).Evaluate(exprs)
}

// EvaluateString parses and evaluates src. Parse errors are logged and
// yield Zero.
func EvaluateString(ctx context.Context, scope *Scope, entity any, src string, opts ...Option) Value {
	exprs, err := ParseCached(ctx, src, opts...)
	if err != nil {
		o := makeOptions(opts...)
		o.logger.DebugContext(ctx, "evaluate source", slog.Any("error", err))

		return Zero
	}

	return Evaluate(ctx, scope, entity, exprs, opts...)
}

// run evaluates top-level statements. Break and continue outside a loop are
// ignored.
func (f *Frame) run(exprs []Expr) Value {
	var result Value = Zero

	for _, e := range exprs {
		v, flow := f.eval(e)
		if flow == FlowReturn {
			return v
		}

		result = v
	}

	return result
}

// blockFunc is the Function produced by a braced block. It runs its body in
// the frame that created it.
type blockFunc struct {
	body  []Expr
	frame *Frame
}

// Type implements Value.
func (*blockFunc) Type() Type { return TypeFunction }

// Call implements Function.
func (b *blockFunc) Call(*Frame, Args) Value {
	v, _ := b.run()

	return v
}

// run executes the body. A return ends the block with its value; break and
// continue end the block and are reported to the caller.
func (b *blockFunc) run() (Value, Flow) {
	for _, e := range b.body {
		v, flow := b.frame.eval(e)

		switch flow {
		case FlowReturn:
			return v, FlowNormal
		case FlowBreak, FlowContinue:
			return Zero, flow
		}
	}

	return Zero, FlowNormal
}

// invoke calls fn with no arguments, reporting loop control from blocks.
func (f *Frame) invoke(fn Function) (Value, Flow) {
	if b, ok := fn.(*blockFunc); ok {
		return b.run()
	}

	return callFunction(fn, f, Args{}), FlowNormal
}

func callFunction(fn Function, f *Frame, args Args) Value {
	if v := fn.Call(f, args); v != nil {
		return v
	}

	return Zero
}

// eval evaluates e, returning its value and control-flow outcome.
// Any non-normal outcome of a subexpression ends evaluation of the
// enclosing expression and is passed up.
func (f *Frame) eval(e Expr) (Value, Flow) {
	switch n := e.(type) {
	case *DoubleExpr:
		return NumberOf(n.Value), FlowNormal

	case *StringExpr:
		return String(n.Value), FlowNormal

	case *IdentifierExpr:
		return f.scope.Get(n.Name), FlowNormal

	case *AccessExpr:
		obj, flow := f.eval(n.Object)
		if flow != FlowNormal {
			return obj, flow
		}

		if o, ok := obj.(Object); ok {
			if v := o.Get(n.Property); v != nil {
				return v, FlowNormal
			}
		}

		return Zero, FlowNormal

	case *ArrayAccessExpr:
		arr, flow := f.eval(n.Array)
		if flow != FlowNormal {
			return arr, flow
		}

		idx, flow := f.eval(n.Index)
		if flow != FlowNormal {
			return idx, flow
		}

		if a, ok := arr.(Array); ok {
			return index(a, AsNumber(idx)), FlowNormal
		}

		return Zero, FlowNormal

	case *CallExpr:
		return f.evalCall(n)

	case *BinaryExpr:
		return f.evalBinary(n)

	case *UnaryExpr:
		v, flow := f.eval(n.Operand)
		if flow != FlowNormal {
			return v, flow
		}

		switch n.Op {
		case UnaryNeg:
			return NumberOf(-AsNumber(v)), FlowNormal
		case UnaryNot:
			return Bool(!AsBool(v)), FlowNormal
		default: // UnaryReturn
			return v, FlowReturn
		}

	case *TernaryExpr:
		c, flow := f.eval(n.Cond)
		if flow != FlowNormal {
			return c, flow
		}

		if AsBool(c) {
			return f.eval(n.True)
		}

		return f.eval(n.False)

	case *ScopeExpr:
		return &blockFunc{body: n.Body, frame: f}, FlowNormal

	case *StatementExpr:
		if n.Op == StatementContinue {
			return Zero, FlowContinue
		}

		return Zero, FlowBreak
	}

	return Zero, FlowNormal
}

// index returns the element of a at idx truncated toward zero and clamped
// into range.
func index(a Array, idx float64) Value {
	n := a.Len()
	if n == 0 {
		return Zero
	}

	idx = math.Trunc(idx)

	switch {
	case idx < 0:
		return a.At(0)
	case idx >= float64(n):
		return a.At(n - 1)
	default:
		return a.At(int(idx))
	}
}

func (f *Frame) evalBinary(n *BinaryExpr) (Value, Flow) {
	// Operators that control evaluation of their right operand.
	switch n.Op {
	case OpAssign:
		r, flow := f.eval(n.Right)
		if flow != FlowNormal {
			return r, flow
		}

		if acc, ok := n.Left.(*AccessExpr); ok {
			f.assign(acc, r)
		}

		return r, FlowNormal

	case OpAnd, OpOr, OpCoalesce, OpArrow, OpConditional:
		l, flow := f.eval(n.Left)
		if flow != FlowNormal {
			return l, flow
		}

		return f.evalLazy(n, l)
	}

	l, flow := f.eval(n.Left)
	if flow != FlowNormal {
		return l, flow
	}

	r, flow := f.eval(n.Right)
	if flow != FlowNormal {
		return r, flow
	}

	return binary(n.Op, l, r), FlowNormal
}

// evalLazy finishes a short-circuit operator given its evaluated left side.
func (f *Frame) evalLazy(n *BinaryExpr, l Value) (Value, Flow) {
	switch n.Op {
	case OpAnd:
		if !AsBool(l) {
			return Zero, FlowNormal
		}

		r, flow := f.eval(n.Right)
		if flow != FlowNormal {
			return r, flow
		}

		return Bool(AsBool(r)), FlowNormal

	case OpOr:
		if AsBool(l) {
			return Bool(true), FlowNormal
		}

		r, flow := f.eval(n.Right)
		if flow != FlowNormal {
			return r, flow
		}

		return Bool(AsBool(r)), FlowNormal

	case OpCoalesce:
		if AsBool(l) {
			return l, FlowNormal
		}

		return f.eval(n.Right)

	case OpArrow:
		var entity any = l

		switch x := l.(type) {
		case Number:
			if x.f == 0 {
				return Zero, FlowNormal
			}
		case Entity:
			entity = x.V
		}

		return f.Child(entity).eval(n.Right)

	default: // OpConditional
		if !AsBool(l) {
			return Zero, FlowNormal
		}

		v, flow := f.eval(n.Right)
		if flow != FlowNormal {
			return v, flow
		}

		if fn, ok := v.(Function); ok {
			return f.invoke(fn)
		}

		return v, FlowNormal
	}
}

// binary applies an eager binary operator.
func binary(op BinaryOp, l, r Value) Value {
	switch op {
	case OpAdd:
		_, ls := l.(String)
		_, rs := r.(String)

		if ls || rs {
			return String(AsString(l) + AsString(r))
		}

		return NumberOf(AsNumber(l) + AsNumber(r))
	}

	return NumberOf(arith(op, AsNumber(l), AsNumber(r)))
}

// arith applies a numeric binary operator. Comparisons yield 1 or 0.
func arith(op BinaryOp, a, b float64) float64 {
	switch op {
	case OpAdd:
		return a + b
	case OpSub:
		return a - b
	case OpMul:
		return a * b
	case OpDiv:
		if b == 0 {
			return 0
		}

		return a / b
	case OpLess:
		return b2f(a < b)
	case OpLessEq:
		return b2f(a <= b)
	case OpGreater:
		return b2f(a > b)
	case OpGreaterEq:
		return b2f(a >= b)
	case OpEq:
		return b2f(a == b)
	case OpNotEq:
		return b2f(a != b)
	case OpAnd:
		return b2f(a != 0 && b != 0)
	case OpOr:
		return b2f(a != 0 || b != 0)
	}

	return 0
}

func b2f(b bool) float64 {
	if b {
		return 1
	}

	return 0
}

// assign writes v to the property named by acc if its object is mutable.
func (f *Frame) assign(acc *AccessExpr, v Value) bool {
	obj, flow := f.eval(acc.Object)
	if flow != FlowNormal {
		return false
	}

	if m, ok := obj.(MutableObject); ok {
		return m.Set(acc.Property, v)
	}

	return false
}

func (f *Frame) evalCall(n *CallExpr) (Value, Flow) {
	if id, ok := n.Function.(*IdentifierExpr); ok {
		switch id.Name {
		case "loop":
			return f.loop(n.Args), FlowNormal
		case "for_each":
			return f.forEach(n.Args), FlowNormal
		}
	}

	fn, flow := f.eval(n.Function)
	if flow != FlowNormal {
		return fn, flow
	}

	if callee, ok := fn.(Function); ok {
		return callFunction(callee, f, Args{exprs: n.Args, frame: f}), FlowNormal
	}

	return Zero, FlowNormal
}

// round rounds half up, matching loop counts.
func round(x float64) int {
	r := math.Floor(x + 0.5)

	switch {
	case r <= 0:
		return 0
	case r >= math.MaxInt32:
		return math.MaxInt32
	default:
		return int(r)
	}
}

// loop evaluates loop(count, block).
func (f *Frame) loop(args []Expr) Value {
	a := Args{exprs: args, frame: f}
	count := round(a.Number(0))

	fn, ok := a.Eval(1).(Function)
	if !ok {
		return Zero
	}

	for range count {
		if _, flow := f.invoke(fn); flow == FlowBreak {
			break
		}
	}

	return Zero
}

// forEach evaluates for_each(variable.access, array, block).
func (f *Frame) forEach(args []Expr) Value {
	a := Args{exprs: args, frame: f}

	acc, ok := a.Expr(0).(*AccessExpr)
	if !ok {
		return Zero
	}

	arr, ok := a.Eval(1).(Array)
	if !ok {
		return Zero
	}

	fn, ok := a.Eval(2).(Function)
	if !ok {
		return Zero
	}

	for _, elem := range arr.All() {
		f.assign(acc, elem)

		if _, flow := f.invoke(fn); flow == FlowBreak {
			break
		}
	}

	return Zero
}
