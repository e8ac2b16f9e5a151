package lang

import (
	"context"
	"log/slog"
)

// compiler holds compilation state.
type compiler struct {
	ctx    context.Context
	scope  *Scope
	params map[string]int
	temps  map[string]int
	out    *Compiled
	folded int
}

// record returns a statement storing the value of c as the current result.
func record(c code) stmt {
	if c.isStr() {
		str := c.str

		return func(s *state) Flow {
			s.str, s.isStr = str(s), true

			return FlowNormal
		}
	}

	num := c.num

	return func(s *state) Flow {
		s.num, s.isStr = num(s), false

		return FlowNormal
	}
}

// setZero records 0 as the current result.
func setZero(s *state) {
	s.num, s.isStr = 0, false
}

func (c *compiler) stmt(e Expr) (stmt, error) {
	switch n := e.(type) {
	case *UnaryExpr:
		if n.Op != UnaryReturn {
			break
		}

		v, err := c.expr(n.Operand)
		if err != nil {
			return nil, err
		}

		rec := record(v)

		return func(s *state) Flow {
			rec(s)

			return FlowReturn
		}, nil

	case *StatementExpr:
		flow := FlowBreak
		if n.Op == StatementContinue {
			flow = FlowContinue
		}

		return func(s *state) Flow {
			setZero(s)

			return flow
		}, nil

	case *BinaryExpr:
		if n.Op != OpConditional {
			break
		}

		cond, err := c.expr(n.Left)
		if err != nil {
			return nil, err
		}

		body, err := c.branch(n.Right)
		if err != nil {
			return nil, err
		}

		test := cond.asBool()

		return func(s *state) Flow {
			if test(s) {
				return body(s)
			}

			setZero(s)

			return FlowNormal
		}, nil

	case *TernaryExpr:
		if !hasControl(n.True) && !hasControl(n.False) {
			break
		}

		cond, err := c.expr(n.Cond)
		if err != nil {
			return nil, err
		}

		then, err := c.stmt(n.True)
		if err != nil {
			return nil, err
		}

		otherwise, err := c.stmt(n.False)
		if err != nil {
			return nil, err
		}

		test := cond.asBool()

		return func(s *state) Flow {
			if test(s) {
				return then(s)
			}

			return otherwise(s)
		}, nil

	case *CallExpr:
		if id, ok := n.Function.(*IdentifierExpr); ok && id.Name == "loop" {
			return c.loop(n)
		}
	}

	v, err := c.expr(e)
	if err != nil {
		return nil, err
	}

	return record(v), nil
}

// hasControl reports whether e is a statement that changes control flow.
func hasControl(e Expr) bool {
	switch n := e.(type) {
	case *StatementExpr, *ScopeExpr:
		return true
	case *UnaryExpr:
		return n.Op == UnaryReturn
	case *BinaryExpr:
		return n.Op == OpConditional && hasControl(n.Right)
	case *TernaryExpr:
		return hasControl(n.True) || hasControl(n.False)
	default:
		return false
	}
}

// branch compiles the body of a conditional statement. A block body runs
// like a called block: return ends it, break and continue pass through.
func (c *compiler) branch(e Expr) (stmt, error) {
	if b, ok := e.(*ScopeExpr); ok {
		return c.block(b)
	}

	return c.stmt(e)
}

func (c *compiler) block(b *ScopeExpr) (stmt, error) {
	body := make([]stmt, 0, len(b.Body))

	for _, e := range b.Body {
		s, err := c.stmt(e)
		if err != nil {
			return nil, err
		}

		body = append(body, s)
	}

	return func(s *state) Flow {
		for _, st := range body {
			switch st(s) {
			case FlowReturn:
				return FlowNormal
			case FlowBreak:
				setZero(s)

				return FlowBreak
			case FlowContinue:
				setZero(s)

				return FlowContinue
			}
		}

		setZero(s)

		return FlowNormal
	}, nil
}

func (c *compiler) loop(n *CallExpr) (stmt, error) {
	if len(n.Args) != 2 {
		return nil, ErrArity.With(slog.String("function", "loop"), slog.Int("args", len(n.Args)))
	}

	b, ok := n.Args[1].(*ScopeExpr)
	if !ok {
		return nil, ErrUnsupported.With(
			slog.String("construct", "loop body"),
			slog.String("expr", n.Args[1].String()))
	}

	count, err := c.expr(n.Args[0])
	if err != nil {
		return nil, err
	}

	body, err := c.block(b)
	if err != nil {
		return nil, err
	}

	num := count.asNum()

	return func(s *state) Flow {
		for range round(num(s)) {
			if body(s) == FlowBreak {
				break
			}
		}

		setZero(s)

		return FlowNormal
	}, nil
}

// unsupported reports a construct the compiler cannot specialize.
func unsupported(construct string, e Expr) error {
	return ErrUnsupported.With(
		slog.String("construct", construct),
		slog.String("expr", e.String()))
}

// fold evaluates e at compile time if it is invariant.
func (c *compiler) fold(e Expr) (code, bool) {
	switch e.(type) {
	case *DoubleExpr, *StringExpr:
	default:
		if c.referencesParams(e) {
			return code{}, false
		}
	}

	lit, ok := foldLiteral(c.ctx, e, c.scope)
	if !ok {
		return code{}, false
	}

	switch x := lit.(type) {
	case *DoubleExpr:
		if x != e {
			c.folded++
		}

		return numConst(x.Value), true
	case *StringExpr:
		if x != e {
			c.folded++
		}

		return strConst(x.Value), true
	}

	return code{}, false
}

// referencesParams reports whether e reads a parameter or temp variable.
func (c *compiler) referencesParams(e Expr) bool {
	found := false

	Inspect(e, func(x Expr) bool {
		if id, ok := x.(*IdentifierExpr); ok {
			if _, ok := c.params[id.Name]; ok || isTemp(id.Name) {
				found = true
			}
		}

		return !found
	})

	return found
}

func isTemp(name string) bool { return name == "t" || name == "temp" }

func (c *compiler) expr(e Expr) (code, error) {
	if v, ok := c.fold(e); ok {
		return v, nil
	}

	switch n := e.(type) {
	case *IdentifierExpr:
		return c.identifier(n)

	case *AccessExpr:
		return c.access(n)

	case *CallExpr:
		return c.call(n)

	case *BinaryExpr:
		return c.binary(n)

	case *UnaryExpr:
		if n.Op == UnaryReturn {
			return code{}, unsupported("return inside expression", e)
		}

		v, err := c.expr(n.Operand)
		if err != nil {
			return code{}, err
		}

		if n.Op == UnaryNot {
			test := v.asBool()

			return code{num: func(s *state) float64 { return b2f(!test(s)) }}, nil
		}

		num := v.asNum()

		return code{num: func(s *state) float64 { return -num(s) }}, nil

	case *TernaryExpr:
		return c.ternary(n)

	case *ArrayAccessExpr:
		return code{}, unsupported("array access", e)

	case *ScopeExpr:
		return code{}, unsupported("block outside loop or conditional", e)

	case *StatementExpr:
		return code{}, unsupported("loop control outside loop or conditional", e)
	}

	return code{}, unsupported("expression", e)
}

func (c *compiler) identifier(n *IdentifierExpr) (code, error) {
	if i, ok := c.params[n.Name]; ok {
		slot := c.out.slot[i]

		if c.out.sig.Params[i].Kind == KindString {
			return code{str: func(s *state) string { return s.strs[slot] }}, nil
		}

		return code{num: func(s *state) float64 { return s.nums[slot] }}, nil
	}

	if _, ok := c.scope.Lookup(n.Name); !ok {
		return code{}, ErrUnknownVariable.With(slog.String("name", n.Name))
	}

	return c.read(c.scope, n.Name, n)
}

// read emits a call-time read of a host binding.
func (c *compiler) read(obj Object, name string, e Expr) (code, error) {
	switch obj.Get(name).(type) {
	case Number:
		return code{num: func(*state) float64 { return AsNumber(obj.Get(name)) }}, nil
	case String:
		return code{str: func(*state) string { return AsString(obj.Get(name)) }}, nil
	default:
		return code{}, unsupported("non-primitive value", e)
	}
}

// temp returns the slot of a temp variable, allocating it on first use.
func (c *compiler) temp(name string) int {
	if i, ok := c.temps[name]; ok {
		return i
	}

	i := c.out.nnum
	c.out.nnum++
	c.temps[name] = i

	return i
}

// tempAccess returns the variable name if e is t.name or temp.name.
func (c *compiler) tempAccess(e *AccessExpr) (string, bool) {
	id, ok := e.Object.(*IdentifierExpr)
	if !ok || !isTemp(id.Name) {
		return "", false
	}

	if _, shadowed := c.params[id.Name]; shadowed {
		return "", false
	}

	return e.Property, true
}

// resolve finds the host value named by an identifier or access chain.
func (c *compiler) resolve(e Expr) (Value, error) {
	switch n := e.(type) {
	case *IdentifierExpr:
		if _, ok := c.params[n.Name]; ok {
			return nil, unsupported("property of a parameter", e)
		}

		v, ok := c.scope.Lookup(n.Name)
		if !ok {
			return nil, ErrUnknownVariable.With(slog.String("name", n.Name))
		}

		return v, nil

	case *AccessExpr:
		obj, err := c.resolve(n.Object)
		if err != nil {
			return nil, err
		}

		o, ok := obj.(Object)
		if !ok {
			return nil, unsupported("property of a non-object", e)
		}

		if s, ok := o.(*Scope); ok {
			v, found := s.Lookup(n.Property)
			if !found {
				return nil, ErrUnknownVariable.With(slog.String("name", n.String()))
			}

			return v, nil
		}

		return o.Get(n.Property), nil
	}

	return nil, unsupported("computed callee", e)
}

func (c *compiler) access(n *AccessExpr) (code, error) {
	if name, ok := c.tempAccess(n); ok {
		slot := c.temp(name)

		return code{num: func(s *state) float64 { return s.nums[slot] }}, nil
	}

	obj, err := c.resolve(n.Object)
	if err != nil {
		return code{}, err
	}

	o, ok := obj.(Object)
	if !ok {
		return code{}, unsupported("property of a non-object", n)
	}

	if s, ok := o.(*Scope); ok {
		if _, found := s.Lookup(n.Property); !found {
			return code{}, ErrUnknownVariable.With(slog.String("name", n.String()))
		}
	}

	return c.read(o, n.Property, n)
}

func (c *compiler) call(n *CallExpr) (code, error) {
	if id, ok := n.Function.(*IdentifierExpr); ok && (id.Name == "loop" || id.Name == "for_each") {
		return code{}, unsupported(id.Name+" inside expression", n)
	}

	callee, err := c.resolve(n.Function)
	if err != nil {
		return code{}, err
	}

	args := make([]code, len(n.Args))
	for i, a := range n.Args {
		if args[i], err = c.expr(a); err != nil {
			return code{}, err
		}
	}

	switch fn := callee.(type) {
	case *HostFunction:
		return c.hostCall(fn, args, n)
	case Function:
		frame := c.out.frame

		return code{num: func(s *state) float64 {
			vals := make([]Value, len(args))
			for i, a := range args {
				if a.isStr() {
					vals[i] = String(a.str(s))
				} else {
					vals[i] = NumberOf(a.num(s))
				}
			}

			return AsNumber(callFunction(fn, frame, ValueArgs(vals...)))
		}}, nil
	}

	return code{}, ErrNotFunction.With(slog.String("callee", n.Function.String()))
}

// hostCall emits a direct call of a typed host function.
func (c *compiler) hostCall(h *HostFunction, args []code, n *CallExpr) (code, error) {
	if !h.variadic && len(args) > len(h.params) {
		return code{}, ErrArity.With(
			slog.String("function", n.Function.String()),
			slog.Int("want", len(h.params)),
			slog.Int("have", len(args)))
	}

	// Pad missing trailing arguments with zero values.
	for len(args) < h.arity() {
		if h.paramKind(len(args)) == KindString {
			args = append(args, strConst(""))
		} else {
			args = append(args, numConst(0))
		}
	}

	switch {
	case h.f0 != nil:
		f := h.f0

		return code{num: func(*state) float64 { return NumberOf(f()).f }}, nil
	case h.f1 != nil:
		f, a := h.f1, args[0].asNum()

		return code{num: func(s *state) float64 { return NumberOf(f(a(s))).f }}, nil
	case h.f2 != nil:
		f, a, b := h.f2, args[0].asNum(), args[1].asNum()

		return code{num: func(s *state) float64 { return NumberOf(f(a(s), b(s))).f }}, nil
	case h.f3 != nil:
		f, a, b, d := h.f3, args[0].asNum(), args[1].asNum(), args[2].asNum()

		return code{num: func(s *state) float64 { return NumberOf(f(a(s), b(s), d(s))).f }}, nil
	}

	conv := make([]func(*state) any, len(args))

	for i, a := range args {
		switch k := h.paramKind(i); {
		case k == KindString:
			str := a.asStr()
			conv[i] = func(s *state) any { return str(s) }
		case k == KindValue && a.isStr():
			str := a.str
			conv[i] = func(s *state) any { return String(str(s)) }
		default:
			num := a.asNum()
			conv[i] = func(s *state) any { return fromFloat(k, num(s)) }
		}
	}

	frame := c.out.frame
	in := func(s *state) []any {
		vals := make([]any, len(conv))
		for i, f := range conv {
			vals[i] = f(s)
		}

		return vals
	}

	if h.result == KindString {
		return code{str: func(s *state) string {
			str, _ := h.invoke(frame, in(s)).(string)

			return str
		}}, nil
	}

	return code{num: func(s *state) float64 {
		return AsNumber(ValueOf(h.invoke(frame, in(s))))
	}}, nil
}

func (c *compiler) binary(n *BinaryExpr) (code, error) {
	switch n.Op {
	case OpAssign:
		return c.assign(n)
	case OpArrow:
		return code{}, unsupported("arrow operator", n)
	case OpConditional:
		cond, err := c.expr(n.Left)
		if err != nil {
			return code{}, err
		}

		v, err := c.expr(n.Right)
		if err != nil {
			return code{}, err
		}

		if v.isStr() {
			return code{}, unsupported("string conditional", n)
		}

		test, num := cond.asBool(), v.num

		return code{num: func(s *state) float64 {
			if test(s) {
				return num(s)
			}

			return 0
		}}, nil
	}

	l, err := c.expr(n.Left)
	if err != nil {
		return code{}, err
	}

	r, err := c.expr(n.Right)
	if err != nil {
		return code{}, err
	}

	switch n.Op {
	case OpAnd:
		a, b := l.asBool(), r.asBool()

		return code{num: func(s *state) float64 { return b2f(a(s) && b(s)) }}, nil

	case OpOr:
		a, b := l.asBool(), r.asBool()

		return code{num: func(s *state) float64 { return b2f(a(s) || b(s)) }}, nil

	case OpCoalesce:
		if l.isStr() != r.isStr() {
			return code{}, unsupported("mixed-type coalesce", n)
		}

		if l.isStr() {
			a, b := l.str, r.str

			return code{str: func(s *state) string {
				if v := a(s); v != "" {
					return v
				}

				return b(s)
			}}, nil
		}

		a, b := l.num, r.num

		return code{num: func(s *state) float64 {
			if v := a(s); v != 0 {
				return v
			}

			return b(s)
		}}, nil

	case OpAdd:
		if l.isStr() || r.isStr() {
			a, b := l.asStr(), r.asStr()

			return code{str: func(s *state) string { return a(s) + b(s) }}, nil
		}
	}

	op, a, b := n.Op, l.asNum(), r.asNum()

	switch op {
	case OpAdd:
		return code{num: func(s *state) float64 { return NumberOf(a(s) + b(s)).f }}, nil
	case OpSub:
		return code{num: func(s *state) float64 { return NumberOf(a(s) - b(s)).f }}, nil
	case OpMul:
		return code{num: func(s *state) float64 { return NumberOf(a(s) * b(s)).f }}, nil
	case OpLess:
		return code{num: func(s *state) float64 { return b2f(a(s) < b(s)) }}, nil
	case OpGreater:
		return code{num: func(s *state) float64 { return b2f(a(s) > b(s)) }}, nil
	}

	return code{num: func(s *state) float64 { return NumberOf(arith(op, a(s), b(s))).f }}, nil
}

func (c *compiler) assign(n *BinaryExpr) (code, error) {
	v, err := c.expr(n.Right)
	if err != nil {
		return code{}, err
	}

	acc, ok := n.Left.(*AccessExpr)
	if !ok {
		// Assignment to anything else is dropped.
		return v, nil
	}

	if name, ok := c.tempAccess(acc); ok {
		if v.isStr() {
			return code{}, unsupported("string temp variable", n)
		}

		slot, num := c.temp(name), v.num

		return code{num: func(s *state) float64 {
			x := num(s)
			s.nums[slot] = x

			return x
		}}, nil
	}

	obj, err := c.resolve(acc.Object)
	if err != nil {
		return code{}, err
	}

	m, ok := obj.(MutableObject)
	if !ok {
		return v, nil
	}

	prop := acc.Property

	if v.isStr() {
		str := v.str

		return code{str: func(s *state) string {
			x := str(s)
			m.Set(prop, String(x))

			return x
		}}, nil
	}

	num := v.num

	return code{num: func(s *state) float64 {
		x := num(s)
		m.Set(prop, NumberOf(x))

		return x
	}}, nil
}

func (c *compiler) ternary(n *TernaryExpr) (code, error) {
	cond, err := c.expr(n.Cond)
	if err != nil {
		return code{}, err
	}

	t, err := c.expr(n.True)
	if err != nil {
		return code{}, err
	}

	f, err := c.expr(n.False)
	if err != nil {
		return code{}, err
	}

	if t.isStr() != f.isStr() {
		return code{}, unsupported("mixed-type ternary", n)
	}

	test := cond.asBool()

	if t.isStr() {
		a, b := t.str, f.str

		return code{str: func(s *state) string {
			if test(s) {
				return a(s)
			}

			return b(s)
		}}, nil
	}

	a, b := t.num, f.num

	return code{num: func(s *state) float64 {
		if test(s) {
			return a(s)
		}

		return b(s)
	}}, nil
}
