package lang

import (
	"context"
	"log/slog"
	"reflect"
	"strings"
)

// Param is one positional parameter of a compiled function.
type Param struct {
	Name string `json:"name" yaml:"name"`
	Kind Kind   `json:"kind" yaml:"kind"`
}

// Signature is the parameter contract of a compiled function.
//
// Parameter names are matched against identifiers in the source. Since the
// parser lower-cases identifiers, names must be lower-case.
type Signature struct {
	Params []Param `json:"params" yaml:"params"`
	Result Kind    `json:"result" yaml:"result"`
}

// String returns the signature as "(a f64, b f64) bool".
func (sig Signature) String() string {
	var sb strings.Builder

	sb.WriteByte('(')

	for i, p := range sig.Params {
		if i > 0 {
			sb.WriteString(", ")
		}

		sb.WriteString(p.Name)
		sb.WriteByte(' ')
		sb.WriteString(p.Kind.String())
	}

	sb.WriteString(") ")
	sb.WriteString(sig.Result.String())

	return sb.String()
}

func (sig Signature) validate() error {
	seen := make(map[string]bool, len(sig.Params))

	for i, p := range sig.Params {
		attrs := []slog.Attr{slog.Int("index", i), slog.String("name", p.Name)}

		switch {
		case !isName(p.Name):
			return ErrSignature.With(append(attrs, slog.String("issue", "invalid parameter name"))...)
		case seen[p.Name]:
			return ErrSignature.With(append(attrs, slog.String("issue", "duplicate parameter"))...)
		case p.Kind == KindVoid || p.Kind == KindValue || p.Kind.Type() == nil:
			return ErrSignature.With(append(attrs, slog.String("kind", p.Kind.String()))...)
		}

		seen[p.Name] = true
	}

	if sig.Result == KindValue || (sig.Result != KindVoid && sig.Result.Type() == nil) {
		return ErrSignature.With(slog.String("result", sig.Result.String()))
	}

	return nil
}

// isName reports whether s is a lower-case identifier.
func isName(s string) bool {
	if s == "" || isDigit(s[0]) {
		return false
	}

	for i := range len(s) {
		if c := s[i]; c != '_' && !isDigit(c) && (c < 'a' || c > 'z') {
			return false
		}
	}

	return true
}

// Compiled is a program specialized to a Signature. It is safe for
// concurrent use: each call allocates its own slots.
type Compiled struct {
	sig   Signature
	body  []stmt
	slot  []int // slot index of each parameter
	nnum  int   // numeric slots: numeric parameters and temp variables
	nstr  int   // string slots: string parameters
	frame *Frame
}

// state holds the slots of one call and the current result.
type state struct {
	nums  []float64
	strs  []string
	num   float64
	str   string
	isStr bool
}

// code is a compiled expression. Exactly one of num and str is set,
// according to the static type of the expression.
type code struct {
	num func(*state) float64
	str func(*state) string
}

func (c code) isStr() bool { return c.str != nil }

// asNum returns c coerced to a number. Strings coerce to 0.
func (c code) asNum() func(*state) float64 {
	if c.num != nil {
		return c.num
	}

	return func(*state) float64 { return 0 }
}

// asStr returns c coerced to a string.
func (c code) asStr() func(*state) string {
	if c.str != nil {
		return c.str
	}

	num := c.num

	return func(s *state) string { return formatNumber(num(s)) }
}

// asBool returns the truth value of c.
func (c code) asBool() func(*state) bool {
	if c.str != nil {
		str := c.str

		return func(s *state) bool { return str(s) != "" }
	}

	num := c.num

	return func(s *state) bool { return num(s) != 0 }
}

func numConst(f float64) code {
	f = NumberOf(f).f

	return code{num: func(*state) float64 { return f }}
}

func strConst(v string) code {
	return code{str: func(*state) string { return v }}
}

// stmt is a compiled statement. It records its value in the state and
// reports its control-flow outcome.
type stmt func(*state) Flow

// Compile specializes exprs to sig.
//
// Identifiers resolve to parameters first, then to bindings of the scope
// given by WithScope (by default, a scope holding only math). t.x and temp.x
// are call-local numeric variables. Invariant subtrees are evaluated once at
// compile time.
//
// for_each, array indexing, the arrow operator, and blocks outside loop or
// conditional statements report ErrUnsupported.
func Compile(ctx context.Context, exprs []Expr, sig Signature, opts ...Option) (*Compiled, error) {
	o := makeOptions(opts...)

	if err := sig.validate(); err != nil {
		return nil, err
	}

	scope := o.scope
	if scope == nil {
		scope = NewScope()
		scope.SetConstant("math", MathScope())
	}

	c := &compiler{
		ctx:    ctx,
		scope:  scope,
		params: make(map[string]int, len(sig.Params)),
		temps:  make(map[string]int),
		out: &Compiled{
			sig:  sig,
			slot: make([]int, len(sig.Params)),
			frame: NewFrame(context.WithoutCancel(ctx), scope, nil,
				WithLogger(o.logger)),
		},
	}

	for i, p := range sig.Params {
		c.params[p.Name] = i

		if p.Kind == KindString {
			c.out.slot[i] = c.out.nstr
			c.out.nstr++
		} else {
			c.out.slot[i] = c.out.nnum
			c.out.nnum++
		}
	}

	for _, e := range exprs {
		s, err := c.stmt(e)
		if err != nil {
			o.logger.TraceContext(ctx, "compile failed", slog.Any("error", err))

			return nil, err
		}

		c.out.body = append(c.out.body, s)

		// Statements after a top-level return are unreachable.
		if u, ok := e.(*UnaryExpr); ok && u.Op == UnaryReturn {
			break
		}
	}

	o.logger.TraceContext(ctx, "compile complete",
		slog.String("signature", sig.String()),
		slog.Int("stmt_count", len(c.out.body)),
		slog.Int("temp_count", len(c.temps)),
		slog.Int("folded", c.folded))

	return c.out, nil
}

// CompileString parses src and compiles it to sig.
func CompileString(ctx context.Context, src string, sig Signature, opts ...Option) (*Compiled, error) {
	exprs, err := Parse(ctx, src, opts...)
	if err != nil {
		return nil, err
	}

	return Compile(ctx, exprs, sig, opts...)
}

// Signature returns the contract the program was compiled to.
func (p *Compiled) Signature() Signature { return p.sig }

// exec runs the program on a prepared state.
func (p *Compiled) exec(s *state) {
	setZero(s)

	for _, st := range p.body {
		if st(s) == FlowReturn {
			return
		}
	}
}

func (p *Compiled) newState() *state {
	return &state{nums: make([]float64, p.nnum), strs: make([]string, p.nstr)}
}

// result converts the recorded value to the result kind.
func (p *Compiled) result(s *state) any {
	switch p.sig.Result {
	case KindVoid:
		return nil
	case KindString:
		if s.isStr {
			return s.str
		}

		return formatNumber(s.num)
	case KindBool:
		if s.isStr {
			return s.str != ""
		}

		return s.num != 0
	default:
		if s.isStr {
			return fromFloat(p.sig.Result, 0)
		}

		return fromFloat(p.sig.Result, s.num)
	}
}

// Call invokes the program with positional arguments matching the
// signature. Numeric parameters accept any Go number or bool; string
// parameters accept strings.
func (p *Compiled) Call(args ...any) (any, error) {
	if len(args) != len(p.sig.Params) {
		return nil, ErrArity.With(
			slog.Int("want", len(p.sig.Params)),
			slog.Int("have", len(args)))
	}

	s := p.newState()

	for i, a := range args {
		param := p.sig.Params[i]

		if param.Kind == KindString {
			str, ok := a.(string)
			if !ok {
				return nil, ErrArgumentMismatch.With(
					slog.String("param", param.Name),
					slog.String("kind", param.Kind.String()))
			}

			s.strs[p.slot[i]] = str

			continue
		}

		f, ok := toFloat(a)
		if !ok {
			return nil, ErrArgumentMismatch.With(
				slog.String("param", param.Name),
				slog.String("kind", param.Kind.String()))
		}

		s.nums[p.slot[i]] = narrow(param.Kind, f)
	}

	p.exec(s)

	return p.result(s), nil
}

// Float invokes a program whose parameters are all numeric and returns the
// result as a float64. Missing arguments are 0 and extra arguments are
// ignored.
func (p *Compiled) Float(args ...float64) float64 {
	s := p.newState()

	for i, param := range p.sig.Params {
		if i < len(args) && param.Kind != KindString {
			s.nums[p.slot[i]] = narrow(param.Kind, args[i])
		}
	}

	p.exec(s)

	if s.isStr {
		return 0
	}

	return s.num
}

// narrow rounds f through the Go type of a numeric kind, so an int
// parameter given 2.7 is seen as 2. NaN and infinities, including a float32
// overflow, become 0 as they do everywhere else.
func narrow(k Kind, f float64) float64 {
	v, _ := toFloat(fromFloat(k, NumberOf(f).f))

	return NumberOf(v).f
}

// CompileFunc parses src and compiles it into a Go func of type F.
//
// F must be a func type whose parameters and result are primitive kinds.
// names gives the parameter names in order.
func CompileFunc[F any](ctx context.Context, src string, names []string, opts ...Option) (F, error) {
	var zero F

	t := reflect.TypeFor[F]()
	if t.Kind() != reflect.Func || t.IsVariadic() || t.NumOut() > 1 {
		return zero, ErrSignature.With(slog.String("type", t.String()))
	}

	if t.NumIn() != len(names) {
		return zero, ErrSignature.With(
			slog.String("type", t.String()),
			slog.Int("names", len(names)))
	}

	sig := Signature{Result: KindVoid}

	for i := range t.NumIn() {
		k, ok := kindOf(t.In(i))
		if !ok {
			return zero, ErrSignature.With(slog.String("param", t.In(i).String()))
		}

		sig.Params = append(sig.Params, Param{Name: names[i], Kind: k})
	}

	if t.NumOut() == 1 {
		k, ok := kindOf(t.Out(0))
		if !ok {
			return zero, ErrSignature.With(slog.String("result", t.Out(0).String()))
		}

		sig.Result = k
	}

	p, err := CompileString(ctx, src, sig, opts...)
	if err != nil {
		return zero, err
	}

	return bind[F](p, t), nil
}

// bind returns p as a func of type t.
func bind[F any](p *Compiled, t reflect.Type) F {
	var fn any

	switch any(*new(F)).(type) {
	case func() float64:
		fn = func() float64 { return p.Float() }
	case func(float64) float64:
		fn = func(a float64) float64 { return p.Float(a) }
	case func(float64, float64) float64:
		fn = func(a, b float64) float64 { return p.Float(a, b) }
	case func(float64, float64, float64) float64:
		fn = func(a, b, c float64) float64 { return p.Float(a, b, c) }
	case func(float64, float64) bool:
		fn = func(a, b float64) bool { return p.Float(a, b) != 0 }
	default:
		fn = reflect.MakeFunc(t, func(in []reflect.Value) []reflect.Value {
			args := make([]any, len(in))
			for i, v := range in {
				args[i] = v.Convert(p.sig.Params[i].Kind.Type()).Interface()
			}

			// Argument kinds are fixed by t, so Call cannot fail.
			res, _ := p.Call(args...)

			if t.NumOut() == 0 {
				return nil
			}

			return []reflect.Value{reflect.ValueOf(res).Convert(t.Out(0))}
		}).Interface()
	}

	f, _ := fn.(F)

	return f
}
