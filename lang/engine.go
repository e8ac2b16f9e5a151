package lang

import (
	"context"
	"io"
	"log/slog"
)

// Engine bundles a root scope with the standard namespaces: math, query (q)
// and variable (v). Variables persist across evaluations, so an Engine
// models the state of one scripted object.
//
// An Engine is safe for concurrent evaluation; scripts that assign to the
// same variables from several goroutines race on their values but never
// corrupt the scope.
type Engine struct {
	scope    *Scope
	query    *Scope
	variable *Scope
	opts     []Option
	o        options
}

// NewEngine returns an Engine whose options apply to every parse,
// evaluation and compilation it performs.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		scope:    NewScope(),
		query:    NewScope(),
		variable: NewScope(),
		o:        makeOptions(opts...),
	}

	e.opts = append([]Option{WithScope(e.scope)}, opts...)

	e.BindConstant("math", MathScope())
	e.BindConstant("query", e.query, "q")
	e.BindConstant("variable", e.variable, "v")

	return e
}

// Bind sets name and its aliases in the root scope.
func (e *Engine) Bind(name string, v Value, aliases ...string) {
	for _, n := range append([]string{name}, aliases...) {
		e.scope.Set(n, v)
	}
}

// BindConstant is like Bind but marks the names constant, allowing the
// folder and compiler to inline them.
func (e *Engine) BindConstant(name string, v Value, aliases ...string) {
	for _, n := range append([]string{name}, aliases...) {
		e.scope.SetConstant(n, v)
	}
}

// Query returns the query namespace.
func (e *Engine) Query() *Scope { return e.query }

// Variable returns the variable namespace.
func (e *Engine) Variable() *Scope { return e.variable }

// Scope returns the root scope.
func (e *Engine) Scope() *Scope { return e.scope }

// Parse parses src through the parse cache.
func (e *Engine) Parse(ctx context.Context, src string) ([]Expr, error) {
	return ParseCached(ctx, src, e.opts...)
}

// Eval evaluates a parsed program with entity as the current entity.
func (e *Engine) Eval(ctx context.Context, entity any, exprs []Expr) Value {
	return Evaluate(ctx, e.scope, entity, exprs, e.opts...)
}

// EvalString parses and evaluates src. A parse error is logged and yields
// 0.
func (e *Engine) EvalString(ctx context.Context, entity any, src string) Value {
	return EvaluateString(ctx, e.scope, entity, src, e.opts...)
}

// Compile parses src and specializes it to sig, inlining constant bindings
// of the engine.
func (e *Engine) Compile(ctx context.Context, src string, sig Signature) (*Compiled, error) {
	return CompileString(ctx, src, sig, e.opts...)
}

// LoadManifest decodes a host manifest from r and binds it into the
// engine. impls supplies Go implementations by qualified name, such as
// "query.log".
func (e *Engine) LoadManifest(ctx context.Context, r io.Reader, impls map[string]any) error {
	m, err := DecodeManifest(ctx, r)
	if err != nil {
		return err
	}

	if err := m.Bind(ctx, e, impls); err != nil {
		return err
	}

	e.o.logger.DebugContext(ctx, "manifest loaded",
		slog.Int("namespaces", len(m.Namespaces)))

	return nil
}
