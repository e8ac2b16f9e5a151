package lang

import (
	"context"
	"io"
	"log/slog"
	"reflect"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/goccy/go-yaml"
	"github.com/klauspost/readahead"
)

// Manifest declares the host namespaces, functions and fields available to
// scripts. It is usually decoded from YAML:
//
//	namespaces:
//	  - name: query
//	    aliases: [q]
//	    functions:
//	      - name: double
//	        params: [{name: x, type: f64}]
//	        expr: x * 2
//	        pure: true
//	      - name: log
//	        variadic: true
//	    fields:
//	      - {name: max_health, type: f64, value: 20, constant: true}
type Manifest struct {
	Namespaces []ManifestNamespace `json:"namespaces" yaml:"namespaces"`
}

// ManifestNamespace is a named scope of functions and fields.
type ManifestNamespace struct {
	Name      string             `json:"name"                yaml:"name"`
	Aliases   []string           `json:"aliases,omitempty"   yaml:"aliases,omitempty"`
	Mutable   bool               `json:"mutable,omitempty"   yaml:"mutable,omitempty"`
	Functions []ManifestFunction `json:"functions,omitempty" yaml:"functions,omitempty"`
	Fields    []ManifestField    `json:"fields,omitempty"    yaml:"fields,omitempty"`
}

// ManifestFunction declares a function. Its implementation is supplied by
// the host or, failing that, by an expr-lang expression over its
// parameters.
type ManifestFunction struct {
	Name     string          `json:"name"               yaml:"name"`
	Params   []ManifestParam `json:"params,omitempty"   yaml:"params,omitempty"`
	Returns  Kind            `json:"returns,omitempty"  yaml:"returns,omitempty"`
	Pure     bool            `json:"pure,omitempty"     yaml:"pure,omitempty"`
	Variadic bool            `json:"variadic,omitempty" yaml:"variadic,omitempty"`
	Expr     string          `json:"expr,omitempty"     yaml:"expr,omitempty"`
}

// ManifestParam is a named, typed function parameter.
type ManifestParam struct {
	Name string `json:"name" yaml:"name"`
	Type Kind   `json:"type" yaml:"type"`
}

// ManifestField declares a value. Without a type the value keeps the type
// it was decoded with.
type ManifestField struct {
	Name     string `json:"name"               yaml:"name"`
	Type     *Kind  `json:"type,omitempty"     yaml:"type,omitempty"`
	Value    any    `json:"value,omitempty"    yaml:"value,omitempty"`
	Constant bool   `json:"constant,omitempty" yaml:"constant,omitempty"`
}

// DecodeManifest reads a YAML manifest from r. Unknown keys are errors.
func DecodeManifest(ctx context.Context, r io.Reader) (*Manifest, error) {
	ra := readahead.NewReader(r)
	defer ra.Close()

	var m Manifest

	dec := yaml.NewDecoder(ra, yaml.DisallowUnknownField())
	if err := dec.DecodeContext(ctx, &m); err != nil {
		if err == io.EOF {
			return &m, nil
		}

		return nil, ErrManifest.Wrap(err)
	}

	return &m, m.validate()
}

func (m *Manifest) validate() error {
	for _, ns := range m.Namespaces {
		if !isName(ns.Name) {
			return ErrManifest.With(slog.String("namespace", ns.Name))
		}

		for _, fn := range ns.Functions {
			if !isName(fn.Name) {
				return ErrManifest.With(
					slog.String("namespace", ns.Name),
					slog.String("function", fn.Name))
			}

			for _, p := range fn.Params {
				if !isName(p.Name) {
					return ErrManifest.With(
						slog.String("function", ns.Name+"."+fn.Name),
						slog.String("param", p.Name))
				}
			}
		}

		for _, f := range ns.Fields {
			if !isName(f.Name) {
				return ErrManifest.With(
					slog.String("namespace", ns.Name),
					slog.String("field", f.Name))
			}
		}
	}

	return nil
}

// Bind installs the manifest's namespaces into the engine. A namespace the
// engine already has, such as query, is extended in place.
//
// impls maps qualified names such as "query.log" to implementations: a
// Function, or a Go func accepted by NewHostFunction.
func (m *Manifest) Bind(ctx context.Context, e *Engine, impls map[string]any) error {
	logger := e.o.logger

	for _, ns := range m.Namespaces {
		scope, existing := e.scope.Get(ns.Name).(*Scope)
		if !existing {
			scope = NewScope()
		}

		for _, fn := range ns.Functions {
			qualified := ns.Name + "." + fn.Name

			f, err := fn.bind(ctx, e, qualified, impls[qualified])
			if err != nil {
				return err
			}

			scope.SetConstant(fn.Name, f)
		}

		for _, field := range ns.Fields {
			v := ValueOf(field.Value)
			if field.Type != nil {
				v = ValueOf(convert(*field.Type, v))
			}

			if field.Constant {
				scope.SetConstant(field.Name, v)
			} else {
				scope.Set(field.Name, v)
			}
		}

		if existing {
			for _, alias := range ns.Aliases {
				e.BindConstant(alias, scope)
			}
		} else {
			scope.SetReadOnly(!ns.Mutable)
			e.BindConstant(ns.Name, scope, ns.Aliases...)
		}

		logger.TraceContext(ctx, "bind namespace",
			slog.String("namespace", ns.Name),
			slog.Bool("existing", existing),
			slog.Int("functions", len(ns.Functions)),
			slog.Int("fields", len(ns.Fields)))
	}

	return nil
}

// bind resolves the implementation of fn.
func (fn ManifestFunction) bind(ctx context.Context, e *Engine, qualified string, impl any) (Function, error) {
	switch impl := impl.(type) {
	case nil:
		if fn.Expr == "" {
			return nil, ErrUnboundFunction.With(slog.String("function", qualified))
		}

		return fn.compile(ctx, e, qualified)

	case Function:
		if fn.Pure {
			return Pure(impl), nil
		}

		return impl, nil

	default:
		h, err := NewHostFunction(qualified, impl, fn.Pure)
		if err != nil {
			return nil, err
		}

		if fn.Params != nil && len(h.Params()) != len(fn.Params) {
			return nil, ErrManifest.With(
				slog.String("function", qualified),
				slog.Int("declared", len(fn.Params)),
				slog.Int("implemented", len(h.Params())))
		}

		if fn.Variadic != h.Variadic() {
			return nil, ErrManifest.With(
				slog.String("function", qualified),
				slog.Bool("variadic", fn.Variadic))
		}

		return h, nil
	}
}

// compile builds a Function from the expr-lang body of fn.
func (fn ManifestFunction) compile(ctx context.Context, e *Engine, qualified string) (Function, error) {
	// Bodies see parameters by their lower-cased names, matching the
	// identifiers rewritten by namePatcher.
	names := make([]string, len(fn.Params))
	env := make(map[string]any, len(fn.Params))

	for i, p := range fn.Params {
		names[i] = strings.ToLower(p.Name)
		env[names[i]] = p.Type.Zero()
	}

	patcher := newNamePatcher(fn.Params)

	opts := []expr.Option{expr.Env(env), expr.Patch(patcher)}

	switch fn.Returns {
	case KindString:
		opts = append(opts, expr.AsKind(reflect.String))
	case KindBool:
		opts = append(opts, expr.AsBool())
	case KindVoid, KindValue:
	default:
		opts = append(opts, expr.AsFloat64())
	}

	program, err := expr.Compile(fn.Expr, opts...)
	if err != nil {
		return nil, ErrExprCompile.Wrap(err).
			With(slog.String("function", qualified), slog.String("source", fn.Expr))
	}

	if unused := patcher.unused(fn.Params); len(unused) > 0 {
		e.o.logger.DebugContext(ctx, "unused parameters",
			slog.String("function", qualified),
			slog.Any("params", unused))
	}

	params := fn.Params

	body := FunctionFunc(func(frame *Frame, args Args) Value {
		vars := make(map[string]any, len(params))
		for i, p := range params {
			if i < args.Len() {
				vars[names[i]] = convert(p.Type, args.Eval(i))
			} else {
				vars[names[i]] = p.Type.Zero()
			}
		}

		out, err := vm.Run(program, vars)
		if err != nil {
			if frame != nil {
				frame.Logger().DebugContext(frame.Context(), "expr function",
					slog.String("function", qualified),
					slog.Any("error", err))
			}

			return Zero
		}

		return ValueOf(out)
	})

	if fn.Pure {
		return Pure(body), nil
	}

	return body, nil
}
