package lang

import "github.com/ardnew/molang/log"

// options holds settings shared by parsing, evaluation, and compilation.
type options struct {
	logger log.Logger // structured logger (excluded from cache keys)
	scope  *Scope     // scope consulted by folding and compile-time inlining
	fold   bool       // fold invariant subtrees after parsing
}

// Option configures parsing, evaluation, and compilation.
type Option func(*options)

// WithLogger sets the logger used to trace pipeline steps.
// The zero log.Logger discards everything.
func WithLogger(logger log.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithFolding enables constant folding of parsed programs.
func WithFolding(fold bool) Option {
	return func(o *options) { o.fold = fold }
}

// WithScope sets the scope used to resolve host bindings while folding and
// compiling.
func WithScope(scope *Scope) Option {
	return func(o *options) { o.scope = scope }
}

func applyDefaults(o *options) {
	*o = options{}
}

func applyOptions(o *options, opts ...Option) {
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
}

func makeOptions(opts ...Option) options {
	var o options

	applyDefaults(&o)
	applyOptions(&o, opts...)

	return o
}
