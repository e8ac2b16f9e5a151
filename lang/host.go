package lang

import (
	"fmt"
	"log/slog"
	"reflect"
	"strings"
)

var (
	frameType = reflect.TypeFor[*Frame]()
	errorType = reflect.TypeFor[error]()
)

// HostFunction is a Go func exposed to scripts with a typed signature.
//
// The func may take a leading *Frame, followed by parameters of any Kind
// (a final variadic parameter is allowed). It may return nothing, one
// value of any Kind, or a value and an error. Missing trailing arguments
// are passed as zero values.
//
// The compiler calls a HostFunction directly with its own parameter kinds.
type HostFunction struct {
	name      string
	fn        reflect.Value
	params    []Kind
	types     []reflect.Type // Go types of params
	result    Kind
	withFrame bool
	variadic  bool
	hasError  bool
	pure      bool

	// Direct forms for common numeric signatures.
	f0 func() float64
	f1 func(float64) float64
	f2 func(float64, float64) float64
	f3 func(float64, float64, float64) float64
	fv func(...float64) float64
}

// NewHostFunction wraps fn, which must be a func with a supported
// signature. Pure functions are folded when called with constant arguments.
func NewHostFunction(name string, fn any, pure bool) (*HostFunction, error) {
	h := &HostFunction{name: name, pure: pure}

	switch f := fn.(type) {
	case func() float64:
		h.f0 = f
	case func(float64) float64:
		h.f1 = f
	case func(float64, float64) float64:
		h.f2 = f
	case func(float64, float64, float64) float64:
		h.f3 = f
	case func(...float64) float64:
		h.fv = f
	}

	rv := reflect.ValueOf(fn)
	if rv.Kind() != reflect.Func || rv.IsNil() {
		return nil, ErrHostFunction.With(
			slog.String("function", name),
			slog.String("type", fmt.Sprintf("%T", fn)))
	}

	h.fn = rv
	t := rv.Type()
	h.variadic = t.IsVariadic()

	for i := range t.NumIn() {
		in := t.In(i)

		if i == 0 && in == frameType {
			h.withFrame = true

			continue
		}

		if h.variadic && i == t.NumIn()-1 {
			in = in.Elem()
		}

		k, ok := kindOf(in)
		if !ok {
			return nil, ErrHostFunction.With(
				slog.String("function", name),
				slog.String("param", in.String()))
		}

		h.params = append(h.params, k)
		h.types = append(h.types, in)
	}

	switch t.NumOut() {
	case 0:
		h.result = KindVoid
	case 2:
		if t.Out(1) != errorType {
			return nil, ErrHostFunction.With(
				slog.String("function", name),
				slog.String("result", t.Out(1).String()))
		}

		h.hasError = true

		fallthrough
	case 1:
		k, ok := kindOf(t.Out(0))
		if !ok {
			return nil, ErrHostFunction.With(
				slog.String("function", name),
				slog.String("result", t.Out(0).String()))
		}

		h.result = k
	default:
		return nil, ErrHostFunction.With(
			slog.String("function", name),
			slog.Int("results", t.NumOut()))
	}

	return h, nil
}

// MustHostFunction is like NewHostFunction but panics on error.
func MustHostFunction(name string, fn any, pure bool) *HostFunction {
	h, err := NewHostFunction(name, fn, pure)
	if err != nil {
		panic(err)
	}

	return h
}

// Type implements Value.
func (*HostFunction) Type() Type { return TypeFunction }

// Pure implements Purity.
func (h *HostFunction) Pure() bool { return h.pure }

// Name returns the name the function was registered with.
func (h *HostFunction) Name() string { return h.name }

// Params returns the parameter kinds. For a variadic function the last kind
// is the element kind.
func (h *HostFunction) Params() []Kind { return h.params }

// Result returns the result kind.
func (h *HostFunction) Result() Kind { return h.result }

// Variadic reports whether the last parameter accepts any number of
// arguments.
func (h *HostFunction) Variadic() bool { return h.variadic }

// Signature returns a readable signature such as "clamp(f64, f64, f64) f64".
func (h *HostFunction) Signature() string {
	var sb strings.Builder

	sb.WriteString(h.name)
	sb.WriteByte('(')

	for i, k := range h.params {
		if i > 0 {
			sb.WriteString(", ")
		}

		if h.variadic && i == len(h.params)-1 {
			sb.WriteString("...")
		}

		sb.WriteString(k.String())
	}

	sb.WriteByte(')')

	if h.result != KindVoid {
		sb.WriteByte(' ')
		sb.WriteString(h.result.String())
	}

	return sb.String()
}

// arity returns the number of fixed parameters.
func (h *HostFunction) arity() int {
	if h.variadic {
		return len(h.params) - 1
	}

	return len(h.params)
}

// paramKind returns the kind of argument i.
func (h *HostFunction) paramKind(i int) Kind {
	if h.variadic && i >= len(h.params)-1 {
		return h.params[len(h.params)-1]
	}

	return h.params[i]
}

// Call implements Function. Extra arguments are ignored.
func (h *HostFunction) Call(frame *Frame, args Args) Value {
	switch {
	case h.f0 != nil:
		return NumberOf(h.f0())
	case h.f1 != nil:
		return NumberOf(h.f1(args.Number(0)))
	case h.f2 != nil:
		return NumberOf(h.f2(args.Number(0), args.Number(1)))
	case h.f3 != nil:
		return NumberOf(h.f3(args.Number(0), args.Number(1), args.Number(2)))
	case h.fv != nil:
		vals := make([]float64, args.Len())
		for i := range vals {
			vals[i] = args.Number(i)
		}

		return NumberOf(h.fv(vals...))
	}

	n := h.arity()
	if h.variadic && args.Len() > n {
		n = args.Len()
	}

	in := make([]any, n)
	for i := range in {
		if i < args.Len() {
			in[i] = convert(h.paramKind(i), args.Eval(i))
		} else {
			in[i] = h.paramKind(i).Zero()
		}
	}

	return ValueOf(h.invoke(frame, in))
}

// invoke calls the func with arguments already converted to parameter
// kinds. A returned error is logged and yields the zero result.
func (h *HostFunction) invoke(frame *Frame, in []any) any {
	args := make([]reflect.Value, 0, len(in)+1)

	if h.withFrame {
		args = append(args, reflect.ValueOf(frame))
	}

	for i, v := range in {
		t := h.types[min(i, len(h.types)-1)]
		if v == nil {
			args = append(args, reflect.Zero(t))

			continue
		}

		args = append(args, reflect.ValueOf(v).Convert(t))
	}

	out := h.fn.Call(args)

	if h.hasError && !out[1].IsNil() {
		if frame != nil {
			err, _ := out[1].Interface().(error)
			frame.logger.DebugContext(frame.ctx, "host function",
				slog.String("function", h.name),
				slog.Any("error", err))
		}

		return h.result.Zero()
	}

	if len(out) == 0 {
		return nil
	}

	return out[0].Interface()
}
