package lang

import (
	"fmt"
	"iter"
	"math"
	"reflect"
	"strconv"
	"strings"

	"src.elv.sh/pkg/persistent/vector"
)

// Type identifies the dynamic type of a Value.
type Type int

// Value types.
const (
	TypeNumber Type = iota
	TypeString
	TypeArray
	TypeObject
	TypeFunction
)

// String returns the lower-case name of the type.
func (t Type) String() string {
	switch t {
	case TypeNumber:
		return "number"
	case TypeString:
		return "string"
	case TypeArray:
		return "array"
	case TypeObject:
		return "object"
	case TypeFunction:
		return "function"
	default:
		return "Type(" + strconv.Itoa(int(t)) + ")"
	}
}

// Value is a runtime value of the language.
type Value interface {
	Type() Type
}

// Number is a finite float64. Every constructor maps NaN and ±Inf to 0.
// The zero Number is 0.
type Number struct {
	f float64
}

// Zero is the Number 0, returned for most runtime failures.
var Zero = Number{}

// NumberOf returns f as a Number.
func NumberOf(f float64) Number {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Zero
	}

	return Number{f: f}
}

// Bool returns 1 if b is true and 0 otherwise.
func Bool(b bool) Number {
	if b {
		return Number{f: 1}
	}

	return Zero
}

// Float returns the numeric payload.
func (n Number) Float() float64 { return n.f }

// Type implements Value.
func (Number) Type() Type { return TypeNumber }

// String returns the number formatted like "1.0" or "2.5E-4".
func (n Number) String() string { return formatNumber(n.f) }

// String is a text value.
type String string

// Type implements Value.
func (String) Type() Type { return TypeString }

// Array is an immutable sequence of values.
// The zero Array is empty.
type Array struct {
	vec vector.Vector
}

// ArrayOf returns an Array holding vals in order.
func ArrayOf(vals ...Value) Array {
	vec := vector.Empty
	for _, v := range vals {
		vec = vec.Conj(v)
	}

	return Array{vec: vec}
}

// Type implements Value.
func (Array) Type() Type { return TypeArray }

// Len returns the number of elements.
func (a Array) Len() int {
	if a.vec == nil {
		return 0
	}

	return a.vec.Len()
}

// At returns the element at index i, or Zero if i is out of range.
func (a Array) At(i int) Value {
	if a.vec == nil {
		return Zero
	}

	if v, ok := a.vec.Index(i); ok {
		if val, ok := v.(Value); ok {
			return val
		}
	}

	return Zero
}

// Append returns a new Array with v added at the end. The receiver is
// unchanged and shares storage with the result.
func (a Array) Append(v Value) Array {
	vec := a.vec
	if vec == nil {
		vec = vector.Empty
	}

	return Array{vec: vec.Conj(v)}
}

// All returns an iterator over the index and value of each element.
func (a Array) All() iter.Seq2[int, Value] {
	return func(yield func(int, Value) bool) {
		if a.vec == nil {
			return
		}

		i := 0
		for it := a.vec.Iterator(); it.HasElem(); it.Next() {
			v, _ := it.Elem().(Value)
			if v == nil {
				v = Zero
			}

			if !yield(i, v) {
				return
			}

			i++
		}
	}
}

// Object is a value with named properties.
type Object interface {
	Value
	// Get returns the named property, or Zero if it does not exist.
	Get(name string) Value
}

// MutableObject is an Object whose properties can be assigned.
type MutableObject interface {
	Object
	// Set assigns the named property and reports whether it was accepted.
	Set(name string, v Value) bool
}

// Enumerable is implemented by objects that can list their properties.
type Enumerable interface {
	Entries() iter.Seq2[string, Value]
}

// ConstantReporter is implemented by objects that know which of their
// properties never change.
type ConstantReporter interface {
	IsConstant(name string) bool
}

// Function is a callable value. Args are evaluated lazily by the callee.
type Function interface {
	Value
	Call(frame *Frame, args Args) Value
}

// Purity is implemented by functions whose result depends only on their
// arguments.
type Purity interface {
	Pure() bool
}

// FunctionFunc adapts an ordinary func to the Function interface.
type FunctionFunc func(frame *Frame, args Args) Value

// Type implements Value.
func (FunctionFunc) Type() Type { return TypeFunction }

// Call implements Function.
func (fn FunctionFunc) Call(frame *Frame, args Args) Value {
	if v := fn(frame, args); v != nil {
		return v
	}

	return Zero
}

type pureFunction struct{ Function }

func (pureFunction) Pure() bool { return true }

// Pure marks fn as free of side effects so calls with constant arguments can
// be folded.
func Pure(fn Function) Function { return pureFunction{fn} }

// IsPure reports whether v is a Function flagged as pure.
func IsPure(v Value) bool {
	p, ok := v.(Purity)

	return ok && p.Pure()
}

// Entity wraps an opaque host reference so it can be stored in scopes and
// arrays. The '->' operator evaluates its right side with the wrapped
// reference as the current entity.
type Entity struct {
	V any
}

// Type implements Value.
func (Entity) Type() Type { return TypeObject }

// Get implements Object. Entities expose no properties.
func (Entity) Get(string) Value { return Zero }

// ValueOf converts a Go value to a Value.
//
// Numbers, booleans, strings, slices and string-keyed maps convert
// structurally. Go funcs become host functions. Any other non-nil value is
// wrapped in an Entity.
func ValueOf(v any) Value {
	switch x := v.(type) {
	case nil:
		return Zero
	case Value:
		return x
	case float64:
		return NumberOf(x)
	case float32:
		return NumberOf(float64(x))
	case int:
		return NumberOf(float64(x))
	case int8:
		return NumberOf(float64(x))
	case int16:
		return NumberOf(float64(x))
	case int32:
		return NumberOf(float64(x))
	case int64:
		return NumberOf(float64(x))
	case uint:
		return NumberOf(float64(x))
	case uint8:
		return NumberOf(float64(x))
	case uint16:
		return NumberOf(float64(x))
	case uint32:
		return NumberOf(float64(x))
	case uint64:
		return NumberOf(float64(x))
	case bool:
		return Bool(x)
	case string:
		return String(x)
	case []Value:
		return ArrayOf(x...)
	case []any:
		return arrayOf(x)
	case []float64:
		return arrayOf(x)
	case []string:
		return arrayOf(x)
	case map[string]any:
		s := NewScope()
		for k, e := range x {
			s.Set(k, ValueOf(e))
		}

		return s
	}

	rv := reflect.ValueOf(v)

	switch rv.Kind() {
	case reflect.Func:
		if fn, err := NewHostFunction("", v, false); err == nil {
			return fn
		}

		return Zero

	case reflect.Slice, reflect.Array:
		arr := Array{vec: vector.Empty}
		for i := range rv.Len() {
			arr = arr.Append(ValueOf(rv.Index(i).Interface()))
		}

		return arr
	}

	return Entity{V: v}
}

func arrayOf[T any](vals []T) Array {
	arr := Array{vec: vector.Empty}
	for _, v := range vals {
		arr = arr.Append(ValueOf(v))
	}

	return arr
}

// AsNumber returns the numeric value of v, or 0 if v is not a Number.
func AsNumber(v Value) float64 {
	if n, ok := v.(Number); ok {
		return n.f
	}

	return 0
}

// AsBool returns the truth value of v. Non-zero numbers, non-empty strings,
// non-empty arrays, functions, and objects are true. An enumerable object is
// true only if it has at least one property.
func AsBool(v Value) bool {
	switch x := v.(type) {
	case nil:
		return false
	case Number:
		return x.f != 0
	case String:
		return x != ""
	case Array:
		return x.Len() > 0
	case Function:
		return true
	case Enumerable:
		for range x.Entries() {
			return true
		}

		return false
	default:
		return true
	}
}

// AsString returns the textual form of v.
func AsString(v Value) string {
	var sb strings.Builder

	writeString(&sb, v)

	return sb.String()
}

func writeString(sb *strings.Builder, v Value) {
	switch x := v.(type) {
	case nil:
		sb.WriteString(formatNumber(0))
	case Number:
		sb.WriteString(formatNumber(x.f))
	case String:
		sb.WriteString(string(x))
	case Array:
		sb.WriteByte('[')

		for i, e := range x.All() {
			if i > 0 {
				sb.WriteString(", ")
			}

			writeString(sb, e)
		}

		sb.WriteByte(']')
	case Entity:
		fmt.Fprint(sb, x.V)
	case Function:
		sb.WriteString("<function>")
	case Enumerable:
		sb.WriteByte('{')

		first := true
		for k, e := range x.Entries() {
			if !first {
				sb.WriteString(", ")
			}

			first = false

			sb.WriteString(k)
			sb.WriteString(": ")
			writeString(sb, e)
		}

		sb.WriteByte('}')
	default:
		sb.WriteString("<" + v.Type().String() + ">")
	}
}

// formatNumber renders f with at least one fractional digit, switching to
// scientific notation outside [1e-3, 1e7).
func formatNumber(f float64) string {
	if f == 0 {
		return "0.0"
	}

	if abs := math.Abs(f); abs >= 1e-3 && abs < 1e7 {
		s := strconv.FormatFloat(f, 'f', -1, 64)
		if !strings.Contains(s, ".") {
			s += ".0"
		}

		return s
	}

	mant, exp, _ := strings.Cut(strconv.FormatFloat(f, 'E', -1, 64), "E")
	if !strings.Contains(mant, ".") {
		mant += ".0"
	}

	e, _ := strconv.Atoi(exp)

	return mant + "E" + strconv.Itoa(e)
}

// Args is the argument list of a function call. Arguments are evaluated on
// demand, each time they are requested.
type Args struct {
	exprs  []Expr
	frame  *Frame
	values []Value
}

// ValueArgs returns an argument list of already evaluated values.
func ValueArgs(vals ...Value) Args {
	return Args{values: vals}
}

// Len returns the number of arguments.
func (a Args) Len() int {
	if a.values != nil {
		return len(a.values)
	}

	return len(a.exprs)
}

// Expr returns the unevaluated expression of argument i, or nil if the
// arguments were supplied as values or i is out of range.
func (a Args) Expr(i int) Expr {
	if i < 0 || i >= len(a.exprs) {
		return nil
	}

	return a.exprs[i]
}

// Eval evaluates argument i. Missing arguments evaluate to Zero, and control
// flow (return, break, continue) inside an argument is ignored.
func (a Args) Eval(i int) Value {
	if a.values != nil {
		if i < 0 || i >= len(a.values) || a.values[i] == nil {
			return Zero
		}

		return a.values[i]
	}

	if i < 0 || i >= len(a.exprs) || a.frame == nil {
		return Zero
	}

	v, _ := a.frame.eval(a.exprs[i])

	return v
}

// Number evaluates argument i as a number.
func (a Args) Number(i int) float64 { return AsNumber(a.Eval(i)) }

// Bool evaluates argument i as a boolean.
func (a Args) Bool(i int) bool { return AsBool(a.Eval(i)) }

// String evaluates argument i as a string.
func (a Args) String(i int) string { return AsString(a.Eval(i)) }

// Values evaluates every argument in order.
func (a Args) Values() []Value {
	vals := make([]Value, a.Len())
	for i := range vals {
		vals[i] = a.Eval(i)
	}

	return vals
}
