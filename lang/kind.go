package lang

import (
	"log/slog"
	"math"
	"reflect"
	"strconv"
	"strings"
)

// Kind is a primitive type at the boundary between compiled code or host
// functions and Go.
type Kind int

// Kinds.
const (
	KindFloat64 Kind = iota
	KindFloat32
	KindInt
	KindInt32
	KindInt64
	KindBool
	KindString
	KindVoid
	KindValue // any Value, host functions only
)

var kindNames = map[Kind]string{
	KindFloat64: "f64",
	KindFloat32: "f32",
	KindInt:     "int",
	KindInt32:   "int32",
	KindInt64:   "int64",
	KindBool:    "bool",
	KindString:  "string",
	KindVoid:    "void",
	KindValue:   "any",
}

var kindAliases = map[string]Kind{
	"f64":     KindFloat64,
	"float64": KindFloat64,
	"double":  KindFloat64,
	"number":  KindFloat64,
	"f32":     KindFloat32,
	"float32": KindFloat32,
	"float":   KindFloat32,
	"int":     KindInt,
	"i32":     KindInt32,
	"int32":   KindInt32,
	"i64":     KindInt64,
	"int64":   KindInt64,
	"long":    KindInt64,
	"bool":    KindBool,
	"boolean": KindBool,
	"string":  KindString,
	"str":     KindString,
	"void":    KindVoid,
	"any":     KindValue,
	"value":   KindValue,
}

// String returns the canonical name of the kind.
func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}

	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// ParseKind parses a kind name such as "f64", "int" or "bool".
func ParseKind(s string) (Kind, error) {
	if k, ok := kindAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return k, nil
	}

	return 0, ErrInvalidKind.With(slog.String("kind", s))
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	kind, err := ParseKind(string(text))
	if err != nil {
		return err
	}

	*k = kind

	return nil
}

// Numeric reports whether values of the kind are carried as numbers.
func (k Kind) Numeric() bool {
	switch k {
	case KindFloat64, KindFloat32, KindInt, KindInt32, KindInt64, KindBool:
		return true
	default:
		return false
	}
}

// Type returns the Go type of the kind, or nil for KindVoid.
func (k Kind) Type() reflect.Type {
	switch k {
	case KindFloat64:
		return reflect.TypeFor[float64]()
	case KindFloat32:
		return reflect.TypeFor[float32]()
	case KindInt:
		return reflect.TypeFor[int]()
	case KindInt32:
		return reflect.TypeFor[int32]()
	case KindInt64:
		return reflect.TypeFor[int64]()
	case KindBool:
		return reflect.TypeFor[bool]()
	case KindString:
		return reflect.TypeFor[string]()
	case KindValue:
		return reflect.TypeFor[Value]()
	default:
		return nil
	}
}

// kindOf returns the kind of a Go type.
func kindOf(t reflect.Type) (Kind, bool) {
	if t == reflect.TypeFor[Value]() {
		return KindValue, true
	}

	switch t.Kind() {
	case reflect.Float64:
		return KindFloat64, true
	case reflect.Float32:
		return KindFloat32, true
	case reflect.Int:
		return KindInt, true
	case reflect.Int32:
		return KindInt32, true
	case reflect.Int64:
		return KindInt64, true
	case reflect.Bool:
		return KindBool, true
	case reflect.String:
		return KindString, true
	default:
		return 0, false
	}
}

// Zero returns the zero value of the kind, or nil for KindVoid.
func (k Kind) Zero() any {
	switch k {
	case KindVoid:
		return nil
	case KindValue:
		return Zero
	case KindString:
		return ""
	default:
		return fromFloat(k, 0)
	}
}

// fromFloat narrows f to the Go type of k. Integer kinds truncate toward
// zero and saturate at their limits.
func fromFloat(k Kind, f float64) any {
	switch k {
	case KindFloat32:
		return float32(f)
	case KindInt:
		return int(saturate(f, math.MinInt, maxInt64))
	case KindInt32:
		return int32(saturate(f, math.MinInt32, math.MaxInt32))
	case KindInt64:
		return int64(saturate(f, math.MinInt64, maxInt64))
	case KindBool:
		return f != 0
	case KindString:
		return formatNumber(f)
	case KindValue:
		return NumberOf(f)
	case KindVoid:
		return nil
	default:
		return f
	}
}

// maxInt64 is the largest float64 that converts to int64 without overflow.
var maxInt64 = math.Nextafter(math.MaxInt64, 0)

func saturate(f, lo, hi float64) float64 {
	f = math.Trunc(f)

	switch {
	case math.IsNaN(f):
		return 0
	case f <= lo:
		return lo
	case f >= hi:
		return hi
	default:
		return f
	}
}

// toFloat widens a Go value to float64. Strings yield 0 and booleans 1 or 0.
func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int8:
		return float64(x), true
	case int16:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint:
		return float64(x), true
	case uint8:
		return float64(x), true
	case uint16:
		return float64(x), true
	case uint32:
		return float64(x), true
	case uint64:
		return float64(x), true
	case bool:
		return b2f(x), true
	case Number:
		return x.f, true
	case Value:
		return AsNumber(x), true
	default:
		return 0, false
	}
}

// convert coerces a Value to the Go representation of kind k.
func convert(k Kind, v Value) any {
	switch k {
	case KindString:
		return AsString(v)
	case KindValue:
		return v
	case KindBool:
		return AsBool(v)
	default:
		return fromFloat(k, AsNumber(v))
	}
}
