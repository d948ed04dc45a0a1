package models

import (
	"bytes"
	"encoding/json"
	"math"
	"math/big"
	"sort"
	"strconv"
	"strings"

	"google.golang.org/protobuf/types/known/structpb"
)

// Kind identifies which of the JSON variants a Value holds.
type Kind uint8

const (
	Invalid Kind = iota
	Null
	Bool
	Number
	String
	Array
	Object
)

func (k Kind) String() string {
	switch k {
	case Null:
		return "null"
	case Bool:
		return "bool"
	case Number:
		return "number"
	case String:
		return "string"
	case Array:
		return "array"
	case Object:
		return "object"
	default:
		return "invalid"
	}
}

// undefinedValue is the type of Undefined.
type undefinedValue struct{}

func (undefinedValue) String() string { return "undefined" }

// Undefined stands for an absent value. It is never a valid JSON value and is
// distinct from nil, which is JSON null.
var Undefined = undefinedValue{}

// IsUndefined reports whether v is the Undefined sentinel.
func IsUndefined(v any) bool {
	_, ok := v.(undefinedValue)
	return ok
}

// Value is an immutable JSON value. The zero Value is invalid; use the
// constructors below to build values bottom-up.
type Value struct {
	kind Kind
	b    bool
	n    float64
	lit  string // original number literal, if known
	s    string
	arr  []Value
	obj  map[string]Value
}

// NullValue returns the JSON null value.
func NullValue() Value { return Value{kind: Null} }

// BoolValue returns a JSON boolean.
func BoolValue(b bool) Value { return Value{kind: Bool, b: b} }

// NumberValue returns a JSON number.
func NumberValue(f float64) Value { return Value{kind: Number, n: f} }

// NumberLiteral returns a JSON number that keeps its textual form, so large
// integers survive re-encoding without losing precision.
func NumberLiteral(lit string, f float64) Value { return Value{kind: Number, n: f, lit: lit} }

// StringValue returns a JSON string.
func StringValue(s string) Value { return Value{kind: String, s: s} }

// ArrayValue returns a JSON array holding a copy of elems.
func ArrayValue(elems ...Value) Value {
	arr := make([]Value, len(elems))
	copy(arr, elems)
	return Value{kind: Array, arr: arr}
}

// ObjectValue returns a JSON object holding a copy of fields.
func ObjectValue(fields map[string]Value) Value {
	obj := make(map[string]Value, len(fields))
	for k, v := range fields {
		obj[k] = v
	}
	return Value{kind: Object, obj: obj}
}

// Kind returns the variant held by v.
func (v Value) Kind() Kind { return v.kind }

// IsValid reports whether v was built by one of the constructors.
func (v Value) IsValid() bool { return v.kind != Invalid }

// Bool returns the payload of a boolean value.
func (v Value) Bool() bool { return v.b }

// Float returns the payload of a number value.
func (v Value) Float() float64 { return v.n }

// Literal returns the textual form of a number value.
func (v Value) Literal() string {
	if v.lit != "" {
		return v.lit
	}
	return strconv.FormatFloat(v.n, 'g', -1, 64)
}

// Overflows reports whether v is a number literal too large for a float64.
// Such a literal is still a JSON number; Float returns the nearest infinity.
func (v Value) Overflows() bool {
	return v.kind == Number && v.lit != "" && math.IsInf(v.n, 0)
}

// IsInteger reports whether v is a number written without a fraction or
// exponent.
func (v Value) IsInteger() bool {
	if v.kind != Number || math.IsNaN(v.n) || math.IsInf(v.n, 0) && !v.Overflows() {
		return false
	}
	return !strings.ContainsAny(v.Literal(), ".eE")
}

// Text returns the payload of a string value.
func (v Value) Text() string { return v.s }

// Len returns the number of elements of an array or fields of an object.
func (v Value) Len() int {
	switch v.kind {
	case Array:
		return len(v.arr)
	case Object:
		return len(v.obj)
	default:
		return 0
	}
}

// Index returns the i'th element of an array value.
func (v Value) Index(i int) Value {
	if v.kind != Array || i < 0 || i >= len(v.arr) {
		return Value{}
	}
	return v.arr[i]
}

// Get returns the field named key of an object value.
func (v Value) Get(key string) (Value, bool) {
	if v.kind != Object {
		return Value{}, false
	}
	f, ok := v.obj[key]
	return f, ok
}

// Keys returns the field names of an object value in sorted order.
func (v Value) Keys() []string {
	if v.kind != Object {
		return nil
	}
	keys := make([]string, 0, len(v.obj))
	for k := range v.obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Equal reports whether v and other hold the same JSON value.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case Null, Invalid:
		return true
	case Bool:
		return v.b == other.b
	case Number:
		return v.n == other.n
	case String:
		return v.s == other.s
	case Array:
		if len(v.arr) != len(other.arr) {
			return false
		}
		for i := range v.arr {
			if !v.arr[i].Equal(other.arr[i]) {
				return false
			}
		}
		return true
	case Object:
		if len(v.obj) != len(other.obj) {
			return false
		}
		for k, f := range v.obj {
			o, ok := other.obj[k]
			if !ok || !f.Equal(o) {
				return false
			}
		}
		return true
	}
	return false
}

// Interface converts v back to plain Go values: nil, bool, string, []any,
// map[string]any and, for numbers, int64, uint64, *big.Int or float64.
// Integers keep every digit; other numbers are float64.
func (v Value) Interface() any {
	switch v.kind {
	case Bool:
		return v.b
	case Number:
		lit := v.Literal()
		if i, err := strconv.ParseInt(lit, 10, 64); err == nil {
			return i
		}
		if u, err := strconv.ParseUint(lit, 10, 64); err == nil {
			return u
		}
		if v.IsInteger() {
			if b, ok := new(big.Int).SetString(lit, 10); ok {
				return b
			}
		}
		return v.n
	case String:
		return v.s
	case Array:
		out := make([]any, len(v.arr))
		for i, e := range v.arr {
			out[i] = e.Interface()
		}
		return out
	case Object:
		out := make(map[string]any, len(v.obj))
		for k, f := range v.obj {
			out[k] = f.Interface()
		}
		return out
	default:
		return nil
	}
}

// MarshalJSON encodes v as JSON text with object keys in sorted order.
func (v Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := v.writeJSON(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (v Value) writeJSON(buf *bytes.Buffer) error {
	switch v.kind {
	case Null:
		buf.WriteString("null")
	case Bool:
		buf.WriteString(strconv.FormatBool(v.b))
	case Number:
		if math.IsNaN(v.n) || math.IsInf(v.n, 0) && !v.Overflows() {
			return &json.UnsupportedValueError{Str: strconv.FormatFloat(v.n, 'g', -1, 64)}
		}
		buf.WriteString(v.Literal())
	case String:
		b, err := json.Marshal(v.s)
		if err != nil {
			return err
		}
		buf.Write(b)
	case Array:
		buf.WriteByte('[')
		for i, e := range v.arr {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := e.writeJSON(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case Object:
		buf.WriteByte('{')
		for i, k := range v.Keys() {
			if i > 0 {
				buf.WriteByte(',')
			}
			b, err := json.Marshal(k)
			if err != nil {
				return err
			}
			buf.Write(b)
			buf.WriteByte(':')
			if err := v.obj[k].writeJSON(buf); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	default:
		return &json.UnsupportedValueError{Str: "invalid value"}
	}
	return nil
}

// ToProto converts v to the protobuf well-known Value type.
func (v Value) ToProto() *structpb.Value {
	switch v.kind {
	case Bool:
		return structpb.NewBoolValue(v.b)
	case Number:
		return structpb.NewNumberValue(v.n)
	case String:
		return structpb.NewStringValue(v.s)
	case Array:
		list := &structpb.ListValue{Values: make([]*structpb.Value, len(v.arr))}
		for i, e := range v.arr {
			list.Values[i] = e.ToProto()
		}
		return structpb.NewListValue(list)
	case Object:
		st := &structpb.Struct{Fields: make(map[string]*structpb.Value, len(v.obj))}
		for k, f := range v.obj {
			st.Fields[k] = f.ToProto()
		}
		return structpb.NewStructValue(st)
	default:
		return structpb.NewNullValue()
	}
}

// Document is a decoded input before classification.
type Document struct {
	Root   any
	Format string
	Source string
}
