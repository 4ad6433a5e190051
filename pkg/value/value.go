// Package value defines the runtime value model of the Rill expression
// language.
//
// A [Value] is a tagged union over the nine shapes an event field or
// expression result can take: null, boolean, integer, float, byte string,
// timestamp, regex, array and ordered object. Values are immutable once
// produced; [Value.Clone] yields an independent copy when a value crosses
// an ownership boundary (for example from one execution context into an
// event target).
//
// [Kind] describes sets of shapes and is the currency of the static type
// pass: an expression's inferred type is a Kind set plus fallibility
// flags (see the expression package).
package value

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Value is a runtime value of exactly one shape.
//
// The zero Value is null. Construct values with the shape constructors
// ([Null], [Boolean], [Integer], ...); the accessors return (v, true) only
// when the value has the requested shape.
type Value struct {
	kind Kind

	b     bool
	i     int64
	f     float64
	bytes []byte
	ts    time.Time
	re    *regexp.Regexp
	arr   []Value
	obj   *Object
}

// Null returns the null value.
func Null() Value {
	return Value{kind: KindNull}
}

// Boolean returns a boolean value.
func Boolean(b bool) Value {
	return Value{kind: KindBoolean, b: b}
}

// Integer returns an integer value.
func Integer(i int64) Value {
	return Value{kind: KindInteger, i: i}
}

// Float returns a float value.
func Float(f float64) Value {
	return Value{kind: KindFloat, f: f}
}

// Bytes returns a byte-string value. The slice is not copied; callers must
// not mutate it afterwards.
func Bytes(b []byte) Value {
	return Value{kind: KindBytes, bytes: b}
}

// String returns a byte-string value from a Go string.
func String(s string) Value {
	return Value{kind: KindBytes, bytes: []byte(s)}
}

// Timestamp returns a timestamp value.
func Timestamp(t time.Time) Value {
	return Value{kind: KindTimestamp, ts: t}
}

// Regex returns a regex value.
func Regex(re *regexp.Regexp) Value {
	return Value{kind: KindRegex, re: re}
}

// Array returns an array value. The slice is not copied.
func Array(items []Value) Value {
	return Value{kind: KindArray, arr: items}
}

// ObjectValue returns an object value wrapping obj. A nil obj yields an
// empty object.
func ObjectValue(obj *Object) Value {
	if obj == nil {
		obj = NewObject()
	}
	return Value{kind: KindObject, obj: obj}
}

// Kind returns the single-shape kind of the value.
func (v Value) Kind() Kind {
	if v.kind == 0 {
		return KindNull
	}
	return v.kind
}

// IsNull reports whether the value is null.
func (v Value) IsNull() bool {
	return v.Kind() == KindNull
}

// AsBoolean returns the boolean payload.
func (v Value) AsBoolean() (bool, bool) {
	return v.b, v.kind == KindBoolean
}

// AsInteger returns the integer payload.
func (v Value) AsInteger() (int64, bool) {
	return v.i, v.kind == KindInteger
}

// AsFloat returns the float payload.
func (v Value) AsFloat() (float64, bool) {
	return v.f, v.kind == KindFloat
}

// AsBytes returns the byte-string payload. Callers must not mutate the
// returned slice.
func (v Value) AsBytes() ([]byte, bool) {
	return v.bytes, v.kind == KindBytes
}

// AsTimestamp returns the timestamp payload.
func (v Value) AsTimestamp() (time.Time, bool) {
	return v.ts, v.kind == KindTimestamp
}

// AsRegex returns the regex payload.
func (v Value) AsRegex() (*regexp.Regexp, bool) {
	return v.re, v.kind == KindRegex
}

// AsArray returns the array payload. Callers must not mutate the returned
// slice.
func (v Value) AsArray() ([]Value, bool) {
	return v.arr, v.kind == KindArray
}

// AsObject returns the object payload. Callers must not mutate the
// returned object; use Clone first.
func (v Value) AsObject() (*Object, bool) {
	return v.obj, v.kind == KindObject
}

// Number returns the value as a float64 for arithmetic, accepting both
// integer and float shapes.
func (v Value) Number() (float64, bool) {
	switch v.kind {
	case KindInteger:
		return float64(v.i), true
	case KindFloat:
		return v.f, true
	default:
		return 0, false
	}
}

// Clone returns a deep, independent copy of the value. Scalar shapes are
// returned as-is; byte strings, arrays and objects are copied.
func (v Value) Clone() Value {
	switch v.kind {
	case KindBytes:
		b := make([]byte, len(v.bytes))
		copy(b, v.bytes)
		return Value{kind: KindBytes, bytes: b}
	case KindArray:
		items := make([]Value, len(v.arr))
		for i, item := range v.arr {
			items[i] = item.Clone()
		}
		return Value{kind: KindArray, arr: items}
	case KindObject:
		return Value{kind: KindObject, obj: v.obj.Clone()}
	default:
		return v
	}
}

// Equal reports deep equality. Integers and floats are distinct shapes and
// never compare equal to each other; regexes compare by source pattern.
func (v Value) Equal(other Value) bool {
	if v.Kind() != other.Kind() {
		return false
	}
	switch v.Kind() {
	case KindNull:
		return true
	case KindBoolean:
		return v.b == other.b
	case KindInteger:
		return v.i == other.i
	case KindFloat:
		return v.f == other.f
	case KindBytes:
		return string(v.bytes) == string(other.bytes)
	case KindTimestamp:
		return v.ts.Equal(other.ts)
	case KindRegex:
		return v.re.String() == other.re.String()
	case KindArray:
		if len(v.arr) != len(other.arr) {
			return false
		}
		for i := range v.arr {
			if !v.arr[i].Equal(other.arr[i]) {
				return false
			}
		}
		return true
	case KindObject:
		return v.obj.Equal(other.obj)
	}
	return false
}

// String renders the value in Rill literal syntax, for diagnostics only.
func (v Value) String() string {
	switch v.Kind() {
	case KindNull:
		return "null"
	case KindBoolean:
		return strconv.FormatBool(v.b)
	case KindInteger:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindBytes:
		return strconv.Quote(string(v.bytes))
	case KindTimestamp:
		return "t'" + v.ts.Format(time.RFC3339Nano) + "'"
	case KindRegex:
		return "r'" + v.re.String() + "'"
	case KindArray:
		var sb strings.Builder
		sb.WriteByte('[')
		for i, item := range v.arr {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(item.String())
		}
		sb.WriteByte(']')
		return sb.String()
	case KindObject:
		return v.obj.String()
	}
	return fmt.Sprintf("<invalid kind %d>", v.kind)
}
