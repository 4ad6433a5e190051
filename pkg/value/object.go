package value

import (
	"strconv"
	"strings"
)

// Object is an insertion-ordered mapping from string keys to values.
//
// Key order is significant for rendering and equality of insertion order
// is NOT required: two objects are equal when they hold the same key/value
// pairs regardless of order. Order is preserved through Clone so that
// serialized events keep their field layout.
type Object struct {
	keys   []string
	values map[string]Value
}

// NewObject returns an empty object.
func NewObject() *Object {
	return &Object{values: make(map[string]Value)}
}

// Len returns the number of keys. A nil object is empty.
func (o *Object) Len() int {
	if o == nil {
		return 0
	}
	return len(o.keys)
}

// Keys returns the keys in insertion order. Callers must not mutate the
// returned slice.
func (o *Object) Keys() []string {
	return o.keys
}

// Get returns the value stored under key.
func (o *Object) Get(key string) (Value, bool) {
	v, ok := o.values[key]
	return v, ok
}

// Set stores v under key, appending the key on first insertion.
func (o *Object) Set(key string, v Value) {
	if _, ok := o.values[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.values[key] = v
}

// Remove deletes key from the object.
func (o *Object) Remove(key string) {
	if _, ok := o.values[key]; !ok {
		return
	}
	delete(o.values, key)
	for i, k := range o.keys {
		if k == key {
			o.keys = append(o.keys[:i], o.keys[i+1:]...)
			break
		}
	}
}

// Clone returns a deep copy preserving key order.
func (o *Object) Clone() *Object {
	if o == nil {
		return NewObject()
	}
	c := &Object{
		keys:   make([]string, len(o.keys)),
		values: make(map[string]Value, len(o.values)),
	}
	copy(c.keys, o.keys)
	for k, v := range o.values {
		c.values[k] = v.Clone()
	}
	return c
}

// Equal reports whether both objects hold the same key/value pairs.
func (o *Object) Equal(other *Object) bool {
	if o == nil || other == nil {
		return o.Len() == 0 && other.Len() == 0
	}
	if len(o.values) != len(other.values) {
		return false
	}
	for k, v := range o.values {
		ov, ok := other.values[k]
		if !ok || !v.Equal(ov) {
			return false
		}
	}
	return true
}

// String renders the object in insertion order, for diagnostics only.
func (o *Object) String() string {
	var sb strings.Builder
	sb.WriteByte('{')
	for i, k := range o.keys {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(strconv.Quote(k))
		sb.WriteString(": ")
		sb.WriteString(o.values[k].String())
	}
	sb.WriteByte('}')
	return sb.String()
}
