// Package event provides a map-backed record implementation of the
// expression engine's Target interface.
//
// The real event model belongs to the surrounding pipeline; this package
// is the stand-in used by embedders and tests. Fields are stored in an
// insertion-ordered object and addressed by path segments, so
// ["http", "status"] names the nested field .http.status.
package event

import (
	"github.com/rill-lang/rill/pkg/value"
)

// Event is one structured record (a log line, metric sample or trace
// span). Not safe for concurrent use.
type Event struct {
	fields *value.Object
}

// New returns an empty event.
func New() *Event {
	return &Event{fields: value.NewObject()}
}

// FromObject returns an event over the given fields. The object is not
// copied.
func FromObject(fields *value.Object) *Event {
	if fields == nil {
		fields = value.NewObject()
	}
	return &Event{fields: fields}
}

// Fields returns the event's root object.
func (e *Event) Fields() *value.Object {
	return e.fields
}

// Value returns the whole event as an object value.
func (e *Event) Value() value.Value {
	return value.ObjectValue(e.fields)
}

// Clone returns a deep copy of the event.
func (e *Event) Clone() *Event {
	return &Event{fields: e.fields.Clone()}
}

// Get returns the value at path, descending through nested objects.
func (e *Event) Get(path []string) (value.Value, bool) {
	if len(path) == 0 {
		return e.Value(), true
	}
	obj := e.fields
	for _, seg := range path[:len(path)-1] {
		v, ok := obj.Get(seg)
		if !ok {
			return value.Value{}, false
		}
		obj, ok = v.AsObject()
		if !ok {
			return value.Value{}, false
		}
	}
	return obj.Get(path[len(path)-1])
}

// Set writes v at path, creating intermediate objects as needed. A
// non-object intermediate value is replaced by an object.
func (e *Event) Set(path []string, v value.Value) {
	if len(path) == 0 {
		return
	}
	obj := e.fields
	for _, seg := range path[:len(path)-1] {
		next, ok := obj.Get(seg)
		child, isObj := next.AsObject()
		if !ok || !isObj {
			child = value.NewObject()
			obj.Set(seg, value.ObjectValue(child))
		}
		obj = child
	}
	obj.Set(path[len(path)-1], v)
}

// Remove deletes the field at path, if present.
func (e *Event) Remove(path []string) {
	if len(path) == 0 {
		return
	}
	obj := e.fields
	for _, seg := range path[:len(path)-1] {
		v, ok := obj.Get(seg)
		if !ok {
			return
		}
		obj, ok = v.AsObject()
		if !ok {
			return
		}
	}
	obj.Remove(path[len(path)-1])
}
