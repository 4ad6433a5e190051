package event_test

import (
	"testing"

	"github.com/rill-lang/rill/pkg/event"
	"github.com/rill-lang/rill/pkg/value"
)

func TestEventSetGet(t *testing.T) {
	e := event.New()

	if _, ok := e.Get([]string{"missing"}); ok {
		t.Fatal("empty event should miss")
	}

	e.Set([]string{"message"}, value.String("hello"))
	got, ok := e.Get([]string{"message"})
	if !ok || !got.Equal(value.String("hello")) {
		t.Errorf("Get(message) = %s, %v", got, ok)
	}
}

func TestEventNestedSetCreatesIntermediates(t *testing.T) {
	e := event.New()
	e.Set([]string{"http", "request", "method"}, value.String("GET"))

	got, ok := e.Get([]string{"http", "request", "method"})
	if !ok || !got.Equal(value.String("GET")) {
		t.Fatalf("nested Get = %s, %v", got, ok)
	}

	// The intermediate is a real object field.
	mid, ok := e.Get([]string{"http", "request"})
	if !ok {
		t.Fatal("intermediate object should exist")
	}
	if _, isObj := mid.AsObject(); !isObj {
		t.Errorf("intermediate = %s, want an object", mid.Kind())
	}
}

func TestEventSetReplacesNonObjectIntermediate(t *testing.T) {
	e := event.New()
	e.Set([]string{"http"}, value.Integer(1))
	e.Set([]string{"http", "status"}, value.Integer(200))

	got, ok := e.Get([]string{"http", "status"})
	if !ok || !got.Equal(value.Integer(200)) {
		t.Errorf("Get(http.status) = %s, %v", got, ok)
	}
}

func TestEventRemove(t *testing.T) {
	e := event.New()
	e.Set([]string{"a", "b"}, value.Integer(1))
	e.Set([]string{"a", "c"}, value.Integer(2))

	e.Remove([]string{"a", "b"})
	if _, ok := e.Get([]string{"a", "b"}); ok {
		t.Error("removed field still present")
	}
	if _, ok := e.Get([]string{"a", "c"}); !ok {
		t.Error("sibling field must survive")
	}

	// Removing through a missing path is a no-op.
	e.Remove([]string{"x", "y"})
}

func TestEventEmptyPathIsWholeEvent(t *testing.T) {
	e := event.New()
	e.Set([]string{"n"}, value.Integer(1))

	whole, ok := e.Get(nil)
	if !ok {
		t.Fatal("empty path should return the whole event")
	}
	obj, isObj := whole.AsObject()
	if !isObj {
		t.Fatal("whole event should be an object")
	}
	if got, _ := obj.Get("n"); !got.Equal(value.Integer(1)) {
		t.Errorf("whole event n = %s, want 1", got)
	}
}

func TestEventCloneIsIndependent(t *testing.T) {
	e := event.New()
	e.Set([]string{"n"}, value.Integer(1))

	c := e.Clone()
	e.Set([]string{"n"}, value.Integer(2))

	got, _ := c.Get([]string{"n"})
	if !got.Equal(value.Integer(1)) {
		t.Errorf("clone mutated along with original: n = %s", got)
	}
}
