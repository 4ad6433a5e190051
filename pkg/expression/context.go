package expression

import (
	"github.com/rill-lang/rill/pkg/value"
)

// Target is the record representation an expression program reads and
// mutates. The concrete event model lives in the surrounding pipeline;
// pkg/event provides a map-backed implementation for embedders and tests.
//
// Paths are field segments, e.g. ["http", "status"] for .http.status.
type Target interface {
	// Get returns the value at path, or (_, false) when the field is
	// absent.
	Get(path []string) (value.Value, bool)
	// Set writes v at path, creating intermediate objects as needed.
	Set(path []string, v value.Value)
	// Remove deletes the field at path, if present.
	Remove(path []string)
}

// Context is the run-time environment for resolving expressions against
// exactly one record: the record itself plus its variable storage.
//
// A Context is created per incoming record and discarded once resolution
// finishes; its lifetime is exactly one record's processing, so no pooling
// is involved.
type Context struct {
	target Target
	vars   map[string]value.Value
}

// NewContext returns a fresh context for one record.
func NewContext(target Target) *Context {
	return &Context{target: target}
}

// Target returns the record under evaluation.
func (c *Context) Target() Target {
	return c.target
}

// Variable returns the value bound to ident.
func (c *Context) Variable(ident string) (value.Value, bool) {
	v, ok := c.vars[ident]
	return v, ok
}

// SetVariable binds ident to v.
func (c *Context) SetVariable(ident string, v value.Value) {
	if c.vars == nil {
		c.vars = make(map[string]value.Value)
	}
	c.vars[ident] = v
}

// Resolved is one row's resolution outcome inside a batch: a value or an
// error, never both.
type Resolved struct {
	Value value.Value
	Err   error
}

// IsErr reports whether the row failed.
func (r Resolved) IsErr() bool {
	return r.Err != nil
}

// BatchContext is the run-time environment for resolving expressions
// against a batch of records. It holds one resolution slot, one target and
// one variable store per row, and is mutated in place by every
// sub-expression's ResolveBatch call.
//
// A BatchContext is created per incoming batch, pre-sized to the batch
// length, and discarded once all rows have been drained. It is not safe
// for concurrent use; the executing goroutine must hold exclusive access
// for the duration of one batch.
type BatchContext struct {
	resolved []Resolved
	rows     []Context
}

// NewBatchContext returns a batch context over the given per-row targets.
func NewBatchContext(targets []Target) *BatchContext {
	b := &BatchContext{
		resolved: make([]Resolved, len(targets)),
		rows:     make([]Context, len(targets)),
	}
	for i, t := range targets {
		b.rows[i] = Context{target: t}
	}
	return b
}

// Len returns the number of rows.
func (b *BatchContext) Len() int {
	return len(b.resolved)
}

// Resolved returns row i's current outcome.
func (b *BatchContext) Resolved(i int) Resolved {
	return b.resolved[i]
}

// SetValue stores a success value into row i's slot.
func (b *BatchContext) SetValue(i int, v value.Value) {
	b.resolved[i] = Resolved{Value: v}
}

// SetError stores an error into row i's slot.
func (b *BatchContext) SetError(i int, err error) {
	b.resolved[i] = Resolved{Err: err}
}

// Row returns the single-record context of row i, sharing the row's target
// and variable storage with the batch.
func (b *BatchContext) Row(i int) *Context {
	return &b.rows[i]
}
