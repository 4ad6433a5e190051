// Package state holds the typing environments threaded through the
// compile-time inference pass.
//
// [LocalEnv] tracks per-variable inferred types and is mutated by binding
// constructs (assignments) as the pass walks the tree left to right.
// Nested scopes snapshot the environment on entry and restore it on exit,
// so bindings introduced inside a block never leak to the parent scope.
//
// [ExternalEnv] is the program-wide typing state of the external event
// target. It is read-only while an individual expression is inferred.
package state

import (
	"maps"

	"github.com/rill-lang/rill/pkg/value"
)

// Variable is the inferred typing of one bound variable.
type Variable struct {
	// Kinds is the set of shapes the variable may hold.
	Kinds value.Kind
}

// LocalEnv maps variable identifiers to their currently inferred typing.
type LocalEnv struct {
	bindings map[string]Variable
}

// NewLocalEnv returns an empty local environment.
func NewLocalEnv() *LocalEnv {
	return &LocalEnv{bindings: make(map[string]Variable)}
}

// Variable returns the typing bound to ident.
func (e *LocalEnv) Variable(ident string) (Variable, bool) {
	v, ok := e.bindings[ident]
	return v, ok
}

// Bind sets or replaces the typing of ident.
func (e *LocalEnv) Bind(ident string, v Variable) {
	if e.bindings == nil {
		e.bindings = make(map[string]Variable)
	}
	e.bindings[ident] = v
}

// Len returns the number of bound variables.
func (e *LocalEnv) Len() int {
	return len(e.bindings)
}

// Snapshot returns an independent copy of the environment. Blocks take a
// snapshot on entry; the parent keeps using the original, so bindings
// added to the snapshot stay invisible outside the block.
func (e *LocalEnv) Snapshot() *LocalEnv {
	return &LocalEnv{bindings: maps.Clone(e.bindings)}
}

// ExternalEnv is the compile-time typing state of the event target.
type ExternalEnv struct {
	target value.Kind
	fields map[string]value.Kind
}

// NewExternalEnv returns an environment whose target may hold any shape
// and that declares no external fields.
func NewExternalEnv() *ExternalEnv {
	return &ExternalEnv{target: value.KindAny}
}

// TargetKind returns the set of shapes the event target may hold.
func (e *ExternalEnv) TargetKind() value.Kind {
	return e.target
}

// SetTargetKind declares the target's shape set. Meant to be called while
// assembling the environment, before inference starts.
func (e *ExternalEnv) SetTargetKind(k value.Kind) {
	e.target = k
}

// Field returns the declared shape set of an external field path, or
// KindAny when the field is undeclared.
func (e *ExternalEnv) Field(path string) value.Kind {
	if k, ok := e.fields[path]; ok {
		return k
	}
	return value.KindAny
}

// DeclareField records the shape set of an external field path (dotted
// notation, e.g. "message" or "http.status").
func (e *ExternalEnv) DeclareField(path string, k value.Kind) {
	if e.fields == nil {
		e.fields = make(map[string]value.Kind)
	}
	e.fields[path] = k
}
