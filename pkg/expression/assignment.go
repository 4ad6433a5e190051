package expression

import (
	"strings"

	"github.com/rill-lang/rill/pkg/state"
	"github.com/rill-lang/rill/pkg/value"
)

// Assignment stores the result of its right-hand side into either a
// variable or an event field, and yields the stored value.
//
// Assignment is the only binding construct: typing it mutates the local
// environment so that later sibling expressions see the variable's
// inferred type.
type Assignment struct {
	ident string   // variable target when non-empty
	path  []string // event-field target when non-nil
	rhs   Expression
}

// NewVariableAssignment creates "ident = rhs" and binds ident's inferred
// type into local so that expressions constructed afterwards can reference
// it.
func NewVariableAssignment(ident string, rhs Expression, local *state.LocalEnv, external *state.ExternalEnv) *Assignment {
	td := rhs.TypeDef(local, external)
	local.Bind(ident, state.Variable{Kinds: td.Kinds()})
	return &Assignment{ident: ident, rhs: rhs}
}

// NewFieldAssignment creates ".path = rhs", writing into the event target.
func NewFieldAssignment(path []string, rhs Expression) *Assignment {
	return &Assignment{path: path, rhs: rhs}
}

// RHS returns the right-hand side expression.
func (a *Assignment) RHS() Expression {
	return a.rhs
}

func (a *Assignment) Resolve(ctx *Context) (value.Value, error) {
	v, err := a.rhs.Resolve(ctx)
	if err != nil {
		return value.Value{}, err
	}
	a.Store(ctx, v)
	return v, nil
}

// Store writes an already-resolved value into the assignment's target.
// Shared by Resolve and the native backend's runtime helpers.
func (a *Assignment) Store(ctx *Context, v value.Value) {
	if a.path != nil {
		// The target takes its own copy; values already stored elsewhere
		// must not alias event mutations.
		ctx.Target().Set(a.path, v.Clone())
	} else {
		ctx.SetVariable(a.ident, v)
	}
}

func (a *Assignment) ResolveBatch(ctx *BatchContext, selection []int) {
	resolveBatchRows(a, ctx, selection)
}

func (a *Assignment) TypeDef(local *state.LocalEnv, external *state.ExternalEnv) TypeDef {
	td := a.rhs.TypeDef(local, external)
	if a.path == nil {
		local.Bind(a.ident, state.Variable{Kinds: td.Kinds()})
	}
	return td
}

func (a *Assignment) String() string {
	if a.path != nil {
		return "." + strings.Join(a.path, ".") + " = " + a.rhs.String()
	}
	return a.ident + " = " + a.rhs.String()
}
