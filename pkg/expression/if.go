package expression

import (
	"fmt"

	"github.com/rill-lang/rill/pkg/state"
	"github.com/rill-lang/rill/pkg/value"
)

// If is a two-way conditional. The predicate must be statically boolean,
// checked at construction; the run time therefore reads the predicate
// result without a shape check.
//
// If embeds reusable partition buffers for the batch path and is not safe
// for concurrent invocation.
type If struct {
	predicate   Expression
	consequent  Expression
	alternative Expression // nil means the false branch yields null

	selTrue  []int
	selFalse []int
}

// NewIf creates a conditional. alternative may be nil.
func NewIf(predicate, consequent, alternative Expression, local *state.LocalEnv, external *state.ExternalEnv) (*If, error) {
	td := predicate.TypeDef(local, external)
	if td.IsNever() || !value.KindBoolean.Contains(td.Kinds()) {
		return nil, NewErrorf(ErrNonBooleanPredicate,
			"if predicate must be a boolean, got %s", td.Kinds())
	}
	return &If{predicate: predicate, consequent: consequent, alternative: alternative}, nil
}

// Predicate returns the condition expression.
func (e *If) Predicate() Expression {
	return e.predicate
}

// Consequent returns the true-branch expression.
func (e *If) Consequent() Expression {
	return e.consequent
}

// Alternative returns the false-branch expression, or nil.
func (e *If) Alternative() Expression {
	return e.alternative
}

func (e *If) Resolve(ctx *Context) (value.Value, error) {
	p, err := e.predicate.Resolve(ctx)
	if err != nil {
		return value.Value{}, err
	}
	if b, _ := p.AsBoolean(); b {
		return e.consequent.Resolve(ctx)
	}
	if e.alternative != nil {
		return e.alternative.Resolve(ctx)
	}
	return value.Null(), nil
}

// ResolveBatch resolves the predicate once for the whole selection, then
// partitions the still-alive rows by its outcome and runs each branch once
// over its partition. Rows whose predicate failed keep the predicate's
// error, matching per-row semantics.
func (e *If) ResolveBatch(ctx *BatchContext, selection []int) {
	e.predicate.ResolveBatch(ctx, selection)

	e.selTrue = e.selTrue[:0]
	e.selFalse = e.selFalse[:0]
	for _, i := range selection {
		r := ctx.Resolved(i)
		if r.IsErr() {
			continue
		}
		if b, _ := r.Value.AsBoolean(); b {
			e.selTrue = append(e.selTrue, i)
		} else {
			e.selFalse = append(e.selFalse, i)
		}
	}

	if len(e.selTrue) > 0 {
		e.consequent.ResolveBatch(ctx, e.selTrue)
	}
	if len(e.selFalse) > 0 {
		if e.alternative != nil {
			e.alternative.ResolveBatch(ctx, e.selFalse)
		} else {
			for _, i := range e.selFalse {
				ctx.SetValue(i, value.Null())
			}
		}
	}
}

func (e *If) TypeDef(local *state.LocalEnv, external *state.ExternalEnv) TypeDef {
	pt := e.predicate.TypeDef(local, external)
	td := e.consequent.TypeDef(local, external)
	if e.alternative != nil {
		td = td.Merge(e.alternative.TypeDef(local, external))
	} else {
		td = td.Merge(NewTypeDef(value.KindNull))
	}
	if pt.IsFallible() {
		td = td.WithFallible(true)
	}
	if pt.IsAbortable() {
		td = td.WithAbortable(true)
	}
	return td
}

func (e *If) String() string {
	if e.alternative != nil {
		return fmt.Sprintf("if %s %s else %s", e.predicate, e.consequent, e.alternative)
	}
	return fmt.Sprintf("if %s %s", e.predicate, e.consequent)
}
