package expression

import (
	"github.com/rill-lang/rill/pkg/state"
	"github.com/rill-lang/rill/pkg/value"
)

// Abort terminates evaluation of the current event. Its type is "never":
// it cannot produce a value, and nothing may be sequenced after it inside
// a block.
type Abort struct {
	message Expression // optional
}

// NewAbort creates an abort expression; message may be nil.
func NewAbort(message Expression) *Abort {
	return &Abort{message: message}
}

func (a *Abort) Resolve(ctx *Context) (value.Value, error) {
	msg := "aborted"
	if a.message != nil {
		mv, err := a.message.Resolve(ctx)
		if err != nil {
			return value.Value{}, err
		}
		if b, ok := mv.AsBytes(); ok {
			msg = string(b)
		} else {
			msg = mv.String()
		}
	}
	return value.Value{}, NewAbortError(msg)
}

func (a *Abort) ResolveBatch(ctx *BatchContext, selection []int) {
	resolveBatchRows(a, ctx, selection)
}

func (a *Abort) TypeDef(local *state.LocalEnv, external *state.ExternalEnv) TypeDef {
	td := Never().WithAbortable(true)
	if a.message != nil && a.message.TypeDef(local, external).IsFallible() {
		td = td.WithFallible(true)
	}
	return td
}

func (a *Abort) String() string {
	if a.message != nil {
		return "abort " + a.message.String()
	}
	return "abort"
}

// Noop yields null. Constructions that need a placeholder expression use
// it instead of special-casing absence.
type Noop struct{}

func (Noop) Resolve(_ *Context) (value.Value, error) {
	return value.Null(), nil
}

func (n Noop) ResolveBatch(ctx *BatchContext, selection []int) {
	for _, i := range selection {
		ctx.SetValue(i, value.Null())
	}
}

func (Noop) TypeDef(_ *state.LocalEnv, _ *state.ExternalEnv) TypeDef {
	return NewTypeDef(value.KindNull)
}

func (Noop) String() string {
	return "noop"
}
