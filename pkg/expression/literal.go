package expression

import (
	"github.com/rill-lang/rill/pkg/state"
	"github.com/rill-lang/rill/pkg/value"
)

// Literal is a constant value. Resolution cannot fail.
type Literal struct {
	value value.Value
}

// NewLiteral creates a literal expression.
func NewLiteral(v value.Value) *Literal {
	return &Literal{value: v}
}

// Value returns the literal's constant.
func (l *Literal) Value() value.Value {
	return l.value
}

func (l *Literal) Resolve(_ *Context) (value.Value, error) {
	return l.value.Clone(), nil
}

func (l *Literal) ResolveBatch(ctx *BatchContext, selection []int) {
	for _, i := range selection {
		ctx.SetValue(i, l.value.Clone())
	}
}

func (l *Literal) TypeDef(_ *state.LocalEnv, _ *state.ExternalEnv) TypeDef {
	return NewTypeDef(l.value.Kind())
}

func (l *Literal) String() string {
	return l.value.String()
}
