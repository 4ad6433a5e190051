package expression

import (
	"github.com/rill-lang/rill/pkg/state"
	"github.com/rill-lang/rill/pkg/value"
)

// Variable reads a previously bound variable.
//
// Referencing an undefined variable is rejected at construction time.
// That compile-time check is what allows the run time to skip scope
// save/restore entirely: no expression can observe a variable its scope
// never defined.
type Variable struct {
	ident string
}

// NewVariable creates a variable reference, verifying that ident is bound
// in the current scope.
func NewVariable(ident string, local *state.LocalEnv) (*Variable, error) {
	if _, ok := local.Variable(ident); !ok {
		return nil, NewErrorf(ErrUndefinedVariable, "undefined variable %q", ident)
	}
	return &Variable{ident: ident}, nil
}

// Ident returns the variable's identifier.
func (v *Variable) Ident() string {
	return v.ident
}

func (v *Variable) Resolve(ctx *Context) (value.Value, error) {
	val, ok := ctx.Variable(v.ident)
	if !ok {
		// Unreachable after a successful type check; null keeps the
		// backends aligned if it ever happens.
		return value.Null(), nil
	}
	return val, nil
}

func (v *Variable) ResolveBatch(ctx *BatchContext, selection []int) {
	resolveBatchRows(v, ctx, selection)
}

func (v *Variable) TypeDef(local *state.LocalEnv, _ *state.ExternalEnv) TypeDef {
	if b, ok := local.Variable(v.ident); ok {
		return NewTypeDef(b.Kinds)
	}
	return NewTypeDef(value.KindNull)
}

func (v *Variable) String() string {
	return v.ident
}
