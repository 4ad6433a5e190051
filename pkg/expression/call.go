package expression

import (
	"strings"

	"github.com/rill-lang/rill/pkg/functions"
	"github.com/rill-lang/rill/pkg/state"
	"github.com/rill-lang/rill/pkg/value"
)

// Call invokes a function from the registry. Arity and argument shapes
// are validated at construction against the function's declared
// signature; arguments whose static shapes only partially overlap a
// parameter keep the call fallible at run time.
type Call struct {
	fn   functions.Function
	args []Expression

	// set at construction when some argument is not statically guaranteed
	// to fit its parameter
	looseArgs bool
}

// NewCall creates a call expression for fn with the given arguments.
func NewCall(fn functions.Function, args []Expression, local *state.LocalEnv, external *state.ExternalEnv) (*Call, error) {
	sig := fn.Signature()
	if len(args) != len(sig.Params) {
		return nil, NewErrorf(ErrArgumentCount,
			"%s expects %d argument(s), got %d", fn.Name(), len(sig.Params), len(args))
	}

	loose := false
	for i, arg := range args {
		param := sig.Params[i]
		kinds := arg.TypeDef(local, external).Kinds()
		if !kinds.Intersects(param.Kind) {
			return nil, NewErrorf(ErrArgumentKind,
				"argument %q of %s must be %s, got %s", param.Name, fn.Name(), param.Kind, kinds)
		}
		if !param.Kind.Contains(kinds) {
			loose = true
		}
	}
	return &Call{fn: fn, args: args, looseArgs: loose}, nil
}

// Func returns the called function.
func (c *Call) Func() functions.Function {
	return c.fn
}

// Args returns the argument expressions.
func (c *Call) Args() []Expression {
	return c.args
}

func (c *Call) Resolve(ctx *Context) (value.Value, error) {
	args := make([]value.Value, len(c.args))
	for i, arg := range c.args {
		v, err := arg.Resolve(ctx)
		if err != nil {
			return value.Value{}, err
		}
		args[i] = v
	}
	return c.Apply(args)
}

// Apply invokes the function over already-resolved arguments, wrapping
// foreign errors. Shared by Resolve and the native backend's runtime
// helpers.
func (c *Call) Apply(args []value.Value) (value.Value, error) {
	v, err := c.fn.Call(args)
	if err != nil {
		if _, ok := err.(*Error); ok {
			return value.Value{}, err
		}
		return value.Value{}, NewErrorf(ErrFunctionFailed, "%s failed", c.fn.Name()).WithCause(err)
	}
	return v, nil
}

func (c *Call) ResolveBatch(ctx *BatchContext, selection []int) {
	resolveBatchRows(c, ctx, selection)
}

func (c *Call) TypeDef(local *state.LocalEnv, external *state.ExternalEnv) TypeDef {
	sig := c.fn.Signature()
	td := NewTypeDef(sig.Result)
	fallible := sig.Fallible || c.looseArgs
	abortable := false
	for _, arg := range c.args {
		at := arg.TypeDef(local, external)
		fallible = fallible || at.IsFallible()
		abortable = abortable || at.IsAbortable()
	}
	return td.WithFallible(fallible).WithAbortable(abortable)
}

func (c *Call) String() string {
	parts := make([]string, len(c.args))
	for i, arg := range c.args {
		parts[i] = arg.String()
	}
	return c.fn.Name() + "(" + strings.Join(parts, ", ") + ")"
}
