package expression

import (
	"strings"

	"github.com/rill-lang/rill/pkg/value"
)

// TypeDef is the statically inferred description of an expression's
// result: the set of shapes it may produce plus two failure flags.
//
// TypeDefs form a join-semilattice: [TypeDef.Merge] unions the shape sets
// and ORs the flags, which is the combination rule for control-flow
// branches and for folding a block's children.
//
// The empty shape set is the distinguished "never" type: the expression
// cannot produce a value at all (an explicit abort). Anything sequenced
// after a never-typed expression is dead code, and the Block type pass
// treats its presence as an internal invariant violation.
type TypeDef struct {
	kinds     value.Kind
	fallible  bool
	abortable bool
}

// NewTypeDef returns an infallible TypeDef over the given shape set.
func NewTypeDef(kinds value.Kind) TypeDef {
	return TypeDef{kinds: kinds}
}

// Never returns the TypeDef of an expression that cannot produce a value.
func Never() TypeDef {
	return TypeDef{}
}

// Kinds returns the shape set.
func (t TypeDef) Kinds() value.Kind {
	return t.kinds
}

// IsNever reports whether the expression can never produce a value.
func (t TypeDef) IsNever() bool {
	return t.kinds.IsEmpty()
}

// IsFallible reports whether resolution may produce an error.
func (t TypeDef) IsFallible() bool {
	return t.fallible
}

// IsAbortable reports whether an error here terminates the whole program
// rather than being recoverable.
func (t TypeDef) IsAbortable() bool {
	return t.abortable
}

// IsNullable reports whether null is a possible shape.
func (t TypeDef) IsNullable() bool {
	return t.kinds.Contains(value.KindNull)
}

// IsExact reports whether the expression has exactly one possible shape
// and cannot fail. Backends use this to elide run-time checks.
func (t TypeDef) IsExact() bool {
	return t.kinds.IsExact() && !t.fallible
}

// WithFallible returns a copy with the fallible flag set to f.
func (t TypeDef) WithFallible(f bool) TypeDef {
	t.fallible = f
	return t
}

// WithAbortable returns a copy with the abortable flag set to a.
func (t TypeDef) WithAbortable(a bool) TypeDef {
	t.abortable = a
	return t
}

// Merge joins two TypeDefs: shape sets are unioned, flags are ORed.
func (t TypeDef) Merge(other TypeDef) TypeDef {
	return TypeDef{
		kinds:     t.kinds.Union(other.kinds),
		fallible:  t.fallible || other.fallible,
		abortable: t.abortable || other.abortable,
	}
}

// String renders the TypeDef for diagnostics, e.g. "integer|float!" where
// "!" marks fallibility and "^" abortability.
func (t TypeDef) String() string {
	var sb strings.Builder
	sb.WriteString(t.kinds.String())
	if t.fallible {
		sb.WriteByte('!')
	}
	if t.abortable {
		sb.WriteByte('^')
	}
	return sb.String()
}
