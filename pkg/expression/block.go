package expression

import (
	"fmt"
	"strings"

	"github.com/rill-lang/rill/pkg/state"
	"github.com/rill-lang/rill/pkg/value"
)

// Block is an ordered sequence of expressions evaluated as one unit: every
// child but the last runs for its side effects, the last child's value is
// the block's value.
//
// The block owns a snapshot of the local environment taken at construction
// time. Children are typed against that snapshot, so bindings they
// introduce are visible to later siblings but never to the parent scope.
//
// Block embeds two reusable row-index buffers used by ResolveBatch; a
// Block is therefore not safe for concurrent invocation.
type Block struct {
	inner    []Expression
	localEnv *state.LocalEnv

	selThis  []int
	selOther []int
}

// NewBlock creates a block over inner, capturing local as the block's
// scope. An empty inner sequence is a compile-time error.
func NewBlock(inner []Expression, local *state.LocalEnv) (*Block, error) {
	if len(inner) == 0 {
		return nil, NewError(ErrEmptyBlock, "a block must contain at least one expression")
	}
	return &Block{inner: inner, localEnv: local.Snapshot()}, nil
}

// Inner returns the child expressions.
func (b *Block) Inner() []Expression {
	return b.inner
}

// Resolve evaluates the children strictly in order, short-circuiting on
// the first error; the last child's result is the block's result.
//
// Variables bound in child scopes are not restored here: the compile-time
// undefined-variable check already guarantees no parent expression can
// observe them, so the run time skips the (costly) save/restore.
func (b *Block) Resolve(ctx *Context) (value.Value, error) {
	last := len(b.inner) - 1
	for _, expr := range b.inner[:last] {
		if _, err := expr.Resolve(ctx); err != nil {
			return value.Value{}, err
		}
	}
	return b.inner[last].Resolve(ctx)
}

// ResolveBatch reproduces, for every row independently, the exact outcome
// a per-row Resolve would produce, while traversing the expression tree
// once for the whole batch.
//
// The general path keeps two index buffers: the current alive set starts
// as a copy of the incoming selection vector; after each child runs, rows
// whose slot now holds an error drop out, and the buffers swap roles for
// the next child. Rows dropped early keep the error written by whichever
// child failed them.
func (b *Block) ResolveBatch(ctx *BatchContext, selection []int) {
	if len(b.inner) == 1 {
		b.inner[0].ResolveBatch(ctx, selection)
		return
	}

	b.selThis = append(b.selThis[:0], selection...)

	for _, expr := range b.inner {
		expr.ResolveBatch(ctx, b.selThis)

		b.selOther = b.selOther[:0]
		for _, i := range b.selThis {
			if !ctx.Resolved(i).IsErr() {
				b.selOther = append(b.selOther, i)
			}
		}

		b.selThis, b.selOther = b.selOther, b.selThis
	}
}

// TypeDef folds over the children in order under the block's own scope,
// ORing each child's fallible and abortable flags into the result; the
// last processed child supplies the shape set. The block's scope is
// discarded afterwards — callers see only the merged TypeDef, not the
// block's internal bindings.
//
// A child with a "never" type is terminating: no expression may follow it.
// The construction step is responsible for never emitting dead code as
// data, so a trailing expression here is an internal invariant violation
// and panics rather than producing a corrupted result.
func (b *Block) TypeDef(_ *state.LocalEnv, external *state.ExternalEnv) TypeDef {
	last := NewTypeDef(value.KindNull)
	fallible := false
	abortable := false
	terminated := false

	for _, expr := range b.inner {
		if terminated {
			panic("rill: block contains an expression after a terminating expression; this is an internal compiler error")
		}
		last = expr.TypeDef(b.localEnv, external)
		if last.IsNever() {
			terminated = true
		}
		if last.IsFallible() {
			fallible = true
		}
		if last.IsAbortable() {
			abortable = true
		}
	}

	return last.WithFallible(fallible).WithAbortable(abortable)
}

// String renders the block with one child per indented line.
func (b *Block) String() string {
	var sb strings.Builder
	sb.WriteString("{\n")
	for _, expr := range b.inner {
		fmt.Fprintf(&sb, "\t%s\n", expr)
	}
	sb.WriteString("}")
	return sb.String()
}
