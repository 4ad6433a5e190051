// Package expression implements the evaluation and static-typing core of
// the Rill remap language.
//
// Every language construct — literals, variable references, operators,
// blocks, conditionals, assignments, function calls — implements the
// [Expression] contract: single-record resolution, batch resolution over a
// selection vector, and compile-time type inference. The inference pass
// ([TypeDef] on each node) must run, and succeed, before either execution
// path may be used; the batch backend relies on it to skip run-time checks
// the tree-walking backend would otherwise need.
//
// An optional third backend, ahead-of-time native lowering, lives in
// pkg/native as a separate package; its absence has no effect on the two
// backends here.
//
// # Concurrency
//
// A compiled expression tree is not reentrant: block nodes embed reusable
// selection-vector scratch buffers that are mutated during batch
// resolution. A tree must be executed by at most one goroutine at a time;
// run independent batches through independent trees, not through shared
// ones.
package expression

import (
	"fmt"

	"github.com/rill-lang/rill/pkg/state"
	"github.com/rill-lang/rill/pkg/value"
)

// Expression is the polymorphic contract every Rill language construct
// implements.
type Expression interface {
	fmt.Stringer

	// Resolve evaluates the expression against exactly one record. It
	// must be called only after the tree has been type-checked; behavior
	// on a value outside the inferred TypeDef is a static-soundness bug,
	// not a run-time case.
	Resolve(ctx *Context) (value.Value, error)

	// ResolveBatch evaluates the expression for each row named by
	// selection, writing a value or an error into the row's slot in ctx.
	// Rows not in selection are left untouched. The per-row outcome must
	// be identical to what Resolve would produce for that row in
	// isolation.
	ResolveBatch(ctx *BatchContext, selection []int)

	// TypeDef computes the statically possible result shape and failure
	// flags. It has no run-time side effects; binding constructs may
	// mutate local as part of being typed, making the binding visible to
	// later sibling expressions.
	TypeDef(local *state.LocalEnv, external *state.ExternalEnv) TypeDef
}

// resolveBatchRows is the default batch lowering used by leaf expressions:
// resolve each selected row independently against its single-record view.
// Composite expressions (Block, If) override this with selection-vector
// logic that shares tree traversal across rows.
func resolveBatchRows(e Expression, ctx *BatchContext, selection []int) {
	for _, i := range selection {
		v, err := e.Resolve(ctx.Row(i))
		if err != nil {
			ctx.SetError(i, err)
		} else {
			ctx.SetValue(i, v)
		}
	}
}
