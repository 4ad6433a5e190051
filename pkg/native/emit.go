package native

import (
	"fmt"

	"github.com/rill-lang/rill/pkg/expression"
	"github.com/rill-lang/rill/pkg/state"
)

// Host import names, in registration order. The lowering emits calls by
// name; Compile resolves them to import indices.
const (
	hostEval    = "eval"
	hostStore   = "store"
	hostPush    = "push"
	hostBinop   = "binop"
	hostCallFn  = "call_fn"
	hostSetBool = "set_bool"
	hostToBool  = "to_bool"
	hostSetNull = "set_null"
	hostIsErr   = "is_err"
	hostIsTrue  = "is_true"
	hostIsAbort = "is_abort"
)

// pool collects the nodes the generated code refers to by index. The
// machine executing the module resolves indices back through the same
// pool, so generated code and host runtime always agree.
type pool struct {
	exprs   []expression.Expression
	assigns []*expression.Assignment
	ops     []*expression.Op
	calls   []*expression.Call
}

func (p *pool) addExpr(e expression.Expression) uint32 {
	p.exprs = append(p.exprs, e)
	return uint32(len(p.exprs) - 1)
}

func (p *pool) addAssign(a *expression.Assignment) uint32 {
	p.assigns = append(p.assigns, a)
	return uint32(len(p.assigns) - 1)
}

func (p *pool) addOp(o *expression.Op) uint32 {
	p.ops = append(p.ops, o)
	return uint32(len(p.ops) - 1)
}

func (p *pool) addCall(c *expression.Call) uint32 {
	p.calls = append(p.calls, c)
	return uint32(len(p.calls) - 1)
}

// emitter lowers a checked expression tree into a WebAssembly function
// body: structured blocks and conditional branches for the control flow,
// calls into the host runtime helpers for the value operations. This
// mirrors the interpreter exactly — the helpers delegate to the same
// Resolve/Apply/Store code paths — so both backends share one semantics.
type emitter struct {
	body    []byte
	pool    pool
	imports map[string]uint32

	local    *state.LocalEnv
	external *state.ExternalEnv

	// depth is the current count of enclosing structured labels;
	// exitDepth is the label errors propagate to (the innermost block's
	// end). Branch immediates are relative: depth - target.
	depth     int
	exitDepth int
}

func (e *emitter) callHost(name string) {
	e.body = append(e.body, opCall)
	e.body = appendULEB128(e.body, e.imports[name])
}

func (e *emitter) callHostIdx(name string, idx uint32) {
	e.body = append(e.body, opI32Const)
	e.body = appendULEB128(e.body, idx)
	e.callHost(name)
}

func (e *emitter) brIf(targetDepth int) {
	e.body = append(e.body, opBrIf)
	e.body = appendULEB128(e.body, uint32(e.depth-targetDepth))
}

// guard emits the error check that follows a child whose type says it can
// fail: branch to the enclosing exit on a recoverable or abort error, or
// on an abort condition alone when the child is abortable but infallible.
func (e *emitter) guard(td expression.TypeDef) {
	switch {
	case td.IsFallible():
		e.callHost(hostIsErr)
		e.brIf(e.exitDepth)
	case td.IsAbortable():
		e.callHost(hostIsAbort)
		e.brIf(e.exitDepth)
	}
}

// emitChecked lowers a sub-expression and guards its outcome.
func (e *emitter) emitChecked(expr expression.Expression) error {
	td := expr.TypeDef(e.local, e.external)
	if err := e.emit(expr); err != nil {
		return err
	}
	e.guard(td)
	return nil
}

func (e *emitter) emit(expr expression.Expression) error {
	switch n := expr.(type) {
	case *expression.Block:
		return e.emitBlock(n)
	case *expression.If:
		return e.emitIf(n)
	case *expression.Op:
		return e.emitOp(n)
	case *expression.Assignment:
		return e.emitAssignment(n)
	case *expression.Call:
		return e.emitCall(n)
	case *expression.Literal, *expression.Variable, *expression.Query, *expression.Abort, expression.Noop:
		// Leaf nodes have no internal control flow; their whole
		// resolution is one runtime-helper call.
		e.callHostIdx(hostEval, e.pool.addExpr(expr))
		return nil
	default:
		return fmt.Errorf("native: unsupported expression %T", expr)
	}
}

// emitBlock allocates one structured block serving as the exit label.
// Each fallible child branches there on error, each infallible-but-
// abortable child on an abort condition; control falls through to the
// exit unconditionally after the last child.
func (e *emitter) emitBlock(b *expression.Block) error {
	e.body = append(e.body, opBlock, blockVoid)
	e.depth++
	thisExit := e.depth
	prevExit := e.exitDepth
	e.exitDepth = thisExit

	for _, child := range b.Inner() {
		// Recomputing the TypeDef here also re-threads assignment
		// bindings through the environments, exactly as the inference
		// pass did.
		td := child.TypeDef(e.local, e.external)
		if err := e.emit(child); err != nil {
			return err
		}
		e.guard(td)
	}

	e.body = append(e.body, opEnd)
	e.depth--
	e.exitDepth = prevExit
	return nil
}

func (e *emitter) emitIf(n *expression.If) error {
	if err := e.emitChecked(n.Predicate()); err != nil {
		return err
	}
	e.callHost(hostIsTrue)
	e.body = append(e.body, opIf, blockVoid)
	e.depth++
	if err := e.emit(n.Consequent()); err != nil {
		return err
	}
	e.body = append(e.body, opElse)
	if alt := n.Alternative(); alt != nil {
		if err := e.emit(alt); err != nil {
			return err
		}
	} else {
		e.callHost(hostSetNull)
	}
	e.body = append(e.body, opEnd)
	e.depth--
	return nil
}

func (e *emitter) emitOp(n *expression.Op) error {
	switch n.Kind() {
	case expression.OpAnd, expression.OpOr:
		return e.emitLogical(n)
	}

	if err := e.emitChecked(n.LHS()); err != nil {
		return err
	}
	e.callHost(hostPush)
	if err := e.emitChecked(n.RHS()); err != nil {
		return err
	}
	e.callHostIdx(hostBinop, e.pool.addOp(n))
	return nil
}

// emitLogical lowers && and || as branches so the right-hand side only
// runs when the left-hand side does not decide the outcome.
func (e *emitter) emitLogical(n *expression.Op) error {
	if err := e.emitChecked(n.LHS()); err != nil {
		return err
	}
	e.callHost(hostIsTrue)
	e.body = append(e.body, opIf, blockVoid)
	e.depth++

	and := n.Kind() == expression.OpAnd
	if and {
		if err := e.emitChecked(n.RHS()); err != nil {
			return err
		}
		e.callHost(hostToBool)
	} else {
		e.callHostIdx(hostSetBool, 1)
	}

	e.body = append(e.body, opElse)

	if and {
		e.callHostIdx(hostSetBool, 0)
	} else {
		if err := e.emitChecked(n.RHS()); err != nil {
			return err
		}
		e.callHost(hostToBool)
	}

	e.body = append(e.body, opEnd)
	e.depth--
	return nil
}

func (e *emitter) emitAssignment(n *expression.Assignment) error {
	if err := e.emitChecked(n.RHS()); err != nil {
		return err
	}
	e.callHostIdx(hostStore, e.pool.addAssign(n))
	return nil
}

func (e *emitter) emitCall(n *expression.Call) error {
	for _, arg := range n.Args() {
		if err := e.emitChecked(arg); err != nil {
			return err
		}
		e.callHost(hostPush)
	}
	e.callHostIdx(hostCallFn, e.pool.addCall(n))
	return nil
}
