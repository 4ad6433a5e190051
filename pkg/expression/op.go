package expression

import (
	"fmt"

	"github.com/rill-lang/rill/pkg/state"
	"github.com/rill-lang/rill/pkg/value"
)

// OpKind identifies a binary operator.
type OpKind int

const (
	OpAdd OpKind = iota
	OpSub
	OpMul
	OpDiv
	OpEq
	OpNe
	OpGt
	OpGe
	OpLt
	OpLe
	OpAnd
	OpOr
)

var opSymbols = map[OpKind]string{
	OpAdd: "+", OpSub: "-", OpMul: "*", OpDiv: "/",
	OpEq: "==", OpNe: "!=", OpGt: ">", OpGe: ">=", OpLt: "<", OpLe: "<=",
	OpAnd: "&&", OpOr: "||",
}

// Op is a binary operator expression.
//
// The type pass makes arithmetic on statically-numeric operands
// infallible, so the batch backend runs those rows without per-row operand
// checks. Division is always fallible (division by zero is a recoverable
// run-time error). && and || require statically boolean operands, checked
// at construction.
type Op struct {
	kind OpKind
	lhs  Expression
	rhs  Expression
}

// NewOp creates a binary operator expression. For && and ||, both operand
// types must be exactly boolean.
func NewOp(kind OpKind, lhs, rhs Expression, local *state.LocalEnv, external *state.ExternalEnv) (*Op, error) {
	if kind == OpAnd || kind == OpOr {
		for _, operand := range []Expression{lhs, rhs} {
			td := operand.TypeDef(local, external)
			if td.IsNever() || !value.KindBoolean.Contains(td.Kinds()) {
				return nil, NewErrorf(ErrNonBooleanOperand,
					"operand of %q must be a boolean, got %s", opSymbols[kind], td.Kinds())
			}
		}
	}
	return &Op{kind: kind, lhs: lhs, rhs: rhs}, nil
}

func (o *Op) Resolve(ctx *Context) (value.Value, error) {
	lv, err := o.lhs.Resolve(ctx)
	if err != nil {
		return value.Value{}, err
	}

	// && and || short-circuit before touching the right-hand side.
	switch o.kind {
	case OpAnd, OpOr:
		lb, _ := lv.AsBoolean()
		if o.kind == OpAnd && !lb {
			return value.Boolean(false), nil
		}
		if o.kind == OpOr && lb {
			return value.Boolean(true), nil
		}
		rv, err := o.rhs.Resolve(ctx)
		if err != nil {
			return value.Value{}, err
		}
		rb, _ := rv.AsBoolean()
		return value.Boolean(rb), nil
	}

	rv, err := o.rhs.Resolve(ctx)
	if err != nil {
		return value.Value{}, err
	}
	return o.Apply(lv, rv)
}

// Kind returns the operator kind.
func (o *Op) Kind() OpKind {
	return o.kind
}

// LHS returns the left operand expression.
func (o *Op) LHS() Expression {
	return o.lhs
}

// RHS returns the right operand expression.
func (o *Op) RHS() Expression {
	return o.rhs
}

// Apply computes the operator over two already-resolved operands. It
// covers every operator except && and ||, whose short-circuiting needs
// control flow; backends lower those as branches. Both Resolve and the
// native backend's runtime helpers go through Apply, keeping the
// backends' arithmetic identical.
func (o *Op) Apply(lv, rv value.Value) (value.Value, error) {
	switch o.kind {
	case OpAdd, OpSub, OpMul:
		return o.arithmetic(lv, rv)
	case OpDiv:
		return o.divide(lv, rv)
	case OpEq:
		return value.Boolean(lv.Equal(rv)), nil
	case OpNe:
		return value.Boolean(!lv.Equal(rv)), nil
	case OpGt, OpGe, OpLt, OpLe:
		return o.compare(lv, rv)
	}
	return value.Value{}, NewErrorf(ErrTypeMismatch, "unknown operator %d", o.kind)
}

func (o *Op) arithmetic(lv, rv value.Value) (value.Value, error) {
	if li, ok := lv.AsInteger(); ok {
		if ri, ok := rv.AsInteger(); ok {
			switch o.kind {
			case OpAdd:
				return value.Integer(li + ri), nil
			case OpSub:
				return value.Integer(li - ri), nil
			case OpMul:
				return value.Integer(li * ri), nil
			}
		}
	}
	if lf, ok := lv.Number(); ok {
		if rf, ok := rv.Number(); ok {
			switch o.kind {
			case OpAdd:
				return value.Float(lf + rf), nil
			case OpSub:
				return value.Float(lf - rf), nil
			case OpMul:
				return value.Float(lf * rf), nil
			}
		}
	}
	if o.kind == OpAdd {
		if lb, ok := lv.AsBytes(); ok {
			if rb, ok := rv.AsBytes(); ok {
				out := make([]byte, 0, len(lb)+len(rb))
				out = append(out, lb...)
				out = append(out, rb...)
				return value.Bytes(out), nil
			}
		}
	}
	return value.Value{}, NewErrorf(ErrTypeMismatch,
		"cannot apply %q to %s and %s", opSymbols[o.kind], lv.Kind(), rv.Kind())
}

func (o *Op) divide(lv, rv value.Value) (value.Value, error) {
	lf, lok := lv.Number()
	rf, rok := rv.Number()
	if !lok || !rok {
		return value.Value{}, NewErrorf(ErrTypeMismatch,
			"cannot divide %s by %s", lv.Kind(), rv.Kind())
	}
	if rf == 0 {
		return value.Value{}, NewError(ErrDivisionByZero, "division by zero")
	}
	return value.Float(lf / rf), nil
}

func (o *Op) compare(lv, rv value.Value) (value.Value, error) {
	if lf, ok := lv.Number(); ok {
		if rf, ok := rv.Number(); ok {
			return value.Boolean(o.ordered(compareFloats(lf, rf))), nil
		}
	}
	if lb, ok := lv.AsBytes(); ok {
		if rb, ok := rv.AsBytes(); ok {
			return value.Boolean(o.ordered(compareStrings(string(lb), string(rb)))), nil
		}
	}
	return value.Value{}, NewErrorf(ErrTypeMismatch,
		"cannot compare %s with %s", lv.Kind(), rv.Kind())
}

func compareFloats(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func compareStrings(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func (o *Op) ordered(cmp int) bool {
	switch o.kind {
	case OpGt:
		return cmp > 0
	case OpGe:
		return cmp >= 0
	case OpLt:
		return cmp < 0
	case OpLe:
		return cmp <= 0
	}
	return false
}

func (o *Op) ResolveBatch(ctx *BatchContext, selection []int) {
	resolveBatchRows(o, ctx, selection)
}

func (o *Op) TypeDef(local *state.LocalEnv, external *state.ExternalEnv) TypeDef {
	lt := o.lhs.TypeDef(local, external)
	rt := o.rhs.TypeDef(local, external)
	lk, rk := lt.Kinds(), rt.Kinds()
	fallible := lt.IsFallible() || rt.IsFallible()
	abortable := lt.IsAbortable() || rt.IsAbortable()

	var td TypeDef
	switch o.kind {
	case OpAdd, OpSub, OpMul:
		numeric := value.KindNumeric.Contains(lk) && value.KindNumeric.Contains(rk)
		concat := o.kind == OpAdd && lk == value.KindBytes && rk == value.KindBytes
		var kinds value.Kind
		if lk.Intersects(value.KindInteger) && rk.Intersects(value.KindInteger) {
			kinds = kinds.Union(value.KindInteger)
		}
		if lk.Intersects(value.KindFloat) || rk.Intersects(value.KindFloat) {
			kinds = kinds.Union(value.KindFloat)
		}
		if o.kind == OpAdd && lk.Intersects(value.KindBytes) && rk.Intersects(value.KindBytes) {
			kinds = kinds.Union(value.KindBytes)
		}
		if kinds.IsEmpty() {
			kinds = value.KindNumeric
		}
		td = NewTypeDef(kinds).WithFallible(!(numeric || concat))
	case OpDiv:
		// Division by zero stays a run-time case regardless of operand
		// types.
		td = NewTypeDef(value.KindFloat).WithFallible(true)
	case OpEq, OpNe, OpAnd, OpOr:
		td = NewTypeDef(value.KindBoolean)
	case OpGt, OpGe, OpLt, OpLe:
		comparable := (value.KindNumeric.Contains(lk) && value.KindNumeric.Contains(rk)) ||
			(lk == value.KindBytes && rk == value.KindBytes)
		td = NewTypeDef(value.KindBoolean).WithFallible(!comparable)
	}

	if fallible {
		td = td.WithFallible(true)
	}
	return td.WithAbortable(abortable)
}

func (o *Op) String() string {
	return fmt.Sprintf("(%s %s %s)", o.lhs, opSymbols[o.kind], o.rhs)
}
