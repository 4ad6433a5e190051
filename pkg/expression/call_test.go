package expression_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/rill-lang/rill/pkg/expression"
	"github.com/rill-lang/rill/pkg/functions"
	"github.com/rill-lang/rill/pkg/value"
)

func upcaseFn() functions.Function {
	return functions.Def{
		FuncName: "upcase",
		Sig: functions.Signature{
			Params: []functions.Param{{Name: "value", Kind: value.KindBytes}},
			Result: value.KindBytes,
		},
		Fn: func(args []value.Value) (value.Value, error) {
			b, _ := args[0].AsBytes()
			return value.String(strings.ToUpper(string(b))), nil
		},
	}
}

func failIfFn() functions.Function {
	return functions.Def{
		FuncName: "fail_if",
		Sig: functions.Signature{
			Params:   []functions.Param{{Name: "condition", Kind: value.KindBoolean}},
			Result:   value.KindNull,
			Fallible: true,
		},
		Fn: func(args []value.Value) (value.Value, error) {
			if b, _ := args[0].AsBoolean(); b {
				return value.Value{}, fmt.Errorf("condition held")
			}
			return value.Null(), nil
		},
	}
}

func TestCallResolve(t *testing.T) {
	local, external := envs()
	call, err := expression.NewCall(upcaseFn(), []expression.Expression{lit(value.String("go"))}, local, external)
	if err != nil {
		t.Fatalf("NewCall: %v", err)
	}

	got, rerr := call.Resolve(newCtx())
	wantValue(t, got, rerr, value.String("GO"))
}

func TestCallArityChecked(t *testing.T) {
	local, external := envs()
	_, err := expression.NewCall(upcaseFn(), nil, local, external)
	var e *expression.Error
	if !errors.As(err, &e) || e.Code != expression.ErrArgumentCount {
		t.Fatalf("err = %v, want code %s", err, expression.ErrArgumentCount)
	}
}

func TestCallArgumentKindChecked(t *testing.T) {
	local, external := envs()
	_, err := expression.NewCall(upcaseFn(), []expression.Expression{lit(value.Integer(1))}, local, external)
	var e *expression.Error
	if !errors.As(err, &e) || e.Code != expression.ErrArgumentKind {
		t.Fatalf("err = %v, want code %s", err, expression.ErrArgumentKind)
	}
}

func TestCallWrapsForeignErrors(t *testing.T) {
	local, external := envs()
	call, err := expression.NewCall(failIfFn(), []expression.Expression{lit(value.Boolean(true))}, local, external)
	if err != nil {
		t.Fatalf("NewCall: %v", err)
	}

	_, rerr := call.Resolve(newCtx())
	var e *expression.Error
	if !errors.As(rerr, &e) || e.Code != expression.ErrFunctionFailed {
		t.Fatalf("err = %v, want code %s", rerr, expression.ErrFunctionFailed)
	}
	if e.Unwrap() == nil {
		t.Error("the function's own error should be preserved as the cause")
	}
}

func TestCallTypeDef(t *testing.T) {
	local, external := envs()

	t.Run("exact argument keeps signature fallibility", func(t *testing.T) {
		call, err := expression.NewCall(upcaseFn(), []expression.Expression{lit(value.String("x"))}, local, external)
		if err != nil {
			t.Fatal(err)
		}
		td := call.TypeDef(local, external)
		if td.Kinds() != value.KindBytes {
			t.Errorf("kinds = %s, want string", td.Kinds())
		}
		if td.IsFallible() {
			t.Error("infallible function over an exact argument must stay infallible")
		}
	})

	t.Run("loose argument makes the call fallible", func(t *testing.T) {
		wide := okStub("wide", value.String("x"))
		wide.td = expression.NewTypeDef(value.KindBytes | value.KindInteger)

		call, err := expression.NewCall(upcaseFn(), []expression.Expression{wide}, local, external)
		if err != nil {
			t.Fatal(err)
		}
		if td := call.TypeDef(local, external); !td.IsFallible() {
			t.Error("partially overlapping argument must keep the call fallible")
		}
	})

	t.Run("fallible signature", func(t *testing.T) {
		call, err := expression.NewCall(failIfFn(), []expression.Expression{lit(value.Boolean(false))}, local, external)
		if err != nil {
			t.Fatal(err)
		}
		if td := call.TypeDef(local, external); !td.IsFallible() {
			t.Error("declared-fallible function must produce a fallible call")
		}
	})
}

func TestRegistry(t *testing.T) {
	reg := functions.NewRegistry()
	reg.Register(upcaseFn())
	reg.Register(failIfFn())

	if _, ok := reg.Lookup("upcase"); !ok {
		t.Error("upcase should be registered")
	}
	if _, ok := reg.Lookup("nope"); ok {
		t.Error("unknown name should not resolve")
	}

	names := reg.Names()
	if len(names) != 2 || names[0] != "fail_if" || names[1] != "upcase" {
		t.Errorf("Names() = %v, want sorted [fail_if upcase]", names)
	}

	defer func() {
		if recover() == nil {
			t.Error("MustLookup of an unknown name should panic")
		}
	}()
	reg.MustLookup("nope")
}
