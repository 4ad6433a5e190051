package expression_test

import (
	"testing"

	"github.com/rill-lang/rill/pkg/expression"
	"github.com/rill-lang/rill/pkg/value"
)

func TestTypeDefMerge(t *testing.T) {
	a := expression.NewTypeDef(value.KindInteger).WithFallible(true)
	b := expression.NewTypeDef(value.KindBytes).WithAbortable(true)

	m := a.Merge(b)
	if want := value.KindInteger | value.KindBytes; m.Kinds() != want {
		t.Errorf("kinds = %s, want %s", m.Kinds(), want)
	}
	if !m.IsFallible() || !m.IsAbortable() {
		t.Errorf("flags = %s, want both set", m)
	}

	// Merge is commutative.
	if n := b.Merge(a); n != m {
		t.Errorf("merge not commutative: %s vs %s", n, m)
	}
}

func TestTypeDefNever(t *testing.T) {
	n := expression.Never()
	if !n.IsNever() {
		t.Fatal("Never() should be never")
	}
	// Merging with never is the identity on shapes.
	m := n.Merge(expression.NewTypeDef(value.KindInteger))
	if m.Kinds() != value.KindInteger {
		t.Errorf("kinds = %s, want integer", m.Kinds())
	}
	if m.IsNever() {
		t.Error("a merge with a non-never side cannot be never")
	}
}

func TestTypeDefPredicates(t *testing.T) {
	tests := []struct {
		name     string
		td       expression.TypeDef
		nullable bool
		exact    bool
	}{
		{"exact integer", expression.NewTypeDef(value.KindInteger), false, true},
		{"nullable union", expression.NewTypeDef(value.KindNull | value.KindBytes), true, false},
		{"fallible exact shape", expression.NewTypeDef(value.KindInteger).WithFallible(true), false, false},
		{"bare null", expression.NewTypeDef(value.KindNull), true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.td.IsNullable(); got != tt.nullable {
				t.Errorf("IsNullable = %v, want %v", got, tt.nullable)
			}
			if got := tt.td.IsExact(); got != tt.exact {
				t.Errorf("IsExact = %v, want %v", got, tt.exact)
			}
		})
	}
}

func TestTypeDefString(t *testing.T) {
	tests := []struct {
		name string
		td   expression.TypeDef
		want string
	}{
		{"plain", expression.NewTypeDef(value.KindInteger), "integer"},
		{"fallible", expression.NewTypeDef(value.KindFloat).WithFallible(true), "float!"},
		{"abortable never", expression.Never().WithAbortable(true), "never^"},
		{"both flags", expression.NewTypeDef(value.KindBoolean).WithFallible(true).WithAbortable(true), "boolean!^"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.td.String(); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAbortResolve(t *testing.T) {
	a := expression.NewAbort(lit(value.String("stop here")))

	_, err := a.Resolve(newCtx())
	if !expression.IsAbort(err) {
		t.Fatalf("err = %v, want an abort", err)
	}

	// Recoverable errors are not aborts.
	plain := expression.NewError(expression.ErrTypeMismatch, "plain")
	if expression.IsAbort(plain) {
		t.Error("recoverable error must not be an abort")
	}
}

func TestAbortTypeDef(t *testing.T) {
	local, external := envs()
	td := expression.NewAbort(nil).TypeDef(local, external)
	if !td.IsNever() {
		t.Errorf("type = %s, want never", td)
	}
	if !td.IsAbortable() {
		t.Error("abort must be abortable")
	}
	if td.IsFallible() {
		t.Error("abort with a constant message must not be fallible")
	}
}

func TestNoop(t *testing.T) {
	local, external := envs()
	var n expression.Noop

	got, err := n.Resolve(newCtx())
	wantValue(t, got, err, value.Null())

	if td := n.TypeDef(local, external); td.Kinds() != value.KindNull {
		t.Errorf("type = %s, want null", td)
	}
}
