package expression_test

import (
	"testing"

	"github.com/rill-lang/rill/pkg/event"
	"github.com/rill-lang/rill/pkg/expression"
	"github.com/rill-lang/rill/pkg/state"
	"github.com/rill-lang/rill/pkg/value"
)

// envs returns fresh typing environments.
func envs() (*state.LocalEnv, *state.ExternalEnv) {
	return state.NewLocalEnv(), state.NewExternalEnv()
}

// newCtx returns a single-record context over an empty event.
func newCtx() *expression.Context {
	return expression.NewContext(event.New())
}

// newBatch returns a batch context over n empty events plus the full
// selection vector 0..n-1.
func newBatch(n int) (*expression.BatchContext, []int) {
	targets := make([]expression.Target, n)
	sel := make([]int, n)
	for i := range targets {
		targets[i] = event.New()
		sel[i] = i
	}
	return expression.NewBatchContext(targets), sel
}

// stub is a scriptable leaf expression recording how often it resolved.
type stub struct {
	name  string
	fn    func(ctx *expression.Context) (value.Value, error)
	td    expression.TypeDef
	calls int
}

func (s *stub) Resolve(ctx *expression.Context) (value.Value, error) {
	s.calls++
	return s.fn(ctx)
}

func (s *stub) ResolveBatch(ctx *expression.BatchContext, selection []int) {
	for _, i := range selection {
		v, err := s.Resolve(ctx.Row(i))
		if err != nil {
			ctx.SetError(i, err)
		} else {
			ctx.SetValue(i, v)
		}
	}
}

func (s *stub) TypeDef(_ *state.LocalEnv, _ *state.ExternalEnv) expression.TypeDef {
	return s.td
}

func (s *stub) String() string { return s.name }

// okStub resolves to v and reports its call count.
func okStub(name string, v value.Value) *stub {
	return &stub{
		name: name,
		fn: func(_ *expression.Context) (value.Value, error) {
			return v, nil
		},
		td: expression.NewTypeDef(v.Kind()),
	}
}

// errStub always fails with a recoverable error.
func errStub(name string, err error) *stub {
	return &stub{
		name: name,
		fn: func(_ *expression.Context) (value.Value, error) {
			return value.Value{}, err
		},
		td: expression.NewTypeDef(value.KindNull).WithFallible(true),
	}
}

// mustBlock fails the test when block construction errors.
func mustBlock(t *testing.T, inner []expression.Expression, local *state.LocalEnv) *expression.Block {
	t.Helper()
	b, err := expression.NewBlock(inner, local)
	if err != nil {
		t.Fatalf("NewBlock: %v", err)
	}
	return b
}

// wantValue fails the test unless got equals want with no error.
func wantValue(t *testing.T, got value.Value, err error, want value.Value) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Equal(want) {
		t.Errorf("got %s, want %s", got, want)
	}
}
