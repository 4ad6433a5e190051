package expression

import (
	"strings"

	"github.com/rill-lang/rill/pkg/state"
	"github.com/rill-lang/rill/pkg/value"
)

// Query reads an event field from the target. A missing field resolves to
// null, so a query is always nullable and never fails.
type Query struct {
	path []string
}

// NewQuery creates a field read for the given path segments.
func NewQuery(path []string) *Query {
	return &Query{path: path}
}

// Path returns the field path segments.
func (q *Query) Path() []string {
	return q.path
}

func (q *Query) Resolve(ctx *Context) (value.Value, error) {
	v, ok := ctx.Target().Get(q.path)
	if !ok {
		return value.Null(), nil
	}
	return v, nil
}

func (q *Query) ResolveBatch(ctx *BatchContext, selection []int) {
	resolveBatchRows(q, ctx, selection)
}

func (q *Query) TypeDef(_ *state.LocalEnv, external *state.ExternalEnv) TypeDef {
	kinds := external.Field(strings.Join(q.path, "."))
	return NewTypeDef(kinds.Union(value.KindNull))
}

func (q *Query) String() string {
	return "." + strings.Join(q.path, ".")
}
