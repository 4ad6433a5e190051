// Package native is the optional ahead-of-time backend of the Rill
// expression engine.
//
// It lowers a type-checked expression tree into a WebAssembly module —
// structured basic blocks and conditional branches for the control flow,
// imported host functions for the value operations — and executes it under
// wazero's compiling runtime. The host helpers delegate to the exact same
// Resolve/Apply/Store code paths the tree-walking backend uses, so the
// observable semantics of the two backends are identical by construction;
// what the lowering adds is that the branch structure (fail-fast
// sequencing, short-circuit logic, conditionals) is compiled ahead of time
// instead of re-discovered per record.
//
// The core never imports this package: embedders that want the native
// backend link it explicitly, and programs containing constructs the
// lowering does not support fail Compile with an error, leaving the other
// two backends untouched.
//
// A native Program holds mutable per-invocation state and is, like the
// tree it was compiled from, not reentrant: one goroutine at a time.
package native

import (
	"context"
	"fmt"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/xyproto/env/v2"

	"github.com/rill-lang/rill/pkg/expression"
	"github.com/rill-lang/rill/pkg/state"
	"github.com/rill-lang/rill/pkg/value"
)

// Enabled reports whether the RILL_NATIVE environment variable requests
// the native backend. Purely advisory: embedders decide whether to
// consult it.
func Enabled() bool {
	return env.Bool("RILL_NATIVE")
}

// machine is the host half of a compiled program: the result register,
// the operand stack and the per-invocation record context the generated
// code operates on through the imported helpers.
type machine struct {
	pool *pool

	ectx   *expression.Context
	result expression.Resolved
	stack  []value.Value
}

func (m *machine) eval(id uint32) {
	v, err := m.pool.exprs[id].Resolve(m.ectx)
	m.result = expression.Resolved{Value: v, Err: err}
}

func (m *machine) store(id uint32) {
	m.pool.assigns[id].Store(m.ectx, m.result.Value)
}

func (m *machine) push() {
	m.stack = append(m.stack, m.result.Value)
}

func (m *machine) binop(id uint32) {
	n := len(m.stack) - 1
	lhs := m.stack[n]
	m.stack = m.stack[:n]
	v, err := m.pool.ops[id].Apply(lhs, m.result.Value)
	m.result = expression.Resolved{Value: v, Err: err}
}

func (m *machine) callFn(id uint32) {
	call := m.pool.calls[id]
	argc := len(call.Args())
	n := len(m.stack) - argc
	args := make([]value.Value, argc)
	copy(args, m.stack[n:])
	m.stack = m.stack[:n]
	v, err := call.Apply(args)
	m.result = expression.Resolved{Value: v, Err: err}
}

func (m *machine) setBool(v uint32) {
	m.result = expression.Resolved{Value: value.Boolean(v != 0)}
}

func (m *machine) toBool() {
	b, _ := m.result.Value.AsBoolean()
	m.result = expression.Resolved{Value: value.Boolean(b)}
}

func (m *machine) setNull() {
	m.result = expression.Resolved{Value: value.Null()}
}

func (m *machine) isErr() uint32 {
	if m.result.IsErr() {
		return 1
	}
	return 0
}

func (m *machine) isAbort() uint32 {
	if expression.IsAbort(m.result.Err) {
		return 1
	}
	return 0
}

func (m *machine) isTrue() uint32 {
	if m.result.IsErr() {
		return 0
	}
	if b, _ := m.result.Value.AsBoolean(); b {
		return 1
	}
	return 0
}

// Program is an ahead-of-time compiled Rill program. Close it when done
// to release the wazero runtime.
type Program struct {
	runtime wazero.Runtime
	mod     api.Module
	resolve api.Function
	m       *machine
}

// Compile lowers a type-checked expression tree to a WebAssembly module
// and prepares it for execution. The environments must be equivalent to
// the ones the tree was built and checked against.
func Compile(ctx context.Context, expr expression.Expression, local *state.LocalEnv, external *state.ExternalEnv) (*Program, error) {
	if local == nil {
		local = state.NewLocalEnv()
	}
	if external == nil {
		external = state.NewExternalEnv()
	}

	m := &machine{}

	var mod module
	none := []byte(nil)
	i32 := []byte{valI32}
	imports := map[string]uint32{
		hostEval:    uint32(mod.addImport("rill", hostEval, i32, none)),
		hostStore:   uint32(mod.addImport("rill", hostStore, i32, none)),
		hostPush:    uint32(mod.addImport("rill", hostPush, none, none)),
		hostBinop:   uint32(mod.addImport("rill", hostBinop, i32, none)),
		hostCallFn:  uint32(mod.addImport("rill", hostCallFn, i32, none)),
		hostSetBool: uint32(mod.addImport("rill", hostSetBool, i32, none)),
		hostToBool:  uint32(mod.addImport("rill", hostToBool, none, none)),
		hostSetNull: uint32(mod.addImport("rill", hostSetNull, none, none)),
		hostIsErr:   uint32(mod.addImport("rill", hostIsErr, none, i32)),
		hostIsTrue:  uint32(mod.addImport("rill", hostIsTrue, none, i32)),
		hostIsAbort: uint32(mod.addImport("rill", hostIsAbort, none, i32)),
	}

	em := &emitter{
		imports:  imports,
		local:    local.Snapshot(),
		external: external,
	}

	// The function body is one outer block serving as the program exit;
	// every error branch ultimately lands here.
	em.body = append(em.body, opBlock, blockVoid)
	em.depth = 1
	em.exitDepth = 1
	if err := em.emit(expr); err != nil {
		return nil, err
	}
	em.body = append(em.body, opEnd)

	fnIdx := mod.addFunc(none, none)
	mod.addCode(em.body)
	mod.addExport("resolve", uint32(fnIdx))

	m.pool = &em.pool

	runtime := wazero.NewRuntime(ctx)

	_, err := runtime.NewHostModuleBuilder("rill").
		NewFunctionBuilder().WithFunc(func(_ context.Context, id uint32) { m.eval(id) }).Export(hostEval).
		NewFunctionBuilder().WithFunc(func(_ context.Context, id uint32) { m.store(id) }).Export(hostStore).
		NewFunctionBuilder().WithFunc(func(_ context.Context) { m.push() }).Export(hostPush).
		NewFunctionBuilder().WithFunc(func(_ context.Context, id uint32) { m.binop(id) }).Export(hostBinop).
		NewFunctionBuilder().WithFunc(func(_ context.Context, id uint32) { m.callFn(id) }).Export(hostCallFn).
		NewFunctionBuilder().WithFunc(func(_ context.Context, v uint32) { m.setBool(v) }).Export(hostSetBool).
		NewFunctionBuilder().WithFunc(func(_ context.Context) { m.toBool() }).Export(hostToBool).
		NewFunctionBuilder().WithFunc(func(_ context.Context) { m.setNull() }).Export(hostSetNull).
		NewFunctionBuilder().WithFunc(func(_ context.Context) uint32 { return m.isErr() }).Export(hostIsErr).
		NewFunctionBuilder().WithFunc(func(_ context.Context) uint32 { return m.isTrue() }).Export(hostIsTrue).
		NewFunctionBuilder().WithFunc(func(_ context.Context) uint32 { return m.isAbort() }).Export(hostIsAbort).
		Instantiate(ctx)
	if err != nil {
		_ = runtime.Close(ctx)
		return nil, fmt.Errorf("native: instantiating host module: %w", err)
	}

	instance, err := runtime.InstantiateWithConfig(ctx, mod.encode(),
		wazero.NewModuleConfig().WithName("program"))
	if err != nil {
		_ = runtime.Close(ctx)
		return nil, fmt.Errorf("native: instantiating program module: %w", err)
	}

	return &Program{
		runtime: runtime,
		mod:     instance,
		resolve: instance.ExportedFunction("resolve"),
		m:       m,
	}, nil
}

// Resolve executes the compiled program against one record. The outcome
// matches what the tree-walking backend's Resolve would produce for the
// same record.
func (p *Program) Resolve(ctx context.Context, ectx *expression.Context) (value.Value, error) {
	p.m.ectx = ectx
	p.m.result = expression.Resolved{Value: value.Null()}
	p.m.stack = p.m.stack[:0]

	if _, err := p.resolve.Call(ctx); err != nil {
		return value.Value{}, fmt.Errorf("native: executing program: %w", err)
	}

	p.m.ectx = nil
	if p.m.result.IsErr() {
		return value.Value{}, p.m.result.Err
	}
	return p.m.result.Value, nil
}

// Close releases the underlying wazero runtime.
func (p *Program) Close(ctx context.Context) error {
	return p.runtime.Close(ctx)
}
