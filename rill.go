// Package rill is the execution core of the Rill remap language: a
// compiled expression language that reads and mutates structured
// observability events (logs, metrics, traces) inside a streaming
// pipeline.
//
// The package ties together the expression engine (pkg/expression), the
// typing environments (pkg/state) and the runtime value model
// (pkg/value). Parsing source text into an expression tree is an external
// collaborator: embedders build a tree with the expression constructors
// (threading the same environments they pass to [Compile]) and hand the
// root to Compile, which runs the bottom-up type-inference pass and
// returns an executable [Program].
//
// # Execution backends
//
// A compiled program executes three ways with identical observable
// semantics:
//   - [Program.Resolve]: single-record tree-walking interpretation.
//   - [Program.ResolveBatch]: vectorized multi-record interpretation with
//     per-row short-circuiting over a selection vector.
//   - pkg/native: optional ahead-of-time lowering to a WebAssembly module
//     executed under wazero. The core never depends on it; without it the
//     other two backends are unaffected.
//
// # Quick start
//
//	local := state.NewLocalEnv()
//	external := state.NewExternalEnv()
//	set := expression.NewVariableAssignment("x",
//	    expression.NewLiteral(value.Integer(1)), local, external)
//	ref, _ := expression.NewVariable("x", local)
//	add, _ := expression.NewOp(expression.OpAdd, ref,
//	    expression.NewLiteral(value.Integer(1)), local, external)
//	block, _ := expression.NewBlock([]expression.Expression{set, add}, local)
//
//	prog, err := rill.Compile(block)
//	result, err := prog.Resolve(expression.NewContext(event.New()))
//
// # Concurrency
//
// A Program's expression tree embeds reusable batch scratch buffers and is
// therefore not reentrant: at most one goroutine may execute a given
// Program at a time. Run independent partitions through independently
// compiled programs.
package rill

import (
	"fmt"
	"log/slog"

	"github.com/segmentio/ksuid"
	"github.com/xyproto/env/v2"

	"github.com/rill-lang/rill/pkg/cache"
	"github.com/rill-lang/rill/pkg/expression"
	"github.com/rill-lang/rill/pkg/state"
	"github.com/rill-lang/rill/pkg/value"
)

// Version returns the current version of Rill.
func Version() string {
	return "v0.1.0-dev"
}

// Options configures compilation.
type Options struct {
	// Local is the local typing environment the tree was constructed
	// against. A fresh one is used when nil.
	Local *state.LocalEnv
	// External is the program-wide typing state. A fresh one is used when
	// nil.
	External *state.ExternalEnv
	// Debug enables compile-time debug logging. Defaults to the
	// RILL_DEBUG environment variable.
	Debug bool
	// Logger for structured logging; slog.Default() when nil.
	Logger *slog.Logger
}

// Option configures compilation behavior.
type Option func(*Options)

// WithLocalEnv supplies the local environment the tree was built against.
func WithLocalEnv(local *state.LocalEnv) Option {
	return func(o *Options) { o.Local = local }
}

// WithExternalEnv supplies the external typing environment.
func WithExternalEnv(external *state.ExternalEnv) Option {
	return func(o *Options) { o.External = external }
}

// WithDebug enables or disables compile-time debug logging.
func WithDebug(enabled bool) Option {
	return func(o *Options) { o.Debug = enabled }
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) { o.Logger = logger }
}

// Info summarizes what the type pass proved about a program.
type Info struct {
	// TypeDef is the program's result type.
	TypeDef expression.TypeDef
	// Fallible reports whether any event may fail the program with a
	// recoverable error.
	Fallible bool
	// Abortable reports whether the program contains an abort path.
	Abortable bool
}

// Program is a validated, type-annotated expression tree ready for
// execution. Not reentrant; see the package documentation.
type Program struct {
	id     string
	expr   expression.Expression
	info   Info
	logger *slog.Logger
}

// Compile runs the type-inference pass over expr and returns an
// executable program.
//
// The pass is bottom-up and single-shot: each construct's TypeDef is
// computed from its children and the environments, and must succeed
// before any backend may run the tree. The batch and native backends rely
// on the pass to elide run-time checks, so skipping Compile and invoking
// the tree directly is a soundness bug, not a supported mode.
//
// Internal invariant violations (a block carrying dead code after a
// terminating expression) panic: they indicate a bug in tree
// construction, not bad user input.
func Compile(expr expression.Expression, opts ...Option) (*Program, error) {
	options := Options{
		Debug: env.Bool("RILL_DEBUG"),
	}
	for _, opt := range opts {
		opt(&options)
	}
	if options.Logger == nil {
		options.Logger = slog.Default()
	}
	if options.Local == nil {
		options.Local = state.NewLocalEnv()
	}
	if options.External == nil {
		options.External = state.NewExternalEnv()
	}
	if expr == nil {
		return nil, expression.NewError(expression.ErrEmptyBlock, "cannot compile an empty program")
	}

	td := expr.TypeDef(options.Local, options.External)

	p := &Program{
		id:   ksuid.New().String(),
		expr: expr,
		info: Info{
			TypeDef:   td,
			Fallible:  td.IsFallible(),
			Abortable: td.IsAbortable(),
		},
		logger: options.Logger,
	}

	if options.Debug {
		p.logger.Debug("compiled program",
			"program_id", p.id,
			"type", td.String(),
			"fallible", p.info.Fallible,
			"abortable", p.info.Abortable,
		)
	}
	return p, nil
}

// MustCompile is like Compile but panics on error. It simplifies safe
// initialization of global variables.
func MustCompile(expr expression.Expression, opts ...Option) *Program {
	p, err := Compile(expr, opts...)
	if err != nil {
		panic(fmt.Sprintf("rill: Compile: %v", err))
	}
	return p
}

// ID returns the program's unique identifier, carried in logs.
func (p *Program) ID() string {
	return p.id
}

// Info returns what the type pass proved about the program.
func (p *Program) Info() Info {
	return p.info
}

// Expression returns the checked tree, e.g. for handing to the native
// backend.
func (p *Program) Expression() expression.Expression {
	return p.expr
}

// Resolve evaluates the program against exactly one record.
func (p *Program) Resolve(ctx *expression.Context) (value.Value, error) {
	return p.expr.Resolve(ctx)
}

// ResolveBatch evaluates the program against the rows of ctx named by
// selection. Each row's outcome is read back with ctx.Resolved.
func (p *Program) ResolveBatch(ctx *expression.BatchContext, selection []int) {
	p.expr.ResolveBatch(ctx, selection)
}

// String renders the program's expression tree for diagnostics.
func (p *Program) String() string {
	return p.expr.String()
}

// NewProgramCache returns an LRU cache for compiled programs sized by the
// RILL_CACHE_SIZE environment variable (default 256).
func NewProgramCache() *cache.Cache[*Program] {
	return cache.New[*Program](env.Int("RILL_CACHE_SIZE", 256))
}
