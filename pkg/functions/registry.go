// Package functions provides the open extension point through which
// call expressions invoke standard-library and user-defined functions.
//
// The expression core knows nothing about concrete function semantics; it
// only consumes a [Function]'s declared [Signature] during type inference
// and its Call implementation at run time. The actual standard library
// (string/number/collection manipulation) lives outside this module and
// registers itself here.
//
// # Example
//
//	reg := functions.NewRegistry()
//	reg.Register(functions.Def{
//	    FuncName: "upcase",
//	    Sig: functions.Signature{
//	        Params: []functions.Param{{Name: "value", Kind: value.KindBytes}},
//	        Result: value.KindBytes,
//	    },
//	    Fn: func(args []value.Value) (value.Value, error) {
//	        b, _ := args[0].AsBytes()
//	        return value.String(strings.ToUpper(string(b))), nil
//	    },
//	})
package functions

import (
	"fmt"
	"sort"

	"github.com/rill-lang/rill/pkg/value"
)

// Param declares one function parameter.
type Param struct {
	// Name of the parameter, used in diagnostics.
	Name string
	// Kind is the set of shapes the parameter accepts.
	Kind value.Kind
}

// Signature is the compile-time contract of a function: what it accepts,
// what it returns, and whether it can fail at run time. The type pass
// turns this into the call expression's TypeDef.
type Signature struct {
	Params []Param
	// Result is the set of shapes the function may return.
	Result value.Kind
	// Fallible marks functions whose Call may return a recoverable error.
	Fallible bool
}

// Function is a callable registered with the expression engine.
type Function interface {
	// Name is the identifier call expressions use, without decoration.
	Name() string
	// Signature returns the compile-time contract.
	Signature() Signature
	// Call invokes the function with already-resolved arguments, one per
	// declared parameter.
	Call(args []value.Value) (value.Value, error)
}

// Def is a closure-backed Function for inline registration.
type Def struct {
	FuncName string
	Sig      Signature
	Fn       func(args []value.Value) (value.Value, error)
}

func (d Def) Name() string { return d.FuncName }

func (d Def) Signature() Signature { return d.Sig }

func (d Def) Call(args []value.Value) (value.Value, error) { return d.Fn(args) }

// Registry holds the functions available to a program being compiled.
// Populate it before compilation; it is not mutated at run time.
type Registry struct {
	fns map[string]Function
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{fns: make(map[string]Function)}
}

// Register adds fn, replacing any previous function of the same name.
func (r *Registry) Register(fn Function) {
	r.fns[fn.Name()] = fn
}

// Lookup returns the function registered under name.
func (r *Registry) Lookup(name string) (Function, bool) {
	fn, ok := r.fns[name]
	return fn, ok
}

// Names returns the registered function names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.fns))
	for name := range r.fns {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// MustLookup is like Lookup but panics when name is unknown. It simplifies
// wiring well-known functions in tests and init code.
func (r *Registry) MustLookup(name string) Function {
	fn, ok := r.fns[name]
	if !ok {
		panic(fmt.Sprintf("functions: unknown function %q", name))
	}
	return fn
}
