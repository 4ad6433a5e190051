// Package stdlib provides the built-in functions of the Rill language.
//
// The expression engine itself is function-agnostic; call expressions pull
// whatever the surrounding pipeline registered. This package carries the
// portable core set — string, numeric and collection helpers — grouped the
// way embedders usually want to pick them:
//
//	reg := functions.NewRegistry()
//	stdlib.Register(reg)            // everything
//	stdlib.RegisterStrings(reg)     // or one group at a time
package stdlib

import (
	"github.com/rill-lang/rill/pkg/functions"
)

// Register adds every built-in function to reg.
func Register(reg *functions.Registry) {
	RegisterStrings(reg)
	RegisterNumbers(reg)
	RegisterCollections(reg)
}

// All returns every built-in function definition.
func All() []functions.Function {
	var out []functions.Function
	out = append(out, Strings()...)
	out = append(out, Numbers()...)
	out = append(out, Collections()...)
	return out
}

func registerAll(reg *functions.Registry, fns []functions.Function) {
	for _, fn := range fns {
		reg.Register(fn)
	}
}
