package stdlib

import (
	"github.com/rill-lang/rill/pkg/functions"
	"github.com/rill-lang/rill/pkg/value"
)

// RegisterCollections adds the collection functions to reg.
func RegisterCollections(reg *functions.Registry) {
	registerAll(reg, Collections())
}

// Collections returns the collection function definitions.
func Collections() []functions.Function {
	return []functions.Function{
		Length(),
		Keys(),
		Values(),
		Flatten(),
	}
}

// Length returns the definition of length(value): elements of an array,
// fields of an object, bytes of a string.
func Length() functions.Function {
	return functions.Def{
		FuncName: "length",
		Sig: functions.Signature{
			Params: []functions.Param{{
				Name: "value",
				Kind: value.KindArray | value.KindObject | value.KindBytes,
			}},
			Result: value.KindInteger,
		},
		Fn: func(args []value.Value) (value.Value, error) {
			v := args[0]
			if arr, ok := v.AsArray(); ok {
				return value.Integer(int64(len(arr))), nil
			}
			if obj, ok := v.AsObject(); ok {
				return value.Integer(int64(obj.Len())), nil
			}
			b, _ := v.AsBytes()
			return value.Integer(int64(len(b))), nil
		},
	}
}

// Keys returns the definition of keys(object): the field names in
// insertion order.
func Keys() functions.Function {
	return functions.Def{
		FuncName: "keys",
		Sig: functions.Signature{
			Params: []functions.Param{{Name: "object", Kind: value.KindObject}},
			Result: value.KindArray,
		},
		Fn: func(args []value.Value) (value.Value, error) {
			obj, _ := args[0].AsObject()
			keys := obj.Keys()
			out := make([]value.Value, len(keys))
			for i, k := range keys {
				out[i] = value.String(k)
			}
			return value.Array(out), nil
		},
	}
}

// Values returns the definition of values(object): the field values in
// insertion order.
func Values() functions.Function {
	return functions.Def{
		FuncName: "values",
		Sig: functions.Signature{
			Params: []functions.Param{{Name: "object", Kind: value.KindObject}},
			Result: value.KindArray,
		},
		Fn: func(args []value.Value) (value.Value, error) {
			obj, _ := args[0].AsObject()
			keys := obj.Keys()
			out := make([]value.Value, len(keys))
			for i, k := range keys {
				v, _ := obj.Get(k)
				out[i] = v
			}
			return value.Array(out), nil
		},
	}
}

// Flatten returns the definition of flatten(array): one level of nested
// arrays unwrapped.
func Flatten() functions.Function {
	return functions.Def{
		FuncName: "flatten",
		Sig: functions.Signature{
			Params: []functions.Param{{Name: "array", Kind: value.KindArray}},
			Result: value.KindArray,
		},
		Fn: func(args []value.Value) (value.Value, error) {
			arr, _ := args[0].AsArray()
			out := make([]value.Value, 0, len(arr))
			for _, el := range arr {
				if inner, ok := el.AsArray(); ok {
					out = append(out, inner...)
				} else {
					out = append(out, el)
				}
			}
			return value.Array(out), nil
		},
	}
}
