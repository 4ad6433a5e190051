package stdlib

import (
	"fmt"
	"strings"

	"github.com/rill-lang/rill/pkg/functions"
	"github.com/rill-lang/rill/pkg/value"
)

// RegisterStrings adds the string functions to reg.
func RegisterStrings(reg *functions.Registry) {
	registerAll(reg, Strings())
}

// Strings returns the string function definitions.
func Strings() []functions.Function {
	return []functions.Function{
		Upcase(),
		Downcase(),
		StartsWith(),
		EndsWith(),
		Contains(),
		Trim(),
		Split(),
		Join(),
	}
}

func argString(v value.Value) string {
	b, _ := v.AsBytes()
	return string(b)
}

// Upcase returns the definition of upcase(value).
func Upcase() functions.Function {
	return functions.Def{
		FuncName: "upcase",
		Sig: functions.Signature{
			Params: []functions.Param{{Name: "value", Kind: value.KindBytes}},
			Result: value.KindBytes,
		},
		Fn: func(args []value.Value) (value.Value, error) {
			return value.String(strings.ToUpper(argString(args[0]))), nil
		},
	}
}

// Downcase returns the definition of downcase(value).
func Downcase() functions.Function {
	return functions.Def{
		FuncName: "downcase",
		Sig: functions.Signature{
			Params: []functions.Param{{Name: "value", Kind: value.KindBytes}},
			Result: value.KindBytes,
		},
		Fn: func(args []value.Value) (value.Value, error) {
			return value.String(strings.ToLower(argString(args[0]))), nil
		},
	}
}

// StartsWith returns the definition of starts_with(value, prefix).
func StartsWith() functions.Function {
	return functions.Def{
		FuncName: "starts_with",
		Sig: functions.Signature{
			Params: []functions.Param{
				{Name: "value", Kind: value.KindBytes},
				{Name: "prefix", Kind: value.KindBytes},
			},
			Result: value.KindBoolean,
		},
		Fn: func(args []value.Value) (value.Value, error) {
			return value.Boolean(strings.HasPrefix(argString(args[0]), argString(args[1]))), nil
		},
	}
}

// EndsWith returns the definition of ends_with(value, suffix).
func EndsWith() functions.Function {
	return functions.Def{
		FuncName: "ends_with",
		Sig: functions.Signature{
			Params: []functions.Param{
				{Name: "value", Kind: value.KindBytes},
				{Name: "suffix", Kind: value.KindBytes},
			},
			Result: value.KindBoolean,
		},
		Fn: func(args []value.Value) (value.Value, error) {
			return value.Boolean(strings.HasSuffix(argString(args[0]), argString(args[1]))), nil
		},
	}
}

// Contains returns the definition of contains(value, substring).
func Contains() functions.Function {
	return functions.Def{
		FuncName: "contains",
		Sig: functions.Signature{
			Params: []functions.Param{
				{Name: "value", Kind: value.KindBytes},
				{Name: "substring", Kind: value.KindBytes},
			},
			Result: value.KindBoolean,
		},
		Fn: func(args []value.Value) (value.Value, error) {
			return value.Boolean(strings.Contains(argString(args[0]), argString(args[1]))), nil
		},
	}
}

// Trim returns the definition of trim(value).
func Trim() functions.Function {
	return functions.Def{
		FuncName: "trim",
		Sig: functions.Signature{
			Params: []functions.Param{{Name: "value", Kind: value.KindBytes}},
			Result: value.KindBytes,
		},
		Fn: func(args []value.Value) (value.Value, error) {
			return value.String(strings.TrimSpace(argString(args[0]))), nil
		},
	}
}

// Split returns the definition of split(value, separator).
func Split() functions.Function {
	return functions.Def{
		FuncName: "split",
		Sig: functions.Signature{
			Params: []functions.Param{
				{Name: "value", Kind: value.KindBytes},
				{Name: "separator", Kind: value.KindBytes},
			},
			Result: value.KindArray,
		},
		Fn: func(args []value.Value) (value.Value, error) {
			parts := strings.Split(argString(args[0]), argString(args[1]))
			out := make([]value.Value, len(parts))
			for i, p := range parts {
				out[i] = value.String(p)
			}
			return value.Array(out), nil
		},
	}
}

// Join returns the definition of join(values, separator). Every element of
// the array must be a string.
func Join() functions.Function {
	return functions.Def{
		FuncName: "join",
		Sig: functions.Signature{
			Params: []functions.Param{
				{Name: "values", Kind: value.KindArray},
				{Name: "separator", Kind: value.KindBytes},
			},
			Result:   value.KindBytes,
			Fallible: true,
		},
		Fn: func(args []value.Value) (value.Value, error) {
			arr, _ := args[0].AsArray()
			parts := make([]string, len(arr))
			for i, el := range arr {
				b, ok := el.AsBytes()
				if !ok {
					return value.Value{}, fmt.Errorf("join: element %d is %s, not a string", i, el.Kind())
				}
				parts[i] = string(b)
			}
			return value.String(strings.Join(parts, argString(args[1]))), nil
		},
	}
}
