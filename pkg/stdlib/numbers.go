package stdlib

import (
	"fmt"
	"math"
	"strconv"

	"github.com/rill-lang/rill/pkg/functions"
	"github.com/rill-lang/rill/pkg/value"
)

// RegisterNumbers adds the numeric functions to reg.
func RegisterNumbers(reg *functions.Registry) {
	registerAll(reg, Numbers())
}

// Numbers returns the numeric function definitions.
func Numbers() []functions.Function {
	return []functions.Function{
		Abs(),
		Floor(),
		Ceil(),
		Round(),
		ToString(),
		ToInt(),
	}
}

// Abs returns the definition of abs(value). Integers stay integers.
func Abs() functions.Function {
	return functions.Def{
		FuncName: "abs",
		Sig: functions.Signature{
			Params: []functions.Param{{Name: "value", Kind: value.KindNumeric}},
			Result: value.KindNumeric,
		},
		Fn: func(args []value.Value) (value.Value, error) {
			if i, ok := args[0].AsInteger(); ok {
				if i < 0 {
					i = -i
				}
				return value.Integer(i), nil
			}
			f, _ := args[0].AsFloat()
			return value.Float(math.Abs(f)), nil
		},
	}
}

// Floor returns the definition of floor(value).
func Floor() functions.Function {
	return functions.Def{
		FuncName: "floor",
		Sig: functions.Signature{
			Params: []functions.Param{{Name: "value", Kind: value.KindNumeric}},
			Result: value.KindInteger,
		},
		Fn: func(args []value.Value) (value.Value, error) {
			f, _ := args[0].Number()
			return value.Integer(int64(math.Floor(f))), nil
		},
	}
}

// Ceil returns the definition of ceil(value).
func Ceil() functions.Function {
	return functions.Def{
		FuncName: "ceil",
		Sig: functions.Signature{
			Params: []functions.Param{{Name: "value", Kind: value.KindNumeric}},
			Result: value.KindInteger,
		},
		Fn: func(args []value.Value) (value.Value, error) {
			f, _ := args[0].Number()
			return value.Integer(int64(math.Ceil(f))), nil
		},
	}
}

// Round returns the definition of round(value). Half-way cases round away
// from zero.
func Round() functions.Function {
	return functions.Def{
		FuncName: "round",
		Sig: functions.Signature{
			Params: []functions.Param{{Name: "value", Kind: value.KindNumeric}},
			Result: value.KindInteger,
		},
		Fn: func(args []value.Value) (value.Value, error) {
			f, _ := args[0].Number()
			return value.Integer(int64(math.Round(f))), nil
		},
	}
}

// ToString returns the definition of to_string(value): numbers, booleans
// and strings render to their canonical text form.
func ToString() functions.Function {
	return functions.Def{
		FuncName: "to_string",
		Sig: functions.Signature{
			Params: []functions.Param{{
				Name: "value",
				Kind: value.KindBytes | value.KindNumeric | value.KindBoolean,
			}},
			Result: value.KindBytes,
		},
		Fn: func(args []value.Value) (value.Value, error) {
			v := args[0]
			if b, ok := v.AsBytes(); ok {
				return value.Bytes(b), nil
			}
			if i, ok := v.AsInteger(); ok {
				return value.String(strconv.FormatInt(i, 10)), nil
			}
			if f, ok := v.AsFloat(); ok {
				return value.String(strconv.FormatFloat(f, 'f', -1, 64)), nil
			}
			b, _ := v.AsBoolean()
			return value.String(strconv.FormatBool(b)), nil
		},
	}
}

// ToInt returns the definition of to_int(value): parses strings, truncates
// floats, passes integers through.
func ToInt() functions.Function {
	return functions.Def{
		FuncName: "to_int",
		Sig: functions.Signature{
			Params: []functions.Param{{
				Name: "value",
				Kind: value.KindBytes | value.KindNumeric,
			}},
			Result:   value.KindInteger,
			Fallible: true,
		},
		Fn: func(args []value.Value) (value.Value, error) {
			v := args[0]
			if i, ok := v.AsInteger(); ok {
				return value.Integer(i), nil
			}
			if f, ok := v.AsFloat(); ok {
				return value.Integer(int64(f)), nil
			}
			b, _ := v.AsBytes()
			i, err := strconv.ParseInt(string(b), 10, 64)
			if err != nil {
				return value.Value{}, fmt.Errorf("to_int: %q is not an integer", b)
			}
			return value.Integer(i), nil
		},
	}
}
