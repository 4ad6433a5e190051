package value

import "strings"

// Kind is a bit set of possible value shapes.
//
// A single bit describes the shape of one concrete [Value]; a union of bits
// describes the set of shapes an expression may statically produce. The
// zero Kind contains no shapes and is used by the type system to mark
// expressions that can never return (see the expression package).
type Kind uint16

const (
	KindNull Kind = 1 << iota
	KindBoolean
	KindInteger
	KindFloat
	KindBytes
	KindTimestamp
	KindRegex
	KindArray
	KindObject
)

// KindAny contains every shape.
const KindAny = KindNull | KindBoolean | KindInteger | KindFloat |
	KindBytes | KindTimestamp | KindRegex | KindArray | KindObject

// KindNumeric contains the arithmetic shapes.
const KindNumeric = KindInteger | KindFloat

// Contains reports whether every shape in other is also in k.
func (k Kind) Contains(other Kind) bool {
	return k&other == other
}

// Intersects reports whether k and other share at least one shape.
func (k Kind) Intersects(other Kind) bool {
	return k&other != 0
}

// Union returns the set of shapes in either k or other.
func (k Kind) Union(other Kind) Kind {
	return k | other
}

// IsEmpty reports whether k contains no shapes.
func (k Kind) IsEmpty() bool {
	return k == 0
}

// IsExact reports whether k contains exactly one shape.
func (k Kind) IsExact() bool {
	return k != 0 && k&(k-1) == 0
}

var kindNames = []struct {
	kind Kind
	name string
}{
	{KindNull, "null"},
	{KindBoolean, "boolean"},
	{KindInteger, "integer"},
	{KindFloat, "float"},
	{KindBytes, "string"},
	{KindTimestamp, "timestamp"},
	{KindRegex, "regex"},
	{KindArray, "array"},
	{KindObject, "object"},
}

// String renders the set as a "|"-separated list of shape names, e.g.
// "integer|float". The empty set renders as "never".
func (k Kind) String() string {
	if k == 0 {
		return "never"
	}
	if k == KindAny {
		return "any"
	}
	var sb strings.Builder
	for _, kn := range kindNames {
		if k&kn.kind == 0 {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteByte('|')
		}
		sb.WriteString(kn.name)
	}
	return sb.String()
}
