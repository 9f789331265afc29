// Package sema implements the semantic analyzer's type-checking helpers
// invoked eagerly by the parser on every expression and declarator
// (§4.6): arithmetic conversions, implicit-cast insertion, assignability,
// call-site argument adjustment, member lookup, and switch/goto/return
// verification.
//
// Grounded on spec §4.6's own operation list (the trimmed src/sema.c
// excerpt retains only the declare*/make*/computeTypeSize family — see
// DESIGN.md for the grep that confirmed this — so the conversion and
// transform helpers below are built from the section's description
// rather than ported from a surviving C function of the same name) and
// on src/sema.c's declareSymbol/findSymbol naming conventions for the
// surrounding style.
package sema

import (
	"cfront/types"
)

// IntegerPromote implements §4.6 integer promotion: any integer type
// narrower than s4 (bool, s1, s2, u1, u2) promotes to s4. s4 and wider
// are returned unchanged.
func IntegerPromote(t *types.TypeRef) *types.TypeRef {
	if t == nil || t.Kind != types.KindValue {
		return t
	}
	switch t.Desc.ID {
	case types.Bool, types.S1, types.S2, types.U1, types.U2:
		return types.Value(types.Primitive(types.S4), 0)
	default:
		return t
	}
}

// rank orders integer types by conversion rank for the usual arithmetic
// conversions (§4.6); wider types have higher rank.
var rank = map[types.TypeID]int{
	types.S4: 0, types.U4: 0,
	types.S8: 1, types.U8: 1,
}

// CommonArithmeticType implements §4.6's usual arithmetic conversions:
// both operands are integer-promoted, then the wider type wins, with
// equal width preferring unsigned (the "unsigned-preferring common
// type" rule). Floating operands dominate: if either operand is
// floating, the result is the wider of the two floating types (or the
// sole floating type if only one operand is floating).
func CommonArithmeticType(a, b *types.TypeRef) *types.TypeRef {
	if a == nil || b == nil {
		return types.Error()
	}
	if a.Kind != types.KindValue || b.Kind != types.KindValue {
		return types.Error()
	}
	if a.Desc.ID.IsFloat() || b.Desc.ID.IsFloat() {
		return commonFloatType(a, b)
	}
	pa, pb := IntegerPromote(a), IntegerPromote(b)
	if rank[pa.Desc.ID] != rank[pb.Desc.ID] {
		if rank[pa.Desc.ID] > rank[pb.Desc.ID] {
			return pa
		}
		return pb
	}
	if !pa.Desc.ID.IsSigned() {
		return pa
	}
	if !pb.Desc.ID.IsSigned() {
		return pb
	}
	return pa
}

func commonFloatType(a, b *types.TypeRef) *types.TypeRef {
	widest := func(t *types.TypeRef) int {
		switch t.Desc.ID {
		case types.F10:
			return 3
		case types.F8:
			return 2
		case types.F4:
			return 1
		default:
			return 0 // integer operand, promoted to the other side's float type
		}
	}
	if widest(a) >= widest(b) {
		if a.Desc.ID.IsFloat() {
			return types.Value(a.Desc, 0)
		}
		return types.Value(b.Desc, 0)
	}
	return types.Value(b.Desc, 0)
}

// DefaultArgumentPromote implements §4.6's variadic default argument
// promotions: float -> double, narrow integer -> int.
func DefaultArgumentPromote(t *types.TypeRef) *types.TypeRef {
	if t == nil || t.Kind != types.KindValue {
		return t
	}
	if t.Desc.ID == types.F4 {
		return types.Value(types.Primitive(types.F8), 0)
	}
	return IntegerPromote(t)
}
