package types

// EqualityKind is the four-level compatibility ladder from §4.3.
type EqualityKind int

const (
	Unknown EqualityKind = iota
	Equal
	AlmostEqual       // implicit conversion allowed
	NotExactlyEqual   // warning-worthy (e.g. pointers to almost-equal pointees)
	NotEqual
)

// TypeEquality implements §4.3 types_equal/type_equality: structural
// equality after stripping top-level qualifiers, with enums comparing
// AlmostEqual to their underlying integer type.
//
// This replaces the original source's typesEquals, which (per spec §9's
// Open Question) was a stub that always returned true; here the
// comparison is genuinely structural.
func TypeEquality(a, b *TypeRef) EqualityKind {
	if a == nil || b == nil {
		return NotEqual
	}
	if IsError(a) || IsError(b) {
		return Equal // errors absorb further diagnostics, never cascade
	}
	if a.Kind != b.Kind {
		return NotEqual
	}
	switch a.Kind {
	case KindValue:
		return valueEquality(a, b)
	case KindPointed:
		return liftPointerLike(TypeEquality(a.Pointee, b.Pointee))
	case KindArray:
		if a.Size != UnknownSize && b.Size != UnknownSize && a.Size != b.Size {
			return NotEqual
		}
		return TypeEquality(a.Element, b.Element)
	case KindVLA:
		return TypeEquality(a.Element, b.Element)
	case KindFunction:
		return functionEquality(a, b)
	case KindBitfield:
		if a.Width != b.Width {
			return NotEqual
		}
		return TypeEquality(Value(a.Storage, 0), Value(b.Storage, 0))
	case KindErrorType:
		return Equal
	}
	return Unknown
}

func liftPointerLike(inner EqualityKind) EqualityKind {
	if inner == Equal {
		return Equal
	}
	if inner == NotEqual {
		return NotEqual
	}
	return NotExactlyEqual
}

func valueEquality(a, b *TypeRef) EqualityKind {
	aq, bq := a.Quals.StripTopLevel(), b.Quals.StripTopLevel()
	if a.Desc.ID != b.Desc.ID {
		if a.Desc.ID.IsInteger() && b.Desc.ID.IsInteger() {
			return AlmostEqual
		}
		if a.Desc.ID.IsFloat() && b.Desc.ID.IsFloat() {
			return AlmostEqual
		}
		if (a.Desc.ID == Struct || a.Desc.ID == Union) && (b.Desc.ID == Struct || b.Desc.ID == Union) {
			if a.Desc.Definition == b.Desc.Definition {
				return Equal
			}
			return NotEqual
		}
		if a.Desc.ID == Enum || b.Desc.ID == Enum {
			return enumVsIntegerValueEquality(a, b)
		}
		return NotEqual
	}
	if a.Desc.ID == Struct || a.Desc.ID == Union || a.Desc.ID == Enum {
		if a.Desc.Definition != b.Desc.Definition {
			return NotEqual
		}
	}
	if aq != bq {
		return AlmostEqual
	}
	return Equal
}

func enumVsIntegerValueEquality(a, b *TypeRef) EqualityKind {
	var enumType, other *TypeRef
	if a.Desc.ID == Enum {
		enumType, other = a, b
	} else {
		enumType, other = b, a
	}
	_ = enumType
	if other.Desc.ID.IsInteger() {
		return AlmostEqual
	}
	return NotExactlyEqual
}

func functionEquality(a, b *TypeRef) EqualityKind {
	if TypeEquality(a.Return, b.Return) != Equal {
		return NotEqual
	}
	if a.IsVariadic != b.IsVariadic {
		return NotEqual
	}
	if len(a.Params) != len(b.Params) {
		return NotEqual
	}
	worst := Equal
	for i := range a.Params {
		k := TypeEquality(a.Params[i], b.Params[i])
		if k == NotEqual {
			return NotEqual
		}
		if k > worst {
			worst = k
		}
	}
	return worst
}

// TypesEqual is the boolean convenience form (§4.3 types_equal).
func TypesEqual(a, b *TypeRef) bool { return TypeEquality(a, b) == Equal }

// CastabilityKind is the result of §4.3 type_castability(to, from).
type CastabilityKind int

const (
	CastUnknown CastabilityKind = iota
	NoCast                      // identity
	ImplicitCast                // widening arithmetic, int<->pointer (warns), array decay
	ExplicitCast
)

// Castability implements §4.3 type_castability(to, from).
func Castability(to, from *TypeRef) CastabilityKind {
	if IsError(to) || IsError(from) {
		return NoCast
	}
	if TypeEquality(to, from) == Equal {
		return NoCast
	}

	decayedFrom := decayArrayToPointer(from)

	switch {
	case to.Kind == KindValue && to.Desc.ID.IsInteger() && decayedFrom.Kind == KindValue && decayedFrom.Desc.ID.IsInteger():
		return ImplicitCast
	case to.Kind == KindValue && to.Desc.ID.IsFloat() && decayedFrom.Kind == KindValue && (decayedFrom.Desc.ID.IsFloat() || decayedFrom.Desc.ID.IsInteger()):
		return ImplicitCast
	case to.Kind == KindValue && to.Desc.ID.IsInteger() && decayedFrom.Kind == KindValue && decayedFrom.Desc.ID.IsFloat():
		return ImplicitCast
	case to.Kind == KindPointed && decayedFrom.Kind == KindPointed:
		if TypeEquality(to.Pointee, decayedFrom.Pointee) == Equal || IsVoid(to.Pointee) || IsVoid(decayedFrom.Pointee) {
			return ImplicitCast
		}
		return ExplicitCast
	case to.Kind == KindPointed && decayedFrom.Kind == KindValue && decayedFrom.Desc.ID.IsInteger():
		return ImplicitCast // warns at the call site
	case to.Kind == KindValue && to.Desc.ID.IsInteger() && decayedFrom.Kind == KindPointed:
		return ImplicitCast // warns at the call site
	case decayedFrom.Kind == KindArray && to.Kind == KindPointed:
		return ImplicitCast
	default:
		return ExplicitCast
	}
}

// decayArrayToPointer implements the array-to-pointer decay §4.3 groups
// under IMPLICIT_CAST.
func decayArrayToPointer(t *TypeRef) *TypeRef {
	if t != nil && t.Kind == KindArray {
		return Pointed(t.Element, 0)
	}
	return t
}
