package types

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestStructLayoutS1 implements scenario S1 from spec §8:
// struct S { char a; int b; char c; };
// offsetof(a)=0, offsetof(b)=4, offsetof(c)=8, sizeof(S)=12, align(S)=4.
func TestStructLayoutS1(t *testing.T) {
	b := NewLayoutBuilder(false)
	charT := Value(Primitive(S1), 0)
	intT := Value(Primitive(S4), 0)

	ma := b.AddMember("a", charT, nil)
	mb := b.AddMember("b", intT, nil)
	mc := b.AddMember("c", charT, nil)

	head, size, align := b.Finish()
	require.Same(t, ma, head)
	require.Equal(t, 0, ma.Offset)
	require.Equal(t, 4, mb.Offset)
	require.Equal(t, 8, mc.Offset)
	require.Equal(t, 12, size)
	require.Equal(t, 4, align)
}

// TestBitfieldPackingS2 implements scenario S2 from spec §8:
// struct B { unsigned x:3; unsigned y:5; unsigned z:8; };
// all three fields share one 2-byte storage; x@0, y@3, z@8; sizeof(B)=2.
func TestBitfieldPackingS2(t *testing.T) {
	b := NewLayoutBuilder(false)
	b.AddBitfield("x", 3, false)
	b.AddBitfield("y", 5, false)
	b.AddBitfield("z", 8, false)

	head, size, _ := b.Finish()
	require.Equal(t, 2, size)

	var members []*StructuralMember
	for m := head; m != nil; m = m.Next {
		members = append(members, m)
	}
	require.Len(t, members, 3)
	require.Equal(t, U2, members[0].Type.Storage.ID)
	require.Equal(t, 0, members[0].Type.BitOffset)
	require.Equal(t, 3, members[1].Type.BitOffset)
	require.Equal(t, 8, members[2].Type.BitOffset)
	for _, m := range members {
		require.Equal(t, 0, m.Offset)
	}
}

func TestZeroWidthBitfieldClosesChain(t *testing.T) {
	b := NewLayoutBuilder(false)
	b.AddBitfield("x", 4, false)
	b.AddBitfield("", 0, false) // closes the chain
	b.AddBitfield("y", 4, false)

	head, _, _ := b.Finish()
	var names []string
	for m := head; m != nil; m = m.Next {
		names = append(names, m.Name)
	}
	require.Equal(t, []string{"x", "y"}, names)
	// y starts a fresh chain so it gets its own storage at a new offset.
}

func TestUnionMembersAllAtOffsetZero(t *testing.T) {
	b := NewLayoutBuilder(true)
	charT := Value(Primitive(S1), 0)
	intT := Value(Primitive(S4), 0)
	m1 := b.AddMember("a", charT, nil)
	m2 := b.AddMember("b", intT, nil)
	_, size, _ := b.Finish()
	require.Equal(t, 0, m1.Offset)
	require.Equal(t, 0, m2.Offset)
	require.Equal(t, 4, size)
}

func TestComputeTypeSizeArrayPropagatesUnknown(t *testing.T) {
	intT := Value(Primitive(S4), 0)
	unknown := Array(intT, UnknownSize)
	require.Equal(t, UnknownSize, ComputeTypeSize(unknown))

	known := Array(intT, 5)
	require.Equal(t, 20, ComputeTypeSize(known))
}

func TestTypeEqualityLadder(t *testing.T) {
	intT := Value(Primitive(S4), 0)
	intT2 := Value(Primitive(S4), 0)
	uintT := Value(Primitive(U4), 0)
	constInt := Value(Primitive(S4), QConst)

	require.Equal(t, Equal, TypeEquality(intT, intT2))
	require.Equal(t, AlmostEqual, TypeEquality(intT, uintT))
	require.Equal(t, Equal, TypeEquality(intT, constInt))
	require.True(t, TypesEqual(intT, intT2))
}

func TestCastabilityIdentityAndWidening(t *testing.T) {
	intT := Value(Primitive(S4), 0)
	longT := Value(Primitive(S8), 0)
	ptrToInt := Pointed(intT, 0)

	require.Equal(t, NoCast, Castability(intT, intT))
	require.Equal(t, ImplicitCast, Castability(longT, intT))
	require.Equal(t, ImplicitCast, Castability(ptrToInt, intT))

	structA := Value(&TypeDesc{ID: Struct, Name: "A", Definition: &TypeDefinition{Name: "A"}}, 0)
	structB := Value(&TypeDesc{ID: Struct, Name: "B", Definition: &TypeDefinition{Name: "B"}}, 0)
	require.Equal(t, ExplicitCast, Castability(structB, structA))
}

func TestFlexibleArrayMemberDoesNotAdvanceOffset(t *testing.T) {
	b := NewLayoutBuilder(false)
	intT := Value(Primitive(S4), 0)
	flex := Array(intT, 0)
	m1 := b.AddMember("n", intT, nil)
	m2 := b.AddMember("data", flex, nil)
	_, size, _ := b.Finish()
	require.Equal(t, 0, m1.Offset)
	require.Equal(t, 4, m2.Offset)
	require.Equal(t, 4, size)
}
