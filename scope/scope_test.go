package scope

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func sameNode(a, b any) bool { return a == b }

func TestFindSymbolWalksParentChain(t *testing.T) {
	file := New(FileScope, nil)
	file.DeclareSymbol(ValueSymbol, "g", "global-decl", sameNode)

	block := New(BlockScope, file)
	require.NotNil(t, block.FindSymbol("g"))
	require.Nil(t, block.LocalSymbol("g"))
}

func TestValueRedefinitionAtSameScopeIsError(t *testing.T) {
	s := New(BlockScope, nil)
	s.DeclareSymbol(ValueSymbol, "x", "first", sameNode)
	_, outcome := s.DeclareSymbol(ValueSymbol, "x", "second", sameNode)
	require.Equal(t, ShadowValueRedefinition, outcome)
}

func TestValueShadowingInChildScopeIsAllowed(t *testing.T) {
	outer := New(BlockScope, nil)
	outer.DeclareSymbol(ValueSymbol, "x", "outer", sameNode)
	inner := New(BlockScope, outer)
	_, outcome := inner.DeclareSymbol(ValueSymbol, "x", "inner", sameNode)
	require.Equal(t, ShadowOK, outcome)
	require.Equal(t, "inner", inner.LocalSymbol("x").Node)
}

func TestTypedefRedefinitionRequiresEqualTypes(t *testing.T) {
	s := New(FileScope, nil)
	s.DeclareSymbol(TypedefSymbol, "size_t", "u8", sameNode)

	_, same := s.DeclareSymbol(TypedefSymbol, "size_t", "u8", sameNode)
	require.Equal(t, ShadowOK, same)

	_, diff := s.DeclareSymbol(TypedefSymbol, "size_t", "s4", sameNode)
	require.Equal(t, ShadowTypedefRedefinition, diff)
}

func TestFunctionRedeclarationRequiresEqualSignature(t *testing.T) {
	s := New(FileScope, nil)
	s.DeclareSymbol(FunctionSymbol, "f", "sig-a", sameNode)

	_, same := s.DeclareSymbol(FunctionSymbol, "f", "sig-a", sameNode)
	require.Equal(t, ShadowOK, same)

	_, diff := s.DeclareSymbol(FunctionSymbol, "f", "sig-b", sameNode)
	require.Equal(t, ShadowConflictingTypes, diff)
}

func TestTagNamespaceIsSeparateFromOrdinaryNamespace(t *testing.T) {
	s := New(FileScope, nil)
	s.DeclareSymbol(ValueSymbol, "S", "a-variable", sameNode)
	sym, outcome := s.DeclareSymbol(StructSymbol, "S", "a-struct-def", sameNode)
	require.Equal(t, ShadowOK, outcome)
	require.Equal(t, "a-struct-def", sym.Node)
	require.NotNil(t, s.FindTag(StructSymbol, "S"))
	require.NotNil(t, s.LocalSymbol("S")) // the value symbol is untouched
}

func TestUseWithDifferentTagCollision(t *testing.T) {
	s := New(FileScope, nil)
	s.DeclareSymbol(StructSymbol, "S", "struct-def", sameNode)
	_, outcome := s.DeclareSymbol(UnionSymbol, "S", "union-def", sameNode)
	require.Equal(t, ShadowUseWithDifferentTag, outcome)
}

func TestAnonCounterProducesDistinctNames(t *testing.T) {
	c := NewAnonCounter()
	a := c.Next()
	b := c.Next()
	require.NotEqual(t, a, b)
	require.Equal(t, "<anon$1>", a)
	require.Equal(t, "<anon$2>", b)
}

func TestFindTagAnyKindFindsAcrossKinds(t *testing.T) {
	s := New(FileScope, nil)
	s.DeclareSymbol(EnumSymbol, "color", "enum-def", sameNode)
	require.NotNil(t, s.FindTagAnyKind("color"))
	require.Nil(t, s.FindTagAnyKind("nope"))
}
