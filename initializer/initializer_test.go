package initializer

import (
	"testing"

	"cfront/ast"
	"cfront/diag"
	"cfront/token"
	"cfront/types"

	"github.com/stretchr/testify/require"
)

func intLit(v int64) *ast.Const {
	intT := types.Value(types.Primitive(types.S4), 0)
	c := ast.NewConst(token.Coordinates{}, intT, ast.ConstInt)
	c.Int = v
	return c
}

func inner(e ast.Expression) ParsedInitializer { return ParsedInitializer{Kind: Inner, Expr: e} }
func open() ParsedInitializer                  { return ParsedInitializer{Kind: Open} }
func closeItem() ParsedInitializer             { return ParsedInitializer{Kind: Close} }
func sep() ParsedInitializer                   { return ParsedInitializer{Kind: Separator} }

// TestStructInitializerOffsets covers struct S { char a; int b; char c; }
// initialized as { 1, 2, 3 }, verifying the finalizer places each leaf at
// the member's struct-layout offset (same struct as types' S1 scenario).
func TestStructInitializerOffsets(t *testing.T) {
	b := types.NewLayoutBuilder(false)
	charT := types.Value(types.Primitive(types.S1), 0)
	intT := types.Value(types.Primitive(types.S4), 0)
	b.AddMember("a", charT, nil)
	b.AddMember("b", intT, nil)
	b.AddMember("c", charT, nil)
	head, size, align := b.Finish()
	structType := types.Value(&types.TypeDesc{ID: types.Struct, Name: "S", Size: size, Definition: &types.TypeDefinition{
		Kind: types.KindStruct, Name: "S", Members: head, Size: size, Align: align, IsDefined: true,
	}}, 0)

	items := []ParsedInitializer{open(), inner(intLit(1)), sep(), inner(intLit(2)), sep(), inner(intLit(3)), closeItem()}
	f := NewFinalizer(diag.New(), false)
	result, _ := f.Finalize(items, structType)

	require.Equal(t, ast.InitializerList, result.Kind)
	require.Len(t, result.Children, 3)
	require.Equal(t, 0, result.Children[0].Offset)
	require.Equal(t, 4, result.Children[1].Offset)
	require.Equal(t, 8, result.Children[2].Offset)
}

func TestArrayInitializerWithDesignator(t *testing.T) {
	intT := types.Value(types.Primitive(types.S4), 0)
	arrayType := types.Array(intT, 5)

	items := []ParsedInitializer{
		open(),
		{Kind: Designator, Designator: DesignatorArrayIndex, ArrayIndex: 2},
		inner(intLit(42)),
		closeItem(),
	}
	f := NewFinalizer(diag.New(), false)
	result, _ := f.Finalize(items, arrayType)
	require.Len(t, result.Children, 1)
	require.Equal(t, 8, result.Children[0].Offset) // index 2 * 4 bytes
}

func TestIncompleteArraySizeInferredFromMaxIndex(t *testing.T) {
	intT := types.Value(types.Primitive(types.S4), 0)
	arrayType := types.Array(intT, types.UnknownSize)

	items := []ParsedInitializer{open(), inner(intLit(1)), sep(), inner(intLit(2)), sep(), inner(intLit(3)), closeItem()}
	f := NewFinalizer(diag.New(), false)
	_, completedSize := f.Finalize(items, arrayType)
	require.Equal(t, 3, completedSize)
}

func TestStaticScopeRequiresConstantExpression(t *testing.T) {
	intT := types.Value(types.Primitive(types.S4), 0)
	arrayType := types.Array(intT, 1)
	nonConst := ast.NewNameRef(token.Coordinates{}, intT, "x", nil)

	items := []ParsedInitializer{open(), inner(nonConst), closeItem()}
	engine := diag.New()
	f := NewFinalizer(engine, true)
	f.Finalize(items, arrayType)
	require.True(t, engine.HasError())
}

func TestStringLiteralExpandsCharByChar(t *testing.T) {
	charT := types.Value(types.Primitive(types.S1), 0)
	arrayType := types.Array(charT, 4)
	lit := ast.NewConst(token.Coordinates{}, types.Array(charT, types.UnknownSize), ast.ConstString)
	lit.Str = "hi"

	items := []ParsedInitializer{open(), inner(lit), closeItem()}
	f := NewFinalizer(diag.New(), false)
	result, _ := f.Finalize(items, arrayType)
	require.Equal(t, ast.InitializerList, result.Kind)
	require.Len(t, result.Children, 3) // 'h', 'i', '\0'
	require.Equal(t, int64('h'), result.Children[0].Expression.(*ast.Const).Int)
	require.Equal(t, int64(0), result.Children[2].Expression.(*ast.Const).Int)
}
