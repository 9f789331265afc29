package sema

import (
	"testing"

	"cfront/ast"
	"cfront/diag"
	"cfront/scope"
	"cfront/token"
	"cfront/types"

	"github.com/stretchr/testify/require"
)

func intT() *types.TypeRef   { return types.Value(types.Primitive(types.S4), 0) }
func charT() *types.TypeRef  { return types.Value(types.Primitive(types.S1), 0) }
func longT() *types.TypeRef  { return types.Value(types.Primitive(types.S8), 0) }
func floatT() *types.TypeRef { return types.Value(types.Primitive(types.F8), 0) }

func intLit(v int64) *ast.Const {
	c := ast.NewConst(token.Coordinates{}, intT(), ast.ConstInt)
	c.Int = v
	return c
}

func TestIntegerPromoteNarrowsToS4(t *testing.T) {
	require.Equal(t, types.S4, IntegerPromote(charT()).Desc.ID)
	require.Equal(t, types.S8, IntegerPromote(longT()).Desc.ID)
}

func TestCommonArithmeticTypeWidensToLong(t *testing.T) {
	require.Equal(t, types.S8, CommonArithmeticType(intT(), longT()).Desc.ID)
}

func TestCommonArithmeticTypePrefersFloat(t *testing.T) {
	require.Equal(t, types.F8, CommonArithmeticType(intT(), floatT()).Desc.ID)
}

func TestTransformBinaryInsertsWideningCasts(t *testing.T) {
	engine := diag.New()
	left := intLit(1)
	right := ast.NewConst(token.Coordinates{}, longT(), ast.ConstInt)
	bin := TransformBinary(engine, token.Coordinates{}, ast.BAdd, left, right)
	require.False(t, engine.HasError())
	require.Equal(t, types.S8, bin.ExprType().Desc.ID)
	_, leftIsCast := bin.Left.(*ast.Cast)
	require.True(t, leftIsCast)
}

func TestTransformBinaryPointerPlusInteger(t *testing.T) {
	engine := diag.New()
	ptrT := types.Pointed(intT(), 0)
	ptr := ast.NewNameRef(token.Coordinates{}, ptrT, "p", nil)
	bin := TransformBinary(engine, token.Coordinates{}, ast.BAdd, ptr, intLit(1))
	require.False(t, engine.HasError())
	require.Equal(t, types.KindPointed, bin.ExprType().Kind)
}

func TestTransformAssignCastsRHS(t *testing.T) {
	engine := diag.New()
	lhs := ast.NewNameRef(token.Coordinates{}, longT(), "x", nil)
	bin := TransformAssign(engine, token.Coordinates{}, ast.BAssign, lhs, intLit(1))
	require.False(t, engine.HasError())
	require.Equal(t, types.S8, bin.ExprType().Desc.ID)
	_, rhsIsCast := bin.Right.(*ast.Cast)
	require.True(t, rhsIsCast)
}

func TestTransformAssignToConstReports(t *testing.T) {
	engine := diag.New()
	constIntT := types.Value(types.Primitive(types.S4), types.QConst)
	lhs := ast.NewNameRef(token.Coordinates{}, constIntT, "x", nil)
	TransformAssign(engine, token.Coordinates{}, ast.BAssign, lhs, intLit(1))
	require.True(t, engine.HasError())
}

func TestIsAssignableArrayNameRefIsNot(t *testing.T) {
	arr := ast.NewNameRef(token.Coordinates{}, types.Array(intT(), 4), "a", nil)
	require.False(t, IsAssignable(arr))
}

func TestIsAssignableArrayAccessIs(t *testing.T) {
	access := ast.NewBinary(token.Coordinates{}, intT(), ast.BArrayAccess, intLit(1), intLit(0))
	require.True(t, IsAssignable(access))
}

func TestAdjustCallArgumentsCastsToParam(t *testing.T) {
	engine := diag.New()
	fnType := types.Function(intT(), []*types.TypeRef{longT()}, false)
	args := []ast.Expression{intLit(1)}
	out := AdjustCallArguments(engine, token.Coordinates{}, fnType, args)
	require.False(t, engine.HasError())
	_, isCast := out[0].(*ast.Cast)
	require.True(t, isCast)
}

func TestAdjustCallArgumentsVariadicPromotesExtras(t *testing.T) {
	engine := diag.New()
	fnType := types.Function(intT(), nil, true)
	floatArg := ast.NewConst(token.Coordinates{}, types.Value(types.Primitive(types.F4), 0), ast.ConstFloat)
	out := AdjustCallArguments(engine, token.Coordinates{}, fnType, []ast.Expression{floatArg})
	require.False(t, engine.HasError())
	cast, isCast := out[0].(*ast.Cast)
	require.True(t, isCast)
	require.Equal(t, types.F8, cast.ExprType().Desc.ID)
}

func TestAdjustCallArgumentsTooFewReports(t *testing.T) {
	engine := diag.New()
	fnType := types.Function(intT(), []*types.TypeRef{intT(), intT()}, false)
	AdjustCallArguments(engine, token.Coordinates{}, fnType, []ast.Expression{intLit(1)})
	require.True(t, engine.HasError())
}

func TestComputeMemberFindsDirectField(t *testing.T) {
	b := types.NewLayoutBuilder(false)
	b.AddMember("x", intT(), nil)
	b.AddMember("y", intT(), nil)
	head, size, align := b.Finish()
	structT := types.Value(&types.TypeDesc{ID: types.Struct, Size: size, Definition: &types.TypeDefinition{
		Kind: types.KindStruct, Members: head, Size: size, Align: align, IsDefined: true,
	}}, 0)

	engine := diag.New()
	m := ComputeMember(engine, token.Coordinates{}, structT, "y")
	require.NotNil(t, m)
	require.False(t, engine.HasError())
	require.Equal(t, 4, m.Offset)
}

func TestComputeMemberFindsThroughAnonymousNested(t *testing.T) {
	innerBuilder := types.NewLayoutBuilder(false)
	innerBuilder.AddMember("z", intT(), nil)
	innerHead, innerSize, innerAlign := innerBuilder.Finish()
	innerT := types.Value(&types.TypeDesc{ID: types.Struct, Size: innerSize, Definition: &types.TypeDefinition{
		Kind: types.KindStruct, Members: innerHead, Size: innerSize, Align: innerAlign, IsDefined: true,
	}}, 0)

	outer := types.NewLayoutBuilder(false)
	anonMember := outer.AddMember("", innerT, nil)
	for m := innerHead; m != nil; m = m.Next {
		m.Parent = anonMember
	}
	head, size, align := outer.Finish()
	structT := types.Value(&types.TypeDesc{ID: types.Struct, Size: size, Definition: &types.TypeDefinition{
		Kind: types.KindStruct, Members: head, Size: size, Align: align, IsDefined: true,
	}}, 0)

	engine := diag.New()
	m := ComputeMember(engine, token.Coordinates{}, structT, "z")
	require.NotNil(t, m)
	require.False(t, engine.HasError())
}

func TestSwitchBuilderRejectsDuplicateCase(t *testing.T) {
	engine := diag.New()
	b := NewSwitchBuilder(engine)
	b.AddCase(token.Coordinates{}, 1)
	b.AddCase(token.Coordinates{}, 1)
	require.True(t, engine.HasError())
}

func TestSwitchBuilderRejectsMultipleDefault(t *testing.T) {
	engine := diag.New()
	b := NewSwitchBuilder(engine)
	b.AddDefault(token.Coordinates{})
	b.AddDefault(token.Coordinates{})
	require.True(t, engine.HasError())
}

func TestLabelTrackerAllowsForwardGoto(t *testing.T) {
	engine := diag.New()
	tr := NewLabelTracker()
	tr.UseLabel(token.Coordinates{}, "done")
	tr.DefineLabel(engine, token.Coordinates{}, "done")
	tr.Finish(engine)
	require.False(t, engine.HasError())
}

func TestLabelTrackerReportsUndefinedAtFunctionEnd(t *testing.T) {
	engine := diag.New()
	tr := NewLabelTracker()
	tr.UseLabel(token.Coordinates{}, "nowhere")
	tr.Finish(engine)
	require.True(t, engine.HasError())
}

func TestCheckReturnRejectsValueInVoidFunction(t *testing.T) {
	engine := diag.New()
	voidT := types.Value(types.Primitive(types.Void), 0)
	CheckReturn(engine, token.Coordinates{}, voidT, intLit(1))
	require.True(t, engine.HasError())
}

func TestCheckReturnRejectsBareReturnInNonVoidFunction(t *testing.T) {
	engine := diag.New()
	CheckReturn(engine, token.Coordinates{}, intT(), nil)
	require.True(t, engine.HasError())
}

func TestCheckReturnCastsToDeclaredType(t *testing.T) {
	engine := diag.New()
	result := CheckReturn(engine, token.Coordinates{}, longT(), intLit(1))
	require.False(t, engine.HasError())
	_, isCast := result.(*ast.Cast)
	require.True(t, isCast)
}

func TestMaterializeVLADimensionFoldsConstant(t *testing.T) {
	s := scope.New(scope.BlockScope, nil)
	counter := scope.NewAnonCounter()
	result := MaterializeVLADimension(s, counter, intT(), intLit(4))
	require.Equal(t, types.KindArray, result.Kind)
	require.Equal(t, 4, result.Size)
}

func TestMaterializeVLADimensionLowersNonConstant(t *testing.T) {
	s := scope.New(scope.BlockScope, nil)
	counter := scope.NewAnonCounter()
	n := ast.NewNameRef(token.Coordinates{}, intT(), "n", nil)
	result := MaterializeVLADimension(s, counter, intT(), n)
	require.Equal(t, types.KindVLA, result.Kind)
	require.NotEmpty(t, result.VLA.Symbol)
	require.NotNil(t, s.FindSymbol(result.VLA.Symbol))
}
