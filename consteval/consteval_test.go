package consteval

import (
	"testing"

	"cfront/ast"
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

func floatLit(v float64) *ast.Const {
	floatT := types.Value(types.Primitive(types.F8), 0)
	c := ast.NewConst(token.Coordinates{}, floatT, ast.ConstFloat)
	c.Float = v
	return c
}

func TestEvalConstLiteral(t *testing.T) {
	v, ok := Eval(intLit(42))
	require.True(t, ok)
	require.Equal(t, int64(42), v.Int)
}

func TestEvalBinaryArithmetic(t *testing.T) {
	intT := types.Value(types.Primitive(types.S4), 0)
	bin := ast.NewBinary(token.Coordinates{}, intT, ast.BAdd, intLit(2), intLit(3))
	v, ok := Eval(bin)
	require.True(t, ok)
	require.Equal(t, int64(5), v.Int)
}

func TestEvalDivisionByZeroYieldsNoFold(t *testing.T) {
	intT := types.Value(types.Primitive(types.S4), 0)
	bin := ast.NewBinary(token.Coordinates{}, intT, ast.BDiv, intLit(10), intLit(0))
	_, ok := Eval(bin)
	require.False(t, ok)
}

func TestEvalModuloByZeroYieldsNoFold(t *testing.T) {
	intT := types.Value(types.Primitive(types.S4), 0)
	bin := ast.NewBinary(token.Coordinates{}, intT, ast.BMod, intLit(10), intLit(0))
	_, ok := Eval(bin)
	require.False(t, ok)
}

func TestEvalMixedIntFloatPromotesToFloat(t *testing.T) {
	floatT := types.Value(types.Primitive(types.F8), 0)
	bin := ast.NewBinary(token.Coordinates{}, floatT, ast.BAdd, intLit(2), floatLit(0.5))
	v, ok := Eval(bin)
	require.True(t, ok)
	require.Equal(t, ast.ConstFloat, v.Kind)
	require.InDelta(t, 2.5, v.Float, 1e-9)
}

func TestEvalUnaryMinus(t *testing.T) {
	intT := types.Value(types.Primitive(types.S4), 0)
	u := ast.NewUnary(token.Coordinates{}, intT, ast.UMinus, intLit(7))
	v, ok := Eval(u)
	require.True(t, ok)
	require.Equal(t, int64(-7), v.Int)
}

func TestEvalPostIncReturnsOriginalValue(t *testing.T) {
	intT := types.Value(types.Primitive(types.S4), 0)
	u := ast.NewUnary(token.Coordinates{}, intT, ast.UPostInc, intLit(7))
	v, ok := Eval(u)
	require.True(t, ok)
	require.Equal(t, int64(7), v.Int)
}

func TestEvalTernaryFoldsOnlyChosenBranch(t *testing.T) {
	intT := types.Value(types.Primitive(types.S4), 0)
	tern := ast.NewTernary(token.Coordinates{}, intT, intLit(1), intLit(10), intLit(20))
	v, ok := Eval(tern)
	require.True(t, ok)
	require.Equal(t, int64(10), v.Int)
}

func TestEvalCommaReturnsRightOperand(t *testing.T) {
	intT := types.Value(types.Primitive(types.S4), 0)
	bin := ast.NewBinary(token.Coordinates{}, intT, ast.BComma, intLit(1), intLit(2))
	v, ok := Eval(bin)
	require.True(t, ok)
	require.Equal(t, int64(2), v.Int)
}

func TestEvalArrayAccessIsNotConstant(t *testing.T) {
	intT := types.Value(types.Primitive(types.S4), 0)
	bin := ast.NewBinary(token.Coordinates{}, intT, ast.BArrayAccess, intLit(1), intLit(2))
	_, ok := Eval(bin)
	require.False(t, ok)
}

func TestEvalSizeOfNonVLA(t *testing.T) {
	intT := types.Value(types.Primitive(types.S4), 0)
	v, ok := EvalSizeOf(intT)
	require.True(t, ok)
	require.Equal(t, int64(4), v.Int)
}

func TestEvalSizeOfVLAFails(t *testing.T) {
	intT := types.Value(types.Primitive(types.S4), 0)
	vla := types.VLAType(intT, nil, "n$size")
	_, ok := EvalSizeOf(vla)
	require.False(t, ok)
}

func TestEvalCastNarrowsToS1(t *testing.T) {
	s1 := types.Value(types.Primitive(types.S1), 0)
	c := ast.NewCast(token.Coordinates{}, s1, intLit(300), false)
	v, ok := Eval(c)
	require.True(t, ok)
	require.Equal(t, int64(44), v.Int)
}
