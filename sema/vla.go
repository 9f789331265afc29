package sema

import (
	"cfront/ast"
	"cfront/consteval"
	"cfront/scope"
	"cfront/types"
)

// MaterializeVLADimension implements §4.6 VLA size materialization: a
// dimension size expression that does not fold to a constant is lowered
// to a synthesized hidden local of integer type (declared in declScope,
// computed at the VLA's declaration point); sizeExpr itself becomes
// that local's initializing expression and the VLA type carries the
// hidden local's name instead of the raw expression. A constant-folding
// dimension is left as an ordinary Array type instead, since only the
// non-constant case needs a runtime-computed symbol.
func MaterializeVLADimension(declScope *scope.Scope, counter *scope.AnonCounter, elementType *types.TypeRef, sizeExpr ast.Expression) *types.TypeRef {
	if v, ok := consteval.Eval(sizeExpr); ok && v.Kind == ast.ConstInt {
		return types.Array(elementType, int(v.Int))
	}
	hiddenName := "$vla" + counter.Next()
	declScope.DeclareSymbol(scope.ValueSymbol, hiddenName, sizeExpr, func(a, b any) bool { return false })
	return types.VLAType(elementType, sizeExpr, hiddenName)
}

// VLADimensionSymbols collects the hidden local names of every VLA
// dimension nested in t, outermost first, for §4.8's "sizeof on a VLA
// expands to the product of its dimension symbols".
func VLADimensionSymbols(t *types.TypeRef) []string {
	var names []string
	for t != nil && t.Kind == types.KindVLA {
		names = append(names, t.VLA.Symbol)
		t = t.Element
	}
	return names
}
