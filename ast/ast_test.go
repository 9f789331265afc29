package ast

import (
	"testing"

	"cfront/token"
	"cfront/types"

	"github.com/stretchr/testify/require"
)

// countingVisitor counts how many expression/statement nodes it visits,
// verifying Accept dispatches to the correct Visit method for every
// variant (mirrors the teacher's own visitor-dispatch tests).
type countingVisitor struct{ count int }

func (c *countingVisitor) VisitConst(e *Const) any            { c.count++; return nil }
func (c *countingVisitor) VisitNameRef(e *NameRef) any         { c.count++; return nil }
func (c *countingVisitor) VisitUnary(e *Unary) any             { c.count++; e.Argument.Accept(c); return nil }
func (c *countingVisitor) VisitBinary(e *Binary) any {
	c.count++
	e.Left.Accept(c)
	e.Right.Accept(c)
	return nil
}
func (c *countingVisitor) VisitTernary(e *Ternary) any         { c.count++; return nil }
func (c *countingVisitor) VisitCast(e *Cast) any               { c.count++; return nil }
func (c *countingVisitor) VisitCall(e *Call) any               { c.count++; return nil }
func (c *countingVisitor) VisitFieldAccess(e *FieldAccess) any { c.count++; return nil }
func (c *countingVisitor) VisitCompoundLiteral(e *CompoundLiteral) any { c.count++; return nil }
func (c *countingVisitor) VisitBlockExpr(e *BlockExpr) any     { c.count++; return nil }
func (c *countingVisitor) VisitLabelRef(e *LabelRef) any       { c.count++; return nil }
func (c *countingVisitor) VisitVaArg(e *VaArg) any             { c.count++; return nil }
func (c *countingVisitor) VisitParen(e *Paren) any             { c.count++; return nil }
func (c *countingVisitor) VisitBitExtend(e *BitExtend) any     { c.count++; return nil }
func (c *countingVisitor) VisitErrorExpr(e *ErrorExpr) any     { c.count++; return nil }

func TestBinaryAcceptDispatchesToChildren(t *testing.T) {
	intT := types.Value(types.Primitive(types.S4), 0)
	coords := token.Coordinates{Left: 0, Right: 1}
	left := NewConst(coords, intT, ConstInt)
	right := NewConst(coords, intT, ConstInt)
	bin := NewBinary(coords, intT, BAdd, left, right)

	v := &countingVisitor{}
	bin.Accept(v)
	require.Equal(t, 3, v.count) // binary + two consts
}

func TestExprTypeAndCoordsAccessors(t *testing.T) {
	intT := types.Value(types.Primitive(types.S4), 0)
	coords := token.Coordinates{Left: 3, Right: 7}
	c := NewConst(coords, intT, ConstInt)
	require.Equal(t, coords, c.Coords())
	require.Same(t, intT, c.ExprType())
}

func TestErrorExprCarriesErrorType(t *testing.T) {
	e := NewErrorExpr(token.Coordinates{})
	require.True(t, types.IsError(e.ExprType()))
}

func TestParenInheritsInnerType(t *testing.T) {
	intT := types.Value(types.Primitive(types.S4), 0)
	coords := token.Coordinates{Left: 0, Right: 1}
	inner := NewConst(coords, intT, ConstInt)
	p := NewParen(coords, inner)
	require.Same(t, intT, p.ExprType())
}

func TestValueDeclarationSiblingChain(t *testing.T) {
	intT := types.Value(types.Primitive(types.S4), 0)
	a := NewValueDeclaration(token.Coordinates{}, DeclVariable, intT, "a", 0, 0)
	b := NewValueDeclaration(token.Coordinates{}, DeclVariable, intT, "b", 1, 0)
	a.Next = b
	require.Equal(t, "b", a.Next.Name)
}
