package sema

import (
	"cfront/ast"
	"cfront/diag"
	"cfront/token"
	"cfront/types"
)

// castTo wraps expr in an implicit Cast to target unless it is already
// exactly target's type.
func castTo(coords token.Coordinates, target *types.TypeRef, expr ast.Expression) ast.Expression {
	if expr == nil {
		return expr
	}
	if types.TypesEqual(expr.ExprType(), target) {
		return expr
	}
	return ast.NewCast(coords, target, expr, true)
}

// TransformBinary implements §4.6 transform_binary_expression: computes
// the operation's result type (pointer arithmetic or usual arithmetic
// conversions) and casts both operands so their post-transform types
// exactly match it, reporting an incompatible-operand diagnostic when no
// rule applies.
func TransformBinary(engine *diag.Engine, coords token.Coordinates, op ast.BinaryOp, left, right ast.Expression) *ast.Binary {
	lt, rt := left.ExprType(), right.ExprType()

	if op == ast.BAdd || op == ast.BSub {
		if lt.Kind == types.KindPointed && rt.Kind == types.KindValue && rt.Desc.ID.IsInteger() {
			return ast.NewBinary(coords, lt, op, left, right)
		}
		if op == ast.BAdd && lt.Kind == types.KindValue && lt.Desc.ID.IsInteger() && rt.Kind == types.KindPointed {
			return ast.NewBinary(coords, rt, op, left, right)
		}
		if op == ast.BSub && lt.Kind == types.KindPointed && rt.Kind == types.KindPointed {
			if types.TypeEquality(lt.Pointee, rt.Pointee) != types.NotEqual {
				ptrdiff := types.Value(types.Primitive(types.S8), 0)
				return ast.NewBinary(coords, ptrdiff, op, left, right)
			}
		}
	}

	if op == ast.BEq || op == ast.BNe || op == ast.BLt || op == ast.BLe || op == ast.BGt || op == ast.BGe {
		if lt.Kind == types.KindPointed && rt.Kind == types.KindPointed {
			if types.TypeEquality(lt.Pointee, rt.Pointee) == types.NotEqual && !types.IsVoid(lt.Pointee) && !types.IsVoid(rt.Pointee) {
				engine.Report(diag.IncompatibleCast, coords, lt, rt)
			}
			resultT := types.Value(types.Primitive(types.S4), 0)
			return ast.NewBinary(coords, resultT, op, left, right)
		}
		common := CommonArithmeticType(lt, rt)
		resultT := types.Value(types.Primitive(types.S4), 0)
		return ast.NewBinary(coords, resultT, op, castTo(coords, common, left), castTo(coords, common, right))
	}

	if op == ast.BComma {
		return ast.NewBinary(coords, rt, op, left, right)
	}

	if !lt.Desc.ID.IsInteger() && !lt.Desc.ID.IsFloat() && lt.Kind != types.KindErrorType {
		engine.Report(diag.IncompatibleCast, coords, lt, rt)
		return ast.NewBinary(coords, types.Error(), op, left, right)
	}

	common := CommonArithmeticType(lt, rt)
	if types.IsError(common) {
		engine.Report(diag.IncompatibleCast, coords, lt, rt)
		return ast.NewBinary(coords, types.Error(), op, left, right)
	}
	return ast.NewBinary(coords, common, op, castTo(coords, common, left), castTo(coords, common, right))
}

// TransformTernary implements §4.6 transform_ternary_expression: the
// result type is the common type of the true/false branches, with each
// branch cast to it.
func TransformTernary(coords token.Coordinates, cond, ifTrue, ifFalse ast.Expression) *ast.Ternary {
	tt, ft := ifTrue.ExprType(), ifFalse.ExprType()
	var result *types.TypeRef
	switch {
	case types.TypesEqual(tt, ft):
		result = tt
	case tt.Kind == types.KindValue && ft.Kind == types.KindValue && (tt.Desc.ID.IsInteger() || tt.Desc.ID.IsFloat()):
		result = CommonArithmeticType(tt, ft)
	default:
		result = tt
	}
	return ast.NewTernary(coords, result, cond, castTo(coords, result, ifTrue), castTo(coords, result, ifFalse))
}

// TransformAssign implements §4.6 transform_assign_expression: the
// right-hand side is cast to the left-hand side's type; the result
// type of the assignment expression is the left-hand side's type,
// qualifiers included.
func TransformAssign(engine *diag.Engine, coords token.Coordinates, op ast.BinaryOp, lhs, rhs ast.Expression) *ast.Binary {
	if !IsAssignable(lhs) {
		engine.Report(diag.IncompatibleAssignment, coords, lhs.ExprType(), rhs.ExprType())
	}
	target := lhs.ExprType()
	cast := castTo(coords, target, rhs)
	return ast.NewBinary(coords, target, op, lhs, cast)
}

// IsAssignable implements §4.6's assignability check: a name-ref to a
// non-array non-function value, a deref, a field-access, or an
// array-access (or a parenthesization of one of those), whose type is
// not top-level const. Bit-field l-values are assignable (their
// address merely is not, which RefOfBitField governs separately).
func IsAssignable(expr ast.Expression) bool {
	switch e := expr.(type) {
	case *ast.Paren:
		return IsAssignable(e.Inner)
	case *ast.NameRef:
		t := e.ExprType()
		return t.Kind != types.KindArray && t.Kind != types.KindFunction && !t.Quals.Has(types.QConst)
	case *ast.Unary:
		return e.Op == ast.UDeref && !e.ExprType().Quals.Has(types.QConst)
	case *ast.FieldAccess:
		return !e.ExprType().Quals.Has(types.QConst)
	case *ast.Binary:
		return e.Op == ast.BArrayAccess && !e.ExprType().Quals.Has(types.QConst)
	default:
		return false
	}
}
