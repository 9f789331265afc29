// Package consteval folds AST expressions to integer, float, or string
// constants (§4.8). `Eval` is total: every unsupported or genuinely
// non-constant shape returns (Const{}, false) rather than erroring, since
// the caller (the initializer finalizer or the semantic analyzer's
// array-size / case-label checks) decides whether a fold was required.
//
// Grounded on src/evaluate.c's eval/evaluateUnaryConst/evaluateBinaryConst
// and its ee_i_*/ee_f_* per-operator function family; the division/
// modulo-by-zero handling replaces the original's unhandled `// TODO:
// handle r == 0` (which let a division by zero through as whatever the
// host C compiler's UB produced) with the explicit no-fold spec §4.8
// calls for.
package consteval

import (
	"cfront/ast"
	"cfront/scope"
	"cfront/types"
)

// Const is the folded result (mirrors AstConst's CK_INT_CONST /
// CK_FLOAT_CONST / CK_STRING_LITERAL).
type Const struct {
	Kind  ast.ConstKind
	Int   int64
	Float float64
	Str   string
}

// Eval folds expr to a constant, or returns ok=false if expr is not a
// constant expression under §4.8's total case list.
func Eval(expr ast.Expression) (Const, bool) {
	if expr == nil || types.IsError(expr.ExprType()) {
		return Const{}, false
	}
	switch e := expr.(type) {
	case *ast.Const:
		return Const{Kind: e.Kind, Int: e.Int, Float: e.Float, Str: e.Str}, true

	case *ast.NameRef:
		return evalNameRef(e)

	case *ast.Paren:
		return Eval(e.Inner)

	case *ast.Cast:
		arg, ok := Eval(e.Argument)
		if !ok {
			return Const{}, false
		}
		return evalCast(e.ExprType(), arg)

	case *ast.Binary:
		return evalBinary(e)

	case *ast.Ternary:
		cond, ok := Eval(e.Condition)
		if !ok {
			return Const{}, false
		}
		if truthy(cond) {
			return Eval(e.IfTrue)
		}
		return Eval(e.IfFalse)

	case *ast.Unary:
		return evalUnary(e)

	case *ast.FieldAccess:
		if e.Op != ast.FieldArrow {
			return Const{}, false
		}
		receiver, ok := Eval(e.Receiver)
		if !ok || receiver.Kind != ast.ConstInt {
			return Const{}, false
		}
		receiver.Int += int64(e.Member.Offset)
		return receiver, true

	default:
		return Const{}, false
	}
}

// evalNameRef handles name-refs resolving to enum constants or static
// addresses (§4.8: "returned as untyped integer for later relocation").
// An enum constant's symbol carries its *types.Enumerator as Node
// (declareEnumConstantSymbol's payload in the original); a static
// address (a file-scope or `static` name-ref) folds to a placeholder
// integer the linker/codegen stage (out of scope here) would later
// relocate, which this front end represents as 0.
func evalNameRef(e *ast.NameRef) (Const, bool) {
	sym, ok := e.Symbol.(*scope.Symbol)
	if !ok || sym == nil {
		return Const{}, false
	}
	switch sym.Kind {
	case scope.EnumConstSymbol:
		if enumerator, ok := sym.Node.(*types.Enumerator); ok {
			return Const{Kind: ast.ConstInt, Int: enumerator.Value}, true
		}
		return Const{}, false
	case scope.ValueSymbol:
		if decl, ok := sym.Node.(*ast.ValueDeclaration); ok && decl.Flags.Has(types.SCStatic|types.SCExtern) {
			return Const{Kind: ast.ConstInt, Int: 0}, true
		}
		return Const{}, false
	default:
		return Const{}, false
	}
}

func truthy(c Const) bool {
	switch c.Kind {
	case ast.ConstInt:
		return c.Int != 0
	case ast.ConstFloat:
		return c.Float != 0
	default:
		return true // non-empty string-literal condition, mirrors eval's CK_STRING_LITERAL -> TRUE
	}
}

// evalUnary implements §4.8's unary case: +, -, ~, !, with pre/post
// increment and decrement returning the ORIGINAL value (mirrors
// evaluate.c's EU_POST_INC/EU_POST_DEC/EU_PLUS all falling through to
// "return expr" unevaluated, and EU_PRE_INC/EU_PRE_DEC actually being
// folded there — spec narrows this to "return the original value" for
// all four, which this implements uniformly).
func evalUnary(e *ast.Unary) (Const, bool) {
	arg, ok := Eval(e.Argument)
	if !ok {
		return Const{}, false
	}
	switch e.Op {
	case ast.UPlus, ast.UPreInc, ast.UPreDec, ast.UPostInc, ast.UPostDec:
		return arg, true
	case ast.UMinus:
		if arg.Kind == ast.ConstFloat {
			return Const{Kind: ast.ConstFloat, Float: -arg.Float}, true
		}
		return Const{Kind: ast.ConstInt, Int: -arg.Int}, true
	case ast.UTilda:
		if arg.Kind != ast.ConstInt {
			return Const{}, false
		}
		return Const{Kind: ast.ConstInt, Int: ^arg.Int}, true
	case ast.UNot:
		return Const{Kind: ast.ConstInt, Int: boolInt(!truthy(arg))}, true
	case ast.URef:
		return arg, true // &name-ref folds to the name-ref's own value, per §4.8
	default:
		return Const{}, false
	}
}

func boolInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

// evalBinary implements §4.8's binary arithmetic case, including the
// comma operator (right operand only) and the division/modulo
// zero-divisor no-fold rule.
func evalBinary(e *ast.Binary) (Const, bool) {
	if e.Op == ast.BComma {
		return Eval(e.Right)
	}
	if e.Op.IsAssignment() || e.Op == ast.BArrayAccess {
		return Const{}, false
	}
	left, ok := Eval(e.Left)
	if !ok {
		return Const{}, false
	}
	right, ok := Eval(e.Right)
	if !ok {
		return Const{}, false
	}
	if left.Kind == ast.ConstFloat || right.Kind == ast.ConstFloat {
		return evalFloatBinary(e.Op, toFloat(left), toFloat(right))
	}
	return evalIntBinary(e.Op, left.Int, right.Int)
}

func toFloat(c Const) float64 {
	if c.Kind == ast.ConstFloat {
		return c.Float
	}
	return float64(c.Int)
}

func evalIntBinary(op ast.BinaryOp, l, r int64) (Const, bool) {
	switch op {
	case ast.BAdd:
		return intConst(l + r), true
	case ast.BSub:
		return intConst(l - r), true
	case ast.BMul:
		return intConst(l * r), true
	case ast.BDiv:
		if r == 0 {
			return Const{}, false
		}
		return intConst(l / r), true
	case ast.BMod:
		if r == 0 {
			return Const{}, false
		}
		return intConst(l % r), true
	case ast.BShl:
		return intConst(l << uint64(r)), true
	case ast.BShr:
		return intConst(l >> uint64(r)), true
	case ast.BAnd:
		return intConst(l & r), true
	case ast.BOr:
		return intConst(l | r), true
	case ast.BXor:
		return intConst(l ^ r), true
	case ast.BAndAnd:
		return intConst(boolInt(l != 0 && r != 0)), true
	case ast.BOrOr:
		return intConst(boolInt(l != 0 || r != 0)), true
	case ast.BEq:
		return intConst(boolInt(l == r)), true
	case ast.BNe:
		return intConst(boolInt(l != r)), true
	case ast.BLt:
		return intConst(boolInt(l < r)), true
	case ast.BLe:
		return intConst(boolInt(l <= r)), true
	case ast.BGt:
		return intConst(boolInt(l > r)), true
	case ast.BGe:
		return intConst(boolInt(l >= r)), true
	default:
		return Const{}, false
	}
}

func evalFloatBinary(op ast.BinaryOp, l, r float64) (Const, bool) {
	switch op {
	case ast.BAdd:
		return floatConst(l + r), true
	case ast.BSub:
		return floatConst(l - r), true
	case ast.BMul:
		return floatConst(l * r), true
	case ast.BDiv:
		if r == 0 {
			return Const{}, false
		}
		return floatConst(l / r), true
	case ast.BAndAnd:
		return intConst(boolInt(l != 0 && r != 0)), true
	case ast.BOrOr:
		return intConst(boolInt(l != 0 || r != 0)), true
	case ast.BEq:
		return intConst(boolInt(l == r)), true
	case ast.BNe:
		return intConst(boolInt(l != r)), true
	case ast.BLt:
		return intConst(boolInt(l < r)), true
	case ast.BLe:
		return intConst(boolInt(l <= r)), true
	case ast.BGt:
		return intConst(boolInt(l > r)), true
	case ast.BGe:
		return intConst(boolInt(l >= r)), true
	default:
		return Const{}, false // e.g. BMod, BShl, BShr: integer-only per evaluate.c
	}
}

func intConst(v int64) Const   { return Const{Kind: ast.ConstInt, Int: v} }
func floatConst(v float64) Const { return Const{Kind: ast.ConstFloat, Float: v} }

// evalCast implements evalCast's numeric-narrowing table, generalized
// from evaluate.c's per-TypeId switch (T_S1..T_U8, T_F4, T_F8); casts
// to a non-scalar type (pointer, struct, f10) are not folded.
func evalCast(to *types.TypeRef, arg Const) (Const, bool) {
	if to == nil || to.Kind != types.KindValue {
		return Const{}, false
	}
	id := to.Desc.ID
	switch id {
	case types.S1:
		return intConst(int64(int8(asInt(arg)))), true
	case types.S2:
		return intConst(int64(int16(asInt(arg)))), true
	case types.S4, types.Bool:
		return intConst(int64(int32(asInt(arg)))), true
	case types.S8:
		return intConst(asInt(arg)), true
	case types.U1:
		return intConst(int64(uint8(asInt(arg)))), true
	case types.U2:
		return intConst(int64(uint16(asInt(arg)))), true
	case types.U4:
		return intConst(int64(uint32(asInt(arg)))), true
	case types.U8:
		return intConst(asInt(arg)), true
	case types.F4:
		return floatConst(float64(float32(asFloat(arg)))), true
	case types.F8:
		return floatConst(asFloat(arg)), true
	default:
		return Const{}, false
	}
}

func asInt(c Const) int64 {
	if c.Kind == ast.ConstFloat {
		return int64(c.Float)
	}
	return c.Int
}

func asFloat(c Const) float64 {
	if c.Kind == ast.ConstFloat {
		return c.Float
	}
	return float64(c.Int)
}

// EvalSizeOf folds `sizeof(t)` for a non-VLA type (§4.8); VLAs are
// rejected since their size is only known at runtime.
func EvalSizeOf(t *types.TypeRef) (Const, bool) {
	if t == nil || t.Kind == types.KindVLA {
		return Const{}, false
	}
	size := types.ComputeTypeSize(t)
	if size == types.UnknownSize {
		return Const{}, false
	}
	return intConst(int64(size)), true
}
