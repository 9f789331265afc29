package ast

import (
	"cfront/token"
	"cfront/types"
)

// exprBase carries the fields every expression variant shares: its
// source span and its resolved type (§3 invariant: "every non-error
// AST expression has a non-null type").
type exprBase struct {
	coords token.Coordinates
	Type   *types.TypeRef
}

func (b *exprBase) Coords() token.Coordinates  { return b.coords }
func (b *exprBase) ExprType() *types.TypeRef   { return b.Type }
func newExprBase(coords token.Coordinates, t *types.TypeRef) exprBase {
	return exprBase{coords: coords, Type: t}
}

// ConstKind tags the payload carried by a Const node.
type ConstKind int

const (
	ConstInt ConstKind = iota
	ConstFloat
	ConstString
)

// Const is a literal constant (mirrors E_CONST / AstConst's CK_INT_CONST,
// CK_FLOAT_CONST, CK_STRING_LITERAL).
type Const struct {
	exprBase
	Kind  ConstKind
	Int   int64
	Float float64
	Str   string
}

func NewConst(coords token.Coordinates, t *types.TypeRef, kind ConstKind) *Const {
	return &Const{exprBase: newExprBase(coords, t), Kind: kind}
}
func (e *Const) Accept(v ExpressionVisitor) any { return v.VisitConst(e) }

// NameRef names a resolved symbol (mirrors E_NAMEREF).
type NameRef struct {
	exprBase
	Name   string
	Symbol any // *scope.Symbol; kept opaque to avoid ast depending back on a consumer of ast nodes
}

func NewNameRef(coords token.Coordinates, t *types.TypeRef, name string, symbol any) *NameRef {
	return &NameRef{exprBase: newExprBase(coords, t), Name: name, Symbol: symbol}
}
func (e *NameRef) Accept(v ExpressionVisitor) any { return v.VisitNameRef(e) }

// UnaryOp enumerates the unary operators (mirrors EU_* in evaluate.c /
// treeDump.c: PLUS, MINUS, TILDA, EXL, REF, DEREF, PRE/POST INC/DEC).
type UnaryOp int

const (
	UPlus UnaryOp = iota
	UMinus
	UTilda
	UNot
	URef
	UDeref
	UPreInc
	UPreDec
	UPostInc
	UPostDec
)

// Unary is a prefix or postfix unary expression.
type Unary struct {
	exprBase
	Op       UnaryOp
	Argument Expression
}

func NewUnary(coords token.Coordinates, t *types.TypeRef, op UnaryOp, arg Expression) *Unary {
	return &Unary{exprBase: newExprBase(coords, t), Op: op, Argument: arg}
}
func (e *Unary) Accept(v ExpressionVisitor) any { return v.VisitUnary(e) }

// BinaryOp enumerates the binary/assignment operators (mirrors EB_* in
// evaluate.c / treeDump.c).
type BinaryOp int

const (
	BAdd BinaryOp = iota
	BSub
	BMul
	BDiv
	BMod
	BShl
	BShr
	BAnd
	BOr
	BXor
	BAndAnd
	BOrOr
	BEq
	BNe
	BLt
	BLe
	BGt
	BGe
	BComma
	BArrayAccess // a[b], EB_A_ACC
	BAssign
	BAsgAdd
	BAsgSub
	BAsgMul
	BAsgDiv
	BAsgMod
	BAsgShl
	BAsgShr
	BAsgAnd
	BAsgOr
	BAsgXor
)

// IsAssignment reports whether op is one of the (possibly compound)
// assignment operators.
func (op BinaryOp) IsAssignment() bool {
	return op >= BAssign && op <= BAsgXor
}

// Binary is a two-operand expression, including array access and
// assignment (which the original groups under the same EB_* tag space).
type Binary struct {
	exprBase
	Op    BinaryOp
	Left  Expression
	Right Expression
}

func NewBinary(coords token.Coordinates, t *types.TypeRef, op BinaryOp, left, right Expression) *Binary {
	return &Binary{exprBase: newExprBase(coords, t), Op: op, Left: left, Right: right}
}
func (e *Binary) Accept(v ExpressionVisitor) any { return v.VisitBinary(e) }

// Ternary is the `cond ? ifTrue : ifFalse` conditional expression
// (mirrors E_TERNARY / AstTernaryExpression).
type Ternary struct {
	exprBase
	Condition Expression
	IfTrue    Expression
	IfFalse   Expression
}

func NewTernary(coords token.Coordinates, t *types.TypeRef, cond, ifTrue, ifFalse Expression) *Ternary {
	return &Ternary{exprBase: newExprBase(coords, t), Condition: cond, IfTrue: ifTrue, IfFalse: ifFalse}
}
func (e *Ternary) Accept(v ExpressionVisitor) any { return v.VisitTernary(e) }

// Cast is an explicit or sema-inserted implicit conversion (mirrors
// E_CAST / AstCastExpression; §4.6 transform_* wraps operands in these).
type Cast struct {
	exprBase
	Argument Expression
	Implicit bool // true when inserted by the semantic analyzer rather than written by the user
}

func NewCast(coords token.Coordinates, t *types.TypeRef, arg Expression, implicit bool) *Cast {
	return &Cast{exprBase: newExprBase(coords, t), Argument: arg, Implicit: implicit}
}
func (e *Cast) Accept(v ExpressionVisitor) any { return v.VisitCast(e) }

// Call is a function call (mirrors E_CALL / AstCallExpression).
type Call struct {
	exprBase
	Callee    Expression
	Arguments []Expression
}

func NewCall(coords token.Coordinates, t *types.TypeRef, callee Expression, args []Expression) *Call {
	return &Call{exprBase: newExprBase(coords, t), Callee: callee, Arguments: args}
}
func (e *Call) Accept(v ExpressionVisitor) any { return v.VisitCall(e) }

// FieldOp distinguishes `.` from `->` (mirrors EF_DOT / EF_ARROW).
type FieldOp int

const (
	FieldDot FieldOp = iota
	FieldArrow
)

// FieldAccess is a `.` or `->` member access (mirrors EF_DOT/EF_ARROW /
// AstFieldExpression).
type FieldAccess struct {
	exprBase
	Op       FieldOp
	Receiver Expression
	Member   *types.StructuralMember
}

func NewFieldAccess(coords token.Coordinates, t *types.TypeRef, op FieldOp, receiver Expression, member *types.StructuralMember) *FieldAccess {
	return &FieldAccess{exprBase: newExprBase(coords, t), Op: op, Receiver: receiver, Member: member}
}
func (e *FieldAccess) Accept(v ExpressionVisitor) any { return v.VisitFieldAccess(e) }

// CompoundLiteral is a `(T){ ... }` compound literal (mirrors E_COMPOUND);
// Initializer is the literal's *Initializer tree (ast/initializer.go).
type CompoundLiteral struct {
	exprBase
	Initializer *Initializer
}

func NewCompoundLiteral(coords token.Coordinates, t *types.TypeRef, init *Initializer) *CompoundLiteral {
	return &CompoundLiteral{exprBase: newExprBase(coords, t), Initializer: init}
}
func (e *CompoundLiteral) Accept(v ExpressionVisitor) any { return v.VisitCompoundLiteral(e) }

// BlockExpr is a GNU statement-expression `({ ... })` (mirrors E_BLOCK).
type BlockExpr struct {
	exprBase
	Body *Block
}

func NewBlockExpr(coords token.Coordinates, t *types.TypeRef, body *Block) *BlockExpr {
	return &BlockExpr{exprBase: newExprBase(coords, t), Body: body}
}
func (e *BlockExpr) Accept(v ExpressionVisitor) any { return v.VisitBlockExpr(e) }

// LabelRef is `&&label`, the address of a label for computed goto
// (mirrors E_LABEL_REF).
type LabelRef struct {
	exprBase
	Label string
}

func NewLabelRef(coords token.Coordinates, t *types.TypeRef, label string) *LabelRef {
	return &LabelRef{exprBase: newExprBase(coords, t), Label: label}
}
func (e *LabelRef) Accept(v ExpressionVisitor) any { return v.VisitLabelRef(e) }

// VaArg is `__builtin_va_arg(ap, T)` (mirrors E_VA_ARG).
type VaArg struct {
	exprBase
	VaList  Expression
	ArgType *types.TypeRef
}

func NewVaArg(coords token.Coordinates, t *types.TypeRef, vaList Expression, argType *types.TypeRef) *VaArg {
	return &VaArg{exprBase: newExprBase(coords, t), VaList: vaList, ArgType: argType}
}
func (e *VaArg) Accept(v ExpressionVisitor) any { return v.VisitVaArg(e) }

// Paren is a parenthesized expression, kept distinct from its inner
// expression so printers can reproduce source parens (mirrors E_PAREN).
type Paren struct {
	exprBase
	Inner Expression
}

func NewParen(coords token.Coordinates, inner Expression) *Paren {
	return &Paren{exprBase: newExprBase(coords, inner.ExprType()), Inner: inner}
}
func (e *Paren) Accept(v ExpressionVisitor) any { return v.VisitParen(e) }

// BitExtend is a sign- or zero-extension the semantic analyzer inserts
// when promoting a bit-field read to its declared width (mirrors
// E_BIT_EXTEND).
type BitExtend struct {
	exprBase
	Argument   Expression
	Width      int
	IsUnsigned bool
}

func NewBitExtend(coords token.Coordinates, t *types.TypeRef, arg Expression, width int, isUnsigned bool) *BitExtend {
	return &BitExtend{exprBase: newExprBase(coords, t), Argument: arg, Width: width, IsUnsigned: isUnsigned}
}
func (e *BitExtend) Accept(v ExpressionVisitor) any { return v.VisitBitExtend(e) }

// ErrorExpr marks a syntax or semantic error site so downstream phases
// can continue without cascading diagnostics (mirrors E_ERROR;
// §4.5 "a single translation unit always produces a well-formed AST
// shell even on error").
type ErrorExpr struct {
	exprBase
}

func NewErrorExpr(coords token.Coordinates) *ErrorExpr {
	return &ErrorExpr{exprBase: newExprBase(coords, types.Error())}
}
func (e *ErrorExpr) Accept(v ExpressionVisitor) any { return v.VisitErrorExpr(e) }
