// Package ast defines the typed abstract syntax tree the parser builds
// and the semantic analyzer annotates in place (§3 "AstExpression",
// "AstStatement", "AstValueDeclaration", "AstInitializer").
//
// Grounded on the teacher's visitor-pattern idiom (ExpressionVisitor/
// StmtVisitor, Accept dispatch) in ast/interfaces.go, generalized from
// nilan's half-dozen node kinds to the full C-like node set named in
// src/treeDump.c's dumpAstExpressionImpl/dumpAstStatementImpl switches.
package ast

import (
	"cfront/token"
	"cfront/types"
)

// Expression is the base interface every AstExpression variant
// implements (mirrors the teacher's Expression interface).
type Expression interface {
	Accept(v ExpressionVisitor) any
	Coords() token.Coordinates
	ExprType() *types.TypeRef
}

// Statement is the base interface every AstStatement variant
// implements (mirrors the teacher's Stmt interface).
type Statement interface {
	Accept(v StatementVisitor) any
	Coords() token.Coordinates
}

// ExpressionVisitor dispatches over every expression variant named in
// spec §3: constants, name reference, unary/binary/ternary/cast/call/
// field-access/compound-literal/block-expression/label-reference/
// va-arg/paren/bit-extend/error.
type ExpressionVisitor interface {
	VisitConst(e *Const) any
	VisitNameRef(e *NameRef) any
	VisitUnary(e *Unary) any
	VisitBinary(e *Binary) any
	VisitTernary(e *Ternary) any
	VisitCast(e *Cast) any
	VisitCall(e *Call) any
	VisitFieldAccess(e *FieldAccess) any
	VisitCompoundLiteral(e *CompoundLiteral) any
	VisitBlockExpr(e *BlockExpr) any
	VisitLabelRef(e *LabelRef) any
	VisitVaArg(e *VaArg) any
	VisitParen(e *Paren) any
	VisitBitExtend(e *BitExtend) any
	VisitErrorExpr(e *ErrorExpr) any
}

// StatementVisitor dispatches over every statement variant named in
// spec §3: block, expression-statement, if, switch, loop, jump,
// labeled, declaration, empty, error.
type StatementVisitor interface {
	VisitBlock(s *Block) any
	VisitExprStmt(s *ExprStmt) any
	VisitIf(s *If) any
	VisitSwitch(s *Switch) any
	VisitLoop(s *Loop) any
	VisitJump(s *Jump) any
	VisitLabeled(s *Labeled) any
	VisitDeclStmt(s *DeclStmt) any
	VisitEmpty(s *Empty) any
	VisitErrorStmt(s *ErrorStmt) any
}
