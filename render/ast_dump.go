// Package render implements the front end's textual and graph dumpers
// (§6): an AST pretty-printer, an IR textual dump, and a DOT-format CFG
// renderer.
//
// Grounded on original_source/src/treeDump.c (AST dump) and
// original_source/src/ir/irdump.c (IR dump, DOT graph): both are
// indent-driven recursive walks over the tree/graph, reproduced here as
// Go visitors over the ast and ir packages instead of a switch over a C
// tagged union.
package render

import (
	"fmt"
	"io"
	"strings"

	"cfront/ast"
	"cfront/types"
)

// DumpFile writes file's declarations and type definitions to w in the
// same layout as the original compiler's `-dump-tree` pass (§6 "AST
// textual dump").
func DumpFile(w io.Writer, file *ast.File) error {
	d := &astDumper{w: w}
	d.printf("FILE %s\n", file.Name)
	for i := len(file.Types) - 1; i >= 0; i-- {
		d.indent = 2
		d.dumpTypeDefinition(file.Types[i])
		d.printf("\n----\n")
	}
	for _, decl := range file.Declarations {
		d.dumpTopLevel(decl)
		d.printf("\n")
	}
	return d.err
}

type astDumper struct {
	w      io.Writer
	indent int
	err    error
}

func (d *astDumper) printf(format string, args ...any) {
	if d.err != nil {
		return
	}
	_, d.err = fmt.Fprintf(d.w, format, args...)
}

func (d *astDumper) putIndent(n int) {
	d.printf("%s", strings.Repeat(" ", n))
}

func (d *astDumper) dumpTopLevel(decl ast.TopLevelDeclaration) {
	switch v := decl.(type) {
	case *ast.FunctionDeclaration:
		d.dumpFunctionDeclaration(0, v)
		if v.Body != nil {
			d.printf("\n")
			d.putIndent(0)
			d.printf("BEGIN\n")
			d.dumpStatement(2, v.Body)
			d.printf("\n")
			d.putIndent(0)
			d.printf("END")
		}
	case *ast.ValueDeclaration:
		d.dumpValueDeclaration(0, v)
	default:
		d.printf("UNKNOWN TOP-LEVEL DECLARATION")
	}
}

func (d *astDumper) dumpFunctionDeclaration(indent int, decl *ast.FunctionDeclaration) {
	d.putIndent(indent)
	d.printf("FUN ")
	d.printf("%s ", TypeString(decl.Type.Return))
	d.printf("%s ", decl.Name)
	for _, p := range decl.Parameters {
		d.printf("\n")
		d.dumpValueDeclaration(indent+2, p)
	}
	if decl.Type.IsVariadic {
		d.printf("\n")
		d.putIndent(indent + 2)
		d.printf("## ...")
	}
}

func (d *astDumper) dumpValueDeclaration(indent int, decl *ast.ValueDeclaration) {
	d.putIndent(indent)
	hasBits := false
	if decl.Flags.Has(types.SCStatic) {
		d.printf("S")
		hasBits = true
	}
	if decl.Flags.Has(types.SCExtern) {
		d.printf("E")
		hasBits = true
	}
	if decl.Flags.Has(types.SCRegister) {
		d.printf("R")
		hasBits = true
	}
	if hasBits {
		d.printf(" ")
	}
	if decl.Kind == ast.DeclParameter {
		d.printf("#%d: ", decl.Index)
	}
	d.printf("%s", TypeString(decl.Type))
	if decl.Name != "" {
		d.printf(" %s", decl.Name)
	}
	if decl.Kind == ast.DeclVariable && decl.Initializer != nil {
		d.printf(" = \\\n")
		d.dumpInitializer(indent+2, decl.Initializer, false)
	}
}

func (d *astDumper) dumpInitializer(indent int, init *ast.Initializer, compound bool) {
	d.putIndent(indent)
	if init.Kind == ast.InitializerExpression {
		if compound {
			d.printf("%s #%d <--- ", TypeString(init.SlotType), init.Offset)
		}
		d.dumpExpression(0, init.Expression)
		return
	}
	d.printf("INIT_BEGIN\n")
	for i, child := range init.Children {
		if i > 0 {
			d.printf("\n")
		}
		d.dumpInitializer(indent+2, child, true)
	}
	d.printf("\n")
	d.putIndent(indent)
	d.printf("INIT_END")
}

func (d *astDumper) dumpTypeDefinition(def *types.TypeDefinition) {
	switch def.Kind {
	case types.KindEnum:
		d.printf("ENUM")
		if def.Name != "" {
			d.printf(" %s", def.Name)
		}
		if len(def.Enumerators) > 0 {
			d.printf("\n")
		}
		for _, e := range def.Enumerators {
			d.putIndent(2)
			d.printf("%s = %d\n", e.Name, e.Value)
		}
		if len(def.Enumerators) > 0 {
			d.printf("ENUM_END")
		}
	default:
		prefix := "STRUCT"
		if def.Kind == types.KindUnion {
			prefix = "UNION"
		}
		d.printf("%s", prefix)
		if def.Name != "" {
			d.printf(" %s", def.Name)
		}
		members := memberSlice(def.Members)
		if len(members) > 0 {
			d.printf("\n")
		}
		for _, m := range members {
			d.putIndent(2)
			d.printf("%s %s #%d\n", TypeString(m.Type), m.Name, m.Offset)
		}
		if len(members) > 0 {
			d.printf("%s_END", prefix)
		}
	}
}

func memberSlice(head *types.StructuralMember) []*types.StructuralMember {
	var out []*types.StructuralMember
	for m := head; m != nil; m = m.Next {
		out = append(out, m)
	}
	return out
}

// dumpStatement and dumpExpression drive the recursive-descent text
// dump by implementing ast.StatementVisitor/ast.ExpressionVisitor
// directly, rather than a type switch, matching the Accept-dispatch
// idiom used throughout this front end (package ir's lowering passes).

func (d *astDumper) dumpStatement(indent int, s ast.Statement) {
	if s == nil {
		return
	}
	(&stmtDumper{astDumper: d, indent: indent}).walk(s)
}

func (d *astDumper) dumpExpression(indent int, e ast.Expression) {
	if e == nil {
		return
	}
	(&exprDumper{astDumper: d, indent: indent}).walk(e)
}

type exprDumper struct {
	*astDumper
	indent int
}

func (d *exprDumper) walk(e ast.Expression) {
	d.putIndent(d.indent)
	e.Accept(d)
}

// wrap dumps arg, parenthesized if its operator binds more loosely than
// top, matching wrapIfNeeded's priority-based re-parenthesization.
func (d *exprDumper) wrap(top exprPriority, arg ast.Expression, forced bool) {
	needParens := forced || top > exprPriorityOf(arg)
	if needParens {
		d.printf("(")
	}
	sub := &exprDumper{astDumper: d.astDumper, indent: 0}
	arg.Accept(sub)
	if needParens {
		d.printf(")")
	}
}

func (d *exprDumper) VisitConst(e *ast.Const) any {
	switch e.Kind {
	case ast.ConstInt:
		d.printf("%d", e.Int)
	case ast.ConstFloat:
		d.printf("%f", e.Float)
	case ast.ConstString:
		d.printf("%q", e.Str)
	}
	return nil
}

func (d *exprDumper) VisitNameRef(e *ast.NameRef) any {
	d.printf("%s", e.Name)
	return nil
}

func (d *exprDumper) VisitUnary(e *ast.Unary) any {
	prio := priorityUnary
	switch e.Op {
	case ast.UPreInc:
		d.printf("++")
	case ast.UPreDec:
		d.printf("--")
	case ast.UDeref:
		d.printf("*")
	case ast.URef:
		d.printf("&")
	case ast.UPlus:
		d.printf("+")
	case ast.UMinus:
		d.printf("-")
	case ast.UTilda:
		d.printf("~")
	case ast.UNot:
		d.printf("!")
	case ast.UPostInc:
		d.wrap(prio, e.Argument, false)
		d.printf("++")
		return nil
	case ast.UPostDec:
		d.wrap(prio, e.Argument, false)
		d.printf("--")
		return nil
	}
	d.wrap(prio, e.Argument, false)
	return nil
}

var binaryMnemonics = map[ast.BinaryOp]string{
	ast.BAdd: " +", ast.BSub: " -", ast.BMul: " *", ast.BDiv: " /", ast.BMod: " %",
	ast.BShl: " <<", ast.BShr: " >>", ast.BAnd: " &", ast.BOr: " |", ast.BXor: " ^",
	ast.BAndAnd: " &&", ast.BOrOr: " ||",
	ast.BEq: " ==", ast.BNe: " !=", ast.BLt: " <", ast.BLe: " <=", ast.BGt: " >", ast.BGe: " >=",
	ast.BComma: ",", ast.BAssign: " =",
	ast.BAsgAdd: " +=", ast.BAsgSub: " -=", ast.BAsgMul: " *=", ast.BAsgDiv: " /=", ast.BAsgMod: " %=",
	ast.BAsgShl: " <<=", ast.BAsgShr: " >>=", ast.BAsgAnd: " &=", ast.BAsgOr: " |=", ast.BAsgXor: " ^=",
}

func (d *exprDumper) VisitBinary(e *ast.Binary) any {
	prio := exprPriorityOfOp(e.Op)
	if e.Op == ast.BArrayAccess {
		d.wrap(prio, e.Left, false)
		d.printf("[")
		sub := &exprDumper{astDumper: d.astDumper, indent: 0}
		e.Right.Accept(sub)
		d.printf("]")
		return nil
	}
	mnemonic := binaryMnemonics[e.Op]
	d.wrap(prio, e.Left, false)
	d.printf("%s ", mnemonic)
	forced := false
	if rb, ok := e.Right.(*ast.Binary); e.Op == ast.BSub && ok && (rb.Op == ast.BAdd || rb.Op == ast.BSub) {
		forced = true
	}
	d.wrap(prio, e.Right, forced)
	return nil
}

func (d *exprDumper) VisitTernary(e *ast.Ternary) any {
	sub := &exprDumper{astDumper: d.astDumper, indent: 0}
	e.Condition.Accept(sub)
	d.printf(" ? ")
	e.IfTrue.Accept(sub)
	d.printf(" : ")
	e.IfFalse.Accept(sub)
	return nil
}

func (d *exprDumper) VisitCast(e *ast.Cast) any {
	d.printf("(%s)", TypeString(e.ExprType()))
	d.wrap(priorityUnary, e.Argument, false)
	return nil
}

func (d *exprDumper) VisitCall(e *ast.Call) any {
	d.wrap(priorityPostfix, e.Callee, false)
	d.printf("(")
	sub := &exprDumper{astDumper: d.astDumper, indent: 0}
	for i, arg := range e.Arguments {
		if i > 0 {
			d.printf(", ")
		}
		arg.Accept(sub)
	}
	d.printf(")")
	return nil
}

func (d *exprDumper) VisitFieldAccess(e *ast.FieldAccess) any {
	d.wrap(priorityPostfix, e.Receiver, false)
	if e.Op == ast.FieldArrow {
		d.printf("->%s", e.Member.Name)
	} else {
		d.printf(".%s", e.Member.Name)
	}
	return nil
}

func (d *exprDumper) VisitCompoundLiteral(e *ast.CompoundLiteral) any {
	d.printf("(%s)\n", TypeString(e.ExprType()))
	d.astDumper.dumpInitializer(d.indent+2, e.Initializer, true)
	return nil
}

func (d *exprDumper) VisitBlockExpr(e *ast.BlockExpr) any {
	d.printf("(")
	d.astDumper.dumpStatement(0, e.Body)
	d.printf(")")
	return nil
}

func (d *exprDumper) VisitLabelRef(e *ast.LabelRef) any {
	d.printf("&&%s", e.Label)
	return nil
}

func (d *exprDumper) VisitVaArg(e *ast.VaArg) any {
	d.printf("__builtin_va_arg(")
	sub := &exprDumper{astDumper: d.astDumper, indent: 0}
	e.VaList.Accept(sub)
	d.printf(", %s)", TypeString(e.ArgType))
	return nil
}

func (d *exprDumper) VisitParen(e *ast.Paren) any {
	d.printf("(")
	sub := &exprDumper{astDumper: d.astDumper, indent: 0}
	e.Inner.Accept(sub)
	d.printf(")")
	return nil
}

func (d *exprDumper) VisitBitExtend(e *ast.BitExtend) any {
	unsignedFlag := 0
	if !e.IsUnsigned {
		unsignedFlag = 1
	}
	d.printf("(%d <-- %d # ", unsignedFlag, e.Width)
	d.wrap(priorityUnary, e.Argument, false)
	d.printf(")")
	return nil
}

func (d *exprDumper) VisitErrorExpr(e *ast.ErrorExpr) any {
	d.printf("ERROR EXPR")
	return nil
}

type stmtDumper struct {
	*astDumper
	indent int
}

func (d *stmtDumper) walk(s ast.Statement) {
	s.Accept(d)
}

func (d *stmtDumper) VisitBlock(s *ast.Block) any {
	for i, stmt := range s.Statements {
		if i > 0 {
			d.printf("\n")
		}
		d.astDumper.dumpStatement(d.indent, stmt)
	}
	return nil
}

func (d *stmtDumper) VisitExprStmt(s *ast.ExprStmt) any {
	d.putIndent(d.indent)
	d.astDumper.dumpExpression(0, s.Expression)
	return nil
}

func (d *stmtDumper) VisitIf(s *ast.If) any {
	d.putIndent(d.indent)
	d.printf("IF (")
	d.astDumper.dumpExpression(0, s.Condition)
	d.printf(")\n")
	d.putIndent(d.indent)
	d.printf("THEN\n")
	d.astDumper.dumpStatement(d.indent+2, s.ThenBranch)
	d.printf("\n")
	if s.ElseBranch != nil {
		d.putIndent(d.indent)
		d.printf("ELSE\n")
		d.astDumper.dumpStatement(d.indent+2, s.ElseBranch)
		d.printf("\n")
	}
	d.putIndent(d.indent)
	d.printf("END_IF")
	return nil
}

func (d *stmtDumper) VisitSwitch(s *ast.Switch) any {
	d.putIndent(d.indent)
	d.printf("SWITCH (")
	d.astDumper.dumpExpression(0, s.Condition)
	d.printf(")\n")
	d.astDumper.dumpStatement(d.indent+2, s.Body)
	d.printf("\n")
	d.putIndent(d.indent)
	d.printf("END_SWITCH")
	return nil
}

func (d *stmtDumper) VisitLoop(s *ast.Loop) any {
	d.putIndent(d.indent)
	switch s.Kind {
	case ast.LoopWhile:
		d.printf("WHILE (")
		d.astDumper.dumpExpression(0, s.Condition)
		d.printf(")\n")
		d.astDumper.dumpStatement(d.indent+2, s.Body)
		d.printf("\n")
		d.putIndent(d.indent)
		d.printf("END_WHILE")
	case ast.LoopDoWhile:
		d.printf("DO\n")
		d.astDumper.dumpStatement(d.indent+2, s.Body)
		d.printf("\n")
		d.putIndent(d.indent)
		d.printf("WHILE (")
		d.astDumper.dumpExpression(0, s.Condition)
		d.printf(")")
	case ast.LoopFor:
		d.printf("FOR (")
		if s.Init != nil {
			d.astDumper.dumpStatement(0, s.Init)
		}
		d.printf("; ")
		if s.Condition != nil {
			d.astDumper.dumpExpression(0, s.Condition)
		}
		d.printf("; ")
		if s.Step != nil {
			d.astDumper.dumpExpression(0, s.Step)
		}
		d.printf(")\n")
		d.astDumper.dumpStatement(d.indent+2, s.Body)
		d.printf("\n")
		d.putIndent(d.indent)
		d.printf("END_FOR")
	}
	return nil
}

func (d *stmtDumper) VisitJump(s *ast.Jump) any {
	d.putIndent(d.indent)
	switch s.Kind {
	case ast.JumpBreak:
		d.printf("BREAK")
	case ast.JumpContinue:
		d.printf("CONTINUE")
	case ast.JumpGotoLabel:
		d.printf("GOTO %s", s.Label)
	case ast.JumpGotoExpr:
		d.printf("GOTO *")
		d.astDumper.dumpExpression(0, s.Target)
	case ast.JumpReturn:
		d.printf("RETURN")
		if s.ReturnValue != nil {
			d.printf(" ")
			d.astDumper.dumpExpression(0, s.ReturnValue)
		}
	}
	return nil
}

func (d *stmtDumper) VisitLabeled(s *ast.Labeled) any {
	d.putIndent(d.indent)
	switch s.Kind {
	case ast.LabelNamed:
		d.printf("%s: ", s.Name)
	case ast.LabelDefault:
		d.printf("DEFAULT: ")
	case ast.LabelCase:
		d.printf("CASE %d: ", s.CaseValue)
	}
	d.astDumper.dumpStatement(0, s.Body)
	return nil
}

func (d *stmtDumper) VisitDeclStmt(s *ast.DeclStmt) any {
	d.astDumper.dumpValueDeclaration(d.indent, s.Declaration)
	return nil
}

func (d *stmtDumper) VisitEmpty(s *ast.Empty) any { return nil }

func (d *stmtDumper) VisitErrorStmt(s *ast.ErrorStmt) any {
	d.putIndent(d.indent)
	d.printf("ERROR_STATEMENT")
	return nil
}

// exprPriority mirrors opPriority's precedence ladder (treeDump.c):
// only the relative ordering matters, to decide wrapIfNeeded's parens.
type exprPriority int

const (
	priorityComma exprPriority = iota
	priorityAssign
	priorityTernary
	priorityLogicalOr
	priorityLogicalAnd
	priorityBitOr
	priorityBitXor
	priorityBitAnd
	priorityEquality
	priorityRelational
	priorityShift
	priorityAdditive
	priorityMultiplicative
	priorityUnary
	priorityPostfix
)

func exprPriorityOfOp(op ast.BinaryOp) exprPriority {
	switch op {
	case ast.BComma:
		return priorityComma
	case ast.BAssign, ast.BAsgAdd, ast.BAsgSub, ast.BAsgMul, ast.BAsgDiv, ast.BAsgMod,
		ast.BAsgShl, ast.BAsgShr, ast.BAsgAnd, ast.BAsgOr, ast.BAsgXor:
		return priorityAssign
	case ast.BOrOr:
		return priorityLogicalOr
	case ast.BAndAnd:
		return priorityLogicalAnd
	case ast.BOr:
		return priorityBitOr
	case ast.BXor:
		return priorityBitXor
	case ast.BAnd:
		return priorityBitAnd
	case ast.BEq, ast.BNe:
		return priorityEquality
	case ast.BLt, ast.BLe, ast.BGt, ast.BGe:
		return priorityRelational
	case ast.BShl, ast.BShr:
		return priorityShift
	case ast.BAdd, ast.BSub:
		return priorityAdditive
	case ast.BMul, ast.BDiv, ast.BMod:
		return priorityMultiplicative
	case ast.BArrayAccess:
		return priorityPostfix
	}
	return priorityComma
}

func exprPriorityOf(e ast.Expression) exprPriority {
	switch v := e.(type) {
	case *ast.Binary:
		return exprPriorityOfOp(v.Op)
	case *ast.Unary:
		switch v.Op {
		case ast.UPostInc, ast.UPostDec:
			return priorityPostfix
		default:
			return priorityUnary
		}
	case *ast.Ternary:
		return priorityTernary
	case *ast.Cast:
		return priorityUnary
	case *ast.Call, *ast.FieldAccess:
		return priorityPostfix
	default:
		return priorityPostfix
	}
}

// TypeString renders t the way the original's renderTypeRef/
// renderTypeDesc does, for both the AST and IR dumpers.
func TypeString(t *types.TypeRef) string {
	if t == nil {
		return "<nil type>"
	}

	var b strings.Builder
	if t.Quals.Has(types.QConst) {
		b.WriteByte('C')
	}
	if t.Quals.Has(types.QVolatile) {
		b.WriteByte('V')
	}
	if b.Len() > 0 {
		b.WriteByte(' ')
	}

	switch t.Kind {
	case types.KindValue:
		b.WriteString(typeDescString(t.Desc))
	case types.KindPointed:
		b.WriteByte('*')
		b.WriteString(TypeString(t.Pointee))
	case types.KindArray, types.KindVLA:
		wrap := t.Element != nil && t.Element.Kind != types.KindValue
		if wrap {
			b.WriteByte('(')
		}
		b.WriteString(TypeString(t.Element))
		if wrap {
			b.WriteByte(')')
		}
		if t.Kind == types.KindArray {
			if t.Size == types.UnknownSize {
				b.WriteString("[]")
			} else {
				fmt.Fprintf(&b, "[%d]", t.Size)
			}
		} else {
			b.WriteString("[*]")
		}
	case types.KindFunction:
		b.WriteString(TypeString(t.Return))
		b.WriteString(" (")
		for i, p := range t.Params {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(TypeString(p))
		}
		if t.IsVariadic {
			if len(t.Params) > 0 {
				b.WriteString(", ")
			}
			b.WriteString("...")
		}
		b.WriteByte(')')
	case types.KindBitfield:
		fmt.Fprintf(&b, "%s : %d", typeDescString(t.Storage), t.Width)
	case types.KindErrorType:
		b.WriteString("ERROR TYPE")
	}
	return b.String()
}

func typeDescString(desc *types.TypeDesc) string {
	if desc == nil {
		return "<nil desc>"
	}
	switch desc.ID {
	case types.Struct:
		return "STRUCT " + desc.Name
	case types.Union:
		return "UNION " + desc.Name
	case types.Enum:
		return "ENUM " + desc.Name
	case types.ErrorID:
		return "ERROR TYPE"
	default:
		return desc.Name
	}
}
