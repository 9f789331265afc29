package ir

import (
	"cfront/ast"
	"cfront/scope"
	"cfront/types"
)

// lvalue is the address form an assignable expression lowers to: either
// a named local (kept in a register unless its address has been taken)
// or a memory location reached through a base register plus offset.
type lvalue struct {
	local  *Local
	memory Operand // valid when local == nil
}

// lowerExpr evaluates e for its value, appending whatever instructions
// are needed to the current block, and returns the operand holding the
// result (§4.9 step 3).
func (b *Builder) lowerExpr(e ast.Expression) Operand {
	if e == nil {
		return Operand{}
	}
	result := e.Accept(b)
	op, _ := result.(Operand)
	return op
}

func (b *Builder) VisitConst(e *ast.Const) any {
	op := Operand{Type: e.ExprType()}
	switch e.Kind {
	case ast.ConstInt:
		op.Kind = OperandLitInt
		op.IntVal = e.Int
	case ast.ConstFloat:
		op.Kind = OperandLitFloat
		op.FloatVal = e.Float
	case ast.ConstString:
		op.Kind = OperandLitString
		op.StrVal = e.Str
	}
	return b.emit(Instruction{Op: OpConst, Args: []Operand{op}}, e.ExprType())
}

func (b *Builder) VisitNameRef(e *ast.NameRef) any {
	if l := b.localFor(e); l != nil {
		if !l.Referenced {
			return localOperand(l)
		}
		return b.emit(Instruction{Op: OpLoadLocal, Args: []Operand{localOperand(l)}}, e.ExprType())
	}
	sym := Operand{Kind: OperandSymbol, Symbol: e.Name, Type: e.ExprType()}
	mem := Operand{Kind: OperandMemory, Type: e.ExprType(), Base: &sym}
	return b.emit(Instruction{Op: OpLoadMem, Args: []Operand{mem}}, e.ExprType())
}

func (b *Builder) localFor(e *ast.NameRef) *Local {
	sym, ok := e.Symbol.(*scope.Symbol)
	if !ok {
		return nil
	}
	decl, ok := sym.Node.(*ast.ValueDeclaration)
	if !ok {
		return nil
	}
	return b.localsByDecl[decl]
}

func (b *Builder) VisitUnary(e *ast.Unary) any {
	switch e.Op {
	case ast.URef:
		return b.lowerAddressOf(e.Argument, e.ExprType())
	case ast.UDeref:
		addr := b.lowerExpr(e.Argument)
		mem := Operand{Kind: OperandMemory, Type: e.ExprType(), Base: &addr}
		return b.emit(Instruction{Op: OpLoadMem, Args: []Operand{mem}}, e.ExprType())
	case ast.UPreInc, ast.UPreDec, ast.UPostInc, ast.UPostDec:
		return b.lowerIncDec(e)
	default:
		arg := b.lowerExpr(e.Argument)
		return b.emit(Instruction{Op: OpUnary, UnaryOp: e.Op, Args: []Operand{arg}}, e.ExprType())
	}
}

// lowerAddressOf materializes the address of an lvalue expression into
// a register (§4.9 "ADDR materializes a MEMORY operand's address").
func (b *Builder) lowerAddressOf(e ast.Expression, t *types.TypeRef) Operand {
	lv := b.lowerLValue(e)
	if lv.local != nil {
		return b.emit(Instruction{Op: OpAddr, Args: []Operand{localOperand(lv.local)}}, t)
	}
	return b.emit(Instruction{Op: OpAddr, Args: []Operand{lv.memory}}, t)
}

// lowerIncDec implements the four inc/dec unary forms as an explicit
// read-modify-write sequence: load, add/sub #1, store, and for the
// postfix forms, yield the value read before the store.
func (b *Builder) lowerIncDec(e *ast.Unary) Operand {
	lv := b.lowerLValue(e.Argument)
	old := b.loadLValue(lv, e.ExprType())
	one := Operand{Kind: OperandLitInt, IntVal: 1, Type: e.ExprType()}
	op := ast.BAdd
	if e.Op == ast.UPreDec || e.Op == ast.UPostDec {
		op = ast.BSub
	}
	updated := b.emit(Instruction{Op: OpBinary, BinaryOp: op, Args: []Operand{old, one}}, e.ExprType())
	b.storeLValue(lv, updated)
	if e.Op == ast.UPreInc || e.Op == ast.UPreDec {
		return updated
	}
	return old
}

func (b *Builder) VisitBinary(e *ast.Binary) any {
	switch {
	case e.Op == ast.BAssign:
		lv := b.lowerLValue(e.Left)
		val := b.lowerExpr(e.Right)
		b.storeLValue(lv, val)
		return val
	case e.Op.IsAssignment():
		return b.lowerCompoundAssign(e)
	case e.Op == ast.BAndAnd || e.Op == ast.BOrOr:
		return b.lowerShortCircuit(e)
	case e.Op == ast.BComma:
		b.lowerExpr(e.Left)
		return b.lowerExpr(e.Right)
	case e.Op == ast.BArrayAccess:
		lv := b.lowerLValue(e)
		return b.loadLValue(lv, e.ExprType())
	default:
		left := b.lowerExpr(e.Left)
		right := b.lowerExpr(e.Right)
		return b.emit(Instruction{Op: OpBinary, BinaryOp: e.Op, Args: []Operand{left, right}}, e.ExprType())
	}
}

// lowerCompoundAssign implements `lhs OP= rhs` as an explicit
// read-modify-write: the semantic analyzer does not desugar these into
// a plain assignment wrapping a binary op, so the IR builder must.
func (b *Builder) lowerCompoundAssign(e *ast.Binary) Operand {
	underlying, ok := compoundAssignToBinary[e.Op]
	if !ok {
		return b.emit(Instruction{Op: OpBad}, e.ExprType())
	}
	lv := b.lowerLValue(e.Left)
	old := b.loadLValue(lv, e.ExprType())
	rhs := b.lowerExpr(e.Right)
	updated := b.emit(Instruction{Op: OpBinary, BinaryOp: underlying, Args: []Operand{old, rhs}}, e.ExprType())
	b.storeLValue(lv, updated)
	return updated
}

var compoundAssignToBinary = map[ast.BinaryOp]ast.BinaryOp{
	ast.BAsgAdd: ast.BAdd,
	ast.BAsgSub: ast.BSub,
	ast.BAsgMul: ast.BMul,
	ast.BAsgDiv: ast.BDiv,
	ast.BAsgMod: ast.BMod,
	ast.BAsgShl: ast.BShl,
	ast.BAsgShr: ast.BShr,
	ast.BAsgAnd: ast.BAnd,
	ast.BAsgOr:  ast.BOr,
	ast.BAsgXor: ast.BXor,
}

// lowerShortCircuit lowers `&&`/`||` to a branch that skips evaluating
// the right operand when the left one already decides the result,
// merging into a phi-free result local (no SSA phi node shape exists in
// this IR, so the merge goes through a synthesized local instead).
func (b *Builder) lowerShortCircuit(e *ast.Binary) Operand {
	resultLocal := &Local{Index: len(b.fn.Locals), Name: "$tmp", Type: e.ExprType()}
	b.fn.Locals = append(b.fn.Locals, resultLocal)

	left := b.lowerExpr(e.Left)
	b.emit(Instruction{Op: OpStoreLocal, Args: []Operand{localOperand(resultLocal), left}}, nil)

	rhsBlock := b.newBlock("sc.rhs")
	doneBlock := b.newBlock("sc.done")

	if e.Op == ast.BAndAnd {
		b.terminate(Instruction{Op: OpCBranch, Args: []Operand{left}, Targets: []BlockID{rhsBlock.ID, doneBlock.ID}})
	} else {
		b.terminate(Instruction{Op: OpCBranch, Args: []Operand{left}, Targets: []BlockID{doneBlock.ID, rhsBlock.ID}})
	}

	b.switchTo(rhsBlock)
	right := b.lowerExpr(e.Right)
	b.emit(Instruction{Op: OpStoreLocal, Args: []Operand{localOperand(resultLocal), right}}, nil)
	b.branchToIfOpen(doneBlock)

	b.switchTo(doneBlock)
	return b.emit(Instruction{Op: OpLoadLocal, Args: []Operand{localOperand(resultLocal)}}, e.ExprType())
}

func (b *Builder) VisitTernary(e *ast.Ternary) any {
	resultLocal := &Local{Index: len(b.fn.Locals), Name: "$tmp", Type: e.ExprType()}
	b.fn.Locals = append(b.fn.Locals, resultLocal)

	thenBlock := b.newBlock("ternary.then")
	elseBlock := b.newBlock("ternary.else")
	doneBlock := b.newBlock("ternary.done")

	cond := b.lowerExpr(e.Condition)
	b.terminate(Instruction{Op: OpCBranch, Args: []Operand{cond}, Targets: []BlockID{thenBlock.ID, elseBlock.ID}})

	b.switchTo(thenBlock)
	thenVal := b.lowerExpr(e.IfTrue)
	b.emit(Instruction{Op: OpStoreLocal, Args: []Operand{localOperand(resultLocal), thenVal}}, nil)
	b.branchToIfOpen(doneBlock)

	b.switchTo(elseBlock)
	elseVal := b.lowerExpr(e.IfFalse)
	b.emit(Instruction{Op: OpStoreLocal, Args: []Operand{localOperand(resultLocal), elseVal}}, nil)
	b.branchToIfOpen(doneBlock)

	b.switchTo(doneBlock)
	return b.emit(Instruction{Op: OpLoadLocal, Args: []Operand{localOperand(resultLocal)}}, e.ExprType())
}

func (b *Builder) VisitCast(e *ast.Cast) any {
	arg := b.lowerExpr(e.Argument)
	return b.emit(Instruction{Op: OpCast, Args: []Operand{arg}}, e.ExprType())
}

func (b *Builder) VisitCall(e *ast.Call) any {
	args := make([]Operand, 0, len(e.Arguments)+1)
	callee := b.lowerExpr(e.Callee)
	args = append(args, callee)
	for _, a := range e.Arguments {
		args = append(args, b.lowerExpr(a))
	}
	if types.IsVoid(e.ExprType()) {
		b.emit(Instruction{Op: OpCall, Args: args}, nil)
		return Operand{}
	}
	return b.emit(Instruction{Op: OpCall, Args: args}, e.ExprType())
}

func (b *Builder) VisitFieldAccess(e *ast.FieldAccess) any {
	lv := b.lowerLValue(e)
	return b.loadLValue(lv, e.ExprType())
}

func (b *Builder) VisitCompoundLiteral(e *ast.CompoundLiteral) any {
	local := &Local{Index: len(b.fn.Locals), Name: "$compound", Type: e.ExprType(), Referenced: true}
	b.fn.Locals = append(b.fn.Locals, local)
	base := b.emit(Instruction{Op: OpAddr, Args: []Operand{localOperand(local)}}, types.Pointed(e.ExprType(), 0))
	b.storeInitializer(base, e.Initializer)
	return b.emit(Instruction{Op: OpLoadLocal, Args: []Operand{localOperand(local)}}, e.ExprType())
}

// storeInitializer writes each flattened initializer leaf (already
// offset-indexed by package initializer's finalizer) to base+Offset.
func (b *Builder) storeInitializer(base Operand, init *ast.Initializer) {
	if init == nil {
		return
	}
	switch init.Kind {
	case ast.InitializerExpression:
		val := b.lowerExpr(init.Expression)
		mem := Operand{Kind: OperandMemory, Type: init.SlotType, Base: &base, Offset: init.Offset}
		b.emit(Instruction{Op: OpStoreMem, Args: []Operand{mem, val}}, nil)
	case ast.InitializerList:
		for _, c := range init.Children {
			b.storeInitializer(base, c)
		}
	}
}

// VisitBlockExpr lowers a GNU statement expression `({ ...; expr; })`:
// every statement but the last lowers as an ordinary statement, and the
// last one, if it is a bare expression statement, supplies the block
// expression's value.
func (b *Builder) VisitBlockExpr(e *ast.BlockExpr) any {
	stmts := e.Body.Statements
	last := len(stmts) - 1
	for i, s := range stmts {
		if i == last {
			if exprStmt, ok := s.(*ast.ExprStmt); ok {
				return b.lowerExpr(exprStmt.Expression)
			}
		}
		b.lowerStmt(s)
	}
	return Operand{Type: e.ExprType()}
}

func (b *Builder) VisitLabelRef(e *ast.LabelRef) any {
	target := b.labelBlockFor(e.Label)
	return Operand{Kind: OperandBlock, Type: e.ExprType(), Block: target.ID}
}

func (b *Builder) VisitVaArg(e *ast.VaArg) any {
	vaList := b.lowerExpr(e.VaList)
	return b.emit(Instruction{Op: OpCall, Symbol: "__builtin_va_arg", Args: []Operand{vaList}}, e.ExprType())
}

func (b *Builder) VisitParen(e *ast.Paren) any {
	return b.lowerExpr(e.Inner)
}

func (b *Builder) VisitBitExtend(e *ast.BitExtend) any {
	arg := b.lowerExpr(e.Argument)
	return b.emit(Instruction{Op: OpCast, Args: []Operand{arg}}, e.ExprType())
}

func (b *Builder) VisitErrorExpr(e *ast.ErrorExpr) any {
	return b.emit(Instruction{Op: OpBad}, e.ExprType())
}

// lowerLValue resolves e to the address form an assignment/inc-dec/
// address-of operation needs, without yet emitting the load.
func (b *Builder) lowerLValue(e ast.Expression) lvalue {
	switch n := e.(type) {
	case *ast.Paren:
		return b.lowerLValue(n.Inner)
	case *ast.NameRef:
		if l := b.localFor(n); l != nil {
			return lvalue{local: l}
		}
		sym := Operand{Kind: OperandSymbol, Symbol: n.Name, Type: n.ExprType()}
		return lvalue{memory: Operand{Kind: OperandMemory, Type: n.ExprType(), Base: &sym}}
	case *ast.Unary:
		if n.Op == ast.UDeref {
			addr := b.lowerExpr(n.Argument)
			return lvalue{memory: Operand{Kind: OperandMemory, Type: n.ExprType(), Base: &addr}}
		}
	case *ast.Binary:
		if n.Op == ast.BArrayAccess {
			base := b.lowerExpr(n.Left)
			index := b.lowerExpr(n.Right)
			elemSize := types.ComputeTypeSize(n.ExprType())
			sizeOp := Operand{Kind: OperandLitInt, IntVal: int64(elemSize), Type: index.Type}
			scaled := b.emit(Instruction{Op: OpBinary, BinaryOp: ast.BMul, Args: []Operand{index, sizeOp}}, index.Type)
			addr := b.emit(Instruction{Op: OpBinary, BinaryOp: ast.BAdd, Args: []Operand{base, scaled}}, base.Type)
			return lvalue{memory: Operand{Kind: OperandMemory, Type: n.ExprType(), Base: &addr}}
		}
	case *ast.FieldAccess:
		var base Operand
		if n.Op == ast.FieldArrow {
			base = b.lowerExpr(n.Receiver)
		} else {
			base = b.lowerAddressOf(n.Receiver, types.Pointed(n.Receiver.ExprType(), 0))
		}
		return lvalue{memory: Operand{Kind: OperandMemory, Type: n.ExprType(), Base: &base, Offset: n.Member.Offset}}
	}
	return lvalue{memory: Operand{Kind: OperandMemory, Type: e.ExprType()}}
}

func (b *Builder) loadLValue(lv lvalue, t *types.TypeRef) Operand {
	if lv.local != nil {
		if !lv.local.Referenced {
			return localOperand(lv.local)
		}
		return b.emit(Instruction{Op: OpLoadLocal, Args: []Operand{localOperand(lv.local)}}, t)
	}
	return b.emit(Instruction{Op: OpLoadMem, Args: []Operand{lv.memory}}, t)
}

func (b *Builder) storeLValue(lv lvalue, val Operand) {
	if lv.local != nil {
		b.emit(Instruction{Op: OpStoreLocal, Args: []Operand{localOperand(lv.local), val}}, nil)
		return
	}
	b.emit(Instruction{Op: OpStoreMem, Args: []Operand{lv.memory, val}}, nil)
}
