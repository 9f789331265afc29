package ir

import (
	"cfront/ast"
	"cfront/types"
)

// switchContextState accumulates the case-value/block mapping a switch's
// body discovers as it is walked, so the dispatch TBRANCH can be
// patched once the whole body is known (§4.9 "switch: emit TBRANCH with
// a switch table").
type switchContextState struct {
	dispatchBlock *BasicBlock
	instrIndex    int
	cases         []SwitchCase
	defaultTarget BlockID
	hasDefault    bool
}

// Builder lowers one function definition's AST into a CFG (§4.9).
// Grounded on the teacher's tree-walk interpreter idiom (interpreter/
// interpreter.go's Visitor-dispatched Eval loop over ast.Stmt/ast.Expr):
// this is the same kind of pass, with each Visit method appending
// instructions to the block currently being built instead of executing
// side effects directly.
type Builder struct {
	fn  *Function
	cur *BasicBlock

	nextVReg  int
	nextBlock BlockID

	localsByDecl map[*ast.ValueDeclaration]*Local

	// labelBlocks resolves a named label to its block, creating it lazily
	// on first reference so a goto lexically before its target label
	// still resolves to the same block the label definition later reuses.
	labelBlocks map[string]*BasicBlock

	// breakStack is pushed by both loops and switches (whichever is
	// innermost lexically supplies a `break` target); continueStack is
	// pushed only by loops, since `continue` passes through an enclosing
	// switch to the nearest enclosing loop.
	breakStack    []BlockID
	continueStack []BlockID
	switchStack   []*switchContextState

	returnType  *types.TypeRef
	returnLocal *Local
	exitBlock   *BasicBlock
}

// BuildFunction lowers a *ast.FunctionDeclaration with a body into an
// *ir.Function, with Predecessors/Successors wired but
// StrictDominator/Frontier/Dominatees left at their zero value: package
// dominance depends on package ir, not the other way around, so
// dominance.BuildFunction is the entry point that lowers a function and
// then fills in its dominator tree in one call. Callers must not invoke
// this on a prototype (Body == nil).
func BuildFunction(fn *ast.FunctionDeclaration) *Function {
	locals, byDecl := collectLocals(fn)

	b := &Builder{
		fn: &Function{
			Name:       fn.Name,
			ReturnType: fn.Type.Return,
			Locals:     locals,
			VaAreaSize: fn.VaAreaSize,
		},
		localsByDecl: byDecl,
		labelBlocks:  make(map[string]*BasicBlock),
	}

	entry := b.newBlock("entry")
	b.fn.Entry = entry.ID
	b.cur = entry

	if !types.IsVoid(fn.Type.Return) {
		b.returnLocal = &Local{Index: len(b.fn.Locals), Name: "$retval", Type: fn.Type.Return}
		b.fn.Locals = append(b.fn.Locals, b.returnLocal)
	}
	b.returnType = fn.Type.Return
	b.exitBlock = b.newBlockDetached("exit")

	b.lowerStmt(fn.Body)
	b.branchToIfOpen(b.exitBlock)

	b.fn.Blocks = append(b.fn.Blocks, b.exitBlock)
	b.cur = b.exitBlock
	if b.returnLocal != nil {
		v := b.emit(Instruction{Op: OpLoadLocal, Type: b.returnType, Args: []Operand{localOperand(b.returnLocal)}}, b.returnType)
		b.terminate(Instruction{Op: OpReturn, Type: b.returnType, Args: []Operand{v}})
	} else {
		b.terminate(Instruction{Op: OpReturn})
	}

	wirePredecessors(b.fn)
	return b.fn
}

// newBlock allocates and appends a fresh, empty block.
func (b *Builder) newBlock(name string) *BasicBlock {
	bb := b.newBlockDetached(name)
	b.fn.Blocks = append(b.fn.Blocks, bb)
	return bb
}

// newBlockDetached allocates a block without appending it to the
// function yet, for the function-unique exit block created up front.
func (b *Builder) newBlockDetached(name string) *BasicBlock {
	id := b.nextBlock
	b.nextBlock++
	return &BasicBlock{ID: id, Name: name}
}

func (b *Builder) newVReg(t *types.TypeRef) Operand {
	v := b.nextVReg
	b.nextVReg++
	return Operand{Kind: OperandVReg, Type: t, VReg: v}
}

func localOperand(l *Local) Operand {
	return Operand{Kind: OperandLocal, Type: l.Type, Local: l.Index}
}

// emit appends instr to the current block, assigning it a fresh
// result register of type t (t == nil means the instruction defines
// nothing), and returns the result operand.
func (b *Builder) emit(instr Instruction, t *types.TypeRef) Operand {
	if t != nil {
		instr.Result = b.newVReg(t)
	}
	b.cur.Instructions = append(b.cur.Instructions, instr)
	return instr.Result
}

// terminate appends a control-transfer instruction and marks the
// current block as terminated; it is a no-op if the block is already
// terminated (unreachable code after an earlier return/goto/break).
func (b *Builder) terminate(instr Instruction) {
	if b.cur.terminated {
		return
	}
	b.cur.Instructions = append(b.cur.Instructions, instr)
	b.cur.terminated = true
}

// branchToIfOpen emits an unconditional branch to target from the
// current block if the current block has not already terminated
// (e.g. via return/goto), implementing fallthrough between structured
// control-flow regions.
func (b *Builder) branchToIfOpen(target *BasicBlock) {
	b.terminate(Instruction{Op: OpBranch, Targets: []BlockID{target.ID}})
}

// switchTo moves the builder's insertion point to block, which must
// already be part of the function (appended by newBlock).
func (b *Builder) switchTo(block *BasicBlock) {
	b.cur = block
}

// wirePredecessors fills Predecessors/Successors by scanning every
// block's terminator (§4.9 "Predecessor and successor lists are filled
// by scanning terminators").
func wirePredecessors(fn *Function) {
	for _, bb := range fn.Blocks {
		if len(bb.Instructions) == 0 {
			continue
		}
		last := bb.Instructions[len(bb.Instructions)-1]
		switch last.Op {
		case OpBranch, OpCBranch:
			bb.Successors = append(bb.Successors, last.Targets...)
		case OpTBranch:
			for _, c := range last.Cases {
				bb.Successors = append(bb.Successors, c.Target)
			}
			bb.Successors = append(bb.Successors, last.Targets...)
		}
	}
	for _, bb := range fn.Blocks {
		for _, succID := range bb.Successors {
			if succ := fn.Block(succID); succ != nil {
				succ.Predecessors = append(succ.Predecessors, bb.ID)
			}
		}
	}
}
