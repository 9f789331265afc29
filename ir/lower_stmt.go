package ir

import (
	"cfront/ast"
	"cfront/types"
)

// lowerStmt lowers one statement, appending whatever instructions and
// blocks it needs to the function under construction (§4.9 step 2).
func (b *Builder) lowerStmt(s ast.Statement) {
	if s == nil {
		return
	}
	s.Accept(b)
}

func (b *Builder) VisitBlock(s *ast.Block) any {
	for _, st := range s.Statements {
		b.lowerStmt(st)
	}
	return nil
}

func (b *Builder) VisitExprStmt(s *ast.ExprStmt) any {
	b.lowerExpr(s.Expression)
	return nil
}

func (b *Builder) VisitIf(s *ast.If) any {
	cond := b.lowerExpr(s.Condition)

	thenBlock := b.newBlock("if.then")
	var elseBlock *BasicBlock
	mergeBlock := b.newBlock("if.merge")

	if s.ElseBranch != nil {
		elseBlock = b.newBlock("if.else")
		b.terminate(Instruction{Op: OpCBranch, Args: []Operand{cond}, Targets: []BlockID{thenBlock.ID, elseBlock.ID}})
	} else {
		b.terminate(Instruction{Op: OpCBranch, Args: []Operand{cond}, Targets: []BlockID{thenBlock.ID, mergeBlock.ID}})
	}

	b.switchTo(thenBlock)
	b.lowerStmt(s.ThenBranch)
	b.branchToIfOpen(mergeBlock)

	if elseBlock != nil {
		b.switchTo(elseBlock)
		b.lowerStmt(s.ElseBranch)
		b.branchToIfOpen(mergeBlock)
	}

	b.switchTo(mergeBlock)
	return nil
}

// VisitLoop lowers while/do-while/for to a header/body/exit shape, with
// `for`'s Init lowered once before the header and Step lowered at the
// end of each body iteration before re-testing the header.
func (b *Builder) VisitLoop(s *ast.Loop) any {
	if s.Init != nil {
		b.lowerStmt(s.Init)
	}

	headerBlock := b.newBlock("loop.header")
	bodyBlock := b.newBlock("loop.body")
	exitBlock := b.newBlock("loop.exit")

	b.breakStack = append(b.breakStack, exitBlock.ID)
	defer func() { b.breakStack = b.breakStack[:len(b.breakStack)-1] }()

	if s.Kind == ast.LoopDoWhile {
		b.branchToIfOpen(bodyBlock)

		b.continueStack = append(b.continueStack, headerBlock.ID)
		b.switchTo(bodyBlock)
		b.lowerStmt(s.Body)
		b.branchToIfOpen(headerBlock)
		b.continueStack = b.continueStack[:len(b.continueStack)-1]

		b.switchTo(headerBlock)
		cond := b.lowerExpr(s.Condition)
		b.terminate(Instruction{Op: OpCBranch, Args: []Operand{cond}, Targets: []BlockID{bodyBlock.ID, exitBlock.ID}})

		b.switchTo(exitBlock)
		return nil
	}

	continueTarget := headerBlock.ID
	var stepBlock *BasicBlock
	if s.Kind == ast.LoopFor && s.Step != nil {
		stepBlock = b.newBlock("loop.step")
		continueTarget = stepBlock.ID
	}

	b.branchToIfOpen(headerBlock)

	b.switchTo(headerBlock)
	if s.Condition != nil {
		cond := b.lowerExpr(s.Condition)
		b.terminate(Instruction{Op: OpCBranch, Args: []Operand{cond}, Targets: []BlockID{bodyBlock.ID, exitBlock.ID}})
	} else {
		b.branchToIfOpen(bodyBlock)
	}

	b.continueStack = append(b.continueStack, continueTarget)
	b.switchTo(bodyBlock)
	b.lowerStmt(s.Body)
	if stepBlock != nil {
		b.branchToIfOpen(stepBlock)
		b.switchTo(stepBlock)
		b.lowerExpr(s.Step)
	}
	b.branchToIfOpen(headerBlock)
	b.continueStack = b.continueStack[:len(b.continueStack)-1]

	b.switchTo(exitBlock)
	return nil
}

func (b *Builder) VisitSwitch(s *ast.Switch) any {
	cond := b.lowerExpr(s.Condition)

	dispatchBlock := b.cur
	instrIndex := len(dispatchBlock.Instructions)
	dispatchBlock.Instructions = append(dispatchBlock.Instructions, Instruction{Op: OpTBranch, Args: []Operand{cond}})
	dispatchBlock.terminated = true

	afterSwitch := b.newBlock("switch.after")
	bodyBlock := b.newBlock("switch.body")

	ctx := &switchContextState{dispatchBlock: dispatchBlock, instrIndex: instrIndex}
	b.switchStack = append(b.switchStack, ctx)
	b.breakStack = append(b.breakStack, afterSwitch.ID)

	b.switchTo(bodyBlock)
	b.lowerStmt(s.Body)
	b.branchToIfOpen(afterSwitch)

	b.breakStack = b.breakStack[:len(b.breakStack)-1]
	b.switchStack = b.switchStack[:len(b.switchStack)-1]

	fallback := afterSwitch.ID
	if ctx.hasDefault {
		fallback = ctx.defaultTarget
	}
	dispatchBlock.Instructions[instrIndex].Cases = ctx.cases
	dispatchBlock.Instructions[instrIndex].Targets = []BlockID{fallback}

	b.switchTo(afterSwitch)
	return nil
}

func (b *Builder) VisitJump(s *ast.Jump) any {
	switch s.Kind {
	case ast.JumpReturn:
		if s.ReturnValue != nil {
			val := b.lowerExpr(s.ReturnValue)
			if b.returnLocal != nil {
				b.emit(Instruction{Op: OpStoreLocal, Args: []Operand{localOperand(b.returnLocal), val}}, nil)
			}
		}
		b.branchToIfOpen(b.exitBlock)
	case ast.JumpBreak:
		if n := len(b.breakStack); n > 0 {
			b.terminate(Instruction{Op: OpBranch, Targets: []BlockID{b.breakStack[n-1]}})
		}
	case ast.JumpContinue:
		if n := len(b.continueStack); n > 0 {
			b.terminate(Instruction{Op: OpBranch, Targets: []BlockID{b.continueStack[n-1]}})
		}
	case ast.JumpGotoLabel:
		target := b.labelBlockFor(s.Label)
		b.terminate(Instruction{Op: OpBranch, Targets: []BlockID{target.ID}})
	case ast.JumpGotoExpr:
		target := b.lowerExpr(s.Target)
		b.terminate(Instruction{Op: OpBranch, Args: []Operand{target}})
	}
	return nil
}

// labelBlockFor returns the block a named label lowers to, creating it
// on first reference (whether that reference is the label definition
// itself or a goto that appears lexically before it).
func (b *Builder) labelBlockFor(name string) *BasicBlock {
	if bb, ok := b.labelBlocks[name]; ok {
		return bb
	}
	bb := b.newBlock("label." + name)
	b.labelBlocks[name] = bb
	return bb
}

func (b *Builder) VisitLabeled(s *ast.Labeled) any {
	switch s.Kind {
	case ast.LabelNamed:
		target := b.labelBlockFor(s.Name)
		b.branchToIfOpen(target)
		b.switchTo(target)
	case ast.LabelCase:
		target := b.newBlock("case")
		b.branchToIfOpen(target)
		b.switchTo(target)
		if n := len(b.switchStack); n > 0 {
			ctx := b.switchStack[n-1]
			ctx.cases = append(ctx.cases, SwitchCase{Value: s.CaseValue, Target: target.ID})
		}
	case ast.LabelDefault:
		target := b.newBlock("default")
		b.branchToIfOpen(target)
		b.switchTo(target)
		if n := len(b.switchStack); n > 0 {
			ctx := b.switchStack[n-1]
			ctx.hasDefault = true
			ctx.defaultTarget = target.ID
		}
	}
	b.lowerStmt(s.Body)
	return nil
}

func (b *Builder) VisitDeclStmt(s *ast.DeclStmt) any {
	for d := s.Declaration; d != nil; d = d.Next {
		if d.Initializer == nil {
			continue
		}
		local := b.localsByDecl[d]
		if local == nil {
			continue
		}
		if !local.Referenced && d.Initializer.Kind == ast.InitializerExpression {
			val := b.lowerExpr(d.Initializer.Expression)
			b.emit(Instruction{Op: OpStoreLocal, Args: []Operand{localOperand(local), val}}, nil)
			continue
		}
		base := b.emit(Instruction{Op: OpAddr, Args: []Operand{localOperand(local)}}, types.Pointed(local.Type, 0))
		b.storeInitializer(base, d.Initializer)
	}
	return nil
}

func (b *Builder) VisitEmpty(s *ast.Empty) any { return nil }

func (b *Builder) VisitErrorStmt(s *ast.ErrorStmt) any {
	b.emit(Instruction{Op: OpBad}, nil)
	return nil
}
