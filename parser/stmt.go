package parser

import (
	"cfront/ast"
	"cfront/consteval"
	"cfront/diag"
	"cfront/scope"
	"cfront/sema"
	"cfront/token"
	"cfront/types"
)

// parseBlock parses a `{ ... }` compound statement in a fresh block
// scope (§4.4 scope chain, §4.5 statement grammar).
func (p *Parser) parseBlock() *ast.Block {
	start := p.advance() // {
	closeScope := p.openScope(scope.BlockScope)
	blockScope := p.curScope
	defer closeScope()

	var stmts []ast.Statement
	for !p.checkType(token.RBRACE) && !p.isFinished() {
		stmts = append(stmts, p.parseStatement())
	}
	p.consume(token.RBRACE, diag.ExpectedToken, token.RBRACE)
	return ast.NewBlock(p.coords(start), stmts, blockScope)
}

func isDeclarationStart(tok token.Token) bool {
	return isStorageClassKeyword(tok.Code) || isQualifierKeyword(tok.Code) ||
		token.IsTypeSpecifierKeyword(tok.Code) || tok.Code == token.TYPE_NAME ||
		tok.Code == token.KW_ATTRIBUTE
}

// parseStatement dispatches to one production per statement kind
// (§4.5 statement grammar), recovering to the next synchronizing
// token on a parse error so one bad statement never derails the rest
// of the function body.
func (p *Parser) parseStatement() (result ast.Statement) {
	defer func() {
		if r := recover(); r != nil {
			p.synchronize()
			result = ast.NewErrorStmt(p.peek().Coords)
		}
	}()

	switch {
	case p.checkType(token.LBRACE):
		return p.parseBlock()

	case p.isMatch(token.KW_IF):
		return p.parseIf()

	case p.isMatch(token.KW_SWITCH):
		return p.parseSwitch()

	case p.isMatch(token.KW_WHILE):
		return p.parseWhile()

	case p.isMatch(token.KW_DO):
		return p.parseDoWhile()

	case p.isMatch(token.KW_FOR):
		return p.parseFor()

	case p.isMatch(token.KW_GOTO):
		return p.parseGoto()

	case p.isMatch(token.KW_CONTINUE):
		start := p.previous()
		if !p.inLoop {
			p.engine.Report(diag.ContinueOutsideLoop, p.coords(start))
		}
		p.consume(token.SEMI, diag.ExpectedSemicolon)
		return ast.NewJump(p.coords(start), ast.JumpContinue)

	case p.isMatch(token.KW_BREAK):
		start := p.previous()
		if !p.inLoop && !p.inSwitch {
			p.engine.Report(diag.BreakOutsideLoopOrSwitch, p.coords(start))
		}
		p.consume(token.SEMI, diag.ExpectedSemicolon)
		return ast.NewJump(p.coords(start), ast.JumpBreak)

	case p.isMatch(token.KW_RETURN):
		return p.parseReturn()

	case p.isMatch(token.KW_CASE):
		return p.parseCaseLabel()

	case p.isMatch(token.KW_DEFAULT):
		return p.parseDefaultLabel()

	case p.checkType(token.SEMI):
		start := p.advance()
		return ast.NewEmpty(p.coords(start))

	case p.checkType(token.IDENTIFIER) && p.peekAt(1).Code == token.COLON:
		return p.parseNamedLabel()

	case isDeclarationStart(p.peekReclassified()):
		return p.parseLocalDeclarationStatement()

	default:
		start := p.peek()
		expr := p.parseExpression()
		p.consume(token.SEMI, diag.ExpectedSemicolon)
		return ast.NewExprStmt(p.coords(start), expr)
	}
}

func (p *Parser) parseIf() ast.Statement {
	start := p.previous()
	p.consume(token.LPAREN, diag.ExpectedToken, token.LPAREN)
	cond := p.parseExpression()
	p.consume(token.RPAREN, diag.ExpectedToken, token.RPAREN)
	thenBranch := p.parseStatement()
	var elseBranch ast.Statement
	if p.isMatch(token.KW_ELSE) {
		elseBranch = p.parseStatement()
	}
	return ast.NewIf(p.coords(start), cond, thenBranch, elseBranch)
}

func (p *Parser) parseSwitch() ast.Statement {
	start := p.previous()
	p.consume(token.LPAREN, diag.ExpectedToken, token.LPAREN)
	cond := p.parseExpression()
	p.consume(token.RPAREN, diag.ExpectedToken, token.RPAREN)
	sema.CheckSwitchArgument(p.engine, p.coords(start), cond.ExprType())

	builder := sema.NewSwitchBuilder(p.engine)
	p.switchStack = append(p.switchStack, builder)
	prevInSwitch := p.inSwitch
	p.inSwitch = true

	body := p.parseStatement()

	p.inSwitch = prevInSwitch
	p.switchStack = p.switchStack[:len(p.switchStack)-1]
	cases, hasDefault := builder.Finish()
	return ast.NewSwitch(p.coords(start), cond, body, cases, hasDefault)
}

func (p *Parser) parseWhile() ast.Statement {
	start := p.previous()
	p.consume(token.LPAREN, diag.ExpectedToken, token.LPAREN)
	cond := p.parseExpression()
	p.consume(token.RPAREN, diag.ExpectedToken, token.RPAREN)

	prevInLoop := p.inLoop
	p.inLoop = true
	body := p.parseStatement()
	p.inLoop = prevInLoop

	return ast.NewLoop(p.coords(start), ast.LoopWhile, nil, cond, nil, body)
}

func (p *Parser) parseDoWhile() ast.Statement {
	start := p.previous()
	prevInLoop := p.inLoop
	p.inLoop = true
	body := p.parseStatement()
	p.inLoop = prevInLoop

	p.consume(token.KW_WHILE, diag.ExpectedToken, token.KW_WHILE)
	p.consume(token.LPAREN, diag.ExpectedToken, token.LPAREN)
	cond := p.parseExpression()
	p.consume(token.RPAREN, diag.ExpectedToken, token.RPAREN)
	p.consume(token.SEMI, diag.ExpectedSemicolon)

	return ast.NewLoop(p.coords(start), ast.LoopDoWhile, nil, cond, nil, body)
}

func (p *Parser) parseFor() ast.Statement {
	start := p.previous()
	p.consume(token.LPAREN, diag.ExpectedToken, token.LPAREN)

	closeScope := p.openScope(scope.BlockScope)
	defer closeScope()

	var init ast.Statement
	switch {
	case p.checkType(token.SEMI):
		p.advance()
	case isDeclarationStart(p.peekReclassified()):
		init = p.parseLocalDeclarationStatement()
	default:
		initStart := p.peek()
		expr := p.parseExpression()
		p.consume(token.SEMI, diag.ExpectedSemicolon)
		init = ast.NewExprStmt(p.coords(initStart), expr)
	}

	var cond ast.Expression
	if !p.checkType(token.SEMI) {
		cond = p.parseExpression()
	}
	p.consume(token.SEMI, diag.ExpectedSemicolon)

	var step ast.Expression
	if !p.checkType(token.RPAREN) {
		step = p.parseExpression()
	}
	p.consume(token.RPAREN, diag.ExpectedToken, token.RPAREN)

	prevInLoop := p.inLoop
	p.inLoop = true
	body := p.parseStatement()
	p.inLoop = prevInLoop

	return ast.NewLoop(p.coords(start), ast.LoopFor, init, cond, step, body)
}

func (p *Parser) parseGoto() ast.Statement {
	start := p.previous()
	if p.isMatch(token.STAR) {
		target := p.parseExpression()
		p.consume(token.SEMI, diag.ExpectedSemicolon)
		j := ast.NewJump(p.coords(start), ast.JumpGotoExpr)
		j.Target = target
		return j
	}
	name := p.consume(token.IDENTIFIER, diag.ExpectedIdentifier).Text
	p.consume(token.SEMI, diag.ExpectedSemicolon)
	if p.labels != nil {
		p.labels.UseLabel(p.coords(start), name)
	}
	j := ast.NewJump(p.coords(start), ast.JumpGotoLabel)
	j.Label = name
	return j
}

func (p *Parser) parseReturn() ast.Statement {
	start := p.previous()
	var value ast.Expression
	if !p.checkType(token.SEMI) {
		value = p.parseExpression()
	}
	p.consume(token.SEMI, diag.ExpectedSemicolon)
	result := sema.CheckReturn(p.engine, p.coords(start), p.returnType, value)
	j := ast.NewJump(p.coords(start), ast.JumpReturn)
	j.ReturnValue = result
	return j
}

func (p *Parser) parseCaseLabel() ast.Statement {
	start := p.previous()
	expr := p.parseConditional()
	p.consume(token.COLON, diag.ExpectedToken, token.COLON)
	v, ok := consteval.Eval(expr)
	if !ok {
		p.engine.Report(diag.ExpectedIntegerConstantExpression, p.coords(start))
	} else if len(p.switchStack) > 0 {
		p.switchStack[len(p.switchStack)-1].AddCase(p.coords(start), v.Int)
	} else {
		p.engine.Report(diag.SwitchLabelOutsideSwitch, p.coords(start))
	}
	body := p.parseStatement()
	l := ast.NewLabeled(p.coords(start), ast.LabelCase, body)
	if ok {
		l.CaseValue = v.Int
	}
	return l
}

func (p *Parser) parseDefaultLabel() ast.Statement {
	start := p.previous()
	p.consume(token.COLON, diag.ExpectedToken, token.COLON)
	if len(p.switchStack) > 0 {
		p.switchStack[len(p.switchStack)-1].AddDefault(p.coords(start))
	} else {
		p.engine.Report(diag.SwitchLabelOutsideSwitch, p.coords(start))
	}
	body := p.parseStatement()
	return ast.NewLabeled(p.coords(start), ast.LabelDefault, body)
}

func (p *Parser) parseNamedLabel() ast.Statement {
	start := p.advance() // identifier
	p.advance()           // :
	if p.labels != nil {
		p.labels.DefineLabel(p.engine, p.coords(start), start.Text)
	}
	body := p.parseStatement()
	l := ast.NewLabeled(p.coords(start), ast.LabelNamed, body)
	l.Name = start.Text
	return l
}

// parseLocalDeclarationStatement parses one block-scope declaration
// (§4.5 "Declaration statement"), returning the first declarator as
// the DeclStmt and threading the rest through ValueDeclaration.Next so
// `int a, b, c;` still produces a single statement node.
func (p *Parser) parseLocalDeclarationStatement() ast.Statement {
	start := p.peek()
	specs := p.parseDeclarationSpecifiers()
	base := types.Value(specs.ResolveBaseType(), specs.Quals)

	var head, tail *ast.ValueDeclaration
	index := 0
	for {
		name, t := p.parseDeclaratorFor(base)
		if name == "" {
			p.engine.Report(diag.DeclaresNothing, p.coords(start))
			break
		}
		decl := ast.NewValueDeclaration(p.coords(start), ast.DeclVariable, t, name, index, specs.Quals)
		if p.isMatch(token.ASSIGN) {
			decl.Initializer = p.parseInitializer(t)
		}
		if specs.IsTypedef {
			p.curScope.DeclareSymbol(scope.TypedefSymbol, name, t, func(a, b any) bool {
				at, aok := a.(*types.TypeRef)
				bt, bok := b.(*types.TypeRef)
				return aok && bok && types.TypesEqual(at, bt)
			})
		} else {
			p.curScope.DeclareSymbol(scope.ValueSymbol, name, decl, nil)
		}
		if head == nil {
			head = decl
		} else {
			tail.Next = decl
		}
		tail = decl
		index++
		if !p.isMatch(token.COMMA) {
			break
		}
	}
	p.consume(token.SEMI, diag.ExpectedSemicolon)
	return ast.NewDeclStmt(p.coords(start), head)
}
