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

// parseExpression is the comma-operator entry point (§4.5 expression
// grammar, lowest precedence).
func (p *Parser) parseExpression() ast.Expression {
	left := p.parseAssignment()
	for p.checkType(token.COMMA) {
		start := p.peek()
		p.advance()
		right := p.parseAssignment()
		left = sema.TransformBinary(p.engine, p.coords(start), ast.BComma, left, right)
	}
	return left
}

var assignOps = map[token.Code]ast.BinaryOp{
	token.ASSIGN:         ast.BAssign,
	token.PLUS_ASSIGN:    ast.BAsgAdd,
	token.MINUS_ASSIGN:   ast.BAsgSub,
	token.STAR_ASSIGN:    ast.BAsgMul,
	token.SLASH_ASSIGN:   ast.BAsgDiv,
	token.PERCENT_ASSIGN: ast.BAsgMod,
	token.AND_ASSIGN:     ast.BAsgAnd,
	token.OR_ASSIGN:      ast.BAsgOr,
	token.XOR_ASSIGN:     ast.BAsgXor,
	token.SHL_ASSIGN:     ast.BAsgShl,
	token.SHR_ASSIGN:     ast.BAsgShr,
}

func (p *Parser) parseAssignment() ast.Expression {
	left := p.parseConditional()
	if op, ok := assignOps[p.peek().Code]; ok {
		start := p.peek()
		p.advance()
		right := p.parseAssignment()
		return sema.TransformAssign(p.engine, p.coords(start), op, left, right)
	}
	return left
}

func (p *Parser) parseConditional() ast.Expression {
	cond := p.parseLogicalOr()
	if p.isMatch(token.QUESTION) {
		ifTrue := p.parseExpression()
		p.consume(token.COLON, diag.ExpectedToken, token.COLON)
		ifFalse := p.parseConditional()
		return sema.TransformTernary(cond, ifTrue, ifFalse)
	}
	return cond
}

// binaryLevel is one entry of the binary-operator precedence cascade:
// the token codes accepted at this level, their AST op, and the next
// tighter-binding parse function to recurse into.
type binaryLevel struct {
	ops  map[token.Code]ast.BinaryOp
	next func(*Parser) ast.Expression
}

func climb(p *Parser, level binaryLevel) ast.Expression {
	left := level.next(p)
	for {
		op, ok := level.ops[p.peek().Code]
		if !ok {
			return left
		}
		start := p.peek()
		p.advance()
		right := level.next(p)
		left = sema.TransformBinary(p.engine, p.coords(start), op, left, right)
	}
}

func (p *Parser) parseLogicalOr() ast.Expression {
	return climb(p, binaryLevel{map[token.Code]ast.BinaryOp{token.LOGICAL_OR: ast.BOrOr}, (*Parser).parseLogicalAnd})
}
func (p *Parser) parseLogicalAnd() ast.Expression {
	return climb(p, binaryLevel{map[token.Code]ast.BinaryOp{token.LOGICAL_AND: ast.BAndAnd}, (*Parser).parseBitOr})
}
func (p *Parser) parseBitOr() ast.Expression {
	return climb(p, binaryLevel{map[token.Code]ast.BinaryOp{token.PIPE: ast.BOr}, (*Parser).parseBitXor})
}
func (p *Parser) parseBitXor() ast.Expression {
	return climb(p, binaryLevel{map[token.Code]ast.BinaryOp{token.CARET: ast.BXor}, (*Parser).parseBitAnd})
}
func (p *Parser) parseBitAnd() ast.Expression {
	return climb(p, binaryLevel{map[token.Code]ast.BinaryOp{token.AMP: ast.BAnd}, (*Parser).parseEquality})
}
func (p *Parser) parseEquality() ast.Expression {
	return climb(p, binaryLevel{map[token.Code]ast.BinaryOp{token.EQ: ast.BEq, token.NEQ: ast.BNe}, (*Parser).parseRelational})
}
func (p *Parser) parseRelational() ast.Expression {
	return climb(p, binaryLevel{map[token.Code]ast.BinaryOp{
		token.LT: ast.BLt, token.LE: ast.BLe, token.GT: ast.BGt, token.GE: ast.BGe,
	}, (*Parser).parseShift})
}
func (p *Parser) parseShift() ast.Expression {
	return climb(p, binaryLevel{map[token.Code]ast.BinaryOp{token.SHL: ast.BShl, token.SHR: ast.BShr}, (*Parser).parseAdditive})
}
func (p *Parser) parseAdditive() ast.Expression {
	return climb(p, binaryLevel{map[token.Code]ast.BinaryOp{token.PLUS: ast.BAdd, token.MINUS: ast.BSub}, (*Parser).parseMultiplicative})
}
func (p *Parser) parseMultiplicative() ast.Expression {
	return climb(p, binaryLevel{map[token.Code]ast.BinaryOp{
		token.STAR: ast.BMul, token.SLASH: ast.BDiv, token.PERCENT: ast.BMod,
	}, (*Parser).parseCast})
}

// parseCast recognizes `( type-name ) unary`, falling back to a
// parenthesized expression when the token after `(` does not start a
// type (§4.5 "Cast vs. parenthesized expression disambiguation").
func (p *Parser) parseCast() ast.Expression {
	if p.checkType(token.LPAREN) && p.startsTypeName(p.peekAt(1)) {
		start := p.peek()
		p.advance()
		t := p.parseTypeName()
		p.consume(token.RPAREN, diag.ExpectedToken, token.RPAREN)
		if p.checkType(token.LBRACE) {
			return p.parseCompoundLiteral(start, t)
		}
		arg := p.parseCast()
		return ast.NewCast(p.coords(start), t, arg, false)
	}
	return p.parseUnary()
}

func (p *Parser) peekAt(n int) token.Token {
	idx := p.pos + n
	if idx >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.reclassify(p.tokens[idx])
}

func (p *Parser) startsTypeName(tok token.Token) bool {
	return token.IsTypeSpecifierKeyword(tok.Code) || tok.Code == token.TYPE_NAME ||
		tok.Code == token.KW_CONST || tok.Code == token.KW_VOLATILE
}

// parseTypeName parses an abstract declarator: declaration-specifiers
// with no declarator name, as used in a cast or `sizeof(T)`.
func (p *Parser) parseTypeName() *types.TypeRef {
	specs := p.parseDeclarationSpecifiers()
	base := types.Value(specs.ResolveBaseType(), specs.Quals)
	_, t := p.parseDeclaratorFor(base)
	return t
}

var unaryOps = map[token.Code]ast.UnaryOp{
	token.PLUS: ast.UPlus, token.MINUS: ast.UMinus, token.TILDE: ast.UTilda, token.BANG: ast.UNot,
}

func (p *Parser) parseUnary() ast.Expression {
	switch {
	case p.isMatch(token.INCREMENT):
		start := p.previous()
		arg := p.parseUnary()
		return sema.TransformAssign(p.engine, p.coords(start), ast.BAsgAdd, arg,
			ast.NewConst(p.coords(start), types.Value(types.Primitive(types.S4), 0), ast.ConstInt))

	case p.isMatch(token.DECREMENT):
		start := p.previous()
		arg := p.parseUnary()
		return sema.TransformAssign(p.engine, p.coords(start), ast.BAsgSub, arg,
			ast.NewConst(p.coords(start), types.Value(types.Primitive(types.S4), 0), ast.ConstInt))

	case p.checkType(token.AMP):
		start := p.advance()
		arg := p.parseCast()
		if !sema.IsAssignable(arg) {
			p.engine.Report(diag.IncompatibleCast, p.coords(start), arg.ExprType(), "pointer")
		}
		return ast.NewUnary(p.coords(start), types.Pointed(arg.ExprType(), 0), ast.URef, arg)

	case p.checkType(token.STAR):
		start := p.advance()
		arg := p.parseCast()
		pointee := arg.ExprType()
		if pointee != nil && pointee.Kind == types.KindPointed {
			pointee = pointee.Pointee
		} else if pointee != nil && pointee.Kind == types.KindArray {
			pointee = pointee.Element
		} else {
			p.engine.Report(diag.IncompatibleCast, p.coords(start), arg.ExprType(), "pointer")
			pointee = types.Error()
		}
		return ast.NewUnary(p.coords(start), pointee, ast.UDeref, arg)

	case p.peek().Code == token.PLUS || p.peek().Code == token.MINUS ||
		p.peek().Code == token.TILDE || p.peek().Code == token.BANG:
		start := p.advance()
		op := unaryOps[start.Code]
		arg := p.parseCast()
		resultType := arg.ExprType()
		if op != ast.UNot {
			resultType = sema.IntegerPromote(arg.ExprType())
		} else {
			resultType = types.Value(types.Primitive(types.S4), 0)
		}
		return ast.NewUnary(p.coords(start), resultType, op, arg)

	case p.isMatch(token.KW_SIZEOF):
		return p.parseSizeof()

	default:
		return p.parsePostfix()
	}
}

func (p *Parser) parseSizeof() ast.Expression {
	start := p.previous()
	sizeT := types.Value(types.Primitive(types.U8), 0)
	if p.checkType(token.LPAREN) && p.startsTypeName(p.peekAt(1)) {
		p.advance()
		t := p.parseTypeName()
		p.consume(token.RPAREN, diag.ExpectedToken, token.RPAREN)
		if v, ok := consteval.EvalSizeOf(t); ok {
			c := ast.NewConst(p.coords(start), sizeT, ast.ConstInt)
			c.Int = v.Int
			return c
		}
		names := sema.VLADimensionSymbols(t)
		if len(names) == 0 {
			p.engine.Report(diag.SizeOfIncompleteType, p.coords(start), t)
		}
		return ast.NewUnary(p.coords(start), sizeT, ast.UPlus, ast.NewNameRef(p.coords(start), sizeT, vlaSizeofName(names), nil))
	}
	arg := p.parseUnary()
	if v, ok := consteval.EvalSizeOf(arg.ExprType()); ok {
		c := ast.NewConst(p.coords(start), sizeT, ast.ConstInt)
		c.Int = v.Int
		return c
	}
	names := sema.VLADimensionSymbols(arg.ExprType())
	return ast.NewUnary(p.coords(start), sizeT, ast.UPlus, ast.NewNameRef(p.coords(start), sizeT, vlaSizeofName(names), nil))
}

func vlaSizeofName(names []string) string {
	if len(names) == 0 {
		return "<error>"
	}
	return names[0]
}

func (p *Parser) parsePostfix() ast.Expression {
	expr := p.parsePrimary()
	for {
		switch {
		case p.isMatch(token.LBRACKET):
			start := p.previous()
			index := p.parseExpression()
			p.consume(token.RBRACKET, diag.ExpectedToken, token.RBRACKET)
			elemT := elementTypeOf(expr.ExprType())
			expr = ast.NewBinary(p.coords(start), elemT, ast.BArrayAccess, expr, index)

		case p.isMatch(token.LPAREN):
			start := p.previous()
			var args []ast.Expression
			if !p.checkType(token.RPAREN) {
				for {
					args = append(args, p.parseAssignment())
					if !p.isMatch(token.COMMA) {
						break
					}
				}
			}
			p.consume(token.RPAREN, diag.ExpectedToken, token.RPAREN)
			fnType := expr.ExprType()
			args = sema.AdjustCallArguments(p.engine, p.coords(start), fnType, args)
			retType := types.Error()
			if fnType != nil && fnType.Kind == types.KindFunction {
				retType = fnType.Return
			}
			expr = ast.NewCall(p.coords(start), retType, expr, args)

		case p.isMatch(token.DOT):
			start := p.previous()
			name := p.consume(token.IDENTIFIER, diag.ExpectedIdentifier).Text
			m := sema.ComputeMember(p.engine, p.coords(start), expr.ExprType(), name)
			expr = ast.NewFieldAccess(p.coords(start), memberType(m), ast.FieldDot, expr, m)

		case p.isMatch(token.ARROW):
			start := p.previous()
			name := p.consume(token.IDENTIFIER, diag.ExpectedIdentifier).Text
			receiverType := expr.ExprType()
			if receiverType != nil && receiverType.Kind == types.KindPointed {
				receiverType = receiverType.Pointee
			}
			m := sema.ComputeMember(p.engine, p.coords(start), receiverType, name)
			expr = ast.NewFieldAccess(p.coords(start), memberType(m), ast.FieldArrow, expr, m)

		case p.isMatch(token.INCREMENT):
			start := p.previous()
			expr = ast.NewUnary(p.coords(start), expr.ExprType(), ast.UPostInc, expr)

		case p.isMatch(token.DECREMENT):
			start := p.previous()
			expr = ast.NewUnary(p.coords(start), expr.ExprType(), ast.UPostDec, expr)

		default:
			return expr
		}
	}
}

func elementTypeOf(t *types.TypeRef) *types.TypeRef {
	if t == nil {
		return types.Error()
	}
	switch t.Kind {
	case types.KindArray, types.KindVLA:
		return t.Element
	case types.KindPointed:
		return t.Pointee
	}
	return types.Error()
}

func memberType(m *types.StructuralMember) *types.TypeRef {
	if m == nil {
		return types.Error()
	}
	return m.Type
}

func (p *Parser) parsePrimary() ast.Expression {
	tok := p.peekReclassified()
	switch tok.Code {
	case token.INT_CONST:
		p.advance()
		c := ast.NewConst(p.coords(tok), types.Value(types.Primitive(types.S4), 0), ast.ConstInt)
		c.Int = tok.Value.Int
		return c

	case token.FLOAT_CONST:
		p.advance()
		c := ast.NewConst(p.coords(tok), types.Value(types.Primitive(types.F8), 0), ast.ConstFloat)
		c.Float = tok.Value.Float
		return c

	case token.STRING_CONST:
		p.advance()
		strT := types.Array(types.Value(types.Primitive(types.S1), 0), len(tok.Value.Str)+1)
		c := ast.NewConst(p.coords(tok), strT, ast.ConstString)
		c.Str = tok.Value.Str
		return c

	case token.IDENTIFIER:
		p.advance()
		return p.resolveNameRef(tok)

	case token.LPAREN:
		p.advance()
		inner := p.parseExpression()
		p.consume(token.RPAREN, diag.ExpectedToken, token.RPAREN)
		return ast.NewParen(p.coords(tok), inner)

	case token.LOGICAL_AND:
		// `&&label`, GNU computed-goto label address.
		p.advance()
		name := p.consume(token.IDENTIFIER, diag.ExpectedIdentifier).Text
		p.labels.UseLabel(p.coords(tok), name)
		return ast.NewLabelRef(p.coords(tok), types.Pointed(types.Value(types.Primitive(types.Void), 0), 0), name)

	default:
		p.engine.Report(diag.UnexpectedToken, tok.Coords, tok.Code)
		p.advance()
		return ast.NewErrorExpr(tok.Coords)
	}
}

// resolveNameRef looks tok.Text up in scope, folding an enum constant
// to its integer value directly per §4.6 (enum constants are pure
// compile-time values, not runtime symbol references).
func (p *Parser) resolveNameRef(tok token.Token) ast.Expression {
	sym := p.curScope.FindSymbol(tok.Text)
	if sym == nil {
		p.engine.Report(diag.UndeclaredIdentifier, tok.Coords, tok.Text)
		return ast.NewErrorExpr(tok.Coords)
	}
	switch sym.Kind {
	case scope.EnumConstSymbol:
		enumerator := sym.Node.(*types.Enumerator)
		c := ast.NewConst(p.coords(tok), types.Value(types.Primitive(types.S4), 0), ast.ConstInt)
		c.Int = enumerator.Value
		return c
	case scope.ValueSymbol:
		decl := sym.Node.(*ast.ValueDeclaration)
		return ast.NewNameRef(p.coords(tok), decl.Type, tok.Text, sym)
	case scope.FunctionSymbol:
		fn := sym.Node.(*ast.FunctionDeclaration)
		return ast.NewNameRef(p.coords(tok), fn.Type, tok.Text, sym)
	default:
		p.engine.Report(diag.UndeclaredIdentifier, tok.Coords, tok.Text)
		return ast.NewErrorExpr(tok.Coords)
	}
}

// parseCompoundLiteral parses `(T){ ... }` (§4.5 "Compound literal"),
// reusing the same initializer-list machinery a declarator's
// initializer does.
func (p *Parser) parseCompoundLiteral(start token.Token, t *types.TypeRef) ast.Expression {
	init := p.parseInitializer(t)
	return ast.NewCompoundLiteral(p.coords(start), t, init)
}
