package parser

import (
	"cfront/ast"
	"cfront/diag"
	"cfront/scope"
	"cfront/sema"
	"cfront/token"
	"cfront/types"
)

// declFn is one link of a declarator's type-building chain: given the
// type to its right, it returns the type that results from applying
// this declarator part. Composing these bottom-up as they are parsed
// is what lets a postfix array/function suffix bind tighter than a
// prefix pointer without a separate fixup pass (§4.5 DeclaratorPart
// "consumes parts in reverse" resolved here as closure composition
// instead of a two-pass reversal).
type declFn func(*types.TypeRef) *types.TypeRef

func identityDecl(t *types.TypeRef) *types.TypeRef { return t }

// parseDeclaratorFor parses one declarator and returns its name and the
// full type obtained by applying the declarator's chain to base.
func (p *Parser) parseDeclaratorFor(base *types.TypeRef) (string, *types.TypeRef) {
	name, build := p.parseDeclaratorChain()
	return name, build(base)
}

// parseDeclaratorChain implements the pragmatic declarator grammar this
// front end supports: a run of prefix pointers, one direct declarator
// (an identifier or a parenthesized sub-declarator), and a postfix
// chain of array/function suffixes. Arbitrarily interleaved
// parenthesization nested inside suffixes is not attempted; this is a
// deliberate simplification over full arbitrary-nesting C declarators,
// recorded in the design notes.
func (p *Parser) parseDeclaratorChain() (string, declFn) {
	if p.isMatch(token.STAR) {
		quals := p.parsePointerQualifiers()
		innerName, innerBuild := p.parseDeclaratorChain()
		return innerName, func(t *types.TypeRef) *types.TypeRef {
			return innerBuild(types.Pointed(t, quals))
		}
	}
	return p.parseDirectDeclaratorChain()
}

func (p *Parser) parsePointerQualifiers() types.Qualifiers {
	var q types.Qualifiers
	for isQualifierKeyword(p.peek().Code) {
		q |= qualifierBit(p.advance().Code)
	}
	return q
}

func (p *Parser) parseDirectDeclaratorChain() (string, declFn) {
	var name string
	var build declFn = identityDecl

	switch {
	case p.isMatch(token.LPAREN):
		name, build = p.parseDeclaratorChain()
		p.consume(token.RPAREN, diag.ExpectedToken, token.RPAREN)
	case p.checkType(token.IDENTIFIER):
		name = p.advance().Text
	default:
		// Abstract declarator (no name), as in a cast or parameter type.
	}

	for {
		switch {
		case p.checkType(token.LBRACKET):
			suffix := p.parseArraySuffix()
			prev := build
			build = func(t *types.TypeRef) *types.TypeRef { return prev(suffix(t)) }
		case p.checkType(token.LPAREN):
			suffix := p.parseFunctionSuffix()
			prev := build
			build = func(t *types.TypeRef) *types.TypeRef { return prev(suffix(t)) }
		default:
			return name, build
		}
	}
}

// parseArraySuffix parses `[ static? qualifiers? (size-expr | '*')? ]`
// (§4.5 "Array declarator part"), returning a closure that builds the
// Array/VLA type around whatever element type it is later applied to.
func (p *Parser) parseArraySuffix() declFn {
	start := p.advance() // [
	isStatic := p.isMatch(token.KW_STATIC)
	for isQualifierKeyword(p.peek().Code) {
		p.advance() // array-qualifiers affect only aliasing analysis, which this front end does not do
	}
	if !isStatic {
		isStatic = p.isMatch(token.KW_STATIC)
	}

	switch {
	case p.isMatch(token.STAR) && p.checkType(token.RBRACKET):
		p.advance() // ]
		return func(elem *types.TypeRef) *types.TypeRef {
			return types.VLAType(elem, nil, "")
		}

	case p.checkType(token.RBRACKET):
		p.advance() // ]
		return func(elem *types.TypeRef) *types.TypeRef {
			return types.Array(elem, types.UnknownSize)
		}

	default:
		sizeExpr := p.parseAssignment()
		p.consume(token.RBRACKET, diag.ExpectedToken, token.RBRACKET)
		if isStatic && p.inStaticScope {
			p.engine.Report(diag.VLAWithStaticDuration, start.Coords)
		}
		if _, isErr := sizeExpr.(*ast.ErrorExpr); isErr && p.inParamList {
			p.engine.Report(diag.UnboundVLAInDefinition, start.Coords)
		}
		return func(elem *types.TypeRef) *types.TypeRef {
			return sema.MaterializeVLADimension(p.curScope, p.anon, elem, sizeExpr)
		}
	}
}

// parseFunctionSuffix parses `( parameter-list )` (§4.5 "Function
// declarator part"). Named parameters are declared into a scope opened
// just for this parameter list, so a later parameter's VLA dimension
// can reference an earlier one (e.g. `int f(int n, int a[n])`); that
// scope closes when this suffix returns; the declarations themselves
// are also handed back via pendingParams for topLevelDeclaration to
// re-declare into the function body's own block scope, since a
// function-pointer parameter's own nested suffix must not leak its
// names into the enclosing one.
func (p *Parser) parseFunctionSuffix() declFn {
	start := p.advance() // (

	closeScope := p.openScope(scope.FunctionPrototypeScope)
	defer closeScope()

	var params []*types.TypeRef
	var decls []*ast.ValueDeclaration
	variadic := false
	prevInParamList := p.inParamList
	p.inParamList = true
	if !p.checkType(token.RPAREN) {
		for {
			if p.isMatch(token.ELLIPSIS) {
				variadic = true
				if len(params) == 0 {
					p.engine.Report(diag.ParameterBeforeEllipsis, p.coords(p.previous()))
				}
				break
			}
			paramStart := p.peek()
			specs := p.parseDeclarationSpecifiers()
			base := types.Value(specs.ResolveBaseType(), specs.Quals)
			paramName, paramType := p.parseDeclaratorFor(base)
			params = append(params, paramType)
			if paramName != "" {
				decl := ast.NewValueDeclaration(p.coords(paramStart), ast.DeclParameter, paramType, paramName, len(params)-1, specs.Quals)
				decls = append(decls, decl)
				p.curScope.DeclareSymbol(scope.ValueSymbol, paramName, decl, nil)
			}
			if !p.isMatch(token.COMMA) {
				break
			}
		}
	}
	p.inParamList = prevInParamList
	p.consume(token.RPAREN, diag.ExpectedToken, token.RPAREN)

	if len(params) == 1 && types.IsVoid(params[0]) {
		params = nil
	} else {
		for _, pt := range params {
			if types.IsVoid(pt) {
				p.engine.Report(diag.VoidParameterWithOthers, p.coords(p.previous()))
				break
			}
		}
	}
	// Recorded for the enclosing topLevelDeclaration to re-declare into
	// the function body's own block scope (this suffix's own scope
	// never persists past parsing, since nested declarators such as a
	// function-pointer parameter never need its parameter names visible
	// to anything outside themselves).
	p.pendingParams = decls
	var vlaBindings []types.VLASizeExpr
	for _, pt := range params {
		if pt != nil && pt.Kind == types.KindVLA && pt.VLA.Symbol != "" {
			vlaBindings = append(vlaBindings, pt.VLA)
		}
	}
	p.pendingVLABindings = vlaBindings
	return func(ret *types.TypeRef) *types.TypeRef {
		if ret != nil && ret.Kind == types.KindFunction {
			p.engine.Report(diag.NestedFunctionDeclarator, start.Coords)
		}
		return types.Function(ret, params, variadic)
	}
}
