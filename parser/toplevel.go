package parser

import (
	"cfront/ast"
	"cfront/diag"
	"cfront/scope"
	"cfront/sema"
	"cfront/token"
	"cfront/types"
)

// vaAreaSize is the System V AMD64 register save area a variadic
// definition's hidden __va_area__ local spans: six 8-byte integer
// registers plus eight 16-byte SSE registers.
const vaAreaSize = 6*8 + 8*16

// topLevelDeclaration parses one top-level construct (§4.5 "top-level
// declaration dispatch"): a bare struct/union/enum declaration, a
// typedef, one or more file-scope variable declarations, or a function
// prototype/definition. Errors synchronize to the next likely
// declaration boundary rather than aborting the whole file.
func (p *Parser) topLevelDeclaration() (result ast.TopLevelDeclaration) {
	defer func() {
		if r := recover(); r != nil {
			p.synchronize()
			result = nil
		}
	}()

	start := p.peek()
	specs := p.parseDeclarationSpecifiers()

	if p.isMatch(token.SEMI) {
		return nil // bare `struct S { ... };` / `enum E { ... };` with no declarator
	}

	base := types.Value(specs.ResolveBaseType(), specs.Quals)
	name, t := p.parseDeclaratorFor(base)
	if name == "" {
		p.engine.Report(diag.DeclaresNothing, p.coords(start))
		p.consume(token.SEMI, diag.ExpectedSemicolon)
		return nil
	}

	if t.Kind == types.KindFunction {
		return p.finishFunction(start, name, t)
	}
	return p.finishValueDeclarations(start, specs, base, name, t)
}

// finishValueDeclarations parses the remainder of a possibly
// comma-separated file-scope declaration whose first declarator (name,
// t) is already in hand, threading siblings through ValueDeclaration.Next
// the same way parseLocalDeclarationStatement does for block scope.
func (p *Parser) finishValueDeclarations(start token.Token, specs *DeclSpecifiers, base *types.TypeRef, name string, t *types.TypeRef) ast.TopLevelDeclaration {
	var head, tail *ast.ValueDeclaration
	index := 0

	for {
		if t.Kind == types.KindVLA {
			p.engine.Report(diag.VLAAtFileScope, p.coords(start))
		}

		decl := ast.NewValueDeclaration(p.coords(start), ast.DeclVariable, t, name, index, specs.Quals)
		if p.isMatch(token.ASSIGN) {
			if specs.Storage.Has(types.SCExtern) {
				p.engine.Report(diag.ExternVariableInitialization, p.coords(start), name)
			}
			prevStatic := p.inStaticScope
			p.inStaticScope = true
			decl.Initializer = p.parseInitializer(t)
			p.inStaticScope = prevStatic
		}

		if specs.IsTypedef {
			p.curScope.DeclareSymbol(scope.TypedefSymbol, name, t, func(a, b any) bool {
				at, aok := a.(*types.TypeRef)
				bt, bok := b.(*types.TypeRef)
				return aok && bok && types.TypesEqual(at, bt)
			})
		} else {
			sym, outcome := p.curScope.DeclareSymbol(scope.ValueSymbol, name, decl, nil)
			decl.Symbol = sym
			if outcome == scope.ShadowValueRedefinition {
				p.engine.Report(diag.Redefinition, p.coords(start), name)
			}
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
		name, t = p.parseDeclaratorFor(base)
	}
	p.consume(token.SEMI, diag.ExpectedSemicolon)
	if specs.IsTypedef {
		return nil // a typedef only names a type; the file gains no declaration
	}
	return head
}

// finishFunction parses a function prototype or definition (§4.5
// "Function definition vs. declaration"): presence of `{` after the
// declarator distinguishes the two. pendingParams, populated by the
// declarator's function suffix, is consumed here and re-declared into
// the body's own block scope so parameter names are visible to it.
func (p *Parser) finishFunction(start token.Token, name string, t *types.TypeRef) ast.TopLevelDeclaration {
	params := p.pendingParams
	vlaBindings := p.pendingVLABindings
	p.pendingParams = nil
	p.pendingVLABindings = nil

	fn := ast.NewFunctionDeclaration(p.coords(start), name, t, params)
	hasBody := p.checkType(token.LBRACE)
	p.declareFunctionSymbol(p.coords(start), name, fn, hasBody)

	if !hasBody {
		p.consume(token.SEMI, diag.ExpectedSemicolon)
		return fn
	}

	bodyStart := p.advance() // {
	closeScope := p.openScope(scope.BlockScope)
	bodyScope := p.curScope
	for _, pd := range params {
		sym, _ := bodyScope.DeclareSymbol(scope.ValueSymbol, pd.Name, pd, nil)
		pd.Symbol = sym
	}
	// A VLA-typed parameter's hidden dimension local (materialized while
	// parsing the parameter list, in that list's own now-closed scope)
	// must be re-declared here too, or its sizeof expansion inside the
	// body would resolve against nothing.
	for _, vb := range vlaBindings {
		bodyScope.DeclareSymbol(scope.ValueSymbol, vb.Symbol, vb.Expr, nil)
	}

	prevReturn := p.returnType
	prevLabels := p.labels
	p.returnType = t.Return
	p.labels = sema.NewLabelTracker()

	var stmts []ast.Statement
	for !p.checkType(token.RBRACE) && !p.isFinished() {
		stmts = append(stmts, p.parseStatement())
	}
	p.consume(token.RBRACE, diag.ExpectedToken, token.RBRACE)
	p.labels.Finish(p.engine)

	fn.Body = ast.NewBlock(p.coords(bodyStart), stmts, bodyScope)
	if t.IsVariadic {
		fn.VaAreaSize = vaAreaSize
	}

	p.returnType = prevReturn
	p.labels = prevLabels
	closeScope()
	return fn
}

// declareFunctionSymbol installs name in file scope, reporting a
// conflicting-signature redefinition and, separately, an attempt to
// give a second body to an already-defined function. A matching
// prototype is promoted in place to a definition rather than shadowed,
// so later callers and the IR builder see the one symbol with a body
// (fn.Body is filled in by the caller only after this returns, so
// hasBody carries what fn.Body will become).
func (p *Parser) declareFunctionSymbol(coords token.Coordinates, name string, fn *ast.FunctionDeclaration, hasBody bool) {
	typesEqual := func(a, b any) bool {
		ea, aok := a.(*ast.FunctionDeclaration)
		eb, bok := b.(*ast.FunctionDeclaration)
		return aok && bok && types.TypesEqual(ea.Type, eb.Type)
	}
	sym, outcome := p.fileScope.DeclareSymbol(scope.FunctionSymbol, name, fn, typesEqual)

	switch outcome {
	case scope.ShadowConflictingTypes:
		p.engine.Report(diag.Redefinition, coords, name)
	case scope.ShadowOK:
		if existing, ok := sym.Node.(*ast.FunctionDeclaration); ok && existing != fn {
			switch {
			case existing.Body != nil && hasBody:
				p.engine.Report(diag.Redefinition, coords, name)
			case hasBody:
				sym.Node = fn
			}
		}
	}
	fn.Symbol = sym
}
