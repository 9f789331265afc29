package parser

import (
	"cfront/ast"
	"cfront/consteval"
	"cfront/diag"
	"cfront/initializer"
	"cfront/token"
	"cfront/types"
)

// parseInitializer parses the initializer following `=` in a
// declarator or the body of a `(T){ ... }` compound literal, and
// finalizes it against t via the initializer package's designator-
// stream flattening (§4.5 "Designated initializers", §4.7).
func (p *Parser) parseInitializer(t *types.TypeRef) *ast.Initializer {
	var items []initializer.ParsedInitializer
	p.collectInitializerItems(&items)
	finalizer := initializer.NewFinalizer(p.engine, p.inStaticScope)
	result, completedSize := finalizer.Finalize(items, t)
	if completedSize != types.UnknownSize && t.Kind == types.KindArray {
		t.Size = completedSize
	}
	return result
}

// collectInitializerItems recursively parses one brace-delimited
// initializer (or a single bare assignment-expression, for a scalar
// with elided braces) into the flat designator stream the finalizer
// consumes. Only a single designator component (one `[index]` or one
// `.field`) is supported per element, matching the finalizer's
// one-designator-per-aggregate-level cursor model; a chained
// designator like `.a.b[2]` would need one Open/Designator pair per
// nesting level, which this front end does not attempt.
func (p *Parser) collectInitializerItems(items *[]initializer.ParsedInitializer) {
	if !p.checkType(token.LBRACE) {
		start := p.peek()
		expr := p.parseAssignment()
		*items = append(*items, initializer.ParsedInitializer{Kind: initializer.Inner, Coords: p.coords(start), Expr: expr})
		return
	}

	start := p.advance() // {
	*items = append(*items, initializer.ParsedInitializer{Kind: initializer.Open, Coords: p.coords(start)})

	for !p.checkType(token.RBRACE) && !p.isFinished() {
		p.parseOneDesignator(items)

		if p.checkType(token.LBRACE) {
			p.collectInitializerItems(items)
		} else {
			estart := p.peek()
			expr := p.parseAssignment()
			*items = append(*items, initializer.ParsedInitializer{Kind: initializer.Inner, Coords: p.coords(estart), Expr: expr})
		}

		if p.isMatch(token.COMMA) {
			if p.checkType(token.RBRACE) {
				break // trailing comma
			}
			*items = append(*items, initializer.ParsedInitializer{Kind: initializer.Separator, Coords: p.peek().Coords})
		} else {
			break
		}
	}
	p.consume(token.RBRACE, diag.ExpectedToken, token.RBRACE)
	*items = append(*items, initializer.ParsedInitializer{Kind: initializer.Close, Coords: p.coords(start)})
}

// parseOneDesignator consumes an optional `[index] =` or `.field =`
// prefix, appending the matching Designator item.
func (p *Parser) parseOneDesignator(items *[]initializer.ParsedInitializer) {
	switch {
	case p.checkType(token.LBRACKET):
		dstart := p.advance()
		idxExpr := p.parseConditional()
		p.consume(token.RBRACKET, diag.ExpectedToken, token.RBRACKET)
		p.consume(token.ASSIGN, diag.ExpectedToken, token.ASSIGN)
		v, ok := consteval.Eval(idxExpr)
		if !ok {
			p.engine.Report(diag.ExpectedIntegerConstantExpression, p.coords(dstart))
		}
		*items = append(*items, initializer.ParsedInitializer{
			Kind: initializer.Designator, Coords: p.coords(dstart),
			Designator: initializer.DesignatorArrayIndex, ArrayIndex: int(v.Int),
		})

	case p.checkType(token.DOT):
		dstart := p.advance()
		name := p.consume(token.IDENTIFIER, diag.ExpectedIdentifier).Text
		p.consume(token.ASSIGN, diag.ExpectedToken, token.ASSIGN)
		*items = append(*items, initializer.ParsedInitializer{
			Kind: initializer.Designator, Coords: p.coords(dstart),
			Designator: initializer.DesignatorFieldName, FieldName: name,
		})
	}
}
