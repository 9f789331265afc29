package parser

import (
	"cfront/ast"
	"cfront/consteval"
	"cfront/diag"
	"cfront/scope"
	"cfront/token"
	"cfront/types"
)

// width values for the short/long/long-long specifier axis (§4.5
// "type-specifier-width").
const (
	widthNone = 0
	widthShort = -1
	widthLong = 1
	widthLongLong = 2
)

// DeclSpecifiers accumulates storage-class, width, sign, base type and
// qualifiers across a declaration-specifier sequence (§4.5
// "Declaration-specifier gathering").
type DeclSpecifiers struct {
	Storage    types.Qualifiers
	Quals      types.Qualifiers
	sign       token.Code // KW_SIGNED, KW_UNSIGNED, or 0 (unspecified)
	width      int
	base       token.Code // KW_VOID, KW_CHAR, KW_INT, KW_FLOAT, KW_DOUBLE, KW_BOOL, KW_STRUCT, KW_UNION, KW_ENUM, TYPE_NAME, or 0
	Aggregate  *types.TypeRef // set once a struct/union/enum/typedef specifier is seen
	IsTypedef  bool
	Coords     token.Coordinates
}

func isStorageClassKeyword(c token.Code) bool {
	switch c {
	case token.KW_TYPEDEF, token.KW_STATIC, token.KW_EXTERN, token.KW_AUTO, token.KW_REGISTER:
		return true
	}
	return false
}

func isQualifierKeyword(c token.Code) bool {
	switch c {
	case token.KW_CONST, token.KW_VOLATILE, token.KW_RESTRICT:
		return true
	}
	return false
}

func storageBit(c token.Code) types.Qualifiers {
	switch c {
	case token.KW_TYPEDEF:
		return types.SCTypedef
	case token.KW_STATIC:
		return types.SCStatic
	case token.KW_EXTERN:
		return types.SCExtern
	case token.KW_AUTO:
		return types.SCAuto
	case token.KW_REGISTER:
		return types.SCRegister
	}
	return 0
}

func qualifierBit(c token.Code) types.Qualifiers {
	switch c {
	case token.KW_CONST:
		return types.QConst
	case token.KW_VOLATILE:
		return types.QVolatile
	case token.KW_RESTRICT:
		return types.QRestrict
	}
	return 0
}

// parseDeclarationSpecifiers implements §4.5's declaration-specifier
// gathering loop, reporting duplicate/conflicting specifiers as it
// accumulates them.
func (p *Parser) parseDeclarationSpecifiers() *DeclSpecifiers {
	specs := &DeclSpecifiers{Coords: p.peek().Coords}
	sawAny := false

	for {
		tok := p.peekReclassified()
		switch {
		case isStorageClassKeyword(tok.Code):
			bit := storageBit(tok.Code)
			if specs.Storage != 0 && specs.Storage != bit {
				p.engine.Report(diag.InvalidStorageClass, tok.Coords, tok.Code)
			}
			specs.Storage |= bit
			specs.IsTypedef = specs.IsTypedef || tok.Code == token.KW_TYPEDEF
			p.advance()
			sawAny = true

		case isQualifierKeyword(tok.Code):
			specs.Quals |= qualifierBit(tok.Code)
			p.advance()
			sawAny = true

		case tok.Code == token.KW_SIGNED || tok.Code == token.KW_UNSIGNED:
			if specs.sign != 0 {
				p.engine.Report(diag.ConflictingDeclarationSpecifier, tok.Coords, tok.Code)
			}
			specs.sign = tok.Code
			p.advance()
			sawAny = true

		case tok.Code == token.KW_SHORT:
			if specs.width != widthNone {
				p.engine.Report(diag.ConflictingDeclarationSpecifier, tok.Coords, tok.Code)
			}
			specs.width = widthShort
			p.advance()
			sawAny = true

		case tok.Code == token.KW_LONG:
			if specs.width == widthNone {
				specs.width = widthLong
			} else if specs.width == widthLong {
				specs.width = widthLongLong
			} else {
				p.engine.Report(diag.ConflictingDeclarationSpecifier, tok.Coords, tok.Code)
			}
			p.advance()
			sawAny = true

		case tok.Code == token.KW_VOID, tok.Code == token.KW_CHAR, tok.Code == token.KW_INT,
			tok.Code == token.KW_FLOAT, tok.Code == token.KW_DOUBLE, tok.Code == token.KW_BOOL:
			if specs.base != 0 {
				p.engine.Report(diag.DuplicateDeclarationSpecifier, tok.Coords, tok.Code)
			}
			specs.base = tok.Code
			p.advance()
			sawAny = true

		case tok.Code == token.KW_STRUCT || tok.Code == token.KW_UNION:
			specs.Aggregate = p.parseStructOrUnion(tok.Code == token.KW_UNION)
			specs.base = tok.Code
			sawAny = true

		case tok.Code == token.KW_ENUM:
			specs.Aggregate = p.parseEnum()
			specs.base = tok.Code
			sawAny = true

		case tok.Code == token.TYPE_NAME && specs.base == 0:
			if sym := p.curScope.FindSymbol(tok.Text); sym != nil {
				if t, ok := sym.Node.(*types.TypeRef); ok {
					specs.Aggregate = t
					specs.base = token.TYPE_NAME
					p.advance()
					sawAny = true
					continue
				}
			}
			return specs

		case tok.Code == token.KW_ATTRIBUTE:
			p.parseAttribute()
			sawAny = true

		default:
			if !sawAny {
				p.engine.Report(diag.MissingTypeSpecifier, tok.Coords)
			}
			return specs
		}
	}
}

// parseAttribute recognizes and discards `__attribute__((...))` per
// §4.5 "Attributes": content is parsed into a flat token run and
// otherwise ignored, since this front end has no backend to honor it.
func (p *Parser) parseAttribute() {
	p.advance() // __attribute__
	if !p.isMatch(token.LPAREN) {
		return
	}
	if !p.isMatch(token.LPAREN) {
		return
	}
	depth := 1
	for depth > 0 && !p.isFinished() {
		switch p.peek().Code {
		case token.LPAREN:
			depth++
		case token.RPAREN:
			depth--
		}
		p.advance()
	}
}

// ResolveBaseType implements §4.5's fixed decision table over (sign,
// width, base) once specifier gathering completes.
func (specs *DeclSpecifiers) ResolveBaseType() *types.TypeDesc {
	if specs.Aggregate != nil {
		return specs.Aggregate.Desc
	}
	switch specs.base {
	case token.KW_VOID:
		return types.Primitive(types.Void)
	case token.KW_BOOL:
		return types.Primitive(types.Bool)
	case token.KW_CHAR:
		if specs.sign == token.KW_UNSIGNED {
			return types.Primitive(types.U1)
		}
		return types.Primitive(types.S1)
	case token.KW_FLOAT:
		return types.Primitive(types.F4)
	case token.KW_DOUBLE:
		if specs.width == widthLong {
			return types.Primitive(types.F10)
		}
		return types.Primitive(types.F8)
	default: // KW_INT or bare sign/width
		unsigned := specs.sign == token.KW_UNSIGNED
		switch specs.width {
		case widthShort:
			return types.Primitive(pickID(unsigned, types.S2, types.U2))
		case widthLong, widthLongLong:
			return types.Primitive(pickID(unsigned, types.S8, types.U8))
		default:
			return types.Primitive(pickID(unsigned, types.S4, types.U4))
		}
	}
}

func pickID(unsigned bool, signed, unsignedID types.TypeID) types.TypeID {
	if unsigned {
		return unsignedID
	}
	return signed
}

// parseStructOrUnion implements §4.5's three struct/union modes
// (definition, reference, declaration), distinguished by lookahead
// after the optional tag identifier.
func (p *Parser) parseStructOrUnion(isUnion bool) *types.TypeRef {
	p.advance() // struct / union
	kind := scope.StructSymbol
	defKind := types.KindStruct
	if isUnion {
		kind = scope.UnionSymbol
		defKind = types.KindUnion
	}

	var name string
	if p.checkType(token.IDENTIFIER) || p.checkType(token.TYPE_NAME) {
		name = p.advance().Text
	} else {
		name = p.anon.Next()
	}

	if !p.checkType(token.LBRACE) {
		// Reference or forward declaration.
		if sym := p.curScope.FindTag(kind, name); sym != nil {
			if def, ok := sym.Node.(*types.TypeDefinition); ok {
				return types.Value(&types.TypeDesc{ID: aggregateID(isUnion), Name: name, Size: def.Size, Definition: def}, 0)
			}
		}
		def := &types.TypeDefinition{Kind: defKind, Name: name}
		p.curScope.DeclareSymbol(kind, name, def, nil)
		p.typeDefs = append(p.typeDefs, def)
		return types.Value(&types.TypeDesc{ID: aggregateID(isUnion), Name: name, Definition: def}, 0)
	}

	p.advance() // {
	builder := types.NewLayoutBuilder(isUnion)
	for !p.checkType(token.RBRACE) && !p.isFinished() {
		p.parseStructMember(builder)
	}
	p.consume(token.RBRACE, diag.ExpectedToken, token.RBRACE)
	head, size, align := builder.Finish()

	def := &types.TypeDefinition{Kind: defKind, Name: name, Members: head, Size: size, Align: align, IsDefined: true}
	for m := head; m != nil; m = m.Next {
		if m.Next == nil && m.Type.Kind == types.KindArray && m.Type.Size == types.UnknownSize {
			def.IsFlexible = true
		}
	}
	if sym := p.curScope.LocalSymbol(scope.TagKey(kind, name)); sym != nil {
		if existing, ok := sym.Node.(*types.TypeDefinition); ok {
			*existing = *def
			def = existing
		} else {
			p.curScope.DeclareSymbol(kind, name, def, nil)
		}
	} else {
		p.curScope.DeclareSymbol(kind, name, def, nil)
	}
	p.typeDefs = append(p.typeDefs, def)
	return types.Value(&types.TypeDesc{ID: aggregateID(isUnion), Name: name, Size: size, Definition: def}, 0)
}

func aggregateID(isUnion bool) types.TypeID {
	if isUnion {
		return types.Union
	}
	return types.Struct
}

// parseStructMember parses one member declaration, including bit-field
// chains (§4.5 "Struct member layout").
func (p *Parser) parseStructMember(builder *types.LayoutBuilder) {
	specs := p.parseDeclarationSpecifiers()
	base := types.Value(specs.ResolveBaseType(), specs.Quals)

	for {
		name, t := p.parseDeclaratorFor(base)
		if p.isMatch(token.COLON) {
			widthExpr := p.parseConditional()
			v, ok := consteval.Eval(widthExpr)
			if !ok || v.Kind != ast.ConstInt {
				p.engine.Report(diag.FieldNonConstantSize, widthExpr.Coords())
			} else {
				if !types.IsIntegerType(t) {
					p.engine.Report(diag.BitFieldTypeInvalid, widthExpr.Coords(), name)
				}
				if v.Int < 0 || v.Int > 64 {
					p.engine.Report(diag.BitFieldWidthInvalid, widthExpr.Coords(), v.Int)
				}
				builder.AddBitfield(name, int(v.Int), t.Kind == types.KindValue && t.Desc.ID.IsSigned())
			}
		} else {
			builder.AddMember(name, t, nil)
		}
		if !p.isMatch(token.COMMA) {
			break
		}
	}
	p.consume(token.SEMI, diag.ExpectedSemicolon)
}

// parseEnum implements §4.5 enum parsing: `enum NAME { A, B = 2, C }`.
// Enumerator values default to the previous value + 1, starting at 0.
func (p *Parser) parseEnum() *types.TypeRef {
	p.advance() // enum
	var name string
	if p.checkType(token.IDENTIFIER) || p.checkType(token.TYPE_NAME) {
		name = p.advance().Text
	} else {
		name = p.anon.Next()
	}

	if !p.checkType(token.LBRACE) {
		if sym := p.curScope.FindTag(scope.EnumSymbol, name); sym != nil {
			if def, ok := sym.Node.(*types.TypeDefinition); ok {
				return types.Value(&types.TypeDesc{ID: types.Enum, Name: name, Definition: def}, 0)
			}
		}
		def := &types.TypeDefinition{Kind: types.KindEnum, Name: name}
		p.curScope.DeclareSymbol(scope.EnumSymbol, name, def, nil)
		return types.Value(&types.TypeDesc{ID: types.Enum, Name: name, Definition: def}, 0)
	}

	p.advance() // {
	def := &types.TypeDefinition{Kind: types.KindEnum, Name: name, Size: 4, Align: 4, IsDefined: true}
	next := int64(0)
	for !p.checkType(token.RBRACE) && !p.isFinished() {
		constName := p.consume(token.IDENTIFIER, diag.ExpectedIdentifier).Text
		value := next
		if p.isMatch(token.ASSIGN) {
			expr := p.parseConditional()
			if v, ok := consteval.Eval(expr); ok {
				value = v.Int
			}
		}
		def.Enumerators = append(def.Enumerators, types.Enumerator{Name: constName, Value: value})
		// Symbol.Node holds its own heap copy rather than a pointer into
		// Enumerators, since further appends may reallocate that slice.
		p.curScope.DeclareSymbol(scope.EnumConstSymbol, constName, &types.Enumerator{Name: constName, Value: value}, nil)
		next = value + 1
		if !p.isMatch(token.COMMA) {
			break
		}
	}
	p.consume(token.RBRACE, diag.ExpectedToken, token.RBRACE)
	p.curScope.DeclareSymbol(scope.EnumSymbol, name, def, nil)
	return types.Value(&types.TypeDesc{ID: types.Enum, Name: name, Definition: def}, 0)
}
