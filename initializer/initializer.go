// Package initializer flattens a parsed designated-initializer stream
// onto a target type's offset-indexed storage slots (§4.7).
//
// Grounded on src/sema.c's declare*/make* naming conventions (the
// finalizer is specified in spec §4.7 rather than surviving verbatim
// in the trimmed original source excerpt; its cursor algorithm follows
// that section directly) and on the teacher's recursive-descent
// control-flow style for the cursor stack walk.
package initializer

import (
	"cfront/ast"
	"cfront/consteval"
	"cfront/diag"
	"cfront/token"
	"cfront/types"
)

// ParsedItemKind tags one token of the raw designator stream the
// parser emits while reading a brace-initializer (§4.5 "Designated
// initializers").
type ParsedItemKind int

const (
	Open ParsedItemKind = iota
	Close
	Separator
	Inner
	Designator
)

// DesignatorKind distinguishes an array-index designator from a
// field-name designator.
type DesignatorKind int

const (
	DesignatorArrayIndex DesignatorKind = iota
	DesignatorFieldName
)

// ParsedInitializer is one item of the linear stream the parser
// produces for `{ ... }` (§4.5).
type ParsedInitializer struct {
	Kind        ParsedItemKind
	Coords      token.Coordinates
	Expr        ast.Expression  // Inner
	Designator  DesignatorKind  // Designator
	ArrayIndex  int             // Designator, DesignatorArrayIndex
	FieldName   string          // Designator, DesignatorFieldName
}

// cursor tracks the current sub-object being filled, mirroring §4.7's
// "(member_index, byte_offset_of_member)" / "(element_index, byte_offset)"
// / "(consumed?)" description uniformly over struct, array, and scalar
// targets.
type cursor struct {
	targetType  *types.TypeRef
	baseOffset  int // offset of this sub-object's start within the top-level object

	// struct/union cursor
	member *types.StructuralMember

	// array cursor
	elementType *types.TypeRef
	elementSize int
	index       int
	maxIndex    int // highest index reached, for incomplete-array sizing

	// scalar cursor
	consumed bool
}

func newCursor(t *types.TypeRef, baseOffset int) *cursor {
	c := &cursor{targetType: t, baseOffset: baseOffset, maxIndex: -1}
	switch t.Kind {
	case types.KindValue:
		if t.Desc.Definition != nil && (t.Desc.ID == types.Struct || t.Desc.ID == types.Union) {
			c.member = t.Desc.Definition.Members
		}
	case types.KindArray:
		c.elementType = t.Element
		c.elementSize = types.ComputeTypeSize(t.Element)
	}
	return c
}

// currentSlot returns the (type, absolute offset) the next Inner item
// should target.
func (c *cursor) currentSlot() (*types.TypeRef, int) {
	switch c.targetType.Kind {
	case types.KindValue:
		if c.member != nil {
			return c.member.Type, c.baseOffset + c.member.Offset
		}
		return c.targetType, c.baseOffset
	case types.KindArray:
		return c.elementType, c.baseOffset + c.index*c.elementSize
	default:
		return c.targetType, c.baseOffset
	}
}

func (c *cursor) advance() {
	switch c.targetType.Kind {
	case types.KindValue:
		if c.member != nil {
			c.member = c.member.Next
		} else {
			c.consumed = true
		}
	case types.KindArray:
		if c.index > c.maxIndex {
			c.maxIndex = c.index
		}
		c.index++
	default:
		c.consumed = true
	}
}

// designate resets the cursor within the current aggregate (§4.7
// "on Designator it resets the cursor ... to the named member or
// indexed element").
func (c *cursor) designate(item ParsedInitializer, engine *diag.Engine) {
	switch c.targetType.Kind {
	case types.KindArray:
		if item.Designator != DesignatorArrayIndex {
			diag.Internal("array designator expected, got field designator")
			return
		}
		if item.ArrayIndex < 0 {
			engine.Report(diag.ArrayDesignatorNegative, item.Coords, item.ArrayIndex)
			return
		}
		c.index = item.ArrayIndex
	case types.KindValue:
		if item.Designator != DesignatorFieldName {
			engine.Report(diag.FieldDesignatorOnNonStruct, item.Coords)
			return
		}
		for m := c.targetType.Desc.Definition.Members; m != nil; m = m.Next {
			if m.Name == item.FieldName {
				c.member = m
				return
			}
		}
		engine.Report(diag.FieldDesignatorOnNonStruct, item.Coords, item.FieldName)
	default:
		engine.Report(diag.FieldDesignatorOnNonStruct, item.Coords)
	}
}

// Finalizer turns a flat ParsedInitializer stream into a structured,
// offset-indexed *ast.Initializer tree (§4.7).
type Finalizer struct {
	engine      *diag.Engine
	inStaticScope bool
}

// NewFinalizer constructs a Finalizer; inStaticScope enables §4.7's
// "static-scope initializers require a constant expression" check.
func NewFinalizer(engine *diag.Engine, inStaticScope bool) *Finalizer {
	return &Finalizer{engine: engine, inStaticScope: inStaticScope}
}

// Finalize consumes items (already delimited by one top-level Open...Close
// pair) against targetType, returning the finalized tree and the
// completed array size when targetType was an incomplete top-level
// array (UnknownSize otherwise unchanged).
func (f *Finalizer) Finalize(items []ParsedInitializer, targetType *types.TypeRef) (*ast.Initializer, int) {
	pos := 0
	result := f.finalizeAggregate(items, &pos, targetType, 0)
	completedSize := types.UnknownSize
	if targetType.Kind == types.KindArray && targetType.Size == types.UnknownSize {
		completedSize = maxIndexOf(result, types.ComputeTypeSize(targetType.Element)) + 1
	}
	return result, completedSize
}

// maxIndexOf returns the highest array index any leaf of init lands in,
// given the array's element size, or -1 when init has no leaves.
func maxIndexOf(init *ast.Initializer, elemSize int) int {
	if init.Kind == ast.InitializerExpression {
		if elemSize <= 0 {
			return 0
		}
		return init.Offset / elemSize
	}
	max := -1
	for _, c := range init.Children {
		if i := maxIndexOf(c, elemSize); i > max {
			max = i
		}
	}
	return max
}

// finalizeAggregate expects items[*pos] to be an Open token for an
// aggregate target, or (for a scalar target nested one level too deep,
// which C permits via brace elision) a single Inner item.
func (f *Finalizer) finalizeAggregate(items []ParsedInitializer, pos *int, targetType *types.TypeRef, baseOffset int) *ast.Initializer {
	if *pos >= len(items) {
		return ast.NewListInitializer(nil)
	}

	if items[*pos].Kind != Open {
		// Brace elision: a bare scalar-shaped Inner feeding directly into
		// an aggregate slot (e.g. a single-element struct). An unbraced
		// string literal for a char array also lands here and becomes a
		// single leaf; it is not expanded per character.
		return f.finalizeScalar(items, pos, targetType, baseOffset)
	}
	*pos++ // consume Open

	if str := f.tryStringLiteralArray(items, pos, targetType, baseOffset); str != nil {
		return str
	}

	cur := newCursor(targetType, baseOffset)
	var children []*ast.Initializer

	for *pos < len(items) && items[*pos].Kind != Close {
		item := items[*pos]
		switch item.Kind {
		case Designator:
			cur.designate(item, f.engine)
			*pos++
		case Separator:
			cur.advance()
			*pos++
		case Open:
			slotType, offset := cur.currentSlot()
			children = append(children, f.finalizeAggregate(items, pos, slotType, offset))
		case Inner:
			slotType, offset := cur.currentSlot()
			children = append(children, f.finalizeLeaf(item, slotType, offset))
			*pos++
		default:
			*pos++
		}
	}
	if *pos < len(items) && items[*pos].Kind == Close {
		*pos++ // consume Close
	}
	return ast.NewListInitializer(children)
}

func (f *Finalizer) finalizeScalar(items []ParsedInitializer, pos *int, targetType *types.TypeRef, baseOffset int) *ast.Initializer {
	if *pos >= len(items) || items[*pos].Kind != Inner {
		return ast.NewListInitializer(nil)
	}
	item := items[*pos]
	*pos++
	return f.finalizeLeaf(item, targetType, baseOffset)
}

// finalizeLeaf emits a leaf initializer, casting the expression to
// slotType and enforcing the static-scope constant-expression rule.
func (f *Finalizer) finalizeLeaf(item ParsedInitializer, slotType *types.TypeRef, offset int) *ast.Initializer {
	expr := item.Expr
	if f.inStaticScope {
		if _, ok := consteval.Eval(expr); !ok {
			f.engine.Report(diag.ExpectedConstantExpression, item.Coords)
		}
	}
	if expr != nil && !types.TypesEqual(expr.ExprType(), slotType) {
		expr = ast.NewCast(item.Coords, slotType, expr, true)
	}
	leaf := ast.NewExpressionInitializer(slotType, offset, expr)
	leaf.State = ast.InitializerResolved
	return leaf
}

// tryStringLiteralArray implements §4.7's special case: when the target
// is an array of char and the whole brace body is exactly one
// string-literal Inner item, the literal is expanded
// character-by-character (one leaf per character plus a terminating
// NUL). Any other shape returns nil to fall through to the ordinary
// aggregate path.
func (f *Finalizer) tryStringLiteralArray(items []ParsedInitializer, pos *int, targetType *types.TypeRef, baseOffset int) *ast.Initializer {
	if targetType.Kind != types.KindArray || !isCharType(targetType.Element) {
		return nil
	}
	if *pos >= len(items) || items[*pos].Kind != Inner {
		return nil
	}
	lit, ok := items[*pos].Expr.(*ast.Const)
	if !ok || lit.Kind != ast.ConstString {
		return nil
	}
	// Confirm the brace body is exactly this one literal.
	if *pos+1 >= len(items) || items[*pos+1].Kind != Close {
		return nil
	}
	*pos++ // consume the literal
	*pos++ // consume Close

	elemSize := types.ComputeTypeSize(targetType.Element)
	children := make([]*ast.Initializer, 0, len(lit.Str)+1)
	for i := 0; i < len(lit.Str); i++ {
		ch := ast.NewConst(lit.Coords(), targetType.Element, ast.ConstInt)
		ch.Int = int64(lit.Str[i])
		children = append(children, ast.NewExpressionInitializer(targetType.Element, baseOffset+i*elemSize, ch))
	}
	nul := ast.NewConst(lit.Coords(), targetType.Element, ast.ConstInt)
	children = append(children, ast.NewExpressionInitializer(targetType.Element, baseOffset+len(lit.Str)*elemSize, nul))
	return ast.NewListInitializer(children)
}

func isCharType(t *types.TypeRef) bool {
	return t != nil && t.Kind == types.KindValue && (t.Desc.ID == types.S1 || t.Desc.ID == types.U1)
}
