package ast

import "cfront/types"

// InitializerState tracks bookkeeping the finalizer (package initializer)
// attaches to a leaf during flattening: whether the slot's expression
// still needs constant folding for a static-scope initializer, or has
// already been resolved (§4.7 "static-scope initializers require a
// constant expression").
type InitializerState int

const (
	InitializerPending InitializerState = iota
	InitializerResolved
)

// InitializerKind tags the two AstInitializer shapes (§3
// "AstInitializer (post-finalization)").
type InitializerKind int

const (
	InitializerExpression InitializerKind = iota
	InitializerList
)

// Initializer is the finalized, offset-indexed initializer tree the
// package initializer's finalizer produces from a raw designator
// stream (§4.7).
type Initializer struct {
	Kind InitializerKind

	// InitializerExpression
	SlotType   *types.TypeRef
	Offset     int
	Expression Expression
	State      InitializerState

	// InitializerList
	Children []*Initializer
}

// NewExpressionInitializer builds a leaf initializer targeting a
// precise byte offset within the top-level object.
func NewExpressionInitializer(slotType *types.TypeRef, offset int, expr Expression) *Initializer {
	return &Initializer{Kind: InitializerExpression, SlotType: slotType, Offset: offset, Expression: expr}
}

// NewListInitializer builds an interior node grouping sub-object
// initializers (one per struct member or array element).
func NewListInitializer(children []*Initializer) *Initializer {
	return &Initializer{Kind: InitializerList, Children: children}
}
