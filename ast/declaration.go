package ast

import (
	"cfront/token"
	"cfront/types"
)

// ValueDeclarationKind distinguishes a plain variable from a function
// parameter (§3 "AstValueDeclaration").
type ValueDeclarationKind int

const (
	DeclVariable ValueDeclarationKind = iota
	DeclParameter
)

// ValueDeclaration is a variable or parameter declaration (§3
// "AstValueDeclaration"); Next threads sibling declarations from a
// single `int a, b, c;` so the parser can emit one DeclStmt for the
// whole comma-separated list without losing source order.
type ValueDeclaration struct {
	coords       token.Coordinates
	Kind         ValueDeclarationKind
	Type         *types.TypeRef
	Name         string
	Index        int // ordinal position among sibling parameters/locals
	Flags        types.Qualifiers
	Initializer  *Initializer // nil if absent
	Symbol       any          // *scope.Symbol
	Next         *ValueDeclaration
}

func (d *ValueDeclaration) Coords() token.Coordinates { return d.coords }

func NewValueDeclaration(coords token.Coordinates, kind ValueDeclarationKind, t *types.TypeRef, name string, index int, flags types.Qualifiers) *ValueDeclaration {
	return &ValueDeclaration{coords: coords, Kind: kind, Type: t, Name: name, Index: index, Flags: flags}
}

// FunctionDeclaration is a function prototype or definition. Body is
// nil for a prototype (mirrors src/sema.c's declareFunctionSymbol and
// the function-definition-vs-declaration distinction in §4.5).
type FunctionDeclaration struct {
	coords     token.Coordinates
	Name       string
	Type       *types.TypeRef // KindFunction
	Parameters []*ValueDeclaration
	Body       *Block // nil for a declaration-only prototype
	Symbol     any    // *scope.Symbol
	VaAreaSize int    // spilled register-argument area for variadic definitions; 0 otherwise
}

func (d *FunctionDeclaration) Coords() token.Coordinates { return d.coords }

func NewFunctionDeclaration(coords token.Coordinates, name string, t *types.TypeRef, params []*ValueDeclaration) *FunctionDeclaration {
	return &FunctionDeclaration{coords: coords, Name: name, Type: t, Parameters: params}
}

// TopLevelDeclaration is either a *FunctionDeclaration or a
// *ValueDeclaration (a file-scope variable); kept as an interface
// rather than a third tagged-union struct since both already carry
// Coords and the two concrete shapes never need to be told apart
// beyond a type switch in the renderer/IR builder.
type TopLevelDeclaration interface {
	Coords() token.Coordinates
}

// File is one translation unit's parsed, finalized result (§3 "control
// flow: ... → finalized AST + type-definition list").
type File struct {
	Name         string
	Declarations []TopLevelDeclaration
	Types        []*types.TypeDefinition
}

func NewFile(name string) *File {
	return &File{Name: name}
}
