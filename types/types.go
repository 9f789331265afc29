// Package types implements the type system (§4.3): construction,
// structural equality/compatibility, size and alignment computation, and
// castability classification for the C-like type references the parser
// and semantic analyzer build.
//
// Grounded on include/sema.h's TypeRef/TypeDesc/Symbol shapes (makeTypeRef,
// makePointedType, makeArrayType, computeTypeSize) and on src/sema.c's
// (stubbed) typesEquals — generalized here into the real structural
// equality the Open Question in spec §9 calls for.
package types

import "fmt"

// UnknownSize marks an incomplete array awaiting initializer-inferred
// completion (§3 "Array").
const UnknownSize = -1

// PointerSize is the width in bytes of a pointer or function value on the
// target this front end assumes (§4.3).
const PointerSize = 8

// TypeID names a primitive or aggregate category (§3 "TypeDesc").
type TypeID int

const (
	Void TypeID = iota
	Bool
	S1
	S2
	S4
	S8
	U1
	U2
	U4
	U8
	F4
	F8
	F10
	Struct
	Union
	Enum
	ErrorID
)

func (t TypeID) String() string {
	names := [...]string{"void", "bool", "s1", "s2", "s4", "s8", "u1", "u2", "u4", "u8", "f4", "f8", "f10", "struct", "union", "enum", "error"}
	if int(t) < len(names) {
		return names[t]
	}
	return "?"
}

// IsInteger reports whether id is one of the signed/unsigned integer or
// bool kinds.
func (t TypeID) IsInteger() bool {
	switch t {
	case Bool, S1, S2, S4, S8, U1, U2, U4, U8:
		return true
	}
	return false
}

// IsSigned reports whether id is one of the signed integer kinds.
func (t TypeID) IsSigned() bool {
	switch t {
	case S1, S2, S4, S8:
		return true
	}
	return false
}

// IsFloat reports whether id is one of the floating kinds.
func (t TypeID) IsFloat() bool {
	switch t {
	case F4, F8, F10:
		return true
	}
	return false
}

// primitiveSizes gives the storage size in bytes of each scalar TypeID;
// aggregates (Struct/Union/Enum) look their size up on the TypeDefinition
// instead.
var primitiveSizes = map[TypeID]int{
	Void: 0, Bool: 1,
	S1: 1, S2: 2, S4: 4, S8: 8,
	U1: 1, U2: 2, U4: 4, U8: 8,
	F4: 4, F8: 8, F10: 10,
	ErrorID: 0,
}

// TypeDesc is the base descriptor a Value TypeRef wraps (§3 "TypeDesc"):
// a primitive or a named reference to an aggregate TypeDefinition.
type TypeDesc struct {
	ID         TypeID
	Name       string
	Size       int
	Definition *TypeDefinition // non-nil for Struct/Union/Enum
}

// Primitive type descriptors, built once; the one unavoidable global-like
// table the design notes (§9) call out as acceptable, since it is
// immutable and initialized at startup.
var primitives = func() map[TypeID]*TypeDesc {
	m := make(map[TypeID]*TypeDesc)
	for id, size := range primitiveSizes {
		m[id] = &TypeDesc{ID: id, Name: id.String(), Size: size}
	}
	return m
}()

// Primitive returns the shared descriptor for a scalar TypeID.
func Primitive(id TypeID) *TypeDesc {
	if d, ok := primitives[id]; ok {
		return d
	}
	panic(fmt.Sprintf("types: %v is not a primitive TypeID", id))
}

// DefinitionKind distinguishes the three named-aggregate shapes a
// TypeDefinition can take.
type DefinitionKind int

const (
	KindStruct DefinitionKind = iota
	KindUnion
	KindEnum
)

// TypeDefinition is a named struct/union/enum's body (§3 "TypeDefinition").
type TypeDefinition struct {
	Kind        DefinitionKind
	Name        string
	Members     *StructuralMember // struct/union: head of the member chain
	Enumerators []Enumerator      // enum only
	Align       int
	Size        int
	IsDefined   bool // false for a forward declaration awaiting its body
	IsFlexible  bool // true iff the last member is a flexible array member
}

// Enumerator is one `NAME = value` entry of an enum definition.
type Enumerator struct {
	Name  string
	Value int64
}

// StructuralMember is one link in a struct or union's member chain (§3).
// Anonymous nested aggregates' members are spliced into the enclosing
// scope; Parent records that relationship so member lookup (§4.6
// compute_member) can walk through it transparently.
type StructuralMember struct {
	Name       string
	Type       *TypeRef
	Offset     int
	Parent     *StructuralMember // non-nil iff this member came from an anonymous nested aggregate
	IsFlexible bool
	Next       *StructuralMember
}

// Qualifiers carries the const/volatile/restrict/storage-class bits a
// Value TypeRef wraps around its descriptor (§3 "Value(descriptor)").
type Qualifiers uint16

const (
	QConst Qualifiers = 1 << iota
	QVolatile
	QRestrict
	SCTypedef
	SCStatic
	SCExtern
	SCAuto
	SCRegister
)

func (q Qualifiers) Has(f Qualifiers) bool { return q&f != 0 }

// StripTopLevel returns q with only the type-qualifier bits cleared,
// leaving storage-class bits untouched; used before structural equality
// comparisons (§4.3 "after stripping top-level qualifiers").
func (q Qualifiers) StripTopLevel() Qualifiers {
	return q &^ (QConst | QVolatile | QRestrict)
}

// Kind distinguishes the TypeRef tagged-variant cases (§3 "TypeRef").
type Kind int

const (
	KindValue Kind = iota
	KindPointed
	KindArray
	KindVLA
	KindFunction
	KindBitfield
	KindErrorType
)

// VLASizeExpr is the minimal hook a VLA's runtime size expression needs:
// types cannot import ast (ast imports types), so the size expression and
// its synthesized hidden local are carried as opaque handles the owner
// (ast/sema) knows how to interpret.
type VLASizeExpr struct {
	Expr   any    // an ast.Expression, opaque here to avoid an import cycle
	Symbol string // name of the synthesized hidden local holding the size
}

// TypeRef is the tagged variant every expression, declarator and member
// type resolves to (§3 "TypeRef").
type TypeRef struct {
	Kind Kind

	// KindValue
	Desc  *TypeDesc
	Quals Qualifiers

	// KindPointed
	Pointee *TypeRef

	// KindArray / KindVLA
	Element *TypeRef
	Size    int // KindArray: element count, or UnknownSize
	VLA     VLASizeExpr

	// KindFunction
	Return      *TypeRef
	Params      []*TypeRef
	IsVariadic  bool

	// KindBitfield
	Storage *TypeDesc
	BitOffset int
	Width     int
}

// Value constructs a KindValue TypeRef wrapping a primitive or aggregate
// descriptor plus qualifier flags (mirrors makePrimitiveType/makeBasicType).
func Value(desc *TypeDesc, quals Qualifiers) *TypeRef {
	return &TypeRef{Kind: KindValue, Desc: desc, Quals: quals}
}

// Pointed constructs a pointer-to type (mirrors makePointedType).
func Pointed(pointee *TypeRef, quals Qualifiers) *TypeRef {
	return &TypeRef{Kind: KindPointed, Pointee: pointee, Quals: quals}
}

// Array constructs a constant-sized (or UnknownSize, incomplete) array type
// (mirrors makeArrayType).
func Array(element *TypeRef, size int) *TypeRef {
	return &TypeRef{Kind: KindArray, Element: element, Size: size}
}

// VLAType constructs a runtime-sized array type whose size is computed by
// sizeExpr and materialized into the hidden local named by symbol.
func VLAType(element *TypeRef, sizeExpr any, symbol string) *TypeRef {
	return &TypeRef{Kind: KindVLA, Element: element, VLA: VLASizeExpr{Expr: sizeExpr, Symbol: symbol}}
}

// Function constructs a function type (mirrors makeFunctionType).
func Function(ret *TypeRef, params []*TypeRef, variadic bool) *TypeRef {
	return &TypeRef{Kind: KindFunction, Return: ret, Params: params, IsVariadic: variadic}
}

// Bitfield constructs a bit-field member's type (mirrors makeBitFieldType).
func Bitfield(storage *TypeDesc, bitOffset, width int) *TypeRef {
	return &TypeRef{Kind: KindBitfield, Storage: storage, BitOffset: bitOffset, Width: width}
}

// Error is the sentinel type used to suppress cascaded diagnostics
// (mirrors makeErrorRef); it is a shared singleton since it carries no
// payload.
var errorSingleton = &TypeRef{Kind: KindErrorType}

func Error() *TypeRef { return errorSingleton }

// IsError reports whether t is the Error sentinel (possibly through one
// level of pointer/array wrapping is intentionally NOT followed: callers
// check the exact node that failed).
func IsError(t *TypeRef) bool { return t != nil && t.Kind == KindErrorType }

// IsVoid reports whether t is the unqualified void value type.
func IsVoid(t *TypeRef) bool {
	return t != nil && t.Kind == KindValue && t.Desc != nil && t.Desc.ID == Void
}

// IsIntegerType reports whether t (after stripping Bitfield to its storage
// type) names an integer TypeID.
func IsIntegerType(t *TypeRef) bool {
	base := Underlying(t)
	return base != nil && base.Kind == KindValue && base.Desc != nil && base.Desc.ID.IsInteger()
}

// Underlying resolves a Bitfield TypeRef to its storage-type Value
// TypeRef; every other kind is returned unchanged.
func Underlying(t *TypeRef) *TypeRef {
	if t != nil && t.Kind == KindBitfield {
		return Value(t.Storage, 0)
	}
	return t
}
