package types

// ComputeTypeSize implements §4.3 compute_type_size(type).
func ComputeTypeSize(t *TypeRef) int {
	if t == nil {
		return 0
	}
	switch t.Kind {
	case KindValue:
		if t.Desc.ID == Struct || t.Desc.ID == Union || t.Desc.ID == Enum {
			if t.Desc.Definition != nil {
				return t.Desc.Definition.Size
			}
			return UnknownSize
		}
		return t.Desc.Size
	case KindPointed, KindFunction:
		return PointerSize
	case KindArray:
		if t.Size == UnknownSize {
			return UnknownSize
		}
		elemSize := ComputeTypeSize(t.Element)
		if elemSize == UnknownSize {
			return UnknownSize
		}
		return t.Size * elemSize
	case KindVLA:
		return UnknownSize
	case KindBitfield:
		return t.Storage.Size
	case KindErrorType:
		return 0
	}
	return 0
}

// Alignment implements §4.3 type_alignment(type): the natural alignment,
// with aggregates taking the maximum of their members' alignments
// (minimum 1).
func Alignment(t *TypeRef) int {
	if t == nil {
		return 1
	}
	switch t.Kind {
	case KindValue:
		if t.Desc.ID == Struct || t.Desc.ID == Union {
			if t.Desc.Definition != nil && t.Desc.Definition.Align > 0 {
				return t.Desc.Definition.Align
			}
			return 1
		}
		if t.Desc.Size == 0 {
			return 1
		}
		return t.Desc.Size
	case KindPointed, KindFunction:
		return PointerSize
	case KindArray, KindVLA:
		return Alignment(t.Element)
	case KindBitfield:
		return t.Storage.Size
	default:
		return 1
	}
}

// AlignMemberOffset implements §4.3 align_member_offset(type, offset).
func AlignMemberOffset(t *TypeRef, offset int) int {
	align := Alignment(t)
	if align <= 1 {
		return offset
	}
	return roundUp(offset, align)
}

func roundUp(n, align int) int {
	if align <= 1 {
		return n
	}
	return (n + align - 1) / align * align
}

// bitfieldStorageWidths is the set of byte widths adjust_bitfield_storage
// may choose from (§4.5).
var bitfieldStorageWidths = []int{1, 2, 4, 8}

// storageDescForWidth returns the shared unsigned-or-signed primitive
// TypeDesc covering a bit-field chain of the given byte width (§3
// "storage type is signed-or-unsigned chosen uniformly within the chain").
func storageDescForWidth(width int, signed bool) *TypeDesc {
	var id TypeID
	switch width {
	case 1:
		id = pick(signed, S1, U1)
	case 2:
		id = pick(signed, S2, U2)
	case 4:
		id = pick(signed, S4, U4)
	default:
		id = pick(signed, S8, U8)
	}
	return Primitive(id)
}

func pick(signed bool, s, u TypeID) TypeID {
	if signed {
		return s
	}
	return u
}

// BitfieldMember is one pending entry of an in-progress bit-field chain,
// collected by LayoutBuilder until a non-bit-field member appears or the
// chain's total width would exceed 64 bits (§4.5).
type BitfieldMember struct {
	Name   string
	Width  int
	Signed bool
}

// AdjustBitfieldStorage implements §4.5 adjust_bitfield_storage(chain,
// width, offset): picks a storage size in {1,2,4,8} bytes covering the
// chain's total bit width, aligns offset to that size, and returns each
// member's (offset, bit_offset) plus the shared storage descriptor.
//
// A zero-width member in chain closes the chain at that point without
// itself becoming part of the storage (callers must not pass it here;
// LayoutBuilder.AddBitfield flushes the chain instead of appending it).
func AdjustBitfieldStorage(chain []BitfieldMember, offset int) (storage *TypeDesc, members []*StructuralMember, newOffset int) {
	totalBits := 0
	signed := false
	for i, m := range chain {
		totalBits += m.Width
		if i == 0 {
			signed = m.Signed
		}
	}
	byteWidth := 8
	for _, w := range bitfieldStorageWidths {
		if w*8 >= totalBits {
			byteWidth = w
			break
		}
	}
	storage = storageDescForWidth(byteWidth, signed)
	alignedOffset := roundUp(offset, byteWidth)

	bitCursor := 0
	out := make([]*StructuralMember, 0, len(chain))
	for _, m := range chain {
		out = append(out, &StructuralMember{
			Name: m.Name,
			Type: Bitfield(storage, bitCursor, m.Width),
			Offset: alignedOffset,
		})
		bitCursor += m.Width
	}
	return storage, out, alignedOffset + byteWidth
}

// LayoutBuilder incrementally lays out a struct or union's members in
// declaration order (§4.5 "Struct member layout"). For unions every
// non-bit-field member is placed at offset 0 (multiplier 0); for structs
// members are laid out consecutively (multiplier 1).
type LayoutBuilder struct {
	isUnion bool
	offset  int
	maxSize int
	align   int
	head    *StructuralMember
	tail    *StructuralMember
	pendingBitfield []BitfieldMember
	chainOffsetBase int
}

// NewLayoutBuilder starts a fresh layout for a struct (isUnion=false) or
// union (isUnion=true).
func NewLayoutBuilder(isUnion bool) *LayoutBuilder {
	return &LayoutBuilder{isUnion: isUnion, align: 1}
}

// AddMember appends a plain (non-bit-field) member, flushing any
// in-progress bit-field chain first.
func (b *LayoutBuilder) AddMember(name string, t *TypeRef, parent *StructuralMember) *StructuralMember {
	b.flushBitfields()

	align := Alignment(t)
	if align > b.align {
		b.align = align
	}

	offset := 0
	if !b.isUnion {
		offset = AlignMemberOffset(t, b.offset)
	}

	m := &StructuralMember{Name: name, Type: t, Offset: offset, Parent: parent}
	b.append(m)

	size := ComputeTypeSize(t)
	if !b.isUnion {
		if size == UnknownSize {
			size = 0 // flexible array member; does not advance offset
		}
		b.offset = offset + size
	}
	if offset+size > b.maxSize {
		b.maxSize = offset + size
	}
	return m
}

// AddBitfield appends a bit-field member to the in-progress chain. The
// chain is flushed (storage finalized, §4.5 adjust_bitfield_storage)
// once a non-bit-field member follows, the chain is closed by a
// zero-width member, the new member would take the chain past 64 bits
// (it then starts a fresh chain), or Finish is called.
func (b *LayoutBuilder) AddBitfield(name string, width int, signed bool) {
	if width == 0 {
		// A zero-width bit-field closes the chain without adding a member.
		b.flushBitfields()
		return
	}
	pending := 0
	for _, m := range b.pendingBitfield {
		pending += m.Width
	}
	if pending+width > 64 {
		b.flushBitfields()
	}
	if len(b.pendingBitfield) == 0 {
		b.chainOffsetBase = b.offset
	}
	b.pendingBitfield = append(b.pendingBitfield, BitfieldMember{Name: name, Width: width, Signed: signed})
}

func (b *LayoutBuilder) flushBitfields() {
	if len(b.pendingBitfield) == 0 {
		return
	}
	base := b.chainOffsetBase
	if b.isUnion {
		base = 0
	}
	storage, members, newOffset := AdjustBitfieldStorage(b.pendingBitfield, base)
	for _, m := range members {
		b.append(m)
	}
	if storage.Size > b.align {
		b.align = storage.Size
	}
	if b.isUnion {
		if storage.Size > b.maxSize {
			b.maxSize = storage.Size
		}
	} else {
		b.offset = newOffset
		if newOffset > b.maxSize {
			b.maxSize = newOffset
		}
	}
	b.pendingBitfield = nil
}

func (b *LayoutBuilder) append(m *StructuralMember) {
	if b.head == nil {
		b.head = m
	} else {
		b.tail.Next = m
	}
	b.tail = m
}

// Finish flushes any pending bit-field chain and returns the completed
// member chain, overall size (rounded up to the alignment) and alignment.
func (b *LayoutBuilder) Finish() (head *StructuralMember, size int, align int) {
	b.flushBitfields()
	if b.align == 0 {
		b.align = 1
	}
	size = roundUp(b.maxSize, b.align)
	return b.head, size, b.align
}
