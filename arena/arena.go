// Package arena implements bump allocation for the pools the front end
// needs during the compilation of one translation unit: tokens, AST nodes,
// types, strings, diagnostics and IR entities.
//
// Individual allocations are never freed; an entire Arena is released at
// once when the translation unit is done. This mirrors the original
// compiler's areanAllocate/Arena design (see ParserContext.memory in
// include/parser.h), ported from chunked C buffers to chunked Go slices.
package arena

import "fmt"

const defaultChunkSize = 64 * 1024

// Arena is a named bump allocator: a linked list of chunks, each handed out
// byte ranges from a monotonically increasing offset.
type Arena struct {
	name       string
	chunkSize  int
	chunks     []*chunk
	allocCount int
	allocBytes int
}

type chunk struct {
	buf    []byte
	offset int
}

// New creates an Arena with the given name, used only for diagnostics and
// Stats() rendering (see Set.OccupancyReport, driven by the
// memory_statistics option in §6).
func New(name string) *Arena {
	return &Arena{name: name, chunkSize: defaultChunkSize}
}

// Name returns the arena's identifying label, e.g. "token", "ast", "type".
func (a *Arena) Name() string { return a.name }

// Reserve returns n bytes aligned to align (which must be a power of two),
// allocated from the arena's current chunk, growing it if necessary.
//
// align should be the alignment requirement of the largest primitive field
// in the value being stored (typically 8 on 64-bit targets); callers that
// store only pointers/ints can simply pass 8.
func (a *Arena) Reserve(n int, align int) []byte {
	if align <= 0 {
		align = 1
	}
	if len(a.chunks) == 0 {
		a.growFor(n, align)
	}
	c := a.chunks[len(a.chunks)-1]
	start := alignUp(c.offset, align)
	if start+n > len(c.buf) {
		a.growFor(n, align)
		c = a.chunks[len(a.chunks)-1]
		start = alignUp(c.offset, align)
	}
	c.offset = start + n
	a.allocCount++
	a.allocBytes += n
	return c.buf[start : start+n]
}

func (a *Arena) growFor(n int, align int) {
	size := a.chunkSize
	if n+align > size {
		size = n + align
	}
	a.chunks = append(a.chunks, &chunk{buf: make([]byte, size)})
}

func alignUp(offset int, align int) int {
	return (offset + align - 1) &^ (align - 1)
}

// Release drops every chunk held by the arena, making it eligible for
// garbage collection. It does not need to be called for correctness (the
// arena itself becomes unreachable when the translation unit's
// ParserContext does); calling it frees the chunks before that point.
// Nothing in this repository calls it.
func (a *Arena) Release() {
	a.chunks = nil
	a.allocCount = 0
	a.allocBytes = 0
}

// Stats reports the arena's occupancy, surfaced by the memory_statistics
// option (§6).
type Stats struct {
	Name       string
	Chunks     int
	AllocCount int
	AllocBytes int
	ChunkBytes int
}

func (a *Arena) Stats() Stats {
	chunkBytes := 0
	for _, c := range a.chunks {
		chunkBytes += len(c.buf)
	}
	return Stats{
		Name:       a.name,
		Chunks:     len(a.chunks),
		AllocCount: a.allocCount,
		AllocBytes: a.allocBytes,
		ChunkBytes: chunkBytes,
	}
}

func (s Stats) String() string {
	return fmt.Sprintf("%-12s chunks=%-3d allocs=%-6d live=%d/%d bytes", s.Name, s.Chunks, s.AllocCount, s.AllocBytes, s.ChunkBytes)
}

// Set bundles the named arenas a ParserContext owns: token, AST, type,
// string, diagnostic and IR pools (see ParserContext.memory in the
// original include/parser.h).
type Set struct {
	Token      *Arena
	AST        *Arena
	Type       *Arena
	String     *Arena
	Diagnostic *Arena
	IR         *Arena
}

// NewSet constructs the six named arenas a ParserContext needs.
func NewSet() *Set {
	return &Set{
		Token:      New("token"),
		AST:        New("ast"),
		Type:       New("type"),
		String:     New("string"),
		Diagnostic: New("diagnostic"),
		IR:         New("ir"),
	}
}

// OccupancyReport renders every arena's Stats, one per line, in a fixed
// order; used by the memory_statistics option (§6).
func (s *Set) OccupancyReport() string {
	out := ""
	for _, a := range []*Arena{s.Token, s.AST, s.Type, s.String, s.Diagnostic, s.IR} {
		out += a.Stats().String() + "\n"
	}
	return out
}

// InternString copies s into the Arena's string pool and returns a Go
// string backed by that arena-owned memory, so the garbage collector does
// not need to track one allocation per identifier/literal.
func (a *Arena) InternString(s string) string {
	buf := a.Reserve(len(s), 1)
	copy(buf, s)
	return string(buf)
}
