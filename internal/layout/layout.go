// Package layout defines the window's in-segment binary format.
//
// Every structure in a window is located by byte offsets stored inside
// the region itself, never by native pointers, so the same byte image
// stays valid when it is mapped at a different base address in another
// process. The fixed part of the format is:
//
//	[0, 4)              row count (uint32, native-endian of the producer)
//	[4, 8)              column count (uint32)
//	[8, 8+ChunkSize)    first row-slot chunk
//
// Everything else (further chunks, field directories, byte runs) is
// placed by the arena allocator and found purely through stored offsets.
package layout

import (
	"encoding/binary"
	"errors"
	"math"
)

const (
	// HeaderSize is the fixed window header: row count and column count.
	HeaderSize = 8

	rowCountOffset    = 0
	columnCountOffset = 4

	// RowsPerChunk is the number of row slots per chunk.
	RowsPerChunk = 100

	// ChunkSize is the byte size of one row-slot chunk: RowsPerChunk
	// uint32 field-directory offsets plus one trailing next-chunk offset.
	ChunkSize = RowsPerChunk*4 + 4

	// FirstChunkOffset is where the first chunk lives, immediately after
	// the header.
	FirstChunkOffset = HeaderSize

	// ArenaBase is the free offset of an empty window: everything past
	// the header and the first chunk belongs to the arena.
	ArenaBase = FirstChunkOffset + ChunkSize

	// FieldSlotSize is the byte size of one typed cell slot.
	FieldSlotSize = 16

	// ChunkAlign is the alignment of chunks and field directories; byte
	// runs are unaligned.
	ChunkAlign = 4
)

// Field slot type tags. The tag is the sole authority for how the
// payload bytes are interpreted.
const (
	TagNull uint32 = iota
	TagInteger
	TagFloat
	TagText
	TagBlob
)

var (
	// ErrOutOfBounds is returned when a byte range does not fit the
	// region's current capacity.
	ErrOutOfBounds = errors.New("layout: byte range out of bounds")
)

// byteOrder is the order the producing host writes multi-byte values
// with. The window is shared within one machine, so the consumer
// decodes with the same convention.
var byteOrder = binary.NativeEndian

// Region is a bounds-checked view over the window's byte range.
//
// The backing slice spans the segment's full maximum capacity; cap is
// the currently usable prefix, and every access is validated against it
// before any byte is touched. Data from another process is never
// trusted to be in bounds.
type Region struct {
	buf []byte
	cap uint32
}

// NewRegion creates a region over buf with cap usable bytes.
func NewRegion(buf []byte, cap uint32) *Region {
	if uint64(cap) > uint64(len(buf)) {
		cap = uint32(len(buf))
	}
	return &Region{buf: buf, cap: cap}
}

// SetCap raises or lowers the usable prefix, clamped to the backing slice.
func (r *Region) SetCap(cap uint32) {
	if uint64(cap) > uint64(len(r.buf)) {
		cap = uint32(len(r.buf))
	}
	r.cap = cap
}

// Cap returns the usable capacity in bytes.
func (r *Region) Cap() uint32 { return r.cap }

// Buf returns the full backing slice.
func (r *Region) Buf() []byte { return r.buf }

// check validates that [off, off+n) lies inside the usable capacity.
func (r *Region) check(off, n uint32) error {
	if uint64(off)+uint64(n) > uint64(r.cap) {
		return ErrOutOfBounds
	}
	return nil
}

// Uint32 reads a uint32 at off.
func (r *Region) Uint32(off uint32) (uint32, error) {
	if err := r.check(off, 4); err != nil {
		return 0, err
	}
	return byteOrder.Uint32(r.buf[off:]), nil
}

// PutUint32 writes v at off.
func (r *Region) PutUint32(off, v uint32) error {
	if err := r.check(off, 4); err != nil {
		return err
	}
	byteOrder.PutUint32(r.buf[off:], v)
	return nil
}

// Uint64 reads a uint64 at off. The offset may be unaligned.
func (r *Region) Uint64(off uint32) (uint64, error) {
	if err := r.check(off, 8); err != nil {
		return 0, err
	}
	return byteOrder.Uint64(r.buf[off:]), nil
}

// PutUint64 writes v at off. The offset may be unaligned.
func (r *Region) PutUint64(off uint32, v uint64) error {
	if err := r.check(off, 8); err != nil {
		return err
	}
	byteOrder.PutUint64(r.buf[off:], v)
	return nil
}

// CopyIn copies b into the region at off.
func (r *Region) CopyIn(off uint32, b []byte) error {
	if uint64(len(b)) > math.MaxUint32 {
		return ErrOutOfBounds
	}
	if err := r.check(off, uint32(len(b))); err != nil {
		return err
	}
	copy(r.buf[off:], b)
	return nil
}

// CopyOut returns a copy of the n bytes at off.
func (r *Region) CopyOut(off, n uint32) ([]byte, error) {
	if err := r.check(off, n); err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, r.buf[off:])
	return out, nil
}

// Zero clears the n bytes at off.
func (r *Region) Zero(off, n uint32) error {
	if err := r.check(off, n); err != nil {
		return err
	}
	clear(r.buf[off : off+n])
	return nil
}

// RowCount reads the header's row count.
func (r *Region) RowCount() (uint32, error) {
	return r.Uint32(rowCountOffset)
}

// SetRowCount writes the header's row count.
func (r *Region) SetRowCount(n uint32) error {
	return r.PutUint32(rowCountOffset, n)
}

// ColumnCount reads the header's column count.
func (r *Region) ColumnCount() (uint32, error) {
	return r.Uint32(columnCountOffset)
}

// SetColumnCount writes the header's column count.
func (r *Region) SetColumnCount(n uint32) error {
	return r.PutUint32(columnCountOffset, n)
}

// FieldSlot is the decoded form of one typed cell slot:
//
//	[0, 4)    type tag (uint32)
//	[4, 12)   inline 8-byte value, or data offset [4,8) + length [8,12)
//	[12, 16)  reserved, zero
//
// Both payload views are decoded; the tag and the window's storage mode
// decide which one is meaningful.
type FieldSlot struct {
	Tag        uint32
	Inline     uint64
	DataOffset uint32
	DataLength uint32
}

// FieldSlot decodes the slot at off.
func (r *Region) FieldSlot(off uint32) (FieldSlot, error) {
	if err := r.check(off, FieldSlotSize); err != nil {
		return FieldSlot{}, err
	}
	b := r.buf[off:]
	return FieldSlot{
		Tag:        byteOrder.Uint32(b),
		Inline:     byteOrder.Uint64(b[4:]),
		DataOffset: byteOrder.Uint32(b[4:]),
		DataLength: byteOrder.Uint32(b[8:]),
	}, nil
}

// PutInlineSlot writes a slot carrying an inline 8-byte payload.
func (r *Region) PutInlineSlot(off, tag uint32, v uint64) error {
	if err := r.check(off, FieldSlotSize); err != nil {
		return err
	}
	b := r.buf[off:]
	byteOrder.PutUint32(b, tag)
	byteOrder.PutUint64(b[4:], v)
	byteOrder.PutUint32(b[12:], 0)
	return nil
}

// PutRefSlot writes a slot referencing a byte run elsewhere in the window.
func (r *Region) PutRefSlot(off, tag, dataOff, dataLen uint32) error {
	if err := r.check(off, FieldSlotSize); err != nil {
		return err
	}
	b := r.buf[off:]
	byteOrder.PutUint32(b, tag)
	byteOrder.PutUint32(b[4:], dataOff)
	byteOrder.PutUint32(b[8:], dataLen)
	byteOrder.PutUint32(b[12:], 0)
	return nil
}
