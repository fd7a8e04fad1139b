package rowwin

import (
	"fmt"

	"github.com/hupe1980/rowwin/internal/arena"
	"github.com/hupe1980/rowwin/internal/layout"
	"github.com/hupe1980/rowwin/segment"
)

// Window is a fixed-capacity, relocatable row-store over a backing
// segment: a two-dimensional table of typed cells addressed by
// (row, column). Every internal reference is a byte offset stored
// inside the region itself, so the same byte image stays valid when it
// is mapped at a different base address in another process.
//
// A window follows a single-writer-then-freeze discipline: one writer
// builds it (Clear, SetColumnCount, AllocRow, Put*), then the image is
// shared and any number of readers call Get* concurrently. A writer
// mutating a window that is already shared is a usage error the data
// structure does not detect; the handoff point belongs to whoever
// transports the segment.
type Window struct {
	seg      segment.Segment
	reg      *layout.Region
	arena    *arena.Arena
	inline   bool
	readOnly bool
}

// New creates an empty window over seg. The segment must be writable
// and large enough for the header and the first row-slot chunk.
func New(seg segment.Segment, opts ...Option) (*Window, error) {
	o := options{inlineNumerics: true}
	for _, opt := range opts {
		opt(&o)
	}

	maxCap := seg.MaxCap()
	if int64(maxCap) > maxSegmentBytes {
		return nil, fmt.Errorf("%w: segment of %d bytes exceeds 32-bit addressing", ErrOutOfBounds, maxCap)
	}
	if maxCap < layout.ArenaBase {
		return nil, fmt.Errorf("%w: segment of %d bytes cannot hold the header and first chunk", ErrOutOfSpace, maxCap)
	}

	initial := o.initialCapacity
	if initial == 0 || initial > uint32(maxCap) {
		initial = uint32(maxCap)
	}
	if initial < layout.ArenaBase {
		initial = layout.ArenaBase
	}

	w := &Window{
		seg:    seg,
		inline: o.inlineNumerics,
	}
	w.arena = arena.New(initial, uint32(maxCap), w.growAllowed)
	w.reg = layout.NewRegion(seg.Bytes(), initial)

	if err := w.Clear(); err != nil {
		return nil, err
	}
	return w, nil
}

// Open binds a window read-only to an already populated byte image,
// typically a segment produced by another process. Only the header is
// validated eagerly; corruption inside the image surfaces lazily as
// ErrCorruptSlot or ErrOutOfBounds from individual accesses.
//
// The storage-mode options used by the producer (WithInlineNumerics)
// must be passed again here; they are part of the image's format.
func Open(seg segment.Segment, opts ...Option) (*Window, error) {
	o := options{inlineNumerics: true}
	for _, opt := range opts {
		opt(&o)
	}

	size := seg.MaxCap()
	if int64(size) > maxSegmentBytes {
		return nil, fmt.Errorf("%w: image of %d bytes exceeds 32-bit addressing", ErrOutOfBounds, size)
	}
	if size < layout.ArenaBase {
		return nil, fmt.Errorf("%w: image of %d bytes cannot hold the header and first chunk", ErrOutOfBounds, size)
	}

	w := &Window{
		seg:      seg,
		inline:   o.inlineNumerics,
		readOnly: true,
	}
	// Readers never allocate: the arena starts exhausted.
	w.arena = arena.New(uint32(size), uint32(size), nil)
	w.arena.Reset(uint32(size))
	w.reg = layout.NewRegion(seg.Bytes(), uint32(size))

	return w, nil
}

// maxSegmentBytes is the largest region 32-bit offsets can address.
const maxSegmentBytes = int64(1<<32 - 1)

// growAllowed is the arena's growth gate: capacity may only be raised
// while at most one row has been committed. Past that point the writer
// is expected to have sized the window up front, and a mis-sized window
// fails fast instead of ballooning row after row.
func (w *Window) growAllowed() bool {
	n, err := w.reg.RowCount()
	return err == nil && n <= 1
}

// Clear empties the window: both counters go to zero, the first chunk's
// next link is cut, and the free offset returns to just past the first
// chunk. This is the only operation that reclaims arena space.
func (w *Window) Clear() error {
	if w.readOnly {
		return ErrReadOnly
	}
	if err := w.reg.SetRowCount(0); err != nil {
		return ErrOutOfBounds
	}
	if err := w.reg.SetColumnCount(0); err != nil {
		return ErrOutOfBounds
	}
	if err := w.reg.PutUint32(layout.FirstChunkOffset+layout.RowsPerChunk*4, 0); err != nil {
		return ErrOutOfBounds
	}
	w.arena.Reset(layout.ArenaBase)
	return nil
}

// SetColumnCount fixes the window's schema width. It must be called
// while the window holds no rows; afterwards the schema is frozen.
func (w *Window) SetColumnCount(n uint32) error {
	if w.readOnly {
		return ErrReadOnly
	}
	if w.RowCount() != 0 {
		return ErrSchemaFrozen
	}
	if err := w.reg.SetColumnCount(n); err != nil {
		return ErrOutOfBounds
	}
	return nil
}

// AllocRow appends a row and returns its index. The row's field
// directory is allocated zero-filled, one slot per column, so every
// cell starts out Null. On failure the row count is unchanged.
func (w *Window) AllocRow() (uint32, error) {
	if w.readOnly {
		return 0, ErrReadOnly
	}

	row := w.RowCount()
	chunkOff, err := w.chunkForRow(row, true)
	if err != nil {
		return 0, err
	}

	if err := w.reg.SetRowCount(row + 1); err != nil {
		return 0, ErrOutOfBounds
	}

	cols := w.ColumnCount()
	dirSize := uint64(cols) * layout.FieldSlotSize
	if dirSize > uint64(w.arena.MaxCap()) {
		w.reg.SetRowCount(row)
		return 0, ErrOutOfSpace
	}

	dirOff, err := w.arena.Alloc(uint32(dirSize), layout.ChunkAlign)
	if err != nil {
		// Roll back so the visible row count never names a
		// half-constructed row.
		w.reg.SetRowCount(row)
		return 0, ErrOutOfSpace
	}
	w.reg.SetCap(w.arena.Cap())

	if err := w.reg.Zero(dirOff, uint32(dirSize)); err != nil {
		w.reg.SetRowCount(row)
		return 0, ErrOutOfBounds
	}
	if err := w.reg.PutUint32(chunkOff+(row%layout.RowsPerChunk)*4, dirOff); err != nil {
		w.reg.SetRowCount(row)
		return 0, ErrOutOfBounds
	}

	return row, nil
}

// chunkForRow walks the chunk chain to the chunk holding row. With
// create set, a missing trailing chunk is allocated and linked; without
// it, a broken chain is reported as corruption.
func (w *Window) chunkForRow(row uint32, create bool) (uint32, error) {
	off := uint32(layout.FirstChunkOffset)
	for hops := row / layout.RowsPerChunk; hops > 0; hops-- {
		nextPos := off + layout.RowsPerChunk*4
		next, err := w.reg.Uint32(nextPos)
		if err != nil {
			return 0, ErrOutOfBounds
		}
		switch {
		case next == 0 && !create:
			return 0, ErrCorruptSlot
		case next == 0:
			newOff, err := w.arena.Alloc(layout.ChunkSize, layout.ChunkAlign)
			if err != nil {
				return 0, ErrOutOfSpace
			}
			w.reg.SetCap(w.arena.Cap())
			if err := w.reg.Zero(newOff, layout.ChunkSize); err != nil {
				return 0, ErrOutOfBounds
			}
			if err := w.reg.PutUint32(nextPos, newOff); err != nil {
				return 0, ErrOutOfBounds
			}
			next = newOff
		case next < layout.ArenaBase || uint64(next)+layout.ChunkSize > uint64(w.reg.Cap()):
			return 0, ErrCorruptSlot
		}
		off = next
	}
	return off, nil
}

// rowDirectory resolves row to its field directory offset.
func (w *Window) rowDirectory(row uint32) (uint32, error) {
	if row >= w.RowCount() {
		return 0, ErrIndexOutOfRange
	}
	chunkOff, err := w.chunkForRow(row, false)
	if err != nil {
		return 0, err
	}
	dirOff, err := w.reg.Uint32(chunkOff + (row%layout.RowsPerChunk)*4)
	if err != nil {
		return 0, ErrOutOfBounds
	}
	// 0 is the "unset" sentinel left by failed allocations; anything at
	// or past the capacity must never be dereferenced.
	if dirOff == 0 || uint64(dirOff) >= uint64(w.reg.Cap()) {
		return 0, ErrCorruptSlot
	}
	return dirOff, nil
}

// fieldSlotOffset resolves (row, column) to the cell slot's offset.
func (w *Window) fieldSlotOffset(row, col uint32) (uint32, error) {
	if col >= w.ColumnCount() {
		return 0, ErrIndexOutOfRange
	}
	dirOff, err := w.rowDirectory(row)
	if err != nil {
		return 0, err
	}
	slotOff := uint64(dirOff) + uint64(col)*layout.FieldSlotSize
	if slotOff+layout.FieldSlotSize > uint64(w.reg.Cap()) {
		return 0, ErrCorruptSlot
	}
	return uint32(slotOff), nil
}

// RowCount returns the number of committed rows.
func (w *Window) RowCount() uint32 {
	n, _ := w.reg.RowCount()
	return n
}

// ColumnCount returns the schema width.
func (w *Window) ColumnCount() uint32 {
	n, _ := w.reg.ColumnCount()
	return n
}

// Capacity returns the currently usable size of the region in bytes.
func (w *Window) Capacity() uint32 { return w.arena.Cap() }

// MaxCapacity returns the hard capacity ceiling in bytes.
func (w *Window) MaxCapacity() uint32 { return w.arena.MaxCap() }

// FreeSpace returns the bytes left before the current capacity.
func (w *Window) FreeSpace() uint32 { return w.arena.FreeSpace() }

// Stats returns the arena's usage metrics.
func (w *Window) Stats() arena.Stats { return w.arena.Stats() }

// Bytes returns the window's byte image up to the free offset. Once the
// build phase is over this is the relocatable image to hand to other
// processes; for a window bound with Open it is the full bound image.
func (w *Window) Bytes() []byte {
	return w.seg.Bytes()[:w.arena.FreeOffset()]
}

// Seal marks the end of the build phase and returns the length of the
// finished byte image. The window itself does not enforce immutability;
// sealing is the caller's handoff point, after which only Get* may be
// used.
func (w *Window) Seal() int {
	return int(w.arena.FreeOffset())
}
