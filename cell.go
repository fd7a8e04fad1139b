package rowwin

import (
	"math"

	"github.com/hupe1980/rowwin/internal/layout"
)

// CellType identifies what a cell holds. The stored type tag is the
// sole authority for how the cell's payload is interpreted; typed gets
// check it before touching any payload bytes.
type CellType uint32

const (
	Null CellType = iota
	Integer
	Float
	Text
	Blob
)

func (t CellType) String() string {
	switch t {
	case Null:
		return "null"
	case Integer:
		return "integer"
	case Float:
		return "float"
	case Text:
		return "text"
	case Blob:
		return "blob"
	default:
		return "invalid"
	}
}

// Type returns the type tag of the cell at (row, col).
func (w *Window) Type(row, col uint32) (CellType, error) {
	slot, err := w.fieldSlot(row, col)
	if err != nil {
		return Null, err
	}
	if slot.Tag > layout.TagBlob {
		return Null, ErrCorruptSlot
	}
	return CellType(slot.Tag), nil
}

// IsNull reports whether the cell at (row, col) holds Null.
func (w *Window) IsNull(row, col uint32) (bool, error) {
	slot, err := w.fieldSlot(row, col)
	if err != nil {
		return false, err
	}
	return slot.Tag == layout.TagNull, nil
}

// PutNull sets the cell at (row, col) to Null, discarding any previous
// contents. A byte run the cell referenced before is not reclaimed; the
// arena never frees individual allocations.
func (w *Window) PutNull(row, col uint32) error {
	if w.readOnly {
		return ErrReadOnly
	}
	off, err := w.fieldSlotOffset(row, col)
	if err != nil {
		return err
	}
	if err := w.reg.PutInlineSlot(off, layout.TagNull, 0); err != nil {
		return ErrOutOfBounds
	}
	return nil
}

// PutInt64 stores an integer cell at (row, col).
func (w *Window) PutInt64(row, col uint32, v int64) error {
	return w.putNumeric(row, col, layout.TagInteger, uint64(v))
}

// PutFloat64 stores a float cell at (row, col).
func (w *Window) PutFloat64(row, col uint32, v float64) error {
	return w.putNumeric(row, col, layout.TagFloat, math.Float64bits(v))
}

func (w *Window) putNumeric(row, col, tag uint32, bits uint64) error {
	if w.readOnly {
		return ErrReadOnly
	}
	off, err := w.fieldSlotOffset(row, col)
	if err != nil {
		return err
	}

	if w.inline {
		if err := w.reg.PutInlineSlot(off, tag, bits); err != nil {
			return ErrOutOfBounds
		}
		return nil
	}

	// Non-inline mode: the value lives in its own 8-byte run. Allocate
	// and fill it before the slot is touched, so a failed allocation
	// leaves the cell unmodified.
	dataOff, err := w.arena.Alloc(8, 1)
	if err != nil {
		return ErrOutOfSpace
	}
	w.reg.SetCap(w.arena.Cap())
	if err := w.reg.PutUint64(dataOff, bits); err != nil {
		return ErrOutOfBounds
	}
	if err := w.reg.PutRefSlot(off, tag, dataOff, 8); err != nil {
		return ErrOutOfBounds
	}
	return nil
}

// PutText stores a text cell at (row, col). The string is treated as a
// raw byte run; no encoding is implied.
func (w *Window) PutText(row, col uint32, s string) error {
	return w.putBytes(row, col, layout.TagText, []byte(s))
}

// PutBlob stores a blob cell at (row, col).
func (w *Window) PutBlob(row, col uint32, b []byte) error {
	return w.putBytes(row, col, layout.TagBlob, b)
}

func (w *Window) putBytes(row, col, tag uint32, b []byte) error {
	if w.readOnly {
		return ErrReadOnly
	}
	off, err := w.fieldSlotOffset(row, col)
	if err != nil {
		return err
	}
	if uint64(len(b)) > uint64(w.arena.MaxCap()) {
		return ErrOutOfSpace
	}

	dataOff, err := w.arena.Alloc(uint32(len(b)), 1)
	if err != nil {
		return ErrOutOfSpace
	}
	w.reg.SetCap(w.arena.Cap())
	if err := w.reg.CopyIn(dataOff, b); err != nil {
		return ErrOutOfBounds
	}
	if err := w.reg.PutRefSlot(off, tag, dataOff, uint32(len(b))); err != nil {
		return ErrOutOfBounds
	}
	return nil
}

// GetInt64 reads the integer cell at (row, col).
func (w *Window) GetInt64(row, col uint32) (int64, error) {
	bits, err := w.getNumeric(row, col, layout.TagInteger)
	if err != nil {
		return 0, err
	}
	return int64(bits), nil
}

// GetFloat64 reads the float cell at (row, col).
func (w *Window) GetFloat64(row, col uint32) (float64, error) {
	bits, err := w.getNumeric(row, col, layout.TagFloat)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(bits), nil
}

func (w *Window) getNumeric(row, col, tag uint32) (uint64, error) {
	slot, err := w.fieldSlot(row, col)
	if err != nil {
		return 0, err
	}
	if slot.Tag != tag {
		return 0, ErrTypeMismatch
	}

	if w.inline {
		return slot.Inline, nil
	}

	if slot.DataLength != 8 {
		return 0, ErrCorruptSlot
	}
	if err := w.checkRun(slot.DataOffset, slot.DataLength); err != nil {
		return 0, err
	}
	bits, err := w.reg.Uint64(slot.DataOffset)
	if err != nil {
		return 0, ErrOutOfBounds
	}
	return bits, nil
}

// GetText reads the text cell at (row, col). The bytes are copied out
// of the region.
func (w *Window) GetText(row, col uint32) (string, error) {
	b, err := w.getBytes(row, col, layout.TagText)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// GetBlob reads the blob cell at (row, col). The bytes are copied out
// of the region.
func (w *Window) GetBlob(row, col uint32) ([]byte, error) {
	return w.getBytes(row, col, layout.TagBlob)
}

func (w *Window) getBytes(row, col, tag uint32) ([]byte, error) {
	slot, err := w.fieldSlot(row, col)
	if err != nil {
		return nil, err
	}
	if slot.Tag != tag {
		return nil, ErrTypeMismatch
	}
	if err := w.checkRun(slot.DataOffset, slot.DataLength); err != nil {
		return nil, err
	}
	b, err := w.reg.CopyOut(slot.DataOffset, slot.DataLength)
	if err != nil {
		return nil, ErrOutOfBounds
	}
	return b, nil
}

// fieldSlot resolves and decodes the slot at (row, col).
func (w *Window) fieldSlot(row, col uint32) (layout.FieldSlot, error) {
	off, err := w.fieldSlotOffset(row, col)
	if err != nil {
		return layout.FieldSlot{}, err
	}
	slot, err := w.reg.FieldSlot(off)
	if err != nil {
		return layout.FieldSlot{}, ErrOutOfBounds
	}
	return slot, nil
}

// checkRun validates a slot's recorded byte run against the current
// capacity. A run reaching past the capacity is corruption, possibly
// hostile; it is reported, never dereferenced.
func (w *Window) checkRun(off, length uint32) error {
	if uint64(off)+uint64(length) > uint64(w.reg.Cap()) {
		return ErrCorruptSlot
	}
	return nil
}
