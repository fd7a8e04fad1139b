package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegion_BoundsChecked(t *testing.T) {
	buf := make([]byte, 64)
	r := NewRegion(buf, 32) // only the first 32 bytes are usable

	require.NoError(t, r.PutUint32(28, 0xDEADBEEF))
	v, err := r.Uint32(28)
	require.NoError(t, err)
	assert.Equal(t, uint32(0xDEADBEEF), v)

	// Straddles the capacity boundary even though the backing slice
	// would hold it.
	assert.ErrorIs(t, r.PutUint32(30, 1), ErrOutOfBounds)
	_, err = r.Uint32(30)
	assert.ErrorIs(t, err, ErrOutOfBounds)

	assert.ErrorIs(t, r.PutUint64(25, 1), ErrOutOfBounds)
	assert.ErrorIs(t, r.CopyIn(30, []byte("abc")), ErrOutOfBounds)
	_, err = r.CopyOut(0, 33)
	assert.ErrorIs(t, err, ErrOutOfBounds)

	// Offset arithmetic must not wrap around.
	_, err = r.Uint32(^uint32(0) - 1)
	assert.ErrorIs(t, err, ErrOutOfBounds)
}

func TestRegion_SetCap(t *testing.T) {
	buf := make([]byte, 64)
	r := NewRegion(buf, 16)

	_, err := r.Uint32(20)
	require.ErrorIs(t, err, ErrOutOfBounds)

	r.SetCap(32)
	_, err = r.Uint32(20)
	assert.NoError(t, err)

	// Clamped to the backing slice.
	r.SetCap(1000)
	assert.Equal(t, uint32(64), r.Cap())
}

func TestRegion_Header(t *testing.T) {
	r := NewRegion(make([]byte, HeaderSize), HeaderSize)

	require.NoError(t, r.SetRowCount(7))
	require.NoError(t, r.SetColumnCount(3))

	rows, err := r.RowCount()
	require.NoError(t, err)
	cols, err := r.ColumnCount()
	require.NoError(t, err)
	assert.Equal(t, uint32(7), rows)
	assert.Equal(t, uint32(3), cols)
}

func TestRegion_FieldSlotRoundTrip(t *testing.T) {
	r := NewRegion(make([]byte, 64), 64)

	require.NoError(t, r.PutInlineSlot(0, TagInteger, 42))
	slot, err := r.FieldSlot(0)
	require.NoError(t, err)
	assert.Equal(t, TagInteger, slot.Tag)
	assert.Equal(t, uint64(42), slot.Inline)

	require.NoError(t, r.PutRefSlot(16, TagText, 500, 12))
	slot, err = r.FieldSlot(16)
	require.NoError(t, err)
	assert.Equal(t, TagText, slot.Tag)
	assert.Equal(t, uint32(500), slot.DataOffset)
	assert.Equal(t, uint32(12), slot.DataLength)

	_, err = r.FieldSlot(56)
	assert.ErrorIs(t, err, ErrOutOfBounds)
}

func TestRegion_Zero(t *testing.T) {
	buf := make([]byte, 16)
	for i := range buf {
		buf[i] = 0xFF
	}
	r := NewRegion(buf, 16)

	require.NoError(t, r.Zero(4, 8))
	for i, b := range buf {
		if i >= 4 && i < 12 {
			assert.Zerof(t, b, "byte %d should be cleared", i)
		} else {
			assert.Equalf(t, byte(0xFF), b, "byte %d should be untouched", i)
		}
	}

	assert.ErrorIs(t, r.Zero(10, 8), ErrOutOfBounds)
}
