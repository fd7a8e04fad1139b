package rowwin

import (
	"encoding/binary"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/rowwin/internal/layout"
	"github.com/hupe1980/rowwin/segment"
)

func buildSample(t *testing.T, seg segment.Segment) *Window {
	t.Helper()
	w, err := New(seg)
	require.NoError(t, err)
	require.NoError(t, w.SetColumnCount(4))
	for i := 0; i < 10; i++ {
		row, err := w.AllocRow()
		require.NoError(t, err)
		require.NoError(t, w.PutInt64(row, 0, int64(i)*11))
		require.NoError(t, w.PutFloat64(row, 1, float64(i)/2))
		require.NoError(t, w.PutText(row, 2, fmt.Sprintf("value-%d", i)))
		require.NoError(t, w.PutNull(row, 3))
	}
	return w
}

func assertSample(t *testing.T, r *Window) {
	t.Helper()
	require.Equal(t, uint32(10), r.RowCount())
	require.Equal(t, uint32(4), r.ColumnCount())
	for i := 0; i < 10; i++ {
		row := uint32(i)
		v, err := r.GetInt64(row, 0)
		require.NoError(t, err)
		assert.Equal(t, int64(i)*11, v)
		f, err := r.GetFloat64(row, 1)
		require.NoError(t, err)
		assert.Equal(t, float64(i)/2, f)
		s, err := r.GetText(row, 2)
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("value-%d", i), s)
		null, err := r.IsNull(row, 3)
		require.NoError(t, err)
		assert.True(t, null)
	}
}

func TestWindow_RelocatedImage(t *testing.T) {
	w := buildSample(t, segment.NewHeap(64*1024))

	// Copy the sealed image into a fresh buffer at a different base
	// address, as a consumer process would see it.
	image := make([]byte, w.Seal())
	copy(image, w.Bytes())

	r, err := Open(segment.FromBytes(image))
	require.NoError(t, err)
	assertSample(t, r)
}

func TestWindow_ReadOnly(t *testing.T) {
	w := buildSample(t, segment.NewHeap(64*1024))
	r, err := Open(segment.FromBytes(w.Bytes()))
	require.NoError(t, err)

	assert.ErrorIs(t, r.PutInt64(0, 0, 1), ErrReadOnly)
	assert.ErrorIs(t, r.PutNull(0, 3), ErrReadOnly)
	assert.ErrorIs(t, r.PutText(0, 2, "x"), ErrReadOnly)
	_, err = r.AllocRow()
	assert.ErrorIs(t, err, ErrReadOnly)
	assert.ErrorIs(t, r.SetColumnCount(1), ErrReadOnly)
	assert.ErrorIs(t, r.Clear(), ErrReadOnly)
}

func TestWindow_FileBackedHandoff(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.win")

	prod, err := segment.Create(path, 64*1024)
	require.NoError(t, err)
	buildSample(t, prod)
	require.NoError(t, prod.Close())

	cons, err := segment.Open(path)
	require.NoError(t, err)
	defer cons.Close()

	r, err := Open(cons)
	require.NoError(t, err)
	assertSample(t, r)
}

func TestWindow_ConcurrentReaders(t *testing.T) {
	w := buildSample(t, segment.NewHeap(64*1024))
	r, err := Open(segment.FromBytes(w.Bytes()))
	require.NoError(t, err)

	var g errgroup.Group
	for n := 0; n < 8; n++ {
		g.Go(func() error {
			for i := 0; i < 100; i++ {
				row := uint32(i % 10)
				v, err := r.GetInt64(row, 0)
				if err != nil {
					return err
				}
				if v != int64(row)*11 {
					return fmt.Errorf("row %d: got %d", row, v)
				}
				if _, err := r.GetText(row, 2); err != nil {
					return err
				}
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
}

func TestWindow_CorruptRowSlot(t *testing.T) {
	w := buildSample(t, segment.NewHeap(64*1024))
	image := append([]byte(nil), w.Bytes()...)

	// Row 0's slot is the first word of the first chunk. Point it past
	// the capacity.
	binary.NativeEndian.PutUint32(image[layout.FirstChunkOffset:], uint32(len(image))+1000)

	r, err := Open(segment.FromBytes(image))
	require.NoError(t, err)

	_, err = r.GetInt64(0, 0)
	assert.ErrorIs(t, err, ErrCorruptSlot)

	// Other rows stay readable.
	v, err := r.GetInt64(1, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(11), v)
}

func TestWindow_CorruptRowSlotZero(t *testing.T) {
	w := buildSample(t, segment.NewHeap(64*1024))
	image := append([]byte(nil), w.Bytes()...)

	// The zero sentinel marks a row that was never fully constructed.
	binary.NativeEndian.PutUint32(image[layout.FirstChunkOffset+4:], 0)

	r, err := Open(segment.FromBytes(image))
	require.NoError(t, err)

	_, err = r.GetInt64(1, 0)
	assert.ErrorIs(t, err, ErrCorruptSlot)
}

func TestWindow_CorruptDataRun(t *testing.T) {
	w := buildWindow(t)
	require.NoError(t, w.SetColumnCount(1))
	_, err := w.AllocRow()
	require.NoError(t, err)
	require.NoError(t, w.PutText(0, 0, "abc"))

	image := append([]byte(nil), w.Bytes()...)

	// The text cell's slot is the row's whole field directory; its data
	// length gets stretched past the capacity.
	dirOff := layout.ArenaBase
	binary.NativeEndian.PutUint32(image[dirOff+8:], uint32(len(image)))

	r, err := Open(segment.FromBytes(image))
	require.NoError(t, err)

	_, err = r.GetText(0, 0)
	assert.ErrorIs(t, err, ErrCorruptSlot)
}

func TestWindow_CorruptRowCount(t *testing.T) {
	w := buildSample(t, segment.NewHeap(64*1024))
	image := append([]byte(nil), w.Bytes()...)

	// A row count claiming rows that were never written leads reads
	// into unset slots, never out of bounds.
	binary.NativeEndian.PutUint32(image, 5000)

	r, err := Open(segment.FromBytes(image))
	require.NoError(t, err)

	_, err = r.GetInt64(4999, 0)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrIndexOutOfRange)
}

func TestOpen_TruncatedImage(t *testing.T) {
	_, err := Open(segment.FromBytes(make([]byte, 16)))
	assert.ErrorIs(t, err, ErrOutOfBounds)
}
