package segment

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeap(t *testing.T) {
	s := NewHeap(1024)
	assert.Equal(t, 1024, s.MaxCap())
	assert.Len(t, s.Bytes(), 1024)

	s.Bytes()[0] = 0x42
	assert.Equal(t, byte(0x42), s.Bytes()[0])

	require.NoError(t, s.Close())
	assert.Nil(t, s.Bytes())
}

func TestFromBytes(t *testing.T) {
	img := []byte{1, 2, 3, 4}
	s := FromBytes(img)
	assert.Equal(t, 4, s.MaxCap())
	assert.Equal(t, img, s.Bytes())
}

func TestNewAnon(t *testing.T) {
	s, err := NewAnon(4096)
	require.NoError(t, err)
	defer s.Close()

	assert.Equal(t, 4096, s.MaxCap())
	assert.True(t, s.Writable())

	s.Bytes()[100] = 0x7F
	assert.Equal(t, byte(0x7F), s.Bytes()[100])
	assert.NoError(t, s.Advise(AccessRandom))
}

func TestCreateOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "window.seg")

	// Producer side.
	p, err := Create(path, 8192)
	require.NoError(t, err)
	assert.True(t, p.Writable())
	assert.Equal(t, 8192, p.MaxCap())
	copy(p.Bytes(), "handoff payload")
	require.NoError(t, p.Close())

	// Consumer side.
	c, err := Open(path)
	require.NoError(t, err)
	defer c.Close()

	assert.False(t, c.Writable())
	assert.Equal(t, 8192, c.MaxCap())
	assert.Equal(t, "handoff payload", string(c.Bytes()[:15]))
}

func TestOpen_Missing(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "absent.seg"))
	assert.Error(t, err)
}
