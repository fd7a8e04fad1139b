// Package segment provides the backing memory a window lives in.
//
// A segment is a fixed-length byte range. The window treats it as its
// entire address space and never resizes it; capacity growth only moves
// the boundary of the usable prefix. Three flavors are provided: a heap
// slice for single-process use and tests, an anonymous mapping kept off
// the Go heap, and a file-backed shared mapping for handing a populated
// window to another process.
package segment

// Segment supplies the byte range backing one window.
//
// Bytes must return the same slice for the lifetime of the segment: the
// window stores offsets into it, and relocation happens only across
// process boundaries, never within one mapping.
type Segment interface {
	// Bytes returns the full backing range, len(Bytes()) == MaxCap().
	Bytes() []byte

	// MaxCap returns the hard capacity ceiling in bytes.
	MaxCap() int

	// Close releases the backing memory. The window must not be used
	// afterwards.
	Close() error
}

// Heap is a segment backed by an ordinary heap slice.
type Heap struct {
	buf []byte
}

// NewHeap allocates a zero-filled heap segment of maxCap bytes.
func NewHeap(maxCap int) *Heap {
	if maxCap < 0 {
		maxCap = 0
	}
	return &Heap{buf: make([]byte, maxCap)}
}

// FromBytes wraps an existing byte image, e.g. one received from
// another process or read back from a snapshot.
func FromBytes(buf []byte) *Heap {
	return &Heap{buf: buf}
}

// Bytes returns the backing slice.
func (h *Heap) Bytes() []byte { return h.buf }

// MaxCap returns the slice length.
func (h *Heap) MaxCap() int { return len(h.buf) }

// Close releases the slice reference.
func (h *Heap) Close() error {
	h.buf = nil
	return nil
}
