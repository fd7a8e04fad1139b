package arena

import "errors"

// ErrOutOfSpace is returned when an allocation cannot be satisfied,
// with or without attempted growth.
var ErrOutOfSpace = errors.New("arena: out of space")

// GrowthIncrement is the step size used when the capacity is raised to
// satisfy an allocation. Kept small so a window grows only as much as
// the triggering row needs; the final step is clamped to the ceiling.
const GrowthIncrement = 1024

// Stats tracks arena usage metrics.
type Stats struct {
	BytesUsed   uint64 // bytes requested by allocations (before alignment)
	BytesWasted uint64 // alignment padding
	Allocs      uint64 // cumulative allocation count
	Grows       uint64 // cumulative growth steps applied
}

// Arena is a bump allocator over a fixed byte range.
//
// It is addressed purely by uint32 offsets so the region it manages can
// be remapped at a different base address in another process.
type Arena struct {
	cap    uint32 // current usable capacity
	free   uint32 // next unallocated byte
	maxCap uint32 // hard ceiling, fixed at construction
	grow   func() bool
	stats  Stats
}

// New creates an arena over a region of maxCap bytes, with initialCap of
// them usable up front. The grow probe is consulted before any capacity
// raise; a nil probe disallows growth entirely.
func New(initialCap, maxCap uint32, grow func() bool) *Arena {
	if initialCap > maxCap {
		initialCap = maxCap
	}
	if grow == nil {
		grow = func() bool { return false }
	}
	return &Arena{
		cap:    initialCap,
		free:   0,
		maxCap: maxCap,
		grow:   grow,
	}
}

// Alloc reserves size bytes at the given alignment and returns the
// aligned start offset. The free offset advances by size plus padding.
func (a *Arena) Alloc(size, align uint32) (uint32, error) {
	if align == 0 {
		align = 1
	}
	padding := (align - a.free%align) % align
	need := uint64(size) + uint64(padding)

	if uint64(a.free)+need > uint64(a.cap) {
		if err := a.growTo(uint64(a.free) + need); err != nil {
			return 0, err
		}
	}

	off := a.free + padding
	a.free += uint32(need)

	a.stats.BytesUsed += uint64(size)
	a.stats.BytesWasted += uint64(padding)
	a.stats.Allocs++

	return off, nil
}

// growTo raises the capacity in GrowthIncrement steps until need fits.
// Fails without changing the capacity when the probe disallows growth
// or need exceeds the hard ceiling.
func (a *Arena) growTo(need uint64) error {
	if need > uint64(a.maxCap) || !a.grow() {
		return ErrOutOfSpace
	}
	newCap := uint64(a.cap)
	for newCap < need {
		newCap += GrowthIncrement
		a.stats.Grows++
	}
	if newCap > uint64(a.maxCap) {
		newCap = uint64(a.maxCap)
	}
	a.cap = uint32(newCap)
	return nil
}

// Reset discards all allocations and moves the free offset back to base.
// The capacity keeps any growth already applied.
func (a *Arena) Reset(base uint32) {
	if base > a.cap {
		base = a.cap
	}
	a.free = base
	a.stats = Stats{}
}

// Cap returns the current usable capacity.
func (a *Arena) Cap() uint32 { return a.cap }

// MaxCap returns the hard capacity ceiling.
func (a *Arena) MaxCap() uint32 { return a.maxCap }

// FreeOffset returns the offset of the next unallocated byte.
func (a *Arena) FreeOffset() uint32 { return a.free }

// FreeSpace returns the number of bytes left before the current capacity.
func (a *Arena) FreeSpace() uint32 {
	if a.free > a.cap {
		return 0
	}
	return a.cap - a.free
}

// Stats returns the current usage metrics.
func (a *Arena) Stats() Stats { return a.stats }
