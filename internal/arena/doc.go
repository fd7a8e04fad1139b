// Package arena implements the window's bump allocator.
//
// The arena hands out byte ranges from a single contiguous region by
// advancing a free offset. Individual allocations are never freed; the
// only reclamation is a bulk Reset back to a base offset.
//
// # Growth
//
// When an allocation does not fit the current capacity, the arena may
// raise the capacity in GrowthIncrement steps up to the hard maximum
// fixed at construction. Growth is gated by a caller-supplied probe:
// the window permits it only while at most one row has been committed,
// so a single wide row can inflate a freshly created window but a
// mis-sized window cannot balloon row after row.
//
// # Safety
//
// All methods return errors instead of panicking. The arena never
// touches the backing bytes; it only does offset arithmetic.
package arena
