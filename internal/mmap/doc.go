// Package mmap provides the memory mappings backing window segments.
//
// # Overview
//
// A window is a single contiguous byte region that may be handed to
// other processes. This package supplies that region three ways:
//
//   - MapFile with writable=true: shared read-write mapping of a file,
//     the producer side of a cross-process handoff
//   - MapFile with writable=false: read-only mapping of an already
//     populated image, the consumer side
//   - MapAnon: anonymous read-write mapping for single-process use,
//     kept off the Go heap
//
// # Platform Support
//
//   - Unix (Linux, macOS, BSD): mmap(2) with madvise(2) for access hints
//   - Windows: CreateFileMapping/MapViewOfFile (madvise is a no-op)
//
// # Thread Safety
//
// A Mapping is safe for concurrent read access. Close is idempotent and
// protected by atomic operations, but callers must ensure no goroutine
// touches Bytes() after Close returns.
package mmap
