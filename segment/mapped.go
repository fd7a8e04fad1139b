package segment

import (
	"fmt"
	"os"

	"github.com/hupe1980/rowwin/internal/mmap"
)

// AccessPattern hints how the mapped bytes will be accessed.
type AccessPattern int

const (
	AccessDefault AccessPattern = iota
	AccessSequential
	AccessRandom
	AccessWillNeed
	AccessDontNeed
)

// Mapped is a segment backed by a memory mapping.
type Mapped struct {
	m *mmap.Mapping
}

// NewAnon creates an anonymous read-write mapping of maxCap bytes.
// The memory is zero-filled and lives outside the Go heap.
func NewAnon(maxCap int) (*Mapped, error) {
	m, err := mmap.MapAnon(maxCap)
	if err != nil {
		return nil, fmt.Errorf("segment: map anonymous memory: %w", err)
	}
	return &Mapped{m: m}, nil
}

// Create makes a file of maxCap bytes at path and maps it shared
// read-write. This is the producer side of a cross-process handoff: a
// consumer in another process binds the same file with Open.
func Create(path string, maxCap int) (*Mapped, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("segment: create %s: %w", path, err)
	}
	if err := f.Truncate(int64(maxCap)); err != nil {
		f.Close()
		return nil, fmt.Errorf("segment: size %s: %w", path, err)
	}

	m, err := mmap.MapFile(f, maxCap, true)
	// The mapping holds its own reference to the pages; the descriptor
	// is no longer needed.
	f.Close()
	if err != nil {
		return nil, fmt.Errorf("segment: map %s: %w", path, err)
	}

	return &Mapped{m: m}, nil
}

// Open maps an existing populated image read-only, the consumer side of
// a cross-process handoff.
func Open(path string) (*Mapped, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("segment: open %s: %w", path, err)
	}

	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("segment: stat %s: %w", path, err)
	}

	m, err := mmap.MapFile(f, int(fi.Size()), false)
	f.Close()
	if err != nil {
		return nil, fmt.Errorf("segment: map %s: %w", path, err)
	}

	return &Mapped{m: m}, nil
}

// Bytes returns the mapped range.
func (s *Mapped) Bytes() []byte { return s.m.Bytes() }

// MaxCap returns the mapping size.
func (s *Mapped) MaxCap() int { return s.m.Size() }

// Writable reports whether the mapping accepts stores.
func (s *Mapped) Writable() bool { return s.m.Writable() }

// Advise hints the kernel about the access pattern.
func (s *Mapped) Advise(pattern AccessPattern) error {
	var p mmap.AccessPattern
	switch pattern {
	case AccessSequential:
		p = mmap.AccessSequential
	case AccessRandom:
		p = mmap.AccessRandom
	case AccessWillNeed:
		p = mmap.AccessWillNeed
	case AccessDontNeed:
		p = mmap.AccessDontNeed
	default:
		p = mmap.AccessDefault
	}
	return s.m.Advise(p)
}

// Close unmaps the segment. It is idempotent.
func (s *Mapped) Close() error { return s.m.Close() }
