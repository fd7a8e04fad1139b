// Package snapshot persists sealed window images.
//
// A sealed window is just a relocatable byte image; this package frames
// it with a magic number, a version, an optional zstd-compressed body
// and a CRC32 trailer so it can travel through files or pipes and be
// rebound with rowwin.Open on the other side.
//
// CRC32 detects accidental corruption only; it is not tamper-proof.
package snapshot

import (
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"io"

	"github.com/klauspost/compress/zstd"
)

const (
	// headerLen is the fixed frame header: magic, version, flags,
	// image length, body length.
	headerLen = 4 + 2 + 2 + 8 + 8

	version = uint16(1)

	flagZstd = uint16(1)

	// maxImageLen caps what Read will allocate; window images are
	// 32-bit addressed.
	maxImageLen = 1<<32 - 1
)

var magic = [4]byte{'R', 'W', 'N', '0'}

var (
	// ErrInvalidMagic is returned when the stream does not start with a
	// snapshot frame.
	ErrInvalidMagic = errors.New("snapshot: invalid magic number")
	// ErrInvalidVersion is returned for frames written by an
	// incompatible version.
	ErrInvalidVersion = errors.New("snapshot: unsupported version")
	// ErrChecksum is returned when the frame fails its CRC32 check.
	ErrChecksum = errors.New("snapshot: checksum mismatch")
	// ErrTooLarge is returned when a frame declares an image bigger
	// than a window can address.
	ErrTooLarge = errors.New("snapshot: image too large")
)

// Options configure snapshot writing.
type Options struct {
	// Compressed selects a zstd-compressed body.
	Compressed bool
}

// WithCompression enables zstd compression of the image body.
func WithCompression() func(*Options) {
	return func(o *Options) {
		o.Compressed = true
	}
}

// Write frames image into w. The image is the producer's sealed window
// bytes (Window.Bytes after Seal).
func Write(w io.Writer, image []byte, optFns ...func(*Options)) error {
	opts := Options{}
	for _, fn := range optFns {
		fn(&opts)
	}
	if uint64(len(image)) > maxImageLen {
		return ErrTooLarge
	}

	body := image
	flags := uint16(0)
	if opts.Compressed {
		enc, err := zstd.NewWriter(nil)
		if err != nil {
			return fmt.Errorf("snapshot: create compressor: %w", err)
		}
		body = enc.EncodeAll(image, nil)
		enc.Close()
		flags |= flagZstd
	}

	header := make([]byte, headerLen)
	copy(header, magic[:])
	binary.LittleEndian.PutUint16(header[4:], version)
	binary.LittleEndian.PutUint16(header[6:], flags)
	binary.LittleEndian.PutUint64(header[8:], uint64(len(image)))
	binary.LittleEndian.PutUint64(header[16:], uint64(len(body)))

	crc := crc32.ChecksumIEEE(header)
	crc = crc32.Update(crc, crc32.IEEETable, body)

	if _, err := w.Write(header); err != nil {
		return fmt.Errorf("snapshot: write header: %w", err)
	}
	if _, err := w.Write(body); err != nil {
		return fmt.Errorf("snapshot: write body: %w", err)
	}

	var trailer [4]byte
	binary.LittleEndian.PutUint32(trailer[:], crc)
	if _, err := w.Write(trailer[:]); err != nil {
		return fmt.Errorf("snapshot: write checksum: %w", err)
	}
	return nil
}

// Read parses one frame from r and returns the window image, verified
// against the frame's checksum. Bind the result with segment.FromBytes
// and rowwin.Open.
func Read(r io.Reader) ([]byte, error) {
	header := make([]byte, headerLen)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, fmt.Errorf("snapshot: read header: %w", err)
	}
	if [4]byte(header[:4]) != magic {
		return nil, ErrInvalidMagic
	}
	if v := binary.LittleEndian.Uint16(header[4:]); v != version {
		return nil, fmt.Errorf("%w: %d", ErrInvalidVersion, v)
	}
	flags := binary.LittleEndian.Uint16(header[6:])
	imageLen := binary.LittleEndian.Uint64(header[8:])
	bodyLen := binary.LittleEndian.Uint64(header[16:])
	if imageLen > maxImageLen || bodyLen > maxImageLen {
		return nil, ErrTooLarge
	}

	body := make([]byte, bodyLen)
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, fmt.Errorf("snapshot: read body: %w", err)
	}

	var trailer [4]byte
	if _, err := io.ReadFull(r, trailer[:]); err != nil {
		return nil, fmt.Errorf("snapshot: read checksum: %w", err)
	}

	crc := crc32.ChecksumIEEE(header)
	crc = crc32.Update(crc, crc32.IEEETable, body)
	if crc != binary.LittleEndian.Uint32(trailer[:]) {
		return nil, ErrChecksum
	}

	if flags&flagZstd == 0 {
		if bodyLen != imageLen {
			return nil, fmt.Errorf("%w: body length %d, image length %d", ErrChecksum, bodyLen, imageLen)
		}
		return body, nil
	}

	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("snapshot: create decompressor: %w", err)
	}
	defer dec.Close()

	image, err := dec.DecodeAll(body, make([]byte, 0, imageLen))
	if err != nil {
		return nil, fmt.Errorf("snapshot: decompress: %w", err)
	}
	if uint64(len(image)) != imageLen {
		return nil, fmt.Errorf("%w: decompressed to %d bytes, header says %d", ErrChecksum, len(image), imageLen)
	}
	return image, nil
}
