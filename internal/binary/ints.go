package binary

import (
	"encoding/binary"
	"errors"
	"fmt"
)

var (
	// ErrOutOfBounds is returned when a read or write would cross the end of a buffer.
	ErrOutOfBounds = errors.New("out of bounds")

	// ErrWidth is returned for an unsupported integer or bit-field width.
	ErrWidth = errors.New("invalid width")
)

// Order selects the byte order of a multi-byte integer.
type Order bool

const (
	LittleEndian Order = true
	BigEndian    Order = false
)

// ReadUint reads an unsigned integer of width bytes (1-8) at off.
func ReadUint(buf []byte, off, width int, order Order) (uint64, error) {
	if width < 1 || width > 8 {
		return 0, fmt.Errorf("%w: %d bytes", ErrWidth, width)
	}
	if off < 0 || off > len(buf)-width {
		return 0, fmt.Errorf("%w: %d bytes at %d, buffer is %d", ErrOutOfBounds, width, off, len(buf))
	}
	var v uint64
	if order == LittleEndian {
		for i := width - 1; i >= 0; i-- {
			v = v<<8 | uint64(buf[off+i])
		}
	} else {
		for i := range width {
			v = v<<8 | uint64(buf[off+i])
		}
	}
	return v, nil
}

// PutUint writes the low width bytes (1-8) of v at off.
// Bits of v above the field width are discarded.
func PutUint(buf []byte, off, width int, order Order, v uint64) error {
	if width < 1 || width > 8 {
		return fmt.Errorf("%w: %d bytes", ErrWidth, width)
	}
	if off < 0 || off > len(buf)-width {
		return fmt.Errorf("%w: %d bytes at %d, buffer is %d", ErrOutOfBounds, width, off, len(buf))
	}
	if order == LittleEndian {
		for i := range width {
			buf[off+i] = byte(v)
			v >>= 8
		}
	} else {
		for i := width - 1; i >= 0; i-- {
			buf[off+i] = byte(v)
			v >>= 8
		}
	}
	return nil
}

// Uint32LE reads a little-endian uint32 at off.
func Uint32LE(buf []byte, off int) (uint32, error) {
	if off < 0 || off > len(buf)-4 {
		return 0, fmt.Errorf("%w: uint32 at %d, buffer is %d", ErrOutOfBounds, off, len(buf))
	}
	return binary.LittleEndian.Uint32(buf[off:]), nil
}
