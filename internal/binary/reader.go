// Package binary provides bounds-checked primitives for reading and writing
// the fixed-width integers, bit fields and strings found in archive headers.
package binary

import (
	"encoding/binary"
	"fmt"
	"io"
)

// ReadAt reads len(buf) bytes from r at offset.
// A short read is reported as io.ErrUnexpectedEOF.
func ReadAt(r io.ReaderAt, offset int64, buf []byte) error {
	if offset < 0 {
		return fmt.Errorf("%w: negative offset %d", ErrOutOfBounds, offset)
	}
	n, err := r.ReadAt(buf, offset)
	if n == len(buf) {
		return nil
	}
	if err == nil || err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}

// ReadBytesAt reads n bytes from r at offset.
func ReadBytesAt(r io.ReaderAt, offset int64, n int) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: negative length %d", ErrOutOfBounds, n)
	}
	buf := make([]byte, n)
	if err := ReadAt(r, offset, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// ReadUint16LEAt reads a little-endian uint16 from r at offset.
func ReadUint16LEAt(r io.ReaderAt, offset int64) (uint16, error) {
	buf := make([]byte, 2)
	if err := ReadAt(r, offset, buf); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(buf), nil
}

// ReadUint32LEAt reads a little-endian uint32 from r at offset.
func ReadUint32LEAt(r io.ReaderAt, offset int64) (uint32, error) {
	buf := make([]byte, 4)
	if err := ReadAt(r, offset, buf); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(buf), nil
}

// TrimNUL returns b up to (not including) the first NUL byte.
func TrimNUL(b []byte) []byte {
	for i, c := range b {
		if c == 0 {
			return b[:i]
		}
	}
	return b
}

// IsPrintableASCII reports whether every byte of b is in 0x20..0x7E.
func IsPrintableASCII(b []byte) bool {
	for _, c := range b {
		if c < 0x20 || c > 0x7E {
			return false
		}
	}
	return true
}

// HasControl reports whether b contains a C0 control byte or DEL.
// Bytes 0x80 and above are allowed; they are code page characters.
func HasControl(b []byte) bool {
	for _, c := range b {
		if c < 0x20 || c == 0x7F {
			return true
		}
	}
	return false
}

// PutString copies s into a fixed-width field of buf, padding the rest with pad.
// It fails when s does not fit.
func PutString(buf []byte, s string, pad byte) error {
	if len(s) > len(buf) {
		return fmt.Errorf("%w: %q does not fit in %d bytes", ErrOutOfBounds, s, len(buf))
	}
	n := copy(buf, s)
	for i := n; i < len(buf); i++ {
		buf[i] = pad
	}
	return nil
}
