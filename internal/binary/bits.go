package binary

import "fmt"

// MaxBitWidth is the widest field BitReader and BitWriter move in one call.
const MaxBitWidth = 32

// BitReader reads LSB-first bit fields from a byte slice.
// Bit 0 of the stream is the least significant bit of buf[0].
type BitReader struct {
	buf []byte
	pos int // bit cursor
}

// NewBitReader returns a reader positioned at the first bit of buf.
func NewBitReader(buf []byte) *BitReader {
	return &BitReader{buf: buf}
}

// Pos returns the bit cursor.
func (br *BitReader) Pos() int { return br.pos }

// Len returns the total number of bits in the buffer.
func (br *BitReader) Len() int { return len(br.buf) * 8 }

// Remaining returns the number of unread bits.
func (br *BitReader) Remaining() int { return br.Len() - br.pos }

// ReadBits reads width bits and advances the cursor by exactly width.
// On error the cursor is left untouched.
func (br *BitReader) ReadBits(width int) (uint32, error) {
	v, err := ReadBitsAt(br.buf, br.pos, width)
	if err != nil {
		return 0, err
	}
	br.pos += width
	return v, nil
}

// Skip advances the cursor by n bits.
func (br *BitReader) Skip(n int) error {
	if n < 0 || n > br.Remaining() {
		return fmt.Errorf("%w: skip %d bits at bit %d of %d", ErrOutOfBounds, n, br.pos, br.Len())
	}
	br.pos += n
	return nil
}

// BitWriter appends LSB-first bit fields to a growing byte slice.
type BitWriter struct {
	buf []byte
	pos int
}

// NewBitWriter returns an empty writer.
func NewBitWriter() *BitWriter {
	return &BitWriter{}
}

// Pos returns the number of bits written so far.
func (bw *BitWriter) Pos() int { return bw.pos }

// WriteBits appends the low width bits of v.
func (bw *BitWriter) WriteBits(v uint32, width int) error {
	if width < 1 || width > MaxBitWidth {
		return fmt.Errorf("%w: %d bits", ErrWidth, width)
	}
	for (bw.pos+width+7)>>3 > len(bw.buf) {
		bw.buf = append(bw.buf, 0)
	}
	if err := WriteBitsAt(bw.buf, bw.pos, v, width); err != nil {
		return err
	}
	bw.pos += width
	return nil
}

// Pad appends n zero bits.
func (bw *BitWriter) Pad(n int) {
	for n > 0 {
		w := min(n, MaxBitWidth)
		_ = bw.WriteBits(0, w)
		n -= w
	}
}

// Bytes returns the written bytes; a partial final byte is zero-filled.
func (bw *BitWriter) Bytes() []byte {
	return bw.buf
}

// WriteBitsAt overwrites width bits of buf starting at bit cursor pos.
func WriteBitsAt(buf []byte, pos int, v uint32, width int) error {
	if width < 1 || width > MaxBitWidth {
		return fmt.Errorf("%w: %d bits", ErrWidth, width)
	}
	if pos < 0 || pos+width > len(buf)*8 {
		return fmt.Errorf("%w: %d bits at bit %d of %d", ErrOutOfBounds, width, pos, len(buf)*8)
	}
	val := uint64(v)
	left := width
	for left > 0 {
		shift := pos & 7
		take := min(8-shift, left)
		mask := byte((1<<take - 1) << shift)
		buf[pos>>3] = buf[pos>>3]&^mask | byte((val&(1<<take-1))<<shift)
		val >>= take
		left -= take
		pos += take
	}
	return nil
}

// ReadBitsAt reads width bits of buf starting at bit cursor pos.
func ReadBitsAt(buf []byte, pos, width int) (uint32, error) {
	if width < 1 || width > MaxBitWidth {
		return 0, fmt.Errorf("%w: %d bits", ErrWidth, width)
	}
	if pos < 0 || pos+width > len(buf)*8 {
		return 0, fmt.Errorf("%w: %d bits at bit %d of %d", ErrOutOfBounds, width, pos, len(buf)*8)
	}
	var v uint64
	for got := 0; got < width; {
		shift := pos & 7
		take := min(8-shift, width-got)
		v |= (uint64(buf[pos>>3]) >> shift) & (1<<take - 1) << got
		got += take
		pos += take
	}
	return uint32(v), nil //nolint:gosec // width is at most 32 bits
}
