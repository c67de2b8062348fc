// Copyright (c) 2025 Niema Moshiri and The Zaparoo Project.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of go-gamearc.
//
// go-gamearc is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// go-gamearc is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with go-gamearc.  If not, see <https://www.gnu.org/licenses/>.

package codec

import (
	"fmt"

	"github.com/ZaparooProject/go-gamearc/internal/binary"
)

const (
	lzwMinWidth = 9
	lzwMaxWidth = 12
	lzwReset    = 256
	lzwFirst    = 257
	lzwTableMax = 1 << lzwMaxWidth
)

func init() {
	RegisterCodec(MethodLZW, func() Codec { return &LZW{} })
}

// LZW is the adaptive LZW codec.
//
// Codes are packed LSB-first and start at nine bits. The width grows by one
// bit each time the next dictionary slot no longer fits, up to twelve bits,
// after which the dictionary is frozen. Code 256 resets the dictionary and
// also discards the rest of the current chunk, a run of eight codes at the
// current width, so the next code starts on a chunk boundary.
type LZW struct{}

// Decompress decodes src into dst, which must be exactly the unpacked size.
func (*LZW) Decompress(dst, src []byte) (int, error) {
	d := newLZWDecoder(src)
	out, err := d.decode(dst[:0:len(dst)], len(dst), true)
	return len(out), err
}

// Compress encodes src.
func (*LZW) Compress(src []byte) ([]byte, error) {
	return EncodeLZW(src), nil
}

// DecodeLZW decodes a complete stream. Trailing bits shorter than one code
// are treated as padding.
func DecodeLZW(src []byte) ([]byte, error) {
	d := newLZWDecoder(src)
	return d.decode(nil, MaxUnpackedSize, false)
}

type lzwDecoder struct {
	br     *binary.BitReader
	prefix [lzwTableMax]uint16
	suffix [lzwTableMax]byte
	length [lzwTableMax]uint16
	stack  [lzwTableMax]byte
	next   int
	width  int
	chunk  int
	prev   int
}

func newLZWDecoder(src []byte) *lzwDecoder {
	d := &lzwDecoder{br: binary.NewBitReader(src)}
	for i := range 256 {
		d.suffix[i] = byte(i)
		d.length[i] = 1
	}
	d.reset()
	return d
}

func (d *lzwDecoder) reset() {
	d.next = lzwFirst
	d.width = lzwMinWidth
	d.chunk = 0
	d.prev = -1
}

// entry expands code into the scratch stack.
func (d *lzwDecoder) entry(code int) []byte {
	n := int(d.length[code])
	for i := n - 1; i >= 0; i-- {
		d.stack[i] = d.suffix[code]
		code = int(d.prefix[code])
	}
	return d.stack[:n]
}

func (d *lzwDecoder) decode(out []byte, limit int, exact bool) ([]byte, error) {
	for !exact || len(out) < limit {
		if d.next > 1<<d.width-1 && d.width < lzwMaxWidth {
			d.width++
		}
		if !exact && d.br.Remaining() < d.width {
			return out, nil
		}
		v, err := d.br.ReadBits(d.width)
		if err != nil {
			return out, fmt.Errorf("%w: lzw stream ended after %d of %d bytes", ErrTruncated, len(out), limit)
		}
		code := int(v)

		d.chunk += d.width
		if d.chunk >= d.width*8 {
			d.chunk -= d.width * 8
		}

		if code == lzwReset {
			if d.chunk > 0 {
				skip := min(d.width*8-d.chunk, d.br.Remaining())
				_ = d.br.Skip(skip)
			}
			d.reset()
			continue
		}

		var first byte
		switch {
		case code < d.next:
			e := d.entry(code)
			first = e[0]
			if len(out)+len(e) > limit {
				return out, fmt.Errorf("%w: lzw code %d at bit %d", ErrOverflow, code, d.br.Pos())
			}
			out = append(out, e...)
		case code == d.next && d.prev >= 0:
			e := d.entry(d.prev)
			first = e[0]
			if len(out)+len(e)+1 > limit {
				return out, fmt.Errorf("%w: lzw code %d at bit %d", ErrOverflow, code, d.br.Pos())
			}
			out = append(out, e...)
			out = append(out, first)
		default:
			return out, fmt.Errorf("%w: lzw code %d with %d entries at bit %d", ErrCorrupt, code, d.next, d.br.Pos())
		}

		if d.prev >= 0 && d.next < lzwTableMax {
			d.prefix[d.next] = uint16(d.prev) //nolint:gosec // codes are below 4096
			d.suffix[d.next] = first
			d.length[d.next] = d.length[d.prev] + 1
			d.next++
		}
		d.prev = code
	}
	return out, nil
}

type lzwEncoder struct {
	bw    *binary.BitWriter
	dict  map[uint32]uint16
	next  int // next slot in the encoder table
	seen  int // next slot in the decoder table
	width int
	chunk int
	first bool
}

// EncodeLZW encodes src so that DecodeLZW reproduces it. A reset code is
// emitted each time the dictionary fills.
func EncodeLZW(src []byte) []byte {
	e := &lzwEncoder{bw: binary.NewBitWriter()}
	e.reset()
	if len(src) == 0 {
		return nil
	}

	cur := uint32(src[0])
	for _, b := range src[1:] {
		key := cur<<8 | uint32(b)
		if code, ok := e.dict[key]; ok {
			cur = uint32(code)
			continue
		}
		e.emit(cur)
		if e.next < lzwTableMax {
			e.dict[key] = uint16(e.next) //nolint:gosec // below 4096
			e.next++
		}
		if e.next == lzwTableMax {
			e.emitReset()
		}
		cur = uint32(b)
	}
	e.emit(cur)
	return e.bw.Bytes()
}

func (e *lzwEncoder) reset() {
	e.dict = make(map[uint32]uint16)
	e.next = lzwFirst
	e.seen = lzwFirst
	e.width = lzwMinWidth
	e.chunk = 0
	e.first = true
}

// write mirrors the decoder's width and chunk bookkeeping for one code.
func (e *lzwEncoder) write(code uint32) {
	if e.seen > 1<<e.width-1 && e.width < lzwMaxWidth {
		e.width++
	}
	_ = e.bw.WriteBits(code, e.width)
	e.chunk += e.width
	if e.chunk >= e.width*8 {
		e.chunk -= e.width * 8
	}
}

func (e *lzwEncoder) emit(code uint32) {
	e.write(code)
	if !e.first && e.seen < lzwTableMax {
		e.seen++
	}
	e.first = false
}

func (e *lzwEncoder) emitReset() {
	e.write(lzwReset)
	if e.chunk > 0 {
		e.bw.Pad(e.width*8 - e.chunk)
	}
	e.reset()
}
