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

import "fmt"

const (
	rleRepeat = 0x80
	rleMaxRun = 0x7F
	rleMinRep = 3
)

func init() {
	RegisterCodec(MethodRLE, func() Codec { return &RLE{} })
}

// RLE is the copy/repeat run-length codec.
//
// Each command byte carries a run length in its low seven bits. With the
// high bit set the next byte is repeated run times; otherwise the next run
// bytes are copied verbatim.
type RLE struct {
	// Strict rejects zero-length runs instead of skipping them.
	Strict bool
}

// Decompress decodes src into dst, which must be exactly the unpacked size.
func (c *RLE) Decompress(dst, src []byte) (int, error) {
	out, err := rleDecode(dst[:0:len(dst)], src, c.Strict, len(dst))
	if err != nil {
		return len(out), err
	}
	if len(out) < len(dst) {
		return len(out), fmt.Errorf("%w: rle produced %d of %d bytes", ErrTruncated, len(out), len(dst))
	}
	return len(out), nil
}

// Compress encodes src.
func (*RLE) Compress(src []byte) ([]byte, error) {
	return EncodeRLE(src), nil
}

// DecodeRLE decodes a complete run-length stream.
func DecodeRLE(src []byte, strict bool) ([]byte, error) {
	return rleDecode(nil, src, strict, MaxUnpackedSize)
}

func rleDecode(out, src []byte, strict bool, limit int) ([]byte, error) {
	i := 0
	for i < len(src) {
		code := src[i]
		i++
		run := int(code & rleMaxRun)
		repeat := code&rleRepeat != 0

		if run == 0 {
			if strict {
				return out, fmt.Errorf("%w at offset %d", ErrZeroRun, i-1)
			}
			if repeat {
				i++
			}
			continue
		}
		if len(out)+run > limit {
			return out, fmt.Errorf("%w: run of %d at offset %d", ErrOverflow, run, i-1)
		}

		if repeat {
			if i >= len(src) {
				return out, fmt.Errorf("%w: repeat at offset %d has no value", ErrTruncated, i-1)
			}
			b := src[i]
			i++
			for range run {
				out = append(out, b)
			}
			continue
		}

		if i+run > len(src) {
			return out, fmt.Errorf("%w: copy of %d at offset %d", ErrTruncated, run, i-1)
		}
		out = append(out, src[i:i+run]...)
		i += run
	}
	return out, nil
}

// EncodeRLE encodes src. Only runs of three or more identical bytes become
// repeat commands; shorter runs stay inside the surrounding copy command.
func EncodeRLE(src []byte) []byte {
	out := make([]byte, 0, len(src)+len(src)/rleMaxRun+1)
	lit := -1

	flush := func(end int) {
		if lit < 0 {
			return
		}
		out = append(out, byte(end-lit)) //nolint:gosec // copy runs are capped at 127
		out = append(out, src[lit:end]...)
		lit = -1
	}

	i := 0
	for i < len(src) {
		run := 1
		for i+run < len(src) && run < rleMaxRun && src[i+run] == src[i] {
			run++
		}
		if run >= rleMinRep {
			flush(i)
			out = append(out, rleRepeat|byte(run), src[i]) //nolint:gosec // run <= 127
			i += run
			continue
		}
		if lit < 0 {
			lit = i
		}
		i++
		if i-lit == rleMaxRun {
			flush(i)
		}
	}
	flush(len(src))
	return out
}
