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

package binary

import (
	"bytes"
	"testing"
)

// FuzzBitRoundTrip writes random fields and reads them back.
func FuzzBitRoundTrip(f *testing.F) {
	f.Add([]byte{9, 12, 1, 32}, uint32(0x1234))
	f.Add([]byte{}, uint32(0))
	f.Add([]byte{31, 2, 7}, uint32(0xFFFFFFFF))

	f.Fuzz(func(t *testing.T, widths []byte, seed uint32) {
		if len(widths) > 256 {
			return
		}
		bw := NewBitWriter()
		var want []uint32
		var used []int
		v := seed
		for _, w := range widths {
			width := int(w%MaxBitWidth) + 1
			v = v*1664525 + 1013904223
			mask := uint32(1<<width - 1)
			if width == 32 {
				mask = 0xFFFFFFFF
			}
			if err := bw.WriteBits(v, width); err != nil {
				t.Fatalf("WriteBits(%d) error = %v", width, err)
			}
			want = append(want, v&mask)
			used = append(used, width)
		}
		br := NewBitReader(bw.Bytes())
		for i, width := range used {
			got, err := br.ReadBits(width)
			if err != nil {
				t.Fatalf("ReadBits(%d) error = %v", width, err)
			}
			if got != want[i] {
				t.Fatalf("field %d = 0x%X, want 0x%X", i, got, want[i])
			}
		}
		if br.Remaining() >= 8 {
			t.Errorf("%d unread bits after all fields", br.Remaining())
		}
	})
}

// FuzzBitReader reads arbitrary widths from arbitrary data.
func FuzzBitReader(f *testing.F) {
	f.Add([]byte("hello"), []byte{3, 9, 12, 40})
	f.Add([]byte{}, []byte{1})

	f.Fuzz(func(t *testing.T, data, widths []byte) {
		br := NewBitReader(data)
		for _, w := range widths {
			before := br.Pos()
			_, err := br.ReadBits(int(w))
			if err != nil && br.Pos() != before {
				t.Fatalf("cursor moved on error: %d -> %d", before, br.Pos())
			}
			if err == nil && br.Pos() != before+int(w) {
				t.Fatalf("cursor = %d, want %d", br.Pos(), before+int(w))
			}
		}
	})
}

// FuzzTrimNUL checks that trimming never keeps a NUL byte.
func FuzzTrimNUL(f *testing.F) {
	f.Add([]byte("hello\x00world"))
	f.Add([]byte{0x00, 0x00, 0x00})
	f.Add([]byte{})

	f.Fuzz(func(t *testing.T, data []byte) {
		result := TrimNUL(data)
		if bytes.IndexByte(result, 0) >= 0 {
			t.Error("TrimNUL result contains null byte")
		}
		if !bytes.HasPrefix(data, result) {
			t.Error("TrimNUL result is not a prefix")
		}
	})
}

// FuzzReadUint checks ReadUint against PutUint for every width.
func FuzzReadUint(f *testing.F) {
	f.Add(uint64(0x0102030405060708), uint8(4), true)
	f.Add(uint64(0), uint8(1), false)

	f.Fuzz(func(t *testing.T, v uint64, w uint8, little bool) {
		width := int(w%8) + 1
		buf := make([]byte, width)
		order := Order(little)
		if err := PutUint(buf, 0, width, order, v); err != nil {
			t.Fatal(err)
		}
		got, err := ReadUint(buf, 0, width, order)
		if err != nil {
			t.Fatal(err)
		}
		want := v
		if width < 8 {
			want &= 1<<(8*width) - 1
		}
		if got != want {
			t.Errorf("ReadUint() = 0x%X, want 0x%X", got, want)
		}
	})
}
