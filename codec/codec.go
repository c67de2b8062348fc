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

// Package codec implements the historical compression schemes used inside
// legacy game archives: run-length, adaptive LZW and LZSS with adaptive
// Huffman coding ("lzhuf").
package codec

import (
	"fmt"
	"sync"
)

// Method identifies the compression applied to a packed block.
type Method uint8

const (
	// MethodStored indicates uncompressed data.
	MethodStored Method = 0

	// MethodRLE is the copy/repeat run-length scheme.
	MethodRLE Method = 1

	// MethodLZW is adaptive 9-12 bit LZW with chunk-aligned dictionary resets.
	MethodLZW Method = 2

	// MethodLZHUF is LZSS with an adaptive Huffman literal/length tree.
	MethodLZHUF Method = 3
)

// String returns the short method name.
func (m Method) String() string {
	switch m {
	case MethodStored:
		return "stored"
	case MethodRLE:
		return "rle"
	case MethodLZW:
		return "lzw"
	case MethodLZHUF:
		return "lzhuf"
	default:
		return fmt.Sprintf("method(%d)", uint8(m))
	}
}

// Codec decompresses a block.
type Codec interface {
	// Decompress decompresses src into dst.
	// dst must be pre-allocated to the expected decompressed size.
	// Returns the number of bytes written to dst.
	Decompress(dst, src []byte) (int, error)
}

// Compressor is implemented by codecs that also have an encoder.
type Compressor interface {
	Codec

	// Compress returns the encoded form of src.
	Compress(src []byte) ([]byte, error)
}

var (
	codecRegistry   = make(map[Method]func() Codec)
	codecRegistryMu sync.RWMutex
)

// RegisterCodec registers a codec factory for the given method.
func RegisterCodec(m Method, factory func() Codec) {
	codecRegistryMu.Lock()
	defer codecRegistryMu.Unlock()
	codecRegistry[m] = factory
}

// GetCodec returns a codec instance for the given method.
func GetCodec(m Method) (Codec, error) {
	codecRegistryMu.RLock()
	factory, ok := codecRegistry[m]
	codecRegistryMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedMethod, m)
	}

	return factory(), nil
}

func init() {
	RegisterCodec(MethodStored, func() Codec { return storedCodec{} })
}

type storedCodec struct{}

func (storedCodec) Decompress(dst, src []byte) (int, error) {
	if len(src) < len(dst) {
		return copy(dst, src), fmt.Errorf("%w: stored block has %d of %d bytes", ErrTruncated, len(src), len(dst))
	}
	return copy(dst, src), nil
}

func (storedCodec) Compress(src []byte) ([]byte, error) {
	return append([]byte(nil), src...), nil
}
