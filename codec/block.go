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

// BlockHeaderSize is the size of a packed block header: a method byte
// followed by the little-endian unpacked size.
const BlockHeaderSize = 5

// BlockInfo describes a packed block header.
type BlockInfo struct {
	Method       Method
	UnpackedSize int
}

// ParseBlockHeader reads the header at the start of b.
func ParseBlockHeader(b []byte) (BlockInfo, error) {
	if len(b) < BlockHeaderSize {
		return BlockInfo{}, fmt.Errorf("%w: block header needs %d bytes, have %d", ErrTruncated, BlockHeaderSize, len(b))
	}
	size, err := binary.Uint32LE(b, 1)
	if err != nil {
		return BlockInfo{}, fmt.Errorf("block header: %w", err)
	}
	if size > MaxUnpackedSize {
		return BlockInfo{}, fmt.Errorf("%w: %d bytes", ErrTooLarge, size)
	}
	return BlockInfo{Method: Method(b[0]), UnpackedSize: int(size)}, nil
}

// DecodeBlock decodes a packed block.
func DecodeBlock(b []byte) ([]byte, error) {
	info, err := ParseBlockHeader(b)
	if err != nil {
		return nil, err
	}
	c, err := GetCodec(info.Method)
	if err != nil {
		return nil, err
	}
	dst := make([]byte, info.UnpackedSize)
	n, err := c.Decompress(dst, b[BlockHeaderSize:])
	if err != nil {
		return dst[:n], fmt.Errorf("%s block: %w", info.Method, err)
	}
	return dst[:n], nil
}

// EncodeBlock packs data with method m.
func EncodeBlock(m Method, data []byte) ([]byte, error) {
	if len(data) > MaxUnpackedSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrTooLarge, len(data))
	}
	c, err := GetCodec(m)
	if err != nil {
		return nil, err
	}
	comp, ok := c.(Compressor)
	if !ok {
		return nil, fmt.Errorf("%w: %s has no encoder", ErrUnsupportedMethod, m)
	}
	payload, err := comp.Compress(data)
	if err != nil {
		return nil, fmt.Errorf("%s block: %w", m, err)
	}
	out := make([]byte, BlockHeaderSize, BlockHeaderSize+len(payload))
	out[0] = byte(m)
	_ = binary.PutUint(out, 1, 4, binary.LittleEndian, uint64(len(data)))
	return append(out, payload...), nil
}
