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

import "errors"

// MaxUnpackedSize bounds the unpacked size a block header may claim.
const MaxUnpackedSize = 64 * 1024 * 1024

// Common codec errors.
var (
	// ErrUnsupportedMethod indicates an unknown or unregistered method byte.
	ErrUnsupportedMethod = errors.New("unsupported compression method")

	// ErrCorrupt indicates the compressed stream is malformed.
	ErrCorrupt = errors.New("corrupt compressed data")

	// ErrTruncated indicates the compressed stream ended before the output was complete.
	ErrTruncated = errors.New("truncated compressed data")

	// ErrOverflow indicates the stream decodes to more bytes than the destination holds.
	ErrOverflow = errors.New("decoded data exceeds destination")

	// ErrZeroRun indicates a zero-length run in strict RLE mode.
	ErrZeroRun = errors.New("zero-length run")

	// ErrTooLarge indicates a block header claims more than MaxUnpackedSize bytes.
	ErrTooLarge = errors.New("unpacked size too large")
)
