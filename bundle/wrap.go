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

package bundle

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/ulikunitz/xz"
	"github.com/ulikunitz/xz/lzma"
)

// wrappers maps a single-stream compressor extension to its decoder.
var wrappers = map[string]func(io.Reader) (io.ReadCloser, error){
	".gz": func(r io.Reader) (io.ReadCloser, error) {
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("gzip: %w", err)
		}
		return zr, nil
	},
	".xz": func(r io.Reader) (io.ReadCloser, error) {
		xr, err := xz.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("xz: %w", err)
		}
		return io.NopCloser(xr), nil
	},
	".lzma": func(r io.Reader) (io.ReadCloser, error) {
		lr, err := lzma.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("lzma: %w", err)
		}
		return io.NopCloser(lr), nil
	},
	".zst": func(r io.Reader) (io.ReadCloser, error) {
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("zstd: %w", err)
		}
		return zr.IOReadCloser(), nil
	},
	".lz4": func(r io.Reader) (io.ReadCloser, error) {
		return io.NopCloser(lz4.NewReader(r)), nil
	},
}

// IsWrapperExtension reports whether ext names a single-stream compressor.
func IsWrapperExtension(ext string) bool {
	_, ok := wrappers[strings.ToLower(ext)]
	return ok
}

// LogicalName strips a compressor extension, so "DUKE3D.GRP.gz" becomes
// "DUKE3D.GRP".
func LogicalName(path string) string {
	ext := filepath.Ext(path)
	if IsWrapperExtension(ext) {
		return path[:len(path)-len(ext)]
	}
	return path
}

// unwrap decompresses r when name carries a compressor extension.
func unwrap(name string, r io.Reader) ([]byte, error) {
	open, ok := wrappers[strings.ToLower(filepath.Ext(name))]
	if !ok {
		return nil, FormatError{Format: filepath.Ext(name), Reason: "not a compressed wrapper"}
	}

	zr, err := open(r)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	defer func() { _ = zr.Close() }()

	var buf bytes.Buffer
	n, err := io.Copy(&buf, io.LimitReader(zr, MaxMemberSize+1))
	if err != nil {
		return nil, fmt.Errorf("decompress %s: %w", name, err)
	}
	if n > MaxMemberSize {
		return nil, fmt.Errorf("%w: %s", ErrTooLarge, name)
	}

	return buf.Bytes(), nil
}
