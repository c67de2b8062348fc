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

// Package bundle resolves the paths game archives are read from: plain files
// on an afero filesystem, members of ZIP, 7z and RAR distribution bundles,
// and files wrapped in a single-stream compressor.
package bundle

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// MaxMemberSize bounds how much of a bundle member or wrapped file is
// buffered in memory.
const MaxMemberSize = 512 * 1024 * 1024

// MemberInfo contains information about a file in a bundle.
type MemberInfo struct {
	Name string // Full path within the bundle
	Size int64  // Uncompressed size
}

// Bundle provides read access to the members of a distribution bundle.
type Bundle interface {
	// List returns all files in the bundle.
	List() ([]MemberInfo, error)

	// Open opens a member for reading.
	// Returns the reader, uncompressed size, and any error.
	Open(internalPath string) (io.ReadCloser, int64, error)

	// Close closes the bundle.
	Close() error
}

// OpenBundle opens a bundle file based on its extension.
// Supported formats: .zip, .7z, .rar
func OpenBundle(fs afero.Fs, path string) (Bundle, error) {
	ext := strings.ToLower(filepath.Ext(path))

	switch ext {
	case ".zip":
		return OpenZIP(fs, path)
	case ".7z":
		return OpenSevenZip(fs, path)
	case ".rar":
		return OpenRAR(fs, path)
	default:
		return nil, FormatError{Format: ext}
	}
}

// IsBundleExtension checks if an extension is a supported bundle format.
func IsBundleExtension(ext string) bool {
	ext = strings.ToLower(ext)
	switch ext {
	case ".zip", ".7z", ".rar":
		return true
	default:
		return false
	}
}

// FindMember returns the first member accepted by match.
func FindMember(b Bundle, archivePath string, match func(name string) bool) (string, error) {
	members, err := b.List()
	if err != nil {
		return "", fmt.Errorf("list bundle members: %w", err)
	}

	for _, m := range members {
		if match(m.Name) {
			return m.Name, nil
		}
	}

	return "", NoMatchError{Bundle: archivePath}
}

// readMember reads a whole member into memory.
func readMember(b Bundle, internalPath string) ([]byte, error) {
	reader, size, err := b.Open(internalPath)
	if err != nil {
		return nil, fmt.Errorf("open file in bundle: %w", err)
	}
	defer func() { _ = reader.Close() }()

	if size < 0 || size > MaxMemberSize {
		return nil, fmt.Errorf("%w: %s is %d bytes", ErrTooLarge, internalPath, size)
	}

	var buf bytes.Buffer
	buf.Grow(int(size))
	if _, err := io.Copy(&buf, io.LimitReader(reader, size)); err != nil {
		return nil, fmt.Errorf("read file from bundle: %w", err)
	}
	if int64(buf.Len()) != size {
		return nil, fmt.Errorf("read file from bundle: %w", io.ErrUnexpectedEOF)
	}

	return buf.Bytes(), nil
}
