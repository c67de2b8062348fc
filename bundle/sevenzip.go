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

//nolint:dupl // Bundle implementations are intentionally similar but use different types
package bundle

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/bodgit/sevenzip"
	"github.com/spf13/afero"
)

// SevenZipBundle provides access to files in a 7z bundle.
type SevenZipBundle struct {
	file   afero.File
	reader *sevenzip.Reader
	path   string
}

// OpenSevenZip opens a 7z bundle for reading.
func OpenSevenZip(fs afero.Fs, path string) (*SevenZipBundle, error) {
	file, err := fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open 7z bundle: %w", err)
	}
	info, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("stat 7z bundle: %w", err)
	}

	reader, err := sevenzip.NewReader(file, info.Size())
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("open 7z bundle: %w", err)
	}

	return &SevenZipBundle{
		file:   file,
		reader: reader,
		path:   path,
	}, nil
}

// List returns all files in the 7z bundle.
func (sb *SevenZipBundle) List() ([]MemberInfo, error) {
	files := make([]MemberInfo, 0, len(sb.reader.File))

	for _, file := range sb.reader.File {
		// Skip directories
		if file.FileInfo().IsDir() {
			continue
		}

		files = append(files, MemberInfo{
			Name: file.Name,
			Size: int64(file.UncompressedSize), //nolint:gosec // Safe: file sizes don't exceed int64
		})
	}

	return files, nil
}

// Open opens a file within the 7z bundle.
func (sb *SevenZipBundle) Open(internalPath string) (io.ReadCloser, int64, error) {
	internalPath = filepath.ToSlash(internalPath)

	for _, file := range sb.reader.File {
		if strings.EqualFold(file.Name, internalPath) {
			reader, err := file.Open()
			if err != nil {
				return nil, 0, fmt.Errorf("open file in 7z: %w", err)
			}
			//nolint:gosec // Safe: file sizes don't exceed int64
			return reader, int64(file.UncompressedSize), nil
		}
	}

	return nil, 0, FileNotFoundError{
		Bundle:       sb.path,
		InternalPath: internalPath,
	}
}

// Close closes the 7z bundle.
func (sb *SevenZipBundle) Close() error {
	return sb.file.Close() //nolint:wrapcheck // Close error passthrough is intentional
}
