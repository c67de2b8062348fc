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

	"github.com/klauspost/compress/zip"
	"github.com/spf13/afero"
)

// ZIPBundle provides access to files in a ZIP bundle.
type ZIPBundle struct {
	file   afero.File
	reader *zip.Reader
	path   string
}

// OpenZIP opens a ZIP bundle for reading.
func OpenZIP(fs afero.Fs, path string) (*ZIPBundle, error) {
	file, err := fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open ZIP bundle: %w", err)
	}
	info, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("stat ZIP bundle: %w", err)
	}

	reader, err := zip.NewReader(file, info.Size())
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("open ZIP bundle: %w", err)
	}

	return &ZIPBundle{
		file:   file,
		reader: reader,
		path:   path,
	}, nil
}

// List returns all files in the ZIP bundle.
func (zb *ZIPBundle) List() ([]MemberInfo, error) {
	files := make([]MemberInfo, 0, len(zb.reader.File))

	for _, file := range zb.reader.File {
		// Skip directories
		if file.FileInfo().IsDir() {
			continue
		}

		files = append(files, MemberInfo{
			Name: file.Name,
			Size: int64(file.UncompressedSize64), //nolint:gosec // Safe: file sizes don't exceed int64
		})
	}

	return files, nil
}

// Open opens a file within the ZIP bundle.
func (zb *ZIPBundle) Open(internalPath string) (io.ReadCloser, int64, error) {
	internalPath = filepath.ToSlash(internalPath)

	for _, file := range zb.reader.File {
		if strings.EqualFold(file.Name, internalPath) {
			reader, err := file.Open()
			if err != nil {
				return nil, 0, fmt.Errorf("open file in ZIP: %w", err)
			}
			//nolint:gosec // Safe: file sizes don't exceed int64
			return reader, int64(file.UncompressedSize64), nil
		}
	}

	return nil, 0, FileNotFoundError{
		Bundle:       zb.path,
		InternalPath: internalPath,
	}
}

// Close closes the ZIP bundle.
func (zb *ZIPBundle) Close() error {
	return zb.file.Close() //nolint:wrapcheck // Close error passthrough is intentional
}
