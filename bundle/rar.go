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
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/nwaples/rardecode/v2"
	"github.com/spf13/afero"
)

// RARBundle provides access to files in a RAR bundle.
type RARBundle struct {
	file afero.File
	path string
}

// OpenRAR opens a RAR bundle for reading.
func OpenRAR(fs afero.Fs, path string) (*RARBundle, error) {
	file, err := fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open RAR bundle: %w", err)
	}

	return &RARBundle{
		file: file,
		path: path,
	}, nil
}

// each walks the member headers, stopping when fn returns false.
func (rb *RARBundle) each(fn func(*rardecode.Reader, *rardecode.FileHeader) bool) error {
	if _, err := rb.file.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("seek RAR bundle: %w", err)
	}

	reader, err := rardecode.NewReader(rb.file)
	if err != nil {
		return fmt.Errorf("create RAR reader: %w", err)
	}

	for {
		header, err := reader.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read RAR header: %w", err)
		}
		if !fn(reader, header) {
			return nil
		}
	}
}

// List returns all files in the RAR bundle.
func (rb *RARBundle) List() ([]MemberInfo, error) {
	var files []MemberInfo //nolint:prealloc // RAR file count unknown until full scan
	err := rb.each(func(_ *rardecode.Reader, header *rardecode.FileHeader) bool {
		if !header.IsDir {
			files = append(files, MemberInfo{Name: header.Name, Size: header.UnPackedSize})
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

// Open opens a file within the RAR bundle.
// RAR bundles require sequential reading, so this scans from the start.
func (rb *RARBundle) Open(internalPath string) (io.ReadCloser, int64, error) {
	internalPath = filepath.ToSlash(internalPath)

	var (
		found *rardecode.Reader
		size  int64
	)
	err := rb.each(func(reader *rardecode.Reader, header *rardecode.FileHeader) bool {
		if strings.EqualFold(filepath.ToSlash(header.Name), internalPath) {
			found, size = reader, header.UnPackedSize
			return false
		}
		return true
	})
	if err != nil {
		return nil, 0, err
	}
	if found == nil {
		return nil, 0, FileNotFoundError{
			Bundle:       rb.path,
			InternalPath: internalPath,
		}
	}

	return io.NopCloser(found), size, nil
}

// Close closes the RAR bundle.
func (rb *RARBundle) Close() error {
	return rb.file.Close() //nolint:wrapcheck // Close error passthrough is intentional
}
