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

package archive

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"
)

// ExtractFile copies the entry called name to dest.
func (a *Archive) ExtractFile(name, dest string) error {
	e := a.Find(name)
	if e == nil {
		return NotFoundError{Archive: a.Path, Name: name}
	}
	return a.ExtractEntry(e, dest)
}

// ExtractEntry copies the bytes of e to dest and, where possible, sets its
// modification time to the entry's or the source file's.
func (a *Archive) ExtractEntry(e *Entry, dest string) error {
	fs := a.opener.Fs()
	if e.IsFolder {
		if err := fs.MkdirAll(dest, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dest, err)
		}
		return nil
	}

	r, size, done, err := a.open(e)
	if err != nil {
		return err
	}
	defer done()

	off, n := e.Offset, e.Length
	if e.IsPending() {
		off, n = 0, size
	}

	out, err := fs.Create(dest)
	if err != nil {
		return fmt.Errorf("create %s: %w", dest, err)
	}
	defer func() { _ = out.Close() }()

	written, err := io.Copy(out, io.NewSectionReader(r, off, n))
	if err != nil {
		return fmt.Errorf("extract %s: %w", e.Name, err)
	}
	if written != n {
		return fmt.Errorf("extract %s: %w", e.Name, io.ErrUnexpectedEOF)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close %s: %w", dest, err)
	}

	if mtime := a.modTime(e); !mtime.IsZero() {
		// Timestamps are best effort.
		_ = fs.Chtimes(dest, mtime, mtime)
	}
	return nil
}

func (a *Archive) modTime(e *Entry) time.Time {
	if !e.ModTime.IsZero() {
		return e.ModTime
	}
	src := e.SourcePath
	if e.IsPending() {
		src = e.PendingPath
	}
	if src == "" {
		return time.Time{}
	}
	info, err := a.opener.Fs().Stat(src)
	if err != nil {
		return time.Time{}
	}
	return info.ModTime()
}

// ExtractAll copies every entry below dir, creating directories for entries
// whose names carry them. It returns the number of files written.
func (a *Archive) ExtractAll(dir string) (int, error) {
	n := 0
	for _, e := range a.entries {
		rel := filepath.FromSlash(strings.ReplaceAll(e.Name, "\\", "/"))
		if !filepath.IsLocal(rel) {
			return n, fmt.Errorf("extract %s: %w: name escapes %s", e.Name, ErrInvalidName, dir)
		}
		dest := filepath.Join(dir, rel)
		if !e.IsFolder {
			if err := a.opener.Fs().MkdirAll(filepath.Dir(dest), 0o755); err != nil {
				return n, fmt.Errorf("create %s: %w", filepath.Dir(dest), err)
			}
		}
		if err := a.ExtractEntry(e, dest); err != nil {
			return n, err
		}
		if !e.IsFolder {
			n++
		}
	}
	return n, nil
}
