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

// Package gamearc reads, edits and writes the container files that DOS-era
// games packed their data into: Quake PAKs, Build GRPs, Doom WADs, Westwood
// MIX files and a dozen others. It can detect the format of an unknown file
// from its contents and convert between formats.
//
// Formats live in the archive package; the packed-data codecs they use are
// in codec. Paths may name members of ZIP, 7z and RAR bundles or files
// compressed with gzip, xz, lzma, zstd or lz4; see the bundle package.
package gamearc

import (
	"fmt"

	"github.com/ZaparooProject/go-gamearc/archive"
)

// Version is the library and command version.
const Version = "0.1.0"

// Archive is an alias for archive.Archive for convenience.
type Archive = archive.Archive

// Entry is an alias for archive.Entry for convenience.
type Entry = archive.Entry

// Format is an alias for archive.Format for convenience.
type Format = archive.Format

// ErrUnknownFormat is wrapped by DetectError.
var ErrUnknownFormat = archive.ErrUnknownFormat

// Formats returns every supported format in detection order.
func Formats() []*Format {
	return archive.Formats()
}

// FormatByID returns the format with the given ID, compared
// case-insensitively.
func FormatByID(id string) (*Format, error) {
	f, ok := archive.FormatByID(id)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, id)
	}
	return f, nil
}

// Open detects the format of the file at path and loads it. The path may
// name a member of a bundle, such as "game.zip/DUKE3D.GRP", or a compressed
// file. A bare bundle path opens the first member with the extension of a
// known format. Entries of plain files are read from path again when needed.
func Open(path string, opts ...Option) (*Archive, []archive.ParseError, error) {
	c := newConfig(opts)
	member, err := c.opener.Resolve(path, isArchiveName)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", path, err)
	}
	path = member
	f, err := c.opener.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	a, attempts, err := detect(f, f.Size, path, c)
	if err != nil {
		return nil, attempts, err
	}
	if !f.ReadOnly {
		a.Detach()
	}
	return a, attempts, nil
}

// isArchiveName reports whether name has the extension of any format.
func isArchiveName(name string) bool {
	for _, f := range archive.Formats() {
		if f.MatchesExtension(name) {
			return true
		}
	}
	return false
}

// Load loads the file at path as format f. A bare bundle path loads the
// first member with one of f's extensions.
func Load(f *Format, path string, opts ...Option) (*Archive, error) {
	c := newConfig(opts)
	member, err := c.opener.Resolve(path, f.MatchesExtension)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	a, err := archive.Load(f, member, c.archiveOptions()...)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return a, nil
}
