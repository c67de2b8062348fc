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
	"errors"
	"fmt"
)

// Limits against hostile tables.
const (
	// MaxEntries caps the number of entries a loader accepts.
	MaxEntries = 1 << 20

	// MaxEntrySize caps the size of a single entry read into memory.
	MaxEntrySize = 1 << 30
)

// Capability sentinels, wrapped by CapabilityError.
var (
	ErrLoadOnly        = errors.New("format is load-only")
	ErrFolders         = errors.New("format cannot store folders")
	ErrNameTooLong     = errors.New("name too long for format")
	ErrTooManyEntries  = errors.New("too many entries for format")
	ErrEntryTooLarge   = errors.New("entry too large for format")
	ErrReadOnlySource  = errors.New("path is inside a read-only bundle or wrapper")
	ErrInvalidName     = errors.New("invalid entry name")
	ErrDuplicateName   = errors.New("duplicate entry name")
	ErrUnknownFormat   = errors.New("unknown archive format")
	ErrNoUnpack        = errors.New("format has no packed entries")
	ErrUnsupportedName = errors.New("name cannot be encoded")
)

// ParseError is returned when a stream does not match a format. Detection
// records it and moves on; an explicit single-format load returns it.
type ParseError struct {
	Format string
	Path   string
	Reason string
	Err    error
}

func (e ParseError) Error() string {
	msg := fmt.Sprintf("%s: not a valid %s archive: %s", e.Path, e.Format, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e ParseError) Unwrap() error {
	return e.Err
}

// CapabilityError is returned when a format cannot represent a request.
type CapabilityError struct {
	Format string
	Op     string
	Reason string
	Err    error
}

func (e CapabilityError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s %s: %v: %s", e.Format, e.Op, e.Err, e.Reason)
	}
	return fmt.Sprintf("%s %s: %v", e.Format, e.Op, e.Err)
}

func (e CapabilityError) Unwrap() error {
	return e.Err
}

// NotFoundError is returned when a name has no entry.
type NotFoundError struct {
	Archive string
	Name    string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("entry %q not found in %q", e.Name, e.Archive)
}

// IsParseError reports whether err is, or wraps, a ParseError.
func IsParseError(err error) bool {
	var pe ParseError
	return errors.As(err, &pe)
}
