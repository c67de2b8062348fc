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
	"bytes"
	"strings"
	"time"
)

// HashKind identifies how an entry's Hash was derived.
type HashKind uint8

const (
	HashNone HashKind = iota
	HashWestwoodTD
	HashDynamix
)

func (k HashKind) String() string {
	switch k {
	case HashNone:
		return "none"
	case HashWestwoodTD:
		return "westwood-td"
	case HashDynamix:
		return "dynamix"
	default:
		return "unknown"
	}
}

// Entry is one file stored in, or destined for, an archive.
//
// An entry is either pending, backed by PendingPath with Offset and Length
// of -1, or archived, backed by [Offset, Offset+Length) of SourcePath.
type Entry struct {
	Name     string
	Hash     uint32
	HashKind HashKind

	PendingPath string
	SourcePath  string
	Offset      int64
	Length      int64

	// Info is free text shown in listings.
	Info string

	// Aux holds format bytes the model does not interpret. It is owned by
	// the entry.
	Aux []byte

	IsFolder bool
	ModTime  time.Time
}

// NewPendingEntry returns an entry backed by the file at path.
func NewPendingEntry(path, name string) *Entry {
	return &Entry{
		Name:        name,
		PendingPath: path,
		Offset:      -1,
		Length:      -1,
	}
}

// IsPending reports whether the entry is not yet stored in an archive.
func (e *Entry) IsPending() bool {
	return e.PendingPath != "" || e.Offset < 0
}

// End returns the offset one past the entry's last byte.
func (e *Entry) End() int64 {
	return e.Offset + e.Length
}

// Clone returns a deep copy of e.
func (e *Entry) Clone() *Entry {
	c := *e
	if e.Aux != nil {
		c.Aux = bytes.Clone(e.Aux)
	}
	return &c
}

// Equal reports whether e and o describe the same stored file. Info, Aux,
// ModTime and IsFolder do not take part.
func (e *Entry) Equal(o *Entry) bool {
	if e == nil || o == nil {
		return e == o
	}
	return strings.EqualFold(e.Name, o.Name) &&
		e.Hash == o.Hash &&
		e.HashKind == o.HashKind &&
		strings.EqualFold(e.SourcePath, o.SourcePath) &&
		e.Offset == o.Offset &&
		e.Length == o.Length
}
