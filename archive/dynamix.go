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

	"github.com/ZaparooProject/go-gamearc/codec"
)

const (
	dynIndexHeader  = 6
	dynNameWidth    = 13
	dynRecordSize   = 8
	dynVolumeHeader = dynNameWidth + 4
)

// DynamixVOL is the Dynamix resource index used by Stellar 7 and Nova 9.
// The index names companion volume files that hold the data; it is
// load-only. Payloads are packed blocks, decoded by Unpack.
var DynamixVOL = &Format{
	ID:          "dynamix-vol",
	Description: "Dynamix resource index and volumes",
	Extensions:  []string{".rmf", ".vga", ".map"},
	Priority:    100,
	Load:        loadDynamix,
	Unpack: func(_ *Entry, data []byte) ([]byte, error) {
		return codec.DecodeBlock(data)
	},
}

func loadDynamix(s *Source) (*Loaded, error) {
	volumes, err := s.U16(4, "volume count")
	if err != nil {
		return nil, err
	}
	if volumes == 0 {
		return nil, s.Fail("no volumes")
	}

	var entries []*Entry
	pos := int64(dynIndexHeader)
	for range int(volumes) {
		vh, err := s.Bytes(pos, dynNameWidth+2, "volume header")
		if err != nil {
			return nil, err
		}
		volName, err := s.Name(vh[:dynNameWidth], encASCII)
		if err != nil {
			return nil, err
		}
		count := int64(le16(vh, dynNameWidth))
		pos += dynNameWidth + 2

		table, err := s.Bytes(pos, count*dynRecordSize, "volume "+volName)
		if err != nil {
			return nil, err
		}
		pos += count * dynRecordSize

		vol, err := loadDynamixVolume(s, volName, table)
		if err != nil {
			return nil, err
		}
		entries = append(entries, vol...)
	}
	if pos != s.Size {
		return nil, s.Fail("%d trailing bytes after the index", s.Size-pos)
	}
	return &Loaded{Entries: entries}, nil
}

// loadDynamixVolume resolves the index records of one volume file.
func loadDynamixVolume(s *Source, volName string, table []byte) ([]*Entry, error) {
	f, err := s.Sibling(volName)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	vs := &Source{Format: s.Format, Path: f.Path, R: f, Size: f.Size, opener: s.opener}
	entries := make([]*Entry, 0, len(table)/dynRecordSize)
	for i := 0; i < len(table); i += dynRecordSize {
		checksum := le32(table, i)
		off := int64(le32(table, i+4))
		header, err := vs.Bytes(off, dynVolumeHeader, fmt.Sprintf("resource header at %d", off))
		if err != nil {
			return nil, err
		}
		name, err := vs.Name(header[:dynNameWidth], encASCII)
		if err != nil {
			return nil, err
		}
		e, err := vs.Entry(name, off+dynVolumeHeader, int64(le32(header, dynNameWidth)))
		if err != nil {
			return nil, err
		}
		e.Hash = checksum
		e.HashKind = HashDynamix
		e.Info = volName
		entries = append(entries, e)
	}
	return entries, nil
}
