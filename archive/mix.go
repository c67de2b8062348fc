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
	"cmp"
	"slices"
)

const (
	mixHeaderSize = 6
	mixRecordSize = 12
)

// WestwoodMIX is the Westwood MIX format of Command & Conquer: Tiberian
// Dawn. Files are stored by name hash only, so entries are listed by their
// eight digit hex id.
var WestwoodMIX = &Format{
	ID:          "westwood-mix",
	Description: "Westwood MIX file",
	Extensions:  []string{".mix"},
	Priority:    110,
	CanSave:     true,
	MaxEntries:  0xFFFF,
	Normalize:   normalizeMIXName,
	Hash:        mixHash,
	Sort:        sortMIX,
	Load:        loadMIX,
	Save:        saveMIX,
}

// sortMIX orders entries by id read as a signed integer, the order the game
// binary-searches.
func sortMIX(entries []*Entry) {
	slices.SortStableFunc(entries, func(a, b *Entry) int {
		return cmp.Compare(int32(a.Hash), int32(b.Hash)) //nolint:gosec // reinterpretation intended
	})
}

func loadMIX(s *Source) (*Loaded, error) {
	count, err := s.U16(0, "file count")
	if err != nil {
		return nil, err
	}
	bodySize, err := s.U32(2, "body size")
	if err != nil {
		return nil, err
	}
	body := mixHeaderSize + int64(count)*mixRecordSize
	if body+int64(bodySize) != s.Size {
		return nil, s.Fail("header describes %d bytes, file is %d", body+int64(bodySize), s.Size)
	}
	table, err := s.Bytes(mixHeaderSize, int64(count)*mixRecordSize, "index")
	if err != nil {
		return nil, err
	}

	entries := make([]*Entry, 0, count)
	for i := range int(count) {
		rec := table[i*mixRecordSize : (i+1)*mixRecordSize]
		id := le32(rec, 0)
		if i > 0 && int32(id) <= int32(entries[i-1].Hash) { //nolint:gosec // signed order
			return nil, s.Fail("index not sorted at id %s", hexID(id))
		}
		off := int64(le32(rec, 4))
		n := int64(le32(rec, 8))
		if off+n > int64(bodySize) {
			return nil, s.Fail("id %s at %d+%d exceeds %d-byte body", hexID(id), off, n, bodySize)
		}
		e, err := s.Entry(hexID(id), body+off, n)
		if err != nil {
			return nil, err
		}
		e.Hash = id
		e.HashKind = HashWestwoodTD
		entries = append(entries, e)
	}
	return &Loaded{Entries: entries}, nil
}

func saveMIX(c *SaveContext) error {
	body := mixHeaderSize + int64(len(c.Entries))*mixRecordSize
	offs, end := c.Layout(body)
	if err := c.CheckEnd(end); err != nil {
		return err
	}

	for i := 1; i < len(c.Entries); i++ {
		if c.Entries[i].Hash == c.Entries[i-1].Hash {
			return c.Fail(ErrInvalidName, "%s and %s share id %s",
				c.Entries[i-1].Info, c.Entries[i].Info, hexID(c.Entries[i].Hash))
		}
	}

	table := make([]byte, body)
	put16(table, 0, uint16(len(c.Entries))) //nolint:gosec // MaxEntries bounds the count
	put32(table, 2, u32(end-body))
	for i, e := range c.Entries {
		rec := table[mixHeaderSize+i*mixRecordSize:]
		put32(rec, 0, e.Hash)
		put32(rec, 4, u32(offs[i]-body))
		put32(rec, 8, u32(e.Length))
	}
	if err := c.Write(table); err != nil {
		return err
	}
	return c.CopyAll(offs)
}
