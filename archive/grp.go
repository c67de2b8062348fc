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

const (
	grpSignature  = "KenSilverman"
	grpRecordSize = 16
	grpNameWidth  = 12
)

// BuildGRP is Ken Silverman's GRP format used by Duke Nukem 3D and other
// Build engine games.
var BuildGRP = &Format{
	ID:          "build-grp",
	Description: "Build engine GRP file",
	Extensions:  []string{".grp"},
	Priority:    20,
	CanSave:     true,
	Load:        loadGRP,
	Save:        saveGRP,
}

func loadGRP(s *Source) (*Loaded, error) {
	if err := s.Magic(0, grpSignature); err != nil {
		return nil, err
	}
	count, err := s.U32(12, "file count")
	if err != nil {
		return nil, err
	}
	if err := s.CheckTable(grpRecordSize, int64(count), grpRecordSize, "file table"); err != nil {
		return nil, err
	}
	table, err := s.Bytes(grpRecordSize, int64(count)*grpRecordSize, "file table")
	if err != nil {
		return nil, err
	}

	entries := make([]*Entry, 0, count)
	pos := int64(grpRecordSize) * (int64(count) + 1)
	for i := range int(count) {
		rec := table[i*grpRecordSize : (i+1)*grpRecordSize]
		name, err := s.Name(rec[:grpNameWidth], encASCII)
		if err != nil {
			return nil, err
		}
		e, err := s.Entry(name, pos, int64(le32(rec, grpNameWidth)))
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
		pos = e.End()
	}
	return &Loaded{Entries: entries}, nil
}

func saveGRP(c *SaveContext) error {
	offs, end := c.Layout(grpRecordSize * (int64(len(c.Entries)) + 1))
	if err := c.CheckEnd(end); err != nil {
		return err
	}

	table := make([]byte, grpRecordSize*(len(c.Entries)+1))
	copy(table, grpSignature)
	put32(table, 12, u32(int64(len(c.Entries))))
	for i, e := range c.Entries {
		rec := table[(i+1)*grpRecordSize:]
		field, err := c.NameField(i, encASCII, grpNameWidth, 0)
		if err != nil {
			return err
		}
		copy(rec, field)
		put32(rec, grpNameWidth, u32(e.Length))
	}
	if err := c.Write(table); err != nil {
		return err
	}
	return c.CopyAll(offs)
}
