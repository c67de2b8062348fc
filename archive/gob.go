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
	gobHeaderSize = 8
	gobRecordSize = 21
	gobNameWidth  = 13
)

// DarkForcesGOB is the LucasArts GOB format used by Dark Forces.
var DarkForcesGOB = &Format{
	ID:          "darkforces-gob",
	Description: "Dark Forces GOB file",
	Extensions:  []string{".gob"},
	Priority:    40,
	CanSave:     true,
	Load:        loadGOB,
	Save:        saveGOB,
}

func loadGOB(s *Source) (*Loaded, error) {
	if err := s.Magic(0, "GOB\x0A"); err != nil {
		return nil, err
	}
	dirOff, err := s.U32(4, "directory offset")
	if err != nil {
		return nil, err
	}
	count, err := s.U32(int64(dirOff), "file count")
	if err != nil {
		return nil, err
	}
	start := int64(dirOff) + 4
	if err := s.CheckTable(start, int64(count), gobRecordSize, "directory"); err != nil {
		return nil, err
	}
	table, err := s.Bytes(start, int64(count)*gobRecordSize, "directory")
	if err != nil {
		return nil, err
	}

	entries := make([]*Entry, 0, count)
	for i := range int(count) {
		rec := table[i*gobRecordSize : (i+1)*gobRecordSize]
		name, err := s.Name(rec[8:8+gobNameWidth], encASCII)
		if err != nil {
			return nil, err
		}
		e, err := s.Entry(name, int64(le32(rec, 0)), int64(le32(rec, 4)))
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return &Loaded{Entries: entries}, nil
}

func saveGOB(c *SaveContext) error {
	offs, dirOff := c.Layout(gobHeaderSize)
	if err := c.CheckEnd(dirOff + 4 + int64(len(c.Entries))*gobRecordSize); err != nil {
		return err
	}

	table := make([]byte, 4+len(c.Entries)*gobRecordSize)
	put32(table, 0, u32(int64(len(c.Entries))))
	for i, e := range c.Entries {
		rec := table[4+i*gobRecordSize:]
		put32(rec, 0, u32(offs[i]))
		put32(rec, 4, u32(e.Length))
		field, err := c.NameField(i, encASCII, gobNameWidth, 1)
		if err != nil {
			return err
		}
		copy(rec[8:], field)
	}

	header := make([]byte, gobHeaderSize)
	copy(header, "GOB\x0A")
	put32(header, 4, u32(dirOff))
	if err := c.Write(header); err != nil {
		return err
	}
	if err := c.CopyAll(offs); err != nil {
		return err
	}
	c.Expect(dirOff, "directory")
	return c.Write(table)
}
