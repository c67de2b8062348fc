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

// fatLayout describes a fixed-size file allocation table at the start of
// the file. Unused slots have an empty name.
type fatLayout struct {
	slots      int
	recordSize int
	nameWidth  int
}

func (l fatLayout) size() int64 {
	return int64(l.slots * l.recordSize)
}

var apogeeFAT = fatLayout{slots: 200, recordSize: 20, nameWidth: 12}

// CosmoVOL is the Apogee volume format of Cosmo's Cosmic Adventure.
var CosmoVOL = &Format{
	ID:          "cosmo-vol",
	Description: "Cosmo's Cosmic Adventure volume",
	Extensions:  []string{".vol", ".stn"},
	Priority:    130,
	CanSave:     true,
	MaxEntries:  apogeeFAT.slots,
	Load:        func(s *Source) (*Loaded, error) { return loadFAT(s, apogeeFAT) },
	Save:        func(c *SaveContext) error { return saveFAT(c, apogeeFAT) },
}

// DukeNukem2CMP is the Apogee group file of Duke Nukem II.
var DukeNukem2CMP = &Format{
	ID:          "dn2-cmp",
	Description: "Duke Nukem II CMP file",
	Extensions:  []string{".cmp"},
	Priority:    140,
	CanSave:     true,
	MaxEntries:  apogeeFAT.slots,
	Load:        func(s *Source) (*Loaded, error) { return loadFAT(s, apogeeFAT) },
	Save:        func(c *SaveContext) error { return saveFAT(c, apogeeFAT) },
}

func loadFAT(s *Source, l fatLayout) (*Loaded, error) {
	fat, err := s.Bytes(0, l.size(), "file table")
	if err != nil {
		return nil, err
	}

	var entries []*Entry
	for i := range l.slots {
		rec := fat[i*l.recordSize : (i+1)*l.recordSize]
		if rec[0] == 0 {
			break
		}
		name, err := s.Name(rec[:l.nameWidth], encASCII)
		if err != nil {
			return nil, err
		}
		off := int64(le32(rec, l.nameWidth))
		if off < l.size() {
			return nil, s.Fail("entry %q at %d overlaps the file table", name, off)
		}
		e, err := s.Entry(name, off, int64(le32(rec, l.nameWidth+4)))
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if len(entries) == 0 && s.Size != l.size() {
		return nil, s.Fail("empty file table followed by %d bytes", s.Size-l.size())
	}
	return &Loaded{Entries: entries}, nil
}

func saveFAT(c *SaveContext, l fatLayout) error {
	if err := c.CheckCount(l.slots); err != nil {
		return err
	}
	offs, end := c.Layout(l.size())
	if err := c.CheckEnd(end); err != nil {
		return err
	}

	fat := make([]byte, l.size())
	for i, e := range c.Entries {
		rec := fat[i*l.recordSize:]
		field, err := c.NameField(i, encASCII, l.nameWidth, 0)
		if err != nil {
			return err
		}
		copy(rec, field)
		put32(rec, l.nameWidth, u32(offs[i]))
		put32(rec, l.nameWidth+4, u32(e.Length))
	}
	if err := c.Write(fat); err != nil {
		return err
	}
	return c.CopyAll(offs)
}
