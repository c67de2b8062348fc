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

import "bytes"

const wwpakNameMax = 12

// WestwoodPAK is the early Westwood PAK format of Dune II and Lands of Lore:
// a stream of offset and name pairs ahead of the data.
var WestwoodPAK = &Format{
	ID:          "westwood-pak",
	Description: "Westwood PAK file",
	Extensions:  []string{".pak"},
	Priority:    150,
	CanSave:     true,
	Load:        loadWWPAK,
	Save:        saveWWPAK,
}

func loadWWPAK(s *Source) (*Loaded, error) {
	type record struct {
		name string
		off  int64
	}
	var (
		records []record
		end     = s.Size
		pos     int64
	)
	for {
		if len(records) > 0 && pos >= records[0].off {
			return nil, s.Fail("file table runs into data at %d", records[0].off)
		}
		off, err := s.U32(pos, "file offset")
		if err != nil {
			return nil, err
		}
		pos += 4
		if off == 0 {
			break
		}

		field, err := s.Bytes(pos, min(wwpakNameMax+1, s.Size-pos), "file name")
		if err != nil {
			return nil, err
		}
		n := bytes.IndexByte(field, 0)
		if n < 0 {
			return nil, s.Fail("name at %d longer than %d bytes", pos, wwpakNameMax)
		}
		pos += int64(n) + 1
		if n == 0 {
			end = int64(off)
			break
		}
		name, err := s.Name(field[:n], encASCII)
		if err != nil {
			return nil, err
		}
		if len(records) > 0 && int64(off) < records[len(records)-1].off {
			return nil, s.Fail("offset %d of %q goes backwards", off, name)
		}
		records = append(records, record{name: name, off: int64(off)})
		if len(records) > MaxEntries {
			return nil, s.Fail("more than %d entries", MaxEntries)
		}
	}

	if len(records) == 0 {
		if end != pos || s.Size != pos {
			return nil, s.Fail("empty file table followed by %d bytes", s.Size-pos)
		}
		return &Loaded{}, nil
	}
	if records[0].off != pos {
		return nil, s.Fail("first file at %d, file table ends at %d", records[0].off, pos)
	}
	if end < records[len(records)-1].off {
		return nil, s.Fail("end offset %d before the last file", end)
	}

	entries := make([]*Entry, 0, len(records))
	for i, r := range records {
		next := end
		if i+1 < len(records) {
			next = records[i+1].off
		}
		e, err := s.Entry(r.name, r.off, next-r.off)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return &Loaded{Entries: entries}, nil
}

func saveWWPAK(c *SaveContext) error {
	names := make([][]byte, len(c.Entries))
	tableEnd := int64(5)
	for i, e := range c.Entries {
		raw, err := encodeName(e.Name, encASCII, wwpakNameMax)
		if err != nil {
			return CapabilityError{Format: c.Format.ID, Op: "save", Err: err}
		}
		names[i] = raw
		tableEnd += 4 + int64(len(raw)) + 1
	}
	offs, end := c.Layout(tableEnd)
	if err := c.CheckEnd(end); err != nil {
		return err
	}

	table := make([]byte, 0, tableEnd)
	for i := range c.Entries {
		table = append(table, 0, 0, 0, 0)
		put32(table, len(table)-4, u32(offs[i]))
		table = append(table, names[i]...)
		table = append(table, 0)
	}
	table = append(table, 0, 0, 0, 0, 0)
	put32(table, len(table)-5, u32(end))

	if err := c.Write(table); err != nil {
		return err
	}
	return c.CopyAll(offs)
}
