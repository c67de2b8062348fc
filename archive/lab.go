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

const (
	labHeaderSize = 16
	labRecordSize = 16
	labVersion    = 0x10000
)

// OutlawsLAB is the LucasArts LABN format used by Outlaws. Each entry's
// four-byte type code is kept in its Aux.
var OutlawsLAB = &Format{
	ID:          "outlaws-lab",
	Description: "Outlaws LAB file",
	Extensions:  []string{".lab"},
	Priority:    30,
	CanSave:     true,
	Normalize:   NormalizeLongName,
	Load:        loadLAB,
	Save:        saveLAB,
}

func loadLAB(s *Source) (*Loaded, error) {
	if err := s.Magic(0, "LABN"); err != nil {
		return nil, err
	}
	header, err := s.Bytes(4, 12, "header")
	if err != nil {
		return nil, err
	}
	if v := le32(header, 0); v != labVersion {
		return nil, s.Fail("version 0x%X, want 0x%X", v, labVersion)
	}
	count := int64(le32(header, 4))
	namesSize := int64(le32(header, 8))

	if err := s.CheckTable(labHeaderSize, count, labRecordSize, "file table"); err != nil {
		return nil, err
	}
	table, err := s.Bytes(labHeaderSize, count*labRecordSize, "file table")
	if err != nil {
		return nil, err
	}
	names, err := s.Bytes(labHeaderSize+count*labRecordSize, namesSize, "name table")
	if err != nil {
		return nil, err
	}

	entries := make([]*Entry, 0, count)
	for i := range int(count) {
		rec := table[i*labRecordSize : (i+1)*labRecordSize]
		nameOff := int64(le32(rec, 0))
		if nameOff >= namesSize {
			return nil, s.Fail("name offset %d outside %d-byte name table", nameOff, namesSize)
		}
		end := bytes.IndexByte(names[nameOff:], 0)
		if end < 0 {
			return nil, s.Fail("unterminated name at %d", nameOff)
		}
		name, err := s.Name(names[nameOff:nameOff+int64(end)], encASCII)
		if err != nil {
			return nil, err
		}
		e, err := s.Entry(name, int64(le32(rec, 4)), int64(le32(rec, 8)))
		if err != nil {
			return nil, err
		}
		e.Aux = bytes.Clone(rec[12:16])
		e.Info = string(bytes.TrimRight(rec[12:16], "\x00"))
		entries = append(entries, e)
	}
	return &Loaded{Entries: entries}, nil
}

func saveLAB(c *SaveContext) error {
	var names []byte
	nameOffs := make([]int64, len(c.Entries))
	for i, e := range c.Entries {
		raw, err := encodeName(e.Name, encASCII, len(e.Name))
		if err != nil {
			return CapabilityError{Format: c.Format.ID, Op: "save", Err: err}
		}
		nameOffs[i] = int64(len(names))
		names = append(names, raw...)
		names = append(names, 0)
	}

	tableEnd := labHeaderSize + int64(len(c.Entries))*labRecordSize
	offs, end := c.Layout(tableEnd + int64(len(names)))
	if err := c.CheckEnd(end); err != nil {
		return err
	}

	table := make([]byte, tableEnd)
	copy(table, "LABN")
	put32(table, 4, labVersion)
	put32(table, 8, u32(int64(len(c.Entries))))
	put32(table, 12, u32(int64(len(names))))
	for i, e := range c.Entries {
		rec := table[labHeaderSize+i*labRecordSize:]
		put32(rec, 0, u32(nameOffs[i]))
		put32(rec, 4, u32(offs[i]))
		put32(rec, 8, u32(e.Length))
		if len(e.Aux) == 4 {
			copy(rec[12:16], e.Aux)
		}
	}

	if err := c.Write(table); err != nil {
		return err
	}
	if err := c.Write(names); err != nil {
		return err
	}
	return c.CopyAll(offs)
}
