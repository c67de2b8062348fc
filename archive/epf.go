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

import "fmt"

const (
	epfHeaderSize = 11
	epfRecordSize = 22
	epfNameWidth  = 13
)

// EastPointEPF is the East Point Software EPFS format used by Lion King and
// Alien Breed. Each entry's compression flag and unpacked size are kept in
// its Aux; the header byte at offset 8 is kept in the archive's Aux.
var EastPointEPF = &Format{
	ID:          "eastpoint-epf",
	Description: "East Point EPF file",
	Extensions:  []string{".epf"},
	Priority:    60,
	CanSave:     true,
	MaxEntries:  0xFFFF,
	Load:        loadEPF,
	Save:        saveEPF,
}

func loadEPF(s *Source) (*Loaded, error) {
	if err := s.Magic(0, "EPFS"); err != nil {
		return nil, err
	}
	header, err := s.Bytes(4, epfHeaderSize-4, "header")
	if err != nil {
		return nil, err
	}
	fatOff := int64(le32(header, 0))
	count := int64(le16(header, 5))
	if fatOff < epfHeaderSize {
		return nil, s.Fail("file table at %d overlaps the header", fatOff)
	}
	if err := s.CheckTable(fatOff, count, epfRecordSize, "file table"); err != nil {
		return nil, err
	}
	table, err := s.Bytes(fatOff, count*epfRecordSize, "file table")
	if err != nil {
		return nil, err
	}

	entries := make([]*Entry, 0, count)
	pos := int64(epfHeaderSize)
	for i := range int(count) {
		rec := table[i*epfRecordSize : (i+1)*epfRecordSize]
		name, err := s.Name(rec[:epfNameWidth], encCP437)
		if err != nil {
			return nil, err
		}
		e, err := s.Entry(name, pos, int64(le32(rec, 14)))
		if err != nil {
			return nil, err
		}
		if e.End() > fatOff {
			return nil, s.Fail("entry %q runs into the file table", name)
		}
		flag := rec[13]
		unpacked := le32(rec, 18)
		e.Aux = []byte{flag, rec[18], rec[19], rec[20], rec[21]}
		if flag != 0 {
			e.Info = fmt.Sprintf("compressed, %d bytes unpacked", unpacked)
		}
		entries = append(entries, e)
		pos = e.End()
	}
	return &Loaded{Entries: entries, Aux: []byte{header[4]}}, nil
}

func saveEPF(c *SaveContext) error {
	offs, fatOff := c.Layout(epfHeaderSize)
	if err := c.CheckEnd(fatOff + int64(len(c.Entries))*epfRecordSize); err != nil {
		return err
	}

	table := make([]byte, len(c.Entries)*epfRecordSize)
	for i, e := range c.Entries {
		rec := table[i*epfRecordSize:]
		field, err := c.NameField(i, encCP437, epfNameWidth, 1)
		if err != nil {
			return err
		}
		copy(rec, field)
		put32(rec, 14, u32(e.Length))
		if len(e.Aux) == 5 && !e.IsPending() {
			rec[13] = e.Aux[0]
			copy(rec[18:22], e.Aux[1:])
		} else {
			put32(rec, 18, u32(e.Length))
		}
	}

	header := make([]byte, epfHeaderSize)
	copy(header, "EPFS")
	put32(header, 4, u32(fatOff))
	if len(c.Aux) == 1 {
		header[8] = c.Aux[0]
	}
	put16(header, 9, uint16(len(c.Entries))) //nolint:gosec // MaxEntries bounds the count
	if err := c.Write(header); err != nil {
		return err
	}
	if err := c.CopyAll(offs); err != nil {
		return err
	}
	c.Expect(fatOff, "file table")
	return c.Write(table)
}
