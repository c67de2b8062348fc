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

// dirLayout places the fields of a fixed-size directory record.
type dirLayout struct {
	size      int
	nameOff   int
	nameWidth int
	nameNUL   int // trailing NUL bytes the name must leave
	offOff    int
	lenOff    int
	enc       nameEncoding
}

func (l dirLayout) parse(s *Source, rec []byte) (*Entry, error) {
	name, err := s.Name(rec[l.nameOff:l.nameOff+l.nameWidth], l.enc)
	if err != nil {
		return nil, err
	}
	return s.Entry(name, int64(le32(rec, l.offOff)), int64(le32(rec, l.lenOff)))
}

// readTable parses count records starting at off.
func (l dirLayout) readTable(s *Source, off, count int64) ([]*Entry, error) {
	if err := s.CheckTable(off, count, int64(l.size), "directory"); err != nil {
		return nil, err
	}
	table, err := s.Bytes(off, count*int64(l.size), "directory")
	if err != nil {
		return nil, err
	}

	entries := make([]*Entry, 0, count)
	for i := range int(count) {
		e, err := l.parse(s, table[i*l.size:(i+1)*l.size])
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// table builds the directory for the entries of c at offs.
func (l dirLayout) table(c *SaveContext, offs []int64) ([]byte, error) {
	table := make([]byte, len(c.Entries)*l.size)
	for i, e := range c.Entries {
		rec := table[i*l.size : (i+1)*l.size]
		field, err := c.NameField(i, l.enc, l.nameWidth, l.nameNUL)
		if err != nil {
			return nil, err
		}
		copy(rec[l.nameOff:], field)
		put32(rec, l.offOff, u32(offs[i]))
		put32(rec, l.lenOff, u32(e.Length))
	}
	return table, nil
}
