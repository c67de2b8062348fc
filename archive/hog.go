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
	hogRecordSize = 17
	hogNameWidth  = 13
)

// DescentHOG is the Parallax HOG format used by Descent.
var DescentHOG = &Format{
	ID:          "descent-hog",
	Description: "Descent HOG file",
	Extensions:  []string{".hog"},
	Priority:    50,
	CanSave:     true,
	Load:        loadHOG,
	Save:        saveHOG,
}

func loadHOG(s *Source) (*Loaded, error) {
	if err := s.Magic(0, "DHF"); err != nil {
		return nil, err
	}

	var entries []*Entry
	for pos := int64(3); pos < s.Size; {
		if len(entries) == MaxEntries {
			return nil, s.Fail("more than %d entries", MaxEntries)
		}
		rec, err := s.Bytes(pos, hogRecordSize, "file header")
		if err != nil {
			return nil, err
		}
		name, err := s.Name(rec[:hogNameWidth], encCP437)
		if err != nil {
			return nil, err
		}
		e, err := s.Entry(name, pos+hogRecordSize, int64(le32(rec, hogNameWidth)))
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
		pos = e.End()
	}
	return &Loaded{Entries: entries}, nil
}

func saveHOG(c *SaveContext) error {
	end := int64(3)
	for _, e := range c.Entries {
		end += hogRecordSize + e.Length
	}
	if err := c.CheckEnd(end); err != nil {
		return err
	}

	if err := c.Write([]byte("DHF")); err != nil {
		return err
	}
	pos := int64(3)
	for i, e := range c.Entries {
		rec := make([]byte, hogRecordSize)
		field, err := c.NameField(i, encCP437, hogNameWidth, 1)
		if err != nil {
			return err
		}
		copy(rec, field)
		put32(rec, hogNameWidth, u32(e.Length))
		if err := c.Write(rec); err != nil {
			return err
		}
		pos += hogRecordSize
		if err := c.CopyEntry(i, pos); err != nil {
			return err
		}
		pos += e.Length
	}
	return nil
}
