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
	pakHeaderSize = 12
	pakNameWidth  = 56
)

var pakDir = dirLayout{
	size:      64,
	nameWidth: pakNameWidth,
	nameNUL:   1,
	offOff:    56,
	lenOff:    60,
	enc:       encASCII,
}

// QuakePAK is the id Software PACK format used by Quake and its engines.
var QuakePAK = &Format{
	ID:          "quake-pak",
	Description: "Quake PAK file",
	Extensions:  []string{".pak"},
	Priority:    10,
	CanSave:     true,
	Folders:     true,
	Normalize:   normalizePAKPath,
	Load:        loadPAK,
	Save:        savePAK,
}

func loadPAK(s *Source) (*Loaded, error) {
	if err := s.Magic(0, "PACK"); err != nil {
		return nil, err
	}
	dirOff, err := s.U32(4, "directory offset")
	if err != nil {
		return nil, err
	}
	dirLen, err := s.U32(8, "directory length")
	if err != nil {
		return nil, err
	}
	if dirLen%uint32(pakDir.size) != 0 {
		return nil, s.Fail("directory length %d is not a multiple of %d", dirLen, pakDir.size)
	}

	entries, err := pakDir.readTable(s, int64(dirOff), int64(dirLen)/int64(pakDir.size))
	if err != nil {
		return nil, err
	}
	return &Loaded{Entries: entries}, nil
}

func savePAK(c *SaveContext) error {
	offs, dirOff := c.Layout(pakHeaderSize)
	dirLen := int64(len(c.Entries) * pakDir.size)
	if err := c.CheckEnd(dirOff + dirLen); err != nil {
		return err
	}
	table, err := pakDir.table(c, offs)
	if err != nil {
		return err
	}

	header := make([]byte, pakHeaderSize)
	copy(header, "PACK")
	put32(header, 4, u32(dirOff))
	put32(header, 8, u32(dirLen))
	if err := c.Write(header); err != nil {
		return err
	}
	if err := c.CopyAll(offs); err != nil {
		return err
	}
	c.Expect(dirOff, "directory")
	return c.Write(table)
}
