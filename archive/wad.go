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

const wadHeaderSize = 12

var wadDir = dirLayout{
	size:      16,
	nameOff:   8,
	nameWidth: 8,
	offOff:    0,
	lenOff:    4,
	enc:       encASCII,
}

// DoomWAD is the Doom engine IWAD/PWAD format. The magic is kept in the
// archive's Aux; lump names repeat across maps, so duplicates are allowed.
var DoomWAD = &Format{
	ID:          "doom-wad",
	Description: "Doom WAD file",
	Extensions:  []string{".wad"},
	Priority:    70,
	CanSave:     true,
	Duplicates:  true,
	Normalize:   NormalizeWADName,
	Load:        loadWAD,
	Save:        saveWAD,
}

func loadWAD(s *Source) (*Loaded, error) {
	magic, err := s.Bytes(0, 4, "signature")
	if err != nil {
		return nil, err
	}
	if string(magic) != "IWAD" && string(magic) != "PWAD" {
		return nil, s.Fail("signature %q, want IWAD or PWAD", magic)
	}
	count, err := s.U32(4, "lump count")
	if err != nil {
		return nil, err
	}
	dirOff, err := s.U32(8, "directory offset")
	if err != nil {
		return nil, err
	}

	entries, err := wadDir.readTable(s, int64(dirOff), int64(count))
	if err != nil {
		return nil, err
	}
	return &Loaded{Entries: entries, Info: string(magic), Aux: magic}, nil
}

func saveWAD(c *SaveContext) error {
	offs, dirOff := c.Layout(wadHeaderSize)
	if err := c.CheckEnd(dirOff + int64(len(c.Entries)*wadDir.size)); err != nil {
		return err
	}
	table, err := wadDir.table(c, offs)
	if err != nil {
		return err
	}

	header := make([]byte, wadHeaderSize)
	if len(c.Aux) == 4 && string(c.Aux) == "IWAD" {
		copy(header, "IWAD")
	} else {
		copy(header, "PWAD")
	}
	put32(header, 4, u32(int64(len(c.Entries))))
	put32(header, 8, u32(dirOff))
	if err := c.Write(header); err != nil {
		return err
	}
	if err := c.CopyAll(offs); err != nil {
		return err
	}
	c.Expect(dirOff, "directory")
	return c.Write(table)
}
