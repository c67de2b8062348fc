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
	podDescWidth  = 80
	podTableStart = 4 + podDescWidth
	podNameWidth  = 32
)

var podDir = dirLayout{
	size:      40,
	nameWidth: podNameWidth,
	nameNUL:   1,
	offOff:    36,
	lenOff:    32,
	enc:       encASCII,
}

// TerminalVelocityPOD is the Terminal Velocity POD format. The 80 byte
// description is kept in the archive's Aux.
var TerminalVelocityPOD = &Format{
	ID:          "tv-pod",
	Description: "Terminal Velocity POD file",
	Extensions:  []string{".pod"},
	Priority:    120,
	CanSave:     true,
	Folders:     true,
	Normalize:   normalizePODPath,
	Load:        loadPOD,
	Save:        savePOD,
}

func loadPOD(s *Source) (*Loaded, error) {
	count, err := s.U32(0, "entry count")
	if err != nil {
		return nil, err
	}
	desc, err := s.Bytes(4, podDescWidth, "description")
	if err != nil {
		return nil, err
	}
	info, err := decodeName(desc, encCP437)
	if err != nil {
		return nil, s.failErr(err, "bad description")
	}

	entries, err := podDir.readTable(s, podTableStart, int64(count))
	if err != nil {
		return nil, err
	}
	return &Loaded{Entries: entries, Info: info, Aux: desc}, nil
}

func savePOD(c *SaveContext) error {
	tableEnd := podTableStart + int64(len(c.Entries)*podDir.size)
	offs, end := c.Layout(tableEnd)
	if err := c.CheckEnd(end); err != nil {
		return err
	}
	table, err := podDir.table(c, offs)
	if err != nil {
		return err
	}

	header := make([]byte, podTableStart)
	put32(header, 0, u32(int64(len(c.Entries))))
	if len(c.Aux) == podDescWidth {
		copy(header[4:], c.Aux)
	}
	if err := c.Write(header); err != nil {
		return err
	}
	if err := c.Write(table); err != nil {
		return err
	}
	return c.CopyAll(offs)
}
