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

import (
	"fmt"

	"github.com/ZaparooProject/go-gamearc/codec"
	"github.com/ZaparooProject/go-gamearc/internal/binary"
)

const (
	arcMarker     = 0x1A
	arcHeaderSize = 29
	arcOldSize    = 25 // method 1 headers carry no original size
	arcNameWidth  = 13
	arcMaxMethod  = 11
	arcStored     = 2
)

var arcMethods = [...]string{
	1:  "stored (old)",
	2:  "stored",
	3:  "packed",
	4:  "squeezed",
	5:  "crunched (old)",
	6:  "crunched (rle)",
	7:  "crunched (fast)",
	8:  "crunched",
	9:  "squashed",
	10: "crushed",
	11: "distilled",
}

func arcMethodName(m byte) string {
	if int(m) < len(arcMethods) && arcMethods[m] != "" {
		return arcMethods[m]
	}
	return fmt.Sprintf("method %d", m)
}

// SeaARC is the SEA ARC format. Each entry's header is kept in its Aux so
// compressed members survive a resave; new members are stored.
var SeaARC = &Format{
	ID:          "sea-arc",
	Description: "SEA ARC archive",
	Extensions:  []string{".arc"},
	Priority:    90,
	CanSave:     true,
	Load:        loadARC,
	Save:        saveARC,
	Unpack:      unpackARC,
}

func loadARC(s *Source) (*Loaded, error) {
	var entries []*Entry
	pos := int64(0)
	for {
		mark, err := s.Bytes(pos, 2, "header marker")
		if err != nil {
			return nil, err
		}
		if mark[0] != arcMarker {
			return nil, s.Fail("byte 0x%02X at %d, want header marker", mark[0], pos)
		}
		method := mark[1]
		if method == 0 {
			break
		}
		if method > arcMaxMethod {
			return nil, s.Fail("unknown method %d at %d", method, pos)
		}
		if len(entries) == MaxEntries {
			return nil, s.Fail("more than %d entries", MaxEntries)
		}

		size := int64(arcHeaderSize)
		if method == 1 {
			size = arcOldSize
		}
		header, err := s.Bytes(pos, size, "file header")
		if err != nil {
			return nil, err
		}
		name, err := s.Name(header[2:2+arcNameWidth], encCP437)
		if err != nil {
			return nil, err
		}
		e, err := s.Entry(name, pos+size, int64(le32(header, 15)))
		if err != nil {
			return nil, err
		}
		e.ModTime = binary.DOSTime(le16(header, 19), le16(header, 21))
		e.Aux = header
		e.Info = arcMethodName(method)
		entries = append(entries, e)
		pos = e.End()
	}
	return &Loaded{Entries: entries}, nil
}

// arcKeptHeader reports whether the loaded header of e is written back
// instead of a new stored one.
func arcKeptHeader(e *Entry) bool {
	return !e.IsPending() && (len(e.Aux) == arcHeaderSize || len(e.Aux) == arcOldSize)
}

func arcHeaderLen(e *Entry) int64 {
	if arcKeptHeader(e) {
		return int64(len(e.Aux))
	}
	return arcHeaderSize
}

func saveARC(c *SaveContext) error {
	end := int64(2)
	for _, e := range c.Entries {
		end += arcHeaderLen(e) + e.Length
	}
	if err := c.CheckEnd(end); err != nil {
		return err
	}

	var pos int64
	for i, e := range c.Entries {
		field, err := c.NameField(i, encCP437, arcNameWidth, 1)
		if err != nil {
			return err
		}

		var header []byte
		if arcKeptHeader(e) {
			header = append([]byte(nil), e.Aux...)
			copy(header[2:2+arcNameWidth], field)
			put32(header, 15, u32(e.Length))
		} else {
			data, err := c.ReadEntry(i)
			if err != nil {
				return err
			}
			header = make([]byte, arcHeaderSize)
			header[0] = arcMarker
			header[1] = arcStored
			copy(header[2:], field)
			put32(header, 15, u32(e.Length))
			date, clock := binary.PackDOSTime(e.ModTime)
			put16(header, 19, date)
			put16(header, 21, clock)
			put16(header, 23, crc16(data))
			put32(header, 25, u32(e.Length))
		}

		if err := c.Write(header); err != nil {
			return err
		}
		pos += arcHeaderLen(e)
		if err := c.CopyEntry(i, pos); err != nil {
			return err
		}
		pos += e.Length
	}
	return c.Write([]byte{arcMarker, 0})
}

// unpackARC returns the contents of stored members and checks their CRC.
func unpackARC(e *Entry, data []byte) ([]byte, error) {
	if len(e.Aux) < arcOldSize {
		return data, nil
	}
	method := e.Aux[1]
	if method != 1 && method != arcStored {
		return nil, fmt.Errorf("%w: ARC method %d (%s)", codec.ErrUnsupportedMethod, method, arcMethodName(method))
	}
	if want := le16(e.Aux, 23); crc16(data) != want {
		return nil, fmt.Errorf("%w: CRC 0x%04X, header says 0x%04X", codec.ErrCorrupt, crc16(data), want)
	}
	return data, nil
}
