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
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
)

const lfdHeaderSize = 16

// LucasArtsLFD is the LucasArts LFD resource format used by X-Wing, TIE
// Fighter and Dark Forces. Entries are named NAME.TYPE; the resource map's
// own name is kept in the archive's Aux.
var LucasArtsLFD = &Format{
	ID:          "lucasarts-lfd",
	Description: "LucasArts LFD resource file",
	Extensions:  []string{".lfd"},
	Priority:    80,
	CanSave:     true,
	Normalize:   NormalizeLFDName,
	Load:        loadLFD,
	Save:        saveLFD,
}

// lfdName joins the name and type fields of a resource header.
func lfdName(s *Source, rec []byte) (string, error) {
	typ, err := s.Name(rec[:4], encASCII)
	if err != nil {
		return "", err
	}
	name, err := s.Name(rec[4:12], encASCII)
	if err != nil {
		return "", err
	}
	return name + "." + typ, nil
}

func loadLFD(s *Source) (*Loaded, error) {
	rmap, err := s.Bytes(0, lfdHeaderSize, "resource map header")
	if err != nil {
		return nil, err
	}
	if string(rmap[:4]) != "RMAP" {
		return nil, s.Fail("first resource is %q, want RMAP", rmap[:4])
	}
	mapLen := int64(le32(rmap, 12))
	if mapLen%lfdHeaderSize != 0 {
		return nil, s.Fail("resource map length %d is not a multiple of %d", mapLen, lfdHeaderSize)
	}
	count := mapLen / lfdHeaderSize
	if err := s.CheckTable(lfdHeaderSize, count, lfdHeaderSize, "resource map"); err != nil {
		return nil, err
	}
	table, err := s.Bytes(lfdHeaderSize, mapLen, "resource map")
	if err != nil {
		return nil, err
	}

	entries := make([]*Entry, 0, count)
	pos := lfdHeaderSize + mapLen
	for i := range int(count) {
		want := table[i*lfdHeaderSize : (i+1)*lfdHeaderSize]
		name, err := lfdName(s, want)
		if err != nil {
			return nil, err
		}
		got, err := s.Bytes(pos, lfdHeaderSize, fmt.Sprintf("header of %s", name))
		if err != nil {
			return nil, err
		}
		if !bytes.Equal(got, want) {
			return nil, s.Fail("resource header at %d does not match the map entry for %s", pos, name)
		}
		e, err := s.Entry(name, pos+lfdHeaderSize, int64(le32(got, 12)))
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
		pos = e.End()
	}

	mapName := bytes.Clone(rmap[4:12])
	return &Loaded{Entries: entries, Info: string(bytes.TrimRight(mapName, "\x00")), Aux: mapName}, nil
}

// lfdHeader builds a resource header for NAME.TYPE.
func lfdHeader(c *SaveContext, i int) ([]byte, error) {
	e := c.Entries[i]
	stem, typ := splitExt(e.Name)
	if stem == "" || typ == "" {
		return nil, c.Fail(ErrInvalidName, "%q is not NAME.TYPE", e.Name)
	}
	t, err := encodeName(typ, encASCII, 4)
	if err != nil {
		return nil, CapabilityError{Format: c.Format.ID, Op: "save", Err: err}
	}
	n, err := encodeName(stem, encASCII, 8)
	if err != nil {
		return nil, CapabilityError{Format: c.Format.ID, Op: "save", Err: err}
	}
	rec := make([]byte, lfdHeaderSize)
	copy(rec, t)
	copy(rec[4:], n)
	put32(rec, 12, u32(e.Length))
	return rec, nil
}

func saveLFD(c *SaveContext) error {
	mapLen := int64(len(c.Entries)) * lfdHeaderSize
	end := lfdHeaderSize + mapLen
	for _, e := range c.Entries {
		end += lfdHeaderSize + e.Length
	}
	if err := c.CheckEnd(end); err != nil {
		return err
	}

	headers := make([][]byte, len(c.Entries))
	table := make([]byte, lfdHeaderSize, lfdHeaderSize+mapLen)
	copy(table, "RMAP")
	if len(c.Aux) == 8 {
		copy(table[4:12], c.Aux)
	} else {
		stem, _ := splitExt(strings.ToUpper(filepath.Base(c.Path)))
		copy(table[4:12], dosPart(stem, 8))
	}
	put32(table, 12, u32(mapLen))
	for i := range c.Entries {
		rec, err := lfdHeader(c, i)
		if err != nil {
			return err
		}
		headers[i] = rec
		table = append(table, rec...)
	}

	if err := c.Write(table); err != nil {
		return err
	}
	pos := lfdHeaderSize + mapLen
	for i, e := range c.Entries {
		if err := c.Write(headers[i]); err != nil {
			return err
		}
		pos += lfdHeaderSize
		if err := c.CopyEntry(i, pos); err != nil {
			return err
		}
		pos += e.Length
	}
	return nil
}
