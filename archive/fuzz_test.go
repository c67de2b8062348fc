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

package archive_test

import (
	"strings"
	"testing"

	"github.com/ZaparooProject/go-gamearc/archive"
	"github.com/spf13/afero"
)

// seedArchives saves a small archive in every saveable format.
func seedArchives(tb testing.TB) [][]byte {
	tb.Helper()

	fs := afero.NewMemMapFs()
	if err := afero.WriteFile(fs, "/src/ONE.TXT", []byte("first file"), 0o644); err != nil {
		tb.Fatal(err)
	}
	if err := afero.WriteFile(fs, "/src/TWO.DAT", []byte{1, 2, 3, 4}, 0o644); err != nil {
		tb.Fatal(err)
	}

	var seeds [][]byte
	for _, f := range archive.Formats() {
		if !f.CanSave {
			continue
		}
		a := archive.New(f, "/out/seed"+f.Extensions[0], archive.WithFS(fs))
		for _, name := range []string{"/src/ONE.TXT", "/src/TWO.DAT"} {
			if _, err := a.InsertFile(name, ""); err != nil {
				tb.Fatalf("%s: InsertFile(%s) error = %v", f.ID, name, err)
			}
		}
		b, err := a.SaveBytes(nil)
		if err != nil {
			tb.Fatalf("%s: SaveBytes() error = %v", f.ID, err)
		}
		seeds = append(seeds, b)
	}
	return seeds
}

func FuzzLoad(f *testing.F) {
	for _, seed := range seedArchives(f) {
		f.Add(seed)
	}
	f.Add([]byte{})
	f.Add([]byte{0x1A, 0x00})

	f.Fuzz(func(t *testing.T, data []byte) {
		fs := afero.NewMemMapFs()
		for _, format := range archive.Formats() {
			path := "/fuzz" + format.Extensions[0]
			a, err := archive.LoadBytes(format, data, path, archive.WithFS(fs))
			if err != nil {
				continue
			}
			for _, e := range a.Entries() {
				if !strings.EqualFold(e.SourcePath, path) {
					continue
				}
				if e.Offset < 0 || e.Length < 0 || e.End() > int64(len(data)) {
					t.Fatalf("%s: entry %q at %d+%d outside %d bytes", format.ID, e.Name, e.Offset, e.Length, len(data))
				}
			}
		}
	})
}
