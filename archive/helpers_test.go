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
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/ZaparooProject/go-gamearc/archive"
	"github.com/spf13/afero"
)

type file struct {
	name string
	data []byte
}

var sampleFiles = []file{
	{"ONE.TXT", []byte("first file")},
	{"TWO.DAT", bytes.Repeat([]byte{0xAB, 0x00}, 100)},
	{"THREE.BIN", []byte{}},
}

// build creates an archive of format f on a fresh MemMapFs holding files as
// pending entries. It returns the archive and the content of each entry by
// stored name.
func build(t *testing.T, f *archive.Format, files []file) (*archive.Archive, map[string][]byte, afero.Fs) {
	t.Helper()

	fs := afero.NewMemMapFs()
	for _, dir := range []string{"/src", "/out"} {
		if err := fs.MkdirAll(dir, 0o755); err != nil {
			t.Fatal(err)
		}
	}
	a := archive.New(f, "/out/test"+f.Extensions[0], archive.WithFS(fs))
	want := make(map[string][]byte, len(files))
	for _, fl := range files {
		path := "/src/" + fl.name
		if err := afero.WriteFile(fs, path, fl.data, 0o644); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
		e, err := a.InsertFile(path, fl.name)
		if err != nil {
			t.Fatalf("InsertFile(%s) error = %v", fl.name, err)
		}
		want[e.Name] = fl.data
	}
	return a, want, fs
}

// saveBytes saves a in its own format.
func saveBytes(t *testing.T, a *archive.Archive) []byte {
	t.Helper()
	b, err := a.SaveBytes(nil)
	if err != nil {
		t.Fatalf("SaveBytes() error = %v", err)
	}
	return b
}

func le32(b []byte, off int) uint32 {
	return binary.LittleEndian.Uint32(b[off:])
}

func put32(b []byte, off int, v uint32) {
	binary.LittleEndian.PutUint32(b[off:], v)
}

func put16(b []byte, off int, v uint16) {
	binary.LittleEndian.PutUint16(b[off:], v)
}

// twoThingsWAD returns an IWAD with two lumps named THINGS over the same
// bytes.
func twoThingsWAD() []byte {
	b := make([]byte, 12+4+32)
	copy(b, "IWAD")
	put32(b, 4, 2)
	put32(b, 8, 16)
	copy(b[12:], "DATA")
	for i := range 2 {
		rec := b[16+i*16:]
		put32(rec, 0, 12)
		put32(rec, 4, 4)
		copy(rec[8:], "THINGS")
	}
	return b
}

// nameField returns name NUL-padded to n bytes.
func nameField(name string, n int) []byte {
	b := make([]byte, n)
	copy(b, name)
	return b
}
