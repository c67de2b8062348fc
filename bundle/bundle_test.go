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

package bundle_test

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/ZaparooProject/go-gamearc/bundle"
	"github.com/spf13/afero"
)

func TestOpenBundle_ZIP(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	writeZIP(t, fs, "/games/duke.zip", map[string][]byte{
		"DUKE3D.GRP":     []byte("KenSilverman"),
		"docs/README.TXT": []byte("hello"),
	})

	b, err := bundle.OpenBundle(fs, "/games/duke.zip")
	if err != nil {
		t.Fatalf("OpenBundle() error = %v", err)
	}
	defer func() { _ = b.Close() }()

	members, err := b.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(members) != 2 {
		t.Fatalf("List() = %d members, want 2", len(members))
	}

	reader, size, err := b.Open("duke3d.grp")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer func() { _ = reader.Close() }()

	if size != 12 {
		t.Errorf("size = %d, want 12", size)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if !bytes.Equal(data, []byte("KenSilverman")) {
		t.Errorf("content = %q", data)
	}
}

func TestOpenBundle_MemberNotFound(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	writeZIP(t, fs, "/games/duke.zip", map[string][]byte{"DUKE3D.GRP": {1}})

	b, err := bundle.OpenBundle(fs, "/games/duke.zip")
	if err != nil {
		t.Fatalf("OpenBundle() error = %v", err)
	}
	defer func() { _ = b.Close() }()

	_, _, err = b.Open("MISSING.GRP")
	var notFound bundle.FileNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("Open() error = %v, want FileNotFoundError", err)
	}
	if notFound.InternalPath != "MISSING.GRP" {
		t.Errorf("InternalPath = %q", notFound.InternalPath)
	}
	if !bundle.IsNotExist(err) {
		t.Error("IsNotExist() = false")
	}
}

func TestOpenBundle_Unsupported(t *testing.T) {
	t.Parallel()

	_, err := bundle.OpenBundle(afero.NewMemMapFs(), "/games/duke.tar")
	var formatErr bundle.FormatError
	if !errors.As(err, &formatErr) {
		t.Fatalf("OpenBundle() error = %v, want FormatError", err)
	}
	if formatErr.Format != ".tar" {
		t.Errorf("Format = %q, want .tar", formatErr.Format)
	}
}

func TestOpenBundle_Corrupt(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	if err := afero.WriteFile(fs, "/bad.zip", []byte("not a zip"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := bundle.OpenBundle(fs, "/bad.zip"); err == nil {
		t.Error("OpenBundle() on garbage should fail")
	}
}

func TestFindMember(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	writeZIP(t, fs, "/games/quake.zip", map[string][]byte{
		"README.TXT":   []byte("x"),
		"ID1/PAK0.PAK": []byte("PACK"),
	})

	b, err := bundle.OpenBundle(fs, "/games/quake.zip")
	if err != nil {
		t.Fatalf("OpenBundle() error = %v", err)
	}
	defer func() { _ = b.Close() }()

	name, err := bundle.FindMember(b, "/games/quake.zip", func(name string) bool {
		return strings.HasSuffix(strings.ToLower(name), ".pak")
	})
	if err != nil {
		t.Fatalf("FindMember() error = %v", err)
	}
	if name != "ID1/PAK0.PAK" {
		t.Errorf("FindMember() = %q", name)
	}

	_, err = bundle.FindMember(b, "/games/quake.zip", func(string) bool { return false })
	var noMatch bundle.NoMatchError
	if !errors.As(err, &noMatch) {
		t.Errorf("FindMember() error = %v, want NoMatchError", err)
	}
}

func TestIsBundleExtension(t *testing.T) {
	t.Parallel()

	tests := []struct {
		ext  string
		want bool
	}{
		{".zip", true},
		{".ZIP", true},
		{".7z", true},
		{".rar", true},
		{".gz", false},
		{".grp", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.ext, func(t *testing.T) {
			t.Parallel()
			if got := bundle.IsBundleExtension(tt.ext); got != tt.want {
				t.Errorf("IsBundleExtension(%q) = %v, want %v", tt.ext, got, tt.want)
			}
		})
	}
}
