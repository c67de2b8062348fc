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
	"sync"
	"testing"

	"github.com/ZaparooProject/go-gamearc/bundle"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/spf13/afero"
	"github.com/ulikunitz/xz"
	"github.com/ulikunitz/xz/lzma"
)

var payload = bytes.Repeat([]byte("PWAD\x01\x00\x00\x00"), 64)

func readAll(t *testing.T, f *bundle.File) []byte {
	t.Helper()
	buf := make([]byte, f.Size)
	if _, err := f.ReadAt(buf, 0); err != nil && !errors.Is(err, io.EOF) {
		t.Fatalf("ReadAt() error = %v", err)
	}
	return buf
}

func TestOpener_PlainFile(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	if err := afero.WriteFile(fs, "/games/DOOM.WAD", payload, 0o644); err != nil {
		t.Fatal(err)
	}

	o := bundle.NewOpener(bundle.WithFs(fs))
	f, err := o.Open("/games/DOOM.WAD")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer func() { _ = f.Close() }()

	if f.ReadOnly {
		t.Error("plain file should be writable")
	}
	if f.Size != int64(len(payload)) {
		t.Errorf("Size = %d, want %d", f.Size, len(payload))
	}
	if !bytes.Equal(readAll(t, f), payload) {
		t.Error("content mismatch")
	}
	if o.ReadOnly("/games/DOOM.WAD") {
		t.Error("ReadOnly() = true for plain path")
	}
}

func TestOpener_BundleMember(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	writeZIP(t, fs, "/games/doom.zip", map[string][]byte{"DOOM.WAD": payload})

	o := bundle.NewOpener(bundle.WithFs(fs), bundle.WithCacheSize(2))
	for range 2 {
		f, err := o.Open("/games/doom.zip/doom.wad")
		if err != nil {
			t.Fatalf("Open() error = %v", err)
		}
		if !f.ReadOnly {
			t.Error("bundle member should be read-only")
		}
		if !bytes.Equal(readAll(t, f), payload) {
			t.Error("content mismatch")
		}
		_ = f.Close()
	}
	if !o.ReadOnly("/games/doom.zip/DOOM.WAD") {
		t.Error("ReadOnly() = false for bundle member")
	}
}

func TestOpener_ConcurrentMember(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	writeZIP(t, fs, "/games/doom.zip", map[string][]byte{"DOOM.WAD": payload})
	o := bundle.NewOpener(bundle.WithFs(fs))

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			f, err := o.Open("/games/doom.zip/DOOM.WAD")
			if err != nil {
				errs <- err
				return
			}
			defer func() { _ = f.Close() }()
			if f.Size != int64(len(payload)) {
				errs <- io.ErrShortBuffer
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("concurrent Open() error = %v", err)
	}
}

func TestOpener_BundleWithoutMember(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	writeZIP(t, fs, "/games/doom.zip", map[string][]byte{"DOOM.WAD": payload})

	_, err := bundle.NewOpener(bundle.WithFs(fs)).Open("/games/doom.zip")
	var formatErr bundle.FormatError
	if !errors.As(err, &formatErr) {
		t.Errorf("Open() error = %v, want FormatError", err)
	}
}

func TestOpener_Resolve(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	writeZIP(t, fs, "/games/doom.zip", map[string][]byte{"DOOM.WAD": payload, "README.TXT": []byte("x")})
	o := bundle.NewOpener(bundle.WithFs(fs))
	isWAD := func(name string) bool { return strings.HasSuffix(strings.ToUpper(name), ".WAD") }

	tests := []struct {
		path string
		want string
	}{
		{"/games/doom.zip", "/games/doom.zip/DOOM.WAD"},
		{"/games/doom.zip/README.TXT", "/games/doom.zip/README.TXT"},
		{"/games/plain.wad", "/games/plain.wad"},
	}
	for _, tt := range tests {
		got, err := o.Resolve(tt.path, isWAD)
		if err != nil {
			t.Errorf("Resolve(%s) error = %v", tt.path, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Resolve(%s) = %q, want %q", tt.path, got, tt.want)
		}
	}

	f, err := o.Open("/games/doom.zip/DOOM.WAD")
	if err != nil {
		t.Fatalf("Open() of the resolved member error = %v", err)
	}
	_ = f.Close()

	_, err = o.Resolve("/games/doom.zip", func(string) bool { return false })
	var noMatch bundle.NoMatchError
	if !errors.As(err, &noMatch) {
		t.Errorf("Resolve() error = %v, want NoMatchError", err)
	}
}

func TestOpener_Missing(t *testing.T) {
	t.Parallel()

	_, err := bundle.NewOpener(bundle.WithFs(afero.NewMemMapFs())).Open("/nope/DOOM.WAD")
	if !bundle.IsNotExist(err) {
		t.Errorf("Open() error = %v, want not-exist", err)
	}
}

func TestOpener_Wrappers(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		compress func(w io.Writer) (io.WriteCloser, error)
	}{
		{"DOOM.WAD.gz", func(w io.Writer) (io.WriteCloser, error) { return gzip.NewWriter(w), nil }},
		{"DOOM.WAD.zst", func(w io.Writer) (io.WriteCloser, error) { return zstd.NewWriter(w) }},
		{"DOOM.WAD.xz", func(w io.Writer) (io.WriteCloser, error) { return xz.NewWriter(w) }},
		{"DOOM.WAD.lzma", func(w io.Writer) (io.WriteCloser, error) { return lzma.NewWriter(w) }},
		{"DOOM.WAD.lz4", func(w io.Writer) (io.WriteCloser, error) { return lz4.NewWriter(w), nil }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			w, err := tt.compress(&buf)
			if err != nil {
				t.Fatalf("new writer: %v", err)
			}
			if _, err := w.Write(payload); err != nil {
				t.Fatalf("write: %v", err)
			}
			if err := w.Close(); err != nil {
				t.Fatalf("close: %v", err)
			}

			fs := afero.NewMemMapFs()
			path := "/games/" + tt.name
			if err := afero.WriteFile(fs, path, buf.Bytes(), 0o644); err != nil {
				t.Fatal(err)
			}

			o := bundle.NewOpener(bundle.WithFs(fs), bundle.WithCacheSize(0))
			f, err := o.Open(path)
			if err != nil {
				t.Fatalf("Open() error = %v", err)
			}
			if !f.ReadOnly {
				t.Error("wrapped file should be read-only")
			}
			if !bytes.Equal(readAll(t, f), payload) {
				t.Error("content mismatch")
			}
			if got := bundle.LogicalName(path); got != "/games/DOOM.WAD" {
				t.Errorf("LogicalName() = %q", got)
			}
		})
	}
}

func TestOpener_CorruptWrapper(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	if err := afero.WriteFile(fs, "/DOOM.WAD.gz", []byte("garbage"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := bundle.NewOpener(bundle.WithFs(fs)).Open("/DOOM.WAD.gz"); err == nil {
		t.Error("Open() on corrupt gzip should fail")
	}
}

func TestOpener_Sibling(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	if err := fs.MkdirAll("/games/tribes", 0o755); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"/games/tribes/SIMVOL.RMF", "/games/tribes/Simvol0.vol"} {
		if err := afero.WriteFile(fs, name, []byte{0}, 0o644); err != nil {
			t.Fatal(err)
		}
	}

	o := bundle.NewOpener(bundle.WithFs(fs))
	if got := o.Sibling("/games/tribes/SIMVOL.RMF", "SIMVOL0.VOL"); got != "/games/tribes/Simvol0.vol" {
		t.Errorf("Sibling() = %q, want case-insensitive match", got)
	}
	if got := o.Sibling("/games/tribes/SIMVOL.RMF", "MISSING.VOL"); got != "/games/tribes/MISSING.VOL" {
		t.Errorf("Sibling() = %q", got)
	}

	writeZIP(t, fs, "/games/t.zip", map[string][]byte{"DATA/SIMVOL.RMF": {0}})
	if got := o.Sibling("/games/t.zip/DATA/SIMVOL.RMF", "SIMVOL0.VOL"); got != "/games/t.zip/DATA/SIMVOL0.VOL" {
		t.Errorf("Sibling() in bundle = %q", got)
	}
}
