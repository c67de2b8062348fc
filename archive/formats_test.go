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
	"errors"
	"testing"

	"github.com/ZaparooProject/go-gamearc/archive"
	"github.com/ZaparooProject/go-gamearc/codec"
	"github.com/spf13/afero"
)

// sizeField locates the length field of the first entry in a saved archive.
var sizeField = map[string]func(b []byte) int{
	"quake-pak":      func(b []byte) int { return int(le32(b, 4)) + 60 },
	"build-grp":      func([]byte) int { return 16 + 12 },
	"outlaws-lab":    func([]byte) int { return 16 + 8 },
	"darkforces-gob": func(b []byte) int { return int(le32(b, 4)) + 4 + 4 },
	"descent-hog":    func([]byte) int { return 3 + 13 },
	"eastpoint-epf":  func(b []byte) int { return int(le32(b, 4)) + 14 },
	"doom-wad":       func(b []byte) int { return int(le32(b, 8)) + 4 },
	"lucasarts-lfd":  func([]byte) int { return 16 + 12 },
	"sea-arc":        func([]byte) int { return 15 },
	"westwood-mix":   func([]byte) int { return 6 + 8 },
	"tv-pod":         func([]byte) int { return 84 + 32 },
	"cosmo-vol":      func([]byte) int { return 16 },
	"dn2-cmp":        func([]byte) int { return 16 },
	"westwood-pak":   func([]byte) int { return 0 },
}

func TestRejectOutOfBoundsEntry(t *testing.T) {
	t.Parallel()

	for _, f := range archive.Formats() {
		field, ok := sizeField[f.ID]
		if !ok {
			continue
		}
		t.Run(f.ID, func(t *testing.T) {
			t.Parallel()

			a, _, _ := build(t, f, sampleFiles)
			b := saveBytes(t, a)
			put32(b, field(b), 0x7FFFFFF0)

			_, err := archive.LoadBytes(f, b, "bad"+f.Extensions[0])
			var pe archive.ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("LoadBytes() error = %v, want ParseError", err)
			}
			if pe.Format != f.ID {
				t.Errorf("ParseError.Format = %q, want %q", pe.Format, f.ID)
			}
		})
	}
}

func TestRejectTruncated(t *testing.T) {
	t.Parallel()

	for _, f := range archive.Formats() {
		if !f.CanSave {
			continue
		}
		t.Run(f.ID, func(t *testing.T) {
			t.Parallel()

			a, _, _ := build(t, f, sampleFiles)
			b := saveBytes(t, a)
			for _, n := range []int{0, len(b) / 2, len(b) - 1} {
				if _, err := archive.LoadBytes(f, b[:n], "short"); !archive.IsParseError(err) {
					t.Errorf("LoadBytes(%d of %d bytes) error = %v, want ParseError", n, len(b), err)
				}
			}
		})
	}
}

func TestRejectBadNames(t *testing.T) {
	t.Parallel()

	tests := []struct {
		format *archive.Format
		name   func(b []byte) int
		value  byte
		ok     bool
	}{
		{archive.QuakePAK, func(b []byte) int { return int(le32(b, 4)) }, 0x07, false},
		{archive.BuildGRP, func([]byte) int { return 16 }, 0x07, false},
		{archive.BuildGRP, func([]byte) int { return 16 }, 0xE9, false},
		{archive.DoomWAD, func(b []byte) int { return int(le32(b, 8)) + 8 }, 0x1B, false},
		{archive.DescentHOG, func([]byte) int { return 3 }, 0x07, false},
		{archive.DescentHOG, func([]byte) int { return 3 }, 0xE9, true},
		{archive.CosmoVOL, func([]byte) int { return 0 }, 0x7F, false},
		{archive.TerminalVelocityPOD, func([]byte) int { return 84 }, 0x82, false},
		{archive.WestwoodPAK, func([]byte) int { return 4 }, 0xC8, false},
		{archive.SeaARC, func([]byte) int { return 2 }, 0x82, true},
	}

	for _, tt := range tests {
		a, _, _ := build(t, tt.format, sampleFiles)
		b := saveBytes(t, a)
		b[tt.name(b)] = tt.value

		_, err := archive.LoadBytes(tt.format, b, "names")
		if tt.ok && err != nil {
			t.Errorf("%s: byte 0x%02X rejected: %v", tt.format.ID, tt.value, err)
		}
		if !tt.ok && !errors.Is(err, archive.ErrInvalidName) {
			t.Errorf("%s: byte 0x%02X error = %v, want ErrInvalidName", tt.format.ID, tt.value, err)
		}
	}
}

func TestUnsignedFormatsRequireASCII(t *testing.T) {
	t.Parallel()

	// A Westwood PAK and a POD whose only names are box-drawing characters.
	wwpak := []byte{0x0B, 0, 0, 0, 0xC8, 0xC9, 0, 0, 0, 0, 0}
	wwpak = append(wwpak, "data"...)

	pod := make([]byte, 84+40)
	put32(pod, 0, 1)
	copy(pod[84:], []byte{0xB0, 0xB1, 0xB2})
	put32(pod, 84+32, 0)
	put32(pod, 84+36, 84+40)

	tests := []struct {
		format *archive.Format
		data   []byte
	}{
		{archive.WestwoodPAK, wwpak},
		{archive.TerminalVelocityPOD, pod},
	}
	for _, tt := range tests {
		if _, err := archive.LoadBytes(tt.format, tt.data, "names"); !errors.Is(err, archive.ErrInvalidName) {
			t.Errorf("%s: error = %v, want ErrInvalidName", tt.format.ID, err)
		}
	}

	wwpak[4], wwpak[5] = 'A', 'B'
	if _, err := archive.LoadBytes(archive.WestwoodPAK, wwpak, "names"); err != nil {
		t.Errorf("ASCII name rejected: %v", err)
	}
}

func TestRejectTableClaims(t *testing.T) {
	t.Parallel()

	grp := append([]byte("KenSilverman"), 0xFF, 0xFF, 0xFF, 0x0F)
	if _, err := archive.LoadBytes(archive.BuildGRP, grp, "x.grp"); !archive.IsParseError(err) {
		t.Errorf("GRP with a huge count error = %v", err)
	}

	pak := append([]byte("PACK"), 12, 0, 0, 0, 65, 0, 0, 0)
	if _, err := archive.LoadBytes(archive.QuakePAK, pak, "x.pak"); !archive.IsParseError(err) {
		t.Errorf("PAK with a ragged directory error = %v", err)
	}

	lab := append([]byte("LABN"), 0, 0, 2, 0, 0, 0, 0, 0, 0, 0, 0, 0)
	if _, err := archive.LoadBytes(archive.OutlawsLAB, lab, "x.lab"); !archive.IsParseError(err) {
		t.Errorf("LAB with a bad version error = %v", err)
	}
}

func TestWADKeepsMagicAndDuplicates(t *testing.T) {
	t.Parallel()

	a, err := archive.LoadBytes(archive.DoomWAD, twoThingsWAD(), "doom.wad")
	if err != nil {
		t.Fatalf("LoadBytes() error = %v", err)
	}
	if a.Len() != 2 || a.Info != "IWAD" {
		t.Errorf("Len() = %d, Info = %q", a.Len(), a.Info)
	}
	out := saveBytes(t, a)
	if string(out[:4]) != "IWAD" {
		t.Errorf("resave magic = %q, want IWAD", out[:4])
	}
}

func TestDuplicateNamesRejected(t *testing.T) {
	t.Parallel()

	b := append([]byte("KenSilverman"), 2, 0, 0, 0)
	b = append(b, nameField("A.DAT", 12)...)
	b = append(b, 0, 0, 0, 0)
	b = append(b, nameField("a.dat", 12)...)
	b = append(b, 0, 0, 0, 0)
	if _, err := archive.LoadBytes(archive.BuildGRP, b, "x.grp"); !archive.IsParseError(err) {
		t.Errorf("duplicate names error = %v, want ParseError", err)
	}
}

func TestLABTypeCodes(t *testing.T) {
	t.Parallel()

	a, _, _ := build(t, archive.OutlawsLAB, sampleFiles[:1])
	b := saveBytes(t, a)
	copy(b[16+12:], "TXT ")

	loaded, err := archive.LoadBytes(archive.OutlawsLAB, b, "x.lab")
	if err != nil {
		t.Fatal(err)
	}
	e := loaded.Entries()[0]
	if string(e.Aux) != "TXT " || e.Info != "TXT " {
		t.Errorf("Aux = %q, Info = %q", e.Aux, e.Info)
	}
	if out := saveBytes(t, loaded); !bytes.Equal(out, b) {
		t.Error("type code lost on resave")
	}
}

func TestEPFKeepsFlags(t *testing.T) {
	t.Parallel()

	a, _, _ := build(t, archive.EastPointEPF, sampleFiles[:2])
	b := saveBytes(t, a)
	fat := int(le32(b, 4))
	b[8] = 0x5A
	b[fat+13] = 1
	put32(b, fat+18, 4096)

	loaded, err := archive.LoadBytes(archive.EastPointEPF, b, "x.epf")
	if err != nil {
		t.Fatal(err)
	}
	if got := loaded.Entries()[0].Info; got != "compressed, 4096 bytes unpacked" {
		t.Errorf("Info = %q", got)
	}
	if out := saveBytes(t, loaded); !bytes.Equal(out, b) {
		t.Error("EPF flags lost on resave")
	}
}

func TestEPFRejectsDataInTable(t *testing.T) {
	t.Parallel()

	a, _, _ := build(t, archive.EastPointEPF, sampleFiles[:2])
	b := saveBytes(t, a)
	put32(b, 4, 12)
	if _, err := archive.LoadBytes(archive.EastPointEPF, b, "x.epf"); !archive.IsParseError(err) {
		t.Errorf("overlapping table error = %v, want ParseError", err)
	}
}

func TestLFDHeaderMismatch(t *testing.T) {
	t.Parallel()

	a, _, _ := build(t, archive.LucasArtsLFD, sampleFiles[:2])
	b := saveBytes(t, a)
	if string(b[4:8]) != "TEST" {
		t.Errorf("resource map name = %q, want TEST", b[4:12])
	}

	mapEnd := 16 + 2*16
	b[mapEnd+4] = 'X'
	if _, err := archive.LoadBytes(archive.LucasArtsLFD, b, "x.lfd"); !archive.IsParseError(err) {
		t.Errorf("mismatched header error = %v, want ParseError", err)
	}
}

func TestARC(t *testing.T) {
	t.Parallel()

	a, want, _ := build(t, archive.SeaARC, sampleFiles)
	b := saveBytes(t, a)
	if !bytes.HasSuffix(b, []byte{0x1A, 0x00}) {
		t.Error("archive should end with 1A 00")
	}

	loaded, err := archive.LoadBytes(archive.SeaARC, b, "x.arc")
	if err != nil {
		t.Fatal(err)
	}
	e := loaded.Find("TWO.DAT")
	if e.Info != "stored" || e.ModTime.IsZero() {
		t.Errorf("entry = %+v, want stored with a timestamp", e)
	}
	got, err := loaded.Unpack("TWO.DAT")
	if err != nil || !bytes.Equal(got, want["TWO.DAT"]) {
		t.Errorf("Unpack() = %d bytes, %v", len(got), err)
	}

	b[int(e.Offset)] ^= 0xFF
	tampered, err := archive.LoadBytes(archive.SeaARC, b, "x.arc")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := tampered.Unpack("TWO.DAT"); !errors.Is(err, codec.ErrCorrupt) {
		t.Errorf("Unpack() of damaged data error = %v, want ErrCorrupt", err)
	}
}

func TestARCCompressedMethod(t *testing.T) {
	t.Parallel()

	// One squeezed member holding three bytes.
	b := []byte{0x1A, 4}
	b = append(b, nameField("SQ.TXT", 13)...)
	b = append(b, 3, 0, 0, 0, 0, 0, 0, 0, 0, 0, 9, 0, 0, 0)
	b = append(b, 'a', 'b', 'c', 0x1A, 0)

	a, err := archive.LoadBytes(archive.SeaARC, b, "sq.arc")
	if err != nil {
		t.Fatal(err)
	}
	if got := a.Entries()[0].Info; got != "squeezed" {
		t.Errorf("Info = %q", got)
	}
	if _, err := a.Unpack("SQ.TXT"); !errors.Is(err, codec.ErrUnsupportedMethod) {
		t.Errorf("Unpack() error = %v, want ErrUnsupportedMethod", err)
	}
	if out := saveBytes(t, a); !bytes.Equal(out, b) {
		t.Error("squeezed member changed on resave")
	}

	b[1] = 0x40
	if _, err := archive.LoadBytes(archive.SeaARC, b, "sq.arc"); !archive.IsParseError(err) {
		t.Errorf("unknown method error = %v", err)
	}
}

func TestARCOldHeaderResave(t *testing.T) {
	t.Parallel()

	// One method 1 member, whose header has no original size field.
	b := []byte{0x1A, 1}
	b = append(b, nameField("OLD.TXT", 13)...)
	b = append(b, 3, 0, 0, 0, 0, 0, 0, 0, 0, 0)
	b = append(b, 'o', 'l', 'd', 0x1A, 0)

	fs := afero.NewMemMapFs()
	if err := afero.WriteFile(fs, "/src/new.txt", []byte("new"), 0o644); err != nil {
		t.Fatal(err)
	}
	a, err := archive.LoadBytes(archive.SeaARC, b, "old.arc", archive.WithFS(fs))
	if err != nil {
		t.Fatal(err)
	}
	if got := a.Entries()[0].Info; got != "stored (old)" {
		t.Errorf("Info = %q", got)
	}
	if _, err := a.InsertFile("/src/new.txt", ""); err != nil {
		t.Fatal(err)
	}

	out := saveBytes(t, a)
	if !bytes.Equal(out[:28], b[:28]) {
		t.Error("old header changed on resave")
	}
	loaded, err := archive.LoadBytes(archive.SeaARC, out, "old.arc")
	if err != nil {
		t.Fatal(err)
	}
	if e := loaded.Find("NEW.TXT"); e == nil || e.Offset != 28+29 {
		t.Fatalf("NEW.TXT = %+v, want data at %d", e, 28+29)
	}
	for name, want := range map[string]string{"OLD.TXT": "old", "NEW.TXT": "new"} {
		if got, err := loaded.ReadFile(name); err != nil || string(got) != want {
			t.Errorf("ReadFile(%s) = %q, %v", name, got, err)
		}
	}
}

func TestMIX(t *testing.T) {
	t.Parallel()

	files := []file{{"CONQUER.ENG", []byte("strings")}, {"TEMPERAT.PAL", bytes.Repeat([]byte{7}, 768)}}
	a, want, _ := build(t, archive.WestwoodMIX, files)
	for _, e := range a.Entries() {
		if e.HashKind != archive.HashWestwoodTD || e.Name != hex8(e.Hash) {
			t.Errorf("entry = %+v, want TD hash named by hex id", e)
		}
	}
	if e := a.Find(hex8(archive.WestwoodTDHash("conquer.eng"))); e == nil || e.Info != "CONQUER.ENG" {
		t.Errorf("Find(hash of CONQUER.ENG) = %+v", e)
	}

	b := saveBytes(t, a)
	loaded, err := archive.LoadBytes(archive.WestwoodMIX, b, "x.mix")
	if err != nil {
		t.Fatal(err)
	}
	for name, data := range want {
		if got, _ := loaded.ReadFile(name); !bytes.Equal(got, data) {
			t.Errorf("ReadFile(%s) mismatch", name)
		}
	}

	// Swap the two ids so the index is out of order.
	first, second := le32(b, 6), le32(b, 18)
	put32(b, 6, second)
	put32(b, 18, first)
	if _, err := archive.LoadBytes(archive.WestwoodMIX, b, "x.mix"); !archive.IsParseError(err) {
		t.Errorf("unsorted index error = %v, want ParseError", err)
	}

	if _, err := archive.LoadBytes(archive.WestwoodMIX, append(b, 0), "x.mix"); !archive.IsParseError(err) {
		t.Errorf("trailing byte error = %v, want ParseError", err)
	}
}

func TestMIXSortsSigned(t *testing.T) {
	t.Parallel()

	files := []file{{"80000000", []byte("neg")}, {"7FFFFFFF", []byte("pos")}, {"00000001", []byte("one")}}
	a, _, _ := build(t, archive.WestwoodMIX, files)
	var names []string
	for _, e := range a.Entries() {
		names = append(names, e.Name)
	}
	want := []string{"80000000", "00000001", "7FFFFFFF"}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("order = %v, want %v", names, want)
		}
	}
}

func TestPODDescription(t *testing.T) {
	t.Parallel()

	a, _, _ := build(t, archive.TerminalVelocityPOD, []file{{"art/sky.raw", []byte{1, 2, 3}}})
	b := saveBytes(t, a)
	copy(b[4:], "Terminal Velocity data")

	loaded, err := archive.LoadBytes(archive.TerminalVelocityPOD, b, "x.pod")
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Info != "Terminal Velocity data" {
		t.Errorf("Info = %q", loaded.Info)
	}
	if got := loaded.Entries()[0].Name; got != `ART\SKY.RAW` {
		t.Errorf("Name = %q, want ART\\SKY.RAW", got)
	}
	if out := saveBytes(t, loaded); !bytes.Equal(out, b) {
		t.Error("description lost on resave")
	}
}

func TestFATEmptyMustBeBare(t *testing.T) {
	t.Parallel()

	b := make([]byte, 4001)
	if _, err := archive.LoadBytes(archive.DukeNukem2CMP, b, "x.cmp"); !archive.IsParseError(err) {
		t.Errorf("empty table with data error = %v, want ParseError", err)
	}
	if _, err := archive.LoadBytes(archive.DukeNukem2CMP, b[:4000], "x.cmp"); err != nil {
		t.Errorf("bare empty table error = %v", err)
	}

	a, _, _ := build(t, archive.DukeNukem2CMP, sampleFiles[:1])
	b = saveBytes(t, a)
	put32(b, 12, 100)
	if _, err := archive.LoadBytes(archive.DukeNukem2CMP, b, "x.cmp"); !archive.IsParseError(err) {
		t.Errorf("entry inside the table error = %v, want ParseError", err)
	}
}

func TestWestwoodPAKZeroTerminator(t *testing.T) {
	t.Parallel()

	// Two files ended by a zero offset: the last runs to the end of file.
	var b []byte
	b = append(b, 0, 0, 0, 0)
	b = append(b, "A.DAT\x00"...)
	b = append(b, 0, 0, 0, 0)
	b = append(b, "B.DAT\x00"...)
	b = append(b, 0, 0, 0, 0)
	tableEnd := len(b)
	put32(b, 0, uint32(tableEnd))
	put32(b, 10, uint32(tableEnd+3))
	b = append(b, "aaabbbbb"...)

	a, err := archive.LoadBytes(archive.WestwoodPAK, b, "x.pak")
	if err != nil {
		t.Fatalf("LoadBytes() error = %v", err)
	}
	if got, _ := a.ReadFile("B.DAT"); string(got) != "bbbbb" {
		t.Errorf("B.DAT = %q", got)
	}

	put32(b, 10, uint32(tableEnd-1))
	if _, err := archive.LoadBytes(archive.WestwoodPAK, b, "x.pak"); !archive.IsParseError(err) {
		t.Errorf("backwards offset error = %v, want ParseError", err)
	}
}

func TestDynamix(t *testing.T) {
	t.Parallel()

	payload := bytes.Repeat([]byte("STELLAR7"), 40)
	packed, err := codec.EncodeBlock(codec.MethodLZW, payload)
	if err != nil {
		t.Fatal(err)
	}

	// Volume: one resource header and its packed data at offset 5.
	vol := make([]byte, 5)
	vol = append(vol, nameField("SHIP.DYN", 13)...)
	vol = append(vol, 0, 0, 0, 0)
	put32(vol, 5+13, uint32(len(packed)))
	vol = append(vol, packed...)

	index := []byte{0xEF, 0xBE, 0xAD, 0xDE, 1, 0}
	index = append(index, nameField("VOLUME.001", 13)...)
	index = append(index, 1, 0)
	index = append(index, 0x78, 0x56, 0x34, 0x12, 5, 0, 0, 0)

	fs := afero.NewMemMapFs()
	if err := afero.WriteFile(fs, "/s7/RESOURCE.RMF", index, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := afero.WriteFile(fs, "/s7/volume.001", vol, 0o644); err != nil {
		t.Fatal(err)
	}

	a, err := archive.Load(archive.DynamixVOL, "/s7/RESOURCE.RMF", archive.WithFS(fs))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	e := a.Find("SHIP.DYN")
	if e == nil {
		t.Fatal("SHIP.DYN missing")
	}
	if e.Hash != 0x12345678 || e.HashKind != archive.HashDynamix || e.SourcePath != "/s7/volume.001" {
		t.Errorf("entry = %+v", e)
	}
	got, err := a.Unpack("SHIP.DYN")
	if err != nil {
		t.Fatalf("Unpack() error = %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Error("Unpack() content mismatch")
	}
	if _, err := a.SaveBytes(nil); !errors.Is(err, archive.ErrLoadOnly) {
		t.Errorf("Save() error = %v, want ErrLoadOnly", err)
	}

	if _, err := archive.LoadBytes(archive.DynamixVOL, index, "/s7/OTHER.RMF", archive.WithFS(afero.NewMemMapFs())); !archive.IsParseError(err) {
		t.Errorf("missing volume error = %v, want ParseError", err)
	}
	if _, err := archive.LoadBytes(archive.DynamixVOL, append(index, 0), "/s7/RESOURCE.RMF", archive.WithFS(fs)); !archive.IsParseError(err) {
		t.Errorf("trailing index bytes error = %v, want ParseError", err)
	}
}
