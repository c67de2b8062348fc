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
	"io"
	"math"
	"path/filepath"
	"slices"
	"strings"

	"github.com/ZaparooProject/go-gamearc/bundle"
	"github.com/ZaparooProject/go-gamearc/internal/binary"
)

// Format describes one container format: how to recognize and parse it,
// how to write it back and how it names entries.
type Format struct {
	ID          string
	Description string
	Extensions  []string

	// Priority orders detection; lower values are more distinctive and are
	// tried first.
	Priority int

	CanSave bool

	// Folders is set for formats whose names may carry directories.
	Folders bool

	// Duplicates is set for formats that legitimately repeat names.
	Duplicates bool

	// MaxEntries caps the entry count on save; zero means the table width
	// is the only limit.
	MaxEntries int

	// Normalize maps an inserted file name to the stored name. Nil means
	// NormalizeDOSName.
	Normalize func(name string) (string, error)

	// Hash derives the hashed name of a normalized name.
	Hash func(name string) (uint32, HashKind)

	// Sort reorders entries after an insert. Nil means on-disk order is
	// kept.
	Sort func(entries []*Entry)

	Load func(s *Source) (*Loaded, error)
	Save func(c *SaveContext) error

	// Unpack decodes a stored entry whose payload is packed.
	Unpack func(e *Entry, data []byte) ([]byte, error)
}

func (f *Format) String() string {
	return f.ID
}

// MatchesExtension reports whether the extension of path is one of f's.
func (f *Format) MatchesExtension(path string) bool {
	ext := strings.ToLower(filepath.Ext(bundle.LogicalName(path)))
	if ext == "" {
		return false
	}
	return slices.Contains(f.Extensions, ext)
}

func (f *Format) normalize(name string) (string, error) {
	if f.Normalize == nil {
		return NormalizeDOSName(name)
	}
	return f.Normalize(name)
}

// registry lists every format in detection order.
var registry = []*Format{
	QuakePAK,
	BuildGRP,
	OutlawsLAB,
	DarkForcesGOB,
	DescentHOG,
	EastPointEPF,
	DoomWAD,
	LucasArtsLFD,
	SeaARC,
	DynamixVOL,
	WestwoodMIX,
	TerminalVelocityPOD,
	CosmoVOL,
	DukeNukem2CMP,
	WestwoodPAK,
}

// Formats returns every supported format ordered by detection priority.
func Formats() []*Format {
	out := slices.Clone(registry)
	slices.SortStableFunc(out, func(a, b *Format) int { return a.Priority - b.Priority })
	return out
}

// FormatByID returns the format with the given ID.
func FormatByID(id string) (*Format, bool) {
	for _, f := range registry {
		if strings.EqualFold(f.ID, id) {
			return f, true
		}
	}
	return nil, false
}

// Loaded is what a format's Load returns.
type Loaded struct {
	Entries []*Entry
	Info    string
	Aux     []byte
}

// Source is the stream a format parses. Its helpers turn out-of-range
// reads into parse errors and pass real read failures through.
type Source struct {
	Format *Format
	Path   string
	R      io.ReaderAt
	Size   int64

	opener *bundle.Opener
}

// Fail returns a ParseError for the source.
func (s *Source) Fail(format string, args ...any) error {
	return ParseError{Format: s.Format.ID, Path: s.Path, Reason: fmt.Sprintf(format, args...)}
}

func (s *Source) failErr(err error, format string, args ...any) error {
	return ParseError{Format: s.Format.ID, Path: s.Path, Reason: fmt.Sprintf(format, args...), Err: err}
}

// CheckRange fails unless [off, off+n) lies inside the source.
func (s *Source) CheckRange(off, n int64, what string) error {
	if off < 0 || n < 0 || off > s.Size || n > s.Size-off {
		return s.Fail("%s at %d+%d exceeds %d-byte file", what, off, n, s.Size)
	}
	return nil
}

// CheckTable fails unless count records of recSize bytes fit after off.
func (s *Source) CheckTable(off, count, recSize int64, what string) error {
	if count < 0 || count > MaxEntries {
		return s.Fail("%s claims %d entries", what, count)
	}
	return s.CheckRange(off, count*recSize, what)
}

// Bytes reads n bytes at off.
func (s *Source) Bytes(off, n int64, what string) ([]byte, error) {
	if err := s.CheckRange(off, n, what); err != nil {
		return nil, err
	}
	buf, err := binary.ReadBytesAt(s.R, off, int(n))
	if err != nil {
		return nil, fmt.Errorf("read %s of %s: %w", what, s.Path, err)
	}
	return buf, nil
}

// U16 reads a little-endian uint16 at off.
func (s *Source) U16(off int64, what string) (uint16, error) {
	if err := s.CheckRange(off, 2, what); err != nil {
		return 0, err
	}
	v, err := binary.ReadUint16LEAt(s.R, off)
	if err != nil {
		return 0, fmt.Errorf("read %s of %s: %w", what, s.Path, err)
	}
	return v, nil
}

// U32 reads a little-endian uint32 at off.
func (s *Source) U32(off int64, what string) (uint32, error) {
	if err := s.CheckRange(off, 4, what); err != nil {
		return 0, err
	}
	v, err := binary.ReadUint32LEAt(s.R, off)
	if err != nil {
		return 0, fmt.Errorf("read %s of %s: %w", what, s.Path, err)
	}
	return v, nil
}

// Magic fails unless the bytes at off equal sig.
func (s *Source) Magic(off int64, sig string) error {
	b, err := s.Bytes(off, int64(len(sig)), "signature")
	if err != nil {
		return err
	}
	if string(b) != sig {
		return s.Fail("signature %q, want %q", b, sig)
	}
	return nil
}

// Name decodes a name field.
func (s *Source) Name(field []byte, enc nameEncoding) (string, error) {
	name, err := decodeName(field, enc)
	if err != nil {
		return "", s.failErr(err, "bad name")
	}
	if name == "" {
		return "", s.Fail("empty name")
	}
	return name, nil
}

// Entry returns an archived entry for [off, off+n) after checking the range.
func (s *Source) Entry(name string, off, n int64) (*Entry, error) {
	if err := s.CheckRange(off, n, fmt.Sprintf("entry %q", name)); err != nil {
		return nil, err
	}
	return &Entry{Name: name, SourcePath: s.Path, Offset: off, Length: n}, nil
}

// Sibling opens the file called name next to the source. A missing
// sibling is a parse error.
func (s *Source) Sibling(name string) (*bundle.File, error) {
	if s.opener == nil || s.Path == "" {
		return nil, s.Fail("companion file %s needs a source path", name)
	}
	path := s.opener.Sibling(s.Path, name)
	f, err := s.opener.Open(path)
	if err != nil {
		if bundle.IsNotExist(err) {
			return nil, s.failErr(err, "companion file %s missing", name)
		}
		return nil, fmt.Errorf("open companion %s: %w", path, err)
	}
	return f, nil
}

// layoutWriter counts bytes so saves can assert their planned offsets.
type layoutWriter struct {
	w   io.Writer
	pos int64
}

func (lw *layoutWriter) Write(p []byte) (int, error) {
	n, err := lw.w.Write(p)
	lw.pos += int64(n)
	return n, err //nolint:wrapcheck // io.Writer passthrough
}

// SaveContext is what a format's Save writes through.
type SaveContext struct {
	Format *Format

	// Entries are copies of the archive's entries with Length resolved and
	// Aux cleared when converting between formats.
	Entries []*Entry

	// Aux is the archive-level Aux when saving to the format it was loaded
	// from.
	Aux []byte

	// Path is the destination hint.
	Path string

	w    *layoutWriter
	read func(e *Entry) (io.ReaderAt, func(), error)
}

// Pos returns the number of bytes written so far.
func (c *SaveContext) Pos() int64 {
	return c.w.pos
}

// Write writes p.
func (c *SaveContext) Write(p []byte) error {
	if _, err := c.w.Write(p); err != nil {
		return fmt.Errorf("write %s: %w", c.Format.ID, err)
	}
	return nil
}

// Expect panics unless the writer is at off. A mismatch means the save
// routine planned its layout wrong.
func (c *SaveContext) Expect(off int64, what string) {
	if c.w.pos != off {
		panic(fmt.Sprintf("archive: %s save: %s planned at offset %d, writer is at %d", c.Format.ID, what, off, c.w.pos))
	}
}

// Fail returns a CapabilityError for the save.
func (c *SaveContext) Fail(err error, format string, args ...any) error {
	return CapabilityError{Format: c.Format.ID, Op: "save", Reason: fmt.Sprintf(format, args...), Err: err}
}

// CheckCount fails when there are more than limit entries.
func (c *SaveContext) CheckCount(limit int) error {
	if len(c.Entries) > limit {
		return c.Fail(ErrTooManyEntries, "%d entries, limit %d", len(c.Entries), limit)
	}
	return nil
}

// CheckEnd fails when a layout ending at end overflows 32-bit offsets.
func (c *SaveContext) CheckEnd(end int64) error {
	if end > math.MaxUint32 {
		return c.Fail(ErrEntryTooLarge, "archive would be %d bytes", end)
	}
	return nil
}

// NameField encodes the name of entry i into a field of width bytes,
// leaving at least reserve trailing NUL bytes.
func (c *SaveContext) NameField(i int, enc nameEncoding, width, reserve int) ([]byte, error) {
	raw, err := encodeName(c.Entries[i].Name, enc, width-reserve)
	if err != nil {
		return nil, CapabilityError{Format: c.Format.ID, Op: "save", Err: err}
	}
	field := make([]byte, width)
	if err := binary.PutString(field, string(raw), 0); err != nil {
		return nil, CapabilityError{Format: c.Format.ID, Op: "save", Err: err}
	}
	return field, nil
}

// Layout returns the offsets of the entries stored back to back from start
// and the offset one past the last of them.
func (c *SaveContext) Layout(start int64) ([]int64, int64) {
	offs := make([]int64, len(c.Entries))
	pos := start
	for i, e := range c.Entries {
		offs[i] = pos
		pos += e.Length
	}
	return offs, pos
}

// CopyAll writes every entry at the offsets Layout planned.
func (c *SaveContext) CopyAll(offs []int64) error {
	for i := range c.Entries {
		if err := c.CopyEntry(i, offs[i]); err != nil {
			return err
		}
	}
	return nil
}

// CopyEntry writes the data of entry i, which must start at off.
func (c *SaveContext) CopyEntry(i int, off int64) error {
	e := c.Entries[i]
	c.Expect(off, fmt.Sprintf("entry %q", e.Name))
	r, done, err := c.read(e)
	if err != nil {
		return err
	}
	defer done()

	n, err := io.Copy(c.w, io.NewSectionReader(r, max(e.Offset, 0), e.Length))
	if err != nil {
		return fmt.Errorf("copy %s: %w", e.Name, err)
	}
	if n != e.Length {
		return fmt.Errorf("copy %s: %w", e.Name, io.ErrUnexpectedEOF)
	}
	return nil
}

// ReadEntry returns the data of entry i.
func (c *SaveContext) ReadEntry(i int) ([]byte, error) {
	e := c.Entries[i]
	r, done, err := c.read(e)
	if err != nil {
		return nil, err
	}
	defer done()

	buf := make([]byte, e.Length)
	if err := binary.ReadAt(r, max(e.Offset, 0), buf); err != nil {
		return nil, fmt.Errorf("read %s: %w", e.Name, err)
	}
	return buf, nil
}

// u32 narrows v for a 32-bit field; callers check sizes first.
func u32(v int64) uint32 {
	if v < 0 || v > math.MaxUint32 {
		panic(fmt.Sprintf("archive: %d does not fit a 32-bit field", v))
	}
	return uint32(v) //nolint:gosec // range checked above
}

// put32 stores v little-endian at off.
func put32(b []byte, off int, v uint32) {
	_ = binary.PutUint(b, off, 4, binary.LittleEndian, uint64(v))
}

// put16 stores v little-endian at off.
func put16(b []byte, off int, v uint16) {
	_ = binary.PutUint(b, off, 2, binary.LittleEndian, uint64(v))
}

// le32 reads a little-endian uint32 at off of a buffer already sized by the
// caller.
func le32(b []byte, off int) uint32 {
	v, _ := binary.ReadUint(b, off, 4, binary.LittleEndian)
	return uint32(v) //nolint:gosec // four bytes
}

// le16 reads a little-endian uint16 at off.
func le16(b []byte, off int) uint16 {
	v, _ := binary.ReadUint(b, off, 2, binary.LittleEndian)
	return uint16(v) //nolint:gosec // two bytes
}

