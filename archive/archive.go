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

// Package archive models legacy game archive containers as ordered
// collections of named entries, with one load and save strategy per format.
package archive

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"path/filepath"
	"strings"

	"github.com/ZaparooProject/go-gamearc/bundle"
	"github.com/spf13/afero"
)

// Archive is an opened or newly built container. It is not safe for
// concurrent use.
type Archive struct {
	// Path is the source path, or the path hint for in-memory sources.
	Path string

	// Info is free text shown in listings.
	Info string

	// Aux holds archive-level format bytes kept across load and save.
	Aux []byte

	format  *Format
	entries []*Entry

	inline io.ReaderAt
	opener *bundle.Opener
	logger *slog.Logger
}

// Option configures an Archive.
type Option func(*config)

type config struct {
	opener *bundle.Opener
	logger *slog.Logger
}

// WithFS resolves paths on fs instead of the OS filesystem.
func WithFS(fs afero.Fs) Option {
	return func(c *config) {
		c.opener = bundle.NewOpener(bundle.WithFs(fs))
	}
}

// WithOpener resolves paths through o.
func WithOpener(o *bundle.Opener) Option {
	return func(c *config) {
		c.opener = o
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		c.logger = l
	}
}

func newConfig(opts []Option) config {
	var c config
	for _, opt := range opts {
		opt(&c)
	}
	if c.opener == nil {
		c.opener = bundle.NewOpener()
	}
	if c.logger == nil {
		c.logger = slog.New(slog.DiscardHandler)
	}
	return c
}

// New returns an empty archive of format f that will be saved to path.
func New(f *Format, path string, opts ...Option) *Archive {
	c := newConfig(opts)
	return &Archive{Path: path, format: f, opener: c.opener, logger: c.logger}
}

// Load parses the file at path as format f. The path may name a bundle
// member or a compressed file.
func Load(f *Format, path string, opts ...Option) (*Archive, error) {
	c := newConfig(opts)
	file, err := c.opener.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	defer func() { _ = file.Close() }()

	a, err := load(f, file, file.Size, path, c)
	if err != nil {
		return nil, err
	}
	if file.ReadOnly {
		a.inline = file.ReaderAt
	}
	return a, nil
}

// LoadBytes parses data as format f. path is used for companion files and
// messages and may be empty.
func LoadBytes(f *Format, data []byte, path string, opts ...Option) (*Archive, error) {
	return LoadReader(f, bytes.NewReader(data), int64(len(data)), path, opts...)
}

// LoadReader parses size bytes of r as format f. r must stay readable for
// as long as entries are read through the archive.
func LoadReader(f *Format, r io.ReaderAt, size int64, path string, opts ...Option) (*Archive, error) {
	a, err := load(f, r, size, path, newConfig(opts))
	if err != nil {
		return nil, err
	}
	a.inline = r
	return a, nil
}

func load(f *Format, r io.ReaderAt, size int64, path string, c config) (*Archive, error) {
	s := &Source{Format: f, Path: path, R: r, Size: size, opener: c.opener}
	loaded, err := f.Load(s)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(loaded.Entries))
	for _, e := range loaded.Entries {
		if strings.EqualFold(e.SourcePath, path) && (e.Offset < 0 || e.End() > size) {
			return nil, s.Fail("entry %q at %d+%d exceeds %d-byte file", e.Name, e.Offset, e.Length, size)
		}
		if f.Duplicates {
			continue
		}
		key := strings.ToUpper(e.Name)
		if _, dup := seen[key]; dup {
			return nil, s.Fail("duplicate entry %q", e.Name)
		}
		seen[key] = struct{}{}
	}

	c.logger.Debug("loaded archive", "format", f.ID, "path", path, "entries", len(loaded.Entries))
	return &Archive{
		Path:    path,
		Info:    loaded.Info,
		Aux:     loaded.Aux,
		format:  f,
		entries: loaded.Entries,
		opener:  c.opener,
		logger:  c.logger,
	}, nil
}

// Format returns the archive's format.
func (a *Archive) Format() *Format {
	return a.format
}

// Opener returns the opener the archive resolves paths through.
func (a *Archive) Opener() *bundle.Opener {
	return a.opener
}

// Detach drops the in-memory source so entries are read from Path again.
// Callers that loaded from an open file call it before closing the file.
func (a *Archive) Detach() {
	a.inline = nil
}

// Entries returns the entries in archive order. The slice is a copy; the
// entries are shared.
func (a *Archive) Entries() []*Entry {
	out := make([]*Entry, len(a.entries))
	copy(out, a.entries)
	return out
}

// Len returns the number of entries.
func (a *Archive) Len() int {
	return len(a.entries)
}

func (a *Archive) index(name string) int {
	for i, e := range a.entries {
		if strings.EqualFold(e.Name, name) {
			return i
		}
	}
	return -1
}

// Find returns the entry called name, compared case-insensitively, or nil.
func (a *Archive) Find(name string) *Entry {
	if i := a.index(name); i >= 0 {
		return a.entries[i]
	}
	return nil
}

// put adds e, replacing an entry of the same name in place.
func (a *Archive) put(e *Entry) {
	if i := a.index(e.Name); i >= 0 {
		if e.Aux == nil && a.entries[i].Aux != nil {
			e.Aux = bytes.Clone(a.entries[i].Aux)
		}
		a.entries[i] = e
	} else {
		a.entries = append(a.entries, e)
	}
	if a.format.Sort != nil {
		a.format.Sort(a.entries)
	}
}

// InsertFile adds the file at path under name, or under its base name when
// name is empty. The name is normalized for the format first.
func (a *Archive) InsertFile(path, name string) (*Entry, error) {
	if name == "" {
		name = filepath.Base(path)
	}
	norm, err := a.format.normalize(name)
	if err != nil {
		return nil, CapabilityError{Format: a.format.ID, Op: "insert", Err: err}
	}

	f, err := a.opener.Open(path)
	if err != nil {
		return nil, fmt.Errorf("insert %s: %w", path, err)
	}
	modTime := f.ModTime
	_ = f.Close()

	e := NewPendingEntry(path, norm)
	e.ModTime = modTime
	if a.format.Hash != nil {
		e.Hash, e.HashKind = a.format.Hash(norm)
		e.Info = baseName(name)
	}
	a.put(e)
	return e, nil
}

// InsertFolder adds a folder entry.
func (a *Archive) InsertFolder(name string) (*Entry, error) {
	if !a.format.Folders {
		return nil, CapabilityError{Format: a.format.ID, Op: "insert", Reason: name, Err: ErrFolders}
	}
	clean := strings.TrimSuffix(RemapPath(name, math.MaxInt), "/")
	if clean == "" {
		return nil, CapabilityError{Format: a.format.ID, Op: "insert", Err: fmt.Errorf("%w: %q", ErrInvalidName, name)}
	}
	e := &Entry{Name: clean, IsFolder: true, Offset: -1, Length: -1}
	a.put(e)
	return e, nil
}

// Remove deletes the named entries. Names that do not exist are reported
// after the others are removed.
func (a *Archive) Remove(names ...string) error {
	var errs []error
	for _, name := range names {
		i := a.index(name)
		if i < 0 {
			errs = append(errs, NotFoundError{Archive: a.Path, Name: name})
			continue
		}
		a.entries = append(a.entries[:i], a.entries[i+1:]...)
	}
	return errors.Join(errs...)
}

// open returns a reader for the bytes behind e. Offsets into the reader are
// absolute, so archived entries are read at e.Offset.
func (a *Archive) open(e *Entry) (io.ReaderAt, int64, func(), error) {
	if e.IsFolder {
		return nil, 0, nil, fmt.Errorf("read %s: is a folder", e.Name)
	}
	if e.IsPending() {
		f, err := a.opener.Open(e.PendingPath)
		if err != nil {
			return nil, 0, nil, fmt.Errorf("open %s: %w", e.PendingPath, err)
		}
		return f, f.Size, func() { _ = f.Close() }, nil
	}

	if a.inline != nil && strings.EqualFold(e.SourcePath, a.Path) {
		return a.inline, e.End(), func() {}, nil
	}
	f, err := a.opener.Open(e.SourcePath)
	if err != nil {
		return nil, 0, nil, fmt.Errorf("open %s: %w", e.SourcePath, err)
	}
	if e.End() > f.Size {
		_ = f.Close()
		return nil, 0, nil, fmt.Errorf("entry %s at %d+%d: %s shrank to %d bytes: %w",
			e.Name, e.Offset, e.Length, e.SourcePath, f.Size, io.ErrUnexpectedEOF)
	}
	return f, f.Size, func() { _ = f.Close() }, nil
}

// size returns the stored length of e, resolving pending files.
func (a *Archive) size(e *Entry) (int64, error) {
	if !e.IsPending() {
		return e.Length, nil
	}
	_, size, done, err := a.open(e)
	if err != nil {
		return 0, err
	}
	done()
	return size, nil
}

// ReadEntry returns the stored bytes of e.
func (a *Archive) ReadEntry(e *Entry) ([]byte, error) {
	r, size, done, err := a.open(e)
	if err != nil {
		return nil, err
	}
	defer done()

	off, n := e.Offset, e.Length
	if e.IsPending() {
		off, n = 0, size
	}
	if n > MaxEntrySize {
		return nil, fmt.Errorf("read %s: %w: %d bytes", e.Name, ErrEntryTooLarge, n)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(io.NewSectionReader(r, off, n), buf); err != nil {
		return nil, fmt.Errorf("read %s: %w", e.Name, err)
	}
	return buf, nil
}

// ReadFile returns the stored bytes of the entry called name.
func (a *Archive) ReadFile(name string) ([]byte, error) {
	e := a.Find(name)
	if e == nil {
		return nil, NotFoundError{Archive: a.Path, Name: name}
	}
	return a.ReadEntry(e)
}

// Unpack returns the decoded bytes of the entry called name for formats
// that store packed payloads.
func (a *Archive) Unpack(name string) ([]byte, error) {
	if a.format.Unpack == nil {
		return nil, CapabilityError{Format: a.format.ID, Op: "unpack", Err: ErrNoUnpack}
	}
	e := a.Find(name)
	if e == nil {
		return nil, NotFoundError{Archive: a.Path, Name: name}
	}
	data, err := a.ReadEntry(e)
	if err != nil {
		return nil, err
	}
	if e.IsPending() {
		return data, nil
	}
	out, err := a.format.Unpack(e, data)
	if err != nil {
		return nil, fmt.Errorf("unpack %s: %w", e.Name, err)
	}
	return out, nil
}

// Save writes the archive as format target to w. A nil target means the
// archive's own format. pathHint names the destination in messages.
func (a *Archive) Save(target *Format, w io.Writer, pathHint string) error {
	if target == nil {
		target = a.format
	}
	if !target.CanSave || target.Save == nil {
		return CapabilityError{Format: target.ID, Op: "save", Err: ErrLoadOnly}
	}

	same := target == a.format
	entries := make([]*Entry, 0, len(a.entries))
	seen := make(map[string]struct{}, len(a.entries))
	for _, e := range a.entries {
		if e.IsFolder || strings.ContainsAny(e.Name, "/\\") {
			if !target.Folders {
				return CapabilityError{Format: target.ID, Op: "save", Reason: e.Name, Err: ErrFolders}
			}
			if e.IsFolder {
				continue
			}
		}
		size, err := a.size(e)
		if err != nil {
			return err
		}
		if size > math.MaxUint32 {
			return CapabilityError{Format: target.ID, Op: "save", Reason: e.Name, Err: ErrEntryTooLarge}
		}
		c := e.Clone()
		c.Length = size
		if !same {
			c.Aux = nil
			if target.Hash != nil || target.Folders {
				name, err := target.normalize(c.Name)
				if err != nil {
					return CapabilityError{Format: target.ID, Op: "save", Err: err}
				}
				if target.Hash != nil {
					c.Info = c.Name
					c.Hash, c.HashKind = target.Hash(name)
				}
				c.Name = name
			}
		}
		if !target.Duplicates {
			key := strings.ToUpper(c.Name)
			if _, dup := seen[key]; dup {
				return CapabilityError{Format: target.ID, Op: "save", Reason: c.Name, Err: ErrDuplicateName}
			}
			seen[key] = struct{}{}
		}
		entries = append(entries, c)
	}
	if target.MaxEntries > 0 && len(entries) > target.MaxEntries {
		return CapabilityError{
			Format: target.ID,
			Op:     "save",
			Reason: fmt.Sprintf("%d entries, limit %d", len(entries), target.MaxEntries),
			Err:    ErrTooManyEntries,
		}
	}
	if target.Sort != nil {
		target.Sort(entries)
	}

	ctx := &SaveContext{
		Format:  target,
		Entries: entries,
		Path:    pathHint,
		w:       &layoutWriter{w: w},
		read: func(e *Entry) (io.ReaderAt, func(), error) {
			r, _, done, err := a.open(e)
			return r, done, err
		},
	}
	if same {
		ctx.Aux = a.Aux
	}
	if err := target.Save(ctx); err != nil {
		return err
	}

	a.logger.Debug("saved archive", "format", target.ID, "path", pathHint, "entries", len(entries), "bytes", ctx.Pos())
	return nil
}

// SaveBytes returns the archive encoded as format target.
func (a *Archive) SaveBytes(target *Format) ([]byte, error) {
	var buf bytes.Buffer
	if err := a.Save(target, &buf, a.Path); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// SaveAs writes the archive as format target to path through a temporary
// file in the same directory and returns the reloaded result.
func (a *Archive) SaveAs(target *Format, path string) (*Archive, error) {
	if target == nil {
		target = a.format
	}
	if a.opener.ReadOnly(path) {
		return nil, CapabilityError{Format: target.ID, Op: "save", Reason: path, Err: ErrReadOnlySource}
	}

	fs := a.opener.Fs()
	tmp, err := afero.TempFile(fs, filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return nil, fmt.Errorf("create temporary file: %w", err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = tmp.Close()
			_ = fs.Remove(tmpName)
		}
	}()

	if err := a.Save(target, tmp, path); err != nil {
		return nil, err
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("close %s: %w", tmpName, err)
	}
	if err := fs.Rename(tmpName, path); err != nil {
		_ = fs.Remove(tmpName)
		committed = true
		return nil, fmt.Errorf("rename %s: %w", tmpName, err)
	}
	committed = true

	return Load(target, path, WithOpener(a.opener), WithLogger(a.logger))
}
