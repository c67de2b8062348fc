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

package bundle

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	iofs "io/fs"
	"path/filepath"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/spf13/afero"
	"golang.org/x/sync/singleflight"
)

// DefaultCacheSize is the number of buffered members an Opener keeps.
const DefaultCacheSize = 8

// File is a resolved, random-access view of a path.
type File struct {
	io.ReaderAt

	// Path is the path that was opened.
	Path string

	// Size is the logical size in bytes.
	Size int64

	// ModTime is the modification time of the file, or of the bundle or
	// wrapper holding it.
	ModTime time.Time

	// ReadOnly is set for bundle members and wrapped files, which cannot be
	// written in place.
	ReadOnly bool

	closer io.Closer
}

// Close releases the underlying file handle, if any.
func (f *File) Close() error {
	if f.closer == nil {
		return nil
	}
	return f.closer.Close() //nolint:wrapcheck // Close error passthrough is intentional
}

type buffered struct {
	data    []byte
	modTime time.Time
}

// Opener resolves paths to Files. It is safe for concurrent use.
type Opener struct {
	fs    afero.Fs
	cache *lru.Cache[string, buffered]
	group singleflight.Group
}

// Option configures an Opener.
type Option func(*openerConfig)

type openerConfig struct {
	fs        afero.Fs
	cacheSize int
}

// WithFs sets the filesystem paths are resolved on. The default is the OS
// filesystem.
func WithFs(fs afero.Fs) Option {
	return func(c *openerConfig) {
		c.fs = fs
	}
}

// WithCacheSize sets how many buffered members are kept. Zero disables the
// cache.
func WithCacheSize(n int) Option {
	return func(c *openerConfig) {
		c.cacheSize = n
	}
}

// NewOpener returns an Opener.
func NewOpener(opts ...Option) *Opener {
	cfg := openerConfig{fs: afero.NewOsFs(), cacheSize: DefaultCacheSize}
	for _, opt := range opts {
		opt(&cfg)
	}

	o := &Opener{fs: cfg.fs}
	if cfg.cacheSize > 0 {
		// lru.New only fails for a non-positive size.
		o.cache, _ = lru.New[string, buffered](cfg.cacheSize)
	}
	return o
}

// Fs returns the filesystem the Opener reads and writes through.
func (o *Opener) Fs() afero.Fs {
	return o.fs
}

// Open resolves path. Plain files are opened directly; bundle members and
// wrapped files are buffered in memory.
func (o *Opener) Open(path string) (*File, error) {
	p, err := ParsePath(o.fs, path)
	if err != nil {
		return nil, err
	}
	if p != nil {
		if p.InternalPath == "" {
			return nil, FormatError{Format: filepath.Ext(path), Reason: "bundle path names no member"}
		}
		return o.openBuffered(path, func() (buffered, error) { return o.readMember(p) })
	}

	if IsWrapperExtension(filepath.Ext(path)) {
		return o.openBuffered(path, func() (buffered, error) { return o.readWrapped(path) })
	}

	f, err := o.fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		_ = f.Close()
		return nil, fmt.Errorf("open %s: is a directory", path)
	}

	return &File{
		ReaderAt: f,
		Path:     path,
		Size:     info.Size(),
		ModTime:  info.ModTime(),
		closer:   f,
	}, nil
}

// Resolve returns path unchanged unless it names a whole bundle, in which
// case it returns the path of the first member accepted by match.
func (o *Opener) Resolve(path string, match func(name string) bool) (string, error) {
	p, err := ParsePath(o.fs, path)
	if err != nil {
		return "", err
	}
	if p == nil || p.InternalPath != "" {
		return path, nil
	}

	b, err := OpenBundle(o.fs, p.BundlePath)
	if err != nil {
		return "", err
	}
	defer func() { _ = b.Close() }()

	name, err := FindMember(b, p.BundlePath, match)
	if err != nil {
		return "", err
	}
	return Join(p.BundlePath, name), nil
}

// ReadOnly reports whether path resolves into a bundle or wrapper.
func (o *Opener) ReadOnly(path string) bool {
	return IsBundlePath(path) || IsWrapperExtension(filepath.Ext(path))
}

// Sibling returns the path of name in the same directory as path. Inside a
// plain directory the match is case-insensitive; bundle lookups are always
// case-insensitive.
func (o *Opener) Sibling(path, name string) string {
	p, err := ParsePath(o.fs, path)
	if err == nil && p != nil && p.InternalPath != "" {
		dir := filepath.ToSlash(filepath.Dir(filepath.FromSlash(p.InternalPath)))
		if dir == "." {
			dir = ""
		}
		return Join(p.BundlePath, strings.TrimPrefix(dir+"/"+name, "/"))
	}

	dir := filepath.Dir(path)
	exact := filepath.Join(dir, name)
	if _, err := o.fs.Stat(exact); err == nil {
		return exact
	}
	infos, err := afero.ReadDir(o.fs, dir)
	if err != nil {
		return exact
	}
	for _, info := range infos {
		if strings.EqualFold(info.Name(), name) {
			return filepath.Join(dir, info.Name())
		}
	}
	return exact
}

func (o *Opener) openBuffered(path string, load func() (buffered, error)) (*File, error) {
	key := strings.ToLower(filepath.ToSlash(path))
	b, err := o.buffer(key, load)
	if err != nil {
		return nil, err
	}

	return &File{
		ReaderAt: bytes.NewReader(b.data),
		Path:     path,
		Size:     int64(len(b.data)),
		ModTime:  b.modTime,
		ReadOnly: true,
	}, nil
}

// buffer returns the cached copy of key or loads it. Concurrent loads of
// the same key share one decompression.
func (o *Opener) buffer(key string, load func() (buffered, error)) (buffered, error) {
	if o.cache != nil {
		if b, ok := o.cache.Get(key); ok {
			return b, nil
		}
	}

	v, err, _ := o.group.Do(key, func() (any, error) {
		if o.cache != nil {
			if b, ok := o.cache.Get(key); ok {
				return b, nil
			}
		}
		b, err := load()
		if err != nil {
			return nil, err
		}
		if o.cache != nil {
			o.cache.Add(key, b)
		}
		return b, nil
	})
	if err != nil {
		return buffered{}, err //nolint:wrapcheck // load errors carry their own context
	}
	b, _ := v.(buffered) //nolint:errcheck // always a buffered when err is nil
	return b, nil
}

func (o *Opener) readMember(p *Path) (buffered, error) {
	info, err := o.fs.Stat(p.BundlePath)
	if err != nil {
		return buffered{}, fmt.Errorf("stat bundle %s: %w", p.BundlePath, err)
	}

	b, err := OpenBundle(o.fs, p.BundlePath)
	if err != nil {
		return buffered{}, err
	}
	defer func() { _ = b.Close() }()

	data, err := readMember(b, p.InternalPath)
	if err != nil {
		return buffered{}, err
	}
	if IsWrapperExtension(filepath.Ext(p.InternalPath)) {
		if data, err = unwrap(p.InternalPath, bytes.NewReader(data)); err != nil {
			return buffered{}, err
		}
	}

	return buffered{data: data, modTime: info.ModTime()}, nil
}

func (o *Opener) readWrapped(path string) (buffered, error) {
	f, err := o.fs.Open(path)
	if err != nil {
		return buffered{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return buffered{}, fmt.Errorf("stat %s: %w", path, err)
	}
	data, err := unwrap(path, f)
	if err != nil {
		return buffered{}, err
	}

	return buffered{data: data, modTime: info.ModTime()}, nil
}

// IsNotExist reports whether err means a path or member does not exist.
func IsNotExist(err error) bool {
	var nf FileNotFoundError
	return errors.As(err, &nf) || errors.Is(err, iofs.ErrNotExist)
}
