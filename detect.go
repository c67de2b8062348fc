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

package gamearc

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/ZaparooProject/go-gamearc/archive"
	"github.com/ZaparooProject/go-gamearc/bundle"
	"github.com/spf13/afero"
)

// Option configures Detect and Open.
type Option func(*config)

type config struct {
	candidates []*archive.Format
	only       bool
	noExt      bool
	fs         afero.Fs
	opener     *bundle.Opener
	logger     *slog.Logger
}

// WithCandidates tries formats first, in priority order, before the rest
// of the registry.
func WithCandidates(formats ...*archive.Format) Option {
	return func(c *config) {
		c.candidates = append(c.candidates, formats...)
	}
}

// WithOnlyCandidates stops detection after the formats given to
// WithCandidates.
func WithOnlyCandidates() Option {
	return func(c *config) {
		c.only = true
	}
}

// WithoutExtensionPass ignores the file extension when ordering attempts.
func WithoutExtensionPass() Option {
	return func(c *config) {
		c.noExt = true
	}
}

// WithFS resolves paths on fs instead of the OS filesystem.
func WithFS(fs afero.Fs) Option {
	return func(c *config) {
		c.fs = fs
	}
}

// WithOpener resolves paths through o. It takes precedence over WithFS.
func WithOpener(o *bundle.Opener) Option {
	return func(c *config) {
		c.opener = o
	}
}

// WithLogger logs detection attempts and archive activity to l.
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
		if c.fs != nil {
			c.opener = bundle.NewOpener(bundle.WithFs(c.fs))
		} else {
			c.opener = bundle.NewOpener()
		}
	}
	if c.logger == nil {
		c.logger = slog.New(slog.DiscardHandler)
	}
	return c
}

func (c config) archiveOptions() []archive.Option {
	return []archive.Option{archive.WithOpener(c.opener), archive.WithLogger(c.logger)}
}

// order returns the formats to try for path. Formats whose extension
// matches come first; each group keeps priority order.
func (c config) order(path string) []*archive.Format {
	pool := archive.Formats()
	if len(c.candidates) > 0 {
		pool = slices.Clone(c.candidates)
		slices.SortStableFunc(pool, func(a, b *archive.Format) int { return a.Priority - b.Priority })
		pool = slices.Compact(pool)
	}

	var matched, rest []*archive.Format
	for _, f := range pool {
		if !c.noExt && f.MatchesExtension(path) {
			matched = append(matched, f)
		} else {
			rest = append(rest, f)
		}
	}
	out := append(matched, rest...)

	if len(c.candidates) > 0 && !c.only {
		for _, f := range archive.Formats() {
			if !slices.Contains(out, f) {
				out = append(out, f)
			}
		}
	}
	return out
}

// DetectError is returned when no format accepts a stream.
type DetectError struct {
	Path     string
	Attempts []archive.ParseError
}

func (e DetectError) Error() string {
	return fmt.Sprintf("%s: %v (tried %d formats)", e.Path, archive.ErrUnknownFormat, len(e.Attempts))
}

func (e DetectError) Unwrap() error {
	return archive.ErrUnknownFormat
}

// Detect tries each format in turn against size bytes of r and returns the
// first archive that loads, along with the parse failures of the formats
// tried before it. path names the stream for extension matching, companion
// files and messages. Errors other than parse failures stop detection.
func Detect(r io.ReaderAt, size int64, path string, opts ...Option) (*archive.Archive, []archive.ParseError, error) {
	return detect(r, size, path, newConfig(opts))
}

func detect(r io.ReaderAt, size int64, path string, c config) (*archive.Archive, []archive.ParseError, error) {
	var attempts []archive.ParseError
	for _, f := range c.order(path) {
		a, err := archive.LoadReader(f, r, size, path, c.archiveOptions()...)
		if err == nil {
			c.logger.Debug("detected format", "format", f.ID, "path", path, "rejected", len(attempts))
			return a, attempts, nil
		}

		var pe archive.ParseError
		if !errors.As(err, &pe) {
			return nil, attempts, fmt.Errorf("detect %s as %s: %w", path, f.ID, err)
		}
		c.logger.Debug("format rejected", "format", f.ID, "path", path, "error", pe.Reason)
		attempts = append(attempts, pe)
	}
	return nil, attempts, DetectError{Path: path, Attempts: attempts}
}
