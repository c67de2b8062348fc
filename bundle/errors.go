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
	"errors"
	"fmt"
)

// ErrTooLarge indicates a member exceeds MaxMemberSize.
var ErrTooLarge = errors.New("bundle member too large")

// FormatError indicates an unsupported or invalid bundle format.
type FormatError struct {
	Format string
	Reason string
}

func (e FormatError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("unsupported bundle format %s: %s", e.Format, e.Reason)
	}
	return fmt.Sprintf("unsupported bundle format: %s", e.Format)
}

// FileNotFoundError indicates a file was not found in the bundle.
type FileNotFoundError struct {
	Bundle       string
	InternalPath string
}

func (e FileNotFoundError) Error() string {
	return fmt.Sprintf("file %q not found in bundle %q", e.InternalPath, e.Bundle)
}

// NoMatchError indicates no member of a bundle was accepted.
type NoMatchError struct {
	Bundle string
}

func (e NoMatchError) Error() string {
	return fmt.Sprintf("no archive files found in bundle %q", e.Bundle)
}
