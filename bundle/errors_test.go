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
	"strings"
	"testing"

	"github.com/ZaparooProject/go-gamearc/bundle"
)

func TestFormatError(t *testing.T) {
	t.Parallel()

	err := bundle.FormatError{Format: ".tar", Reason: "not supported"}

	msg := err.Error()
	if !strings.Contains(msg, ".tar") {
		t.Errorf("error message should contain format: %s", msg)
	}
	if !strings.Contains(msg, "not supported") {
		t.Errorf("error message should contain reason: %s", msg)
	}
}

func TestFormatError_NoReason(t *testing.T) {
	t.Parallel()

	msg := bundle.FormatError{Format: ".tar"}.Error()
	if !strings.Contains(msg, ".tar") {
		t.Errorf("error message should contain format: %s", msg)
	}
}

func TestFileNotFoundError(t *testing.T) {
	t.Parallel()

	err := bundle.FileNotFoundError{
		Bundle:       "/path/to/bundle.zip",
		InternalPath: "folder/DOOM.WAD",
	}

	msg := err.Error()
	if !strings.Contains(msg, "bundle.zip") {
		t.Errorf("error message should contain bundle: %s", msg)
	}
	if !strings.Contains(msg, "folder/DOOM.WAD") {
		t.Errorf("error message should contain internal path: %s", msg)
	}
}

func TestNoMatchError(t *testing.T) {
	t.Parallel()

	msg := bundle.NoMatchError{Bundle: "/path/to/bundle.zip"}.Error()
	if !strings.Contains(msg, "bundle.zip") {
		t.Errorf("error message should contain bundle: %s", msg)
	}
}
