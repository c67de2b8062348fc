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
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// Path represents a parsed bundle path with optional internal path.
type Path struct {
	BundlePath   string // Path to the bundle file
	InternalPath string // Path inside the bundle (empty means auto-detect)
}

// bundleExtensions are the supported bundle extensions.
var bundleExtensions = []string{".zip", ".7z", ".rar"}

// ParsePath parses a path that may reference a file inside a bundle.
// It supports paths like "/games/duke3d.zip/DUKE3D.GRP".
//
// Returns:
//   - (*Path, nil) if the path contains a bundle reference
//   - (nil, nil) if the path is not a bundle reference
//   - (nil, error) if there was an error checking the path
//
//nolint:gocognit,nilnil,revive // Complex path parsing logic requires branching; nil,nil is documented API behavior
func ParsePath(fs afero.Fs, path string) (*Path, error) {
	normalizedPath := filepath.ToSlash(path)

	for _, ext := range bundleExtensions {
		// Look for pattern like ".zip/" in the path
		pattern := ext + "/"
		idx := strings.Index(strings.ToLower(normalizedPath), pattern)

		if idx != -1 {
			bundlePath := path[:idx+len(ext)]
			internalPath := normalizedPath[idx+len(ext)+1:]

			if _, err := fs.Stat(bundlePath); err != nil {
				if os.IsNotExist(err) {
					// Bundle doesn't exist, this might be a directory named like one
					continue
				}
				return nil, fmt.Errorf("stat bundle %s: %w", bundlePath, err)
			}

			return &Path{
				BundlePath:   bundlePath,
				InternalPath: internalPath,
			}, nil
		}
	}

	// Check if the path itself is a bundle (for auto-detection)
	ext := strings.ToLower(filepath.Ext(path))
	if IsBundleExtension(ext) {
		if _, err := fs.Stat(path); err != nil {
			if os.IsNotExist(err) {
				return nil, nil
			}
			return nil, fmt.Errorf("stat bundle %s: %w", path, err)
		}

		return &Path{
			BundlePath:   path,
			InternalPath: "",
		}, nil
	}

	return nil, nil
}

// IsBundlePath checks if a path references a bundle.
// This is a quick check that doesn't verify file existence.
func IsBundlePath(path string) bool {
	normalizedPath := filepath.ToSlash(path)

	for _, ext := range bundleExtensions {
		if strings.Contains(strings.ToLower(normalizedPath), ext+"/") {
			return true
		}
	}

	ext := strings.ToLower(filepath.Ext(path))
	return IsBundleExtension(ext)
}

// Join returns the path of a member inside the bundle at bundlePath.
func Join(bundlePath, internalPath string) string {
	return bundlePath + "/" + strings.TrimLeft(filepath.ToSlash(internalPath), "/")
}
