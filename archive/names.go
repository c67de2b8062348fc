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
	"math/bits"
	"path"
	"strconv"
	"strings"

	"github.com/ZaparooProject/go-gamearc/internal/binary"
	"golang.org/x/text/encoding/charmap"
)

// nameEncoding selects how a format stores names on disk.
type nameEncoding uint8

const (
	encASCII nameEncoding = iota
	encCP437
)

// decodeName converts a NUL-padded name field to a string. Control bytes
// are always rejected; bytes above 0x7F only pass for code page 437.
func decodeName(field []byte, enc nameEncoding) (string, error) {
	raw := binary.TrimNUL(field)
	if binary.HasControl(raw) {
		return "", fmt.Errorf("%w: control byte in %q", ErrInvalidName, raw)
	}
	if enc == encASCII {
		if !binary.IsPrintableASCII(raw) {
			return "", fmt.Errorf("%w: non-ASCII byte in %q", ErrInvalidName, raw)
		}
		return string(raw), nil
	}
	out, err := charmap.CodePage437.NewDecoder().Bytes(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidName, err)
	}
	return string(out), nil
}

// encodeName converts name to its on-disk bytes, at most maxLen long.
func encodeName(name string, enc nameEncoding, maxLen int) ([]byte, error) {
	var raw []byte
	if enc == encASCII {
		raw = []byte(name)
		if !binary.IsPrintableASCII(raw) {
			return nil, fmt.Errorf("%w: %q is not printable ASCII", ErrUnsupportedName, name)
		}
	} else {
		var err error
		raw, err = charmap.CodePage437.NewEncoder().Bytes([]byte(name))
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %w", ErrUnsupportedName, name, err)
		}
		if binary.HasControl(raw) {
			return nil, fmt.Errorf("%w: %q has control characters", ErrUnsupportedName, name)
		}
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: empty name", ErrInvalidName)
	}
	if len(raw) > maxLen {
		return nil, fmt.Errorf("%w: %q is %d bytes, limit %d", ErrNameTooLong, name, len(raw), maxLen)
	}
	return raw, nil
}

// isDOSChar reports whether c may appear in a DOS 8.3 name.
func isDOSChar(c rune) bool {
	switch {
	case c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	case strings.ContainsRune("!#$%&'()-@^_`{}~", c):
		return true
	}
	return false
}

func dosPart(s string, limit int) string {
	var b strings.Builder
	for _, c := range s {
		if b.Len() == limit {
			break
		}
		if isDOSChar(c) {
			b.WriteRune(c)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}

// baseName returns the last element of a slash or backslash separated path.
func baseName(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = strings.TrimRight(name, "/")
	if name == "" {
		return ""
	}
	return path.Base(name)
}

// splitExt splits name at its last dot.
func splitExt(name string) (stem, ext string) {
	i := strings.LastIndexByte(name, '.')
	if i < 0 {
		return name, ""
	}
	return name[:i], name[i+1:]
}

// NormalizeDOSName maps the base name of name to an upper-case 8.3 name.
// Invalid characters and inner dots become underscores.
func NormalizeDOSName(name string) (string, error) {
	stem, ext := splitExt(strings.ToUpper(baseName(name)))
	stem = dosPart(stem, 8)
	ext = dosPart(ext, 3)
	if stem == "" {
		return "", fmt.Errorf("%w: %q has no base name", ErrInvalidName, name)
	}
	if ext == "" {
		return stem, nil
	}
	return stem + "." + ext, nil
}

// NormalizeWADName maps name to an upper-case lump name of up to eight
// characters with no extension.
func NormalizeWADName(name string) (string, error) {
	stem, _ := splitExt(strings.ToUpper(baseName(name)))
	var b strings.Builder
	for _, c := range stem {
		if b.Len() == 8 {
			break
		}
		if c < 0x21 || c > 0x7E {
			c = '_'
		}
		b.WriteRune(c)
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("%w: %q has no base name", ErrInvalidName, name)
	}
	return b.String(), nil
}

// NormalizeLFDName maps name to NAME.TYPE with a name of up to eight and a
// type of up to four characters. The type is required.
func NormalizeLFDName(name string) (string, error) {
	stem, typ := splitExt(strings.ToUpper(baseName(name)))
	stem = dosPart(stem, 8)
	typ = dosPart(typ, 4)
	if stem == "" || typ == "" {
		return "", fmt.Errorf("%w: %q is not NAME.TYPE", ErrInvalidName, name)
	}
	return stem + "." + typ, nil
}

// NormalizeLongName keeps the base name as given, rejecting control
// characters.
func NormalizeLongName(name string) (string, error) {
	base := baseName(name)
	if base == "" || base == "." || base == ".." {
		return "", fmt.Errorf("%w: %q has no base name", ErrInvalidName, name)
	}
	if binary.HasControl([]byte(base)) {
		return "", fmt.Errorf("%w: %q has control characters", ErrInvalidName, name)
	}
	return base, nil
}

// RemapPath maps a relative path onto a name field of width bytes.
// Separators become '/', leading separators and "./" are dropped and case is
// kept. An overlong path loses characters from its directory part first and
// then from its base name, keeping the extension.
//
// The truncation rule is provisional; existing tools disagree on it.
func RemapPath(name string, width int) string {
	p := strings.ReplaceAll(name, "\\", "/")
	for {
		if strings.HasPrefix(p, "/") {
			p = p[1:]
		} else if strings.HasPrefix(p, "./") {
			p = p[2:]
		} else {
			break
		}
	}
	for strings.Contains(p, "//") {
		p = strings.ReplaceAll(p, "//", "/")
	}
	if len(p) <= width {
		return p
	}

	dir, base := path.Split(p)
	dir = strings.TrimSuffix(dir, "/")
	if room := width - len(base) - 1; dir != "" && room > 0 {
		dir = strings.TrimRight(dir[:min(room, len(dir))], "/")
		if dir != "" {
			return dir + "/" + base
		}
	}

	if len(base) <= width {
		return base
	}
	stem, ext := splitExt(base)
	if ext == "" || len(ext)+1 >= width {
		return base[:width]
	}
	return stem[:width-len(ext)-1] + "." + ext
}

func normalizePAKPath(name string) (string, error) {
	p := RemapPath(name, pakNameWidth-1)
	if p == "" || strings.HasSuffix(p, "/") {
		return "", fmt.Errorf("%w: %q has no base name", ErrInvalidName, name)
	}
	if !binary.IsPrintableASCII([]byte(p)) {
		return "", fmt.Errorf("%w: %q is not printable ASCII", ErrInvalidName, name)
	}
	return p, nil
}

func normalizePODPath(name string) (string, error) {
	p := RemapPath(name, podNameWidth-1)
	if p == "" || strings.HasSuffix(p, "/") {
		return "", fmt.Errorf("%w: %q has no base name", ErrInvalidName, name)
	}
	if !binary.IsPrintableASCII([]byte(p)) {
		return "", fmt.Errorf("%w: %q is not printable ASCII", ErrInvalidName, name)
	}
	return strings.ToUpper(strings.ReplaceAll(p, "/", "\\")), nil
}

// WestwoodTDHash returns the Tiberian Dawn MIX id of name: the upper-case
// name is summed in little-endian 4-byte chunks, rotating the running id
// left by one bit before each add.
func WestwoodTDHash(name string) uint32 {
	b := []byte(strings.ToUpper(name))
	var id uint32
	for i := 0; i < len(b); i += 4 {
		var chunk uint32
		for j := 0; j < 4 && i+j < len(b); j++ {
			chunk |= uint32(b[i+j]) << (8 * j)
		}
		id = bits.RotateLeft32(id, 1) + chunk
	}
	return id
}

// hexID formats a MIX id the way nameless entries are listed.
func hexID(id uint32) string {
	return fmt.Sprintf("%08X", id)
}

// parseHexID reports whether name is an eight digit hex id.
func parseHexID(name string) (uint32, bool) {
	if len(name) != 8 {
		return 0, false
	}
	v, err := strconv.ParseUint(name, 16, 32)
	if err != nil {
		return 0, false
	}
	return uint32(v), true
}

func normalizeMIXName(name string) (string, error) {
	base := baseName(name)
	if base == "" {
		return "", fmt.Errorf("%w: %q has no base name", ErrInvalidName, name)
	}
	if id, ok := parseHexID(base); ok {
		return hexID(id), nil
	}
	return hexID(WestwoodTDHash(base)), nil
}

func mixHash(name string) (uint32, HashKind) {
	id, _ := parseHexID(name)
	return id, HashWestwoodTD
}
