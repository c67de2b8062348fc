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

// crc16Table is the reflected CRC-16 table for polynomial 0x8005, as used by
// ARC and LHA.
var crc16Table = func() [256]uint16 {
	var t [256]uint16
	for i := range t {
		c := uint16(i) //nolint:gosec // i < 256
		for range 8 {
			if c&1 != 0 {
				c = c>>1 ^ 0xA001
			} else {
				c >>= 1
			}
		}
		t[i] = c
	}
	return t
}()

// crc16 returns the CRC-16/ARC of b.
func crc16(b []byte) uint16 {
	var crc uint16
	for _, v := range b {
		crc = crc>>8 ^ crc16Table[byte(crc)^v]
	}
	return crc
}
