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

package codec

import (
	"bytes"
	"fmt"

	"github.com/icza/bitio"
)

const (
	lzhufN         = 4096 // window size
	lzhufF         = 60   // lookahead, the longest match
	lzhufThreshold = 2    // matches must be longer than this
	lzhufNChar     = 256 - lzhufThreshold + lzhufF
	lzhufT         = lzhufNChar*2 - 1
	lzhufR         = lzhufT - 1 // root node
	lzhufMaxFreq   = 0x8000
	lzhufMask      = lzhufN - 1
	lzhufMaxChain  = 256
)

func init() {
	RegisterCodec(MethodLZHUF, func() Codec { return &LZHUF{} })
}

// LZHUF is the LZSS codec with an adaptive Huffman coded literal/length
// alphabet. The window starts filled with spaces and bits are packed
// MSB-first.
type LZHUF struct{}

// Decompress decodes src into dst, which must be exactly the unpacked size.
func (*LZHUF) Decompress(dst, src []byte) (int, error) {
	out, err := decodeLZHUF(dst[:0:len(dst)], src, len(dst))
	return len(out), err
}

// Compress encodes src.
func (*LZHUF) Compress(src []byte) ([]byte, error) {
	return EncodeLZHUF(src)
}

// DecodeLZHUF decodes size bytes from src. The stream does not record its
// own length, so size must come from the container.
func DecodeLZHUF(src []byte, size int) ([]byte, error) {
	if size < 0 || size > MaxUnpackedSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrTooLarge, size)
	}
	return decodeLZHUF(make([]byte, 0, size), src, size)
}

// huffTree is the adaptive Huffman tree over the literal/length alphabet.
// Nodes are kept sorted by frequency; son holds the left child of each
// internal node (the right child is son+1) or T plus the symbol for a leaf.
type huffTree struct {
	freq [lzhufT + 1]uint32
	prnt [lzhufT + lzhufNChar]int
	son  [lzhufT]int
}

func (h *huffTree) start() {
	for i := range lzhufNChar {
		h.freq[i] = 1
		h.son[i] = i + lzhufT
		h.prnt[i+lzhufT] = i
	}
	for i, j := 0, lzhufNChar; j <= lzhufR; i, j = i+2, j+1 {
		h.freq[j] = h.freq[i] + h.freq[i+1]
		h.son[j] = i
		h.prnt[i] = j
		h.prnt[i+1] = j
	}
	h.freq[lzhufT] = 0xFFFF
	h.prnt[lzhufR] = 0
}

// reconst halves every leaf frequency and rebuilds the tree.
func (h *huffTree) reconst() {
	j := 0
	for i := range lzhufT {
		if h.son[i] >= lzhufT {
			h.freq[j] = (h.freq[i] + 1) / 2
			h.son[j] = h.son[i]
			j++
		}
	}

	for i, j := 0, lzhufNChar; j < lzhufT; i, j = i+2, j+1 {
		f := h.freq[i] + h.freq[i+1]
		h.freq[j] = f
		k := j - 1
		for f < h.freq[k] {
			k--
		}
		k++
		copy(h.freq[k+1:j+1], h.freq[k:j])
		h.freq[k] = f
		copy(h.son[k+1:j+1], h.son[k:j])
		h.son[k] = i
	}

	for i := range lzhufT {
		k := h.son[i]
		h.prnt[k] = i
		if k < lzhufT {
			h.prnt[k+1] = i
		}
	}
}

// update increments the frequency of symbol c and restores node order.
func (h *huffTree) update(c int) {
	if h.freq[lzhufR] == lzhufMaxFreq {
		h.reconst()
	}
	c = h.prnt[c+lzhufT]
	for {
		h.freq[c]++
		k := h.freq[c]
		l := c + 1
		if k > h.freq[l] {
			l++
			for k > h.freq[l] {
				l++
			}
			l--
			h.freq[c] = h.freq[l]
			h.freq[l] = k

			i := h.son[c]
			h.prnt[i] = l
			if i < lzhufT {
				h.prnt[i+1] = l
			}
			j := h.son[l]
			h.son[l] = i
			h.prnt[j] = c
			if j < lzhufT {
				h.prnt[j+1] = c
			}
			h.son[c] = j
			c = l
		}
		c = h.prnt[c]
		if c == 0 {
			return
		}
	}
}

type lzhufDecoder struct {
	huffTree
	br   *bitio.Reader
	text [lzhufN]byte
}

func (d *lzhufDecoder) decodeChar() (int, error) {
	c := d.son[lzhufR]
	for c < lzhufT {
		bit, err := d.br.ReadBool()
		if err != nil {
			return 0, err
		}
		if bit {
			c++
		}
		c = d.son[c]
	}
	c -= lzhufT
	d.update(c)
	return c, nil
}

func (d *lzhufDecoder) decodePosition() (int, error) {
	v, err := d.br.ReadBits(8)
	if err != nil {
		return 0, err
	}
	i := int(v)
	upper := int(dCode[i]) << 6
	if extra := dLen[i] - 2; extra > 0 {
		low, err := d.br.ReadBits(extra)
		if err != nil {
			return 0, err
		}
		i = i<<extra | int(low)
	}
	return upper | i&0x3F, nil
}

func decodeLZHUF(out, src []byte, size int) ([]byte, error) {
	d := &lzhufDecoder{br: bitio.NewReader(bytes.NewReader(src))}
	d.start()
	for i := range lzhufN - lzhufF {
		d.text[i] = ' '
	}
	r := lzhufN - lzhufF

	for len(out) < size {
		c, err := d.decodeChar()
		if err != nil {
			return out, fmt.Errorf("%w: lzhuf stream ended after %d of %d bytes", ErrTruncated, len(out), size)
		}
		if c < 256 {
			out = append(out, byte(c))
			d.text[r] = byte(c)
			r = (r + 1) & lzhufMask
			continue
		}

		pos, err := d.decodePosition()
		if err != nil {
			return out, fmt.Errorf("%w: lzhuf stream ended after %d of %d bytes", ErrTruncated, len(out), size)
		}
		i := (r - pos - 1) & lzhufMask
		n := c - 255 + lzhufThreshold
		for k := 0; k < n && len(out) < size; k++ {
			b := d.text[(i+k)&lzhufMask]
			out = append(out, b)
			d.text[r] = b
			r = (r + 1) & lzhufMask
		}
	}
	return out, nil
}

type lzhufEncoder struct {
	huffTree
	bw *bitio.Writer
}

func (e *lzhufEncoder) encodeChar(c int) error {
	var code uint64
	var n uint8
	k := e.prnt[c+lzhufT]
	for {
		code |= uint64(k&1) << n
		n++
		k = e.prnt[k]
		if k == lzhufR {
			break
		}
	}
	if err := e.bw.WriteBits(code, n); err != nil {
		return fmt.Errorf("write symbol: %w", err)
	}
	e.update(c)
	return nil
}

func (e *lzhufEncoder) encodePosition(pos int) error {
	i := pos >> 6
	if err := e.bw.WriteBits(uint64(pCode[i]>>(8-pLen[i])), pLen[i]); err != nil {
		return fmt.Errorf("write position: %w", err)
	}
	if err := e.bw.WriteBits(uint64(pos&0x3F), 6); err != nil {
		return fmt.Errorf("write position: %w", err)
	}
	return nil
}

// EncodeLZHUF compresses src with greedy longest matches found through
// three-byte hash chains. The output decodes with DecodeLZHUF but is not
// byte-identical to historical compressors.
func EncodeLZHUF(src []byte) ([]byte, error) {
	var buf bytes.Buffer
	e := &lzhufEncoder{bw: bitio.NewWriter(&buf)}
	e.start()

	head := make(map[uint32]int)
	prev := make([]int, len(src))
	key := func(p int) uint32 {
		return uint32(src[p])<<16 | uint32(src[p+1])<<8 | uint32(src[p+2])
	}
	insert := func(p int) {
		if p+2 >= len(src) {
			return
		}
		k := key(p)
		if h, ok := head[k]; ok {
			prev[p] = h
		} else {
			prev[p] = -1
		}
		head[k] = p
	}

	maxDist := lzhufN - lzhufF
	for cur := 0; cur < len(src); {
		bestLen, bestDist := 0, 0
		if cur+2 < len(src) {
			p, ok := head[key(cur)]
			for depth := 0; ok && p >= 0 && cur-p <= maxDist && depth < lzhufMaxChain; depth++ {
				l := 0
				for l < lzhufF && cur+l < len(src) && src[p+l] == src[cur+l] {
					l++
				}
				if l > bestLen {
					bestLen, bestDist = l, cur-p
					if l == lzhufF {
						break
					}
				}
				p = prev[p]
			}
		}

		if bestLen > lzhufThreshold {
			if err := e.encodeChar(bestLen + 255 - lzhufThreshold); err != nil {
				return nil, err
			}
			if err := e.encodePosition(bestDist - 1); err != nil {
				return nil, err
			}
			for k := range bestLen {
				insert(cur + k)
			}
			cur += bestLen
			continue
		}

		if err := e.encodeChar(int(src[cur])); err != nil {
			return nil, err
		}
		insert(cur)
		cur++
	}

	if err := e.bw.Close(); err != nil {
		return nil, fmt.Errorf("flush lzhuf stream: %w", err)
	}
	return buf.Bytes(), nil
}
