// Copyright (c) 2025 Niema Moshiri and The Zaparoo Project.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of vespack.
//
// vespack is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// vespack is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with vespack.  If not, see <https://www.gnu.org/licenses/>.

// Package bytesutil provides the growable-buffer and bit-alignment
// primitives shared by the archive codecs: a cursor-addressed byte buffer
// that grows on demand, and the power-of-two alignment inference used to
// recover container padding rules from observed payload offsets.
package bytesutil

import (
	"bytes"
	"fmt"
	"io"
)

// Cursor is a growable byte buffer with an explicit read/write position.
// Packing a container requires writing a directory region, seeking back
// into it to patch pointers once payload offsets are known, and finally
// appending payload bytes — all against a buffer whose final size isn't
// known up front. Cursor models that against a plain heap-backed slice.
type Cursor struct {
	buf []byte
	pos int
}

// NewCursor returns a Cursor positioned at offset 0, seeded with a copy
// of initial (nil is fine).
func NewCursor(initial []byte) *Cursor {
	buf := make([]byte, len(initial))
	copy(buf, initial)
	return &Cursor{buf: buf}
}

// Bytes returns the buffer's current contents. The returned slice aliases
// the cursor's internal storage.
func (c *Cursor) Bytes() []byte { return c.buf }

// Len returns the buffer's current size.
func (c *Cursor) Len() int { return len(c.buf) }

// Pos returns the current cursor position.
func (c *Cursor) Pos() int { return c.pos }

// Grow extends the buffer to exactly n bytes, zero-filling the new
// region, if it is currently shorter than n. It is a no-op otherwise.
func (c *Cursor) Grow(n int) {
	if n <= len(c.buf) {
		return
	}
	grown := make([]byte, n)
	copy(grown, c.buf)
	c.buf = grown
}

// Seek moves the cursor per io.Seeker semantics, growing the buffer if
// the target position exceeds its current length.
func (c *Cursor) Seek(offset int64, whence int) (int64, error) {
	var target int64
	switch whence {
	case io.SeekStart:
		target = offset
	case io.SeekCurrent:
		target = int64(c.pos) + offset
	case io.SeekEnd:
		target = int64(len(c.buf)) + offset
	default:
		return 0, fmt.Errorf("bytesutil: invalid whence %d", whence)
	}
	if target < 0 {
		return 0, fmt.Errorf("bytesutil: negative seek target %d", target)
	}
	if target > int64(len(c.buf)) {
		c.Grow(int(target))
	}
	c.pos = int(target)
	return target, nil
}

// Write writes b at the current position, growing the buffer as needed,
// and advances the cursor by len(b). It always succeeds.
func (c *Cursor) Write(b []byte) (int, error) {
	end := c.pos + len(b)
	if end > len(c.buf) {
		c.Grow(end)
	}
	copy(c.buf[c.pos:end], b)
	c.pos = end
	return len(b), nil
}

// WriteAt writes b at pos without disturbing the current cursor
// position, growing the buffer as needed.
func (c *Cursor) WriteAt(b []byte, pos int) {
	saved := c.pos
	c.pos = pos
	_, _ = c.Write(b)
	c.pos = saved
}

// ReadCString reads from the buffer starting at start until a NUL byte
// or the end of the buffer, returning the raw bytes (not including the
// terminator). Decoding those bytes into text is the caller's job — see
// package sjis.
func (c *Cursor) ReadCString(start int) []byte {
	return ReadCString(c.buf, start)
}

// ReadCString reads from data starting at start until a NUL byte or the
// end of data, returning the raw bytes (not including the terminator).
func ReadCString(data []byte, start int) []byte {
	if start < 0 || start > len(data) {
		return nil
	}
	rest := data[start:]
	if idx := bytes.IndexByte(rest, 0); idx >= 0 {
		return rest[:idx]
	}
	return rest
}
