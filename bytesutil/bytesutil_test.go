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

package bytesutil_test

import (
	"bytes"
	"io"
	"testing"

	"github.com/aidanii24/vespack/bytesutil"
)

func TestCursorWriteGrowsBuffer(t *testing.T) {
	t.Parallel()

	c := bytesutil.NewCursor(nil)
	if _, err := c.Write([]byte("hello")); err != nil {
		t.Fatalf("Write returned error: %v", err)
	}
	if c.Len() != 5 {
		t.Fatalf("Len() = %d, want 5", c.Len())
	}
	if !bytes.Equal(c.Bytes(), []byte("hello")) {
		t.Fatalf("Bytes() = %q, want %q", c.Bytes(), "hello")
	}
}

func TestCursorWriteAtPreservesPosition(t *testing.T) {
	t.Parallel()

	c := bytesutil.NewCursor(make([]byte, 8))
	if _, err := c.Seek(4, io.SeekStart); err != nil {
		t.Fatalf("Seek: %v", err)
	}
	c.WriteAt([]byte{0xAA, 0xBB}, 0)
	if c.Pos() != 4 {
		t.Fatalf("Pos() after WriteAt = %d, want 4", c.Pos())
	}
	if c.Bytes()[0] != 0xAA || c.Bytes()[1] != 0xBB {
		t.Fatalf("WriteAt did not patch expected bytes: %x", c.Bytes()[:2])
	}
}

func TestCursorSeekPastEndGrows(t *testing.T) {
	t.Parallel()

	c := bytesutil.NewCursor(nil)
	if _, err := c.Seek(16, io.SeekStart); err != nil {
		t.Fatalf("Seek: %v", err)
	}
	if c.Len() != 16 {
		t.Fatalf("Len() = %d, want 16", c.Len())
	}
}

func TestReadCString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		data  []byte
		start int
		want  []byte
	}{
		{"terminated", []byte("abc\x00def"), 0, []byte("abc")},
		{"unterminated", []byte("abc"), 0, []byte("abc")},
		{"mid-buffer", []byte("abc\x00def\x00"), 4, []byte("def")},
		{"start at terminator", []byte("\x00abc"), 0, []byte{}},
		{"start past end", []byte("abc"), 10, nil},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := bytesutil.ReadCString(tt.data, tt.start)
			if !bytes.Equal(got, tt.want) {
				t.Errorf("ReadCString(%q, %d) = %q, want %q", tt.data, tt.start, got, tt.want)
			}
		})
	}
}

func TestAlignmentFromLowestUnsetBit(t *testing.T) {
	t.Parallel()

	tests := []struct {
		n    uint64
		want uint64
	}{
		{0, 1},
		{1, 2},
		{0b11, 4},
		{0x800, 1},
		{0xFFFFF7FF, 0x800},
		{^uint64(0), 0},
	}

	for _, tt := range tests {
		got := bytesutil.AlignmentFromLowestUnsetBit(tt.n)
		if got != tt.want {
			t.Errorf("AlignmentFromLowestUnsetBit(%#x) = %#x, want %#x", tt.n, got, tt.want)
		}
	}
}

func TestAlignmentFromLowestUnsetBitIsPowerOfTwo(t *testing.T) {
	t.Parallel()

	for _, n := range []uint64{0, 1, 2, 1234567, 0xDEADBEEF, 0x7FFFFFFFFFFFFFFF} {
		result := bytesutil.AlignmentFromLowestUnsetBit(n)
		if result == 0 {
			continue
		}
		if result&(result-1) != 0 {
			t.Errorf("AlignmentFromLowestUnsetBit(%#x) = %#x, not a power of two", n, result)
		}
		if n&(result-1) != result-1 {
			t.Errorf("AlignmentFromLowestUnsetBit(%#x) = %#x: low bits of n are not all set below the chosen bit", n, result)
		}
	}
}

func TestAlignUp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		base, alignment, offset uint64
		want                    uint64
	}{
		{0, 0x800, 0, 0},
		{1, 0x800, 0, 0x800},
		{0x800, 0x800, 0, 0x800},
		{0x801, 0x800, 0, 0x1000},
		{10, 1, 0, 10},
		{10, 0, 0, 10},
		{17, 16, 1, 17},
		{18, 16, 1, 33},
	}

	for _, tt := range tests {
		got := bytesutil.AlignUp(tt.base, tt.alignment, tt.offset)
		if got != tt.want {
			t.Errorf("AlignUp(%d, %d, %d) = %d, want %d", tt.base, tt.alignment, tt.offset, got, tt.want)
		}
	}
}
