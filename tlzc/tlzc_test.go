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

package tlzc_test

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/aidanii24/vespack/tlzc"
)

func TestZlibRoundTrip(t *testing.T) {
	t.Parallel()

	original := bytes.Repeat([]byte("the quick brown fox jumps over the lazy dog. "), 100)
	frame, err := tlzc.Compress(original, tlzc.ModeZlib, 64)
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}
	got, err := tlzc.Decompress(frame, tlzc.ModeAuto)
	if err != nil {
		t.Fatalf("Decompress: %v", err)
	}
	if !bytes.Equal(got, original) {
		t.Fatalf("round trip mismatch: got %d bytes, want %d", len(got), len(original))
	}
}

func TestDeflateRoundTrip(t *testing.T) {
	t.Parallel()

	original := []byte("short payload")
	frame, err := tlzc.Compress(original, tlzc.ModeDeflate, 64)
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}
	got, err := tlzc.Decompress(frame, tlzc.ModeDeflate)
	if err != nil {
		t.Fatalf("Decompress: %v", err)
	}
	if !bytes.Equal(got, original) {
		t.Fatalf("round trip mismatch: got %q, want %q", got, original)
	}
}

func TestLZMARoundTripSingleChunk(t *testing.T) {
	t.Parallel()

	original := bytes.Repeat([]byte{0x01, 0x02, 0x03, 0x04}, 4096) // 16 KiB, one chunk
	frame, err := tlzc.Compress(original, tlzc.ModeLZMA, 64)
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}
	got, err := tlzc.Decompress(frame, tlzc.ModeAuto)
	if err != nil {
		t.Fatalf("Decompress: %v", err)
	}
	if !bytes.Equal(got, original) {
		t.Fatalf("round trip mismatch: got %d bytes, want %d", len(got), len(original))
	}
}

func TestLZMARoundTripChunkBoundary(t *testing.T) {
	t.Parallel()

	// Exactly one 64 KiB chunk plus one extra byte, exercising the
	// boundary condition called out in the testable-properties list.
	original := make([]byte, 0x10000+1)
	for i := range original {
		original[i] = byte(i)
	}
	frame, err := tlzc.Compress(original, tlzc.ModeLZMA, 64)
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}
	got, err := tlzc.Decompress(frame, tlzc.ModeAuto)
	if err != nil {
		t.Fatalf("Decompress: %v", err)
	}
	if !bytes.Equal(got, original) {
		t.Fatalf("round trip mismatch: got %d bytes, want %d", len(got), len(original))
	}
}

func TestLZMAIncompressibleChunkStoredRaw(t *testing.T) {
	t.Parallel()

	// A full 64 KiB chunk of xorshift output, which LZMA cannot shrink
	// below 0x10000 bytes; exercises the "stored size 0 means raw chunk"
	// path both ways.
	original := make([]byte, 0x10000)
	x := uint32(2463534242)
	for i := range original {
		x ^= x << 13
		x ^= x >> 17
		x ^= x << 5
		original[i] = byte(x)
	}
	frame, err := tlzc.Compress(original, tlzc.ModeLZMA, 64)
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}
	// The single size-table entry follows the 20-byte header prefix and
	// the 5-byte filter properties.
	if size := binary.LittleEndian.Uint16(frame[25:27]); size != 0 {
		t.Fatalf("stream size = %d, want 0 (stored raw)", size)
	}
	got, err := tlzc.Decompress(frame, tlzc.ModeAuto)
	if err != nil {
		t.Fatalf("Decompress: %v", err)
	}
	if !bytes.Equal(got, original) {
		t.Fatalf("round trip mismatch for incompressible chunk")
	}
}

func TestDecompressRejectsSizeMismatch(t *testing.T) {
	t.Parallel()

	original := []byte("data")
	frame, err := tlzc.Compress(original, tlzc.ModeZlib, 64)
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}
	truncated := frame[:len(frame)-1]
	if _, err := tlzc.Decompress(truncated, tlzc.ModeAuto); err == nil {
		t.Fatal("Decompress of truncated frame did not return an error")
	}
}

func TestDecompressRejectsBadMagic(t *testing.T) {
	t.Parallel()

	bad := []byte("XXXX\x01\x02\x00\x00\x04\x00\x00\x00\x04\x00\x00\x00")
	bad = append(bad, make([]byte, tlzc.HeaderSize-len(bad))...)
	if _, err := tlzc.Decompress(bad, tlzc.ModeAuto); err == nil {
		t.Fatal("Decompress with bad magic did not return an error")
	}
}
