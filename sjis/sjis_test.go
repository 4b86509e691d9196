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

package sjis_test

import (
	"testing"

	"github.com/aidanii24/vespack/sjis"
)

func TestDecodeASCII(t *testing.T) {
	t.Parallel()

	got := sjis.Decode([]byte("BTL_PACK.DAT"))
	if got != "BTL_PACK.DAT" {
		t.Errorf("Decode() = %q, want %q", got, "BTL_PACK.DAT")
	}
}

func TestDecodeNeverErrors(t *testing.T) {
	t.Parallel()

	// A run of bytes with the high bit set that isn't a valid Shift-JIS
	// sequence must still produce a string, not panic or require error
	// handling from the caller.
	raw := []byte{0xFF, 0xFE, 0x00, 0x80, 0x41}
	got := sjis.Decode(raw)
	if got == "" {
		t.Fatalf("Decode() of undecodable bytes returned empty string")
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	t.Parallel()

	const text = "SAMPLE01"
	encoded, err := sjis.Encode(text)
	if err != nil {
		t.Fatalf("Encode() error: %v", err)
	}
	decoded := sjis.Decode(encoded)
	if decoded != text {
		t.Errorf("round trip = %q, want %q", decoded, text)
	}
}
