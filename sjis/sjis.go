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

// Package sjis decodes and encodes the Shift-JIS text embedded in FPS4
// and Scenario archives: filenames, extensions, metadata, and archive
// comments.
package sjis

import (
	"fmt"

	"golang.org/x/text/encoding/japanese"
)

// Decode converts raw Shift-JIS bytes to a UTF-8 string. It never fails:
// archives observed in practice sometimes carry byte runs that don't
// decode cleanly, so if the decoder reports an error the result keeps
// only the ASCII bytes (below 0x80) of raw instead of raising an error.
func Decode(raw []byte) string {
	decoded, err := japanese.ShiftJIS.NewDecoder().Bytes(raw)
	if err != nil {
		return asciiFallback(raw)
	}
	return string(decoded)
}

func asciiFallback(raw []byte) string {
	out := make([]byte, 0, len(raw))
	for _, b := range raw {
		if b < 0x80 {
			out = append(out, b)
		}
	}
	return string(out)
}

// Encode converts s to Shift-JIS bytes. Unlike Decode, it fails loudly:
// a string containing a character with no Shift-JIS representation is a
// programmer or manifest error, not a tolerable archive quirk.
func Encode(s string) ([]byte, error) {
	encoded, err := japanese.ShiftJIS.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return nil, fmt.Errorf("sjis: cannot encode %q as shift-jis: %w", s, err)
	}
	return encoded, nil
}
