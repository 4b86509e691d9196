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

package bytesutil

import "math/bits"

// AlignmentFromLowestUnsetBit returns 1<<k, where k is the index of the
// lowest zero bit of n (0-indexed from the LSB). Archive alignment is
// recovered by AND-ing together the complements of every observed
// payload offset; the result's lowest unset bit marks the coarsest
// power-of-two all offsets share.
//
// n == ^uint64(0) (no payload offsets were ever observed) has no lowest
// unset bit representable in 64 bits; callers treat the returned 0 as
// "no constraint" and fall back to an alignment of 1.
func AlignmentFromLowestUnsetBit(n uint64) uint64 {
	if n == ^uint64(0) {
		return 0
	}
	return 1 << bits.TrailingZeros64(^n)
}

// AlignUp rounds base upward to the next value congruent to offset
// modulo alignment, leaving base unchanged if it already satisfies that.
// An alignment of 0 or 1 imposes no constraint.
func AlignUp(base, alignment, offset uint64) uint64 {
	if alignment <= 1 {
		return base
	}
	diff := (base - offset) % alignment
	if diff == 0 {
		return base
	}
	return base + (alignment - diff)
}
