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

package fps4

import (
	"fmt"
	"io"

	binaryat "github.com/aidanii24/vespack/internal/binary"
	"github.com/aidanii24/vespack/manifest"
)

// ReadPayloadAt reads a single file entry's payload directly from r, without
// loading the rest of the archive into memory. fe.Address and fe.FileSize
// must already be known, typically from a manifest produced by Extract.
func ReadPayloadAt(r io.ReaderAt, fe manifest.FileEntry, multiplier uint32) ([]byte, error) {
	if fe.Skippable || fe.Address == nil {
		return nil, fmt.Errorf("%w: entry %d has no payload to read", ErrMissingData, fe.Index)
	}
	if fe.FileSize == nil {
		return nil, fmt.Errorf("%w: entry %d file size is unknown", ErrMissingData, fe.Index)
	}

	offset := int64(*fe.Address) * int64(multiplier)
	data, err := binaryat.ReadBytesAt(r, offset, int(*fe.FileSize))
	if err != nil {
		return nil, fmt.Errorf("fps4: read payload for entry %d: %w", fe.Index, err)
	}
	return data, nil
}

// ReadArchiveName reads the archive's name field directly from r, given the
// address recorded in its header.
func ReadArchiveName(r io.ReaderAt, address uint32, maxLen int) (string, error) {
	if address == 0 {
		return "", nil
	}
	return binaryat.ReadStringAt(r, int64(address), maxLen)
}
