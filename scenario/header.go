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

// Package scenario implements the Scenario container format: a
// big-endian directory of fixed-size entries pointing at payloads that
// follow a fixed data offset, with SHA-256 duplicate suppression on pack.
package scenario

import "encoding/binary"

// PrefixSize is the total size, in bytes, of the fixed region preceding
// the entry table: the 28-byte header (which itself carries the
// duplicated size field) plus 4 bytes of padding.
const PrefixSize = 0x20

// EntrySize is the on-disk size of a single directory entry.
const EntrySize = 0x20

// DataOffset is the absolute offset at which the first payload is
// written during pack.
const DataOffset = 0x800

// dupThreshold is the size, in bytes, that a file must exceed for a
// SHA-256 match with the previous file to be stored as a duplicate;
// identical files of this size or smaller are written out again.
const dupThreshold = 0x30

var magic = [4]byte{'S', 'C', 'N', 'D'}

// Header is the fixed prefix of a Scenario archive.
type Header struct {
	Magic              [4]byte
	FileCount          uint32
	FileOffset         uint32
	FileSize           uint32
	DuplicatedFileSize uint32
	Reserved           [8]byte
}

func encodeHeader(h Header) []byte {
	buf := make([]byte, PrefixSize)
	copy(buf[0:4], h.Magic[:])
	binary.BigEndian.PutUint32(buf[4:8], h.FileCount)
	binary.BigEndian.PutUint32(buf[8:12], h.FileOffset)
	binary.BigEndian.PutUint32(buf[12:16], h.FileSize)
	binary.BigEndian.PutUint32(buf[16:20], h.DuplicatedFileSize)
	copy(buf[20:28], h.Reserved[:])
	// buf[28:32] is the trailing padding; left zero.
	return buf
}

func parseHeader(data []byte) (Header, error) {
	if len(data) < PrefixSize {
		return Header{}, ErrFormat
	}
	var h Header
	copy(h.Magic[:], data[0:4])
	h.FileCount = binary.BigEndian.Uint32(data[4:8])
	h.FileOffset = binary.BigEndian.Uint32(data[8:12])
	h.FileSize = binary.BigEndian.Uint32(data[12:16])
	h.DuplicatedFileSize = binary.BigEndian.Uint32(data[16:20])
	copy(h.Reserved[:], data[20:28])
	return h, nil
}

// Entry is a single Scenario directory entry. Only the first three
// fields carry meaning described by the format; the remainder is
// reserved and round-tripped verbatim.
type Entry struct {
	Offset               uint32
	FileSizeCompressed   uint32
	FileSizeUncompressed uint32
	Reserved             [20]byte
}

func encodeEntry(e Entry) []byte {
	buf := make([]byte, EntrySize)
	binary.BigEndian.PutUint32(buf[0:4], e.Offset)
	binary.BigEndian.PutUint32(buf[4:8], e.FileSizeCompressed)
	binary.BigEndian.PutUint32(buf[8:12], e.FileSizeUncompressed)
	copy(buf[12:32], e.Reserved[:])
	return buf
}

func parseEntry(data []byte) Entry {
	var e Entry
	e.Offset = binary.BigEndian.Uint32(data[0:4])
	e.FileSizeCompressed = binary.BigEndian.Uint32(data[4:8])
	e.FileSizeUncompressed = binary.BigEndian.Uint32(data[8:12])
	copy(e.Reserved[:], data[12:32])
	return e
}
