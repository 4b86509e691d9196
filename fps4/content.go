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

// Package fps4 implements the FPS4 container format: a self-describing-
// endianness directory of variable-shape entries followed by a payload
// region, with a content bitmask selecting which fields each entry carries.
package fps4

const (
	flagStartPointer uint16 = 0x0001
	flagSectorSize   uint16 = 0x0002
	flagFileSize     uint16 = 0x0004
	flagFilename     uint16 = 0x0008
	flagExtension    uint16 = 0x0010
	flagFileType     uint16 = 0x0020
	flagMetadata     uint16 = 0x0040
	flagMask0x080    uint16 = 0x0080
	flagMask0x100    uint16 = 0x0100
	flagReservedMask uint16 = 0xFE00
)

// Field widths in the canonical on-disk order: start-pointer, sector-
// size, file-size, filename, file-extension, file-type, metadata
// pointer, mask-0x080, mask-0x100.
const (
	widthStartPointer = 4
	widthSectorSize   = 4
	widthFileSize     = 4
	widthFilename     = 32
	widthExtension    = 8
	widthFileType     = 4
	widthMetadata     = 4
	widthMask0x080    = 4
	widthMask0x100    = 4
)

// ContentDescriptor is a pure view over an entry's 16-bit field bitmask.
type ContentDescriptor uint16

func (d ContentDescriptor) HasStartPointer() bool { return uint16(d)&flagStartPointer != 0 }
func (d ContentDescriptor) HasSectorSize() bool   { return uint16(d)&flagSectorSize != 0 }
func (d ContentDescriptor) HasFileSize() bool     { return uint16(d)&flagFileSize != 0 }
func (d ContentDescriptor) HasFilename() bool     { return uint16(d)&flagFilename != 0 }
func (d ContentDescriptor) HasExtension() bool    { return uint16(d)&flagExtension != 0 }
func (d ContentDescriptor) HasFileType() bool     { return uint16(d)&flagFileType != 0 }
func (d ContentDescriptor) HasMetadata() bool     { return uint16(d)&flagMetadata != 0 }
func (d ContentDescriptor) HasMask0x080() bool    { return uint16(d)&flagMask0x080 != 0 }
func (d ContentDescriptor) HasMask0x100() bool    { return uint16(d)&flagMask0x100 != 0 }

// HasUnknownTypes reports whether any of the reserved high bits are set.
// These bits are observed in the wild but neither interpreted nor
// modified; they round-trip through the bitmask field verbatim.
func (d ContentDescriptor) HasUnknownTypes() bool { return uint16(d)&flagReservedMask != 0 }

// EntrySize returns the total byte width of one entry under this
// descriptor: the sum of the widths of its enabled fields.
func (d ContentDescriptor) EntrySize() uint16 {
	var n uint16
	if d.HasStartPointer() {
		n += widthStartPointer
	}
	if d.HasSectorSize() {
		n += widthSectorSize
	}
	if d.HasFileSize() {
		n += widthFileSize
	}
	if d.HasFilename() {
		n += widthFilename
	}
	if d.HasExtension() {
		n += widthExtension
	}
	if d.HasFileType() {
		n += widthFileType
	}
	if d.HasMetadata() {
		n += widthMetadata
	}
	if d.HasMask0x080() {
		n += widthMask0x080
	}
	if d.HasMask0x100() {
		n += widthMask0x100
	}
	return n
}

// MetadataOffset returns the byte offset of the metadata pointer field
// within one entry, or 0 if the metadata flag is unset.
func (d ContentDescriptor) MetadataOffset() uint16 {
	if !d.HasMetadata() {
		return 0
	}
	var n uint16
	if d.HasStartPointer() {
		n += widthStartPointer
	}
	if d.HasSectorSize() {
		n += widthSectorSize
	}
	if d.HasFileSize() {
		n += widthFileSize
	}
	if d.HasFilename() {
		n += widthFilename
	}
	if d.HasExtension() {
		n += widthExtension
	}
	if d.HasFileType() {
		n += widthFileType
	}
	return n
}

// entryFieldOffsets is the byte offset of each optional field within one
// entry, or -1 if the field is not selected by the descriptor.
type entryFieldOffsets struct {
	startPointer, sectorSize, fileSize int
	filename, extension, fileType      int
	metadata, mask0x080, mask0x100     int
}

func (d ContentDescriptor) fieldOffsets() entryFieldOffsets {
	o := entryFieldOffsets{-1, -1, -1, -1, -1, -1, -1, -1, -1}
	pos := 0
	if d.HasStartPointer() {
		o.startPointer = pos
		pos += widthStartPointer
	}
	if d.HasSectorSize() {
		o.sectorSize = pos
		pos += widthSectorSize
	}
	if d.HasFileSize() {
		o.fileSize = pos
		pos += widthFileSize
	}
	if d.HasFilename() {
		o.filename = pos
		pos += widthFilename
	}
	if d.HasExtension() {
		o.extension = pos
		pos += widthExtension
	}
	if d.HasFileType() {
		o.fileType = pos
		pos += widthFileType
	}
	if d.HasMetadata() {
		o.metadata = pos
		pos += widthMetadata
	}
	if d.HasMask0x080() {
		o.mask0x080 = pos
		pos += widthMask0x080
	}
	if d.HasMask0x100() {
		o.mask0x100 = pos
	}
	return o
}
