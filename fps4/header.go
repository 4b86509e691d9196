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
	"encoding/binary"
	"fmt"
)

// HeaderSize is the fixed byte width of the FPS4 header.
const HeaderSize = 28

var magic = [4]byte{'F', 'P', 'S', '4'}

// ByteOrder names the endianness an archive was written under.
type ByteOrder string

const (
	LittleEndian ByteOrder = "little"
	BigEndian    ByteOrder = "big"
)

// Binary returns the binary.ByteOrder implementation matching o.
func (o ByteOrder) Binary() binary.ByteOrder {
	if o == BigEndian {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

// Header is the fixed 28-byte FPS4 directory header.
type Header struct {
	FileEntries        uint32
	HeaderSize         uint32
	FileStart          uint32
	EntrySize          uint16
	ContentBitmask     uint16
	Unknown0           uint32
	ArchiveNameAddress uint32
}

func parseHeaderWithOrder(data []byte, order binary.ByteOrder) (Header, error) {
	if len(data) < HeaderSize {
		return Header{}, fmt.Errorf("%w: file shorter than header (%d bytes)", ErrFormat, len(data))
	}
	if string(data[0:4]) != string(magic[:]) {
		return Header{}, fmt.Errorf("%w: bad magic %q", ErrFormat, data[0:4])
	}
	h := Header{
		FileEntries:        order.Uint32(data[4:8]),
		HeaderSize:         order.Uint32(data[8:12]),
		FileStart:          order.Uint32(data[12:16]),
		EntrySize:          order.Uint16(data[16:18]),
		ContentBitmask:     order.Uint16(data[18:20]),
		Unknown0:           order.Uint32(data[20:24]),
		ArchiveNameAddress: order.Uint32(data[24:28]),
	}
	descriptor := ContentDescriptor(h.ContentBitmask)
	if h.EntrySize != descriptor.EntrySize() {
		return Header{}, fmt.Errorf("%w: entry_size %d does not match bitmask-implied width %d", ErrFormat, h.EntrySize, descriptor.EntrySize())
	}
	return h, nil
}

func encodeHeader(h Header, order binary.ByteOrder) []byte {
	buf := make([]byte, HeaderSize)
	copy(buf[0:4], magic[:])
	order.PutUint32(buf[4:8], h.FileEntries)
	order.PutUint32(buf[8:12], h.HeaderSize)
	order.PutUint32(buf[12:16], h.FileStart)
	order.PutUint16(buf[16:18], h.EntrySize)
	order.PutUint16(buf[18:20], h.ContentBitmask)
	order.PutUint32(buf[20:24], h.Unknown0)
	order.PutUint32(buf[24:28], h.ArchiveNameAddress)
	return buf
}

// hostIsLittleEndian reports the native byte order of the running
// process, used only to break ties in DetectByteOrder.
func hostIsLittleEndian() bool {
	return binary.NativeEndian.Uint16([]byte{1, 0}) == 1
}

// DetectByteOrder reads the header_size field under both endian
// interpretations and picks whichever yields a plausible (<= 0xFFFF)
// value; archives are self-describing in exactly this sense. If both
// interpretations are plausible, or both are not, the host's native
// byte order breaks the tie.
func DetectByteOrder(data []byte) (ByteOrder, error) {
	if len(data) < HeaderSize {
		return "", fmt.Errorf("%w: file shorter than header (%d bytes)", ErrFormat, len(data))
	}
	if string(data[0:4]) != string(magic[:]) {
		return "", fmt.Errorf("%w: bad magic %q", ErrFormat, data[0:4])
	}

	le := binary.LittleEndian.Uint32(data[8:12]) <= 0xFFFF
	be := binary.BigEndian.Uint32(data[8:12]) <= 0xFFFF

	switch {
	case le && !be:
		return LittleEndian, nil
	case be && !le:
		return BigEndian, nil
	default:
		if hostIsLittleEndian() {
			return LittleEndian, nil
		}
		return BigEndian, nil
	}
}
