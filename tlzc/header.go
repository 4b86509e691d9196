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

// Package tlzc implements the TLZC framing format: a small header
// wrapping a zlib, raw-deflate, or chunked-LZMA1 compressed payload.
package tlzc

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// HeaderSize is the byte offset at which a zlib or deflate payload
// begins.
const HeaderSize = 24

// lzmaPropsOffset is where the LZMA1 filter-properties block (mask byte
// + dict_size) begins for type-0x04 frames — four bytes before
// HeaderSize, inside what would otherwise be the header's reserved tail.
const lzmaPropsOffset = 0x14

// Type codes for the 16-bit header field.
const (
	TypeZlibDeflate uint16 = 0x0201
	TypeLZMA        uint16 = 0x0401
)

var magic = [4]byte{'T', 'L', 'Z', 'C'}

// Errors returned by this package. Callers should use errors.Is against
// these sentinels rather than matching message text.
var (
	ErrFormat       = errors.New("tlzc: invalid format")
	ErrCodec        = errors.New("tlzc: codec error")
	ErrSizeOverflow = errors.New("tlzc: size overflow")
)

// Header is the fixed TLZC frame prefix.
type Header struct {
	Type                 uint16
	FileSizeCompressed   uint32
	FileSizeUncompressed uint32
}

func encodeHeader(h Header) []byte {
	buf := make([]byte, HeaderSize)
	copy(buf[0:4], magic[:])
	binary.LittleEndian.PutUint16(buf[4:6], h.Type)
	binary.LittleEndian.PutUint32(buf[8:12], h.FileSizeCompressed)
	binary.LittleEndian.PutUint32(buf[12:16], h.FileSizeUncompressed)
	return buf
}

func parseHeader(data []byte) (Header, error) {
	if len(data) < HeaderSize {
		return Header{}, fmt.Errorf("%w: frame shorter than header (%d bytes)", ErrFormat, len(data))
	}
	if string(data[0:4]) != string(magic[:]) {
		return Header{}, fmt.Errorf("%w: bad magic %q", ErrFormat, data[0:4])
	}
	h := Header{
		Type:                 binary.LittleEndian.Uint16(data[4:6]),
		FileSizeCompressed:   binary.LittleEndian.Uint32(data[8:12]),
		FileSizeUncompressed: binary.LittleEndian.Uint32(data[12:16]),
	}
	return h, nil
}
