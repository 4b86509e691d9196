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

package tlzc

import (
	"bytes"
	"compress/flate"
	"compress/zlib"
	"fmt"
	"io"
)

// Mode selects the codec used by Compress, or the one forced on
// Decompress (ModeAuto lets Decompress read it from the frame header).
type Mode string

const (
	ModeZlib    Mode = "zlib"
	ModeDeflate Mode = "deflate"
	ModeLZMA    Mode = "lzma"
	ModeAuto    Mode = "auto"
)

const maxInputSize = 0xFFFFFFFF

// Decompress unwraps a TLZC frame, returning the plain payload bytes.
// mode may be ModeAuto to resolve the codec from the frame's type field.
func Decompress(src []byte, mode Mode) ([]byte, error) {
	h, err := parseHeader(src)
	if err != nil {
		return nil, err
	}
	resolved := mode
	if mode == ModeAuto {
		switch byte(h.Type >> 8) {
		case 2:
			resolved = ModeZlib
		case 4:
			resolved = ModeLZMA
		default:
			return nil, fmt.Errorf("%w: unsupported type 0x%04x", ErrFormat, h.Type)
		}
	}

	// Deflate frames record only the content length (see compressDeflate);
	// all other frames record header plus content.
	declared := int(h.FileSizeCompressed)
	if resolved == ModeDeflate {
		declared += HeaderSize
	}
	if declared != len(src) {
		return nil, fmt.Errorf("%w: declared size %d does not match input length %d", ErrFormat, h.FileSizeCompressed, len(src))
	}

	switch resolved {
	case ModeZlib:
		return decompressZlib(src)
	case ModeDeflate:
		return decompressDeflate(src)
	case ModeLZMA:
		return decompressLZMA(src, h)
	default:
		return nil, fmt.Errorf("%w: unsupported decompress mode %q", ErrFormat, resolved)
	}
}

// Compress wraps src in a TLZC frame under the given mode. mode must be
// one of ModeZlib, ModeDeflate, or ModeLZMA; niceLen is accepted for API
// symmetry with the reference tool's compressor but has no effect here:
// every LZMA1 chunk is encoded with the lzma package's default settings.
func Compress(src []byte, mode Mode, niceLen int) ([]byte, error) {
	if len(src) > maxInputSize {
		return nil, fmt.Errorf("%w: input of %d bytes exceeds 4 GiB", ErrSizeOverflow, len(src))
	}
	switch mode {
	case ModeZlib:
		return compressZlib(src)
	case ModeDeflate:
		return compressDeflate(src)
	case ModeLZMA:
		return compressLZMA(src, niceLen)
	default:
		return nil, fmt.Errorf("%w: unsupported compress mode %q", ErrFormat, mode)
	}
}

func decompressZlib(src []byte) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(src[HeaderSize:]))
	if err != nil {
		return nil, fmt.Errorf("%w: zlib init: %v", ErrCodec, err)
	}
	defer r.Close()
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: zlib inflate: %v", ErrCodec, err)
	}
	return out, nil
}

func decompressDeflate(src []byte) ([]byte, error) {
	r := flate.NewReader(bytes.NewReader(src[HeaderSize:]))
	defer r.Close()
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: deflate inflate: %v", ErrCodec, err)
	}
	return out, nil
}

func compressZlib(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := zlib.NewWriterLevel(&buf, zlib.BestCompression)
	if err != nil {
		return nil, fmt.Errorf("%w: zlib init: %v", ErrCodec, err)
	}
	if _, err := w.Write(data); err != nil {
		return nil, fmt.Errorf("%w: zlib deflate: %v", ErrCodec, err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("%w: zlib flush: %v", ErrCodec, err)
	}
	content := buf.Bytes()
	h := Header{
		Type:                 TypeZlibDeflate,
		FileSizeUncompressed: uint32(len(data)),
		FileSizeCompressed:   uint32(HeaderSize + len(content)),
	}
	return append(encodeHeader(h), content...), nil
}

func compressDeflate(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := flate.NewWriter(&buf, flate.BestCompression)
	if err != nil {
		return nil, fmt.Errorf("%w: deflate init: %v", ErrCodec, err)
	}
	if _, err := w.Write(data); err != nil {
		return nil, fmt.Errorf("%w: deflate compress: %v", ErrCodec, err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("%w: deflate flush: %v", ErrCodec, err)
	}
	content := buf.Bytes()
	h := Header{
		Type:                 TypeZlibDeflate,
		FileSizeUncompressed: uint32(len(data)),
		// Observed behaviour: deflate frames record only the content
		// length here, not header+content as zlib frames do. See
		// SPEC_FULL.md's open-question note.
		FileSizeCompressed: uint32(len(content)),
	}
	return append(encodeHeader(h), content...), nil
}
