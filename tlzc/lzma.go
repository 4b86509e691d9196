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
	"encoding/binary"
	"fmt"
	"io"

	"github.com/ulikunitz/xz/lzma"
)

const lzmaChunkSize = 0x10000

// lzmaDefaultProps is the classic LZMA1 properties byte for lc=3, lp=0,
// pb=2 (encoded as lc + lp*9 + pb*45), the default used by every chunk's
// encoder and recorded once in the frame's filter-properties block.
const lzmaDefaultProps = 0x5D
const lzmaDefaultDictSize = 0x10000

func decompressLZMA(src []byte, h Header) ([]byte, error) {
	if len(src) < lzmaPropsOffset+5 {
		return nil, fmt.Errorf("%w: frame too short for LZMA1 filter properties", ErrFormat)
	}
	propsByte := src[lzmaPropsOffset]
	dictSize := binary.LittleEndian.Uint32(src[lzmaPropsOffset+1 : lzmaPropsOffset+5])

	streamCount := int((uint64(h.FileSizeUncompressed) + 0xFFFF) >> 16)
	sizesStart := lzmaPropsOffset + 5
	sizesEnd := sizesStart + 2*streamCount
	if len(src) < sizesEnd {
		return nil, fmt.Errorf("%w: frame too short for %d stream sizes", ErrFormat, streamCount)
	}
	sizes := make([]int, streamCount)
	for i := range sizes {
		sizes[i] = int(binary.LittleEndian.Uint16(src[sizesStart+2*i : sizesStart+2*i+2]))
	}

	pos := sizesEnd
	remaining := int(h.FileSizeUncompressed)
	out := make([]byte, 0, h.FileSizeUncompressed)
	for _, size := range sizes {
		streamLen := remaining
		if streamLen > lzmaChunkSize {
			streamLen = lzmaChunkSize
		}
		if size != 0 {
			if pos+size > len(src) {
				return nil, fmt.Errorf("%w: LZMA1 stream truncated", ErrFormat)
			}
			chunk, err := decompressLZMAChunk(src[pos:pos+size], streamLen, propsByte, dictSize)
			if err != nil {
				return nil, err
			}
			out = append(out, chunk...)
			pos += size
		} else {
			if pos+streamLen > len(src) {
				return nil, fmt.Errorf("%w: stored LZMA1 stream truncated", ErrFormat)
			}
			out = append(out, src[pos:pos+streamLen]...)
			pos += streamLen
		}
		remaining -= streamLen
	}
	return out, nil
}

// decompressLZMAChunk synthesizes a classic 13-byte LZMA header (props
// byte + dict_size LE + uncompressed size LE) from properties known out
// of band and feeds it to lzma.NewReader, mirroring chd's codec_lzma.go
// technique for decoding headerless hunks.
func decompressLZMAChunk(compressed []byte, outLen int, propsByte byte, dictSize uint32) ([]byte, error) {
	header := make([]byte, 13)
	header[0] = propsByte
	binary.LittleEndian.PutUint32(header[1:5], dictSize)
	binary.LittleEndian.PutUint64(header[5:13], uint64(outLen))

	full := make([]byte, 0, len(header)+len(compressed))
	full = append(full, header...)
	full = append(full, compressed...)

	r, err := lzma.NewReader(bytes.NewReader(full))
	if err != nil {
		return nil, fmt.Errorf("%w: lzma init: %v", ErrCodec, err)
	}
	dst := make([]byte, outLen)
	n, err := io.ReadFull(r, dst)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, fmt.Errorf("%w: lzma decode: %v", ErrCodec, err)
	}
	return dst[:n], nil
}

func compressLZMA(data []byte, _ int) ([]byte, error) {
	streamCount := (len(data) + lzmaChunkSize - 1) / lzmaChunkSize
	sizes := make([]uint16, streamCount)
	var body bytes.Buffer

	for i := 0; i < streamCount; i++ {
		start := i * lzmaChunkSize
		end := start + lzmaChunkSize
		if end > len(data) {
			end = len(data)
		}
		chunk := data[start:end]

		compressed, err := compressLZMAChunk(chunk)
		if err != nil {
			return nil, err
		}
		if len(compressed) >= lzmaChunkSize {
			sizes[i] = 0
			body.Write(chunk)
		} else {
			sizes[i] = uint16(len(compressed))
			body.Write(compressed)
		}
	}

	headPrefix := make([]byte, HeaderSize-4) // first 20 bytes: magic, type, pad, comp(placeholder), uncomp
	copy(headPrefix[0:4], magic[:])
	binary.LittleEndian.PutUint16(headPrefix[4:6], TypeLZMA)
	binary.LittleEndian.PutUint32(headPrefix[12:16], uint32(len(data)))

	props := make([]byte, 5)
	props[0] = lzmaDefaultProps
	binary.LittleEndian.PutUint32(props[1:5], lzmaDefaultDictSize)

	sizeTable := make([]byte, 2*len(sizes))
	for i, s := range sizes {
		binary.LittleEndian.PutUint16(sizeTable[2*i:2*i+2], s)
	}

	total := len(headPrefix) + len(props) + len(sizeTable) + body.Len()
	binary.LittleEndian.PutUint32(headPrefix[8:12], uint32(total))

	out := make([]byte, 0, total)
	out = append(out, headPrefix...)
	out = append(out, props...)
	out = append(out, sizeTable...)
	out = append(out, body.Bytes()...)
	return out, nil
}

// compressLZMAChunk runs a fresh LZMA1 encoder over chunk and strips the
// classic 13-byte header it emits, returning only the compressed body —
// the filter properties are recorded once per frame, not per chunk.
func compressLZMAChunk(chunk []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := lzma.NewWriter(&buf)
	if err != nil {
		return nil, fmt.Errorf("%w: lzma init: %v", ErrCodec, err)
	}
	if _, err := w.Write(chunk); err != nil {
		return nil, fmt.Errorf("%w: lzma encode: %v", ErrCodec, err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("%w: lzma flush: %v", ErrCodec, err)
	}
	out := buf.Bytes()
	if len(out) < 13 {
		return nil, fmt.Errorf("%w: lzma writer produced a stream shorter than its own header", ErrCodec)
	}
	return out[13:], nil
}
