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

package scenario

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"golang.org/x/sync/errgroup"
)

// maxConcurrentWrites bounds the fan-out of payload writes during
// Extract so a large archive doesn't open hundreds of files at once.
const maxConcurrentWrites = 8

// Extract reads a Scenario archive from data and writes each non-gap
// payload to outDir/{index}. Gap entries (file_size_compressed == 0)
// are skipped and produce no file.
func Extract(data []byte, outDir string) error {
	h, err := parseHeader(data)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("%w: %v", ErrIO, err)
	}

	entries := make([]Entry, h.FileCount)
	for i := range entries {
		off := PrefixSize + EntrySize*int(i)
		if off+EntrySize > len(data) {
			return fmt.Errorf("%w: entry table truncated at index %d", ErrFormat, i)
		}
		entries[i] = parseEntry(data[off : off+EntrySize])
	}

	g := new(errgroup.Group)
	g.SetLimit(maxConcurrentWrites)
	for i, e := range entries {
		i, e := i, e
		if e.FileSizeCompressed == 0 {
			continue
		}
		g.Go(func() error {
			start := int(h.FileOffset) + int(e.Offset)
			end := start + int(e.FileSizeCompressed)
			if start < 0 || end > len(data) {
				return fmt.Errorf("%w: entry %d payload out of range", ErrFormat, i)
			}
			path := filepath.Join(outDir, strconv.Itoa(i))
			if err := os.WriteFile(path, data[start:end], 0o644); err != nil {
				return fmt.Errorf("%w: %v", ErrIO, err)
			}
			return nil
		})
	}
	return g.Wait()
}

// Pack builds a Scenario archive from the numerically-named files in
// dir and writes it to outPath.
func Pack(dir, outPath string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrIO, err)
	}

	indexed := make(map[int]string)
	maxIndex := -1
	for _, de := range entries {
		if de.IsDir() {
			continue
		}
		idx, err := strconv.Atoi(de.Name())
		if err != nil {
			continue
		}
		indexed[idx] = filepath.Join(dir, de.Name())
		if idx > maxIndex {
			maxIndex = idx
		}
	}
	if maxIndex < 0 {
		return fmt.Errorf("%w: no numerically-named payload files found in %s", ErrFormat, dir)
	}
	fileCount := maxIndex + 1

	buf := make([]byte, DataOffset+16)
	copy(buf[DataOffset:], "DUMMY")
	cursor := DataOffset + 16

	out := make([]Entry, fileCount)
	var prevHash [sha256.Size]byte
	havePrevHash := false

	order := make([]int, 0, fileCount)
	for i := 0; i < fileCount; i++ {
		order = append(order, i)
	}
	sort.Ints(order)

	for _, i := range order {
		path, ok := indexed[i]
		if !ok {
			out[i] = Entry{}
			havePrevHash = false
			continue
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrIO, err)
		}

		hash := sha256.Sum256(content)
		isDuplicate := havePrevHash && hash == prevHash && len(content) > dupThreshold

		var uncompressed uint32
		if len(content) >= 9 {
			uncompressed = uint32(content[5]) | uint32(content[6])<<8 | uint32(content[7])<<16 | uint32(content[8])<<24
		}

		e := Entry{
			FileSizeCompressed:   uint32(len(content)),
			FileSizeUncompressed: uncompressed,
		}
		if isDuplicate {
			e.Offset = out[i-1].Offset
		} else {
			e.Offset = uint32(cursor - DataOffset)
			buf = append(buf, content...)
			cursor += len(content)
			if pad := (16 - cursor%16) % 16; pad != 0 {
				buf = append(buf, make([]byte, pad)...)
				cursor += pad
			}
		}
		out[i] = e
		prevHash = hash
		havePrevHash = true
	}

	dirTable := make([]byte, EntrySize*fileCount)
	for i, e := range out {
		copy(dirTable[EntrySize*i:EntrySize*(i+1)], encodeEntry(e))
	}
	if PrefixSize+len(dirTable) > DataOffset {
		return fmt.Errorf("%w: entry table overruns payload data region", ErrFormat)
	}
	copy(buf[PrefixSize:], dirTable)

	h := Header{
		Magic:              magic,
		FileCount:          uint32(fileCount),
		FileOffset:         DataOffset,
		FileSize:           uint32(len(buf)),
		DuplicatedFileSize: uint32(len(buf)),
	}
	copy(buf[0:PrefixSize], encodeHeader(h))

	if err := os.WriteFile(outPath, buf, 0o644); err != nil {
		return fmt.Errorf("%w: %v", ErrIO, err)
	}
	return nil
}
