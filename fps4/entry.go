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
	"strings"

	"github.com/aidanii24/vespack/bytesutil"
	"github.com/aidanii24/vespack/sjis"
)

// MetadataField is one token of an entry's metadata blob: either a bare
// value (Key nil) or a KEY=VALUE pair.
type MetadataField struct {
	Key   *string
	Value string
}

// Entry is a single FPS4 directory entry. Fields not selected by the
// archive's content bitmask are left nil.
type Entry struct {
	Index int

	Address       *uint32
	SectorSize    *uint32
	FileSize      *uint32
	Filename      *string
	FileExtension *string
	FileType      *string
	Metadata      []MetadataField
	Unknown0x080  *uint32
	Unknown0x100  *uint32
}

// Skippable reports whether the entry is a directory slot with no
// backing payload: its address is the sentinel 0xFFFFFFFF, or its
// unknown-0x080 mask is nonzero.
func (e Entry) Skippable() bool {
	if e.Address != nil && *e.Address == 0xFFFFFFFF {
		return true
	}
	if e.Unknown0x080 != nil && *e.Unknown0x080 > 0 {
		return true
	}
	return false
}

// ParseEntry decodes one entry of entrySize bytes at entryOffset within
// the full archive buffer, following the field layout implied by
// descriptor and the given byte order.
func ParseEntry(archive []byte, entryOffset, index int, descriptor ContentDescriptor, order binary.ByteOrder) (Entry, error) {
	entrySize := int(descriptor.EntrySize())
	if entryOffset < 0 || entryOffset+entrySize > len(archive) {
		return Entry{}, fmt.Errorf("%w: entry %d at offset %d overruns archive", ErrFormat, index, entryOffset)
	}
	data := archive[entryOffset : entryOffset+entrySize]
	pos := 0
	e := Entry{Index: index}

	if descriptor.HasStartPointer() {
		v := order.Uint32(data[pos : pos+4])
		e.Address = &v
		pos += 4
	}
	if descriptor.HasSectorSize() {
		v := order.Uint32(data[pos : pos+4])
		e.SectorSize = &v
		pos += 4
	}
	if descriptor.HasFileSize() {
		v := order.Uint32(data[pos : pos+4])
		e.FileSize = &v
		pos += 4
	}
	if descriptor.HasFilename() {
		raw := bytesutil.ReadCString(data[pos:pos+widthFilename], 0)
		s := sjis.Decode(raw)
		e.Filename = &s
		pos += widthFilename
	}
	if descriptor.HasExtension() {
		s := sjis.Decode(data[pos : pos+widthExtension])
		e.FileExtension = &s
		pos += widthExtension
	}
	if descriptor.HasFileType() {
		s := sjis.Decode(data[pos : pos+widthFileType])
		e.FileType = &s
		pos += widthFileType
	}
	if descriptor.HasMetadata() {
		ptr := order.Uint32(data[pos : pos+4])
		pos += 4
		if ptr != 0 {
			meta, err := parseMetadata(archive, int(ptr))
			if err != nil {
				return Entry{}, err
			}
			e.Metadata = meta
		}
	}
	if descriptor.HasMask0x080() {
		v := order.Uint32(data[pos : pos+4])
		e.Unknown0x080 = &v
		pos += 4
	}
	if descriptor.HasMask0x100() {
		v := order.Uint32(data[pos : pos+4])
		e.Unknown0x100 = &v
		pos += 4
	}
	return e, nil
}

// parseMetadata decodes the NUL-terminated, space-separated Shift-JIS
// metadata blob at offset into a list of fields.
func parseMetadata(archive []byte, offset int) ([]MetadataField, error) {
	if offset < 0 || offset > len(archive) {
		return nil, fmt.Errorf("%w: metadata pointer %d out of range", ErrFormat, offset)
	}
	raw := bytesutil.ReadCString(archive, offset)
	text := sjis.Decode(raw)

	var fields []MetadataField
	for _, tok := range strings.Split(text, " ") {
		if tok == "" {
			continue
		}
		if key, value, found := strings.Cut(tok, "="); found {
			k := key
			fields = append(fields, MetadataField{Key: &k, Value: value})
		} else {
			fields = append(fields, MetadataField{Value: tok})
		}
	}
	return fields, nil
}

// EstimateFileSize returns the best available estimate of e's payload
// size: the stored file_size, else the stored sector_size, else the gap
// to the next non-skippable entry's address. All three checks treat a
// zero stored value as "not available", matching the reference tool's
// behaviour. ok is false if none of the three sources yields a value.
func EstimateFileSize(e Entry, all []Entry) (uint32, bool) {
	if e.FileSize != nil && *e.FileSize != 0 {
		return *e.FileSize, true
	}
	if e.SectorSize != nil && *e.SectorSize != 0 {
		return *e.SectorSize, true
	}
	if e.Address != nil && *e.Address != 0 {
		for i := e.Index + 1; i < len(all); i++ {
			next := all[i]
			if next.Skippable() || next.Address == nil {
				continue
			}
			if *next.Address > *e.Address {
				return *next.Address - *e.Address, true
			}
			break
		}
	}
	return 0, false
}

// EstimateFilePath derives the (directory, basename) pair under which
// e's payload should be written, following the reference tool's exact
// precedence: a bare metadata entry (key nil), if any, is captured first
// as the path candidate and returned verbatim as the directory alongside
// an explicit filename or a name= metadata value. When neither exists,
// the basename is synthesized from the index (plus file type); a
// non-empty path candidate is then split at its last "/" into directory
// and basename, with the synthesized name appended to that basename, or,
// without a "/", used whole as the basename prefix with no directory.
func EstimateFilePath(e Entry, ignoreMetadata bool) (dir *string, filename string) {
	var path *string
	if !ignoreMetadata {
		for _, f := range e.Metadata {
			if f.Key == nil {
				v := f.Value
				path = &v
				break
			}
		}
	}

	if e.Filename != nil && *e.Filename != "" {
		return path, *e.Filename
	}

	if !ignoreMetadata {
		for _, f := range e.Metadata {
			if f.Key != nil && *f.Key == "name" && f.Value != "" {
				return path, f.Value
			}
		}
	}

	synth := fmt.Sprintf("%04d", e.Index)
	if e.FileType != nil {
		if t := strings.TrimRight(*e.FileType, "\x00"); t != "" {
			synth += "." + t
		}
	}

	if path == nil || *path == "" {
		return path, synth
	}
	if idx := strings.LastIndex(*path, "/"); idx >= 0 {
		d := (*path)[:idx]
		return &d, (*path)[idx+1:] + "." + synth
	}
	return nil, *path + "." + synth
}
