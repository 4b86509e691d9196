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
	"os"
	"path/filepath"
	"strings"

	"github.com/aidanii24/vespack/bytesutil"
	"github.com/aidanii24/vespack/manifest"
	"github.com/aidanii24/vespack/sjis"
)

// Archive is a fully parsed FPS4 directory.
type Archive struct {
	Header                 Header
	Descriptor             ContentDescriptor
	Order                  ByteOrder
	Entries                []Entry
	ArchiveName            *string
	FileLocationMultiplier uint32
	ShouldGuessFileSize    bool
}

// Parse decodes an FPS4 archive from data, detecting its byte order and
// resolving the file-location multiplier and linearity.
func Parse(data []byte) (*Archive, error) {
	order, err := DetectByteOrder(data)
	if err != nil {
		return nil, err
	}
	bo := order.Binary()

	h, err := parseHeaderWithOrder(data, bo)
	if err != nil {
		return nil, err
	}
	descriptor := ContentDescriptor(h.ContentBitmask)

	var archiveName *string
	if h.ArchiveNameAddress != 0 {
		raw := bytesutil.ReadCString(data, int(h.ArchiveNameAddress))
		s := sjis.Decode(raw)
		archiveName = &s
	}

	entries := make([]Entry, h.FileEntries)
	for i := range entries {
		offset := int(h.HeaderSize) + i*int(h.EntrySize)
		e, err := ParseEntry(data, offset, i, descriptor, bo)
		if err != nil {
			return nil, err
		}
		entries[i] = e
	}

	a := &Archive{
		Header:      h,
		Descriptor:  descriptor,
		Order:       order,
		Entries:     entries,
		ArchiveName: archiveName,
	}
	a.FileLocationMultiplier = a.computeFileLocationMultiplier()
	a.ShouldGuessFileSize = descriptor.HasFileSize() && !descriptor.HasSectorSize() && a.isLinear()
	return a, nil
}

// computeFileLocationMultiplier recovers the scale factor relating raw
// entry address values to byte offsets, for archives whose pointers are
// expressed in sector units rather than bytes.
func (a *Archive) computeFileLocationMultiplier() uint32 {
	if !a.Descriptor.HasStartPointer() {
		return 1
	}
	var smin uint32
	have := false
	for _, e := range a.Entries {
		if e.Skippable() || e.Address == nil {
			continue
		}
		if !have || *e.Address < smin {
			smin = *e.Address
			have = true
		}
	}
	if !have || smin == a.Header.FileStart {
		return 1
	}
	if smin != 0 && a.Header.FileStart%smin == 0 {
		return (a.Header.FileStart + smin - 1) / smin
	}
	return 1
}

// isLinear reports whether every non-skippable entry's address strictly
// exceeds its non-skippable predecessor's.
func (a *Archive) isLinear() bool {
	var prev *uint32
	for _, e := range a.Entries {
		if e.Skippable() || e.Address == nil {
			continue
		}
		if prev != nil && !(*e.Address > *prev) {
			return false
		}
		addr := *e.Address
		prev = &addr
	}
	return true
}

// ExtractOptions controls FPS4 extraction behaviour.
type ExtractOptions struct {
	// IgnoreMetadata disables path/filename resolution via metadata
	// fields, using only the stored filename and synthesized names.
	IgnoreMetadata bool
	// AbsolutePaths records absolute filesystem paths in the produced
	// manifest's per-entry "path" field instead of paths relative to
	// outDir.
	AbsolutePaths bool
}

// Extract decodes an FPS4 archive from data, writes every non-skippable
// entry's payload under outDir, and returns the manifest describing the
// archive well enough for Pack to reproduce it.
func Extract(data []byte, outDir string, opts ExtractOptions) (*manifest.Manifest, error) {
	a, err := Parse(data)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIO, err)
	}

	m := a.baseManifest()

	var firstFilePosition uint64 = ^uint64(0)
	haveFirstFilePosition := false
	estimatedAlignment := ^uint64(0)
	sawAnyValidFile := false

	for i, e := range a.Entries {
		fe := entryToManifest(e)

		if e.Skippable() {
			m.Files = append(m.Files, fe)
			continue
		}

		if e.Address == nil {
			return nil, fmt.Errorf("%w: entry %d is not skippable but has no address", ErrMissingData, i)
		}
		size, ok := EstimateFileSize(e, a.Entries)
		if !ok {
			return nil, fmt.Errorf("%w: entry %d has no resolvable size", ErrMissingData, i)
		}

		payloadOffset := uint64(*e.Address) * uint64(a.FileLocationMultiplier)
		if !haveFirstFilePosition || payloadOffset < firstFilePosition {
			firstFilePosition = payloadOffset
			haveFirstFilePosition = true
		}
		estimatedAlignment &= ^payloadOffset
		sawAnyValidFile = true

		end := payloadOffset + uint64(size)
		if end > uint64(len(data)) {
			return nil, fmt.Errorf("%w: entry %d payload [%d:%d] exceeds archive length %d", ErrFormat, i, payloadOffset, end, len(data))
		}

		dir, filename := EstimateFilePath(e, opts.IgnoreMetadata)
		relPath := filename
		if dir != nil && *dir != "" {
			relPath = filepath.Join(*dir, filename)
		}
		fullPath := filepath.Join(outDir, relPath)
		if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrIO, err)
		}
		if err := os.WriteFile(fullPath, data[payloadOffset:end], 0o644); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrIO, err)
		}

		if opts.AbsolutePaths {
			abs, err := filepath.Abs(fullPath)
			if err == nil {
				fe.Path = abs
			}
		} else if dir != nil {
			fe.Path = *dir
		}
		m.Files = append(m.Files, fe)
	}

	archiveAlignment := bytesutil.AlignmentFromLowestUnsetBit(estimatedAlignment)
	m.Alignment = archiveAlignment
	if haveFirstFilePosition {
		firstAlignment := bytesutil.AlignmentFromLowestUnsetBit(^firstFilePosition)
		if firstAlignment > archiveAlignment {
			m.FirstFileAlignment = &firstAlignment
		}
	}
	m.SetSectorSizeAsFileSize = a.Descriptor.HasFileSize() && a.Descriptor.HasSectorSize() && sawAnyValidFile

	return m, nil
}

// baseManifest emits the archive-wide manifest fields computed before
// any per-entry payload processing happens.
func (a *Archive) baseManifest() *manifest.Manifest {
	m := &manifest.Manifest{
		ContentBitmask:         uint16(a.Descriptor),
		Unknown0:               a.Header.Unknown0,
		FileLocationMultiplier: a.FileLocationMultiplier,
		ByteOrder:              string(a.Order),
		FileTerminatorAddress:  -1,
	}
	if a.ArchiveName != nil {
		m.Comment = a.ArchiveName
	}
	if len(a.Entries) > 0 {
		last := a.Entries[len(a.Entries)-1]
		if last.Address != nil && !last.Skippable() {
			real := uint64(*last.Address) * uint64(a.FileLocationMultiplier)
			if real != uint64(a.Header.FileStart) {
				m.FileTerminatorAddress = int64(*last.Address)
			}
		}
	}
	return m
}

func entryToManifest(e Entry) manifest.FileEntry {
	fe := manifest.FileEntry{
		Index:      e.Index,
		Skippable:  e.Skippable(),
		Address:    e.Address,
		SectorSize: e.SectorSize,
		FileSize:   e.FileSize,
	}
	if e.Filename != nil {
		fe.Filename = *e.Filename
	}
	if e.FileExtension != nil {
		fe.FileExtension = *e.FileExtension
	}
	if e.FileType != nil {
		fe.FileType = *e.FileType
	}
	if e.Unknown0x080 != nil {
		fe.Unknown0x080 = e.Unknown0x080
	}
	if e.Unknown0x100 != nil {
		fe.Unknown0x100 = e.Unknown0x100
	}
	for _, f := range e.Metadata {
		fe.Metadata = append(fe.Metadata, manifest.MetadataField{Key: f.Key, Value: f.Value})
	}
	return fe
}

// resolveDiskPath joins baseDir with a manifest entry's path/filename.
func resolveDiskPath(baseDir string, fe manifest.FileEntry) string {
	rel := fe.Filename
	if fe.Path != "" {
		rel = filepath.Join(fe.Path, fe.Filename)
	}
	return filepath.Join(baseDir, rel)
}

// fixedWidthSJIS encodes s as Shift-JIS, truncating to width if the
// encoded form is longer, and zero-padding if shorter.
func fixedWidthSJIS(s string, width int) ([]byte, error) {
	encoded, err := sjis.Encode(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}
	if len(encoded) > width {
		encoded = encoded[:width]
	}
	buf := make([]byte, width)
	copy(buf, encoded)
	return buf, nil
}

// writeMetadataText renders a metadata field list into the on-disk
// space-separated blob format.
func writeMetadataText(fields []manifest.MetadataField) string {
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		if f.Key != nil {
			parts = append(parts, *f.Key+"="+f.Value)
		} else {
			parts = append(parts, f.Value)
		}
	}
	return strings.Join(parts, " ")
}

// Pack builds an FPS4 archive from m and the files it references
// (resolved relative to baseDir), and writes it to outPath.
func Pack(m *manifest.Manifest, baseDir, outPath string) error {
	order := LittleEndian
	if ByteOrder(m.ByteOrder) == BigEndian {
		order = BigEndian
	}
	bo := order.Binary()
	descriptor := ContentDescriptor(m.ContentBitmask)
	entrySize := int(descriptor.EntrySize())
	offsets := descriptor.fieldOffsets()

	if len(m.Files) == 0 {
		return fmt.Errorf("%w: manifest has no entries", ErrFormat)
	}

	// Refresh file_size from disk before planning, per entry.
	sizes := make([]uint32, len(m.Files))
	present := make([]bool, len(m.Files))
	for i, fe := range m.Files {
		path := resolveDiskPath(baseDir, fe)
		info, err := os.Stat(path)
		if err != nil {
			if fe.FileSize != nil {
				sizes[i] = *fe.FileSize
			}
			continue
		}
		sizes[i] = uint32(info.Size())
		present[i] = true
	}

	cur := bytesutil.NewCursor(nil)
	cur.Grow(HeaderSize)
	if _, err := cur.Seek(HeaderSize, io.SeekStart); err != nil {
		return fmt.Errorf("%w: %v", ErrIO, err)
	}

	entryOffsets := make([]int, len(m.Files))
	for i, fe := range m.Files {
		entryOffsets[i] = cur.Pos()
		cur.Write(make([]byte, entrySize))

		if offsets.fileSize >= 0 {
			buf := make([]byte, 4)
			bo.PutUint32(buf, sizes[i])
			cur.WriteAt(buf, entryOffsets[i]+offsets.fileSize)
		}
		if offsets.filename >= 0 {
			buf, err := fixedWidthSJIS(fe.Filename, widthFilename)
			if err != nil {
				return err
			}
			cur.WriteAt(buf, entryOffsets[i]+offsets.filename)
		}
		if offsets.extension >= 0 {
			buf, err := fixedWidthSJIS(fe.FileExtension, widthExtension)
			if err != nil {
				return err
			}
			cur.WriteAt(buf, entryOffsets[i]+offsets.extension)
		}
		if offsets.fileType >= 0 {
			buf, err := fixedWidthSJIS(fe.FileType, widthFileType)
			if err != nil {
				return err
			}
			cur.WriteAt(buf, entryOffsets[i]+offsets.fileType)
		}
	}

	if descriptor.HasMetadata() {
		for i, fe := range m.Files {
			if len(fe.Metadata) == 0 {
				continue
			}
			metaStart := cur.Pos()
			ptr := make([]byte, 4)
			bo.PutUint32(ptr, uint32(metaStart))
			cur.WriteAt(ptr, entryOffsets[i]+offsets.metadata)

			text := writeMetadataText(fe.Metadata)
			encoded, err := sjis.Encode(text)
			if err != nil {
				return fmt.Errorf("%w: %v", ErrFormat, err)
			}
			cur.Seek(int64(metaStart), io.SeekStart)
			cur.Write(encoded)
			cur.Write([]byte{0})
		}
	}

	var archiveNameAddress uint32
	if m.Comment != nil {
		archiveNameAddress = uint32(cur.Pos())
		encoded, err := sjis.Encode(*m.Comment)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrFormat, err)
		}
		cur.Write(encoded)
		cur.Write([]byte{0})
	}

	prePayload := cur.Pos()
	alignment := m.Alignment
	if alignment == 0 {
		alignment = 1
	}
	firstAlignment := alignment
	if m.FirstFileAlignment != nil {
		firstAlignment = *m.FirstFileAlignment
	}
	fileStart := bytesutil.AlignUp(uint64(prePayload), firstAlignment, 0)

	addr := make([]uint64, len(m.Files))
	running := fileStart
	for i := range m.Files {
		addr[i] = running
		running += bytesutil.AlignUp(uint64(sizes[i]), alignment, 0)
	}
	endOfPayload := running

	multiplier := m.FileLocationMultiplier
	if multiplier == 0 {
		multiplier = 1
	}

	for i, fe := range m.Files {
		isLast := i == len(m.Files)-1
		skip := fe.Skippable || !present[i]

		// A skippable terminator (no real end-of-payload semantics to
		// preserve) round-trips as an ordinary skippable slot; only a
		// non-skippable terminator carries the end-of-payload pointer.
		if skip {
			if offsets.startPointer >= 0 {
				buf := make([]byte, 4)
				bo.PutUint32(buf, 0xFFFFFFFF)
				cur.WriteAt(buf, entryOffsets[i]+offsets.startPointer)
			}
			if offsets.sectorSize >= 0 {
				cur.WriteAt(make([]byte, 4), entryOffsets[i]+offsets.sectorSize)
			}
			continue
		}

		if isLast {
			var terminator uint32
			if m.FileTerminatorAddress < 0 {
				terminator = uint32(endOfPayload / multiplier)
			} else {
				terminator = uint32(m.FileTerminatorAddress)
			}
			if offsets.startPointer >= 0 {
				buf := make([]byte, 4)
				bo.PutUint32(buf, terminator)
				cur.WriteAt(buf, entryOffsets[i]+offsets.startPointer)
			}
			continue
		}

		if offsets.startPointer >= 0 {
			buf := make([]byte, 4)
			bo.PutUint32(buf, uint32(addr[i]/uint64(multiplier)))
			cur.WriteAt(buf, entryOffsets[i]+offsets.startPointer)
		}
		if offsets.sectorSize >= 0 {
			var sectorSize uint32
			if m.SetSectorSizeAsFileSize {
				sectorSize = sizes[i]
			} else {
				sectorSize = uint32(bytesutil.AlignUp(uint64(sizes[i]), alignment, 0))
			}
			buf := make([]byte, 4)
			bo.PutUint32(buf, sectorSize)
			cur.WriteAt(buf, entryOffsets[i]+offsets.sectorSize)
		}
	}

	if _, err := cur.Seek(int64(fileStart), io.SeekStart); err != nil {
		return fmt.Errorf("%w: %v", ErrIO, err)
	}
	for i, fe := range m.Files {
		if i == len(m.Files)-1 || fe.Skippable || !present[i] {
			continue
		}
		path := resolveDiskPath(baseDir, fe)
		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrIO, err)
		}
		cur.Seek(int64(addr[i]), io.SeekStart)
		cur.Write(content)
		padded := bytesutil.AlignUp(uint64(len(content)), alignment, 0)
		if pad := padded - uint64(len(content)); pad > 0 {
			cur.Write(make([]byte, pad))
		}
	}

	h := Header{
		FileEntries:        uint32(len(m.Files)),
		HeaderSize:         HeaderSize,
		FileStart:          uint32(fileStart),
		EntrySize:          uint16(entrySize),
		ContentBitmask:     m.ContentBitmask,
		Unknown0:           m.Unknown0,
		ArchiveNameAddress: archiveNameAddress,
	}
	cur.WriteAt(encodeHeader(h, bo), 0)

	if err := os.WriteFile(outPath, cur.Bytes(), 0o644); err != nil {
		return fmt.Errorf("%w: %v", ErrIO, err)
	}
	return nil
}
