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

// Package manifest holds the serialisable description of an FPS4
// archive produced by extract and consumed by pack.
package manifest

import (
	"encoding/json"
	"fmt"
	"os"
)

// MetadataField is one entry of an archive entry's metadata blob,
// either a bare token (Key nil) or a KEY=VALUE pair.
type MetadataField struct {
	Key   *string `json:"key,omitempty"`
	Value string  `json:"value"`
}

// FileEntry describes one FPS4 archive entry. Only the fields that
// applied to the source entry are populated; the rest are left at
// their zero value and omitted on save.
type FileEntry struct {
	Path          string          `json:"path,omitempty"`
	Filename      string          `json:"filename,omitempty"`
	FileExtension string          `json:"file_extension,omitempty"`
	FileType      string          `json:"file_type,omitempty"`
	FileSize      *uint32         `json:"file_size,omitempty"`
	Metadata      []MetadataField `json:"metadata,omitempty"`
	Unknown0x080  *uint32         `json:"unknown_0x080,omitempty"`
	Unknown0x100  *uint32         `json:"unknown_0x100,omitempty"`
	Skippable     bool            `json:"skippable,omitempty"`
	Index         int             `json:"index"`
	Address       *uint32         `json:"address,omitempty"`
	SectorSize    *uint32         `json:"sector_size,omitempty"`
}

// Manifest is the full description of an archive: enough to
// reconstruct it byte-for-byte via pack.
type Manifest struct {
	ContentBitmask          uint16                     `json:"content_bitmask"`
	Unknown0                uint32                     `json:"unknown0"`
	FileLocationMultiplier  uint32                     `json:"file_location_multiplier"`
	ByteOrder               string                     `json:"byteorder"`
	FileTerminatorAddress   int64                      `json:"file_terminator_address"`
	Alignment               uint64                     `json:"alignment"`
	FirstFileAlignment      *uint64                    `json:"first_file_alignment,omitempty"`
	SetSectorSizeAsFileSize bool                       `json:"set_sector_size_as_file_size"`
	Comment                 *string                    `json:"comment,omitempty"`
	Files                   []FileEntry                `json:"files"`
	Extra                   map[string]json.RawMessage `json:"-"`
}

// manifestAlias mirrors Manifest's exported shape so MarshalJSON and
// UnmarshalJSON can delegate to the default struct codec while still
// stitching in Extra for round-tripping unknown top-level keys.
type manifestAlias struct {
	ContentBitmask          uint16      `json:"content_bitmask"`
	Unknown0                uint32      `json:"unknown0"`
	FileLocationMultiplier  uint32      `json:"file_location_multiplier"`
	ByteOrder               string      `json:"byteorder"`
	FileTerminatorAddress   int64       `json:"file_terminator_address"`
	Alignment               uint64      `json:"alignment"`
	FirstFileAlignment      *uint64     `json:"first_file_alignment,omitempty"`
	SetSectorSizeAsFileSize bool        `json:"set_sector_size_as_file_size"`
	Comment                 *string     `json:"comment,omitempty"`
	Files                   []FileEntry `json:"files"`
}

// MarshalJSON emits the manifest's known fields plus any preserved
// unknown top-level keys from Extra.
func (m Manifest) MarshalJSON() ([]byte, error) {
	known, err := json.Marshal(manifestAlias{
		ContentBitmask:          m.ContentBitmask,
		Unknown0:                m.Unknown0,
		FileLocationMultiplier:  m.FileLocationMultiplier,
		ByteOrder:               m.ByteOrder,
		FileTerminatorAddress:   m.FileTerminatorAddress,
		Alignment:               m.Alignment,
		FirstFileAlignment:      m.FirstFileAlignment,
		SetSectorSizeAsFileSize: m.SetSectorSizeAsFileSize,
		Comment:                 m.Comment,
		Files:                   m.Files,
	})
	if err != nil {
		return nil, err
	}
	if len(m.Extra) == 0 {
		return known, nil
	}

	merged := make(map[string]json.RawMessage, len(m.Extra)+8)
	var flat map[string]json.RawMessage
	if err := json.Unmarshal(known, &flat); err != nil {
		return nil, err
	}
	for k, v := range flat {
		merged[k] = v
	}
	for k, v := range m.Extra {
		if _, exists := merged[k]; !exists {
			merged[k] = v
		}
	}
	return json.Marshal(merged)
}

// UnmarshalJSON decodes the manifest's known fields and stashes any
// top-level keys it doesn't recognise into Extra, so a round trip
// through Load/Save never silently drops data.
func (m *Manifest) UnmarshalJSON(data []byte) error {
	var alias manifestAlias
	if err := json.Unmarshal(data, &alias); err != nil {
		return err
	}
	*m = Manifest{
		ContentBitmask:          alias.ContentBitmask,
		Unknown0:                alias.Unknown0,
		FileLocationMultiplier:  alias.FileLocationMultiplier,
		ByteOrder:               alias.ByteOrder,
		FileTerminatorAddress:   alias.FileTerminatorAddress,
		Alignment:               alias.Alignment,
		FirstFileAlignment:      alias.FirstFileAlignment,
		SetSectorSizeAsFileSize: alias.SetSectorSizeAsFileSize,
		Comment:                 alias.Comment,
		Files:                   alias.Files,
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	known := map[string]bool{
		"content_bitmask": true, "unknown0": true, "file_location_multiplier": true,
		"byteorder": true, "file_terminator_address": true, "alignment": true,
		"first_file_alignment": true, "set_sector_size_as_file_size": true,
		"comment": true, "files": true,
	}
	for k, v := range raw {
		if !known[k] {
			if m.Extra == nil {
				m.Extra = make(map[string]json.RawMessage)
			}
			m.Extra[k] = v
		}
	}
	return nil
}

// Load reads and decodes a manifest file from path.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("manifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("manifest: %w", err)
	}
	return &m, nil
}

// Save encodes m as indented JSON and writes it to path.
func (m *Manifest) Save(path string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("manifest: %w", err)
	}
	return nil
}
