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

package fps4_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/aidanii24/vespack/fps4"
	"github.com/aidanii24/vespack/manifest"
)

func TestPackExtractRoundTrip(t *testing.T) {
	t.Parallel()

	baseDir := t.TempDir()
	data0 := bytes.Repeat([]byte{0xAA}, 40)
	data1 := bytes.Repeat([]byte{0xBB}, 17)
	if err := os.WriteFile(filepath.Join(baseDir, "data0.bin"), data0, 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}
	if err := os.WriteFile(filepath.Join(baseDir, "data1.bin"), data1, 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}

	m := &manifest.Manifest{
		ContentBitmask:         0x000D, // start pointer + file size + filename
		ByteOrder:              "little",
		FileLocationMultiplier: 1,
		FileTerminatorAddress:  -1,
		Alignment:              16,
		Files: []manifest.FileEntry{
			{Index: 0, Filename: "data0.bin"},
			{Index: 1, Filename: "data1.bin"},
			{Index: 2, Skippable: true},
		},
	}

	archivePath := filepath.Join(t.TempDir(), "out.fps4")
	if err := fps4.Pack(m, baseDir, archivePath); err != nil {
		t.Fatalf("Pack: %v", err)
	}

	archive, err := os.ReadFile(archivePath)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}

	outDir := t.TempDir()
	got, err := fps4.Extract(archive, outDir, fps4.ExtractOptions{})
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}

	gotData0, err := os.ReadFile(filepath.Join(outDir, "data0.bin"))
	if err != nil {
		t.Fatalf("extracted data0.bin missing: %v", err)
	}
	if !bytes.Equal(gotData0, data0) {
		t.Errorf("data0.bin mismatch: got %d bytes, want %d", len(gotData0), len(data0))
	}

	gotData1, err := os.ReadFile(filepath.Join(outDir, "data1.bin"))
	if err != nil {
		t.Fatalf("extracted data1.bin missing: %v", err)
	}
	if !bytes.Equal(gotData1, data1) {
		t.Errorf("data1.bin mismatch: got %d bytes, want %d", len(gotData1), len(data1))
	}

	if len(got.Files) != 3 {
		t.Fatalf("manifest has %d files, want 3", len(got.Files))
	}
	if !got.Files[2].Skippable {
		t.Errorf("terminator entry not marked skippable in round-tripped manifest")
	}
}

func TestExtractEmptyDirectoryOnlyTerminator(t *testing.T) {
	t.Parallel()

	m := &manifest.Manifest{
		ContentBitmask:         0x0001, // start pointer only
		ByteOrder:              "little",
		FileLocationMultiplier: 1,
		FileTerminatorAddress:  -1,
		Alignment:              1,
		Files: []manifest.FileEntry{
			{Index: 0, Skippable: true},
		},
	}

	baseDir := t.TempDir()
	archivePath := filepath.Join(t.TempDir(), "empty.fps4")
	if err := fps4.Pack(m, baseDir, archivePath); err != nil {
		t.Fatalf("Pack: %v", err)
	}

	archive, err := os.ReadFile(archivePath)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}

	outDir := t.TempDir()
	got, err := fps4.Extract(archive, outDir, fps4.ExtractOptions{})
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(got.Files) != 1 || !got.Files[0].Skippable {
		t.Fatalf("expected a single skippable terminator entry, got %+v", got.Files)
	}
}
