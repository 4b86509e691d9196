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

import "testing"

func u32p(v uint32) *uint32 { return &v }

func TestEntrySkippable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		e    Entry
		want bool
	}{
		{"sentinel address", Entry{Address: u32p(0xFFFFFFFF)}, true},
		{"nonzero unknown0x080", Entry{Address: u32p(100), Unknown0x080: u32p(1)}, true},
		{"ordinary entry", Entry{Address: u32p(100)}, false},
		{"no fields at all", Entry{}, false},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := tc.e.Skippable(); got != tc.want {
				t.Errorf("Skippable() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestEstimateFileSizePrefersStoredFileSize(t *testing.T) {
	t.Parallel()

	e := Entry{Index: 0, FileSize: u32p(100), SectorSize: u32p(200)}
	got, ok := EstimateFileSize(e, []Entry{e})
	if !ok || got != 100 {
		t.Fatalf("EstimateFileSize() = (%d, %v), want (100, true)", got, ok)
	}
}

func TestEstimateFileSizeFallsBackToSectorSize(t *testing.T) {
	t.Parallel()

	e := Entry{Index: 0, FileSize: u32p(0), SectorSize: u32p(200)}
	got, ok := EstimateFileSize(e, []Entry{e})
	if !ok || got != 200 {
		t.Fatalf("EstimateFileSize() = (%d, %v), want (200, true)", got, ok)
	}
}

func TestEstimateFileSizeFallsBackToAddressGap(t *testing.T) {
	t.Parallel()

	all := []Entry{
		{Index: 0, Address: u32p(1000)},
		{Index: 1, Address: u32p(1500)},
	}
	got, ok := EstimateFileSize(all[0], all)
	if !ok || got != 500 {
		t.Fatalf("EstimateFileSize() = (%d, %v), want (500, true)", got, ok)
	}
}

func TestEstimateFileSizeSkipsSkippableSuccessor(t *testing.T) {
	t.Parallel()

	all := []Entry{
		{Index: 0, Address: u32p(1000)},
		{Index: 1, Address: u32p(0xFFFFFFFF)},
		{Index: 2, Address: u32p(1800)},
	}
	got, ok := EstimateFileSize(all[0], all)
	if !ok || got != 800 {
		t.Fatalf("EstimateFileSize() = (%d, %v), want (800, true)", got, ok)
	}
}

func TestEstimateFileSizeUnresolvable(t *testing.T) {
	t.Parallel()

	e := Entry{Index: 0}
	_, ok := EstimateFileSize(e, []Entry{e})
	if ok {
		t.Fatal("EstimateFileSize() resolved when no source was available")
	}
}

func strp(s string) *string { return &s }

func TestEstimateFilePathFilenameTakesPrecedence(t *testing.T) {
	t.Parallel()

	name := "SAMPLE.BIN"
	e := Entry{
		Index:    7,
		Filename: &name,
		Metadata: []MetadataField{{Value: "dir/sub"}},
	}
	dir, filename := EstimateFilePath(e, false)
	if dir == nil || *dir != "dir/sub" {
		t.Fatalf("dir = %v, want \"dir/sub\"", dir)
	}
	if filename != name {
		t.Errorf("filename = %q, want %q", filename, name)
	}
}

func TestEstimateFilePathUsesNameMetadata(t *testing.T) {
	t.Parallel()

	e := Entry{
		Index:    0,
		Metadata: []MetadataField{{Key: strp("name"), Value: "from_metadata.bin"}},
	}
	dir, filename := EstimateFilePath(e, false)
	if dir != nil {
		t.Errorf("dir = %v, want nil", *dir)
	}
	if filename != "from_metadata.bin" {
		t.Errorf("filename = %q, want %q", filename, "from_metadata.bin")
	}
}

func TestEstimateFilePathSynthesizesWithBarePathCandidate(t *testing.T) {
	t.Parallel()

	e := Entry{
		Index:    3,
		Metadata: []MetadataField{{Value: "data/scene"}},
	}
	dir, filename := EstimateFilePath(e, false)
	if dir == nil || *dir != "data" {
		t.Fatalf("dir = %v, want data", dir)
	}
	if filename != "scene.0003" {
		t.Errorf("filename = %q, want %q", filename, "scene.0003")
	}
}

func TestEstimateFilePathSynthesizesWithoutMetadata(t *testing.T) {
	t.Parallel()

	e := Entry{Index: 12}
	dir, filename := EstimateFilePath(e, true)
	if dir != nil {
		t.Errorf("dir = %v, want nil", *dir)
	}
	if filename != "0012" {
		t.Errorf("filename = %q, want %q", filename, "0012")
	}
}
