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

// Command vespack extracts and rebuilds FPS4 and Scenario archives, and
// wraps/unwraps TLZC-compressed payloads.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aidanii24/vespack/fileio"
	"github.com/aidanii24/vespack/fps4"
	"github.com/aidanii24/vespack/manifest"
	"github.com/aidanii24/vespack/scenario"
	"github.com/aidanii24/vespack/tlzc"
)

const appVersion = "0.1.0"

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s <command> [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Commands:\n")
		fmt.Fprintf(os.Stderr, "  fps4-extract       -i archive -o dir [-manifest path] [-ignore-metadata] [-absolute-paths]\n")
		fmt.Fprintf(os.Stderr, "  fps4-pack          -manifest path -dir basedir -o archive\n")
		fmt.Fprintf(os.Stderr, "  scenario-extract   -i archive -o dir\n")
		fmt.Fprintf(os.Stderr, "  scenario-pack      -dir basedir -o archive\n")
		fmt.Fprintf(os.Stderr, "  tlzc-decompress    -i frame -o out [-mode auto|zlib|deflate|lzma]\n")
		fmt.Fprintf(os.Stderr, "  tlzc-compress      -i raw -o out -mode zlib|deflate|lzma [-nicelen 64]\n")
		fmt.Fprintf(os.Stderr, "  version\n")
	}

	if len(os.Args) < 2 {
		flag.Usage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "fps4-extract":
		err = runFPS4Extract(os.Args[2:])
	case "fps4-pack":
		err = runFPS4Pack(os.Args[2:])
	case "scenario-extract":
		err = runScenarioExtract(os.Args[2:])
	case "scenario-pack":
		err = runScenarioPack(os.Args[2:])
	case "tlzc-decompress":
		err = runTLZCDecompress(os.Args[2:])
	case "tlzc-compress":
		err = runTLZCCompress(os.Args[2:])
	case "version":
		fmt.Printf("vespack version %s\n", appVersion)
		return
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown command %q\n", os.Args[1])
		flag.Usage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runFPS4Extract(args []string) error {
	fs := flag.NewFlagSet("fps4-extract", flag.ExitOnError)
	input := fs.String("i", "", "input archive path (required)")
	outDir := fs.String("o", "", "output directory (required)")
	manifestPath := fs.String("manifest", "", "write manifest JSON here (defaults to <outDir>/manifest.json)")
	ignoreMetadata := fs.Bool("ignore-metadata", false, "ignore metadata-driven path/filename resolution")
	absolutePaths := fs.Bool("absolute-paths", false, "record absolute paths in the manifest")
	fs.Parse(args)

	if *input == "" || *outDir == "" {
		return fmt.Errorf("fps4-extract: -i and -o are required")
	}
	data, err := fileio.ReadAll(*input)
	if err != nil {
		return err
	}
	m, err := fps4.Extract(data, *outDir, fps4.ExtractOptions{
		IgnoreMetadata: *ignoreMetadata,
		AbsolutePaths:  *absolutePaths,
	})
	if err != nil {
		return err
	}

	dest := *manifestPath
	if dest == "" {
		dest = *outDir + "/manifest.json"
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}
	return m.Save(dest)
}

func runFPS4Pack(args []string) error {
	fs := flag.NewFlagSet("fps4-pack", flag.ExitOnError)
	manifestPath := fs.String("manifest", "", "manifest JSON path (required)")
	baseDir := fs.String("dir", "", "directory holding the referenced payload files (required)")
	output := fs.String("o", "", "output archive path (required)")
	fs.Parse(args)

	if *manifestPath == "" || *baseDir == "" || *output == "" {
		return fmt.Errorf("fps4-pack: -manifest, -dir, and -o are required")
	}
	m, err := manifest.Load(*manifestPath)
	if err != nil {
		return err
	}
	return fps4.Pack(m, *baseDir, *output)
}

func runScenarioExtract(args []string) error {
	fs := flag.NewFlagSet("scenario-extract", flag.ExitOnError)
	input := fs.String("i", "", "input archive path (required)")
	outDir := fs.String("o", "", "output directory (required)")
	fs.Parse(args)

	if *input == "" || *outDir == "" {
		return fmt.Errorf("scenario-extract: -i and -o are required")
	}
	data, err := fileio.ReadAll(*input)
	if err != nil {
		return err
	}
	return scenario.Extract(data, *outDir)
}

func runScenarioPack(args []string) error {
	fs := flag.NewFlagSet("scenario-pack", flag.ExitOnError)
	baseDir := fs.String("dir", "", "directory holding numerically-named payload files (required)")
	output := fs.String("o", "", "output archive path (required)")
	fs.Parse(args)

	if *baseDir == "" || *output == "" {
		return fmt.Errorf("scenario-pack: -dir and -o are required")
	}
	return scenario.Pack(*baseDir, *output)
}

func runTLZCDecompress(args []string) error {
	fs := flag.NewFlagSet("tlzc-decompress", flag.ExitOnError)
	input := fs.String("i", "", "input frame path (required)")
	output := fs.String("o", "", "output path (required)")
	mode := fs.String("mode", "auto", "auto, zlib, deflate, or lzma")
	fs.Parse(args)

	if *input == "" || *output == "" {
		return fmt.Errorf("tlzc-decompress: -i and -o are required")
	}
	data, err := fileio.ReadAll(*input)
	if err != nil {
		return err
	}
	out, err := tlzc.Decompress(data, tlzc.Mode(*mode))
	if err != nil {
		return err
	}
	return os.WriteFile(*output, out, 0o644)
}

func runTLZCCompress(args []string) error {
	fs := flag.NewFlagSet("tlzc-compress", flag.ExitOnError)
	input := fs.String("i", "", "input raw file path (required)")
	output := fs.String("o", "", "output path (required)")
	mode := fs.String("mode", "", "zlib, deflate, or lzma (required)")
	niceLen := fs.Int("nicelen", 64, "LZMA1 nice_len encoder parameter")
	fs.Parse(args)

	if *input == "" || *output == "" || *mode == "" {
		return fmt.Errorf("tlzc-compress: -i, -o, and -mode are required")
	}
	data, err := os.ReadFile(*input)
	if err != nil {
		return err
	}
	out, err := tlzc.Compress(data, tlzc.Mode(*mode), *niceLen)
	if err != nil {
		return err
	}
	return os.WriteFile(*output, out, 0o644)
}
