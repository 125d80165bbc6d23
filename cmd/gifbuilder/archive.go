// seehuhn.de/go/gifbuilder - assemble animated GIFs from still images
// Copyright (C) 2026  Jochen Voss <voss@seehuhn.de>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"seehuhn.de/go/gifbuilder/importer"
	"seehuhn.de/go/gifbuilder/ziparchive"
)

func runSplit(args []string) error {
	fs := flag.NewFlagSet("split", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: gifbuilder split input.gif output.zip\n")
	}
	fs.Parse(args)
	if fs.NArg() != 2 {
		fs.Usage()
		os.Exit(2)
	}

	data, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		return err
	}
	bar := newProgressBar(os.Stderr)
	zipData, n, err := ziparchive.FromGIF(data, bar.Func())
	bar.Done()
	if err != nil {
		return err
	}
	if err := os.WriteFile(fs.Arg(1), zipData, 0o644); err != nil {
		return err
	}
	fmt.Printf("%s: %d frames\n", fs.Arg(1), n)
	return nil
}

func runPack(args []string) error {
	fs := flag.NewFlagSet("pack", flag.ExitOnError)
	output := fs.String("o", "frames.zip", "write the archive to `file`")
	duration := fs.Int("duration", 100, "duration in `ms` of frames without one")
	verbose := fs.Bool("v", false, "log skipped inputs")
	fs.Parse(args)
	if fs.NArg() == 0 {
		return errors.New("no input files")
	}

	inputs, err := readInputs(fs.Args())
	if err != nil {
		return err
	}
	im := &importer.Importer{
		Logger:          newLogger(slog.LevelWarn, *verbose),
		DefaultDuration: time.Duration(*duration) * time.Millisecond,
	}
	imported, err := im.Import(inputs, nil)
	if err != nil {
		return err
	}
	if len(imported.Frames) == 0 {
		return errors.New("no usable images")
	}

	entries, err := ziparchive.Entries(imported.Frames)
	if err != nil {
		return err
	}
	data, err := ziparchive.Pack(entries)
	if err != nil {
		return err
	}
	if err := os.WriteFile(*output, data, 0o644); err != nil {
		return err
	}
	fmt.Printf("%s: %d frames\n", *output, len(entries))
	return nil
}
