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

// Gifbuilder assembles animated GIF files from still images.
//
// Usage:
//
//	gifbuilder build [options] [input...]
//	gifbuilder split input.gif output.zip
//	gifbuilder pack -o output.zip input...
//	gifbuilder serve [-addr :8080]
//
// Inputs may be images (PNG, JPEG, GIF, WebP, BMP), animated GIFs or ZIP
// archives of images.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"seehuhn.de/go/gifbuilder/internal/buildinfo"
)

func main() {
	flag.Usage = func() {
		out := flag.CommandLine.Output()
		fmt.Fprintf(out, "%s\n\n", buildinfo.Short("gifbuilder"))
		fmt.Fprintf(out, "Usage:\n")
		fmt.Fprintf(out, "  gifbuilder build [options] [input...]   create an animated GIF\n")
		fmt.Fprintf(out, "  gifbuilder split input.gif output.zip   store the frames of a GIF as PNG files\n")
		fmt.Fprintf(out, "  gifbuilder pack -o output.zip input...  collect frames in a ZIP archive\n")
		fmt.Fprintf(out, "  gifbuilder serve [-addr :8080]          run the HTTP service\n")
		fmt.Fprintf(out, "  gifbuilder version\n\n")
		fmt.Fprintf(out, "Use \"gifbuilder <command> -h\" for the options of a command.\n")
	}
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(2)
	}

	cmd, args := flag.Arg(0), flag.Args()[1:]
	var err error
	switch cmd {
	case "build":
		err = runBuild(args)
	case "split":
		err = runSplit(args)
	case "pack":
		err = runPack(args)
	case "serve":
		err = runServe(args)
	case "version":
		fmt.Println(buildinfo.Short("gifbuilder"))
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", cmd)
		flag.Usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "gifbuilder:", err)
		os.Exit(1)
	}
}

// newLogger logs messages at or above level, or all messages if verbose
// is set.
func newLogger(level slog.Level, verbose bool) *slog.Logger {
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
