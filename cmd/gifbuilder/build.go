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
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"image"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	"seehuhn.de/go/gifbuilder"
	"seehuhn.de/go/gifbuilder/encode"
	"seehuhn.de/go/gifbuilder/gifenc"
	"seehuhn.de/go/gifbuilder/importer"
	"seehuhn.de/go/gifbuilder/internal/float"
	"seehuhn.de/go/gifbuilder/internal/profile"
	"seehuhn.de/go/gifbuilder/internal/status"
	"seehuhn.de/go/gifbuilder/project"
)

func runBuild(args []string) (err error) {
	fs := flag.NewFlagSet("build", flag.ExitOnError)
	configFile := fs.String("c", "", "read project settings from `file`")
	output := fs.String("o", "", "write the animation to `file` (default \"animation.gif\")")
	width := fs.Int("width", 0, "canvas width (default: width of the first frame)")
	height := fs.Int("height", 0, "canvas height (default: height of the first frame)")
	quality := fs.Int("quality", gifbuilder.DefaultQuality, "palette quality, 1 (best) to 30 (fastest)")
	loop := fs.Int("loop", 0, "number of repetitions, 0 loops forever, -1 plays once")
	transparent := fs.Bool("transparent", false, "keep transparent pixels")
	background := fs.String("background", "#ffffff", "background `color`")
	key := fs.String("key", "", "use `color` as transparency key")
	keyMode := fs.String("key-mode", "global", "key search: global or per-frame")
	targetKB := fs.Int64("target-kb", 0, "maximum output size in KiB, 0 for no limit")
	duration := fs.Int("duration", 100, "default frame duration in `ms`")
	attempts := fs.Int("attempts", encode.DefaultMaxAttempts, "maximum number of compression attempts")
	noDedupe := fs.Bool("no-dedupe", false, "keep consecutive identical frames")
	lang := fs.String("lang", "en", "language of progress messages")
	verbose := fs.Bool("v", false, "log details of the encoding process")
	cpuprofile := fs.String("cpuprofile", "", "write cpu profile to `file`")
	memprofile := fs.String("memprofile", "", "write memory profile to `file`")
	fs.Parse(args)

	cfg := project.DefaultConfig()
	if *configFile != "" {
		cfg, err = project.Load(*configFile)
		if err != nil {
			return err
		}
	}
	outFile := cfg.Path(cfg.Output)

	// command line flags override the project file
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "o":
			outFile = *output
		case "width":
			cfg.Canvas.Width = *width
		case "height":
			cfg.Canvas.Height = *height
		case "quality":
			cfg.Canvas.Quality = *quality
		case "loop":
			cfg.Canvas.Loop = *loop
		case "transparent":
			cfg.Canvas.Transparent = *transparent
		case "background":
			cfg.Canvas.Background = *background
		case "key":
			cfg.Canvas.KeyColor = *key
		case "key-mode":
			cfg.Canvas.KeyMode = *keyMode
		case "target-kb":
			cfg.TargetKB = *targetKB
		case "duration":
			cfg.FrameDurationMS = *duration
		case "attempts":
			cfg.MaxAttempts = *attempts
		case "no-dedupe":
			cfg.Deduplicate = !*noDedupe
		case "lang":
			cfg.Language = *lang
		}
	})
	if err := cfg.Validate(); err != nil {
		return err
	}

	paths := append(cfg.InputPaths(), fs.Args()...)
	if len(paths) == 0 {
		return errors.New("no input files")
	}

	stop, err := profile.Start(*cpuprofile, *memprofile)
	if err != nil {
		return err
	}
	defer func() {
		if e := stop(); err == nil {
			err = e
		}
	}()

	log := newLogger(slog.LevelWarn, *verbose)
	texts := status.Parse(cfg.Language)
	bar := newProgressBar(os.Stderr)
	progress := bar.Func()

	inputs, err := readInputs(paths)
	if err != nil {
		return err
	}
	im := &importer.Importer{
		Logger:          log,
		DefaultDuration: cfg.FrameDuration(),
		Texts:           texts,
	}
	imported, err := im.Import(inputs, progress.Sub(0, 0.1))
	if err != nil {
		return err
	}
	if len(imported.Frames) == 0 {
		return fmt.Errorf("no usable images in %d input files", len(inputs))
	}
	frames, err := cfg.Apply(imported.Frames)
	if err != nil {
		return err
	}

	var bg image.Image
	if b := cfg.Canvas.BackgroundImage; b != nil {
		bg, err = loadImage(cfg.Path(b.File))
		if err != nil {
			return err
		}
	}
	spec, err := cfg.CanvasSpec(imported.Canvas, bg)
	if err != nil {
		return err
	}

	enc := encode.New(gifenc.New(texts))
	enc.Logger = log
	enc.Texts = texts
	enc.MaxAttempts = cfg.MaxAttempts
	enc.Deduplicate = cfg.Deduplicate

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	res, err := enc.Encode(ctx, frames, spec, cfg.TargetBytes(), progress.Sub(0.1, 0.9))
	bar.Done()
	if err != nil {
		return err
	}

	if err := os.WriteFile(outFile, res.Data, 0o644); err != nil {
		return err
	}
	fmt.Printf("%s: %d frames, %dx%d, quality %d, %s KiB\n",
		outFile, res.Frames, res.Width, res.Height, res.Quality, float.KB(res.Size))
	if imported.Skipped > 0 {
		fmt.Fprintf(os.Stderr, "skipped %d unreadable inputs\n", imported.Skipped)
	}
	if !res.TargetMet {
		fmt.Fprintf(os.Stderr, "size target of %s KiB not reached after %d attempts\n",
			float.KB(cfg.TargetBytes()), res.Attempts)
	}
	return nil
}

func readInputs(paths []string) ([]importer.Input, error) {
	inputs := make([]importer.Input, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, importer.Input{Name: filepath.Base(p), Data: data})
	}
	return inputs, nil
}

func loadImage(path string) (image.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return img, nil
}
