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

// Package importer turns uploaded files into animation frames.
//
// Inputs may be still images (PNG, JPEG, GIF, WebP, BMP), animated GIFs, or
// ZIP archives containing such images.  Every imported image becomes one
// frame, placed at the top-left corner of the canvas at its native size.
package importer

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg" // register decoder
	_ "image/png"  // register decoder
	"log/slog"
	"path"
	"strconv"
	"strings"
	"time"

	_ "golang.org/x/image/bmp"  // register decoder
	_ "golang.org/x/image/webp" // register decoder

	"seehuhn.de/go/gifbuilder"
	"seehuhn.de/go/gifbuilder/gifdecode"
	"seehuhn.de/go/gifbuilder/internal/status"
	"seehuhn.de/go/gifbuilder/ziparchive"
)

// DefaultFrameDuration is used for frames where no other duration is known.
const DefaultFrameDuration = 100 * time.Millisecond

// Input is an uploaded file.
type Input struct {
	Name string
	Data []byte
}

// Result holds the frames found in a batch of inputs.
type Result struct {
	// Frames lists the imported frames in input order.
	Frames []gifbuilder.PlacedFrame

	// Sources lists the decoded images, one per frame.
	Sources []*gifbuilder.Source

	// Skipped is the number of inputs which could not be decoded.
	Skipped int

	// Canvas is the native size of the first frame, or the zero point if
	// no frames were imported.
	Canvas image.Point
}

// Importer decodes uploaded files.
// The zero value is ready to use.
type Importer struct {
	// Logger receives structured log messages.  If nil, slog.Default()
	// is used.
	Logger *slog.Logger

	// DefaultDuration is the duration of frames where neither the input
	// nor archive metadata give a duration.  If zero,
	// DefaultFrameDuration is used.
	DefaultDuration time.Duration

	// Texts is used for progress messages.  If nil, English messages
	// are used.
	Texts *status.Texts

	// MaxExtractedBytes limits the uncompressed size of each ZIP input,
	// see [ziparchive.Extractor.MaxBytes].
	MaxExtractedBytes int64
}

// item is an input after ZIP archives have been expanded.
type item struct {
	name string
	data []byte
}

// Import decodes all inputs.
//
// ZIP archives are expanded first.  Durations from archive metadata apply
// to all still images of the batch with a matching file name.  GIF inputs
// give one frame per decoded GIF frame, using the GIF frame delays.  If a
// GIF cannot be split into frames, it is imported as a still image.
//
// Inputs which cannot be decoded are logged and counted in Result.Skipped.
// A malformed ZIP archive aborts the import with a
// [*gifbuilder.MalformedContainerError].
func (im *Importer) Import(inputs []Input, progress gifbuilder.ProgressFunc) (*Result, error) {
	log := im.Logger
	if log == nil {
		log = slog.Default()
	}
	texts := im.Texts
	if texts == nil {
		texts = status.Default()
	}
	fallback := im.DefaultDuration
	if fallback <= 0 {
		fallback = DefaultFrameDuration
	}

	var items []item
	durations := make(map[string]time.Duration)
	var metaDefault time.Duration
	x := &ziparchive.Extractor{Texts: texts, MaxBytes: im.MaxExtractedBytes}
	for _, in := range inputs {
		if !isZip(in.Name, in.Data) {
			items = append(items, item{name: in.Name, data: in.Data})
			continue
		}

		ext, err := x.Extract(in.Data, progress.Sub(0, 0))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", in.Name, err)
		}
		if ext.MetadataErr != nil {
			log.Warn("ignoring invalid metadata", "archive", in.Name, "error", ext.MetadataErr)
		} else if len(ext.Durations) > 0 {
			log.Info("found frame durations", "archive", in.Name, "count", len(ext.Durations))
		}
		if len(ext.Files) == 0 {
			log.Warn("archive contains no images", "archive", in.Name)
		}
		for _, name := range ext.MetadataNames() {
			durations[name] = ext.Durations[name]
		}
		if ext.DefaultDuration > 0 {
			metaDefault = ext.DefaultDuration
		}
		for _, f := range ext.Files {
			items = append(items, item{name: f.Name, data: f.Data})
		}
	}
	if metaDefault > 0 {
		fallback = metaDefault
	}

	res := &Result{}
	n := len(items)
	for i, it := range items {
		p := progress.Sub(float64(i)/float64(n), 1/float64(n))

		if isGIF(it.name, it.data) {
			err := res.addGIF(it, fallback, p)
			if err == nil {
				continue
			}
			log.Warn("cannot split GIF, importing as still image", "name", it.name, "error", err)
		}

		p.Report(0, texts.ImportingImages(i+1, n))
		src, err := decode(it.name, it.data)
		if err != nil {
			log.Warn("skipping input", "name", it.name, "error", err)
			res.Skipped++
			continue
		}
		d, ok := durations[path.Base(it.name)]
		if !ok || d <= 0 {
			d = fallback
		}
		res.add(src, d)
	}
	progress.Report(1, texts.ImportingImages(n, n))

	if len(res.Frames) > 0 {
		res.Canvas = res.Sources[0].Size()
	}
	log.Debug("import finished",
		"inputs", len(inputs),
		"frames", len(res.Frames),
		"skipped", res.Skipped)
	return res, nil
}

// Import decodes all inputs using the default settings.
func Import(inputs []Input, progress gifbuilder.ProgressFunc) (*Result, error) {
	return (&Importer{}).Import(inputs, progress)
}

func (r *Result) add(src *gifbuilder.Source, d time.Duration) {
	r.Sources = append(r.Sources, src)
	r.Frames = append(r.Frames, gifbuilder.Place(src, d))
}

// addGIF adds one frame for every frame of an animated GIF.
func (r *Result) addGIF(it item, fallback time.Duration, progress gifbuilder.ProgressFunc) error {
	frames, _, err := gifdecode.DecodeBytes(it.data, progress)
	if err != nil {
		return err
	}
	stem := strings.TrimSuffix(it.name, path.Ext(it.name))
	for j, f := range frames {
		d := f.Raster.Delay
		if d <= 0 {
			d = fallback
		}
		name := stem + "_" + strconv.Itoa(j) + ".png"
		r.add(gifbuilder.NewSource(name, f.Raster.Image, nil), d)
	}
	return nil
}

// decode decodes a still image.
func decode(name string, data []byte) (*gifbuilder.Source, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, &gifbuilder.UnsupportedImageError{Name: name, Err: err}
	}
	if img.Bounds().Empty() {
		return nil, &gifbuilder.UnsupportedImageError{Name: name, Err: errEmptyImage}
	}
	return gifbuilder.NewSource(name, img, data), nil
}

var errEmptyImage = errors.New("image has no pixels")

func isZip(name string, data []byte) bool {
	return strings.EqualFold(path.Ext(name), ".zip") ||
		bytes.HasPrefix(data, []byte("PK\x03\x04")) ||
		bytes.HasPrefix(data, []byte("PK\x05\x06"))
}

func isGIF(name string, data []byte) bool {
	return strings.EqualFold(path.Ext(name), ".gif") ||
		bytes.HasPrefix(data, []byte("GIF87a")) ||
		bytes.HasPrefix(data, []byte("GIF89a"))
}
