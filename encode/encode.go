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

// Package encode turns a list of placed frames into an animated GIF,
// optionally within a byte budget.
//
// The encoder renders all frames onto the canvas and passes the result to
// a [Backend].  If a size target is given and the output is too large, the
// encoder renders again at reduced resolution and quality, up to
// [Encoder.MaxAttempts] times.  Each attempt starts from the settings of
// the previous one.
package encode

import (
	"context"
	"errors"
	"image"
	"log/slog"

	"seehuhn.de/go/gifbuilder"
	"seehuhn.de/go/gifbuilder/compose"
	"seehuhn.de/go/gifbuilder/gifenc"
	"seehuhn.de/go/gifbuilder/internal/float"
	"seehuhn.de/go/gifbuilder/internal/status"
	"seehuhn.de/go/gifbuilder/raster"
	"seehuhn.de/go/gifbuilder/transparency"
)

// Backend converts rendered frames into GIF file contents.
// [gifenc.Writer] is the default implementation.
type Backend interface {
	Encode(ctx context.Context, frames []*raster.Frame, opt *gifenc.Options, progress gifbuilder.ProgressFunc) ([]byte, error)
}

// Encoder renders and encodes animations.
type Encoder struct {
	Backend Backend

	// Allocator is used to search transparency keys.
	Allocator *transparency.Allocator

	// Logger receives structured log messages.  If nil, slog.Default()
	// is used.
	Logger *slog.Logger

	// Texts is used for progress messages.  If nil, English messages
	// are used.
	Texts *status.Texts

	// MaxAttempts limits the number of compression attempts after the
	// initial pass.
	MaxAttempts int

	// Deduplicate enables merging of consecutive identical frames
	// before rendering.
	Deduplicate bool
}

// New returns an encoder with default settings.  If backend is nil, a
// [gifenc.Writer] is used.
func New(backend Backend) *Encoder {
	if backend == nil {
		backend = gifenc.New(nil)
	}
	return &Encoder{
		Backend:     backend,
		Allocator:   transparency.NewAllocator(),
		MaxAttempts: DefaultMaxAttempts,
		Deduplicate: true,
	}
}

// Result describes the output of an encoder run.
type Result struct {
	// Data holds the GIF file contents.
	Data []byte

	// Size is len(Data).
	Size int64

	// Width and Height give the canvas size of the final pass.
	Width, Height int

	// Quality is the quality setting of the final pass.
	Quality int

	// Frames is the number of frames after deduplication.
	Frames int

	// Attempts is the number of compression attempts made after the
	// initial pass.
	Attempts int

	// TargetMet reports whether the output fits into the size target.
	// This is always true if no target was given.
	TargetMet bool
}

// Encode renders the frames and encodes them into a GIF file.
//
// If targetBytes is positive, the encoder tries to keep the output at or
// below this size.  Missing the target is not an error; this is reported
// via [Result.TargetMet].
//
// Neither frames nor spec are modified.  If the context is cancelled, the
// context's error is returned.
func (e *Encoder) Encode(ctx context.Context, frames []gifbuilder.PlacedFrame, spec *gifbuilder.CanvasSpec, targetBytes int64, progress gifbuilder.ProgressFunc) (*Result, error) {
	if err := spec.Validate(); err != nil {
		return nil, &gifbuilder.EncodingFailedError{Frame: -1, Err: err}
	}
	if err := gifbuilder.Validate(frames); err != nil {
		return nil, err
	}

	log := e.Logger
	if log == nil {
		log = slog.Default()
	}
	texts := e.Texts
	if texts == nil {
		texts = status.Default()
	}

	progress.Report(0, texts.Initializing())

	if e.Deduplicate {
		progress.Report(0, texts.Optimizing())
		before := len(frames)
		frames = gifbuilder.Dedupe(frames)
		if len(frames) < before {
			log.Debug("merged duplicate frames", "before", before, "after", len(frames))
		}
	}

	key, used := e.chooseKey(frames, spec, texts, progress)
	if key != nil {
		log.Debug("transparency key", "key", key.String(), "custom", spec.KeyColor != nil)
	}

	initialShare := 1.0
	if targetBytes > 0 {
		initialShare = 0.7
	}

	pass := spec.Clone()
	r := &renderer{
		enc:      e,
		log:      log,
		texts:    texts,
		frames:   frames,
		original: spec.Size(),
		key:      key,
		used:     used,
		cache:    compose.NewSourceCache(min(len(frames), maxCachedSources)),
	}
	data, err := r.render(ctx, pass, "", progress.Sub(0, initialShare))
	if err != nil {
		return nil, err
	}

	attempts := 0
	for targetBytes > 0 && int64(len(data)) > targetBytes && attempts < e.MaxAttempts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		attempts++

		size := int64(len(data))
		progress.Report(initialShare+0.1*float64(attempts-1),
			texts.Compressing(float.MB(size), float.MB(targetBytes), attempts))

		st := nextStep(size, targetBytes)
		next := pass.Clone()
		next.Width = shrink(pass.Width, st.Scale)
		next.Height = shrink(pass.Height, st.Scale)
		next.Quality = min(gifbuilder.WorstQuality, pass.Quality+st.QualityIncrease)

		log.Info("output exceeds size target",
			"attempt", attempts,
			"size", size,
			"target", targetBytes,
			"scale", float.Format(st.Scale, 3),
			"width", next.Width,
			"height", next.Height,
			"quality", next.Quality)

		prefix := texts.CompressionAttempt(attempts)
		sub := progress.Sub(initialShare+0.1*float64(attempts-1), 0.1)
		data, err = r.render(ctx, next, prefix, sub)
		if err != nil {
			return nil, err
		}
		pass = next
	}

	res := &Result{
		Data:      data,
		Size:      int64(len(data)),
		Width:     pass.Width,
		Height:    pass.Height,
		Quality:   pass.Quality,
		Frames:    len(frames),
		Attempts:  attempts,
		TargetMet: targetBytes <= 0 || int64(len(data)) <= targetBytes,
	}
	if targetBytes > 0 {
		if res.TargetMet {
			log.Info("size target met", "size", res.Size, "target", targetBytes, "attempts", attempts)
		} else {
			log.Warn("size target not met", "size", res.Size, "target", targetBytes, "attempts", attempts)
		}
	}

	progress.Report(1, texts.Completed())
	return res, nil
}

// chooseKey returns the transparency key shared by all frames, or nil if
// there is none.  A custom key color takes precedence over any search.
// If the key was searched, the second return value holds the opaque colors
// of the source images.
func (e *Encoder) chooseKey(frames []gifbuilder.PlacedFrame, spec *gifbuilder.CanvasSpec, texts *status.Texts, progress gifbuilder.ProgressFunc) (*transparency.Key, *transparency.ColorSet) {
	if spec.KeyColor != nil {
		k := *spec.KeyColor
		return &k, nil
	}
	if !spec.Transparent || spec.KeyMode == gifbuilder.KeyPerFrame {
		return nil, nil
	}

	progress.Report(0, texts.FindingKey())
	seen := make(map[*gifbuilder.Source]bool)
	used := &transparency.ColorSet{}
	for i := range frames {
		src := frames[i].Source
		if seen[src] {
			continue
		}
		seen[src] = true
		transparency.Collect(raster.ToNRGBA(src.Image), spec.AlphaThreshold, used)
	}
	k := e.allocator().Search(used, transparency.GlobalGridStep)
	return &k, used
}

func (e *Encoder) allocator() *transparency.Allocator {
	if e.Allocator == nil {
		return transparency.NewAllocator()
	}
	return e.Allocator
}

// renderer holds the state shared by all passes of one Encode call.
type renderer struct {
	enc      *Encoder
	texts    *status.Texts
	frames   []gifbuilder.PlacedFrame
	original image.Point
	log      *slog.Logger
	key      *transparency.Key
	used     *transparency.ColorSet // nil unless the key was searched
	cache    *compose.SourceCache
}

// maxCachedSources limits the number of converted source images kept
// between passes.
const maxCachedSources = 64

// maxKeyRetries limits how often a pass is composited again after
// resampling produced an opaque pixel in the key color.
const maxKeyRetries = 3

// render composites all frames onto the pass canvas and encodes the result.
// Compositing owns the first half of the progress range, the backend the
// second half.
func (r *renderer) render(ctx context.Context, pass *gifbuilder.CanvasSpec, prefix string, progress gifbuilder.ProgressFunc) ([]byte, error) {
	progress.Report(0, prefix+r.texts.ProcessingFrames())

	rasters, err := r.composite(ctx, pass, prefix, progress)
	if err != nil {
		return nil, err
	}

	gopt := &gifenc.Options{
		Width:       pass.Width,
		Height:      pass.Height,
		Quality:     pass.Quality,
		Repeat:      pass.LoopCount,
		Transparent: r.key,
	}
	if !pass.Transparent {
		bg := pass.Background
		bg.A = 255
		gopt.Background = bg
	}

	backendProgress := progress.Sub(0.5, 0.5)
	if backendProgress != nil && prefix != "" {
		inner := backendProgress
		backendProgress = func(f float64, msg string) {
			inner(f, prefix+msg)
		}
	}

	progress.Report(0.5, prefix+r.texts.Rendering(0))
	data, err := r.enc.Backend.Encode(ctx, rasters, gopt, backendProgress)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		var failed *gifbuilder.EncodingFailedError
		if errors.As(err, &failed) {
			return nil, err
		}
		return nil, &gifbuilder.EncodingFailedError{Frame: -1, Err: err}
	}
	return data, nil
}

// composite renders all frames onto the pass canvas.
//
// Resampling creates colors which do not occur in any source image.  If
// one of these equals a searched global key, a new key is chosen which
// avoids all colors seen so far, and the frames are rendered again.
func (r *renderer) composite(ctx context.Context, pass *gifbuilder.CanvasSpec, prefix string, progress gifbuilder.ProgressFunc) ([]*raster.Frame, error) {
	n := len(r.frames)
	rasters := make([]*raster.Frame, n)
	for retry := 0; ; retry++ {
		opt := &compose.Options{
			Canvas:    pass,
			Original:  r.original,
			Key:       r.key,
			Allocator: r.enc.allocator(),
			Cache:     r.cache,
		}
		if r.used != nil {
			opt.Used = &transparency.ColorSet{}
		}
		for i := range r.frames {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			progress.Report(0.5*float64(i)/float64(n), prefix+r.texts.ProcessingFrame(i+1, n))
			rasters[i] = compose.Composite(&r.frames[i], opt)
		}

		if opt.Used == nil || !opt.Used.Contains(r.key.Packed()) {
			return rasters, nil
		}
		r.used.Union(opt.Used)
		k := r.enc.allocator().Search(r.used, transparency.GlobalGridStep)
		if retry >= maxKeyRetries || k == *r.key {
			r.log.Warn("transparency key collides with an opaque pixel", "key", r.key.String())
			return rasters, nil
		}
		r.log.Debug("transparency key collides with a resampled pixel",
			"old", r.key.String(), "new", k.String())
		r.key = &k
	}
}
