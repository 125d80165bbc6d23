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

// Package compose renders placed frames onto the output canvas.
//
// Every call to [Composite] produces a fresh raster of the pass canvas size.
// Source images are never modified.  Frame placements are given in the
// coordinate system of the canvas the frames were edited on; when the
// encoder renders at reduced resolution, all coordinates are scaled by the
// ratio of the two canvas sizes.
package compose

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
	"seehuhn.de/go/geom/matrix"

	"seehuhn.de/go/gifbuilder"
	"seehuhn.de/go/gifbuilder/raster"
	"seehuhn.de/go/gifbuilder/transparency"
)

// Options describe one rendering pass.
type Options struct {
	// Canvas is the canvas of the current pass.
	Canvas *gifbuilder.CanvasSpec

	// Original is the size of the canvas the frame placements refer to.
	// If this is zero, the size of Canvas is used.
	Original image.Point

	// Key is the transparency key.
	//
	// If transparency is enabled and Key is nil, a key is searched for
	// the composited frame using Allocator.  If transparency is disabled,
	// a non-nil Key acts as a chroma key: source pixels of exactly this
	// color are not drawn.
	Key *transparency.Key

	// Allocator is used for the per-frame key search.  If nil, a default
	// allocator is used.
	Allocator *transparency.Allocator

	// Cache, if set, keeps preprocessed source images between calls.
	Cache *SourceCache

	// Used, if set, receives the colors of all composited pixels which
	// stay opaque.  This is only done if transparency is enabled.
	Used *transparency.ColorSet
}

// Scale returns the factors which map coordinates on the original canvas
// to coordinates on the pass canvas.
func (o *Options) Scale() (float64, float64) {
	orig := o.Original
	if orig.X <= 0 || orig.Y <= 0 {
		return 1, 1
	}
	return float64(o.Canvas.Width) / float64(orig.X), float64(o.Canvas.Height) / float64(orig.Y)
}

// Composite renders a single frame.
//
// The result has exactly the size of the pass canvas and carries the
// frame's duration.  If the result contains transparent pixels, its Key
// field is set to the key color used for these pixels.
func Composite(f *gifbuilder.PlacedFrame, opt *Options) *raster.Frame {
	c := opt.Canvas
	sx, sy := opt.Scale()

	out := raster.New(c.Width, c.Height, f.Duration)
	img := out.Image

	if c.Transparent {
		var fill color.NRGBA
		if opt.Key != nil {
			fill = opt.Key.Transparent()
		}
		fillImage(img, fill)
	} else {
		bg := c.Background
		bg.A = 255
		fillImage(img, bg)
		if b := c.BackgroundImage; b != nil && b.Image != nil {
			drawBackground(img, b, opt, sx, sy)
		}
	}

	if f.Source != nil && f.Source.Image != nil {
		drawPlaced(img, opt.prepare(f.Source), f.ClampSize(), sx, sy)
	}

	switch {
	case c.Transparent:
		key := opt.Key
		if key == nil {
			alloc := opt.Allocator
			if alloc == nil {
				alloc = transparency.NewAllocator()
			}
			if k, ok := alloc.FrameKey(img, c.AlphaThreshold); ok {
				key = &k
			}
		}
		if opt.Used != nil {
			transparency.Collect(img, c.AlphaThreshold, opt.Used)
		}
		k := transparency.Fallback
		if key != nil {
			k = *key
			out.Key = &k
		}
		normalize(img, k, c.AlphaThreshold)
	case opt.Key != nil:
		k := *opt.Key
		out.Key = &k
	}

	return out
}

// prepare converts a source image for drawing.  If transparency is
// enabled, the alpha channel is reduced to the two values 0 and 255.
// Otherwise, a key color given in the options is removed from the image.
// The result must not be modified.
func (o *Options) prepare(s *gifbuilder.Source) *image.NRGBA {
	c := o.Canvas
	k := prepKey{src: s}
	switch {
	case c.Transparent:
		k.mode = prepBinarize
		k.threshold = c.AlphaThreshold
		k.key = transparency.Fallback
		if o.Key != nil {
			k.key = *o.Key
		}
	case o.Key != nil:
		k.mode = prepChroma
		k.key = *o.Key
	}

	if o.Cache != nil {
		if img, ok := o.Cache.get(k); ok {
			return img
		}
	}

	img := raster.ToNRGBA(s.Image)
	switch k.mode {
	case prepBinarize:
		if transparency.HasTransparency(img, k.threshold) {
			img = transparency.Binarize(img, k.key, k.threshold)
		}
	case prepChroma:
		chromaKey(img, k.key)
	}

	if o.Cache != nil {
		o.Cache.put(k, img)
	}
	return img
}

// drawPlaced draws src into the placement rectangle of f, rotated about
// the center of the placement.
func drawPlaced(dst *image.NRGBA, src *image.NRGBA, f gifbuilder.PlacedFrame, sx, sy float64) {
	b := src.Bounds()
	if b.Empty() {
		return
	}
	cx, cy := f.Center()

	// source pixels -> placement size, centered at the origin -> rotated
	// -> moved to the placement center -> scaled to the pass canvas
	m := matrix.Scale(f.Width/float64(b.Dx()), f.Height/float64(b.Dy())).
		Mul(matrix.Translate(-f.Width/2, -f.Height/2)).
		Mul(matrix.RotateDeg(f.Rotation)).
		Mul(matrix.Translate(cx, cy)).
		Mul(matrix.Scale(sx, sy))

	draw.BiLinear.Transform(dst, toAff3(m), src, b, draw.Over, nil)
}

func drawBackground(dst *image.NRGBA, bg *gifbuilder.BackgroundImage, opt *Options, sx, sy float64) {
	b := bg.Image.Bounds()
	if b.Empty() {
		return
	}

	w, h := bg.Width, bg.Height
	if w <= 0 || h <= 0 {
		orig := opt.Original
		if orig.X <= 0 || orig.Y <= 0 {
			orig = opt.Canvas.Size()
		}
		w, h = float64(orig.X), float64(orig.Y)
	}

	m := matrix.Translate(-float64(b.Min.X), -float64(b.Min.Y)).
		Mul(matrix.Scale(w/float64(b.Dx()), h/float64(b.Dy()))).
		Mul(matrix.Translate(bg.X, bg.Y)).
		Mul(matrix.Scale(sx, sy))

	draw.BiLinear.Transform(dst, toAff3(m), bg.Image, b, draw.Over, nil)
}

// toAff3 converts m into the form used by golang.org/x/image/draw.
// Entries which differ from an integer only by rounding errors are
// snapped, so that quarter turns and integer offsets map pixel centers
// exactly onto pixel centers.
func toAff3(m matrix.Matrix) f64.Aff3 {
	for i, v := range m {
		if r := math.Round(v); math.Abs(v-r) < 1e-9 {
			m[i] = r
		}
	}
	return f64.Aff3{m[0], m[2], m[4], m[1], m[3], m[5]}
}

func fillImage(img *image.NRGBA, c color.NRGBA) {
	pix := img.Pix
	for i := 0; i+3 < len(pix); i += 4 {
		pix[i] = c.R
		pix[i+1] = c.G
		pix[i+2] = c.B
		pix[i+3] = c.A
	}
}

// chromaKey makes all pixels of the given color fully transparent.
func chromaKey(img *image.NRGBA, key transparency.Key) {
	pix := img.Pix
	for i := 0; i+3 < len(pix); i += 4 {
		if pix[i] == key.R && pix[i+1] == key.G && pix[i+2] == key.B {
			pix[i+3] = 0
		}
	}
}

// normalize reduces the alpha channel to the two values 0 and 255.
// Transparent pixels are set to the key color.
func normalize(img *image.NRGBA, key transparency.Key, threshold uint8) {
	pix := img.Pix
	for i := 0; i+3 < len(pix); i += 4 {
		if pix[i+3] < threshold {
			pix[i] = key.R
			pix[i+1] = key.G
			pix[i+2] = key.B
			pix[i+3] = 0
		} else {
			pix[i+3] = 255
		}
	}
}
