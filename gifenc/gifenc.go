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

// Package gifenc writes rendered frames as an animated GIF file.
//
// Each frame gets its own color table.  Colors are chosen by a median cut
// over a sample of the frame's opaque pixels; the Quality setting selects
// how many pixels are skipped between samples.  Transparent pixels are
// mapped to an extra color table entry which is declared as the frame's
// transparent index.
package gifenc

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"time"

	"github.com/andybons/gogif"

	"seehuhn.de/go/gifbuilder"
	"seehuhn.de/go/gifbuilder/internal/status"
	"seehuhn.de/go/gifbuilder/raster"
	"seehuhn.de/go/gifbuilder/transparency"
)

// Options control the GIF output.
type Options struct {
	// Width and Height give the logical screen size.  All frames
	// must have exactly this size.
	Width, Height int

	// Quality is the sampling step for palette construction.
	// 1 uses every pixel, larger values are faster and give
	// lower quality.
	Quality int

	// Repeat uses the conventions of [gif.GIF.LoopCount]: 0 loops
	// forever, -1 plays the animation once.
	Repeat int

	// Transparent, if set, is the default transparency key.  Pixels of
	// exactly this color are written as transparent.  Frames can
	// override the key.
	Transparent *transparency.Key

	// Background, if set, is used to flatten partially transparent
	// pixels.
	Background color.Color
}

// Writer is the default GIF encoder.
// The zero value is ready to use.
type Writer struct {
	// Texts is used for progress messages.  If nil, English
	// messages are used.
	Texts *status.Texts
}

// New returns a new GIF writer.
func New(texts *status.Texts) *Writer {
	return &Writer{Texts: texts}
}

// Encode converts the frames into a GIF file.
//
// Progress is reported once per frame.  The context is checked between
// frames.
func (w *Writer) Encode(ctx context.Context, frames []*raster.Frame, opt *Options, progress gifbuilder.ProgressFunc) ([]byte, error) {
	if len(frames) == 0 {
		return nil, gifbuilder.ErrNoFrames
	}
	texts := w.Texts
	if texts == nil {
		texts = status.Default()
	}

	var bg *color.NRGBA
	if opt.Background != nil {
		c := color.NRGBAModel.Convert(opt.Background).(color.NRGBA)
		bg = &c
	}

	n := len(frames)
	g := &gif.GIF{
		Image:     make([]*image.Paletted, n),
		Delay:     make([]int, n),
		Disposal:  make([]byte, n),
		LoopCount: opt.Repeat,
		Config: image.Config{
			Width:  opt.Width,
			Height: opt.Height,
		},
	}

	anyTransparent := false
	for i, f := range frames {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		progress.Report(float64(i)/float64(n), texts.Rendering(100*i/n))

		if f.Width() != opt.Width || f.Height() != opt.Height {
			return nil, &gifbuilder.EncodingFailedError{
				Frame: i,
				Err:   fmt.Errorf("frame size %dx%d does not match canvas %dx%d", f.Width(), f.Height(), opt.Width, opt.Height),
			}
		}

		key := opt.Transparent
		if f.Key != nil {
			key = f.Key
		}
		pm, hasTransparent := palettize(f.Image, key, bg, opt.Quality)
		anyTransparent = anyTransparent || hasTransparent

		g.Image[i] = pm
		g.Delay[i] = centiseconds(f.Delay)
	}

	disposal := byte(gif.DisposalNone)
	if anyTransparent {
		// Frames cover the whole canvas.  Without this, transparent
		// pixels would show the previous frame.
		disposal = gif.DisposalBackground
	}
	for i := range g.Disposal {
		g.Disposal[i] = disposal
	}

	buf := &bytes.Buffer{}
	if err := gif.EncodeAll(buf, g); err != nil {
		return nil, &gifbuilder.EncodingFailedError{Frame: -1, Err: err}
	}
	progress.Report(1, texts.Rendering(100))
	return buf.Bytes(), nil
}

func centiseconds(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int((d + 5*time.Millisecond) / (10 * time.Millisecond))
}

const transparentPixel = 1 << 24

// palettize converts img into a paletted image.  The second return value
// indicates whether the result uses a transparent color table entry.
func palettize(img *image.NRGBA, key *transparency.Key, bg *color.NRGBA, quality int) (*image.Paletted, bool) {
	pixels, hasTransparent := flatten(img, key, bg)

	limit := 256
	if hasTransparent {
		limit = 255
	}
	pal := buildPalette(pixels, quality, limit)

	rect := image.Rect(0, 0, img.Rect.Dx(), img.Rect.Dy())
	transparentIndex := uint8(len(pal))
	if hasTransparent {
		pal = append(pal, color.RGBA{})
	}
	pm := image.NewPaletted(rect, pal)

	opaque := pal
	if hasTransparent {
		opaque = pal[:len(pal)-1]
	}
	cache := make(map[uint32]uint8)
	for i, px := range pixels {
		if px == transparentPixel {
			pm.Pix[i] = transparentIndex
			continue
		}
		idx, ok := cache[px]
		if !ok {
			idx = uint8(opaque.Index(color.RGBA{R: uint8(px >> 16), G: uint8(px >> 8), B: uint8(px), A: 255}))
			cache[px] = idx
		}
		pm.Pix[i] = idx
	}
	return pm, hasTransparent
}

// flatten returns the pixels of img as packed 0xRRGGBB values, or
// transparentPixel.  The image bounds must start at (0, 0).
func flatten(img *image.NRGBA, key *transparency.Key, bg *color.NRGBA) ([]uint32, bool) {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	res := make([]uint32, 0, w*h)
	hasTransparent := false
	for y := 0; y < h; y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+4*w]
		for i := 0; i < len(row); i += 4 {
			r, g, b, a := row[i], row[i+1], row[i+2], row[i+3]
			if a == 0 || key != nil && key.R == r && key.G == g && key.B == b {
				res = append(res, transparentPixel)
				hasTransparent = true
				continue
			}
			if a < 255 && bg != nil {
				r = blend(r, bg.R, a)
				g = blend(g, bg.G, a)
				b = blend(b, bg.B, a)
			}
			res = append(res, uint32(r)<<16|uint32(g)<<8|uint32(b))
		}
	}
	return res, hasTransparent
}

func blend(fg, bg, alpha uint8) uint8 {
	return uint8((uint32(fg)*uint32(alpha) + uint32(bg)*(255-uint32(alpha)) + 127) / 255)
}

// buildPalette samples every quality-th opaque pixel and reduces the
// sampled colors to at most limit entries.
func buildPalette(pixels []uint32, quality, limit int) color.Palette {
	step := max(quality, 1)

	var samples []uint32
	distinct := make(map[uint32]struct{})
	count := 0
	for _, px := range pixels {
		if px == transparentPixel {
			continue
		}
		if count%step == 0 {
			samples = append(samples, px)
			distinct[px] = struct{}{}
		}
		count++
	}
	if len(samples) == 0 {
		return color.Palette{color.RGBA{A: 255}}
	}

	sample := image.NewNRGBA(image.Rect(0, 0, len(samples), 1))
	for i, px := range samples {
		sample.Pix[4*i] = uint8(px >> 16)
		sample.Pix[4*i+1] = uint8(px >> 8)
		sample.Pix[4*i+2] = uint8(px)
		sample.Pix[4*i+3] = 255
	}

	r := sample.Rect
	pm := image.NewPaletted(r, nil)
	q := &gogif.MedianCutQuantizer{NumColor: paletteSize(len(distinct), limit)}
	q.Quantize(pm, r, sample, image.Point{})

	pal := make(color.Palette, 0, len(pm.Palette))
	for _, c := range pm.Palette {
		cr, cg, cb, _ := c.RGBA()
		pal = append(pal, color.RGBA{R: uint8(cr >> 8), G: uint8(cg >> 8), B: uint8(cb >> 8), A: 255})
		if len(pal) == limit {
			break
		}
	}
	if len(pal) == 0 {
		pal = append(pal, color.RGBA{A: 255})
	}
	return pal
}

// paletteSize returns the smallest power of two which can hold the given
// number of colors, but at least 2 and at most limit.
func paletteSize(distinct, limit int) int {
	n := 2
	for n < distinct && n < limit {
		n *= 2
	}
	return min(n, limit)
}
