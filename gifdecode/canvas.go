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

package gifdecode

import (
	"image"
	"time"

	"seehuhn.de/go/gifbuilder/raster"
)

// canvasState is the logical screen of a GIF decoder, together with the
// information needed to dispose of the most recently drawn frame.
type canvasState struct {
	canvas *image.NRGBA

	// saved is the canvas as it was before the most recent frame with
	// disposal method "restore to previous" was drawn.
	saved *image.NRGBA

	last lastFrame
}

// lastFrame records what must be undone before the next frame is drawn.
type lastFrame struct {
	rect     image.Rectangle
	disposal Disposal
}

func newCanvasState(width, height int) *canvasState {
	return &canvasState{
		canvas: image.NewNRGBA(image.Rect(0, 0, width, height)),
	}
}

// step draws one frame and returns a copy of the resulting canvas.
//
// The order of operations matters: the disposal of the previous frame is
// applied before anything else, and the snapshot for "restore to previous"
// is taken before the new frame is drawn.
func (s *canvasState) step(m *image.Paletted, disposal Disposal, delay time.Duration) *raster.Frame {
	s.dispose()

	if disposal == DisposalPrevious {
		s.saved = raster.CloneImage(s.canvas)
	}

	s.draw(m)
	s.last = lastFrame{
		rect:     m.Rect.Intersect(s.canvas.Rect),
		disposal: disposal,
	}

	return &raster.Frame{
		Image: raster.CloneImage(s.canvas),
		Delay: delay,
	}
}

// dispose applies the disposal method of the previously drawn frame.
func (s *canvasState) dispose() {
	switch s.last.disposal {
	case DisposalBackground:
		// Browsers clear to transparent instead of the background color.
		r := s.last.rect
		for y := r.Min.Y; y < r.Max.Y; y++ {
			row := s.canvas.Pix[s.canvas.PixOffset(r.Min.X, y):s.canvas.PixOffset(r.Max.X, y)]
			clear(row)
		}
	case DisposalPrevious:
		if s.saved != nil {
			copy(s.canvas.Pix, s.saved.Pix)
		}
	}
	s.last = lastFrame{}
}

// draw copies all non-transparent pixels of m onto the canvas.
func (s *canvasState) draw(m *image.Paletted) {
	r := m.Rect.Intersect(s.canvas.Rect)
	if r.Empty() {
		return
	}

	// Convert the palette once.  Entries with alpha zero are the
	// transparent index; everything else is opaque in GIF files.
	type entry struct {
		r, g, b uint8
		opaque  bool
	}
	pal := make([]entry, 256)
	for i, c := range m.Palette {
		cr, cg, cb, ca := c.RGBA()
		if ca == 0 {
			continue
		}
		// GIF palette entries are opaque, so no unpremultiplying is needed.
		pal[i] = entry{uint8(cr >> 8), uint8(cg >> 8), uint8(cb >> 8), true}
	}

	for y := r.Min.Y; y < r.Max.Y; y++ {
		src := m.Pix[m.PixOffset(r.Min.X, y):m.PixOffset(r.Max.X, y)]
		dst := s.canvas.Pix[s.canvas.PixOffset(r.Min.X, y):s.canvas.PixOffset(r.Max.X, y)]
		for i, idx := range src {
			e := pal[idx]
			if !e.opaque {
				continue
			}
			dst[4*i] = e.r
			dst[4*i+1] = e.g
			dst[4*i+2] = e.b
			dst[4*i+3] = 255
		}
	}
}
