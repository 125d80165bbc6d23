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

// Package raster holds fully rendered animation frames.
package raster

import (
	"bytes"
	"image"
	"image/draw"
	"time"

	"seehuhn.de/go/gifbuilder/transparency"
)

// Frame is a rendered frame, ready for encoding.
//
// Image uses non-premultiplied alpha and its bounds always start at (0, 0).
// A Frame is not modified after it has been handed to the next stage of the
// pipeline.
type Frame struct {
	Image *image.NRGBA

	// Delay is the display duration.
	Delay time.Duration

	// Key, if set, is the transparency key of this frame.  It overrides
	// any key given for the whole animation.
	Key *transparency.Key
}

// New allocates a transparent frame of the given size.
func New(width, height int, delay time.Duration) *Frame {
	return &Frame{
		Image: image.NewNRGBA(image.Rect(0, 0, width, height)),
		Delay: delay,
	}
}

// Width returns the frame width in pixels.
func (f *Frame) Width() int {
	return f.Image.Rect.Dx()
}

// Height returns the frame height in pixels.
func (f *Frame) Height() int {
	return f.Image.Rect.Dy()
}

// Clone returns a deep copy of the frame.
func (f *Frame) Clone() *Frame {
	res := &Frame{
		Image: CloneImage(f.Image),
		Delay: f.Delay,
	}
	if f.Key != nil {
		k := *f.Key
		res.Key = &k
	}
	return res
}

// SamePixels reports whether two frames have the same size and identical
// pixel data.
func (f *Frame) SamePixels(other *Frame) bool {
	return f.Image.Rect.Size() == other.Image.Rect.Size() &&
		bytes.Equal(f.Image.Pix, other.Image.Pix)
}

// CloneImage returns a copy of img with bounds starting at (0, 0).
func CloneImage(img *image.NRGBA) *image.NRGBA {
	b := img.Bounds()
	res := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := b.Min.Y; y < b.Max.Y; y++ {
		copy(res.Pix[(y-b.Min.Y)*res.Stride:], img.Pix[img.PixOffset(b.Min.X, y):img.PixOffset(b.Max.X, y)])
	}
	return res
}

// ToNRGBA converts img to non-premultiplied RGBA with bounds starting at
// (0, 0).  The result never shares memory with img.
func ToNRGBA(img image.Image) *image.NRGBA {
	if m, ok := img.(*image.NRGBA); ok {
		return CloneImage(m)
	}
	b := img.Bounds()
	res := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(res, res.Rect, img, b.Min, draw.Src)
	return res
}
