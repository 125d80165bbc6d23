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

package gifbuilder

import (
	"image"
	"math"
	"time"

	"github.com/google/uuid"
	"seehuhn.de/go/geom/rect"
)

// Source is a decoded source image.
//
// Frames refer to sources by pointer, and two frames show the same image
// exactly if they point to the same Source.
type Source struct {
	// ID identifies the source within an edit session.
	ID string

	// Name is the file name the image was loaded from.
	Name string

	// Image holds the decoded pixels.
	Image image.Image

	// Data optionally holds the encoded file contents.  This is used
	// when the original files are exported as a ZIP archive.
	Data []byte
}

// NewSource wraps a decoded image into a Source with a fresh ID.
func NewSource(name string, img image.Image, data []byte) *Source {
	return &Source{
		ID:    uuid.NewString(),
		Name:  name,
		Image: img,
		Data:  data,
	}
}

// Size returns the native pixel dimensions of the source image.
func (s *Source) Size() image.Point {
	if s == nil || s.Image == nil {
		return image.Point{}
	}
	return s.Image.Bounds().Size()
}

// PlacedFrame is one frame of the animation, as edited by the user.
//
// All coordinates are given in the coordinate system of the canvas the frame
// was edited on.  Positions may be negative or exceed the canvas; such
// frames are clipped when they are drawn.
type PlacedFrame struct {
	Source *Source

	// X and Y give the top-left corner of the unrotated image.
	X, Y float64

	// Width and Height give the displayed size of the unrotated image.
	// This is independent of the native size of the source image.
	Width, Height float64

	// Rotation is the clockwise rotation about the center of the
	// placement, in degrees.
	Rotation float64

	// Duration is the time the frame is shown.
	Duration time.Duration
}

// Place returns a frame which shows src at its native size in the top-left
// corner of the canvas.
func Place(src *Source, d time.Duration) PlacedFrame {
	sz := src.Size()
	return PlacedFrame{
		Source:   src,
		Width:    float64(sz.X),
		Height:   float64(sz.Y),
		Duration: d,
	}
}

// Center returns the center of the placement.  Rotation is about this point.
func (f *PlacedFrame) Center() (float64, float64) {
	return f.X + f.Width/2, f.Y + f.Height/2
}

// QuarterTurned reports whether the rotation is an odd multiple of 90
// degrees, so that the on-canvas width and height are swapped.
func (f *PlacedFrame) QuarterTurned() bool {
	r := math.Mod(math.Abs(f.Rotation), 180)
	return math.Abs(r-90) < 1e-9
}

// Bounds returns the on-canvas bounding box of the frame.  LLx and LLy hold
// the minimum coordinates, URx and URy the maximum coordinates.
//
// For rotations by 90 or 270 degrees, the box is Height wide and Width tall.
// For other angles which are not a multiple of 90 degrees, the box encloses
// the rotated rectangle.
func (f *PlacedFrame) Bounds() rect.Rect {
	cx, cy := f.Center()
	w, h := f.Width, f.Height
	switch {
	case f.QuarterTurned():
		w, h = h, w
	case math.Mod(f.Rotation, 180) != 0:
		phi := f.Rotation * math.Pi / 180
		c, s := math.Abs(math.Cos(phi)), math.Abs(math.Sin(phi))
		w, h = f.Width*c+f.Height*s, f.Width*s+f.Height*c
	}
	return rect.Rect{
		LLx: cx - w/2,
		LLy: cy - h/2,
		URx: cx + w/2,
		URy: cy + h/2,
	}
}

// SamePlacement reports whether two frames show the same source image at
// the same position, size and rotation.  Durations are not compared.
func (f *PlacedFrame) SamePlacement(other *PlacedFrame) bool {
	return f.Source == other.Source &&
		f.X == other.X && f.Y == other.Y &&
		f.Width == other.Width && f.Height == other.Height &&
		f.Rotation == other.Rotation
}

// ClampSize returns a copy of the frame where a width or height below one
// pixel is replaced by one.
func (f PlacedFrame) ClampSize() PlacedFrame {
	if f.Width < 1 {
		f.Width = 1
	}
	if f.Height < 1 {
		f.Height = 1
	}
	return f
}

// Validate checks that every frame refers to a source image.
func Validate(frames []PlacedFrame) error {
	if len(frames) == 0 {
		return ErrNoFrames
	}
	for i := range frames {
		if frames[i].Source == nil || frames[i].Source.Image == nil {
			return &EncodingFailedError{Frame: i, Err: errNoSource}
		}
	}
	return nil
}
