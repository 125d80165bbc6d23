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
	"fmt"
	"image"
	"image/color"

	"seehuhn.de/go/gifbuilder/transparency"
)

// Quality limits, as understood by the palette encoder.
// Lower values give better results.
const (
	BestQuality    = 1
	WorstQuality   = 30
	DefaultQuality = 10
)

// DefaultAlphaThreshold is the alpha value at and above which a pixel
// counts as opaque.
const DefaultAlphaThreshold = 128

// KeyMode selects how the transparency key is chosen.
type KeyMode int

const (
	// KeyGlobal uses one key color for the whole animation.
	KeyGlobal KeyMode = iota

	// KeyPerFrame searches a separate key color for every frame.
	KeyPerFrame
)

func (m KeyMode) String() string {
	switch m {
	case KeyGlobal:
		return "global"
	case KeyPerFrame:
		return "per-frame"
	default:
		return fmt.Sprintf("KeyMode(%d)", int(m))
	}
}

// BackgroundImage is an image drawn behind all frames.
// The placement uses the same coordinate system as the frames.
type BackgroundImage struct {
	Image image.Image

	X, Y float64

	// Width and Height give the displayed size.  If zero, the
	// canvas size is used.
	Width, Height float64
}

// CanvasSpec describes the output canvas.
type CanvasSpec struct {
	Width, Height int

	// Quality is passed to the palette encoder: 1 is best, 30 is worst.
	Quality int

	// LoopCount is 0 for an infinite loop, -1 to play the animation once,
	// and n > 0 to repeat the animation n times.
	LoopCount int

	// Transparent enables transparency in the output.
	Transparent bool

	// Background is the solid background color, used when transparency
	// is disabled.
	Background color.NRGBA

	// BackgroundImage, if set, is drawn over the solid background when
	// transparency is disabled.
	BackgroundImage *BackgroundImage

	// AlphaThreshold separates transparent pixels (alpha below the
	// threshold) from opaque ones.
	AlphaThreshold uint8

	// KeyColor, if set, is used as the transparency key and no search
	// for an unused color is done.
	KeyColor *transparency.Key

	// KeyMode selects between one key for the whole animation and one
	// key per frame.  It is ignored when KeyColor is set.
	KeyMode KeyMode
}

// NewCanvasSpec returns a canvas with default settings: medium quality,
// infinite loop, opaque white background.
func NewCanvasSpec(width, height int) *CanvasSpec {
	return &CanvasSpec{
		Width:          width,
		Height:         height,
		Quality:        DefaultQuality,
		Background:     color.NRGBA{R: 255, G: 255, B: 255, A: 255},
		AlphaThreshold: DefaultAlphaThreshold,
	}
}

// Clone returns a deep enough copy of the spec, so that changes to size and
// quality of the copy do not affect c.
func (c *CanvasSpec) Clone() *CanvasSpec {
	res := *c
	if c.KeyColor != nil {
		k := *c.KeyColor
		res.KeyColor = &k
	}
	return &res
}

// Size returns the canvas dimensions.
func (c *CanvasSpec) Size() image.Point {
	return image.Pt(c.Width, c.Height)
}

// Validate checks that the spec describes a usable canvas.
func (c *CanvasSpec) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("invalid canvas size %dx%d", c.Width, c.Height)
	}
	if c.Quality < BestQuality || c.Quality > WorstQuality {
		return fmt.Errorf("quality %d outside [%d, %d]", c.Quality, BestQuality, WorstQuality)
	}
	if c.LoopCount < -1 || c.LoopCount > 65535 {
		return fmt.Errorf("invalid loop count %d", c.LoopCount)
	}
	switch c.KeyMode {
	case KeyGlobal, KeyPerFrame:
	default:
		return fmt.Errorf("invalid key mode %d", int(c.KeyMode))
	}
	return nil
}
