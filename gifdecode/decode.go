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

// Package gifdecode splits an animated GIF into independent frames.
//
// The frames stored in a GIF file are often only partial updates of the
// previous image.  Decode keeps track of the logical screen, applies the
// disposal method of every frame and returns a complete image for each
// frame.
package gifdecode

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"io"
	"time"

	"seehuhn.de/go/gifbuilder"
	"seehuhn.de/go/gifbuilder/internal/status"
	"seehuhn.de/go/gifbuilder/raster"
)

// Disposal is the disposal method of a GIF frame.  It describes what
// happens to the frame's area before the next frame is drawn.
type Disposal byte

// These are the disposal methods defined by the GIF specification.
const (
	DisposalUnspecified Disposal = 0
	DisposalNone        Disposal = gif.DisposalNone
	DisposalBackground  Disposal = gif.DisposalBackground
	DisposalPrevious    Disposal = gif.DisposalPrevious
)

func (d Disposal) String() string {
	switch d {
	case DisposalUnspecified:
		return "unspecified"
	case DisposalNone:
		return "none"
	case DisposalBackground:
		return "background"
	case DisposalPrevious:
		return "previous"
	default:
		return fmt.Sprintf("Disposal(%d)", byte(d))
	}
}

// Frame is one decoded frame.
type Frame struct {
	// Raster is the complete logical screen after the frame was drawn.
	Raster *raster.Frame

	// Disposal is the disposal method declared by the frame.
	Disposal Disposal

	// Rect is the area of the logical screen covered by the frame.
	Rect image.Rectangle
}

// Info describes a decoded GIF file.
type Info struct {
	// Width and Height give the size of the logical screen.
	Width, Height int

	// LoopCount uses the conventions of [gif.GIF].
	LoopCount int

	// NumFrames is the number of frames in the file.
	NumFrames int
}

// Decode reads a GIF file and returns one complete frame for every frame in
// the file.  All returned frames have the size of the logical screen.
//
// If the data cannot be parsed, a [*gifbuilder.MalformedContainerError] is
// returned.
func Decode(r io.Reader, progress gifbuilder.ProgressFunc) ([]Frame, *Info, error) {
	g, err := gif.DecodeAll(r)
	if err != nil {
		return nil, nil, &gifbuilder.MalformedContainerError{Format: "gif", Err: err}
	}
	return DecodeGIF(g, progress)
}

// DecodeBytes is like [Decode], but reads from a byte slice.
func DecodeBytes(data []byte, progress gifbuilder.ProgressFunc) ([]Frame, *Info, error) {
	return Decode(bytes.NewReader(data), progress)
}

// DecodeGIF composites the frames of an already parsed GIF.
func DecodeGIF(g *gif.GIF, progress gifbuilder.ProgressFunc) ([]Frame, *Info, error) {
	if len(g.Image) == 0 {
		return nil, nil, &gifbuilder.MalformedContainerError{Format: "gif", Err: errNoImages}
	}

	width, height := g.Config.Width, g.Config.Height
	if width <= 0 || height <= 0 {
		// Some encoders leave the logical screen empty; fall back to the
		// union of all frame rectangles.
		var u image.Rectangle
		for _, m := range g.Image {
			u = u.Union(m.Rect)
		}
		width, height = u.Max.X, u.Max.Y
	}

	info := &Info{
		Width:     width,
		Height:    height,
		LoopCount: g.LoopCount,
		NumFrames: len(g.Image),
	}

	texts := status.Default()
	st := newCanvasState(width, height)
	res := make([]Frame, len(g.Image))
	for i, m := range g.Image {
		progress.Report(float64(i)/float64(len(g.Image)), texts.ImportingGIF(i+1, len(g.Image)))

		var disposal Disposal
		if i < len(g.Disposal) {
			disposal = Disposal(g.Disposal[i])
		}
		var delay time.Duration
		if i < len(g.Delay) {
			delay = time.Duration(g.Delay[i]) * 10 * time.Millisecond
		}

		res[i] = Frame{
			Raster:   st.step(m, disposal, delay),
			Disposal: disposal,
			Rect:     m.Rect.Intersect(st.canvas.Rect),
		}
	}
	progress.Report(1, texts.ImportingGIF(len(g.Image), len(g.Image)))

	return res, info, nil
}

var errNoImages = errors.New("file contains no images")
