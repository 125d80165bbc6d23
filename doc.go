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

// Package gifbuilder provides the data model for assembling a sequence of
// still images into an animated GIF.
//
// An animation is a list of [PlacedFrame] values.  Each frame refers to a
// decoded [Source] image and describes where the image appears on a shared
// canvas, how large it is drawn, how it is rotated and for how long it is
// shown.  The canvas itself is described by a [CanvasSpec].
//
// The work is split over several sub-packages:
//
//   - gifdecode turns an existing GIF into fully composited frames,
//     honoring the per-frame disposal methods.
//   - transparency finds a color which is not used by any opaque pixel,
//     so that it can serve as the single transparent palette entry.
//   - compose renders one PlacedFrame onto a canvas of fixed size.
//   - encode drives compose and the palette encoder, and shrinks the
//     output until it fits a byte budget.
//   - gifenc is the default palette encoder.
//   - importer and ziparchive read images, GIFs and ZIP archives, and
//     write frames back into ZIP archives.
//   - project reads animation settings from YAML files.
//
// A typical use looks as follows:
//
//	spec := gifbuilder.NewCanvasSpec(320, 240)
//	frames := []gifbuilder.PlacedFrame{ ... }
//	enc := encode.New(nil)
//	res, err := enc.Encode(ctx, frames, spec, 512*1024, nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.WriteFile("out.gif", res.Data, 0o644)
package gifbuilder
