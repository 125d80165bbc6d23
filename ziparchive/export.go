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

package ziparchive

import (
	"bytes"
	"image/png"

	"seehuhn.de/go/gifbuilder"
	"seehuhn.de/go/gifbuilder/gifdecode"
)

// Entries converts frames into archive entries.  The original file
// contents of the sources are used where available; other sources are
// stored as PNG files.
func Entries(frames []gifbuilder.PlacedFrame) ([]Entry, error) {
	res := make([]Entry, len(frames))
	for i, f := range frames {
		if f.Source == nil || f.Source.Image == nil && f.Source.Data == nil {
			return nil, &gifbuilder.EncodingFailedError{Frame: i, Err: errMissingSource}
		}
		data := f.Source.Data
		name := f.Source.Name
		if data == nil {
			buf := &bytes.Buffer{}
			if err := png.Encode(buf, f.Source.Image); err != nil {
				return nil, &gifbuilder.EncodingFailedError{Frame: i, Err: err}
			}
			data = buf.Bytes()
			name = "frame.png"
		}
		res[i] = Entry{Name: name, Data: data, Duration: f.Duration}
	}
	return res, nil
}

// FromGIF splits an animated GIF into complete frames and stores these as
// PNG files in a ZIP archive, together with the frame delays.  The second
// return value is the number of frames.
func FromGIF(data []byte, progress gifbuilder.ProgressFunc) ([]byte, int, error) {
	frames, _, err := gifdecode.DecodeBytes(data, progress)
	if err != nil {
		return nil, 0, err
	}

	placed := make([]gifbuilder.PlacedFrame, len(frames))
	for i, f := range frames {
		src := &gifbuilder.Source{Image: f.Raster.Image}
		placed[i] = gifbuilder.Place(src, f.Raster.Delay)
	}
	entries, err := Entries(placed)
	if err != nil {
		return nil, 0, err
	}

	zipData, err := Pack(entries)
	if err != nil {
		return nil, 0, &gifbuilder.EncodingFailedError{Frame: -1, Err: err}
	}
	return zipData, len(frames), nil
}
