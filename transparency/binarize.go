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

package transparency

import "image"

// Binarize returns a copy of img with a binary alpha channel.
//
// Pixels with alpha below threshold get the key color and alpha 0.
// Pixels with alpha at or above threshold keep their color and get alpha
// 255, so that anti-aliased edges keep their color.  img is not modified.
func Binarize(img *image.NRGBA, key Key, threshold uint8) *image.NRGBA {
	b := img.Bounds()
	res := image.NewNRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		src := img.Pix[img.PixOffset(b.Min.X, y):img.PixOffset(b.Max.X, y)]
		dst := res.Pix[res.PixOffset(b.Min.X, y):res.PixOffset(b.Max.X, y)]
		for i := 0; i < len(src); i += 4 {
			if src[i+3] < threshold {
				dst[i] = key.R
				dst[i+1] = key.G
				dst[i+2] = key.B
				dst[i+3] = 0
				continue
			}
			dst[i] = src[i]
			dst[i+1] = src[i+1]
			dst[i+2] = src[i+2]
			dst[i+3] = 255
		}
	}
	return res
}
