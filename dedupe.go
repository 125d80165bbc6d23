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

// Dedupe merges runs of consecutive frames which show the same source image
// with the same placement.  The merged frame is shown for the sum of the
// durations.  Frames are compared by placement, not by pixels: equal
// placement of the same source always gives the same composite.
//
// The input slice is not modified.
func Dedupe(frames []PlacedFrame) []PlacedFrame {
	if len(frames) == 0 {
		return nil
	}

	res := make([]PlacedFrame, 0, len(frames))
	res = append(res, frames[0])
	for i := 1; i < len(frames); i++ {
		last := &res[len(res)-1]
		if last.SamePlacement(&frames[i]) {
			last.Duration += frames[i].Duration
			continue
		}
		res = append(res, frames[i])
	}
	return res
}
