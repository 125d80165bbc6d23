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

package encode

import "math"

// MinDimension is the smallest canvas width or height used by the
// compression steps, unless the canvas already is smaller.
const MinDimension = 100

// DefaultMaxAttempts is the number of compression attempts made after the
// initial pass.
const DefaultMaxAttempts = 3

// step describes how the next compression attempt differs from the
// previous one.
type step struct {
	Scale           float64
	QualityIncrease int
}

// nextStep chooses the next compression step.  The further the output
// exceeds the target, the more aggressive the step.
func nextStep(size, target int64) step {
	ratio := float64(target) / float64(size)
	gap := float64(size-target) / float64(target)

	switch {
	case gap > 1:
		return step{
			Scale:           math.Max(0.5, math.Sqrt(ratio*0.75)),
			QualityIncrease: min(10, int(math.Ceil(gap*5))),
		}
	case gap > 0.5:
		return step{
			Scale:           math.Max(0.65, math.Sqrt(ratio*0.85)),
			QualityIncrease: min(7, int(math.Ceil(gap*8))),
		}
	case gap > 0.2:
		return step{
			Scale:           math.Max(0.75, math.Sqrt(ratio*0.92)),
			QualityIncrease: min(5, int(math.Ceil(gap*10))),
		}
	case gap > 0.1:
		return step{
			Scale:           math.Max(0.85, math.Sqrt(ratio*0.96)),
			QualityIncrease: min(3, int(math.Ceil(gap*15))),
		}
	default:
		return step{
			Scale:           1,
			QualityIncrease: min(2, int(math.Ceil(gap*20))),
		}
	}
}

// shrink returns the new size of one canvas dimension.
func shrink(n int, scale float64) int {
	if scale >= 1 {
		return n
	}
	return max(min(MinDimension, n), int(math.Floor(float64(n)*scale)))
}
