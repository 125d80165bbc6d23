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

// ProgressFunc receives progress reports from long running operations.
// The fraction is in the range [0, 1] and the status is a human-readable
// description of the current step.  Reports are advisory only.
type ProgressFunc func(fraction float64, status string)

// Report calls p if it is not nil.
func (p ProgressFunc) Report(fraction float64, status string) {
	if p == nil {
		return
	}
	p(min(max(fraction, 0), 1), status)
}

// Sub returns a ProgressFunc which maps [0, 1] onto the interval
// [offset, offset+scale] of p.
func (p ProgressFunc) Sub(offset, scale float64) ProgressFunc {
	if p == nil {
		return nil
	}
	return func(fraction float64, status string) {
		p.Report(offset+fraction*scale, status)
	}
}
