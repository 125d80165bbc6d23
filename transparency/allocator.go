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

import (
	"image"
	"math/bits"
	"math/rand/v2"
)

// Grid steps for the systematic search.  The global search uses a finer
// grid, since the union of all frames uses more colors.
const (
	FrameGridStep  = 11
	GlobalGridStep = 7
)

// DefaultRandomAttempts is the number of random colors tried before the
// grid search starts.
const DefaultRandomAttempts = 10

// ColorSet is a set of 24-bit RGB colors.
// The zero value is an empty set, ready to use.
type ColorSet struct {
	bits []uint64
	n    int
}

// Add adds the color 0xRRGGBB to the set.
func (s *ColorSet) Add(rgb uint32) {
	if s.bits == nil {
		s.bits = make([]uint64, 1<<24/64)
	}
	rgb &= 0xFFFFFF
	w, b := rgb/64, rgb%64
	if s.bits[w]&(1<<b) == 0 {
		s.bits[w] |= 1 << b
		s.n++
	}
}

// Contains reports whether the color 0xRRGGBB is in the set.
func (s *ColorSet) Contains(rgb uint32) bool {
	if s.bits == nil {
		return false
	}
	rgb &= 0xFFFFFF
	return s.bits[rgb/64]&(1<<(rgb%64)) != 0
}

// Len returns the number of colors in the set.
func (s *ColorSet) Len() int {
	return s.n
}

// Sum64 returns a hash of the set contents.
func (s *ColorSet) Sum64() uint64 {
	const prime = 0x100000001b3
	h := uint64(0xcbf29ce484222325)
	for i, w := range s.bits {
		if w == 0 {
			continue
		}
		h = (h ^ uint64(i)) * prime
		h = (h ^ w) * prime
	}
	return h
}

// Union adds all colors of other to s.
func (s *ColorSet) Union(other *ColorSet) {
	if other.bits == nil {
		return
	}
	if s.bits == nil {
		s.bits = make([]uint64, len(other.bits))
	}
	n := 0
	for i, w := range other.bits {
		s.bits[i] |= w
		n += bits.OnesCount64(s.bits[i])
	}
	s.n = n
}

// Collect adds the colors of all pixels with alpha at or above threshold to
// used.  The return value reports whether img has any pixel with alpha
// below threshold.
func Collect(img *image.NRGBA, threshold uint8, used *ColorSet) bool {
	hasTransparency := false
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := img.Pix[img.PixOffset(b.Min.X, y):img.PixOffset(b.Max.X, y)]
		for i := 0; i < len(row); i += 4 {
			if row[i+3] < threshold {
				hasTransparency = true
				continue
			}
			used.Add(uint32(row[i])<<16 | uint32(row[i+1])<<8 | uint32(row[i+2]))
		}
	}
	return hasTransparency
}

// HasTransparency reports whether img has any pixel with alpha below
// threshold.
func HasTransparency(img *image.NRGBA, threshold uint8) bool {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := img.Pix[img.PixOffset(b.Min.X, y):img.PixOffset(b.Max.X, y)]
		for i := 3; i < len(row); i += 4 {
			if row[i] < threshold {
				return true
			}
		}
	}
	return false
}

// Allocator searches for unused key colors.
type Allocator struct {
	// RandomAttempts is the number of random colors tried before the grid
	// search.  Set this to zero to make the search deterministic.
	RandomAttempts int

	// Rand is the source of random colors.  If nil, each search uses a
	// generator seeded from the set of used colors, so that equal inputs
	// give equal keys.
	Rand *rand.Rand
}

// NewAllocator returns an allocator with the default number of random
// attempts.
func NewAllocator() *Allocator {
	return &Allocator{RandomAttempts: DefaultRandomAttempts}
}

// FrameKey finds a key color for a single frame.  The second return value
// is false if the frame has no pixel below the threshold; in this case no
// search is done and [Fallback] is returned.
func (a *Allocator) FrameKey(img *image.NRGBA, threshold uint8) (Key, bool) {
	used := &ColorSet{}
	if !Collect(img, threshold, used) {
		return Fallback, false
	}
	return a.Search(used, FrameGridStep), true
}

// GlobalKey finds a key color which is not used by any opaque pixel in any
// of the given images.
func (a *Allocator) GlobalKey(imgs []*image.NRGBA, threshold uint8) Key {
	used := &ColorSet{}
	for _, img := range imgs {
		Collect(img, threshold, used)
	}
	return a.Search(used, GlobalGridStep)
}

// Search returns a color which is not in used.  It first tries random
// colors (never pure black or white), then scans a grid with the given step
// size over all three channels.  If every candidate is used, [Fallback] is
// returned.
func (a *Allocator) Search(used *ColorSet, step int) Key {
	rng := a.Rand
	if rng == nil && a.RandomAttempts > 0 {
		rng = rand.New(rand.NewPCG(used.Sum64(), uint64(used.Len())))
	}
	for range a.RandomAttempts {
		k := Key{R: randomByte(rng), G: randomByte(rng), B: randomByte(rng)}
		if k == (Key{}) || k == (Key{R: 255, G: 255, B: 255}) {
			continue
		}
		if !used.Contains(k.Packed()) {
			return k
		}
	}

	if step < 1 {
		step = 1
	}
	for r := 1; r < 255; r += step {
		for g := 1; g < 255; g += step {
			for b := 1; b < 255; b += step {
				k := Key{R: uint8(r), G: uint8(g), B: uint8(b)}
				if !used.Contains(k.Packed()) {
					return k
				}
			}
		}
	}

	return Fallback
}

func randomByte(rng *rand.Rand) uint8 {
	return uint8(rng.IntN(256))
}
