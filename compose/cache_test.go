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

package compose

import (
	"image"
	"testing"

	"seehuhn.de/go/gifbuilder"
)

func TestSourceCache(t *testing.T) {
	sources := make([]*gifbuilder.Source, 110)
	for i := range sources {
		sources[i] = gifbuilder.NewSource("", nil, nil)
	}
	key := func(i int) prepKey {
		return prepKey{src: sources[i]}
	}
	img := func(i int) *image.NRGBA {
		return image.NewNRGBA(image.Rect(0, 0, i+1, 1))
	}

	cache := NewSourceCache(12)
	images := make(map[int]*image.NRGBA)
	for _, i := range []int{100, 101, 102} {
		images[i] = img(i)
		cache.put(key(i), images[i])
	}
	got, ok := cache.get(key(100))
	if !ok {
		t.Error("cache miss")
	}
	if got != images[100] {
		t.Error("wrong image")
	}
	// now 101 is the oldest entry and should drop out later

	got, ok = cache.get(key(0))
	if ok {
		t.Error("cache hit")
	}
	if got != nil {
		t.Error("wrong image")
	}

	for i := 0; i < 25; i++ {
		x := i % 10
		got, ok := cache.get(key(x))
		if ok != (i >= 10) {
			t.Error("cache hit/miss mismatch")
		}
		if ok {
			if got != images[x] {
				t.Error("wrong image")
			}
		} else {
			images[x] = img(x)
			cache.put(key(x), images[x])
		}
	}

	if _, ok := cache.get(key(100)); !ok {
		t.Error("cache miss")
	}
	if _, ok := cache.get(key(101)); ok {
		t.Error("cache hit")
	}
	if _, ok := cache.get(key(102)); !ok {
		t.Error("cache miss")
	}
	if cache.Len() != 12 {
		t.Errorf("cache holds %d images", cache.Len())
	}
}

func TestCompositeUsesCache(t *testing.T) {
	src := gifbuilder.NewSource("a.png", solid(4, 4, red), nil)
	f := gifbuilder.PlacedFrame{Source: src, Width: 4, Height: 4}
	cache := NewSourceCache(4)

	spec := gifbuilder.NewCanvasSpec(4, 4)
	a := Composite(&f, &Options{Canvas: spec, Cache: cache})
	b := Composite(&f, &Options{Canvas: spec, Cache: cache})
	if cache.Len() != 1 {
		t.Errorf("cache holds %d images, want 1", cache.Len())
	}
	if !a.SamePixels(b) {
		t.Error("cached composite differs")
	}

	// A different preprocessing mode needs a separate entry.
	spec.Transparent = true
	Composite(&f, &Options{Canvas: spec, Cache: cache})
	if cache.Len() != 2 {
		t.Errorf("cache holds %d images, want 2", cache.Len())
	}
}
