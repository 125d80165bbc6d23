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
	"image"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestDedupe(t *testing.T) {
	a := NewSource("a.png", image.NewNRGBA(image.Rect(0, 0, 10, 10)), nil)
	b := NewSource("b.png", image.NewNRGBA(image.Rect(0, 0, 10, 10)), nil)

	in := []PlacedFrame{
		{Source: a, X: 0, Width: 10, Height: 10, Duration: 100 * time.Millisecond},
		{Source: a, X: 0, Width: 10, Height: 10, Duration: 150 * time.Millisecond},
		{Source: b, X: 5, Width: 10, Height: 10, Duration: 80 * time.Millisecond},
	}
	orig := append([]PlacedFrame(nil), in...)

	got := Dedupe(in)
	want := []PlacedFrame{
		{Source: a, X: 0, Width: 10, Height: 10, Duration: 250 * time.Millisecond},
		{Source: b, X: 5, Width: 10, Height: 10, Duration: 80 * time.Millisecond},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("unexpected result (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(orig, in); diff != "" {
		t.Errorf("input modified (-want +got):\n%s", diff)
	}
}

func TestDedupeKeepsDifferentPlacements(t *testing.T) {
	a := NewSource("a.png", image.NewNRGBA(image.Rect(0, 0, 10, 10)), nil)
	base := PlacedFrame{Source: a, Width: 10, Height: 10, Duration: time.Second}

	moved := base
	moved.Y = 1
	rotated := base
	rotated.Rotation = 90
	resized := base
	resized.Width = 11
	copied := base
	copied.Source = NewSource("a.png", a.Image, nil)

	in := []PlacedFrame{base, moved, rotated, resized, copied, base}
	if got := Dedupe(in); len(got) != len(in) {
		t.Errorf("got %d frames, want %d", len(got), len(in))
	}

	// Only consecutive frames are merged.
	in = []PlacedFrame{base, moved, base, base, base}
	got := Dedupe(in)
	if len(got) != 3 || got[2].Duration != 3*time.Second {
		t.Errorf("unexpected result %v", got)
	}
}

func TestDedupeEmpty(t *testing.T) {
	if got := Dedupe(nil); len(got) != 0 {
		t.Errorf("got %v", got)
	}
}
