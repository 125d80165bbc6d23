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

package float

import "testing"

func TestFormat(t *testing.T) {
	cases := []struct {
		in        float64
		precision int
		out       string
	}{
		{1.5, 2, "1.5"},
		{2, 2, "2"},
		{0.25, 2, "0.25"},
		{1.05, 2, "1.05"},
		{-0.001, 2, "0"},
		{123.456, 1, "123.5"},
		{10, 0, "10"},
	}
	for _, c := range cases {
		got := Format(c.in, c.precision)
		if got != c.out {
			t.Errorf("Format(%g, %d) = %q, want %q", c.in, c.precision, got, c.out)
		}
	}
}

func TestRound(t *testing.T) {
	if got := Round(0.123456, 3); got != 0.123 {
		t.Errorf("Round = %g", got)
	}
}

func TestSizes(t *testing.T) {
	cases := []struct {
		f    func(int64) string
		in   int64
		want string
	}{
		{MB, 1572864, "1.50"},
		{MB, 512 * 1024, "0.50"},
		{MB, 0, "0.00"},
		{KB, 1536, "1.5"},
		{KB, 2048, "2"},
	}
	for i, c := range cases {
		if got := c.f(c.in); got != c.want {
			t.Errorf("%d: got %q, want %q", i, got, c.want)
		}
	}
}
