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

// Package transparency chooses the color which represents transparent pixels
// in palette based output.
//
// A GIF frame can mark only one palette entry as transparent, while source
// images carry an alpha value for every pixel.  To bridge the two models,
// this package finds a "key" color which does not occur in any opaque pixel.
// Pixels with alpha below a threshold are then replaced by the key color,
// and all other pixels are made fully opaque (see [Binarize]).
package transparency

import (
	"errors"
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// Key is an RGB color used to represent transparent pixels.
type Key struct {
	R, G, B uint8
}

// Fallback is used when no unused color can be found.
var Fallback = Key{R: 0x00, G: 0xFF, B: 0x00}

// Packed returns the color as a 24-bit integer 0xRRGGBB.
func (k Key) Packed() uint32 {
	return uint32(k.R)<<16 | uint32(k.G)<<8 | uint32(k.B)
}

// String returns the color in the form "#rrggbb".
func (k Key) String() string {
	return fmt.Sprintf("#%02x%02x%02x", k.R, k.G, k.B)
}

// Transparent returns the key color with alpha zero.
func (k Key) Transparent() color.NRGBA {
	return color.NRGBA{R: k.R, G: k.G, B: k.B}
}

// Matches reports whether c has the RGB components of the key.
// Alpha is ignored.
func (k Key) Matches(c color.NRGBA) bool {
	return c.R == k.R && c.G == k.G && c.B == k.B
}

// Unpack converts a 24-bit integer 0xRRGGBB into a Key.
func Unpack(v uint32) Key {
	return Key{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}
}

// ParseKey parses a color in the form "#rrggbb" or "rrggbb".
func ParseKey(s string) (Key, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) != 6 {
		return Key{}, fmt.Errorf("invalid color %q", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return Key{}, fmt.Errorf("invalid color %q: %w", s, errors.Unwrap(err))
	}
	return Unpack(uint32(v)), nil
}

// MarshalText implements [encoding.TextMarshaler].
func (k Key) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements [encoding.TextUnmarshaler].
func (k *Key) UnmarshalText(text []byte) error {
	v, err := ParseKey(string(text))
	if err != nil {
		return err
	}
	*k = v
	return nil
}
