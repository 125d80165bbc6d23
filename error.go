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
	"errors"
	"strconv"
)

var (
	// ErrNoFrames is returned when an animation without frames is encoded.
	ErrNoFrames = errors.New("no frames")

	errNoSource = errors.New("frame has no source image")
)

// MalformedContainerError indicates that a GIF or ZIP byte stream could not
// be parsed.
type MalformedContainerError struct {
	// Format is the container format, "gif" or "zip".
	Format string
	Err    error
}

func (err *MalformedContainerError) Error() string {
	middle := ""
	if err.Err != nil {
		middle = ": " + err.Err.Error()
	}
	format := err.Format
	if format == "" {
		format = "container"
	}
	return "not a valid " + format + " file" + middle
}

func (err *MalformedContainerError) Unwrap() error {
	return err.Err
}

// UnsupportedImageError indicates that an input is not a decodable raster
// image.  Importers skip such inputs and continue with the rest of the
// batch.
type UnsupportedImageError struct {
	Name string
	Err  error
}

func (err *UnsupportedImageError) Error() string {
	msg := "unsupported image"
	if err.Name != "" {
		msg += " " + strconv.Quote(err.Name)
	}
	if err.Err != nil {
		msg += ": " + err.Err.Error()
	}
	return msg
}

func (err *UnsupportedImageError) Unwrap() error {
	return err.Err
}

// EncodingFailedError indicates that rendering or encoding an animation
// failed.  This aborts the whole encode call.
type EncodingFailedError struct {
	// Frame is the index of the frame which caused the failure,
	// or -1 if the failure is not tied to a single frame.
	Frame int
	Err   error
}

func (err *EncodingFailedError) Error() string {
	tail := ""
	if err.Frame >= 0 {
		tail = " (frame " + strconv.Itoa(err.Frame) + ")"
	}
	middle := ""
	if err.Err != nil {
		middle = ": " + err.Err.Error()
	}
	return "encoding failed" + middle + tail
}

func (err *EncodingFailedError) Unwrap() error {
	return err.Err
}
