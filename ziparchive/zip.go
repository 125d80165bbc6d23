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

// Package ziparchive reads and writes ZIP archives of animation frames.
//
// Archives may contain a file "metadata.json" which gives frame durations
// in milliseconds:
//
//	{
//	  "defaultFrameDuration": 100,
//	  "frames": [
//	    {"file": "frame_001.png", "duration": 120, "frameIndex": 0}
//	  ]
//	}
package ziparchive

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path"
	"slices"
	"strings"
	"time"

	"golang.org/x/exp/maps"

	"seehuhn.de/go/gifbuilder"
	"seehuhn.de/go/gifbuilder/internal/status"
)

// MetadataName is the base name of the metadata file.
const MetadataName = "metadata.json"

var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".webp": true,
	".gif":  true,
	".bmp":  true,
}

// IsImageName reports whether name has the extension of a supported image
// format.
func IsImageName(name string) bool {
	return imageExtensions[strings.ToLower(path.Ext(name))]
}

// File is an image file read from an archive.
type File struct {
	// Path is the full path inside the archive.
	Path string

	// Name is the base name of the file.
	Name string

	Data []byte
}

// Extraction is the result of reading an archive.
type Extraction struct {
	// Files lists the image files in natural order of their paths.
	Files []File

	// Durations maps base names to frame durations, as given in the
	// metadata file.
	Durations map[string]time.Duration

	// DefaultDuration is the default frame duration from the metadata
	// file, or zero.
	DefaultDuration time.Duration

	// MetadataErr is set if a metadata file was found but could not be
	// used.  Such a file is otherwise ignored.
	MetadataErr error
}

// Duration returns the duration for the image with the given base name.
// If the metadata does not specify a duration, fallback is returned.
func (x *Extraction) Duration(name string, fallback time.Duration) time.Duration {
	if d, ok := x.Durations[name]; ok && d > 0 {
		return d
	}
	if x.DefaultDuration > 0 {
		return x.DefaultDuration
	}
	return fallback
}

// MetadataNames returns the file names listed in the metadata, in
// alphabetical order.
func (x *Extraction) MetadataNames() []string {
	names := maps.Keys(x.Durations)
	slices.Sort(names)
	return names
}

// DefaultMaxBytes limits the total uncompressed size of the files read
// from one archive.
const DefaultMaxBytes = 1 << 30

// Extractor reads archives.
type Extractor struct {
	// Texts is used for progress messages.  If nil, English messages
	// are used.
	Texts *status.Texts

	// MaxBytes limits the total uncompressed size of the files read from
	// one archive.  If zero, DefaultMaxBytes is used.  A negative value
	// disables the limit.
	MaxBytes int64
}

// Extract reads all image files from a ZIP archive, using English progress
// messages.
func Extract(data []byte, progress gifbuilder.ProgressFunc) (*Extraction, error) {
	return (&Extractor{}).Extract(data, progress)
}

// Extract reads all image files from a ZIP archive.
//
// Directories, files below "__MACOSX/" and files whose names start with a
// dot are skipped, as are files which do not have the extension of a
// supported image format.  Files are not decoded.
//
// If data is not a valid ZIP archive, a [*gifbuilder.MalformedContainerError]
// is returned.
func (e *Extractor) Extract(data []byte, progress gifbuilder.ProgressFunc) (*Extraction, error) {
	texts := e.Texts
	if texts == nil {
		texts = status.Default()
	}

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, &gifbuilder.MalformedContainerError{Format: "zip", Err: err}
	}

	res := &Extraction{}
	remaining := e.MaxBytes
	if remaining == 0 {
		remaining = DefaultMaxBytes
	}

	var meta *zip.File
	var images []*zip.File
	for _, f := range zr.File {
		if f.FileInfo().IsDir() || strings.HasSuffix(f.Name, "/") {
			continue
		}
		name := path.Base(f.Name)
		if strings.EqualFold(name, MetadataName) {
			meta = f
			continue
		}
		if strings.HasPrefix(f.Name, "__MACOSX/") || strings.Contains(f.Name, "/__MACOSX/") {
			continue
		}
		if strings.HasPrefix(name, ".") || !IsImageName(name) {
			continue
		}
		images = append(images, f)
	}

	if meta != nil {
		res.MetadataErr = res.readMetadata(meta, remaining)
	}

	slices.SortStableFunc(images, func(a, b *zip.File) int {
		return naturalCompare(a.Name, b.Name)
	})

	n := len(images)
	for i, f := range images {
		progress.Report(float64(i)/float64(n), texts.ExtractingZIP(i+1, n))
		body, err := readFile(f, remaining)
		if err != nil {
			return nil, &gifbuilder.MalformedContainerError{
				Format: "zip",
				Err:    fmt.Errorf("%s: %w", f.Name, err),
			}
		}
		if remaining > 0 {
			remaining -= int64(len(body))
		}
		res.Files = append(res.Files, File{
			Path: f.Name,
			Name: path.Base(f.Name),
			Data: body,
		})
	}
	progress.Report(1, texts.ExtractingZIP(n, n))

	return res, nil
}

func (x *Extraction) readMetadata(f *zip.File, limit int64) error {
	body, err := readFile(f, limit)
	if err != nil {
		return err
	}
	meta := &metadata{}
	if err := json.Unmarshal(body, meta); err != nil {
		return err
	}
	if meta.Frames == nil {
		return errNoFrameList
	}

	if meta.DefaultFrameDuration != nil && *meta.DefaultFrameDuration > 0 {
		x.DefaultDuration = milliseconds(*meta.DefaultFrameDuration)
	}
	x.Durations = make(map[string]time.Duration, len(meta.Frames))
	for _, fr := range meta.Frames {
		if fr.File == "" {
			continue
		}
		x.Durations[path.Base(fr.File)] = milliseconds(fr.Duration)
	}
	return nil
}

var (
	errNoFrameList   = errors.New("metadata has no frame list")
	errMissingSource = errors.New("frame has no image data")
	errTooLarge      = errors.New("uncompressed size exceeds the limit")
)

// readFile returns the uncompressed contents of f.  If limit is
// non-negative, files larger than limit bytes are rejected.
func readFile(f *zip.File, limit int64) ([]byte, error) {
	if limit >= 0 && f.UncompressedSize64 > uint64(limit) {
		return nil, errTooLarge
	}
	r, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer r.Close()

	var in io.Reader = r
	if limit >= 0 {
		in = io.LimitReader(r, limit+1)
	}
	body, err := io.ReadAll(in)
	if err != nil {
		return nil, err
	}
	if limit >= 0 && int64(len(body)) > limit {
		return nil, errTooLarge
	}
	return body, nil
}

type metadata struct {
	GeneratedBy          string          `json:"generatedBy,omitempty"`
	DefaultFrameDuration *float64        `json:"defaultFrameDuration,omitempty"`
	TotalFrames          int             `json:"totalFrames,omitempty"`
	Frames               []frameMetadata `json:"frames"`
}

type frameMetadata struct {
	File       string  `json:"file"`
	Duration   float64 `json:"duration"`
	FrameIndex int     `json:"frameIndex"`
}

func milliseconds(ms float64) time.Duration {
	return time.Duration(ms * float64(time.Millisecond))
}

// Entry is a file to be stored by [Pack].
type Entry struct {
	// Name is the original file name.  Only the extension is used.
	Name string

	Data []byte

	// Duration, if positive, is recorded in the metadata file.
	Duration time.Duration
}

// Pack stores the entries in a new ZIP archive, using the names
// frame_001.png, frame_002.png, and so on.  The original file extensions
// are kept; ".png" is used for files without extension.  If any entry has
// a duration, a metadata file is added.
func Pack(entries []Entry) ([]byte, error) {
	buf := &bytes.Buffer{}
	zw := zip.NewWriter(buf)

	meta := &metadata{
		GeneratedBy: "gifbuilder",
		TotalFrames: len(entries),
	}
	hasDurations := false
	for i, e := range entries {
		name := SequentialName(i, e.Name)
		w, err := zw.Create(name)
		if err != nil {
			return nil, err
		}
		if _, err := w.Write(e.Data); err != nil {
			return nil, err
		}
		meta.Frames = append(meta.Frames, frameMetadata{
			File:       name,
			Duration:   float64(e.Duration) / float64(time.Millisecond),
			FrameIndex: i,
		})
		hasDurations = hasDurations || e.Duration > 0
	}

	if hasDurations {
		body, err := json.MarshalIndent(meta, "", "  ")
		if err != nil {
			return nil, err
		}
		w, err := zw.Create(MetadataName)
		if err != nil {
			return nil, err
		}
		if _, err := w.Write(body); err != nil {
			return nil, err
		}
	}

	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// SequentialName returns the archive name for the i-th entry (counting
// from zero) with the given original file name.
func SequentialName(i int, original string) string {
	ext := path.Ext(original)
	if ext == "" {
		ext = ".png"
	}
	return fmt.Sprintf("frame_%03d%s", i+1, ext)
}
