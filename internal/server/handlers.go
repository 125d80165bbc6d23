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

package server

import (
	"errors"
	"fmt"
	"image/color"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"seehuhn.de/go/gifbuilder"
	"seehuhn.de/go/gifbuilder/encode"
	"seehuhn.de/go/gifbuilder/importer"
	"seehuhn.de/go/gifbuilder/internal/status"
	"seehuhn.de/go/gifbuilder/project"
	"seehuhn.de/go/gifbuilder/transparency"
	"seehuhn.de/go/gifbuilder/ziparchive"
)

// maxExpansion bounds the uncompressed size of an uploaded archive
// relative to the upload limit.
const maxExpansion = 8

// handleGIF builds an animation from the uploaded file.
// POST /v1/gif
func (s *Server) handleGIF(w http.ResponseWriter, r *http.Request) {
	body, err := s.readBody(w, r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	q := r.URL.Query()
	texts := status.FromAcceptLanguage(r.Header.Get("Accept-Language"))
	if lang := q.Get("lang"); lang != "" {
		texts = status.Parse(lang)
	}

	name := q.Get("name")
	if name == "" {
		name = uploadName(r.Header.Get("Content-Type"))
	}
	im := &importer.Importer{
		Logger:            s.Logger,
		Texts:             texts,
		MaxExtractedBytes: maxExpansion * s.MaxBodyBytes,
	}
	imported, err := im.Import([]importer.Input{{Name: name, Data: body}}, nil)
	if err != nil {
		s.fail(w, err)
		return
	}
	if len(imported.Frames) == 0 {
		http.Error(w, "no decodable images in request", http.StatusBadRequest)
		return
	}

	spec, target, err := canvasFromQuery(q, imported.Canvas.X, imported.Canvas.Y, s.MaxCanvasPixels)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	enc := encode.New(nil)
	enc.Logger = s.Logger
	enc.Texts = texts
	if s.MaxAttempts > 0 {
		enc.MaxAttempts = s.MaxAttempts
	}
	if v := q.Get("dedupe"); v != "" {
		enc.Deduplicate, err = strconv.ParseBool(v)
		if err != nil {
			http.Error(w, "invalid dedupe value", http.StatusBadRequest)
			return
		}
	}

	res, err := enc.Encode(r.Context(), imported.Frames, spec, target, nil)
	if err != nil {
		s.fail(w, err)
		return
	}

	h := w.Header()
	h.Set("Content-Type", "image/gif")
	h.Set("Content-Length", strconv.FormatInt(res.Size, 10))
	h.Set("X-Gif-Attempts", strconv.Itoa(res.Attempts))
	h.Set("X-Gif-Target-Met", strconv.FormatBool(res.TargetMet))
	h.Set("X-Gif-Skipped", strconv.Itoa(imported.Skipped))
	h.Set("X-Gif-Frames", strconv.Itoa(res.Frames))
	h.Set("X-Gif-Size", fmt.Sprintf("%dx%d", res.Width, res.Height))
	w.Write(res.Data)
}

// handleFrames splits an uploaded GIF into PNG frames.
// POST /v1/frames
func (s *Server) handleFrames(w http.ResponseWriter, r *http.Request) {
	body, err := s.readBody(w, r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	data, _, err := ziparchive.FromGIF(body, nil)
	if err != nil {
		s.fail(w, err)
		return
	}

	h := w.Header()
	h.Set("Content-Type", "application/zip")
	h.Set("Content-Disposition", `attachment; filename="frames.zip"`)
	h.Set("Content-Length", strconv.Itoa(len(data)))
	w.Write(data)
}

// fail maps errors to HTTP status codes.
func (s *Server) fail(w http.ResponseWriter, err error) {
	var malformed *gifbuilder.MalformedContainerError
	var unsupported *gifbuilder.UnsupportedImageError
	switch {
	case errors.As(err, &malformed), errors.As(err, &unsupported):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, gifbuilder.ErrNoFrames):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		s.Logger.Error("request failed", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// uploadName invents a file name for the request body, so that the
// importer can recognize archives.
func uploadName(contentType string) string {
	switch strings.TrimSpace(strings.Split(contentType, ";")[0]) {
	case "application/zip", "application/x-zip-compressed":
		return "upload.zip"
	case "image/gif":
		return "upload.gif"
	default:
		return "upload"
	}
}

// canvasFromQuery reads the canvas settings from the query parameters.
// Width and height default to the given size.  If maxPixels is positive,
// larger canvases are rejected.
func canvasFromQuery(q url.Values, width, height, maxPixels int) (*gifbuilder.CanvasSpec, int64, error) {
	p := &params{q: q}
	spec := gifbuilder.NewCanvasSpec(p.int("width", width), p.int("height", height))
	spec.Quality = p.int("quality", gifbuilder.DefaultQuality)
	spec.LoopCount = p.int("loop", 0)
	spec.Transparent = p.bool("transparent", false)
	threshold := p.int("alpha_threshold", gifbuilder.DefaultAlphaThreshold)
	if bg := p.key("background"); bg != nil {
		spec.Background = color.NRGBA{R: bg.R, G: bg.G, B: bg.B, A: 255}
	}
	spec.KeyColor = p.key("key")
	if v := q.Get("key_mode"); v != "" && p.err == nil {
		spec.KeyMode, p.err = project.ParseKeyMode(v)
	}
	target := int64(p.int("target_kb", 0)) * 1024

	if p.err != nil {
		return nil, 0, p.err
	}
	if threshold < 0 || threshold > 255 {
		return nil, 0, errors.New("alpha_threshold must be in [0, 255]")
	}
	spec.AlphaThreshold = uint8(threshold)
	if target < 0 {
		return nil, 0, errors.New("target_kb must be >= 0")
	}
	if err := spec.Validate(); err != nil {
		return nil, 0, err
	}
	if maxPixels > 0 && (spec.Width > maxPixels || spec.Height > maxPixels ||
		int64(spec.Width)*int64(spec.Height) > int64(maxPixels)) {
		return nil, 0, fmt.Errorf("canvas %dx%d exceeds the limit of %d pixels",
			spec.Width, spec.Height, maxPixels)
	}
	return spec, target, nil
}

// params parses query parameters and keeps the first error.
type params struct {
	q   url.Values
	err error
}

func (p *params) int(name string, def int) int {
	v := p.q.Get(name)
	if v == "" || p.err != nil {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		p.err = fmt.Errorf("invalid %s %q", name, v)
		return def
	}
	return n
}

func (p *params) bool(name string, def bool) bool {
	v := p.q.Get(name)
	if v == "" || p.err != nil {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		p.err = fmt.Errorf("invalid %s %q", name, v)
		return def
	}
	return b
}

func (p *params) key(name string) *transparency.Key {
	v := p.q.Get(name)
	if v == "" || p.err != nil {
		return nil
	}
	k, err := transparency.ParseKey(v)
	if err != nil {
		p.err = fmt.Errorf("%s: %w", name, err)
		return nil
	}
	return &k
}
