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
	"bytes"
	"image"
	"image/color"
	"image/gif"
	"image/png"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"seehuhn.de/go/gifbuilder/ziparchive"
)

func newTestServer() *Server {
	return New(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func pngBody(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i] = uint8(i)
		img.Pix[i+3] = 255
	}
	buf := &bytes.Buffer{}
	if err := png.Encode(buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func gifBody(t *testing.T) []byte {
	t.Helper()
	pal := color.Palette{color.RGBA{R: 255, A: 255}, color.RGBA{B: 255, A: 255}}
	g := &gif.GIF{Config: image.Config{Width: 6, Height: 4}}
	for i, d := range []int{10, 25} {
		m := image.NewPaletted(image.Rect(0, 0, 6, 4), pal)
		for j := range m.Pix {
			m.Pix[j] = uint8(i)
		}
		g.Image = append(g.Image, m)
		g.Delay = append(g.Delay, d)
	}
	buf := &bytes.Buffer{}
	if err := gif.EncodeAll(buf, g); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func do(s *Server, method, target string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	w := httptest.NewRecorder()
	s.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	w := do(newTestServer(), "GET", "/healthz", nil)
	if w.Code != http.StatusOK || w.Body.String() != "ok\n" {
		t.Errorf("got %d %q", w.Code, w.Body.String())
	}
}

func TestBuildGIF(t *testing.T) {
	w := do(newTestServer(), "POST", "/v1/gif?quality=5&background=%23102030", pngBody(t, 20, 10))
	if w.Code != http.StatusOK {
		t.Fatalf("status %d: %s", w.Code, w.Body.String())
	}

	h := w.Header()
	got := map[string]string{
		"Content-Type":     h.Get("Content-Type"),
		"X-Gif-Attempts":   h.Get("X-Gif-Attempts"),
		"X-Gif-Target-Met": h.Get("X-Gif-Target-Met"),
		"X-Gif-Skipped":    h.Get("X-Gif-Skipped"),
		"X-Gif-Frames":     h.Get("X-Gif-Frames"),
		"X-Gif-Size":       h.Get("X-Gif-Size"),
	}
	want := map[string]string{
		"Content-Type":     "image/gif",
		"X-Gif-Attempts":   "0",
		"X-Gif-Target-Met": "true",
		"X-Gif-Skipped":    "0",
		"X-Gif-Frames":     "1",
		"X-Gif-Size":       "20x10",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("unexpected headers (-want +got):\n%s", diff)
	}

	g, err := gif.DecodeAll(w.Body)
	if err != nil {
		t.Fatal(err)
	}
	if g.Config.Width != 20 || g.Config.Height != 10 || len(g.Image) != 1 {
		t.Errorf("unexpected GIF %dx%d with %d frames", g.Config.Width, g.Config.Height, len(g.Image))
	}
}

func TestBuildFromZip(t *testing.T) {
	zipData, err := ziparchive.Pack([]ziparchive.Entry{
		{Name: "a.png", Data: pngBody(t, 8, 8), Duration: 200 * time.Millisecond},
		{Name: "b.png", Data: pngBody(t, 4, 4)},
	})
	if err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest("POST", "/v1/gif?width=16&height=12&loop=2&dedupe=false", bytes.NewReader(zipData))
	req.Header.Set("Content-Type", "application/zip")
	req.Header.Set("Accept-Language", "zh-CN")
	w := httptest.NewRecorder()
	newTestServer().ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d: %s", w.Code, w.Body.String())
	}

	g, err := gif.DecodeAll(w.Body)
	if err != nil {
		t.Fatal(err)
	}
	if len(g.Image) != 2 || g.Config.Width != 16 || g.Config.Height != 12 {
		t.Fatalf("got %d frames of %dx%d", len(g.Image), g.Config.Width, g.Config.Height)
	}
	if diff := cmp.Diff([]int{20, 10}, g.Delay); diff != "" {
		t.Errorf("unexpected delays (-want +got):\n%s", diff)
	}
	if g.LoopCount != 2 {
		t.Errorf("loop count %d, want 2", g.LoopCount)
	}
}

func TestBadRequests(t *testing.T) {
	img := pngBody(t, 4, 4)
	cases := []struct {
		target string
		body   []byte
	}{
		{"/v1/gif", nil},
		{"/v1/gif", []byte("not an image")},
		{"/v1/gif?name=x.zip", []byte("not an archive")},
		{"/v1/gif?quality=99", img},
		{"/v1/gif?quality=abc", img},
		{"/v1/gif?background=blue", img},
		{"/v1/gif?key_mode=random", img},
		{"/v1/gif?target_kb=-3", img},
		{"/v1/gif?alpha_threshold=300", img},
		{"/v1/gif?width=100000&height=100000", img},
		{"/v1/gif?width=9223372036854775807&height=2", img},
		{"/v1/gif?dedupe=maybe", img},
		{"/v1/frames", img},
	}
	s := newTestServer()
	for _, c := range cases {
		w := do(s, "POST", c.target, c.body)
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: status %d, want 400", c.target, w.Code)
		}
	}
}

func TestCanvasLimit(t *testing.T) {
	s := newTestServer()
	s.MaxCanvasPixels = 100
	img := pngBody(t, 12, 12)

	if w := do(s, "POST", "/v1/gif", img); w.Code != http.StatusBadRequest {
		t.Errorf("image canvas above the limit: status %d, want 400", w.Code)
	}
	if w := do(s, "POST", "/v1/gif?width=10&height=10", img); w.Code != http.StatusOK {
		t.Errorf("canvas at the limit: status %d, want 200", w.Code)
	}
}

func TestSplitFrames(t *testing.T) {
	w := do(newTestServer(), "POST", "/v1/frames", gifBody(t))
	if w.Code != http.StatusOK {
		t.Fatalf("status %d: %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/zip" {
		t.Errorf("content type %q", ct)
	}

	x, err := ziparchive.Extract(w.Body.Bytes(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(x.Files) != 2 {
		t.Fatalf("got %d files, want 2", len(x.Files))
	}
	got := []time.Duration{x.Duration("frame_001.png", 0), x.Duration("frame_002.png", 0)}
	if diff := cmp.Diff([]time.Duration{100 * time.Millisecond, 250 * time.Millisecond}, got); diff != "" {
		t.Errorf("unexpected durations (-want +got):\n%s", diff)
	}

	img, err := png.Decode(bytes.NewReader(x.Files[1].Data))
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds().Size() != image.Pt(6, 4) {
		t.Errorf("frame size %v", img.Bounds().Size())
	}
	r, g, b, a := img.At(0, 0).RGBA()
	if r != 0 || g != 0 || b != 0xffff || a != 0xffff {
		t.Errorf("second frame pixel = %x %x %x %x, want blue", r, g, b, a)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	w := do(newTestServer(), "GET", "/v1/gif", nil)
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("status %d, want 405", w.Code)
	}
}
