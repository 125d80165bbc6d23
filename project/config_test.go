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

package project

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"seehuhn.de/go/gifbuilder"
	"seehuhn.de/go/gifbuilder/transparency"
)

func TestDefaultConfigIsValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatal(err)
	}
}

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(`
inputs: [a.png, frames.zip]
target_kb: 512
language: zh-CN
canvas:
  width: 320
  transparent: true
  key_color: "#010203"
  key_mode: per-frame
frames:
  - frame: 1
    rotation: 90
    duration_ms: 400
`))
	if err != nil {
		t.Fatal(err)
	}

	if diff := cmp.Diff([]string{"a.png", "frames.zip"}, cfg.Inputs); diff != "" {
		t.Errorf("unexpected inputs (-want +got):\n%s", diff)
	}
	if cfg.TargetBytes() != 512*1024 {
		t.Errorf("target %d", cfg.TargetBytes())
	}
	// missing keys keep their defaults
	if cfg.Canvas.Quality != gifbuilder.DefaultQuality || !cfg.Deduplicate || cfg.FrameDuration() != 100*time.Millisecond {
		t.Errorf("defaults lost: %+v", cfg)
	}

	spec, err := cfg.CanvasSpec(image.Pt(100, 80), nil)
	if err != nil {
		t.Fatal(err)
	}
	want := &gifbuilder.CanvasSpec{
		Width:          320,
		Height:         80,
		Quality:        gifbuilder.DefaultQuality,
		Transparent:    true,
		Background:     color.NRGBA{R: 255, G: 255, B: 255, A: 255},
		AlphaThreshold: gifbuilder.DefaultAlphaThreshold,
		KeyColor:       &transparency.Key{R: 1, G: 2, B: 3},
		KeyMode:        gifbuilder.KeyPerFrame,
	}
	if diff := cmp.Diff(want, spec); diff != "" {
		t.Errorf("unexpected canvas (-want +got):\n%s", diff)
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		yaml string
		msg  string
	}{
		{"canvas: {quality: 0}", "quality"},
		{"canvas: {quality: 31}", "quality"},
		{"canvas: {loop: -2}", "loop"},
		{"canvas: {background: red}", "background"},
		{"canvas: {key_color: '#12345'}", "key_color"},
		{"canvas: {key_mode: sometimes}", "key_mode"},
		{"canvas: {alpha_threshold: 256}", "alpha_threshold"},
		{"canvas: {background_image: {x: 1}}", "background_image"},
		{"target_kb: -1", "target_kb"},
		{"language: '!!'", "language"},
		{"frames: [{frame: -1}]", "frames[0]"},
		{"frames: [{frame: 0, width: 0}]", "frames[0]"},
		{"canvas: [1, 2]", "parse"},
	}
	for _, c := range cases {
		_, err := Parse([]byte(c.yaml))
		if err == nil {
			t.Errorf("%s: no error", c.yaml)
			continue
		}
		if !strings.Contains(err.Error(), c.msg) {
			t.Errorf("%s: error %q does not mention %q", c.yaml, err, c.msg)
		}
	}
}

func TestLoadResolvesPaths(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "project.yaml")
	err := os.WriteFile(path, []byte("inputs: [img/a.png, /abs/b.png]\n"), 0o644)
	if err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{filepath.Join(dir, "img/a.png"), "/abs/b.png"}
	if diff := cmp.Diff(want, cfg.InputPaths()); diff != "" {
		t.Errorf("unexpected paths (-want +got):\n%s", diff)
	}
	if cfg.Path("out.gif") != filepath.Join(dir, "out.gif") {
		t.Errorf("output path %q", cfg.Path("out.gif"))
	}

	if _, err := Load(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("missing file not reported")
	}
}

func TestApply(t *testing.T) {
	src := &gifbuilder.Source{Name: "a"}
	frames := []gifbuilder.PlacedFrame{
		{Source: src, Width: 100, Height: 50, Duration: 100 * time.Millisecond},
		{Source: src, Width: 100, Height: 50, Duration: 100 * time.Millisecond},
	}

	cfg, err := Parse([]byte("frames: [{frame: 1, x: -10, rotation: 90, duration_ms: 250}]"))
	if err != nil {
		t.Fatal(err)
	}
	got, err := cfg.Apply(frames)
	if err != nil {
		t.Fatal(err)
	}
	want := []gifbuilder.PlacedFrame{
		frames[0],
		{Source: src, X: -10, Width: 100, Height: 50, Rotation: 90, Duration: 250 * time.Millisecond},
	}
	if diff := cmp.Diff(want, got, cmpopts.IgnoreFields(gifbuilder.Source{}, "Image")); diff != "" {
		t.Errorf("unexpected frames (-want +got):\n%s", diff)
	}
	if frames[1].Rotation != 0 {
		t.Error("input frames modified")
	}

	cfg.Frames[0].Frame = 2
	if _, err := cfg.Apply(frames); err == nil {
		t.Error("out of range frame not reported")
	}
}

func TestBackgroundImage(t *testing.T) {
	cfg, err := Parse([]byte("canvas: {background_image: {file: bg.png, width: 50}}"))
	if err != nil {
		t.Fatal(err)
	}
	bg := image.NewNRGBA(image.Rect(0, 0, 4, 4))

	spec, err := cfg.CanvasSpec(image.Pt(10, 10), bg)
	if err != nil {
		t.Fatal(err)
	}
	if spec.BackgroundImage == nil || spec.BackgroundImage.Image != bg || spec.BackgroundImage.Width != 50 {
		t.Errorf("unexpected background %+v", spec.BackgroundImage)
	}

	spec, err = cfg.CanvasSpec(image.Pt(10, 10), nil)
	if err != nil {
		t.Fatal(err)
	}
	if spec.BackgroundImage != nil {
		t.Error("background image without pixels")
	}
}
