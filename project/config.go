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

// Package project reads animation projects from YAML files.
//
// A project lists the input files, the canvas settings and optional
// placements for individual frames:
//
//	inputs:
//	  - intro.gif
//	  - frames.zip
//	target_kb: 512
//	canvas:
//	  width: 320
//	  height: 240
//	  background: "#202020"
//	frames:
//	  - frame: 0
//	    rotation: 90
//	    duration_ms: 400
package project

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"seehuhn.de/go/gifbuilder"
	"seehuhn.de/go/gifbuilder/transparency"
)

// Config holds a complete project.
type Config struct {
	Inputs          []string    `yaml:"inputs"`
	Output          string      `yaml:"output"`
	Language        string      `yaml:"language"`
	TargetKB        int64       `yaml:"target_kb"`
	MaxAttempts     int         `yaml:"max_attempts"`
	Deduplicate     bool        `yaml:"deduplicate"`
	FrameDurationMS int         `yaml:"frame_duration_ms"`
	Canvas          Canvas      `yaml:"canvas"`
	Frames          []Placement `yaml:"frames"`

	// Dir is the directory of the project file.  Relative paths are
	// resolved against Dir.
	Dir string `yaml:"-"`
}

// Canvas configures the output canvas.
type Canvas struct {
	// Width and Height give the canvas size.  Zero means the size of the
	// first frame.
	Width  int `yaml:"width"`
	Height int `yaml:"height"`

	Quality         int         `yaml:"quality"`
	Loop            int         `yaml:"loop"`
	Transparent     bool        `yaml:"transparent"`
	Background      string      `yaml:"background"`       // #rrggbb
	AlphaThreshold  int         `yaml:"alpha_threshold"`  // 0-255
	KeyColor        string      `yaml:"key_color"`        // #rrggbb, empty to search
	KeyMode         string      `yaml:"key_mode"`         // global | per-frame
	BackgroundImage *Background `yaml:"background_image"` // optional
}

// Background places an image behind all frames.
type Background struct {
	File   string  `yaml:"file"`
	X      float64 `yaml:"x"`
	Y      float64 `yaml:"y"`
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// Placement changes the position of one imported frame.  Fields which are
// not set keep the imported values.
type Placement struct {
	Frame      int      `yaml:"frame"`
	X          *float64 `yaml:"x"`
	Y          *float64 `yaml:"y"`
	Width      *float64 `yaml:"width"`
	Height     *float64 `yaml:"height"`
	Rotation   *float64 `yaml:"rotation"`
	DurationMS *int     `yaml:"duration_ms"`
}

// DefaultConfig returns the settings used for keys missing from a project
// file.
func DefaultConfig() *Config {
	return &Config{
		Output:          "animation.gif",
		Language:        "en",
		Deduplicate:     true,
		FrameDurationMS: 100,
		MaxAttempts:     3,
		Canvas: Canvas{
			Quality:        gifbuilder.DefaultQuality,
			Background:     "#ffffff",
			AlphaThreshold: gifbuilder.DefaultAlphaThreshold,
			KeyMode:        "global",
		},
	}
}

// Load reads and parses a YAML project file.  Keys missing from the file
// keep the values from [DefaultConfig].
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read project %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("project %s: %w", path, err)
	}
	cfg.Dir = filepath.Dir(path)
	return cfg, nil
}

// Parse parses a YAML project and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	return cfg, cfg.Validate()
}

// Validate checks that all values are in range.
func (c *Config) Validate() error {
	if _, err := language.Parse(c.Language); err != nil {
		return fmt.Errorf("language %q: %w", c.Language, err)
	}
	if c.TargetKB < 0 {
		return errors.New("target_kb must be >= 0")
	}
	if c.MaxAttempts < 0 {
		return errors.New("max_attempts must be >= 0")
	}
	if c.FrameDurationMS < 0 {
		return errors.New("frame_duration_ms must be >= 0")
	}

	cv := &c.Canvas
	if cv.Width < 0 || cv.Height < 0 {
		return fmt.Errorf("invalid canvas size %dx%d", cv.Width, cv.Height)
	}
	if cv.Quality < gifbuilder.BestQuality || cv.Quality > gifbuilder.WorstQuality {
		return fmt.Errorf("quality must be in [%d, %d]", gifbuilder.BestQuality, gifbuilder.WorstQuality)
	}
	if cv.Loop < -1 || cv.Loop > 65535 {
		return fmt.Errorf("invalid loop count %d", cv.Loop)
	}
	if cv.AlphaThreshold < 0 || cv.AlphaThreshold > 255 {
		return fmt.Errorf("alpha_threshold must be in [0, 255]")
	}
	if _, err := transparency.ParseKey(cv.Background); err != nil {
		return fmt.Errorf("background: %w", err)
	}
	if cv.KeyColor != "" {
		if _, err := transparency.ParseKey(cv.KeyColor); err != nil {
			return fmt.Errorf("key_color: %w", err)
		}
	}
	if _, err := ParseKeyMode(cv.KeyMode); err != nil {
		return err
	}
	if bg := cv.BackgroundImage; bg != nil && bg.File == "" {
		return errors.New("background_image: file is required")
	}

	for i, p := range c.Frames {
		if p.Frame < 0 {
			return fmt.Errorf("frames[%d]: invalid frame index %d", i, p.Frame)
		}
		if p.Width != nil && *p.Width <= 0 || p.Height != nil && *p.Height <= 0 {
			return fmt.Errorf("frames[%d]: width and height must be > 0", i)
		}
		if p.DurationMS != nil && *p.DurationMS < 0 {
			return fmt.Errorf("frames[%d]: duration_ms must be >= 0", i)
		}
	}
	return nil
}

// ParseKeyMode converts the name of a key mode into a [gifbuilder.KeyMode].
// The empty string selects the global mode.
func ParseKeyMode(s string) (gifbuilder.KeyMode, error) {
	switch s {
	case "", "global":
		return gifbuilder.KeyGlobal, nil
	case "per-frame", "per_frame":
		return gifbuilder.KeyPerFrame, nil
	default:
		return 0, fmt.Errorf("unsupported key_mode %q (use global or per-frame)", s)
	}
}

// TargetBytes returns the output size target in bytes, or zero if no
// target is set.
func (c *Config) TargetBytes() int64 { return c.TargetKB * 1024 }

// FrameDuration returns the default frame duration.
func (c *Config) FrameDuration() time.Duration {
	return time.Duration(c.FrameDurationMS) * time.Millisecond
}

// Path resolves a path from the project file.
func (c *Config) Path(name string) string {
	if filepath.IsAbs(name) || c.Dir == "" {
		return name
	}
	return filepath.Join(c.Dir, name)
}

// InputPaths returns the input files, resolved against the project
// directory.
func (c *Config) InputPaths() []string {
	res := make([]string, len(c.Inputs))
	for i, name := range c.Inputs {
		res[i] = c.Path(name)
	}
	return res
}

// CanvasSpec builds the canvas description.  Zero width or height in the
// configuration are replaced by the corresponding component of size.
// The background image, if configured, must be loaded by the caller and
// passed as bg; if bg is nil, no background image is used.
func (c *Config) CanvasSpec(size image.Point, bg image.Image) (*gifbuilder.CanvasSpec, error) {
	cv := &c.Canvas
	w, h := cv.Width, cv.Height
	if w == 0 {
		w = size.X
	}
	if h == 0 {
		h = size.Y
	}

	spec := gifbuilder.NewCanvasSpec(w, h)
	spec.Quality = cv.Quality
	spec.LoopCount = cv.Loop
	spec.Transparent = cv.Transparent
	spec.AlphaThreshold = uint8(cv.AlphaThreshold)

	background, err := transparency.ParseKey(cv.Background)
	if err != nil {
		return nil, fmt.Errorf("background: %w", err)
	}
	spec.Background = color.NRGBA{R: background.R, G: background.G, B: background.B, A: 255}

	if cv.KeyColor != "" {
		key, err := transparency.ParseKey(cv.KeyColor)
		if err != nil {
			return nil, fmt.Errorf("key_color: %w", err)
		}
		spec.KeyColor = &key
	}
	spec.KeyMode, err = ParseKeyMode(cv.KeyMode)
	if err != nil {
		return nil, err
	}

	if cv.BackgroundImage != nil && bg != nil {
		spec.BackgroundImage = &gifbuilder.BackgroundImage{
			Image:  bg,
			X:      cv.BackgroundImage.X,
			Y:      cv.BackgroundImage.Y,
			Width:  cv.BackgroundImage.Width,
			Height: cv.BackgroundImage.Height,
		}
	}

	return spec, spec.Validate()
}

// Apply returns a copy of the imported frames with the configured
// placements applied.
func (c *Config) Apply(frames []gifbuilder.PlacedFrame) ([]gifbuilder.PlacedFrame, error) {
	res := make([]gifbuilder.PlacedFrame, len(frames))
	copy(res, frames)
	for i, p := range c.Frames {
		if p.Frame >= len(res) {
			return nil, fmt.Errorf("frames[%d]: frame %d does not exist (%d frames imported)", i, p.Frame, len(res))
		}
		f := &res[p.Frame]
		if p.X != nil {
			f.X = *p.X
		}
		if p.Y != nil {
			f.Y = *p.Y
		}
		if p.Width != nil {
			f.Width = *p.Width
		}
		if p.Height != nil {
			f.Height = *p.Height
		}
		if p.Rotation != nil {
			f.Rotation = *p.Rotation
		}
		if p.DurationMS != nil {
			f.Duration = time.Duration(*p.DurationMS) * time.Millisecond
		}
	}
	return res, nil
}
