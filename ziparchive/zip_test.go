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

package ziparchive

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"seehuhn.de/go/gifbuilder"
)

type testFile struct {
	name string
	body string
}

func makeZip(t *testing.T, files ...testFile) []byte {
	t.Helper()
	buf := &bytes.Buffer{}
	zw := zip.NewWriter(buf)
	for _, f := range files {
		w, err := zw.Create(f.name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := io.WriteString(w, f.body); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func paths(files []File) []string {
	var res []string
	for _, f := range files {
		res = append(res, f.Path)
	}
	return res
}

func TestNaturalLess(t *testing.T) {
	names := []string{
		"frame_10.png",
		"frame_2.png",
		"Frame_3.png",
		"frame_1.png",
		"a/frame_1.png",
		"frame_02.png",
		"frame.png",
	}
	slices.SortFunc(names, naturalCompare)
	want := []string{
		"a/frame_1.png",
		"frame.png",
		"frame_1.png",
		"frame_02.png",
		"frame_2.png",
		"Frame_3.png",
		"frame_10.png",
	}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Errorf("unexpected order (-want +got):\n%s", diff)
	}
}

func TestNaturalLessLongNumbers(t *testing.T) {
	a := "img_99999999999999999999999.png"
	b := "img_100000000000000000000000.png"
	if !NaturalLess(a, b) || NaturalLess(b, a) {
		t.Error("long numbers compared incorrectly")
	}
	if NaturalLess(a, a) {
		t.Error("NaturalLess is not irreflexive")
	}
}

func TestExtractFiltersAndSorts(t *testing.T) {
	data := makeZip(t,
		testFile{"img10.PNG", "10"},
		testFile{"img2.jpg", "2"},
		testFile{"sub/", ""},
		testFile{"sub/img1.webp", "s1"},
		testFile{"__MACOSX/img1.png", "junk"},
		testFile{"sub/__MACOSX/img3.png", "junk"},
		testFile{".hidden.png", "junk"},
		testFile{"sub/._img1.webp", "junk"},
		testFile{"notes.txt", "junk"},
		testFile{"img1.gif", "1"},
	)

	x, err := Extract(data, nil)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"img1.gif", "img2.jpg", "img10.PNG", "sub/img1.webp"}
	if diff := cmp.Diff(want, paths(x.Files)); diff != "" {
		t.Errorf("unexpected files (-want +got):\n%s", diff)
	}
	if x.Files[3].Name != "img1.webp" || string(x.Files[3].Data) != "s1" {
		t.Errorf("unexpected entry %q with %q", x.Files[3].Name, x.Files[3].Data)
	}
	if x.Durations != nil || x.MetadataErr != nil {
		t.Errorf("unexpected metadata %v, %v", x.Durations, x.MetadataErr)
	}
}

func TestExtractMetadata(t *testing.T) {
	meta := `{
		"generatedBy": "test",
		"defaultFrameDuration": 80,
		"frames": [
			{"file": "frames/a.png", "duration": 250, "frameIndex": 0},
			{"file": "b.png", "duration": 40.5, "frameIndex": 1}
		]
	}`
	data := makeZip(t,
		testFile{"a.png", "a"},
		testFile{"b.png", "b"},
		testFile{"c.png", "c"},
		testFile{"nested/Metadata.JSON", meta},
	)

	x, err := Extract(data, nil)
	if err != nil {
		t.Fatal(err)
	}
	if x.MetadataErr != nil {
		t.Fatal(x.MetadataErr)
	}
	if diff := cmp.Diff([]string{"a.png", "b.png"}, x.MetadataNames()); diff != "" {
		t.Errorf("unexpected names (-want +got):\n%s", diff)
	}

	fallback := 500 * time.Millisecond
	got := []time.Duration{
		x.Duration("a.png", fallback),
		x.Duration("b.png", fallback),
		x.Duration("c.png", fallback),
	}
	want := []time.Duration{
		250 * time.Millisecond,
		40500 * time.Microsecond,
		80 * time.Millisecond,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("unexpected durations (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"a.png", "b.png", "c.png"}, paths(x.Files)); diff != "" {
		t.Errorf("metadata file listed as image (-want +got):\n%s", diff)
	}
}

func TestExtractInvalidMetadata(t *testing.T) {
	for _, meta := range []string{`{"frames": `, `{"totalFrames": 3}`} {
		data := makeZip(t,
			testFile{"a.png", "a"},
			testFile{"metadata.json", meta},
		)
		x, err := Extract(data, nil)
		if err != nil {
			t.Fatal(err)
		}
		if x.MetadataErr == nil {
			t.Errorf("%s: invalid metadata not reported", meta)
		}
		if d := x.Duration("a.png", time.Second); d != time.Second {
			t.Errorf("%s: duration %s, want fallback", meta, d)
		}
		if len(x.Files) != 1 {
			t.Errorf("%s: got %d files", meta, len(x.Files))
		}
	}
}

func TestExtractMalformed(t *testing.T) {
	_, err := Extract([]byte("PK but not a zip file"), nil)
	var malformed *gifbuilder.MalformedContainerError
	if !errors.As(err, &malformed) || malformed.Format != "zip" {
		t.Fatalf("got %v, want MalformedContainerError for zip", err)
	}
}

func TestExtractProgress(t *testing.T) {
	data := makeZip(t, testFile{"1.png", "1"}, testFile{"2.png", "2"})
	var fractions []float64
	_, err := Extract(data, func(f float64, _ string) {
		fractions = append(fractions, f)
	})
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]float64{0, 0.5, 1}, fractions); diff != "" {
		t.Errorf("unexpected progress (-want +got):\n%s", diff)
	}
}

func TestPackRoundTrip(t *testing.T) {
	entries := []Entry{
		{Name: "cat.JPG", Data: []byte("cat"), Duration: 120 * time.Millisecond},
		{Name: "dog", Data: []byte("dog"), Duration: 80 * time.Millisecond},
	}
	data, err := Pack(entries)
	if err != nil {
		t.Fatal(err)
	}

	x, err := Extract(data, nil)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"frame_001.JPG", "frame_002.png"}, paths(x.Files)); diff != "" {
		t.Errorf("unexpected names (-want +got):\n%s", diff)
	}
	if string(x.Files[0].Data) != "cat" || string(x.Files[1].Data) != "dog" {
		t.Error("file contents changed")
	}
	got := []time.Duration{x.Duration("frame_001.JPG", 0), x.Duration("frame_002.png", 0)}
	want := []time.Duration{120 * time.Millisecond, 80 * time.Millisecond}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("unexpected durations (-want +got):\n%s", diff)
	}
}

func TestPackWithoutDurations(t *testing.T) {
	data, err := Pack([]Entry{{Name: "a.png", Data: []byte("a")}})
	if err != nil {
		t.Fatal(err)
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	if diff := cmp.Diff([]string{"frame_001.png"}, names); diff != "" {
		t.Errorf("unexpected entries (-want +got):\n%s", diff)
	}
}

func TestPackMetadataFormat(t *testing.T) {
	data, err := Pack([]Entry{{Name: "a.png", Data: []byte("a"), Duration: 100 * time.Millisecond}})
	if err != nil {
		t.Fatal(err)
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatal(err)
	}
	var meta map[string]any
	for _, f := range zr.File {
		if f.Name != MetadataName {
			continue
		}
		body, err := readFile(f, -1)
		if err != nil {
			t.Fatal(err)
		}
		if err := json.Unmarshal(body, &meta); err != nil {
			t.Fatal(err)
		}
	}
	want := map[string]any{
		"generatedBy": "gifbuilder",
		"totalFrames": 1.0,
		"frames": []any{
			map[string]any{"file": "frame_001.png", "duration": 100.0, "frameIndex": 0.0},
		},
	}
	if diff := cmp.Diff(want, meta); diff != "" {
		t.Errorf("unexpected metadata (-want +got):\n%s", diff)
	}
}

func TestExtractSizeLimit(t *testing.T) {
	big := strings.Repeat("0", 1<<20)
	data := makeZip(t, testFile{"big.png", big})

	x := &Extractor{MaxBytes: 1000}
	_, err := x.Extract(data, nil)
	var malformed *gifbuilder.MalformedContainerError
	if !errors.As(err, &malformed) || !errors.Is(err, errTooLarge) {
		t.Errorf("got %v, want size limit error", err)
	}

	// The limit applies to the sum of all files.
	data = makeZip(t,
		testFile{"a.png", strings.Repeat("a", 600)},
		testFile{"b.png", strings.Repeat("b", 600)})
	if _, err := x.Extract(data, nil); !errors.Is(err, errTooLarge) {
		t.Errorf("got %v, want size limit error", err)
	}

	x.MaxBytes = 1200
	res, err := x.Extract(data, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Files) != 2 {
		t.Errorf("%d files, want 2", len(res.Files))
	}

	x.MaxBytes = -1
	if _, err := x.Extract(makeZip(t, testFile{"big.png", big}), nil); err != nil {
		t.Errorf("unlimited extraction failed: %v", err)
	}
}
