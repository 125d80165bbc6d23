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

package main

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"

	"seehuhn.de/go/gifbuilder"
)

const barWidth = 30

// progressBar draws progress reports on a terminal.
type progressBar struct {
	out     *os.File
	columns int

	percent int
	status  string
}

// newProgressBar returns nil if out is not a terminal.
func newProgressBar(out *os.File) *progressBar {
	fd := int(out.Fd())
	if !term.IsTerminal(fd) {
		return nil
	}
	columns, _, err := term.GetSize(fd)
	if err != nil || columns < barWidth+10 {
		columns = 80
	}
	return &progressBar{out: out, columns: columns, percent: -1}
}

// Func returns the progress callback for the bar.
func (b *progressBar) Func() gifbuilder.ProgressFunc {
	if b == nil {
		return nil
	}
	return b.update
}

func (b *progressBar) update(fraction float64, status string) {
	percent := int(fraction*100 + 0.5)
	if percent == b.percent && status == b.status {
		return
	}
	b.percent, b.status = percent, status

	filled := percent * barWidth / 100
	line := fmt.Sprintf("[%s%s] %3d%% %s",
		strings.Repeat("#", filled), strings.Repeat(" ", barWidth-filled), percent, status)
	if r := []rune(line); len(r) >= b.columns {
		line = string(r[:b.columns-1])
	}
	fmt.Fprintf(b.out, "\r\x1b[K%s", line)
}

// Done removes the bar from the terminal.
func (b *progressBar) Done() {
	if b == nil {
		return
	}
	fmt.Fprint(b.out, "\r\x1b[K")
}
