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

package compose

import (
	"image"

	"seehuhn.de/go/gifbuilder"
	"seehuhn.de/go/gifbuilder/transparency"
)

// prepMode describes how a source image is preprocessed before drawing.
type prepMode uint8

const (
	prepPlain prepMode = iota
	prepBinarize
	prepChroma
)

// prepKey identifies a preprocessed source image.
type prepKey struct {
	src       *gifbuilder.Source
	mode      prepMode
	key       transparency.Key
	threshold uint8
}

// SourceCache keeps preprocessed source images, so that repeated passes
// over the same frames do not convert the same image again.  The least
// recently used image is dropped when the cache is full.
//
// A SourceCache must not be used concurrently.
type SourceCache struct {
	capacity    int
	entries     map[prepKey]*cacheEntry
	first, last *cacheEntry
}

type cacheEntry struct {
	prev, next *cacheEntry
	key        prepKey
	img        *image.NRGBA
}

// NewSourceCache creates a cache which holds up to capacity images.
func NewSourceCache(capacity int) *SourceCache {
	return &SourceCache{
		capacity: capacity,
		entries:  make(map[prepKey]*cacheEntry, capacity),
	}
}

// Len returns the number of cached images.
func (l *SourceCache) Len() int {
	return len(l.entries)
}

func (l *SourceCache) put(key prepKey, img *image.NRGBA) {
	if l.capacity <= 0 {
		return
	}

	if ent, ok := l.entries[key]; ok {
		ent.img = img
		l.moveToFront(ent)
		return
	}

	ent := &cacheEntry{
		key: key,
		img: img,
	}
	l.entries[key] = ent
	l.moveToFront(ent)

	if len(l.entries) > l.capacity {
		l.removeLast()
	}
}

func (l *SourceCache) get(key prepKey) (*image.NRGBA, bool) {
	ent, ok := l.entries[key]
	if !ok {
		return nil, false
	}

	l.moveToFront(ent)
	return ent.img, true
}

func (l *SourceCache) moveToFront(ent *cacheEntry) {
	if ent == l.first {
		return
	}

	if ent.prev != nil {
		ent.prev.next = ent.next
	}
	if ent.next != nil {
		ent.next.prev = ent.prev
	}
	if ent == l.last {
		l.last = ent.prev
	}

	ent.prev = nil
	ent.next = l.first
	if l.first != nil {
		l.first.prev = ent
	}
	l.first = ent
	if l.last == nil {
		l.last = ent
	}
}

func (l *SourceCache) removeLast() {
	if l.last == nil {
		return
	}

	delete(l.entries, l.last.key)
	if l.last.prev != nil {
		l.last.prev.next = nil
	}
	l.last = l.last.prev
}
