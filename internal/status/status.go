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

// Package status provides the localized progress messages shown while
// animations are imported and encoded.
package status

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Supported lists the languages with translated messages.
// The first entry is used when no better match is found.
var Supported = []language.Tag{
	language.English,
	language.SimplifiedChinese,
}

// Message keys.  The keys double as English format strings.
const (
	keyPreparing        = "Preparing..."
	keyInitializing     = "Initializing GIF encoder..."
	keyRendering        = "Rendering GIF... %d%%"
	keyProcessingFrames = "Processing frames..."
	keyProcessingFrame  = "Processing frame %d/%d..."
	keyCompressing      = "File too large (%sMB > %sMB), compressing attempt %d..."
	keyCompressionTag   = "[Compression %d] "
	keyCompleted        = "Generation complete!"
	keyOptimizing       = "Removing duplicate frames..."
	keyFindingKey       = "Finding common transparent key color..."
	keyImportingGIF     = "Decoding GIF frame %d/%d..."
	keyExtractingZIP    = "Extracting file %d/%d from ZIP archive..."
	keyImportingImages  = "Importing image %d/%d..."
)

var chinese = map[string]string{
	keyPreparing:        "准备开始...",
	keyInitializing:     "正在初始化 GIF 编码器...",
	keyRendering:        "正在渲染 GIF... %d%%",
	keyProcessingFrames: "正在处理帧画面...",
	keyProcessingFrame:  "正在处理第 %d/%d 帧...",
	keyCompressing:      "文件过大 (%sMB > %sMB)，正在进行第 %d 次压缩...",
	keyCompressionTag:   "[压缩 %d] ",
	keyCompleted:        "生成完成！",
	keyOptimizing:       "正在移除重复帧...",
	keyFindingKey:       "正在查找通用透明色...",
	keyImportingGIF:     "正在解析 GIF 第 %d/%d 帧...",
	keyExtractingZIP:    "正在从 ZIP 压缩包中提取第 %d/%d 个文件...",
	keyImportingImages:  "正在导入第 %d/%d 张图片...",
}

var messages catalog.Catalog = buildCatalog()

func buildCatalog() catalog.Catalog {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for key, msg := range chinese {
		if err := b.SetString(language.SimplifiedChinese, key, msg); err != nil {
			panic(err)
		}
		if err := b.SetString(language.English, key, key); err != nil {
			panic(err)
		}
	}
	return b
}

var matcher = language.NewMatcher(Supported)

// Texts formats progress messages in one language.
// A Texts value is safe for concurrent use.
type Texts struct {
	tag language.Tag
	p   *message.Printer
}

// New returns the messages for the supported language which best
// matches tag.
func New(tag language.Tag) *Texts {
	_, idx, _ := matcher.Match(tag)
	t := Supported[idx]
	return &Texts{
		tag: t,
		p:   message.NewPrinter(t, message.Catalog(messages)),
	}
}

// Parse is like [New], but takes a BCP 47 language string such as "en" or
// "zh-CN".  Unknown or malformed strings select English.
func Parse(lang string) *Texts {
	tag, err := language.Parse(lang)
	if err != nil {
		return english
	}
	return New(tag)
}

// FromAcceptLanguage selects the messages for an HTTP Accept-Language
// header.
func FromAcceptLanguage(header string) *Texts {
	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil || len(tags) == 0 {
		return english
	}
	_, idx, _ := matcher.Match(tags...)
	return New(Supported[idx])
}

var english = New(language.English)

// Default returns the English messages.
func Default() *Texts {
	return english
}

// Language returns the language of the messages.
func (t *Texts) Language() language.Tag {
	return t.tag
}

// Preparing is shown before any work has been done.
func (t *Texts) Preparing() string {
	return t.p.Sprintf(keyPreparing)
}

// Initializing is shown while the encoder is set up.
func (t *Texts) Initializing() string {
	return t.p.Sprintf(keyInitializing)
}

// Rendering reports the progress of the palette encoder in percent.
func (t *Texts) Rendering(percent int) string {
	return t.p.Sprintf(keyRendering, percent)
}

// ProcessingFrames is shown before the first frame is composited.
func (t *Texts) ProcessingFrames() string {
	return t.p.Sprintf(keyProcessingFrames)
}

// ProcessingFrame reports that frame i of n is composited.
// Frames are counted from 1.
func (t *Texts) ProcessingFrame(i, n int) string {
	return t.p.Sprintf(keyProcessingFrame, i, n)
}

// Compressing reports that the output of size sizeMB exceeded the target
// and that the given compression attempt starts.
func (t *Texts) Compressing(sizeMB, targetMB string, attempt int) string {
	return t.p.Sprintf(keyCompressing, sizeMB, targetMB, attempt)
}

// CompressionAttempt is a prefix for messages shown during compression
// attempt n.
func (t *Texts) CompressionAttempt(n int) string {
	return t.p.Sprintf(keyCompressionTag, n)
}

// Completed is shown when the encoder has finished.
func (t *Texts) Completed() string {
	return t.p.Sprintf(keyCompleted)
}

// Optimizing is shown while duplicate frames are merged.
func (t *Texts) Optimizing() string {
	return t.p.Sprintf(keyOptimizing)
}

// FindingKey is shown during the search for a global transparency key.
func (t *Texts) FindingKey() string {
	return t.p.Sprintf(keyFindingKey)
}

// ImportingGIF reports that frame i of n of a GIF file is decoded.
func (t *Texts) ImportingGIF(i, n int) string {
	return t.p.Sprintf(keyImportingGIF, i, n)
}

// ExtractingZIP reports that entry i of n of a ZIP archive is read.
func (t *Texts) ExtractingZIP(i, n int) string {
	return t.p.Sprintf(keyExtractingZIP, i, n)
}

// ImportingImages reports that input i of n is decoded.
func (t *Texts) ImportingImages(i, n int) string {
	return t.p.Sprintf(keyImportingImages, i, n)
}
