// Copyright 2024 Google, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package commands provides the concrete implementations of the Chain of
// Responsibility (COR) pattern's Command interface. This file defines the
// command that guesses each scene's slide title from its OCR geometry.
//
// Logic Flow:
// Titles on lecture slides tend to be the tallest text, near the top, and
// roughly centered. The detector scores every confident word on those three
// features, picks the best-scoring word as the anchor, then sweeps narrow
// horizontal bands around the anchor's row collecting words of comparable
// height into the title, left to right. Adjacent rows are searched only when
// one side of the anchor row found nothing, so a two-line title is picked up
// without swallowing the slide body.
//
// Word heights are normalized before scoring: ascenders, descenders and
// capitals make a word's bounding box taller without the font being any
// bigger, so such words have their height discounted before comparison.
package commands

import (
	"math"
	"sort"
	"strings"

	"github.com/lecturelab/go-scene-detect/internal/core/cor"
	"github.com/lecturelab/go-scene-detect/internal/core/model"
	"github.com/lecturelab/go-scene-detect/internal/ocr"
	"github.com/lecturelab/go-scene-detect/internal/vision"
)

// Title detection tuning.
const (
	// titleMaxWords caps how many words a title can collect before the
	// adjacent-row extension stops.
	titleMaxWords = 20
	// titleSameLineFactor is the allowed height variation for words counted
	// as being on the anchor's line.
	titleSameLineFactor = 0.42
	// titleHeightScale discounts the height of words whose glyphs extend
	// above or below the x-height band.
	titleHeightScale = 1.10
	// titleSearchRange sizes the row-search bands relative to the anchor
	// word's height.
	titleSearchRange = 0.6

	// Scoring weights: height, vertical position, horizontal centering.
	titleWeightHeight   = 0.4
	titleWeightVertical = 0.5
	titleWeightCenter   = 0.1
)

// Characters that stretch a lowercase word's bounding box upward or
// downward.
const (
	ascenderChars  = "bdfhijklt?!"
	descenderChars = "gjpqy"
)

// TitleDetector fills in the Title of every scene that has OCR text.
type TitleDetector struct {
	cor.BaseCommand
	options model.Options
}

// NewTitleDetector is the constructor for the TitleDetector command.
func NewTitleDetector(name string, options model.Options) *TitleDetector {
	return &TitleDetector{
		BaseCommand: *cor.NewBaseCommand(name),
		options:     options,
	}
}

// Execute runs title detection over each enriched scene. Scenes without
// usable text keep an empty title; this command never fails a run.
func (c *TitleDetector) Execute(context cor.Context) {
	scenes := context.Get(c.GetInputParam()).([]*model.Scene)
	handle := context.Get(GetVideoHandleParameterName()).(*vision.VideoHandle)

	for _, scene := range scenes {
		scene.Title = DetectTitle(scene.RawText, c.options.TitleOCRMin, float64(handle.Width()))
	}

	c.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(c.GetOutputParam(), scenes)
	context.Add(cor.CtxOut, scenes)
}

// titleWord is one scoring candidate: a confident token reduced to its text
// and center-point geometry.
type titleWord struct {
	text   string
	height float64 // scaled height
	row    float64 // vertical center of the bounding box
	col    float64 // horizontal center of the bounding box
}

// DetectTitle returns the most probable slide title for one OCR token table
// on a frame of the given width, or "" when no token passes the confidence
// floor. A non-positive frameWidth falls back to the widest token extent.
func DetectTitle(tokens ocr.TokenTable, minConfidence, frameWidth float64) string {
	words := make([]titleWord, 0, len(tokens))
	frameRight := frameWidth
	for _, tok := range tokens {
		if tok.Confidence < minConfidence {
			continue
		}
		words = append(words, titleWord{
			text:   tok.Text,
			height: scaledHeight(tok.Text, float64(tok.Height)),
			row:    float64(tok.Top) + 0.5*float64(tok.Height),
			col:    float64(tok.Left) + 0.5*float64(tok.Width),
		})
		if right := float64(tok.Left + tok.Width); right > frameRight {
			frameRight = right
		}
	}
	if len(words) == 0 {
		return ""
	}

	anchor := words[scoreAnchor(words, frameRight/2.0)]

	minHeight := anchor.height * (1 - titleSameLineFactor)
	maxHeight := anchor.height * (1 + titleSameLineFactor)

	// Six boundaries carve five horizontal bands around the anchor row; the
	// middle three are always searched, the outer two only as extensions.
	var bounds [6]float64
	for i, m := range [6]float64{-5, -3, -1, 1, 3, 5} {
		bounds[i] = anchor.row + m*titleSearchRange*anchor.height
	}

	var title []string
	var foundAbove, foundBelow bool
	for i := 1; i < 4; i++ {
		line := wordsInBand(words, bounds[i], bounds[i+1], minHeight, maxHeight)
		if len(line) > 0 {
			title = append(title, line...)
			if i == 1 {
				foundAbove = true
			}
			if i == 3 {
				foundBelow = true
			}
		}
	}

	if foundAbove && !foundBelow && len(title) < titleMaxWords {
		title = append(wordsInBand(words, bounds[0], bounds[1], minHeight, maxHeight), title...)
	}
	if foundBelow && !foundAbove && len(title) < titleMaxWords {
		title = append(title, wordsInBand(words, bounds[4], bounds[5], minHeight, maxHeight)...)
	}

	return strings.Join(title, " ")
}

// scoreAnchor returns the index of the best title candidate.
func scoreAnchor(words []titleWord, centerCol float64) int {
	heights := make([]float64, len(words))
	rows := make([]float64, len(words))
	offsets := make([]float64, len(words))
	for i, w := range words {
		heights[i] = w.height
		rows[i] = w.row
		offsets[i] = math.Abs(w.col - centerCol)
	}
	heightScore := normalize(heights, false)
	rowScore := normalize(rows, true)       // higher on the slide is better
	centerScore := normalize(offsets, true) // closer to center is better

	best := 0
	bestScore := math.Inf(-1)
	for i := range words {
		score := titleWeightHeight*heightScore[i] +
			titleWeightVertical*rowScore[i] +
			titleWeightCenter*centerScore[i]
		if score > bestScore {
			bestScore = score
			best = i
		}
	}
	return best
}

// normalize min-max scales data to [0,1]; with inverse set, the maximum maps
// to 0 and the minimum to 1. When all values are equal the relative ranking
// is meaningless and every entry maps to 1.
func normalize(data []float64, inverse bool) []float64 {
	lo, hi := data[0], data[0]
	for _, v := range data {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	out := make([]float64, len(data))
	if hi == lo {
		for i := range out {
			out[i] = 1
		}
		return out
	}
	for i, v := range data {
		s := (v - lo) / (hi - lo)
		if inverse {
			s = 1 - s
		}
		out[i] = s
	}
	return out
}

// scaledHeight discounts a word's bounding-box height for glyphs that extend
// beyond the x-height band: one discount for anything reaching up (capitals
// or ascenders), an independent one for anything reaching down.
func scaledHeight(text string, height float64) float64 {
	if strings.ToLower(text) != text || strings.ContainsAny(text, ascenderChars) {
		height /= titleHeightScale
	}
	if strings.ContainsAny(text, descenderChars) {
		height /= titleHeightScale
	}
	return height
}

// wordsInBand collects words whose row center falls in [rowLow, rowHigh) and
// whose scaled height lies strictly between the line-height bounds, ordered
// left to right.
func wordsInBand(words []titleWord, rowLow, rowHigh, minHeight, maxHeight float64) []string {
	picked := make([]titleWord, 0)
	for _, w := range words {
		if w.row >= rowLow && w.row < rowHigh && w.height > minHeight && w.height < maxHeight {
			picked = append(picked, w)
		}
	}
	sort.SliceStable(picked, func(i, j int) bool { return picked[i].col < picked[j].col })

	out := make([]string, len(picked))
	for i, w := range picked {
		out[i] = w.text
	}
	return out
}
