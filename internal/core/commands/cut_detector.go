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
// command that turns the similarity series into scene boundaries.
//
// Logic Flow:
// A sample pair whose combined similarity drops below the absolute threshold
// is a cut candidate. Candidates are then thinned with a greedy minimum-gap
// rule: walking left to right, a candidate is kept only when it is at least
// one minimum scene length after the PREVIOUSLY KEPT cut, so a noisy
// transition producing a burst of adjacent candidates collapses into one
// cut. The final sample is always appended as the closing boundary. If no
// candidate exists at all the video is considered one unbroken take and the
// command emits an empty scene list rather than a single video-length scene.
package commands

import (
	"github.com/lecturelab/go-scene-detect/internal/core/cor"
	"github.com/lecturelab/go-scene-detect/internal/core/model"
)

// CutDetector converts a similarity series into a list of scenes.
type CutDetector struct {
	cor.BaseCommand
	options model.Options
}

// NewCutDetector is the constructor for the CutDetector command.
func NewCutDetector(name string, options model.Options) *CutDetector {
	return &CutDetector{
		BaseCommand: *cor.NewBaseCommand(name),
		options:     options,
	}
}

// Execute detects cuts and builds the scene list with native-frame
// boundaries and formatted timestamps.
func (c *CutDetector) Execute(context cor.Context) {
	series := context.Get(c.GetInputParam()).(model.SimilaritySeries)

	boundaries := DetectCuts(series.Combined, c.options.AbsMin, c.options.MinGapSamples())

	scenes := make([]*model.Scene, 0, len(boundaries))
	if len(boundaries) > 0 {
		// Close the last scene at the final sample of the video.
		last := len(series.Seconds) - 1
		if boundaries[len(boundaries)-1] != last {
			boundaries = append(boundaries, last)
		}

		start := 0
		for _, end := range boundaries {
			scenes = append(scenes, &model.Scene{
				FrameStart: series.Plan.SampleFrame(start),
				FrameEnd:   series.Plan.SampleFrame(end),
				Start:      model.FormatTimestamp(series.Seconds[start]),
				End:        model.FormatTimestamp(series.Seconds[end]),
				Phrases:    []string{},
			})
			start = end
		}
	}

	c.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(c.GetOutputParam(), scenes)
	context.Add(cor.CtxOut, scenes)
}

// DetectCuts returns the sample indices at which a new scene begins, after
// threshold selection and minimum-gap thinning. combined[i] scores sample i
// against sample i+1, so a drop at index i places the cut at sample i+1.
func DetectCuts(combined []float64, absMin float64, minGap int) []int {
	cuts := make([]int, 0)
	lastKept := -minGap - 1
	for i, score := range combined {
		if score >= absMin {
			continue
		}
		cut := i + 1
		if cut-lastKept < minGap {
			continue
		}
		cuts = append(cuts, cut)
		lastKept = cut
	}
	return cuts
}
