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

package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatTimestamp(t *testing.T) {
	assert.Equal(t, "00:00:00.000", FormatTimestamp(0))
	assert.Equal(t, "00:01:05.250", FormatTimestamp(65.25))
	assert.Equal(t, "01:00:00.000", FormatTimestamp(3600))
	assert.Equal(t, "02:46:40.123", FormatTimestamp(10000.1239), "milliseconds truncate, never round")
	assert.Equal(t, "00:00:00.000", FormatTimestamp(-5), "negative positions clamp to zero")
}

func TestFormatTimestampWidth(t *testing.T) {
	for _, s := range []float64{0, 0.001, 59.999, 61, 3599.5, 86399} {
		assert.Len(t, FormatTimestamp(s), 12)
	}
}

func TestNewSamplingPlanStride(t *testing.T) {
	plan := NewSamplingPlan("a.mp4", 30, 3000, 1280, 720, 2)
	assert.Equal(t, 15, plan.EveryN)
	assert.Equal(t, 200, plan.NumSamples)
	assert.Equal(t, 150, plan.SampleFrame(10))
}

func TestNewSamplingPlanSlowVideo(t *testing.T) {
	// A video slower than the target rate samples every native frame.
	plan := NewSamplingPlan("a.mp4", 1, 100, 640, 480, 2)
	assert.Equal(t, 1, plan.EveryN)
	assert.Equal(t, 100, plan.NumSamples)
}

func TestNewSamplingPlanFractionalStride(t *testing.T) {
	// 29.97 fps at 2 samples/sec floors to a stride of 14 frames.
	plan := NewSamplingPlan("a.mp4", 29.97, 1000, 640, 480, 2)
	assert.Equal(t, 14, plan.EveryN)
}

func TestWeightsAllSignals(t *testing.T) {
	s, m, x := DefaultOptions().Weights()
	assert.Equal(t, 0.3, s)
	assert.Equal(t, 0.3, m)
	assert.Equal(t, 0.4, x)
}

func TestWeightsCollapseWhenSignalsDisabled(t *testing.T) {
	opts := DefaultOptions()

	opts.OCRSimilarity = false
	s, m, x := opts.Weights()
	assert.Equal(t, [3]float64{0.5, 0.5, 0}, [3]float64{s, m, x})

	opts.OCRSimilarity = true
	opts.FaceMasking = false
	s, m, x = opts.Weights()
	assert.Equal(t, [3]float64{0.5, 0, 0.5}, [3]float64{s, m, x})

	opts.OCRSimilarity = false
	s, m, x = opts.Weights()
	assert.Equal(t, [3]float64{1, 0, 0}, [3]float64{s, m, x})
}

func TestMinGapSamples(t *testing.T) {
	opts := DefaultOptions()
	assert.Equal(t, 2, opts.MinGapSamples(), "1s minimum scene at 2 samples/sec")

	opts.MinSceneLength = 0
	assert.Equal(t, 1, opts.MinGapSamples(), "gap never drops below one sample")
}
