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

// Options are the tunables of one detection run. The zero value is not
// useful; start from DefaultOptions.
type Options struct {
	// TargetFPS is the analysis sampling rate in frames per second. The
	// detector never samples faster than the native rate of the video.
	TargetFPS float64
	// MinSceneLength is the shortest allowed scene, in seconds. Cut
	// candidates closer than this to the previously kept cut are merged.
	MinSceneLength float64
	// AbsMin is the combined-similarity threshold below which a sample pair
	// is a cut candidate.
	AbsMin float64

	// Weights of the three similarity signals. They are renormalized by
	// Weights() when masking or OCR is disabled.
	StructuralWeight float64
	MaskedWeight     float64
	TextWeight       float64

	// FaceMasking enables the presenter-masked structural signal.
	FaceMasking bool
	// OCRSimilarity enables the text-overlap signal.
	OCRSimilarity bool

	// CascadeFile is the Haar cascade model path used for face detection.
	CascadeFile string

	// OCR confidence floors for, respectively, the similarity pass, the
	// key-frame extraction pass, and title detection.
	SimilarityOCRMin float64
	ExtractOCRMin    float64
	TitleOCRMin      float64

	// DataDir is where extracted key-frame images are written, one
	// subdirectory per video.
	DataDir string
}

// DefaultOptions returns the tuning that ships with the detector.
func DefaultOptions() Options {
	return Options{
		TargetFPS:        2,
		MinSceneLength:   1,
		AbsMin:           0.7,
		StructuralWeight: 0.3,
		MaskedWeight:     0.3,
		TextWeight:       0.4,
		FaceMasking:      true,
		OCRSimilarity:    true,
		SimilarityOCRMin: 60,
		ExtractOCRMin:    80,
		TitleOCRMin:      70,
		DataDir:          "data",
	}
}

// Weights returns the effective (structural, masked, text) weights after
// accounting for disabled signals. Disabling one signal splits its weight
// evenly between the remaining two; disabling both extras puts everything on
// the raw structural score.
func (o Options) Weights() (structural, masked, text float64) {
	switch {
	case o.FaceMasking && o.OCRSimilarity:
		return o.StructuralWeight, o.MaskedWeight, o.TextWeight
	case o.FaceMasking:
		return 0.5, 0.5, 0
	case o.OCRSimilarity:
		return 0.5, 0, 0.5
	default:
		return 1.0, 0, 0
	}
}

// MinGapSamples is the cut-merge distance in sample space: the number of
// analysis samples spanning MinSceneLength.
func (o Options) MinGapSamples() int {
	gap := int(o.MinSceneLength * o.TargetFPS)
	if gap < 1 {
		gap = 1
	}
	return gap
}

// SamplingPlan fixes how a video is walked during analysis: every EveryN-th
// native frame is a sample, NumSamples times. Sample index i maps to native
// frame i*EveryN.
type SamplingPlan struct {
	Path       string
	FPS        float64
	FrameCount int
	Width      int
	Height     int
	EveryN     int
	NumSamples int
}

// NewSamplingPlan derives the analysis stride from the native frame rate and
// the requested sampling rate. The stride is never below one native frame,
// so a video slower than targetFPS is sampled at its native rate.
func NewSamplingPlan(path string, fps float64, frameCount, width, height int, targetFPS float64) SamplingPlan {
	everyN := 1
	if targetFPS > 0 && fps > targetFPS {
		everyN = int(fps / targetFPS)
	}
	return SamplingPlan{
		Path:       path,
		FPS:        fps,
		FrameCount: frameCount,
		Width:      width,
		Height:     height,
		EveryN:     everyN,
		NumSamples: frameCount / everyN,
	}
}

// SampleFrame maps a sample index to its native frame number.
func (p SamplingPlan) SampleFrame(i int) int {
	return i * p.EveryN
}

// SimilaritySeries is the output of the similarity pass. Seconds[i] is the
// playback position of sample i as reported by the decoder (NumSamples
// entries). Combined[i] scores sample i against sample i+1, so it has one
// entry fewer.
type SimilaritySeries struct {
	Plan     SamplingPlan
	Combined []float64
	Seconds  []float64
}
