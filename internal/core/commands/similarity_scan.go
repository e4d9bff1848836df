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
// similarity pass: the command that walks the sampling plan and scores how
// similar every consecutive sample pair is.
//
// Logic Flow:
// For each sample the command decodes one native frame and derives two
// low-resolution views of it: a coarse grayscale plane for structural
// comparison, and a slightly larger grayscale image that is handed to OCR.
// Three signals are computed against the previous sample:
//
//  1. Raw structural similarity (SSIM) over the coarse planes.
//  2. Masked structural similarity: the same comparison after blanking the
//     presenter regions (faces plus inferred bodies) of BOTH samples in both
//     planes, so a lecturer walking across the slide does not read as a cut.
//  3. Text overlap: the confidence-weighted word-bag overlap of the two OCR
//     results, which is robust against animations that leave the slide text
//     unchanged.
//
// The weighted combination of the three is one point of the similarity
// series the cut detector consumes. Everything here runs sequentially on
// purpose: the decoder handle supports no concurrent seeking.
package commands

import (
	"fmt"
	"image"
	"log/slog"

	"gocv.io/x/gocv"

	"github.com/lecturelab/go-scene-detect/internal/core/cor"
	"github.com/lecturelab/go-scene-detect/internal/core/model"
	"github.com/lecturelab/go-scene-detect/internal/ocr"
	"github.com/lecturelab/go-scene-detect/internal/vision"
)

// Analysis resolutions. Structural comparison runs on a coarse plane where
// compression noise averages out; OCR gets a larger image because Tesseract
// needs more pixels per glyph than SSIM needs per window.
const (
	coarseWidth  = 320
	coarseHeight = 240
	ocrWidth     = 480
	ocrHeight    = 360
)

// SimilarityScan walks the sampling plan and emits the combined similarity
// series for consecutive sample pairs.
type SimilarityScan struct {
	cor.BaseCommand
	options model.Options
	faces   *vision.FaceDetector // nil when face masking is disabled
	engine  *ocr.QuotaAwareEngine
}

// NewSimilarityScan is the constructor for the SimilarityScan command. The
// detector may be nil when masking is disabled, and the engine may be nil
// when text similarity is disabled; the weights collapse accordingly.
func NewSimilarityScan(
	name string,
	options model.Options,
	faces *vision.FaceDetector,
	engine *ocr.QuotaAwareEngine) *SimilarityScan {
	return &SimilarityScan{
		BaseCommand: *cor.NewBaseCommand(name),
		options:     options,
		faces:       faces,
		engine:      engine,
	}
}

// scanSample is everything the scan keeps about one decoded sample once the
// Mats backing it have been released.
type scanSample struct {
	plane vision.Plane
	rects []image.Rectangle
	bag   ocr.Bag
}

// Execute runs the sequential similarity scan.
func (c *SimilarityScan) Execute(context cor.Context) {
	plan := context.Get(c.GetInputParam()).(model.SamplingPlan)
	handle := context.Get(GetVideoHandleParameterName()).(*vision.VideoHandle)

	ws, wm, wt := c.options.Weights()

	series := model.SimilaritySeries{
		Plan:     plan,
		Combined: make([]float64, 0, plan.NumSamples),
		Seconds:  make([]float64, 0, plan.NumSamples),
	}

	var prev *scanSample
	for i := 0; i < plan.NumSamples; i++ {
		handle.Seek(plan.SampleFrame(i))
		frame, ok := handle.ReadFrame()
		if !ok {
			c.GetErrorCounter().Add(context.GetContext(), 1)
			context.AddError(c.GetName(), &model.PipelineError{
				Kind:  model.KindMediaUnreadable,
				Phase: model.PhaseSimilarity,
				Path:  plan.Path,
				Err:   fmt.Errorf("decode failed at sample %d (frame %d)", i, plan.SampleFrame(i)),
			})
			return
		}
		series.Seconds = append(series.Seconds, handle.PosSeconds())

		cur, err := c.analyzeSample(context, frame)
		if err != nil {
			// OCR hiccups should not kill a multi-hour video run; the
			// sample just contributes an empty text bag.
			slog.WarnContext(context.GetContext(), "sample analysis degraded",
				"command", c.GetName(), "sample", i, "error", err)
		}

		if prev != nil {
			combined := ws * vision.SSIM(prev.plane, cur.plane)
			if wm > 0 {
				combined += wm * maskedSSIM(prev, cur)
			}
			if wt > 0 {
				combined += wt * ocr.Overlap(prev.bag, cur.bag)
			}
			series.Combined = append(series.Combined, combined)
		}
		prev = cur
	}

	c.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(c.GetOutputParam(), series)
	context.Add(cor.CtxOut, series)
}

// analyzeSample derives the comparison views of one native frame. A non-nil
// error reports a degraded (not failed) sample: the structural plane is
// always valid, only the text bag may be empty.
func (c *SimilarityScan) analyzeSample(context cor.Context, frame gocv.Mat) (*scanSample, error) {
	out := &scanSample{bag: ocr.Bag{}}

	coarse := vision.DownscaleGray(frame, coarseWidth, coarseHeight)
	defer coarse.Close()
	out.plane = vision.MatToPlane(coarse)

	if c.faces != nil {
		_, out.rects = vision.PresenterRects(
			c.faces.DetectFaces(coarse), coarseWidth, coarseHeight)
	}

	if c.engine != nil {
		text := vision.DownscaleGray(frame, ocrWidth, ocrHeight)
		defer text.Close()
		img, err := vision.EncodePNG(text)
		if err != nil {
			return out, err
		}
		tokens, err := c.engine.Tokens(context.GetContext(), img)
		if err != nil {
			return out, err
		}
		out.bag = tokens.ConfidenceBag(c.options.SimilarityOCRMin)
	}
	return out, nil
}

// maskedSSIM compares the two coarse planes with the presenter regions of
// BOTH samples blanked in both planes. Masking the union keeps the
// comparison symmetric: a region is either visible in both images or in
// neither.
func maskedSSIM(a, b *scanSample) float64 {
	if len(a.rects) == 0 && len(b.rects) == 0 {
		return vision.SSIM(a.plane, b.plane)
	}
	union := make([]image.Rectangle, 0, len(a.rects)+len(b.rects))
	union = append(union, a.rects...)
	union = append(union, b.rects...)

	ma := a.plane.Clone()
	mb := b.plane.Clone()
	vision.MaskRects(ma, union)
	vision.MaskRects(mb, union)
	return vision.SSIM(ma, mb)
}
