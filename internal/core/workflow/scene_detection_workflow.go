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

// Package workflow defines the high-level business logic orchestrations,
// combining various commands into coherent pipelines. This file implements
// the scene-detection workflow: probe, similarity scan, cut detection,
// key-frame extraction, and title detection, chained in that order.
package workflow

import (
	goctx "context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/lecturelab/go-scene-detect/internal/core/commands"
	"github.com/lecturelab/go-scene-detect/internal/core/cor"
	"github.com/lecturelab/go-scene-detect/internal/core/model"
	"github.com/lecturelab/go-scene-detect/internal/ocr"
	"github.com/lecturelab/go-scene-detect/internal/vision"
)

// GetSceneOutputParameterName returns the context key where the finished
// scene list is published at the end of the chain.
func GetSceneOutputParameterName() string {
	return "pipeline.scenes.result"
}

// SceneDetectionWorkflow orchestrates one video's journey from file path to
// scene list. The workflow itself is a Command, so it can be embedded in
// larger chains; FindScenes is the plain-Go facade most callers want.
type SceneDetectionWorkflow struct {
	cor.BaseCommand
	options model.Options
	faces   *vision.FaceDetector
	engine  *ocr.QuotaAwareEngine
	chain   cor.Chain
}

// NewSceneDetectionWorkflow is the constructor for the workflow.
//
// Inputs:
//   - options: The detection tunables for every run of this workflow.
//   - engine: The rate-limited OCR engine shared across runs, or nil to
//     disable all text recognition.
//   - numberOfWorkers: The worker pool size for the extraction pass.
func NewSceneDetectionWorkflow(
	options model.Options,
	engine *ocr.QuotaAwareEngine,
	numberOfWorkers int) (*SceneDetectionWorkflow, error) {

	var faces *vision.FaceDetector
	if options.FaceMasking {
		var err error
		faces, err = vision.LoadFaceDetector(options.CascadeFile)
		if err != nil {
			return nil, fmt.Errorf("scene detection workflow: %w", err)
		}
	}

	scanEngine := engine
	if !options.OCRSimilarity {
		scanEngine = nil
	}

	out := &SceneDetectionWorkflow{
		BaseCommand: *cor.NewBaseCommand("scene-detection-workflow"),
		options:     options,
		faces:       faces,
		engine:      engine,
	}
	out.initializeChain(scanEngine, numberOfWorkers)
	return out, nil
}

// initializeChain constructs the five-command pipeline.
func (w *SceneDetectionWorkflow) initializeChain(scanEngine *ocr.QuotaAwareEngine, numberOfWorkers int) {
	titles := commands.NewTitleDetector("title-detection", w.options)
	// The last command publishes the scene list under a stable key, since
	// the chain consumes CtxOut while piping.
	titles.OutputParamName = GetSceneOutputParameterName()

	chain := cor.NewBaseChain(w.GetName())
	chain.AddCommand(commands.NewVideoProbe("video-probe", w.options))
	chain.AddCommand(commands.NewSimilarityScan("similarity-scan", w.options, w.faces, scanEngine))
	chain.AddCommand(commands.NewCutDetector("cut-detection", w.options))
	chain.AddCommand(commands.NewKeyFrameExtractor("key-frame-extraction", w.options, w.engine, numberOfWorkers))
	chain.AddCommand(titles)
	w.chain = chain
}

// Execute runs the underlying command chain. The input path must already be
// present under the chain input key.
func (w *SceneDetectionWorkflow) Execute(context cor.Context) {
	w.chain.Execute(context)
}

// FindScenes segments the video at path into scenes.
//
// A path that does not exist is not an error: the result is (nil, nil), so
// batch callers can shrug off assets deleted between listing and analysis. A
// video in which no cut is found returns an empty, non-nil slice. Decoding
// and probing failures surface as a *model.PipelineError.
func (w *SceneDetectionWorkflow) FindScenes(ctx goctx.Context, path string) ([]*model.Scene, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			slog.WarnContext(ctx, "video missing, skipping", "path", path)
			return nil, nil
		}
		return nil, &model.PipelineError{
			Kind:  model.KindMediaUnreadable,
			Phase: model.PhaseSampling,
			Path:  path,
			Err:   err,
		}
	}

	chainCtx := cor.NewBaseContext()
	defer chainCtx.Close()
	chainCtx.SetContext(ctx)
	chainCtx.Add(cor.CtxIn, path)

	w.chain.Execute(chainCtx)

	// The probe shares the open decoder through the context; the workflow
	// owns its lifetime.
	if h, ok := chainCtx.Get(commands.GetVideoHandleParameterName()).(*vision.VideoHandle); ok {
		if err := h.Close(); err != nil {
			slog.WarnContext(ctx, "failed to close video handle", "path", path, "error", err)
		}
	}

	if chainCtx.HasErrors() {
		for _, err := range chainCtx.GetErrors() {
			return nil, err
		}
	}

	scenes, ok := chainCtx.Get(GetSceneOutputParameterName()).([]*model.Scene)
	if !ok {
		return nil, &model.PipelineError{
			Kind:  model.KindExtractionFailed,
			Phase: model.PhaseCutDetection,
			Path:  path,
			Err:   errors.New("pipeline produced no scene list"),
		}
	}
	return scenes, nil
}
