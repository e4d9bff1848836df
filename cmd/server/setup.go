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

// This file wires the server's long-lived state: configuration, the OCR
// engine, the scene-detection workflow, and the background job pool.
package main

import (
	"context"
	"log"
	"time"

	"github.com/lecturelab/go-scene-detect/internal/config"
	"github.com/lecturelab/go-scene-detect/internal/core/model"
	"github.com/lecturelab/go-scene-detect/internal/core/workflow"
	"github.com/lecturelab/go-scene-detect/internal/jobs"
	"github.com/lecturelab/go-scene-detect/internal/ocr"
)

// stateManager holds the process-wide singletons every request handler
// reaches for.
type stateManager struct {
	config   *config.Config
	engine   *ocr.Engine
	workflow *workflow.SceneDetectionWorkflow
	pool     *jobs.Pool
}

var state = &stateManager{}

// GetConfig loads the layered TOML configuration on top of the built-in
// defaults.
func GetConfig() *config.Config {
	cfg := config.NewConfig()
	config.LoadConfig(cfg)
	return cfg
}

// InitState builds the OCR engine, the workflow, and the job pool from the
// loaded configuration. Failures here are fatal: a server without its
// pipeline has nothing to serve.
func InitState(_ context.Context, cfg *config.Config) {
	state.config = cfg

	engine, err := ocr.NewEngine(cfg.OCR.Language)
	if err != nil {
		log.Fatalf("failed to initialize ocr engine: %v", err)
	}
	state.engine = engine

	quotaEngine := ocr.NewQuotaAwareEngine(engine, cfg.OCR.RateLimit)

	w, err := workflow.NewSceneDetectionWorkflow(
		buildOptions(cfg),
		quotaEngine,
		cfg.Application.ThreadPoolSize)
	if err != nil {
		log.Fatalf("failed to initialize scene detection workflow: %v", err)
	}
	state.workflow = w

	state.pool = jobs.NewPool(
		w,
		cfg.Application.ThreadPoolSize,
		time.Duration(cfg.Application.JobTimeoutSeconds)*time.Second)
}

// ShutdownState drains the job pool and releases the OCR engine.
func ShutdownState() {
	if state.pool != nil {
		state.pool.Shutdown()
	}
	if state.engine != nil {
		_ = state.engine.Close()
	}
}

// buildOptions overlays the configured detector values onto the shipped
// defaults, so a config file only has to name what it changes.
func buildOptions(cfg *config.Config) model.Options {
	opts := model.DefaultOptions()
	d := cfg.Detector

	if d.TargetFPS > 0 {
		opts.TargetFPS = d.TargetFPS
	}
	if d.MinSceneLength > 0 {
		opts.MinSceneLength = d.MinSceneLength
	}
	if d.AbsMin > 0 {
		opts.AbsMin = d.AbsMin
	}
	if d.StructuralWeight > 0 || d.MaskedWeight > 0 || d.TextWeight > 0 {
		opts.StructuralWeight = d.StructuralWeight
		opts.MaskedWeight = d.MaskedWeight
		opts.TextWeight = d.TextWeight
	}
	if d.SimilarityOCRMin > 0 {
		opts.SimilarityOCRMin = d.SimilarityOCRMin
	}
	if d.ExtractOCRMin > 0 {
		opts.ExtractOCRMin = d.ExtractOCRMin
	}
	if d.TitleOCRMin > 0 {
		opts.TitleOCRMin = d.TitleOCRMin
	}
	opts.FaceMasking = d.FaceMasking && d.CascadeFile != ""
	opts.OCRSimilarity = d.OCRSimilarity
	opts.CascadeFile = d.CascadeFile
	if cfg.Application.DataDir != "" {
		opts.DataDir = cfg.Application.DataDir
	}
	return opts
}
