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
// command that enriches detected scenes with a key-frame image and its text.
//
// Logic Flow:
// For every scene the frame at the scene's midpoint is taken as its key
// frame, written to disk as a JPEG, and run through full-resolution OCR.
//
// The work splits into two halves with very different concurrency rules:
//
//  1. **Frame grabbing is sequential.** The decoder handle supports no
//     concurrent seeking, so one loop seeks to each midpoint, writes the
//     JPEG, and encodes a grayscale PNG for recognition.
//  2. **Recognition is parallel.** OCR dominates the cost of this pass, so
//     the encoded images are fanned out to a worker pool (goroutines fed by
//     a jobs channel, results collected over a results channel, a WaitGroup
//     to join them).
//
// A scene whose enrichment fails keeps its boundaries and timestamps but
// stays unenriched; one broken frame should not discard an hour of valid
// detection. Such failures are logged and counted, never escalated.
package commands

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/lecturelab/go-scene-detect/internal/core/cor"
	"github.com/lecturelab/go-scene-detect/internal/core/model"
	"github.com/lecturelab/go-scene-detect/internal/ocr"
	"github.com/lecturelab/go-scene-detect/internal/vision"
)

// KeyFrameExtractor enriches scenes with key-frame images, OCR text and
// block phrases.
type KeyFrameExtractor struct {
	cor.BaseCommand
	options         model.Options
	engine          *ocr.QuotaAwareEngine
	numberOfWorkers int
}

// NewKeyFrameExtractor is the constructor for the KeyFrameExtractor command.
//
// Inputs:
//   - name: A string name for this command instance.
//   - options: The detection run tunables (data directory, OCR floors).
//   - engine: The rate-limited OCR engine, or nil to skip recognition.
//   - numberOfWorkers: The size of the worker pool for concurrent OCR.
func NewKeyFrameExtractor(
	name string,
	options model.Options,
	engine *ocr.QuotaAwareEngine,
	numberOfWorkers int) *KeyFrameExtractor {
	if numberOfWorkers < 1 {
		numberOfWorkers = 1
	}
	return &KeyFrameExtractor{
		BaseCommand:     *cor.NewBaseCommand(name),
		options:         options,
		engine:          engine,
		numberOfWorkers: numberOfWorkers,
	}
}

// ocrJob carries one scene's encoded key frame to a worker.
type ocrJob struct {
	scene *model.Scene
	index int
	img   []byte
}

// Execute writes key frames sequentially, then recognizes them in parallel.
func (c *KeyFrameExtractor) Execute(context cor.Context) {
	scenes := context.Get(c.GetInputParam()).([]*model.Scene)
	handle := context.Get(GetVideoHandleParameterName()).(*vision.VideoHandle)

	// No cuts means nothing to extract; pass the empty list through.
	if len(scenes) == 0 {
		c.GetSuccessCounter().Add(context.GetContext(), 1)
		context.Add(c.GetOutputParam(), scenes)
		context.Add(cor.CtxOut, scenes)
		return
	}

	jobs := make(chan *ocrJob, len(scenes))

	// Sequential half: seek, persist the JPEG, encode for recognition.
	imageDir := c.imageDir(handle.Path())
	if err := os.MkdirAll(imageDir, 0o755); err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), &model.PipelineError{
			Kind:  model.KindExtractionFailed,
			Phase: model.PhaseExtraction,
			Path:  handle.Path(),
			Err:   err,
		})
		return
	}

	for i, scene := range scenes {
		img, err := c.grabKeyFrame(handle, scene, i, imageDir)
		if err != nil {
			c.GetErrorCounter().Add(context.GetContext(), 1)
			slog.WarnContext(context.GetContext(), "scene left unenriched",
				"command", c.GetName(), "scene", i, "error", err)
			continue
		}
		if c.engine != nil {
			jobs <- &ocrJob{scene: scene, index: i, img: img}
		}
	}
	close(jobs)

	// Parallel half: OCR the key frames with a worker pool.
	var wg sync.WaitGroup
	for w := 0; w < c.numberOfWorkers; w++ {
		wg.Add(1)
		go c.ocrWorker(context, jobs, &wg)
	}
	wg.Wait()

	c.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(c.GetOutputParam(), scenes)
	context.Add(cor.CtxOut, scenes)
}

// grabKeyFrame decodes the scene's midpoint frame, writes the JPEG, and
// returns the grayscale PNG bytes for recognition.
func (c *KeyFrameExtractor) grabKeyFrame(
	handle *vision.VideoHandle,
	scene *model.Scene,
	index int,
	imageDir string) ([]byte, error) {
	mid := (scene.FrameStart + scene.FrameEnd) / 2
	handle.Seek(mid)
	frame, ok := handle.ReadFrame()
	if !ok {
		return nil, fmt.Errorf("decode key frame %d: read failed", mid)
	}

	imgFile := filepath.Join(imageDir, fmt.Sprintf("%d.jpg", index))
	if err := vision.WriteJPEG(imgFile, frame); err != nil {
		return nil, err
	}
	scene.ImgFile = imgFile

	gray := vision.Grayscale(frame)
	defer gray.Close()
	return vision.EncodePNG(gray)
}

// ocrWorker drains the jobs channel, attaching the token table and phrases
// to each scene. Scenes are partitioned across jobs so workers never touch
// the same scene.
func (c *KeyFrameExtractor) ocrWorker(context cor.Context, jobs <-chan *ocrJob, wg *sync.WaitGroup) {
	defer wg.Done()
	for j := range jobs {
		tokens, err := c.engine.Tokens(context.GetContext(), j.img)
		if err != nil {
			c.GetErrorCounter().Add(context.GetContext(), 1)
			slog.WarnContext(context.GetContext(), "scene text recognition failed",
				"command", c.GetName(), "scene", j.index, "error", err)
			continue
		}
		j.scene.RawText = tokens
		j.scene.Phrases = BlockPhrases(tokens, c.options.ExtractOCRMin)
	}
}

// imageDir returns the per-video directory key frames are written under.
func (c *KeyFrameExtractor) imageDir(videoPath string) string {
	base := filepath.Base(videoPath)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(c.options.DataDir, base)
}

// BlockPhrases joins confident tokens into one phrase per OCR layout block,
// preserving reading order within the block.
func BlockPhrases(tokens ocr.TokenTable, minConfidence float64) []string {
	phrases := make([]string, 0)
	var words []string
	block := -1
	flush := func() {
		if len(words) > 0 {
			phrases = append(phrases, strings.Join(words, " "))
			words = words[:0]
		}
	}
	for _, tok := range tokens {
		if tok.Confidence < minConfidence {
			continue
		}
		if tok.BlockNum != block {
			flush()
			block = tok.BlockNum
		}
		words = append(words, tok.Text)
	}
	flush()
	return phrases
}
