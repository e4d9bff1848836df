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

// Package workflow_test contains integration tests for the scene-detection
// workflow. The tests synthesize a small video with an abrupt visual change
// and verify the pipeline finds the cut, so they need a working video
// encoder; environments without one skip.
package workflow_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"gocv.io/x/gocv"

	"github.com/lecturelab/go-scene-detect/internal/core/model"
	"github.com/lecturelab/go-scene-detect/internal/core/workflow"
)

// writeTestVideo encodes a 10 fps clip: frames of one brightness, then an
// abrupt jump to another. Returns "" when no encoder is available.
func writeTestVideo(t *testing.T, dir string, framesA, framesB int, levelA, levelB float64) string {
	t.Helper()
	path := filepath.Join(dir, "synthetic.avi")

	writer, err := gocv.VideoWriterFile(path, "MJPG", 10, 320, 240, true)
	if err != nil || !writer.IsOpened() {
		return ""
	}
	defer writer.Close()

	write := func(level float64, n int) {
		frame := gocv.NewMatWithSizeFromScalar(
			gocv.NewScalar(level, level, level, 0), 240, 320, gocv.MatTypeCV8UC3)
		defer frame.Close()
		for i := 0; i < n; i++ {
			if err := writer.Write(frame); err != nil {
				t.Fatalf("write frame: %v", err)
			}
		}
	}
	write(levelA, framesA)
	write(levelB, framesB)
	return path
}

// newTestWorkflow builds a workflow with face masking and OCR turned off, so
// only the structural signal drives detection.
func newTestWorkflow(t *testing.T, dataDir string) *workflow.SceneDetectionWorkflow {
	t.Helper()
	opts := model.DefaultOptions()
	opts.FaceMasking = false
	opts.OCRSimilarity = false
	opts.DataDir = dataDir

	w, err := workflow.NewSceneDetectionWorkflow(opts, nil, 2)
	assert.NoError(t, err)
	return w
}

func TestFindScenesDetectsAbruptChange(t *testing.T) {
	dir := t.TempDir()
	video := writeTestVideo(t, dir, 40, 40, 20, 230)
	if video == "" {
		t.Skip("no video encoder available")
	}

	w := newTestWorkflow(t, dir)
	scenes, err := w.FindScenes(context.Background(), video)
	assert.NoError(t, err)
	assert.Len(t, scenes, 2)

	first, second := scenes[0], scenes[1]
	assert.Equal(t, 0, first.FrameStart)
	assert.Equal(t, first.FrameEnd, second.FrameStart, "scenes share their boundary sample")
	assert.True(t, second.FrameEnd > second.FrameStart)

	// Timestamps are rendered in HH:MM:SS.mmm form.
	assert.Len(t, first.Start, 12)
	assert.Len(t, second.End, 12)

	// Key frames were extracted for both scenes.
	assert.FileExists(t, first.ImgFile)
	assert.FileExists(t, second.ImgFile)

	// With OCR disabled the text fields stay empty but initialized.
	assert.Empty(t, first.RawText)
	assert.NotNil(t, first.Phrases)
	assert.Empty(t, first.Title)
}

func TestFindScenesUniformVideoHasNoCuts(t *testing.T) {
	dir := t.TempDir()
	video := writeTestVideo(t, dir, 80, 0, 128, 128)
	if video == "" {
		t.Skip("no video encoder available")
	}

	w := newTestWorkflow(t, dir)
	scenes, err := w.FindScenes(context.Background(), video)
	assert.NoError(t, err)
	assert.NotNil(t, scenes)
	assert.Empty(t, scenes, "an unbroken take yields no scenes")
}

func TestFindScenesMissingFile(t *testing.T) {
	w := newTestWorkflow(t, t.TempDir())
	scenes, err := w.FindScenes(context.Background(), filepath.Join(t.TempDir(), "gone.mp4"))
	assert.NoError(t, err)
	assert.Nil(t, scenes)
}

// writeJunk writes a file whose magic bytes match no video container.
func writeJunk(path string) error {
	return os.WriteFile(path, bytes.Repeat([]byte("not a video "), 64), 0o644)
}

func TestFindScenesRejectsNonVideo(t *testing.T) {
	dir := t.TempDir()
	junk := filepath.Join(dir, "junk.mp4")
	assert.NoError(t, writeJunk(junk))

	w := newTestWorkflow(t, dir)
	_, err := w.FindScenes(context.Background(), junk)
	assert.Error(t, err)

	var pErr *model.PipelineError
	assert.ErrorAs(t, err, &pErr)
	assert.Equal(t, model.KindMediaUnreadable, pErr.Kind)
}
