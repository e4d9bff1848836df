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
// command that opens and probes a video file.
//
// Logic Flow:
// The `VideoProbe` is the first step of the scene-detection workflow. Its
// job is to turn a file path into an open decoder plus a sampling plan:
//
//  1. Sniff the file's magic bytes with the `filetype` library and reject
//     anything that is not a video container. The decoder would also reject
//     it, but the sniff produces a much clearer error message.
//  2. Open the decoder and probe the native frame rate, frame count and
//     dimensions.
//  3. Derive the analysis stride (every N-th native frame) from the target
//     sampling rate.
//  4. Publish the open handle under a well-known context key for the
//     downstream commands, and emit the sampling plan as the output.
//
// The handle is owned by the workflow, which closes it when the run ends.
package commands

import (
	"fmt"
	"os"

	"github.com/h2non/filetype"

	"github.com/lecturelab/go-scene-detect/internal/core/cor"
	"github.com/lecturelab/go-scene-detect/internal/core/model"
	"github.com/lecturelab/go-scene-detect/internal/vision"
)

// GetVideoHandleParameterName returns the context key under which the open
// video decoder handle is shared across the chain.
func GetVideoHandleParameterName() string {
	return "pipeline.video.handle"
}

// sniffLimit is how many leading bytes are read for container detection.
const sniffLimit = 261

// VideoProbe opens a video file and produces the sampling plan for it.
type VideoProbe struct {
	cor.BaseCommand
	options model.Options
}

// NewVideoProbe is the constructor for the VideoProbe command.
func NewVideoProbe(name string, options model.Options) *VideoProbe {
	return &VideoProbe{
		BaseCommand: *cor.NewBaseCommand(name),
		options:     options,
	}
}

// Execute sniffs, opens and probes the input path, then emits the sampling
// plan and shares the open handle with the rest of the chain.
func (c *VideoProbe) Execute(context cor.Context) {
	path := context.Get(c.GetInputParam()).(string)

	if err := sniffVideo(path); err != nil {
		c.fail(context, err)
		return
	}

	handle, err := vision.OpenVideo(path)
	if err != nil {
		c.fail(context, err)
		return
	}
	if handle.FPS() <= 0 || handle.FrameCount() <= 0 {
		_ = handle.Close()
		c.fail(context, fmt.Errorf("probe video %s: decoder reported fps=%v frames=%d",
			path, handle.FPS(), handle.FrameCount()))
		return
	}

	plan := model.NewSamplingPlan(
		path,
		handle.FPS(),
		handle.FrameCount(),
		handle.Width(),
		handle.Height(),
		c.options.TargetFPS)

	c.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(GetVideoHandleParameterName(), handle)
	context.Add(c.GetOutputParam(), plan)
	context.Add(cor.CtxOut, plan)
}

func (c *VideoProbe) fail(context cor.Context, err error) {
	c.GetErrorCounter().Add(context.GetContext(), 1)
	context.AddError(c.GetName(), &model.PipelineError{
		Kind:  model.KindMediaUnreadable,
		Phase: model.PhaseSampling,
		Path:  fmt.Sprintf("%v", context.Get(c.GetInputParam())),
		Err:   err,
	})
}

// sniffVideo checks the file's magic bytes against the known video container
// signatures.
func sniffVideo(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	head := make([]byte, sniffLimit)
	n, err := f.Read(head)
	if err != nil {
		return fmt.Errorf("read header of %s: %w", path, err)
	}
	if !filetype.IsVideo(head[:n]) {
		kind, _ := filetype.Match(head[:n])
		return fmt.Errorf("sniff %s: not a video container (detected %q)", path, kind.MIME.Value)
	}
	return nil
}
