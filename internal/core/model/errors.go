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

import "fmt"

// ErrorKind classifies pipeline failures for callers that branch on them.
type ErrorKind string

const (
	// KindMediaUnreadable means the file exists but cannot be decoded as
	// video, or decoding broke partway through.
	KindMediaUnreadable ErrorKind = "media_unreadable"
	// KindExtractionFailed means cut detection succeeded but the enrichment
	// pass could not run at all (as opposed to individual scenes failing,
	// which is tolerated).
	KindExtractionFailed ErrorKind = "extraction_failed"
)

// Pipeline phase names used in errors and spans.
const (
	PhaseSampling     = "sampling"
	PhaseSimilarity   = "similarity"
	PhaseCutDetection = "cut-detection"
	PhaseExtraction   = "extraction"
	PhaseTitle        = "title-detection"
)

// PipelineError wraps a failure with the phase it happened in and the video
// it happened on.
type PipelineError struct {
	Kind  ErrorKind
	Phase string
	Path  string
	Err   error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("%s: %s phase on %s: %v", e.Kind, e.Phase, e.Path, e.Err)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}
