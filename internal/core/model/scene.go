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

// Package model defines the data structures of the scene-detection pipeline:
// the Scene output contract, the tunable Options, the sampling plan, and the
// transient values piped between pipeline commands.
package model

import (
	"fmt"

	"github.com/lecturelab/go-scene-detect/internal/ocr"
)

// Scene is one contiguous run of a video between two detected cut
// boundaries, presumed to show a single stable slide or topic. Field names
// and types are a wire contract consumed downstream; do not rename them.
//
// A Scene is created once cut boundaries are final, enriched during the
// extraction pass, and immutable afterwards.
type Scene struct {
	FrameStart int            `json:"frame_start"` // First native frame of the scene.
	FrameEnd   int            `json:"frame_end"`   // Last native frame of the scene.
	Start      string         `json:"start"`       // HH:MM:SS.mmm, exactly 12 characters.
	End        string         `json:"end"`         // HH:MM:SS.mmm, exactly 12 characters.
	ImgFile    string         `json:"img_file"`    // Path of the extracted key-frame image.
	RawText    ocr.TokenTable `json:"raw_text"`    // Full OCR token table of the key frame.
	Phrases    []string       `json:"phrases"`     // Cleaned strings grouped by OCR text block.
	Title      string         `json:"title"`       // Best-guess slide title, possibly empty.
}

// FormatTimestamp renders seconds as HH:MM:SS.mmm, truncated (not rounded)
// to millisecond precision. The result is always exactly 12 characters for
// videos under 100 hours.
func FormatTimestamp(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	totalMillis := int64(seconds * 1000)
	millis := totalMillis % 1000
	totalSeconds := totalMillis / 1000
	return fmt.Sprintf("%02d:%02d:%02d.%03d",
		totalSeconds/3600, (totalSeconds/60)%60, totalSeconds%60, millis)
}
