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

// Package ocr wraps the Tesseract engine behind a small token-table API. The
// pipeline consumes OCR three ways: word-confidence bags for frame-to-frame
// text-overlap similarity, block-grouped phrases for scene text, and
// token geometry for title detection. All three read the same TokenTable.
package ocr

import (
	"fmt"
	"strings"
	"sync"

	"github.com/otiai10/gosseract/v2"
)

// Token is one recognized word with its confidence (0-100), pixel geometry,
// and the layout identifiers Tesseract assigns (block / paragraph / line /
// word order). Field names match the wire contract of the scene output.
type Token struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"conf"`
	Left       int     `json:"left"`
	Top        int     `json:"top"`
	Width      int     `json:"width"`
	Height     int     `json:"height"`
	BlockNum   int     `json:"block_num"`
	ParNum     int     `json:"par_num"`
	LineNum    int     `json:"line_num"`
	WordNum    int     `json:"word_num"`
}

// TokenTable is the full ordered token output for one image.
type TokenTable []Token

// Engine is a Tesseract client bound to one language. The underlying client
// is not reentrant, so calls serialize on an internal lock.
type Engine struct {
	mu     sync.Mutex
	client *gosseract.Client
}

// NewEngine creates a Tesseract client for the given language pack.
func NewEngine(language string) (*Engine, error) {
	client := gosseract.NewClient()
	if err := client.SetLanguage(language); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("set ocr language %q: %w", language, err)
	}
	if err := client.SetPageSegMode(gosseract.PSM_AUTO); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("set ocr page segmentation mode: %w", err)
	}
	return &Engine{client: client}, nil
}

// Tokens runs recognition over an encoded image (PNG or JPEG bytes) and
// returns the token table in reading order. Whitespace-only tokens are
// dropped; everything else is kept regardless of confidence so callers can
// apply their own thresholds.
func (e *Engine) Tokens(img []byte) (TokenTable, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.client.SetImageFromBytes(img); err != nil {
		return nil, fmt.Errorf("set ocr image: %w", err)
	}
	boxes, err := e.client.GetBoundingBoxesVerbose()
	if err != nil {
		return nil, fmt.Errorf("ocr bounding boxes: %w", err)
	}

	table := make(TokenTable, 0, len(boxes))
	for _, box := range boxes {
		text := strings.TrimSpace(box.Word)
		if len(text) == 0 {
			continue
		}
		table = append(table, Token{
			Text:       text,
			Confidence: box.Confidence,
			Left:       box.Box.Min.X,
			Top:        box.Box.Min.Y,
			Width:      box.Box.Dx(),
			Height:     box.Box.Dy(),
			BlockNum:   box.BlockNum,
			ParNum:     box.ParNum,
			LineNum:    box.LineNum,
			WordNum:    box.WordNum,
		})
	}
	return table, nil
}

// Close releases the Tesseract client.
func (e *Engine) Close() error {
	return e.client.Close()
}
