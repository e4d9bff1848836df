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

package ocr

import (
	"context"

	"golang.org/x/time/rate"
)

// QuotaAwareEngine decorates an Engine with a process-wide rate limit. When
// several video jobs run in parallel they all funnel OCR through Tesseract,
// which is CPU-heavy; the limiter keeps aggregate OCR throughput bounded so
// one job cannot starve the rest of the pool.
type QuotaAwareEngine struct {
	*Engine
	limiter *rate.Limiter
}

// NewQuotaAwareEngine wraps engine with a limit of requestsPerSecond OCR
// calls, allowing bursts up to the same size.
func NewQuotaAwareEngine(engine *Engine, requestsPerSecond int) *QuotaAwareEngine {
	return &QuotaAwareEngine{
		Engine:  engine,
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond),
	}
}

// Tokens blocks until the limiter grants a slot (or ctx is cancelled), then
// runs recognition.
func (q *QuotaAwareEngine) Tokens(ctx context.Context, img []byte) (TokenTable, error) {
	if err := q.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return q.Engine.Tokens(img)
}
