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
	"testing"

	"github.com/zeebo/assert"
)

func TestConfidenceBagFiltersAndSums(t *testing.T) {
	table := TokenTable{
		{Text: "graph", Confidence: 91},
		{Text: "graph", Confidence: 72},
		{Text: "noise", Confidence: 30},
	}
	bag := table.ConfidenceBag(60)

	assert.Equal(t, 2, len(bag))
	assert.Equal(t, 163.0, bag["graph"])
	_, kept := bag["noise"]
	assert.False(t, kept)
}

func TestOverlapBothEmpty(t *testing.T) {
	// Two frames with no text at all are trivially similar.
	assert.Equal(t, 1.0, Overlap(Bag{}, Bag{}))
}

func TestOverlapDisjoint(t *testing.T) {
	a := Bag{"alpha": 90}
	b := Bag{"beta": 80}
	assert.Equal(t, 0.0, Overlap(a, b))
}

func TestOverlapIdentical(t *testing.T) {
	a := Bag{"alpha": 90, "beta": 70}
	assert.Equal(t, 1.0, Overlap(a, a))
}

func TestOverlapPartial(t *testing.T) {
	a := Bag{"alpha": 60, "beta": 40}
	b := Bag{"alpha": 60}
	// Shared mass (60+60) over total mass (100+60).
	assert.Equal(t, 120.0/160.0, Overlap(a, b))
}

func TestOverlapOneEmpty(t *testing.T) {
	a := Bag{"alpha": 90}
	assert.Equal(t, 0.0, Overlap(a, Bag{}))
	assert.Equal(t, 0.0, Overlap(Bag{}, a))
}
