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

// Bag is a word -> summed-confidence map. It is the similarity-pass view of
// a frame's text: positions are discarded, only confidence mass per word is
// kept.
type Bag map[string]float64

// ConfidenceBag accumulates tokens at or above the confidence floor into a
// word-confidence bag.
func (t TokenTable) ConfidenceBag(minConfidence float64) Bag {
	bag := make(Bag)
	for _, tok := range t {
		if tok.Confidence >= minConfidence {
			bag[tok.Text] += tok.Confidence
		}
	}
	return bag
}

// Mass returns the total confidence mass in the bag.
func (b Bag) Mass() float64 {
	var total float64
	for _, c := range b {
		total += c
	}
	return total
}

// Overlap scores the agreement between two frames' bags in [0,1]: the
// confidence mass of words present in both bags, over the total mass of both
// bags. Two frames with no text at all are trivially similar and score
// exactly 1.0.
func Overlap(a, b Bag) float64 {
	total := a.Mass() + b.Mass()
	if total == 0 {
		return 1.0
	}
	var shared float64
	for word, mass := range a {
		if other, ok := b[word]; ok {
			shared += mass + other
		}
	}
	return shared / total
}
