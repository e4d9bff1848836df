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

// Package phrasehints turns the slide text collected across a lecture's
// scenes into a phrase-hint list for speech recognition. Course slides are
// full of vocabulary a generic acoustic model mangles ("Dijkstra",
// "memoization"), and exactly those words are the valuable hints: the
// package keeps words used more heavily in the slides than in ordinary
// English, drops stop words, and additionally mines multi-word phrases that
// recur across scenes.
package phrasehints

import (
	"regexp"
	"sort"
	"strings"
)

// minSupport is the number of scenes a multi-word phrase must recur in to
// become a hint.
const minSupport = 2

// maxPhraseLen caps mined phrases at five words.
const maxPhraseLen = 5

var punctuation = regexp.MustCompile(`[.?,:;'"]`)

// alnum matches words made of plain letters and digits only; everything
// else (symbols, broken OCR fragments, non-ASCII noise) is discarded.
var alnum = regexp.MustCompile(`^[a-zA-Z0-9]+$`)

// ToPhraseHints converts newline-separated raw phrases (one line per OCR
// phrase, across all scenes) into a newline-separated hint list: distinctive
// single words first, then recurring multi-word phrases ordered by how often
// they recur.
func ToPhraseHints(raw string) string {
	var phrases [][]string
	var wordOrder []string
	wordCount := make(map[string]int)

	for _, line := range strings.Split(raw, "\n") {
		cleaned := strings.Fields(punctuation.ReplaceAllString(line, " "))
		phrases = append(phrases, cleaned)

		for _, w := range strings.Fields(line) {
			if !alnum.MatchString(w) {
				continue
			}
			if _, seen := wordCount[w]; !seen {
				wordOrder = append(wordOrder, w)
			}
			wordCount[w]++
		}
	}

	words := filterCommonWords(wordOrder, wordCount)
	words = filterStopWords(words)

	result := append(words, frequentPhrases(phrases, minSupport)...)
	return strings.Join(result, "\n")
}

// filterCommonWords keeps the words that appear relatively more often in the
// slides than in the written-English reference corpus. Words unknown to the
// reference are always distinctive enough to keep.
func filterCommonWords(order []string, counts map[string]int) []string {
	total := 0
	for _, c := range counts {
		total += c
	}
	out := make([]string, 0, len(order))
	for _, w := range order {
		ref, known := referenceFrequency[strings.ToLower(w)]
		if !known || float64(counts[w])/float64(total) > ref {
			out = append(out, w)
		}
	}
	return out
}

// filterStopWords removes common function words, case-insensitively.
func filterStopWords(words []string) []string {
	stop := stopwords()
	out := make([]string, 0, len(words))
	for _, w := range words {
		if _, isStop := stop[strings.ToLower(w)]; !isStop {
			out = append(out, w)
		}
	}
	return out
}

// frequentPhrases mines contiguous word n-grams (2 to maxPhraseLen words)
// that occur at least minSupport times across the phrase lists. An n-gram
// contained in a surviving longer n-gram is dropped, so "hash table
// collision" does not also emit "hash table". Results are ordered by count
// descending, ties alphabetically.
func frequentPhrases(phrases [][]string, minSupport int) []string {
	type gram struct {
		words []string
		count int
	}
	var kept []gram

	for n := 2; n <= maxPhraseLen; n++ {
		counts := make(map[string]int)
		var order []string
		for _, phrase := range phrases {
			for i := 0; i+n <= len(phrase); i++ {
				key := strings.Join(phrase[i:i+n], " ")
				if counts[key] == 0 {
					order = append(order, key)
				}
				counts[key]++
			}
		}
		found := false
		for _, key := range order {
			if counts[key] >= minSupport {
				kept = append(kept, gram{words: strings.Split(key, " "), count: counts[key]})
				found = true
			}
		}
		if !found {
			break
		}
	}

	// Drop grams subsumed by a longer surviving gram.
	out := make([]gram, 0, len(kept))
	for i, g := range kept {
		subsumed := false
		for j, longer := range kept {
			if i == j || len(longer.words) <= len(g.words) {
				continue
			}
			if strings.Contains(" "+strings.Join(longer.words, " ")+" ", " "+strings.Join(g.words, " ")+" ") {
				subsumed = true
				break
			}
		}
		if !subsumed {
			out = append(out, g)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].count != out[j].count {
			return out[i].count > out[j].count
		}
		return strings.Join(out[i].words, " ") < strings.Join(out[j].words, " ")
	})

	result := make([]string, len(out))
	for i, g := range out {
		result[i] = strings.Join(g.words, " ")
	}
	return result
}
