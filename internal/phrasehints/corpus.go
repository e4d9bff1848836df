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

package phrasehints

import (
	"strings"
	"sync"
)

// stopwordList is the standard English stop-word inventory. Matching is
// case-insensitive.
const stopwordList = `i me my myself we our ours ourselves you you're you've
you'll you'd your yours yourself yourselves he him his himself she she's her
hers herself it it's its itself they them their theirs themselves what which
who whom this that that'll these those am is are was were be been being have
has had having do does did doing a an the and but if or because as until
while of at by for with about against between into through during before
after above below to from up down in out on off over under again further
then once here there when where why how all any both each few more most
other some such no nor not only own same so than too very s t can will just
don don't should should've now d ll m o re ve y ain aren aren't couldn
couldn't didn didn't doesn doesn't hadn hadn't hasn hasn't haven haven't isn
isn't ma mightn mightn't mustn mustn't needn needn't shan shan't shouldn
shouldn't wasn wasn't weren weren't won won't wouldn wouldn't`

// referenceFrequency holds the relative frequency (fraction of all running
// words) of common English words in a general written-English reference
// corpus. A candidate word is only worth hinting when it is used more
// heavily in the slides than in ordinary prose; words missing from this
// table are always kept.
var referenceFrequency = map[string]float64{
	"the": 0.0629, "of": 0.0313, "and": 0.0248, "to": 0.0225, "a": 0.0199,
	"in": 0.0183, "that": 0.0091, "is": 0.0087, "was": 0.0084, "he": 0.0082,
	"for": 0.0081, "it": 0.0075, "with": 0.0062, "as": 0.0062, "his": 0.0060,
	"on": 0.0058, "be": 0.0055, "at": 0.0047, "by": 0.0045, "had": 0.0044,
	"not": 0.0039, "are": 0.0038, "but": 0.0038, "from": 0.0037, "or": 0.0035,
	"have": 0.0033, "an": 0.0032, "they": 0.0031, "which": 0.0031,
	"one": 0.0028, "you": 0.0027, "were": 0.0027, "her": 0.0026, "all": 0.0026,
	"she": 0.0024, "there": 0.0023, "would": 0.0023, "their": 0.0022,
	"we": 0.0021, "him": 0.0018, "been": 0.0017, "has": 0.0017, "when": 0.0017,
	"who": 0.0016, "will": 0.0016, "more": 0.0016, "no": 0.0015, "if": 0.0015,
	"out": 0.0014, "so": 0.0014, "said": 0.0014, "what": 0.0013, "up": 0.0013,
	"its": 0.0013, "about": 0.0012, "into": 0.0012, "than": 0.0012,
	"them": 0.0012, "can": 0.0012, "only": 0.0011, "other": 0.0011,
	"new": 0.0011, "some": 0.0011, "could": 0.0010, "time": 0.0010,
	"these": 0.0010, "two": 0.0010, "may": 0.0010, "then": 0.0010,
	"do": 0.0010, "first": 0.0010, "any": 0.0009, "my": 0.0009, "now": 0.0009,
	"such": 0.0009, "like": 0.0009, "our": 0.0008, "over": 0.0008,
	"man": 0.0008, "me": 0.0008, "even": 0.0008, "most": 0.0008,
	"made": 0.0008, "also": 0.0007, "after": 0.0007, "did": 0.0007,
	"many": 0.0007, "before": 0.0007, "must": 0.0007, "through": 0.0007,
	"years": 0.0007, "where": 0.0007, "much": 0.0006, "your": 0.0006,
	"way": 0.0006, "well": 0.0006, "down": 0.0006, "should": 0.0006,
	"because": 0.0006, "each": 0.0006, "just": 0.0006, "those": 0.0006,
	"people": 0.0006, "mr": 0.0006, "how": 0.0006, "too": 0.0006,
	"little": 0.0005, "state": 0.0005, "good": 0.0005, "very": 0.0005,
	"make": 0.0005, "world": 0.0005, "still": 0.0005, "see": 0.0005,
	"own": 0.0005, "men": 0.0005, "work": 0.0005, "long": 0.0005,
	"here": 0.0005, "get": 0.0005, "both": 0.0005, "between": 0.0005,
	"life": 0.0005, "being": 0.0005, "under": 0.0005, "never": 0.0005,
	"day": 0.0005, "same": 0.0005, "another": 0.0004, "know": 0.0004,
	"year": 0.0004, "while": 0.0004, "last": 0.0004, "might": 0.0004,
	"us": 0.0004, "great": 0.0004, "old": 0.0004, "off": 0.0004,
	"come": 0.0004, "since": 0.0004, "go": 0.0004, "against": 0.0004,
	"came": 0.0004, "right": 0.0004, "take": 0.0004, "used": 0.0004,
	"three": 0.0004, "states": 0.0004, "himself": 0.0004, "few": 0.0004,
	"house": 0.0004, "use": 0.0004, "during": 0.0004, "without": 0.0004,
	"again": 0.0004, "place": 0.0004, "around": 0.0003, "however": 0.0003,
	"home": 0.0003, "small": 0.0003, "found": 0.0003, "thought": 0.0003,
	"went": 0.0003, "say": 0.0003, "part": 0.0003, "once": 0.0003,
	"high": 0.0003, "general": 0.0003, "upon": 0.0003, "school": 0.0003,
	"every": 0.0003, "don't": 0.0003, "does": 0.0003, "got": 0.0003,
	"run": 0.0003, "united": 0.0003, "number": 0.0003, "hand": 0.0003,
	"course": 0.0003, "water": 0.0003, "until": 0.0003, "face": 0.0002,
	"away": 0.0002, "something": 0.0002, "fact": 0.0002, "though": 0.0002,
	"less": 0.0002, "public": 0.0002, "put": 0.0002, "think": 0.0002,
	"almost": 0.0002, "enough": 0.0002, "far": 0.0002, "took": 0.0002,
	"head": 0.0002, "yet": 0.0002, "government": 0.0002, "system": 0.0002,
}

var (
	stopwordsOnce sync.Once
	stopwordSet   map[string]struct{}
)

// stopwords returns the lowercase stop-word set, built once per process.
func stopwords() map[string]struct{} {
	stopwordsOnce.Do(func() {
		stopwordSet = make(map[string]struct{})
		for _, w := range strings.Fields(stopwordList) {
			stopwordSet[w] = struct{}{}
		}
	})
	return stopwordSet
}
