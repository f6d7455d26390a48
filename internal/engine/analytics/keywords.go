package analytics

import (
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/anatolykoptev/go_transcript/internal/engine/transcript"
)

const (
	// MaxKeywords is the number of ranked keywords returned.
	MaxKeywords = 15
	// MinKeywordLen is the shortest token kept; shorter ones are dropped.
	MinKeywordLen = 4
)

var stopWords = makeSet(
	// function words
	"about", "above", "after", "again", "against", "also", "because", "been",
	"before", "being", "below", "between", "both", "could", "does", "doing",
	"down", "during", "each", "even", "every", "from", "further", "going",
	"have", "having", "here", "hers", "herself", "himself", "into", "itself",
	"just", "like", "made", "make", "many", "more", "most", "much", "must",
	"myself", "need", "never", "once", "only", "other", "ours", "ourselves",
	"over", "really", "same", "should", "some", "such", "than", "that",
	"their", "theirs", "them", "themselves", "then", "there", "these", "they",
	"thing", "things", "this", "those", "through", "under", "until", "upon",
	"very", "want", "well", "were", "what", "when", "where", "which", "while",
	"will", "with", "within", "without", "would", "your", "yours", "yourself",
	"yourselves", "said", "says", "know", "think", "right", "gonna", "wanna",
	"dont", "didnt", "doesnt", "cant", "wont", "isnt", "arent", "wasnt",
	"thats", "theres", "youre", "theyre", "weve", "youve", "lets",
	// fillers and disfluencies
	"actually", "basically", "literally", "okay", "yeah", "yes", "hmm",
	"uhm", "umm", "uhh", "erm", "mhm", "sort", "kind", "stuff", "anyway",
)

func makeSet(words ...string) map[string]bool {
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return m
}

// IsStopWord reports whether w is excluded from keyword ranking.
func IsStopWord(w string) bool { return stopWords[w] }

// Keyword is one ranked token with its 1-5 display tier.
type Keyword struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
	Size  int    `json:"size"`
}

// Keywords ranks the most frequent content words. Ties keep first-seen order.
func Keywords(t transcript.Transcript) []Keyword {
	counts := make(map[string]int)
	var order []string
	for _, e := range t.Entries {
		for _, tok := range tokenize(e.Text) {
			if len([]rune(tok)) < MinKeywordLen || stopWords[tok] {
				continue
			}
			if counts[tok] == 0 {
				order = append(order, tok)
			}
			counts[tok]++
		}
	}

	ranked := make([]Keyword, len(order))
	for i, w := range order {
		ranked[i] = Keyword{Word: w, Count: counts[w]}
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Count > ranked[j].Count })
	if len(ranked) > MaxKeywords {
		ranked = ranked[:MaxKeywords]
	}
	if len(ranked) == 0 {
		return nil
	}

	maxC, minC := ranked[0].Count, ranked[len(ranked)-1].Count
	spread := float64(maxC - minC)
	if spread < 1 {
		spread = 1
	}
	for i := range ranked {
		ranked[i].Size = int(math.Ceil(4*float64(ranked[i].Count-minC)/spread)) + 1
	}
	return ranked
}

// tokenize lower-cases s, strips every non-letter rune and splits on whitespace.
func tokenize(s string) []string {
	s = strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r):
			return unicode.ToLower(r)
		case unicode.IsSpace(r):
			return ' '
		}
		return -1
	}, s)
	return strings.Fields(s)
}
