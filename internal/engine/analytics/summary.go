package analytics

import (
	"regexp"
	"strings"
)

// minSummarySentence is the shortest sentence, in bytes, kept for a summary.
const minSummarySentence = 20

var sentenceSplitRe = regexp.MustCompile(`[.!?]+`)

// Summarize builds an extractive summary: every substantial sentence when
// there are at most three, otherwise the first, middle and last ones.
// Returns nil when no sentence qualifies.
func Summarize(text string) []string {
	var sentences []string
	for _, s := range sentenceSplitRe.Split(text, -1) {
		if s = strings.TrimSpace(s); len(s) > minSummarySentence {
			sentences = append(sentences, s)
		}
	}
	if len(sentences) <= 3 {
		return sentences
	}
	return []string{
		sentences[0],
		sentences[len(sentences)/2],
		sentences[len(sentences)-1],
	}
}
