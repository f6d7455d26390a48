// Package analytics holds pure passes over a canonical transcript:
// speaker segmentation, paragraph grouping, keyword ranking and summary
// statistics. Inputs are never modified.
package analytics

import (
	"fmt"
	"math"
	"strings"

	"github.com/anatolykoptev/go_transcript/internal/engine/transcript"
)

const (
	// SpeakerGap is the silence, in seconds, after which a new speaker is assumed.
	SpeakerGap = 2.0
	// SpeakerCount is the number of rotating speaker labels.
	SpeakerCount = 3
	// ParagraphGap is the start-to-start gap, in seconds, that opens a new paragraph.
	ParagraphGap = 2.0
	// ParagraphSize caps the number of entries in one paragraph.
	ParagraphSize = 5
)

// SpeakerLabel returns the label for the zero-based speaker index.
func SpeakerLabel(i int) string {
	return fmt.Sprintf("Speaker %d", i%SpeakerCount+1)
}

// Speakers returns a copy of the entries with Speaker set. The label rotates
// when the gap since the previous entry's end exceeds SpeakerGap or when the
// previous entry ends with a question mark.
func Speakers(t transcript.Transcript) []transcript.TimedEntry {
	out := make([]transcript.TimedEntry, len(t.Entries))
	speaker := 0
	for i, e := range t.Entries {
		if i > 0 {
			prev := t.Entries[i-1]
			if e.Start-prev.End() > SpeakerGap || strings.HasSuffix(strings.TrimSpace(prev.Text), "?") {
				speaker = (speaker + 1) % SpeakerCount
			}
		}
		e.Speaker = SpeakerLabel(speaker)
		out[i] = e
	}
	return out
}

// Paragraphs partitions the entries into runs of at most ParagraphSize. A
// start gap above ParagraphGap always opens a new run.
func Paragraphs(entries []transcript.TimedEntry) [][]transcript.TimedEntry {
	var out [][]transcript.TimedEntry
	var cur []transcript.TimedEntry
	for i, e := range entries {
		if len(cur) > 0 && (len(cur) >= ParagraphSize || e.Start-entries[i-1].Start > ParagraphGap) {
			out = append(out, cur)
			cur = nil
		}
		cur = append(cur, e)
	}
	if len(cur) > 0 {
		out = append(out, cur)
	}
	return out
}

// Stats summarizes a transcript.
type Stats struct {
	Words     int     `json:"words"`
	Sentences int     `json:"sentences"`
	Duration  float64 `json:"duration_seconds"`
	Pace      int     `json:"words_per_minute"`
	Entries   int     `json:"entries"`
}

// DurationLabel formats Duration like an entry timestamp.
func (s Stats) DurationLabel() string {
	return transcript.FormatTimestamp(s.Duration)
}

// Compute derives Stats. Duration is the last entry's start.
func Compute(t transcript.Transcript) Stats {
	text := FullText(t)
	s := Stats{
		Words:     len(strings.Fields(text)),
		Sentences: countSentences(text),
		Entries:   t.Len(),
	}
	if n := t.Len(); n > 0 {
		s.Duration = t.Entries[n-1].Start
	}
	if s.Duration > 0 {
		s.Pace = int(math.Round(float64(s.Words) / s.Duration * 60))
	}
	return s
}

func countSentences(text string) int {
	n := 0
	for _, part := range strings.FieldsFunc(text, isSentenceEnd) {
		if strings.TrimSpace(part) != "" {
			n++
		}
	}
	return n
}

func isSentenceEnd(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

// FullText joins entry texts with single spaces.
func FullText(t transcript.Transcript) string {
	parts := make([]string, len(t.Entries))
	for i, e := range t.Entries {
		parts[i] = e.Text
	}
	return strings.Join(parts, " ")
}
