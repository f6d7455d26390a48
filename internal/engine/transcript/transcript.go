// Package transcript holds the canonical transcript model shared by every
// resolver, parser, analytic pass and export writer.
package transcript

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// DefaultDuration is used when a source omits an entry's duration.
const DefaultDuration = 3.0

// TimedEntry is one caption unit.
type TimedEntry struct {
	Start     float64 `json:"start"`
	Duration  float64 `json:"duration"`
	Text      string  `json:"text"`
	Timestamp string  `json:"timestamp"`
	Speaker   string  `json:"speaker,omitempty"` // set only by analytics.Speakers
}

// End returns Start + Duration.
func (e TimedEntry) End() float64 {
	return e.Start + e.Duration
}

// Transcript is an ordered sequence of entries (non-decreasing Start).
// Order is never changed after a parser builds it.
type Transcript struct {
	Entries []TimedEntry `json:"entries"`
}

// Len returns the number of entries.
func (t Transcript) Len() int { return len(t.Entries) }

// Empty reports whether the transcript has no entries.
func (t Transcript) Empty() bool { return len(t.Entries) == 0 }

// Clone returns a deep copy so callers can annotate entries without
// touching a shared transcript.
func (t Transcript) Clone() Transcript {
	out := make([]TimedEntry, len(t.Entries))
	copy(out, t.Entries)
	return Transcript{Entries: out}
}

// Builder accumulates entries, applying the shared cleanup rule and
// dropping entries with empty text.
type Builder struct {
	entries []TimedEntry
}

// Add cleans text and appends an entry. Entries with empty text or a
// non-finite start are dropped. Negative starts are clamped to 0;
// non-positive durations become DefaultDuration. Returns false when the
// entry was dropped.
func (b *Builder) Add(start, duration float64, text string) bool {
	text = CleanText(text)
	if text == "" || math.IsNaN(start) || math.IsInf(start, 0) {
		return false
	}
	if start < 0 {
		start = 0
	}
	if duration <= 0 || math.IsNaN(duration) || math.IsInf(duration, 0) {
		duration = DefaultDuration
	}
	b.entries = append(b.entries, TimedEntry{
		Start:     start,
		Duration:  duration,
		Text:      text,
		Timestamp: FormatTimestamp(start),
	})
	return true
}

// Transcript returns the built transcript.
func (b *Builder) Transcript() Transcript {
	return Transcript{Entries: b.entries}
}

// Len returns the number of entries added so far.
func (b *Builder) Len() int { return len(b.entries) }

var whitespaceRe = regexp.MustCompile(`\s+`)

// CleanText replaces newlines with spaces, collapses whitespace runs and trims.
func CleanText(s string) string {
	s = strings.ReplaceAll(s, "\r\n", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	s = whitespaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

var xmlEntityReplacer = strings.NewReplacer(
	"&amp;", "&",
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&#39;", "'",
)

// DecodeEntities decodes the five standard XML entities only.
func DecodeEntities(s string) string {
	return xmlEntityReplacer.Replace(s)
}

// FormatTimestamp renders seconds as h:mm:ss (hours > 0) or m:ss.
// Fractions are floored.
func FormatTimestamp(seconds float64) string {
	if seconds < 0 || math.IsNaN(seconds) {
		seconds = 0
	}
	total := int64(math.Floor(seconds))
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// ParseTimestamp converts a displayed "H:MM:SS", "M:SS" or "SS" label back
// to seconds by reading the colon-separated components right to left.
func ParseTimestamp(label string) (float64, bool) {
	label = strings.TrimSpace(label)
	if label == "" {
		return 0, false
	}
	parts := strings.Split(label, ":")
	if len(parts) > 3 {
		return 0, false
	}
	var total float64
	mult := 1.0
	for i := len(parts) - 1; i >= 0; i-- {
		p := strings.TrimSpace(parts[i])
		v, err := strconv.ParseFloat(p, 64)
		if err != nil || v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, false
		}
		total += v * mult
		mult *= 60
	}
	return total, true
}
