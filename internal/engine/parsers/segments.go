package parsers

import (
	"github.com/anatolykoptev/go_transcript/internal/engine/transcript"
)

// ParseSegments parses the internal-API segment list: nodes wrapping
// transcriptSegmentRenderer {startMs, endMs, snippet, startTimeText}.
// Section headers and other node kinds are skipped.
func ParseSegments(v any) transcript.Transcript {
	var b transcript.Builder
	for _, node := range AsList(v) {
		seg := AsMap(AsMap(node)["transcriptSegmentRenderer"])
		if seg == nil {
			continue
		}
		startMs, ok := AsNumber(seg["startMs"])
		if !ok {
			// Fall back to the displayed label; Timestamp is always
			// re-derived from the start offset.
			ls, ok := transcript.ParseTimestamp(TextOf(seg["startTimeText"]))
			if !ok {
				continue
			}
			startMs = ls * 1000
		}
		start := startMs / 1000
		dur := 0.0
		if endMs, ok := AsNumber(seg["endMs"]); ok && endMs > startMs {
			dur = (endMs - startMs) / 1000
		}
		b.Add(start, dur, TextOf(seg["snippet"]))
	}
	return b.Transcript()
}
