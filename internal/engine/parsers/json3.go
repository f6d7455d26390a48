package parsers

import (
	"encoding/json"
	"strings"

	"github.com/anatolykoptev/go_transcript/internal/engine/transcript"
)

// json3 event stream (fmt=json3).
type eventStream struct {
	Events  []streamEvent `json:"events"`
	Actions []streamEvent `json:"actions"`
}

type streamEvent struct {
	TStartMs    *float64 `json:"tStartMs"`
	DDurationMs *float64 `json:"dDurationMs"`
	Segs        []struct {
		UTF8 string `json:"utf8"`
	} `json:"segs"`
	UTF8 *string `json:"utf8"`
}

// ParseEventStream parses a JSON object holding an events (or actions)
// array of {tStartMs, dDurationMs, segs[].utf8 | utf8}.
func ParseEventStream(data []byte) transcript.Transcript {
	var es eventStream
	if err := json.Unmarshal(data, &es); err != nil {
		return transcript.Transcript{}
	}
	events := es.Events
	if len(events) == 0 {
		events = es.Actions
	}

	var b transcript.Builder
	for _, ev := range events {
		if ev.TStartMs == nil {
			continue
		}
		var text string
		if len(ev.Segs) > 0 {
			var sb strings.Builder
			for _, s := range ev.Segs {
				sb.WriteString(s.UTF8)
			}
			text = sb.String()
		} else if ev.UTF8 != nil {
			text = *ev.UTF8
		}
		dur := 0.0
		if ev.DDurationMs != nil {
			dur = *ev.DDurationMs / 1000
		}
		b.Add(*ev.TStartMs/1000, dur, text)
	}
	return b.Transcript()
}
