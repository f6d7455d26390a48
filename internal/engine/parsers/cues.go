package parsers

import (
	"github.com/anatolykoptev/go_transcript/internal/engine/transcript"
)

// ParseCueGroups parses the structured cue-group shape:
//
//	cueGroups[].transcriptCueGroupRenderer.cues[].transcriptCueRenderer
//	    {cue: {simpleText | runs[]}, startOffsetMs, durationMs}
//
// v may be the object holding cueGroups (directly, under body or under
// transcriptBodyRenderer) or the cueGroups list itself. Wrapper renderers
// may be omitted.
func ParseCueGroups(v any) transcript.Transcript {
	groups := findCueGroups(v)
	var b transcript.Builder
	for _, g := range groups {
		gm := AsMap(g)
		if inner := AsMap(gm["transcriptCueGroupRenderer"]); inner != nil {
			gm = inner
		}
		for _, c := range AsList(gm["cues"]) {
			cm := AsMap(c)
			if inner := AsMap(cm["transcriptCueRenderer"]); inner != nil {
				cm = inner
			}
			if cm == nil {
				continue
			}
			startMs, ok := AsNumber(cm["startOffsetMs"])
			if !ok {
				continue
			}
			durMs, _ := AsNumber(cm["durationMs"])
			b.Add(startMs/1000, durMs/1000, TextOf(cm["cue"]))
		}
	}
	return b.Transcript()
}

func findCueGroups(v any) []any {
	if l := AsList(v); l != nil {
		return l
	}
	m := AsMap(v)
	if m == nil {
		return nil
	}
	for _, path := range [][]string{
		{"cueGroups"},
		{"transcriptBodyRenderer", "cueGroups"},
		{"body", "transcriptBodyRenderer", "cueGroups"},
		{"transcriptRenderer", "body", "transcriptBodyRenderer", "cueGroups"},
	} {
		if l := AsList(Get(m, path...)); l != nil {
			return l
		}
	}
	return nil
}
