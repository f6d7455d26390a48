package resolvers

import (
	"context"

	"github.com/anatolykoptev/go_transcript/internal/engine/page"
	"github.com/anatolykoptev/go_transcript/internal/engine/parsers"
)

// EmbeddedData reads cue groups pre-rendered into the initial data graph.
// It performs no I/O.
type EmbeddedData struct{}

func (EmbeddedData) Name() string { return NameEmbeddedData }

// Known nesting shapes below engagementPanelSectionListRenderer.content.
var embeddedShapes = [][]string{
	{"transcriptRenderer"},
	{"transcriptSearchPanelRenderer", "body"},
	{"transcriptRenderer", "content", "transcriptSearchPanelRenderer", "body"},
}

func (EmbeddedData) Resolve(_ context.Context, p *page.Page) (Result, error) {
	panels := parsers.AsList(parsers.Get(p.InitialData(), "engagementPanels"))
	for _, panel := range panels {
		content := parsers.Get(panel, "engagementPanelSectionListRenderer", "content")
		if content == nil {
			continue
		}
		for _, shape := range embeddedShapes {
			node := parsers.Get(content, shape...)
			if node == nil {
				continue
			}
			t := parsers.ParseCueGroups(node)
			if !t.Empty() {
				return Result{Transcript: t, Language: p.Lang}, nil
			}
		}
	}
	// A transcript renderer without cues is a lazily loaded panel; the
	// internal API resolver handles it.
	return Result{}, ErrNotApplicable
}
