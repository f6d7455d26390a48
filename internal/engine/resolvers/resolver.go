// Package resolvers locates raw transcript payloads on a watch page. Each
// resolver targets one data shape; Chain runs them in priority order and
// keeps the first non-empty transcript.
package resolvers

import (
	"context"
	"errors"

	"github.com/anatolykoptev/go_transcript/internal/engine/page"
	"github.com/anatolykoptev/go_transcript/internal/engine/transcript"
)

// Resolver names, also used as Outcome.Source and metric labels.
const (
	NameEmbeddedData  = "embedded_data"
	NameInternalAPI   = "internal_api"
	NameDOMScrape     = "dom_scrape"
	NameCaptionTracks = "caption_tracks"
)

// ErrNotApplicable means the resolver found no payload of its shape.
var ErrNotApplicable = errors.New("not applicable")

// Result is a resolver's canonical output.
type Result struct {
	Transcript transcript.Transcript
	Language   string
}

// Resolver attempts one extraction strategy against a page.
//
// Resolve returns ErrNotApplicable when the payload is absent, a
// *transcript.Failure when a payload was located but could not be fetched
// or decoded, or a Result with at least one entry.
type Resolver interface {
	Name() string
	Resolve(ctx context.Context, p *page.Page) (Result, error)
}

// Default returns the resolvers in their fixed priority order.
func Default() []Resolver {
	return []Resolver{
		EmbeddedData{},
		InternalAPI{},
		DOMScrape{},
		CaptionTracks{},
	}
}
