// Package toolutil provides shared helper functions for go_transcript MCP tools
// and the CLI: option decoding and session lookup.
package toolutil

import (
	"context"
	"errors"
	"fmt"

	"github.com/anatolykoptev/go_transcript/internal/engine/export"
	"github.com/anatolykoptev/go_transcript/internal/session"
)

// ErrVideoRequired is returned when a tool call names no video.
var ErrVideoRequired = errors.New("video is required")

// BoolOr returns *p, or def when p is nil.
func BoolOr(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}

// ExportOptions is the option block shared by tool inputs. Timestamps and
// Clean default to on when omitted.
type ExportOptions struct {
	Timestamps   *bool `json:"timestamps,omitempty" jsonschema:"Prefix lines with [m:ss] timestamps (default true)"`
	Clean        *bool `json:"clean,omitempty" jsonschema:"Strip [Music], [Applause], [Laughter] and [Silence] markers (default true)"`
	RemoveFiller bool  `json:"remove_filler,omitempty" jsonschema:"Remove filler words such as um, uh, you know"`
	Paragraphs   bool  `json:"paragraphs,omitempty" jsonschema:"Group lines into paragraphs on pauses"`
	Speakers     bool  `json:"speakers,omitempty" jsonschema:"Label heuristic speaker turns"`
}

// Options converts the tool block into export options.
func (o ExportOptions) Options() export.Options {
	d := export.DefaultOptions()
	return export.Options{
		IncludeTimestamps: BoolOr(o.Timestamps, d.IncludeTimestamps),
		CleanFormat:       BoolOr(o.Clean, d.CleanFormat),
		RemoveFiller:      o.RemoveFiller,
		SmartParagraphs:   o.Paragraphs,
		DetectSpeakers:    o.Speakers,
	}
}

// Session loads (or reuses) the session for video and requires a resolved
// transcript. A failed resolution is returned as its reason error, with
// the session still available to the caller.
func Session(ctx context.Context, mgr *session.Manager, video string, refresh bool) (*session.Session, error) {
	if video == "" {
		return nil, ErrVideoRequired
	}
	s, err := mgr.Load(ctx, video, refresh)
	if err != nil {
		return nil, err
	}
	if !s.Ready() {
		return s, fmt.Errorf("%s: %w", s.VideoID, s.Outcome.Err())
	}
	return s, nil
}
