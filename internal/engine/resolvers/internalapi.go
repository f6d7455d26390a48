package resolvers

import (
	"context"
	"log/slog"
	"net/url"
	"regexp"
	"strings"

	"github.com/anatolykoptev/go_transcript/internal/engine"
	"github.com/anatolykoptev/go_transcript/internal/engine/page"
	"github.com/anatolykoptev/go_transcript/internal/engine/parsers"
	"github.com/anatolykoptev/go_transcript/internal/engine/transcript"
)

const (
	transcriptEndpoint   = "/youtubei/v1/get_transcript"
	defaultClientName    = "WEB"
	defaultClientVersion = "2.20240101.00.00"
)

// Markup patterns for the transcript params token, most specific first.
var tokenPatterns = []*regexp.Regexp{
	regexp.MustCompile(`"getTranscriptEndpoint":\{"params":"([^"]+)"`),
	regexp.MustCompile(`"getTranscriptEndpoint"\s*:\s*\{\s*"params"\s*:\s*"([^"]+)"`),
	regexp.MustCompile(`\\"getTranscriptEndpoint\\"\s*:\s*\{\s*\\"params\\"\s*:\s*\\"([^"\\]+)\\"`),
}

var tokenUnescaper = strings.NewReplacer(`\u003d`, "=", `\u0026`, "&", `\/`, "/")

// InternalAPI finds the transcript params token on the page and asks the
// internal transcript endpoint for the segments.
type InternalAPI struct{}

func (InternalAPI) Name() string { return NameInternalAPI }

func (r InternalAPI) Resolve(ctx context.Context, p *page.Page) (Result, error) {
	token, where := FindTranscriptToken(p)
	if token == "" {
		return Result{}, ErrNotApplicable
	}
	slog.Debug("transcript token found", slog.String("video", p.VideoID), slog.String("via", where))

	body, err := engine.PostJSON(ctx, transcriptURL(p), transcriptRequest(p, token), clientHeaders(p))
	if err != nil {
		return Result{}, &transcript.Failure{Reason: transcript.FetchFailed, Resolver: r.Name(), Err: err}
	}
	tree := parsers.DecodeTree(body)
	if tree == nil {
		return Result{}, transcript.Failf(transcript.ParseFailed, r.Name(), "response is not JSON (%d bytes)", len(body))
	}
	t := ParseTranscriptResponse(tree)
	if t.Empty() {
		return Result{}, transcript.Failf(transcript.ParseFailed, r.Name(), "no segments in response")
	}
	return Result{Transcript: t, Language: p.Innertube.HL}, nil
}

// FindTranscriptToken searches, in order: continuation endpoints in the
// engagement panels, the player overlay subtree, the raw markup, and
// finally the whole initial data graph. Returns the unescaped token and
// where it was found.
func FindTranscriptToken(p *page.Page) (token, where string) {
	data := p.InitialData()

	for _, panel := range parsers.AsList(parsers.Get(data, "engagementPanels")) {
		v, ok := FindKey(panel, "continuationItemRenderer", func(v any) bool {
			return parsers.AsString(parsers.Get(v, "continuationEndpoint", "getTranscriptEndpoint", "params")) != ""
		})
		if ok {
			raw := parsers.AsString(parsers.Get(v, "continuationEndpoint", "getTranscriptEndpoint", "params"))
			return unescapeToken(raw), "engagement_panel"
		}
	}

	if overlays := parsers.Get(data, "playerOverlays"); overlays != nil {
		if raw := endpointParams(overlays); raw != "" {
			return unescapeToken(raw), "player_overlay"
		}
	}

	for _, re := range tokenPatterns {
		if m := re.FindStringSubmatch(p.Markup); len(m) == 2 {
			return unescapeToken(m[1]), "markup"
		}
	}

	if raw := endpointParams(data); raw != "" {
		return unescapeToken(raw), "deep_search"
	}
	return "", ""
}

func endpointParams(root any) string {
	v, ok := FindKey(root, "getTranscriptEndpoint", func(v any) bool {
		return parsers.AsString(parsers.Get(v, "params")) != ""
	})
	if !ok {
		return ""
	}
	return parsers.AsString(parsers.Get(v, "params"))
}

func unescapeToken(raw string) string {
	s := tokenUnescaper.Replace(raw)
	if u, err := url.PathUnescape(s); err == nil {
		return u
	}
	return s
}

func transcriptURL(p *page.Page) string {
	u := strings.TrimRight(engine.Cfg.YouTubeBaseURL, "/") + transcriptEndpoint + "?prettyPrint=false"
	if p.Innertube.APIKey != "" {
		u += "&key=" + url.QueryEscape(p.Innertube.APIKey)
	}
	return u
}

func clientVersion(p *page.Page) string {
	if p.Innertube.ClientVersion != "" {
		return p.Innertube.ClientVersion
	}
	return defaultClientVersion
}

func transcriptRequest(p *page.Page, token string) map[string]any {
	hl := p.Innertube.HL
	if hl == "" {
		hl = engine.Cfg.Language
	}
	client := map[string]any{
		"clientName":    defaultClientName,
		"clientVersion": clientVersion(p),
		"hl":            hl,
	}
	if p.Innertube.GL != "" {
		client["gl"] = p.Innertube.GL
	}
	if p.Innertube.VisitorData != "" {
		client["visitorData"] = p.Innertube.VisitorData
	}
	return map[string]any{
		"context": map[string]any{"client": client},
		"params":  token,
	}
}

func clientHeaders(p *page.Page) map[string]string {
	h := map[string]string{
		"X-Youtube-Client-Name":    "1",
		"X-Youtube-Client-Version": clientVersion(p),
		"Origin":                   strings.TrimRight(engine.Cfg.YouTubeBaseURL, "/"),
		"Referer":                  p.URL,
	}
	if p.Innertube.VisitorData != "" {
		h["X-Goog-Visitor-Id"] = p.Innertube.VisitorData
	}
	return h
}

// ParseTranscriptResponse decodes the three known get_transcript response
// shapes: a segment list under transcriptSearchPanelRenderer, cue groups
// under transcriptRenderer, and continuation items.
func ParseTranscriptResponse(tree any) transcript.Transcript {
	if v, ok := FindKey(tree, "transcriptSearchPanelRenderer", func(v any) bool {
		return parsers.AsList(segmentList(v)) != nil
	}); ok {
		if t := parsers.ParseSegments(segmentList(v)); !t.Empty() {
			return t
		}
	}
	if v, ok := FindKey(tree, "transcriptRenderer", func(v any) bool {
		return parsers.Get(v, "body", "transcriptBodyRenderer", "cueGroups") != nil
	}); ok {
		if t := parsers.ParseCueGroups(v); !t.Empty() {
			return t
		}
	}
	if v, ok := FindKey(tree, "appendContinuationItemsAction", func(v any) bool {
		return parsers.AsList(parsers.Get(v, "continuationItems")) != nil
	}); ok {
		if t := parsers.ParseSegments(parsers.Get(v, "continuationItems")); !t.Empty() {
			return t
		}
	}
	return transcript.Transcript{}
}

func segmentList(v any) any {
	return parsers.Get(v, "body", "transcriptSegmentListRenderer", "initialSegments")
}
