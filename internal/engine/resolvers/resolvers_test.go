package resolvers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anatolykoptev/go_transcript/internal/engine"
	"github.com/anatolykoptev/go_transcript/internal/engine/page"
	"github.com/anatolykoptev/go_transcript/internal/engine/transcript"
)

const videoID = "abcdefghijk"

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return string(b)
}

// watchPage renders a minimal watch page with the given graphs.
func watchPage(t *testing.T, initialData, playerResponse any, extra string) string {
	t.Helper()
	var sb strings.Builder
	sb.WriteString(`<html lang="en"><head>`)
	if initialData != nil {
		fmt.Fprintf(&sb, "<script>var ytInitialData = %s;</script>", mustJSON(t, initialData))
	}
	if playerResponse != nil {
		fmt.Fprintf(&sb, "<script>var ytInitialPlayerResponse = %s;</script>", mustJSON(t, playerResponse))
	}
	sb.WriteString(extra)
	sb.WriteString(`</head><body></body></html>`)
	return sb.String()
}

func useServer(t *testing.T, h http.Handler) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(h)
	engine.Init(engine.Config{YouTubeBaseURL: srv.URL})
	t.Cleanup(func() {
		srv.Close()
		engine.Init(engine.DefaultConfig())
	})
	return srv
}

func cueGroup(startMs, durMs int, text string) map[string]any {
	return map[string]any{
		"transcriptCueGroupRenderer": map[string]any{
			"cues": []any{map[string]any{
				"transcriptCueRenderer": map[string]any{
					"cue":           map[string]any{"simpleText": text},
					"startOffsetMs": fmt.Sprint(startMs),
					"durationMs":    fmt.Sprint(durMs),
				},
			}},
		},
	}
}

func embeddedData(groups ...any) map[string]any {
	return map[string]any{
		"engagementPanels": []any{
			map[string]any{"engagementPanelSectionListRenderer": map[string]any{"content": map[string]any{"structuredDescriptionContentRenderer": map[string]any{}}}},
			map[string]any{"engagementPanelSectionListRenderer": map[string]any{
				"content": map[string]any{
					"transcriptRenderer": map[string]any{
						"body": map[string]any{"transcriptBodyRenderer": map[string]any{"cueGroups": groups}},
					},
				},
			}},
		},
	}
}

func segment(startMs, endMs int, text string) map[string]any {
	return map[string]any{
		"transcriptSegmentRenderer": map[string]any{
			"startMs":       fmt.Sprint(startMs),
			"endMs":         fmt.Sprint(endMs),
			"snippet":       map[string]any{"runs": []any{map[string]any{"text": text}}},
			"startTimeText": map[string]any{"simpleText": transcript.FormatTimestamp(float64(startMs) / 1000)},
		},
	}
}

// --- FindKey ---

func nest(depth int, leaf map[string]any) any {
	var v any = leaf
	for i := 0; i < depth; i++ {
		v = map[string]any{"child": v}
	}
	return v
}

func TestFindKey(t *testing.T) {
	tree := map[string]any{
		"a": []any{1, "x", map[string]any{"target": "first"}},
		"b": map[string]any{"target": "second"},
	}
	v, ok := FindKey(tree, "target", nil)
	require.True(t, ok)
	assert.Equal(t, "first", v, "keys are walked in sorted order")

	v, ok = FindKey(tree, "target", func(v any) bool { return v == "second" })
	require.True(t, ok)
	assert.Equal(t, "second", v)

	_, ok = FindKey(tree, "missing", nil)
	assert.False(t, ok)
	_, ok = FindKey(nil, "target", nil)
	assert.False(t, ok)
}

func TestFindKey_DepthLimit(t *testing.T) {
	_, ok := FindKey(nest(10, map[string]any{"target": 1}), "target", nil)
	assert.True(t, ok)

	_, ok = FindKey(nest(MaxSearchDepth+5, map[string]any{"target": 1}), "target", nil)
	assert.False(t, ok)
}

func TestFindKey_NodeBudget(t *testing.T) {
	wide := make([]any, MaxSearchNodes+10)
	for i := range wide {
		wide[i] = map[string]any{"n": i}
	}
	tree := map[string]any{"a": wide, "z": map[string]any{"target": true}}
	_, ok := FindKey(tree, "target", nil)
	assert.False(t, ok, "budget is spent before the target is reached")
}

// --- EmbeddedData ---

func TestEmbeddedData(t *testing.T) {
	p := page.FromMarkup(videoID, watchPage(t, embeddedData(cueGroup(0, 1500, "hello"), cueGroup(1500, 0, "world")), nil, ""))
	res, err := EmbeddedData{}.Resolve(context.Background(), p)
	require.NoError(t, err)
	require.Equal(t, 2, res.Transcript.Len())
	assert.Equal(t, "hello", res.Transcript.Entries[0].Text)
	assert.Equal(t, 1.5, res.Transcript.Entries[0].Duration)
	assert.Equal(t, transcript.DefaultDuration, res.Transcript.Entries[1].Duration)
	assert.Equal(t, "en", res.Language)
}

func TestEmbeddedData_SearchPanelShape(t *testing.T) {
	data := map[string]any{
		"engagementPanels": []any{map[string]any{"engagementPanelSectionListRenderer": map[string]any{
			"content": map[string]any{"transcriptSearchPanelRenderer": map[string]any{
				"body": map[string]any{"transcriptBodyRenderer": map[string]any{"cueGroups": []any{cueGroup(2000, 1000, "search shape")}}},
			}},
		}}},
	}
	res, err := EmbeddedData{}.Resolve(context.Background(), page.FromMarkup(videoID, watchPage(t, data, nil, "")))
	require.NoError(t, err)
	assert.Equal(t, "search shape", res.Transcript.Entries[0].Text)
	assert.Equal(t, "0:02", res.Transcript.Entries[0].Timestamp)
}

func TestEmbeddedData_NotApplicable(t *testing.T) {
	tests := map[string]string{
		"no data":       "<html></html>",
		"no panels":     watchPage(t, map[string]any{"contents": 1}, nil, ""),
		"empty cues":    watchPage(t, embeddedData(), nil, ""),
		"malformed":     `<script>var ytInitialData = {"engagementPanels": [ broken</script>`,
		"panels scalar": watchPage(t, map[string]any{"engagementPanels": "x"}, nil, ""),
	}
	for name, markup := range tests {
		_, err := EmbeddedData{}.Resolve(context.Background(), page.FromMarkup(videoID, markup))
		assert.ErrorIs(t, err, ErrNotApplicable, name)
	}
}

// --- InternalAPI ---

func TestFindTranscriptToken(t *testing.T) {
	endpoint := func(params string) map[string]any {
		return map[string]any{"getTranscriptEndpoint": map[string]any{"params": params}}
	}
	tests := []struct {
		name      string
		data      any
		direct    any // installed with SetInitialData, bypassing markup
		extra     string
		wantToken string
		wantWhere string
	}{
		{
			name: "engagement panel continuation",
			data: map[string]any{
				"engagementPanels": []any{map[string]any{"engagementPanelSectionListRenderer": map[string]any{
					"content": map[string]any{"continuationItemRenderer": map[string]any{"continuationEndpoint": endpoint("panel%3D%3D")}},
				}}},
				"playerOverlays": map[string]any{"button": endpoint("overlay")},
			},
			wantToken: "panel==",
			wantWhere: "engagement_panel",
		},
		{
			name:      "player overlay",
			data:      map[string]any{"playerOverlays": map[string]any{"menu": []any{map[string]any{"command": endpoint("overlay")}}}},
			wantToken: "overlay",
			wantWhere: "player_overlay",
		},
		{
			name:      "markup plain",
			extra:     `<script>x = {"getTranscriptEndpoint":{"params":"plainTok"}}</script>`,
			wantToken: "plainTok",
			wantWhere: "markup",
		},
		{
			name:      "markup spaced",
			extra:     `<script>x = { "getTranscriptEndpoint" : { "params" : "spacedTok" } }</script>`,
			wantToken: "spacedTok",
			wantWhere: "markup",
		},
		{
			name:      "markup escaped",
			extra:     `<script>x = "{\"getTranscriptEndpoint\":{\"params\":\"escTok%3D\"}}"</script>`,
			wantToken: "escTok=",
			wantWhere: "markup",
		},
		{
			name:      "deep search",
			direct:    map[string]any{"contents": nest(20, endpoint("deep"))},
			wantToken: "deep",
			wantWhere: "deep_search",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := page.FromMarkup(videoID, watchPage(t, tt.data, nil, tt.extra))
			if tt.direct != nil {
				p.SetInitialData(tt.direct)
			}
			token, where := FindTranscriptToken(p)
			assert.Equal(t, tt.wantToken, token)
			assert.Equal(t, tt.wantWhere, where)
		})
	}
}

func TestFindTranscriptToken_None(t *testing.T) {
	token, where := FindTranscriptToken(page.FromMarkup(videoID, "<html></html>"))
	assert.Empty(t, token)
	assert.Empty(t, where)
}

func TestParseTranscriptResponse(t *testing.T) {
	tests := []struct {
		name string
		resp any
		want []string
	}{
		{
			name: "segment list",
			resp: map[string]any{"actions": []any{map[string]any{"updateEngagementPanelAction": map[string]any{
				"content": map[string]any{"transcriptRenderer": map[string]any{"content": map[string]any{
					"transcriptSearchPanelRenderer": map[string]any{"body": map[string]any{
						"transcriptSegmentListRenderer": map[string]any{"initialSegments": []any{
							map[string]any{"transcriptSectionHeaderRenderer": map[string]any{"snippet": map[string]any{"simpleText": "Intro"}}},
							segment(0, 2000, "one"),
							segment(2000, 4500, "two"),
						}},
					}},
				}}},
			}}}},
			want: []string{"one", "two"},
		},
		{
			name: "cue groups",
			resp: map[string]any{"actions": []any{map[string]any{"updateEngagementPanelAction": map[string]any{
				"content": map[string]any{"transcriptRenderer": map[string]any{
					"body": map[string]any{"transcriptBodyRenderer": map[string]any{"cueGroups": []any{cueGroup(0, 1000, "cue")}}},
				}},
			}}}},
			want: []string{"cue"},
		},
		{
			name: "continuation items",
			resp: map[string]any{"onResponseReceivedActions": []any{map[string]any{"appendContinuationItemsAction": map[string]any{
				"continuationItems": []any{segment(1000, 3000, "more")},
			}}}},
			want: []string{"more"},
		},
		{
			name: "unknown",
			resp: map[string]any{"responseContext": map[string]any{}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseTranscriptResponse(tt.resp)
			var texts []string
			for _, e := range got.Entries {
				texts = append(texts, e.Text)
			}
			assert.Equal(t, tt.want, texts)
		})
	}
}

const ytcfgScript = `<script>ytcfg.set({"INNERTUBE_API_KEY":"page-key","INNERTUBE_CLIENT_VERSION":"2.20250101.01.00","INNERTUBE_CONTEXT":{"client":{"hl":"en","gl":"US","visitorData":"vis"}}});</script>`

func TestInternalAPI(t *testing.T) {
	var got map[string]any
	var gotQuery string
	useServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, transcriptEndpoint, r.URL.Path)
		assert.Equal(t, "2.20250101.01.00", r.Header.Get("X-Youtube-Client-Version"))
		gotQuery = r.URL.RawQuery
		body, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(body, &got))
		_, _ = io.WriteString(w, mustJSON(t, map[string]any{
			"onResponseReceivedActions": []any{map[string]any{"appendContinuationItemsAction": map[string]any{
				"continuationItems": []any{segment(0, 1200, "api line")},
			}}},
		}))
	}))

	markup := watchPage(t, nil, nil, ytcfgScript+`<script>a={"getTranscriptEndpoint":{"params":"tok"}}</script>`)
	res, err := InternalAPI{}.Resolve(context.Background(), page.FromMarkup(videoID, markup))
	require.NoError(t, err)
	require.Equal(t, 1, res.Transcript.Len())
	assert.Equal(t, "api line", res.Transcript.Entries[0].Text)
	assert.InDelta(t, 1.2, res.Transcript.Entries[0].Duration, 1e-9)
	assert.Equal(t, "en", res.Language)

	assert.Equal(t, "prettyPrint=false&key=page-key", gotQuery)
	assert.Equal(t, "tok", got["params"])
	client, _ := got["context"].(map[string]any)["client"].(map[string]any)
	assert.Equal(t, "WEB", client["clientName"])
	assert.Equal(t, "vis", client["visitorData"])
	assert.Equal(t, "US", client["gl"])
}

func TestInternalAPI_NoKeyWithoutPageKey(t *testing.T) {
	var gotQuery string
	useServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		_, _ = io.WriteString(w, mustJSON(t, map[string]any{"appendContinuationItemsAction": map[string]any{
			"continuationItems": []any{segment(0, 1000, "x")},
		}}))
	}))
	markup := watchPage(t, nil, nil, `<script>a={"getTranscriptEndpoint":{"params":"tok"}}</script>`)
	_, err := InternalAPI{}.Resolve(context.Background(), page.FromMarkup(videoID, markup))
	require.NoError(t, err)
	assert.Equal(t, "prettyPrint=false", gotQuery)
}

func TestInternalAPI_Failures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		reason  transcript.Reason
	}{
		{
			name:    "server error",
			handler: func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusInternalServerError) },
			reason:  transcript.FetchFailed,
		},
		{
			name:    "not json",
			handler: func(w http.ResponseWriter, _ *http.Request) { _, _ = io.WriteString(w, "<html>nope</html>") },
			reason:  transcript.ParseFailed,
		},
		{
			name:    "no segments",
			handler: func(w http.ResponseWriter, _ *http.Request) { _, _ = io.WriteString(w, `{"responseContext":{}}`) },
			reason:  transcript.ParseFailed,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			useServer(t, tt.handler)
			markup := watchPage(t, nil, nil, `<script>a={"getTranscriptEndpoint":{"params":"tok"}}</script>`)
			_, err := InternalAPI{}.Resolve(context.Background(), page.FromMarkup(videoID, markup))
			require.Error(t, err)
			assert.Equal(t, tt.reason, transcript.ReasonOf(err))
		})
	}
}

func TestInternalAPI_NotApplicable(t *testing.T) {
	_, err := InternalAPI{}.Resolve(context.Background(), page.FromMarkup(videoID, "<html></html>"))
	assert.ErrorIs(t, err, ErrNotApplicable)
}

// --- DOMScrape ---

const panelMarkup = `<html><body><div id="panel">
<ytd-transcript-segment-renderer><div class="segment-timestamp">0:00</div><div class="segment-text">first line</div></ytd-transcript-segment-renderer>
<ytd-transcript-segment-renderer><div class="segment-timestamp">0:04</div><div class="segment-text">  second
 line </div></ytd-transcript-segment-renderer>
<ytd-transcript-segment-renderer><div class="segment-timestamp">bogus</div><div class="segment-text">skipped</div></ytd-transcript-segment-renderer>
<ytd-transcript-segment-renderer><div class="segment-timestamp">1:02:03</div><div class="segment-text">late</div></ytd-transcript-segment-renderer>
</div></body></html>`

func TestDOMScrape_StaticPanel(t *testing.T) {
	res, err := DOMScrape{}.Resolve(context.Background(), page.FromMarkup(videoID, panelMarkup))
	require.NoError(t, err)
	require.Equal(t, 3, res.Transcript.Len())

	e := res.Transcript.Entries
	assert.Equal(t, "first line", e[0].Text)
	assert.Equal(t, 4.0, e[0].Duration)
	assert.Equal(t, "second line", e[1].Text)
	assert.Equal(t, 3719.0, e[1].Duration)
	assert.Equal(t, 3723.0, e[2].Start)
	assert.Equal(t, "1:02:03", e[2].Timestamp)
	assert.Equal(t, transcript.DefaultDuration, e[2].Duration)
}

func TestDOMScrape_LegacyCueGroups(t *testing.T) {
	markup := `<ytd-transcript-body-renderer>
<div class="cue-group"><div class="cue-group-start-offset">0:10</div><div class="cue">legacy a</div></div>
<div class="cue-group"><div class="cue-group-start-offset">0:09</div><div class="cue">legacy b</div></div>
</ytd-transcript-body-renderer>`
	res, err := DOMScrape{}.Resolve(context.Background(), page.FromMarkup(videoID, markup))
	require.NoError(t, err)
	require.Equal(t, 2, res.Transcript.Len())
	assert.Equal(t, transcript.DefaultDuration, res.Transcript.Entries[0].Duration, "non-positive gap defaults")
}

type livePanel struct {
	opened atomic.Bool
	doc    *goquery.Document
}

func (l *livePanel) Open(context.Context) error {
	l.opened.Store(true)
	return nil
}

func (l *livePanel) Segments(context.Context) (*goquery.Selection, error) {
	if !l.opened.Load() {
		return nil, errors.New("panel closed")
	}
	return l.doc.Find(page.SegmentSelector), nil
}

func TestDOMScrape_OpensPanel(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(panelMarkup))
	require.NoError(t, err)
	panel := &livePanel{doc: doc}
	p := page.FromMarkup(videoID, "<html></html>").WithPanel(panel)

	start := time.Now()
	res, err := DOMScrape{SettleDelay: 20 * time.Millisecond}.Resolve(context.Background(), p)
	require.NoError(t, err)
	assert.True(t, panel.opened.Load())
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
	assert.Equal(t, 3, res.Transcript.Len())
}

func TestDOMScrape_SettleCancelled(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(panelMarkup))
	require.NoError(t, err)
	p := page.FromMarkup(videoID, "<html></html>").WithPanel(&livePanel{doc: doc})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = DOMScrape{SettleDelay: time.Hour}.Resolve(ctx, p)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDOMScrape_NotApplicable(t *testing.T) {
	_, err := DOMScrape{}.Resolve(context.Background(), page.FromMarkup(videoID, "<html><body>no panel</body></html>"))
	assert.ErrorIs(t, err, ErrNotApplicable)
}

// --- CaptionTracks ---

const captionXML = `<?xml version="1.0" encoding="utf-8" ?><transcript><text start="0" dur="2.5">caption &amp;amp; one</text><text start="2.5">caption two</text></transcript>`

func trackList(baseURL string) []any {
	return []any{
		map[string]any{"baseUrl": baseURL + "&lang=fr", "languageCode": "fr", "name": map[string]any{"simpleText": "French"}},
		map[string]any{"baseUrl": baseURL + "&lang=en", "languageCode": "en", "kind": "asr", "vssId": "a.en", "name": map[string]any{"runs": []any{map[string]any{"text": "English (auto)"}}}},
	}
}

type hitLog struct {
	mu   sync.Mutex
	hits []string
}

func (h *hitLog) add(s string) {
	h.mu.Lock()
	h.hits = append(h.hits, s)
	h.mu.Unlock()
}

func (h *hitLog) list() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.hits...)
}

func captionServer(t *testing.T, hits *hitLog) *httptest.Server {
	return useServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.add(r.URL.Query().Get("fmt") + ":" + r.URL.Query().Get("lang"))
		switch r.URL.Query().Get("fmt") {
		case "json3":
			_, _ = io.WriteString(w, "{}")
		default:
			_, _ = io.WriteString(w, captionXML)
		}
	}))
}

func TestCaptionTracks_PlayerResponse(t *testing.T) {
	var hits hitLog
	srv := captionServer(t, &hits)
	pr := map[string]any{"captions": map[string]any{"playerCaptionsTracklistRenderer": map[string]any{
		"captionTracks": trackList(srv.URL + "/api/timedtext?v=" + videoID),
	}}}

	res, err := CaptionTracks{}.Resolve(context.Background(), page.FromMarkup(videoID, watchPage(t, nil, pr, "")))
	require.NoError(t, err)
	assert.Equal(t, "en", res.Language)
	require.Equal(t, 2, res.Transcript.Len())
	assert.Equal(t, "caption & one", res.Transcript.Entries[0].Text)
	assert.Equal(t, []string{"json3:en", ":en"}, hits.list(), "short json3 body falls through to the original url")
}

func TestFindCaptionTracks_Sources(t *testing.T) {
	tracks := `[{"baseUrl":"https://example.com/tt?v=1&amp;lang=en","languageCode":"en"}]`
	bs := `\`
	escaped := strings.ReplaceAll(`{"captions":{"playerCaptionsTracklistRenderer":{"captionTracks":`+tracks+`}}}`, `"`, bs+`"`)
	tests := []struct {
		name, markup, where string
	}{
		{"script renderer", `<script>var cfg = {"playerCaptionsTracklistRenderer":{"captionTracks":` + tracks + `}};</script>`, "script"},
		{"script assignment", `<script>captionTracks = ` + tracks + `;</script>`, "script"},
		{"markup", `<div data-x='{"captionTracks":` + tracks + `}'></div>`, "markup"},
		{"escaped markup", `<div data-x="` + escaped + `"></div>`, "escaped_markup"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, where := FindCaptionTracks(page.FromMarkup(videoID, tt.markup))
			require.Len(t, got, 1)
			assert.Equal(t, tt.where, where)
			assert.Equal(t, "en", got[0].LanguageCode)
		})
	}
}

func TestCaptionURLVariants(t *testing.T) {
	bs := `\`
	got := CaptionURLVariants("https://example.com/api/timedtext?v=x" + bs + "u0026lang=en&amp;kind=asr")
	require.Len(t, got, 3)
	assert.Equal(t, "https://example.com/api/timedtext?fmt=json3&kind=asr&lang=en&v=x", got[0])
	assert.Equal(t, "https://example.com/api/timedtext?v=x&lang=en&kind=asr", got[1])
	assert.Equal(t, "https://example.com/api/timedtext?fmt=srv1&kind=asr&lang=en&v=x", got[2])

	dedup := CaptionURLVariants("https://example.com/tt?fmt=srv1")
	assert.Equal(t, []string{"https://example.com/tt?fmt=json3", "https://example.com/tt?fmt=srv1"}, dedup)
}

func TestCaptionTracks_Failures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		reason  transcript.Reason
	}{
		{
			name:    "all variants fail",
			handler: func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusForbidden) },
			reason:  transcript.FetchFailed,
		},
		{
			name:    "bodies too short",
			handler: func(w http.ResponseWriter, _ *http.Request) { _, _ = io.WriteString(w, "<x/>") },
			reason:  transcript.FetchFailed,
		},
		{
			name: "unparseable",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = io.WriteString(w, strings.Repeat("not a caption body ", 10))
			},
			reason: transcript.ParseFailed,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := useServer(t, tt.handler)
			pr := map[string]any{"captions": map[string]any{"playerCaptionsTracklistRenderer": map[string]any{
				"captionTracks": trackList(srv.URL + "/api/timedtext?v=" + videoID),
			}}}
			_, err := CaptionTracks{}.Resolve(context.Background(), page.FromMarkup(videoID, watchPage(t, nil, pr, "")))
			require.Error(t, err)
			assert.Equal(t, tt.reason, transcript.ReasonOf(err))
		})
	}
}

// --- Chain ---

type stubResolver struct {
	name  string
	res   Result
	err   error
	panic bool
	calls int
}

func (s *stubResolver) Name() string { return s.name }

func (s *stubResolver) Resolve(context.Context, *page.Page) (Result, error) {
	s.calls++
	if s.panic {
		panic("boom")
	}
	return s.res, s.err
}

func oneEntry(text string) Result {
	var b transcript.Builder
	b.Add(0, 1, text)
	return Result{Transcript: b.Transcript(), Language: "en"}
}

func TestChain_FirstSuccessWins(t *testing.T) {
	a := &stubResolver{name: "a", err: ErrNotApplicable}
	b := &stubResolver{name: "b", res: oneEntry("from b")}
	c := &stubResolver{name: "c", res: oneEntry("from c")}

	out := NewChain(a, b, c).Resolve(context.Background(), page.FromMarkup(videoID, ""))
	require.True(t, out.OK())
	assert.Equal(t, "b", out.Source)
	assert.Equal(t, "from b", out.Transcript.Entries[0].Text)
	assert.Equal(t, 0, c.calls)
	require.Len(t, out.Attempts, 2)
	assert.Equal(t, transcript.NoCaptionsAvailable, out.Attempts[0].Reason)
}

func TestChain_FailureReasons(t *testing.T) {
	fetch := &transcript.Failure{Reason: transcript.FetchFailed, Resolver: "x", Err: errors.New("down")}
	parse := &transcript.Failure{Reason: transcript.ParseFailed, Resolver: "y", Err: errors.New("junk")}
	tests := []struct {
		name string
		rs   []Resolver
		want transcript.Reason
	}{
		{
			name: "nothing applicable",
			rs:   []Resolver{&stubResolver{name: "a", err: ErrNotApplicable}, &stubResolver{name: "b", res: Result{}}},
			want: transcript.NoCaptionsAvailable,
		},
		{
			name: "first specific failure wins",
			rs: []Resolver{
				&stubResolver{name: "a", err: ErrNotApplicable},
				&stubResolver{name: "b", err: parse},
				&stubResolver{name: "c", err: fetch},
			},
			want: transcript.ParseFailed,
		},
		{
			name: "panic is treated as empty",
			rs:   []Resolver{&stubResolver{name: "a", panic: true}},
			want: transcript.NoCaptionsAvailable,
		},
		{
			name: "plain error",
			rs:   []Resolver{&stubResolver{name: "a", err: errors.New("odd")}},
			want: transcript.NoCaptionsAvailable,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := NewChain(tt.rs...).Resolve(context.Background(), page.FromMarkup(videoID, ""))
			assert.False(t, out.OK())
			assert.Equal(t, tt.want, out.Reason)
			assert.Len(t, out.Attempts, len(tt.rs))
			assert.Error(t, out.Err())
		})
	}
}

func TestChain_EmbeddedBeatsCaptionTracks(t *testing.T) {
	var hits hitLog
	srv := captionServer(t, &hits)
	pr := map[string]any{"captions": map[string]any{"playerCaptionsTracklistRenderer": map[string]any{
		"captionTracks": trackList(srv.URL + "/api/timedtext?v=" + videoID),
	}}}
	markup := watchPage(t, embeddedData(cueGroup(0, 1000, "embedded wins")), pr, "")

	out := NewChain().Resolve(context.Background(), page.FromMarkup(videoID, markup))
	require.True(t, out.OK())
	assert.Equal(t, NameEmbeddedData, out.Source)
	assert.Equal(t, "embedded wins", out.Transcript.Entries[0].Text)
	assert.Empty(t, hits.list(), "caption tracks are never fetched")
}

func TestChain_FallsThroughToCaptionTracks(t *testing.T) {
	var hits hitLog
	srv := captionServer(t, &hits)
	pr := map[string]any{"captions": map[string]any{"playerCaptionsTracklistRenderer": map[string]any{
		"captionTracks": trackList(srv.URL + "/api/timedtext?v=" + videoID),
	}}}

	out := NewChain().Resolve(context.Background(), page.FromMarkup(videoID, watchPage(t, embeddedData(), pr, "")))
	require.True(t, out.OK())
	assert.Equal(t, NameCaptionTracks, out.Source)
	assert.Equal(t, "en", out.Language)
	assert.Len(t, out.Attempts, 4)
}

func TestChain_MalformedPage(t *testing.T) {
	engine.Init(engine.Config{})
	t.Cleanup(func() { engine.Init(engine.DefaultConfig()) })

	markups := []string{
		"",
		"<html><body>plain</body></html>",
		`<script>var ytInitialData = {"engagementPanels":[{"engagementPanelSectionListRenderer":{"content":{"transcriptRenderer":{"body":7}}}}]};</script>`,
		`<script>var ytInitialPlayerResponse = {"captions":{"playerCaptionsTracklistRenderer":{"captionTracks":[{"languageCode":"en"}]}}};</script>`,
		`<script>var ytInitialData = {{{{;var ytInitialPlayerResponse = [[[;</script>`,
		`<script>"captionTracks":[{"baseUrl":</script>`,
	}
	for _, m := range markups {
		out := NewChain().Resolve(context.Background(), page.FromMarkup(videoID, m))
		assert.Equal(t, transcript.NoCaptionsAvailable, out.Reason, m)
	}
}

func TestChain_Resolvers(t *testing.T) {
	assert.Equal(t,
		[]string{NameEmbeddedData, NameInternalAPI, NameDOMScrape, NameCaptionTracks},
		NewChain().Resolvers())
}
