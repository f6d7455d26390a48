// Package page models the host watch page as a read-only data source: the
// initial data graph, the player response graph, raw markup, inline
// scripts, innertube client settings and the transcript panel.
package page

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/anatolykoptev/go_transcript/internal/engine"
)

var (
	initialDataMarkers = []string{
		"var ytInitialData = ",
		`window["ytInitialData"] = `,
		"ytInitialData = ",
	}
	playerResponseMarkers = []string{
		"var ytInitialPlayerResponse = ",
		`window["ytInitialPlayerResponse"] = `,
		"ytInitialPlayerResponse = ",
	}
	ytcfgSetRe = regexp.MustCompile(`ytcfg\.set\(\s*`)
)

// Innertube holds the client settings the page publishes through ytcfg.
type Innertube struct {
	APIKey        string
	ClientName    string
	ClientVersion string
	VisitorData   string
	HL            string
	GL            string
}

// Page is one loaded watch page. It is read-only once built.
type Page struct {
	VideoID   string
	URL       string
	Markup    string
	Scripts   []string
	Innertube Innertube
	Lang      string

	initialData    any
	playerResponse any
	doc            *goquery.Document
	panel          Panel
}

// Load fetches the watch page for videoID and builds a Page from it.
func Load(ctx context.Context, videoID string) (*Page, error) {
	watchURL := WatchURL(videoID)
	body, err := engine.FetchPage(ctx, watchURL)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", videoID, err)
	}
	p := FromMarkup(videoID, string(body))
	p.URL = watchURL
	return p, nil
}

// WatchURL returns the watch page URL on the configured host.
func WatchURL(videoID string) string {
	return strings.TrimRight(engine.Cfg.YouTubeBaseURL, "/") + "/watch?v=" + videoID
}

// FromMarkup builds a Page from already available markup, such as a page
// saved from a browser. Unparseable parts are simply absent.
func FromMarkup(videoID, markup string) *Page {
	p := &Page{
		VideoID: videoID,
		URL:     WatchURL(videoID),
		Markup:  markup,
	}
	p.initialData = extractAfterMarker(markup, initialDataMarkers)
	p.playerResponse = extractAfterMarker(markup, playerResponseMarkers)
	p.Innertube = parseInnertube(markup)

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err == nil {
		p.doc = doc
		p.Scripts = inlineScripts(doc)
		p.Lang, _ = doc.Find("html").First().Attr("lang")
	}
	if p.Innertube.HL == "" {
		p.Innertube.HL = p.Lang
	}
	p.panel = staticPanel{doc: doc}
	return p
}

// WithPanel replaces the transcript panel, e.g. with a live browser panel
// that can be opened through the page's menu.
func (p *Page) WithPanel(panel Panel) *Page {
	p.panel = panel
	return p
}

// InitialData returns the parsed initial data graph, or nil.
func (p *Page) InitialData() any { return p.initialData }

// PlayerResponse returns the parsed player response graph, or nil.
func (p *Page) PlayerResponse() any { return p.playerResponse }

// Panel returns the transcript panel accessor.
func (p *Page) Panel() Panel { return p.panel }

// SetInitialData and SetPlayerResponse override the graphs read from
// markup, for hosts that expose them directly as script globals.
func (p *Page) SetInitialData(v any) *Page    { p.initialData = v; return p }
func (p *Page) SetPlayerResponse(v any) *Page { p.playerResponse = v; return p }

func inlineScripts(doc *goquery.Document) []string {
	var out []string
	doc.Find("script").Each(func(_ int, s *goquery.Selection) {
		if _, ok := s.Attr("src"); ok {
			return
		}
		var sb strings.Builder
		for _, n := range s.Nodes {
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				if c.Type == html.TextNode {
					sb.WriteString(c.Data)
				}
			}
		}
		if text := strings.TrimSpace(sb.String()); text != "" {
			out = append(out, text)
		}
	})
	return out
}

func parseInnertube(markup string) Innertube {
	var it Innertube
	for _, loc := range ytcfgSetRe.FindAllStringIndex(markup, -1) {
		blob := extractBalanced(markup[loc[1]:])
		if blob == "" || blob[0] != '{' {
			continue
		}
		var m map[string]any
		if err := json.Unmarshal([]byte(blob), &m); err != nil {
			continue
		}
		setIfEmpty(&it.APIKey, m["INNERTUBE_API_KEY"])
		setIfEmpty(&it.ClientName, m["INNERTUBE_CLIENT_NAME"])
		setIfEmpty(&it.ClientVersion, m["INNERTUBE_CLIENT_VERSION"])
		setIfEmpty(&it.VisitorData, m["VISITOR_DATA"])
		if ctx, ok := m["INNERTUBE_CONTEXT"].(map[string]any); ok {
			if client, ok := ctx["client"].(map[string]any); ok {
				setIfEmpty(&it.HL, client["hl"])
				setIfEmpty(&it.GL, client["gl"])
				setIfEmpty(&it.VisitorData, client["visitorData"])
				setIfEmpty(&it.ClientVersion, client["clientVersion"])
			}
		}
	}
	return it
}

func setIfEmpty(dst *string, v any) {
	if *dst != "" {
		return
	}
	if s, ok := v.(string); ok {
		*dst = s
	}
}

// ErrNotInteractive is returned by panels that cannot be opened, such as a
// fetched page whose scripts never ran.
var ErrNotInteractive = errors.New("page is not interactive")

// Panel reads the rendered transcript panel.
type Panel interface {
	// Open tries to reveal the panel through the page's own menu.
	Open(ctx context.Context) error
	// Segments returns the rendered segment elements.
	Segments(ctx context.Context) (*goquery.Selection, error)
}

// SegmentSelector matches rendered transcript rows, current and legacy layouts.
const SegmentSelector = "ytd-transcript-segment-renderer, ytd-transcript-body-renderer .cue-group"

type staticPanel struct {
	doc *goquery.Document
}

func (staticPanel) Open(context.Context) error { return ErrNotInteractive }

func (s staticPanel) Segments(context.Context) (*goquery.Selection, error) {
	if s.doc == nil {
		return nil, errors.New("no document")
	}
	return s.doc.Find(SegmentSelector), nil
}
