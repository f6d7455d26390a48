package page

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/anatolykoptev/go_transcript/internal/engine/transcript"
)

const (
	unknownTitle   = "Unknown Title"
	unknownChannel = "Unknown Channel"
)

var (
	videoIDRE   = regexp.MustCompile(`(?:youtube\.com/(?:watch\?(?:.*&)?v=|embed/|shorts/|live/)|youtu\.be/)([a-zA-Z0-9_-]{11})`)
	bareVideoID = regexp.MustCompile(`^[a-zA-Z0-9_-]{11}$`)
)

// ErrNoVideoID is returned when the input names no video.
var ErrNoVideoID = errors.New("no video id")

// ParseVideoID pulls the 11-char video ID from a watch, short, embed or
// youtu.be URL, or accepts a bare ID.
func ParseVideoID(input string) (string, error) {
	input = strings.TrimSpace(input)
	if bareVideoID.MatchString(input) {
		return input, nil
	}
	if m := videoIDRE.FindStringSubmatch(input); len(m) >= 2 {
		return m[1], nil
	}
	if u, err := url.Parse(input); err == nil {
		if v := u.Query().Get("v"); bareVideoID.MatchString(v) {
			return v, nil
		}
	}
	return "", fmt.Errorf("%w in %q", ErrNoVideoID, input)
}

// Info reads the video title and channel. Missing fields fall back to
// placeholder names; a page without a video ID is an InfoExtractionFailed.
func (p *Page) Info() (transcript.VideoInfo, error) {
	if p.VideoID == "" {
		return transcript.VideoInfo{}, &transcript.Failure{
			Reason:   transcript.InfoExtractionFailed,
			Resolver: "page",
			Err:      ErrNoVideoID,
		}
	}
	info := transcript.VideoInfo{
		VideoID: p.VideoID,
		URL:     p.URL,
		Title:   p.title(),
		Channel: p.channel(),
	}
	if info.Title == "" {
		info.Title = unknownTitle
	}
	if info.Channel == "" {
		info.Channel = unknownChannel
	}
	return info, nil
}

func (p *Page) title() string {
	if p.doc != nil {
		for _, sel := range []string{"h1.ytd-video-primary-info-renderer", "h1.title", "h1.ytd-watch-metadata"} {
			if t := selText(p.doc, sel); t != "" {
				return t
			}
		}
		if t, ok := p.doc.Find(`meta[property="og:title"]`).Attr("content"); ok && strings.TrimSpace(t) != "" {
			return transcript.CleanText(t)
		}
	}
	if t := transcript.CleanText(detailString(p.playerResponse, "title")); t != "" {
		return t
	}
	if p.doc != nil {
		t := selText(p.doc, "title")
		t = strings.TrimSpace(strings.TrimSuffix(t, " - YouTube"))
		if t != "" && t != "YouTube" {
			return t
		}
	}
	return ""
}

func (p *Page) channel() string {
	if p.doc != nil {
		for _, sel := range []string{"ytd-channel-name a", "#channel-name", "#owner-name a"} {
			if t := selText(p.doc, sel); t != "" {
				return t
			}
		}
		if t, ok := p.doc.Find(`link[itemprop="name"]`).Attr("content"); ok && strings.TrimSpace(t) != "" {
			return transcript.CleanText(t)
		}
	}
	return transcript.CleanText(detailString(p.playerResponse, "author"))
}

func selText(doc *goquery.Document, sel string) string {
	return transcript.CleanText(doc.Find(sel).First().Text())
}

func detailString(pr any, key string) string {
	details, _ := asMap(pr)["videoDetails"].(map[string]any)
	s, _ := details[key].(string)
	return s
}

func asMap(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}
