package resolvers

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strings"

	"github.com/anatolykoptev/go_transcript/internal/engine"
	"github.com/anatolykoptev/go_transcript/internal/engine/page"
	"github.com/anatolykoptev/go_transcript/internal/engine/parsers"
	"github.com/anatolykoptev/go_transcript/internal/engine/transcript"
)

// minCaptionBody is the shortest body accepted from a caption URL variant.
const minCaptionBody = 50

// escapedWindow caps how much markup is unescaped when following the
// backslash-escaped captionTracks pattern.
const escapedWindow = 512 * 1024

// Each pattern ends right before the opening bracket of the track array.
var (
	scriptTrackPatterns = []*regexp.Regexp{
		regexp.MustCompile(`"playerCaptionsTracklistRenderer"\s*:\s*\{\s*"captionTracks"\s*:\s*`),
		regexp.MustCompile(`"captionTracks"\s*:\s*`),
		regexp.MustCompile(`captionTracks\s*[:=]\s*`),
	}
	markupTrackPatterns = []*regexp.Regexp{
		regexp.MustCompile(`"captionTracks":`),
		regexp.MustCompile(`"captionTracks"\s*:\s*`),
	}
	escapedTrackPattern = regexp.MustCompile(`\\"captionTracks\\"\s*:\s*`)
)

var baseURLUnescaper = strings.NewReplacer(`\u0026`, "&", "&amp;", "&", `\/`, "/")

// CaptionTracks fetches a caption track listed by the player.
type CaptionTracks struct{}

func (CaptionTracks) Name() string { return NameCaptionTracks }

func (r CaptionTracks) Resolve(ctx context.Context, p *page.Page) (Result, error) {
	tracks, where := FindCaptionTracks(p)
	track, ok := transcript.SelectTrack(tracks)
	if !ok {
		return Result{}, ErrNotApplicable
	}
	slog.Debug("caption track selected",
		slog.String("video", p.VideoID),
		slog.String("via", where),
		slog.String("lang", track.LanguageCode),
		slog.String("kind", track.Kind),
		slog.Int("tracks", len(tracks)))

	body, err := fetchVariants(ctx, CaptionURLVariants(track.BaseURL))
	if err != nil {
		return Result{}, &transcript.Failure{Reason: transcript.FetchFailed, Resolver: r.Name(), Err: err}
	}
	t, kind := parsers.ParseCaptionBody(body)
	if t.Empty() {
		return Result{}, transcript.Failf(transcript.ParseFailed, r.Name(), "%s body yielded no entries", kind)
	}
	return Result{Transcript: t, Language: track.LanguageCode}, nil
}

func fetchVariants(ctx context.Context, variants []string) ([]byte, error) {
	var lastErr error
	for _, u := range variants {
		body, err := engine.Get(ctx, u, nil)
		if err != nil {
			lastErr = err
			slog.Debug("caption variant failed", slog.String("url", u), slog.Any("error", err))
			if ctx.Err() != nil {
				break
			}
			continue
		}
		if len(body) > minCaptionBody {
			return body, nil
		}
		lastErr = fmt.Errorf("body too short (%d bytes)", len(body))
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("no caption url")
	}
	return nil, fmt.Errorf("all %d variants failed: %w", len(variants), lastErr)
}

// FindCaptionTracks looks for the track list in the player response, then
// in each inline script, then in the raw markup.
func FindCaptionTracks(p *page.Page) ([]transcript.CaptionTrack, string) {
	pr := p.PlayerResponse()
	if tracks := tracksFromTree(parsers.Get(pr, "captions", "playerCaptionsTracklistRenderer", "captionTracks")); len(tracks) > 0 {
		return tracks, "player_response"
	}

	for _, script := range p.Scripts {
		for _, re := range scriptTrackPatterns {
			if tracks := tracksAt(re, script); len(tracks) > 0 {
				return tracks, "script"
			}
		}
	}

	for _, re := range markupTrackPatterns {
		if tracks := tracksAt(re, p.Markup); len(tracks) > 0 {
			return tracks, "markup"
		}
	}
	if loc := escapedTrackPattern.FindStringIndex(p.Markup); loc != nil {
		window := p.Markup[loc[1]:]
		if len(window) > escapedWindow {
			window = window[:escapedWindow]
		}
		window = strings.ReplaceAll(window, `\"`, `"`)
		if tracks := tracksFromTree(parsers.DecodeTree([]byte(page.ExtractBalanced(window)))); len(tracks) > 0 {
			return tracks, "escaped_markup"
		}
	}
	return nil, ""
}

func tracksAt(re *regexp.Regexp, s string) []transcript.CaptionTrack {
	blob := page.ExtractBalancedAt(re, s)
	if blob == "" {
		return nil
	}
	return tracksFromTree(parsers.DecodeTree([]byte(blob)))
}

func tracksFromTree(v any) []transcript.CaptionTrack {
	var out []transcript.CaptionTrack
	for _, item := range parsers.AsList(v) {
		m := parsers.AsMap(item)
		base := parsers.AsString(m["baseUrl"])
		if base == "" {
			continue
		}
		out = append(out, transcript.CaptionTrack{
			LanguageCode: parsers.AsString(m["languageCode"]),
			Name:         parsers.TextOf(m["name"]),
			Kind:         parsers.AsString(m["kind"]),
			BaseURL:      base,
			VssID:        parsers.AsString(m["vssId"]),
		})
	}
	return out
}

// CaptionURLVariants returns the delivery URLs tried in order: the json3
// format, the original URL, then the srv1 format. Duplicates are dropped.
func CaptionURLVariants(baseURL string) []string {
	raw := baseURLUnescaper.Replace(baseURL)
	if strings.HasPrefix(raw, "/") {
		raw = strings.TrimRight(engine.Cfg.YouTubeBaseURL, "/") + raw
	}
	candidates := []string{withFormat(raw, "json3"), raw, withFormat(raw, "srv1")}
	out := make([]string, 0, len(candidates))
	seen := make(map[string]bool, len(candidates))
	for _, c := range candidates {
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}

func withFormat(raw, format string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	q := u.Query()
	q.Set("fmt", format)
	u.RawQuery = q.Encode()
	return u.String()
}
