// Package export renders a canonical transcript into download formats:
// plain text, markdown, SRT, WebVTT, JSON and a print-ready HTML document.
// Output is deterministic for a given transcript and option set.
package export

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/anatolykoptev/go_transcript/internal/engine"
	"github.com/anatolykoptev/go_transcript/internal/engine/analytics"
	"github.com/anatolykoptev/go_transcript/internal/engine/transcript"
)

// ErrEmptyTranscript is returned when there is nothing to export.
var ErrEmptyTranscript = errors.New("transcript is empty")

// Format is an export format name.
type Format string

const (
	FormatTXT  Format = "txt"
	FormatMD   Format = "md"
	FormatSRT  Format = "srt"
	FormatVTT  Format = "vtt"
	FormatJSON Format = "json"
	FormatHTML Format = "html"
)

// Formats lists every supported format.
var Formats = []Format{FormatTXT, FormatMD, FormatSRT, FormatVTT, FormatJSON, FormatHTML}

// ParseFormat accepts a format name or file extension, case-insensitively.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "."))
	switch f {
	case "text":
		return FormatTXT, nil
	case "markdown":
		return FormatMD, nil
	case "webvtt":
		return FormatVTT, nil
	case "pdf", "print":
		return FormatHTML, nil
	}
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown export format %q", s)
}

// ContentType returns the MIME type of the format.
func (f Format) ContentType() string {
	switch f {
	case FormatMD:
		return "text/markdown; charset=utf-8"
	case FormatSRT:
		return "application/x-subrip; charset=utf-8"
	case FormatVTT:
		return "text/vtt; charset=utf-8"
	case FormatJSON:
		return "application/json"
	case FormatHTML:
		return "text/html; charset=utf-8"
	}
	return "text/plain; charset=utf-8"
}

// Filename derives the download name from the video title.
func Filename(title string, f Format) string {
	return engine.SanitizeFilename(title) + "_transcript." + string(f)
}

// Line is one exported entry after cleanup.
type Line struct {
	Start     float64 `json:"start"`
	End       float64 `json:"end"`
	Timestamp string  `json:"timestamp"`
	Text      string  `json:"text"`
	Speaker   string  `json:"speaker,omitempty"`
}

// Document is the export view of a transcript.
type Document struct {
	Info       transcript.VideoInfo
	Options    Options
	Stats      analytics.Stats
	Keywords   []analytics.Keyword
	Lines      []Line
	Paragraphs [][]Line
}

// Prepare applies the options to t. Stats and keywords describe the raw
// transcript; lines and paragraphs reflect cleanup.
func Prepare(info transcript.VideoInfo, t transcript.Transcript, opts Options) Document {
	entries := t.Entries
	if opts.DetectSpeakers {
		entries = analytics.Speakers(t)
	}

	kept := make([]transcript.TimedEntry, 0, len(entries))
	for _, e := range entries {
		text := CleanLine(e.Text, opts)
		if text == "" {
			continue
		}
		e.Text = text
		kept = append(kept, e)
	}

	doc := Document{
		Info:     info,
		Options:  opts,
		Stats:    analytics.Compute(t),
		Keywords: analytics.Keywords(t),
		Lines:    toLines(kept),
	}
	if opts.SmartParagraphs {
		for _, run := range analytics.Paragraphs(kept) {
			doc.Paragraphs = append(doc.Paragraphs, toLines(run))
		}
	} else if len(doc.Lines) > 0 {
		doc.Paragraphs = [][]Line{doc.Lines}
	}
	return doc
}

func toLines(entries []transcript.TimedEntry) []Line {
	lines := make([]Line, len(entries))
	for i, e := range entries {
		lines[i] = Line{
			Start:     e.Start,
			End:       e.End(),
			Timestamp: e.Timestamp,
			Text:      e.Text,
			Speaker:   e.Speaker,
		}
	}
	return lines
}

// Write renders doc in format f.
func Write(w io.Writer, f Format, doc Document) error {
	switch f {
	case FormatTXT:
		return writeText(w, doc)
	case FormatMD:
		return writeMarkdown(w, doc)
	case FormatSRT:
		return writeSRT(w, doc)
	case FormatVTT:
		return writeVTT(w, doc)
	case FormatJSON:
		return writeJSON(w, doc)
	case FormatHTML:
		return writeHTML(w, doc)
	}
	return fmt.Errorf("unknown export format %q", f)
}

// Render prepares and renders t. An empty transcript is refused.
func Render(f Format, info transcript.VideoInfo, t transcript.Transcript, opts Options) ([]byte, error) {
	if t.Empty() {
		return nil, ErrEmptyTranscript
	}
	var buf bytes.Buffer
	if err := Write(&buf, f, Prepare(info, t, opts)); err != nil {
		return nil, fmt.Errorf("export %s: %w", f, err)
	}
	engine.IncrExports()
	return buf.Bytes(), nil
}
