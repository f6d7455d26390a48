package export

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/anatolykoptev/go_transcript/internal/engine/analytics"
	"github.com/anatolykoptev/go_transcript/internal/engine/transcript"
)

// FormatText renders paragraphs as "[m:ss] text" lines. Paragraphs are
// separated by a blank line; with speakers on, a "Speaker N: " prefix is
// written whenever the speaker changes.
func FormatText(paragraphs [][]Line, opts Options) string {
	var sb strings.Builder
	lastSpeaker := ""
	for i, para := range paragraphs {
		if i > 0 {
			sb.WriteByte('\n')
		}
		for _, l := range para {
			if opts.IncludeTimestamps {
				fmt.Fprintf(&sb, "[%s] ", l.Timestamp)
			}
			if opts.DetectSpeakers && l.Speaker != "" && l.Speaker != lastSpeaker {
				sb.WriteString(l.Speaker)
				sb.WriteString(": ")
				lastSpeaker = l.Speaker
			}
			sb.WriteString(l.Text)
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// Preview renders the first n cleaned lines of t.
func Preview(t transcript.Transcript, n int, includeTimestamps bool) string {
	opts := Options{IncludeTimestamps: includeTimestamps, CleanFormat: true}
	lines := Prepare(transcript.VideoInfo{}, t, opts).Lines
	if n > 0 && len(lines) > n {
		lines = lines[:n]
	}
	return strings.TrimRight(FormatText([][]Line{lines}, opts), "\n")
}

// CleanText joins the clean-formatted entry texts of t with single spaces,
// dropping entries that clean to nothing.
func CleanText(t transcript.Transcript) string {
	opts := Options{CleanFormat: true}
	parts := make([]string, 0, len(t.Entries))
	for _, e := range t.Entries {
		if text := CleanLine(e.Text, opts); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " ")
}

func writeText(w io.Writer, doc Document) error {
	_, err := io.WriteString(w, FormatText(doc.Paragraphs, doc.Options))
	return err
}

// subtitleTime renders seconds as HH:MM:SS<sep>mmm.
func subtitleTime(seconds float64, sep string) string {
	ms := int64(math.Round(seconds * 1000))
	if ms < 0 {
		ms = 0
	}
	h := ms / 3_600_000
	m := ms / 60_000 % 60
	s := ms / 1000 % 60
	return fmt.Sprintf("%02d:%02d:%02d%s%03d", h, m, s, sep, ms%1000)
}

func cueText(l Line, opts Options) string {
	if opts.DetectSpeakers && l.Speaker != "" {
		return l.Speaker + ": " + l.Text
	}
	return l.Text
}

func writeSRT(w io.Writer, doc Document) error {
	var sb strings.Builder
	for i, l := range doc.Lines {
		fmt.Fprintf(&sb, "%d\n%s --> %s\n%s\n\n", i+1,
			subtitleTime(l.Start, ","), subtitleTime(l.End, ","), cueText(l, doc.Options))
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

func writeVTT(w io.Writer, doc Document) error {
	var sb strings.Builder
	sb.WriteString("WEBVTT\n\n")
	for i, l := range doc.Lines {
		text := l.Text
		if doc.Options.DetectSpeakers && l.Speaker != "" {
			text = "<v " + l.Speaker + ">" + text
		}
		fmt.Fprintf(&sb, "%d\n%s --> %s\n%s\n\n", i+1,
			subtitleTime(l.Start, "."), subtitleTime(l.End, "."), text)
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

type jsonDocument struct {
	Video      transcript.VideoInfo `json:"video"`
	Stats      analytics.Stats      `json:"stats"`
	Keywords   []analytics.Keyword  `json:"keywords,omitempty"`
	Options    Options              `json:"options"`
	Entries    []Line               `json:"entries"`
	Paragraphs [][]int              `json:"paragraphs,omitempty"`
}

func writeJSON(w io.Writer, doc Document) error {
	out := jsonDocument{
		Video:    doc.Info,
		Stats:    doc.Stats,
		Keywords: doc.Keywords,
		Options:  doc.Options,
		Entries:  doc.Lines,
	}
	if doc.Options.SmartParagraphs {
		idx := 0
		for _, para := range doc.Paragraphs {
			group := make([]int, len(para))
			for i := range para {
				group[i] = idx
				idx++
			}
			out.Paragraphs = append(out.Paragraphs, group)
		}
	}
	if out.Entries == nil {
		out.Entries = []Line{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
