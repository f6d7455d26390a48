package transcriptserver

import (
	"github.com/anatolykoptev/go_transcript/internal/engine/analytics"
	"github.com/anatolykoptev/go_transcript/internal/engine/transcript"
	"github.com/anatolykoptev/go_transcript/internal/toolutil"
)

// FetchInput is the transcript_fetch input.
type FetchInput struct {
	Video      string `json:"video" jsonschema:"YouTube video URL or 11-character video ID"`
	Refresh    bool   `json:"refresh,omitempty" jsonschema:"Resolve again even if this video is already loaded"`
	Timestamps *bool  `json:"timestamps,omitempty" jsonschema:"Prefix preview lines with [m:ss] timestamps (default true)"`
}

// AttemptItem reports one resolver attempt.
type AttemptItem struct {
	Resolver string `json:"resolver"`
	Entries  int    `json:"entries,omitempty"`
	Reason   string `json:"reason,omitempty"`
	Error    string `json:"error,omitempty"`
}

// FetchOutput is the transcript_fetch result.
type FetchOutput struct {
	SessionID string               `json:"session_id"`
	Video     transcript.VideoInfo `json:"video"`
	Source    string               `json:"source"`
	Language  string               `json:"language,omitempty"`
	Entries   int                  `json:"entries"`
	Duration  string               `json:"duration"`
	Status    string               `json:"status"`
	Preview   string               `json:"preview"`
	Attempts  []AttemptItem        `json:"attempts,omitempty"`
}

// ExportInput is the transcript_export input.
type ExportInput struct {
	Video   string                 `json:"video" jsonschema:"YouTube video URL or 11-character video ID"`
	Format  string                 `json:"format,omitempty" jsonschema:"Export format: txt, md, srt, vtt, json, html (default txt)"`
	Refresh bool                   `json:"refresh,omitempty" jsonschema:"Resolve again even if this video is already loaded"`
	Options toolutil.ExportOptions `json:"options,omitempty" jsonschema:"Cleanup and layout switches"`
}

// ExportOutput is the transcript_export result.
type ExportOutput struct {
	Filename    string `json:"filename"`
	Format      string `json:"format"`
	ContentType string `json:"content_type"`
	Content     string `json:"content"`
}

// AnalyzeInput is the transcript_analyze input.
type AnalyzeInput struct {
	Video   string `json:"video" jsonschema:"YouTube video URL or 11-character video ID"`
	Refresh bool   `json:"refresh,omitempty" jsonschema:"Resolve again even if this video is already loaded"`
}

// AnalyzeOutput is the transcript_analyze result.
type AnalyzeOutput struct {
	Video      transcript.VideoInfo `json:"video"`
	Stats      analytics.Stats      `json:"stats"`
	Duration   string               `json:"duration"`
	Keywords   []analytics.Keyword  `json:"keywords"`
	Paragraphs int                  `json:"paragraphs"`
	Speakers   []SpeakerItem        `json:"speakers"`
}

// SpeakerItem counts the lines attributed to one speaker label.
type SpeakerItem struct {
	Label string `json:"label"`
	Lines int    `json:"lines"`
}

// SummaryInput is the transcript_summary input.
type SummaryInput struct {
	Video    string `json:"video" jsonschema:"YouTube video URL or 11-character video ID"`
	Refresh  bool   `json:"refresh,omitempty" jsonschema:"Resolve again even if this video is already loaded"`
	MaxChars int    `json:"max_chars,omitempty" jsonschema:"Transcript characters sent to the LLM (default 12000)"`
	UseLLM   *bool  `json:"use_llm,omitempty" jsonschema:"Ask the configured LLM (default true); falls back to an extractive summary"`
}

// SummaryOutput is the transcript_summary result.
type SummaryOutput struct {
	Video     transcript.VideoInfo `json:"video"`
	Method    string               `json:"method"`
	Summary   string               `json:"summary"`
	Sentences []string             `json:"sentences,omitempty"`
}

// AtInput is the transcript_at input.
type AtInput struct {
	Video    string  `json:"video,omitempty" jsonschema:"YouTube video URL or ID; defaults to the loaded video"`
	Position float64 `json:"position" jsonschema:"Playback position in seconds"`
}

// AtOutput is the transcript_at result.
type AtOutput struct {
	VideoID string                 `json:"video_id"`
	Found   bool                   `json:"found"`
	Index   int                    `json:"index"`
	Entry   *transcript.TimedEntry `json:"entry,omitempty"`
	Next    *transcript.TimedEntry `json:"next,omitempty"`
}
