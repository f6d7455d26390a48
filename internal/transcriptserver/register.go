package transcriptserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_transcript/internal/engine"
	"github.com/anatolykoptev/go_transcript/internal/engine/analytics"
	"github.com/anatolykoptev/go_transcript/internal/engine/export"
	"github.com/anatolykoptev/go_transcript/internal/engine/transcript"
	"github.com/anatolykoptev/go_transcript/internal/session"
	"github.com/anatolykoptev/go_transcript/internal/toolutil"
)

// Tools lists the registered tool names.
var Tools = []string{"transcript_fetch", "transcript_export", "transcript_analyze", "transcript_summary", "transcript_at"}

// RegisterTools registers all transcript tools on the given MCP server:
// transcript_fetch, transcript_export, transcript_analyze, transcript_summary,
// transcript_at. Every tool shares the session held by mgr.
func RegisterTools(server *mcp.Server, mgr *session.Manager) {
	registerFetch(server, mgr)
	registerExport(server, mgr)
	registerAnalyze(server, mgr)
	registerSummary(server, mgr)
	registerAt(server, mgr)
}

func registerFetch(server *mcp.Server, mgr *session.Manager) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "transcript_fetch",
		Description: "Load the transcript of a YouTube video. Tries the embedded page data, the internal transcript API, the rendered transcript panel and the caption tracks in that order. Returns video info, the winning source, the number of entries and a preview of the first lines.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input FetchInput) (*mcp.CallToolResult, FetchOutput, error) {
		if input.Video == "" {
			return nil, FetchOutput{}, toolutil.ErrVideoRequired
		}
		s, err := mgr.Load(ctx, input.Video, input.Refresh)
		if err != nil {
			return nil, FetchOutput{}, err
		}
		out := fetchOutput(s, toolutil.BoolOr(input.Timestamps, true))
		if !s.Ready() {
			slog.Warn("transcript_fetch: no transcript",
				slog.String("video", s.VideoID),
				slog.String("reason", s.Outcome.Reason.String()),
			)
			return nil, out, s.Outcome.Err()
		}
		return nil, out, nil
	})
}

func fetchOutput(s *session.Session, timestamps bool) FetchOutput {
	t := s.Transcript()
	out := FetchOutput{
		SessionID: s.ID,
		Video:     s.Info,
		Source:    s.Outcome.Source,
		Language:  s.Outcome.Language,
		Entries:   t.Len(),
		Duration:  analytics.Compute(t).DurationLabel(),
		Status:    s.Outcome.Reason.Message(),
		Attempts:  attemptItems(s.Outcome.Attempts),
	}
	if s.Ready() {
		out.Preview = export.Preview(t, engine.Cfg.PreviewLines, timestamps)
	}
	return out
}

func attemptItems(attempts []transcript.Attempt) []AttemptItem {
	items := make([]AttemptItem, 0, len(attempts))
	for _, a := range attempts {
		item := AttemptItem{Resolver: a.Resolver, Entries: a.Entries, Error: a.Error}
		if a.Reason != transcript.ReasonNone {
			item.Reason = a.Reason.String()
		}
		items = append(items, item)
	}
	return items
}

func registerExport(server *mcp.Server, mgr *session.Manager) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "transcript_export",
		Description: "Export a YouTube transcript as txt, md, srt, vtt, json or a print-ready html document. Options toggle timestamps, noise marker cleanup, filler word removal, smart paragraphs and speaker labels. Returns the file name, content type and content.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input ExportInput) (*mcp.CallToolResult, ExportOutput, error) {
		format := export.FormatTXT
		if input.Format != "" {
			f, err := export.ParseFormat(input.Format)
			if err != nil {
				return nil, ExportOutput{}, err
			}
			format = f
		}
		s, err := toolutil.Session(ctx, mgr, input.Video, input.Refresh)
		if err != nil {
			return nil, ExportOutput{}, err
		}
		data, err := export.Render(format, s.Info, s.Transcript(), input.Options.Options())
		if err != nil {
			return nil, ExportOutput{}, err
		}
		return nil, ExportOutput{
			Filename:    export.Filename(s.Info.Title, format),
			Format:      string(format),
			ContentType: format.ContentType(),
			Content:     string(data),
		}, nil
	})
}

func registerAnalyze(server *mcp.Server, mgr *session.Manager) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "transcript_analyze",
		Description: "Analyze a YouTube transcript: word and sentence counts, duration, speaking pace, the top 15 keywords with display sizes, paragraph count and heuristic speaker turns.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input AnalyzeInput) (*mcp.CallToolResult, AnalyzeOutput, error) {
		s, err := toolutil.Session(ctx, mgr, input.Video, input.Refresh)
		if err != nil {
			return nil, AnalyzeOutput{}, err
		}
		return nil, Analyze(s.Info, s.Transcript()), nil
	})
}

// Analyze builds the transcript_analyze result.
func Analyze(info transcript.VideoInfo, t transcript.Transcript) AnalyzeOutput {
	stats := analytics.Compute(t)
	out := AnalyzeOutput{
		Video:      info,
		Stats:      stats,
		Duration:   stats.DurationLabel(),
		Keywords:   analytics.Keywords(t),
		Paragraphs: len(analytics.Paragraphs(t.Entries)),
	}
	if out.Keywords == nil {
		out.Keywords = []analytics.Keyword{}
	}
	counts := make(map[string]int)
	for _, e := range analytics.Speakers(t) {
		if counts[e.Speaker] == 0 {
			out.Speakers = append(out.Speakers, SpeakerItem{Label: e.Speaker})
		}
		counts[e.Speaker]++
	}
	for i := range out.Speakers {
		out.Speakers[i].Lines = counts[out.Speakers[i].Label]
	}
	if out.Speakers == nil {
		out.Speakers = []SpeakerItem{}
	}
	return out
}

const defaultSummaryChars = 12000

func registerSummary(server *mcp.Server, mgr *session.Manager) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "transcript_summary",
		Description: "Summarize a YouTube transcript. Uses the configured LLM when available and falls back to an extractive summary built from the first, middle and last substantial sentences.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input SummaryInput) (*mcp.CallToolResult, SummaryOutput, error) {
		s, err := toolutil.Session(ctx, mgr, input.Video, input.Refresh)
		if err != nil {
			return nil, SummaryOutput{}, err
		}
		maxChars := input.MaxChars
		if maxChars <= 0 {
			maxChars = defaultSummaryChars
		}
		return nil, Summarize(ctx, s.Info, s.Transcript(), maxChars, toolutil.BoolOr(input.UseLLM, true)), nil
	})
}

// Summarize builds the transcript_summary result. LLM errors degrade to
// the extractive summary.
func Summarize(ctx context.Context, info transcript.VideoInfo, t transcript.Transcript, maxChars int, useLLM bool) SummaryOutput {
	text := export.CleanText(t)
	sentences := analytics.Summarize(text)
	out := SummaryOutput{Video: info, Method: "extractive", Sentences: sentences}

	if useLLM {
		summary, err := engine.SummarizeWithLLM(ctx, info.Title, text, maxChars)
		switch {
		case err == nil && summary != "":
			out.Method = "llm"
			out.Summary = summary
			return out
		case err != nil && !errors.Is(err, engine.ErrLLMDisabled):
			slog.Warn("transcript_summary: llm failed, using extractive summary", slog.Any("error", err))
		}
	}

	if len(sentences) == 0 {
		out.Summary = engine.TruncateAtWord(text, 300)
		return out
	}
	for i, sentence := range sentences {
		if i > 0 {
			out.Summary += " "
		}
		out.Summary += sentence + "."
	}
	return out
}

func registerAt(server *mcp.Server, mgr *session.Manager) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "transcript_at",
		Description: "Find the transcript line playing at a position (seconds) of the loaded video, plus the next line. Loads the video first when one is given.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input AtInput) (*mcp.CallToolResult, AtOutput, error) {
		s := mgr.Current()
		if input.Video != "" {
			var err error
			if s, err = toolutil.Session(ctx, mgr, input.Video, false); err != nil {
				return nil, AtOutput{}, err
			}
		}
		if s == nil {
			return nil, AtOutput{}, fmt.Errorf("no video loaded: %w", toolutil.ErrVideoRequired)
		}
		return nil, At(s, input.Position), nil
	})
}

// At builds the transcript_at result for pos.
func At(s *session.Session, pos float64) AtOutput {
	out := AtOutput{VideoID: s.VideoID, Index: s.ActiveIndex(pos)}
	entries := s.Transcript().Entries
	if out.Index >= 0 {
		e := entries[out.Index]
		out.Found = true
		out.Entry = &e
	}
	if next := out.Index + 1; next < len(entries) {
		e := entries[next]
		out.Next = &e
	}
	return out
}
