package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anatolykoptev/go-kit/llm"
)

// ErrLLMDisabled is returned when no LLM client is configured.
var ErrLLMDisabled = errors.New("llm not configured")

const summaryPrompt = `Summarize the following video transcript.
Video: %s

Return 3-5 short bullet points with the key ideas, then one line starting with "Takeaway:".
Plain text only, no markdown headings.

Transcript:
%s`

// stripFences removes markdown code fences from LLM output.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// SummarizeWithLLM asks the configured LLM for a transcript summary.
// text is truncated to maxChars runes before sending.
func SummarizeWithLLM(ctx context.Context, title, text string, maxChars int) (string, error) {
	if cfg.LLMClient == nil {
		return "", ErrLLMDisabled
	}
	if maxChars > 0 {
		text = TruncateRunes(text, maxChars, "...")
	}
	metrics.LLMCalls.Add(1)
	raw, err := cfg.LLMClient.Complete(ctx, "", fmt.Sprintf(summaryPrompt, title, text),
		llm.WithChatTemperature(cfg.LLMTemperature),
		llm.WithChatMaxTokens(cfg.LLMMaxTokens),
	)
	if err != nil {
		metrics.LLMErrors.Add(1)
		return "", fmt.Errorf("llm summary: %w", err)
	}
	return stripFences(raw), nil
}
