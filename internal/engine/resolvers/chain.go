package resolvers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/anatolykoptev/go_transcript/internal/engine"
	"github.com/anatolykoptev/go_transcript/internal/engine/page"
	"github.com/anatolykoptev/go_transcript/internal/engine/transcript"
)

// Chain runs resolvers one after another and returns the first non-empty
// transcript. Resolvers never run concurrently.
type Chain struct {
	resolvers []Resolver
}

// NewChain builds a chain over rs, or over Default() when rs is empty.
func NewChain(rs ...Resolver) *Chain {
	if len(rs) == 0 {
		rs = Default()
	}
	return &Chain{resolvers: rs}
}

// Resolvers returns the resolver names in run order.
func (c *Chain) Resolvers() []string {
	names := make([]string, len(c.resolvers))
	for i, r := range c.resolvers {
		names[i] = r.Name()
	}
	return names
}

// Resolve tries every resolver in order. When all fail, the first
// FetchFailed or ParseFailed reported by a resolver wins over
// NoCaptionsAvailable.
func (c *Chain) Resolve(ctx context.Context, p *page.Page) transcript.Outcome {
	var out transcript.Outcome
	_ = engine.TrackOperation(ctx, "resolve "+p.VideoID, func(ctx context.Context) error {
		out = c.resolve(ctx, p)
		return nil
	})
	return out
}

func (c *Chain) resolve(ctx context.Context, p *page.Page) transcript.Outcome {
	attempts := make([]transcript.Attempt, 0, len(c.resolvers))
	specific := transcript.ReasonNone

	for _, r := range c.resolvers {
		if ctx.Err() != nil {
			break
		}
		res, err := runResolver(ctx, r, p)
		if err == nil && res.Transcript.Empty() {
			err = ErrNotApplicable
		}
		if err == nil {
			attempts = append(attempts, transcript.Attempt{Resolver: r.Name(), Entries: res.Transcript.Len()})
			engine.IncrResolution(r.Name(), true)
			slog.Debug("transcript resolved",
				slog.String("video", p.VideoID),
				slog.String("resolver", r.Name()),
				slog.Int("entries", res.Transcript.Len()))
			return transcript.Success(res.Transcript, res.Language, r.Name(), attempts)
		}

		reason := transcript.ReasonOf(err)
		attempts = append(attempts, transcript.Attempt{Resolver: r.Name(), Reason: reason, Error: err.Error()})
		if errors.Is(err, ErrNotApplicable) {
			slog.Debug("resolver not applicable", slog.String("video", p.VideoID), slog.String("resolver", r.Name()))
			continue
		}
		slog.Warn("resolver failed",
			slog.String("video", p.VideoID),
			slog.String("resolver", r.Name()),
			slog.String("reason", reason.String()),
			slog.Any("error", err))
		if specific == transcript.ReasonNone && (reason == transcript.FetchFailed || reason == transcript.ParseFailed) {
			specific = reason
		}
	}

	engine.IncrResolution("", false)
	if specific == transcript.ReasonNone {
		specific = transcript.NoCaptionsAvailable
	}
	return transcript.Failed(specific, attempts)
}

// runResolver calls r, turning a panic into a not-applicable result.
func runResolver(ctx context.Context, r Resolver, p *page.Page) (res Result, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			slog.Warn("resolver panicked", slog.String("resolver", r.Name()), slog.Any("panic", rec))
			res, err = Result{}, fmt.Errorf("%w: panic: %v", ErrNotApplicable, rec)
		}
	}()
	return r.Resolve(ctx, p)
}
