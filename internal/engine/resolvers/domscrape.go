package resolvers

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/anatolykoptev/go_transcript/internal/engine"
	"github.com/anatolykoptev/go_transcript/internal/engine/page"
	"github.com/anatolykoptev/go_transcript/internal/engine/transcript"
)

// Row selectors: current segment renderer first, then the legacy cue group.
var rowFields = []struct{ stamp, text string }{
	{".segment-timestamp", ".segment-text"},
	{".cue-group-start-offset", ".cue"},
}

// DOMScrape reads the rendered transcript panel.
type DOMScrape struct {
	// SettleDelay is the wait after opening the panel. Zero uses
	// engine.Cfg.PanelSettleDelay.
	SettleDelay time.Duration
}

func (DOMScrape) Name() string { return NameDOMScrape }

func (r DOMScrape) Resolve(ctx context.Context, p *page.Page) (Result, error) {
	panel := p.Panel()
	if panel == nil {
		return Result{}, ErrNotApplicable
	}

	switch err := panel.Open(ctx); {
	case err == nil:
		if err := r.settle(ctx); err != nil {
			return Result{}, err
		}
	case errors.Is(err, page.ErrNotInteractive):
	default:
		slog.Debug("transcript panel did not open", slog.String("video", p.VideoID), slog.Any("error", err))
	}

	rows, err := panel.Segments(ctx)
	if err != nil || rows == nil || rows.Length() == 0 {
		return Result{}, ErrNotApplicable
	}
	t := ScrapeRows(rows)
	if t.Empty() {
		return Result{}, ErrNotApplicable
	}
	return Result{Transcript: t, Language: p.Lang}, nil
}

func (r DOMScrape) settle(ctx context.Context) error {
	d := r.SettleDelay
	if d <= 0 {
		d = engine.Cfg.PanelSettleDelay
	}
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

type scrapedRow struct {
	start float64
	text  string
}

// ScrapeRows converts rendered timestamp/text rows into entries. A row's
// duration runs to the next row's start, or defaults when that gap is not
// positive.
func ScrapeRows(rows *goquery.Selection) transcript.Transcript {
	var scraped []scrapedRow
	rows.Each(func(_ int, s *goquery.Selection) {
		for _, f := range rowFields {
			stamp := s.Find(f.stamp).First()
			if stamp.Length() == 0 {
				continue
			}
			start, ok := transcript.ParseTimestamp(transcript.CleanText(stamp.Text()))
			if !ok {
				return
			}
			scraped = append(scraped, scrapedRow{start: start, text: s.Find(f.text).First().Text()})
			return
		}
	})

	var b transcript.Builder
	for i, row := range scraped {
		dur := 0.0
		if i+1 < len(scraped) {
			if gap := scraped[i+1].start - row.start; gap > 0 {
				dur = gap
			}
		}
		b.Add(row.start, dur, row.text)
	}
	return b.Transcript()
}
