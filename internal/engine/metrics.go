package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"
)

// Metrics tracks operational counters across the engine.
var metrics struct {
	PageLoads          atomic.Int64
	FetchRequests      atomic.Int64
	FetchErrors        atomic.Int64
	Resolutions        atomic.Int64
	ResolutionFailures atomic.Int64
	EmbeddedHits       atomic.Int64
	InternalAPIHits    atomic.Int64
	DOMScrapeHits      atomic.Int64
	CaptionTrackHits   atomic.Int64
	Exports            atomic.Int64
	LLMCalls           atomic.Int64
	LLMErrors          atomic.Int64
}

var metricKeys = []string{
	"page_loads", "fetch_requests", "fetch_errors",
	"resolutions", "resolution_failures",
	"embedded_hits", "internal_api_hits", "dom_scrape_hits", "caption_track_hits",
	"exports", "llm_calls", "llm_errors",
}

// GetMetrics returns a snapshot of all metrics.
func GetMetrics() map[string]int64 {
	return map[string]int64{
		"page_loads":          metrics.PageLoads.Load(),
		"fetch_requests":      metrics.FetchRequests.Load(),
		"fetch_errors":        metrics.FetchErrors.Load(),
		"resolutions":         metrics.Resolutions.Load(),
		"resolution_failures": metrics.ResolutionFailures.Load(),
		"embedded_hits":       metrics.EmbeddedHits.Load(),
		"internal_api_hits":   metrics.InternalAPIHits.Load(),
		"dom_scrape_hits":     metrics.DOMScrapeHits.Load(),
		"caption_track_hits":  metrics.CaptionTrackHits.Load(),
		"exports":             metrics.Exports.Load(),
		"llm_calls":           metrics.LLMCalls.Load(),
		"llm_errors":          metrics.LLMErrors.Load(),
	}
}

// FormatMetrics returns metrics as a simple text format for HTTP endpoint.
func FormatMetrics() string {
	m := GetMetrics()
	var sb strings.Builder
	for _, k := range metricKeys {
		fmt.Fprintf(&sb, "%s %d\n", k, m[k])
	}
	return sb.String()
}

// IncrResolution counts a finished resolution and, on success, the winning resolver.
func IncrResolution(source string, ok bool) {
	metrics.Resolutions.Add(1)
	if !ok {
		metrics.ResolutionFailures.Add(1)
		return
	}
	switch source {
	case "embedded_data":
		metrics.EmbeddedHits.Add(1)
	case "internal_api":
		metrics.InternalAPIHits.Add(1)
	case "dom_scrape":
		metrics.DOMScrapeHits.Add(1)
	case "caption_tracks":
		metrics.CaptionTrackHits.Add(1)
	}
}

func IncrExports() { metrics.Exports.Add(1) }

// TrackOperation logs a warning if an operation takes longer than threshold.
func TrackOperation(ctx context.Context, name string, fn func(context.Context) error) error {
	start := time.Now()
	err := fn(ctx)
	elapsed := time.Since(start)
	if elapsed > 5*time.Second {
		slog.Warn("slow operation", slog.String("op", name), slog.Duration("elapsed", elapsed))
	}
	return err
}
