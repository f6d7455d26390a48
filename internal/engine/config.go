package engine

import (
	"net/http"
	"time"

	"github.com/anatolykoptev/go-kit/llm"
)

// Config holds all engine configuration, injected from main.
type Config struct {
	YouTubeBaseURL   string        // watch pages and the internal transcript API
	PageMaxBytes     int64         // watch page body cap
	CaptionMaxBytes  int64         // caption / API response body cap
	FetchTimeout     time.Duration // whole page load budget
	PanelSettleDelay time.Duration // wait after opening a live transcript panel
	RequestsPerSec   float64       // outbound pacing; 0 = unlimited
	RequestBurst     int
	Language         string // hl sent with internal API requests
	PreviewLines     int

	LLMAPIKey          string
	LLMAPIKeyFallbacks []string
	LLMAPIBase         string
	LLMModel           string
	LLMTemperature     float64
	LLMMaxTokens       int

	HTTPClient    *http.Client
	BrowserClient *BrowserClient // nil = plain HTTP client for page loads
	LLMClient     *llm.Client    // nil = extractive summaries only
}

// DefaultConfig returns the settings used when main does not override them.
func DefaultConfig() Config {
	return Config{
		YouTubeBaseURL:   "https://www.youtube.com",
		PageMaxBytes:     6 * 1024 * 1024,
		CaptionMaxBytes:  3 * 1024 * 1024,
		FetchTimeout:     30 * time.Second,
		PanelSettleDelay: 1500 * time.Millisecond,
		RequestsPerSec:   4,
		RequestBurst:     4,
		Language:         "en",
		PreviewLines:     10,
		HTTPClient:       &http.Client{Timeout: 15 * time.Second},
	}
}

var cfg = DefaultConfig()

// Cfg exposes the engine configuration for sub-packages.
// Always points to the current cfg value.
var Cfg = &cfg

// Init initializes the engine with the given configuration.
// Zero-valued fields fall back to DefaultConfig.
func Init(c Config) {
	d := DefaultConfig()
	if c.YouTubeBaseURL == "" {
		c.YouTubeBaseURL = d.YouTubeBaseURL
	}
	if c.PageMaxBytes <= 0 {
		c.PageMaxBytes = d.PageMaxBytes
	}
	if c.CaptionMaxBytes <= 0 {
		c.CaptionMaxBytes = d.CaptionMaxBytes
	}
	if c.FetchTimeout <= 0 {
		c.FetchTimeout = d.FetchTimeout
	}
	if c.PanelSettleDelay < 0 {
		c.PanelSettleDelay = 0
	}
	if c.RequestBurst <= 0 {
		c.RequestBurst = d.RequestBurst
	}
	if c.Language == "" {
		c.Language = d.Language
	}
	if c.PreviewLines <= 0 {
		c.PreviewLines = d.PreviewLines
	}
	if c.HTTPClient == nil {
		c.HTTPClient = d.HTTPClient
	}
	cfg = c
	Cfg = &cfg
	resetLimiter()
}
