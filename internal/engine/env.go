package engine

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/anatolykoptev/go-kit/env"
	"github.com/anatolykoptev/go-kit/llm"
	stealth "github.com/anatolykoptev/go-stealth"
	"github.com/anatolykoptev/go-stealth/proxypool"
)

// LoadConfig reads the engine configuration from the environment and builds
// the optional stealth browser client and LLM client.
func LoadConfig() Config {
	d := DefaultConfig()
	c := Config{
		YouTubeBaseURL:     env.Str("YOUTUBE_BASE_URL", d.YouTubeBaseURL),
		PageMaxBytes:       int64(env.Int("PAGE_MAX_BYTES", int(d.PageMaxBytes))),
		CaptionMaxBytes:    int64(env.Int("CAPTION_MAX_BYTES", int(d.CaptionMaxBytes))),
		FetchTimeout:       env.Duration("FETCH_TIMEOUT", d.FetchTimeout),
		PanelSettleDelay:   env.Duration("PANEL_SETTLE_DELAY", d.PanelSettleDelay),
		RequestsPerSec:     env.Float("REQUESTS_PER_SEC", d.RequestsPerSec),
		RequestBurst:       env.Int("REQUEST_BURST", d.RequestBurst),
		Language:           env.Str("TRANSCRIPT_LANGUAGE", d.Language),
		PreviewLines:       env.Int("PREVIEW_LINES", d.PreviewLines),
		LLMAPIKey:          env.Str("LLM_API_KEY", ""),
		LLMAPIKeyFallbacks: env.List("LLM_API_KEY_FALLBACKS", ""),
		LLMAPIBase:         env.Str("LLM_API_BASE", "https://generativelanguage.googleapis.com/v1beta/openai"),
		LLMModel:           env.Str("LLM_MODEL", "gemini-2.5-flash"),
		LLMTemperature:     env.Float("LLM_TEMPERATURE", 0.2),
		LLMMaxTokens:       env.Int("LLM_MAX_TOKENS", 2048),
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     60 * time.Second,
			},
		},
	}

	if env.Str("STEALTH", "true") != "false" {
		c.BrowserClient = newBrowserClient()
	}

	if c.LLMAPIKey != "" {
		c.LLMClient = llm.NewClient(c.LLMAPIBase, c.LLMAPIKey, c.LLMModel,
			llm.WithFallbackKeys(c.LLMAPIKeyFallbacks),
			llm.WithMaxTokens(c.LLMMaxTokens),
			llm.WithTemperature(c.LLMTemperature),
			llm.WithHTTPClient(&http.Client{Timeout: 60 * time.Second}),
		)
		slog.Info("llm client initialized", slog.String("model", c.LLMModel))
	}
	return c
}

func newBrowserClient() *BrowserClient {
	var opts []stealth.ClientOption
	opts = append(opts, stealth.WithTimeout(15))

	if apiKey := env.Str("WEBSHARE_API_KEY", ""); apiKey != "" {
		pool, err := proxypool.NewWebshare(apiKey)
		if err != nil {
			slog.Warn("proxy pool init failed, running without proxy", slog.Any("error", err))
		} else {
			opts = append(opts, stealth.WithProxyPool(pool))
			slog.Info("proxy pool initialized", slog.Int("proxies", pool.Len()))
		}
	}

	bc, err := stealth.NewClient(opts...)
	if err != nil {
		slog.Error("stealth client init failed", slog.Any("error", err))
		return nil
	}
	slog.Info("stealth browser client initialized")
	return bc
}
