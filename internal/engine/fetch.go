package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"

	"golang.org/x/time/rate"
)

var (
	limiterMu sync.Mutex
	limiter   *rate.Limiter
)

func resetLimiter() {
	limiterMu.Lock()
	defer limiterMu.Unlock()
	limit := rate.Inf
	if cfg.RequestsPerSec > 0 {
		limit = rate.Limit(cfg.RequestsPerSec)
	}
	limiter = rate.NewLimiter(limit, cfg.RequestBurst)
}

func waitTurn(ctx context.Context) error {
	limiterMu.Lock()
	l := limiter
	limiterMu.Unlock()
	if l == nil {
		return nil
	}
	return l.Wait(ctx)
}

// StatusError reports a non-200 response.
type StatusError struct {
	StatusCode int
	Snippet    string
}

func (e *StatusError) Error() string {
	if e.Snippet == "" {
		return fmt.Sprintf("HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Snippet)
}

// Get performs one paced GET and returns the body of a 200 response.
func Get(ctx context.Context, rawURL string, headers map[string]string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	return do(ctx, req, headers)
}

// PostJSON performs one paced JSON POST and returns the body of a 200 response.
func PostJSON(ctx context.Context, rawURL string, payload any, headers map[string]string) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return do(ctx, req, headers)
}

func do(ctx context.Context, req *http.Request, headers map[string]string) ([]byte, error) {
	if err := waitTurn(ctx); err != nil {
		return nil, err
	}
	metrics.FetchRequests.Add(1)
	req.Header.Set("User-Agent", UserAgentChrome)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := cfg.HTTPClient.Do(req)
	if err != nil {
		metrics.FetchErrors.Add(1)
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		metrics.FetchErrors.Add(1)
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return nil, &StatusError{StatusCode: resp.StatusCode, Snippet: string(snippet)}
	}
	return io.ReadAll(io.LimitReader(resp.Body, cfg.CaptionMaxBytes))
}

// FetchPage loads a watch page. Uses the browser client when configured,
// otherwise the shared HTTP client with retry on transient statuses.
func FetchPage(ctx context.Context, rawURL string) ([]byte, error) {
	metrics.PageLoads.Add(1)
	ctx, cancel := context.WithTimeout(ctx, cfg.FetchTimeout)
	defer cancel()
	if err := waitTurn(ctx); err != nil {
		return nil, err
	}

	if bc := cfg.BrowserClient; bc != nil {
		headers := ChromeHeaders()
		headers["accept-language"] = "en-US,en;q=0.9"
		data, _, status, err := bc.Do(http.MethodGet, rawURL, headers, nil)
		if err == nil && status == http.StatusOK {
			return limitBytes(data, cfg.PageMaxBytes), nil
		}
		if err == nil {
			err = &StatusError{StatusCode: status}
		}
		metrics.FetchErrors.Add(1)
		return nil, fmt.Errorf("browser fetch: %w", err)
	}

	resp, err := RetryHTTP(ctx, DefaultRetryConfig, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", RandomUserAgent())
		req.Header.Set("Accept-Language", "en-US,en;q=0.9")
		req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
		return cfg.HTTPClient.Do(req)
	})
	if err != nil {
		metrics.FetchErrors.Add(1)
		return nil, fmt.Errorf("watch page: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		metrics.FetchErrors.Add(1)
		return nil, &StatusError{StatusCode: resp.StatusCode}
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, cfg.PageMaxBytes))
	if err != nil {
		return nil, fmt.Errorf("read watch page: %w", err)
	}
	return body, nil
}

func limitBytes(b []byte, n int64) []byte {
	if n > 0 && int64(len(b)) > n {
		return b[:n]
	}
	return b
}
