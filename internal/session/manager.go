package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/anatolykoptev/go_transcript/internal/engine/page"
	"github.com/anatolykoptev/go_transcript/internal/engine/resolvers"
	"github.com/anatolykoptev/go_transcript/internal/engine/transcript"
)

// Loader resolves the info and transcript of a video.
type Loader func(ctx context.Context, videoID string) (transcript.VideoInfo, transcript.Outcome, error)

// DefaultLoader fetches the watch page and runs chain against it. A nil
// chain uses the default resolver order.
func DefaultLoader(chain *resolvers.Chain) Loader {
	if chain == nil {
		chain = resolvers.NewChain()
	}
	return func(ctx context.Context, videoID string) (transcript.VideoInfo, transcript.Outcome, error) {
		p, err := page.Load(ctx, videoID)
		if err != nil {
			return transcript.VideoInfo{}, transcript.Outcome{}, err
		}
		info, err := p.Info()
		if err != nil {
			return transcript.VideoInfo{}, transcript.Outcome{}, err
		}
		return info, chain.Resolve(ctx, p), nil
	}
}

// Manager owns the current session. Loading a different video tears the
// current session down before the new one is resolved.
type Manager struct {
	load Loader

	mu      sync.Mutex
	current *Session
}

// NewManager creates a manager that resolves videos with load.
func NewManager(load Loader) *Manager {
	return &Manager{load: load}
}

// Load returns the session for input, a video ID or URL. The current
// session is reused when it belongs to the same video, unless refresh is
// set.
func (m *Manager) Load(ctx context.Context, input string, refresh bool) (*Session, error) {
	videoID, err := page.ParseVideoID(input)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if cur := m.current; cur != nil {
		if cur.VideoID == videoID && !refresh {
			return cur, nil
		}
		slog.Debug("session: closing", slog.String("id", cur.ID), slog.String("video", cur.VideoID))
		cur.Close()
		m.current = nil
	}

	info, outcome, err := m.load(ctx, videoID)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", videoID, loadFailure(err))
	}
	if info.VideoID == "" {
		info.VideoID = videoID
	}
	s := New(info, outcome)
	m.current = s
	slog.Info("session: loaded",
		slog.String("id", s.ID),
		slog.String("video", videoID),
		slog.String("source", outcome.Source),
		slog.Int("entries", outcome.Transcript.Len()),
	)
	return s, nil
}

// loadFailure classifies a loader error. Errors that carry no reason are
// watch page fetch failures; context errors pass through.
func loadFailure(err error) error {
	var f *transcript.Failure
	if errors.As(err, &f) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return &transcript.Failure{Reason: transcript.FetchFailed, Resolver: "page", Err: err}
}

// Current returns the active session, or nil.
func (m *Manager) Current() *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// Close tears down the active session.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current != nil {
		m.current.Close()
		m.current = nil
	}
}
