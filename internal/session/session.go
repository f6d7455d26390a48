// Package session holds the state of one loaded video: its info, the
// resolution outcome and any live-sync followers. A session is built per
// video load and torn down once, before its replacement takes over.
package session

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/anatolykoptev/go_transcript/internal/engine/transcript"
)

// ErrClosed is returned by Follow when the session is torn down.
var ErrClosed = errors.New("session closed")

// DefaultFollowInterval is the playback polling interval.
const DefaultFollowInterval = 500 * time.Millisecond

// PositionFunc reports the current playback position in seconds.
type PositionFunc func(ctx context.Context) (float64, error)

// Session is one video's resolution context. Info and Outcome are fixed
// at construction.
type Session struct {
	ID       string
	VideoID  string
	Info     transcript.VideoInfo
	Outcome  transcript.Outcome
	LoadedAt time.Time

	done chan struct{}

	mu         sync.Mutex
	idle       *sync.Cond
	closed     bool
	followers  int // running Follow calls
	inCallback int // followers currently inside fn
}

// New creates a session for a finished resolution.
func New(info transcript.VideoInfo, outcome transcript.Outcome) *Session {
	s := &Session{
		ID:       uuid.NewString(),
		VideoID:  info.VideoID,
		Info:     info,
		Outcome:  outcome,
		LoadedAt: time.Now(),
		done:     make(chan struct{}),
	}
	s.idle = sync.NewCond(&s.mu)
	return s
}

// Transcript returns the resolved transcript, empty on failure.
func (s *Session) Transcript() transcript.Transcript {
	return s.Outcome.Transcript
}

// Ready reports whether the session holds a non-empty transcript.
func (s *Session) Ready() bool { return s.Outcome.OK() }

// ActiveIndex returns the index of the entry playing at pos: the last entry
// starting at or before pos. Returns -1 before the first entry or when the
// transcript is empty.
func (s *Session) ActiveIndex(pos float64) int {
	entries := s.Outcome.Transcript.Entries
	i := sort.Search(len(entries), func(i int) bool { return entries[i].Start > pos })
	return i - 1
}

// EntryAt returns the entry playing at pos.
func (s *Session) EntryAt(pos float64) (transcript.TimedEntry, int, bool) {
	i := s.ActiveIndex(pos)
	if i < 0 {
		return transcript.TimedEntry{}, -1, false
	}
	return s.Outcome.Transcript.Entries[i], i, true
}

// Follow polls position every interval and calls fn whenever the active
// entry index changes. It blocks until ctx is done, the session is closed
// or position fails. fn may call Close.
func (s *Session) Follow(ctx context.Context, position PositionFunc, interval time.Duration, fn func(index int)) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	s.followers++
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.followers--
		s.idle.Broadcast()
		s.mu.Unlock()
	}()

	if interval <= 0 {
		interval = DefaultFollowInterval
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-s.done:
			cancel()
		case <-ctx.Done():
		}
	}()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	last := -2
	for {
		pos, err := position(ctx)
		if err != nil {
			return s.stopCause(ctx, err)
		}
		if idx := s.ActiveIndex(pos); idx != last {
			last = idx
			if !s.notify(fn, idx) {
				return ErrClosed
			}
		}
		select {
		case <-ctx.Done():
			return s.stopCause(ctx, ctx.Err())
		case <-ticker.C:
		}
	}
}

// notify runs fn unless the session is closed.
func (s *Session) notify(fn func(int), idx int) bool {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false
	}
	s.inCallback++
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.inCallback--
		s.idle.Broadcast()
		s.mu.Unlock()
	}()
	fn(idx)
	return true
}

func (s *Session) stopCause(ctx context.Context, err error) error {
	select {
	case <-s.done:
		return ErrClosed
	default:
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

// Done is closed when the session is torn down.
func (s *Session) Done() <-chan struct{} { return s.done }

// Close tears the session down and waits for every follower that is not
// inside its callback to return. Once Close returns no callback starts.
// Safe to call more than once, including from a Follow callback.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.done)
	}
	for s.followers > s.inCallback {
		s.idle.Wait()
	}
}
