package transcript

import (
	"errors"
	"fmt"
)

// Reason classifies a failed resolution.
type Reason int

const (
	ReasonNone Reason = iota
	NoCaptionsAvailable
	FetchFailed
	ParseFailed
	InfoExtractionFailed
)

func (r Reason) String() string {
	switch r {
	case ReasonNone:
		return "ok"
	case NoCaptionsAvailable:
		return "no_captions_available"
	case FetchFailed:
		return "fetch_failed"
	case ParseFailed:
		return "parse_failed"
	case InfoExtractionFailed:
		return "info_extraction_failed"
	}
	return fmt.Sprintf("reason(%d)", int(r))
}

// Message is the human-readable status shown to users.
func (r Reason) Message() string {
	switch r {
	case ReasonNone:
		return "Transcript loaded successfully"
	case NoCaptionsAvailable:
		return "No transcript available for this video. Make sure captions are enabled."
	case FetchFailed:
		return "Captions were found but could not be downloaded."
	case ParseFailed:
		return "Captions were downloaded but could not be read."
	case InfoExtractionFailed:
		return "Could not extract video information."
	}
	return "Unknown error"
}

// MarshalText renders the reason name in JSON outputs.
func (r Reason) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// Failure is the error a resolver returns when it located a payload but
// could not turn it into entries.
type Failure struct {
	Reason   Reason
	Resolver string
	Err      error
}

func (f *Failure) Error() string {
	if f.Err == nil {
		return fmt.Sprintf("%s: %s", f.Resolver, f.Reason)
	}
	return fmt.Sprintf("%s: %s: %v", f.Resolver, f.Reason, f.Err)
}

func (f *Failure) Unwrap() error { return f.Err }

// Failf builds a *Failure with a formatted cause.
func Failf(reason Reason, resolver, format string, args ...any) *Failure {
	return &Failure{Reason: reason, Resolver: resolver, Err: fmt.Errorf(format, args...)}
}

// ReasonOf extracts the failure reason from err, or NoCaptionsAvailable.
func ReasonOf(err error) Reason {
	var f *Failure
	if errors.As(err, &f) {
		return f.Reason
	}
	return NoCaptionsAvailable
}

// Attempt records what one resolver did during a resolution.
type Attempt struct {
	Resolver string `json:"resolver"`
	Entries  int    `json:"entries"`
	Reason   Reason `json:"reason"`
	Error    string `json:"error,omitempty"`
}

// Outcome is the result of one resolution. It is never mutated after the
// chain returns it; a refresh produces a new Outcome.
type Outcome struct {
	Transcript Transcript `json:"transcript"`
	Language   string     `json:"language,omitempty"`
	Source     string     `json:"source,omitempty"` // winning resolver
	Reason     Reason     `json:"reason"`
	Attempts   []Attempt  `json:"attempts,omitempty"`
}

// Success builds a successful outcome.
func Success(t Transcript, lang, source string, attempts []Attempt) Outcome {
	return Outcome{Transcript: t, Language: lang, Source: source, Reason: ReasonNone, Attempts: attempts}
}

// Failed builds a failed outcome.
func Failed(reason Reason, attempts []Attempt) Outcome {
	return Outcome{Reason: reason, Attempts: attempts}
}

// OK reports whether the outcome holds a non-empty transcript.
func (o Outcome) OK() bool {
	return o.Reason == ReasonNone && !o.Transcript.Empty()
}

// Err returns nil on success, otherwise an error carrying the reason message.
func (o Outcome) Err() error {
	if o.OK() {
		return nil
	}
	reason := o.Reason
	if reason == ReasonNone {
		reason = NoCaptionsAvailable
	}
	return &Failure{Reason: reason, Resolver: "chain", Err: errors.New(reason.Message())}
}

// VideoInfo is resolved from the page independently of the transcript.
type VideoInfo struct {
	VideoID string `json:"video_id"`
	Title   string `json:"title"`
	Channel string `json:"channel"`
	URL     string `json:"url,omitempty"`
}
