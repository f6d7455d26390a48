package export

import (
	"regexp"
	"strings"
)

// Options are the named switches applied at export time. The canonical
// transcript itself is never altered.
type Options struct {
	IncludeTimestamps bool `json:"include_timestamps"`
	CleanFormat       bool `json:"clean_format"`
	RemoveFiller      bool `json:"remove_filler"`
	SmartParagraphs   bool `json:"smart_paragraphs"`
	DetectSpeakers    bool `json:"detect_speakers"`
}

// DefaultOptions matches the viewer defaults: timestamps on, noise markers
// stripped.
func DefaultOptions() Options {
	return Options{IncludeTimestamps: true, CleanFormat: true}
}

var (
	noiseRe      = regexp.MustCompile(`(?i)\[(music|applause|laughter|silence)\]`)
	fillerRe     = regexp.MustCompile(`(?i)\b(?:u+m+|u+h+|erm|hm+|you know|i mean)\b[,]?`)
	spaceRe      = regexp.MustCompile(`\s+`)
	spacePunctRe = regexp.MustCompile(`\s+([,.!?;:])`)
)

// CleanLine applies the cleanup options to one entry's text. An empty
// result means the entry is skipped in the export.
func CleanLine(text string, opts Options) string {
	if opts.CleanFormat {
		text = noiseRe.ReplaceAllString(text, "")
		text = spaceRe.ReplaceAllString(text, " ")
	}
	if opts.RemoveFiller {
		text = fillerRe.ReplaceAllString(text, "")
		text = spaceRe.ReplaceAllString(text, " ")
		text = spacePunctRe.ReplaceAllString(text, "$1")
		text = strings.TrimLeft(strings.TrimSpace(text), ",;: ")
	}
	return strings.TrimSpace(text)
}
