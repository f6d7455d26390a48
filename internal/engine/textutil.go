package engine

import (
	"regexp"

	"github.com/anatolykoptev/go-kit/strutil"
)

// UserAgentChrome is sent with paced API and caption requests.
const UserAgentChrome = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

// TruncateRunes caps s at limit runes, appending suffix if truncated.
// Pass suffix="" for no suffix. Safe for UTF-8 (Cyrillic, CJK, emoji).
func TruncateRunes(s string, limit int, suffix string) string {
	return strutil.TruncateWith(s, limit, suffix)
}

// TruncateAtWord truncates a string to maxLen runes at a word boundary.
func TruncateAtWord(s string, maxLen int) string {
	return strutil.TruncateAtWord(s, maxLen)
}

var (
	nonFilenameRe = regexp.MustCompile(`(?i)[^a-z0-9]`)
	underscoresRe = regexp.MustCompile(`_{2,}`)
)

// SanitizeFilename keeps ASCII letters and digits, collapses the rest into
// single underscores and caps the result at 50 bytes.
func SanitizeFilename(name string) string {
	s := nonFilenameRe.ReplaceAllString(name, "_")
	s = underscoresRe.ReplaceAllString(s, "_")
	if len(s) > 50 {
		s = s[:50]
	}
	if s == "" || s == "_" {
		return "transcript"
	}
	return s
}
