package page

import (
	"encoding/json"
	"regexp"
	"strings"
)

// extractBalanced returns the JSON object or array starting at s[0] by
// tracking bracket depth outside string literals. Returns "" when s does
// not start with '{' or '[' or the value never closes.
func extractBalanced(s string) string {
	if s == "" || (s[0] != '{' && s[0] != '[') {
		return ""
	}
	depth := 0
	inStr, escaped := false, false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if inStr {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inStr = false
			}
			continue
		}
		switch c {
		case '"':
			inStr = true
		case '{', '[':
			depth++
		case '}', ']':
			depth--
			if depth == 0 {
				return s[:i+1]
			}
		}
	}
	return ""
}

// extractAfterMarker finds the first marker whose following value decodes
// as JSON and returns the decoded tree.
func extractAfterMarker(markup string, markers []string) any {
	for _, marker := range markers {
		from := 0
		for from < len(markup) {
			idx := strings.Index(markup[from:], marker)
			if idx < 0 {
				break
			}
			rest := strings.TrimLeft(markup[from+idx+len(marker):], " \t\r\n")
			from += idx + len(marker)
			blob := extractBalanced(rest)
			if blob == "" {
				continue
			}
			var v any
			if err := json.Unmarshal([]byte(blob), &v); err == nil {
				return v
			}
		}
	}
	return nil
}

// ExtractBalancedAt applies re to s and returns the balanced JSON value
// starting where the match ends. The pattern must end right before the
// opening bracket.
func ExtractBalancedAt(re *regexp.Regexp, s string) string {
	loc := re.FindStringIndex(s)
	if loc == nil {
		return ""
	}
	return ExtractBalanced(s[loc[1]:])
}

// ExtractBalanced returns the balanced JSON value at the start of s,
// ignoring leading whitespace.
func ExtractBalanced(s string) string {
	return extractBalanced(strings.TrimLeft(s, " \t\r\n"))
}
