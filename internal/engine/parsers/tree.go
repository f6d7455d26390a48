package parsers

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Helpers for walking untyped JSON trees (map[string]any / []any / scalars).

// Get follows a path of object keys. A numeric key indexes into a list.
func Get(v any, path ...string) any {
	cur := v
	for _, key := range path {
		switch node := cur.(type) {
		case map[string]any:
			cur = node[key]
		case []any:
			i, err := strconv.Atoi(key)
			if err != nil || i < 0 || i >= len(node) {
				return nil
			}
			cur = node[i]
		default:
			return nil
		}
		if cur == nil {
			return nil
		}
	}
	return cur
}

// AsMap returns v as an object, or nil.
func AsMap(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

// AsList returns v as a list, or nil.
func AsList(v any) []any {
	l, _ := v.([]any)
	return l
}

// AsString returns a string scalar, or "".
func AsString(v any) string {
	s, _ := v.(string)
	return s
}

// AsNumber reads a finite number encoded either as a JSON number or a
// numeric string. NaN and infinities are rejected.
func AsNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return finite(n, nil)
	case json.Number:
		return finite(n.Float64())
	case string:
		return parseFinite(n)
	}
	return 0, false
}

func parseFinite(s string) (float64, bool) {
	return finite(strconv.ParseFloat(strings.TrimSpace(s), 64))
}

func finite(f float64, err error) (float64, bool) {
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// TextOf reads a renderer text field: {"simpleText": "..."}, {"runs": [{"text": "..."}]}
// or a bare string.
func TextOf(v any) string {
	switch node := v.(type) {
	case string:
		return node
	case map[string]any:
		if s, ok := node["simpleText"].(string); ok {
			return s
		}
		var sb strings.Builder
		for _, r := range AsList(node["runs"]) {
			sb.WriteString(AsString(AsMap(r)["text"]))
		}
		return sb.String()
	}
	return ""
}

// DecodeTree unmarshals JSON into an untyped tree. Returns nil on bad input.
func DecodeTree(data []byte) any {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil
	}
	return v
}
