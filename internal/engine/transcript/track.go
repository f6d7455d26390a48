package transcript

import (
	"strings"

	"golang.org/x/text/language"
)

// CaptionTrack is one caption track offered by the player response.
// Only used while choosing a track.
type CaptionTrack struct {
	LanguageCode string `json:"languageCode"`
	Name         string `json:"name"`
	Kind         string `json:"kind"` // "asr" = auto-generated
	BaseURL      string `json:"baseUrl"`
	VssID        string `json:"vssId"`
}

// AutoGenerated reports whether the track was produced by speech recognition.
func (t CaptionTrack) AutoGenerated() bool {
	return t.Kind == "asr" || strings.HasPrefix(t.VssID, "a.")
}

// English reports whether the language code or vssId marks the track as English.
func (t CaptionTrack) English() bool {
	if isEnglishTag(t.LanguageCode) {
		return true
	}
	id := strings.TrimPrefix(t.VssID, "a")
	id = strings.TrimPrefix(id, ".")
	return id != "" && isEnglishTag(id)
}

func isEnglishTag(code string) bool {
	if code == "" {
		return false
	}
	tag, err := language.Parse(code)
	if err != nil {
		return strings.HasPrefix(strings.ToLower(code), "en")
	}
	base, _ := tag.Base()
	return base == englishBase
}

var englishBase, _ = language.English.Base()

// SelectTrack picks a track deterministically: English first (manual
// English ahead of auto-generated English), then any manual track, then
// the first track. Returns false only when tracks is empty.
func SelectTrack(tracks []CaptionTrack) (CaptionTrack, bool) {
	if len(tracks) == 0 {
		return CaptionTrack{}, false
	}
	for _, t := range tracks {
		if t.English() && !t.AutoGenerated() {
			return t, true
		}
	}
	for _, t := range tracks {
		if t.English() {
			return t, true
		}
	}
	for _, t := range tracks {
		if !t.AutoGenerated() {
			return t, true
		}
	}
	return tracks[0], true
}
