package parsers

import (
	"bytes"

	"github.com/anatolykoptev/go_transcript/internal/engine/transcript"
)

// Kind is the sniffed content type of a caption body.
type Kind int

const (
	KindUnknown Kind = iota
	KindXML
	KindJSON
)

func (k Kind) String() string {
	switch k {
	case KindXML:
		return "xml"
	case KindJSON:
		return "json"
	}
	return "unknown"
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Sniff inspects the first significant byte of a caption body.
func Sniff(body []byte) Kind {
	body = bytes.TrimPrefix(body, utf8BOM)
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return KindUnknown
	}
	switch body[0] {
	case '<':
		return KindXML
	case '{':
		return KindJSON
	}
	return KindUnknown
}

// ParseCaptionBody sniffs body and dispatches to the matching parser.
func ParseCaptionBody(body []byte) (transcript.Transcript, Kind) {
	kind := Sniff(body)
	switch kind {
	case KindXML:
		return ParseTimedTextXML(body), kind
	case KindJSON:
		return ParseEventStream(body), kind
	}
	return transcript.Transcript{}, kind
}
