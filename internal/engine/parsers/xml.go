// Package parsers turns raw caption payloads into canonical transcripts.
// Parsers never perform I/O and never fail: a payload whose shape does not
// match yields an empty transcript so the caller can try something else.
package parsers

import (
	"bytes"
	"encoding/xml"
	"strconv"
	"strings"

	"github.com/anatolykoptev/go_transcript/internal/engine/transcript"
)

// ParseTimedTextXML parses timedtext XML: repeated elements carrying a
// start attribute, an optional dur attribute and text content.
func ParseTimedTextXML(data []byte) transcript.Transcript {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.Strict = false
	dec.AutoClose = xml.HTMLAutoClose
	dec.Entity = xml.HTMLEntity

	var b transcript.Builder
	var (
		inEntry bool
		depth   int
		start   float64
		dur     float64
		text    strings.Builder
	)
	for {
		tok, err := dec.Token()
		if err != nil {
			// io.EOF or a syntax error: keep what was parsed so far.
			break
		}
		switch el := tok.(type) {
		case xml.StartElement:
			if inEntry {
				depth++
				continue
			}
			s, ok := attrFloat(el.Attr, "start")
			if !ok {
				continue
			}
			d, ok := attrFloat(el.Attr, "dur")
			if !ok {
				d = transcript.DefaultDuration
			}
			inEntry, depth, start, dur = true, 0, s, d
			text.Reset()
		case xml.EndElement:
			if !inEntry {
				continue
			}
			if depth > 0 {
				depth--
				continue
			}
			b.Add(start, dur, transcript.DecodeEntities(text.String()))
			inEntry = false
		case xml.CharData:
			if inEntry {
				text.Write(el)
			}
		}
	}
	return b.Transcript()
}

func attrFloat(attrs []xml.Attr, name string) (float64, bool) {
	for _, a := range attrs {
		if a.Name.Local != name {
			continue
		}
		return parseFinite(a.Value)
	}
	return 0, false
}

// MarshalTimedTextXML renders a transcript back into timedtext XML.
func MarshalTimedTextXML(t transcript.Transcript) []byte {
	var buf bytes.Buffer
	buf.WriteString(`<?xml version="1.0" encoding="utf-8" ?><transcript>`)
	for _, e := range t.Entries {
		buf.WriteString(`<text start="`)
		buf.WriteString(strconv.FormatFloat(e.Start, 'f', -1, 64))
		buf.WriteString(`" dur="`)
		buf.WriteString(strconv.FormatFloat(e.Duration, 'f', -1, 64))
		buf.WriteString(`">`)
		_ = xml.EscapeText(&buf, []byte(e.Text))
		buf.WriteString(`</text>`)
	}
	buf.WriteString(`</transcript>`)
	return buf.Bytes()
}
