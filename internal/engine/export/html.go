package export

import (
	"bytes"
	"html/template"
	"io"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
)

var documentTmpl = template.Must(template.New("document").Parse(`{{define "body"}}<h1>{{.Info.Title}}</h1>
<p><strong>Channel:</strong> {{.Info.Channel}}</p>
<p><strong>Video ID:</strong> {{.Info.VideoID}}</p>
<hr>
<h2>Transcript</h2>
{{range .Paragraphs}}<section>
{{range .}}<p class="line">{{if .Timestamp}}<span class="ts">[{{.Timestamp}}]</span> {{end}}{{if .Speaker}}<strong>{{.Speaker}}:</strong> {{end}}{{.Text}}</p>
{{end}}</section>
{{end}}{{end}}<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Info.Title}} - Transcript</title>
<style>
body { font-family: Georgia, serif; max-width: 720px; margin: 2rem auto; line-height: 1.6; color: #222; }
h1 { font-size: 1.6rem; margin-bottom: .25rem; }
section { margin-bottom: 1rem; }
p.line { margin: .2rem 0; }
.ts { color: #888; font-family: monospace; font-size: .85em; }
footer { margin-top: 2rem; font-size: .8rem; color: #666; }
@media print { body { margin: 0; } a { color: inherit; text-decoration: none; } }
</style>
</head>
<body>
{{template "body" .}}<footer>{{.Stats.Words}} words, {{.Stats.DurationLabel}} duration, {{.Stats.Pace}} words per minute{{if .Info.URL}}. Source: <a href="{{.Info.URL}}">{{.Info.URL}}</a>{{end}}</footer>
</body>
</html>
`))

type viewLine struct {
	Timestamp string
	Speaker   string
	Text      string
}

type documentView struct {
	Document
	Paragraphs [][]viewLine
}

// view resolves per-line display fields: the timestamp when enabled and
// the speaker label only where it changes.
func view(doc Document) documentView {
	v := documentView{Document: doc}
	lastSpeaker := ""
	for _, para := range doc.Paragraphs {
		lines := make([]viewLine, len(para))
		for i, l := range para {
			lines[i].Text = l.Text
			if doc.Options.IncludeTimestamps {
				lines[i].Timestamp = l.Timestamp
			}
			if doc.Options.DetectSpeakers && l.Speaker != "" && l.Speaker != lastSpeaker {
				lines[i].Speaker = l.Speaker
				lastSpeaker = l.Speaker
			}
		}
		v.Paragraphs = append(v.Paragraphs, lines)
	}
	return v
}

func writeHTML(w io.Writer, doc Document) error {
	return documentTmpl.Execute(w, view(doc))
}

func writeMarkdown(w io.Writer, doc Document) error {
	var body bytes.Buffer
	if err := documentTmpl.ExecuteTemplate(&body, "body", view(doc)); err != nil {
		return err
	}
	md, err := htmltomarkdown.ConvertString(body.String())
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, strings.TrimSpace(md)+"\n")
	return err
}
