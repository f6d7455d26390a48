package main

import (
	"encoding/json"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
)

// fieldWidth is the widest a value cell grows before it wraps.
const fieldWidth = 60

type column struct {
	header   string
	align    text.Align
	maxWidth int
}

func left(header string) column  { return column{header: header, align: text.AlignLeft} }
func right(header string) column { return column{header: header, align: text.AlignRight} }

// renderTable draws rows under cols. Missing cells render empty; cells past
// the last column are dropped.
func renderTable(title string, cols []column, rows [][]string) string {
	if len(cols) == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	if title != "" {
		tw.SetTitle("%s", title)
	}

	header := make(table.Row, len(cols))
	configs := make([]table.ColumnConfig, len(cols))
	for i, c := range cols {
		header[i] = c.header
		configs[i] = table.ColumnConfig{Number: i + 1, Align: c.align, AlignHeader: text.AlignLeft}
		if c.maxWidth > 0 {
			configs[i].WidthMax = c.maxWidth
			configs[i].WidthMaxEnforcer = text.WrapSoft
		}
	}
	tw.AppendHeader(header)
	tw.SetColumnConfigs(configs)

	for _, row := range rows {
		r := make(table.Row, len(cols))
		for i := range r {
			r[i] = ""
			if i < len(row) {
				r[i] = row[i]
			}
		}
		tw.AppendRow(r)
	}
	return tw.Render()
}

// renderFields draws a two-column field/value table. Empty values are
// skipped so a video without a channel name does not print a blank row.
func renderFields(title string, fields [][2]string) string {
	rows := make([][]string, 0, len(fields))
	for _, f := range fields {
		if f[1] != "" {
			rows = append(rows, []string{f[0], f[1]})
		}
	}
	value := left("Value")
	value.maxWidth = fieldWidth
	return renderTable(title, []column{left("Field"), value}, rows)
}

// writeJSON encodes v as indented JSON to the command's stdout. Transcript
// text is written as-is, without HTML escaping of &, < and >.
func writeJSON(cmd *cobra.Command, v any) error {
	return encodeJSON(cmd.OutOrStdout(), v)
}

func encodeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
