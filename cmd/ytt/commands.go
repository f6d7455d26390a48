package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/anatolykoptev/go_transcript/internal/engine/export"
	"github.com/anatolykoptev/go_transcript/internal/transcriptserver"
)

func newFetchCommand(ctx *commandContext) *cobra.Command {
	var lines int
	var noTimestamps bool
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "fetch <video>",
		Short: "Resolve a transcript and print a preview",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := ctx.session(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			t := s.Transcript()
			if asJSON {
				return writeJSON(cmd, s.Outcome)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderFields("Transcript", [][2]string{
				{"Title", s.Info.Title},
				{"Channel", s.Info.Channel},
				{"Video ID", s.VideoID},
				{"Source", s.Outcome.Source},
				{"Language", s.Outcome.Language},
				{"Entries", strconv.Itoa(t.Len())},
			}))
			fmt.Fprintln(out, export.Preview(t, lines, !noTimestamps))
			return nil
		},
	}

	cmd.Flags().IntVarP(&lines, "lines", "n", 10, "Number of preview lines (0 = all)")
	cmd.Flags().BoolVar(&noTimestamps, "no-timestamps", false, "Omit [m:ss] prefixes")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the full resolution outcome as JSON")
	return cmd
}

func newExportCommand(ctx *commandContext) *cobra.Command {
	var format string
	var output string
	var save bool
	var opts export.Options
	var noTimestamps, raw bool

	cmd := &cobra.Command{
		Use:   "export <video>",
		Short: "Export a transcript as txt, md, srt, vtt, json or html",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}
			s, err := ctx.session(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			opts.IncludeTimestamps = !noTimestamps
			opts.CleanFormat = !raw
			data, err := export.Render(f, s.Info, s.Transcript(), opts)
			if err != nil {
				return err
			}

			if save && output == "" {
				output = export.Filename(s.Info.Title, f)
			}
			if output == "" || output == "-" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s (%d bytes)\n", output, len(data))
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "txt", "Export format: txt, md, srt, vtt, json, html")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default stdout)")
	cmd.Flags().BoolVar(&save, "save", false, "Write to a file named after the video title")
	cmd.Flags().BoolVar(&noTimestamps, "no-timestamps", false, "Omit timestamps in text formats")
	cmd.Flags().BoolVar(&raw, "raw", false, "Keep [Music] and similar markers")
	cmd.Flags().BoolVar(&opts.RemoveFiller, "remove-filler", false, "Drop filler words")
	cmd.Flags().BoolVar(&opts.SmartParagraphs, "paragraphs", false, "Group lines into paragraphs")
	cmd.Flags().BoolVar(&opts.DetectSpeakers, "speakers", false, "Label heuristic speaker turns")
	return cmd
}

func newAnalyzeCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	var summary bool

	cmd := &cobra.Command{
		Use:   "analyze <video>",
		Short: "Print transcript statistics and keywords",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := ctx.session(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			a := transcriptserver.Analyze(s.Info, s.Transcript())
			if asJSON {
				return writeJSON(cmd, a)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(s.Info.Title,
				[]column{right("Words"), right("Sentences"), right("Duration"), right("WPM"), right("Paragraphs")},
				[][]string{{
					strconv.Itoa(a.Stats.Words),
					strconv.Itoa(a.Stats.Sentences),
					a.Duration,
					strconv.Itoa(a.Stats.Pace),
					strconv.Itoa(a.Paragraphs),
				}},
			))

			rows := make([][]string, 0, len(a.Keywords))
			for _, k := range a.Keywords {
				rows = append(rows, []string{k.Word, strconv.Itoa(k.Count), strconv.Itoa(k.Size)})
			}
			if len(rows) > 0 {
				fmt.Fprintln(out, renderTable("", []column{left("Keyword"), right("Count"), right("Size")}, rows))
			}

			if summary {
				sum := transcriptserver.Summarize(cmd.Context(), s.Info, s.Transcript(), 0, true)
				fmt.Fprintf(out, "Summary (%s):\n%s\n", sum.Method, sum.Summary)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the analysis as JSON")
	cmd.Flags().BoolVar(&summary, "summary", false, "Append a summary (LLM when configured)")
	return cmd
}
