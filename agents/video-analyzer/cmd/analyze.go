package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	videoanalyzer "github.com/TradersPost/pinescript-agents/agents/video-analyzer"
)

func newAnalyzeCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "analyze <youtube-url>",
		Short: "Analyze one video and save the specification",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			analyzer, err := a.newAnalyzer(cmd.Context())
			if err != nil {
				return err
			}
			return runAnalyze(cmd.Context(), a.out, analyzer, a.newStore(), args[0])
		},
	}
}

// runAnalyze prints the summary and the save path, or a single error line.
func runAnalyze(ctx context.Context, out io.Writer, analyzer *videoanalyzer.Analyzer, store videoanalyzer.ResultStore, url string) error {
	fmt.Fprintln(out, "🎥 Analyzing video...")

	result, err := analyzer.AnalyzeVideo(ctx, url)
	if err != nil {
		msg := err.Error()
		if result != nil && result.Error != "" {
			msg = result.Error
		}
		fmt.Fprintf(out, "❌ Error: %s\n", msg)
		return fmt.Errorf("%w: %w", errReported, err)
	}

	fmt.Fprintln(out, result.Summary)

	path, err := store.Save(result)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "\n📁 Full analysis saved to: %s\n", path)
	return nil
}
