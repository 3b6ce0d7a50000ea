package main

import (
	"fmt"

	"github.com/spf13/cobra"

	videoanalyzer "github.com/TradersPost/pinescript-agents/agents/video-analyzer"
	"github.com/TradersPost/pinescript-agents/shared/email"
	"github.com/TradersPost/pinescript-agents/shared/scheduler"
)

func newWatchCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "watch <youtube-url>",
		Short: "Retry the analysis on a schedule until a transcript is available",
		Long: `watch runs the analysis immediately and then on the configured cron schedule
(watch.schedule, with seconds) until one run succeeds. A health endpoint on
monitoring.health_port reports the last run.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			analyzer, err := a.newAnalyzer(cmd.Context())
			if err != nil {
				return err
			}

			agent := videoanalyzer.NewWatchAgent(args[0], analyzer, a.newStore(), a.logger)
			if a.cfg.Email.Enabled() {
				agent.WithNotifier(email.NewSender(&a.cfg.Email))
			}
			if err := scheduler.New(a.cfg, agent, a.logger).Start(cmd.Context()); err != nil {
				return err
			}

			result, path := agent.Result()
			fmt.Fprintln(a.out, result.Summary)
			fmt.Fprintf(a.out, "\n📁 Full analysis saved to: %s\n", path)
			return nil
		},
	}
}
