package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	videoanalyzer "github.com/TradersPost/pinescript-agents/agents/video-analyzer"
	"github.com/TradersPost/pinescript-agents/agents/video-analyzer/transcript"
	"github.com/TradersPost/pinescript-agents/agents/video-analyzer/youtube"
	"github.com/TradersPost/pinescript-agents/shared/config"
	"github.com/TradersPost/pinescript-agents/shared/logging"
	"github.com/TradersPost/pinescript-agents/shared/storage"
)

// errReported marks failures whose message was already printed to the user.
var errReported = errors.New("failure already reported")

// app carries what every subcommand needs once flags are parsed.
type app struct {
	out     io.Writer
	cfgFile string
	debug   bool

	cfg    *config.Config
	logger *zap.Logger
}

func newRootCommand(out io.Writer) *cobra.Command {
	a := &app{out: out}

	root := &cobra.Command{
		Use:   "video-analyzer",
		Short: "Turn YouTube trading videos into Pine Script specifications",
		Long: `video-analyzer downloads a YouTube trading video, transcribes it, scans the
transcript for indicators, patterns, strategies and trading rules, and writes a
candidate Pine Script specification to projects/analysis.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default is $CONFIG_FILE or ./config.yaml)")
	root.PersistentFlags().BoolVar(&a.debug, "debug", false, "enable debug logging")

	root.AddCommand(newAnalyzeCommand(a))
	root.AddCommand(newWatchCommand(a))
	return root
}

func (a *app) init() error {
	cfg, err := config.Load(a.cfgFile)
	if err != nil {
		return err
	}
	if a.debug {
		cfg.Logging.Level = "debug"
		cfg.Logging.Development = true
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.logger = logger
	return nil
}

// newAnalyzer wires the metadata resolver and transcript source selected by
// the configuration.
func (a *app) newAnalyzer(ctx context.Context) (*videoanalyzer.Analyzer, error) {
	ytdlp := youtube.NewYTDLP(&a.cfg.YouTube, a.logger)

	var metadata videoanalyzer.MetadataResolver = ytdlp
	if a.cfg.YouTube.MetadataSource == config.MetadataAPI {
		client, err := youtube.NewAPIClient(ctx, &a.cfg.YouTube, a.logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create YouTube client: %w", err)
		}
		metadata = client
	}

	source, err := transcript.New(ctx, a.cfg, ytdlp, a.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create transcript source: %w", err)
	}

	a.logger.Debug("analyzer ready",
		zap.String("metadata_source", a.cfg.YouTube.MetadataSource),
		zap.String("transcript_source", a.cfg.Transcript.Source),
		zap.String("transcriber", a.cfg.Transcript.Transcriber))

	return videoanalyzer.NewAnalyzer(metadata, source, a.logger), nil
}

func (a *app) newStore() *storage.AnalysisStore {
	return storage.NewAnalysisStore(a.cfg.Output.Dir)
}
