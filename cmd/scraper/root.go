package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/westhuggin/prca-standings-scraper/internal/browser"
	"github.com/westhuggin/prca-standings-scraper/internal/config"
	"github.com/westhuggin/prca-standings-scraper/internal/diagnostics"
	"github.com/westhuggin/prca-standings-scraper/internal/output"
	"github.com/westhuggin/prca-standings-scraper/internal/runner"
	"github.com/westhuggin/prca-standings-scraper/pkg/extractor"
	"github.com/westhuggin/prca-standings-scraper/pkg/logger"
	"github.com/westhuggin/prca-standings-scraper/pkg/models"
	"github.com/westhuggin/prca-standings-scraper/pkg/sink"
)

const sinkTimeout = 30 * time.Second

func newRootCmd(emitter *output.Emitter) *cobra.Command {
	var (
		summary bool
		noSinks bool
	)

	cmd := &cobra.Command{
		Use:   "scraper [EVENT|ALL] [YEAR]",
		Short: "scraper prints PRCA world standings as a JSON array.",
		Long: fmt.Sprintf(`scraper loads the PRCA world standings page for one event, or every event
with ALL, and prints the normalized records to stdout.

Events: %v (default %s). Year defaults to %d.
Configuration comes from PRCA_* environment variables and an optional YAML
file named by PRCA_CONFIG.`, models.Events, models.DefaultEvent, models.DefaultSeason),
		Args:          cobra.MaximumNArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			var selector, year string
			if len(args) > 0 {
				selector = args[0]
			}
			if len(args) > 1 {
				year = args[1]
			}

			events, err := models.ParseEvents(selector)
			if err != nil {
				return err
			}
			season, err := models.ParseSeason(year)
			if err != nil {
				return err
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger.SetLevel(cfg.LogLevel)

			results := newRunner(cfg).Run(cmd.Context(), events, season)
			records := runner.Records(results)
			if err := emitter.Emit(records); err != nil {
				return err
			}

			if summary {
				output.Summary(cmd.ErrOrStderr(), results)
			}
			if !noSinks {
				saveSnapshot(cmd.Context(), cfg, season, events, records)
			}
			return nil
		},
	}

	cmd.SetOut(os.Stderr)
	cmd.SetErr(os.Stderr)
	cmd.Flags().BoolVar(&summary, "summary", false, "print a per-event summary table to stderr")
	cmd.Flags().BoolVar(&noSinks, "no-sinks", false, "skip configured mongo, nats and meilisearch sinks")

	return cmd
}

func newRunner(cfg *config.Config) *runner.Runner {
	b := browser.New(browser.Options{
		NavTimeout:       cfg.NavTimeout,
		SelectorTimeout:  cfg.SelectorTimeout,
		SettleDelay:      cfg.SettleDelay,
		ConsentTimeout:   cfg.ConsentTimeout,
		WaitSelector:     cfg.WaitSelector,
		ResponseKeywords: cfg.ResponseKeywords,
	})
	open := func(ctx context.Context) (runner.Session, error) {
		s, err := b.Open(ctx)
		if err != nil {
			return nil, err
		}
		return s, nil
	}

	opts := []runner.Option{
		runner.WithBaseURL(cfg.BaseURL),
		runner.WithPageTimeout(cfg.PageTimeout),
		runner.WithInterval(cfg.CategoryInterval),
	}
	if cfg.DumpOnFailure {
		opts = append(opts, runner.WithDumper(diagnostics.NewDumper(cfg.DebugDir)))
	}

	return runner.New(open, extractor.NewDefaultChain(cfg.MinRows), opts...)
}

// saveSnapshot runs after stdout is written; its failures only reach the log.
func saveSnapshot(parent context.Context, cfg *config.Config, season int, events []models.Event, records []models.Standing) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(parent), sinkTimeout)
	defer cancel()

	sinks := sink.Open(ctx, sink.Options{
		MongoURI:      cfg.MongoURI,
		MongoDatabase: cfg.MongoDatabase,
		NatsURL:       cfg.NatsURL,
		NatsSubject:   cfg.NatsSubject,
		MeiliURL:      cfg.MeiliURL,
		MeiliKey:      cfg.MeiliKey,
	})
	if sinks.Len() == 0 {
		return
	}
	defer func() {
		if err := sinks.Close(ctx); err != nil {
			logger.Log.Warn().Err(err).Msg("closing sinks")
		}
	}()

	if err := sinks.Save(ctx, sink.NewSnapshot(season, events, records)); err != nil {
		logger.Log.Warn().Err(err).Msg("snapshot not saved everywhere")
	}
}
