package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/westhuggin/prca-standings-scraper/internal/output"
	"github.com/westhuggin/prca-standings-scraper/pkg/logger"
)

func main() {
	logger.Init(logger.IsDev())
	log := logger.Log

	// stdout always receives exactly one JSON array and the exit status is
	// always 0, even after a panic.
	emitter := output.NewEmitter(os.Stdout)
	defer func() {
		if p := recover(); p != nil {
			logger.Log.Error().Interface("panic", p).Msg("scraper crashed")
		}
		if err := emitter.EmitEmpty(); err != nil {
			logger.Log.Error().Err(err).Msg("failed to write output")
		}
		os.Exit(0)
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(emitter).ExecuteContext(ctx); err != nil {
		log.Error().Err(err).Msg("scraper failed")
	}
}
