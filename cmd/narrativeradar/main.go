// Command narrativeradar runs the narrative pipeline from the terminal
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"narrativeradar/internal/platform/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := Execute(ctx); err != nil {
		logger.Get().Error().Err(err).Msg("narrativeradar")
		stop()
		os.Exit(1)
	}
}
