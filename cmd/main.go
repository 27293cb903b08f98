package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/desertthunder/hmx/internal/pipeline"
	"github.com/desertthunder/hmx/internal/shared"
)

func main() {
	logger := shared.NewLogger(nil)
	runner := NewRunner(RunnerOpts{Logger: logger})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := runner.app().Run(ctx, os.Args)
	stop()
	if cerr := runner.Close(); cerr != nil {
		logger.Warn("failed to close storage", "error", cerr)
	}

	if err != nil {
		logger.Fatal("application error", "error", pipeline.Message(err))
	}
}
