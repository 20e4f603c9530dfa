// cmd/stratapage/main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/dalemusser/stratapage/internal/app/bootstrap"
	"github.com/dalemusser/waffle/app"
	"go.uber.org/zap"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx, bootstrap.Hooks); err != nil {
		logger, _ := zap.NewProduction()
		logger.Error("stratapage exited with error", zap.Error(err))
		_ = logger.Sync()
		stop()
		os.Exit(1)
	}
}
