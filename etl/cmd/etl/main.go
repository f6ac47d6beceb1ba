package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sentryline-systems/sentryline-etl/etl/internal/commands"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := commands.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
