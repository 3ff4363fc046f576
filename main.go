package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joelanford/airlift/internal/cli"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := cli.Root().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
