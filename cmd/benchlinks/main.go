package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/maximumstock/benchlinks/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := cli.Run(ctx)
	stop()
	os.Exit(code)
}
