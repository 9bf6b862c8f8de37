package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/slimeyayush/altair-frontend/internal/cli"
)

func main() {
	// Cancel in-flight requests on SIGINT or SIGTERM.
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	code := cli.Execute(ctx, os.Args[1:], cli.Streams{In: os.Stdin, Out: os.Stdout, Err: os.Stderr}, cli.DefaultLoader(os.Stderr))
	cancel()
	os.Exit(code)
}
