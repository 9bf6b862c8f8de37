// Command mockapi serves the storefront's backend contract from memory for
// local development and tests.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/slimeyayush/altair-frontend/internal/config"
	"github.com/slimeyayush/altair-frontend/internal/mockapi"
	"github.com/slimeyayush/altair-frontend/pkg/logger"
)

func main() {
	port := pflag.IntP("port", "p", 0, "listen port, overrides ALTAIR_MOCKAPI_HTTP_PORT")
	level := pflag.String("log-level", "", "log level, overrides ALTAIR_LOG_LEVEL")
	pflag.Parse()

	cfg, err := config.LoadMockAPI()
	if err != nil {
		fmt.Fprintln(os.Stderr, "mockapi:", err)
		os.Exit(2)
	}
	if *port != 0 {
		cfg.HTTPPort = *port
	}
	if *level != "" {
		cfg.LogLevel = *level
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "mockapi:", err)
		os.Exit(2)
	}

	log := logger.NewWithWriter(mockapi.ServiceName, cfg.LogLevel, cfg.LogFormat, os.Stderr)
	app, err := mockapi.NewApp(cfg, log)
	if err != nil {
		log.Error("init failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info("dev backend starting",
		slog.String("environment", cfg.Environment),
		slog.Int("port", cfg.HTTPPort),
	)
	if err := app.Run(ctx); err != nil {
		log.Error("dev backend failed", slog.String("error", err.Error()))
		stop()
		os.Exit(1)
	}
}
