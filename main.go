package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/stashlens/capturekit/app"
	"github.com/stashlens/capturekit/config"
)

func main() {
	cfgPath := flag.String("config", "capturekit.json", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		cfg = config.DefaultConfig()
	}

	level := ParseLevel(cfg.LogLevel)
	if cfg.Debug {
		level = slog.LevelDebug
	}
	logger := NewLogger(level)
	if err != nil {
		logger.Warn("cannot load config, using defaults", "path", *cfgPath, "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application := app.NewApp(cfg, logger)
	if err := application.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("application error", "error", err)
		os.Exit(1)
	}
}
