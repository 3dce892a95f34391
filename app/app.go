// Package app wires configuration, platform backend, capture controller,
// presenters and the preview server into a runnable headless application.
package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/stashlens/capturekit/config"
	"github.com/stashlens/capturekit/debug"
)

const tick = 100 * time.Millisecond

// App drives the presenter update loop until the context is cancelled.
type App struct {
	container *AppContainer
	logger    *slog.Logger
}

func NewApp(cfg *config.Config, logger *slog.Logger) *App {
	return &App{
		container: BuildContainer(cfg, logger),
		logger:    logger,
	}
}

// Container exposes the wired components.
func (a *App) Container() *AppContainer { return a.container }

// Run activates the capture session and ticks the presenters until ctx is
// done, then tears the session down. Blocks.
func (a *App) Run(ctx context.Context) error {
	c := a.container

	if c.Config.Debug {
		debug.StartRuntimeLogger(2*time.Second, a.logger)
	}
	if c.Preview != nil {
		if err := c.Preview.Start(); err != nil {
			a.logger.Error("cannot start preview server", "error", err)
		}
	}

	c.CapturePresenter.Activate()

	t := time.NewTicker(tick)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			a.shutdown()
			return ctx.Err()
		case <-t.C:
			c.Loop.Tick()
		}
	}
}

func (a *App) shutdown() {
	c := a.container
	c.CapturePresenter.Deactivate()
	if c.Preview != nil {
		if err := c.Preview.Stop(); err != nil {
			a.logger.Warn("preview server shutdown error", "error", err)
		}
	}
	a.logger.Info("application stopped")
}
