package app

import (
	"log/slog"

	"github.com/stashlens/capturekit/assets"
	"github.com/stashlens/capturekit/config"
	"github.com/stashlens/capturekit/domain/capture"
	"github.com/stashlens/capturekit/platform"
	"github.com/stashlens/capturekit/platform/screen"
	"github.com/stashlens/capturekit/platform/sim"
	"github.com/stashlens/capturekit/server"
	"github.com/stashlens/capturekit/ui/model"
	"github.com/stashlens/capturekit/ui/presenter"
	"github.com/stashlens/capturekit/ui/view"
)

// AppContainer assembles the platform backend, capture controller, models,
// presenters and the console view.
type AppContainer struct {
	Config     *config.Config
	Logger     *slog.Logger
	Platform   platform.Platform
	Controller *capture.Controller
	View       *view.ConsoleView
	Preview    *server.Server

	Session *model.SessionModel
	HUD     *model.HUDModel
	Gallery *model.GalleryModel

	CapturePresenter *presenter.CapturePresenter
	Loop             *presenter.Loop
}

const thumbnailSize = 120

// BuildContainer constructs all components. Side effects are limited to
// asset decoding and platform device probing.
func BuildContainer(cfg *config.Config, logger *slog.Logger) *AppContainer {
	c := &AppContainer{Config: cfg, Logger: logger}

	c.Platform = buildPlatform(cfg, logger)
	c.Controller = capture.NewController(c.Platform, cfg, logger)
	c.View = view.NewConsoleView(logger)

	c.Session = model.NewSessionModel()
	c.HUD = model.NewHUDModel()
	c.Gallery = model.NewGalleryModel(thumbnailSize, thumbnailSize)

	c.CapturePresenter = presenter.NewCapturePresenter(
		c.Controller, c.Controller, c.Controller, c.Controller,
		c.View, c.View, c.View, logger)
	c.Controller.SetCallbacks(c.CapturePresenter.Callbacks())

	state := presenter.NewStatePresenter(c.View)
	c.Controller.AddListener(state.OnState)
	hud := presenter.NewHUDPresenter(c.Controller, c.HUD, c.View)
	gallery := presenter.NewGalleryPresenter(c.Controller, c.Gallery, c.View)
	c.Loop = presenter.NewLoop(state, hud, gallery, c.Session, c.Controller, nil)

	if img, err := assets.TestPatternImage(); err == nil {
		c.Controller.SetTestFixture(img)
	} else {
		logger.Warn("cannot decode embedded test pattern", "error", err)
	}

	if cfg.PreviewAddr != "" {
		c.Preview = server.New(cfg.PreviewAddr, c.Controller, logger)
	}
	return c
}

// buildPlatform selects the capture backend. The screen backend exposes the
// display as a single wide lens; the simulator models a full multi-lens
// device and is the default.
func buildPlatform(cfg *config.Config, logger *slog.Logger) platform.Platform {
	switch cfg.Backend {
	case "screen":
		logger.Info("using screen capture backend")
		return screen.NewPlatform()
	default:
		model := "Phone15,2"
		if cfg.Pro && len(cfg.Zoom.ProModels) > 0 {
			model = cfg.Zoom.ProModels[0]
		}
		logger.Info("using simulated camera backend", "model", model)
		return sim.NewPlatform(platform.AuthorizationNotDetermined, true, sim.DefaultLenses(model))
	}
}
