// Package view provides the headless view layer: a console view that renders
// presenter updates as structured log lines. A graphical frontend would
// implement the same presenter view interfaces.
package view

import (
	"log/slog"

	"github.com/stashlens/capturekit/domain/capture"
	"github.com/stashlens/capturekit/ui/model"
	"github.com/stashlens/capturekit/ui/presenter"
)

var (
	_ presenter.StateView      = (*ConsoleView)(nil)
	_ presenter.HUDView        = (*ConsoleView)(nil)
	_ presenter.GalleryView    = (*ConsoleView)(nil)
	_ presenter.AlertView      = (*ConsoleView)(nil)
	_ presenter.ModeView       = (*ConsoleView)(nil)
	_ presenter.PermissionView = (*ConsoleView)(nil)
)

// ConsoleView satisfies every presenter view contract by logging. Safe for
// use from multiple goroutines as long as the logger handler is.
type ConsoleView struct {
	logger *slog.Logger
}

func NewConsoleView(logger *slog.Logger) *ConsoleView {
	return &ConsoleView{logger: logger}
}

func (v *ConsoleView) SetStateLabel(label string) {
	v.logger.Info("view state", "label", label)
}

func (v *ConsoleView) SetZoomLabel(label string) {
	v.logger.Info("view zoom", "label", label)
}

func (v *ConsoleView) SetFlashIcon(icon string) {
	v.logger.Info("view flash", "icon", icon)
}

func (v *ConsoleView) SetCounter(counter string) {
	v.logger.Info("view counter", "text", counter)
}

func (v *ConsoleView) SetMode(m capture.Mode) {
	v.logger.Info("view mode", "mode", m.String())
}

func (v *ConsoleView) SetThumbnails(thumbs []model.Thumbnail) {
	v.logger.Info("view gallery", "thumbnails", len(thumbs))
}

func (v *ConsoleView) ShowPaywall() {
	v.logger.Info("view paywall shown")
}

func (v *ConsoleView) ShowModeSwitchConfirmation(target capture.Mode) {
	v.logger.Info("view mode-switch confirmation", "target", target.String())
}

func (v *ConsoleView) ShowAlert(message string) {
	v.logger.Info("view alert", "message", message)
}

func (v *ConsoleView) ShowMacroSuggestion(message string) {
	if message == "" {
		v.logger.Debug("view macro suggestion cleared")
		return
	}
	v.logger.Info("view macro suggestion", "message", message)
}

func (v *ConsoleView) ShowPermissionDenied() {
	v.logger.Warn("view permission denied")
}
