package presenter

import (
	"log/slog"

	"github.com/stashlens/capturekit/domain/capture"
	"github.com/stashlens/capturekit/domain/device"
)

// Lifecycle narrows what the presenter needs to bring the session up and
// down.
type Lifecycle interface {
	ConfigureSession()
	CheckPermissions(completion func(granted bool))
	StopSession()
}

// Shutter triggers still captures.
type Shutter interface {
	CapturePhoto()
}

// CameraControls covers zoom, facing and flash intents.
type CameraControls interface {
	SetZoom(index int)
	SwitchCamera()
	CycleFlash()
}

// ModeSwitcher exposes the mode-switch protocol and the visible mode.
type ModeSwitcher interface {
	RequestModeChange(to capture.Mode) bool
	ConfirmModeChange()
	CancelModeChange()
	Mode() capture.Mode
}

// AlertView surfaces the UI signals the capture core emits.
type AlertView interface {
	ShowPaywall()
	ShowModeSwitchConfirmation(target capture.Mode)
	ShowAlert(message string)
	ShowMacroSuggestion(message string) // empty message clears
}

// ModeView binds the visible mode picker.
type ModeView interface {
	SetMode(capture.Mode)
}

// PermissionView is told when camera access is denied.
type PermissionView interface {
	ShowPermissionDenied()
}

// CapturePresenter owns presentation logic for the capture screen: session
// lifecycle, shutter and camera-control intents, and the mode picker flow
// including reverts while a switch is gated.
type CapturePresenter struct {
	life     Lifecycle
	shutter  Shutter
	controls CameraControls
	modes    ModeSwitcher
	alerts   AlertView
	modeView ModeView
	perm     PermissionView
	logger   *slog.Logger
}

func NewCapturePresenter(life Lifecycle, shutter Shutter, controls CameraControls, modes ModeSwitcher,
	alerts AlertView, modeView ModeView, perm PermissionView, logger *slog.Logger) *CapturePresenter {
	return &CapturePresenter{
		life: life, shutter: shutter, controls: controls, modes: modes,
		alerts: alerts, modeView: modeView, perm: perm, logger: logger,
	}
}

// Activate configures the session and runs the permission flow; a granted
// request starts the session inside the capture layer.
func (p *CapturePresenter) Activate() {
	if p == nil || p.life == nil {
		return
	}
	p.life.ConfigureSession()
	p.life.CheckPermissions(func(granted bool) {
		if granted {
			return
		}
		if p.perm != nil {
			p.perm.ShowPermissionDenied()
		}
	})
}

// Deactivate stops the session.
func (p *CapturePresenter) Deactivate() {
	if p == nil || p.life == nil {
		return
	}
	p.life.StopSession()
}

// Shutter handles a shutter press.
func (p *CapturePresenter) Shutter() {
	if p == nil || p.shutter == nil {
		return
	}
	p.shutter.CapturePhoto()
}

// SelectZoom handles a zoom pill tap.
func (p *CapturePresenter) SelectZoom(index int) {
	if p == nil || p.controls == nil {
		return
	}
	p.controls.SetZoom(index)
}

// ToggleFacing flips between front and back cameras.
func (p *CapturePresenter) ToggleFacing() {
	if p == nil || p.controls == nil {
		return
	}
	p.controls.SwitchCamera()
}

// CycleFlash advances the flash mode.
func (p *CapturePresenter) CycleFlash() {
	if p == nil || p.controls == nil {
		return
	}
	p.controls.CycleFlash()
}

// PickMode handles a mode picker selection. When the switch is gated the
// picker is reverted to the still-current mode; the gate's signal callbacks
// drive the paywall or confirmation dialog.
func (p *CapturePresenter) PickMode(m capture.Mode) {
	if p == nil || p.modes == nil {
		return
	}
	applied := p.modes.RequestModeChange(m)
	if p.modeView != nil {
		p.modeView.SetMode(p.modes.Mode())
	}
	if p.logger != nil && !applied {
		p.logger.Debug("mode selection not applied", "target", m.String())
	}
}

// ConfirmModeSwitch applies a pending switch from the confirmation dialog.
func (p *CapturePresenter) ConfirmModeSwitch() {
	if p == nil || p.modes == nil {
		return
	}
	p.modes.ConfirmModeChange()
	if p.modeView != nil {
		p.modeView.SetMode(p.modes.Mode())
	}
}

// CancelModeSwitch abandons a pending switch.
func (p *CapturePresenter) CancelModeSwitch() {
	if p == nil || p.modes == nil {
		return
	}
	p.modes.CancelModeChange()
	if p.modeView != nil {
		p.modeView.SetMode(p.modes.Mode())
	}
}

// Callbacks returns the signal callbacks to install on the capture
// controller. The confirmation callback re-asserts the visible mode before
// showing the dialog, so the picker never displays a mode that is still
// pending a destructive confirm.
func (p *CapturePresenter) Callbacks() capture.UICallbacks {
	return capture.UICallbacks{
		ShowPaywall: func() {
			if p.modeView != nil && p.modes != nil {
				p.modeView.SetMode(p.modes.Mode())
			}
			if p.alerts != nil {
				p.alerts.ShowPaywall()
			}
		},
		ConfirmModeSwitch: func(target capture.Mode) {
			if p.modeView != nil && p.modes != nil {
				p.modeView.SetMode(p.modes.Mode())
			}
			if p.alerts != nil {
				p.alerts.ShowModeSwitchConfirmation(target)
			}
		},
		PhotoLimit: func(v capture.Violation, message string) {
			if p.alerts != nil {
				p.alerts.ShowAlert(message)
			}
		},
		MacroRecommendation: func(rec *device.MacroRecommendation) {
			if p.alerts == nil {
				return
			}
			if rec == nil {
				p.alerts.ShowMacroSuggestion("")
				return
			}
			p.alerts.ShowMacroSuggestion(rec.Message)
		},
	}
}
