package capture

import (
	"image"
	"time"

	"github.com/stashlens/capturekit/domain/device"
	"github.com/stashlens/capturekit/platform"
)

// SessionState enumerates the capture session lifecycle. Stopped is not
// terminal: StartSession brings a stopped session back to Ready, which is how
// deactivate/reactivate cycles work.
type SessionState int

const (
	StateUninitialized SessionState = iota
	StateConfiguring
	StateReady
	StateCapturing
	StateStopped
)

func (s SessionState) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateConfiguring:
		return "configuring"
	case StateReady:
		return "ready"
	case StateCapturing:
		return "capturing"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// SwitchPhase is the single-flight state of the mode-switch protocol. An
// explicit enum rather than a boolean flag so the states are exhaustive.
type SwitchPhase int

const (
	SwitchIdle SwitchPhase = iota
	SwitchPendingConfirmation
)

func (p SwitchPhase) String() string {
	switch p {
	case SwitchIdle:
		return "idle"
	case SwitchPendingConfirmation:
		return "pending-confirmation"
	default:
		return "unknown"
	}
}

// CapturedImage is one processed photo and its position in the sequence.
// Held only in memory; persistence belongs to an external collaborator.
type CapturedImage struct {
	ID         string
	Image      image.Image
	Sequence   int
	Position   platform.Position
	CapturedAt time.Time
}

// StateListener is called on each session state transition.
type StateListener func(prev, next SessionState)

// Completion receives the captured images and chosen mode when the user
// finishes a capture session.
type Completion func(images []CapturedImage, mode Mode)

// UICallbacks externalize the UI-facing signals the controller emits. All
// fields are optional; nil callbacks are skipped.
type UICallbacks struct {
	// ShowPaywall fires when a mode switch is blocked by entitlement.
	ShowPaywall func()

	// ConfirmModeSwitch fires when a destructive mode switch needs explicit
	// confirmation; the caller later invokes ConfirmModeChange or
	// CancelModeChange.
	ConfirmModeSwitch func(target Mode)

	// PhotoLimit fires when a capture is rejected by the photo-count policy.
	PhotoLimit func(v Violation, message string)

	// MacroRecommendation fires after zoom changes; nil clears any visible
	// suggestion.
	MacroRecommendation func(rec *device.MacroRecommendation)

	// Haptic fires when a mode switch is applied.
	Haptic func()
}

// StateSource narrows the controller for observers that only read state.
type StateSource interface {
	State() SessionState
	Ready() bool
}

// GallerySource narrows the controller for observers of the captured list.
type GallerySource interface {
	Images() []CapturedImage
	PhotoCount() int
}

// HUDSource narrows the controller for zoom/flash/counter display bindings.
type HUDSource interface {
	ZoomLabel() string
	FlashIconID() string
	CounterText() string
	Mode() Mode
}
