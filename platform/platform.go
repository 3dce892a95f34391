package platform

import "image"

// Position identifies which way a camera faces.
type Position int

const (
	PositionBack Position = iota
	PositionFront
)

func (p Position) String() string {
	switch p {
	case PositionBack:
		return "back"
	case PositionFront:
		return "front"
	default:
		return "unknown"
	}
}

// Toggled returns the opposite facing position.
func (p Position) Toggled() Position {
	if p == PositionBack {
		return PositionFront
	}
	return PositionBack
}

// LensKind enumerates the physical lens classes a device can expose.
type LensKind int

const (
	LensUltraWide LensKind = iota
	LensWide
	LensTelephoto
)

func (k LensKind) String() string {
	switch k {
	case LensUltraWide:
		return "ultra-wide"
	case LensWide:
		return "wide"
	case LensTelephoto:
		return "telephoto"
	default:
		return "unknown"
	}
}

// Authorization reflects the platform camera-permission state.
type Authorization int

const (
	AuthorizationNotDetermined Authorization = iota
	AuthorizationAuthorized
	AuthorizationDenied
	AuthorizationRestricted
)

// FlashMode selects flash behaviour for still captures.
type FlashMode int

const (
	FlashAuto FlashMode = iota
	FlashOn
	FlashOff
)

func (f FlashMode) String() string {
	switch f {
	case FlashAuto:
		return "auto"
	case FlashOn:
		return "on"
	case FlashOff:
		return "off"
	default:
		return "unknown"
	}
}

// FocusPoint is a point of interest in normalized [0,1]x[0,1] device coordinates.
type FocusPoint struct {
	X float64
	Y float64
}

// Valid reports whether the point lies inside the normalized unit square.
func (p FocusPoint) Valid() bool {
	return p.X >= 0 && p.X <= 1 && p.Y >= 0 && p.Y <= 1
}

// DeviceConfig is the mutation surface available while a device configuration
// lock is held. Implementations apply changes immediately; callers never see
// the lock itself.
type DeviceConfig interface {
	SetZoom(factor float64)
	SetFocusPointOfInterest(p FocusPoint)
	SetExposurePointOfInterest(p FocusPoint)
	SetContinuousAutoFocus()
	SetContinuousAutoExposure()
}

// Device is one physical lens owned by the platform.
type Device interface {
	ID() string
	Name() string
	Kind() LensKind
	Position() Position

	// HardwareModel returns the platform hardware identifier string used by
	// zoom-policy heuristics.
	HardwareModel() string

	// FormatCount reports how many capture formats the device advertises.
	// Zero means the device is unusable and discovery skips it.
	FormatCount() int

	// ZoomRange returns the [min,max] display-zoom span the lens covers.
	ZoomRange() (min, max float64)

	// ZoomFactor returns the currently applied zoom factor.
	ZoomFactor() float64

	MinFocusDistanceMM() float64
	SupportsFocusPointOfInterest() bool

	// Configure acquires the device configuration lock, runs apply, and
	// releases the lock. An error means the lock could not be acquired and
	// apply did not run; camera hardware locking is racy against concurrent
	// system events, so callers treat this as a no-op.
	Configure(apply func(DeviceConfig)) error
}

// Session is a live capture session. It owns at most one input device and one
// still-photo output; the platform runs its internal pipeline on its own
// threads.
type Session interface {
	SetInput(d Device) error
	RemoveInput()
	Input() Device

	AddPhotoOutput() error

	// Start blocks until the platform confirms the session is running.
	Start() error
	Stop()
	Running() bool

	// CapturePhoto performs a still capture through the current input. Only
	// one capture may be in flight; a concurrent call fails immediately.
	CapturePhoto(flash FlashMode) (image.Image, error)

	// PreviewFrame returns the most recent preview frame, or nil if the
	// session is not producing frames.
	PreviewFrame() image.Image
}

// Platform is the full camera capability the capture core consumes.
type Platform interface {
	AuthorizationStatus() Authorization

	// RequestAccess issues the one-time system permission prompt. The
	// completion may be invoked on an arbitrary goroutine.
	RequestAccess(completion func(granted bool))

	Devices(pos Position) []Device
	NewSession() Session
}
