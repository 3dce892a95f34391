// Package screen adapts the local display into the camera platform contract:
// the screen is exposed as a single fixed wide lens whose stills and preview
// frames are screen grabs. Useful for exercising the capture pipeline on a
// desktop without camera hardware.
package screen

import (
	"errors"
	"fmt"
	"image"
	"sync"
	"sync/atomic"

	"github.com/vova616/screenshot"

	"github.com/stashlens/capturekit/platform"
)

const (
	deviceID      = "screen-wide"
	hardwareModel = "DesktopScreen1,1"
)

// Platform exposes the display as a back-facing camera. The front position has
// no devices.
type Platform struct{}

func NewPlatform() *Platform { return &Platform{} }

func (p *Platform) AuthorizationStatus() platform.Authorization {
	return platform.AuthorizationAuthorized
}

func (p *Platform) RequestAccess(completion func(granted bool)) {
	go completion(true)
}

// Devices probes the display with a single grab; a failing grab means no
// usable device at this position.
func (p *Platform) Devices(pos platform.Position) []platform.Device {
	if pos != platform.PositionBack {
		return nil
	}
	img, err := screenshot.CaptureScreen()
	if err != nil || img == nil {
		return nil
	}
	return []platform.Device{&Device{
		bounds: img.Bounds(),
		zoom:   1.0,
	}}
}

func (p *Platform) NewSession() platform.Session {
	return &Session{}
}

var _ platform.Platform = (*Platform)(nil)

// Device is the display posing as a wide lens. Zoom is fixed at 1.0 and focus
// configuration is accepted but has no effect.
type Device struct {
	mu     sync.Mutex
	bounds image.Rectangle
	zoom   float64
}

func (d *Device) ID() string                         { return deviceID }
func (d *Device) Name() string                       { return "Display" }
func (d *Device) Kind() platform.LensKind            { return platform.LensWide }
func (d *Device) Position() platform.Position        { return platform.PositionBack }
func (d *Device) HardwareModel() string              { return hardwareModel }
func (d *Device) FormatCount() int                   { return 1 }
func (d *Device) ZoomRange() (min, max float64)      { return 1.0, 1.0 }
func (d *Device) MinFocusDistanceMM() float64        { return 1000 }
func (d *Device) SupportsFocusPointOfInterest() bool { return false }

func (d *Device) ZoomFactor() float64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.zoom
}

func (d *Device) Configure(apply func(platform.DeviceConfig)) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	apply(&deviceConfig{d: d})
	return nil
}

type deviceConfig struct{ d *Device }

func (c *deviceConfig) SetZoom(factor float64) {
	if factor < 1.0 {
		factor = 1.0
	}
	c.d.zoom = factor
}

func (c *deviceConfig) SetFocusPointOfInterest(platform.FocusPoint)    {}
func (c *deviceConfig) SetExposurePointOfInterest(platform.FocusPoint) {}
func (c *deviceConfig) SetContinuousAutoFocus()                        {}
func (c *deviceConfig) SetContinuousAutoExposure()                     {}

// Session grabs the screen on demand. Preview frames are copied into pooled
// buffers so a polling consumer does not retain one large allocation per poll.
type Session struct {
	mu        sync.Mutex
	input     platform.Device
	hasOutput bool

	running   atomic.Bool
	capturing atomic.Bool
}

func (s *Session) SetInput(d platform.Device) error {
	if d == nil {
		return errors.New("screen: nil device")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.input = d
	return nil
}

func (s *Session) RemoveInput() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.input = nil
}

func (s *Session) Input() platform.Device {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.input
}

func (s *Session) AddPhotoOutput() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hasOutput = true
	return nil
}

func (s *Session) Start() error {
	// Confirm the display is actually grabbable before reporting running.
	if _, err := screenshot.CaptureScreen(); err != nil {
		return fmt.Errorf("screen: start: %w", err)
	}
	s.running.Store(true)
	return nil
}

func (s *Session) Stop() { s.running.Store(false) }

func (s *Session) Running() bool { return s.running.Load() }

func (s *Session) CapturePhoto(flash platform.FlashMode) (image.Image, error) {
	if !s.running.Load() {
		return nil, errors.New("screen: session not running")
	}
	s.mu.Lock()
	in, hasOut := s.input, s.hasOutput
	s.mu.Unlock()
	if in == nil {
		return nil, errors.New("screen: no input attached")
	}
	if !hasOut {
		return nil, errors.New("screen: no photo output attached")
	}
	if !s.capturing.CompareAndSwap(false, true) {
		return nil, errors.New("screen: capture already in flight")
	}
	defer s.capturing.Store(false)
	img, err := screenshot.CaptureScreen()
	if err != nil {
		return nil, fmt.Errorf("screen: capture: %w", err)
	}
	return img, nil
}

// PreviewFrame returns a fresh grab of the display. The caller owns the
// returned frame; a polling consumer that is done with one may hand it back
// via RecycleFrame.
func (s *Session) PreviewFrame() image.Image {
	if !s.running.Load() {
		return nil
	}
	grabbed, err := screenshot.CaptureScreen()
	if err != nil || grabbed == nil {
		return nil
	}
	frame := acquireFrame(grabbed.Bounds())
	copy(frame.Pix, grabbed.Pix)
	return frame
}

// RecycleFrame returns a preview frame to the pool. The frame must not be
// accessed afterwards. Passing images from other backends is a no-op.
func RecycleFrame(img image.Image) {
	if f, ok := img.(*image.RGBA); ok {
		recycleFrame(f)
	}
}

var _ platform.Session = (*Session)(nil)
