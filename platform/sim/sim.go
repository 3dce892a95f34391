// Package sim provides a deterministic in-memory camera platform used by the
// demo app and by tests. Frames are generated test patterns; no hardware is
// touched.
package sim

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"sync"
	"sync/atomic"

	"github.com/stashlens/capturekit/platform"
)

// LensSpec describes one simulated lens.
type LensSpec struct {
	ID                 string
	Name               string
	Kind               platform.LensKind
	Position           platform.Position
	HardwareModel      string
	FormatCount        int
	MinZoom            float64
	MaxZoom            float64
	MinFocusDistanceMM float64
	SupportsFocusPOI   bool

	// FailLock makes every Configure call fail, exercising the best-effort
	// no-op path in callers.
	FailLock bool
}

// DefaultLenses returns a triple back camera plus a single front camera,
// mirroring a current phone-class device.
func DefaultLenses(model string) []LensSpec {
	return []LensSpec{
		{ID: "back-ultrawide", Name: "Back Ultra Wide", Kind: platform.LensUltraWide, Position: platform.PositionBack,
			HardwareModel: model, FormatCount: 4, MinZoom: 0.5, MaxZoom: 2.0, MinFocusDistanceMM: 20, SupportsFocusPOI: true},
		{ID: "back-wide", Name: "Back Wide", Kind: platform.LensWide, Position: platform.PositionBack,
			HardwareModel: model, FormatCount: 6, MinZoom: 1.0, MaxZoom: 6.0, MinFocusDistanceMM: 100, SupportsFocusPOI: true},
		{ID: "back-tele", Name: "Back Telephoto", Kind: platform.LensTelephoto, Position: platform.PositionBack,
			HardwareModel: model, FormatCount: 4, MinZoom: 3.0, MaxZoom: 15.0, MinFocusDistanceMM: 350, SupportsFocusPOI: true},
		{ID: "front-wide", Name: "Front Wide", Kind: platform.LensWide, Position: platform.PositionFront,
			HardwareModel: model, FormatCount: 3, MinZoom: 1.0, MaxZoom: 3.0, MinFocusDistanceMM: 150, SupportsFocusPOI: false},
	}
}

// Platform is the simulated platform root. The zero value is not usable;
// construct with NewPlatform.
type Platform struct {
	mu      sync.Mutex
	auth    platform.Authorization
	grant   bool
	asked   bool
	devices []*Device

	// Capture frame dimensions.
	FrameWidth  int
	FrameHeight int
}

// NewPlatform builds a simulated platform with the given authorization state.
// grant controls what a permission request resolves to when the state is
// not determined.
func NewPlatform(auth platform.Authorization, grant bool, specs []LensSpec) *Platform {
	p := &Platform{auth: auth, grant: grant, FrameWidth: 640, FrameHeight: 480}
	for _, s := range specs {
		p.devices = append(p.devices, newDevice(s))
	}
	return p
}

func (p *Platform) AuthorizationStatus() platform.Authorization {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.auth
}

// RequestAccess resolves asynchronously, like the system prompt it stands in
// for. Repeat requests after the first resolve immediately with the recorded
// answer.
func (p *Platform) RequestAccess(completion func(granted bool)) {
	p.mu.Lock()
	if p.auth == platform.AuthorizationNotDetermined && !p.asked {
		p.asked = true
		if p.grant {
			p.auth = platform.AuthorizationAuthorized
		} else {
			p.auth = platform.AuthorizationDenied
		}
	}
	granted := p.auth == platform.AuthorizationAuthorized
	p.mu.Unlock()
	go completion(granted)
}

func (p *Platform) Devices(pos platform.Position) []platform.Device {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []platform.Device
	for _, d := range p.devices {
		if d.spec.Position == pos {
			out = append(out, d)
		}
	}
	return out
}

func (p *Platform) NewSession() platform.Session {
	return &Session{plat: p}
}

var _ platform.Platform = (*Platform)(nil)

// Device is a simulated lens.
type Device struct {
	mu   sync.Mutex
	spec LensSpec
	zoom float64

	focusPoint    platform.FocusPoint
	focusPointSet bool
	continuousAF  bool
	continuousAE  bool

	// zoomResetOnFocus reproduces hardware that silently resets zoom when a
	// focus point-of-interest configuration is committed.
	zoomResetOnFocus bool
}

func newDevice(s LensSpec) *Device {
	z := s.MinZoom
	if z < 1.0 && s.MaxZoom >= 1.0 {
		z = 1.0
	}
	return &Device{spec: s, zoom: z}
}

// SetZoomResetOnFocus toggles the focus-commit zoom reset quirk.
func (d *Device) SetZoomResetOnFocus(v bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.zoomResetOnFocus = v
}

func (d *Device) ID() string                  { return d.spec.ID }
func (d *Device) Name() string                { return d.spec.Name }
func (d *Device) Kind() platform.LensKind     { return d.spec.Kind }
func (d *Device) Position() platform.Position { return d.spec.Position }
func (d *Device) HardwareModel() string       { return d.spec.HardwareModel }
func (d *Device) FormatCount() int            { return d.spec.FormatCount }
func (d *Device) ZoomRange() (min, max float64) {
	return d.spec.MinZoom, d.spec.MaxZoom
}
func (d *Device) MinFocusDistanceMM() float64 { return d.spec.MinFocusDistanceMM }
func (d *Device) SupportsFocusPointOfInterest() bool {
	return d.spec.SupportsFocusPOI
}

func (d *Device) ZoomFactor() float64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.zoom
}

// FocusState reports the applied focus point and continuous-mode flags, for
// assertions in tests.
func (d *Device) FocusState() (pt platform.FocusPoint, set, af, ae bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.focusPoint, d.focusPointSet, d.continuousAF, d.continuousAE
}

func (d *Device) Configure(apply func(platform.DeviceConfig)) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.spec.FailLock {
		return fmt.Errorf("sim: device %s: configuration lock unavailable", d.spec.ID)
	}
	apply(&deviceConfig{d: d})
	return nil
}

type deviceConfig struct{ d *Device }

func (c *deviceConfig) SetZoom(factor float64) {
	if factor < c.d.spec.MinZoom {
		factor = c.d.spec.MinZoom
	}
	if factor > c.d.spec.MaxZoom {
		factor = c.d.spec.MaxZoom
	}
	c.d.zoom = factor
}

func (c *deviceConfig) SetFocusPointOfInterest(p platform.FocusPoint) {
	c.d.focusPoint = p
	c.d.focusPointSet = true
	if c.d.zoomResetOnFocus {
		c.d.zoom = c.d.spec.MinZoom
		if c.d.zoom < 1.0 && c.d.spec.MaxZoom >= 1.0 {
			c.d.zoom = 1.0
		}
	}
}

func (c *deviceConfig) SetExposurePointOfInterest(p platform.FocusPoint) {
	c.d.focusPoint = p
}

func (c *deviceConfig) SetContinuousAutoFocus()    { c.d.continuousAF = true }
func (c *deviceConfig) SetContinuousAutoExposure() { c.d.continuousAE = true }

// Session is a simulated capture session.
type Session struct {
	plat *Platform

	mu        sync.Mutex
	input     *Device
	hasOutput bool

	running   atomic.Bool
	capturing atomic.Bool
	captures  atomic.Uint64
}

func (s *Session) SetInput(d platform.Device) error {
	sd, ok := d.(*Device)
	if !ok {
		return errors.New("sim: foreign device")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.input = sd
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
	if s.input == nil {
		return nil
	}
	return s.input
}

func (s *Session) AddPhotoOutput() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hasOutput = true
	return nil
}

func (s *Session) Start() error {
	s.running.Store(true)
	return nil
}

func (s *Session) Stop() { s.running.Store(false) }

func (s *Session) Running() bool { return s.running.Load() }

// Captures reports how many stills were taken, for assertions in tests.
func (s *Session) Captures() uint64 { return s.captures.Load() }

func (s *Session) CapturePhoto(flash platform.FlashMode) (image.Image, error) {
	if !s.running.Load() {
		return nil, errors.New("sim: session not running")
	}
	s.mu.Lock()
	in := s.input
	hasOut := s.hasOutput
	s.mu.Unlock()
	if in == nil {
		return nil, errors.New("sim: no input attached")
	}
	if !hasOut {
		return nil, errors.New("sim: no photo output attached")
	}
	if !s.capturing.CompareAndSwap(false, true) {
		return nil, errors.New("sim: capture already in flight")
	}
	defer s.capturing.Store(false)
	s.captures.Add(1)
	return TestPattern(s.plat.FrameWidth, s.plat.FrameHeight, in.Kind()), nil
}

func (s *Session) PreviewFrame() image.Image {
	if !s.running.Load() {
		return nil
	}
	s.mu.Lock()
	in := s.input
	s.mu.Unlock()
	if in == nil {
		return nil
	}
	return TestPattern(s.plat.FrameWidth/4, s.plat.FrameHeight/4, in.Kind())
}

var _ platform.Session = (*Session)(nil)

// TestPattern renders a horizontally asymmetric gradient tinted per lens kind.
// The left-to-right ramp makes mirroring detectable in pixel comparisons.
func TestPattern(w, h int, kind platform.LensKind) *image.RGBA {
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	var tintR, tintG, tintB uint8
	switch kind {
	case platform.LensUltraWide:
		tintR, tintG, tintB = 40, 80, 0
	case platform.LensTelephoto:
		tintR, tintG, tintB = 0, 40, 80
	default:
		tintR, tintG, tintB = 80, 0, 40
	}
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		vert := uint8((y * 127) / h)
		for x := 0; x < w; x++ {
			ramp := uint8((x * 255) / w)
			img.SetRGBA(x, y, color.RGBA{
				R: saturatingAdd(ramp, tintR),
				G: saturatingAdd(vert, tintG),
				B: saturatingAdd(255-ramp, tintB),
				A: 0xFF,
			})
		}
	}
	return img
}

func saturatingAdd(a, b uint8) uint8 {
	v := uint16(a) + uint16(b)
	if v > 0xFF {
		return 0xFF
	}
	return uint8(v)
}
