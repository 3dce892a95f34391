package capture

import (
	"image"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stashlens/capturekit/config"
	"github.com/stashlens/capturekit/domain/device"
	"github.com/stashlens/capturekit/platform"
	"github.com/stashlens/capturekit/platform/sim"
)

var discardLogger = slog.New(slog.NewTextHandler(&discardWriter{}, nil))

type discardWriter struct{}

func (d *discardWriter) Write(p []byte) (int, error) { return len(p), nil }

func newTestController(t *testing.T, mutate func(*config.Config)) (*Controller, *sim.Platform) {
	t.Helper()
	cfg := config.DefaultConfig()
	if mutate != nil {
		mutate(cfg)
	}
	plat := sim.NewPlatform(platform.AuthorizationNotDetermined, true, sim.DefaultLenses("Phone15,2"))
	return NewController(plat, cfg, discardLogger), plat
}

// startReady brings a controller to the ready state.
func startReady(t *testing.T, c *Controller) {
	t.Helper()
	c.ConfigureSession()
	c.CheckPermissions(nil)
	waitFor(t, func() bool { return c.Ready() }, "session ready")
}

func waitFor(t *testing.T, cond func() bool, what string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timeout waiting for %s", what)
}

// signalRecorder records UI callback invocations.
type signalRecorder struct {
	mu         sync.Mutex
	paywalls   int
	confirms   []Mode
	violations []Violation
	messages   []string
	macroSeen  bool
	macroLast  string
	haptics    int
}

func (r *signalRecorder) callbacks() UICallbacks {
	return UICallbacks{
		ShowPaywall: func() {
			r.mu.Lock()
			r.paywalls++
			r.mu.Unlock()
		},
		ConfirmModeSwitch: func(target Mode) {
			r.mu.Lock()
			r.confirms = append(r.confirms, target)
			r.mu.Unlock()
		},
		PhotoLimit: func(v Violation, message string) {
			r.mu.Lock()
			r.violations = append(r.violations, v)
			r.messages = append(r.messages, message)
			r.mu.Unlock()
		},
		MacroRecommendation: func(rec *device.MacroRecommendation) {
			r.mu.Lock()
			r.macroSeen = true
			if rec == nil {
				r.macroLast = ""
			} else {
				r.macroLast = rec.Message
			}
			r.mu.Unlock()
		},
		Haptic: func() {
			r.mu.Lock()
			r.haptics++
			r.mu.Unlock()
		},
	}
}

func TestControllerConfigureSessionIdempotent(t *testing.T) {
	c, _ := newTestController(t, nil)
	c.ConfigureSession()
	c.ConfigureSession()

	if got := c.State(); got != StateConfiguring {
		t.Fatalf("expected configuring state, got %v", got)
	}
	levels := c.ZoomLevels()
	want := []float64{0.5, 1.0, 3.0}
	if len(levels) != len(want) {
		t.Fatalf("expected %v zoom levels, got %v", want, levels)
	}
	for i := range want {
		if levels[i] != want[i] {
			t.Fatalf("expected %v zoom levels, got %v", want, levels)
		}
	}
	if c.ZoomIndex() != 1 || c.ZoomFactor() != 1.0 {
		t.Fatalf("expected default zoom 1.0 at index 1, got %v at %d", c.ZoomFactor(), c.ZoomIndex())
	}
}

func TestControllerPermissionFlowStartsSession(t *testing.T) {
	c, _ := newTestController(t, nil)
	c.ConfigureSession()

	results := make(chan bool, 1)
	c.CheckPermissions(func(granted bool) { results <- granted })

	select {
	case granted := <-results:
		if !granted {
			t.Fatal("expected access to be granted")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("permission completion never invoked")
	}
	waitFor(t, func() bool { return c.Ready() }, "session ready")
	if got := c.State(); got != StateReady {
		t.Fatalf("expected ready state, got %v", got)
	}
}

func TestControllerPermissionDenied(t *testing.T) {
	cfg := config.DefaultConfig()
	plat := sim.NewPlatform(platform.AuthorizationNotDetermined, false, sim.DefaultLenses("Phone15,2"))
	c := NewController(plat, cfg, discardLogger)
	c.ConfigureSession()

	results := make(chan bool, 1)
	c.CheckPermissions(func(granted bool) { results <- granted })

	select {
	case granted := <-results:
		if granted {
			t.Fatal("expected access to be denied")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("permission completion never invoked")
	}
	if c.Ready() {
		t.Fatal("session must not become ready after denial")
	}
}

func TestControllerCaptureAppendsProcessedPhoto(t *testing.T) {
	c, _ := newTestController(t, nil)
	startReady(t, c)

	c.CapturePhoto()
	waitFor(t, func() bool { return c.PhotoCount() == 1 }, "captured photo")
	waitFor(t, func() bool { return c.State() == StateReady }, "return to ready")

	images := c.Images()
	img := images[0]
	if img.ID == "" || img.Sequence != 1 {
		t.Fatalf("unexpected photo identity: id=%q seq=%d", img.ID, img.Sequence)
	}
	if img.Position != platform.PositionBack {
		t.Fatalf("expected back position, got %v", img.Position)
	}
	// 640x480 frames crop to a centered 480 square.
	b := img.Image.Bounds()
	if b.Dx() != 480 || b.Dy() != 480 {
		t.Fatalf("expected 480x480 square, got %dx%d", b.Dx(), b.Dy())
	}
	if got := c.CounterText(); got != "1 of 1" {
		t.Fatalf("expected counter 1 of 1, got %q", got)
	}
}

func TestControllerCaptureDroppedWhenNotReady(t *testing.T) {
	c, _ := newTestController(t, nil)
	c.ConfigureSession()

	c.CapturePhoto()
	time.Sleep(50 * time.Millisecond)
	if got := c.PhotoCount(); got != 0 {
		t.Fatalf("expected no photos before session start, got %d", got)
	}
}

func TestControllerPhotoLimitSignal(t *testing.T) {
	c, _ := newTestController(t, nil)
	rec := &signalRecorder{}
	c.SetCallbacks(rec.callbacks())
	startReady(t, c)

	// Free single-item mode holds exactly one photo.
	c.AddPickedImage(sim.TestPattern(64, 64, platform.LensWide))
	c.AddPickedImage(sim.TestPattern(64, 64, platform.LensWide))

	if got := c.PhotoCount(); got != 1 {
		t.Fatalf("expected limit of 1 photo, got %d", got)
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	if len(rec.violations) != 1 || rec.violations[0] != ViolationTooManyPhotos {
		t.Fatalf("expected one too-many-photos violation, got %v", rec.violations)
	}
	if rec.messages[0] == "" {
		t.Fatal("expected a user-facing limit message")
	}
}

func TestControllerZoomSelection(t *testing.T) {
	c, _ := newTestController(t, nil)
	startReady(t, c)

	// 0.5x lives on the ultra-wide; selecting it swaps the session input.
	c.SetZoom(0)
	if got := c.ZoomFactor(); got != 0.5 {
		t.Fatalf("expected zoom 0.5, got %v", got)
	}
	if got := c.ZoomLabel(); got != "0.5x" {
		t.Fatalf("expected label 0.5x, got %q", got)
	}

	// 3x swaps to the telephoto.
	c.SetZoom(2)
	if got := c.ZoomLabel(); got != "3x" {
		t.Fatalf("expected label 3x, got %q", got)
	}

	// Out-of-range indices are ignored.
	c.SetZoom(99)
	c.SetZoom(-1)
	if got := c.ZoomIndex(); got != 2 {
		t.Fatalf("expected index to stay 2, got %d", got)
	}
}

func TestControllerMacroRecommendation(t *testing.T) {
	c, _ := newTestController(t, nil)
	startReady(t, c)

	// On the wide lens the ultra-wide focuses 80mm closer than the
	// configured 50mm threshold.
	c.SetZoom(1)
	r := c.MacroRecommendation()
	if r == nil {
		t.Fatal("expected a macro recommendation on the wide lens")
	}
	if r.Message == "" {
		t.Fatal("expected a user-facing macro message")
	}

	// Moving to the ultra-wide clears it.
	c.SetZoom(0)
	if c.MacroRecommendation() != nil {
		t.Fatal("expected no recommendation on the ultra-wide lens")
	}
}

func TestControllerSwitchCamera(t *testing.T) {
	c, _ := newTestController(t, nil)
	startReady(t, c)

	c.SwitchCamera()
	if got := c.Position(); got != platform.PositionFront {
		t.Fatalf("expected front position, got %v", got)
	}
	levels := c.ZoomLevels()
	if len(levels) != 1 || levels[0] != 1.0 {
		t.Fatalf("expected front zoom set [1.0], got %v", levels)
	}

	c.SwitchCamera()
	if got := c.Position(); got != platform.PositionBack {
		t.Fatalf("expected back position, got %v", got)
	}
}

func TestControllerSwitchCameraKeepsFacingWithoutLenses(t *testing.T) {
	cfg := config.DefaultConfig()
	backOnly := sim.DefaultLenses("Phone15,2")[:3]
	plat := sim.NewPlatform(platform.AuthorizationAuthorized, true, backOnly)
	c := NewController(plat, cfg, discardLogger)
	c.ConfigureSession()
	c.CheckPermissions(nil)
	waitFor(t, func() bool { return c.Ready() }, "session ready")

	c.SwitchCamera()
	if got := c.Position(); got != platform.PositionBack {
		t.Fatalf("expected facing to stay back, got %v", got)
	}
}

func TestControllerFrontCaptureIsMirrored(t *testing.T) {
	c, _ := newTestController(t, nil)
	startReady(t, c)
	c.SwitchCamera()

	c.CapturePhoto()
	waitFor(t, func() bool { return c.PhotoCount() == 1 }, "captured photo")

	got := c.Images()[0].Image
	// The raw test pattern ramps red left to right; mirrored output must ramp
	// the other way after the square crop.
	raw := sim.TestPattern(640, 480, platform.LensWide)
	rawLeft, _, _, _ := raw.At(80, 240).RGBA()
	b := got.Bounds()
	mirroredLeft, _, _, _ := got.At(b.Min.X, b.Min.Y+b.Dy()/2).RGBA()
	rawRight, _, _, _ := raw.At(559, 240).RGBA()
	if rawLeft == rawRight {
		t.Fatal("test pattern is not horizontally asymmetric")
	}
	if mirroredLeft>>8 != rawRight>>8 {
		t.Fatalf("expected mirrored left edge %d, got %d", rawRight>>8, mirroredLeft>>8)
	}
}

func TestControllerFocusRestoresZoom(t *testing.T) {
	c, plat := newTestController(t, nil)
	startReady(t, c)
	c.SetZoom(0) // ultra-wide at 0.5x

	dev := plat.Devices(platform.PositionBack)[0].(*sim.Device)
	if dev.ID() != "back-ultrawide" {
		t.Fatalf("expected ultra-wide device, got %s", dev.ID())
	}
	dev.SetZoomResetOnFocus(true)

	c.SetFocusPoint(platform.FocusPoint{X: 0.5, Y: 0.5})

	pt, set, af, ae := dev.FocusState()
	if !set || !af || !ae {
		t.Fatalf("expected focus point with continuous modes, got set=%v af=%v ae=%v", set, af, ae)
	}
	if pt.X != 0.5 || pt.Y != 0.5 {
		t.Fatalf("unexpected focus point %+v", pt)
	}
	if got := dev.ZoomFactor(); got != 0.5 {
		t.Fatalf("expected zoom restored to 0.5 after focus commit, got %v", got)
	}
}

func TestControllerFocusIgnoresInvalidPoint(t *testing.T) {
	c, plat := newTestController(t, nil)
	startReady(t, c)

	c.SetFocusPoint(platform.FocusPoint{X: -0.1, Y: 1.5})

	for _, d := range plat.Devices(platform.PositionBack) {
		_, set, _, _ := d.(*sim.Device).FocusState()
		if set {
			t.Fatalf("focus point must not be applied for invalid input (lens %s)", d.ID())
		}
	}
}

func TestControllerCycleFlash(t *testing.T) {
	c, _ := newTestController(t, nil)

	order := []string{"flash-on", "flash-off", "flash-auto"}
	for _, want := range order {
		c.CycleFlash()
		if got := c.FlashIconID(); got != want {
			t.Fatalf("expected flash icon %q, got %q", want, got)
		}
	}
}

func TestControllerCaptureTestPhotoUsesFixture(t *testing.T) {
	c, _ := newTestController(t, nil)
	startReady(t, c)

	fixture := image.NewRGBA(image.Rect(0, 0, 100, 50))
	c.SetTestFixture(fixture)
	c.CaptureTestPhoto()
	waitFor(t, func() bool { return c.PhotoCount() == 1 }, "fixture photo")

	b := c.Images()[0].Image.Bounds()
	if b.Dx() != 50 || b.Dy() != 50 {
		t.Fatalf("expected fixture cropped to 50x50, got %dx%d", b.Dx(), b.Dy())
	}
}

func TestControllerDeletePhoto(t *testing.T) {
	c, _ := newTestController(t, func(cfg *config.Config) { cfg.Pro = true })
	startReady(t, c)

	c.AddPickedImage(sim.TestPattern(64, 64, platform.LensWide))
	c.AddPickedImage(sim.TestPattern(64, 64, platform.LensWide))
	images := c.Images()
	if len(images) != 2 {
		t.Fatalf("expected 2 photos, got %d", len(images))
	}

	c.DeletePhoto(images[0].ID)
	c.DeletePhoto("missing-id")

	remaining := c.Images()
	if len(remaining) != 1 || remaining[0].ID != images[1].ID {
		t.Fatalf("expected only the second photo to remain, got %v", remaining)
	}
}

func TestControllerFinishDeliversImages(t *testing.T) {
	c, _ := newTestController(t, func(cfg *config.Config) { cfg.Pro = true })
	startReady(t, c)

	var gotImages []CapturedImage
	var gotMode Mode
	c.SetCompletion(func(images []CapturedImage, mode Mode) {
		gotImages = images
		gotMode = mode
	})

	c.AddPickedImage(sim.TestPattern(64, 64, platform.LensWide))
	c.Finish()

	if len(gotImages) != 1 {
		t.Fatalf("expected 1 delivered image, got %d", len(gotImages))
	}
	if gotMode != ModeSingleItem {
		t.Fatalf("expected single-item mode, got %v", gotMode)
	}
	if c.Ready() || c.State() != StateStopped {
		t.Fatalf("expected stopped session, got state %v ready %v", c.State(), c.Ready())
	}
}

func TestControllerFinishWithoutPhotos(t *testing.T) {
	c, _ := newTestController(t, nil)
	rec := &signalRecorder{}
	c.SetCallbacks(rec.callbacks())
	startReady(t, c)

	c.Finish()

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if len(rec.violations) != 1 || rec.violations[0] != ViolationNoPhotos {
		t.Fatalf("expected a no-photos violation, got %v", rec.violations)
	}
	if !c.Ready() {
		t.Fatal("session must keep running after a rejected finish")
	}
}

func TestControllerStateListeners(t *testing.T) {
	c, _ := newTestController(t, nil)

	var mu sync.Mutex
	var seq []SessionState
	c.AddListener(func(prev, next SessionState) {
		mu.Lock()
		seq = append(seq, next)
		mu.Unlock()
	})

	startReady(t, c)
	c.StopSession()

	mu.Lock()
	defer mu.Unlock()
	want := []SessionState{StateConfiguring, StateReady, StateStopped}
	if len(seq) != len(want) {
		t.Fatalf("expected transitions %v, got %v", want, seq)
	}
	for i := range want {
		if seq[i] != want[i] {
			t.Fatalf("expected transitions %v, got %v", want, seq)
		}
	}
}

// gatedPlatform wraps the simulator so that hardware captures stall until the
// test releases the gate.
type gatedPlatform struct {
	*sim.Platform
	gate chan struct{}
}

func (p *gatedPlatform) NewSession() platform.Session {
	return &gatedSession{Session: p.Platform.NewSession(), gate: p.gate}
}

type gatedSession struct {
	platform.Session
	gate chan struct{}
}

func (s *gatedSession) CapturePhoto(flash platform.FlashMode) (image.Image, error) {
	<-s.gate
	return s.Session.CapturePhoto(flash)
}

func TestControllerPhotoLimitHoldsAcrossInFlightCapture(t *testing.T) {
	gate := make(chan struct{})
	plat := &gatedPlatform{
		Platform: sim.NewPlatform(platform.AuthorizationNotDetermined, true, sim.DefaultLenses("Phone15,2")),
		gate:     gate,
	}
	c := NewController(plat, config.DefaultConfig(), discardLogger)
	rec := &signalRecorder{}
	c.SetCallbacks(rec.callbacks())
	startReady(t, c)

	// Free single-item mode holds exactly one photo. The shutter press stalls
	// inside the platform while a picked image takes the only slot.
	c.CapturePhoto()
	waitFor(t, func() bool { return c.State() == StateCapturing }, "capture in flight")
	c.AddPickedImage(sim.TestPattern(64, 64, platform.LensWide))
	if got := c.PhotoCount(); got != 1 {
		t.Fatalf("expected picked photo to land, got %d", got)
	}

	close(gate)
	waitFor(t, func() bool { return c.State() == StateReady }, "capture settled")
	if got := c.PhotoCount(); got != 1 {
		t.Fatalf("expected capture result dropped at the ceiling, got %d photos", got)
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	if len(rec.violations) == 0 || rec.violations[len(rec.violations)-1] != ViolationTooManyPhotos {
		t.Fatalf("expected a too-many-photos violation, got %v", rec.violations)
	}
}

func TestControllerRestartAfterStop(t *testing.T) {
	c, _ := newTestController(t, nil)
	startReady(t, c)

	c.StopSession()
	if got := c.State(); got != StateStopped {
		t.Fatalf("expected stopped state, got %v", got)
	}
	if c.Ready() {
		t.Fatal("expected not ready after stop")
	}

	c.StartSession()
	waitFor(t, func() bool { return c.Ready() }, "session restarted")
	if got := c.State(); got != StateReady {
		t.Fatalf("expected ready state after restart, got %v", got)
	}
}
