// Package capture owns the live capture session: lens selection, zoom and
// flash state, the ordered list of captured images, and the capture-mode
// switching protocol.
package capture

import (
	"image"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/stashlens/capturekit/config"
	"github.com/stashlens/capturekit/domain/device"
	"github.com/stashlens/capturekit/domain/photo"
	"github.com/stashlens/capturekit/platform"
)

// Controller mediates all session mutations. It is concurrency-safe;
// external events may call its exported methods from any goroutine.
// Device-configuration failures are logged and absorbed: camera hardware
// locking races against concurrent system events, and a missed zoom or focus
// update beats a crash.
type Controller struct {
	mu        sync.Mutex
	logger    *slog.Logger
	cfg       *config.Config
	plat      platform.Platform
	processor *photo.Processor

	session    platform.Session
	cache      *device.Cache
	devices    *device.Manager
	position   platform.Position
	configured bool
	state      SessionState
	ready      bool

	flash      platform.FlashMode
	zoomLevels []float64
	zoomIndex  int
	zoomFactor float64
	macroRec   *device.MacroRecommendation

	mode        Mode
	policy      Policy
	pro         bool
	images      []CapturedImage
	seq         int
	switchPhase SwitchPhase
	stagedMode  Mode

	callbacks  UICallbacks
	listeners  []StateListener
	completion Completion

	testFixture image.Image
}

// NewController builds a controller against the given platform. The initial
// mode and entitlement come from configuration; call ConfigureSession before
// starting.
func NewController(plat platform.Platform, cfg *config.Config, logger *slog.Logger) *Controller {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &Controller{
		logger:    logger,
		cfg:       cfg,
		plat:      plat,
		processor: photo.NewProcessor(logger, cfg.OptimizeMaxDimension),
		cache:     device.NewCache(),
		position:  platform.PositionBack,
		state:     StateUninitialized,
		flash:     platform.FlashAuto,
		mode:      ModeFromInt(cfg.PreferredMode),
		policy:    Policy{BatchLimit: cfg.BatchLimit},
		pro:       cfg.Pro,
	}
}

// SetCallbacks installs the UI signal callbacks. Call before starting.
func (c *Controller) SetCallbacks(cb UICallbacks) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.callbacks = cb
}

// SetCompletion installs the session completion callback.
func (c *Controller) SetCompletion(done Completion) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.completion = done
}

// AddListener registers a listener for session state transitions.
func (c *Controller) AddListener(l StateListener) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, l)
}

// SetTestFixture installs the image substituted by CaptureTestPhoto.
func (c *Controller) SetTestFixture(img image.Image) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.testFixture = img
}

// SetPro updates the entitlement flag supplied by the purchase layer.
func (c *Controller) SetPro(pro bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pro = pro
}

// transition commits a state change and notifies listeners. Caller holds mu.
func (c *Controller) transition(next SessionState) {
	prev := c.state
	if prev == next {
		return
	}
	c.state = next
	if c.logger != nil {
		c.logger.Debug("capture state transition", "from", prev.String(), "to", next.String())
	}
	for _, l := range c.listeners {
		l(prev, next)
	}
}

// ConfigureSession performs one-time session setup: default back wide lens
// as input, still-photo output, continuous autofocus primed. Failures are
// logged and leave the session non-functional; nothing is raised.
func (c *Controller) ConfigureSession() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.configured {
		return
	}
	c.configured = true
	c.transition(StateConfiguring)

	c.session = c.plat.NewSession()
	c.devices = device.NewManager(c.plat, c.logger, c.cfg.Zoom, c.position, c.cache)
	c.resetZoomLevelsLocked()

	cap := c.defaultLensLocked()
	if cap == nil {
		if c.logger != nil {
			c.logger.Error("no camera available", "position", c.position.String())
		}
		return
	}
	if err := c.session.SetInput(cap.Device); err != nil {
		if c.logger != nil {
			c.logger.Error("cannot attach camera input", "lens", cap.Device.ID(), "error", err)
		}
		return
	}
	if err := c.session.AddPhotoOutput(); err != nil {
		if c.logger != nil {
			c.logger.Error("cannot attach photo output", "error", err)
		}
		return
	}
	c.primeAutoFocusLocked(cap.Device)
}

// defaultLensLocked picks the wide lens, else the 1.0x lens, else the first
// discovered capability.
func (c *Controller) defaultLensLocked() *device.Capability {
	caps := c.devices.Capabilities()
	for i := range caps {
		if caps[i].Kind == platform.LensWide {
			return &caps[i]
		}
	}
	if cap := c.devices.CameraForZoomLevel(c.cfg.Zoom.WideFactor); cap != nil {
		return cap
	}
	if len(caps) > 0 {
		return &caps[0]
	}
	return nil
}

func (c *Controller) primeAutoFocusLocked(d platform.Device) {
	err := d.Configure(func(dc platform.DeviceConfig) {
		dc.SetContinuousAutoFocus()
		dc.SetContinuousAutoExposure()
	})
	if err != nil && c.logger != nil {
		c.logger.Warn("cannot prime continuous autofocus", "lens", d.ID(), "error", err)
	}
}

// resetZoomLevelsLocked rebuilds the zoom set for the current device manager
// and points the index at 1.0x (index 0 fallback).
func (c *Controller) resetZoomLevelsLocked() {
	if len(c.devices.Capabilities()) == 0 {
		c.zoomLevels = append([]float64(nil), device.DefaultZoomLevels...)
	} else {
		c.zoomLevels = c.devices.AllSupportedZoomLevels()
	}
	c.zoomIndex = 0
	for i, z := range c.zoomLevels {
		if z == 1.0 {
			c.zoomIndex = i
			break
		}
	}
	c.zoomFactor = c.zoomLevels[c.zoomIndex]
}

// CheckPermissions maps platform authorization to a boolean and, when not
// yet determined, issues the one-time system request. On granted (or
// pre-authorized) access the session is started. The completion is always
// invoked, possibly from another goroutine.
func (c *Controller) CheckPermissions(completion func(granted bool)) {
	switch c.plat.AuthorizationStatus() {
	case platform.AuthorizationAuthorized:
		c.StartSession()
		if completion != nil {
			completion(true)
		}
	case platform.AuthorizationNotDetermined:
		c.plat.RequestAccess(func(granted bool) {
			if granted {
				c.StartSession()
			} else if c.logger != nil {
				c.logger.Info("camera access denied by user")
			}
			if completion != nil {
				completion(granted)
			}
		})
	default:
		if c.logger != nil {
			c.logger.Info("camera access denied or restricted")
		}
		if completion != nil {
			completion(false)
		}
	}
}

// StartSession starts the platform session on a background goroutine. The
// ready flag flips only after the platform confirms the session is running,
// so the UI never shows a black preview. Idempotent, and valid after a stop:
// a stopped session restarts and returns to Ready.
func (c *Controller) StartSession() {
	c.mu.Lock()
	sess := c.session
	if sess == nil || sess.Running() {
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	go func() {
		if err := sess.Start(); err != nil {
			if c.logger != nil {
				c.logger.Error("session start failed", "error", err)
			}
			return
		}
		c.mu.Lock()
		if c.session == sess && sess.Running() {
			c.ready = true
			c.transition(StateReady)
		}
		c.mu.Unlock()
	}()
}

// StopSession flags the session to stop. It does not wait for an in-flight
// capture; the capture's result is simply ignored. Idempotent.
func (c *Controller) StopSession() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil || !c.session.Running() {
		return
	}
	c.session.Stop()
	c.ready = false
	c.transition(StateStopped)
}

// SetZoom selects the zoom level at index. An out-of-range index is a no-op.
// A zoom the current lens covers natively is applied in place; a zoom that
// belongs to a different physical lens swaps the session input, since lenses
// have disjoint native ranges. Index bookkeeping updates before the async
// swap so the selected-zoom display stays consistent while the switch is in
// flight.
func (c *Controller) SetZoom(index int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if index < 0 || index >= len(c.zoomLevels) {
		return
	}
	target := c.zoomLevels[index]
	cur := c.currentDeviceLocked()

	c.zoomIndex = index
	c.zoomFactor = target

	targetCap := c.devices.CameraForZoomLevel(target)
	switch {
	case cur == nil || targetCap == nil:
		if c.logger != nil {
			c.logger.Warn("no lens can serve zoom", "zoom", target)
		}
	case targetCap.Device.ID() == cur.ID():
		c.applyZoomLocked(cur, target)
	default:
		c.swapInputLocked(targetCap, target)
	}
	c.refreshMacroRecommendationLocked()
}

func (c *Controller) currentDeviceLocked() platform.Device {
	if c.session == nil {
		return nil
	}
	return c.session.Input()
}

func (c *Controller) applyZoomLocked(d platform.Device, factor float64) {
	err := d.Configure(func(dc platform.DeviceConfig) {
		dc.SetZoom(factor)
	})
	if err != nil && c.logger != nil {
		c.logger.Warn("cannot apply zoom", "lens", d.ID(), "zoom", factor, "error", err)
	}
}

// swapInputLocked replaces the session input with the target lens and
// applies the requested zoom clamped to that lens's native range.
func (c *Controller) swapInputLocked(target *device.Capability, factor float64) {
	old := c.session.Input()
	c.session.RemoveInput()
	if err := c.session.SetInput(target.Device); err != nil {
		if c.logger != nil {
			c.logger.Error("camera switch failed", "lens", target.Device.ID(), "error", err)
		}
		if old != nil {
			if rerr := c.session.SetInput(old); rerr != nil && c.logger != nil {
				c.logger.Error("cannot restore previous camera input", "error", rerr)
			}
		}
		return
	}
	clamped := factor
	if clamped < target.MinZoom {
		clamped = target.MinZoom
	}
	if clamped > target.MaxZoom {
		clamped = target.MaxZoom
	}
	c.applyZoomLocked(target.Device, clamped)
	if c.logger != nil {
		c.logger.Debug("switched lens", "lens", target.Device.ID(), "kind", target.Kind.String(), "zoom", clamped)
	}
}

func (c *Controller) refreshMacroRecommendationLocked() {
	var rec *device.MacroRecommendation
	if d := c.currentDeviceLocked(); d != nil {
		rec = c.devices.CheckMacroRecommendation(d, c.zoomFactor)
	}
	c.macroRec = rec
	if c.callbacks.MacroRecommendation != nil {
		c.callbacks.MacroRecommendation(rec)
	}
}

// SwitchCamera flips between front and back facing. The device manager is
// replaced wholesale for the new facing and zoom resets to the 1.0x index.
// If the new input cannot be attached the facing toggle is rolled back
// rather than left partially applied.
func (c *Controller) SwitchCamera() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return
	}
	newPos := c.position.Toggled()
	newMgr := device.NewManager(c.plat, c.logger, c.cfg.Zoom, newPos, c.cache)

	caps := newMgr.Capabilities()
	if len(caps) == 0 {
		if c.logger != nil {
			c.logger.Warn("no camera at position, keeping current facing", "position", newPos.String())
		}
		return
	}
	target := newMgr.CameraForZoomLevel(c.cfg.Zoom.WideFactor)
	if target == nil {
		target = &caps[0]
	}

	old := c.session.Input()
	c.session.RemoveInput()
	if err := c.session.SetInput(target.Device); err != nil {
		if c.logger != nil {
			c.logger.Error("facing switch failed, reverting", "position", newPos.String(), "error", err)
		}
		if old != nil {
			if rerr := c.session.SetInput(old); rerr != nil && c.logger != nil {
				c.logger.Error("cannot restore previous camera input", "error", rerr)
			}
		}
		return
	}

	c.position = newPos
	c.devices = newMgr
	c.resetZoomLevelsLocked()
	c.primeAutoFocusLocked(target.Device)
	c.refreshMacroRecommendationLocked()
	if c.logger != nil {
		c.logger.Info("switched camera facing", "position", newPos.String(), "lens", target.Device.ID())
	}
}

// SetFocusPoint sets the focus/exposure point of interest, pt in normalized
// [0,1]x[0,1] device coordinates. The zoom factor in effect before the call
// is re-applied inside the same configuration window: committing a focus
// change silently resets zoom on some hardware.
func (c *Controller) SetFocusPoint(pt platform.FocusPoint) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !pt.Valid() {
		if c.logger != nil {
			c.logger.Warn("ignoring focus point outside unit square", "x", pt.X, "y", pt.Y)
		}
		return
	}
	d := c.currentDeviceLocked()
	if d == nil {
		return
	}
	prevZoom := c.zoomFactor
	err := d.Configure(func(dc platform.DeviceConfig) {
		if d.SupportsFocusPointOfInterest() {
			dc.SetFocusPointOfInterest(pt)
			dc.SetExposurePointOfInterest(pt)
			dc.SetContinuousAutoFocus()
			dc.SetContinuousAutoExposure()
		}
		dc.SetZoom(prevZoom)
	})
	if err != nil && c.logger != nil {
		c.logger.Warn("cannot set focus point", "lens", d.ID(), "error", err)
	}
}

// CycleFlash advances auto → on → off → auto.
func (c *Controller) CycleFlash() {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch c.flash {
	case platform.FlashAuto:
		c.flash = platform.FlashOn
	case platform.FlashOn:
		c.flash = platform.FlashOff
	default:
		c.flash = platform.FlashAuto
	}
}

// CapturePhoto triggers a still capture with the current flash mode. A
// second shutter press while a capture is in flight is dropped. The frame is
// post-processed off the calling goroutine before it joins the list.
func (c *Controller) CapturePhoto() {
	c.capture(nil)
}

// CaptureTestPhoto substitutes the installed fixture image for the hardware
// frame, so the downstream pipeline runs deterministically without a camera.
func (c *Controller) CaptureTestPhoto() {
	c.mu.Lock()
	fixture := c.testFixture
	c.mu.Unlock()
	if fixture == nil {
		if c.logger != nil {
			c.logger.Warn("no test fixture installed, falling back to hardware capture")
		}
		c.capture(nil)
		return
	}
	c.capture(fixture)
}

func (c *Controller) capture(substitute image.Image) {
	c.mu.Lock()
	if c.state != StateReady {
		c.mu.Unlock()
		return
	}
	if !c.roomForPhotoLocked() {
		c.mu.Unlock()
		return
	}
	c.transition(StateCapturing)
	sess := c.session
	flash := c.flash
	pos := c.position
	c.mu.Unlock()

	go func() {
		var img image.Image
		var err error
		if substitute != nil {
			img = substitute
		} else {
			img, err = sess.CapturePhoto(flash)
		}

		c.mu.Lock()
		defer c.mu.Unlock()
		if c.state == StateCapturing {
			c.transition(StateReady)
		}
		if err != nil {
			if c.logger != nil {
				c.logger.Error("capture failed", "error", err)
			}
			return
		}
		// The ceiling must hold again here: picked images may have joined the
		// list while this capture was in flight.
		if !c.roomForPhotoLocked() {
			return
		}
		processed := c.processor.Process(img, photo.Options{
			Mirror: pos == platform.PositionFront,
		})
		c.appendImageLocked(processed, pos)
	}()
}

// AddPickedImage appends a library-picked image after running it through the
// same post-processing pipeline as captures (no mirror correction).
func (c *Controller) AddPickedImage(img image.Image) {
	if img == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.roomForPhotoLocked() {
		return
	}
	processed := c.processor.Process(img, photo.Options{})
	c.appendImageLocked(processed, c.position)
}

// roomForPhotoLocked enforces the photo ceiling, emitting the limit signal
// with mode-aware messaging when full.
func (c *Controller) roomForPhotoLocked() bool {
	limit := c.policy.MaxPhotos(c.mode, c.pro)
	if len(c.images) < limit {
		return true
	}
	msg := c.policy.ErrorMessage(c.mode, ViolationTooManyPhotos, c.pro)
	if c.logger != nil {
		c.logger.Info("photo limit reached", "limit", limit, "mode", c.mode.String())
	}
	if c.callbacks.PhotoLimit != nil {
		c.callbacks.PhotoLimit(ViolationTooManyPhotos, msg)
	}
	return false
}

func (c *Controller) appendImageLocked(img image.Image, pos platform.Position) {
	c.seq++
	c.images = append(c.images, CapturedImage{
		ID:         uuid.NewString(),
		Image:      img,
		Sequence:   c.seq,
		Position:   pos,
		CapturedAt: time.Now(),
	})
}

// DeletePhoto removes the captured image with the given id. Unknown ids are
// ignored.
func (c *Controller) DeletePhoto(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.images {
		if c.images[i].ID == id {
			c.images = append(c.images[:i], c.images[i+1:]...)
			return
		}
	}
}

// Finish hands the captured list and chosen mode to the completion callback
// and stops the session. With zero photos the no-photos violation is
// signalled instead.
func (c *Controller) Finish() {
	c.mu.Lock()
	if len(c.images) == 0 {
		msg := c.policy.ErrorMessage(c.mode, ViolationNoPhotos, c.pro)
		if c.callbacks.PhotoLimit != nil {
			c.callbacks.PhotoLimit(ViolationNoPhotos, msg)
		}
		c.mu.Unlock()
		return
	}
	done := c.completion
	images := append([]CapturedImage(nil), c.images...)
	mode := c.mode
	c.mu.Unlock()

	if done != nil {
		done(images, mode)
	}
	c.StopSession()
}

// --- observable accessors ---

func (c *Controller) State() SessionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) Ready() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ready
}

func (c *Controller) Position() platform.Position {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.position
}

func (c *Controller) Flash() platform.FlashMode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.flash
}

// FlashIconID returns the icon identifier bound by the UI for the current
// flash mode.
func (c *Controller) FlashIconID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch c.flash {
	case platform.FlashOn:
		return "flash-on"
	case platform.FlashOff:
		return "flash-off"
	default:
		return "flash-auto"
	}
}

// ZoomLevels returns the selectable zoom factors, ascending.
func (c *Controller) ZoomLevels() []float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]float64(nil), c.zoomLevels...)
}

func (c *Controller) ZoomIndex() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.zoomIndex
}

func (c *Controller) ZoomFactor() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.zoomFactor
}

// ZoomLabel renders the current zoom factor as the user-facing pill label,
// e.g. "0.5x" or "1x".
func (c *Controller) ZoomLabel() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return strconv.FormatFloat(c.zoomFactor, 'f', -1, 64) + "x"
}

// MacroRecommendation returns the current macro lens suggestion, or nil.
func (c *Controller) MacroRecommendation() *device.MacroRecommendation {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.macroRec
}

// Images returns a copy of the ordered captured list.
func (c *Controller) Images() []CapturedImage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]CapturedImage(nil), c.images...)
}

func (c *Controller) PhotoCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.images)
}

// CounterText renders the "n of m" capture counter.
func (c *Controller) CounterText() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.policy.CounterText(c.mode, len(c.images), c.pro)
}

// PreviewFrame exposes the platform preview for display surfaces.
func (c *Controller) PreviewFrame() image.Image {
	c.mu.Lock()
	sess := c.session
	c.mu.Unlock()
	if sess == nil {
		return nil
	}
	return sess.PreviewFrame()
}

var (
	_ StateSource   = (*Controller)(nil)
	_ GallerySource = (*Controller)(nil)
	_ HUDSource     = (*Controller)(nil)
)
