package model

import (
	"github.com/stashlens/capturekit/domain/capture"
)

// HUDModel holds the capture-screen heads-up values the view binds to: the
// zoom pill label, the flash icon, the photo counter and the visible mode.
// No synchronization needed: updates occur on the presenter tick.
type HUDModel struct {
	zoomLabel string
	flashIcon string
	counter   string
	mode      capture.Mode
}

func NewHUDModel() *HUDModel { return &HUDModel{} }

// Update stores the latest values and reports whether anything changed.
func (m *HUDModel) Update(zoomLabel, flashIcon, counter string, mode capture.Mode) bool {
	if m == nil {
		return false
	}
	if zoomLabel == m.zoomLabel && flashIcon == m.flashIcon && counter == m.counter && mode == m.mode {
		return false
	}
	m.zoomLabel = zoomLabel
	m.flashIcon = flashIcon
	m.counter = counter
	m.mode = mode
	return true
}

// Values returns the current HUD values.
func (m *HUDModel) Values() (zoomLabel, flashIcon, counter string, mode capture.Mode) {
	if m == nil {
		return "", "", "", capture.ModeSingleItem
	}
	return m.zoomLabel, m.flashIcon, m.counter, m.mode
}
