package capture

import "fmt"

// Mode selects the capture workflow: one photo set per item, or one photo
// per item across a batch.
type Mode int

const (
	// ModeSingleItem documents a single item with multiple photos.
	ModeSingleItem Mode = iota

	// ModeMultiItem captures a batch where each photo is its own item.
	ModeMultiItem
)

// ModeFromInt maps a stored integer back to a Mode, defaulting to
// ModeSingleItem for unknown values.
func ModeFromInt(v int) Mode {
	if v == int(ModeMultiItem) {
		return ModeMultiItem
	}
	return ModeSingleItem
}

func (m Mode) String() string {
	switch m {
	case ModeSingleItem:
		return "single-item"
	case ModeMultiItem:
		return "multi-item"
	default:
		return "unknown"
	}
}

// RequiresPro reports whether the mode is gated behind the paid tier.
func (m Mode) RequiresPro() bool {
	return m == ModeMultiItem
}

// SupportsGallery reports whether the captured-photo strip is shown.
func (m Mode) SupportsGallery() bool {
	return true
}

// SupportsPhotoPicker reports whether existing photos may be added from the
// library in this mode.
func (m Mode) SupportsPhotoPicker() bool {
	return m == ModeSingleItem
}

// Violation classifies a rejected capture or finish attempt.
type Violation int

const (
	// ViolationTooManyPhotos means the capture would exceed the mode's photo
	// ceiling.
	ViolationTooManyPhotos Violation = iota

	// ViolationNoPhotos means finishing was attempted with an empty session.
	ViolationNoPhotos
)

// Policy decides how many photos a session may hold and renders the
// user-facing counter and limit messages.
type Policy struct {
	// BatchLimit bounds the photo count in modes that allow more than one.
	BatchLimit int
}

// MaxPhotos returns the photo ceiling for a mode and entitlement. Single-item
// mode without the paid tier holds exactly one photo.
func (p Policy) MaxPhotos(m Mode, pro bool) int {
	if m == ModeSingleItem && !pro {
		return 1
	}
	return p.BatchLimit
}

// CounterText renders the HUD photo counter.
func (p Policy) CounterText(m Mode, count int, pro bool) string {
	return fmt.Sprintf("%d of %d", count, p.MaxPhotos(m, pro))
}

// ErrorMessage renders the user-facing text for a violation. Free-tier
// single-item limits suggest the upgrade; paid limits state the hard cap.
func (p Policy) ErrorMessage(m Mode, v Violation, pro bool) string {
	switch v {
	case ViolationTooManyPhotos:
		if m == ModeSingleItem && !pro {
			return "Upgrade to add more photos to a single item."
		}
		return fmt.Sprintf("You can capture up to %d photos per session.", p.MaxPhotos(m, pro))
	case ViolationNoPhotos:
		return "Take at least one photo before finishing."
	default:
		return "Capture failed."
	}
}
