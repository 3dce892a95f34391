package device

import (
	"fmt"

	"github.com/stashlens/capturekit/platform"
)

// Capability is one discovered physical lens together with the derived
// user-facing zoom factor. Immutable after discovery; discarded when the
// facing position is torn down.
type Capability struct {
	Device             platform.Device
	Kind               platform.LensKind
	MinZoom            float64
	MaxZoom            float64
	MinFocusDistanceMM float64

	// DisplayZoom is the "0.5x/1x/3x" label factor, derived once at
	// discovery from lens kind and hardware model.
	DisplayZoom float64
}

// Covers reports whether the lens can natively reach the requested zoom.
func (c Capability) Covers(zoom float64) bool {
	return zoom >= c.MinZoom && zoom <= c.MaxZoom
}

// MacroRecommendation suggests switching to a lens with a closer minimum
// focus distance. Computed on demand, never stored.
type MacroRecommendation struct {
	Current       Capability
	Recommended   Capability
	ImprovementMM float64
	Message       string
}

func macroMessage(rec Capability, improvementMM float64) string {
	return fmt.Sprintf("Switch to the %s lens (%.1fx) to focus %.0fmm closer",
		rec.Kind, rec.DisplayZoom, improvementMM)
}
