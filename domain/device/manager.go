// Package device discovers the physical lenses available at a facing
// position and answers which lens should serve a requested zoom level or a
// macro shot.
package device

import (
	"log/slog"
	"math"
	"slices"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/stashlens/capturekit/config"
	"github.com/stashlens/capturekit/platform"
)

// DefaultZoomLevels is the fallback zoom set used when discovery yields no
// lenses at a position.
var DefaultZoomLevels = []float64{1.0, 2.0, 5.0}

// Cache memoizes discovery results per facing position so that a manager
// rebuilt on a facing switch does not re-enumerate hardware. It is scoped to
// one platform; do not share across platforms.
type Cache struct {
	lru *lru.Cache[platform.Position, []Capability]
}

// NewCache returns a discovery cache covering both facing positions.
func NewCache() *Cache {
	c, err := lru.New[platform.Position, []Capability](2)
	if err != nil {
		// Size is a positive constant; lru.New cannot fail here.
		panic(err)
	}
	return &Cache{lru: c}
}

// Manager holds the lenses discovered for one facing position. It is
// immutable after construction; facing switches replace the manager
// wholesale instead of mutating it in place.
type Manager struct {
	logger   *slog.Logger
	policy   config.ZoomPolicy
	position platform.Position
	caps     []Capability
}

// NewManager discovers lenses for pos and returns a manager answering zoom
// and macro queries against that snapshot. cache may be nil.
func NewManager(plat platform.Platform, logger *slog.Logger, policy config.ZoomPolicy, pos platform.Position, cache *Cache) *Manager {
	m := &Manager{logger: logger, policy: policy, position: pos}
	if cache != nil {
		if caps, ok := cache.lru.Get(pos); ok {
			m.caps = caps
			return m
		}
	}
	m.caps = discover(plat, logger, policy, pos)
	if cache != nil {
		cache.lru.Add(pos, m.caps)
	}
	return m
}

func discover(plat platform.Platform, logger *slog.Logger, policy config.ZoomPolicy, pos platform.Position) []Capability {
	var caps []Capability
	for _, d := range plat.Devices(pos) {
		if d.FormatCount() == 0 {
			if logger != nil {
				logger.Warn("skipping lens with no formats", "lens", d.ID(), "position", pos.String())
			}
			continue
		}
		min, max := d.ZoomRange()
		caps = append(caps, Capability{
			Device:             d,
			Kind:               d.Kind(),
			MinZoom:            min,
			MaxZoom:            max,
			MinFocusDistanceMM: d.MinFocusDistanceMM(),
			DisplayZoom:        displayZoom(policy, d),
		})
	}
	slices.SortFunc(caps, func(a, b Capability) int {
		switch {
		case a.DisplayZoom < b.DisplayZoom:
			return -1
		case a.DisplayZoom > b.DisplayZoom:
			return 1
		default:
			return 0
		}
	})
	if logger != nil {
		logger.Debug("lens discovery complete", "position", pos.String(), "lenses", len(caps))
	}
	return caps
}

// displayZoom derives the user-facing zoom factor from lens kind. The
// telephoto factor depends on the hardware model generation.
func displayZoom(policy config.ZoomPolicy, d platform.Device) float64 {
	switch d.Kind() {
	case platform.LensUltraWide:
		return policy.UltraWideFactor
	case platform.LensTelephoto:
		if slices.Contains(policy.ProModels, d.HardwareModel()) {
			return policy.TelephotoProFactor
		}
		return policy.TelephotoFactor
	default:
		return policy.WideFactor
	}
}

// Position returns the facing position the manager was built for.
func (m *Manager) Position() platform.Position { return m.position }

// Capabilities returns the discovered lenses sorted ascending by display
// zoom. The slice must not be mutated.
func (m *Manager) Capabilities() []Capability { return m.caps }

// CameraForZoomLevel returns the lens serving the requested display zoom: an
// exact display-factor match wins; otherwise the lens whose native range
// covers the request and whose display factor is numerically closest. Nil if
// no lens can achieve it.
func (m *Manager) CameraForZoomLevel(zoom float64) *Capability {
	for i := range m.caps {
		if m.caps[i].DisplayZoom == zoom {
			return &m.caps[i]
		}
	}
	var best *Capability
	bestDist := math.Inf(1)
	for i := range m.caps {
		if !m.caps[i].Covers(zoom) {
			continue
		}
		if d := math.Abs(m.caps[i].DisplayZoom - zoom); d < bestDist {
			bestDist = d
			best = &m.caps[i]
		}
	}
	return best
}

// BestCameraForMacro returns the lens with the smallest minimum focus
// distance, typically the ultra-wide.
func (m *Manager) BestCameraForMacro() *Capability {
	var best *Capability
	for i := range m.caps {
		if best == nil || m.caps[i].MinFocusDistanceMM < best.MinFocusDistanceMM {
			best = &m.caps[i]
		}
	}
	return best
}

// CheckMacroRecommendation suggests a better macro lens than the current
// one. It returns nil when the current lens already is the best macro lens,
// or when switching would improve the focus distance by no more than the
// configured threshold.
func (m *Manager) CheckMacroRecommendation(current platform.Device, currentZoom float64) *MacroRecommendation {
	if current == nil {
		return nil
	}
	best := m.BestCameraForMacro()
	if best == nil || best.Device.ID() == current.ID() {
		return nil
	}
	improvement := current.MinFocusDistanceMM() - best.MinFocusDistanceMM
	if improvement <= m.policy.MacroImprovementMM {
		return nil
	}
	cur := m.capabilityFor(current)
	if cur == nil {
		return nil
	}
	rec := &MacroRecommendation{
		Current:       *cur,
		Recommended:   *best,
		ImprovementMM: improvement,
	}
	rec.Message = macroMessage(*best, improvement)
	if m.logger != nil {
		m.logger.Debug("macro switch recommended",
			"from", cur.Kind.String(),
			"to", best.Kind.String(),
			"improvement_mm", improvement,
			"zoom", currentZoom,
		)
	}
	return rec
}

// AllSupportedZoomLevels returns the deduplicated ascending display factors
// across discovered lenses, always including 1.0 as the baseline.
func (m *Manager) AllSupportedZoomLevels() []float64 {
	levels := []float64{1.0}
	for _, c := range m.caps {
		if !slices.Contains(levels, c.DisplayZoom) {
			levels = append(levels, c.DisplayZoom)
		}
	}
	slices.Sort(levels)
	return levels
}

func (m *Manager) capabilityFor(d platform.Device) *Capability {
	for i := range m.caps {
		if m.caps[i].Device.ID() == d.ID() {
			return &m.caps[i]
		}
	}
	return nil
}
