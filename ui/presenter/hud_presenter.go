package presenter

import (
	"github.com/stashlens/capturekit/domain/capture"
	"github.com/stashlens/capturekit/ui/model"
)

// HUDView displays the capture heads-up values.
type HUDView interface {
	SetZoomLabel(string)
	SetFlashIcon(string)
	SetCounter(string)
}

// HUDPresenter pulls zoom/flash/counter state from the capture layer into
// the HUD model and pushes changes to the view.
type HUDPresenter struct {
	src   capture.HUDSource
	model *model.HUDModel
	view  HUDView
}

func NewHUDPresenter(src capture.HUDSource, m *model.HUDModel, view HUDView) *HUDPresenter {
	return &HUDPresenter{src: src, model: m, view: view}
}

// Tick refreshes the model; the view is only touched when values changed.
func (p *HUDPresenter) Tick() {
	if p == nil || p.src == nil || p.model == nil || p.view == nil {
		return
	}
	changed := p.model.Update(p.src.ZoomLabel(), p.src.FlashIconID(), p.src.CounterText(), p.src.Mode())
	if !changed {
		return
	}
	zoom, flash, counter, _ := p.model.Values()
	p.view.SetZoomLabel(zoom)
	p.view.SetFlashIcon(flash)
	p.view.SetCounter(counter)
}
