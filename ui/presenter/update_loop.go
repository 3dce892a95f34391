package presenter

import (
	"time"

	"github.com/stashlens/capturekit/domain/capture"
	"github.com/stashlens/capturekit/ui/model"
)

// Loop aggregates the feature presenters and drives periodic updates.
//
// It ticks the sub-presenters, advances the session-duration model, and
// invokes a scheduler callback. The zero value is usable (methods are
// nil-safe).
type Loop struct {
	State    *StatePresenter
	HUD      *HUDPresenter
	Gallery  *GalleryPresenter
	Session  *model.SessionModel
	Source   capture.StateSource
	Schedule func()
}

func NewLoop(state *StatePresenter, hud *HUDPresenter, gallery *GalleryPresenter,
	session *model.SessionModel, src capture.StateSource, schedule func()) *Loop {
	return &Loop{State: state, HUD: hud, Gallery: gallery, Session: session, Source: src, Schedule: schedule}
}

func (l *Loop) Tick() {
	if l == nil {
		return
	}
	now := time.Now()
	if l.State != nil {
		l.State.Tick()
	}
	if l.HUD != nil {
		l.HUD.Tick()
	}
	if l.Gallery != nil {
		l.Gallery.Tick()
	}
	if l.Session != nil && l.Source != nil {
		l.Session.OnTick(l.Source.Ready(), now)
	}
	if l.Schedule != nil {
		l.Schedule()
	}
}
