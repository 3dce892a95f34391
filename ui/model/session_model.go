package model

import (
	"time"
)

// SessionModel tracks how long the capture session has been live and the
// accumulated live time across restarts. Presenters poll Values() and update
// views. The zero value is ready to use.
type SessionModel struct {
	active       bool
	liveStart    time.Time
	lastDuration time.Duration
	accumulated  time.Duration
}

// NewSessionModel returns a pointer to a ready-to-use SessionModel.
func NewSessionModel() *SessionModel { return &SessionModel{} }

// OnTick updates the model using the current session-running state and
// timestamp. Call periodically from a presenter tick.
func (m *SessionModel) OnTick(running bool, now time.Time) {
	if m == nil {
		return
	}
	if running {
		if !m.active { // transition stopped -> running
			m.active = true
			m.liveStart = now
			m.lastDuration = 0
		}
		m.lastDuration = now.Sub(m.liveStart)
	} else if m.active { // transition running -> stopped
		m.lastDuration = now.Sub(m.liveStart)
		m.accumulated += m.lastDuration
		m.active = false
	}
}

// Values returns the current live duration and the total accumulated
// duration. The total includes the ongoing span when active.
func (m *SessionModel) Values() (live, total time.Duration) {
	if m == nil {
		return 0, 0
	}
	live = m.lastDuration
	total = m.accumulated
	if m.active {
		total += live
	}
	return
}
