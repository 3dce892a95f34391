package presenter

import (
	"sync"

	"github.com/stashlens/capturekit/domain/capture"
)

// StateView sets the session state label in the view.
type StateView interface{ SetStateLabel(string) }

// StatePresenter receives session state transitions and reflects the most
// recent one on the view at the next tick.
//
// OnState runs on controller goroutines while Tick runs on the update loop,
// so the queue is guarded.
type StatePresenter struct {
	view    StateView
	latest  capture.SessionState // last reflected state
	started bool

	mu      sync.Mutex
	pending []capture.SessionState
}

func NewStatePresenter(view StateView) *StatePresenter {
	return &StatePresenter{view: view}
}

// OnState queues a transitioned state from the controller listener.
//
// The latest queued state is reflected on the next Tick.
func (p *StatePresenter) OnState(prev, next capture.SessionState) {
	if p == nil {
		return
	}
	p.mu.Lock()
	p.pending = append(p.pending, next)
	p.mu.Unlock()
}

// Tick flushes queued states and updates the view with the most recent one.
func (p *StatePresenter) Tick() {
	if p == nil || p.view == nil {
		return
	}
	p.mu.Lock()
	if len(p.pending) == 0 {
		p.mu.Unlock()
		return
	}
	last := p.pending[len(p.pending)-1]
	p.pending = p.pending[:0]
	p.mu.Unlock()
	if p.started && last == p.latest {
		return
	}
	p.started = true
	p.latest = last
	p.view.SetStateLabel("State: " + last.String())
}
