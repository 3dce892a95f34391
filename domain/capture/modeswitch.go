package capture

// Mode switching runs a three-tier gate: entitlement, then destructive-change
// confirmation, then direct apply. The visible mode never shows the target
// while a confirmation is pending; callers re-read Mode() after a rejected
// request to revert their picker.

// RequestModeChange asks to switch the capture mode. It returns true only
// when the switch was applied. A request arriving while another switch is
// pending is dropped, not queued.
func (c *Controller) RequestModeChange(to Mode) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.switchPhase != SwitchIdle {
		if c.logger != nil {
			c.logger.Debug("mode switch already pending, dropping request", "target", to.String())
		}
		return false
	}
	if to == c.mode {
		return true
	}
	if to.RequiresPro() && !c.pro {
		if c.logger != nil {
			c.logger.Info("mode switch blocked by entitlement", "target", to.String())
		}
		if c.callbacks.ShowPaywall != nil {
			c.callbacks.ShowPaywall()
		}
		return false
	}
	if len(c.images) > 0 {
		c.switchPhase = SwitchPendingConfirmation
		c.stagedMode = to
		if c.logger != nil {
			c.logger.Debug("mode switch needs confirmation", "target", to.String(), "photos", len(c.images))
		}
		if c.callbacks.ConfirmModeSwitch != nil {
			c.callbacks.ConfirmModeSwitch(to)
		}
		return false
	}
	c.applyModeLocked(to)
	return true
}

// ConfirmModeChange applies a pending mode switch, clearing the captured
// images. A call with no pending switch is a no-op.
func (c *Controller) ConfirmModeChange() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.switchPhase != SwitchPendingConfirmation {
		return
	}
	to := c.stagedMode
	c.switchPhase = SwitchIdle
	c.applyModeLocked(to)
}

// CancelModeChange abandons a pending mode switch, leaving the current mode
// and captured images untouched.
func (c *Controller) CancelModeChange() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.switchPhase != SwitchPendingConfirmation {
		return
	}
	c.switchPhase = SwitchIdle
	if c.logger != nil {
		c.logger.Debug("mode switch cancelled", "target", c.stagedMode.String())
	}
}

// applyModeLocked commits the mode: captured images are cleared, the choice
// is persisted as a preference, and the haptic callback fires.
func (c *Controller) applyModeLocked(to Mode) {
	c.images = nil
	c.mode = to
	if err := c.cfg.SetPreferredMode(int(to)); err != nil && c.logger != nil {
		c.logger.Warn("cannot persist mode preference", "error", err)
	}
	if c.logger != nil {
		c.logger.Info("capture mode applied", "mode", to.String())
	}
	if c.callbacks.Haptic != nil {
		c.callbacks.Haptic()
	}
}

// Mode returns the visible capture mode; it never reflects a staged switch.
func (c *Controller) Mode() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// SwitchPhase reports where the mode-switch protocol currently stands.
func (c *Controller) SwitchPhase() SwitchPhase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.switchPhase
}

// StagedMode returns the mode awaiting confirmation; meaningful only while
// SwitchPhase is pending.
func (c *Controller) StagedMode() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stagedMode
}
