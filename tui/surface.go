package tui

import (
	"sync"

	"github.com/tonhe/speedlog/internal/engine"
)

// countdownDisplay receives frames from the engine's CountdownTimer on its
// own goroutine. The view reads the latest frame on each UI tick.
type countdownDisplay struct {
	mu      sync.Mutex
	text    string
	visible bool
}

func (d *countdownDisplay) Show(text string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.text = text
	d.visible = true
}

func (d *countdownDisplay) Hide() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.text = ""
	d.visible = false
}

// Text returns the current frame, or "" when the countdown is hidden.
func (d *countdownDisplay) Text() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.visible {
		return ""
	}
	return d.text
}

// watchdogSurface is the engine.DetailSurface behind the watchdog popover.
// The poller only renders into it while the popover is open.
type watchdogSurface struct {
	mu      sync.Mutex
	visible bool
	snap    *engine.WatchdogSnapshot
}

func (s *watchdogSurface) Visible() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.visible
}

func (s *watchdogSurface) Render(snap engine.WatchdogSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = &snap
}

func (s *watchdogSurface) setVisible(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.visible = v
}

func (s *watchdogSurface) latest() (engine.WatchdogSnapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snap == nil {
		return engine.WatchdogSnapshot{}, false
	}
	return *s.snap, true
}
