package engine

import (
	"errors"
	"log/slog"
)

var (
	// ErrTriggerRejected means the backend refused to start a test.
	ErrTriggerRejected = errors.New("trigger rejected")
	// ErrPollTransient marks a single failed poll attempt.
	ErrPollTransient = errors.New("poll attempt failed")
	// ErrPollTimeout means the attempt budget ran out before a new result.
	ErrPollTimeout = errors.New("timed out waiting for result")
	// ErrClockParse means a schedule timestamp could not be parsed.
	ErrClockParse = errors.New("cannot compute next run")
	// ErrWatchdogFetch marks a failed watchdog tick.
	ErrWatchdogFetch = errors.New("watchdog fetch failed")
)

// safeTick runs fn and logs instead of propagating a panic, so a bad tick
// never stops its loop.
func safeTick(logger *slog.Logger, component string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("tick panicked", "component", component, "panic", r)
		}
	}()
	fn()
}
