package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

const DefaultWatchdogInterval = 5 * time.Second

// WatchdogFetchFunc fetches one watchdog reading.
type WatchdogFetchFunc func(ctx context.Context) (WatchdogSnapshot, error)

// DetailSurface is a view that can show a watchdog snapshot in detail.
type DetailSurface interface {
	Visible() bool
	Render(snap WatchdogSnapshot)
}

// WatchdogPoller fetches the watchdog status on a fixed interval for the
// lifetime of a session and caches the most recent reading.
type WatchdogPoller struct {
	clock    clockwork.Clock
	interval time.Duration
	fetch    WatchdogFetchFunc
	bridge   Bridge
	logger   *slog.Logger

	mu          sync.RWMutex
	cache       *WatchdogSnapshot
	lastOnline  *bool
	surface     DetailSurface
	transitions *RingBuffer[Transition]
	errorCount  int

	lifeMu sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewWatchdogPoller creates a stopped poller. bridge may be nil.
func NewWatchdogPoller(clock clockwork.Clock, interval time.Duration, fetch WatchdogFetchFunc, bridge Bridge, logger *slog.Logger) *WatchdogPoller {
	if interval <= 0 {
		interval = DefaultWatchdogInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &WatchdogPoller{
		clock:       clock,
		interval:    interval,
		fetch:       fetch,
		bridge:      bridge,
		logger:      logger.With("component", "watchdog"),
		transitions: NewRingBuffer[Transition](20),
	}
}

// Start begins polling, replacing any running loop. The first fetch runs
// immediately.
func (w *WatchdogPoller) Start(ctx context.Context) {
	w.lifeMu.Lock()
	defer w.lifeMu.Unlock()

	w.stopLocked()

	loopCtx, cancel := context.WithCancel(ctx)
	ticker := w.clock.NewTicker(w.interval)
	done := make(chan struct{})
	w.cancel = cancel
	w.done = done

	go w.run(loopCtx, ticker, done)
}

// Stop halts polling. The cache is kept until Reset.
func (w *WatchdogPoller) Stop() {
	w.lifeMu.Lock()
	defer w.lifeMu.Unlock()
	w.stopLocked()
}

// Running reports whether the poll loop is active.
func (w *WatchdogPoller) Running() bool {
	w.lifeMu.Lock()
	defer w.lifeMu.Unlock()
	return w.cancel != nil
}

// Reset drops the cached snapshot and transition history.
func (w *WatchdogPoller) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.cache = nil
	w.lastOnline = nil
	w.errorCount = 0
	w.transitions.Reset()
}

// Snapshot returns the cached snapshot.
func (w *WatchdogPoller) Snapshot() (WatchdogSnapshot, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.cache == nil {
		return WatchdogSnapshot{}, false
	}
	return *w.cache, true
}

// Transitions returns recent online/offline edges, oldest first.
func (w *WatchdogPoller) Transitions() []Transition {
	return w.transitions.All()
}

// ErrorCount returns the number of failed fetches since the last Reset.
func (w *WatchdogPoller) ErrorCount() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.errorCount
}

// SetSurface attaches the detail view that ticks render into.
func (w *WatchdogPoller) SetSurface(s DetailSurface) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.surface = s
}

// ShowDetail renders the cached snapshot into the surface without fetching.
// It returns false if nothing has been cached yet.
func (w *WatchdogPoller) ShowDetail() bool {
	w.mu.RLock()
	surface := w.surface
	var snap WatchdogSnapshot
	ok := w.cache != nil
	if ok {
		snap = *w.cache
	}
	w.mu.RUnlock()

	if !ok || surface == nil {
		return false
	}
	surface.Render(snap)
	return true
}

func (w *WatchdogPoller) stopLocked() {
	if w.cancel == nil {
		return
	}
	w.cancel()
	<-w.done
	w.cancel = nil
	w.done = nil
}

func (w *WatchdogPoller) run(ctx context.Context, ticker clockwork.Ticker, done chan struct{}) {
	defer close(done)
	defer ticker.Stop()

	w.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			if ctx.Err() != nil {
				return
			}
			w.tick(ctx)
		}
	}
}

// tick runs one fetch. A failed fetch leaves the cache and the transition
// state untouched.
func (w *WatchdogPoller) tick(ctx context.Context) {
	safeTick(w.logger, "watchdog", func() {
		snap, err := w.fetch(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			w.mu.Lock()
			w.errorCount++
			w.mu.Unlock()
			w.logger.Warn("tick skipped", "error", fmt.Errorf("%w: %w", ErrWatchdogFetch, err))
			return
		}
		snap.FetchedAt = w.clock.Now()

		w.mu.Lock()
		prev := w.lastOnline
		w.cache = &snap
		if snap.Known {
			online := snap.Online
			w.lastOnline = &online
		}
		surface := w.surface
		w.mu.Unlock()

		if snap.Known && prev != nil && *prev != snap.Online {
			w.logger.Info("watchdog transition", "target", snap.Target, "online", snap.Online)
			w.transitions.Add(Transition{At: snap.FetchedAt, Online: snap.Online, Target: snap.Target})
			if w.bridge != nil {
				w.bridge.WatchdogTransition(snap.Online, snap.Target)
			}
		}

		if surface != nil && surface.Visible() {
			surface.Render(snap)
		}
	})
}
