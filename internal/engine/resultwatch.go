package engine

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

const DefaultResultWatchInterval = 10 * time.Second

// ResultWatcher polls the latest result and reports when its id changes,
// which covers scheduled runs this client did not trigger.
type ResultWatcher struct {
	clock    clockwork.Clock
	interval time.Duration
	fetch    PollFunc
	bridge   Bridge
	onNew    func(LatestResult)
	logger   *slog.Logger

	mu     sync.Mutex
	seeded bool
	lastID string

	lifeMu sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewResultWatcher creates a stopped watcher. onNew and bridge may be nil.
func NewResultWatcher(clock clockwork.Clock, interval time.Duration, fetch PollFunc, bridge Bridge, onNew func(LatestResult), logger *slog.Logger) *ResultWatcher {
	if interval <= 0 {
		interval = DefaultResultWatchInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ResultWatcher{
		clock:    clock,
		interval: interval,
		fetch:    fetch,
		bridge:   bridge,
		onNew:    onNew,
		logger:   logger.With("component", "resultwatch"),
	}
}

// Start begins watching, replacing any running loop. The first fetch only
// seeds the baseline.
func (r *ResultWatcher) Start(ctx context.Context) {
	r.lifeMu.Lock()
	defer r.lifeMu.Unlock()

	r.stopLocked()

	loopCtx, cancel := context.WithCancel(ctx)
	ticker := r.clock.NewTicker(r.interval)
	done := make(chan struct{})
	r.cancel = cancel
	r.done = done

	go func() {
		defer close(done)
		defer ticker.Stop()

		r.tick(loopCtx)
		for {
			select {
			case <-loopCtx.Done():
				return
			case <-ticker.Chan():
				if loopCtx.Err() != nil {
					return
				}
				r.tick(loopCtx)
			}
		}
	}()
}

// Stop halts watching.
func (r *ResultWatcher) Stop() {
	r.lifeMu.Lock()
	defer r.lifeMu.Unlock()
	r.stopLocked()
}

// Seed marks id as already seen so it will not be reported.
func (r *ResultWatcher) Seed(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seeded = true
	r.lastID = id
}

// Reset forgets the baseline; the next fetch seeds it again.
func (r *ResultWatcher) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seeded = false
	r.lastID = ""
}

func (r *ResultWatcher) stopLocked() {
	if r.cancel == nil {
		return
	}
	r.cancel()
	<-r.done
	r.cancel = nil
	r.done = nil
}

func (r *ResultWatcher) tick(ctx context.Context) {
	safeTick(r.logger, "resultwatch", func() {
		res, err := r.fetch(ctx)
		if err != nil {
			r.logger.Debug("latest result fetch failed", "error", err)
			return
		}
		if res == nil {
			return
		}

		r.mu.Lock()
		first := !r.seeded
		changed := r.seeded && res.ID != r.lastID
		r.seeded = true
		r.lastID = res.ID
		r.mu.Unlock()

		if first || !changed {
			return
		}

		r.logger.Info("new result", "result", res.ID, "timestamp", res.Timestamp)
		if r.bridge != nil {
			r.bridge.NewResult(*res)
		}
		if r.onNew != nil {
			r.onNew(*res)
		}
	})
}
