package engine

import (
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// waitFor polls cond until it holds or two seconds pass.
func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

type recordingDisplay struct {
	mu        sync.Mutex
	shows     []string
	hides     int
	hidden    bool
	panicNext bool
}

func (d *recordingDisplay) Show(text string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.panicNext {
		d.panicNext = false
		panic("render failed")
	}
	d.shows = append(d.shows, text)
	d.hidden = false
}

func (d *recordingDisplay) Hide() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.hides++
	d.hidden = true
}

func (d *recordingDisplay) showCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.shows)
}

func (d *recordingDisplay) last() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.shows) == 0 {
		return ""
	}
	return d.shows[len(d.shows)-1]
}

func (d *recordingDisplay) isHidden() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.hidden
}

type recordingBridge struct {
	mu          sync.Mutex
	transitions []bool
	outcomes    []Outcome
	results     []LatestResult
}

func (b *recordingBridge) WatchdogTransition(online bool, target string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.transitions = append(b.transitions, online)
}

func (b *recordingBridge) JobOutcome(o Outcome) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.outcomes = append(b.outcomes, o)
}

func (b *recordingBridge) NewResult(r LatestResult) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.results = append(b.results, r)
}

func (b *recordingBridge) transitionList() []bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]bool(nil), b.transitions...)
}

func (b *recordingBridge) outcomeList() []Outcome {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Outcome(nil), b.outcomes...)
}

func (b *recordingBridge) resultList() []LatestResult {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]LatestResult(nil), b.results...)
}

// countingClock tracks how many tickers are live at once.
type countingClock struct {
	clockwork.Clock
	created atomic.Int32
	active  atomic.Int32
}

func (c *countingClock) NewTicker(d time.Duration) clockwork.Ticker {
	c.created.Add(1)
	c.active.Add(1)
	return &countingTicker{Ticker: c.Clock.NewTicker(d), clock: c}
}

type countingTicker struct {
	clockwork.Ticker
	clock *countingClock
	once  sync.Once
}

func (t *countingTicker) Stop() {
	t.once.Do(func() { t.clock.active.Add(-1) })
	t.Ticker.Stop()
}
