package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/tonhe/speedlog/internal/i18n"
	"github.com/tonhe/speedlog/internal/schedule"
)

// Display is the single target a CountdownTimer writes to.
type Display interface {
	Show(text string)
	Hide()
}

// CountdownTimer renders the time left until the next scheduled test once a
// second. At most one tick loop runs per timer.
type CountdownTimer struct {
	clock   clockwork.Clock
	display Display
	catalog *i18n.Catalog
	logger  *slog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
	next   time.Time
}

// NewCountdownTimer creates a stopped timer bound to display.
func NewCountdownTimer(clock clockwork.Clock, display Display, catalog *i18n.Catalog, logger *slog.Logger) *CountdownTimer {
	if logger == nil {
		logger = slog.Default()
	}
	return &CountdownTimer{
		clock:   clock,
		display: display,
		catalog: catalog,
		logger:  logger.With("component", "countdown"),
	}
}

// Start replaces any running loop with one for cfg. A disabled schedule or
// a missing baseline hides the display. An unparseable baseline shows the
// localized error text and returns an error wrapping ErrClockParse.
func (c *CountdownTimer) Start(cfg schedule.Config) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopLocked()

	if !cfg.Enabled() || cfg.LastRunAt == "" {
		c.display.Hide()
		return nil
	}

	last, err := schedule.ParseNaiveLocal(cfg.LastRunAt)
	if err != nil {
		c.logger.Warn("cannot parse last run", "last_run_at", cfg.LastRunAt, "error", err)
		c.display.Show(c.catalog.T(i18n.NextTestError))
		return fmt.Errorf("%w: %w", ErrClockParse, err)
	}

	next, _ := schedule.NextDueAt(last, cfg.IntervalHours, c.clock.Now())
	c.next = next

	c.render(next)

	ctx, cancel := context.WithCancel(context.Background())
	ticker := c.clock.NewTicker(time.Second)
	done := make(chan struct{})
	c.cancel = cancel
	c.done = done

	go c.loop(ctx, ticker, next, done)
	return nil
}

// Stop cancels the tick loop. The display is left as it was.
func (c *CountdownTimer) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocked()
}

// NextDue returns the boundary currently counted down to, if running.
func (c *CountdownTimer) NextDue() (time.Time, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel == nil {
		return time.Time{}, false
	}
	return c.next, true
}

func (c *CountdownTimer) stopLocked() {
	if c.cancel == nil {
		return
	}
	c.cancel()
	<-c.done
	c.cancel = nil
	c.done = nil
	c.next = time.Time{}
}

func (c *CountdownTimer) loop(ctx context.Context, ticker clockwork.Ticker, next time.Time, done chan struct{}) {
	defer close(done)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			if ctx.Err() != nil {
				return
			}
			c.render(next)
		}
	}
}

// render formats one frame. The prefix is looked up on every call so a
// language switch shows up on the next tick.
func (c *CountdownTimer) render(next time.Time) {
	safeTick(c.logger, "countdown", func() {
		remaining := schedule.Remaining(next, c.clock.Now())
		c.display.Show(c.catalog.T(i18n.CountdownPrefix) + " " + schedule.FormatCountdown(remaining))
	})
}
