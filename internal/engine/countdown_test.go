package engine

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/tonhe/speedlog/internal/i18n"
	"github.com/tonhe/speedlog/internal/schedule"
)

var countdownNow = time.Date(2024, 1, 1, 13, 5, 0, 0, time.Local)

func newTestCountdown(clock clockwork.Clock) (*CountdownTimer, *recordingDisplay, *i18n.Catalog) {
	display := &recordingDisplay{}
	catalog := i18n.NewCatalog("en")
	return NewCountdownTimer(clock, display, catalog, quietLogger()), display, catalog
}

func TestCountdownRendersImmediately(t *testing.T) {
	clock := clockwork.NewFakeClockAt(countdownNow)
	c, display, _ := newTestCountdown(clock)
	defer c.Stop()

	if err := c.Start(schedule.Config{LastRunAt: "2024-01-01 10:00:00", IntervalHours: 3}); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	if got := display.last(); got != "in 02:55:00" {
		t.Errorf("expected 'in 02:55:00', got %q", got)
	}

	clock.Advance(time.Second)
	waitFor(t, "second frame", func() bool { return display.last() == "in 02:54:59" })
}

func TestCountdownRelocalizesEachTick(t *testing.T) {
	clock := clockwork.NewFakeClockAt(countdownNow)
	c, display, catalog := newTestCountdown(clock)
	defer c.Stop()

	if err := c.Start(schedule.Config{LastRunAt: "2024-01-01 10:00:00", IntervalHours: 3}); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	catalog.SetLanguage("pl")
	clock.Advance(time.Second)
	waitFor(t, "localized frame", func() bool { return strings.HasPrefix(display.last(), "za ") })
}

func TestCountdownRestartKeepsOneLoop(t *testing.T) {
	fake := clockwork.NewFakeClockAt(countdownNow)
	clock := &countingClock{Clock: fake}
	c, display, _ := newTestCountdown(clock)
	defer c.Stop()

	cfg := schedule.Config{LastRunAt: "2024-01-01 10:00:00", IntervalHours: 3}
	if err := c.Start(cfg); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	if err := c.Start(cfg); err != nil {
		t.Fatalf("Start() error: %v", err)
	}

	if got := clock.created.Load(); got != 2 {
		t.Errorf("expected 2 tickers created, got %d", got)
	}
	if got := clock.active.Load(); got != 1 {
		t.Fatalf("expected exactly 1 active ticker, got %d", got)
	}
	if got := display.showCount(); got != 2 {
		t.Fatalf("expected 2 immediate renders, got %d", got)
	}

	fake.Advance(time.Second)
	waitFor(t, "one tick", func() bool { return display.showCount() >= 3 })
	time.Sleep(50 * time.Millisecond)
	if got := display.showCount(); got != 3 {
		t.Errorf("expected 3 renders after one tick, got %d", got)
	}
}

func TestCountdownDisableHidesImmediately(t *testing.T) {
	fake := clockwork.NewFakeClockAt(countdownNow)
	clock := &countingClock{Clock: fake}
	c, display, _ := newTestCountdown(clock)
	defer c.Stop()

	if err := c.Start(schedule.Config{LastRunAt: "2024-01-01 13:00:00", IntervalHours: 1}); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	if display.isHidden() || display.showCount() != 1 {
		t.Fatal("expected countdown to be visible")
	}

	if err := c.Start(schedule.Config{LastRunAt: "2024-01-01 13:00:00", IntervalHours: 0}); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	if !display.isHidden() {
		t.Error("expected display hidden after disabling the schedule")
	}
	if got := clock.active.Load(); got != 0 {
		t.Errorf("expected no active ticker, got %d", got)
	}
	if _, ok := c.NextDue(); ok {
		t.Error("expected no next due time")
	}

	fake.Advance(3 * time.Second)
	time.Sleep(50 * time.Millisecond)
	if got := display.showCount(); got != 1 {
		t.Errorf("expected no renders after disable, got %d", got)
	}
}

func TestCountdownNoBaselineHides(t *testing.T) {
	clock := &countingClock{Clock: clockwork.NewFakeClockAt(countdownNow)}
	c, display, _ := newTestCountdown(clock)

	if err := c.Start(schedule.Config{IntervalHours: 6}); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	if !display.isHidden() {
		t.Error("expected display hidden without a baseline")
	}
	if clock.created.Load() != 0 {
		t.Error("expected no ticker without a baseline")
	}
}

func TestCountdownParseError(t *testing.T) {
	clock := &countingClock{Clock: clockwork.NewFakeClockAt(countdownNow)}
	c, display, _ := newTestCountdown(clock)

	err := c.Start(schedule.Config{LastRunAt: "not a time", IntervalHours: 1})
	if !errors.Is(err, ErrClockParse) {
		t.Errorf("expected ErrClockParse, got %v", err)
	}
	if !errors.Is(err, schedule.ErrInvalidTimestamp) {
		t.Errorf("expected wrapped ErrInvalidTimestamp, got %v", err)
	}
	if got := display.last(); got != "calculation error" {
		t.Errorf("expected error text, got %q", got)
	}
	if clock.created.Load() != 0 {
		t.Error("expected no ticker after a parse error")
	}
}

func TestCountdownFloorsAtZero(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2024, 1, 1, 10, 59, 58, 0, time.Local))
	c, display, _ := newTestCountdown(clock)
	defer c.Stop()

	if err := c.Start(schedule.Config{LastRunAt: "2024-01-01 10:00:00", IntervalHours: 1}); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	if got := display.last(); got != "in 00:00:02" {
		t.Fatalf("expected 'in 00:00:02', got %q", got)
	}

	for i := 0; i < 5; i++ {
		clock.Advance(time.Second)
	}
	waitFor(t, "zero floor", func() bool { return display.last() == "in 00:00:00" })

	next, ok := c.NextDue()
	if !ok || !next.Equal(time.Date(2024, 1, 1, 11, 0, 0, 0, time.Local)) {
		t.Errorf("expected next due to stay at 11:00, got %v", next)
	}
}

func TestCountdownSurvivesRenderPanic(t *testing.T) {
	clock := clockwork.NewFakeClockAt(countdownNow)
	c, display, _ := newTestCountdown(clock)
	defer c.Stop()

	display.panicNext = true
	if err := c.Start(schedule.Config{LastRunAt: "2024-01-01 10:00:00", IntervalHours: 3}); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	if display.showCount() != 0 {
		t.Fatal("expected the first render to fail")
	}

	clock.Advance(time.Second)
	waitFor(t, "render after panic", func() bool { return display.showCount() == 1 })
}

func TestCountdownStopIdempotent(t *testing.T) {
	c, _, _ := newTestCountdown(clockwork.NewFakeClock())
	c.Stop()
	c.Stop()
}
