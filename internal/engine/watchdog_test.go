package engine

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
)

// scriptedWatchdog returns the scripted readings in order, then repeats the
// last one. A nil entry yields a fetch error.
type scriptedWatchdog struct {
	mu    sync.Mutex
	steps []*WatchdogSnapshot
	calls int
}

func (s *scriptedWatchdog) fetch(context.Context) (WatchdogSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.calls
	if i >= len(s.steps) {
		i = len(s.steps) - 1
	}
	s.calls++
	if s.steps[i] == nil {
		return WatchdogSnapshot{}, errors.New("network unreachable")
	}
	return *s.steps[i], nil
}

func (s *scriptedWatchdog) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func reading(online bool) *WatchdogSnapshot {
	return &WatchdogSnapshot{Known: true, Online: online, Target: "8.8.8.8"}
}

type fakeSurface struct {
	visible atomic.Bool
	mu      sync.Mutex
	renders []WatchdogSnapshot
}

func (f *fakeSurface) Visible() bool { return f.visible.Load() }

func (f *fakeSurface) Render(s WatchdogSnapshot) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.renders = append(f.renders, s)
}

func (f *fakeSurface) renderCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.renders)
}

func newTestWatchdog(clock clockwork.Clock, script *scriptedWatchdog, bridge Bridge) *WatchdogPoller {
	return NewWatchdogPoller(clock, 5*time.Second, script.fetch, bridge, quietLogger())
}

func TestWatchdogEdgeTrigger(t *testing.T) {
	script := &scriptedWatchdog{steps: []*WatchdogSnapshot{
		reading(true), reading(true), reading(false), reading(false), reading(true),
	}}
	bridge := &recordingBridge{}
	w := newTestWatchdog(clockwork.NewFakeClock(), script, bridge)

	for i := 0; i < 5; i++ {
		w.tick(context.Background())
	}

	got := bridge.transitionList()
	if len(got) != 2 {
		t.Fatalf("expected 2 transitions, got %d (%v)", len(got), got)
	}
	if got[0] != false || got[1] != true {
		t.Errorf("expected [offline online], got %v", got)
	}
	if len(w.Transitions()) != 2 {
		t.Errorf("expected 2 recorded transitions, got %d", len(w.Transitions()))
	}
}

func TestWatchdogFirstPollNeverFires(t *testing.T) {
	for _, online := range []bool{true, false} {
		script := &scriptedWatchdog{steps: []*WatchdogSnapshot{reading(online)}}
		bridge := &recordingBridge{}
		w := newTestWatchdog(clockwork.NewFakeClock(), script, bridge)

		w.tick(context.Background())
		if n := len(bridge.transitionList()); n != 0 {
			t.Errorf("online=%v: expected no transition on first poll, got %d", online, n)
		}
		snap, ok := w.Snapshot()
		if !ok || snap.Online != online {
			t.Errorf("online=%v: expected cached snapshot, got %+v", online, snap)
		}
	}
}

func TestWatchdogFetchErrorSkipsTick(t *testing.T) {
	script := &scriptedWatchdog{steps: []*WatchdogSnapshot{
		reading(true), nil, reading(false),
	}}
	bridge := &recordingBridge{}
	w := newTestWatchdog(clockwork.NewFakeClock(), script, bridge)

	w.tick(context.Background())
	w.tick(context.Background())

	snap, ok := w.Snapshot()
	if !ok || !snap.Online {
		t.Fatalf("expected cache to keep the online reading, got %+v", snap)
	}
	if w.ErrorCount() != 1 {
		t.Errorf("expected 1 fetch error, got %d", w.ErrorCount())
	}

	w.tick(context.Background())
	if got := bridge.transitionList(); len(got) != 1 || got[0] != false {
		t.Errorf("expected one offline transition, got %v", got)
	}
}

func TestWatchdogUnknownReadingDoesNotSeed(t *testing.T) {
	script := &scriptedWatchdog{steps: []*WatchdogSnapshot{
		{Known: false, Target: "8.8.8.8"}, reading(false), reading(true),
	}}
	bridge := &recordingBridge{}
	w := newTestWatchdog(clockwork.NewFakeClock(), script, bridge)

	w.tick(context.Background())
	w.tick(context.Background())
	if n := len(bridge.transitionList()); n != 0 {
		t.Fatalf("expected no transition after an unknown reading, got %d", n)
	}
	w.tick(context.Background())
	if n := len(bridge.transitionList()); n != 1 {
		t.Errorf("expected 1 transition, got %d", n)
	}
}

func TestWatchdogRendersOnlyWhenVisible(t *testing.T) {
	script := &scriptedWatchdog{steps: []*WatchdogSnapshot{reading(true), reading(false), reading(false)}}
	bridge := &recordingBridge{}
	surface := &fakeSurface{}
	w := newTestWatchdog(clockwork.NewFakeClock(), script, bridge)
	w.SetSurface(surface)

	w.tick(context.Background())
	w.tick(context.Background())
	if surface.renderCount() != 0 {
		t.Errorf("expected no renders while hidden, got %d", surface.renderCount())
	}
	if snap, _ := w.Snapshot(); snap.Online {
		t.Error("expected cache refreshed while hidden")
	}
	if n := len(bridge.transitionList()); n != 1 {
		t.Errorf("expected transition while hidden, got %d", n)
	}

	surface.visible.Store(true)
	w.tick(context.Background())
	if surface.renderCount() != 1 {
		t.Errorf("expected 1 render while visible, got %d", surface.renderCount())
	}
}

func TestWatchdogShowDetailUsesCache(t *testing.T) {
	script := &scriptedWatchdog{steps: []*WatchdogSnapshot{reading(true)}}
	surface := &fakeSurface{}
	w := newTestWatchdog(clockwork.NewFakeClock(), script, nil)
	w.SetSurface(surface)

	if w.ShowDetail() {
		t.Error("expected ShowDetail to report no cache")
	}

	w.tick(context.Background())
	fetches := script.count()
	surface.visible.Store(true)
	if !w.ShowDetail() {
		t.Fatal("expected ShowDetail to render from cache")
	}
	if surface.renderCount() != 1 {
		t.Errorf("expected 1 render, got %d", surface.renderCount())
	}
	if script.count() != fetches {
		t.Error("ShowDetail must not fetch")
	}
}

func TestWatchdogStartPollsImmediately(t *testing.T) {
	fake := clockwork.NewFakeClock()
	script := &scriptedWatchdog{steps: []*WatchdogSnapshot{reading(true)}}
	w := newTestWatchdog(fake, script, nil)
	defer w.Stop()

	w.Start(context.Background())
	waitFor(t, "first poll", func() bool { return script.count() == 1 })

	fake.Advance(5 * time.Second)
	waitFor(t, "second poll", func() bool { return script.count() == 2 })
}

func TestWatchdogRestartSingleLoop(t *testing.T) {
	fake := clockwork.NewFakeClock()
	clock := &countingClock{Clock: fake}
	script := &scriptedWatchdog{steps: []*WatchdogSnapshot{reading(true)}}
	w := newTestWatchdog(clock, script, nil)
	defer w.Stop()

	w.Start(context.Background())
	w.Start(context.Background())
	if got := clock.active.Load(); got != 1 {
		t.Fatalf("expected 1 active ticker, got %d", got)
	}
	waitFor(t, "immediate polls", func() bool { return script.count() == 2 })

	fake.Advance(5 * time.Second)
	waitFor(t, "one tick", func() bool { return script.count() >= 3 })
	time.Sleep(50 * time.Millisecond)
	if got := script.count(); got != 3 {
		t.Errorf("expected 3 polls, got %d", got)
	}
}

func TestWatchdogStopIdempotent(t *testing.T) {
	script := &scriptedWatchdog{steps: []*WatchdogSnapshot{reading(true)}}
	w := newTestWatchdog(clockwork.NewFakeClock(), script, nil)
	w.Stop()
	w.Start(context.Background())
	w.Stop()
	w.Stop()
	if w.Running() {
		t.Error("expected poller stopped")
	}
}

func TestWatchdogResetClearsCache(t *testing.T) {
	script := &scriptedWatchdog{steps: []*WatchdogSnapshot{reading(true), reading(false)}}
	bridge := &recordingBridge{}
	w := newTestWatchdog(clockwork.NewFakeClock(), script, bridge)

	w.tick(context.Background())
	w.Reset()
	if _, ok := w.Snapshot(); ok {
		t.Error("expected empty cache after Reset")
	}
	w.tick(context.Background())
	if n := len(bridge.transitionList()); n != 0 {
		t.Errorf("expected no transition after Reset, got %d", n)
	}
}

func TestWatchdogFetchPanicRecovered(t *testing.T) {
	w := NewWatchdogPoller(clockwork.NewFakeClock(), time.Second, func(context.Context) (WatchdogSnapshot, error) {
		panic("decoder exploded")
	}, nil, quietLogger())
	w.tick(context.Background())
	if _, ok := w.Snapshot(); ok {
		t.Error("expected no cache after a panicking fetch")
	}
}
