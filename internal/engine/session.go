package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/tonhe/speedlog/internal/api"
	"github.com/tonhe/speedlog/internal/i18n"
	"github.com/tonhe/speedlog/internal/schedule"
)

// Backend is the part of the server API a Session uses.
type Backend interface {
	TriggerTest(ctx context.Context, serverID *int, language string) error
	LatestResult(ctx context.Context) (*api.Result, error)
	Results(ctx context.Context) ([]api.Result, error)
	Settings(ctx context.Context) (api.Settings, error)
	UpdateSettings(ctx context.Context, upd api.SettingsUpdate) error
	WatchdogStatus(ctx context.Context) (api.WatchdogStatus, error)
	DeleteResults(ctx context.Context, ids []string) (int, error)
}

// Logouter is implemented by backends that hold a server login.
type Logouter interface {
	Logout(ctx context.Context) error
}

// Options tunes the timers of a Session. Zero values use the defaults.
type Options struct {
	Clock               clockwork.Clock
	Logger              *slog.Logger
	JobPollInterval     time.Duration
	JobMaxAttempts      int
	WatchdogInterval    time.Duration
	ResultWatchInterval time.Duration
}

// Session is the root controller for one authenticated connection. It owns
// the application State and wires the countdown, job poller, watchdog and
// result watcher together.
type Session struct {
	backend Backend
	catalog *i18n.Catalog
	logger  *slog.Logger
	state   *State

	countdown *CountdownTimer
	jobs      *JobPoller
	watchdog  *WatchdogPoller
	results   *ResultWatcher

	mu          sync.RWMutex
	subscribers []chan Event
	cancel      context.CancelFunc
	bgCtx       context.Context
}

// NewSession creates a stopped Session. bridge receives user-facing events
// and may be nil.
func NewSession(backend Backend, display Display, catalog *i18n.Catalog, bridge Bridge, opts Options) *Session {
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	s := &Session{
		backend: backend,
		catalog: catalog,
		logger:  opts.Logger,
		state:   &State{},
		bgCtx:   context.Background(),
	}

	fan := multiBridge{sessionEvents{s}}
	if bridge != nil {
		fan = append(fan, bridge)
	}

	s.countdown = NewCountdownTimer(opts.Clock, display, catalog, opts.Logger)
	s.jobs = NewJobPoller(opts.Clock, opts.JobPollInterval, opts.JobMaxAttempts, fan, opts.Logger)
	s.watchdog = NewWatchdogPoller(opts.Clock, opts.WatchdogInterval, s.fetchWatchdog, fan, opts.Logger)
	s.results = NewResultWatcher(opts.Clock, opts.ResultWatchInterval, s.fetchLatest, fan, s.handleNewResult, opts.Logger)
	return s
}

// State returns the shared application state.
func (s *Session) State() *State { return s.state }

// Catalog returns the message catalog used for display text.
func (s *Session) Catalog() *i18n.Catalog { return s.catalog }

// Watchdog returns the watchdog poller.
func (s *Session) Watchdog() *WatchdogPoller { return s.watchdog }

// Jobs returns the manual-test poller.
func (s *Session) Jobs() *JobPoller { return s.jobs }

// Countdown returns the countdown timer.
func (s *Session) Countdown() *CountdownTimer { return s.countdown }

// Start loads the schedule and results and starts the background pollers.
// Load errors are returned but do not stop the pollers from starting.
func (s *Session) Start(ctx context.Context) error {
	bg, cancel := context.WithCancel(context.Background())
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.cancel = cancel
	s.bgCtx = bg
	s.mu.Unlock()

	var errs []error
	if err := s.RefreshSchedule(ctx); err != nil {
		errs = append(errs, err)
	}
	if err := s.RefreshResults(ctx); err != nil {
		errs = append(errs, err)
	}
	if latest, ok := s.state.Latest(); ok {
		s.results.Seed(latest.ID)
	}

	s.watchdog.Start(bg)
	s.results.Start(bg)
	s.logger.Info("session started")
	return errors.Join(errs...)
}

// Stop halts every timer and clears session-scoped state. Safe to call more
// than once.
func (s *Session) Stop() {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.bgCtx = context.Background()
	s.mu.Unlock()

	s.jobs.Cancel()
	s.results.Stop()
	s.watchdog.Stop()
	s.countdown.Stop()

	s.watchdog.Reset()
	s.results.Reset()
	s.state.reset()
	s.logger.Info("session stopped")
}

// Close stops the session and ends the server login when the backend holds
// one.
func (s *Session) Close(ctx context.Context) error {
	s.Stop()
	if l, ok := s.backend.(Logouter); ok {
		return l.Logout(ctx)
	}
	return nil
}

// RefreshSchedule re-reads the server settings and restarts the countdown
// from them.
func (s *Session) RefreshSchedule(ctx context.Context) error {
	settings, err := s.backend.Settings(ctx)
	if err != nil {
		return fmt.Errorf("fetch settings: %w", err)
	}
	s.state.setSettings(settings)
	return s.ApplySchedule(schedule.Config{
		LastRunAt:     settings.LatestTestTimestamp,
		IntervalHours: settings.ScheduleHours,
	})
}

// ApplySchedule stores cfg and restarts the countdown from it.
func (s *Session) ApplySchedule(cfg schedule.Config) error {
	s.state.setSchedule(cfg)
	err := s.countdown.Start(cfg)
	s.publish(Event{Kind: EventScheduleChanged, Err: err})
	return err
}

// RefreshResults reloads the result history.
func (s *Session) RefreshResults(ctx context.Context) error {
	results, err := s.backend.Results(ctx)
	if err != nil {
		return fmt.Errorf("fetch results: %w", err)
	}
	s.state.setResults(results)
	s.publish(Event{Kind: EventResultsRefreshed})
	return nil
}

// DeleteResults removes the results with ids on the server and reloads the
// history.
func (s *Session) DeleteResults(ctx context.Context, ids []string) (int, error) {
	n, err := s.backend.DeleteResults(ctx, ids)
	if err != nil {
		return 0, fmt.Errorf("delete results: %w", err)
	}
	s.logger.Info("results deleted", "requested", len(ids), "deleted", n)
	return n, s.RefreshResults(ctx)
}

// RunTest triggers a speed test on serverID (nil uses the configured
// server) and waits for its result. It blocks for up to the poll budget.
func (s *Session) RunTest(ctx context.Context, serverID *int) (Outcome, error) {
	// The baseline must be read before the trigger is sent.
	baseline, err := s.captureBaseline(ctx)
	if err != nil {
		return Outcome{State: JobFailed}, err
	}

	if serverID == nil {
		serverID = s.state.Settings().SelectedServerID
	}
	lang := s.catalog.Language()

	s.publish(Event{Kind: EventJobStarted})
	out, err := s.jobs.Run(ctx,
		func(ctx context.Context) error {
			return s.backend.TriggerTest(ctx, serverID, lang)
		},
		s.fetchLatest,
		baseline,
	)
	if IsCancelled(err) {
		return out, err
	}
	if out.State.Terminal() {
		s.state.setLastJob(out)
	}

	if out.State == JobCompleted && out.Result != nil {
		s.results.Seed(out.Result.ID)
		s.applyResult(ctx, *out.Result)
	}
	return out, err
}

// SetSchedule changes the test interval on the server and restarts the
// countdown. Zero disables scheduled tests.
func (s *Session) SetSchedule(ctx context.Context, hours int) error {
	upd := api.UpdateFrom(s.state.Settings())
	upd.ScheduleHours = &hours
	return s.SaveSettings(ctx, upd)
}

// SaveSettings persists upd and reloads the schedule from the server.
func (s *Session) SaveSettings(ctx context.Context, upd api.SettingsUpdate) error {
	if err := s.backend.UpdateSettings(ctx, upd); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return s.RefreshSchedule(ctx)
}

// SetLanguage switches the display language. Running timers pick it up on
// their next tick.
func (s *Session) SetLanguage(lang string) {
	s.catalog.SetLanguage(lang)
}

// Subscribe returns a channel that receives session events. Slow readers
// miss events rather than blocking the engine.
func (s *Session) Subscribe() <-chan Event {
	ch := make(chan Event, 16)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribers = append(s.subscribers, ch)
	return ch
}

func (s *Session) publish(ev Event) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, ch := range s.subscribers {
		select {
		case ch <- ev:
		default:
		}
	}
}

func (s *Session) captureBaseline(ctx context.Context) (time.Time, error) {
	latest, err := s.fetchLatest(ctx)
	if err != nil {
		cached, ok := s.state.Latest()
		if !ok {
			s.logger.Warn("no baseline available, any result will complete the test", "error", err)
			return time.Time{}, nil
		}
		latest = &cached
	}
	if latest == nil {
		return time.Time{}, nil
	}
	ts, err := schedule.ParseNaiveLocal(latest.Timestamp)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %w", ErrClockParse, err)
	}
	return ts, nil
}

// applyResult moves the schedule baseline to r and reloads the history.
func (s *Session) applyResult(ctx context.Context, r LatestResult) {
	s.state.setLatest(r)
	cfg := s.state.Schedule()
	cfg.LastRunAt = r.Timestamp
	if err := s.ApplySchedule(cfg); err != nil {
		s.logger.Warn("cannot restart countdown", "error", err)
	}
	if err := s.RefreshResults(ctx); err != nil {
		s.logger.Warn("cannot refresh results", "error", err)
	}
}

func (s *Session) handleNewResult(r LatestResult) {
	s.mu.RLock()
	ctx := s.bgCtx
	s.mu.RUnlock()
	s.applyResult(ctx, r)
}

func (s *Session) fetchLatest(ctx context.Context) (*LatestResult, error) {
	r, err := s.backend.LatestResult(ctx)
	if err != nil {
		return nil, err
	}
	return latestFromAPI(r), nil
}

func (s *Session) fetchWatchdog(ctx context.Context) (WatchdogSnapshot, error) {
	st, err := s.backend.WatchdogStatus(ctx)
	if err != nil {
		return WatchdogSnapshot{}, err
	}
	return snapshotFromAPI(st), nil
}

// sessionEvents republishes engine events to Session subscribers.
type sessionEvents struct {
	s *Session
}

func (e sessionEvents) WatchdogTransition(online bool, target string) {
	snap, _ := e.s.watchdog.Snapshot()
	e.s.publish(Event{Kind: EventWatchdog, Watchdog: &snap})
}

func (e sessionEvents) JobOutcome(o Outcome) {
	e.s.publish(Event{Kind: EventJobOutcome, Outcome: &o})
}

func (e sessionEvents) NewResult(r LatestResult) {
	e.s.publish(Event{Kind: EventNewResult, Result: &r})
}
