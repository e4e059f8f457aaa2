package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/tonhe/speedlog/internal/schedule"
)

const (
	DefaultJobPollInterval = 3 * time.Second
	DefaultJobMaxAttempts  = 25
)

// TriggerFunc asks the backend to start a job. A nil error only means the
// job was accepted.
type TriggerFunc func(ctx context.Context) error

// PollFunc fetches the latest completed result, or nil if none exists.
type PollFunc func(ctx context.Context) (*LatestResult, error)

// JobPoller triggers a backend job and waits for its result to appear.
// Starting a new session cancels the one in flight.
type JobPoller struct {
	clock       clockwork.Clock
	interval    time.Duration
	maxAttempts int
	bridge      Bridge
	logger      *slog.Logger

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	session *PollSession
}

// NewJobPoller creates an idle poller. Zero interval or attempts use the
// defaults. bridge may be nil.
func NewJobPoller(clock clockwork.Clock, interval time.Duration, maxAttempts int, bridge Bridge, logger *slog.Logger) *JobPoller {
	if interval <= 0 {
		interval = DefaultJobPollInterval
	}
	if maxAttempts <= 0 {
		maxAttempts = DefaultJobMaxAttempts
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &JobPoller{
		clock:       clock,
		interval:    interval,
		maxAttempts: maxAttempts,
		bridge:      bridge,
		logger:      logger.With("component", "jobpoller"),
	}
}

// Run triggers the job and polls until a result newer than baseline shows
// up, the attempt budget runs out, or the session is cancelled. The caller
// must capture baseline before calling Run. A zero baseline means any result
// completes the session.
//
// Failed sessions return ErrTriggerRejected, timed out sessions return
// ErrPollTimeout, and cancelled sessions return context.Canceled without
// emitting an outcome.
func (p *JobPoller) Run(ctx context.Context, trigger TriggerFunc, pollOnce PollFunc, baseline time.Time) (Outcome, error) {
	sess := &PollSession{
		ID:          uuid.NewString(),
		Baseline:    baseline,
		MaxAttempts: p.maxAttempts,
		Interval:    p.interval,
		State:       JobRunning,
		StartedAt:   p.clock.Now(),
	}
	sessCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	defer close(done)
	defer cancel()

	p.mu.Lock()
	prevCancel, prevDone := p.cancel, p.done
	p.cancel, p.done, p.session = cancel, done, sess
	p.mu.Unlock()

	if prevCancel != nil {
		prevCancel()
		<-prevDone
	}

	logger := p.logger.With("session", sess.ID)
	logger.Info("job session started", "baseline", schedule.FormatNaiveLocal(baseline))

	if err := trigger(sessCtx); err != nil {
		if sessCtx.Err() != nil {
			return p.cancelled(sess, logger)
		}
		logger.Warn("trigger rejected", "error", err)
		err = fmt.Errorf("%w: %w", ErrTriggerRejected, err)
		return p.finish(sess, JobFailed, nil, time.Time{}, err), err
	}

	ticker := p.clock.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-sessCtx.Done():
			return p.cancelled(sess, logger)
		case <-ticker.Chan():
		}

		attempt := p.nextAttempt(sess)
		res, err := p.poll(sessCtx, pollOnce)
		if sessCtx.Err() != nil {
			return p.cancelled(sess, logger)
		}

		if err != nil {
			logger.Debug("poll attempt failed", "attempt", attempt, "error", fmt.Errorf("%w: %w", ErrPollTransient, err))
		} else if ts, ok, perr := isNewer(res, baseline); perr != nil {
			logger.Debug("poll attempt skipped", "attempt", attempt, "error", perr)
		} else if ok {
			logger.Info("job completed", "attempt", attempt, "result", res.ID)
			return p.finish(sess, JobCompleted, res, ts, nil), nil
		}

		if attempt >= sess.MaxAttempts {
			logger.Warn("job timed out", "attempts", attempt)
			return p.finish(sess, JobTimedOut, nil, time.Time{}, ErrPollTimeout), ErrPollTimeout
		}
	}
}

// Cancel stops the session in flight, if any. Safe to call at any time.
func (p *JobPoller) Cancel() {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Session returns a copy of the current or most recent session.
func (p *JobPoller) Session() (PollSession, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.session == nil {
		return PollSession{}, false
	}
	return *p.session, true
}

// State returns the state of the current or most recent session.
func (p *JobPoller) State() JobState {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.session == nil {
		return JobIdle
	}
	return p.session.State
}

// Running reports whether a session is in flight.
func (p *JobPoller) Running() bool {
	return p.State() == JobRunning
}

func (p *JobPoller) nextAttempt(sess *PollSession) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	sess.Attempts++
	return sess.Attempts
}

// poll runs pollOnce, turning a panic into an error so it only costs one
// attempt.
func (p *JobPoller) poll(ctx context.Context, pollOnce PollFunc) (res *LatestResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("poll panicked: %v", r)
		}
	}()
	return pollOnce(ctx)
}

func (p *JobPoller) finish(sess *PollSession, state JobState, res *LatestResult, ts time.Time, err error) Outcome {
	p.mu.Lock()
	sess.State = state
	out := Outcome{
		SessionID: sess.ID,
		State:     state,
		Attempts:  sess.Attempts,
		Timestamp: ts,
		Result:    res,
		Err:       err,
	}
	p.mu.Unlock()

	if p.bridge != nil {
		p.bridge.JobOutcome(out)
	}
	return out
}

func (p *JobPoller) cancelled(sess *PollSession, logger *slog.Logger) (Outcome, error) {
	p.mu.Lock()
	sess.State = JobIdle
	attempts := sess.Attempts
	p.mu.Unlock()
	logger.Info("job session cancelled", "attempts", attempts)
	return Outcome{SessionID: sess.ID, State: JobIdle, Attempts: attempts}, context.Canceled
}

// isNewer reports whether res is strictly newer than baseline under the
// naive-local rule.
func isNewer(res *LatestResult, baseline time.Time) (time.Time, bool, error) {
	if res == nil {
		return time.Time{}, false, nil
	}
	ts, err := schedule.ParseNaiveLocal(res.Timestamp)
	if baseline.IsZero() {
		return ts, true, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("%w: %w", ErrClockParse, err)
	}
	if ts.IsZero() {
		return time.Time{}, false, nil
	}
	return ts, ts.After(baseline), nil
}

// IsCancelled reports whether err came from a cancelled session.
func IsCancelled(err error) bool {
	return errors.Is(err, context.Canceled)
}
