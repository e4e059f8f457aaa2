package engine

import (
	"math"
	"time"

	"github.com/tonhe/speedlog/internal/api"
)

// JobState is the lifecycle state of a manual-test poll session.
type JobState int

const (
	JobIdle JobState = iota
	JobRunning
	JobCompleted
	JobTimedOut
	JobFailed
)

func (s JobState) String() string {
	switch s {
	case JobIdle:
		return "idle"
	case JobRunning:
		return "running"
	case JobCompleted:
		return "completed"
	case JobTimedOut:
		return "timed out"
	case JobFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether s ends a session.
func (s JobState) Terminal() bool {
	return s == JobCompleted || s == JobTimedOut || s == JobFailed
}

// PollSession describes one trigger-then-wait cycle.
type PollSession struct {
	ID          string
	Baseline    time.Time // zero when no result existed before the trigger
	Attempts    int
	MaxAttempts int
	Interval    time.Duration
	State       JobState
	StartedAt   time.Time
}

// Outcome is the terminal result of a PollSession.
type Outcome struct {
	SessionID string
	State     JobState
	Attempts  int
	// Timestamp is the new result's naive-local time, set for JobCompleted.
	Timestamp time.Time
	Result    *LatestResult
	// Err is set for JobFailed and JobTimedOut.
	Err error
}

// LatestResult identifies the most recent completed speed test.
type LatestResult struct {
	ID         string
	Timestamp  string
	Download   float64
	Upload     float64
	Ping       float64
	ServerName string
}

func latestFromAPI(r *api.Result) *LatestResult {
	if r == nil {
		return nil
	}
	return &LatestResult{
		ID:         r.ID,
		Timestamp:  r.Timestamp,
		Download:   r.Download,
		Upload:     r.Upload,
		Ping:       r.Ping,
		ServerName: r.ServerName,
	}
}

// HistoryPoint is one watchdog latency sample, most recent last.
type HistoryPoint struct {
	Time      string
	LatencyMs *float64
}

// WatchdogSnapshot is one reading of the ping watchdog.
type WatchdogSnapshot struct {
	// Known is false until the backend has completed its first ping; Online
	// is meaningless until then.
	Known       bool
	Online      bool
	Target      string
	LatencyMs   *float64
	LossPercent float64
	Updated     string
	History     []HistoryPoint
	FetchedAt   time.Time
}

// Latencies returns the history latencies. Lost pings are NaN.
func (s WatchdogSnapshot) Latencies() []float64 {
	out := make([]float64, len(s.History))
	for i, h := range s.History {
		out[i] = math.NaN()
		if h.LatencyMs != nil {
			out[i] = *h.LatencyMs
		}
	}
	return out
}

func snapshotFromAPI(st api.WatchdogStatus) WatchdogSnapshot {
	snap := WatchdogSnapshot{
		Target:      st.Current.Target,
		LatencyMs:   st.Current.Latency,
		LossPercent: st.Current.Loss,
		Updated:     st.Current.Updated,
	}
	if st.Current.Online != nil {
		snap.Known = true
		snap.Online = *st.Current.Online
	}
	for _, h := range st.History {
		snap.History = append(snap.History, HistoryPoint{Time: h.Time, LatencyMs: h.Latency})
	}
	return snap
}

// Transition records an online/offline edge seen by the watchdog.
type Transition struct {
	At     time.Time
	Online bool
	Target string
}

// EventKind identifies what changed in a Session.
type EventKind int

const (
	EventScheduleChanged EventKind = iota
	EventJobStarted
	EventJobOutcome
	EventWatchdog
	EventNewResult
	EventResultsRefreshed
)

// Event is emitted to Session subscribers.
type Event struct {
	Kind     EventKind
	Outcome  *Outcome
	Watchdog *WatchdogSnapshot
	Result   *LatestResult
	Err      error
}
