// Package notify turns engine events into short-lived, non-blocking toasts.
package notify

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/tonhe/speedlog/internal/api"
	"github.com/tonhe/speedlog/internal/engine"
	"github.com/tonhe/speedlog/internal/i18n"
)

// DefaultTTL is how long a toast stays on screen.
const DefaultTTL = 3 * time.Second

// Level is the severity of a toast.
type Level int

const (
	LevelInfo Level = iota
	LevelSuccess
	LevelWarning
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelSuccess:
		return "success"
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

// Toast is one notice.
type Toast struct {
	ID      int
	Level   Level
	Message string
	At      time.Time
}

// Toaster collects toasts, expires them after a TTL and keeps a bounded
// history. It implements engine.Bridge.
type Toaster struct {
	clock   clockwork.Clock
	catalog *i18n.Catalog
	ttl     time.Duration
	logger  *slog.Logger
	unit    atomic.Value // engine.Unit

	mu          sync.Mutex
	nextID      int
	active      []Toast
	history     *engine.RingBuffer[Toast]
	subscribers []chan Toast
}

// NewToaster creates a Toaster with a 50-entry history.
func NewToaster(clock clockwork.Clock, catalog *i18n.Catalog, logger *slog.Logger) *Toaster {
	if logger == nil {
		logger = slog.Default()
	}
	t := &Toaster{
		clock:   clock,
		catalog: catalog,
		ttl:     DefaultTTL,
		logger:  logger.With("component", "toast"),
		history: engine.NewRingBuffer[Toast](50),
	}
	t.unit.Store(engine.UnitMbps)
	return t
}

// SetUnit sets the unit used when a toast mentions a speed.
func (t *Toaster) SetUnit(u engine.Unit) {
	t.unit.Store(u)
}

// Push adds a toast and notifies subscribers without blocking.
func (t *Toaster) Push(level Level, msg string) Toast {
	t.mu.Lock()
	t.nextID++
	toast := Toast{ID: t.nextID, Level: level, Message: msg, At: t.clock.Now()}
	t.active = append(t.active, toast)
	t.history.Add(toast)
	subs := t.subscribers
	t.mu.Unlock()

	t.logger.Info(msg, "level", level.String())
	for _, ch := range subs {
		select {
		case ch <- toast:
		default:
		}
	}
	return toast
}

// Active returns the toasts that have not expired, oldest first.
func (t *Toaster) Active() []Toast {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.clock.Now()
	kept := t.active[:0]
	for _, toast := range t.active {
		if now.Sub(toast.At) < t.ttl {
			kept = append(kept, toast)
		}
	}
	t.active = kept
	return append([]Toast(nil), kept...)
}

// History returns up to the last n toasts, oldest first.
func (t *Toaster) History(n int) []Toast {
	return t.history.Recent(n)
}

// Subscribe returns a channel that receives every new toast.
func (t *Toaster) Subscribe() <-chan Toast {
	ch := make(chan Toast, 8)
	t.mu.Lock()
	defer t.mu.Unlock()
	t.subscribers = append(t.subscribers, ch)
	return ch
}

// WatchdogTransition implements engine.Bridge.
func (t *Toaster) WatchdogTransition(online bool, target string) {
	if online {
		t.Push(LevelSuccess, fmt.Sprintf(t.catalog.T(i18n.WatchdogUpBody), target))
		return
	}
	t.Push(LevelError, fmt.Sprintf(t.catalog.T(i18n.WatchdogDownBody), target))
}

// JobOutcome implements engine.Bridge.
func (t *Toaster) JobOutcome(o engine.Outcome) {
	switch o.State {
	case engine.JobCompleted:
		msg := t.catalog.T(i18n.ToastTestComplete)
		if o.Result != nil {
			msg += ": " + t.speeds(*o.Result)
		}
		t.Push(LevelSuccess, msg)
	case engine.JobTimedOut:
		t.Push(LevelWarning, t.catalog.T(i18n.ToastTestTimeout))
	case engine.JobFailed:
		if errors.Is(o.Err, api.ErrTestRunning) {
			t.Push(LevelWarning, t.catalog.T(i18n.ToastTestBusy))
			return
		}
		t.Push(LevelError, t.catalog.T(i18n.ToastTestError))
	}
}

// NewResult implements engine.Bridge.
func (t *Toaster) NewResult(r engine.LatestResult) {
	t.Push(LevelInfo, t.catalog.T(i18n.ToastNewResult)+" "+t.speeds(r))
}

func (t *Toaster) speeds(r engine.LatestResult) string {
	u, _ := t.unit.Load().(engine.Unit)
	return fmt.Sprintf("↓ %s  ↑ %s", engine.FormatSpeed(r.Download, u), engine.FormatSpeed(r.Upload, u))
}
