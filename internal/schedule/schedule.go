package schedule

import (
	"fmt"
	"time"
)

// Config is the server-side schedule as seen by the client.
type Config struct {
	// LastRunAt is the raw naive-local timestamp of the most recent test,
	// empty when no test has ever run.
	LastRunAt     string
	IntervalHours int
}

// Enabled reports whether the schedule produces due times at all.
func (c Config) Enabled() bool {
	return c.IntervalHours > 0
}

// Interval returns the schedule period as a duration.
func (c Config) Interval() time.Duration {
	return time.Duration(c.IntervalHours) * time.Hour
}

// NextDueAt returns the next schedule boundary strictly after the last full
// cycle that has elapsed since lastRunAt. It returns false when the schedule
// is disabled or there is no baseline yet.
//
// Missed cycles are skipped: with lastRunAt=T, a 1h interval and now=T+2h15m
// the result is T+3h, never T+1h.
func NextDueAt(lastRunAt time.Time, intervalHours int, now time.Time) (time.Time, bool) {
	if intervalHours <= 0 || lastRunAt.IsZero() {
		return time.Time{}, false
	}
	interval := time.Duration(intervalHours) * time.Hour

	elapsed := now.Sub(lastRunAt)
	if elapsed < 0 {
		elapsed = 0
	}
	cycles := elapsed / interval

	return lastRunAt.Add((cycles + 1) * interval), true
}

// Remaining returns the time left until next, floored at zero.
func Remaining(next, now time.Time) time.Duration {
	d := next.Sub(now)
	if d < 0 {
		return 0
	}
	return d
}

// FormatCountdown renders d as HH:MM:SS. Hours are not wrapped into days,
// so 30h renders as "30:00:00".
func FormatCountdown(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int64(d / time.Second)
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
