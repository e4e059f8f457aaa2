package schedule

import "time"

// LabelKind classifies the "next test" line shown next to the countdown.
type LabelKind int

const (
	LabelDisabled LabelKind = iota
	LabelAfterFirst
	LabelSoon
	LabelAt
	LabelError
)

// soonThreshold is how close to the boundary the label switches to "soon".
const soonThreshold = 10 * time.Second

// NextRun classifies the next scheduled run for display. The returned time is
// only meaningful for LabelAt.
func NextRun(cfg Config, now time.Time) (LabelKind, time.Time) {
	if !cfg.Enabled() {
		return LabelDisabled, time.Time{}
	}
	if cfg.LastRunAt == "" {
		return LabelAfterFirst, time.Time{}
	}
	last, err := ParseNaiveLocal(cfg.LastRunAt)
	if err != nil {
		return LabelError, time.Time{}
	}
	next, ok := NextDueAt(last, cfg.IntervalHours, now)
	if !ok {
		return LabelAfterFirst, time.Time{}
	}
	if Remaining(next, now) <= soonThreshold {
		return LabelSoon, next
	}
	return LabelAt, next
}
