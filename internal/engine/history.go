package engine

import (
	"fmt"
	"strings"
	"time"

	"github.com/tonhe/speedlog/internal/api"
	"github.com/tonhe/speedlog/internal/schedule"
)

// HistoryRange is how far back the dashboard shows results.
type HistoryRange string

const (
	RangeDay   HistoryRange = "24h"
	RangeWeek  HistoryRange = "7d"
	RangeMonth HistoryRange = "30d"
	RangeAll   HistoryRange = "all"
)

var historyRanges = []HistoryRange{RangeDay, RangeWeek, RangeMonth, RangeAll}

// ParseHistoryRange accepts 24h, 7d, 30d or all. Empty means 24h.
func ParseHistoryRange(s string) (HistoryRange, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return RangeDay, nil
	}
	for _, r := range historyRanges {
		if string(r) == s {
			return r, nil
		}
	}
	return "", fmt.Errorf("unknown history range %q (want 24h, 7d, 30d or all)", s)
}

// Window returns the span covered by r, or zero for RangeAll.
func (r HistoryRange) Window() time.Duration {
	switch r {
	case RangeDay:
		return 24 * time.Hour
	case RangeWeek:
		return 7 * 24 * time.Hour
	case RangeMonth:
		return 30 * 24 * time.Hour
	}
	return 0
}

// Next cycles 24h, 7d, 30d, all and back.
func (r HistoryRange) Next() HistoryRange {
	for i, x := range historyRanges {
		if x == r {
			return historyRanges[(i+1)%len(historyRanges)]
		}
	}
	return RangeDay
}

// FilterResults keeps the results taken after now minus the range window.
// Order is preserved. With RangeAll the input is returned as is; otherwise
// results whose timestamp cannot be read are left out.
func FilterResults(results []api.Result, r HistoryRange, now time.Time) []api.Result {
	window := r.Window()
	if window == 0 {
		return results
	}
	cutoff := now.Add(-window)
	out := make([]api.Result, 0, len(results))
	for _, res := range results {
		ts, err := schedule.ParseNaiveLocal(res.Timestamp)
		if err != nil || ts.IsZero() {
			continue
		}
		if ts.After(cutoff) {
			out = append(out, res)
		}
	}
	return out
}
