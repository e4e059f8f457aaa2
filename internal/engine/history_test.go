package engine

import (
	"testing"
	"time"

	"github.com/tonhe/speedlog/internal/api"
)

func TestParseHistoryRange(t *testing.T) {
	tests := []struct {
		in       string
		expected HistoryRange
	}{
		{"", RangeDay},
		{"24h", RangeDay},
		{"7D", RangeWeek},
		{" 30d ", RangeMonth},
		{"all", RangeAll},
	}
	for _, tt := range tests {
		got, err := ParseHistoryRange(tt.in)
		if err != nil {
			t.Errorf("ParseHistoryRange(%q) error: %v", tt.in, err)
			continue
		}
		if got != tt.expected {
			t.Errorf("ParseHistoryRange(%q) = %q, want %q", tt.in, got, tt.expected)
		}
	}
	if _, err := ParseHistoryRange("1y"); err == nil {
		t.Error("expected error for unknown range")
	}
}

func TestHistoryRangeNextCycles(t *testing.T) {
	r := RangeDay
	var seen []HistoryRange
	for i := 0; i < 4; i++ {
		r = r.Next()
		seen = append(seen, r)
	}
	want := []HistoryRange{RangeWeek, RangeMonth, RangeAll, RangeDay}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("expected cycle %v, got %v", want, seen)
		}
	}
}

func TestFilterResults(t *testing.T) {
	now := time.Date(2024, 1, 10, 12, 0, 0, 0, time.Local)
	results := []api.Result{
		{ID: "a", Timestamp: "2024-01-10 11:00:00"},
		{ID: "b", Timestamp: "2024-01-09 11:00:00"},
		{ID: "c", Timestamp: "2024-01-05 12:00:00"},
		{ID: "d", Timestamp: "2023-12-01 12:00:00"},
		{ID: "e", Timestamp: "garbage"},
	}

	tests := []struct {
		r    HistoryRange
		want string
	}{
		{RangeDay, "a"},
		{RangeWeek, "abc"},
		{RangeMonth, "abc"},
		{RangeAll, "abcde"},
	}
	for _, tt := range tests {
		got := ""
		for _, res := range FilterResults(results, tt.r, now) {
			got += res.ID
		}
		if got != tt.want {
			t.Errorf("%s: expected %q, got %q", tt.r, tt.want, got)
		}
	}
}

func TestFilterResultsCutoffIsExclusive(t *testing.T) {
	now := time.Date(2024, 1, 10, 12, 0, 0, 0, time.Local)
	results := []api.Result{{ID: "edge", Timestamp: "2024-01-09 12:00:00"}}
	if got := FilterResults(results, RangeDay, now); len(got) != 0 {
		t.Errorf("expected result exactly 24h old to be excluded, got %v", got)
	}
}
