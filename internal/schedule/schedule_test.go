package schedule

import (
	"errors"
	"testing"
	"time"
)

func TestNextDueAtDisabled(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.Local)
	for _, last := range []time.Time{{}, now.Add(-time.Hour), now, now.Add(5 * time.Hour)} {
		if _, ok := NextDueAt(last, 0, now); ok {
			t.Errorf("expected no due time for interval 0 and lastRunAt %v", last)
		}
	}
}

func TestNextDueAtNoBaseline(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.Local)
	for _, hours := range []int{1, 3, 6, 24} {
		if _, ok := NextDueAt(time.Time{}, hours, now); ok {
			t.Errorf("expected no due time without baseline for interval %dh", hours)
		}
	}
}

func TestNextDueAtSkipsMissedCycles(t *testing.T) {
	last := time.Date(2024, 1, 1, 10, 0, 0, 0, time.Local)
	now := last.Add(2*time.Hour + 15*time.Minute)

	next, ok := NextDueAt(last, 1, now)
	if !ok {
		t.Fatal("expected a due time")
	}
	if want := last.Add(3 * time.Hour); !next.Equal(want) {
		t.Errorf("expected %v, got %v", want, next)
	}
}

func TestNextDueAtClockSkew(t *testing.T) {
	last := time.Date(2024, 1, 1, 10, 0, 0, 0, time.Local)
	now := last.Add(-10 * time.Minute)

	next, ok := NextDueAt(last, 2, now)
	if !ok {
		t.Fatal("expected a due time")
	}
	if want := last.Add(2 * time.Hour); !next.Equal(want) {
		t.Errorf("expected %v, got %v", want, next)
	}
}

func TestNextDueAtExactBoundary(t *testing.T) {
	last := time.Date(2024, 1, 1, 10, 0, 0, 0, time.Local)
	now := last.Add(3 * time.Hour)

	next, _ := NextDueAt(last, 3, now)
	if want := last.Add(6 * time.Hour); !next.Equal(want) {
		t.Errorf("expected %v, got %v", want, next)
	}
}

func TestRemainingNonNegative(t *testing.T) {
	base := time.Date(2024, 1, 1, 10, 0, 0, 0, time.Local)
	offsets := []time.Duration{-48 * time.Hour, -time.Second, 0, time.Second, 30 * time.Hour}
	for _, off := range offsets {
		if got := Remaining(base, base.Add(off)); got < 0 {
			t.Errorf("Remaining with offset %v = %v, want >= 0", off, got)
		}
	}
	if got := Remaining(base, base.Add(time.Minute)); got != 0 {
		t.Errorf("expected 0 past the boundary, got %v", got)
	}
}

func TestFormatCountdown(t *testing.T) {
	tests := []struct {
		d        time.Duration
		expected string
	}{
		{0, "00:00:00"},
		{-5 * time.Second, "00:00:00"},
		{999 * time.Millisecond, "00:00:00"},
		{61 * time.Second, "00:01:01"},
		{2*time.Hour + 55*time.Minute, "02:55:00"},
		{30 * time.Hour, "30:00:00"},
		{100*time.Hour + 59*time.Minute + 59*time.Second, "100:59:59"},
	}
	for _, tt := range tests {
		if got := FormatCountdown(tt.d); got != tt.expected {
			t.Errorf("FormatCountdown(%v) = %q, want %q", tt.d, got, tt.expected)
		}
	}
}

func TestScenarioNaiveLocalCountdown(t *testing.T) {
	last, err := ParseNaiveLocal("2024-01-01 10:00:00")
	if err != nil {
		t.Fatalf("ParseNaiveLocal() error: %v", err)
	}
	now, err := ParseNaiveLocal("2024-01-01 13:05:00")
	if err != nil {
		t.Fatalf("ParseNaiveLocal() error: %v", err)
	}

	next, ok := NextDueAt(last, 3, now)
	if !ok {
		t.Fatal("expected a due time")
	}
	if got := FormatNaiveLocal(next); got != "2024-01-01 16:00:00" {
		t.Errorf("expected next due 2024-01-01 16:00:00, got %s", got)
	}
	if got := FormatCountdown(Remaining(next, now)); got != "02:55:00" {
		t.Errorf("expected countdown 02:55:00, got %s", got)
	}
}

func TestParseNaiveLocal(t *testing.T) {
	want := time.Date(2024, 3, 5, 7, 8, 9, 0, time.Local)
	inputs := []string{
		"2024-03-05 07:08:09",
		"2024-03-05T07:08:09",
		"2024-03-05T07:08:09Z",
		"2024-03-05T07:08:09+02:00",
		"2024-03-05T07:08:09.000-05:30",
	}
	for _, in := range inputs {
		got, err := ParseNaiveLocal(in)
		if err != nil {
			t.Errorf("ParseNaiveLocal(%q) error: %v", in, err)
			continue
		}
		if !got.Equal(want) {
			t.Errorf("ParseNaiveLocal(%q) = %v, want %v", in, got, want)
		}
		if got.Location() != time.Local {
			t.Errorf("ParseNaiveLocal(%q) location = %v, want Local", in, got.Location())
		}
	}
}

func TestParseNaiveLocalKeepsFraction(t *testing.T) {
	tests := []struct {
		in   string
		nsec int
	}{
		{"2024-03-05T07:08:09.123456", 123456000},
		{"2024-03-05 07:08:09.5-05:30", 500000000},
		{"2024-03-05T07:08:09.1234567891Z", 123456789},
	}
	for _, tt := range tests {
		got, err := ParseNaiveLocal(tt.in)
		if err != nil {
			t.Errorf("ParseNaiveLocal(%q) error: %v", tt.in, err)
			continue
		}
		want := time.Date(2024, 3, 5, 7, 8, 9, tt.nsec, time.Local)
		if !got.Equal(want) {
			t.Errorf("ParseNaiveLocal(%q) = %v, want %v", tt.in, got, want)
		}
	}

	early, _ := ParseNaiveLocal("2024-01-01 10:00:00.100000")
	late, _ := ParseNaiveLocal("2024-01-01 10:00:00.900000")
	if !late.After(early) {
		t.Errorf("expected %v after %v", late, early)
	}
}

func TestParseNaiveLocalDateOnly(t *testing.T) {
	got, err := ParseNaiveLocal("2024-03-05")
	if err != nil {
		t.Fatalf("ParseNaiveLocal() error: %v", err)
	}
	if want := time.Date(2024, 3, 5, 0, 0, 0, 0, time.Local); !got.Equal(want) {
		t.Errorf("expected local midnight %v, got %v", want, got)
	}
}

func TestParseNaiveLocalNoSeconds(t *testing.T) {
	got, err := ParseNaiveLocal("2024-03-05 07:08")
	if err != nil {
		t.Fatalf("ParseNaiveLocal() error: %v", err)
	}
	if got.Second() != 0 || got.Minute() != 8 {
		t.Errorf("unexpected time %v", got)
	}
}

func TestParseNaiveLocalEmpty(t *testing.T) {
	got, err := ParseNaiveLocal("  ")
	if err != nil {
		t.Fatalf("expected no error for empty input, got %v", err)
	}
	if !got.IsZero() {
		t.Errorf("expected zero time, got %v", got)
	}
}

func TestParseNaiveLocalInvalid(t *testing.T) {
	for _, in := range []string{"yesterday", "2024-01", "2024-03-05 07", "2024-13-01 10:00:00", "2024-01-01 xx:00:00", "2024-01-01 10:00:00.5x"} {
		if _, err := ParseNaiveLocal(in); !errors.Is(err, ErrInvalidTimestamp) {
			t.Errorf("ParseNaiveLocal(%q) expected ErrInvalidTimestamp, got %v", in, err)
		}
	}
}

func TestNextRunLabel(t *testing.T) {
	now := time.Date(2024, 1, 1, 13, 5, 0, 0, time.Local)
	tests := []struct {
		name string
		cfg  Config
		kind LabelKind
	}{
		{"disabled", Config{LastRunAt: "2024-01-01 10:00:00", IntervalHours: 0}, LabelDisabled},
		{"no baseline", Config{IntervalHours: 1}, LabelAfterFirst},
		{"bad timestamp", Config{LastRunAt: "garbage", IntervalHours: 1}, LabelError},
		{"upcoming", Config{LastRunAt: "2024-01-01 10:00:00", IntervalHours: 3}, LabelAt},
		{"soon", Config{LastRunAt: "2024-01-01 12:05:05", IntervalHours: 1}, LabelSoon},
	}
	for _, tt := range tests {
		kind, _ := NextRun(tt.cfg, now)
		if kind != tt.kind {
			t.Errorf("%s: expected kind %d, got %d", tt.name, tt.kind, kind)
		}
	}
}
