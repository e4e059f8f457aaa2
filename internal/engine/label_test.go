package engine

import (
	"testing"
	"time"

	"github.com/tonhe/speedlog/internal/i18n"
	"github.com/tonhe/speedlog/internal/schedule"
)

func TestNextRunText(t *testing.T) {
	cat := i18n.NewCatalog("en")
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.Local)

	tests := []struct {
		name string
		cfg  schedule.Config
		want string
	}{
		{"disabled", schedule.Config{IntervalHours: 0, LastRunAt: "2024-05-01 11:00:00"}, "schedule disabled"},
		{"no baseline", schedule.Config{IntervalHours: 3}, "after the first test"},
		{"garbage", schedule.Config{IntervalHours: 3, LastRunAt: "garbage"}, "calculation error"},
		{"soon", schedule.Config{IntervalHours: 1, LastRunAt: "2024-05-01 11:00:05"}, "any moment now"},
		{"same day", schedule.Config{IntervalHours: 3, LastRunAt: "2024-05-01 11:00:00"}, "next test: 14:00"},
		{"next day", schedule.Config{IntervalHours: 24, LastRunAt: "2024-05-01 11:00:00"}, "next test: 2024-05-02 11:00"},
	}
	for _, tt := range tests {
		if got := NextRunText(cat, tt.cfg, now); got != tt.want {
			t.Errorf("%s: expected %q, got %q", tt.name, tt.want, got)
		}
	}
}

func TestNextRunTextFollowsLanguage(t *testing.T) {
	cat := i18n.NewCatalog("pl")
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.Local)
	if got := NextRunText(cat, schedule.Config{IntervalHours: 3}, now); got != "po pierwszym teście" {
		t.Errorf("expected Polish label, got %q", got)
	}
}
