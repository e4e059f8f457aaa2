package components

import "testing"

func TestSparkline(t *testing.T) {
	data := []float64{0, 25, 50, 75, 100, 50, 25, 0}
	result := Sparkline(data, 8)
	if len([]rune(result)) != 8 {
		t.Errorf("expected 8 chars, got %d", len([]rune(result)))
	}
}

func TestSparklineEmpty(t *testing.T) {
	result := Sparkline(nil, 8)
	if result != "        " {
		t.Errorf("expected 8 spaces for empty data, got %q", result)
	}
}

func TestSparklineTrimsToWidth(t *testing.T) {
	result := Sparkline([]float64{1, 2, 3, 4, 5, 6}, 4)
	if len([]rune(result)) != 4 {
		t.Errorf("expected 4 chars, got %d", len([]rune(result)))
	}
	if []rune(result)[3] != blocks[len(blocks)-1] {
		t.Errorf("expected newest sample at full height, got %q", result)
	}
}

func TestFormatCompact(t *testing.T) {
	tests := []struct {
		v        float64
		expected string
	}{
		{0, "0"},
		{12.34, "12.3"},
		{940, "940"},
		{1500, "1.5k"},
		{25_000, "25k"},
		{2_500_000, "2.5M"},
	}
	for _, tt := range tests {
		got := FormatCompact(tt.v)
		if got != tt.expected {
			t.Errorf("FormatCompact(%f) = %q, want %q", tt.v, got, tt.expected)
		}
	}
}

func TestSparklineFlatSeries(t *testing.T) {
	if got := Sparkline([]float64{300, 300, 300}, 3); got != "███" {
		t.Errorf("expected full bars for a steady series, got %q", got)
	}
	if got := Sparkline([]float64{0, 0}, 2); got != "▁▁" {
		t.Errorf("expected floor bars for zeros, got %q", got)
	}
}
