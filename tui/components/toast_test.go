package components

import (
	"strings"
	"testing"

	"github.com/tonhe/speedlog/internal/notify"
	"github.com/tonhe/speedlog/tui/styles"
)

func TestRenderToasts(t *testing.T) {
	sty := styles.NewStyles(styles.DefaultTheme)
	if got := RenderToasts(sty, nil, 40); got != "" {
		t.Errorf("expected empty output, got %q", got)
	}

	out := RenderToasts(sty, []notify.Toast{
		{Level: notify.LevelSuccess, Message: "done"},
		{Level: notify.LevelError, Message: "failed"},
	}, 40)
	lines := strings.Split(out, "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if !strings.Contains(lines[1], "failed") {
		t.Errorf("expected newest toast last, got %q", lines[1])
	}
}
