package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/tonhe/speedlog/internal/notify"
	"github.com/tonhe/speedlog/tui/styles"
)

// RenderToasts stacks the active toasts right-aligned, newest at the bottom.
// It returns "" when there is nothing to show.
func RenderToasts(sty *styles.Styles, toasts []notify.Toast, width int) string {
	if len(toasts) == 0 {
		return ""
	}
	lines := make([]string, 0, len(toasts))
	for _, t := range toasts {
		st := sty.ToastInfo
		switch t.Level {
		case notify.LevelSuccess:
			st = sty.ToastSuccess
		case notify.LevelWarning:
			st = sty.ToastWarning
		case notify.LevelError:
			st = sty.ToastError
		}
		msg := t.Message
		if max := width - 4; max > 0 && lipgloss.Width(msg) > max {
			msg = string([]rune(msg)[:max-1]) + "…"
		}
		lines = append(lines, lipgloss.PlaceHorizontal(width, lipgloss.Right, st.Render(msg)))
	}
	return strings.Join(lines, "\n")
}
