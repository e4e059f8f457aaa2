package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/tonhe/speedlog/internal/i18n"
	"github.com/tonhe/speedlog/tui/styles"
)

// RenderStatusBar renders the two-line footer: countdown and next-run label
// on top, key bindings below. An empty countdown hides that segment.
func RenderStatusBar(theme styles.Theme, cat *i18n.Catalog, countdown, nextRun, lastJob string, width int) string {
	bg := theme.Base01
	bgStyle := lipgloss.NewStyle().Background(bg)
	sep := lipgloss.NewStyle().Foreground(theme.Base03).Background(bg).Render(" | ")

	var segs []string
	if countdown != "" {
		segs = append(segs, lipgloss.NewStyle().Foreground(theme.Base0E).Background(bg).Bold(true).Render(countdown))
	}
	segs = append(segs, lipgloss.NewStyle().Foreground(theme.Base05).Background(bg).Render(nextRun))
	if lastJob != "" {
		segs = append(segs, lipgloss.NewStyle().Foreground(theme.Base04).Background(bg).Render(cat.T(i18n.LastTest)+": "+lastJob))
	}

	topContent := bgStyle.Render(" ") + strings.Join(segs, sep)
	if w := lipgloss.Width(topContent); w < width {
		topContent += bgStyle.Render(strings.Repeat(" ", width-w))
	}

	keyStyle := lipgloss.NewStyle().Foreground(theme.Base0D).Background(bg).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(theme.Base04).Background(bg)
	spacer := bgStyle.Render("  ")

	hints := []struct{ key, desc string }{
		{"t", i18n.HintRunTest},
		{"w", i18n.HintWatchdog},
		{"s", i18n.HintSettings},
		{"r", i18n.HintRefresh},
		{"?", i18n.HintHelp},
		{"q", i18n.HintQuit},
	}
	keys := bgStyle.Render(" ")
	for i, h := range hints {
		if i > 0 {
			keys += spacer
		}
		keys += keyStyle.Render(h.key) + descStyle.Render(":"+cat.T(h.desc))
	}

	if w := lipgloss.Width(keys); w < width {
		keys += bgStyle.Render(strings.Repeat(" ", width-w))
	}

	return lipgloss.JoinVertical(lipgloss.Left, topContent, keys)
}
