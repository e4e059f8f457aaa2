package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/tonhe/speedlog/tui/styles"
)

// WatchdogBadge is the watchdog state shown in the header.
type WatchdogBadge int

const (
	BadgeUnknown WatchdogBadge = iota
	BadgeOnline
	BadgeOffline
)

// RenderHeader renders the top header bar with app name, server, watchdog
// state and whether a manual test is running.
func RenderHeader(theme styles.Theme, server string, badge WatchdogBadge, badgeText string, testing bool, width int, ver string) string {
	bg := lipgloss.NewStyle().Background(theme.Base01)

	left := bg.Foreground(theme.Download()).Bold(true).Render("speedlog")

	if server == "" {
		server = "(no server)"
	}
	center := bg.Foreground(theme.Base05).Render(server)

	badgeColor := theme.Base03
	switch badge {
	case BadgeOnline:
		badgeColor = theme.Online()
	case BadgeOffline:
		badgeColor = theme.Offline()
	}
	if badgeText == "" {
		badgeText = "--"
	}
	wd := bg.Foreground(badgeColor).Render("ping " + badgeText)

	job := bg.Foreground(theme.Base04).Render("idle")
	if testing {
		job = bg.Foreground(theme.Busy()).Bold(true).Render("TESTING")
	}

	versionSeg := bg.Foreground(theme.Base04).Render("v" + ver)

	content := fmt.Sprintf(" %s  |  %s  |  %s  |  %s  |  %s ", left, center, wd, job, versionSeg)

	return lipgloss.NewStyle().
		Background(theme.Base01).
		Width(width).
		Render(content)
}
