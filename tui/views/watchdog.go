package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tonhe/speedlog/internal/engine"
	"github.com/tonhe/speedlog/internal/i18n"
	"github.com/tonhe/speedlog/tui/components"
	"github.com/tonhe/speedlog/tui/keys"
	"github.com/tonhe/speedlog/tui/styles"
)

// WatchdogView is the ping watchdog popover: the current reading on top and
// the latency history chart below.
type WatchdogView struct {
	theme       styles.Theme
	sty         *styles.Styles
	catalog     *i18n.Catalog
	snap        *engine.WatchdogSnapshot
	transitions []engine.Transition
	failedPolls int
	width       int
	height      int
}

// NewWatchdogView creates a new WatchdogView with the given theme.
func NewWatchdogView(theme styles.Theme, catalog *i18n.Catalog) WatchdogView {
	return WatchdogView{
		theme:   theme,
		sty:     styles.NewStyles(theme),
		catalog: catalog,
	}
}

// SetSnapshot updates the view with a new reading.
func (v *WatchdogView) SetSnapshot(snap engine.WatchdogSnapshot) {
	v.snap = &snap
}

// SetTransitions sets the recent online/offline edges, oldest first.
func (v *WatchdogView) SetTransitions(t []engine.Transition) {
	v.transitions = t
}

// SetFailedPolls sets how many watchdog fetches failed this session.
func (v *WatchdogView) SetFailedPolls(n int) {
	v.failedPolls = n
}

// SetSize updates the available dimensions for the view.
func (v *WatchdogView) SetSize(width, height int) {
	v.width = width
	v.height = height
}

// Update handles key messages. The third return value reports whether the
// user wants to go back.
func (v WatchdogView) Update(msg tea.Msg) (WatchdogView, tea.Cmd, bool) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if key.Matches(msg, keys.DefaultKeyMap.Escape) || key.Matches(msg, keys.DefaultKeyMap.Watchdog) {
			return v, nil, true
		}
	}
	return v, nil, false
}

// View renders the watchdog popover.
func (v WatchdogView) View() string {
	if v.snap == nil {
		msg := lipgloss.NewStyle().
			Foreground(v.theme.Base04).
			Render(v.catalog.T(i18n.WatchdogNoData))
		return lipgloss.Place(v.width, v.height, lipgloss.Center, lipgloss.Center, msg)
	}

	info := v.renderInfoPanel()
	infoHeight := lipgloss.Height(info)

	chartHeight := v.height - infoHeight - 3
	if chartHeight < 6 {
		chartHeight = 6
	}
	chartWidth := v.width - 4
	if chartWidth < 20 {
		chartWidth = 20
	}
	chart := components.RenderChart(v.snap.Latencies(), chartWidth, chartHeight,
		v.catalog.T(i18n.WatchdogLatency)+" (ms)", nil)
	chartStyled := lipgloss.NewStyle().
		Foreground(v.theme.Base0C).
		PaddingLeft(2).
		Render(chart)

	return lipgloss.JoinVertical(lipgloss.Left, info, "", chartStyled, v.renderHelp())
}

func (v WatchdogView) renderInfoPanel() string {
	snap := v.snap
	labelStyle := lipgloss.NewStyle().
		Foreground(v.theme.Base04).
		Width(16)
	valueStyle := lipgloss.NewStyle().
		Foreground(v.theme.Base05)
	titleStyle := lipgloss.NewStyle().
		Foreground(v.theme.Base0D).
		Bold(true)

	status := v.sty.StatusWarn.Render("--")
	if snap.Known {
		if snap.Online {
			status = v.sty.StatusUp.Render(v.catalog.T(i18n.WatchdogOnline))
		} else {
			status = v.sty.StatusDown.Render(v.catalog.T(i18n.WatchdogOffline))
		}
	}

	latency := "--"
	if snap.LatencyMs != nil {
		latency = fmt.Sprintf("%.1f ms", *snap.LatencyMs)
	}

	lossStyle := v.sty.StatusUp
	switch {
	case snap.LossPercent >= 20:
		lossStyle = v.sty.StatusDown
	case snap.LossPercent > 0:
		lossStyle = v.sty.StatusWarn
	}

	row := func(label, val string) string {
		return fmt.Sprintf("  %s%s", labelStyle.Render(label+":"), val)
	}

	rows := []string{
		"",
		"  " + titleStyle.Render(v.catalog.T(i18n.WatchdogTitle)) + "  " + status,
		"",
		row(v.catalog.T(i18n.WatchdogTarget), titleStyle.Render(snap.Target)),
		row(v.catalog.T(i18n.WatchdogLatency), valueStyle.Render(latency)),
		row(v.catalog.T(i18n.WatchdogLoss), lossStyle.Render(fmt.Sprintf("%.1f%%", snap.LossPercent))),
		row(v.catalog.T(i18n.WatchdogUpdated), valueStyle.Render(snap.Updated)),
	}
	if v.failedPolls > 0 {
		rows = append(rows, row(v.catalog.T(i18n.WatchdogFailedPolls), v.sty.StatusWarn.Render(fmt.Sprintf("%d", v.failedPolls))))
	}

	if len(v.transitions) > 0 {
		rows = append(rows, "")
		start := 0
		if len(v.transitions) > 3 {
			start = len(v.transitions) - 3
		}
		for _, t := range v.transitions[start:] {
			word := v.sty.StatusDown.Render(v.catalog.T(i18n.WatchdogOffline))
			if t.Online {
				word = v.sty.StatusUp.Render(v.catalog.T(i18n.WatchdogOnline))
			}
			rows = append(rows, fmt.Sprintf("  %s  %s",
				v.sty.TableCellDim.Render(t.At.Format("15:04:05")), word))
		}
	}

	return strings.Join(rows, "\n")
}

func (v WatchdogView) renderHelp() string {
	helpStyle := lipgloss.NewStyle().Foreground(v.theme.Base04)
	keyStyle := lipgloss.NewStyle().Foreground(v.theme.Base0D).Bold(true)
	return helpStyle.Render(fmt.Sprintf("  %s %s", keyStyle.Render("[esc]"), v.catalog.T(i18n.HintBack)))
}
