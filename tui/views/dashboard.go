package views

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tonhe/speedlog/internal/api"
	"github.com/tonhe/speedlog/internal/engine"
	"github.com/tonhe/speedlog/internal/i18n"
	"github.com/tonhe/speedlog/internal/schedule"
	"github.com/tonhe/speedlog/tui/components"
	"github.com/tonhe/speedlog/tui/keys"
	"github.com/tonhe/speedlog/tui/styles"
)

// Column width constants (minimum widths).
const (
	colMark     = 2
	colTime     = 18
	colSpeed    = 14
	colPing     = 10
	colJitter   = 10
	colServerMn = 12
)

// summaryHeight is the number of lines above the results table.
const summaryHeight = 6

// DashboardAction tells the app what a dashboard key press asked for.
type DashboardAction int

const (
	DashboardNone DashboardAction = iota
	// DashboardRangeChanged means the time range was cycled.
	DashboardRangeChanged
	// DashboardDelete means the user confirmed deleting PendingDelete.
	DashboardDelete
)

// DashboardView shows the latest result, the schedule and the result
// history table.
type DashboardView struct {
	theme    styles.Theme
	sty      *styles.Styles
	catalog  *i18n.Catalog
	all      []api.Result // newest first, unfiltered
	results  []api.Result // all, limited to rng
	settings api.Settings
	unit     engine.Unit
	rng      engine.HistoryRange
	now      func() time.Time
	nextRun  string
	cursor   int
	offset   int
	width    int
	height   int

	marked     map[string]bool
	confirming []string
}

// NewDashboardView creates a new DashboardView with the given theme.
func NewDashboardView(theme styles.Theme, unit engine.Unit, rng engine.HistoryRange, catalog *i18n.Catalog) DashboardView {
	return DashboardView{
		theme:   theme,
		sty:     styles.NewStyles(theme),
		catalog: catalog,
		unit:    unit,
		rng:     rng,
		now:     time.Now,
		marked:  make(map[string]bool),
	}
}

// Update handles key messages for the table. While a delete is waiting for
// confirmation every key answers it: y confirms, anything else cancels.
func (v DashboardView) Update(msg tea.Msg) (DashboardView, tea.Cmd, DashboardAction) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return v, nil, DashboardNone
	}

	if v.confirming != nil {
		confirmed := key.Matches(km, keys.DefaultKeyMap.Confirm)
		if !confirmed {
			v.confirming = nil
			return v, nil, DashboardNone
		}
		return v, nil, DashboardDelete
	}

	switch {
	case key.Matches(km, keys.DefaultKeyMap.Up):
		if v.cursor > 0 {
			v.cursor--
			v.ensureVisible()
		}
	case key.Matches(km, keys.DefaultKeyMap.Down):
		if v.cursor < len(v.results)-1 {
			v.cursor++
			v.ensureVisible()
		}
	case key.Matches(km, keys.DefaultKeyMap.Mark):
		if r, ok := v.Selected(); ok {
			if v.marked[r.ID] {
				delete(v.marked, r.ID)
			} else {
				v.marked[r.ID] = true
			}
			if v.cursor < len(v.results)-1 {
				v.cursor++
				v.ensureVisible()
			}
		}
	case key.Matches(km, keys.DefaultKeyMap.Delete):
		if ids := v.deleteTargets(); len(ids) > 0 {
			v.confirming = ids
		}
	case key.Matches(km, keys.DefaultKeyMap.Filter):
		v.rng = v.rng.Next()
		v.applyFilter()
		return v, nil, DashboardRangeChanged
	}
	return v, nil, DashboardNone
}

// deleteTargets returns the marked IDs in table order, or the row under the
// cursor when nothing is marked.
func (v DashboardView) deleteTargets() []string {
	var ids []string
	for _, r := range v.results {
		if v.marked[r.ID] {
			ids = append(ids, r.ID)
		}
	}
	if len(ids) == 0 {
		if r, ok := v.Selected(); ok {
			ids = []string{r.ID}
		}
	}
	return ids
}

// Confirming reports whether a delete prompt is open.
func (v DashboardView) Confirming() bool {
	return v.confirming != nil
}

// PendingDelete returns the IDs of the confirmed delete.
func (v DashboardView) PendingDelete() []string {
	return v.confirming
}

// ClearDelete closes the prompt and drops the marks of deleted rows.
func (v *DashboardView) ClearDelete() {
	for _, id := range v.confirming {
		delete(v.marked, id)
	}
	v.confirming = nil
}

// Range returns the active time range.
func (v DashboardView) Range() engine.HistoryRange {
	return v.rng
}

// SetResults replaces the history and clamps the cursor.
func (v *DashboardView) SetResults(results []api.Result) {
	v.all = results
	v.applyFilter()
}

func (v *DashboardView) applyFilter() {
	v.results = engine.FilterResults(v.all, v.rng, v.now())

	present := make(map[string]bool, len(v.results))
	for _, r := range v.results {
		present[r.ID] = true
	}
	for id := range v.marked {
		if !present[id] {
			delete(v.marked, id)
		}
	}

	if v.cursor >= len(v.results) {
		v.cursor = len(v.results) - 1
	}
	if v.cursor < 0 {
		v.cursor = 0
	}
	v.ensureVisible()
}

// SetSettings stores the server settings used for declared speeds.
func (v *DashboardView) SetSettings(s api.Settings) {
	v.settings = s
}

// SetUnit switches the throughput unit.
func (v *DashboardView) SetUnit(u engine.Unit) {
	v.unit = u
}

// SetNextRun sets the "next test" line.
func (v *DashboardView) SetNextRun(text string) {
	v.nextRun = text
}

// Selected returns the result under the cursor.
func (v DashboardView) Selected() (api.Result, bool) {
	if v.cursor < 0 || v.cursor >= len(v.results) {
		return api.Result{}, false
	}
	return v.results[v.cursor], true
}

// SetSize updates the available dimensions for the view.
func (v *DashboardView) SetSize(width, height int) {
	v.width = width
	v.height = height
	v.ensureVisible()
}

// View renders the dashboard view.
func (v DashboardView) View() string {
	if len(v.results) == 0 {
		return v.renderEmpty()
	}
	return lipgloss.JoinVertical(lipgloss.Left, v.renderSummary(), v.renderTable())
}

// RangeLabel names r in the catalog's language.
func RangeLabel(cat *i18n.Catalog, r engine.HistoryRange) string {
	switch r {
	case engine.RangeWeek:
		return cat.T(i18n.Filter7d)
	case engine.RangeMonth:
		return cat.T(i18n.Filter30d)
	case engine.RangeAll:
		return cat.T(i18n.FilterAll)
	}
	return cat.T(i18n.Filter24h)
}

func (v DashboardView) tableRows() int {
	n := v.height - summaryHeight - 1
	if n < 1 {
		n = 1
	}
	return n
}

func (v *DashboardView) ensureVisible() {
	visible := v.tableRows()
	if v.cursor < v.offset {
		v.offset = v.cursor
	}
	if v.cursor >= v.offset+visible {
		v.offset = v.cursor - visible + 1
	}
}

// renderSummary renders the latest result, plan percentages, the download
// trend and the range line.
func (v DashboardView) renderSummary() string {
	cat := v.catalog
	latest := v.results[0]
	label := v.sty.FormLabel.Width(14)
	value := lipgloss.NewStyle().Foreground(v.theme.Base05)
	down := lipgloss.NewStyle().Foreground(v.theme.Download()).Bold(true)
	up := lipgloss.NewStyle().Foreground(v.theme.Upload()).Bold(true)

	speeds := fmt.Sprintf("↓ %s   ↑ %s   %s",
		down.Render(engine.FormatSpeed(latest.Download, v.unit)),
		up.Render(engine.FormatSpeed(latest.Upload, v.unit)),
		value.Render(fmt.Sprintf("ping %.1f ms", latest.Ping)),
	)

	plan := v.sty.TableCellDim.Render(cat.T(i18n.DashNoDeclared))
	dl, dlOK := engine.PercentOfDeclared(latest.Download, v.settings.DeclaredDownload)
	ul, ulOK := engine.PercentOfDeclared(latest.Upload, v.settings.DeclaredUpload)
	if dlOK || ulOK {
		var parts []string
		if dlOK {
			parts = append(parts, v.sty.PlanStyle(dl).Render(fmt.Sprintf("↓ %.0f%%", dl)))
		}
		if ulOK {
			parts = append(parts, v.sty.PlanStyle(ul).Render(fmt.Sprintf("↑ %.0f%%", ul)))
		}
		plan = strings.Join(parts, "   ")
	}

	trendWidth := v.width - 16
	if trendWidth < 8 {
		trendWidth = 8
	}
	trend := v.sty.SparklineStyle.Render(components.Sparkline(v.downloads(trendWidth), trendWidth))

	rng := value.Render(fmt.Sprintf("%s (%d)", RangeLabel(cat, v.rng), len(v.results)))
	if n := len(v.marked); n > 0 {
		rng += "   " + v.sty.StatusWarn.Render(fmt.Sprintf(cat.T(i18n.DashMarked), n))
	}

	row := func(key, val string) string {
		return "  " + label.Render(cat.T(key)+":") + val
	}
	rows := []string{
		row(i18n.DashLatest, speeds),
		row(i18n.DashOfPlan, plan),
		row(i18n.DashSchedule, value.Render(v.nextRun)),
		row(i18n.DashTrend, trend),
		row(i18n.FilterLabel, rng),
		v.renderPrompt(),
	}
	return strings.Join(rows, "\n")
}

func (v DashboardView) renderPrompt() string {
	if v.confirming == nil {
		return ""
	}
	keyStyle := lipgloss.NewStyle().Foreground(v.theme.Base0D).Bold(true)
	msg := fmt.Sprintf(v.catalog.T(i18n.ConfirmDelete), len(v.confirming))
	return "  " + v.sty.StatusDown.Render(msg) + " " + keyStyle.Render("[y/n]")
}

// downloads returns download speeds oldest first, in the display unit.
func (v DashboardView) downloads(maxWidth int) []float64 {
	n := len(v.results)
	if n > maxWidth {
		n = maxWidth
	}
	data := make([]float64, n)
	for i := 0; i < n; i++ {
		data[n-1-i] = v.unit.Convert(v.results[i].Download)
	}
	return data
}

func (v DashboardView) renderTable() string {
	cat := v.catalog
	wServer := v.width - colMark - colTime - 2*colSpeed - colPing - colJitter
	if wServer < colServerMn {
		wServer = colServerMn
	}

	hs := v.sty.TableHeader
	lines := []string{
		hs.Render(strings.Repeat(" ", colMark)) +
			hs.Render(padRight(cat.T(i18n.ColTime), colTime)) +
			hs.Render(padLeft(cat.T(i18n.ColDownload), colSpeed)) +
			hs.Render(padLeft(cat.T(i18n.ColUpload), colSpeed)) +
			hs.Render(padLeft(cat.T(i18n.ColPing), colPing)) +
			hs.Render(padLeft(cat.T(i18n.ColJitter), colJitter)) +
			hs.Render(padRight("  "+cat.T(i18n.ColServer), wServer)),
	}

	end := v.offset + v.tableRows()
	if end > len(v.results) {
		end = len(v.results)
	}
	for i := v.offset; i < end; i++ {
		lines = append(lines, v.renderRow(v.results[i], wServer, i == v.cursor))
	}
	return strings.Join(lines, "\n")
}

func (v DashboardView) renderRow(r api.Result, wServer int, selected bool) string {
	rowStyle := v.sty.TableRow
	if selected {
		rowStyle = v.sty.TableRowSel
	}

	mark := "  "
	if v.marked[r.ID] {
		mark = "x "
	}

	ts := r.Timestamp
	if t, err := schedule.ParseNaiveLocal(r.Timestamp); err == nil && !t.IsZero() {
		ts = t.Format("2006-01-02 15:04")
	}

	speedCell := func(mbps float64, declared int) string {
		st := rowStyle
		if pct, ok := engine.PercentOfDeclared(mbps, declared); ok {
			st = v.sty.PlanStyle(pct)
			if selected {
				st = st.Background(v.theme.Base02)
			}
		}
		return st.Render(padLeft(fmt.Sprintf("%.2f", v.unit.Convert(mbps)), colSpeed))
	}

	server := r.ServerName
	if r.ServerLocation != "" {
		server += " (" + r.ServerLocation + ")"
	}

	return rowStyle.Render(mark) +
		rowStyle.Render(padRight(ts, colTime)) +
		speedCell(r.Download, v.settings.DeclaredDownload) +
		speedCell(r.Upload, v.settings.DeclaredUpload) +
		rowStyle.Render(padLeft(fmt.Sprintf("%.1f", r.Ping), colPing)) +
		rowStyle.Render(padLeft(fmt.Sprintf("%.1f", r.Jitter), colJitter)) +
		rowStyle.Render(padRight("  "+truncate(server, wServer-3), wServer))
}

// renderEmpty renders a centered message when no result falls in the range.
func (v DashboardView) renderEmpty() string {
	cat := v.catalog
	msgStyle := lipgloss.NewStyle().
		Foreground(v.theme.Base04).
		Align(lipgloss.Center)
	keyStyle := lipgloss.NewStyle().
		Foreground(v.theme.Base0D).
		Bold(true)

	headline := cat.T(i18n.DashEmpty)
	if len(v.all) > 0 {
		headline = fmt.Sprintf("%s (%s)", cat.T(i18n.DashEmptyRange), RangeLabel(cat, v.rng))
	}

	msg := lipgloss.JoinVertical(lipgloss.Center,
		"",
		msgStyle.Render(headline),
		"",
		msgStyle.Render(fmt.Sprintf(cat.T(i18n.DashEmptyHint), keyStyle.Render("[t]"))),
		msgStyle.Render(v.nextRun),
		"",
	)
	return lipgloss.Place(v.width, v.height, lipgloss.Center, lipgloss.Center, msg)
}
