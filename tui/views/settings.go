package views

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tonhe/speedlog/internal/api"
	"github.com/tonhe/speedlog/internal/config"
	"github.com/tonhe/speedlog/internal/engine"
	"github.com/tonhe/speedlog/internal/i18n"
	"github.com/tonhe/speedlog/tui/keys"
	"github.com/tonhe/speedlog/tui/styles"
)

// SettingsAction describes what the app should do after a settings update.
type SettingsAction int

const (
	// SettingsNone means continue in the settings view.
	SettingsNone SettingsAction = iota
	// SettingsClose means the user cancelled without saving.
	SettingsClose
	// SettingsSaved means the local config was written; the app should push
	// Choice to the server and apply it.
	SettingsSaved
)

// ScheduleOptions are the test intervals offered, in hours. Zero disables
// scheduled tests.
var ScheduleOptions = []int{0, 1, 3, 6, 12, 24}

var unitOptions = []engine.Unit{engine.UnitMbps, engine.UnitMBps}

// Settings field indices.
const (
	settingsFieldSchedule = iota
	settingsFieldServer
	settingsFieldLanguage
	settingsFieldUnit
	settingsFieldTheme
	settingsFieldCount
)

// SettingsChoice is what the user saved.
type SettingsChoice struct {
	ScheduleHours int
	ServerID      *int
	Language      string
	Unit          engine.Unit
	Theme         string

	ScheduleChanged bool
}

// SettingsView edits the server schedule and server plus the local display
// preferences, with a live theme preview.
type SettingsView struct {
	theme   styles.Theme
	sty     *styles.Styles
	catalog *i18n.Catalog
	config  *config.Config
	server  api.Settings

	scheduleIndex int
	langIndex     int
	unitIndex     int
	themeIndex    int
	cursor        int

	serverInput textinput.Model

	width  int
	height int

	err    string
	choice SettingsChoice
}

// NewSettingsView creates a SettingsView populated from the local config and
// the last settings read from the server.
func NewSettingsView(theme styles.Theme, cfg *config.Config, server api.Settings, catalog *i18n.Catalog) SettingsView {
	themeIdx := styles.GetThemeIndex(cfg.Theme)
	if themeIdx < 0 {
		themeIdx = 0
	}

	serverInput := textinput.New()
	serverInput.Placeholder = "auto"
	serverInput.CharLimit = 9
	serverInput.Width = 12
	if server.SelectedServerID != nil {
		serverInput.SetValue(strconv.Itoa(*server.SelectedServerID))
	}

	unit, _ := engine.ParseUnit(cfg.Unit)

	return SettingsView{
		theme:         theme,
		sty:           styles.NewStyles(theme),
		catalog:       catalog,
		config:        cfg,
		server:        server,
		scheduleIndex: indexOf(ScheduleOptions, server.ScheduleHours),
		langIndex:     indexOf(i18n.Languages(), cfg.Language),
		unitIndex:     indexOf(unitOptions, unit),
		themeIndex:    themeIdx,
		serverInput:   serverInput,
	}
}

func indexOf[T comparable](list []T, v T) int {
	for i, x := range list {
		if x == v {
			return i
		}
	}
	return 0
}

func cycle(i, n, delta int) int {
	return ((i+delta)%n + n) % n
}

// SetSize updates the available dimensions for the settings view.
func (s *SettingsView) SetSize(width, height int) {
	s.width = width
	s.height = height
}

// Choice returns the values saved by the last SettingsSaved action.
func (s SettingsView) Choice() SettingsChoice {
	return s.choice
}

func (s SettingsView) selectedThemeSlug() string {
	themes := styles.ListThemes()
	if s.themeIndex >= 0 && s.themeIndex < len(themes) {
		return themes[s.themeIndex]
	}
	return styles.DefaultSlug
}

func (s SettingsView) selectedTheme() styles.Theme {
	if t := styles.GetThemeByIndex(s.themeIndex); t != nil {
		return *t
	}
	return styles.DefaultTheme
}

func (s *SettingsView) focusInput() {
	s.serverInput.Blur()
	if s.cursor == settingsFieldServer {
		s.serverInput.Focus()
	}
}

// Update handles messages for the settings view.
func (s SettingsView) Update(msg tea.Msg) (SettingsView, tea.Cmd, SettingsAction) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.DefaultKeyMap.Escape):
			return s, nil, SettingsClose

		case key.Matches(msg, keys.DefaultKeyMap.Enter):
			return s.save()

		case msg.String() == "up", msg.String() == "shift+tab":
			s.cursor = cycle(s.cursor, settingsFieldCount, -1)
			s.focusInput()
			return s, nil, SettingsNone

		case msg.String() == "down", msg.String() == "tab":
			s.cursor = cycle(s.cursor, settingsFieldCount, 1)
			s.focusInput()
			return s, nil, SettingsNone

		case s.cursor == settingsFieldServer:
			var cmd tea.Cmd
			s.serverInput, cmd = s.serverInput.Update(msg)
			return s, cmd, SettingsNone

		case key.Matches(msg, keys.DefaultKeyMap.Left):
			s.shift(-1)
			return s, nil, SettingsNone

		case key.Matches(msg, keys.DefaultKeyMap.Right):
			s.shift(1)
			return s, nil, SettingsNone
		}
	}
	return s, nil, SettingsNone
}

// shift cycles the value of the focused row.
func (s *SettingsView) shift(delta int) {
	switch s.cursor {
	case settingsFieldSchedule:
		s.scheduleIndex = cycle(s.scheduleIndex, len(ScheduleOptions), delta)
	case settingsFieldLanguage:
		s.langIndex = cycle(s.langIndex, len(i18n.Languages()), delta)
	case settingsFieldUnit:
		s.unitIndex = cycle(s.unitIndex, len(unitOptions), delta)
	case settingsFieldTheme:
		s.themeIndex = cycle(s.themeIndex, styles.GetThemeCount(), delta)
		s.theme = s.selectedTheme()
		s.sty = styles.NewStyles(s.theme)
	}
}

// save validates the form and writes the local preferences to disk.
func (s SettingsView) save() (SettingsView, tea.Cmd, SettingsAction) {
	var serverID *int
	if raw := strings.TrimSpace(s.serverInput.Value()); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil || id < 1 {
			s.err = s.catalog.T(i18n.ServerIDInvalid)
			return s, nil, SettingsNone
		}
		serverID = &id
	}

	hours := ScheduleOptions[s.scheduleIndex]
	s.choice = SettingsChoice{
		ScheduleHours:   hours,
		ServerID:        serverID,
		Language:        i18n.Languages()[s.langIndex],
		Unit:            unitOptions[s.unitIndex],
		Theme:           s.selectedThemeSlug(),
		ScheduleChanged: hours != s.server.ScheduleHours,
	}

	s.config.Theme = s.choice.Theme
	s.config.Language = s.choice.Language
	s.config.Unit = string(s.choice.Unit)

	if err := config.EnsureDirs(); err != nil {
		s.err = fmt.Sprintf("Failed to create directories: %v", err)
		return s, nil, SettingsNone
	}
	cfgPath, err := config.GetConfigPath()
	if err != nil {
		s.err = fmt.Sprintf("Failed to get config path: %v", err)
		return s, nil, SettingsNone
	}
	if err := config.SaveConfig(s.config, cfgPath); err != nil {
		s.err = fmt.Sprintf("Failed to save config: %v", err)
		return s, nil, SettingsNone
	}

	s.err = ""
	return s, nil, SettingsSaved
}

// View renders the settings screen.
func (s SettingsView) View() string {
	titleStyle := lipgloss.NewStyle().
		Foreground(s.theme.Base0D).
		Bold(true)
	labelStyle := s.sty.FormLabel
	activeLabelStyle := lipgloss.NewStyle().
		Foreground(s.theme.Base0D).
		Bold(true)
	valStyle := lipgloss.NewStyle().
		Foreground(s.theme.Base06)

	var b strings.Builder

	b.WriteString("\n")
	b.WriteString("  " + titleStyle.Render(s.catalog.T(i18n.SettingsTitle)) + "\n")
	b.WriteString("\n")

	if s.err != "" {
		errStyle := lipgloss.NewStyle().Foreground(s.theme.Base08)
		b.WriteString("  " + errStyle.Render(s.err) + "\n\n")
	}

	hours := ScheduleOptions[s.scheduleIndex]
	schedule := s.catalog.T(i18n.ScheduleOff)
	if hours > 0 {
		schedule = fmt.Sprintf(s.catalog.T(i18n.ScheduleEvery), hours)
	}

	themeName := s.selectedTheme().Name

	rows := []struct {
		label   string
		display string
	}{
		{s.catalog.T(i18n.SetSchedule), "< " + schedule + " >"},
		{s.catalog.T(i18n.SetServerID), s.serverInput.View()},
		{s.catalog.T(i18n.SetLanguage), "< " + i18n.Languages()[s.langIndex] + " >"},
		{s.catalog.T(i18n.SetUnit), "< " + unitOptions[s.unitIndex].Label() + " >"},
		{s.catalog.T(i18n.SetTheme), fmt.Sprintf("< %s >  (%d/%d)", themeName, s.themeIndex+1, styles.GetThemeCount())},
	}

	for i, row := range rows {
		indicator := "  "
		lbl := labelStyle
		if i == s.cursor {
			indicator = lipgloss.NewStyle().Foreground(s.theme.Base0D).Bold(true).Render("> ")
			lbl = activeLabelStyle
		}
		display := row.display
		if i != settingsFieldServer {
			display = valStyle.Render(display)
		}
		b.WriteString(fmt.Sprintf("  %s%s%s\n", indicator, lbl.Render(padRight(row.label+":", 20)), display))
	}

	b.WriteString("\n")
	b.WriteString(s.renderThemePreview())
	b.WriteString("\n")
	b.WriteString("  " + s.renderHelp() + "\n")

	return b.String()
}

// renderThemePreview renders a small sample of the selected theme.
func (s SettingsView) renderThemePreview() string {
	preview := s.selectedTheme()
	sty := styles.NewStyles(preview)

	sepStyle := lipgloss.NewStyle().Foreground(preview.Base03)
	titleStyle := lipgloss.NewStyle().Foreground(preview.Base0D).Bold(true)

	previewWidth := 56
	if s.width > 0 && s.width-6 < previewWidth {
		previewWidth = s.width - 6
	}
	if previewWidth < 30 {
		previewWidth = 30
	}

	var b strings.Builder

	label := " Theme Preview "
	dashCount := previewWidth - len(label)
	if dashCount < 2 {
		dashCount = 2
	}
	leftDash := dashCount / 2
	b.WriteString("  " + sepStyle.Render(strings.Repeat("-", leftDash)) + titleStyle.Render(label) + sepStyle.Render(strings.Repeat("-", dashCount-leftDash)) + "\n")

	b.WriteString("  " + fmt.Sprintf("  %s%s%s",
		sty.TableHeader.Render(padRight(s.catalog.T(i18n.ColTime), 18)),
		sty.TableHeader.Render(padLeft(s.catalog.T(i18n.ColDownload), 12)),
		sty.TableHeader.Render(padLeft(s.catalog.T(i18n.ColUpload), 12)),
	) + "\n")

	samples := []struct {
		time     string
		down, up float64
	}{
		{"2024-05-01 12:00", 92, 85},
		{"2024-05-01 09:00", 61, 40},
		{"2024-05-01 06:00", 23, 12},
	}
	for _, r := range samples {
		b.WriteString("  " + fmt.Sprintf("  %s%s%s",
			sty.TableRow.Render(padRight(r.time, 18)),
			sty.PlanStyle(r.down).Render(padLeft(fmt.Sprintf("%.0f%%", r.down), 12)),
			sty.PlanStyle(r.up).Render(padLeft(fmt.Sprintf("%.0f%%", r.up), 12)),
		) + "\n")
	}

	b.WriteString("\n  " + sty.ToastSuccess.Render(s.catalog.T(i18n.ToastTestComplete)) + " " + sty.ToastError.Render(s.catalog.T(i18n.WatchdogOffline)) + "\n")
	b.WriteString("  " + sepStyle.Render(strings.Repeat("-", previewWidth)) + "\n")

	return b.String()
}

func (s SettingsView) renderHelp() string {
	helpStyle := lipgloss.NewStyle().Foreground(s.theme.Base04)
	keyStyle := lipgloss.NewStyle().Foreground(s.theme.Base0D).Bold(true)

	hint := fmt.Sprintf(
		"%s/%s change  %s/%s navigate  %s save  %s cancel",
		keyStyle.Render("[left]"),
		keyStyle.Render("[right]"),
		keyStyle.Render("[up]"),
		keyStyle.Render("[down]"),
		keyStyle.Render("[enter]"),
		keyStyle.Render("[esc]"),
	)
	if s.cursor == settingsFieldServer {
		hint = fmt.Sprintf(
			"type a server ID, empty for auto  %s save  %s cancel",
			keyStyle.Render("[enter]"),
			keyStyle.Render("[esc]"),
		)
	}
	return helpStyle.Render(hint)
}
