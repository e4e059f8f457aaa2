package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/jonboulle/clockwork"
	"github.com/tonhe/speedlog/internal/api"
	"github.com/tonhe/speedlog/internal/config"
	"github.com/tonhe/speedlog/internal/engine"
	"github.com/tonhe/speedlog/internal/i18n"
	"github.com/tonhe/speedlog/internal/notify"
	"github.com/tonhe/speedlog/tui/components"
	"github.com/tonhe/speedlog/tui/keys"
	"github.com/tonhe/speedlog/tui/styles"
	"github.com/tonhe/speedlog/tui/views"
)

// AppState represents the current screen/view of the application.
type AppState int

const (
	StateDashboard AppState = iota
	StateWatchdog
	StateSettings
	StateHelp
)

func (s AppState) String() string {
	switch s {
	case StateWatchdog:
		return "watchdog"
	case StateSettings:
		return "settings"
	case StateHelp:
		return "help"
	default:
		return "dashboard"
	}
}

// TickMsg triggers a periodic UI refresh to pick up countdown frames,
// watchdog readings and toast expiry.
type TickMsg struct{}

type sessionStartedMsg struct{ err error }

type sessionEventMsg engine.Event

type toastMsg notify.Toast

type jobFinishedMsg struct {
	out engine.Outcome
	err error
}

type settingsSavedMsg struct {
	choice views.SettingsChoice
	err    error
}

type refreshedMsg struct{ err error }

type deletedMsg struct {
	n   int
	err error
}

// logoutTimeout bounds the logout request sent on quit.
const logoutTimeout = 3 * time.Second

// AppModel is the root Bubble Tea model. It owns the engine Session for the
// lifetime of the program.
type AppModel struct {
	state   AppState
	prev    AppState
	theme   styles.Theme
	sty     *styles.Styles
	config  *config.Config
	version string
	logger  *slog.Logger

	session *engine.Session
	toaster *notify.Toaster
	display *countdownDisplay
	surface *watchdogSurface
	events  <-chan engine.Event
	toasts  <-chan notify.Toast

	dashboard views.DashboardView
	watchdog  views.WatchdogView
	settings  views.SettingsView
	help      views.HelpView

	testing bool
	width   int
	height  int
}

// NewAppModel builds a Session against backend and returns the root model.
// The session is started by Init and stopped on quit.
func NewAppModel(cfg *config.Config, backend engine.Backend, logger *slog.Logger, version string) AppModel {
	if logger == nil {
		logger = slog.Default()
	}
	theme := styles.Resolve(cfg.Theme)
	unit, err := engine.ParseUnit(cfg.Unit)
	if err != nil {
		unit = engine.UnitMbps
	}
	rng, err := engine.ParseHistoryRange(cfg.HistoryRange)
	if err != nil {
		rng = engine.RangeDay
	}

	clock := clockwork.NewRealClock()
	catalog := i18n.NewCatalog(cfg.Language)
	toaster := notify.NewToaster(clock, catalog, logger)
	toaster.SetUnit(unit)
	display := &countdownDisplay{}
	surface := &watchdogSurface{}

	session := engine.NewSession(backend, display, catalog, toaster, engine.Options{
		Clock:               clock,
		Logger:              logger,
		JobPollInterval:     cfg.JobPollInterval,
		JobMaxAttempts:      cfg.JobMaxAttempts,
		WatchdogInterval:    cfg.WatchdogInterval,
		ResultWatchInterval: cfg.ResultWatchInterval,
	})
	session.Watchdog().SetSurface(surface)

	return AppModel{
		state:     StateDashboard,
		theme:     theme,
		sty:       styles.NewStyles(theme),
		config:    cfg,
		version:   version,
		logger:    logger.With("component", "tui"),
		session:   session,
		toaster:   toaster,
		display:   display,
		surface:   surface,
		events:    session.Subscribe(),
		toasts:    toaster.Subscribe(),
		dashboard: views.NewDashboardView(theme, unit, rng, catalog),
		watchdog:  views.NewWatchdogView(theme, catalog),
		help:      views.NewHelpView(theme),
	}
}

// Init starts the session and the tick loop.
func (m AppModel) Init() tea.Cmd {
	return tea.Batch(
		tickCmd(),
		startSession(m.session),
		waitForEvent(m.events),
		waitForToast(m.toasts),
	)
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return TickMsg{}
	})
}

func startSession(s *engine.Session) tea.Cmd {
	return func() tea.Msg {
		return sessionStartedMsg{err: s.Start(context.Background())}
	}
}

func waitForEvent(ch <-chan engine.Event) tea.Cmd {
	return func() tea.Msg {
		return sessionEventMsg(<-ch)
	}
}

func waitForToast(ch <-chan notify.Toast) tea.Cmd {
	return func() tea.Msg {
		return toastMsg(<-ch)
	}
}

func runTest(s *engine.Session) tea.Cmd {
	return func() tea.Msg {
		out, err := s.RunTest(context.Background(), nil)
		return jobFinishedMsg{out: out, err: err}
	}
}

func saveSettings(s *engine.Session, c views.SettingsChoice) tea.Cmd {
	return func() tea.Msg {
		upd := api.UpdateFrom(s.State().Settings())
		upd.ScheduleHours = &c.ScheduleHours
		upd.ServerID = c.ServerID
		upd.AppLanguage = c.Language
		return settingsSavedMsg{choice: c, err: s.SaveSettings(context.Background(), upd)}
	}
}

func deleteResults(s *engine.Session, ids []string) tea.Cmd {
	return func() tea.Msg {
		n, err := s.DeleteResults(context.Background(), ids)
		return deletedMsg{n: n, err: err}
	}
}

func refresh(s *engine.Session) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		return refreshedMsg{err: errors.Join(s.RefreshSchedule(ctx), s.RefreshResults(ctx))}
	}
}

// State returns the active screen.
func (m AppModel) State() AppState {
	return m.state
}

// Update handles messages and dispatches to the active view.
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case TickMsg:
		m.sync()
		return m, tickCmd()

	case sessionStartedMsg:
		if msg.err != nil {
			m.logger.Warn("session start incomplete", "error", msg.err)
			m.toaster.Push(notify.LevelError, msg.err.Error())
		}
		m.sync()
		return m, nil

	case sessionEventMsg:
		m.sync()
		return m, waitForEvent(m.events)

	case toastMsg:
		return m, waitForToast(m.toasts)

	case jobFinishedMsg:
		m.testing = false
		// Trigger and poll failures reach the toaster through the bridge;
		// a baseline failure happens before the poller runs.
		if errors.Is(msg.err, engine.ErrClockParse) {
			m.toaster.Push(notify.LevelError, m.session.Catalog().T(i18n.ToastTestError))
		}
		m.sync()
		return m, nil

	case settingsSavedMsg:
		cat := m.session.Catalog()
		if msg.err != nil {
			m.logger.Warn("settings not saved", "error", msg.err)
			m.toaster.Push(notify.LevelError, cat.T(i18n.ToastSettingsError))
			return m, nil
		}
		m.toaster.Push(notify.LevelSuccess, cat.T(i18n.ToastSettingsSaved))
		if msg.choice.ScheduleChanged {
			if msg.choice.ScheduleHours == 0 {
				m.toaster.Push(notify.LevelInfo, cat.T(i18n.ToastScheduleDisabled))
			} else {
				m.toaster.Push(notify.LevelInfo, fmt.Sprintf("%s %dh", cat.T(i18n.ToastScheduleChanged), msg.choice.ScheduleHours))
			}
		}
		m.sync()
		return m, nil

	case deletedMsg:
		cat := m.session.Catalog()
		m.dashboard.ClearDelete()
		if msg.err != nil {
			m.logger.Warn("results not deleted", "error", msg.err)
			m.toaster.Push(notify.LevelError, cat.T(i18n.ToastDeleteError))
		} else {
			m.toaster.Push(notify.LevelSuccess, fmt.Sprintf("%s: %d", cat.T(i18n.ToastDeleteSuccess), msg.n))
		}
		m.sync()
		return m, nil

	case refreshedMsg:
		if msg.err != nil {
			m.toaster.Push(notify.LevelError, msg.err.Error())
		}
		m.sync()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m AppModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m.quit()
	}
	if m.state == StateDashboard && m.dashboard.Confirming() {
		return m.updateDashboard(msg)
	}

	switch m.state {
	case StateHelp:
		if key.Matches(msg, keys.DefaultKeyMap.Help) || key.Matches(msg, keys.DefaultKeyMap.Escape) {
			m.help.Toggle()
			m.state = m.prev
		}
		return m, nil

	case StateSettings:
		var cmd tea.Cmd
		var action views.SettingsAction
		m.settings, cmd, action = m.settings.Update(msg)
		switch action {
		case views.SettingsClose:
			m.state = StateDashboard
		case views.SettingsSaved:
			choice := m.settings.Choice()
			m.applyLocal(choice)
			m.state = StateDashboard
			return m, tea.Batch(cmd, saveSettings(m.session, choice))
		}
		return m, cmd

	case StateWatchdog:
		var back bool
		m.watchdog, _, back = m.watchdog.Update(msg)
		if back {
			m.surface.setVisible(false)
			m.state = StateDashboard
			return m, nil
		}
	}

	switch {
	case key.Matches(msg, keys.DefaultKeyMap.Quit):
		return m.quit()

	case key.Matches(msg, keys.DefaultKeyMap.Help):
		m.help.Toggle()
		m.prev = m.state
		m.state = StateHelp
		return m, nil

	case key.Matches(msg, keys.DefaultKeyMap.RunTest):
		if m.testing {
			m.toaster.Push(notify.LevelWarning, m.session.Catalog().T(i18n.ToastTestBusy))
			return m, nil
		}
		m.testing = true
		m.toaster.Push(notify.LevelInfo, m.session.Catalog().T(i18n.ToastTestInProgress))
		return m, runTest(m.session)

	case key.Matches(msg, keys.DefaultKeyMap.Watchdog):
		m.surface.setVisible(true)
		m.session.Watchdog().ShowDetail()
		m.state = StateWatchdog
		m.sync()
		return m, nil

	case key.Matches(msg, keys.DefaultKeyMap.Settings):
		m.settings = views.NewSettingsView(m.theme, m.config, m.session.State().Settings(), m.session.Catalog())
		m.resize()
		m.state = StateSettings
		return m, nil

	case key.Matches(msg, keys.DefaultKeyMap.Refresh):
		return m, refresh(m.session)
	}

	if m.state == StateDashboard {
		return m.updateDashboard(msg)
	}
	return m, nil
}

func (m AppModel) updateDashboard(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	var action views.DashboardAction
	m.dashboard, cmd, action = m.dashboard.Update(msg)
	switch action {
	case views.DashboardRangeChanged:
		cat := m.session.Catalog()
		m.config.HistoryRange = string(m.dashboard.Range())
		m.toaster.Push(notify.LevelInfo, cat.T(i18n.ToastFilterChanged)+" "+views.RangeLabel(cat, m.dashboard.Range()))
	case views.DashboardDelete:
		return m, deleteResults(m.session, m.dashboard.PendingDelete())
	}
	return m, cmd
}

// quit stops the session and ends the server login before exiting.
func (m AppModel) quit() (tea.Model, tea.Cmd) {
	ctx, cancel := context.WithTimeout(context.Background(), logoutTimeout)
	defer cancel()
	if err := m.session.Close(ctx); err != nil {
		m.logger.Warn("logout failed", "error", err)
	}
	return m, tea.Quit
}

// applyLocal applies the display preferences from a saved settings form.
func (m *AppModel) applyLocal(c views.SettingsChoice) {
	m.theme = styles.Resolve(c.Theme)
	m.sty = styles.NewStyles(m.theme)
	m.session.SetLanguage(c.Language)
	m.toaster.SetUnit(c.Unit)

	results := m.session.State().Results()
	m.dashboard = views.NewDashboardView(m.theme, c.Unit, m.dashboard.Range(), m.session.Catalog())
	m.dashboard.SetResults(results)
	m.watchdog = views.NewWatchdogView(m.theme, m.session.Catalog())
	m.help = views.NewHelpView(m.theme)
	m.resize()
	m.sync()
}

// sync copies the engine state into the views.
func (m *AppModel) sync() {
	st := m.session.State()
	m.dashboard.SetSettings(st.Settings())
	m.dashboard.SetResults(st.Results())
	m.dashboard.SetNextRun(engine.NextRunText(m.session.Catalog(), st.Schedule(), time.Now()))

	if snap, ok := m.surface.latest(); ok {
		m.watchdog.SetSnapshot(snap)
	}
	m.watchdog.SetTransitions(m.session.Watchdog().Transitions())
	m.watchdog.SetFailedPolls(m.session.Watchdog().ErrorCount())
	m.testing = m.testing || m.session.Jobs().Running()
}

func (m *AppModel) resize() {
	body := m.bodyHeight()
	m.dashboard.SetSize(m.width, body)
	m.watchdog.SetSize(m.width, body)
	m.settings.SetSize(m.width, body)
	m.help.SetSize(m.width, body)
}

// bodyHeight is the space between the header and the status bar.
func (m AppModel) bodyHeight() int {
	h := m.height - 1 - 2
	if h < 1 {
		h = 1
	}
	return h
}

// View renders the full application UI by composing header, body, toasts
// and status.
func (m AppModel) View() string {
	if m.width == 0 {
		return "Loading..."
	}
	cat := m.session.Catalog()

	badge, badgeText := components.BadgeUnknown, ""
	if snap, ok := m.session.Watchdog().Snapshot(); ok && snap.Known {
		badge, badgeText = components.BadgeOffline, cat.T(i18n.WatchdogOffline)
		if snap.Online {
			badge, badgeText = components.BadgeOnline, cat.T(i18n.WatchdogOnline)
		}
	}
	header := components.RenderHeader(m.theme, m.config.Server, badge, badgeText, m.testing, m.width, m.version)

	var body string
	switch m.state {
	case StateWatchdog:
		body = m.watchdog.View()
	case StateSettings:
		body = m.settings.View()
	case StateHelp:
		body = m.help.View()
	default:
		body = m.dashboard.View()
	}

	toasts := components.RenderToasts(m.sty, m.toaster.Active(), m.width)
	bodyHeight := m.bodyHeight()
	if toasts != "" {
		bodyHeight -= lipgloss.Height(toasts)
		if bodyHeight < 1 {
			bodyHeight = 1
		}
	}
	bodyStyle := lipgloss.NewStyle().
		Width(m.width).
		Height(bodyHeight).
		MaxHeight(bodyHeight).
		Background(m.theme.Base00).
		Foreground(m.theme.Base05)

	lastJob := ""
	if out, ok := m.session.State().LastJob(); ok {
		lastJob = jobStateText(cat, out.State)
	}
	statusBar := components.RenderStatusBar(m.theme, cat, m.display.Text(),
		engine.NextRunText(cat, m.session.State().Schedule(), time.Now()), lastJob, m.width)

	parts := []string{header, bodyStyle.Render(body)}
	if toasts != "" {
		parts = append(parts, toasts)
	}
	parts = append(parts, statusBar)
	return strings.TrimRight(lipgloss.JoinVertical(lipgloss.Left, parts...), "\n")
}

func jobStateText(cat *i18n.Catalog, st engine.JobState) string {
	switch st {
	case engine.JobCompleted:
		return cat.T(i18n.JobCompleted)
	case engine.JobTimedOut:
		return cat.T(i18n.JobTimedOut)
	case engine.JobFailed:
		return cat.T(i18n.JobFailed)
	}
	return st.String()
}
