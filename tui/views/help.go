package views

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
	"github.com/tonhe/speedlog/tui/keys"
	"github.com/tonhe/speedlog/tui/styles"
)

type helpEntry struct {
	keys string
	desc string
}

type helpSection struct {
	title   string
	entries []helpEntry
}

// bound reads the key and description from a binding.
func bound(b key.Binding, desc string) helpEntry {
	h := b.Help()
	if desc == "" {
		desc = h.Desc
	}
	return helpEntry{keys: h.Key, desc: desc}
}

func helpSections() []helpSection {
	km := keys.DefaultKeyMap
	return []helpSection{
		{"Global", []helpEntry{
			{"ctrl+c", "Quit"},
			bound(km.Help, "Toggle this help"),
		}},
		{"Dashboard", []helpEntry{
			bound(km.Quit, "Quit"),
			{"up/down", "Scroll results"},
			bound(km.RunTest, "Run a speed test now"),
			bound(km.Watchdog, "Ping watchdog"),
			bound(km.Settings, "Settings"),
			bound(km.Refresh, "Reload schedule and results"),
			bound(km.Filter, "Cycle time range (24h, 7d, 30d, all)"),
			bound(km.Mark, "Mark result for deletion"),
			bound(km.Delete, "Delete marked or selected results"),
			bound(km.Confirm, "Confirm deletion"),
		}},
		{"Ping Watchdog", []helpEntry{
			{"esc/w", "Back to dashboard"},
		}},
		{"Settings", []helpEntry{
			{"up/down", "Move between fields"},
			{"left/right", "Change value"},
			bound(km.Enter, "Save"),
			bound(km.Escape, "Cancel"),
		}},
	}
}

// HelpView is the keyboard shortcut overlay.
type HelpView struct {
	theme   styles.Theme
	sty     *styles.Styles
	width   int
	height  int
	visible bool
}

func NewHelpView(theme styles.Theme) HelpView {
	return HelpView{
		theme: theme,
		sty:   styles.NewStyles(theme),
	}
}

// Toggle flips the help overlay visibility.
func (v *HelpView) Toggle() {
	v.visible = !v.visible
}

func (v HelpView) IsVisible() bool {
	return v.visible
}

func (v *HelpView) SetSize(width, height int) {
	v.width = width
	v.height = height
}

// View renders the sections in a bordered box centered in the body.
func (v HelpView) View() string {
	modalWidth := min(max(v.width-4, 40), 60)

	section := v.sty.SectionHeader
	keyStyle := lipgloss.NewStyle().Foreground(v.theme.Base0D).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(v.theme.Base05)

	var lines []string
	for _, s := range helpSections() {
		lines = append(lines, section.Render(s.title))
		for _, e := range s.entries {
			lines = append(lines, "  "+keyStyle.Render(padRight(e.keys, 14))+"  "+descStyle.Render(e.desc))
		}
		lines = append(lines, "")
	}
	lines = append(lines, v.sty.TableCellDim.Render("[?] close"))

	body := lipgloss.JoinVertical(lipgloss.Left,
		v.sty.ModalTitle.Render("Keyboard Shortcuts"),
		"",
		strings.Join(lines, "\n"),
	)
	modal := v.sty.ModalBorder.Width(modalWidth - 6).Render(body)
	return lipgloss.Place(v.width, v.height, lipgloss.Center, lipgloss.Center, modal)
}
