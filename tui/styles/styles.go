package styles

import "github.com/charmbracelet/lipgloss"

// Styles holds all themed lipgloss styles for the application.
type Styles struct {
	Header      lipgloss.Style
	HeaderTitle lipgloss.Style

	// Results table
	TableHeader  lipgloss.Style
	TableRow     lipgloss.Style
	TableRowSel  lipgloss.Style
	TableCellDim lipgloss.Style

	// Watchdog state
	StatusUp   lipgloss.Style
	StatusDown lipgloss.Style
	StatusWarn lipgloss.Style

	// Measured speed as a share of the declared plan
	PlanLow  lipgloss.Style // < 50%
	PlanMid  lipgloss.Style // 50-80%
	PlanHigh lipgloss.Style // >= 80%

	SparklineStyle lipgloss.Style
	Countdown      lipgloss.Style
	SectionHeader  lipgloss.Style

	ModalBorder lipgloss.Style
	ModalTitle  lipgloss.Style

	FormLabel lipgloss.Style

	// Toasts by level
	ToastInfo    lipgloss.Style
	ToastSuccess lipgloss.Style
	ToastWarning lipgloss.Style
	ToastError   lipgloss.Style
}

// NewStyles creates a new Styles instance from a theme.
func NewStyles(theme Theme) *Styles {
	toast := lipgloss.NewStyle().
		Background(theme.Base01).
		Padding(0, 1).
		Bold(true)

	return &Styles{
		Header: lipgloss.NewStyle().
			Foreground(theme.Base05).
			Background(theme.Base01).
			Bold(true).
			Padding(0, 1),
		HeaderTitle: lipgloss.NewStyle().
			Foreground(theme.Base0D).
			Bold(true),

		TableHeader: lipgloss.NewStyle().
			Foreground(theme.Base0D).
			Bold(true),
		TableRow: lipgloss.NewStyle().
			Foreground(theme.Base05),
		TableRowSel: lipgloss.NewStyle().
			Foreground(theme.Base05).
			Background(theme.Base02),
		TableCellDim: lipgloss.NewStyle().
			Foreground(theme.Base03),

		StatusUp: lipgloss.NewStyle().
			Foreground(theme.Base0B),
		StatusDown: lipgloss.NewStyle().
			Foreground(theme.Base08),
		StatusWarn: lipgloss.NewStyle().
			Foreground(theme.Base0A),

		PlanLow: lipgloss.NewStyle().
			Foreground(theme.Base08),
		PlanMid: lipgloss.NewStyle().
			Foreground(theme.Base0A),
		PlanHigh: lipgloss.NewStyle().
			Foreground(theme.Base0B),

		SparklineStyle: lipgloss.NewStyle().
			Foreground(theme.Base0C),
		Countdown: lipgloss.NewStyle().
			Foreground(theme.Base0E).
			Bold(true),
		SectionHeader: lipgloss.NewStyle().
			Foreground(theme.Base0E).
			Bold(true),

		ModalBorder: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.Base0D).
			BorderBackground(theme.Base00).
			Background(theme.Base00).
			Padding(1, 2),
		ModalTitle: lipgloss.NewStyle().
			Foreground(theme.Base0D).
			Bold(true),

		FormLabel: lipgloss.NewStyle().
			Foreground(theme.Base04),

		ToastInfo:    toast.Foreground(theme.Base0D),
		ToastSuccess: toast.Foreground(theme.Base0B),
		ToastWarning: toast.Foreground(theme.Base0A),
		ToastError:   toast.Foreground(theme.Base08),
	}
}

// PlanStyle picks the color for a measured speed at pct of the declared plan.
func (s *Styles) PlanStyle(pct float64) lipgloss.Style {
	switch {
	case pct >= 80:
		return s.PlanHigh
	case pct >= 50:
		return s.PlanMid
	default:
		return s.PlanLow
	}
}
