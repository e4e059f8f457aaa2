package styles

import (
	"maps"
	"slices"

	"github.com/charmbracelet/lipgloss"
)

// DefaultSlug is the theme used when the configured one is unknown.
const DefaultSlug = "solarized-dark"

// Theme is a Base16 palette. Base00-07 run from background to foreground,
// Base08-0F are the accents.
type Theme struct {
	Name   string
	Base00 lipgloss.Color
	Base01 lipgloss.Color
	Base02 lipgloss.Color
	Base03 lipgloss.Color
	Base04 lipgloss.Color
	Base05 lipgloss.Color
	Base06 lipgloss.Color
	Base07 lipgloss.Color
	Base08 lipgloss.Color // red
	Base09 lipgloss.Color // orange
	Base0A lipgloss.Color // yellow
	Base0B lipgloss.Color // green
	Base0C lipgloss.Color // cyan
	Base0D lipgloss.Color // blue
	Base0E lipgloss.Color // magenta
	Base0F lipgloss.Color // brown
}

// Online and Offline color the watchdog state.
func (t Theme) Online() lipgloss.Color  { return t.Base0B }
func (t Theme) Offline() lipgloss.Color { return t.Base08 }

// Busy colors a running speed test.
func (t Theme) Busy() lipgloss.Color { return t.Base0A }

// Download and Upload color the two speed series.
func (t Theme) Download() lipgloss.Color { return t.Base0D }
func (t Theme) Upload() lipgloss.Color   { return t.Base0E }

var (
	DefaultTheme = Themes[DefaultSlug]
	sortedSlugs  = slices.Sorted(maps.Keys(Themes))
)

// Resolve returns the theme for slug, or DefaultTheme.
func Resolve(slug string) Theme {
	if t, ok := Themes[slug]; ok {
		return t
	}
	return DefaultTheme
}

// GetThemeByName returns a theme by its slug, or nil if not found.
func GetThemeByName(name string) *Theme {
	t, ok := Themes[name]
	if !ok {
		return nil
	}
	return &t
}

// ListThemes returns sorted theme slugs.
func ListThemes() []string {
	return slices.Clone(sortedSlugs)
}

func GetThemeCount() int {
	return len(sortedSlugs)
}

// GetThemeByIndex returns the theme at idx in ListThemes order.
func GetThemeByIndex(idx int) *Theme {
	if idx < 0 || idx >= len(sortedSlugs) {
		return nil
	}
	return GetThemeByName(sortedSlugs[idx])
}

// GetThemeIndex returns the sorted index of slug, or -1.
func GetThemeIndex(slug string) int {
	return slices.Index(sortedSlugs, slug)
}
