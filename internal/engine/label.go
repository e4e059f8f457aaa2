package engine

import (
	"time"

	"github.com/tonhe/speedlog/internal/i18n"
	"github.com/tonhe/speedlog/internal/schedule"
)

// NextRunText renders the "next test" line for cfg in the catalog's
// language.
func NextRunText(catalog *i18n.Catalog, cfg schedule.Config, now time.Time) string {
	kind, at := schedule.NextRun(cfg, now)
	switch kind {
	case schedule.LabelDisabled:
		return catalog.T(i18n.NextTestDisabled)
	case schedule.LabelAfterFirst:
		return catalog.T(i18n.NextTestAfterFirst)
	case schedule.LabelSoon:
		return catalog.T(i18n.NextTestSoon)
	case schedule.LabelAt:
		layout := "15:04"
		if at.YearDay() != now.YearDay() || at.Year() != now.Year() {
			layout = "2006-01-02 15:04"
		}
		return catalog.T(i18n.NextTestAt) + ": " + at.Format(layout)
	default:
		return catalog.T(i18n.NextTestError)
	}
}
