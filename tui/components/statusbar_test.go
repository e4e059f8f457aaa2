package components

import (
	"strings"
	"testing"

	"github.com/tonhe/speedlog/internal/i18n"
	"github.com/tonhe/speedlog/tui/styles"
)

func TestStatusBarFollowsLanguage(t *testing.T) {
	theme := styles.Resolve(styles.DefaultSlug)
	cat := i18n.NewCatalog("en")

	out := RenderStatusBar(theme, cat, "in 01:00:00", "next test", "completed", 120)
	if !strings.Contains(out, "last test: completed") || !strings.Contains(out, ":run test") {
		t.Errorf("expected english labels, got:\n%s", out)
	}

	cat.SetLanguage("pl")
	out = RenderStatusBar(theme, cat, "", "następny test", "zakończony", 120)
	if !strings.Contains(out, "ostatni test: zakończony") || !strings.Contains(out, ":ustawienia") {
		t.Errorf("expected polish labels, got:\n%s", out)
	}
	if strings.Contains(out, "last test") {
		t.Errorf("expected no english left, got:\n%s", out)
	}
}
