// Package i18n holds the user-facing strings for each supported language and
// tracks the language currently selected for display.
package i18n

import (
	"sort"
	"sync/atomic"
)

// DefaultLanguage is used when an unknown language is requested.
const DefaultLanguage = "en"

// Message keys.
const (
	CountdownPrefix       = "countdownPrefix"
	NextTestAfterFirst    = "nextTestAfterFirst"
	NextTestError         = "nextTestError"
	NextTestSoon          = "nextTestSoon"
	NextTestDisabled      = "nextTestDisabled"
	NextTestAt            = "nextTestAt"
	ToastTestInProgress   = "toastTestInProgress"
	ToastTestComplete     = "toastTestComplete"
	ToastTestTimeout      = "toastTestTimeout"
	ToastTestError        = "toastTestError"
	ToastTestBusy         = "toastTestBusy"
	ToastScheduleChanged  = "toastScheduleChanged"
	ToastScheduleDisabled = "toastScheduleDisabled"
	ToastSettingsSaved    = "toastSettingsSaved"
	ToastSettingsError    = "toastSettingsError"
	ToastNewResult        = "toastNewResult"
	WatchdogOnline        = "wdStatusOnline"
	WatchdogOffline       = "wdStatusOffline"
	WatchdogUpBody        = "wdUpBody"
	WatchdogDownBody      = "wdDownBody"
	WatchdogTitle         = "wdTitle"
	WatchdogTarget        = "wdTarget"
	WatchdogLatency       = "wdLatency"
	WatchdogLoss          = "wdLoss"
	WatchdogNoData        = "wdNoData"
	WatchdogUpdated       = "wdUpdated"
	WatchdogFailedPolls   = "wdFailedPolls"
	WatchdogStatus        = "wdStatus"
	WatchdogUnknown       = "wdUnknown"

	ToastFilterChanged = "toastFilterChanged"
	ToastDeleteSuccess = "toastDeleteSuccess"
	ToastDeleteError   = "toastDeleteError"
	ConfirmDelete      = "confirmDelete"

	Filter24h   = "filter24h"
	Filter7d    = "filter7d"
	Filter30d   = "filter30d"
	FilterAll   = "filterAll"
	FilterLabel = "filterLabel"

	DashLatest      = "dashLatest"
	DashOfPlan      = "dashOfPlan"
	DashSchedule    = "dashSchedule"
	DashTrend       = "dashTrend"
	DashNoDeclared  = "dashNoDeclared"
	DashEmpty       = "dashEmpty"
	DashEmptyHint   = "dashEmptyHint"
	DashEmptyRange  = "dashEmptyRange"
	DashMarked      = "dashMarked"
	ColTime         = "colTime"
	ColDownload     = "colDownload"
	ColUpload       = "colUpload"
	ColPing         = "colPing"
	ColJitter       = "colJitter"
	ColServer       = "colServer"
	ServerLabel     = "serverLabel"
	LastTest        = "lastTest"
	JobCompleted    = "jobCompleted"
	JobTimedOut     = "jobTimedOut"
	JobFailed       = "jobFailed"
	HintRunTest     = "hintRunTest"
	HintWatchdog    = "hintWatchdog"
	HintSettings    = "hintSettings"
	HintRefresh     = "hintRefresh"
	HintHelp        = "hintHelp"
	HintQuit        = "hintQuit"
	HintBack        = "hintBack"
	SettingsTitle   = "settingsTitle"
	SetSchedule     = "setSchedule"
	SetServerID     = "setServerId"
	SetLanguage     = "setLanguage"
	SetUnit         = "setUnit"
	SetTheme        = "setTheme"
	ScheduleOff     = "scheduleOff"
	ScheduleEvery   = "scheduleEvery"
	ServerIDInvalid = "serverIdInvalid"
)

var catalogs = map[string]map[string]string{
	"en": {
		CountdownPrefix:       "in",
		NextTestAfterFirst:    "after the first test",
		NextTestError:         "calculation error",
		NextTestSoon:          "any moment now",
		NextTestDisabled:      "schedule disabled",
		NextTestAt:            "next test",
		ToastTestInProgress:   "Speed test started...",
		ToastTestComplete:     "Speed test complete",
		ToastTestTimeout:      "Gave up waiting for the test result",
		ToastTestError:        "Could not start the speed test",
		ToastTestBusy:         "A speed test is already running",
		ToastScheduleChanged:  "Schedule changed:",
		ToastScheduleDisabled: "Automatic tests disabled",
		ToastSettingsSaved:    "Settings saved",
		ToastSettingsError:    "Could not save settings",
		ToastNewResult:        "New result:",
		WatchdogOnline:        "ONLINE",
		WatchdogOffline:       "OFFLINE",
		WatchdogUpBody:        "Target %s is ONLINE again",
		WatchdogDownBody:      "Target %s went OFFLINE",
		WatchdogTitle:         "Ping Watchdog",
		WatchdogTarget:        "Target",
		WatchdogLatency:       "Latency",
		WatchdogLoss:          "Packet loss",
		WatchdogNoData:        "No watchdog data yet",
		WatchdogUpdated:       "Updated",
		WatchdogFailedPolls:   "Failed polls",
		WatchdogStatus:        "Status",
		WatchdogUnknown:       "unknown",
		ToastFilterChanged:    "Filter changed to",
		ToastDeleteSuccess:    "Successfully deleted",
		ToastDeleteError:      "Error while deleting entries.",
		ConfirmDelete:         "Delete %d entries? This cannot be undone.",
		Filter24h:             "Last 24h",
		Filter7d:              "Last 7 days",
		Filter30d:             "Last 30 days",
		FilterAll:             "All",
		FilterLabel:           "Range",
		DashLatest:            "Latest",
		DashOfPlan:            "Of plan",
		DashSchedule:          "Schedule",
		DashTrend:             "Trend",
		DashNoDeclared:        "no declared speeds",
		DashEmpty:             "No speed test results yet",
		DashEmptyHint:         "Press %s to run a test now",
		DashEmptyRange:        "No results in this range",
		DashMarked:            "%d selected",
		ColTime:               "Time",
		ColDownload:           "Download",
		ColUpload:             "Upload",
		ColPing:               "Ping",
		ColJitter:             "Jitter",
		ColServer:             "Server",
		ServerLabel:           "Server",
		LastTest:              "last test",
		JobCompleted:          "completed",
		JobTimedOut:           "timed out",
		JobFailed:             "failed",
		HintRunTest:           "run test",
		HintWatchdog:          "watchdog",
		HintSettings:          "settings",
		HintRefresh:           "refresh",
		HintHelp:              "help",
		HintQuit:              "quit",
		HintBack:              "to go back",
		SettingsTitle:         "Settings",
		SetSchedule:           "Test Schedule",
		SetServerID:           "Server ID",
		SetLanguage:           "Language",
		SetUnit:               "Speed Unit",
		SetTheme:              "Theme",
		ScheduleOff:           "disabled",
		ScheduleEvery:         "every %dh",
		ServerIDInvalid:       "Server ID must be a positive number or empty for auto",
	},
	"pl": {
		CountdownPrefix:       "za",
		NextTestAfterFirst:    "po pierwszym teście",
		NextTestError:         "błąd obliczeń",
		NextTestSoon:          "za chwilę",
		NextTestDisabled:      "harmonogram wyłączony",
		NextTestAt:            "następny test",
		ToastTestInProgress:   "Test prędkości uruchomiony...",
		ToastTestComplete:     "Test prędkości zakończony",
		ToastTestTimeout:      "Przekroczono czas oczekiwania na wynik",
		ToastTestError:        "Nie udało się uruchomić testu",
		ToastTestBusy:         "Test jest już w toku",
		ToastScheduleChanged:  "Zmieniono harmonogram:",
		ToastScheduleDisabled: "Automatyczne testy wyłączone",
		ToastSettingsSaved:    "Zapisano ustawienia",
		ToastSettingsError:    "Błąd zapisu ustawień",
		ToastNewResult:        "Nowy wynik:",
		WatchdogOnline:        "ONLINE",
		WatchdogOffline:       "OFFLINE",
		WatchdogUpBody:        "Cel %s jest znowu ONLINE",
		WatchdogDownBody:      "Cel %s jest OFFLINE",
		WatchdogTitle:         "Ping Watchdog",
		WatchdogTarget:        "Cel",
		WatchdogLatency:       "Opóźnienie",
		WatchdogLoss:          "Utrata pakietów",
		WatchdogNoData:        "Brak danych watchdoga",
		WatchdogUpdated:       "Aktualizacja",
		WatchdogFailedPolls:   "Nieudane odczyty",
		WatchdogStatus:        "Status",
		WatchdogUnknown:       "nieznany",
		ToastFilterChanged:    "Zmieniono filtr na",
		ToastDeleteSuccess:    "Pomyślnie usunięto",
		ToastDeleteError:      "Błąd podczas usuwania wpisów.",
		ConfirmDelete:         "Usunąć %d wpisów? Tej operacji nie można cofnąć.",
		Filter24h:             "Ostatnie 24h",
		Filter7d:              "Ostatnie 7 dni",
		Filter30d:             "Ostatnie 30 dni",
		FilterAll:             "Wszystko",
		FilterLabel:           "Zakres",
		DashLatest:            "Ostatni",
		DashOfPlan:            "Z planu",
		DashSchedule:          "Harmonogram",
		DashTrend:             "Trend",
		DashNoDeclared:        "brak deklarowanych prędkości",
		DashEmpty:             "Brak wyników testów",
		DashEmptyHint:         "Naciśnij %s, aby uruchomić test",
		DashEmptyRange:        "Brak wyników w tym zakresie",
		DashMarked:            "zaznaczono %d",
		ColTime:               "Czas",
		ColDownload:           "Pobieranie",
		ColUpload:             "Wysyłanie",
		ColPing:               "Ping",
		ColJitter:             "Jitter",
		ColServer:             "Serwer",
		ServerLabel:           "Serwer",
		LastTest:              "ostatni test",
		JobCompleted:          "zakończony",
		JobTimedOut:           "przekroczono czas",
		JobFailed:             "błąd",
		HintRunTest:           "test",
		HintWatchdog:          "watchdog",
		HintSettings:          "ustawienia",
		HintRefresh:           "odśwież",
		HintHelp:              "pomoc",
		HintQuit:              "wyjście",
		HintBack:              "aby wrócić",
		SettingsTitle:         "Ustawienia",
		SetSchedule:           "Harmonogram testów",
		SetServerID:           "ID serwera",
		SetLanguage:           "Język",
		SetUnit:               "Jednostka",
		SetTheme:              "Motyw",
		ScheduleOff:           "wyłączony",
		ScheduleEvery:         "co %dh",
		ServerIDInvalid:       "ID serwera musi być liczbą dodatnią lub puste (auto)",
	},
}

// Catalog resolves message keys against the current language. The language
// can be switched from any goroutine; readers see the change on their next
// lookup.
type Catalog struct {
	lang atomic.Value // string
}

// NewCatalog returns a Catalog set to lang, or DefaultLanguage if lang is
// not supported.
func NewCatalog(lang string) *Catalog {
	c := &Catalog{}
	c.SetLanguage(lang)
	return c
}

// SetLanguage switches the active language. Unknown languages fall back to
// DefaultLanguage.
func (c *Catalog) SetLanguage(lang string) {
	if _, ok := catalogs[lang]; !ok {
		lang = DefaultLanguage
	}
	c.lang.Store(lang)
}

// Language returns the active language code.
func (c *Catalog) Language() string {
	if v, ok := c.lang.Load().(string); ok {
		return v
	}
	return DefaultLanguage
}

// T returns the message for key in the active language. Missing keys fall
// back to English, then to the key itself.
func (c *Catalog) T(key string) string {
	if msg, ok := catalogs[c.Language()][key]; ok {
		return msg
	}
	if msg, ok := catalogs[DefaultLanguage][key]; ok {
		return msg
	}
	return key
}

// Languages returns the supported language codes, sorted.
func Languages() []string {
	langs := make([]string, 0, len(catalogs))
	for l := range catalogs {
		langs = append(langs, l)
	}
	sort.Strings(langs)
	return langs
}

// Supported reports whether lang has a catalog.
func Supported(lang string) bool {
	_, ok := catalogs[lang]
	return ok
}
