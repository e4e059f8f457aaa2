package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/tonhe/speedlog/internal/api"
	"github.com/tonhe/speedlog/internal/engine"
	"github.com/tonhe/speedlog/internal/i18n"
	"github.com/tonhe/speedlog/internal/schedule"
)

const requestTimeout = 15 * time.Second

func statusCmd() int {
	rt, ok := setupOrReport()
	if !ok {
		return 1
	}
	defer rt.Close()
	catalog := i18n.NewCatalog(rt.Config.Language)

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()
	st, err := rt.Client.WatchdogStatus(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	printStatus(os.Stdout, catalog, rt.Client.BaseURL(), st)
	return 0
}

// printStatus writes the watchdog reading as aligned label/value lines.
func printStatus(w io.Writer, catalog *i18n.Catalog, server string, st api.WatchdogStatus) {
	line := func(label, value string) {
		fmt.Fprintf(w, "%-14s %s\n", label, value)
	}

	cur := st.Current
	state := catalog.T(i18n.WatchdogUnknown)
	if cur.Online != nil {
		state = catalog.T(i18n.WatchdogOffline)
		if *cur.Online {
			state = catalog.T(i18n.WatchdogOnline)
		}
	}
	line(catalog.T(i18n.ServerLabel), server)
	line(catalog.T(i18n.WatchdogTarget), cur.Target)
	line(catalog.T(i18n.WatchdogStatus), state)
	latency := "-"
	if cur.Latency != nil {
		latency = fmt.Sprintf("%.1f ms", *cur.Latency)
	}
	line(catalog.T(i18n.WatchdogLatency), latency)
	line(catalog.T(i18n.WatchdogLoss), fmt.Sprintf("%.1f%%", cur.Loss))
	if cur.Updated != "" {
		line(catalog.T(i18n.WatchdogUpdated), cur.Updated)
	}
}

func nextCmd() int {
	rt, ok := setupOrReport()
	if !ok {
		return 1
	}
	defer rt.Close()
	catalog := i18n.NewCatalog(rt.Config.Language)

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()
	settings, err := rt.Client.Settings(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	cfg := schedule.Config{LastRunAt: settings.LatestTestTimestamp, IntervalHours: settings.ScheduleHours}
	now := time.Now()
	fmt.Println(engine.NextRunText(catalog, cfg, now))

	last, err := schedule.ParseNaiveLocal(cfg.LastRunAt)
	if err != nil {
		return 0
	}
	if next, ok := schedule.NextDueAt(last, cfg.IntervalHours, now); ok {
		fmt.Println(schedule.FormatCountdown(schedule.Remaining(next, now)))
	}
	return 0
}

func serversCmd() int {
	rt, ok := setupOrReport()
	if !ok {
		return 1
	}
	defer rt.Close()

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()
	servers, err := rt.Client.Servers(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if len(servers) == 0 {
		fmt.Println("No servers available.")
		return 0
	}
	for _, s := range servers {
		loc := s.Location
		if s.Country != "" {
			loc += ", " + s.Country
		}
		fmt.Printf("%-8d %-30s %s\n", s.ID, s.Name, loc)
	}
	return 0
}
