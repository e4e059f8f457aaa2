package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/tonhe/speedlog/internal/engine"
	"github.com/tonhe/speedlog/internal/i18n"
	"github.com/tonhe/speedlog/internal/schedule"
)

// quietDisplay discards countdown frames in headless mode.
type quietDisplay struct{}

func (quietDisplay) Show(string) {}
func (quietDisplay) Hide()       {}

// parseServerFlag reads an optional "--server ID" or "--server=ID".
func parseServerFlag(args []string) (*int, error) {
	for i := 0; i < len(args); i++ {
		var val string
		switch {
		case args[i] == "--server":
			if i+1 >= len(args) {
				return nil, errors.New("--server needs a value")
			}
			val = args[i+1]
			i++
		case strings.HasPrefix(args[i], "--server="):
			val = strings.TrimPrefix(args[i], "--server=")
		default:
			return nil, fmt.Errorf("unknown argument %q", args[i])
		}
		id, err := strconv.Atoi(val)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("invalid server id %q", val)
		}
		return &id, nil
	}
	return nil, nil
}

func runCmd(args []string) int {
	serverID, err := parseServerFlag(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		fmt.Fprintln(os.Stderr, "Usage: speedlog run [--server ID]")
		return 1
	}

	rt, ok := setupOrReport()
	if !ok {
		return 1
	}
	defer rt.Close()
	cfg := rt.Config
	unit, _ := engine.ParseUnit(cfg.Unit)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	catalog := i18n.NewCatalog(cfg.Language)
	session := engine.NewSession(rt.Client, quietDisplay{}, catalog, nil, engine.Options{
		Logger:          rt.Logger,
		JobPollInterval: cfg.JobPollInterval,
		JobMaxAttempts:  cfg.JobMaxAttempts,
	})
	defer session.Stop()

	if err := session.RefreshSchedule(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	fmt.Println(catalog.T(i18n.ToastTestInProgress))
	out, err := session.RunTest(ctx, serverID)
	switch {
	case engine.IsCancelled(err):
		fmt.Fprintln(os.Stderr, "Cancelled.")
		return 130
	case out.State == engine.JobCompleted:
		fmt.Println(catalog.T(i18n.ToastTestComplete))
		if r := out.Result; r != nil {
			fmt.Printf("  time      %s\n", schedule.FormatNaiveLocal(out.Timestamp))
			fmt.Printf("  download  %s\n", engine.FormatSpeed(r.Download, unit))
			fmt.Printf("  upload    %s\n", engine.FormatSpeed(r.Upload, unit))
			fmt.Printf("  ping      %.1f ms\n", r.Ping)
			if r.ServerName != "" {
				fmt.Printf("  server    %s\n", r.ServerName)
			}
		}
		return 0
	case out.State == engine.JobTimedOut:
		fmt.Fprintf(os.Stderr, "Error: %s (%d attempts)\n", catalog.T(i18n.ToastTestTimeout), out.Attempts)
		return 1
	default:
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
}
