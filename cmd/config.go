package cmd

import (
	"fmt"
	"os"

	"github.com/tonhe/speedlog/internal/config"
	"github.com/tonhe/speedlog/internal/engine"
	"github.com/tonhe/speedlog/internal/i18n"
	"github.com/tonhe/speedlog/tui/styles"
)

const configUsage = "Usage: speedlog config <path|server|profile|theme|language|unit|range>"

func configCmd(args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, configUsage)
		return 1
	}
	if args[0] == "path" {
		return configPath()
	}
	if len(args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: speedlog config %s VALUE\n", args[0])
		return 1
	}

	cfg := loadOrDefaultConfig()
	if err := setConfigValue(cfg, args[0], args[1]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if err := saveConfig(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	fmt.Printf("Default %s set to %q.\n", args[0], args[1])
	return 0
}

// setConfigValue applies one "config KEY VALUE" command to cfg.
func setConfigValue(cfg *config.Config, key, value string) error {
	switch key {
	case "server":
		cfg.Server = value
	case "profile":
		cfg.Profile = value
	case "theme":
		if styles.GetThemeByName(value) == nil {
			return fmt.Errorf("unknown theme %q, run 'speedlog themes' to see available themes", value)
		}
		cfg.Theme = value
	case "language":
		if !i18n.Supported(value) {
			return fmt.Errorf("unsupported language %q (available: %v)", value, i18n.Languages())
		}
		cfg.Language = value
	case "unit":
		unit, err := engine.ParseUnit(value)
		if err != nil {
			return err
		}
		cfg.Unit = string(unit)
	case "range":
		rng, err := engine.ParseHistoryRange(value)
		if err != nil {
			return err
		}
		cfg.HistoryRange = string(rng)
	default:
		return fmt.Errorf("unknown config command %q\n%s", key, configUsage)
	}
	return nil
}

func configPath() int {
	dir, err := config.GetConfigDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	fmt.Println(dir)
	return 0
}

func themesCmd() {
	for _, name := range styles.ListThemes() {
		fmt.Println(name)
	}
}

// loadOrDefaultConfig loads the config file, falling back to defaults. Env
// overrides are not applied so they never get written back.
func loadOrDefaultConfig() *config.Config {
	path, err := config.GetConfigPath()
	if err != nil {
		return config.DefaultConfig()
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return config.DefaultConfig()
	}
	return cfg
}

// saveConfig writes the config to disk, creating directories as needed.
func saveConfig(cfg *config.Config) error {
	if err := config.EnsureDirs(); err != nil {
		return fmt.Errorf("creating config directories: %w", err)
	}
	path, err := config.GetConfigPath()
	if err != nil {
		return err
	}
	if err := config.SaveConfig(cfg, path); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}
	return nil
}
