package config

import (
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Server  string `toml:"server"`
	Profile string `toml:"profile"`

	Theme    string `toml:"theme"`
	Language string `toml:"language"`
	Unit     string `toml:"unit"`
	LogLevel string `toml:"log_level"`

	// HistoryRange is the dashboard window: 24h, 7d, 30d or all.
	HistoryRange string `toml:"history_range"`

	JobPollInterval    time.Duration `toml:"-"`
	JobPollIntervalStr string        `toml:"job_poll_interval"`
	JobMaxAttempts     int           `toml:"job_max_attempts"`

	WatchdogInterval    time.Duration `toml:"-"`
	WatchdogIntervalStr string        `toml:"watchdog_interval"`

	ResultWatchInterval    time.Duration `toml:"-"`
	ResultWatchIntervalStr string        `toml:"result_watch_interval"`
}

func DefaultConfig() *Config {
	return &Config{
		Server:                 "http://localhost:8000",
		Profile:                "",
		Theme:                  "solarized-dark",
		Language:               "en",
		Unit:                   "Mbps",
		LogLevel:               "info",
		HistoryRange:           "24h",
		JobPollInterval:        3 * time.Second,
		JobPollIntervalStr:     "3s",
		JobMaxAttempts:         25,
		WatchdogInterval:       5 * time.Second,
		WatchdogIntervalStr:    "5s",
		ResultWatchInterval:    10 * time.Second,
		ResultWatchIntervalStr: "10s",
	}
}

func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := parseDuration(cfg.JobPollIntervalStr, &cfg.JobPollInterval); err != nil {
		return nil, fmt.Errorf("job_poll_interval: %w", err)
	}
	if err := parseDuration(cfg.WatchdogIntervalStr, &cfg.WatchdogInterval); err != nil {
		return nil, fmt.Errorf("watchdog_interval: %w", err)
	}
	if err := parseDuration(cfg.ResultWatchIntervalStr, &cfg.ResultWatchInterval); err != nil {
		return nil, fmt.Errorf("result_watch_interval: %w", err)
	}
	return cfg, nil
}

func SaveConfig(cfg *Config, path string) error {
	cfg.JobPollIntervalStr = cfg.JobPollInterval.String()
	cfg.WatchdogIntervalStr = cfg.WatchdogInterval.String()
	cfg.ResultWatchIntervalStr = cfg.ResultWatchInterval.String()
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(cfg)
}

// Validate reports the first setting that would stop speedlog from running.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Server)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("server must be an http(s) URL, got %q", c.Server)
	}
	if c.JobPollInterval < time.Second {
		return fmt.Errorf("job_poll_interval must be at least 1s, got %s", c.JobPollInterval)
	}
	if c.JobMaxAttempts < 1 {
		return fmt.Errorf("job_max_attempts must be at least 1, got %d", c.JobMaxAttempts)
	}
	if c.WatchdogInterval < time.Second {
		return fmt.Errorf("watchdog_interval must be at least 1s, got %s", c.WatchdogInterval)
	}
	if c.ResultWatchInterval < time.Second {
		return fmt.Errorf("result_watch_interval must be at least 1s, got %s", c.ResultWatchInterval)
	}
	switch c.Unit {
	case "Mbps", "MBps":
	default:
		return fmt.Errorf("unit must be Mbps or MBps, got %q", c.Unit)
	}
	switch c.HistoryRange {
	case "24h", "7d", "30d", "all":
	default:
		return fmt.Errorf("history_range must be 24h, 7d, 30d or all, got %q", c.HistoryRange)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level must be debug, info, warn or error, got %q", c.LogLevel)
	}
	return nil
}

func parseDuration(s string, dst *time.Duration) error {
	if s == "" {
		return nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*dst = d
	return nil
}
