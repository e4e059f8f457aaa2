package config

import (
	"errors"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variables that override the config file.
const (
	EnvServer   = "SPEEDLOG_SERVER"
	EnvProfile  = "SPEEDLOG_PROFILE"
	EnvLanguage = "SPEEDLOG_LANG"
	EnvLogLevel = "SPEEDLOG_LOG_LEVEL"
)

// LoadEnvFile loads KEY=value pairs from path into the process environment
// without overwriting variables that are already set. A missing file is not
// an error.
func LoadEnvFile(path string) error {
	err := godotenv.Load(path)
	if err != nil && errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// ApplyEnv overrides cfg fields from SPEEDLOG_* variables.
func ApplyEnv(cfg *Config) {
	if v := getEnv(EnvServer); v != "" {
		cfg.Server = v
	}
	if v := getEnv(EnvProfile); v != "" {
		cfg.Profile = v
	}
	if v := getEnv(EnvLanguage); v != "" {
		cfg.Language = v
	}
	if v := getEnv(EnvLogLevel); v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}
}

func getEnv(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

// Load reads config.toml and .env from the config directory and applies
// environment overrides.
func Load() (*Config, error) {
	cfgPath, err := GetConfigPath()
	if err != nil {
		return nil, err
	}
	envPath, err := GetEnvPath()
	if err != nil {
		return nil, err
	}
	if err := LoadEnvFile(envPath); err != nil {
		return nil, err
	}
	cfg, err := LoadConfig(cfgPath)
	if err != nil {
		return nil, err
	}
	ApplyEnv(cfg)
	return cfg, nil
}
