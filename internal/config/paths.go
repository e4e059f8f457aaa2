package config

import (
	"os"
	"path/filepath"
	"runtime"
)

const appName = "speedlog"

// GetConfigDir returns the platform-specific config directory.
// Unix: $XDG_CONFIG_HOME/speedlog or ~/.config/speedlog
// Windows: %APPDATA%\speedlog
func GetConfigDir() (string, error) {
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("APPDATA")
		if base == "" {
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
	default:
		base = os.Getenv("XDG_CONFIG_HOME")
		if base == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			base = filepath.Join(home, ".config")
		}
	}
	return filepath.Join(base, appName), nil
}

// GetDataDir returns the platform-specific data directory.
// Unix: $XDG_DATA_HOME/speedlog or ~/.local/share/speedlog
// Windows: %LOCALAPPDATA%\speedlog
func GetDataDir() (string, error) {
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("LOCALAPPDATA")
		if base == "" {
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Local")
		}
	default:
		base = os.Getenv("XDG_DATA_HOME")
		if base == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			base = filepath.Join(home, ".local", "share")
		}
	}
	return filepath.Join(base, appName), nil
}

// GetConfigPath returns the path to config.toml.
func GetConfigPath() (string, error) {
	return inConfigDir("config.toml")
}

// GetEnvPath returns the path to the optional .env override file.
func GetEnvPath() (string, error) {
	return inConfigDir(".env")
}

// GetVaultPath returns the path to the encrypted credential vault.
func GetVaultPath() (string, error) {
	return inConfigDir("vault.enc")
}

// GetLogPath returns the path to the rotating log file.
func GetLogPath() (string, error) {
	dataDir, err := GetDataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dataDir, "logs", "speedlog.log"), nil
}

func inConfigDir(name string) (string, error) {
	cfgDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cfgDir, name), nil
}

// EnsureDirs creates all required directories if they don't exist.
func EnsureDirs() error {
	logDir := func() (string, error) {
		p, err := GetLogPath()
		if err != nil {
			return "", err
		}
		return filepath.Dir(p), nil
	}
	dirs := []func() (string, error){GetConfigDir, GetDataDir, logDir}
	for _, fn := range dirs {
		dir, err := fn()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0700); err != nil {
			return err
		}
	}
	return nil
}
