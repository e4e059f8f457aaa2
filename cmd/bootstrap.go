package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/tonhe/speedlog/internal/api"
	"github.com/tonhe/speedlog/internal/config"
	"github.com/tonhe/speedlog/internal/logging"
	"github.com/tonhe/speedlog/internal/vault"
	"golang.org/x/term"
)

// EnvMasterKey holds the vault password for non-interactive use.
const EnvMasterKey = "SPEEDLOG_MASTER_KEY"

// Bounds for the requests made while starting up and shutting down.
const (
	authCheckTimeout = 5 * time.Second
	logoutTimeout    = 3 * time.Second
)

// Runtime is everything a command or the TUI needs to talk to the server.
type Runtime struct {
	Config *config.Config
	Client *api.Client
	Logger *slog.Logger
	closer io.Closer
}

// Close ends the server login, if one was opened, and flushes the log file.
func (r *Runtime) Close() error {
	var errs []error
	if r.Client != nil {
		ctx, cancel := context.WithTimeout(context.Background(), logoutTimeout)
		if err := r.Client.Logout(ctx); err != nil {
			r.Logger.Warn("logout failed", "error", err)
		}
		cancel()
	}
	if r.closer != nil {
		errs = append(errs, r.closer.Close())
	}
	return errors.Join(errs...)
}

// Setup loads the config, starts logging and builds an API client using the
// configured login profile. CLI commands pass stderr=true so log records
// also reach the terminal.
func Setup(stderr bool) (*Runtime, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := config.EnsureDirs(); err != nil {
		return nil, fmt.Errorf("creating config directories: %w", err)
	}

	logPath, err := config.GetLogPath()
	if err != nil {
		return nil, err
	}
	closer, err := logging.Init(logging.Options{Path: logPath, Level: cfg.LogLevel, Stderr: stderr})
	if err != nil {
		return nil, err
	}
	logger := slog.Default()

	server := cfg.Server
	var profile vault.Profile
	switch {
	case cfg.Profile == "":
	case authDisabled(server, logger):
		logger.Info("server has authentication disabled, not opening the login vault", "server", server)
	default:
		store, err := openVault()
		if err != nil {
			closer.Close()
			return nil, err
		}
		profile, err = store.Get(cfg.Profile)
		if err != nil {
			closer.Close()
			return nil, fmt.Errorf("login %q: %w", cfg.Profile, err)
		}
		if profile.Server != "" && os.Getenv(config.EnvServer) == "" {
			server = profile.Server
		}
	}

	client := api.NewClient(server, logger)
	if profile.Username != "" {
		client.SetCredentials(profile.Username, profile.Password)
	}
	logger.Debug("runtime ready", "server", client.BaseURL(), "profile", cfg.Profile)

	return &Runtime{Config: cfg, Client: client, Logger: logger, closer: closer}, nil
}

// authDisabled asks server whether it requires a login. Any failure counts
// as "required" so the vault is still opened.
func authDisabled(server string, logger *slog.Logger) bool {
	ctx, cancel := context.WithTimeout(context.Background(), authCheckTimeout)
	defer cancel()
	st, err := api.NewClient(server, logger).AuthStatus(ctx)
	if err != nil {
		logger.Debug("auth status unavailable", "server", server, "error", err)
		return false
	}
	return !st.Enabled
}

// setupOrReport is Setup for CLI commands. Failures are printed and the
// caller returns its exit status.
func setupOrReport() (*Runtime, bool) {
	rt, err := Setup(true)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return nil, false
	}
	return rt, true
}

// openVault opens the login vault with SPEEDLOG_MASTER_KEY when set.
// Otherwise an empty password is tried first to support vaults created
// without one, then the user is prompted.
func openVault() (*vault.FileStore, error) {
	path, err := config.GetVaultPath()
	if err != nil {
		return nil, err
	}
	if err := config.EnsureDirs(); err != nil {
		return nil, fmt.Errorf("creating config directories: %w", err)
	}

	if key := os.Getenv(EnvMasterKey); key != "" {
		return openVaultWith(path, []byte(key))
	}

	store, err := vault.Open(path, []byte(""))
	if err == nil {
		return store, nil
	}
	if !errors.Is(err, vault.ErrLocked) {
		return nil, fmt.Errorf("opening login vault: %w", err)
	}

	password, err := readSecret("Master password: ")
	if err != nil {
		return nil, err
	}
	return openVaultWith(path, password)
}

func openVaultWith(path string, password []byte) (*vault.FileStore, error) {
	store, err := vault.Open(path, password)
	if err != nil {
		return nil, fmt.Errorf("opening login vault: %w", err)
	}
	return store, nil
}

func readSecret(prompt string) ([]byte, error) {
	fmt.Fprint(os.Stderr, prompt)
	secret, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return nil, fmt.Errorf("reading password: %w", err)
	}
	return secret, nil
}
