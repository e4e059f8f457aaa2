package cmd

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/tonhe/speedlog/internal/api"
	"github.com/tonhe/speedlog/internal/config"
	"github.com/tonhe/speedlog/internal/i18n"
	"github.com/tonhe/speedlog/internal/vault"
)

func TestIsSubcommand(t *testing.T) {
	for _, name := range []string{"run", "status", "next", "servers", "export", "backup", "restore", "login", "config", "themes", "version", "help"} {
		if !IsSubcommand(name) {
			t.Errorf("expected %q to be a subcommand", name)
		}
	}
	if IsSubcommand("dashboard") || IsSubcommand("--theme") {
		t.Error("expected unknown arguments to launch the TUI")
	}
}

func TestParseServerFlag(t *testing.T) {
	tests := []struct {
		args    []string
		want    int
		wantErr bool
	}{
		{args: nil, want: 0},
		{args: []string{"--server", "12"}, want: 12},
		{args: []string{"--server=7"}, want: 7},
		{args: []string{"--server"}, wantErr: true},
		{args: []string{"--server", "abc"}, wantErr: true},
		{args: []string{"--server", "0"}, wantErr: true},
		{args: []string{"--fast"}, wantErr: true},
	}
	for _, tt := range tests {
		got, err := parseServerFlag(tt.args)
		if tt.wantErr {
			if err == nil {
				t.Errorf("%v: expected error", tt.args)
			}
			continue
		}
		if err != nil {
			t.Errorf("%v: unexpected error: %v", tt.args, err)
			continue
		}
		if tt.want == 0 {
			if got != nil {
				t.Errorf("%v: expected no server, got %d", tt.args, *got)
			}
			continue
		}
		if got == nil || *got != tt.want {
			t.Errorf("%v: expected %d, got %v", tt.args, tt.want, got)
		}
	}
}

func setupDirs(t *testing.T) string {
	t.Helper()
	base := t.TempDir()
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(base, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(base, "data"))
	for _, k := range []string{config.EnvServer, config.EnvProfile, config.EnvLanguage, config.EnvLogLevel, EnvMasterKey} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
	return base
}

func TestSetupWithoutProfile(t *testing.T) {
	setupDirs(t)
	t.Setenv(config.EnvServer, "http://speed.lan:8000")

	rt, err := Setup(false)
	if err != nil {
		t.Fatalf("Setup() error: %v", err)
	}
	defer rt.Close()

	if got := rt.Client.BaseURL(); got != "http://speed.lan:8000" {
		t.Errorf("expected env server, got %q", got)
	}
	logPath, _ := config.GetLogPath()
	if _, err := os.Stat(filepath.Dir(logPath)); err != nil {
		t.Errorf("expected log dir created: %v", err)
	}
}

func TestSetupUsesProfileServer(t *testing.T) {
	setupDirs(t)
	t.Setenv(EnvMasterKey, "hunter2")

	path, err := config.GetVaultPath()
	if err != nil {
		t.Fatalf("GetVaultPath() error: %v", err)
	}
	if err := config.EnsureDirs(); err != nil {
		t.Fatalf("EnsureDirs() error: %v", err)
	}
	store, err := vault.Open(path, []byte("hunter2"))
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	if err := store.Add(vault.Profile{Name: "home", Server: "http://10.0.0.5:8000", Username: "admin", Password: "pw"}); err != nil {
		t.Fatalf("Add() error: %v", err)
	}
	t.Setenv(config.EnvProfile, "home")

	rt, err := Setup(false)
	if err != nil {
		t.Fatalf("Setup() error: %v", err)
	}
	defer rt.Close()
	if got := rt.Client.BaseURL(); got != "http://10.0.0.5:8000" {
		t.Errorf("expected profile server, got %q", got)
	}
}

func TestSetupUnknownProfile(t *testing.T) {
	setupDirs(t)
	t.Setenv(config.EnvProfile, "missing")

	if _, err := Setup(false); err == nil {
		t.Error("expected error for unknown login")
	}
}

func addProfile(t *testing.T, masterKey string, p vault.Profile) {
	t.Helper()
	t.Setenv(EnvMasterKey, masterKey)
	path, err := config.GetVaultPath()
	if err != nil {
		t.Fatalf("GetVaultPath() error: %v", err)
	}
	if err := config.EnsureDirs(); err != nil {
		t.Fatalf("EnsureDirs() error: %v", err)
	}
	store, err := vault.Open(path, []byte(masterKey))
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	if err := store.Add(p); err != nil {
		t.Fatalf("Add() error: %v", err)
	}
}

func TestSetupSkipsVaultWhenAuthDisabled(t *testing.T) {
	setupDirs(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"enabled":false}`))
	}))
	defer srv.Close()
	t.Setenv(config.EnvServer, srv.URL)
	t.Setenv(config.EnvProfile, "missing")

	rt, err := Setup(false)
	if err != nil {
		t.Fatalf("expected the vault to be skipped, got %v", err)
	}
	defer rt.Close()
	if got := rt.Client.BaseURL(); got != srv.URL {
		t.Errorf("expected %s, got %q", srv.URL, got)
	}
}

func TestSetupOpensVaultWhenAuthEnabled(t *testing.T) {
	setupDirs(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"enabled":true}`))
	}))
	defer srv.Close()
	t.Setenv(config.EnvServer, srv.URL)
	t.Setenv(config.EnvProfile, "missing")

	if _, err := Setup(false); err == nil {
		t.Error("expected unknown login error when auth is enabled")
	}
}

func TestRunCmdCleansUpBeforeReturningStatus(t *testing.T) {
	setupDirs(t)
	var logouts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/auth-status":
			_, _ = w.Write([]byte(`{"enabled":true}`))
		case "/api/login":
			http.SetCookie(w, &http.Cookie{Name: "session", Value: "ok", Path: "/"})
		case "/api/logout":
			logouts.Add(1)
		default:
			if _, err := r.Cookie("session"); err != nil {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			http.Error(w, "database locked", http.StatusInternalServerError)
		}
	}))
	defer srv.Close()
	t.Setenv(config.EnvServer, srv.URL)
	addProfile(t, "hunter2", vault.Profile{Name: "home", Server: srv.URL, Username: "admin", Password: "pw"})
	t.Setenv(config.EnvProfile, "home")

	if code := runCmd(nil); code != 1 {
		t.Errorf("expected exit status 1, got %d", code)
	}
	if logouts.Load() != 1 {
		t.Errorf("expected the deferred logout to run, got %d", logouts.Load())
	}
}

func TestRunCmdBadFlag(t *testing.T) {
	if code := runCmd([]string{"--server", "abc"}); code != 1 {
		t.Errorf("expected exit status 1, got %d", code)
	}
}

func TestDispatchUnknownCommand(t *testing.T) {
	if code := dispatch([]string{"frobnicate"}); code != 1 {
		t.Errorf("expected exit status 1, got %d", code)
	}
	if code := dispatch([]string{"version"}); code != 0 {
		t.Errorf("expected exit status 0, got %d", code)
	}
}

func TestExportCmdWritesFile(t *testing.T) {
	base := setupDirs(t)
	const csv = "Timestamp,Ping (ms),Jitter (ms),Download (Mbps),Upload (Mbps)\n"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/export" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(csv))
	}))
	defer srv.Close()
	t.Setenv(config.EnvServer, srv.URL)

	out := filepath.Join(base, "results.csv")
	if code := exportCmd([]string{out}); code != 0 {
		t.Fatalf("expected exit status 0, got %d", code)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("ReadFile() error: %v", err)
	}
	if string(data) != csv {
		t.Errorf("expected %q, got %q", csv, data)
	}
}

func TestBackupCmdWritesDump(t *testing.T) {
	base := setupDirs(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Disposition", `attachment; filename="backup_20240101.sql"`)
		_, _ = w.Write([]byte("-- dump"))
	}))
	defer srv.Close()
	t.Setenv(config.EnvServer, srv.URL)

	out := filepath.Join(base, "mine.sql")
	if code := backupCmd([]string{out}); code != 0 {
		t.Fatalf("expected exit status 0, got %d", code)
	}
	if data, _ := os.ReadFile(out); string(data) != "-- dump" {
		t.Errorf("unexpected dump %q", data)
	}
}

func TestBackupPath(t *testing.T) {
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.Local)
	tests := []struct {
		args      []string
		suggested string
		want      string
	}{
		{[]string{"out.sql"}, "backup_x.sql", "out.sql"},
		{nil, "backup_x.sql", "backup_x.sql"},
		{nil, "../../etc/backup_x.sql", "backup_x.sql"},
		{nil, "", "speedlog_backup_20240102_030405.sql"},
	}
	for _, tt := range tests {
		if got := backupPath(tt.args, tt.suggested, now); got != tt.want {
			t.Errorf("backupPath(%v, %q) = %q, want %q", tt.args, tt.suggested, got, tt.want)
		}
	}
}

func TestRestoreCmd(t *testing.T) {
	base := setupDirs(t)
	var uploads atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/restore" {
			http.NotFound(w, r)
			return
		}
		f, _, err := r.FormFile("file")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		data, _ := io.ReadAll(f)
		if string(data) != "-- dump" {
			http.Error(w, "bad dump", http.StatusBadRequest)
			return
		}
		uploads.Add(1)
		_, _ = w.Write([]byte(`{"message":"Restored"}`))
	}))
	defer srv.Close()
	t.Setenv(config.EnvServer, srv.URL)

	dump := filepath.Join(base, "backup.sql")
	if err := os.WriteFile(dump, []byte("-- dump"), 0600); err != nil {
		t.Fatal(err)
	}

	if code := restoreCmd([]string{dump}, strings.NewReader("n\n")); code != 1 {
		t.Errorf("expected declined restore to fail, got %d", code)
	}
	if uploads.Load() != 0 {
		t.Fatal("expected no upload after declining")
	}

	if code := restoreCmd([]string{dump}, strings.NewReader("y\n")); code != 0 {
		t.Errorf("expected confirmed restore to succeed, got %d", code)
	}
	if code := restoreCmd([]string{"--yes", dump}, strings.NewReader("")); code != 0 {
		t.Errorf("expected --yes restore to succeed, got %d", code)
	}
	if uploads.Load() != 2 {
		t.Errorf("expected 2 uploads, got %d", uploads.Load())
	}
}

func TestParseRestoreArgs(t *testing.T) {
	if file, yes, err := parseRestoreArgs([]string{"a.sql", "-y"}); err != nil || file != "a.sql" || !yes {
		t.Errorf("unexpected parse %q %v %v", file, yes, err)
	}
	for _, args := range [][]string{nil, {"--yes"}, {"a.sql", "b.sql"}, {"a.sql", "--force"}} {
		if _, _, err := parseRestoreArgs(args); err == nil {
			t.Errorf("%v: expected error", args)
		}
	}
}

func TestPrintStatusFollowsLanguage(t *testing.T) {
	online := false
	lat := 21.5
	st := api.WatchdogStatus{Current: api.WatchdogCurrent{
		Online: &online, Latency: &lat, Loss: 40, Target: "1.1.1.1", Updated: "10:00:00",
	}}

	var buf bytes.Buffer
	printStatus(&buf, i18n.NewCatalog("pl"), "http://speed.lan:8000", st)
	out := buf.String()
	for _, want := range []string{"Serwer", "http://speed.lan:8000", "OFFLINE", "21.5 ms", "40.0%", "Aktualizacja"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Updated") {
		t.Errorf("expected no english labels, got:\n%s", out)
	}

	buf.Reset()
	printStatus(&buf, i18n.NewCatalog("en"), "http://speed.lan:8000", api.WatchdogStatus{})
	if !strings.Contains(buf.String(), "unknown") {
		t.Errorf("expected unknown state, got:\n%s", buf.String())
	}
}

func TestChangeVaultPassword(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vault.json")
	store, err := vault.Open(path, []byte("old"))
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	if err := store.Add(vault.Profile{Name: "home", Server: "http://h:8000"}); err != nil {
		t.Fatalf("Add() error: %v", err)
	}

	if err := changeVaultPassword(store, []byte("new"), []byte("typo")); err == nil {
		t.Error("expected mismatch error")
	}
	if err := changeVaultPassword(store, []byte("new"), []byte("new")); err != nil {
		t.Fatalf("changeVaultPassword() error: %v", err)
	}

	reopened, err := vault.Open(path, []byte("new"))
	if err != nil {
		t.Fatalf("Open() with new password error: %v", err)
	}
	if _, err := reopened.Get("home"); err != nil {
		t.Errorf("expected profile after re-key, got %v", err)
	}
	if _, err := vault.Open(path, []byte("old")); err == nil {
		t.Error("expected old password rejected")
	}
}

func TestConfigCmdRange(t *testing.T) {
	setupDirs(t)
	if code := configCmd([]string{"range", "7d"}); code != 0 {
		t.Fatalf("expected exit status 0, got %d", code)
	}
	if got := loadOrDefaultConfig().HistoryRange; got != "7d" {
		t.Errorf("expected 7d, got %q", got)
	}
	if code := configCmd([]string{"range", "1y"}); code != 1 {
		t.Errorf("expected exit status 1, got %d", code)
	}
	if code := configCmd([]string{"colour", "red"}); code != 1 {
		t.Errorf("expected exit status 1, got %d", code)
	}
	if got := loadOrDefaultConfig().HistoryRange; got != "7d" {
		t.Errorf("expected rejected values to leave 7d, got %q", got)
	}
}
