package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"sync"
	"time"
)

var (
	// ErrUnauthorized is returned when the server rejects the session and
	// no credentials are available to log in again.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrTestRunning is returned by TriggerTest when the server is already
	// running a speed test.
	ErrTestRunning = errors.New("speed test already running")
)

// StatusError is returned for any non-2xx response.
type StatusError struct {
	Code int
	Msg  string
}

func (e *StatusError) Error() string {
	if e.Msg != "" {
		return fmt.Sprintf("request failed: %d %s: %s", e.Code, http.StatusText(e.Code), e.Msg)
	}
	return fmt.Sprintf("request failed: %d %s", e.Code, http.StatusText(e.Code))
}

// Client talks to the speed-test server's REST API using a cookie session.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger

	mu       sync.Mutex
	username string
	password string
	loggedIn bool
}

// NewClient creates a client for baseURL (e.g. http://host:8000).
func NewClient(baseURL string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	jar, _ := cookiejar.New(nil)
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout: 15 * time.Second,
			Jar:     jar,
		},
		logger: logger,
	}
}

// BaseURL returns the server address this client targets.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// SetCredentials stores the login used when the session expires.
func (c *Client) SetCredentials(username, password string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.username = username
	c.password = password
}

// Login opens a session. It is a no-op error-wise when the server has
// authentication disabled.
func (c *Client) Login(ctx context.Context) error {
	c.mu.Lock()
	creds := loginRequest{Username: c.username, Password: c.password}
	c.mu.Unlock()

	if creds.Username == "" {
		return ErrUnauthorized
	}
	if err := c.do(ctx, http.MethodPost, "/api/login", creds, nil); err != nil {
		return fmt.Errorf("login: %w", err)
	}
	c.mu.Lock()
	c.loggedIn = true
	c.mu.Unlock()
	c.logger.Info("logged in", "server", c.baseURL, "user", creds.Username)
	return nil
}

// Logout closes the session opened by Login. Without one it does nothing.
func (c *Client) Logout(ctx context.Context) error {
	c.mu.Lock()
	open := c.loggedIn
	c.loggedIn = false
	c.mu.Unlock()
	if !open {
		return nil
	}
	if err := c.do(ctx, http.MethodPost, "/api/logout", nil, nil); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	c.logger.Info("logged out", "server", c.baseURL)
	return nil
}

// AuthStatus reports whether the server requires a login.
func (c *Client) AuthStatus(ctx context.Context) (AuthStatus, error) {
	var st AuthStatus
	err := c.do(ctx, http.MethodGet, "/api/auth-status", nil, &st)
	return st, err
}

// Results returns every stored result, newest first.
func (c *Client) Results(ctx context.Context) ([]Result, error) {
	var out []Result
	if err := c.authed(ctx, http.MethodGet, "/api/results", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// LatestResult returns the most recent result, or nil if none exists yet.
func (c *Client) LatestResult(ctx context.Context) (*Result, error) {
	var out Result
	err := c.authed(ctx, http.MethodGet, "/api/results/latest", nil, &out)
	if err != nil {
		var se *StatusError
		if errors.As(err, &se) && se.Code == http.StatusNotFound {
			return nil, nil
		}
		return nil, err
	}
	if out.ID == "" && out.Timestamp == "" {
		return nil, nil
	}
	return &out, nil
}

// Servers lists the speed-test servers known to the backend.
func (c *Client) Servers(ctx context.Context) ([]Server, error) {
	var raw json.RawMessage
	if err := c.authed(ctx, http.MethodGet, "/api/servers", nil, &raw); err != nil {
		return nil, err
	}
	var list serverList
	if err := json.Unmarshal(raw, &list); err == nil && list.Servers != nil {
		return list.Servers, nil
	}
	var servers []Server
	if err := json.Unmarshal(raw, &servers); err != nil {
		return nil, fmt.Errorf("decode servers: %w", err)
	}
	return servers, nil
}

// Settings fetches the server settings, including the schedule.
func (c *Client) Settings(ctx context.Context) (Settings, error) {
	var s Settings
	err := c.authed(ctx, http.MethodGet, "/api/settings", nil, &s)
	return s, err
}

// UpdateSettings persists a settings change.
func (c *Client) UpdateSettings(ctx context.Context, upd SettingsUpdate) error {
	return c.authed(ctx, http.MethodPost, "/api/settings", upd, nil)
}

// TriggerTest asks the server to start a speed test. Success only means the
// job was accepted.
func (c *Client) TriggerTest(ctx context.Context, serverID *int, language string) error {
	err := c.authed(ctx, http.MethodPost, "/api/trigger-test", triggerRequest{ServerID: serverID, AppLanguage: language}, nil)
	var se *StatusError
	if errors.As(err, &se) && se.Code == http.StatusTooManyRequests {
		return ErrTestRunning
	}
	return err
}

// WatchdogStatus fetches the latest ping watchdog reading and history.
func (c *Client) WatchdogStatus(ctx context.Context) (WatchdogStatus, error) {
	var st WatchdogStatus
	err := c.authed(ctx, http.MethodGet, "/api/watchdog/status", nil, &st)
	return st, err
}

// authed performs a request and, on 401, logs in once and retries.
// DeleteResults removes the results with the given IDs and returns how many
// the server deleted.
func (c *Client) DeleteResults(ctx context.Context, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var out deleteResponse
	if err := c.authed(ctx, http.MethodDelete, "/api/results", deleteRequest{IDs: ids}, &out); err != nil {
		return 0, err
	}
	return out.DeletedCount, nil
}

// Export streams the result history as CSV to w.
func (c *Client) Export(ctx context.Context, w io.Writer) error {
	return c.download(ctx, "/api/export", w, nil)
}

// Backup streams a database dump to w and returns the file name the server
// suggests for it. The dump is opaque to the client.
func (c *Client) Backup(ctx context.Context, w io.Writer) (string, error) {
	var name string
	err := c.download(ctx, "/api/backup", w, func(res *http.Response) {
		name = attachmentName(res.Header.Get("Content-Disposition"))
	})
	return name, err
}

// Restore uploads a dump produced by Backup. The server replaces its
// database with it.
func (c *Client) Restore(ctx context.Context, r io.Reader, filename string) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, r); err != nil {
		return fmt.Errorf("reading backup: %w", err)
	}
	if err := mw.Close(); err != nil {
		return err
	}

	payload, contentType := buf.Bytes(), mw.FormDataContentType()
	err = c.retryAuth(ctx, "/api/restore", func() error {
		return c.send(ctx, http.MethodPost, "/api/restore", payload, contentType, func(*http.Response) error {
			return nil
		})
	})
	if err != nil {
		return fmt.Errorf("restore: %w", err)
	}
	c.logger.Info("database restored", "server", c.baseURL, "file", filename)
	return nil
}

// download copies a GET response body to w. head, when set, sees the
// response before the body is read.
func (c *Client) download(ctx context.Context, path string, w io.Writer, head func(*http.Response)) error {
	return c.retryAuth(ctx, path, func() error {
		return c.send(ctx, http.MethodGet, path, nil, "", func(res *http.Response) error {
			if head != nil {
				head(res)
			}
			_, err := io.Copy(w, res.Body)
			return err
		})
	})
}

func attachmentName(disposition string) string {
	if disposition == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(disposition)
	if err != nil {
		return ""
	}
	return params["filename"]
}

func (c *Client) authed(ctx context.Context, method, path string, body, out any) error {
	return c.retryAuth(ctx, path, func() error {
		return c.do(ctx, method, path, body, out)
	})
}

// retryAuth runs call and, if the server answers 401, logs in again and
// runs it once more.
func (c *Client) retryAuth(ctx context.Context, path string, call func() error) error {
	err := call()

	var se *StatusError
	if !errors.As(err, &se) || se.Code != http.StatusUnauthorized {
		return err
	}

	c.logger.Warn("session rejected, logging in again", "path", path)
	if loginErr := c.Login(ctx); loginErr != nil {
		if errors.Is(loginErr, ErrUnauthorized) {
			return ErrUnauthorized
		}
		return fmt.Errorf("refresh session after 401: %w", loginErr)
	}
	return call()
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var payload []byte
	contentType := ""
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		payload, contentType = data, "application/json"
	}

	return c.send(ctx, method, path, payload, contentType, func(res *http.Response) error {
		if out == nil {
			return nil
		}
		return json.NewDecoder(res.Body).Decode(out)
	})
}

// send issues one request and hands a 2xx response to read. payload is
// replayable so the same bytes can be sent again after a re-login.
func (c *Client) send(ctx context.Context, method, path string, payload []byte, contentType string, read func(*http.Response) error) error {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Cache-Control", "no-store")

	res, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		data, _ := io.ReadAll(res.Body)
		return &StatusError{Code: res.StatusCode, Msg: strings.TrimSpace(string(data))}
	}
	return read(res)
}
