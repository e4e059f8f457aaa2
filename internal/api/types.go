package api

// Result is one stored speed-test measurement.
type Result struct {
	ID             string  `json:"id"`
	Timestamp      string  `json:"timestamp"`
	Ping           float64 `json:"ping"`
	Jitter         float64 `json:"jitter"`
	Download       float64 `json:"download"`
	Upload         float64 `json:"upload"`
	ServerID       *int    `json:"server_id"`
	ServerName     string  `json:"server_name"`
	ServerLocation string  `json:"server_location"`
	ISP            string  `json:"isp"`
	ResultURL      string  `json:"result_url"`
}

// Settings mirrors GET /api/settings.
type Settings struct {
	SelectedServerID    *int   `json:"selected_server_id"`
	ScheduleHours       int    `json:"schedule_hours"`
	PingTarget          string `json:"ping_target"`
	PingInterval        int    `json:"ping_interval"`
	DeclaredDownload    int    `json:"declared_download"`
	DeclaredUpload      int    `json:"declared_upload"`
	StartupTestEnabled  bool   `json:"startup_test_enabled"`
	LatestTestTimestamp string `json:"latest_test_timestamp"`
	AppLanguage         string `json:"app_language"`
}

// SettingsUpdate is the body of POST /api/settings. The server always
// overwrites the selected server, so ServerID is sent even when nil.
type SettingsUpdate struct {
	ServerID           *int   `json:"server_id"`
	ScheduleHours      *int   `json:"schedule_hours,omitempty"`
	PingTarget         string `json:"ping_target,omitempty"`
	PingInterval       int    `json:"ping_interval,omitempty"`
	DeclaredDownload   *int   `json:"declared_download,omitempty"`
	DeclaredUpload     *int   `json:"declared_upload,omitempty"`
	StartupTestEnabled *bool  `json:"startup_test_enabled,omitempty"`
	AppLanguage        string `json:"app_language,omitempty"`
}

// UpdateFrom builds a SettingsUpdate that preserves every field of s.
func UpdateFrom(s Settings) SettingsUpdate {
	hours := s.ScheduleHours
	dl := s.DeclaredDownload
	ul := s.DeclaredUpload
	startup := s.StartupTestEnabled
	return SettingsUpdate{
		ServerID:           s.SelectedServerID,
		ScheduleHours:      &hours,
		PingTarget:         s.PingTarget,
		PingInterval:       s.PingInterval,
		DeclaredDownload:   &dl,
		DeclaredUpload:     &ul,
		StartupTestEnabled: &startup,
		AppLanguage:        s.AppLanguage,
	}
}

// Server is a speed-test server the backend can target.
type Server struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Location string `json:"location"`
	Country  string `json:"country"`
	Host     string `json:"host"`
}

type serverList struct {
	Servers []Server `json:"servers"`
}

// WatchdogCurrent is the latest ping watchdog reading.
type WatchdogCurrent struct {
	Online  *bool    `json:"online"`
	Latency *float64 `json:"latency"`
	Loss    float64  `json:"loss"`
	Target  string   `json:"target"`
	Updated string   `json:"updated"`
}

// WatchdogPoint is one entry of the watchdog latency history.
type WatchdogPoint struct {
	Time    string   `json:"time"`
	Latency *float64 `json:"latency"`
}

// WatchdogStatus mirrors GET /api/watchdog/status.
type WatchdogStatus struct {
	Current WatchdogCurrent `json:"current"`
	History []WatchdogPoint `json:"history"`
}

// AuthStatus mirrors GET /api/auth-status.
type AuthStatus struct {
	Enabled bool `json:"enabled"`
}

type deleteRequest struct {
	IDs []string `json:"ids"`
}

type deleteResponse struct {
	DeletedCount int `json:"deleted_count"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type triggerRequest struct {
	ServerID    *int   `json:"server_id"`
	AppLanguage string `json:"app_language,omitempty"`
}
