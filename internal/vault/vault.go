// Package vault keeps dashboard login profiles in a password-encrypted file.
package vault

import (
	"errors"
	"net/url"
	"strings"
)

var (
	ErrNotFound  = errors.New("profile not found")
	ErrDuplicate = errors.New("profile already exists")
	ErrLocked    = errors.New("cannot open vault (wrong password?)")
	ErrInvalid   = errors.New("invalid profile")
)

// Profile is a saved connection to a speedtest dashboard.
type Profile struct {
	Name     string `json:"name"`
	Server   string `json:"server"`
	Username string `json:"username,omitempty"`
	Password string `json:"password,omitempty"`
}

// Summary is a Profile without its password.
type Summary struct {
	Name     string `json:"name"`
	Server   string `json:"server"`
	Username string `json:"username,omitempty"`
	HasAuth  bool   `json:"has_auth"`
}

// Summarize drops the secret.
func (p Profile) Summarize() Summary {
	return Summary{
		Name:     p.Name,
		Server:   p.Server,
		Username: p.Username,
		HasAuth:  p.Password != "",
	}
}

// Validate checks the profile has a name and an http(s) server URL.
func (p Profile) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return errors.Join(ErrInvalid, errors.New("name is empty"))
	}
	u, err := url.Parse(p.Server)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.Join(ErrInvalid, errors.New("server must be an http(s) URL"))
	}
	if p.Password != "" && p.Username == "" {
		return errors.Join(ErrInvalid, errors.New("password set without a username"))
	}
	return nil
}

// Store is the profile storage backend.
type Store interface {
	List() ([]Summary, error)
	Get(name string) (Profile, error)
	Add(p Profile) error
	Update(name string, p Profile) error
	Remove(name string) error
}
