package vault

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

const fileVersion = 1

type vaultFile struct {
	Version int       `json:"version"`
	KDF     kdfParams `json:"kdf"`
	Salt    []byte    `json:"salt"`
	Data    []byte    `json:"data"`
}

func (f vaultFile) aad() []byte {
	return []byte(fmt.Sprintf("speedlog-vault-v%d", f.Version))
}

// FileStore is a Store persisted as one encrypted JSON file.
type FileStore struct {
	mu       sync.RWMutex
	path     string
	key      []byte
	header   vaultFile
	profiles map[string]Profile
}

// Open reads the vault at path, or creates an empty one there when the file
// does not exist. A wrong password returns ErrLocked.
func Open(path string, password []byte) (*FileStore, error) {
	s := &FileStore{
		path:     path,
		profiles: make(map[string]Profile),
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		salt, err := newSalt()
		if err != nil {
			return nil, err
		}
		s.header = vaultFile{Version: fileVersion, KDF: defaultKDF, Salt: salt}
		s.key = defaultKDF.derive(password, salt)
		return s, s.save()
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(data, &s.header); err != nil {
		return nil, fmt.Errorf("corrupt vault: %w", err)
	}
	if s.header.Version != fileVersion {
		return nil, fmt.Errorf("unsupported vault version %d", s.header.Version)
	}
	s.key = s.header.KDF.derive(password, s.header.Salt)

	plaintext, err := open(s.key, s.header.Data, s.header.aad())
	if err != nil {
		return nil, ErrLocked
	}
	var list []Profile
	if err := json.Unmarshal(plaintext, &list); err != nil {
		return nil, fmt.Errorf("corrupt vault data: %w", err)
	}
	for _, p := range list {
		s.profiles[p.Name] = p
	}
	return s, nil
}

// save writes the vault through a temp file so a crash never leaves a
// half-written file behind.
func (s *FileStore) save() error {
	plaintext, err := json.Marshal(s.sorted())
	if err != nil {
		return err
	}
	sealed, err := seal(s.key, plaintext, s.header.aad())
	if err != nil {
		return err
	}
	s.header.Data = sealed
	data, err := json.Marshal(s.header)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

func (s *FileStore) sorted() []Profile {
	list := make([]Profile, 0, len(s.profiles))
	for _, p := range s.profiles {
		list = append(list, p)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list
}

// List returns the profile summaries sorted by name.
func (s *FileStore) List() ([]Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	list := s.sorted()
	out := make([]Summary, len(list))
	for i, p := range list {
		out[i] = p.Summarize()
	}
	return out, nil
}

// Get returns the named profile, or ErrNotFound.
func (s *FileStore) Get(name string) (Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[name]
	if !ok {
		return Profile{}, ErrNotFound
	}
	return p, nil
}

// Add stores a new profile.
func (s *FileStore) Add(p Profile) error {
	if err := p.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.profiles[p.Name]; exists {
		return ErrDuplicate
	}
	s.profiles[p.Name] = p
	return s.save()
}

// Update replaces the profile called name. p may carry a new name.
func (s *FileStore) Update(name string, p Profile) error {
	if err := p.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.profiles[name]; !exists {
		return ErrNotFound
	}
	if name != p.Name {
		if _, taken := s.profiles[p.Name]; taken {
			return ErrDuplicate
		}
		delete(s.profiles, name)
	}
	s.profiles[p.Name] = p
	return s.save()
}

// Remove deletes the named profile.
func (s *FileStore) Remove(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.profiles[name]; !exists {
		return ErrNotFound
	}
	delete(s.profiles, name)
	return s.save()
}

// ChangePassword re-encrypts the vault under a new password and fresh salt.
func (s *FileStore) ChangePassword(password []byte) error {
	salt, err := newSalt()
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.header.Salt = salt
	s.header.KDF = defaultKDF
	s.key = defaultKDF.derive(password, salt)
	return s.save()
}
