// Package credentials is the durable local store for the operator's
// session token, user snapshot and theme preference. Nothing else is
// persisted across process restarts.
package credentials

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/osaleh/aidesk/internal/api"
)

// fileData is the on-disk shape of ~/.aidesk/credentials.json.
type fileData struct {
	Token string    `json:"token,omitempty"`
	User  *api.User `json:"user,omitempty"`
	Theme string    `json:"theme,omitempty"`
}

// Store holds the credential file plus an in-memory mirror. Updates go
// through a temp-file rename so a crash never leaves a token without
// its user snapshot, and a mutex gives readers a consistent view.
type Store struct {
	path string

	mu   sync.RWMutex
	data fileData
}

// DefaultPath returns ~/.aidesk/credentials.json.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".aidesk", "credentials.json"), nil
}

// Open loads the store at path. A missing file is not an error; it
// just means no session exists yet.
func Open(path string) (*Store, error) {
	s := &Store{path: path}

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("reading credentials: %w", err)
	}
	if err := json.Unmarshal(raw, &s.data); err != nil {
		return nil, fmt.Errorf("parsing credentials %s: %w", path, err)
	}
	return s, nil
}

// Session returns the stored token and user. ok is true only when both
// are present; a partial record is treated as no session.
func (s *Store) Session() (token string, user *api.User, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.data.Token == "" || s.data.User == nil {
		return "", nil, false
	}
	u := *s.data.User
	return s.data.Token, &u, true
}

// SetSession persists token and user atomically.
func (s *Store) SetSession(token string, user api.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.data
	s.data.Token = token
	s.data.User = &user
	if err := s.save(); err != nil {
		s.data = prev
		return err
	}
	return nil
}

// ClearSession removes both token and user. The theme preference
// survives logout.
func (s *Store) ClearSession() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.data
	s.data.Token = ""
	s.data.User = nil
	if err := s.save(); err != nil {
		s.data = prev
		return err
	}
	return nil
}

// Token implements api.TokenSource.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.data.User == nil {
		return ""
	}
	return s.data.Token
}

// Theme returns the stored theme preference, defaulting to "light".
func (s *Store) Theme() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.data.Theme == "" {
		return "light"
	}
	return s.data.Theme
}

// SetTheme persists the theme preference.
func (s *Store) SetTheme(theme string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.data.Theme
	s.data.Theme = theme
	if err := s.save(); err != nil {
		s.data.Theme = prev
		return err
	}
	return nil
}

// save writes the current state with restricted permissions. Callers
// hold s.mu.
func (s *Store) save() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("creating credentials directory: %w", err)
	}

	raw, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling credentials: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".credentials-*.json")
	if err != nil {
		return fmt.Errorf("creating temp credentials file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing credentials: %w", err)
	}
	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("restricting credentials permissions: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp credentials file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing credentials file: %w", err)
	}
	return nil
}
