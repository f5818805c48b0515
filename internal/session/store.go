// Package session persists the authenticated session (bearer token plus user
// identity) across runs. The store is the only writer of session state: the
// registration flow sets it, the 401 interception path and explicit logout
// clear it, and everything else only reads.
package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/Arnav139/bigads-console/pkg/domain"
)

// Store holds the current session in memory and mirrors it to a file so the
// session survives restarts. Reads are cheap and concurrent; mutations replace
// the session wholesale.
type Store struct {
	path string

	mu      sync.RWMutex
	current domain.Session
}

// New creates a store backed by the given file path. Call Load before use.
func New(path string) *Store {
	return &Store{path: path}
}

// Load reads the persisted session from disk. A missing file is not an error;
// it just means no one is logged in. A corrupt file is treated the same way
// and removed, forcing re-registration.
func (s *Store) Load() error {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read session file: %w", err)
	}

	var sess domain.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		os.Remove(s.path) //nolint:errcheck // best-effort cleanup of corrupt file
		return nil
	}

	s.mu.Lock()
	s.current = sess
	s.mu.Unlock()
	return nil
}

// Current returns a copy of the session. The zero value means logged out.
func (s *Store) Current() domain.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Token returns the bearer token, or "" when no session is held.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Token
}

// Authenticated returns true if a bearer token is held.
func (s *Store) Authenticated() bool {
	return s.Token() != ""
}

// Set replaces the session and persists it. Token and identity are written
// together; there is no partial update.
func (s *Store) Set(sess domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	data, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("write session file: %w", err)
	}

	s.current = sess
	return nil
}

// Clear discards the session in memory and on disk. Clearing an already-empty
// store is a no-op.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = domain.Session{}
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove session file: %w", err)
	}
	return nil
}
