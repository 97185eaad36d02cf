// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session persists the authenticated session (bearer token and
// user record) across process restarts. The store is owned by the auth
// layer and injected into the API client as its token source; nothing
// else writes to it.
package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/jeranaias/chatterm/internal/model"
	"github.com/jeranaias/chatterm/internal/util"
)

// ===== FILE FORMAT =====

const sessionFileName = "session.json"

// sessionFile is the on-disk shape. The token is an opaque credential,
// so the file and its directory are kept owner-only.
type sessionFile struct {
	Token string     `json:"token"`
	User  model.User `json:"user"`
}

// DefaultPath returns ~/.chatterm/session.json.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, ".chatterm", sessionFileName), nil
}

// ===== STORE =====

// Store holds the current session in memory and mirrors every change
// to disk. Safe for concurrent use.
//
// A missing file is not an error: the store simply starts empty. A
// corrupt file is treated the same way, so a bad write can never lock
// the user out of the login screen.
type Store struct {
	mu    sync.RWMutex
	path  string
	token string
	user  model.User
	ok    bool
}

// NewStore opens the session store at path, loading any persisted
// session.
func NewStore(path string) *Store {
	s := &Store{path: path}
	s.load()
	return s
}

// NewDefaultStore opens the store at its standard location.
func NewDefaultStore() (*Store, error) {
	path, err := DefaultPath()
	if err != nil {
		return nil, err
	}
	return NewStore(path), nil
}

func (s *Store) load() {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return
	}
	var f sessionFile
	if err := json.Unmarshal(data, &f); err != nil || f.Token == "" {
		return
	}
	s.token = f.Token
	s.user = f.User
	s.ok = true
}

// Save persists the token and user record, replacing any previous
// session.
func (s *Store) Save(token string, user model.User) error {
	if token == "" {
		return fmt.Errorf("refusing to save empty token")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(sessionFile{Token: token, User: user}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := util.AtomicWriteFileWithDir(s.path, data, 0600, 0700); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}

	s.token = token
	s.user = user
	s.ok = true
	return nil
}

// Clear forgets the session in memory and removes the file. Clearing
// an absent session is a no-op, not an error.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = ""
	s.user = model.User{}
	s.ok = false

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove session file: %w", err)
	}
	return nil
}

// Token returns the current bearer token. Implements api.TokenSource.
func (s *Store) Token() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, s.ok
}

// User returns the stored user record, if a session is present.
func (s *Store) User() (model.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user, s.ok
}

// Present reports whether a session is currently held.
func (s *Store) Present() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ok
}
