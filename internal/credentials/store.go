// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package credentials

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/jeranaias/foundry-tui/internal/util"
)

// =============================================================================
// SOURCE
// =============================================================================

// Source yields the bearer token attached to outgoing requests.
// An empty token with a nil error means no credential is present and
// the Authorization header is omitted.
type Source interface {
	Token() (string, error)
}

// StaticToken adapts a fixed token string to the Source interface.
type StaticToken string

// Token returns the fixed token.
func (t StaticToken) Token() (string, error) { return string(t), nil }

// =============================================================================
// STORE
// =============================================================================

// record is the on-disk shape of the credentials file. The token field
// holds a sealed value, never the raw token.
type record struct {
	Token   string    `json:"token"`
	SavedAt time.Time `json:"saved_at"`
}

// Store persists the bearer token sealed at rest.
//
// A missing credentials file means "no credential" and is not an error.
// A present but unreadable credential IS an error so that tampering
// never silently downgrades the client to anonymous requests.
type Store struct {
	mu      sync.Mutex
	path    string
	keyPath string
	sealer  *sealer
}

var _ Source = (*Store)(nil)

// NewStore returns a store over the credentials file at path with the
// sealing keyfile at keyPath.
func NewStore(path, keyPath string) *Store {
	return &Store{path: path, keyPath: keyPath}
}

// getSealer lazily initializes the sealer. Callers hold s.mu.
func (s *Store) getSealer() (*sealer, error) {
	if s.sealer != nil {
		return s.sealer, nil
	}
	sl, err := newSealer(s.keyPath)
	if err != nil {
		return nil, err
	}
	s.sealer = sl
	return sl, nil
}

// Token returns the stored bearer token, or "" when none is stored.
func (s *Store) Token() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.read()
	if err != nil {
		return "", err
	}
	if rec == nil {
		return "", nil
	}

	sl, err := s.getSealer()
	if err != nil {
		return "", err
	}
	token, err := sl.Unseal(rec.Token)
	if err != nil {
		return "", fmt.Errorf("credentials at %s: %w", s.path, err)
	}
	return token, nil
}

// SavedAt returns when the credential was stored, zero when none is.
func (s *Store) SavedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.read()
	if err != nil || rec == nil {
		return time.Time{}
	}
	return rec.SavedAt
}

// Save seals the token and writes the credentials file atomically.
func (s *Store) Save(token string) error {
	if token == "" {
		return errors.New("empty token")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sl, err := s.getSealer()
	if err != nil {
		return err
	}
	sealed, err := sl.Seal(token)
	if err != nil {
		return err
	}

	rec := record{Token: sealed, SavedAt: time.Now().UTC()}
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("encode credentials: %w", err)
	}
	if err := util.AtomicWriteFileWithDir(s.path, data, 0600, 0700); err != nil {
		return fmt.Errorf("write credentials: %w", err)
	}
	return nil
}

// Clear removes the credentials file and its keyfile.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sealer = nil
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove credentials: %w", err)
	}
	if err := os.Remove(s.keyPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove keyfile: %w", err)
	}
	return nil
}

// read loads the on-disk record, nil when the file is absent.
// Callers hold s.mu.
func (s *Store) read() (*record, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read credentials: %w", err)
	}
	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("parse credentials at %s: %w", s.path, err)
	}
	return &rec, nil
}
