// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session provides the per-session identity key sent on every
// backend request.
package session

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/jeranaias/foundry-tui/internal/util"
)

// Store persists the session key between runs. Load returns an empty key
// (and nil error) when none has been stored yet.
type Store interface {
	Load() (string, error)
	Save(key string) error
	Clear() error
}

// record is the on-disk shape of the session file.
type record struct {
	Key       string    `json:"key"`
	CreatedAt time.Time `json:"created_at"`
}

// =============================================================================
// FILE STORE
// =============================================================================

// FileStore persists the session key as JSON at a fixed path, 0600.
type FileStore struct {
	path string
}

// NewFileStore creates a file-backed store at path. Nothing is read or
// written until Load or Save is called.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load reads the stored key. A missing file means no key yet, not an error.
func (s *FileStore) Load() (string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read session file: %w", err)
	}

	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		// A corrupt session file is recoverable: treat as absent so a
		// fresh key gets generated and saved over it.
		return "", nil
	}
	return rec.Key, nil
}

// Save writes the key atomically with owner-only permissions.
func (s *FileStore) Save(key string) error {
	rec := record{Key: key, CreatedAt: time.Now().UTC()}
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode session record: %w", err)
	}
	if err := util.AtomicWriteFileWithDir(s.path, data, 0600, 0700); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	return nil
}

// Clear removes the stored key. Clearing an already-absent key is a no-op.
func (s *FileStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove session file: %w", err)
	}
	return nil
}

// CreatedAt reports when the stored key was created, for status display.
// Returns the zero time when no key is stored.
func (s *FileStore) CreatedAt() time.Time {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return time.Time{}
	}
	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return time.Time{}
	}
	return rec.CreatedAt
}

// =============================================================================
// MEMORY STORE
// =============================================================================

// MemStore keeps the key in memory. Used by tests and one-shot commands
// that must not disturb the persisted session.
type MemStore struct {
	mu  sync.Mutex
	key string
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{}
}

// Load returns the stored key, empty when none.
func (s *MemStore) Load() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.key, nil
}

// Save stores the key.
func (s *MemStore) Save(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.key = key
	return nil
}

// Clear discards the key.
func (s *MemStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.key = ""
	return nil
}
