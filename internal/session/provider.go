// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Provider hands out the session key. The key identifies this client
// session to the backend so concurrent sessions of one user stay separate;
// it scopes state, it is not a credential.
//
// Key is idempotent: the first call generates and persists a fresh UUIDv4,
// every later call returns the same value until Reset. The store is
// injected so tests run against MemStore without touching disk.
type Provider struct {
	mu    sync.Mutex
	store Store
	key   string
}

// NewProvider creates a provider backed by store.
func NewProvider(store Store) *Provider {
	return &Provider{store: store}
}

// Key returns the session key, generating and persisting one on first use.
func (p *Provider) Key() (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.key != "" {
		return p.key, nil
	}

	stored, err := p.store.Load()
	if err != nil {
		return "", fmt.Errorf("failed to load session key: %w", err)
	}
	if stored != "" {
		p.key = stored
		return p.key, nil
	}

	fresh := uuid.NewString()
	if err := p.store.Save(fresh); err != nil {
		return "", fmt.Errorf("failed to persist session key: %w", err)
	}
	p.key = fresh
	return p.key, nil
}

// Reset discards the current key. The next Key call generates a new one, so
// the backend sees a brand-new session.
func (p *Provider) Reset() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.store.Clear(); err != nil {
		return err
	}
	p.key = ""
	return nil
}
