// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package agent

import (
	"context"
	"net/http"
)

// BasePathLocal mounts the local (Ollama-backed) variant.
const BasePathLocal = "/api/local-agent"

// HistoryResetter is the capability to clear the local agent's
// in-memory history.
type HistoryResetter interface {
	ResetHistory(ctx context.Context) error
}

// HistoryViewer is the capability to inspect the local agent's
// in-memory history.
type HistoryViewer interface {
	History(ctx context.Context) (*HistorySnapshot, error)
}

// LocalClient extends the generic client with operations on the local
// agent's in-memory chat history.
type LocalClient struct {
	*Client
}

// NewLocalClient wraps a generic client with local-agent extensions.
// The client's base path should be BasePathLocal.
func NewLocalClient(c *Client) *LocalClient {
	return &LocalClient{Client: c}
}

// ResetHistory clears the local agent's in-memory history. Stored
// conversations are untouched.
func (l *LocalClient) ResetHistory(ctx context.Context) error {
	var env statusEnvelope
	return l.do(ctx, "history.reset", http.MethodPost, "/reset-history", nil, &env)
}

// History returns the local agent's in-memory history snapshot.
func (l *LocalClient) History(ctx context.Context) (*HistorySnapshot, error) {
	var env historyEnvelope
	if err := l.do(ctx, "history.get", http.MethodGet, "/history", nil, &env); err != nil {
		return nil, err
	}
	return &HistorySnapshot{History: env.History, Turns: env.Turns}, nil
}
