// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package agent

import (
	"context"
	"net/http"
)

// BasePathFoundry mounts the hosted Foundry variant.
const BasePathFoundry = "/api/foundry-agent"

// ThreadResetter is the capability to discard the agent's server-side
// working context.
type ThreadResetter interface {
	ResetThread(ctx context.Context) error
}

// ThreadViewer is the capability to inspect the agent's server-side
// working context.
type ThreadViewer interface {
	ThreadMessages(ctx context.Context) ([]ThreadMessage, error)
}

// FoundryClient extends the generic client with operations on the
// hosted agent's server-side thread.
type FoundryClient struct {
	*Client
}

// NewFoundryClient wraps a generic client with Foundry extensions.
// The client's base path should be BasePathFoundry.
func NewFoundryClient(c *Client) *FoundryClient {
	return &FoundryClient{Client: c}
}

// ResetThread discards the hosted agent's server-side thread. Stored
// conversations are untouched; only the agent's working context resets.
func (f *FoundryClient) ResetThread(ctx context.Context) error {
	var env statusEnvelope
	return f.do(ctx, "thread.reset", http.MethodPost, "/reset-thread", nil, &env)
}

// ThreadMessages returns the hosted agent's current thread, the raw
// context the agent sees rather than any stored conversation.
func (f *FoundryClient) ThreadMessages(ctx context.Context) ([]ThreadMessage, error) {
	var env threadMessagesEnvelope
	if err := f.do(ctx, "thread.messages", http.MethodGet, "/thread-messages", nil, &env); err != nil {
		return nil, err
	}
	return env.Messages, nil
}
