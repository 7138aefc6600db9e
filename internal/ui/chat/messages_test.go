// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"errors"
	"strings"
	"testing"

	"github.com/jeranaias/foundry-tui/internal/agent"
)

// =============================================================================
// FAILURE TEXT TESTS
// =============================================================================

// TestFriendlyDetail verifies the short failure lines shown under
// failed bubbles.
func TestFriendlyDetail(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "nil error",
			err:  nil,
			want: "",
		},
		{
			name: "backend detail wins",
			err:  &agent.Error{Kind: agent.KindApplication, Op: "messages.send", Detail: "model unavailable"},
			want: "model unavailable",
		},
		{
			name: "network",
			err:  &agent.Error{Kind: agent.KindNetwork, Op: "messages.send"},
			want: "could not reach the backend",
		},
		{
			name: "timeout",
			err:  &agent.Error{Kind: agent.KindTimeout, Op: "messages.send"},
			want: "request timed out",
		},
		{
			name: "canceled",
			err:  &agent.Error{Kind: agent.KindCanceled, Op: "messages.stream"},
			want: "canceled",
		},
		{
			name: "unauthorized",
			err:  &agent.Error{Kind: agent.KindRequest, Op: "messages.send", Status: 401},
			want: "not signed in",
		},
		{
			name: "forbidden",
			err:  &agent.Error{Kind: agent.KindRequest, Op: "messages.send", Status: 403},
			want: "not signed in",
		},
		{
			name: "other request failure",
			err:  &agent.Error{Kind: agent.KindRequest, Op: "messages.send", Status: 500},
			want: "the backend refused the request",
		},
		{
			name: "application failure",
			err:  &agent.Error{Kind: agent.KindApplication, Op: "messages.send"},
			want: "the backend reported an error",
		},
		{
			name: "plain error passes through",
			err:  errors.New("disk full"),
			want: "disk full",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := friendlyDetail(tt.err); got != tt.want {
				t.Errorf("friendlyDetail() = %q, want %q", got, tt.want)
			}
		})
	}
}

// TestFriendlyDetailWrapped verifies agent errors are found through
// wrapping.
func TestFriendlyDetailWrapped(t *testing.T) {
	inner := &agent.Error{Kind: agent.KindTimeout, Op: "messages.send"}
	wrapped := &wrapError{msg: "send message", err: inner}

	if got := friendlyDetail(wrapped); got != "request timed out" {
		t.Errorf("friendlyDetail(wrapped) = %q, want %q", got, "request timed out")
	}
}

type wrapError struct {
	msg string
	err error
}

func (w *wrapError) Error() string { return w.msg + ": " + w.err.Error() }
func (w *wrapError) Unwrap() error { return w.err }

// =============================================================================
// OVERLAY CONSTRUCTION TESTS
// =============================================================================

// TestErrorFromAgent verifies suggestions follow the failure kind and
// auth failures rewrite the title.
func TestErrorFromAgent(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		wantTitle      string
		wantSuggestion string
	}{
		{
			name:           "network suggests checking the connection",
			err:            &agent.Error{Kind: agent.KindNetwork, Op: "conversations.list"},
			wantTitle:      "Could not load conversations",
			wantSuggestion: "network connection",
		},
		{
			name:           "timeout suggests retry",
			err:            &agent.Error{Kind: agent.KindTimeout, Op: "messages.send"},
			wantTitle:      "Could not load conversations",
			wantSuggestion: "ctrl+r",
		},
		{
			name:           "401 becomes session expired",
			err:            &agent.Error{Kind: agent.KindRequest, Op: "messages.send", Status: 401},
			wantTitle:      "Session expired",
			wantSuggestion: "foundry-tui login",
		},
		{
			name:           "403 becomes session expired",
			err:            &agent.Error{Kind: agent.KindRequest, Op: "messages.send", Status: 403},
			wantTitle:      "Session expired",
			wantSuggestion: "foundry-tui login",
		},
		{
			name:           "429 names rate limiting",
			err:            &agent.Error{Kind: agent.KindRequest, Op: "messages.send", Status: 429},
			wantTitle:      "Could not load conversations",
			wantSuggestion: "rate limiting",
		},
		{
			name:           "application failure suggests retry",
			err:            &agent.Error{Kind: agent.KindApplication, Op: "messages.send"},
			wantTitle:      "Could not load conversations",
			wantSuggestion: "ctrl+r",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := errorFromAgent("Could not load conversations", tt.err)

			if msg.Title != tt.wantTitle {
				t.Errorf("Title = %q, want %q", msg.Title, tt.wantTitle)
			}
			if !msg.Dismissible {
				t.Error("Dismissible = false, want true")
			}
			found := false
			for _, s := range msg.Suggestions {
				if strings.Contains(s, tt.wantSuggestion) {
					found = true
				}
			}
			if !found {
				t.Errorf("Suggestions %v missing %q", msg.Suggestions, tt.wantSuggestion)
			}
		})
	}
}

// TestErrorFromAgentPlainError verifies non-agent errors still build a
// usable overlay.
func TestErrorFromAgentPlainError(t *testing.T) {
	msg := errorFromAgent("Export failed", errors.New("disk full"))

	if msg.Title != "Export failed" {
		t.Errorf("Title = %q", msg.Title)
	}
	if msg.Message != "disk full" {
		t.Errorf("Message = %q", msg.Message)
	}
	if len(msg.Suggestions) != 0 {
		t.Errorf("Suggestions = %v, want none", msg.Suggestions)
	}
}

// TestNewErrorMsg verifies the dismissible default.
func TestNewErrorMsg(t *testing.T) {
	msg := NewErrorMsg("Title", "body")
	if !msg.Dismissible {
		t.Error("Dismissible = false, want true")
	}
	if msg.Title != "Title" || msg.Message != "body" {
		t.Errorf("msg = %+v", msg)
	}
}
