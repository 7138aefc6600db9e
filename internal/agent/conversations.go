// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package agent

import (
	"context"
	"errors"
	"net/http"
	"net/url"
)

// errNoConversation guards operations that address a conversation.
var errNoConversation = errors.New("conversation id is empty")

type createConversationRequest struct {
	Title string `json:"title,omitempty"`
}

type renameConversationRequest struct {
	Title string `json:"title"`
}

// CreateConversation creates a conversation owned by the current user.
// An empty title lets the backend apply its variant default; the first
// exchange overwrites it with a generated one either way.
func (c *Client) CreateConversation(ctx context.Context, title string) (*Conversation, error) {
	const op = "conversations.create"
	var env conversationEnvelope
	err := c.do(ctx, op, http.MethodPost, "/conversations",
		createConversationRequest{Title: title}, &env)
	if err != nil {
		return nil, err
	}
	if env.Conversation == nil {
		return nil, newError(op, KindRequest, 0, "response missing conversation", nil)
	}
	return env.Conversation, nil
}

// ListConversations returns the user's conversations, most recently
// updated first. Reloads honor the refresh cap when one is configured.
func (c *Client) ListConversations(ctx context.Context) ([]Conversation, error) {
	const op = "conversations.list"
	if c.refreshLimiter != nil {
		if err := c.refreshLimiter.Wait(ctx); err != nil {
			kind, cause := classifyTransport(ctx, err)
			return nil, newError(op, kind, 0, "", cause)
		}
	}
	var env conversationsEnvelope
	if err := c.do(ctx, op, http.MethodGet, "/conversations", nil, &env); err != nil {
		return nil, err
	}
	return env.Conversations, nil
}

// Messages returns a conversation's messages in chronological order.
func (c *Client) Messages(ctx context.Context, conversationID string) ([]Message, error) {
	const op = "conversations.messages"
	if conversationID == "" {
		return nil, newError(op, KindUnknown, 0, "", errNoConversation)
	}
	var env messagesEnvelope
	err := c.do(ctx, op, http.MethodGet,
		"/conversations/"+url.PathEscape(conversationID)+"/messages", nil, &env)
	if err != nil {
		return nil, err
	}
	return env.Messages, nil
}

// DeleteConversation removes a conversation and its messages.
func (c *Client) DeleteConversation(ctx context.Context, conversationID string) error {
	const op = "conversations.delete"
	if conversationID == "" {
		return newError(op, KindUnknown, 0, "", errNoConversation)
	}
	var env statusEnvelope
	return c.do(ctx, op, http.MethodDelete,
		"/conversations/"+url.PathEscape(conversationID), nil, &env)
}

// RenameConversation sets a conversation's title.
func (c *Client) RenameConversation(ctx context.Context, conversationID, title string) error {
	const op = "conversations.rename"
	if conversationID == "" {
		return newError(op, KindUnknown, 0, "", errNoConversation)
	}
	var env statusEnvelope
	return c.do(ctx, op, http.MethodPut,
		"/conversations/"+url.PathEscape(conversationID)+"/title",
		renameConversationRequest{Title: title}, &env)
}
