// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package agent

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
)

// errNoContent guards sends; the backend stores messages verbatim, so
// blank input is rejected before it leaves the client.
var errNoContent = errors.New("message content is empty")

type sendMessageRequest struct {
	Content            string `json:"content"`
	IncludeUserContext bool   `json:"include_user_context"`
	Stream             bool   `json:"stream,omitempty"`
}

type generateImageRequest struct {
	Prompt string `json:"prompt"`
}

// SendMessage sends one user message and waits for the full assistant
// reply. Exactly one HTTP call is made; a failure means the caller
// decides whether to retry with the same content.
func (c *Client) SendMessage(ctx context.Context, conversationID, content string, opts SendOptions) (*SendResult, error) {
	const op = "messages.send"
	if conversationID == "" {
		return nil, newError(op, KindUnknown, 0, "", errNoConversation)
	}
	if strings.TrimSpace(content) == "" {
		return nil, newError(op, KindUnknown, 0, "", errNoContent)
	}

	var env sendEnvelope
	err := c.do(ctx, op, http.MethodPost,
		"/conversations/"+url.PathEscape(conversationID)+"/messages",
		sendMessageRequest{Content: content, IncludeUserContext: opts.IncludeContext}, &env)
	if err != nil {
		return nil, err
	}

	msg := env.Message
	msg.ConversationID = conversationID
	if msg.Role == "" {
		msg.Role = RoleAssistant
	}
	return &SendResult{
		Message: msg,
		Model:   env.Model,
		RAGUsed: env.RAGUsed,
		Tokens:  env.Tokens,
	}, nil
}

// GenerateImage asks the agent to produce an image for the prompt and
// returns the stored assistant message carrying the image URL.
func (c *Client) GenerateImage(ctx context.Context, conversationID, prompt string) (*Message, error) {
	const op = "images.generate"
	if conversationID == "" {
		return nil, newError(op, KindUnknown, 0, "", errNoConversation)
	}
	if strings.TrimSpace(prompt) == "" {
		return nil, newError(op, KindUnknown, 0, "", errNoContent)
	}

	var env sendEnvelope
	err := c.do(ctx, op, http.MethodPost,
		"/conversations/"+url.PathEscape(conversationID)+"/generate-image",
		generateImageRequest{Prompt: prompt}, &env)
	if err != nil {
		return nil, err
	}

	msg := env.Message
	msg.ConversationID = conversationID
	if msg.Role == "" {
		msg.Role = RoleAssistant
	}
	return &msg, nil
}
