// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"errors"
	"time"

	"github.com/jeranaias/foundry-tui/internal/agent"
	"github.com/jeranaias/foundry-tui/internal/tasks"
)

// =============================================================================
// LOADING MESSAGES
// =============================================================================

// ConversationsLoadedMsg carries the result of a conversation list
// fetch. When the backend is unreachable and a cached copy exists,
// Conversations holds the cached list and FromCache is true; Err then
// records the fetch failure that forced the fallback.
type ConversationsLoadedMsg struct {
	Conversations []agent.Conversation
	FromCache     bool
	Err           error
}

// ThreadLoadedMsg carries the message history of one conversation.
// The cache fallback works the same way as ConversationsLoadedMsg.
type ThreadLoadedMsg struct {
	ConversationID string
	Title          string
	Messages       []agent.Message
	FromCache      bool
	Err            error
}

// HealthMsg reports a backend health probe.
type HealthMsg struct {
	Healthy bool
	Err     error
}

// healthTickMsg re-arms the periodic health probe.
type healthTickMsg time.Time

// noticeExpiredMsg clears the transient status notice.
type noticeExpiredMsg struct{}

// SettingsChangedMsg applies a config reload to the running session.
// Only toggles that are safe to flip between sends are carried; the
// backend connection itself is fixed at startup.
type SettingsChangedMsg struct {
	Streaming      bool
	IncludeContext bool
}

// =============================================================================
// DELIVERY MESSAGES
// =============================================================================

// SendDoneMsg carries the outcome of a non-streaming send. LocalID
// identifies the optimistic user entry awaiting reconciliation.
type SendDoneMsg struct {
	LocalID string
	Result  *agent.SendResult
	Err     error
}

// ImageDoneMsg carries the outcome of an image generation request.
type ImageDoneMsg struct {
	LocalID string
	Message *agent.Message
	Err     error
}

// UploadDoneMsg carries the outcome of a file upload.
type UploadDoneMsg struct {
	LocalID string
	Result  *agent.UploadResult
	Err     error
}

// =============================================================================
// STREAMING MESSAGES
// =============================================================================

// StreamChunkMsg delivers one content chunk of a streaming reply.
// Sent by the Streamer goroutine through the program.
type StreamChunkMsg struct {
	AssistantLocalID string
	Chunk            string
}

// StreamDoneMsg reports a stream that ran to completion.
type StreamDoneMsg struct {
	UserLocalID      string
	AssistantLocalID string
	Result           *agent.StreamResult
}

// StreamFailedMsg reports a stream that ended early. Interrupted is
// true when the user canceled it; the partial reply is then kept.
type StreamFailedMsg struct {
	UserLocalID      string
	AssistantLocalID string
	Err              error
	Interrupted      bool
}

// =============================================================================
// MUTATION MESSAGES
// =============================================================================

// TaskDoneMsg reports a queued list mutation reaching a terminal
// state. The notification identifies the task; the model correlates
// it with its pending mutation records.
type TaskDoneMsg struct {
	Notification tasks.Notification
}

// ContextResetMsg reports the outcome of resetting the agent's
// server-side working context (thread or history, per variant).
type ContextResetMsg struct {
	Err error
}

// ExportDoneMsg reports an export attempt.
type ExportDoneMsg struct {
	Path string
	Err  error
}

// =============================================================================
// ERROR MESSAGES
// =============================================================================

// ErrorMsg describes a failure prominently enough to interrupt the
// user. Inline delivery failures stay on their message bubble; this
// overlay is reserved for failures that block further work, such as
// an expired login.
type ErrorMsg struct {
	Title       string
	Message     string
	Suggestions []string
	Dismissible bool
}

// NewErrorMsg creates a dismissible error overlay message.
func NewErrorMsg(title, message string) ErrorMsg {
	return ErrorMsg{
		Title:       title,
		Message:     message,
		Dismissible: true,
	}
}

// errorFromAgent converts an agent failure into an overlay message
// with suggestions matched to the failure kind.
func errorFromAgent(title string, err error) ErrorMsg {
	msg := ErrorMsg{
		Title:       title,
		Message:     friendlyDetail(err),
		Dismissible: true,
	}

	var agentErr *agent.Error
	if !errors.As(err, &agentErr) {
		return msg
	}

	switch agentErr.Kind {
	case agent.KindNetwork:
		msg.Suggestions = []string{
			"Check your network connection",
			"Verify the backend URL in your config",
		}
	case agent.KindTimeout:
		msg.Suggestions = []string{
			"The backend took too long to answer",
			"Press ctrl+r to retry the message",
		}
	case agent.KindRequest:
		if agentErr.Status == 401 || agentErr.Status == 403 {
			msg.Title = "Session expired"
			msg.Suggestions = []string{
				"Run 'foundry-tui login' to sign in again",
			}
		} else if agentErr.Status == 429 {
			msg.Suggestions = []string{
				"The backend is rate limiting requests",
				"Wait a moment before retrying",
			}
		}
	case agent.KindApplication:
		msg.Suggestions = []string{
			"The backend rejected the request",
			"Press ctrl+r to retry the message",
		}
	}

	return msg
}

// friendlyDetail reduces an error to the short line shown under a
// failed bubble or in the overlay body.
func friendlyDetail(err error) string {
	if err == nil {
		return ""
	}

	var agentErr *agent.Error
	if errors.As(err, &agentErr) {
		if agentErr.Detail != "" {
			return agentErr.Detail
		}
		switch agentErr.Kind {
		case agent.KindNetwork:
			return "could not reach the backend"
		case agent.KindTimeout:
			return "request timed out"
		case agent.KindCanceled:
			return "canceled"
		case agent.KindRequest:
			if agentErr.Status == 401 || agentErr.Status == 403 {
				return "not signed in"
			}
			return "the backend refused the request"
		case agent.KindApplication:
			return "the backend reported an error"
		}
	}

	return err.Error()
}
