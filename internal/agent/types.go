// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package agent

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// =============================================================================
// ROLES
// =============================================================================

const (
	// RoleUser marks a message authored by the person at the keyboard.
	RoleUser = "user"
	// RoleAssistant marks a message authored by the agent.
	RoleAssistant = "assistant"
)

// =============================================================================
// TIMESTAMP
// =============================================================================

// timestampLayouts are the datetime renditions the backend emits.
// Mongo-derived datetimes arrive as ISO 8601 without a timezone and
// with variable fractional-second precision.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// Timestamp is a time.Time that tolerates the backend's datetime
// formats on decode and emits RFC 3339 on encode.
type Timestamp struct {
	time.Time
}

// Now returns the current UTC instant as a Timestamp.
func Now() Timestamp {
	return Timestamp{Time: time.Now().UTC()}
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		t.Time = time.Time{}
		return nil
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("unrecognized timestamp %q", s)
}

// MarshalJSON implements json.Marshaler.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.Time.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Time.Format(time.RFC3339Nano))
}

// =============================================================================
// CORE TYPES
// =============================================================================

// Conversation is one backend-owned conversation. The list endpoint
// returns them newest first by UpdatedAt.
type Conversation struct {
	ID           string    `json:"_id"`
	UserID       string    `json:"user_id,omitempty"`
	Title        string    `json:"title"`
	CreatedAt    Timestamp `json:"created_at"`
	UpdatedAt    Timestamp `json:"updated_at"`
	MessageCount int       `json:"message_count"`
}

// Attachment describes a file attached to a message.
type Attachment struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type,omitempty"`
	Size        int64  `json:"size,omitempty"`
	Extracted   bool   `json:"extracted,omitempty"`
}

// Message is one immutable entry of a conversation thread.
type Message struct {
	ID             string       `json:"_id"`
	ConversationID string       `json:"conversation_id,omitempty"`
	Role           string       `json:"role"`
	Content        string       `json:"content"`
	Attachments    []Attachment `json:"attachments,omitempty"`
	ImageURL       string       `json:"image_url,omitempty"`
	CreatedAt      Timestamp    `json:"created_at"`
	TokensUsed     int          `json:"tokens_used,omitempty"`
}

// TokenUsage is the backend's token accounting for one exchange.
// Backends that cannot measure usage leave it zeroed.
type TokenUsage struct {
	Prompt     int `json:"prompt"`
	Completion int `json:"completion"`
	Total      int `json:"total"`
}

// SendOptions carries the per-send flags the backend accepts.
type SendOptions struct {
	// IncludeContext asks the backend to enrich the prompt with the
	// user's workspace data before calling the model.
	IncludeContext bool
}

// SendResult is the outcome of a successful non-streaming send.
type SendResult struct {
	// Message is the assistant reply, already persisted server-side.
	Message Message
	// Model names the model that produced the reply, when reported.
	Model string
	// RAGUsed reports whether retrieval augmented the local reply.
	RAGUsed bool
	// Tokens is the exchange's token accounting.
	Tokens TokenUsage
}

// StreamResult is the outcome of a streaming send. On a stream error
// it still carries whatever content arrived before the failure.
type StreamResult struct {
	// Message is the assembled assistant reply. Its ID comes from the
	// terminating done event.
	Message Message
	// Chunks counts the content chunks received.
	Chunks int
}

// FileInfo describes the backend's record of an uploaded file.
type FileInfo struct {
	Filename  string         `json:"filename"`
	URL       string         `json:"url,omitempty"`
	Extracted bool           `json:"extracted"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// UploadResult is the outcome of a successful file upload.
type UploadResult struct {
	// Status is the backend's human-readable status line.
	Status string
	// File describes the stored file and its extraction outcome.
	File *FileInfo
	// MessageID is the persisted user message carrying the attachment.
	MessageID string
	// AIMessageID is the assistant acknowledgement, present only when
	// content extraction produced one.
	AIMessageID string
}

// Acknowledged reports whether the upload produced an assistant reply.
func (r *UploadResult) Acknowledged() bool {
	return r.AIMessageID != ""
}

// HistoryTurn is one entry of the local agent's in-memory history.
type HistoryTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// HistorySnapshot is the local agent's current in-memory history.
type HistorySnapshot struct {
	History []HistoryTurn
	// Turns counts user/assistant exchanges, not entries.
	Turns int
}

// ThreadMessage is one raw message fetched straight from the hosted
// agent's thread, bypassing the conversation store.
type ThreadMessage struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt Timestamp `json:"created_at"`
}

// Health is the agent health report. The hosted variant fills Status;
// the local variant fills the runtime fields.
type Health struct {
	Status          string   `json:"status,omitempty"`
	Service         string   `json:"service,omitempty"`
	Healthy         bool     `json:"healthy,omitempty"`
	Model           string   `json:"model,omitempty"`
	ModelAvailable  bool     `json:"model_available,omitempty"`
	AvailableModels []string `json:"available_models,omitempty"`
	OllamaURL       string   `json:"ollama_url,omitempty"`
	ChromaPath      string   `json:"chroma_path,omitempty"`
	Error           string   `json:"error,omitempty"`
}

// OK reports whether the agent considers itself healthy.
func (h *Health) OK() bool {
	if h.Healthy {
		return true
	}
	switch strings.ToLower(h.Status) {
	case "healthy", "ok", "up":
		return true
	}
	return false
}

// =============================================================================
// WIRE ENVELOPES
// =============================================================================

// envelope is the success marker shared by the backend's JSON bodies.
type envelope interface {
	ok() bool
	failureDetail() string
}

type statusEnvelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error"`
}

func (e *statusEnvelope) ok() bool { return e.Success }
func (e *statusEnvelope) failureDetail() string {
	if e.Error != "" {
		return e.Error
	}
	return e.Message
}

type conversationEnvelope struct {
	Success      bool          `json:"success"`
	Conversation *Conversation `json:"conversation"`
	Error        string        `json:"error"`
}

func (e *conversationEnvelope) ok() bool              { return e.Success }
func (e *conversationEnvelope) failureDetail() string { return e.Error }

type conversationsEnvelope struct {
	Success       bool           `json:"success"`
	Conversations []Conversation `json:"conversations"`
	Error         string         `json:"error"`
}

func (e *conversationsEnvelope) ok() bool              { return e.Success }
func (e *conversationsEnvelope) failureDetail() string { return e.Error }

type messagesEnvelope struct {
	Success  bool      `json:"success"`
	Messages []Message `json:"messages"`
	Error    string    `json:"error"`
}

func (e *messagesEnvelope) ok() bool              { return e.Success }
func (e *messagesEnvelope) failureDetail() string { return e.Error }

type sendEnvelope struct {
	Success bool       `json:"success"`
	Message Message    `json:"message"`
	Model   string     `json:"model"`
	RAGUsed bool       `json:"rag_used"`
	Tokens  TokenUsage `json:"tokens"`
	Error   string     `json:"error"`
}

func (e *sendEnvelope) ok() bool              { return e.Success }
func (e *sendEnvelope) failureDetail() string { return e.Error }

type uploadEnvelope struct {
	Success     bool      `json:"success"`
	Message     string    `json:"message"`
	File        *FileInfo `json:"file"`
	MessageID   string    `json:"message_id"`
	AIMessageID string    `json:"ai_message_id"`
	Error       string    `json:"error"`
}

func (e *uploadEnvelope) ok() bool { return e.Success }
func (e *uploadEnvelope) failureDetail() string {
	if e.Error != "" {
		return e.Error
	}
	return e.Message
}

type historyEnvelope struct {
	Success bool          `json:"success"`
	History []HistoryTurn `json:"history"`
	Turns   int           `json:"turns"`
	Error   string        `json:"error"`
}

func (e *historyEnvelope) ok() bool              { return e.Success }
func (e *historyEnvelope) failureDetail() string { return e.Error }

type threadMessagesEnvelope struct {
	Success  bool            `json:"success"`
	Messages []ThreadMessage `json:"messages"`
	Error    string          `json:"error"`
}

func (e *threadMessagesEnvelope) ok() bool              { return e.Success }
func (e *threadMessagesEnvelope) failureDetail() string { return e.Error }
