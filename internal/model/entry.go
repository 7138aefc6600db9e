// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the client-side thread state: entries with
// delivery tracking layered over the backend's message records.
package model

import (
	"crypto/rand"
	"encoding/hex"
	"path/filepath"
	"strings"
	"time"

	"github.com/jeranaias/foundry-tui/internal/agent"
)

// =============================================================================
// DELIVERY STATE
// =============================================================================

// DeliveryState tracks an optimistic entry's round trip.
type DeliveryState int

const (
	// StateSent means the entry is backend truth: either it came from
	// the server or its round trip confirmed.
	StateSent DeliveryState = iota

	// StatePending means the entry was appended optimistically and its
	// operation is in flight.
	StatePending

	// StateFailed means the operation failed; the entry retains its
	// payload so retry can re-dispatch it unchanged.
	StateFailed
)

// String returns the state name for diagnostics.
func (s DeliveryState) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateFailed:
		return "failed"
	default:
		return "sent"
	}
}

// =============================================================================
// RETRY PAYLOAD
// =============================================================================

// PayloadKind names the operation a failed entry re-dispatches.
type PayloadKind int

const (
	// PayloadSend re-sends a chat message.
	PayloadSend PayloadKind = iota
	// PayloadGenerateImage re-requests an image.
	PayloadGenerateImage
	// PayloadUpload re-uploads a file.
	PayloadUpload
)

// Payload is the exact input of an optimistic operation, kept on the
// entry so retry reuses it byte for byte.
type Payload struct {
	Kind PayloadKind

	// Content is the message text or image prompt.
	Content string

	// Path is the local file for uploads.
	Path string
}

// =============================================================================
// ENTRY
// =============================================================================

// Entry is one row of the visible thread. Entries either mirror a
// backend message or represent an optimistic operation still in
// flight; delivery state tells them apart.
type Entry struct {
	// LocalID identifies the entry within this client. Stable across
	// retries; never sent to the backend.
	LocalID string

	// MessageID is the backend's id once the round trip confirms.
	MessageID string

	Role        string
	Content     string
	ImageURL    string
	Attachments []agent.Attachment
	CreatedAt   time.Time
	TokensUsed  int

	// State is the delivery state.
	State DeliveryState

	// FailureDetail is the short failure line rendered under a failed
	// entry.
	FailureDetail string

	// Payload is retained on optimistic user entries for retry.
	Payload *Payload

	// Interrupted marks a streamed reply the backend cut off; the
	// partial content stays visible, annotated.
	Interrupted bool

	// streaming state, merged into Content when the stream finishes
	IsStreaming bool
	streamBuf   strings.Builder
}

// NewUserEntry creates a pending user entry for a plain send.
func NewUserEntry(content string) *Entry {
	return &Entry{
		LocalID:   generateEntryID(),
		Role:      agent.RoleUser,
		Content:   content,
		CreatedAt: time.Now(),
		State:     StatePending,
		Payload:   &Payload{Kind: PayloadSend, Content: content},
	}
}

// NewImageEntry creates the pending echo for an image request. The
// visible content is a synthesized caption; the payload keeps the raw
// prompt.
func NewImageEntry(prompt string) *Entry {
	return &Entry{
		LocalID:   generateEntryID(),
		Role:      agent.RoleUser,
		Content:   "Generate image: " + prompt,
		CreatedAt: time.Now(),
		State:     StatePending,
		Payload:   &Payload{Kind: PayloadGenerateImage, Content: prompt},
	}
}

// NewUploadEntry creates the pending echo for a file upload, named
// after the file.
func NewUploadEntry(path string) *Entry {
	return &Entry{
		LocalID:   generateEntryID(),
		Role:      agent.RoleUser,
		Content:   "Upload file: " + filepath.Base(path),
		CreatedAt: time.Now(),
		State:     StatePending,
		Payload:   &Payload{Kind: PayloadUpload, Path: path},
	}
}

// NewStreamingEntry creates the assistant entry a stream accumulates
// into.
func NewStreamingEntry() *Entry {
	return &Entry{
		LocalID:     generateEntryID(),
		Role:        agent.RoleAssistant,
		CreatedAt:   time.Now(),
		State:       StatePending,
		IsStreaming: true,
	}
}

// FromMessage converts a backend message into a sent entry.
func FromMessage(msg agent.Message) *Entry {
	return &Entry{
		LocalID:     generateEntryID(),
		MessageID:   msg.ID,
		Role:        msg.Role,
		Content:     msg.Content,
		ImageURL:    msg.ImageURL,
		Attachments: msg.Attachments,
		CreatedAt:   msg.CreatedAt.Time,
		TokensUsed:  msg.TokensUsed,
		State:       StateSent,
	}
}

// =============================================================================
// DELIVERY TRANSITIONS
// =============================================================================

// MarkSent confirms the entry's round trip with the backend's id.
func (e *Entry) MarkSent(messageID string) {
	e.State = StateSent
	e.MessageID = messageID
	e.FailureDetail = ""
}

// MarkFailed records the failure. The payload stays for retry.
func (e *Entry) MarkFailed(detail string) {
	e.State = StateFailed
	e.FailureDetail = detail
}

// MarkRetrying flips a failed entry back to pending for its next
// attempt.
func (e *Entry) MarkRetrying() {
	e.State = StatePending
	e.FailureDetail = ""
}

// CanRetry reports whether the entry is failed with its payload
// intact. Pending entries cannot retry: one outstanding attempt per
// entry.
func (e *Entry) CanRetry() bool {
	return e.State == StateFailed && e.Payload != nil
}

// =============================================================================
// STREAMING
// =============================================================================

// AppendChunk adds streamed content.
func (e *Entry) AppendChunk(chunk string) {
	if e.IsStreaming {
		e.streamBuf.WriteString(chunk)
	}
}

// FinalizeStream merges the accumulated content and confirms the entry
// with the backend's message id.
func (e *Entry) FinalizeStream(messageID string) {
	if !e.IsStreaming {
		return
	}
	e.Content = e.streamBuf.String()
	e.streamBuf.Reset()
	e.IsStreaming = false
	e.MarkSent(messageID)
}

// InterruptStream ends the stream keeping the partial content, marked
// interrupted. Returns false when nothing arrived and the entry should
// be dropped instead.
func (e *Entry) InterruptStream() bool {
	if !e.IsStreaming {
		return e.Content != ""
	}
	e.Content = e.streamBuf.String()
	e.streamBuf.Reset()
	e.IsStreaming = false
	if e.Content == "" {
		return false
	}
	e.Interrupted = true
	e.State = StateSent
	return true
}

// =============================================================================
// DISPLAY
// =============================================================================

// DisplayContent returns what the view renders now, including
// in-flight streamed content.
func (e *Entry) DisplayContent() string {
	if e.IsStreaming {
		return e.streamBuf.String()
	}
	return e.Content
}

// Preview returns a rune-safe truncated preview.
func (e *Entry) Preview(maxLen int) string {
	content := e.DisplayContent()
	runes := []rune(content)
	if len(runes) <= maxLen {
		return content
	}
	return string(runes[:maxLen-3]) + "..."
}

// IsEmpty reports whether the entry has no content yet.
func (e *Entry) IsEmpty() bool {
	return len(e.Content) == 0 && e.streamBuf.Len() == 0
}

// generateEntryID creates a unique local entry id.
func generateEntryID() string {
	bytes := make([]byte, 8)
	rand.Read(bytes)
	return "entry_" + hex.EncodeToString(bytes)
}
