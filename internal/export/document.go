// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"time"

	"github.com/jeranaias/foundry-tui/internal/agent"
	"github.com/jeranaias/foundry-tui/internal/model"
)

// =============================================================================
// EXPORT DOCUMENT
// =============================================================================

// Document is the format-independent view the exporters render. Built
// either from the live thread or from the cache, so both the TUI
// keybinding and the offline export command share one path.
type Document struct {
	Title          string       `json:"title"`
	Variant        string       `json:"variant,omitempty"`
	ConversationID string       `json:"conversation_id,omitempty"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
	Messages       []DocMessage `json:"messages"`
	TotalTokens    int          `json:"total_tokens,omitempty"`
}

// DocMessage is one rendered message with its delivery annotations.
type DocMessage struct {
	Role          string    `json:"role"`
	Content       string    `json:"content"`
	Timestamp     time.Time `json:"timestamp"`
	ImageURL      string    `json:"image_url,omitempty"`
	Attachments   []string  `json:"attachments,omitempty"`
	TokensUsed    int       `json:"tokens_used,omitempty"`
	Failed        bool      `json:"failed,omitempty"`
	FailureDetail string    `json:"failure_detail,omitempty"`
	Interrupted   bool      `json:"interrupted,omitempty"`
}

// FromThread builds a document from the live thread, exactly as
// displayed: failed and interrupted entries keep their annotations.
func FromThread(t *model.Thread, variant string) *Document {
	if t == nil {
		return nil
	}

	doc := &Document{
		Title:          t.DisplayTitle(),
		Variant:        variant,
		ConversationID: t.ConversationID,
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
		Messages:       make([]DocMessage, 0, len(t.Entries)),
		TotalTokens:    t.TotalTokens(),
	}

	if first := firstEntryTime(t); !first.IsZero() {
		doc.CreatedAt = first
	}
	if last := t.LastEntry(); last != nil && !last.CreatedAt.IsZero() {
		doc.UpdatedAt = last.CreatedAt
	}

	for _, e := range t.Entries {
		msg := DocMessage{
			Role:          e.Role,
			Content:       e.DisplayContent(),
			Timestamp:     e.CreatedAt,
			ImageURL:      e.ImageURL,
			TokensUsed:    e.TokensUsed,
			Failed:        e.State == model.StateFailed,
			FailureDetail: e.FailureDetail,
			Interrupted:   e.Interrupted,
		}
		for _, a := range e.Attachments {
			msg.Attachments = append(msg.Attachments, a.Filename)
		}
		doc.Messages = append(doc.Messages, msg)
	}

	return doc
}

// FromCache builds a document from cached server truth.
func FromCache(conv *agent.Conversation, msgs []agent.Message, variant string) *Document {
	if conv == nil {
		return nil
	}

	title := conv.Title
	if title == "" {
		title = "New Conversation"
	}

	doc := &Document{
		Title:          title,
		Variant:        variant,
		ConversationID: conv.ID,
		CreatedAt:      conv.CreatedAt.Time,
		UpdatedAt:      conv.UpdatedAt.Time,
		Messages:       make([]DocMessage, 0, len(msgs)),
	}

	for _, m := range msgs {
		msg := DocMessage{
			Role:       m.Role,
			Content:    m.Content,
			Timestamp:  m.CreatedAt.Time,
			ImageURL:   m.ImageURL,
			TokensUsed: m.TokensUsed,
		}
		for _, a := range m.Attachments {
			msg.Attachments = append(msg.Attachments, a.Filename)
		}
		doc.TotalTokens += m.TokensUsed
		doc.Messages = append(doc.Messages, msg)
	}

	return doc
}

func firstEntryTime(t *model.Thread) time.Time {
	for _, e := range t.Entries {
		if !e.CreatedAt.IsZero() {
			return e.CreatedAt
		}
	}
	return time.Time{}
}
