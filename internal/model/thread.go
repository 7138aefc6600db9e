// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import "github.com/jeranaias/foundry-tui/internal/agent"

// =============================================================================
// THREAD
// =============================================================================

// Thread is the visible transcript of one conversation. It is owned by
// the UI loop; no internal locking.
type Thread struct {
	// ConversationID is the backend conversation, empty until the
	// first round trip creates one.
	ConversationID string

	Title   string
	Entries []*Entry
}

// NewThread creates a thread bound to a conversation. Both fields may
// be empty for a conversation not yet created on the backend.
func NewThread(conversationID, title string) *Thread {
	return &Thread{
		ConversationID: conversationID,
		Title:          title,
		Entries:        make([]*Entry, 0, 16),
	}
}

// DisplayTitle returns the title or a placeholder for unnamed threads.
func (t *Thread) DisplayTitle() string {
	if t.Title == "" {
		return "New Conversation"
	}
	return t.Title
}

// =============================================================================
// ENTRY MANAGEMENT
// =============================================================================

// Append adds an entry to the end of the thread.
func (t *Thread) Append(e *Entry) {
	t.Entries = append(t.Entries, e)
}

// Replace rebuilds the thread from the backend's message list. Local
// entries still in flight or failed survive the reload, appended after
// the server truth so their retry payloads are not lost.
func (t *Thread) Replace(msgs []agent.Message) {
	var local []*Entry
	for _, e := range t.Entries {
		if e.State != StateSent {
			local = append(local, e)
		}
	}

	entries := make([]*Entry, 0, len(msgs)+len(local))
	for _, msg := range msgs {
		entries = append(entries, FromMessage(msg))
	}
	t.Entries = append(entries, local...)
}

// EntryByLocalID finds an entry by its client-side id.
func (t *Thread) EntryByLocalID(localID string) *Entry {
	for _, e := range t.Entries {
		if e.LocalID == localID {
			return e
		}
	}
	return nil
}

// LastEntry returns the newest entry, or nil for an empty thread.
func (t *Thread) LastEntry() *Entry {
	if len(t.Entries) == 0 {
		return nil
	}
	return t.Entries[len(t.Entries)-1]
}

// RemoveEntry drops an entry by local id. Used for empty interrupted
// streams.
func (t *Thread) RemoveEntry(localID string) bool {
	for i, e := range t.Entries {
		if e.LocalID == localID {
			t.Entries = append(t.Entries[:i], t.Entries[i+1:]...)
			return true
		}
	}
	return false
}

// Clear drops every entry, keeping the conversation binding.
func (t *Thread) Clear() {
	t.Entries = t.Entries[:0]
}

// =============================================================================
// QUERIES
// =============================================================================

// FailedEntries returns entries awaiting retry, oldest first.
func (t *Thread) FailedEntries() []*Entry {
	var failed []*Entry
	for _, e := range t.Entries {
		if e.State == StateFailed {
			failed = append(failed, e)
		}
	}
	return failed
}

// HasPending reports whether any entry is mid round trip.
func (t *Thread) HasPending() bool {
	for _, e := range t.Entries {
		if e.State == StatePending {
			return true
		}
	}
	return false
}

// Len returns the entry count.
func (t *Thread) Len() int {
	return len(t.Entries)
}

// TotalTokens sums reported token usage across the thread.
func (t *Thread) TotalTokens() int {
	total := 0
	for _, e := range t.Entries {
		total += e.TokensUsed
	}
	return total
}
