// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"strings"
	"testing"
	"time"

	"github.com/jeranaias/foundry-tui/internal/agent"
)

// =============================================================================
// DELIVERY LIFECYCLE TESTS
// =============================================================================

func TestUserEntryLifecycle(t *testing.T) {
	e := NewUserEntry("hello there")

	if e.State != StatePending {
		t.Errorf("State = %v, want %v", e.State, StatePending)
	}
	if e.Role != agent.RoleUser {
		t.Errorf("Role = %q, want %q", e.Role, agent.RoleUser)
	}
	if e.Content != "hello there" {
		t.Errorf("Content = %q, want %q", e.Content, "hello there")
	}
	if e.LocalID == "" || !strings.HasPrefix(e.LocalID, "entry_") {
		t.Errorf("LocalID = %q, want entry_ prefix", e.LocalID)
	}
	if e.MessageID != "" {
		t.Errorf("MessageID = %q before confirmation, want empty", e.MessageID)
	}
	if e.CanRetry() {
		t.Error("pending entry should not be retryable")
	}

	e.MarkSent("msg-42")

	if e.State != StateSent {
		t.Errorf("State after MarkSent = %v, want %v", e.State, StateSent)
	}
	if e.MessageID != "msg-42" {
		t.Errorf("MessageID = %q, want %q", e.MessageID, "msg-42")
	}
	if e.CanRetry() {
		t.Error("sent entry should not be retryable")
	}
}

func TestFailedEntryKeepsPayload(t *testing.T) {
	e := NewUserEntry("important question")
	e.MarkFailed("network error")

	if e.State != StateFailed {
		t.Errorf("State = %v, want %v", e.State, StateFailed)
	}
	if e.FailureDetail != "network error" {
		t.Errorf("FailureDetail = %q, want %q", e.FailureDetail, "network error")
	}
	if !e.CanRetry() {
		t.Error("failed entry with payload should be retryable")
	}
	if e.Payload == nil || e.Payload.Content != "important question" {
		t.Fatalf("Payload = %+v, want original content intact", e.Payload)
	}
	if e.Payload.Kind != PayloadSend {
		t.Errorf("Payload.Kind = %v, want %v", e.Payload.Kind, PayloadSend)
	}

	// The thread content the user saw stays on screen.
	if e.Content != "important question" {
		t.Errorf("Content = %q, want unchanged", e.Content)
	}
}

func TestRetryRoundTrip(t *testing.T) {
	e := NewUserEntry("try again")
	e.MarkFailed("timeout")
	e.MarkRetrying()

	if e.State != StatePending {
		t.Errorf("State after MarkRetrying = %v, want %v", e.State, StatePending)
	}
	if e.FailureDetail != "" {
		t.Errorf("FailureDetail = %q, want cleared", e.FailureDetail)
	}
	if e.CanRetry() {
		t.Error("retrying entry should not allow a second concurrent attempt")
	}

	// Second failure, then success.
	e.MarkFailed("still down")
	if !e.CanRetry() {
		t.Error("second failure should be retryable again")
	}
	e.MarkRetrying()
	e.MarkSent("msg-77")
	if e.State != StateSent || e.MessageID != "msg-77" {
		t.Errorf("final state = %v/%q, want sent/msg-77", e.State, e.MessageID)
	}
}

func TestImageEntryEcho(t *testing.T) {
	e := NewImageEntry("a lighthouse at dusk")

	if e.Content != "Generate image: a lighthouse at dusk" {
		t.Errorf("Content = %q, want synthesized caption", e.Content)
	}
	if e.Payload.Kind != PayloadGenerateImage {
		t.Errorf("Payload.Kind = %v, want %v", e.Payload.Kind, PayloadGenerateImage)
	}
	if e.Payload.Content != "a lighthouse at dusk" {
		t.Errorf("Payload.Content = %q, want raw prompt", e.Payload.Content)
	}
}

func TestUploadEntryEcho(t *testing.T) {
	e := NewUploadEntry("/home/user/docs/report.pdf")

	if e.Content != "Upload file: report.pdf" {
		t.Errorf("Content = %q, want file name echo", e.Content)
	}
	if e.Payload.Kind != PayloadUpload {
		t.Errorf("Payload.Kind = %v, want %v", e.Payload.Kind, PayloadUpload)
	}
	if e.Payload.Path != "/home/user/docs/report.pdf" {
		t.Errorf("Payload.Path = %q, want full path", e.Payload.Path)
	}
}

func TestFromMessage(t *testing.T) {
	created := time.Date(2025, 3, 2, 9, 15, 30, 0, time.UTC)
	msg := agent.Message{
		ID:             "m-1",
		ConversationID: "c-1",
		Role:           agent.RoleAssistant,
		Content:        "Here is the answer.",
		ImageURL:       "https://cdn.example.com/img.png",
		Attachments:    []agent.Attachment{{Filename: "notes.txt", Extracted: true}},
		CreatedAt:      agent.Timestamp{Time: created},
		TokensUsed:     31,
	}

	e := FromMessage(msg)

	if e.State != StateSent {
		t.Errorf("State = %v, want %v", e.State, StateSent)
	}
	if e.MessageID != "m-1" {
		t.Errorf("MessageID = %q, want %q", e.MessageID, "m-1")
	}
	if e.Content != "Here is the answer." {
		t.Errorf("Content = %q", e.Content)
	}
	if e.ImageURL != "https://cdn.example.com/img.png" {
		t.Errorf("ImageURL = %q", e.ImageURL)
	}
	if len(e.Attachments) != 1 || e.Attachments[0].Filename != "notes.txt" {
		t.Errorf("Attachments = %+v", e.Attachments)
	}
	if !e.CreatedAt.Equal(created) {
		t.Errorf("CreatedAt = %v, want %v", e.CreatedAt, created)
	}
	if e.TokensUsed != 31 {
		t.Errorf("TokensUsed = %d, want 31", e.TokensUsed)
	}
	if e.Payload != nil {
		t.Error("backend messages should carry no retry payload")
	}
}

func TestEntryIDsUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		e := NewUserEntry("x")
		if seen[e.LocalID] {
			t.Fatalf("duplicate LocalID %q", e.LocalID)
		}
		seen[e.LocalID] = true
	}
}

// =============================================================================
// STREAMING TESTS
// =============================================================================

func TestStreamingEntry(t *testing.T) {
	e := NewStreamingEntry()

	if !e.IsStreaming {
		t.Fatal("new streaming entry should be streaming")
	}
	if e.Role != agent.RoleAssistant {
		t.Errorf("Role = %q, want %q", e.Role, agent.RoleAssistant)
	}

	e.AppendChunk("The answer")
	e.AppendChunk(" is ")
	e.AppendChunk("42.")

	if got := e.DisplayContent(); got != "The answer is 42." {
		t.Errorf("DisplayContent mid-stream = %q", got)
	}
	if e.Content != "" {
		t.Errorf("Content = %q before finalize, want empty", e.Content)
	}

	e.FinalizeStream("m-stream-1")

	if e.IsStreaming {
		t.Error("finalized entry should not be streaming")
	}
	if e.Content != "The answer is 42." {
		t.Errorf("Content = %q after finalize", e.Content)
	}
	if e.MessageID != "m-stream-1" {
		t.Errorf("MessageID = %q", e.MessageID)
	}
	if e.State != StateSent {
		t.Errorf("State = %v, want %v", e.State, StateSent)
	}
}

func TestAppendChunkAfterFinalizeIgnored(t *testing.T) {
	e := NewStreamingEntry()
	e.AppendChunk("done")
	e.FinalizeStream("m-1")
	e.AppendChunk(" extra")

	if e.Content != "done" {
		t.Errorf("Content = %q, late chunks must not mutate a finalized entry", e.Content)
	}
}

func TestInterruptStreamKeepsPartial(t *testing.T) {
	e := NewStreamingEntry()
	e.AppendChunk("Partial thought")

	if keep := e.InterruptStream(); !keep {
		t.Fatal("InterruptStream with content should keep the entry")
	}
	if !e.Interrupted {
		t.Error("entry should be marked interrupted")
	}
	if e.Content != "Partial thought" {
		t.Errorf("Content = %q, want partial retained", e.Content)
	}
	if e.IsStreaming {
		t.Error("interrupted entry should not keep streaming")
	}
}

func TestInterruptStreamEmptyDropped(t *testing.T) {
	e := NewStreamingEntry()

	if keep := e.InterruptStream(); keep {
		t.Error("InterruptStream with no content should signal removal")
	}
}

// =============================================================================
// DISPLAY TESTS
// =============================================================================

func TestPreview(t *testing.T) {
	tests := []struct {
		name    string
		content string
		maxLen  int
		want    string
	}{
		{"short", "hello", 10, "hello"},
		{"exact", "hello", 5, "hello"},
		{"truncated", "hello world", 8, "hello..."},
		{"multibyte", "héllo wörld", 8, "héllo..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := &Entry{Content: tt.content}
			if got := e.Preview(tt.maxLen); got != tt.want {
				t.Errorf("Preview(%d) = %q, want %q", tt.maxLen, got, tt.want)
			}
		})
	}
}

// =============================================================================
// THREAD TESTS
// =============================================================================

func TestThreadReplace(t *testing.T) {
	th := NewThread("c-1", "Planning")
	th.Append(FromMessage(agent.Message{ID: "old-1", Role: agent.RoleUser, Content: "stale"}))

	failed := NewUserEntry("never made it")
	failed.MarkFailed("timeout")
	th.Append(failed)

	th.Replace([]agent.Message{
		{ID: "m-1", Role: agent.RoleUser, Content: "first"},
		{ID: "m-2", Role: agent.RoleAssistant, Content: "second"},
	})

	if th.Len() != 3 {
		t.Fatalf("Len = %d, want 2 server entries plus 1 failed local", th.Len())
	}
	if th.Entries[0].MessageID != "m-1" || th.Entries[1].MessageID != "m-2" {
		t.Errorf("server entries out of order: %q, %q",
			th.Entries[0].MessageID, th.Entries[1].MessageID)
	}
	last := th.LastEntry()
	if last.LocalID != failed.LocalID {
		t.Errorf("failed local entry lost in reload")
	}
	if !last.CanRetry() {
		t.Error("retained entry should still be retryable")
	}
}

func TestThreadReplaceDropsConfirmedLocals(t *testing.T) {
	th := NewThread("c-1", "")
	sent := NewUserEntry("made it")
	sent.MarkSent("m-9")
	th.Append(sent)

	th.Replace([]agent.Message{{ID: "m-9", Role: agent.RoleUser, Content: "made it"}})

	if th.Len() != 1 {
		t.Fatalf("Len = %d, want confirmed local replaced by server copy", th.Len())
	}
	if th.Entries[0].MessageID != "m-9" {
		t.Errorf("MessageID = %q", th.Entries[0].MessageID)
	}
}

func TestThreadEntryLookup(t *testing.T) {
	th := NewThread("", "")
	a := NewUserEntry("a")
	b := NewStreamingEntry()
	th.Append(a)
	th.Append(b)

	if got := th.EntryByLocalID(b.LocalID); got != b {
		t.Errorf("EntryByLocalID returned %v, want streaming entry", got)
	}
	if got := th.EntryByLocalID("entry_missing"); got != nil {
		t.Errorf("EntryByLocalID for unknown id = %v, want nil", got)
	}

	if !th.RemoveEntry(b.LocalID) {
		t.Fatal("RemoveEntry should report success")
	}
	if th.Len() != 1 {
		t.Errorf("Len after remove = %d, want 1", th.Len())
	}
	if th.RemoveEntry(b.LocalID) {
		t.Error("second RemoveEntry should report failure")
	}
}

func TestThreadQueries(t *testing.T) {
	th := NewThread("c-1", "")

	if th.HasPending() {
		t.Error("empty thread should have no pending entries")
	}
	if th.LastEntry() != nil {
		t.Error("LastEntry on empty thread should be nil")
	}

	pending := NewUserEntry("in flight")
	th.Append(pending)
	if !th.HasPending() {
		t.Error("thread with a pending entry should report it")
	}

	f1 := NewUserEntry("fail one")
	f1.MarkFailed("x")
	f2 := NewUserEntry("fail two")
	f2.MarkFailed("y")
	th.Append(f1)
	th.Append(f2)

	failed := th.FailedEntries()
	if len(failed) != 2 {
		t.Fatalf("FailedEntries = %d, want 2", len(failed))
	}
	if failed[0].LocalID != f1.LocalID || failed[1].LocalID != f2.LocalID {
		t.Error("FailedEntries should preserve thread order")
	}
}

func TestThreadTotalTokens(t *testing.T) {
	th := NewThread("c-1", "")
	th.Append(FromMessage(agent.Message{ID: "m-1", Role: agent.RoleUser, TokensUsed: 10}))
	th.Append(FromMessage(agent.Message{ID: "m-2", Role: agent.RoleAssistant, TokensUsed: 25}))

	if got := th.TotalTokens(); got != 35 {
		t.Errorf("TotalTokens = %d, want 35", got)
	}
}

func TestThreadDisplayTitle(t *testing.T) {
	if got := NewThread("", "").DisplayTitle(); got != "New Conversation" {
		t.Errorf("DisplayTitle = %q, want placeholder", got)
	}
	if got := NewThread("c-1", "Trip Planning").DisplayTitle(); got != "Trip Planning" {
		t.Errorf("DisplayTitle = %q, want %q", got, "Trip Planning")
	}
}
