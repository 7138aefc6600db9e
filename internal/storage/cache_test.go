// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jeranaias/foundry-tui/internal/agent"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func newTestCache(t *testing.T) *ThreadCache {
	t.Helper()
	cache, err := Open(filepath.Join(t.TempDir(), "cache.db"), nil)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { cache.Close() })
	return cache
}

func ts(sec int64) agent.Timestamp {
	return agent.Timestamp{Time: time.Unix(sec, 0).UTC()}
}

// =============================================================================
// OPEN TESTS
// =============================================================================

func TestOpenCreatesDatabase(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "cache.db")

	cache, err := Open(path, nil)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer cache.Close()

	if _, err := os.Stat(path); err != nil {
		t.Errorf("database file not created: %v", err)
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")

	first, err := Open(path, nil)
	if err != nil {
		t.Fatalf("first Open failed: %v", err)
	}
	first.Close()

	second, err := Open(path, nil)
	if err != nil {
		t.Fatalf("second Open failed: %v", err)
	}
	second.Close()
}

// =============================================================================
// CONVERSATION LIST TESTS
// =============================================================================

func TestPutConversationsRoundTrip(t *testing.T) {
	cache := newTestCache(t)

	convs := []agent.Conversation{
		{ID: "c-new", Title: "Newest", CreatedAt: ts(100), UpdatedAt: ts(300), MessageCount: 4},
		{ID: "c-old", Title: "Older", CreatedAt: ts(50), UpdatedAt: ts(200), MessageCount: 2},
	}
	if err := cache.PutConversations(VariantFoundry, convs); err != nil {
		t.Fatalf("PutConversations failed: %v", err)
	}

	got, err := cache.Conversations(VariantFoundry)
	if err != nil {
		t.Fatalf("Conversations failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].ID != "c-new" || got[1].ID != "c-old" {
		t.Errorf("order = %q, %q, want newest first", got[0].ID, got[1].ID)
	}
	if got[0].Title != "Newest" || got[0].MessageCount != 4 {
		t.Errorf("conversation = %+v", got[0])
	}
	if !got[0].UpdatedAt.Equal(ts(300).Time) {
		t.Errorf("UpdatedAt = %v, want %v", got[0].UpdatedAt, ts(300).Time)
	}
}

func TestPutConversationsPrunesStale(t *testing.T) {
	cache := newTestCache(t)

	if err := cache.PutConversations(VariantFoundry, []agent.Conversation{
		{ID: "c-1", Title: "Keep", UpdatedAt: ts(200)},
		{ID: "c-2", Title: "Gone", UpdatedAt: ts(100)},
	}); err != nil {
		t.Fatalf("PutConversations failed: %v", err)
	}
	if err := cache.PutMessages("c-2", []agent.Message{
		{ID: "m-1", Role: agent.RoleUser, Content: "orphan soon"},
	}); err != nil {
		t.Fatalf("PutMessages failed: %v", err)
	}

	// Server no longer lists c-2.
	if err := cache.PutConversations(VariantFoundry, []agent.Conversation{
		{ID: "c-1", Title: "Keep", UpdatedAt: ts(250)},
	}); err != nil {
		t.Fatalf("second PutConversations failed: %v", err)
	}

	got, err := cache.Conversations(VariantFoundry)
	if err != nil {
		t.Fatalf("Conversations failed: %v", err)
	}
	if len(got) != 1 || got[0].ID != "c-1" {
		t.Fatalf("list = %+v, want only c-1", got)
	}

	if _, err := cache.Messages("c-2"); !errors.Is(err, ErrNotCached) {
		t.Errorf("Messages for pruned conversation: err = %v, want ErrNotCached", err)
	}
}

func TestVariantScoping(t *testing.T) {
	cache := newTestCache(t)

	cache.PutConversations(VariantFoundry, []agent.Conversation{{ID: "c-f", Title: "Hosted"}})
	cache.PutConversations(VariantLocal, []agent.Conversation{{ID: "c-l", Title: "Local"}})

	foundry, err := cache.Conversations(VariantFoundry)
	if err != nil {
		t.Fatalf("Conversations failed: %v", err)
	}
	if len(foundry) != 1 || foundry[0].ID != "c-f" {
		t.Errorf("foundry list = %+v", foundry)
	}

	local, err := cache.Conversations(VariantLocal)
	if err != nil {
		t.Fatalf("Conversations failed: %v", err)
	}
	if len(local) != 1 || local[0].ID != "c-l" {
		t.Errorf("local list = %+v", local)
	}

	// Refreshing one variant leaves the other intact.
	cache.PutConversations(VariantFoundry, nil)
	local, _ = cache.Conversations(VariantLocal)
	if len(local) != 1 {
		t.Errorf("local list after foundry refresh = %+v", local)
	}
}

// =============================================================================
// MESSAGE TESTS
// =============================================================================

func TestPutMessagesRoundTrip(t *testing.T) {
	cache := newTestCache(t)
	cache.PutConversations(VariantFoundry, []agent.Conversation{{ID: "c-1", Title: "T"}})

	msgs := []agent.Message{
		{
			ID: "m-1", Role: agent.RoleUser, Content: "analyze this",
			CreatedAt: ts(10),
			Attachments: []agent.Attachment{
				{Filename: "report.pdf", ContentType: "application/pdf", Size: 2048, Extracted: true},
			},
		},
		{
			ID: "m-2", Role: agent.RoleAssistant, Content: "Here is a chart.",
			CreatedAt: ts(20), ImageURL: "https://cdn.example.com/chart.png", TokensUsed: 42,
		},
	}
	if err := cache.PutMessages("c-1", msgs); err != nil {
		t.Fatalf("PutMessages failed: %v", err)
	}

	got, err := cache.Messages("c-1")
	if err != nil {
		t.Fatalf("Messages failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].ID != "m-1" || got[1].ID != "m-2" {
		t.Errorf("order = %q, %q", got[0].ID, got[1].ID)
	}
	if got[0].ConversationID != "c-1" {
		t.Errorf("ConversationID = %q", got[0].ConversationID)
	}
	if len(got[0].Attachments) != 1 || got[0].Attachments[0].Filename != "report.pdf" {
		t.Errorf("Attachments = %+v", got[0].Attachments)
	}
	if !got[0].Attachments[0].Extracted {
		t.Error("Extracted flag lost in round trip")
	}
	if got[1].ImageURL != "https://cdn.example.com/chart.png" {
		t.Errorf("ImageURL = %q", got[1].ImageURL)
	}
	if got[1].TokensUsed != 42 {
		t.Errorf("TokensUsed = %d", got[1].TokensUsed)
	}
	if !got[1].CreatedAt.Equal(ts(20).Time) {
		t.Errorf("CreatedAt = %v", got[1].CreatedAt)
	}
}

func TestPutMessagesReplacesWholesale(t *testing.T) {
	cache := newTestCache(t)
	cache.PutConversations(VariantFoundry, []agent.Conversation{{ID: "c-1", Title: "T"}})

	cache.PutMessages("c-1", []agent.Message{
		{ID: "m-1", Role: agent.RoleUser, Content: "one"},
		{ID: "m-2", Role: agent.RoleAssistant, Content: "two"},
		{ID: "m-3", Role: agent.RoleUser, Content: "three"},
	})
	cache.PutMessages("c-1", []agent.Message{
		{ID: "m-9", Role: agent.RoleUser, Content: "only"},
	})

	got, err := cache.Messages("c-1")
	if err != nil {
		t.Fatalf("Messages failed: %v", err)
	}
	if len(got) != 1 || got[0].ID != "m-9" {
		t.Errorf("messages = %+v, want wholesale replacement", got)
	}
}

func TestPutMessagesUnknownConversation(t *testing.T) {
	cache := newTestCache(t)

	err := cache.PutMessages("c-missing", []agent.Message{{ID: "m-1", Role: agent.RoleUser}})
	if !errors.Is(err, ErrNotCached) {
		t.Errorf("err = %v, want ErrNotCached", err)
	}
}

func TestMessagesUnknownConversation(t *testing.T) {
	cache := newTestCache(t)

	if _, err := cache.Messages("c-missing"); !errors.Is(err, ErrNotCached) {
		t.Errorf("err = %v, want ErrNotCached", err)
	}
}

// =============================================================================
// DELETE TESTS
// =============================================================================

func TestDeleteCascades(t *testing.T) {
	cache := newTestCache(t)
	cache.PutConversations(VariantFoundry, []agent.Conversation{{ID: "c-1", Title: "T"}})
	cache.PutMessages("c-1", []agent.Message{{ID: "m-1", Role: agent.RoleUser, Content: "x"}})

	if err := cache.Delete("c-1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	if _, err := cache.Conversation("c-1"); !errors.Is(err, ErrNotCached) {
		t.Errorf("Conversation after delete: err = %v, want ErrNotCached", err)
	}

	stats, err := cache.Stats()
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.Messages != 0 {
		t.Errorf("Messages = %d after cascade, want 0", stats.Messages)
	}
}

func TestDeleteMissingIsNoop(t *testing.T) {
	cache := newTestCache(t)
	if err := cache.Delete("c-missing"); err != nil {
		t.Errorf("Delete of missing id: %v, want nil", err)
	}
}

func TestClear(t *testing.T) {
	cache := newTestCache(t)
	cache.PutConversations(VariantFoundry, []agent.Conversation{{ID: "c-1", Title: "T"}})
	cache.PutConversations(VariantLocal, []agent.Conversation{{ID: "c-2", Title: "U"}})

	if err := cache.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}

	stats, _ := cache.Stats()
	if stats.Conversations != 0 {
		t.Errorf("Conversations = %d after Clear, want 0", stats.Conversations)
	}
}

// =============================================================================
// STATS TESTS
// =============================================================================

func TestStats(t *testing.T) {
	cache := newTestCache(t)
	cache.PutConversations(VariantFoundry, []agent.Conversation{
		{ID: "c-1", Title: "A"},
		{ID: "c-2", Title: "B"},
	})
	cache.PutMessages("c-1", []agent.Message{
		{ID: "m-1", Role: agent.RoleUser, Content: "x"},
		{ID: "m-2", Role: agent.RoleAssistant, Content: "y"},
		{ID: "m-3", Role: agent.RoleUser, Content: "z"},
	})

	stats, err := cache.Stats()
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.Conversations != 2 {
		t.Errorf("Conversations = %d, want 2", stats.Conversations)
	}
	if stats.Messages != 3 {
		t.Errorf("Messages = %d, want 3", stats.Messages)
	}
	if stats.Path == "" {
		t.Error("Path should be set")
	}
}

// =============================================================================
// TIMESTAMP CONVERSION TESTS
// =============================================================================

func TestNanosRoundTrip(t *testing.T) {
	precise := agent.Timestamp{Time: time.Date(2025, 3, 2, 9, 15, 30, 500000000, time.UTC)}

	got := fromNanos(toNanos(precise))
	if !got.Equal(precise.Time) {
		t.Errorf("round trip = %v, want %v", got, precise.Time)
	}

	if toNanos(agent.Timestamp{}) != 0 {
		t.Error("zero timestamp should encode as 0")
	}
	if !fromNanos(0).IsZero() {
		t.Error("0 should decode as zero timestamp")
	}
}
