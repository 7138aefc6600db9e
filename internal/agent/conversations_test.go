// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"
)

// =============================================================================
// CREATE TESTS
// =============================================================================

// TestCreateConversation verifies the request shape and response
// decode for conversation creation.
func TestCreateConversation(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("Method = %q, want POST", r.Method)
		}
		if r.URL.Path != "/api/foundry-agent/conversations" {
			t.Errorf("Path = %q, want /api/foundry-agent/conversations", r.URL.Path)
		}
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("Decode request body: %v", err)
		}
		if body["title"] != "Planning session" {
			t.Errorf("title = %v, want %q", body["title"], "Planning session")
		}
		fmt.Fprint(w, `{
			"success": true,
			"conversation": {
				"_id": "66b1f0",
				"user_id": "u1",
				"title": "Planning session",
				"created_at": "2025-03-01T10:30:00.123456",
				"updated_at": "2025-03-01T10:30:00.123456",
				"message_count": 0
			}
		}`)
	}))

	conv, err := client.CreateConversation(context.Background(), "Planning session")
	if err != nil {
		t.Fatalf("CreateConversation failed: %v", err)
	}
	if conv.ID != "66b1f0" {
		t.Errorf("ID = %q, want 66b1f0", conv.ID)
	}
	if conv.Title != "Planning session" {
		t.Errorf("Title = %q, want %q", conv.Title, "Planning session")
	}
	if conv.MessageCount != 0 {
		t.Errorf("MessageCount = %d, want 0", conv.MessageCount)
	}
}

// TestCreateConversationDefaultTitle verifies an empty title is
// omitted from the request so the backend applies its own default.
func TestCreateConversationDefaultTitle(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("Decode request body: %v", err)
		}
		if _, present := body["title"]; present {
			t.Errorf("title should be omitted when empty, got %v", body["title"])
		}
		fmt.Fprint(w, `{
			"success": true,
			"conversation": {"_id": "c1", "title": "Agent Chat", "message_count": 0}
		}`)
	}))

	conv, err := client.CreateConversation(context.Background(), "")
	if err != nil {
		t.Fatalf("CreateConversation failed: %v", err)
	}
	if conv.Title != "Agent Chat" {
		t.Errorf("Title = %q, want backend default %q", conv.Title, "Agent Chat")
	}
}

// =============================================================================
// LIST TESTS
// =============================================================================

// TestListConversations verifies list decode including the backend's
// timezone-naive datetimes.
func TestListConversations(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("Method = %q, want GET", r.Method)
		}
		fmt.Fprint(w, `{
			"success": true,
			"conversations": [
				{"_id": "c2", "title": "Newer", "created_at": "2025-03-02T08:00:00", "updated_at": "2025-03-02T09:15:30.500000", "message_count": 4},
				{"_id": "c1", "title": "Older", "created_at": "2025-03-01T08:00:00", "updated_at": "2025-03-01T08:05:00", "message_count": 2}
			]
		}`)
	}))

	convs, err := client.ListConversations(context.Background())
	if err != nil {
		t.Fatalf("ListConversations failed: %v", err)
	}
	if len(convs) != 2 {
		t.Fatalf("len = %d, want 2", len(convs))
	}
	if convs[0].ID != "c2" || convs[1].ID != "c1" {
		t.Errorf("Order = [%s, %s], want [c2, c1]", convs[0].ID, convs[1].ID)
	}

	want := time.Date(2025, 3, 2, 9, 15, 30, 500000000, time.UTC)
	if !convs[0].UpdatedAt.Time.Equal(want) {
		t.Errorf("UpdatedAt = %v, want %v", convs[0].UpdatedAt.Time, want)
	}
}

// =============================================================================
// MESSAGES TESTS
// =============================================================================

// TestMessages verifies message decode including attachments and
// image URLs.
func TestMessages(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/foundry-agent/conversations/c1/messages" {
			t.Errorf("Path = %q, want /api/foundry-agent/conversations/c1/messages", r.URL.Path)
		}
		fmt.Fprint(w, `{
			"success": true,
			"messages": [
				{"_id": "m1", "role": "user", "content": "review this", "created_at": "2025-03-01T10:00:00",
				 "attachments": [{"filename": "report.pdf", "content_type": "application/pdf", "size": 48213, "extracted": true}]},
				{"_id": "m2", "role": "assistant", "content": "Here is the summary.", "created_at": "2025-03-01T10:00:09", "tokens_used": 412},
				{"_id": "m3", "role": "assistant", "content": "Image generated", "image_url": "/static/generated/abc.png", "created_at": "2025-03-01T10:02:00"}
			]
		}`)
	}))

	msgs, err := client.Messages(context.Background(), "c1")
	if err != nil {
		t.Fatalf("Messages failed: %v", err)
	}
	if len(msgs) != 3 {
		t.Fatalf("len = %d, want 3", len(msgs))
	}
	if msgs[0].Role != RoleUser {
		t.Errorf("Role = %q, want user", msgs[0].Role)
	}
	if len(msgs[0].Attachments) != 1 || msgs[0].Attachments[0].Filename != "report.pdf" {
		t.Errorf("Attachments = %+v, want report.pdf", msgs[0].Attachments)
	}
	if !msgs[0].Attachments[0].Extracted {
		t.Error("Attachment should be marked extracted")
	}
	if msgs[1].TokensUsed != 412 {
		t.Errorf("TokensUsed = %d, want 412", msgs[1].TokensUsed)
	}
	if msgs[2].ImageURL != "/static/generated/abc.png" {
		t.Errorf("ImageURL = %q", msgs[2].ImageURL)
	}
}

// TestMessagesEmptyID verifies the client refuses an empty
// conversation id instead of hitting the wrong route.
func TestMessagesEmptyID(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("No request should be made for an empty conversation id")
	}))

	_, err := client.Messages(context.Background(), "")
	if err == nil {
		t.Fatal("Expected error for empty conversation id")
	}
	if KindOf(err) != KindUnknown {
		t.Errorf("Kind = %v, want KindUnknown", KindOf(err))
	}
}

// =============================================================================
// DELETE AND RENAME TESTS
// =============================================================================

// TestDeleteConversation verifies the delete request shape.
func TestDeleteConversation(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			t.Errorf("Method = %q, want DELETE", r.Method)
		}
		if r.URL.Path != "/api/foundry-agent/conversations/c9" {
			t.Errorf("Path = %q, want /api/foundry-agent/conversations/c9", r.URL.Path)
		}
		fmt.Fprint(w, `{"success": true, "message": "Conversation deleted"}`)
	}))

	if err := client.DeleteConversation(context.Background(), "c9"); err != nil {
		t.Fatalf("DeleteConversation failed: %v", err)
	}
}

// TestRenameConversation verifies the title update request shape.
func TestRenameConversation(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("Method = %q, want PUT", r.Method)
		}
		if r.URL.Path != "/api/foundry-agent/conversations/c3/title" {
			t.Errorf("Path = %q, want /api/foundry-agent/conversations/c3/title", r.URL.Path)
		}
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("Decode request body: %v", err)
		}
		if body["title"] != "Renamed" {
			t.Errorf("title = %v, want Renamed", body["title"])
		}
		fmt.Fprint(w, `{"success": true, "message": "Title updated"}`)
	}))

	if err := client.RenameConversation(context.Background(), "c3", "Renamed"); err != nil {
		t.Fatalf("RenameConversation failed: %v", err)
	}
}
