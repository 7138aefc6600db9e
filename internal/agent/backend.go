// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package agent

import "context"

// Backend is the operation set every agent variant serves. The concrete
// value handed to callers is a *FoundryClient or *LocalClient; operations
// beyond this set are variant capabilities (ThreadResetter, HistoryViewer,
// and friends) that callers reach by type assertion.
type Backend interface {
	CreateConversation(ctx context.Context, title string) (*Conversation, error)
	ListConversations(ctx context.Context) ([]Conversation, error)
	Messages(ctx context.Context, conversationID string) ([]Message, error)
	DeleteConversation(ctx context.Context, conversationID string) error
	RenameConversation(ctx context.Context, conversationID, title string) error
	SendMessage(ctx context.Context, conversationID, content string, opts SendOptions) (*SendResult, error)
	StreamMessage(ctx context.Context, conversationID, content string, opts SendOptions, fn func(chunk string)) (*StreamResult, error)
	GenerateImage(ctx context.Context, conversationID, prompt string) (*Message, error)
	UploadFile(ctx context.Context, conversationID, path string) (*UploadResult, error)
	Health(ctx context.Context) (*Health, error)
}

var (
	_ Backend = (*Client)(nil)
	_ Backend = (*FoundryClient)(nil)
	_ Backend = (*LocalClient)(nil)
)
