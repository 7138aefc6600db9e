// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/jeranaias/foundry-tui/internal/agent"
	"github.com/jeranaias/foundry-tui/internal/export"
	"github.com/jeranaias/foundry-tui/internal/storage"
)

// healthInterval is how often the backend gets probed while the view
// is open.
const healthInterval = 30 * time.Second

// =============================================================================
// LOADING COMMANDS
// =============================================================================

// fetchConversations runs one list fetch: write-through to the cache
// on success, cache fallback with FromCache set on failure. Every list
// fetch goes through the mutation queue (enqueueListRefresh), so the
// replacement list always reflects the mutations queued before it.
func fetchConversations(ctx context.Context, client agent.Backend, cache *storage.ThreadCache, variant string, logger *zap.Logger) ConversationsLoadedMsg {
	convs, err := client.ListConversations(ctx)
	if err == nil {
		if cache != nil {
			if cerr := cache.PutConversations(variant, convs); cerr != nil {
				logger.Warn("conversation cache write failed", zap.Error(cerr))
			}
		}
		return ConversationsLoadedMsg{Conversations: convs}
	}

	if cache != nil {
		cached, cerr := cache.Conversations(variant)
		if cerr == nil && len(cached) > 0 {
			return ConversationsLoadedMsg{Conversations: cached, FromCache: true, Err: err}
		}
	}
	return ConversationsLoadedMsg{Err: err}
}

// loadThreadCmd fetches one conversation's messages, falling back to
// the cache the same way as fetchConversations. Thread loads stay
// outside the queue: stale results are dropped by conversation id, so
// ordering them is unnecessary.
func (m Model) loadThreadCmd(conversationID, title string) tea.Cmd {
	client := m.client
	cache := m.cache
	logger := m.logger

	return func() tea.Msg {
		msgs, err := client.Messages(context.Background(), conversationID)
		if err == nil {
			if cache != nil {
				if cerr := cache.PutMessages(conversationID, msgs); cerr != nil {
					logger.Warn("message cache write failed", zap.Error(cerr))
				}
			}
			return ThreadLoadedMsg{ConversationID: conversationID, Title: title, Messages: msgs}
		}

		if cache != nil {
			cached, cerr := cache.Messages(conversationID)
			if cerr == nil && len(cached) > 0 {
				return ThreadLoadedMsg{
					ConversationID: conversationID,
					Title:          title,
					Messages:       cached,
					FromCache:      true,
					Err:            err,
				}
			}
		}
		return ThreadLoadedMsg{ConversationID: conversationID, Title: title, Err: err}
	}
}

// healthCheckCmd probes the backend once.
func (m Model) healthCheckCmd() tea.Cmd {
	client := m.client
	return func() tea.Msg {
		h, err := client.Health(context.Background())
		if err != nil {
			return HealthMsg{Healthy: false, Err: err}
		}
		return HealthMsg{Healthy: h.OK()}
	}
}

// healthTickCmd schedules the next probe.
func healthTickCmd() tea.Cmd {
	return tea.Tick(healthInterval, func(t time.Time) tea.Msg {
		return healthTickMsg(t)
	})
}

// =============================================================================
// CONTEXT COMMANDS
// =============================================================================

// errNoContextReset is reported when the client carries neither reset
// capability, which only happens with a bare generic client.
var errNoContextReset = errors.New("this backend cannot reset the agent context")

// resetContextCmd discards the agent's server-side working context.
// The operation is a variant capability: the hosted agent resets its
// thread, the local agent its history. Stored conversations stay.
func (m Model) resetContextCmd() tea.Cmd {
	client := m.client
	return func() tea.Msg {
		switch c := client.(type) {
		case agent.ThreadResetter:
			return ContextResetMsg{Err: c.ResetThread(context.Background())}
		case agent.HistoryResetter:
			return ContextResetMsg{Err: c.ResetHistory(context.Background())}
		default:
			return ContextResetMsg{Err: errNoContextReset}
		}
	}
}

// =============================================================================
// DELIVERY COMMANDS
// =============================================================================

// sendMessageCmd performs a non-streaming send for the optimistic
// entry identified by localID.
func (m Model) sendMessageCmd(conversationID, content, localID string) tea.Cmd {
	client := m.client
	opts := agent.SendOptions{IncludeContext: m.includeContext}

	return func() tea.Msg {
		result, err := client.SendMessage(context.Background(), conversationID, content, opts)
		return SendDoneMsg{LocalID: localID, Result: result, Err: err}
	}
}

// generateImageCmd requests an image for the prompt kept on the
// optimistic entry.
func (m Model) generateImageCmd(conversationID, prompt, localID string) tea.Cmd {
	client := m.client

	return func() tea.Msg {
		msg, err := client.GenerateImage(context.Background(), conversationID, prompt)
		return ImageDoneMsg{LocalID: localID, Message: msg, Err: err}
	}
}

// uploadFileCmd uploads the file kept on the optimistic entry.
func (m Model) uploadFileCmd(conversationID, path, localID string) tea.Cmd {
	client := m.client

	return func() tea.Msg {
		result, err := client.UploadFile(context.Background(), conversationID, path)
		return UploadDoneMsg{LocalID: localID, Result: result, Err: err}
	}
}

// =============================================================================
// MUTATION COMMANDS
// =============================================================================

// listenTasksCmd waits for the next finished mutation. The handler
// re-arms it after every notification, keeping exactly one listener
// on the queue.
func (m Model) listenTasksCmd() tea.Cmd {
	ch := m.queue.Notifications()
	return func() tea.Msg {
		n, ok := <-ch
		if !ok {
			return nil
		}
		return TaskDoneMsg{Notification: n}
	}
}

// =============================================================================
// EXPORT COMMANDS
// =============================================================================

// exportDocumentCmd writes an already-built document to disk. The
// document is assembled in the Update loop so a stream finishing
// mid-export can't tear the snapshot.
func exportDocumentCmd(doc *export.Document, format, dir string) tea.Cmd {
	return func() tea.Msg {
		opts := export.DefaultOptions()
		if dir != "" {
			opts.OutputDir = dir
		}
		exporter, err := export.ForFormat(format, opts)
		if err != nil {
			return ExportDoneMsg{Err: err}
		}
		path, err := export.ExportToFile(doc, exporter, opts)
		return ExportDoneMsg{Path: path, Err: err}
	}
}
