// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package chat provides the interactive conversation view for the
foundry-tui application.

The chat package implements a complete terminal chat interface using
the Bubble Tea framework: a scrollable message thread, an input line,
a conversation sidebar, and the delivery state machine that keeps
optimistic local entries reconciled with the backend.

# Key Components

## Model (model.go)

The Model struct is the central Bubble Tea model:
  - The active thread and its optimistic entries
  - The conversation list and sidebar cursor
  - Viewport, input, spinner, and status bar components
  - Injected agent client, mutation queue, and offline cache

## Update Loop (update.go)

Handles all Bubble Tea messages and user interactions:
  - Keyboard input, focus switching, and the rename prompt
  - Optimistic sends with per-entry delivery reconciliation
  - Retry of failed entries from their retained payloads
  - Queue-ordered conversation creates, deletes, and renames
  - Offline detection and cache fallbacks

## Streaming (streaming.go)

The Streamer runs one streaming reply at a time in its own goroutine
and feeds chunks back into the program as messages, so Update stays
single-threaded. Pressing esc cancels the stream's context; the
partial reply is kept and annotated.

## Commands (commands.go)

tea.Cmd constructors for every backend call the view makes. Loads
fall back to the SQLite cache when the backend is unreachable and
flag the result as cached.

## Messages (messages.go)

The typed tea.Msg catalog the handlers dispatch on, plus the helpers
that turn agent errors into actionable overlay content.

# Delivery States

Every user-authored entry moves through pending, sent, or failed.
Failed entries keep the exact payload of the original operation
(message text, image prompt, or upload path) so ctrl+r can re-dispatch
them without the user retyping. The reply to a send is appended only
after the backend confirms it; streaming replies accumulate into a
dedicated entry that finalizes when the done event arrives.

# Usage

	client := agent.NewClient(baseURL, basePath, creds, sessions)
	m := chat.New(client, chat.Options{Variant: "foundry", Streaming: true})
	p := tea.NewProgram(m, tea.WithAltScreen())
	m.SetProgram(p)
	_, err := p.Run()
*/
package chat
