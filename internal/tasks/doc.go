// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package tasks serializes conversation-list mutations.
//
// Deletes, renames, and the reloads that follow them are enqueued as
// tasks and executed strictly in enqueue order by a single runner
// goroutine. A reload enqueued after a rename therefore always
// observes the rename; two mutations can never interleave on the
// backend. Terminal outcomes are published on the queue's notification
// channel for the UI to consume.
package tasks
