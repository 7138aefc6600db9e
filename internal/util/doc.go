// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small shared helpers for the foundry-tui application.
//
// String helpers:
//   - TruncateRunes: UTF-8 safe truncation with ellipsis
//   - FirstLine: single-line extraction for one-row display slots
//   - RelativeTime: compact "5m ago" timestamps for list rows
//
// File helpers:
//   - AtomicWriteFile / AtomicWriteFileWithDir: crash-safe writes used by
//     every state file (config, session key, credentials)
package util
