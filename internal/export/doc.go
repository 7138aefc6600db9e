// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export renders conversation threads to shareable formats.
//
// Exporters consume a format-independent Document built from either
// the live thread (FromThread) or the cached server truth (FromCache),
// so the TUI export keybinding and the offline export command share
// one rendering path.
//
// # Supported Formats
//
//   - Markdown: human-readable, YAML frontmatter metadata
//   - JSON: complete machine-readable record
//   - Text: plain transcript for piping
//   - HTML: standalone styled page with light/dark themes
//
// # Usage
//
//	doc := export.FromThread(thread, "foundry")
//	exporter, err := export.ForFormat("markdown", nil)
//	if err != nil {
//	    return err
//	}
//	path, err := export.ExportToFile(doc, exporter, nil)
package export
