// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides unified configuration loading and management for
// foundry-tui.
//
// Configuration comes from <state dir>/config.toml (JSON fallback), with
// FOUNDRY_* environment overrides applied last and full validation before
// use. The state directory defaults to ~/.foundry-tui and is overridable
// with FOUNDRY_STATE_DIR; it also anchors the credential file, the session
// key file, the diagnostic logs, and the thread cache, so the path helpers
// for all of those live here.
//
// Access patterns:
//
//	cfg := config.Global()        // lazy singleton, thread-safe
//	cfg, err := config.Load()     // explicit load
//	config.ReloadGlobal()         // re-read from disk
//
// A Watcher can keep the global config in sync with on-disk edits while the
// TUI runs:
//
//	w, _ := config.NewWatcher(func(cfg *config.Config) { program.Send(...) })
//	w.Watch()
//	defer w.Close()
package config
