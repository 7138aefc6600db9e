// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package logging builds the diagnostic logger for foundry-tui.
//
// Every component that can fail in the background (the agent client, the
// chat synchronizer, the thread cache) receives a *zap.Logger at
// construction and records failures there. Logs are JSON lines in a
// rotating file under the state directory; the terminal is never written
// to, since the TUI owns it.
//
//	logger, err := logging.New(logging.Options{
//		Path:  filepath.Join(stateDir, "logs", "foundry-tui.log"),
//		Level: cfg.Logging.Level,
//	})
package logging
