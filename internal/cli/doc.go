// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli provides command-line parsing and the non-TUI commands for
// foundry-tui.
//
// # Key Types
//
//   - Command: enumeration of all available commands
//   - Args: parsed command-line arguments, global and per-command flags
//
// # Usage
//
// Parse and dispatch:
//
//	cmd, args := cli.Parse()
//	switch cmd {
//	case cli.CmdLogin:
//	    cli.HandleLogin(args)
//	case cli.CmdStatus:
//	    cli.HandleStatus(args)
//	// ... other commands
//	}
//
// # Commands
//
//   - (none): launch the TUI
//   - chat: REPL chat from the command line (--plain)
//   - login / logout: manage the stored bearer token
//   - status: session, credential, and backend status
//   - health: probe the backend health endpoint
//   - conversations: list conversations, cache-aware
//   - export: write a conversation transcript to a file
//   - session: show or reset the tab session key
//
// All read commands support --json for machine-readable output.
package cli
